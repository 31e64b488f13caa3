package fraction

import (
	"fmt"
	"math/big"
)

// InvalidShareError is returned when a share is not positive or the shares
// add up to more than the whole.
type InvalidShareError struct {
	Holder string
	Share  *big.Rat
	Sum    *big.Rat
	Reason string
}

func (e *InvalidShareError) Error() string {
	return fmt.Sprintf("invalid share %s for %s (running sum %s): %s",
		String(e.Share), e.Holder, String(e.Sum), e.Reason)
}
