package graph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/c360studio/semprov/record"
)

// ErrCorruptState is returned when persisted graph state refers to handles
// that do not exist.
var ErrCorruptState = errors.New("corrupt graph state")

// UnknownLotError is returned by Finalize under the error policy when
// citations point at lots that were never observed.
type UnknownLotError struct {
	Lots []record.SaleRecordKey
}

func (e *UnknownLotError) Error() string {
	names := make([]string, 0, len(e.Lots))
	for i, k := range e.Lots {
		if i == 5 {
			names = append(names, fmt.Sprintf("and %d more", len(e.Lots)-5))
			break
		}
		names = append(names, k.String())
	}
	return fmt.Sprintf("%d cited lots were never observed: %s", len(e.Lots), strings.Join(names, ", "))
}
