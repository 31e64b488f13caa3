package ledger

import (
	"fmt"

	"github.com/c360studio/semprov/record"
)

// Variant is a record classified by its transaction tag. The concrete type
// selects the ledger shape built by Assemble.
type Variant interface {
	Source() *record.NormalizedSaleRecord
	variant()
}

type routed struct {
	rec *record.NormalizedSaleRecord
}

func (r routed) Source() *record.NormalizedSaleRecord { return r.rec }
func (routed) variant()                               {}

// SaleVariant is a purchase by the dealer followed by a sale.
type SaleVariant struct{ routed }

// ReturnPairVariant is a purchase followed by a return to the seller.
type ReturnPairVariant struct{ routed }

// DestructionVariant is a purchase followed by the object's destruction.
type DestructionVariant struct{ routed }

// TheftOrLossVariant is a purchase followed by theft or loss. Lost is false
// for thefts.
type TheftOrLossVariant struct {
	routed
	Lost bool
}

// InventoryingVariant is an object the dealer bought and still held.
type InventoryingVariant struct{ routed }

// ClassificationError is returned by Route for a transaction tag with no
// ledger shape.
type ClassificationError struct {
	RecordNo string
	Tag      string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("record %s: unhandled transaction type %q", e.RecordNo, e.Tag)
}

// Route classifies rec by its transaction tag. Tags are compared
// case-sensitively after trimming and removing "[?]" markers.
func Route(rec *record.NormalizedSaleRecord) (Variant, error) {
	r := routed{rec: rec}
	switch tag := rec.TransactionTag(); tag {
	case record.TxSold:
		return SaleVariant{r}, nil
	case record.TxReturned:
		return ReturnPairVariant{r}, nil
	case record.TxDestroyed:
		return DestructionVariant{r}, nil
	case record.TxStolen:
		return TheftOrLossVariant{routed: r}, nil
	case record.TxLost:
		return TheftOrLossVariant{routed: r, Lost: true}, nil
	case record.TxUnsold:
		return InventoryingVariant{r}, nil
	default:
		return nil, &ClassificationError{RecordNo: rec.RecordNo, Tag: tag}
	}
}

// kindOf names a variant for logs and metrics.
func kindOf(v Variant) string {
	switch v := v.(type) {
	case SaleVariant:
		return "sold"
	case ReturnPairVariant:
		return "returned"
	case DestructionVariant:
		return "destroyed"
	case TheftOrLossVariant:
		if v.Lost {
			return "lost"
		}
		return "stolen"
	case InventoryingVariant:
		return "unsold"
	default:
		return "unknown"
	}
}
