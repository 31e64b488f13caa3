package record

import (
	"fmt"
	"regexp"
)

// SaleRecordKey identifies one bookkeeping occurrence of an object: a catalog
// or stock book, a lot or row, and a date.
type SaleRecordKey struct {
	Catalog string `json:"catalog"`
	Lot     string `json:"lot"`
	Date    string `json:"date"`
}

// Less orders keys lexicographically by catalog, lot and date.
func (k SaleRecordKey) Less(o SaleRecordKey) bool {
	if k.Catalog != o.Catalog {
		return k.Catalog < o.Catalog
	}
	if k.Lot != o.Lot {
		return k.Lot < o.Lot
	}
	return k.Date < o.Date
}

func (k SaleRecordKey) String() string {
	return fmt.Sprintf("%s %s (%s)", k.Catalog, k.Lot, k.Date)
}

// IsZero reports whether the key is unset.
func (k SaleRecordKey) IsZero() bool {
	return k == SaleRecordKey{}
}

var lotSuffix = regexp.MustCompile(`\[[a-z]\]$`)

// SharedLot returns the key with any per-object lot suffix removed, so that
// "0001[a]" and "0001[b]" count toward the same lot "0001".
func (k SaleRecordKey) SharedLot() SaleRecordKey {
	k.Lot = lotSuffix.ReplaceAllString(k.Lot, "")
	return k
}
