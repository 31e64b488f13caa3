package record

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Direction says whether a citation points at an earlier or a later sale.
type Direction string

const (
	// Prev cites an earlier sale of the same object.
	Prev Direction = "prev"
	// Post cites a later sale of the same object.
	Post Direction = "post"
)

// UnidentifiedCatalog marks a citation whose sale catalog is unknown.
const UnidentifiedCatalog = "NA"

// ErrUnparseableCitation is returned when a free-text citation cannot be
// turned into a sale key.
var ErrUnparseableCitation = errors.New("unparseable citation")

// ErrUnidentifiedSale is returned for citations of a sale whose catalog is
// unknown. The citation still yields a note.
var ErrUnidentifiedSale = errors.New("unidentified sale")

// Citation is a reference from one record to another appearance of the same
// object. Either the structured fields or Text are set.
type Citation struct {
	Direction Direction `json:"direction"`
	Catalog   string    `json:"cat,omitempty"`
	Lot       string    `json:"lot,omitempty"`
	Date      string    `json:"date,omitempty"`
	Text      string    `json:"text,omitempty"`
}

// citationText matches forms such as "Br-1234 0056 (1850-03-01)" and
// "Br-1234, lot 56 (1850)".
var citationText = regexp.MustCompile(`^\s*([A-Za-z]{1,3}-[A-Za-z0-9]+|[A-Za-z0-9-]+)[,;]?\s+(?:[Ll]ot\s+)?([0-9A-Za-z.\[\]]+)\s*\(([^)]+)\)\s*\.?\s*$`)

// Key resolves the citation to a sale key. Unidentified catalogs return
// ErrUnidentifiedSale, text that does not match returns
// ErrUnparseableCitation. In both cases Note gives the text to preserve.
func (c Citation) Key() (SaleRecordKey, error) {
	cat, lot, date := strings.TrimSpace(c.Catalog), strings.TrimSpace(c.Lot), strings.TrimSpace(c.Date)
	if cat == "" && lot == "" && date == "" && c.Text != "" {
		m := citationText.FindStringSubmatch(c.Text)
		if m == nil {
			return SaleRecordKey{}, fmt.Errorf("%w: %q", ErrUnparseableCitation, c.Text)
		}
		cat, lot, date = m[1], m[2], strings.TrimSpace(m[3])
	}
	if cat == UnidentifiedCatalog {
		return SaleRecordKey{}, ErrUnidentifiedSale
	}
	if cat == "" || lot == "" || date == "" {
		return SaleRecordKey{}, fmt.Errorf("%w: missing catalog, lot or date", ErrUnparseableCitation)
	}
	return SaleRecordKey{Catalog: cat, Lot: lot, Date: date}, nil
}

// Note is the text kept on the object when the citation yields no edge.
func (c Citation) Note() string {
	if strings.TrimSpace(c.Catalog) == UnidentifiedCatalog {
		return fmt.Sprintf("Also sold in an unidentified sale: %s (%s)", c.Lot, c.Date)
	}
	if c.Text != "" {
		return c.Text
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s (%s)", c.Catalog, c.Lot, c.Date))
}
