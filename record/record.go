// Package record defines the normalized sale/purchase record consumed by the
// ledger builders, along with its keys, parties, prices and citations.
package record

import (
	"strings"
)

// Transaction tags found in the stock books.
const (
	TxSold      = "Sold"
	TxDestroyed = "Destroyed"
	TxStolen    = "Stolen"
	TxLost      = "Lost"
	TxUnsold    = "Unsold"
	TxReturned  = "Returned"
)

// NormalizedSaleRecord is one row of a stock book or sale catalog after field
// extraction and renaming.
type NormalizedSaleRecord struct {
	// RecordNo is the unique project record number (pi_record_no).
	RecordNo     string `json:"pi_record_no"`
	StarRecordNo string `json:"star_record_no,omitempty"`

	Book   BookRef   `json:"book_record"`
	Object ObjectRef `json:"object"`

	EntryDate Date `json:"entry_date"`
	SaleDate  Date `json:"sale_date"`

	Purchase            *PriceInfo `json:"purchase,omitempty"`
	PurchaseDealerShare *PriceInfo `json:"purchase_knoedler_share,omitempty"`
	Sale                *PriceInfo `json:"sale,omitempty"`
	SaleDealerShare     *PriceInfo `json:"sale_knoedler_share,omitempty"`

	PurchaseSellers []Party `json:"purchase_seller,omitempty"`
	// PurchaseBuyers are the co-buyers who joined the dealer in the purchase.
	PurchaseBuyers []Party `json:"purchase_buyer,omitempty"`
	SaleBuyers     []Party `json:"sale_buyer,omitempty"`
	PrevOwners     []Party `json:"prev_own,omitempty"`
	PostOwner      *Party  `json:"post_owner,omitempty"`

	PresentLocation *Location  `json:"present_location,omitempty"`
	Citations       []Citation `json:"citations,omitempty"`
}

// BookRef locates the row in its source book.
type BookRef struct {
	StockBookNo   string `json:"stock_book_no"`
	PageNumber    string `json:"page_number"`
	RowNumber     string `json:"row_number"`
	Lot           string `json:"lot,omitempty"`
	Description   string `json:"description,omitempty"`
	VerbatimNotes string `json:"verbatim_notes,omitempty"`
	WorkingNote   string `json:"working_note,omitempty"`
	Transaction   string `json:"transaction"`
}

// ObjectRef describes the traded object as transcribed.
type ObjectRef struct {
	KnoedlerNumber string `json:"knoedler_number,omitempty"`
	Title          string `json:"title,omitempty"`
	ObjectType     string `json:"object_type,omitempty"`
	Materials      string `json:"materials,omitempty"`
	Dimensions     string `json:"dimensions,omitempty"`
}

// Party is a person or group named in a record.
type Party struct {
	Name     string `json:"name,omitempty"`
	AuthName string `json:"auth_name,omitempty"`
	ULAN     string `json:"ulan,omitempty"`
	Location string `json:"loc,omitempty"`
	// Share is the party's ownership fraction ("1/4", "0.25"), if any.
	Share string `json:"share,omitempty"`
}

// Label is the best display name for the party.
func (p Party) Label() string {
	switch {
	case p.AuthName != "":
		return p.AuthName
	case p.Name != "":
		return p.Name
	default:
		return "(Anonymous person)"
	}
}

// IsEmpty reports whether no identifying field is set.
func (p Party) IsEmpty() bool {
	ulan := strings.TrimSpace(p.ULAN)
	return p.Name == "" && p.AuthName == "" && (ulan == "" || ulan == "0")
}

// PriceInfo is a transcribed price with its free-text note.
type PriceInfo struct {
	Amount   string `json:"amount,omitempty"`
	Currency string `json:"currency,omitempty"`
	Note     string `json:"note,omitempty"`
}

// multiObjectMarker starts a price note that applies to several objects.
const multiObjectMarker = "for numbers "

// MultiObjectIDs returns the identifier list of a multi-object note, or
// false when the note does not describe a multi-object transaction.
func (p *PriceInfo) MultiObjectIDs() (string, bool) {
	if p == nil || !strings.HasPrefix(p.Note, multiObjectMarker) {
		return "", false
	}
	return strings.TrimSpace(p.Note[len(multiObjectMarker):]), true
}

// Location is the object's currently known location.
type Location struct {
	Geography   string `json:"geog,omitempty"`
	Institution string `json:"inst,omitempty"`
	AccessionNo string `json:"acc,omitempty"`
	Note        string `json:"note,omitempty"`
}

// TransactionTag returns the record's transaction tag with editorial
// uncertainty markers ("[?]") removed.
func (r *NormalizedSaleRecord) TransactionTag() string {
	return strings.TrimSpace(strings.ReplaceAll(r.Book.Transaction, "[?]", ""))
}

// Key returns the record's own sale key. Stock book rows have no lot, so the
// page and row stand in for it.
func (r *NormalizedSaleRecord) Key() SaleRecordKey {
	lot := r.Book.Lot
	if lot == "" {
		lot = r.Book.PageNumber + "." + r.Book.RowNumber
	}
	date := r.EntryDate.String()
	if date == "" {
		date = r.SaleDate.String()
	}
	return SaleRecordKey{Catalog: r.Book.StockBookNo, Lot: lot, Date: date}
}

// Parenthetical is the "(date; number)" suffix used in labels.
func (r *NormalizedSaleRecord) Parenthetical(d Date) string {
	date := d.String()
	if r.Object.KnoedlerNumber != "" {
		return date + "; " + r.Object.KnoedlerNumber
	}
	return date
}

// Notes returns the row's free-text notes in source order.
func (r *NormalizedSaleRecord) Notes() []string {
	var notes []string
	for _, n := range []string{r.Book.Description, r.Book.WorkingNote, r.Book.VerbatimNotes} {
		if n != "" {
			notes = append(notes, n)
		}
	}
	return notes
}
