// Package ledger turns normalized sale records into provenance ledger
// entities: provenance entries with their acquisitions, payments and
// ownership rights, and the inventory, theft, loss and destruction events
// that end a dealer's custody of an object.
//
// Records flow through three steps:
//
//	variant, err := ledger.Route(rec)  // classify the transaction tag
//	l := ledger.Assemble(rc, variant)  // build the entities for one record
//	book.Add(l)                        // merge into the run's accumulator
//
// Process runs all three and also feeds the record's citations into the
// post-sale graph held by the RunContext.
package ledger

import (
	"math/big"

	"github.com/c360studio/semprov/fraction"
	"github.com/c360studio/semprov/record"
	"github.com/c360studio/semprov/vocabulary/linkedart"
)

// Direction is the side of a dealer transaction: into or out of stock.
type Direction string

const (
	In  Direction = "In"
	Out Direction = "Out"
)

// PartyRef identifies a person or group taking part in a transaction.
type PartyRef struct {
	URI      string   `json:"id"`
	Label    string   `json:"label"`
	Class    string   `json:"class"`
	ULAN     string   `json:"ulan,omitempty"`
	Names    []string `json:"names,omitempty"`
	Location string   `json:"location,omitempty"`
}

func (p PartyRef) String() string {
	return p.Label
}

// ObjectRef points at a HumanMadeObject.
type ObjectRef struct {
	URI   string `json:"id"`
	Label string `json:"label"`
}

// Money is an exact monetary amount. Label is the presentation form.
type Money struct {
	Amount   *big.Rat `json:"-"`
	Currency string   `json:"currency,omitempty"`
	Label    string   `json:"label"`
}

// NewMoney returns a Money labeled with the rounded amount and currency.
func NewMoney(amount *big.Rat, currency string) *Money {
	label := fraction.FormatAmount(amount)
	if currency != "" {
		label += " " + currency
	}
	return &Money{Amount: amount, Currency: currency, Label: label}
}

// Note is a free-text statement, optionally classified.
type Note struct {
	Content string           `json:"content"`
	Kinds   []linkedart.Kind `json:"kinds,omitempty"`
}

// HumanMadeObject is the physical object traded in a record.
type HumanMadeObject struct {
	URI            string       `json:"id"`
	Label          string       `json:"label"`
	Title          string       `json:"title,omitempty"`
	KnoedlerNumber string       `json:"knoedler_number,omitempty"`
	ObjectType     string       `json:"object_type,omitempty"`
	Materials      string       `json:"materials,omitempty"`
	Dimensions     string       `json:"dimensions,omitempty"`
	Notes          []Note       `json:"notes,omitempty"`
	DestroyedBy    *Destruction `json:"destroyed_by,omitempty"`
	Records        []string     `json:"records,omitempty"`
}

// Ref returns a reference to the object.
func (o *HumanMadeObject) Ref() ObjectRef {
	return ObjectRef{URI: o.URI, Label: o.Label}
}

// ProvEntry is one provenance entry. Exactly one of Acquisition or Activity
// is set.
type ProvEntry struct {
	URI               string            `json:"id"`
	Label             string            `json:"label"`
	Kinds             []linkedart.Kind  `json:"kinds"`
	Direction         Direction         `json:"direction,omitempty"`
	Timespan          *record.Timespan  `json:"timespan,omitempty"`
	Payment           *Payment          `json:"payment,omitempty"`
	Rights            *RightAcquisition `json:"rights,omitempty"`
	Acquisition       *Acquisition      `json:"acquisition,omitempty"`
	Activity          *Activity         `json:"activity,omitempty"`
	EndsBeforeStartOf []string          `json:"ends_before_the_start_of,omitempty"`
	StartsAfterEndOf  []string          `json:"starts_after_the_end_of,omitempty"`
	Notes             []Note            `json:"notes,omitempty"`
}

// Acquisition transfers title of one or more objects.
type Acquisition struct {
	URI      string           `json:"id,omitempty"`
	Label    string           `json:"label"`
	Objects  []ObjectRef      `json:"objects"`
	From     []PartyRef       `json:"from,omitempty"`
	To       []PartyRef       `json:"to,omitempty"`
	Timespan *record.Timespan `json:"timespan,omitempty"`
}

// Payment is a price paid. Parts hold the per-party shares, which sum to
// Amount.
type Payment struct {
	URI          string     `json:"id"`
	Label        string     `json:"label"`
	Amount       *Money     `json:"amount,omitempty"`
	PaidFrom     []PartyRef `json:"paid_from,omitempty"`
	PaidTo       []PartyRef `json:"paid_to,omitempty"`
	CarriedOutBy []PartyRef `json:"carried_out_by,omitempty"`
	Parts        []*Payment `json:"parts,omitempty"`
}

// RightAcquisition establishes the total ownership right of an object.
type RightAcquisition struct {
	Establishes *OwnershipRight `json:"establishes"`
}

// OwnershipRight is a share of ownership. The total right has Parts and no
// holder; each part has a holder and a percentage.
type OwnershipRight struct {
	Label       string            `json:"label"`
	AppliesTo   *ObjectRef        `json:"applies_to,omitempty"`
	PossessedBy *PartyRef         `json:"possessed_by,omitempty"`
	Percent     *big.Rat          `json:"-"`
	Parts       []*OwnershipRight `json:"parts,omitempty"`
}

// Activity is a non-acquisition event recorded in a provenance entry:
// inventorying, theft, looting or loss.
type Activity struct {
	URI          string           `json:"id"`
	Label        string           `json:"label"`
	Kind         linkedart.Kind   `json:"kind"`
	CarriedOutBy []PartyRef       `json:"carried_out_by,omitempty"`
	Encountered  *ObjectRef       `json:"encountered,omitempty"`
	CustodyOf    *ObjectRef       `json:"custody_of,omitempty"`
	CustodyFrom  *PartyRef        `json:"custody_from,omitempty"`
	Timespan     *record.Timespan `json:"timespan,omitempty"`
	Notes        []Note           `json:"notes,omitempty"`
}

// Destruction ends an object's existence.
type Destruction struct {
	URI      string           `json:"id"`
	Label    string           `json:"label"`
	Timespan *record.Timespan `json:"timespan,omitempty"`
	Notes    []Note           `json:"notes,omitempty"`
	CausedBy *Event           `json:"caused_by,omitempty"`
}

// Event is a cause of a destruction, such as a fire.
type Event struct {
	URI   string          `json:"id"`
	Label string          `json:"label"`
	Type  *linkedart.Term `json:"type,omitempty"`
}

// Ledger is everything assembled from one record.
type Ledger struct {
	Record  string               `json:"record"`
	Key     record.SaleRecordKey `json:"key"`
	Object  *HumanMadeObject     `json:"object"`
	Entries []*ProvEntry         `json:"entries"`
	Parties []PartyRef           `json:"parties"`
}

// Entry returns the entry with uri, or nil.
func (l *Ledger) Entry(uri string) *ProvEntry {
	for _, e := range l.Entries {
		if e.URI == uri {
			return e
		}
	}
	return nil
}
