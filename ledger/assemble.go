package ledger

import (
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/c360studio/semprov/fraction"
	"github.com/c360studio/semprov/record"
	"github.com/c360studio/semprov/vocabulary/linkedart"
)

type assembler struct {
	rc     *RunContext
	rec    *record.NormalizedSaleRecord
	object *HumanMadeObject
	ledger *Ledger
	seen   map[string]bool
}

// leg describes one side of a dealer transaction.
type leg struct {
	dir          Direction
	date         record.Date
	participants []record.Party
	price        *record.PriceInfo
	shared       []record.Party
	returning    bool
}

// Assemble builds the ledger entities for one routed record.
func Assemble(rc *RunContext, v Variant) *Ledger {
	rec := v.Source()
	a := &assembler{
		rc:   rc,
		rec:  rec,
		seen: make(map[string]bool),
		ledger: &Ledger{
			Record: rec.RecordNo,
			Key:    rec.Key(),
		},
	}
	a.object = a.buildObject()
	a.ledger.Object = a.object

	switch v := v.(type) {
	case SaleVariant:
		a.sold(false)
	case ReturnPairVariant:
		a.sold(true)
	case DestructionVariant:
		a.destroyed()
	case TheftOrLossVariant:
		a.theftOrLoss(v.Lost)
	case InventoryingVariant:
		a.inventoried()
	}
	return a.ledger
}

func (a *assembler) buildObject() *HumanMadeObject {
	rec := a.rec
	key := a.rc.Resolver.ObjectKey(rec.RecordNo, rec.Object.KnoedlerNumber)
	o := &HumanMadeObject{
		URI:            a.rc.Minter.Project(key...),
		Title:          rec.Object.Title,
		KnoedlerNumber: rec.Object.KnoedlerNumber,
		ObjectType:     rec.Object.ObjectType,
		Materials:      rec.Object.Materials,
		Dimensions:     rec.Object.Dimensions,
		Records:        []string{rec.RecordNo},
	}
	switch {
	case rec.Object.Title != "":
		o.Label = rec.Object.Title
	case rec.Object.KnoedlerNumber != "":
		o.Label = fmt.Sprintf("%s Stock Number %s", a.rc.Dealer.ShortName, rec.Object.KnoedlerNumber)
	default:
		o.Label = "Object " + rec.RecordNo
	}
	if problem, ok := a.rc.Problematic[rec.Key()]; ok {
		o.Notes = append(o.Notes, Note{
			Content: problem,
			Kinds:   []linkedart.Kind{linkedart.KindNote, linkedart.KindProblematic},
		})
	}
	return o
}

// shortTitle is the object's title cut to 100 characters for labels.
func (a *assembler) shortTitle() string {
	t := a.object.Label
	if utf8.RuneCountInString(t) <= 100 {
		return t
	}
	r := []rune(t)
	return string(r[:99]) + "…"
}

func (a *assembler) quotedTitle() string {
	return "“" + a.shortTitle() + "”"
}

// txKey is the key of the provenance entry for one side of the record.
// Multi-object transactions share one entry keyed by their identifier list.
func (a *assembler) txKey(dir Direction) []string {
	if ids, ok := a.multiObjectIDs(dir); ok {
		return []string{"TX-MULTI", string(dir), ids}
	}
	b := a.rec.Book
	return []string{"TX", string(dir), b.StockBookNo, b.PageNumber, b.RowNumber}
}

// multiObjectIDs looks for a "for numbers" note on the dealer's share first,
// then on the price.
func (a *assembler) multiObjectIDs(dir Direction) (string, bool) {
	share, price := a.rec.PurchaseDealerShare, a.rec.Purchase
	if dir == Out {
		share, price = a.rec.SaleDealerShare, a.rec.Sale
	}
	if ids, ok := share.MultiObjectIDs(); ok {
		return ids, true
	}
	return price.MultiObjectIDs()
}

func (a *assembler) txURI(dir Direction) string {
	return a.rc.Minter.Project(a.txKey(dir)...)
}

func (a *assembler) add(e *ProvEntry) *ProvEntry {
	a.ledger.Entries = append(a.ledger.Entries, e)
	return e
}

// provEntry builds the entry for one side of a dealer transaction: title
// moves from the sellers to the dealer and any co-buyers, or from the dealer
// and co-owners to the buyers.
func (a *assembler) provEntry(l leg) *ProvEntry {
	parenthetical := a.rec.Parenthetical(l.date)
	kinds := []linkedart.Kind{linkedart.KindProvenanceEntry}
	if l.returning {
		kinds = []linkedart.Kind{linkedart.KindSaleAsReturn, linkedart.KindProvenanceEntry}
	}
	e := &ProvEntry{
		URI:       a.txURI(l.dir),
		Kinds:     kinds,
		Direction: l.dir,
		Timespan:  l.date.Timespan(),
	}

	role, sharedRole := "buyer", "shared-seller"
	if l.dir == In {
		role, sharedRole = "seller", "shared-buyer"
	}
	people := a.parties(l.participants, role)
	shared := a.parties(l.shared, sharedRole)
	group := append([]PartyRef{a.rc.DealerRef()}, shared...)
	a.addParty(group[0])

	split, err := a.split(l, shared)
	if err != nil {
		a.rc.Counters.shareError()
		a.rc.logger().Warn("Ownership shares abandoned",
			"record", a.rec.RecordNo,
			"direction", l.dir,
			"error", err)
	} else {
		if l.dir == In && len(shared) > 0 {
			e.Rights = a.rights(split)
		}
		e.Payment = a.payment(e.URI, l, split, people, group, parenthetical)
	}

	from, to := people, group
	if l.dir == Out {
		from, to = group, people
	}
	a.acquisition(e, l, from, to, parenthetical)
	return a.add(e)
}

// split divides the leg's price among the dealer and the co-owners. The
// dealer holds whatever the co-owners do not.
func (a *assembler) split(l leg, shared []PartyRef) (*fraction.Result[PartyRef], error) {
	var total *big.Rat
	if l.price != nil {
		amount, err := fraction.ParseAmount(l.price.Amount)
		if err != nil {
			a.rc.logger().Warn("Unparseable price", "record", a.rec.RecordNo, "error", err)
		}
		total = amount
	}

	shares := make([]fraction.Share[PartyRef], 0, len(shared))
	for i, p := range shared {
		frac, err := fraction.ParseShare(l.shared[i].Share)
		if err != nil {
			return nil, &fraction.InvalidShareError{Holder: p.Label, Reason: err.Error()}
		}
		shares = append(shares, fraction.Share[PartyRef]{Holder: p, Fraction: frac})
	}
	return fraction.Split(total, shares)
}

func (a *assembler) rights(split *fraction.Result[PartyRef]) *RightAcquisition {
	obj := a.object.Ref()
	total := &OwnershipRight{
		Label:     "Total Right of Ownership of " + a.quotedTitle(),
		AppliesTo: &obj,
	}
	dealer := a.rc.DealerRef()
	total.Parts = append(total.Parts, ownershipRight(split.Residual, dealer))
	for _, p := range split.Parts {
		total.Parts = append(total.Parts, ownershipRight(p.Fraction, p.Holder))
	}
	return &RightAcquisition{Establishes: total}
}

func ownershipRight(frac *big.Rat, holder PartyRef) *OwnershipRight {
	h := holder
	return &OwnershipRight{
		Label:       fmt.Sprintf("%s ownership by %s", fraction.String(frac), holder.Label),
		PossessedBy: &h,
		Percent:     fraction.Percent(frac),
	}
}

// payment builds the leg's payment. There is none without a price. With
// co-owners, the payment is split into share parts, the dealer's first.
func (a *assembler) payment(txURI string, l leg, split *fraction.Result[PartyRef], people, group []PartyRef, parenthetical string) *Payment {
	if !split.HasAmounts() {
		return nil
	}
	currency := ""
	if l.price != nil {
		currency = l.price.Currency
	}
	p := &Payment{
		URI:          txURI + "-Payment",
		Label:        fmt.Sprintf("Payment for %s (%s)", a.quotedTitle(), parenthetical),
		Amount:       NewMoney(split.Total, currency),
		CarriedOutBy: group,
	}
	if l.dir == In {
		p.PaidFrom, p.PaidTo = group, people
	} else {
		p.PaidFrom, p.PaidTo = people, group
	}
	if len(split.Parts) == 0 {
		return p
	}

	type share struct {
		holder PartyRef
		frac   *big.Rat
		amount *big.Rat
	}
	shares := []share{{group[0], split.Residual, split.ResidualAmount}}
	for _, part := range split.Parts {
		shares = append(shares, share{part.Holder, part.Fraction, part.Amount})
	}
	for i, s := range shares {
		money := NewMoney(s.amount, currency)
		money.Label = fraction.ShareLabel(s.amount, s.frac, split.Total)
		if currency != "" {
			money.Label += " " + currency
		}
		part := &Payment{
			URI:    fmt.Sprintf("%s-Payment-%d-share", txURI, i),
			Label:  fmt.Sprintf("%s share of payment for %s (%s)", s.holder.Label, a.quotedTitle(), parenthetical),
			Amount: money,
		}
		if l.dir == In {
			part.PaidFrom = []PartyRef{s.holder}
		} else {
			part.PaidTo = []PartyRef{s.holder}
		}
		p.Parts = append(p.Parts, part)
	}
	return p
}

func (a *assembler) acquisition(e *ProvEntry, l leg, from, to []PartyRef, parenthetical string) {
	b := a.rec.Book
	short := a.rc.Dealer.ShortName
	dirLabel := short + " sale"
	switch {
	case l.returning:
		dirLabel = short + " return"
	case l.dir == In:
		dirLabel = short + " purchase"
	}

	acq := &Acquisition{
		URI:     a.rc.Minter.Project("ACQ", string(l.dir), b.StockBookNo, b.PageNumber, b.RowNumber),
		Label:   fmt.Sprintf("%s of %s (%s)", dirLabel, a.rec.RecordNo, parenthetical),
		Objects: []ObjectRef{a.object.Ref()},
		From:    from,
		To:      to,
	}
	e.Label = acq.Label
	if ids, ok := a.multiObjectIDs(l.dir); ok {
		e.Label = fmt.Sprintf("%s of multiple objects %s (%s)", dirLabel, ids, parenthetical)
	}
	e.Acquisition = acq
}

// link orders two entries in time.
func link(before, after *ProvEntry) {
	before.EndsBeforeStartOf = appendUnique(before.EndsBeforeStartOf, after.URI)
	after.StartsAfterEndOf = appendUnique(after.StartsAfterEndOf, before.URI)
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}

func (a *assembler) incoming() *ProvEntry {
	r := a.rec
	in := a.provEntry(leg{
		dir:          In,
		date:         r.EntryDate,
		participants: r.PurchaseSellers,
		price:        r.Purchase,
		shared:       r.PurchaseBuyers,
	})
	a.previousOwners(in)
	return in
}

func (a *assembler) sold(returning bool) {
	r := a.rec
	in := a.incoming()

	buyers := r.SaleBuyers
	date := r.SaleDate
	if returning {
		if len(buyers) == 0 {
			buyers = r.PurchaseSellers
		}
		if date.IsZero() {
			date = r.EntryDate
		}
	}
	out := a.provEntry(leg{
		dir:          Out,
		date:         date,
		participants: buyers,
		price:        r.Sale,
		shared:       r.PurchaseBuyers,
		returning:    returning,
	})
	link(in, out)
	a.subsequentOwners(out)
}
