package export

import (
	"encoding/json"
	"math/big"

	"github.com/c360studio/semprov/fraction"
	"github.com/c360studio/semprov/ledger"
	"github.com/c360studio/semprov/record"
	"github.com/c360studio/semprov/vocabulary/linkedart"
)

const timestampLayout = "2006-01-02T15:04:05Z"

func term(t linkedart.Term) *Node {
	return newNode(t.ID, linkedart.ClassType, t.Label)
}

func classifiedAs(n *Node, kinds ...linkedart.Kind) {
	for _, k := range kinds {
		if t, ok := linkedart.TypeFor(k); ok {
			n.add(linkedart.PropClassifiedAs, term(t))
		}
	}
}

func partyRef(p ledger.PartyRef) *Node {
	return newNode(p.URI, p.Class, p.Label)
}

func partyRefs(ps []ledger.PartyRef) []*Node {
	out := make([]*Node, 0, len(ps))
	for _, p := range ps {
		out = append(out, partyRef(p))
	}
	return out
}

func objectRef(o ledger.ObjectRef) *Node {
	return newNode(o.URI, linkedart.ClassHumanMadeObject, o.Label)
}

func activityRefs(uris []string) []*Node {
	out := make([]*Node, 0, len(uris))
	for _, u := range uris {
		out = append(out, newNode(u, linkedart.ClassActivity, ""))
	}
	return out
}

func number(r *big.Rat) json.Number {
	return json.Number(fraction.FormatAmount(r))
}

func timespan(ts *record.Timespan) *Node {
	if ts == nil {
		return nil
	}
	n := newNode("", linkedart.ClassTimeSpan, "")
	if ts.Name != "" {
		name := newNode("", linkedart.ClassName, "")
		name.set(linkedart.PropContent, ts.Name)
		n.add(linkedart.PropIdentifiedBy, name)
	}
	if !ts.Begin.IsZero() {
		n.set(linkedart.PropBeginOfTheBegin, ts.Begin.UTC().Format(timestampLayout))
	}
	if !ts.End.IsZero() {
		n.set(linkedart.PropEndOfTheEnd, ts.End.UTC().Format(timestampLayout))
	}
	return n
}

func notes(n *Node, ns []ledger.Note) {
	for _, note := range ns {
		lo := newNode("", linkedart.ClassLinguisticObject, "")
		lo.set(linkedart.PropContent, note.Content)
		classifiedAs(lo, note.Kinds...)
		n.add(linkedart.PropReferredToBy, lo)
	}
}

func statement(n *Node, content string) {
	if content == "" {
		return
	}
	lo := newNode("", linkedart.ClassLinguisticObject, "")
	lo.set(linkedart.PropContent, content)
	classifiedAs(lo, linkedart.KindNote)
	n.add(linkedart.PropReferredToBy, lo)
}

func money(m *ledger.Money) *Node {
	if m == nil || m.Amount == nil {
		return nil
	}
	n := newNode("", linkedart.ClassMonetaryAmount, m.Label)
	n.set(linkedart.PropValue, number(m.Amount))
	if m.Currency != "" {
		n.set(linkedart.PropCurrency, newNode("", linkedart.ClassCurrency, m.Currency))
	}
	return n
}

// ObjectNode maps an object to its document node.
func ObjectNode(o *ledger.HumanMadeObject) *Node {
	n := newNode(o.URI, linkedart.ClassHumanMadeObject, o.Label)
	if o.Title != "" {
		name := newNode("", linkedart.ClassName, "")
		name.set(linkedart.PropContent, o.Title)
		classifiedAs(name, linkedart.KindPrimaryName)
		n.add(linkedart.PropIdentifiedBy, name)
	}
	if o.KnoedlerNumber != "" {
		id := newNode("", linkedart.ClassIdentifier, "")
		id.set(linkedart.PropContent, o.KnoedlerNumber)
		classifiedAs(id, linkedart.KindLocalNumber)
		n.add(linkedart.PropIdentifiedBy, id)
	}
	if o.ObjectType != "" {
		n.add(linkedart.PropClassifiedAs, newNode("", linkedart.ClassType, o.ObjectType))
	}
	statement(n, o.Materials)
	statement(n, o.Dimensions)
	notes(n, o.Notes)
	if d := o.DestroyedBy; d != nil {
		dn := newNode(d.URI, linkedart.ClassDestruction, d.Label)
		dn.set(linkedart.PropTimespan, timespan(d.Timespan))
		notes(dn, d.Notes)
		if c := d.CausedBy; c != nil {
			cn := newNode(c.URI, linkedart.ClassEvent, c.Label)
			if c.Type != nil {
				cn.add(linkedart.PropClassifiedAs, term(*c.Type))
			}
			dn.add(linkedart.PropCausedBy, cn)
		}
		n.set(linkedart.PropDestroyedBy, dn)
	}
	return n
}

// PartyNode maps a person or group to its document node.
func PartyNode(p ledger.PartyRef) *Node {
	n := partyRef(p)
	if p.ULAN != "" {
		n.add(linkedart.PropExactMatch, newNode(linkedart.ULANNamespace+p.ULAN, p.Class, ""))
	}
	for _, name := range p.Names {
		nn := newNode("", linkedart.ClassName, "")
		nn.set(linkedart.PropContent, name)
		n.add(linkedart.PropIdentifiedBy, nn)
	}
	if p.Location != "" {
		n.set(linkedart.PropCurrentLocation, newNode("", linkedart.ClassPlace, p.Location))
	}
	return n
}

// EntryNode maps a provenance entry to its document node. The acquisition
// or activity, the payment and the right acquisition become parts.
func EntryNode(e *ledger.ProvEntry) *Node {
	n := newNode(e.URI, linkedart.ClassActivity, e.Label)
	classifiedAs(n, e.Kinds...)
	n.set(linkedart.PropTimespan, timespan(e.Timespan))
	if a := e.Acquisition; a != nil {
		n.add(linkedart.PropPart, acquisition(a))
	}
	if a := e.Activity; a != nil {
		n.add(linkedart.PropPart, activity(a))
	}
	if p := e.Payment; p != nil {
		n.add(linkedart.PropPart, payment(p))
	}
	if r := e.Rights; r != nil && r.Establishes != nil {
		ra := newNode("", linkedart.ClassRightAcquisition, "")
		ra.set(linkedart.PropEstablishes, right(r.Establishes))
		n.add(linkedart.PropPart, ra)
	}
	n.set(linkedart.PropEndsBeforeStartOf, activityRefs(e.EndsBeforeStartOf))
	n.set(linkedart.PropStartsAfterEndOf, activityRefs(e.StartsAfterEndOf))
	notes(n, e.Notes)
	return n
}

func acquisition(a *ledger.Acquisition) *Node {
	n := newNode(a.URI, linkedart.ClassAcquisition, a.Label)
	for _, o := range a.Objects {
		n.add(linkedart.PropTransferredTitleOf, objectRef(o))
	}
	n.set(linkedart.PropTransferredFrom, partyRefs(a.From))
	n.set(linkedart.PropTransferredTo, partyRefs(a.To))
	n.set(linkedart.PropTimespan, timespan(a.Timespan))
	return n
}

func activity(a *ledger.Activity) *Node {
	n := newNode(a.URI, linkedart.ClassFor(a.Kind), a.Label)
	classifiedAs(n, a.Kind)
	n.set(linkedart.PropCarriedOutBy, partyRefs(a.CarriedOutBy))
	if a.Encountered != nil {
		n.add(linkedart.PropEncountered, objectRef(*a.Encountered))
	}
	if a.CustodyOf != nil {
		n.add(linkedart.PropCustodyOf, objectRef(*a.CustodyOf))
	}
	if a.CustodyFrom != nil {
		n.add(linkedart.PropCustodyFrom, partyRef(*a.CustodyFrom))
	}
	n.set(linkedart.PropTimespan, timespan(a.Timespan))
	notes(n, a.Notes)
	return n
}

func payment(p *ledger.Payment) *Node {
	n := newNode(p.URI, linkedart.ClassPayment, p.Label)
	n.set(linkedart.PropPaidAmount, money(p.Amount))
	n.set(linkedart.PropPaidFrom, partyRefs(p.PaidFrom))
	n.set(linkedart.PropPaidTo, partyRefs(p.PaidTo))
	n.set(linkedart.PropCarriedOutBy, partyRefs(p.CarriedOutBy))
	for _, part := range p.Parts {
		n.add(linkedart.PropPart, payment(part))
	}
	return n
}

func right(r *ledger.OwnershipRight) *Node {
	n := newNode("", linkedart.ClassRight, r.Label)
	classifiedAs(n, linkedart.KindOwnershipRight)
	if r.AppliesTo != nil {
		n.add(linkedart.PropAppliesTo, objectRef(*r.AppliesTo))
	}
	if r.PossessedBy != nil {
		n.add(linkedart.PropPossessedBy, partyRef(*r.PossessedBy))
	}
	if r.Percent != nil {
		dim := newNode("", linkedart.ClassDimension, "")
		dim.set(linkedart.PropValue, number(r.Percent))
		dim.set(linkedart.PropUnit, newNode(linkedart.PercentUnit.ID, linkedart.ClassMeasurementUnit, linkedart.PercentUnit.Label))
		n.add(linkedart.PropDimension, dim)
	}
	for _, part := range r.Parts {
		n.add(linkedart.PropPart, right(part))
	}
	return n
}
