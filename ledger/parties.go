package ledger

import (
	"fmt"
	"strings"

	"github.com/c360studio/semprov/record"
	"github.com/c360studio/semprov/vocabulary/linkedart"
)

// party mints a reference for a person named in a record. People with a
// ULAN id or a clean authority name are shared across projects; anyone else
// is scoped to the record and the role they played in it.
func (a *assembler) party(p record.Party, role string) PartyRef {
	ref := PartyRef{
		Label:    p.Label(),
		Class:    linkedart.ClassPerson,
		Location: p.Location,
	}
	for _, n := range []string{p.AuthName, p.Name} {
		if n != "" {
			ref.Names = append(ref.Names, n)
		}
	}

	ulan := strings.TrimSpace(p.ULAN)
	switch {
	case ulan != "" && ulan != "0":
		ref.ULAN = ulan
		ref.URI = a.rc.Minter.Shared("PERSON", "ULAN", ulan)
	case p.AuthName != "" && !strings.Contains(p.AuthName, "["):
		ref.URI = a.rc.Minter.Shared("PERSON", "AUTHNAME", p.AuthName)
	default:
		ref.URI = a.rc.Minter.Project("PERSON", "PI_REC_NO", a.rec.RecordNo, role)
	}
	a.addParty(ref)
	return ref
}

// parties mints references for a list of people; the role is numbered from
// one ("seller_1", "seller_2", ...).
func (a *assembler) parties(ps []record.Party, role string) []PartyRef {
	refs := make([]PartyRef, 0, len(ps))
	for i, p := range ps {
		refs = append(refs, a.party(p, fmt.Sprintf("%s_%d", role, i+1)))
	}
	return refs
}

func (a *assembler) addParty(ref PartyRef) {
	if a.seen[ref.URI] {
		return
	}
	a.seen[ref.URI] = true
	a.ledger.Parties = append(a.ledger.Parties, ref)
}

// institution mints the current owner named by a present location.
func (a *assembler) institution(loc *record.Location) PartyRef {
	ref := PartyRef{Class: linkedart.ClassGroup, Location: loc.Geography}
	switch {
	case loc.Institution != "" && loc.Geography != "":
		ref.Label = fmt.Sprintf("%s (%s)", loc.Institution, loc.Geography)
		ref.Names = []string{loc.Institution}
		ref.URI = a.rc.Minter.Shared("ORGANIZATION", "NAME", loc.Institution, "PLACE", loc.Geography)
	case loc.Institution != "":
		ref.Label = loc.Institution
		ref.Names = []string{loc.Institution}
		ref.URI = a.rc.Minter.Shared("ORGANIZATION", "NAME", loc.Institution)
	default:
		k := a.rec.Key()
		ref.Label = "(Anonymous organization)"
		ref.URI = a.rc.Minter.Shared("ORGANIZATION", "PRESENT-OWNER", k.Catalog, k.Lot, k.Date)
	}
	a.addParty(ref)
	return ref
}
