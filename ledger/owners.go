package ledger

import (
	"fmt"
	"strings"

	"github.com/c360studio/semprov/vocabulary/linkedart"
)

// previousOwners chains a procurement for each prior owner in front of the
// incoming entry. Each procurement ends before the next one starts, and the
// last ends before the dealer's purchase.
func (a *assembler) previousOwners(in *ProvEntry) {
	owners := a.rec.PrevOwners
	if len(owners) == 0 {
		return
	}
	key := a.txKey(In)
	var prev *ProvEntry
	for i, p := range owners {
		owner := a.party(p, fmt.Sprintf("prev_own_%d", i+1))
		e := a.add(a.procurement(key, fmt.Sprintf("prev-owner-%d", i+1), "leading to the previous ownership of", owner, "Previous"))
		if prev != nil {
			link(prev, e)
		}
		prev = e
	}
	link(prev, in)
}

// subsequentOwners adds procurements after the outgoing entry: one for the
// recorded post-sale owner, and one leading to the object's current
// location.
func (a *assembler) subsequentOwners(out *ProvEntry) {
	key := a.txKey(Out)
	if p := a.rec.PostOwner; p != nil && !p.IsEmpty() {
		owner := a.party(*p, "post_own_1")
		e := a.add(a.procurement(key, "post-owner-1", "following the sale of", owner, "Subsequent"))
		link(out, e)
	}

	loc := a.rec.PresentLocation
	if loc == nil || (loc.Institution == "" && loc.Geography == "") {
		return
	}
	if strings.Contains(loc.Geography, "Destroyed ") {
		a.object.Notes = append(a.object.Notes, Note{Content: loc.Geography, Kinds: []linkedart.Kind{linkedart.KindNote}})
		return
	}
	owner := a.institution(loc)
	e := a.procurement(key, "present-location", "leading to the current location of", owner, "Subsequent")
	e.Label = "Procurement leading to the currently known location of " + a.quotedTitle()
	if loc.AccessionNo != "" {
		e.Notes = append(e.Notes, Note{Content: "Accession number " + loc.AccessionNo})
	}
	if loc.Note != "" {
		e.Notes = append(e.Notes, Note{Content: loc.Note, Kinds: []linkedart.Kind{linkedart.KindNote}})
	}
	a.add(e)
	link(out, e)
}

// procurement is an undated entry in which owner acquires the object.
func (a *assembler) procurement(key []string, suffix, rel string, owner PartyRef, modifier string) *ProvEntry {
	parts := append(append([]string(nil), key...), suffix)
	uri := a.rc.Minter.Project(parts...)
	b := a.rec.Book
	label := fmt.Sprintf("Provenance Entry %s object identified in book %s, page %s, row %s", rel, b.StockBookNo, b.PageNumber, b.RowNumber)
	if key[0] == "TX-MULTI" {
		label = fmt.Sprintf("Provenance Entry %s objects %s", rel, key[2])
	}
	return &ProvEntry{
		URI:   uri,
		Label: label,
		Kinds: []linkedart.Kind{linkedart.KindProvenanceEntry},
		Acquisition: &Acquisition{
			Label:   fmt.Sprintf("%s Acquisition of: %s", modifier, a.quotedTitle()),
			Objects: []ObjectRef{a.object.Ref()},
			To:      []PartyRef{owner},
		},
	}
}
