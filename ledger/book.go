package ledger

import "github.com/c360studio/semprov/vocabulary/linkedart"

// Book accumulates the ledgers of a run. Entities are keyed by URI: rows of
// a multi-object transaction mint the same entry URI and are merged into a
// single entry whose acquisition lists every object. Scalar fields keep the
// first value seen; lists are unioned.
type Book struct {
	entries map[string]*ProvEntry
	objects map[string]*HumanMadeObject
	parties map[string]PartyRef

	entryOrder  []string
	objectOrder []string
	partyOrder  []string
}

// NewBook returns an empty book.
func NewBook() *Book {
	return &Book{
		entries: make(map[string]*ProvEntry),
		objects: make(map[string]*HumanMadeObject),
		parties: make(map[string]PartyRef),
	}
}

// Add merges one record's ledger into the book.
func (b *Book) Add(l *Ledger) {
	if l == nil {
		return
	}
	b.addObject(l.Object)
	for _, e := range l.Entries {
		b.addEntry(e)
	}
	for _, p := range l.Parties {
		if _, ok := b.parties[p.URI]; ok {
			continue
		}
		b.parties[p.URI] = p
		b.partyOrder = append(b.partyOrder, p.URI)
	}
}

func (b *Book) addObject(o *HumanMadeObject) {
	cur, ok := b.objects[o.URI]
	if !ok {
		b.objects[o.URI] = o
		b.objectOrder = append(b.objectOrder, o.URI)
		return
	}
	for _, r := range o.Records {
		cur.Records = appendUnique(cur.Records, r)
	}
	cur.Notes = mergeNotes(cur.Notes, o.Notes)
	if cur.DestroyedBy == nil {
		cur.DestroyedBy = o.DestroyedBy
	}
}

func (b *Book) addEntry(e *ProvEntry) {
	cur, ok := b.entries[e.URI]
	if !ok {
		b.entries[e.URI] = e
		b.entryOrder = append(b.entryOrder, e.URI)
		return
	}
	if cur.Timespan == nil {
		cur.Timespan = e.Timespan
	}
	if cur.Payment == nil {
		cur.Payment = e.Payment
	}
	if cur.Rights == nil {
		cur.Rights = e.Rights
	}
	switch {
	case cur.Acquisition == nil && cur.Activity == nil:
		cur.Acquisition, cur.Activity = e.Acquisition, e.Activity
	case cur.Acquisition != nil && e.Acquisition != nil:
		mergeAcquisition(cur.Acquisition, e.Acquisition)
	}
	for _, k := range e.Kinds {
		if !hasKind(cur, k) {
			cur.Kinds = append(cur.Kinds, k)
		}
	}
	for _, u := range e.EndsBeforeStartOf {
		cur.EndsBeforeStartOf = appendUnique(cur.EndsBeforeStartOf, u)
	}
	for _, u := range e.StartsAfterEndOf {
		cur.StartsAfterEndOf = appendUnique(cur.StartsAfterEndOf, u)
	}
	cur.Notes = mergeNotes(cur.Notes, e.Notes)
}

func mergeAcquisition(dst, src *Acquisition) {
	for _, o := range src.Objects {
		found := false
		for _, have := range dst.Objects {
			if have.URI == o.URI {
				found = true
				break
			}
		}
		if !found {
			dst.Objects = append(dst.Objects, o)
		}
	}
	dst.From = mergeParties(dst.From, src.From)
	dst.To = mergeParties(dst.To, src.To)
}

func mergeParties(dst, src []PartyRef) []PartyRef {
	for _, p := range src {
		found := false
		for _, have := range dst {
			if have.URI == p.URI {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, p)
		}
	}
	return dst
}

func mergeNotes(dst, src []Note) []Note {
	for _, n := range src {
		found := false
		for _, have := range dst {
			if have.Content == n.Content {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, n)
		}
	}
	return dst
}

func hasKind(e *ProvEntry, k linkedart.Kind) bool {
	for _, have := range e.Kinds {
		if have == k {
			return true
		}
	}
	return false
}

// Entries returns the merged entries in the order they were first added.
func (b *Book) Entries() []*ProvEntry {
	out := make([]*ProvEntry, 0, len(b.entryOrder))
	for _, u := range b.entryOrder {
		out = append(out, b.entries[u])
	}
	return out
}

// Objects returns the merged objects in the order they were first added.
func (b *Book) Objects() []*HumanMadeObject {
	out := make([]*HumanMadeObject, 0, len(b.objectOrder))
	for _, u := range b.objectOrder {
		out = append(out, b.objects[u])
	}
	return out
}

// Parties returns every party in the order they were first named.
func (b *Book) Parties() []PartyRef {
	out := make([]PartyRef, 0, len(b.partyOrder))
	for _, u := range b.partyOrder {
		out = append(out, b.parties[u])
	}
	return out
}

// Entry returns the entry with uri, or nil.
func (b *Book) Entry(uri string) *ProvEntry {
	return b.entries[uri]
}

// Len returns the number of entries, objects and parties.
func (b *Book) Len() (entries, objects, parties int) {
	return len(b.entries), len(b.objects), len(b.parties)
}
