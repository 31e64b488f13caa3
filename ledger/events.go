package ledger

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/c360studio/semprov/record"
	"github.com/c360studio/semprov/vocabulary/linkedart"
)

var destroyedNote = regexp.MustCompile(`[Dd]estroyed(?: (?:by|during) (\w+))?(?: in (\d{4})[.]?)?`)

// destroyed models a purchase followed by the object's destruction. There is
// no outgoing entry; the destruction hangs off the object.
func (a *assembler) destroyed() {
	a.incoming()

	note := a.rec.Book.VerbatimNotes
	d := &Destruction{
		URI:   a.object.URI + "-Destruction",
		Label: "Destruction of " + a.quotedTitle(),
	}
	d.Notes = a.rowNotes()

	if m := destroyedNote.FindStringSubmatch(note); m != nil {
		if m[2] != "" {
			year, _ := strconv.Atoi(m[2])
			d.Timespan = record.YearTimespan(year)
		}
		if method := m[1]; method != "" {
			ev := &Event{
				URI:   d.URI + "-Cause",
				Label: fmt.Sprintf("%s event causing the destruction of %s", capitalize(method), a.quotedTitle()),
			}
			if t, ok := linkedart.CauseType(method); ok {
				ev.Type = &t
			}
			d.CausedBy = ev
		}
	}
	if d.Timespan == nil {
		d.Timespan = a.rec.SaleDate.Timespan()
	}
	a.object.DestroyedBy = d
}

// rowNotes carries the row's free-text notes onto an event.
func (a *assembler) rowNotes() []Note {
	var notes []Note
	for _, n := range a.rec.Notes() {
		notes = append(notes, Note{Content: n, Kinds: []linkedart.Kind{linkedart.KindNote}})
	}
	return notes
}

// theftOrLoss models a purchase followed by the object leaving the dealer's
// custody without a sale.
func (a *assembler) theftOrLoss(lost bool) {
	in := a.incoming()

	labelType, kind := "Theft", linkedart.KindTheft
	if lost {
		labelType, kind = "Loss", linkedart.KindLoss
	}
	note := a.rec.Book.VerbatimNotes
	if strings.Contains(note, "Looted") || strings.Contains(note, "looted") {
		kind = linkedart.KindLooting
	}

	obj := a.object.Ref()
	dealer := a.rc.DealerRef()
	act := &Activity{
		URI:         fmt.Sprintf("%s-%s", a.object.URI, labelType),
		Label:       fmt.Sprintf("%s of %s", labelType, a.quotedTitle()),
		Kind:        kind,
		CustodyOf:   &obj,
		CustodyFrom: &dealer,
		Timespan:    noteDate(note),
	}
	act.Notes = a.rowNotes()

	out := a.add(&ProvEntry{
		URI:       a.txURI(Out),
		Label:     fmt.Sprintf("%s of %s", labelType, a.rec.RecordNo),
		Kinds:     []linkedart.Kind{linkedart.KindProvenanceEntry},
		Direction: Out,
		Timespan:  act.Timespan,
		Activity:  act,
	})
	link(in, out)
}

// inventoried models an object bought and still in stock: the dealer
// encountered it at the entry date.
func (a *assembler) inventoried() {
	a.incoming()

	b := a.rec.Book
	label := fmt.Sprintf("Inventorying of %s (%s)", a.rec.RecordNo, a.rec.Parenthetical(a.rec.EntryDate))
	obj := a.object.Ref()
	act := &Activity{
		URI:          a.rc.Minter.Project("INV", b.StockBookNo, b.PageNumber, b.RowNumber),
		Label:        label,
		Kind:         linkedart.KindInventorying,
		CarriedOutBy: []PartyRef{a.rc.DealerRef()},
		Encountered:  &obj,
		Timespan:     a.rec.EntryDate.Timespan(),
	}
	a.add(&ProvEntry{
		URI:       a.txURI(Out),
		Label:     label,
		Kinds:     []linkedart.Kind{linkedart.KindProvenanceEntry},
		Direction: Out,
		Activity:  act,
	})
}

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

var noteDatePattern = regexp.MustCompile(`(?i)\b(?:(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?\s+)?(1[5-9]\d\d|20\d\d)\b`)

// noteDate finds a "Mon YYYY" or "YYYY" date in a free-text note. Notes
// without one leave the event undated.
func noteDate(note string) *record.Timespan {
	m := noteDatePattern.FindStringSubmatch(note)
	if m == nil {
		return nil
	}
	year, _ := strconv.Atoi(m[2])
	if mon, ok := months[strings.ToLower(m[1])]; ok {
		return record.MonthTimespan(year, mon)
	}
	return record.YearTimespan(year)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
