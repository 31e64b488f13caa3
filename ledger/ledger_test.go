package ledger

import (
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/semprov/graph"
	"github.com/c360studio/semprov/identity"
	"github.com/c360studio/semprov/record"
	"github.com/c360studio/semprov/vocabulary/linkedart"
)

func newRunContext() *RunContext {
	return NewRunContext(identity.NewMinter("", "knoedler"), nil)
}

func soldRecord() *record.NormalizedSaleRecord {
	return &record.NormalizedSaleRecord{
		RecordNo:  "12345",
		Book:      record.BookRef{StockBookNo: "3", PageNumber: "12", RowNumber: "4", Transaction: "Sold"},
		Object:    record.ObjectRef{KnoedlerNumber: "A1234", Title: "Landscape"},
		EntryDate: record.Date{Year: "1890", Month: "3", Day: "1"},
		SaleDate:  record.Date{Year: "1891", Month: "5"},
		Purchase:  &record.PriceInfo{Amount: "1000", Currency: "dollars"},
		Sale:      &record.PriceInfo{Amount: "[1,500]", Currency: "dollars"},
		PurchaseSellers: []record.Party{
			{Name: "Smith, John", AuthName: "Smith, John"},
		},
		PurchaseBuyers: []record.Party{
			{Name: "Boussod", Share: "1/4"},
			{Name: "Goupil", Share: "1/4"},
		},
		SaleBuyers: []record.Party{{Name: "Jones", ULAN: "500000001"}},
	}
}

func assemble(t *testing.T, rc *RunContext, rec *record.NormalizedSaleRecord) *Ledger {
	t.Helper()
	l, err := Process(rc, rec)
	require.NoError(t, err)
	return l
}

func percents(r *RightAcquisition) []string {
	var out []string
	for _, p := range r.Establishes.Parts {
		out = append(out, p.Percent.RatString())
	}
	return out
}

func sumParts(p *Payment) *big.Rat {
	sum := new(big.Rat)
	for _, part := range p.Parts {
		sum.Add(sum, part.Amount.Amount)
	}
	return sum
}

func TestRoute(t *testing.T) {
	tests := []struct {
		tag  string
		want string
	}{
		{"Sold", "sold"},
		{" Sold [?] ", "sold"},
		{"Returned", "returned"},
		{"Destroyed", "destroyed"},
		{"Stolen", "stolen"},
		{"Lost", "lost"},
		{"Unsold", "unsold"},
	}
	for _, tc := range tests {
		t.Run(tc.tag, func(t *testing.T) {
			v, err := Route(&record.NormalizedSaleRecord{Book: record.BookRef{Transaction: tc.tag}})
			require.NoError(t, err)
			assert.Equal(t, tc.want, kindOf(v))
		})
	}

	_, err := Route(&record.NormalizedSaleRecord{RecordNo: "9", Book: record.BookRef{Transaction: "sold"}})
	var ce *ClassificationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "sold", ce.Tag)
}

func TestProcess_UnknownTagIsSkipped(t *testing.T) {
	rc := newRunContext()
	rec := soldRecord()
	rec.Book.Transaction = "Exchanged"

	l, err := Process(rc, rec)
	assert.Nil(t, l)
	var ce *ClassificationError
	assert.True(t, errors.As(err, &ce))
	assert.Equal(t, 1.0, testutil.ToFloat64(rc.Counters.Records.WithLabelValues("skipped")))
}

func TestSold_SharedOwnership(t *testing.T) {
	rc := newRunContext()
	l := assemble(t, rc, soldRecord())
	m := rc.Minter

	in := l.Entry(m.Project("TX", "In", "3", "12", "4"))
	out := l.Entry(m.Project("TX", "Out", "3", "12", "4"))
	require.NotNil(t, in)
	require.NotNil(t, out)

	assert.Equal(t, "Knoedler purchase of 12345 (1890-03-01; A1234)", in.Label)
	assert.Equal(t, "Knoedler sale of 12345 (1891-05; A1234)", out.Label)
	assert.Equal(t, []string{out.URI}, in.EndsBeforeStartOf)
	assert.Equal(t, []string{in.URI}, out.StartsAfterEndOf)

	require.NotNil(t, in.Rights)
	assert.Equal(t, []string{"50", "25", "25"}, percents(in.Rights))
	assert.Equal(t, "1/2 ownership by M. Knoedler & Co.", in.Rights.Establishes.Parts[0].Label)
	assert.Equal(t, "Total Right of Ownership of “Landscape”", in.Rights.Establishes.Label)
	assert.Nil(t, out.Rights)

	require.NotNil(t, in.Payment)
	assert.Equal(t, in.URI+"-Payment", in.Payment.URI)
	require.Len(t, in.Payment.Parts, 3)
	assert.Equal(t, in.URI+"-Payment-0-share", in.Payment.Parts[0].URI)
	assert.Equal(t, "500", in.Payment.Parts[0].Amount.Amount.RatString())
	assert.Equal(t, "Boussod share of payment for “Landscape” (1890-03-01; A1234)", in.Payment.Parts[1].Label)
	assert.Zero(t, sumParts(in.Payment).Cmp(in.Payment.Amount.Amount))

	require.NotNil(t, out.Payment)
	assert.Equal(t, "1500", out.Payment.Amount.Amount.RatString())
	assert.Zero(t, sumParts(out.Payment).Cmp(out.Payment.Amount.Amount))

	// Title moves from the seller to the dealer group, then from the group
	// to the buyer.
	require.NotNil(t, in.Acquisition)
	assert.Equal(t, m.Shared("PERSON", "AUTHNAME", "Smith, John"), in.Acquisition.From[0].URI)
	assert.Len(t, in.Acquisition.To, 3)
	assert.Equal(t, m.Shared("ORGANIZATION", "ULAN", "500304270"), in.Acquisition.To[0].URI)
	assert.Equal(t, m.Project("PERSON", "PI_REC_NO", "12345", "shared-buyer_1"), in.Acquisition.To[1].URI)
	assert.Equal(t, m.Shared("PERSON", "ULAN", "500000001"), out.Acquisition.To[0].URI)
	assert.Equal(t, m.Project("ACQ", "In", "3", "12", "4"), in.Acquisition.URI)

	assert.Equal(t, 1.0, testutil.ToFloat64(rc.Counters.Transactions.WithLabelValues("sold")))
}

func TestSold_NonIntegralShareLabel(t *testing.T) {
	rc := newRunContext()
	rec := soldRecord()
	rec.PurchaseBuyers = []record.Party{{Name: "Boussod", Share: "1/3"}}

	l := assemble(t, rc, rec)
	in := l.Entry(rc.Minter.Project("TX", "In", "3", "12", "4"))
	require.NotNil(t, in.Payment)
	require.Len(t, in.Payment.Parts, 2)
	assert.Equal(t, "666.67 (2/3 of 1000) dollars", in.Payment.Parts[0].Amount.Label)
	assert.Equal(t, "333.33 (1/3 of 1000) dollars", in.Payment.Parts[1].Amount.Label)
	assert.Zero(t, sumParts(in.Payment).Cmp(big.NewRat(1000, 1)))
}

func TestSold_NoPriceNoPayment(t *testing.T) {
	rc := newRunContext()
	rec := soldRecord()
	rec.Purchase = nil
	rec.PurchaseBuyers = nil

	l := assemble(t, rc, rec)
	in := l.Entry(rc.Minter.Project("TX", "In", "3", "12", "4"))
	assert.Nil(t, in.Payment)
	assert.Nil(t, in.Rights)
	assert.NotNil(t, in.Acquisition)
}

func TestSold_InvalidSharesAbandonRights(t *testing.T) {
	rc := newRunContext()
	rec := soldRecord()
	rec.PurchaseBuyers = []record.Party{{Name: "Boussod", Share: "3/4"}, {Name: "Goupil", Share: "1/2"}}

	l := assemble(t, rc, rec)
	in := l.Entry(rc.Minter.Project("TX", "In", "3", "12", "4"))
	assert.Nil(t, in.Rights)
	assert.Nil(t, in.Payment)
	require.NotNil(t, in.Acquisition)
	assert.Len(t, in.Acquisition.To, 3)
	assert.Equal(t, 2.0, testutil.ToFloat64(rc.Counters.ShareErrors))
}

func TestSold_PreviousAndSubsequentOwners(t *testing.T) {
	rc := newRunContext()
	rec := soldRecord()
	rec.PrevOwners = []record.Party{{Name: "Early"}, {Name: "Later"}}
	rec.PostOwner = &record.Party{Name: "Collector"}
	rec.PresentLocation = &record.Location{Geography: "New York, NY", Institution: "Museum", AccessionNo: "1.2.3"}

	l := assemble(t, rc, rec)
	m := rc.Minter
	in := l.Entry(m.Project("TX", "In", "3", "12", "4"))
	out := l.Entry(m.Project("TX", "Out", "3", "12", "4"))
	p1 := l.Entry(m.Project("TX", "In", "3", "12", "4", "prev-owner-1"))
	p2 := l.Entry(m.Project("TX", "In", "3", "12", "4", "prev-owner-2"))
	post := l.Entry(m.Project("TX", "Out", "3", "12", "4", "post-owner-1"))
	present := l.Entry(m.Project("TX", "Out", "3", "12", "4", "present-location"))
	require.NotNil(t, p1)
	require.NotNil(t, p2)
	require.NotNil(t, post)
	require.NotNil(t, present)

	assert.Equal(t, []string{p2.URI}, p1.EndsBeforeStartOf)
	assert.Equal(t, []string{in.URI}, p2.EndsBeforeStartOf)
	assert.Contains(t, in.StartsAfterEndOf, p2.URI)
	assert.Equal(t, "Previous Acquisition of: “Landscape”", p1.Acquisition.Label)
	assert.Contains(t, out.EndsBeforeStartOf, post.URI)
	assert.Equal(t, "Subsequent Acquisition of: “Landscape”", post.Acquisition.Label)
	assert.Equal(t, "Procurement leading to the currently known location of “Landscape”", present.Label)
	assert.Equal(t, "Museum (New York, NY)", present.Acquisition.To[0].Label)
}

func TestMultiObjectEntryIsShared(t *testing.T) {
	rc := newRunContext()
	book := NewBook()
	for i, row := range []string{"4", "5", "6"} {
		rec := soldRecord()
		rec.RecordNo = "1234" + row
		rec.Book.RowNumber = row
		rec.Object.KnoedlerNumber = []string{"12", "13", "14"}[i]
		rec.PurchaseBuyers = nil
		rec.PurchaseDealerShare = &record.PriceInfo{Note: "for numbers 12,13,14"}
		book.Add(assemble(t, rc, rec))
	}

	uri := rc.Minter.Project("TX-MULTI", "In", "12,13,14")
	var matches int
	for _, e := range book.Entries() {
		if e.URI == uri {
			matches++
		}
	}
	require.Equal(t, 1, matches)

	e := book.Entry(uri)
	assert.Equal(t, "Knoedler purchase of multiple objects 12,13,14 (1890-03-01; 12)", e.Label)
	assert.Len(t, e.Acquisition.Objects, 3)

	// The outgoing side has no multi-object note, so each row keeps its own.
	assert.NotNil(t, book.Entry(rc.Minter.Project("TX", "Out", "3", "12", "5")))
	_, objects, _ := book.Len()
	assert.Equal(t, 3, objects)
}

func TestMultiObjectFallsBackToPriceNote(t *testing.T) {
	rc := newRunContext()
	rec := soldRecord()
	rec.Sale = &record.PriceInfo{Amount: "300", Note: "for numbers 7,8"}

	l := assemble(t, rc, rec)
	assert.NotNil(t, l.Entry(rc.Minter.Project("TX-MULTI", "Out", "7,8")))
}

func TestReturned(t *testing.T) {
	rc := newRunContext()
	rec := soldRecord()
	rec.Book.Transaction = "Returned"
	rec.SaleBuyers = nil
	rec.SaleDate = record.Date{}

	l := assemble(t, rc, rec)
	out := l.Entry(rc.Minter.Project("TX", "Out", "3", "12", "4"))
	require.NotNil(t, out)
	assert.Contains(t, out.Kinds, linkedart.KindSaleAsReturn)
	assert.Contains(t, out.Kinds, linkedart.KindProvenanceEntry)
	assert.Equal(t, "Knoedler return of 12345 (1890-03-01; A1234)", out.Label)
	assert.Equal(t, rc.Minter.Shared("PERSON", "AUTHNAME", "Smith, John"), out.Acquisition.To[0].URI)
	assert.NotEmpty(t, out.StartsAfterEndOf)
}

func TestDestroyedByFire(t *testing.T) {
	rc := newRunContext()
	rec := soldRecord()
	rec.Book.Transaction = "Destroyed"
	rec.Book.VerbatimNotes = "Destroyed by fire in 1920"

	l := assemble(t, rc, rec)
	for _, e := range l.Entries {
		assert.NotEqual(t, Out, e.Direction, "unexpected outgoing entry %s", e.URI)
	}

	d := l.Object.DestroyedBy
	require.NotNil(t, d)
	assert.Equal(t, l.Object.URI+"-Destruction", d.URI)
	assert.Equal(t, "Destruction of “Landscape”", d.Label)
	require.NotNil(t, d.Timespan)
	assert.Equal(t, time.Date(1920, 1, 1, 0, 0, 0, 0, time.UTC), d.Timespan.Begin)
	assert.Equal(t, time.Date(1920, 12, 31, 23, 59, 59, 0, time.UTC), d.Timespan.End)
	require.NotNil(t, d.CausedBy)
	require.NotNil(t, d.CausedBy.Type)
	assert.Equal(t, linkedart.AATFire, d.CausedBy.Type.ID)
	assert.Equal(t, "Fire event causing the destruction of “Landscape”", d.CausedBy.Label)
	assert.Equal(t, "Destroyed by fire in 1920", d.Notes[0].Content)
}

func TestEventsCarryRowNotes(t *testing.T) {
	rc := newRunContext()
	rec := soldRecord()
	rec.Book.Transaction = "Destroyed"
	rec.Book.Description = "Oil on canvas"
	rec.Book.WorkingNote = "See letter book 12"
	rec.Book.VerbatimNotes = "Destroyed in 1931"

	d := assemble(t, rc, rec).Object.DestroyedBy
	require.NotNil(t, d)
	var notes []string
	for _, n := range d.Notes {
		notes = append(notes, n.Content)
	}
	assert.Equal(t, []string{"Oil on canvas", "See letter book 12", "Destroyed in 1931"}, notes)
	require.NotNil(t, d.Timespan)
	assert.Equal(t, 1931, d.Timespan.Begin.Year())
	assert.Nil(t, d.CausedBy)
}

func TestTheftAndLoss(t *testing.T) {
	tests := []struct {
		name      string
		tag       string
		note      string
		wantKind  linkedart.Kind
		wantLabel string
		wantBegin time.Time
	}{
		{"looted", "Stolen", "Dec 1947 Looted by Germans during war", linkedart.KindLooting, "Theft of 12345", time.Date(1947, 12, 1, 0, 0, 0, 0, time.UTC)},
		{"lost", "Lost", "July 1959 Lost in Paris f.111", linkedart.KindLoss, "Loss of 12345", time.Date(1959, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"stolen undated", "Stolen", "Stolen from gallery", linkedart.KindTheft, "Theft of 12345", time.Time{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rc := newRunContext()
			rec := soldRecord()
			rec.Book.Transaction = tc.tag
			rec.Book.VerbatimNotes = tc.note

			l := assemble(t, rc, rec)
			out := l.Entry(rc.Minter.Project("TX", "Out", "3", "12", "4"))
			require.NotNil(t, out)
			assert.Equal(t, tc.wantLabel, out.Label)
			require.NotNil(t, out.Activity)
			assert.Nil(t, out.Acquisition)
			assert.Equal(t, tc.wantKind, out.Activity.Kind)
			assert.Equal(t, rc.DealerRef().URI, out.Activity.CustodyFrom.URI)
			assert.Equal(t, tc.note, out.Activity.Notes[0].Content)
			if tc.wantBegin.IsZero() {
				assert.Nil(t, out.Activity.Timespan)
			} else {
				require.NotNil(t, out.Activity.Timespan)
				assert.Equal(t, tc.wantBegin, out.Activity.Timespan.Begin)
			}
		})
	}
}

func TestUnsoldIsInventoried(t *testing.T) {
	rc := newRunContext()
	rec := soldRecord()
	rec.Book.Transaction = "Unsold"

	l := assemble(t, rc, rec)
	out := l.Entry(rc.Minter.Project("TX", "Out", "3", "12", "4"))
	require.NotNil(t, out)
	require.NotNil(t, out.Activity)
	assert.Nil(t, out.Acquisition)
	assert.Equal(t, rc.Minter.Project("INV", "3", "12", "4"), out.Activity.URI)
	assert.Equal(t, "Inventorying of 12345 (1890-03-01; A1234)", out.Label)
	assert.Equal(t, l.Object.URI, out.Activity.Encountered.URI)
	assert.Equal(t, linkedart.KindInventorying, out.Activity.Kind)
}

func TestCitationsFeedGraph(t *testing.T) {
	rc := newRunContext()
	rc.Graph = graph.NewBuilder(rc.Minter, nil)
	rec := soldRecord()
	rec.Citations = []record.Citation{
		{Direction: record.Prev, Catalog: "Br-1", Lot: "0001", Date: "1850"},
		{Direction: record.Post, Catalog: "NA", Lot: "5", Date: "1860"},
		{Direction: record.Post, Text: "garbage"},
	}

	l := assemble(t, rc, rec)
	nodes, edges := rc.Graph.Len()
	assert.Equal(t, 2, nodes)
	assert.Equal(t, 1, edges)
	assert.Equal(t, 1, rc.Graph.LotCount(rec.Key()))

	var notes []string
	for _, n := range l.Object.Notes {
		notes = append(notes, n.Content)
	}
	assert.Equal(t, []string{"Also sold in an unidentified sale: 5 (1860)", "garbage"}, notes)
	assert.Equal(t, 1.0, testutil.ToFloat64(rc.Counters.Citations.WithLabelValues("edge")))
}

func TestProblematicRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "problematic.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"lots": [["3", "12.4", "1890-03-01", "Row duplicated"]]}`), 0644))

	problems, err := LoadProblematic(path)
	require.NoError(t, err)

	rc := newRunContext()
	rc.Problematic = problems
	l := assemble(t, rc, soldRecord())
	require.Len(t, l.Object.Notes, 1)
	assert.Equal(t, "Row duplicated", l.Object.Notes[0].Content)
	assert.Contains(t, l.Object.Notes[0].Kinds, linkedart.KindProblematic)

	require.NoError(t, os.WriteFile(path, []byte(`{"lots": [["3", "12.4"]]}`), 0644))
	_, err = LoadProblematic(path)
	assert.Error(t, err)
}

func TestSameObjectsShareURI(t *testing.T) {
	rc := newRunContext()
	rc.Resolver = identity.NewResolver([][]string{{"A1234", "A1235"}}, nil)

	first := assemble(t, rc, soldRecord())
	rec := soldRecord()
	rec.RecordNo = "999"
	rec.Object.KnoedlerNumber = "A1235"
	second := assemble(t, rc, rec)

	assert.Equal(t, first.Object.URI, second.Object.URI)
	assert.Equal(t, rc.Minter.Project("Object", "A1234"), first.Object.URI)
}
