package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/c360studio/semprov/record"
	"github.com/c360studio/semprov/vocabulary/linkedart"
)

// Process routes and assembles one record, then records its key and
// citations in the post-sale graph. Records with an unhandled transaction
// type return a *ClassificationError and produce no ledger.
func Process(rc *RunContext, rec *record.NormalizedSaleRecord) (*Ledger, error) {
	v, err := Route(rec)
	if err != nil {
		rc.Counters.record("skipped")
		rc.logger().Warn("Record skipped", "record", rec.RecordNo, "error", err)
		return nil, err
	}

	l := Assemble(rc, v)
	rc.Counters.record("ok")
	rc.Counters.transaction(kindOf(v))

	if rc.Graph != nil {
		rc.Graph.Observe(l.Key, l.Object.URI)
	}
	addCitations(rc, l, rec.Citations)
	return l, nil
}

// addCitations turns citations of other sales into graph edges. Citations
// that name no usable sale are kept as notes on the object.
func addCitations(rc *RunContext, l *Ledger, citations []record.Citation) {
	for _, c := range citations {
		cited, err := c.Key()
		switch {
		case err == nil:
			if rc.Graph != nil {
				rc.Graph.AddCitation(l.Key, cited, c.Direction)
			}
			rc.Counters.citation("edge")
		case errors.Is(err, record.ErrUnidentifiedSale):
			l.Object.Notes = append(l.Object.Notes, Note{Content: c.Note(), Kinds: []linkedart.Kind{linkedart.KindNote}})
			rc.Counters.citation("unidentified")
		default:
			l.Object.Notes = append(l.Object.Notes, Note{Content: c.Note(), Kinds: []linkedart.Kind{linkedart.KindNote}})
			rc.Counters.citation("unparseable")
			rc.logger().Debug("Citation kept as note", "record", l.Record, "error", err)
		}
	}
}

// LoadProblematic reads the problematic-records file:
//
//	{"lots": [["Br-123", "0045", "1850-03-01", "Lot number repeated"], ...]}
func LoadProblematic(path string) (map[record.SaleRecordKey]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read problematic records: %w", err)
	}
	var doc struct {
		Lots [][]string `json:"lots"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse problematic records %s: %w", path, err)
	}
	out := make(map[record.SaleRecordKey]string, len(doc.Lots))
	for i, row := range doc.Lots {
		if len(row) != 4 {
			return nil, fmt.Errorf("parse problematic records %s: entry %d has %d fields, want 4", path, i, len(row))
		}
		out[record.SaleRecordKey{Catalog: row[0], Lot: row[1], Date: row[2]}] = row[3]
	}
	return out, nil
}
