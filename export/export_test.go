package export_test

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/c360studio/semprov/docstore"
	"github.com/c360studio/semprov/export"
	"github.com/c360studio/semprov/identity"
	"github.com/c360studio/semprov/ledger"
	"github.com/c360studio/semprov/record"
	"github.com/c360studio/semprov/vocabulary/linkedart"
)

func soldBook(t *testing.T) (*ledger.Book, *ledger.Ledger) {
	t.Helper()
	rc := ledger.NewRunContext(identity.NewMinter("", "knoedler"), nil)
	rec := &record.NormalizedSaleRecord{
		RecordNo:  "12345",
		Book:      record.BookRef{StockBookNo: "3", PageNumber: "12", RowNumber: "4", Transaction: "Sold"},
		Object:    record.ObjectRef{KnoedlerNumber: "A1234", Title: "Landscape"},
		EntryDate: record.Date{Year: "1890", Month: "3", Day: "1"},
		SaleDate:  record.Date{Year: "1891", Month: "5"},
		Purchase:  &record.PriceInfo{Amount: "1000", Currency: "dollars"},
		Sale:      &record.PriceInfo{Amount: "1500", Currency: "dollars"},
		PurchaseSellers: []record.Party{
			{Name: "Smith, John", AuthName: "Smith, John"},
		},
		PurchaseBuyers: []record.Party{
			{Name: "Boussod", Share: "1/4"},
			{Name: "Goupil", Share: "1/4"},
		},
		SaleBuyers: []record.Party{{Name: "Jones", ULAN: "500000001"}},
	}
	l, err := ledger.Process(rc, rec)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	book := ledger.NewBook()
	book.Add(l)
	return book, l
}

func decode(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, data)
	}
	return m
}

func list(m map[string]any, key string) []map[string]any {
	raw, _ := m[key].([]any)
	out := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		if n, ok := r.(map[string]any); ok {
			out = append(out, n)
		}
	}
	return out
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    export.Format
		wantErr bool
	}{
		{"", export.FormatJSONLD, false},
		{"jsonld", export.FormatJSONLD, false},
		{" JSONL ", export.FormatJSONL, false},
		{"turtle", "", true},
	}
	for _, tc := range tests {
		got, err := export.ParseFormat(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tc.input, err, tc.wantErr)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestDocumentName(t *testing.T) {
	d := export.Document{Model: "HumanMadeObject", Node: &export.Node{ID: "tag:x#OBJECT,1"}}
	name := d.Name(".json")
	if name != d.Name(".json") {
		t.Error("document name should be stable")
	}
	parts := strings.Split(name, "/")
	if len(parts) != 3 || parts[0] != "HumanMadeObject" || !strings.HasPrefix(parts[2], parts[1]) {
		t.Errorf("unexpected layout %q", name)
	}
	if !strings.HasSuffix(name, ".json") {
		t.Errorf("expected .json extension, got %q", name)
	}
}

func TestWrite_JSONLD(t *testing.T) {
	book, l := soldBook(t)
	store, err := docstore.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	names, err := export.NewExporter(store).Write(ctx, book)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	entries, objects, parties := book.Len()
	if len(names) != entries+objects+parties {
		t.Errorf("expected %d files, got %d", entries+objects+parties, len(names))
	}

	objName := export.Document{Model: linkedart.ClassHumanMadeObject, Node: &export.Node{ID: l.Object.URI}}.Name(".json")
	data, err := store.Read(ctx, objName)
	if err != nil {
		t.Fatalf("object document missing: %v", err)
	}
	obj := decode(t, data)
	if obj["@context"] != linkedart.Context {
		t.Errorf("missing context: %v", obj["@context"])
	}
	if obj["id"] != l.Object.URI || obj["type"] != "HumanMadeObject" {
		t.Errorf("unexpected object header: %v %v", obj["id"], obj["type"])
	}
	var title string
	for _, n := range list(obj, "identified_by") {
		if n["type"] == "Name" {
			title, _ = n["content"].(string)
		}
	}
	if title != "Landscape" {
		t.Errorf("expected primary name Landscape, got %q", title)
	}
}

func TestEntryNode_Sold(t *testing.T) {
	_, l := soldBook(t)
	var in *ledger.ProvEntry
	for _, e := range l.Entries {
		if e.Direction == ledger.In {
			in = e
		}
	}
	if in == nil {
		t.Fatal("no incoming entry")
	}

	data, err := json.Marshal(export.EntryNode(in))
	if err != nil {
		t.Fatal(err)
	}
	n := decode(t, data)

	classes := list(n, "classified_as")
	if len(classes) == 0 || classes[0]["id"] != linkedart.AATProvenanceEntry {
		t.Errorf("entry should be classified as a provenance entry: %v", classes)
	}

	var sawAcq, sawPayment bool
	var percents []string
	for _, part := range list(n, "part") {
		switch part["type"] {
		case "Acquisition":
			sawAcq = true
			if len(list(part, "transferred_title_of")) != 1 {
				t.Errorf("acquisition should transfer one object")
			}
		case "Payment":
			sawPayment = true
			amount, _ := part["paid_amount"].(map[string]any)
			if amount["value"] != 1000.0 {
				t.Errorf("expected payment of 1000, got %v", amount["value"])
			}
			if len(list(part, "part")) != 3 {
				t.Errorf("expected 3 share payments, got %d", len(list(part, "part")))
			}
		case "RightAcquisition":
			right, _ := part["establishes"].(map[string]any)
			for _, p := range list(right, "part") {
				for _, dim := range list(p, "dimension") {
					percents = append(percents, strings.TrimSpace(jsonString(dim["value"])))
				}
			}
		}
	}
	if !sawAcq || !sawPayment {
		t.Errorf("expected acquisition and payment parts (acq=%v payment=%v)", sawAcq, sawPayment)
	}
	if strings.Join(percents, ",") != "50,25,25" {
		t.Errorf("expected rights 50,25,25, got %v", percents)
	}
	if len(list(n, "ends_before_the_start_of")) != 1 {
		t.Error("incoming entry should end before the sale starts")
	}
}

func jsonString(v any) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestWrite_JSONL(t *testing.T) {
	book, _ := soldBook(t)
	store, err := docstore.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	names, err := export.NewExporter(store, export.WithFormat(export.FormatJSONL), export.WithWorkers(2)).Write(ctx, book)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	want := map[string]int{"Activity.jsonl": 2, "HumanMadeObject.jsonl": 1}
	for name, lines := range want {
		found := false
		for _, n := range names {
			found = found || n == name
		}
		if !found {
			t.Errorf("missing %s in %v", name, names)
			continue
		}
		data, err := store.Read(ctx, name)
		if err != nil {
			t.Fatal(err)
		}
		got := strings.Count(string(data), "\n")
		if got != lines {
			t.Errorf("%s: expected %d lines, got %d", name, lines, got)
		}
	}
}

func TestDocumentMarshal_NoHTMLEscaping(t *testing.T) {
	p := ledger.PartyRef{
		URI:   "tag:example,2019:PERSON/AUTHNAME/Boussod,%20Valadon%20&%20Cie",
		Label: "Boussod, Valadon & Cie",
		Class: linkedart.ClassGroup,
		Names: []string{"Boussod, Valadon & Cie"},
	}
	doc := export.Document{Model: linkedart.ClassGroup, Node: export.PartyNode(p)}
	data, err := doc.Marshal()
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"`+p.URI+`"`) {
		t.Errorf("URI not written verbatim:\n%s", data)
	}
	if strings.Contains(string(data), `\u0026`) {
		t.Errorf("ampersand escaped:\n%s", data)
	}
	if got := decode(t, data)["_label"]; got != p.Label {
		t.Errorf("_label = %v, want %q", got, p.Label)
	}
}
