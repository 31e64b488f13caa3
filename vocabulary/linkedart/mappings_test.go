package linkedart_test

import (
	"strings"
	"testing"

	"github.com/c360studio/semprov/vocabulary/linkedart"
)

func TestTypeMap(t *testing.T) {
	tests := []struct {
		kind   linkedart.Kind
		wantID string
	}{
		{linkedart.KindProvenanceEntry, linkedart.AATProvenanceEntry},
		{linkedart.KindTheft, linkedart.AATTheft},
		{linkedart.KindLooting, linkedart.AATLooting},
		{linkedart.KindLoss, linkedart.AATLoss},
		{linkedart.KindInventorying, linkedart.AATInventorying},
		{linkedart.KindSaleAsReturn, linkedart.LocalSaleAsReturn},
		{linkedart.KindProblematic, linkedart.ProblematicRecord},
	}

	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			got, ok := linkedart.TypeFor(tc.kind)
			if !ok {
				t.Fatalf("kind %q not in TypeMap", tc.kind)
			}
			if got.ID != tc.wantID {
				t.Errorf("got %q, want %q", got.ID, tc.wantID)
			}
			if got.Label == "" {
				t.Error("expected a label")
			}
		})
	}
}

func TestTypeMapUsesKnownNamespaces(t *testing.T) {
	for kind, term := range linkedart.TypeMap {
		if !strings.HasPrefix(term.ID, linkedart.AATNamespace) && !strings.HasPrefix(term.ID, "tag:") {
			t.Errorf("kind %q has unexpected term IRI %q", kind, term.ID)
		}
	}
}

func TestClassFor(t *testing.T) {
	if got := linkedart.ClassFor(linkedart.KindTheft); got != linkedart.ClassTransferCustody {
		t.Errorf("theft class = %q", got)
	}
	if got := linkedart.ClassFor(linkedart.Kind("unknown")); got != linkedart.ClassActivity {
		t.Errorf("default class = %q", got)
	}
}

func TestCauseType(t *testing.T) {
	got, ok := linkedart.CauseType(" Fire ")
	if !ok || got.ID != linkedart.AATFire {
		t.Errorf("CauseType(Fire) = %v, %v", got, ok)
	}
	if _, ok := linkedart.CauseType("flood"); ok {
		t.Error("flood should not be mapped")
	}
}
