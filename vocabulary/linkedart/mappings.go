package linkedart

import "strings"

// Term is a classification term with its display label.
type Term struct {
	ID    string `json:"id"`
	Label string `json:"_label"`
}

// Kind names the ledger node kinds that carry a fixed classification.
type Kind string

// Ledger node kinds.
const (
	KindProvenanceEntry Kind = "provenance_entry"
	KindSaleAsReturn    Kind = "sale_as_return"
	KindTheft           Kind = "theft"
	KindLooting         Kind = "looting"
	KindLoss            Kind = "loss"
	KindInventorying    Kind = "inventorying"
	KindOwnershipRight  Kind = "ownership_right"
	KindNote            Kind = "note"
	KindProblematic     Kind = "problematic_record"
	KindPrimaryName     Kind = "primary_name"
	KindLocalNumber     Kind = "local_number"
)

// TypeMap maps ledger node kinds to their classification term.
var TypeMap = map[Kind]Term{
	KindProvenanceEntry: {ID: AATProvenanceEntry, Label: "Provenance Entry"},
	KindSaleAsReturn:    {ID: LocalSaleAsReturn, Label: "Sale (Return to Original Owner)"},
	KindTheft:           {ID: AATTheft, Label: "Theft"},
	KindLooting:         {ID: AATLooting, Label: "Looting"},
	KindLoss:            {ID: AATLoss, Label: "Loss"},
	KindInventorying:    {ID: AATInventorying, Label: "Inventorying"},
	KindOwnershipRight:  {ID: AATOwnershipRight, Label: "Ownership Right"},
	KindNote:            {ID: AATNote, Label: "Note"},
	KindProblematic:     {ID: ProblematicRecord, Label: "Problematic Record"},
	KindPrimaryName:     {ID: AATPrimaryName, Label: "Primary Name"},
	KindLocalNumber:     {ID: AATLocalNumber, Label: "Owner-Assigned Number"},
}

// ClassMap maps activity kinds to the class of the node that carries them.
var ClassMap = map[Kind]string{
	KindProvenanceEntry: ClassActivity,
	KindSaleAsReturn:    ClassActivity,
	KindTheft:           ClassTransferCustody,
	KindLooting:         ClassTransferCustody,
	KindLoss:            ClassTransferCustody,
	KindInventorying:    ClassActivity,
	KindOwnershipRight:  ClassRight,
}

// TypeFor returns the classification term for kind.
func TypeFor(kind Kind) (Term, bool) {
	t, ok := TypeMap[kind]
	return t, ok
}

// ClassFor returns the class for kind, defaulting to Activity.
func ClassFor(kind Kind) string {
	if c, ok := ClassMap[kind]; ok {
		return c
	}
	return ClassActivity
}

// PercentUnit is the measurement unit for ownership shares.
var PercentUnit = Term{ID: AATPercent, Label: "percent"}

// causeTypes maps destruction methods found in notes to event types.
var causeTypes = map[string]Term{
	"fire": {ID: AATFire, Label: "Fire"},
}

// CauseType returns the event type for a destruction method such as "fire".
func CauseType(method string) (Term, bool) {
	t, ok := causeTypes[strings.ToLower(strings.TrimSpace(method))]
	return t, ok
}
