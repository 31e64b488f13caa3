// Package linkedart provides the Linked Art vocabulary used by the
// provenance ledger.
//
// The vocabulary has three layers:
//   - Classes: the CIDOC-CRM based Linked Art classes a node is typed with
//     (HumanMadeObject, Activity, Acquisition, Payment, Right, ...)
//   - Types: Getty AAT terms used in classified_as to specialize a class
//     (Provenance Entry, Theft, Looting, Inventorying, percent, ...)
//   - Properties: the JSON-LD keys emitted by the export package
//
// # Usage
//
// Activity classification goes through the registry so that every exported
// node for a kind of event carries the same AAT term:
//
//	t, ok := linkedart.TypeFor(linkedart.KindTheft)
//	// t.ID == "http://vocab.getty.edu/aat/300055292"
//
// Destruction causes parsed from free text are mapped with CauseType:
//
//	t, ok := linkedart.CauseType("fire") // AAT Fire
package linkedart
