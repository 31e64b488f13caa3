// Package export serializes the ledger as Linked Art JSON-LD documents, one
// document per object, provenance entry and party.
package export

import (
	"fmt"
	"strings"
)

// Format specifies how documents are laid out in the store.
type Format string

const (
	// FormatJSONLD writes each document to its own file.
	FormatJSONLD Format = "jsonld"

	// FormatJSONL writes one file per model with one document per line.
	FormatJSONL Format = "jsonl"
)

// FormatInfo provides metadata about an export format.
type FormatInfo struct {
	// Name is the format identifier.
	Name Format

	// MIMEType is the standard MIME type.
	MIMEType string

	// Extension is the file extension (with dot).
	Extension string

	// Description describes the format.
	Description string
}

// FormatRegistry contains metadata for all supported formats.
var FormatRegistry = map[Format]FormatInfo{
	FormatJSONLD: {
		Name:        FormatJSONLD,
		MIMEType:    "application/ld+json",
		Extension:   ".json",
		Description: "JSON-LD - one Linked Art document per file",
	},
	FormatJSONL: {
		Name:        FormatJSONL,
		MIMEType:    "application/x-ndjson",
		Extension:   ".jsonl",
		Description: "JSON Lines - one file per model, one document per line",
	},
}

// GetFormatInfo returns metadata for a format.
func GetFormatInfo(format Format) (FormatInfo, bool) {
	info, ok := FormatRegistry[format]
	return info, ok
}

// ParseFormat accepts a format name in any case. The empty string selects
// FormatJSONLD.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatJSONLD, nil
	}
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := FormatRegistry[f]; !ok {
		return "", fmt.Errorf("unsupported format: %s", s)
	}
	return f, nil
}
