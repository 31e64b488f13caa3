package identity

import (
	"net/url"
	"strings"
)

// DefaultBase is the URI base shared by all minted identifiers.
const DefaultBase = "tag:getty.edu,2019:digital:pipeline:"

// sharedScope is the placeholder project used for entities shared across
// projects. It is replaced with a UUID when the corpus is loaded.
const sharedScope = "REPLACE-WITH-UUID"

// Minter builds URIs from key parts.
type Minter struct {
	base    string
	project string
}

// NewMinter returns a minter for the given base and project name.
func NewMinter(base, project string) *Minter {
	if base == "" {
		base = DefaultBase
	}
	return &Minter{base: base, project: project}
}

// Shared mints a URI for an entity that other projects may also reference,
// such as a person with a ULAN identifier or an auction catalog object.
func (m *Minter) Shared(parts ...string) string {
	return m.base + sharedScope + "#" + joinParts(parts)
}

// Project mints a URI scoped to this project.
func (m *Minter) Project(parts ...string) string {
	return m.base + m.project + "#" + joinParts(parts)
}

// Prefix is the part common to every URI this minter produces.
func (m *Minter) Prefix() string {
	return m.base
}

// joinParts escapes each part and joins with commas. Escaping leaves only
// [A-Za-z0-9-_.~] so commas always separate parts.
func joinParts(parts []string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = strings.ReplaceAll(url.QueryEscape(p), "+", "%20")
	}
	return strings.Join(escaped, ",")
}
