// Copyright 2026 The JamLocate Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"strings"

	"github.com/jamaicageo/jamlocate/geocode/utils"
)

// DefaultCorrections maps misspellings and local shorthand seen in field
// reports to the names the geocoder understands. Keys match whole queries or
// whole tokens, case and accent insensitive.
var DefaultCorrections = map[string]string{
	"morroon":      "Maroon Town",
	"maroontown":   "Maroon Town",
	"jdf":          "Jamaica Defence Force Camp",
	"jdf camp":     "Jamaica Defence Force Camp",
	"mobay":        "Montego Bay",
	"mo bay":       "Montego Bay",
	"ochi":         "Ocho Rios",
	"ocho rio":     "Ocho Rios",
	"kgn":          "Kingston",
	"spanish twn":  "Spanish Town",
	"browns town":  "Brown's Town",
	"halfway tree": "Half Way Tree",
	"uwi":          "University of the West Indies Mona",
	"montego by":   "Montego Bay",
	"pt antonio":   "Port Antonio",
	"sav la mar":   "Savanna-la-Mar",
}

// Normalizer applies a static correction table to incoming queries. The
// table is fixed at construction; lookups are safe for concurrent use.
type Normalizer struct {
	table map[string]string
}

// NewNormalizer builds a normalizer from a correction table. Keys are
// folded, so matches ignore case and accents.
func NewNormalizer(corrections map[string]string) *Normalizer {
	n := &Normalizer{table: make(map[string]string, len(corrections))}
	for k, v := range corrections {
		n.table[utils.LowerASCIIFolding(k)] = v
	}

	return n
}

// Normalize rewrites a query using the correction table. Whole-query
// entries win over token entries; each token is corrected at most once.
// Queries without a match pass through with only the whitespace trimmed.
func (n *Normalizer) Normalize(query string) string {
	folded := utils.LowerASCIIFolding(query)
	if folded == "" {
		return ""
	}

	if repl, ok := n.table[folded]; ok {
		return repl
	}

	fields := strings.Fields(query)
	foldedFields := strings.Fields(folded)

	changed := false

	for i, tok := range foldedFields {
		trail := ""
		if strings.HasSuffix(tok, ",") {
			tok, trail = strings.TrimSuffix(tok, ","), ","
		}

		if repl, ok := n.table[tok]; ok {
			fields[i] = repl + trail
			changed = true
		}
	}

	if !changed {
		return strings.TrimSpace(query)
	}

	return strings.Join(fields, " ")
}
