/*
normalize.go - Text normalization for schedule parsing and field matching

PURPOSE:
  Two folding layers live here:

  Fold:      Accent- and punctuation-insensitive lowercasing used for ALL
             free-text comparisons in the system (positions, sectors,
             sites, extras). "Técnico de Laboratorio" == "tecnico de
             laboratorio".

  Normalize: The schedule-text normalizer. On top of Fold it strips
             hour-unit suffixes, turns commas into the "y" connective,
             and applies the equivalence table so the parser sees a
             single canonical surface form.

EQUIVALENCE TABLE:
  An ordered list of (pattern, replacement) pairs sorted by descending
  pattern length at construction time, so multi-word phrases win over
  their inner tokens ("lunes a viernes" is rewritten before "viernes"
  could be). Substitution is word-boundary aware; an already-expanded
  phrase is never corrupted by a second pass (Normalize is idempotent).
*/
package schedule

import (
	"regexp"
	"sort"
	"strings"
)

// accentFolder maps the Spanish accented forms to their ASCII base. The
// upstream files mix both spellings freely.
var accentFolder = strings.NewReplacer(
	"á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ü", "u",
	"ñ", "n", "ç", "c",
	"Á", "a", "É", "e", "Í", "i", "Ó", "o", "Ú", "u", "Ü", "u",
	"Ñ", "n", "Ç", "c",
)

var (
	nonAlnumRE    = regexp.MustCompile(`[^a-z0-9\s]`)
	whitespaceRE  = regexp.MustCompile(`\s+`)
	hourSuffixRE  = regexp.MustCompile(`\s*(?:hs|hrs)\b`)
	degreeMarkRE  = regexp.MustCompile("[°º]")

	// danglingSepRE drops "." and ":" that are not acting as a time
	// separator (sentence-final dots, stray colons).
	danglingSepRE = regexp.MustCompile(`[.:]+(\s|$)`)
)

// Fold lowercases s, strips accents, replaces every non-alphanumeric rune
// with a space and collapses runs of whitespace. It is the canonical form
// for comparing free-text fields. Fold("") == "" and Fold is idempotent.
func Fold(s string) string {
	s = strings.ToLower(s)
	s = accentFolder.Replace(s)
	s = degreeMarkRE.ReplaceAllString(s, " ")
	s = nonAlnumRE.ReplaceAllString(s, " ")
	s = whitespaceRE.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// equivalence is one rewrite rule of the normalizer. The regexp anchors
// the pattern on word boundaries.
type equivalence struct {
	pattern     *regexp.Regexp
	replacement string
}

// compileEquivalences builds the ordered rewrite list. Longer keys are
// applied first so that composite phrases are never split by a shorter
// rule rewriting one of their words.
func compileEquivalences(table map[string]string) []equivalence {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	rules := make([]equivalence, 0, len(keys))
	for _, k := range keys {
		rules = append(rules, equivalence{
			pattern:     regexp.MustCompile(`\b` + regexp.QuoteMeta(k) + `\b`),
			replacement: table[k],
		})
	}
	return rules
}

// Normalize cleans a raw schedule string into the canonical form the
// parser consumes. Absent input normalizes to the empty string. The
// comma is a list connective in this grammar ("lunes, martes y miercoles"),
// so it becomes " y " before folding.
func (p *Parser) Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	s := strings.ToLower(raw)
	s = accentFolder.Replace(s)
	s = hourSuffixRE.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, ",", " y ")
	s = nonAlnumRE.ReplaceAllStringFunc(s, func(m string) string {
		// Keep the separators the grammar depends on.
		switch m {
		case "-", ":", ".":
			return m
		}
		return " "
	})
	s = danglingSepRE.ReplaceAllString(s, "$1")
	s = whitespaceRE.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	for _, rule := range p.equivalences {
		s = rule.pattern.ReplaceAllString(s, rule.replacement)
	}
	return whitespaceRE.ReplaceAllString(s, " ")
}
