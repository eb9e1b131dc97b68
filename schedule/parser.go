/*
parser.go - Schedule segment extraction and day resolution

PURPOSE:
  Converts a normalized schedule string into an ordered []Block. The
  grammar is informal, so parsing is best effort: anything that cannot
  be resolved into at least one day with a valid time range is dropped,
  and a fully unparseable string yields an empty list (the caller treats
  that as a validation failure, not an error).

SEGMENT SHAPE:
  <day-phrase> [de] <start> (a|-) <end>

  where day-phrase is a run of day tokens and connectives, and start/end
  are "H", "H:MM" or "H.MM". Examples after normalization:

    "lunes-viernes de 9 a 17"
    "sabado por medio 8 a 13"
    "lunes-viernes de 12 a 20 y sabados 1 de 7 a 19"

RE-SEGMENTATION:
  A single global scan handles most inputs. When the scan under-covers
  the string and an "y" connective is present, or finds nothing at all
  while an "y" or weekend token is present, the string is split on "y"
  and each part matched independently. This recovers multi-block
  schedules where the main pattern swallowed or missed a segment.

PERIODICITY:
  Resolved per segment, in precedence order:
    "sabados N"        -> proportional, factor N/4
    "por medio"        -> biweekly, factor 0.5
    "al mes"/"mensual" -> monthly, factor 0.25
    otherwise          -> weekly, factor 1.0
*/
package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// segmentRE captures day-phrase, start and end. The day-phrase class
	// includes digits so proportional markers ("sabados 1") survive.
	segmentRE = regexp.MustCompile(
		`((?:[a-z\d\-]+(?:\s+y\s+|\s+)?)+?)(?:\s+de)?\s+(\d{1,2}(?:[:.]?\d{2})?)\s*(?:a|-)\s*(\d{1,2}(?:[:.]?\d{2})?)`)

	dayTokenRE = regexp.MustCompile(`[a-z]+-[a-z]+|[a-z]+|\d+`)
	andSplitRE = regexp.MustCompile(`\s+y\s+`)
)

// Parser holds the compiled, immutable grammar tables. Construct once at
// startup and share freely; Parse is safe for concurrent use.
type Parser struct {
	equivalences []equivalence
}

// NewParser returns a Parser using the built-in tables extended with the
// given extra equivalences (site-specific vocabulary). Extra entries
// override built-ins on key collision.
func NewParser(extra map[string]string) *Parser {
	table := make(map[string]string, len(defaultEquivalences)+len(extra))
	for k, v := range defaultEquivalences {
		table[k] = v
	}
	for k, v := range extra {
		// Keys are folded to match normalized text; values keep their
		// separators (they are already canonical surface forms).
		table[Fold(k)] = accentFolder.Replace(strings.ToLower(v))
	}
	return &Parser{equivalences: compileEquivalences(table)}
}

// DefaultParser returns a Parser with only the built-in tables.
func DefaultParser() *Parser { return NewParser(nil) }

// Parse normalizes raw and extracts schedule blocks. The returned slice
// preserves source order; it is empty (never nil-error) when nothing in
// the text could be interpreted.
func (p *Parser) Parse(raw string) []Block {
	s := p.Normalize(raw)
	if s == "" {
		return []Block{}
	}

	segments := matchSegments(s)
	if needsResegmentation(s, segments) {
		if split := matchBySplitting(s); len(split) > 0 {
			segments = split
		}
	}

	blocks := make([]Block, 0, len(segments))
	counter := 0
	for _, seg := range segments {
		counter++
		block, ok := p.buildBlock(seg, counter)
		if !ok {
			continue
		}
		blocks = append(blocks, block)
	}
	return blocks
}

// segment is one raw regexp hit before day/time resolution.
type segment struct {
	full  string
	days  string
	start string
	end   string
}

func matchSegments(s string) []segment {
	var segs []segment
	for _, m := range segmentRE.FindAllStringSubmatch(s, -1) {
		segs = append(segs, segment{
			full:  strings.TrimSpace(m[0]),
			days:  strings.TrimSpace(m[1]),
			start: m[2],
			end:   m[3],
		})
	}
	return segs
}

// needsResegmentation decides whether to retry with "y" splitting: the
// global scan either found nothing despite connective/weekend evidence,
// or left a day token or digit uncovered next to an "y" connective.
func needsResegmentation(s string, segs []segment) bool {
	hasAnd := andSplitRE.MatchString(s)
	if len(segs) == 0 {
		if hasAnd {
			return true
		}
		for _, tok := range weekendTokens {
			if strings.Contains(s, tok) {
				return true
			}
		}
		return false
	}
	if !hasAnd {
		return false
	}

	residual := s
	for _, seg := range segs {
		residual = strings.Replace(residual, seg.full, " ", 1)
	}
	for _, tok := range dayTokenRE.FindAllString(residual, -1) {
		if tok == "y" || tok == "de" {
			continue
		}
		if _, ok := dayMap[tok]; ok {
			return true
		}
	}
	return false
}

func matchBySplitting(s string) []segment {
	var segs []segment
	for _, part := range andSplitRE.Split(s, -1) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		segs = append(segs, matchSegments(part)...)
	}
	return segs
}

// buildBlock resolves a matched segment into a Block. Returns ok=false
// when the segment has no resolvable days or an invalid time.
func (p *Parser) buildBlock(seg segment, counter int) (Block, bool) {
	tokens := dayTokenRE.FindAllString(seg.days, -1)

	words := tokens[:0:0]
	biweekly := false
	for _, tok := range tokens {
		switch tok {
		case "y", "de":
			continue
		case "por", "medio":
			biweekly = true
			continue
		}
		words = append(words, tok)
	}

	days, saturdayCount := resolveDays(words)
	if len(days) == 0 {
		return Block{}, false
	}

	start, ok := formatTime(seg.start)
	if !ok {
		return Block{}, false
	}
	end, ok := formatTime(seg.end)
	if !ok {
		return Block{}, false
	}

	periodicity := resolvePeriodicity(seg.full, saturdayCount, biweekly)

	return Block{
		ID:          blockID(days, start, end, periodicity.Kind, counter),
		Days:        days,
		Start:       start,
		End:         end,
		Periodicity: periodicity,
		Overnight:   end <= start,
		SourceText:  seg.full,
	}, true
}

// resolveDays maps day tokens to a sorted index set. Handles inclusive
// ranges ("lunes-viernes", endpoints min/max ordered), composite codes,
// and the proportional Saturday marker ("sabados N"), whose count is
// returned separately.
func resolveDays(words []string) ([]int, int) {
	present := make(map[int]bool)
	saturdayCount := 0

	for i := 0; i < len(words); i++ {
		w := words[i]

		if (w == "sabado" || w == "sabados") && i+1 < len(words) {
			if n, err := strconv.Atoi(words[i+1]); err == nil && n >= 1 && n <= 4 {
				present[Saturday] = true
				saturdayCount = n
				i++
				continue
			}
		}

		if strings.Contains(w, "-") {
			parts := strings.SplitN(w, "-", 2)
			from, okFrom := dayMap[parts[0]]
			to, okTo := dayMap[parts[1]]
			if okFrom && okTo && !from.isExpansion() && !to.isExpansion() {
				lo, hi := from.index, to.index
				if lo > hi {
					lo, hi = hi, lo
				}
				for d := lo; d <= hi; d++ {
					present[d] = true
				}
			}
			continue
		}

		entry, ok := dayMap[w]
		if !ok {
			continue
		}
		if entry.isExpansion() {
			for _, sub := range strings.Fields(entry.expansion) {
				if e, ok := dayMap[sub]; ok && !e.isExpansion() {
					present[e.index] = true
				}
			}
			continue
		}
		present[entry.index] = true
	}

	days := make([]int, 0, len(present))
	for d := Monday; d <= Holiday; d++ {
		if present[d] {
			days = append(days, d)
		}
	}
	return days, saturdayCount
}

func resolvePeriodicity(segmentText string, saturdayCount int, biweekly bool) Periodicity {
	switch {
	case saturdayCount > 0:
		return Periodicity{Kind: Proportional, Factor: float64(saturdayCount) / 4.0}
	case biweekly:
		return Periodicity{Kind: Biweekly, Factor: 0.5}
	case strings.Contains(segmentText, "al mes") || strings.Contains(segmentText, "mensual"):
		return Periodicity{Kind: Monthly, Factor: 0.25}
	default:
		return Periodicity{Kind: Weekly, Factor: 1.0}
	}
}

// formatTime converts "H", "H:MM" or "H.MM" to zero-padded "HH:MM".
// Rejects out-of-range components so every emitted block satisfies
// 00<=HH<=23, 00<=MM<=59.
func formatTime(raw string) (string, bool) {
	raw = strings.ReplaceAll(raw, ".", ":")

	hourPart := raw
	minutePart := "0"
	if i := strings.IndexByte(raw, ':'); i >= 0 {
		hourPart, minutePart = raw[:i], raw[i+1:]
	} else if len(raw) > 2 {
		// "830" style: trailing two digits are minutes.
		hourPart, minutePart = raw[:len(raw)-2], raw[len(raw)-2:]
	}

	hh, err := strconv.Atoi(hourPart)
	if err != nil || hh < 0 || hh > 23 {
		return "", false
	}
	mm, err := strconv.Atoi(minutePart)
	if err != nil || mm < 0 || mm > 59 {
		return "", false
	}
	return fmt.Sprintf("%02d:%02d", hh, mm), true
}

// blockID builds a deterministic, human-readable id. Debugging aid only;
// nothing downstream depends on its shape.
func blockID(days []int, start, end string, kind PeriodicityKind, counter int) string {
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = dayNames[d]
	}
	return fmt.Sprintf("%s_%s_%s_%s_%d",
		strings.Join(names, "_"),
		strings.ReplaceAll(start, ":", ""),
		strings.ReplaceAll(end, ":", ""),
		kind, counter)
}

// minutesOf parses a "HH:MM" produced by formatTime back into minutes
// from midnight. Inputs are trusted (they came from formatTime).
func minutesOf(hhmm string) int {
	hh, _ := strconv.Atoi(hhmm[:2])
	mm, _ := strconv.Atoi(hhmm[3:])
	return hh*60 + mm
}
