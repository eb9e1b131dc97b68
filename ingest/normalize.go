/*
normalize.go - Field normalization for source workbook rows

PURPOSE:
  The personnel workbooks are typed by hand: modalities, categories and
  site names arrive in every imaginable spelling. This file owns the
  canonical forms:

  MODALITY:  folded snake_case ("TIEMPO COMPLETO PLAZO FIJO" ->
             "tiempo_completo_plazo_fijo")
  CATEGORY:  pattern table onto the liquidation codes ("1° ADM (DC)" ->
             "dc_1_adm"), with a DC/FC membership fallback
  SITE:      variant table onto the canonical site name ("CDS" ->
             "Clinica del Sol")

  Plus the two value parsers the rows need: flexible dates (including
  Excel serial numbers) and Argentine-formatted salary amounts.
*/
package ingest

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/clinsuite/payroll-engine/schedule"
)

// NormalizeModality folds a hiring modality into its snake_case code.
func NormalizeModality(raw string) string {
	return strings.ReplaceAll(schedule.Fold(raw), " ", "_")
}

// categoryPatterns maps folded category text onto liquidation codes.
// Order matters: first match wins.
var categoryPatterns = []struct {
	re   *regexp.Regexp
	code string
}{
	{regexp.MustCompile(`^1 adm`), "dc_1_adm"},
	{regexp.MustCompile(`^2 adm`), "dc_2_adm"},
	{regexp.MustCompile(`^3 adm`), "dc_3_adm"},
	{regexp.MustCompile(`^pfc( fc)?$`), "fc_pfc"},
	{regexp.MustCompile(`^fc( pfc)?$`), "fc_pfc"},
	{regexp.MustCompile(`^1 tec`), "dc_1_tec"},
	{regexp.MustCompile(`^2 tec`), "dc_2_tec"},
}

// NormalizeCategory resolves a raw category into its code. Unrecognized
// categories with a DC or FC marker fall back to the generic bucket;
// anything else returns "" and the row fails validation.
func NormalizeCategory(raw string) string {
	folded := schedule.Fold(raw)
	if folded == "" {
		return ""
	}
	for _, p := range categoryPatterns {
		if p.re.MatchString(folded) {
			return p.code
		}
	}
	words := " " + folded + " "
	switch {
	case strings.Contains(words, " dc "):
		return "dc_otra"
	case strings.Contains(words, " fc "):
		return "fc_pfc"
	}
	return ""
}

// siteVariants maps folded site spellings onto the canonical name.
var siteVariants = map[string]string{
	"clinica del sol": "Clinica del Sol",
	"c del sol":       "Clinica del Sol",
	"cds":             "Clinica del Sol",

	"bazterrica":             "Bazterrica",
	"clinica bazterrica":     "Bazterrica",
	"cons ext cl bazterrica": "Bazterrica",

	"santa isabel":         "Santa Isabel",
	"clinica santa isabel": "Santa Isabel",

	"san miguel": "San Miguel",
	"sm":         "San Miguel",
}

// NormalizeSite canonicalizes a site name, passing unknown sites
// through trimmed so new locations do not break ingestion.
func NormalizeSite(raw string) string {
	if canonical, ok := siteVariants[schedule.Fold(raw)]; ok {
		return canonical
	}
	return strings.TrimSpace(raw)
}

// excelEpoch is day zero of the 1900 date system used by the workbooks.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	"2006-01-02", "02/01/2006", "2/1/2006", "02-01-2006",
	"2006/01/02", "01-02-06", "2006-01-02 15:04:05",
}

// ParseDate accepts the date spellings seen in the workbooks, including
// raw Excel serial day numbers, and returns an ISO date string.
func ParseDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil && serial > 0 && serial < 200000 {
		t := excelEpoch.Add(time.Duration(serial * 24 * float64(time.Hour)))
		return t.Format("2006-01-02"), true
	}
	return "", false
}

var salaryCleanRE = regexp.MustCompile(`[^\d.,-]`)

// ParseSalary reads an amount in either Argentine ("1.234.567,89") or
// plain ("1234567.89") formatting. Returns false for blank or
// non-numeric text.
func ParseSalary(raw string) (float64, bool) {
	s := salaryCleanRE.ReplaceAllString(raw, "")
	if s == "" || s == "-" {
		return 0, false
	}

	comma := strings.LastIndexByte(s, ',')
	dot := strings.LastIndexByte(s, '.')
	switch {
	case comma >= 0 && dot >= 0:
		// Both present: the rightmost one is the decimal separator.
		if comma > dot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		s = resolveSingleSeparator(s, ',')
	case dot >= 0:
		s = resolveSingleSeparator(s, '.')
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// resolveSingleSeparator decides whether the only separator kind in s is
// decimal or thousands: a lone separator with one or two trailing digits
// is decimal, everything else is thousands grouping.
func resolveSingleSeparator(s string, sep byte) string {
	sepStr := string(sep)
	last := strings.LastIndexByte(s, sep)
	if strings.Count(s, sepStr) == 1 && len(s)-last-1 <= 2 {
		return strings.Replace(s, sepStr, ".", 1)
	}
	return strings.ReplaceAll(s, sepStr, "")
}

// SplitExtras breaks the free-text extras cell into individual entries.
func SplitExtras(raw string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == '\n' || r == '+'
	}) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
