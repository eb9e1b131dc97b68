/*
catalog.go - The variable catalog

PURPOSE:
  One place listing every code the engine can emit, with the description
  the liquidation team uses. The catalog is informational: rules emit
  codes directly, and the API and export layers use Describe to label
  them.
*/
package payroll

import "sort"

// Variable codes emitted by the engine. Codes below 7000 carry numeric
// values; 7000 and above are review markers carrying text (9000 is also
// used for unparseable schedules).
const (
	CodeBaseSalary      = 1
	CodeMonthlyHours    = 4
	CodeCashier         = 426
	CodeWeeklyHours     = 239
	CodeImagingExt      = 992
	CodeSpecialDays     = 1131
	CodeLogisticsInside = 1137
	CodeEquipment       = 1151
	CodeNightHours      = 1157
	CodeMonthlyDays     = 1242
	CodeProductivityA   = 1251
	CodeProductivityB   = 1252
	CodeLabCollective   = 1416
	CodeNightFlag       = 1498
	CodeLabExtension    = 1599
	CodeLogisticsShort  = 1673
	CodeProductivity    = 1740
	CodeReduction       = 1167
	CodeGuard           = 2000
	CodeContractEnd     = 2006
	CodePremiumGuard    = 2281

	CodeReviewCession   = 7000
	CodeReviewIntangib  = 8000
	CodeReviewVoluntary = 9000
	CodeReviewDegree    = 10000
	CodeReviewPPR       = 11000
	CodeReviewNoSalary  = 12000
	CodeReviewTraining  = 13000
)

var descriptions = map[int]string{
	CodeBaseSalary:      "Sueldo bruto pactado",
	CodeMonthlyHours:    "Horas mensuales",
	CodeCashier:         "Adicional cajero",
	CodeWeeklyHours:     "Horas semanales",
	CodeImagingExt:      "Extension horaria imagenes",
	CodeSpecialDays:     "Dias especiales",
	CodeLogisticsInside: "Operario logistica interior",
	CodeEquipment:       "Codigo de equipo resonancia",
	CodeNightHours:      "Horas nocturnas mensuales",
	CodeMonthlyDays:     "Dias mensuales",
	CodeProductivityA:   "Productividad medica A",
	CodeProductivityB:   "Productividad medica B",
	CodeLabCollective:   "Convenio laboratorio",
	CodeNightFlag:       "Marca nocturnidad",
	CodeLabExtension:    "Extension horaria laboratorio",
	CodeLogisticsShort:  "Logistica interior jornada reducida",
	CodeProductivity:    "Productividad medica",
	CodeReduction:       "Porcentaje jornada reducida",
	CodeGuard:           "Full guardia",
	CodeContractEnd:     "Fecha fin de contrato",
	CodePremiumGuard:    "Guardia premium",
	CodeReviewCession:   "Revision: cesion",
	CodeReviewIntangib:  "Revision: intangibilidad salarial",
	CodeReviewVoluntary: "Revision: adicional voluntario / horario",
	CodeReviewDegree:    "Revision: titulo bioimagenes",
	CodeReviewPPR:       "Revision: PPR",
	CodeReviewNoSalary:  "Revision: falta sueldo pactado",
	CodeReviewTraining:  "Revision: capacitacion en guardia",
}

// CatalogEntry pairs a variable code with its description.
type CatalogEntry struct {
	Code        int    `json:"codigo"`
	Description string `json:"descripcion"`
}

// Catalog returns every known code with its description, ascending by
// code.
func Catalog() []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(descriptions))
	for code, desc := range descriptions {
		entries = append(entries, CatalogEntry{Code: code, Description: desc})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
	return entries
}

// Describe returns the human label for a code, or an empty string for
// unknown codes.
func Describe(code int) string { return descriptions[code] }

// KnownCodes returns whether the engine can ever emit this code.
func KnownCode(code int) bool {
	_, ok := descriptions[code]
	return ok
}
