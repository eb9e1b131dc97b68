/*
tables.go - Reference sets the variable rules match against

PURPOSE:
  Every site, sector and position comparison made by the rules goes
  through a Tables value. DefaultTables returns the built-in sets; the
  factory package can build an overridden Tables from configuration so
  new sites or sectors do not require a code change.

CONVENTIONS:
  All keys are stored in schedule.Fold form (lowercase, accent-free).
  Membership helpers fold their argument, so callers can pass raw text.

SEE ALSO:
  - rules.go: the consumers of these sets
  - factory/tables.go: JSON-driven construction
*/
package payroll

import "github.com/clinsuite/payroll-engine/schedule"

// Monthly-hour floors by area. An employee below their floor gets the
// floor converted to monthly hours instead of their own figure.
const (
	FloorGeneral = 36
	FloorLab     = 27
	FloorImaging = 18
)

// weeksPerMonth is the conversion factor between weekly and monthly
// figures used across all rules.
const weeksPerMonth = 4.33

// Tables holds every reference set used during evaluation. Construct
// through DefaultTables or the factory; treat as immutable afterwards.
type Tables struct {
	// GuardSites are the sites where a full-guard regime can apply.
	GuardSites map[string]bool

	// PremiumGuardSites qualify high-legajo guards for the premium flag.
	PremiumGuardSites map[string]bool

	// ImagingSectors use the 18-hour floor and the imaging extension rule.
	ImagingSectors map[string]bool

	// Monthly156Sectors are the areas whose technicians settle at 156
	// monthly hours (imaging areas plus the laboratory).
	Monthly156Sectors map[string]bool

	// LabSectors use the 27-hour floor.
	LabSectors map[string]bool

	// LabPositions are the laboratory technical family.
	LabPositions map[string]bool

	// LabCollectivePositions gate the laboratory collective-agreement
	// variables (slightly different family than LabPositions).
	LabCollectivePositions map[string]bool

	// ProfessionalPositions settle monthly hours as weekly x 4.33 and are
	// exempt from the reduced-schedule calculation floors.
	ProfessionalPositions map[string]bool

	// SpecialPositions suppress the reduction percentage at exactly 35
	// weekly hours. Matched prefix-tolerantly.
	SpecialPositions []string

	// TechnicianPositions is the core imaging technician pair.
	TechnicianPositions map[string]bool

	// ImagingTechPositions adds the reprocess technician to the pair.
	ImagingTechPositions map[string]bool

	// ProductivitySectors grant the medical productivity variable set.
	ProductivitySectors map[string]bool

	// EquipmentCodes maps weekly hours to the equipment bonus code for
	// magnetic resonance technicians.
	EquipmentCodes map[int]int64
}

// DefaultTables returns the built-in reference sets.
func DefaultTables() Tables {
	return Tables{
		GuardSites: foldSet(
			"clinica del sol", "c del sol", "cds",
			"san miguel", "sm",
			"bazterrica", "cons ext cl bazterrica", "clinica bazterrica",
			"santa isabel", "clinica santa isabel",
		),
		PremiumGuardSites: foldSet("clinica del sol", "bazterrica"),
		ImagingSectors: foldSet(
			"mamografia", "imagenes dmf", "tomografia computada",
			"densitometria", "medicina nuclear", "pet ct", "radiologia",
			"resonancia magnetica", "imagenes",
		),
		Monthly156Sectors: foldSet(
			"mamografia", "imagenes dmf", "tomografia computada",
			"densitometria", "medicina nuclear", "pet ct", "radiologia",
			"resonancia magnetica", "laboratorio",
		),
		LabSectors: foldSet(
			"laboratorio", "atencion al cliente laboratorio",
			"laboratorio clinico", "analisis clinicos",
		),
		LabPositions: foldSet(
			"auxiliar tecnico", "tecnico de laboratorio",
			"tecnico extraccionista", "bioquimico",
		),
		LabCollectivePositions: foldSet(
			"tecnico de laboratorio", "extraccionista",
			"bioquimico", "auxiliar tecnico",
		),
		ProfessionalPositions: foldSet(
			"medico", "medica", "medico a",
			"odontologo a", "odontologo a fellow",
		),
		SpecialPositions: []string{
			"telefonista", "recepcionista de laboratorio",
			"tecnico en practicas cardiologicas", "operario de logistica",
			"medico", "medica", "medico a",
			"odontologo a", "odontologo a fellow",
		},
		TechnicianPositions:  foldSet("tecnico", "tecnico pivot"),
		ImagingTechPositions: foldSet("tecnico", "tecnico de reproceso", "tecnico pivot"),
		ProductivitySectors:  foldSet("ecografia", "mamografia"),
		EquipmentCodes: map[int]int64{
			12: 2, 18: 3, 24: 4, 30: 5, 36: 6, 42: 7, 48: 8,
		},
	}
}

func foldSet(items ...string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[schedule.Fold(it)] = true
	}
	return set
}
