/*
Package factory provides JSON to reference-table conversion.

PURPOSE:
  Converts a JSON definition of sites, sectors, positions and schedule
  vocabulary into payroll.Tables plus parser extensions. This enables
  reference-data changes without code changes: when the organization
  opens a site or renames a sector, operations edit a JSON file.

JSON SCHEMA (all sections optional; absent sections keep the built-in
defaults):

  {
    "sedes_guardia": ["Clinica del Sol", "San Miguel"],
    "sedes_guardia_premium": ["Clinica del Sol"],
    "sectores_imagenes": ["Resonancia Magnetica", "Radiologia"],
    "sectores_156": ["Laboratorio", "Radiologia"],
    "sectores_laboratorio": ["Laboratorio"],
    "puestos_laboratorio": ["Tecnico de Laboratorio"],
    "puestos_convenio_laboratorio": ["Bioquimico"],
    "puestos_profesionales": ["Medico", "Medica"],
    "puestos_especiales": ["Telefonista"],
    "puestos_tecnicos": ["Tecnico", "Tecnico Pivot"],
    "puestos_tecnicos_imagenes": ["Tecnico", "Tecnico de Reproceso"],
    "sectores_productividad": ["Ecografia", "Mamografia"],
    "codigos_equipo": {"36": 6, "42": 7},
    "equivalencias_horario": {"turno manana": "lunes-viernes de 6 a 14"}
  }

Entries are folded before use, so JSON can carry accents and mixed case.

SEE ALSO:
  - payroll/tables.go: the Tables consumed by the rules
  - schedule/parser.go: NewParser and the vocabulary extensions
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/clinsuite/payroll-engine/payroll"
	"github.com/clinsuite/payroll-engine/schedule"
)

// TablesJSON is the JSON representation of the reference data.
type TablesJSON struct {
	GuardSites             []string          `json:"sedes_guardia,omitempty"`
	PremiumGuardSites      []string          `json:"sedes_guardia_premium,omitempty"`
	ImagingSectors         []string          `json:"sectores_imagenes,omitempty"`
	Monthly156Sectors      []string          `json:"sectores_156,omitempty"`
	LabSectors             []string          `json:"sectores_laboratorio,omitempty"`
	LabPositions           []string          `json:"puestos_laboratorio,omitempty"`
	LabCollectivePositions []string          `json:"puestos_convenio_laboratorio,omitempty"`
	ProfessionalPositions  []string          `json:"puestos_profesionales,omitempty"`
	SpecialPositions       []string          `json:"puestos_especiales,omitempty"`
	TechnicianPositions    []string          `json:"puestos_tecnicos,omitempty"`
	ImagingTechPositions   []string          `json:"puestos_tecnicos_imagenes,omitempty"`
	ProductivitySectors    []string          `json:"sectores_productividad,omitempty"`
	EquipmentCodes         map[string]int64  `json:"codigos_equipo,omitempty"`
	ScheduleVocabulary     map[string]string `json:"equivalencias_horario,omitempty"`
}

// Parse builds the reference tables from JSON, layered over the
// built-in defaults: a present section replaces its default, an absent
// one keeps it. The second return value is the schedule vocabulary for
// schedule.NewParser.
func Parse(data []byte) (payroll.Tables, map[string]string, error) {
	var doc TablesJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return payroll.Tables{}, nil, fmt.Errorf("parse tables JSON: %w", err)
	}

	tables := payroll.DefaultTables()
	overlaySet(&tables.GuardSites, doc.GuardSites)
	overlaySet(&tables.PremiumGuardSites, doc.PremiumGuardSites)
	overlaySet(&tables.ImagingSectors, doc.ImagingSectors)
	overlaySet(&tables.Monthly156Sectors, doc.Monthly156Sectors)
	overlaySet(&tables.LabSectors, doc.LabSectors)
	overlaySet(&tables.LabPositions, doc.LabPositions)
	overlaySet(&tables.LabCollectivePositions, doc.LabCollectivePositions)
	overlaySet(&tables.ProfessionalPositions, doc.ProfessionalPositions)
	overlaySet(&tables.TechnicianPositions, doc.TechnicianPositions)
	overlaySet(&tables.ImagingTechPositions, doc.ImagingTechPositions)
	overlaySet(&tables.ProductivitySectors, doc.ProductivitySectors)

	if len(doc.SpecialPositions) > 0 {
		folded := make([]string, 0, len(doc.SpecialPositions))
		for _, p := range doc.SpecialPositions {
			folded = append(folded, schedule.Fold(p))
		}
		tables.SpecialPositions = folded
	}

	if len(doc.EquipmentCodes) > 0 {
		codes := make(map[int]int64, len(doc.EquipmentCodes))
		for hours, code := range doc.EquipmentCodes {
			h, err := strconv.Atoi(hours)
			if err != nil {
				return payroll.Tables{}, nil,
					fmt.Errorf("equipment code key %q is not an hour count", hours)
			}
			codes[h] = code
		}
		tables.EquipmentCodes = codes
	}

	return tables, doc.ScheduleVocabulary, nil
}

// LoadFile reads and parses a reference-data file. An empty path
// returns the defaults.
func LoadFile(path string) (payroll.Tables, map[string]string, error) {
	if path == "" {
		return payroll.DefaultTables(), nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return payroll.Tables{}, nil, fmt.Errorf("read tables file: %w", err)
	}
	return Parse(data)
}

func overlaySet(dst *map[string]bool, entries []string) {
	if len(entries) == 0 {
		return
	}
	set := make(map[string]bool, len(entries))
	for _, e := range entries {
		set[schedule.Fold(e)] = true
	}
	*dst = set
}
