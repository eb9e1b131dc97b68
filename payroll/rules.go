/*
rules.go - The variable rules

PURPOSE:
  One function per liquidation variable (or tightly coupled group).
  Every rule is a pure function of the evaluation context: it reads
  derived figures and reference tables and returns zero or more
  results. Ordering and short-circuits live in engine.go.

CONVENTIONS:
  - A rule returning nil means "variable does not apply", which is
    different from emitting a zero value
  - Hour thresholds compare decimals, never floats
  - Review markers (7000+) always carry text values
*/
package payroll

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Review texts emitted with the marker codes. Kept verbatim from the
// liquidation team's checklist.
const (
	msgUnparsableSchedule = "No se pudo interpretar correctamente el horario"
	msgCession            = "Es cesión, revisar."
	msgIntangibility      = "Revisar Importe o % para Intangibilidad Salarial"
	msgVoluntaryExtra     = "Revisar Adic Voluntario Empresa"
	msgDegree             = "Cargar Título en CP, es Licenciado"
	msgPPR                = "Tiene PPR. Revisar archivo"
	msgMissingSalary      = "Falta sueldo bruto pactado. Revisar Var 1"
	msgTrainingOnGuard    = "Capacitación declarada en guardia, revisar"
	msgEquipmentMismatch  = "Horas sin código de equipo asignado, revisar"
)

type rule func(*ruleContext) []VariableResult

// orderedRules fixes the emission order. The order is part of the
// output contract: downstream spreadsheets are diffed run against run.
var orderedRules = []rule{
	ruleWeeklyHours,
	ruleMonthlyDays,
	ruleBaseSalary,
	ruleGuard,
	ruleMonthlyHours,
	ruleNightWork,
	ruleImagingExtension,
	ruleEquipment,
	ruleSpecialDays,
	ruleLogisticsInside,
	ruleReduction,
	ruleLabCollective,
	ruleLabExtension,
	ruleLogisticsShort,
	ruleContractEnd,
	rulePremiumGuard,
	ruleCashier,
	ruleReviewMarkers,
	ruleMedicalProductivity,
}

func (c *ruleContext) emit(code int, v VariableValue) []VariableResult {
	return []VariableResult{{Legajo: c.rec.Legajo, Code: code, Value: v}}
}

var (
	dec18  = decimal.NewFromInt(18)
	dec24  = decimal.NewFromInt(24)
	dec27  = decimal.NewFromInt(27)
	dec33  = decimal.NewFromInt(33)
	dec35  = decimal.NewFromInt(35)
	dec36  = decimal.NewFromInt(36)
	dec48  = decimal.NewFromInt(48)
	dec100 = decimal.NewFromInt(100)
	dec156 = decimal.NewFromInt(156)
	dec200 = decimal.NewFromInt(200)
)

// ===== 239: weekly hours ====================================================

func ruleWeeklyHours(c *ruleContext) []VariableResult {
	return c.emit(CodeWeeklyHours, NumberValue(c.weeklyHours.Round(2)))
}

// ===== 1242: monthly days ===================================================

func ruleMonthlyDays(c *ruleContext) []VariableResult {
	return c.emit(CodeMonthlyDays, IntValue(c.monthlyDays))
}

// ===== 1: agreed gross salary ===============================================

// Only out-of-collective categories carry the agreed salary as a
// variable; in-collective salaries come from the pay scale.
func ruleBaseSalary(c *ruleContext) []VariableResult {
	if c.category != "fc_pfc" || c.rec.Compensation.BaseSalary == nil {
		return nil
	}
	salary := decimal.NewFromFloat(*c.rec.Compensation.BaseSalary)
	return c.emit(CodeBaseSalary, NumberValue(salary.Round(2)))
}

// ===== 2000: full guard =====================================================

func ruleGuard(c *ruleContext) []VariableResult {
	if !c.guard {
		return nil
	}
	return c.emit(CodeGuard, IntValue(1))
}

// ===== 4: monthly hours =====================================================

// ruleMonthlyHours settles the contractual monthly hour figure. The
// decision table, top to bottom:
//  1. named position/sector pairs pinned at 200
//  2. laboratory technical family: 156 in band, floor conversion below
//  3. imaging technicians outside the laboratory: 156 in band
//  4. professionals: weekly x 4.33
//  5. below the area floor: floor x 4.33
//  6. everything else: 200
func ruleMonthlyHours(c *ruleContext) []VariableResult {
	h := c.weeklyHours
	p, sec := c.role, c.sector
	t := c.tables

	eq35 := h.Equal(dec35)
	ge35 := h.GreaterThanOrEqual(dec35)

	if (sec == "cuat" && p == "telefonista" && eq35) ||
		(p == "recepcionista de laboratorio" && eq35) ||
		(p == "tecnico en practicas cardiologicas" && ge35) ||
		(p == "operario de logistica" && ge35) ||
		(sec == "atencion al cliente laboratorio" && p == "recepcionista" && ge35) {
		return c.emit(CodeMonthlyHours, NumberValue(dec200))
	}

	if t.LabPositions[p] {
		switch {
		case h.GreaterThanOrEqual(dec27) && h.LessThanOrEqual(dec36):
			return c.emit(CodeMonthlyHours, NumberValue(dec156))
		case h.LessThan(dec27):
			return c.emit(CodeMonthlyHours,
				NumberValue(dec27.Mul(decWeeksPerMonth).Round(2)))
		}
		// above 36 falls through to the general bands
	}

	if t.TechnicianPositions[p] && sec != "laboratorio" &&
		h.GreaterThanOrEqual(dec18) && h.LessThanOrEqual(dec36) {
		return c.emit(CodeMonthlyHours, NumberValue(dec156))
	}

	if t.ProfessionalPositions[p] {
		return c.emit(CodeMonthlyHours,
			NumberValue(h.Mul(decWeeksPerMonth).Round(2)))
	}

	floor := dec36
	switch {
	case t.LabSectors[sec] && t.LabPositions[p]:
		floor = dec27
	case t.ImagingSectors[sec] && t.ImagingTechPositions[p]:
		floor = dec18
	}
	if h.LessThan(floor) {
		return c.emit(CodeMonthlyHours,
			NumberValue(floor.Mul(decWeeksPerMonth).Round(2)))
	}
	return c.emit(CodeMonthlyHours, NumberValue(dec200))
}

// ===== 1157 / 1498: night work ==============================================

// Guards never accrue night hours (ctx.nightMonthly is zero for them).
// Fully nocturnal schedules emit only the flag: their night premium is
// settled through the category, not an hour count.
func ruleNightWork(c *ruleContext) []VariableResult {
	if !c.nightMonthly.IsPositive() {
		return nil
	}
	inCollective := strings.Contains(c.category, "dc_")

	if c.fullNight {
		if inCollective {
			return c.emit(CodeNightFlag, IntValue(1))
		}
		return nil
	}

	out := c.emit(CodeNightHours, NumberValue(c.nightMonthly.Round(2)))
	if inCollective {
		out = append(out, VariableResult{
			Legajo: c.rec.Legajo, Code: CodeNightFlag, Value: IntValue(1),
		})
	}
	return out
}

// ===== 992: imaging schedule extension ======================================

// Legacy imaging technicians (legajo up to 3999) working past 24 weekly
// hours carry their weekly figure as an extension variable.
func ruleImagingExtension(c *ruleContext) []VariableResult {
	if !c.tables.TechnicianPositions[c.role] ||
		!c.tables.ImagingSectors[c.sector] ||
		c.rec.Legajo > 3999 ||
		!c.weeklyHours.GreaterThan(dec24) {
		return nil
	}
	return c.emit(CodeImagingExt, NumberValue(c.weeklyHours.Round(2)))
}

// ===== 1151: resonance equipment code =======================================

func ruleEquipment(c *ruleContext) []VariableResult {
	if !c.tables.ImagingTechPositions[c.role] || c.sector != "resonancia magnetica" {
		return nil
	}
	if c.weeklyHours.IsInteger() {
		if code, ok := c.tables.EquipmentCodes[int(c.weeklyHours.IntPart())]; ok {
			return c.emit(CodeEquipment, IntValue(code))
		}
	}
	return c.emit(CodeEquipment, TextValue(msgEquipmentMismatch))
}

// ===== 1131: special days ===================================================

// Pure weekend+holiday and pure Monday-to-Wednesday patterns settle at
// a flat 10; otherwise the monthly day count applies when it is short,
// the position is professional, or holidays are worked.
func ruleSpecialDays(c *ruleContext) []VariableResult {
	if daysExactly(c.workedDays, 5, 6, 7) || daysExactly(c.workedDays, 0, 1, 2) {
		return c.emit(CodeSpecialDays, IntValue(10))
	}
	if c.monthlyDays < 22 ||
		c.tables.ProfessionalPositions[c.role] ||
		c.workedDays[7] {
		return c.emit(CodeSpecialDays, IntValue(c.monthlyDays))
	}
	return nil
}

func daysExactly(set map[int]bool, days ...int) bool {
	if len(set) != len(days) {
		return false
	}
	for _, d := range days {
		if !set[d] {
			return false
		}
	}
	return true
}

// ===== 1137 / 1673: interior logistics ======================================

func ruleLogisticsInside(c *ruleContext) []VariableResult {
	if c.role != "operario de logistica" || c.subsector != "interior" {
		return nil
	}
	return c.emit(CodeLogisticsInside, IntValue(1))
}

func ruleLogisticsShort(c *ruleContext) []VariableResult {
	if c.role != "operario de logistica" || c.subsector != "interior" ||
		!c.weeklyHours.LessThan(dec35) {
		return nil
	}
	return c.emit(CodeLogisticsShort, IntValue(1))
}

// ===== 1167: reduced-schedule percentage ====================================

// ruleReduction emits the percentage of the area's full schedule an
// employee actually works, when below it. Out-of-collective categories,
// guards and pinned-at-35 special positions are exempt.
func ruleReduction(c *ruleContext) []VariableResult {
	switch c.category {
	case "pfc", "fc_pfc":
		return nil
	}
	if c.guard || c.role == "" || c.sector == "" {
		return nil
	}
	if c.weeklyHours.Equal(dec35) && c.isSpecialPosition() {
		return nil
	}

	floor := dec36
	switch {
	case c.weeklyHours.Equal(dec18) &&
		c.workedDays[0] && c.workedDays[1] && c.workedDays[2]:
		// 18h over Mon-Wed is the half-week regime, measured against 45.
		floor = decimal.NewFromInt(45)
	case c.tables.LabSectors[c.sector] && c.tables.LabPositions[c.role]:
		floor = dec27
	case c.tables.ImagingSectors[c.sector]:
		floor = dec18
	case c.tables.LabSectors[c.sector]:
		floor = dec27
	}

	if !c.weeklyHours.LessThan(floor) {
		return nil
	}
	pct := dec100.Mul(c.weeklyHours).Div(floor).Round(4)
	return c.emit(CodeReduction, NumberValue(pct))
}

func (c *ruleContext) isSpecialPosition() bool {
	for _, sp := range c.tables.SpecialPositions {
		if strings.HasPrefix(c.role, sp) {
			return true
		}
	}
	return false
}

// ===== 1416 / 1599: laboratory collective agreement =========================

func (c *ruleContext) labCollectiveGates() bool {
	return strings.Contains(c.category, "dc_") &&
		c.tables.LabCollectivePositions[c.role] &&
		c.sector == "laboratorio" &&
		c.weeklyHours.GreaterThan(dec36)
}

func ruleLabCollective(c *ruleContext) []VariableResult {
	if !c.labCollectiveGates() {
		return nil
	}
	return c.emit(CodeLabCollective, IntValue(1))
}

func ruleLabExtension(c *ruleContext) []VariableResult {
	if !c.labCollectiveGates() || c.weeklyHours.GreaterThan(dec48) {
		return nil
	}
	if c.weeklyHours.Equal(dec48) {
		return c.emit(CodeLabExtension, NumberValue(dec33))
	}
	value := dec33.Mul(c.weeklyHours).Div(dec48).Round(4)
	return c.emit(CodeLabExtension, NumberValue(value))
}

// ===== 2006: contract end date ==============================================

var contractDateLayouts = []string{
	"2006-01-02", "02/01/2006", "2/1/2006", "02-01-2006", "2006/01/02",
}

func ruleContractEnd(c *ruleContext) []VariableResult {
	modality := categoryKey(c.rec.Contract.Modality)
	if !strings.Contains(modality, "plazo_fijo") &&
		!strings.Contains(modality, "determinado") {
		return nil
	}
	end := strings.TrimSpace(c.rec.Contract.Dates.End)
	if end == "" {
		return nil
	}
	for _, layout := range contractDateLayouts {
		if t, err := time.Parse(layout, end); err == nil {
			return c.emit(CodeContractEnd, TextValue(t.Format("02/01/2006")))
		}
	}
	return nil
}

// ===== 2281: premium guard ==================================================

func rulePremiumGuard(c *ruleContext) []VariableResult {
	if !c.guard || c.rec.Legajo <= 15000 || !c.tables.PremiumGuardSites[c.site] {
		return nil
	}
	return c.emit(CodePremiumGuard, IntValue(1))
}

// ===== 426: administrative cashier ==========================================

func ruleCashier(c *ruleContext) []VariableResult {
	if !strings.Contains(c.role, "cajero") || !strings.Contains(c.category, "adm") {
		return nil
	}
	return c.emit(CodeCashier, IntValue(1))
}

// ===== 7000..13000: review markers ==========================================

// ruleReviewMarkers scans the extras for conditions a human must check
// before the liquidation closes. All markers carry text.
func ruleReviewMarkers(c *ruleContext) []VariableResult {
	var out []VariableResult
	add := func(code int, msg string) {
		out = append(out, VariableResult{
			Legajo: c.rec.Legajo, Code: code, Value: TextValue(msg),
		})
	}

	if c.hasExtra("cesion", "cecion") {
		add(CodeReviewCession, msgCession)
	}
	// "intan" covers intan/intang/intangib/intangibilidad.
	if c.hasExtra("intan") {
		add(CodeReviewIntangib, msgIntangibility)
	}
	if c.hasExtra("adic voluntario", "adicional voluntario", "voluntario empresa") {
		add(CodeReviewVoluntary, msgVoluntaryExtra)
	}
	if c.tables.ImagingTechPositions[c.role] &&
		c.tables.Monthly156Sectors[c.sector] &&
		c.hasExtra("lic en bioimagenes", "licenciado en bioimagenes",
			"bioimagenes", "presento titulo", "titulo") {
		add(CodeReviewDegree, msgDegree)
	}
	if pprRE.MatchString(c.extras) && c.rec.Compensation.BaseSalary != nil {
		add(CodeReviewPPR, msgPPR)
	}
	if c.category == "fc_pfc" && c.rec.Compensation.BaseSalary == nil &&
		!fullGuardRE.MatchString(c.extras) {
		add(CodeReviewNoSalary, msgMissingSalary)
	}
	if c.guard && c.hasExtra("capacitacion", "entrenamiento") {
		add(CodeReviewTraining, msgTrainingOnGuard)
	}
	return out
}

// ===== 1740 / 1251 / 1252: medical productivity =============================

func ruleMedicalProductivity(c *ruleContext) []VariableResult {
	if c.role != "medico" || !c.tables.ProductivitySectors[c.sector] {
		return nil
	}
	out := c.emit(CodeProductivity, IntValue(1))
	out = append(out,
		VariableResult{Legajo: c.rec.Legajo, Code: CodeProductivityA, Value: IntValue(1)},
		VariableResult{Legajo: c.rec.Legajo, Code: CodeProductivityB, Value: IntValue(1)},
	)
	return out
}
