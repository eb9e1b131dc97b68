package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinsuite/payroll-engine/payroll"
	"github.com/clinsuite/payroll-engine/pipeline"
	"github.com/clinsuite/payroll-engine/schedule"
)

func newProcessor() *pipeline.Processor {
	parser := schedule.DefaultParser()
	engine := payroll.NewEngine(payroll.DefaultTables(), nil)
	return pipeline.New(parser, engine, nil)
}

func rawRecord(legajo int, horario string) *payroll.EmployeeRecord {
	return &payroll.EmployeeRecord{
		Legajo: legajo,
		Personal: payroll.PersonalData{
			Name:   "Empleado Prueba",
			Site:   "Santa Isabel",
			Role:   "Administrativo",
			Sector: payroll.Sector{Principal: "Administracion"},
		},
		Contract: payroll.Contract{
			Modality: "tiempo_completo",
			Category: "dc_1_adm",
			Dates:    payroll.ContractDates{Start: "2021-02-01"},
		},
		Schedule:     payroll.ScheduleInfo{OriginalText: horario},
		Compensation: payroll.Compensation{Currency: "ARS"},
	}
}

func TestProcess_MixedBatch(t *testing.T) {
	p := newProcessor()

	// GIVEN: two parseable records and one with unusable schedule text
	records := []*payroll.EmployeeRecord{
		rawRecord(1, "lunes a viernes de 9 a 17"),
		rawRecord(2, "lunes a viernes de 22 a 6"),
		rawRecord(3, "horario a convenir"),
	}

	// WHEN: processing the batch
	res, err := p.Process(context.Background(), records)

	// THEN: all three are processed, one counts as a parse error, and the
	// unparseable one contributes exactly the review marker
	require.NoError(t, err)
	assert.Equal(t, 3, res.Stats.Total)
	assert.Equal(t, 3, res.Stats.Processed)
	assert.Equal(t, 1, res.Stats.ParseErrors)
	assert.Equal(t, 0, res.Stats.ValidationErrors)
	assert.Equal(t, len(res.Variables), res.Stats.VariablesEmitted)

	assert.True(t, res.Audit[3].Unparsed)
	assert.Equal(t, 1, res.Audit[3].Variables)
	assert.Equal(t, 40.0, res.Audit[1].WeeklyHours)
}

func TestProcess_ScheduleParsedOnDemand(t *testing.T) {
	p := newProcessor()

	// GIVEN: a record with only original schedule text (no blocks)
	records := []*payroll.EmployeeRecord{rawRecord(10, "lunes a viernes de 9 a 17")}

	// WHEN: processing
	res, err := p.Process(context.Background(), records)

	// THEN: hours were derived from the parsed text, and the input record
	// was not mutated
	require.NoError(t, err)
	assert.Equal(t, 40.0, res.Audit[10].WeeklyHours)
	assert.Empty(t, records[0].Schedule.Blocks)
}

func TestProcess_ValidationFailure(t *testing.T) {
	p := newProcessor()

	// GIVEN: a record missing its mandatory category
	bad := rawRecord(20, "lunes a viernes de 9 a 17")
	bad.Contract.Category = ""

	res, err := p.Process(context.Background(), []*payroll.EmployeeRecord{bad})

	// THEN: it is counted and audited, but emits no variables
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.ValidationErrors)
	assert.Equal(t, 0, res.Stats.Processed)
	assert.Empty(t, res.Variables)
	assert.NotEmpty(t, res.Audit[20].Error)
}

func TestProcess_ContextCancelled(t *testing.T) {
	p := newProcessor()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, []*payroll.EmployeeRecord{rawRecord(30, "lunes a viernes de 9 a 17")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcess_EmptyBatch(t *testing.T) {
	p := newProcessor()

	res, err := p.Process(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 0, res.Stats.Total)
	assert.Empty(t, res.Variables)
	assert.NotNil(t, res.Audit)
}
