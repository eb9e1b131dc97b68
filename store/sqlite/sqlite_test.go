package sqlite_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinsuite/payroll-engine/payroll"
	"github.com/clinsuite/payroll-engine/pipeline"
	"github.com/clinsuite/payroll-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	s, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		Variables: []payroll.VariableResult{
			{Legajo: 1234, Code: 239, Value: payroll.IntValue(40)},
			{Legajo: 1234, Code: 1157, Value: payroll.NumberValue(decimal.RequireFromString("86.6"))},
			{Legajo: 5678, Code: 9000, Value: payroll.TextValue("Revisar Adic Voluntario Empresa")},
		},
		Stats: pipeline.Stats{
			Total: 2, Processed: 2, ParseErrors: 1, VariablesEmitted: 3,
		},
		Audit: map[int]pipeline.RecordAudit{
			1234: {Legajo: 1234, Name: "Perez, Juan", WeeklyHours: 40, Variables: 2},
			5678: {Legajo: 5678, Name: "Sin Horario", Unparsed: true, Variables: 1},
		},
	}
}

func TestSaveAndGetRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// GIVEN: one processed batch
	// WHEN: saving and reading it back
	run, err := s.SaveRun(ctx, "nomina_enero.xlsx", sampleResult())
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)

	// THEN: the counters survive the round trip
	assert.Equal(t, "nomina_enero.xlsx", got.SourceName)
	assert.Equal(t, run.Stats, got.Stats)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestResults_OrderAndValuesPreserved(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.SaveRun(ctx, "nomina.xlsx", sampleResult())
	require.NoError(t, err)

	results, err := s.Results(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, 239, results[0].Code)
	assert.True(t, results[1].Value.Number.Equal(decimal.RequireFromString("86.6")))
	assert.True(t, results[2].Value.IsText)
	assert.Equal(t, "Revisar Adic Voluntario Empresa", results[2].Value.Text)
}

func TestAudit_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.SaveRun(ctx, "nomina.xlsx", sampleResult())
	require.NoError(t, err)

	audit, err := s.Audit(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, audit, 2)
	assert.Equal(t, 40.0, audit[1234].WeeklyHours)
	assert.True(t, audit[5678].Unparsed)
}

func TestGetRun_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetRun(context.Background(), "missing-id")
	assert.ErrorIs(t, err, payroll.ErrRunNotFound)

	_, err = s.Results(context.Background(), "missing-id")
	assert.ErrorIs(t, err, payroll.ErrRunNotFound)
}

func TestListRuns_NewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.SaveRun(ctx, "enero.xlsx", sampleResult())
	require.NoError(t, err)
	second, err := s.SaveRun(ctx, "febrero.xlsx", sampleResult())
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	// Same-second timestamps are possible; both runs must be present.
	ids := []string{runs[0].ID, runs[1].ID}
	assert.Contains(t, ids, first.ID)
	assert.Contains(t, ids, second.ID)
}
