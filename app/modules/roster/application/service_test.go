package rosterservice

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	rosterdomain "github.com/combine-day/combine-bot/app/modules/roster/domain"
	rosterdb "github.com/combine-day/combine-bot/app/modules/roster/infrastructure/repositories"
	"github.com/combine-day/combine-bot/internal/observability"
)

func newTestService(repo *FakeRosterRepo, bus *FakeEventBus, policy NullNumberPolicy) *ImportService {
	tracer := noop.NewTracerProvider().Tracer("test")
	return NewImportService(
		repo,
		bus,
		observability.NoOpLogger,
		observability.NoOpMetrics{},
		tracer,
		policy,
		100,
	)
}

func schemaRepo(schema rosterdomain.EventSchema) *FakeRosterRepo {
	repo := NewFakeRosterRepo()
	repo.GetEventSchemaFunc = func(ctx context.Context, eventID string) (rosterdomain.EventSchema, error) {
		return schema, nil
	}
	return repo
}

func rosterTable() rosterdomain.RawTable {
	return rosterdomain.RawTable{
		Headers: []string{"First Name", "Last Name", "Number", "Lane Agility (sec)"},
		Rows: []rosterdomain.RawRow{
			{Line: 1, Cells: map[string]string{"First Name": "Ethan", "Last Name": "Garcia", "Number": "1002", "Lane Agility (sec)": "10.5"}},
			{Line: 2, Cells: map[string]string{"First Name": "Mia", "Last Name": "Lopez", "Number": "7", "Lane Agility (sec)": "11.2"}},
		},
	}
}

func TestPreview(t *testing.T) {
	repo := schemaRepo(testSchema())
	service := newTestService(repo, NewFakeEventBus(), PolicySkipBatchNullDuplicates)

	preview, err := service.Preview(context.Background(), "evt-1", rosterTable(), nil)
	require.NoError(t, err)

	assert.Equal(t, 2, preview.RowCount)
	assert.Len(t, preview.SampleRows, 2)
	assert.Equal(t, rosterdomain.FieldFirstName, preview.SuggestedMapping["First Name"])
	assert.Equal(t, rosterdomain.CanonicalField("lane_agility"), preview.SuggestedMapping["Lane Agility (sec)"])
	require.Len(t, preview.States, 2)
	assert.Equal(t, rosterdomain.StateValid, preview.States[0])
}

func TestPreview_SampleCappedAtFive(t *testing.T) {
	table := rosterdomain.RawTable{Headers: []string{"First Name", "Last Name"}}
	for i := 1; i <= 8; i++ {
		table.Rows = append(table.Rows, rosterdomain.RawRow{
			Line:  i,
			Cells: map[string]string{"First Name": fmt.Sprintf("P%d", i), "Last Name": "Test"},
		})
	}

	service := newTestService(schemaRepo(testSchema()), NewFakeEventBus(), PolicySkipBatchNullDuplicates)

	preview, err := service.Preview(context.Background(), "evt-1", table, nil)
	require.NoError(t, err)
	assert.Equal(t, 8, preview.RowCount)
	assert.Len(t, preview.SampleRows, 5)
}

func TestPreview_SchemaLookupFailure(t *testing.T) {
	repo := NewFakeRosterRepo()
	repo.GetEventSchemaFunc = func(ctx context.Context, eventID string) (rosterdomain.EventSchema, error) {
		return rosterdomain.EventSchema{}, rosterdb.ErrEventNotFound
	}
	service := newTestService(repo, NewFakeEventBus(), PolicySkipBatchNullDuplicates)

	_, err := service.Preview(context.Background(), "missing", rosterTable(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, rosterdb.ErrEventNotFound))
}

func TestPlan_AwaitingMappingSkipsReconciliation(t *testing.T) {
	table := rosterdomain.RawTable{
		Headers: []string{"Player Name", "Lane Agility (sec)"},
		Rows: []rosterdomain.RawRow{
			{Line: 1, Cells: map[string]string{"Player Name": "Ethan Garcia", "Lane Agility (sec)": "10.5"}},
		},
	}

	repo := schemaRepo(testSchema())
	service := newTestService(repo, NewFakeEventBus(), PolicySkipBatchNullDuplicates)

	plan, err := service.Plan(context.Background(), "evt-1", table, nil)
	require.NoError(t, err)

	assert.True(t, plan.AwaitingMapping)
	assert.Empty(t, plan.Decisions)
	for _, state := range plan.States {
		assert.Equal(t, rosterdomain.StateAwaitingRequiredMapping, state)
	}
	// The roster must not be fetched while the mapping is incomplete.
	assert.NotContains(t, repo.Trace(), "GetAthletesByEvent")
}

func TestPlan_RowLimit(t *testing.T) {
	table := rosterdomain.RawTable{Headers: []string{"First Name", "Last Name"}}
	for i := 1; i <= 101; i++ {
		table.Rows = append(table.Rows, rosterdomain.RawRow{Line: i, Cells: map[string]string{"First Name": "A", "Last Name": "B"}})
	}

	service := newTestService(schemaRepo(testSchema()), NewFakeEventBus(), PolicySkipBatchNullDuplicates)

	_, err := service.Plan(context.Background(), "evt-1", table, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBatchTooLarge))
}

func TestPlan_InvalidRowsExcludedFromDecisions(t *testing.T) {
	table := rosterdomain.RawTable{
		Headers: []string{"First Name", "Last Name"},
		Rows: []rosterdomain.RawRow{
			{Line: 1, Cells: map[string]string{"First Name": "Ethan", "Last Name": "Garcia"}},
			{Line: 2, Cells: map[string]string{"First Name": "", "Last Name": "Lopez"}},
		},
	}

	service := newTestService(schemaRepo(testSchema()), NewFakeEventBus(), PolicySkipBatchNullDuplicates)

	plan, err := service.Plan(context.Background(), "evt-1", table, nil)
	require.NoError(t, err)

	assert.False(t, plan.AwaitingMapping)
	assert.Equal(t, rosterdomain.StateInvalid, plan.States[1])
	require.Len(t, plan.Decisions, 1)
	assert.Equal(t, 1, plan.Decisions[0].Row)
}
