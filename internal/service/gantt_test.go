package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectly/internal/model"
)

func TestGanttChartGetOrCreate(t *testing.T) {
	f := newFixture(t)
	svc := NewGanttService(f.db)
	ctx := context.Background()

	_, err := svc.ListTasks(ctx, callerOf(f.owner), f.project.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	g, err := svc.Chart(ctx, callerOf(f.owner), f.project.ID)
	require.NoError(t, err)
	again, err := svc.Chart(ctx, callerOf(f.member), f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, again.ID)
	assert.EqualValues(t, 1, count(t, f.db, &model.GanttChart{}, ""))

	_, err = svc.Chart(ctx, callerOf(f.outsider), f.project.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	tasks, err := svc.ListTasks(ctx, callerOf(f.owner), f.project.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestGanttTaskDependencies(t *testing.T) {
	f := newFixture(t)
	svc := NewGanttService(f.db)
	ctx := context.Background()
	c := callerOf(f.owner)
	_, err := svc.Chart(ctx, c, f.project.ID)
	require.NoError(t, err)

	design, err := svc.CreateTask(ctx, c, f.project.ID, model.GanttTaskRequest{
		Name: ptr("Design"), StartDate: ptr("2024-01-01"), EndDate: ptr("2024-01-10"),
	})
	require.NoError(t, err)
	assert.Zero(t, design.Progress)

	build, err := svc.CreateTask(ctx, c, f.project.ID, model.GanttTaskRequest{
		Name: ptr("Build"), StartDate: ptr("2024-01-11"), EndDate: ptr("2024-02-01"),
		Progress: ptr(40), Dependencies: &[]uint{design.ID},
	})
	require.NoError(t, err)
	require.Len(t, build.Dependencies, 1)
	assert.Equal(t, design.ID, build.Dependencies[0].ID)

	got, err := svc.GetTask(ctx, callerOf(f.member), build.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-11", time.Time(got.StartDate).Format(model.DateLayout))
	require.Len(t, got.Dependencies, 1)

	// edges are directed: design has no dependencies of its own
	d, err := svc.GetTask(ctx, c, design.ID)
	require.NoError(t, err)
	assert.Empty(t, d.Dependencies)

	updated, err := svc.UpdateTask(ctx, c, build.ID, model.GanttTaskRequest{Dependencies: &[]uint{}, Progress: ptr(100)})
	require.NoError(t, err)
	assert.Empty(t, updated.Dependencies)
	assert.Equal(t, 100, updated.Progress)

	_, err = svc.UpdateTask(ctx, c, build.ID, model.GanttTaskRequest{Dependencies: &[]uint{design.ID}})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteTask(ctx, c, design.ID))
	got, err = svc.GetTask(ctx, c, build.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Dependencies)

	_, err = svc.GetTask(ctx, callerOf(f.outsider), build.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGanttTaskValidation(t *testing.T) {
	f := newFixture(t)
	other := NewProjectService(f.db)
	svc := NewGanttService(f.db)
	ctx := context.Background()
	c := callerOf(f.owner)

	_, err := svc.Chart(ctx, c, f.project.ID)
	require.NoError(t, err)
	p2, err := other.Create(ctx, c, model.ProjectRequest{Name: ptr("Other")})
	require.NoError(t, err)
	_, err = svc.Chart(ctx, c, p2.ID)
	require.NoError(t, err)
	foreign, err := svc.CreateTask(ctx, c, p2.ID, model.GanttTaskRequest{
		Name: ptr("Elsewhere"), StartDate: ptr("2024-01-01"), EndDate: ptr("2024-01-02"),
	})
	require.NoError(t, err)

	cases := map[string]model.GanttTaskRequest{
		"progress":     {Name: ptr("x"), StartDate: ptr("2024-01-01"), EndDate: ptr("2024-01-02"), Progress: ptr(101)},
		"end_date":     {Name: ptr("x"), StartDate: ptr("2024-01-05"), EndDate: ptr("2024-01-02")},
		"start_date":   {Name: ptr("x"), EndDate: ptr("2024-01-02")},
		"dependencies": {Name: ptr("x"), StartDate: ptr("2024-01-01"), EndDate: ptr("2024-01-02"), Dependencies: &[]uint{foreign.ID}},
	}
	for field, req := range cases {
		t.Run(field, func(t *testing.T) {
			_, err := svc.CreateTask(ctx, c, f.project.ID, req)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, field)
		})
	}
}
