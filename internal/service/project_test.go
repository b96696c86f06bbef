package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"projectly/internal/model"
)

func TestProjectCreateAndList(t *testing.T) {
	f := newFixture(t)
	svc := NewProjectService(f.db)
	ctx := context.Background()

	p, err := svc.Create(ctx, callerOf(f.outsider), model.ProjectRequest{
		Name: ptr("Gemini"), Members: &[]uint{f.member.ID, f.member.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, f.outsider.ID, p.CreatedByID)
	require.Len(t, p.Members, 2)
	assert.ElementsMatch(t, []uint{f.outsider.ID, f.member.ID}, []uint{p.Members[0].ID, p.Members[1].ID})

	mine, err := svc.List(ctx, callerOf(f.member))
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "Apollo", mine[0].Name)
	assert.Equal(t, "Gemini", mine[1].Name)

	theirs, err := svc.List(ctx, callerOf(f.owner))
	require.NoError(t, err)
	require.Len(t, theirs, 1)

	_, err = svc.Create(ctx, callerOf(f.owner), model.ProjectRequest{Name: ptr("  ")})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")

	_, err = svc.Create(ctx, callerOf(f.owner), model.ProjectRequest{Name: ptr("X"), Members: &[]uint{999}})
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "members")
}

func TestProjectVisibility(t *testing.T) {
	f := newFixture(t)
	svc := NewProjectService(f.db)
	ctx := context.Background()

	_, err := svc.Get(ctx, callerOf(f.outsider), f.project.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Update(ctx, callerOf(f.outsider), f.project.ID, model.ProjectRequest{Name: ptr("Hijack")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, callerOf(f.outsider), f.project.ID), ErrNotFound)

	got, err := svc.Get(ctx, callerOf(f.member), f.project.ID)
	require.NoError(t, err)
	assert.Len(t, got.Members, 2)
}

func TestProjectUpdateMembers(t *testing.T) {
	f := newFixture(t)
	svc := NewProjectService(f.db)
	ctx := context.Background()

	p, err := svc.Update(ctx, callerOf(f.owner), f.project.ID, model.ProjectRequest{
		Description: ptr("moon"), Members: &[]uint{f.owner.ID, f.outsider.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Apollo", p.Name)
	assert.Equal(t, "moon", p.Description)

	_, err = svc.Get(ctx, callerOf(f.member), f.project.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := svc.Get(ctx, callerOf(f.outsider), f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, "moon", got.Description)
}

func TestProjectUpdateKeepsCreator(t *testing.T) {
	f := newFixture(t)
	svc := NewProjectService(f.db)
	ctx := context.Background()

	p, err := svc.Update(ctx, callerOf(f.member), f.project.ID, model.ProjectRequest{Members: &[]uint{f.outsider.ID}})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{f.owner.ID, f.outsider.ID}, model.NewProjectResponse(*p).Members)

	p, err = svc.Update(ctx, callerOf(f.owner), f.project.ID, model.ProjectRequest{Members: &[]uint{}})
	require.NoError(t, err)
	require.Len(t, p.Members, 1)
	assert.Equal(t, f.owner.ID, p.Members[0].ID)

	_, err = svc.Get(ctx, callerOf(f.owner), f.project.ID)
	require.NoError(t, err)
}

func TestProjectDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	boards := NewBoardService(f.db)
	tasks := NewTaskService(f.db)

	b, err := boards.CreateBoard(ctx, callerOf(f.owner), f.project.ID, model.BoardRequest{})
	require.NoError(t, err)
	l, err := boards.CreateList(ctx, callerOf(f.owner), b.ID, model.BoardListRequest{Name: ptr("Todo")})
	require.NoError(t, err)
	_, err = boards.CreateCard(ctx, callerOf(f.owner), l.ID, model.CardRequest{Title: ptr("Card")})
	require.NoError(t, err)
	_, err = tasks.Create(ctx, callerOf(f.owner), model.TaskRequest{
		Title: ptr("Task"), Project: model.Some(f.project.ID), AssignedTo: model.Some(f.member.ID),
	})
	require.NoError(t, err)

	require.NoError(t, NewProjectService(f.db).Delete(ctx, callerOf(f.owner), f.project.ID))

	assert.EqualValues(t, 0, count(t, f.db, &model.Project{}, ""))
	assert.EqualValues(t, 0, count(t, f.db, &model.Board{}, ""))
	assert.EqualValues(t, 0, count(t, f.db, &model.BoardList{}, ""))
	assert.EqualValues(t, 0, count(t, f.db, &model.Card{}, ""))
	assert.EqualValues(t, 0, count(t, f.db, &model.Task{}, ""))
	assert.EqualValues(t, 0, count(t, f.db, &model.Notification{}, ""))
	var links int64
	require.NoError(t, f.db.Table("project_members").Count(&links).Error)
	assert.EqualValues(t, 0, links)
}
