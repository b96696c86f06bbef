package service

import (
	"context"
	"testing"
	"time"

	"gorm.io/gorm"

	"projectly/internal/config"
	"projectly/internal/middleware"
	"projectly/internal/model"
	"projectly/internal/storage"
	"projectly/internal/testutil"
)

type fakeProvider struct {
	identity *Identity
	err      error
	calls    int
}

func (f *fakeProvider) UserInfo(_ context.Context, _, _ string) (*Identity, error) {
	f.calls++
	return f.identity, f.err
}

func testTokens() *middleware.Tokens {
	return middleware.NewTokens(config.AuthConfig{
		JWTSecret: "test", AccessTTL: 5 * time.Minute, RefreshTTL: time.Hour,
	})
}

func testStore(t *testing.T) *storage.Store {
	return storage.New(t.TempDir(), "/media")
}

func callerOf(u model.User) Caller { return Caller{UserID: u.ID, Email: u.Email} }

func ptr[T any](v T) *T { return &v }

func count(t *testing.T, db *gorm.DB, m any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	q := db.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// fixture is a project with a member and an outsider.
type fixture struct {
	db       *gorm.DB
	owner    model.User
	member   model.User
	outsider model.User
	project  model.Project
}

func newFixture(t *testing.T) fixture {
	db := testutil.NewDB(t)
	owner := testutil.CreateUser(t, db, "owner@x.com")
	member := testutil.CreateUser(t, db, "member@x.com")
	outsider := testutil.CreateUser(t, db, "outsider@x.com")
	project := testutil.CreateProject(t, db, "Apollo", owner, member)
	return fixture{db: db, owner: owner, member: member, outsider: outsider, project: project}
}
