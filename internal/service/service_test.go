package service

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"alcyxob/fitness-coach/internal/authz"
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository/sqlite"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fixture wires the services onto an in-memory SQLite database seeded with
// two trainers and two students. trainer is linked to student only.
type fixture struct {
	db          *sql.DB
	users       *sqlite.UserStore
	links       *sqlite.LinkStore
	assessments *sqlite.AssessmentStore
	plans       *sqlite.WorkoutPlanStore
	logs        *sqlite.WorkoutLogStore
	guard       *authz.Guard

	trainer, otherTrainer, student, otherStudent domain.Actor
}

func newFixture(t *testing.T, policy authz.Policy) *fixture {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.InitDB(db))
	return seedFixture(t, db, policy)
}

// newFileFixture is newFixture on a WAL database file, so several
// connections can write concurrently.
func newFileFixture(t *testing.T, policy authz.Policy) *fixture {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "coach.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return seedFixture(t, db, policy)
}

func seedFixture(t *testing.T, db *sql.DB, policy authz.Policy) *fixture {
	t.Helper()
	f := &fixture{
		db:          db,
		users:       sqlite.NewUserStore(db),
		links:       sqlite.NewLinkStore(db),
		assessments: sqlite.NewAssessmentStore(db),
		plans:       sqlite.NewWorkoutPlanStore(db),
		logs:        sqlite.NewWorkoutLogStore(db),
	}
	f.guard = authz.NewGuard(f.links, policy)

	f.trainer = f.addUser(t, "Carla Coach", "carla@example.com", domain.RoleTrainer, nil)
	f.otherTrainer = f.addUser(t, "Otto Coach", "otto@example.com", domain.RoleTrainer, nil)
	f.student = f.addUser(t, "Ana Souza", "ana@example.com", domain.RoleStudent, func(u *domain.User) {
		age := 25
		u.Age = &age
	})
	f.otherStudent = f.addUser(t, "Bruno Lima", "bruno@example.com", domain.RoleStudent, nil)

	_, err := f.links.Link(context.Background(), f.trainer.ID, f.student.ID)
	require.NoError(t, err)
	return f
}

func (f *fixture) addUser(t *testing.T, name, email string, role domain.Role, mutate func(*domain.User)) domain.Actor {
	t.Helper()
	u := &domain.User{Name: name, Email: email, PasswordHash: "not-a-real-hash", Role: role}
	if mutate != nil {
		mutate(u)
	}
	_, err := f.users.Create(context.Background(), u)
	require.NoError(t, err)
	return domain.Actor{ID: u.ID, Role: u.Role}
}

// errorAs asserts err is of type T and returns it.
func errorAs[T error](t *testing.T, err error) T {
	t.Helper()
	var target T
	require.Error(t, err)
	require.True(t, errors.As(err, &target), "expected %T, got %T: %v", target, err, err)
	return target
}

func requireDenied(t *testing.T, err error, reason authz.Reason) {
	t.Helper()
	authErr := errorAs[*domain.AuthorizationError](t, err)
	require.Equal(t, string(reason), authErr.Reason)
}

// brokenLinks fails every lookup.
type brokenLinks struct{}

var errLinksDown = errors.New("links table unavailable")

func (brokenLinks) IsLinked(context.Context, primitive.ObjectID, primitive.ObjectID) (bool, error) {
	return false, errLinksDown
}

func TestAuthorizeMapsLookupFailureToStoreError(t *testing.T) {
	guard := authz.NewGuard(brokenLinks{}, authz.DefaultPolicy)
	trainer := domain.Actor{ID: primitive.NewObjectID(), Role: domain.RoleTrainer}

	err := authorize(context.Background(), guard, authz.Request{
		Actor:    trainer,
		Action:   authz.Read,
		Resource: authz.Assessment,
		OwnerID:  primitive.NewObjectID(),
	})

	storeErr := errorAs[*domain.StoreError](t, err)
	require.ErrorIs(t, storeErr, errLinksDown)
	require.Equal(t, "storage failure", err.Error())
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	got := StartOfDay(time.Date(2024, 5, 10, 23, 59, 0, 0, loc))
	require.Equal(t, time.Date(2024, 5, 10, 0, 0, 0, 0, loc), got)
}
