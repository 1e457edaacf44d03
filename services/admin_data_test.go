package services

import (
	"context"
	"errors"
	"testing"

	"github.com/upadhyai/backend/models"
)

type fakeAdminStore struct {
	profiles    []models.Profile
	sessions    []models.TrainingSession
	profilesErr error
	sessionsErr error
	calls       int
}

func (f *fakeAdminStore) GetAllProfiles(ctx context.Context) ([]models.Profile, error) {
	f.calls++
	return f.profiles, f.profilesErr
}

func (f *fakeAdminStore) GetAllTrainingSessions(ctx context.Context) ([]models.TrainingSession, error) {
	f.calls++
	return f.sessions, f.sessionsErr
}

func score(v int) *int { return &v }

func TestAdminDataResolverGating(t *testing.T) {
	store := &fakeAdminStore{
		profiles: []models.Profile{{ID: "p-1"}},
		sessions: []models.TrainingSession{{ID: "s-1"}},
	}
	resolver := NewAdminDataResolver(store)

	data := resolver.Resolve(context.Background(), models.RoleStudent)
	if store.calls != 0 {
		t.Errorf("student role must not trigger queries, got %d calls", store.calls)
	}
	if len(data.Profiles) != 0 || len(data.Sessions) != 0 {
		t.Error("student role must get empty collections")
	}

	for _, role := range []models.RoleName{models.RoleTeacher, models.RoleAdmin} {
		store.calls = 0
		data = resolver.Resolve(context.Background(), role)
		if store.calls != 2 {
			t.Errorf("%s role expected 2 queries, got %d", role, store.calls)
		}
		if len(data.Profiles) != 1 || len(data.Sessions) != 1 {
			t.Errorf("%s role expected full collections", role)
		}
	}
}

func TestAdminDataResolverPartialFailure(t *testing.T) {
	store := &fakeAdminStore{
		profilesErr: errors.New("connection refused"),
		sessions:    []models.TrainingSession{{ID: "s-1"}},
	}
	data := NewAdminDataResolver(store).Resolve(context.Background(), models.RoleAdmin)

	if data.Err == "" {
		t.Error("expected an error to be surfaced")
	}
	if len(data.Sessions) != 1 {
		t.Error("the succeeding query's collection must still be returned")
	}
	if len(data.Profiles) != 0 {
		t.Error("the failing query's collection must be empty")
	}
}

func TestComputeUserAverages(t *testing.T) {
	sessions := []models.TrainingSession{
		{UserID: "u-1", FluencyScore: score(80)},
		{UserID: "u-1", FluencyScore: score(60)},
		{UserID: "u-1", FluencyScore: nil},
		{UserID: "u-2", FluencyScore: nil},
	}

	stats := ComputeUserAverages(sessions)

	// Unscored sessions count toward SessionCount but not the average.
	u1 := stats["u-1"]
	if u1.SessionCount != 3 || u1.ScoredCount != 2 || u1.AverageScore != 70 {
		t.Errorf("u-1 stats = %+v, expected 3 sessions, 2 scored, average 70", u1)
	}

	// A user with only unscored sessions is distinguishable from a user
	// averaging zero: ScoredCount is 0.
	u2 := stats["u-2"]
	if u2.SessionCount != 1 || u2.ScoredCount != 0 || u2.AverageScore != 0 {
		t.Errorf("u-2 stats = %+v, expected 1 session, 0 scored, average 0", u2)
	}
}

func TestPlatformAverage(t *testing.T) {
	if got := PlatformAverage(nil); got != 0 {
		t.Errorf("empty input = %d, expected 0", got)
	}

	sessions := []models.TrainingSession{
		{UserID: "u-1", FluencyScore: score(90)},
		{UserID: "u-2", FluencyScore: score(70)},
		{UserID: "u-3", FluencyScore: nil},
	}
	if got := PlatformAverage(sessions); got != 80 {
		t.Errorf("PlatformAverage = %d, expected 80", got)
	}
}

func TestCountByRole(t *testing.T) {
	admin := &models.Role{Name: "admin"}
	unknown := &models.Role{Name: "superuser"}

	profiles := []models.Profile{
		{ID: "p-1", Role: admin},
		{ID: "p-2", Role: nil},
		{ID: "p-3", Role: unknown},
	}

	counts := CountByRole(profiles)
	if counts[models.RoleAdmin] != 1 {
		t.Errorf("admin count = %d, expected 1", counts[models.RoleAdmin])
	}
	// Missing and unrecognized roles both land in the student bucket.
	if counts[models.RoleStudent] != 2 {
		t.Errorf("student count = %d, expected 2", counts[models.RoleStudent])
	}
}
