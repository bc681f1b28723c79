package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sidesales/sidesales-backend/internal/model"
	"github.com/sidesales/sidesales-backend/internal/testutil"
)

type countingPurger struct {
	calls int
	err   error
}

func (p *countingPurger) PurgeExpiredSessions(_ context.Context) (int64, error) {
	p.calls++
	return 3, p.err
}

func TestScheduler_AddSessionPurge(t *testing.T) {
	t.Run("accepts descriptors and standard specs", func(t *testing.T) {
		s := NewScheduler()
		for _, spec := range []string{"@hourly", "*/15 * * * *", "@every 30m"} {
			if err := s.AddSessionPurge(spec, &countingPurger{}); err != nil {
				t.Errorf("AddSessionPurge(%q) returned unexpected error: %v", spec, err)
			}
		}
	})

	t.Run("rejects invalid spec", func(t *testing.T) {
		s := NewScheduler()
		if err := s.AddSessionPurge("every now and then", &countingPurger{}); err == nil {
			t.Error("Expected error for invalid spec, got nil")
		}
	})

	t.Run("start and stop", func(t *testing.T) {
		s := NewScheduler()
		if err := s.AddSessionPurge("@hourly", &countingPurger{}); err != nil {
			t.Fatalf("AddSessionPurge() returned unexpected error: %v", err)
		}
		s.Start()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		s.Stop(ctx)
	})
}

func TestPurgeSessions(t *testing.T) {
	t.Run("calls purger", func(t *testing.T) {
		p := &countingPurger{}
		PurgeSessions(context.Background(), p)
		if p.calls != 1 {
			t.Errorf("Expected 1 call, got %d", p.calls)
		}
	})

	t.Run("errors are logged not returned", func(t *testing.T) {
		p := &countingPurger{err: errors.New("database is locked")}
		PurgeSessions(context.Background(), p)
		if p.calls != 1 {
			t.Errorf("Expected 1 call, got %d", p.calls)
		}
	})

	t.Run("purges expired sessions from the database", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestAuthService(t, db)
		user := testutil.CreateUser(t, db, model.RoleViewer)

		past := time.Now().UTC().Add(-time.Hour).Format(time.RFC3339)
		future := time.Now().UTC().Add(time.Hour).Format(time.RFC3339)
		for _, expires := range []string{past, future} {
			_, err := db.Exec(`INSERT INTO sessions (id, user_id, token_id, expires_at, created_at) VALUES (?, ?, ?, ?, ?)`,
				testutil.MakeID(), user.ID, testutil.MakeID(), expires, past)
			if err != nil {
				t.Fatalf("Failed to insert session: %v", err)
			}
		}

		PurgeSessions(context.Background(), svc)

		testutil.AssertRowCount(t, db, "sessions", 1)
	})
}
