package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/nhle/voter-roll/internal/model"
	"github.com/nhle/voter-roll/internal/store"
)

// NewTestStore creates an in-memory SQLStore with all migrations applied.
// It automatically closes the store when the test completes.
func NewTestStore(t *testing.T) *store.SQLStore {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("creating test store: %v", err)
	}

	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("closing test store: %v", err)
		}
	})

	return s
}

// SeedBooth creates ward and booth (if needed) and n voters in it with ids
// "<booth>-<serial>", names "Voter <serial>" and serials 1..n.
func SeedBooth(t *testing.T, s store.Store, wardNo, booth, n int) []model.Voter {
	t.Helper()
	ctx := context.Background()

	if err := s.UpsertWard(ctx, wardNo, fmt.Sprintf("Ward %d", wardNo)); err != nil {
		t.Fatalf("seeding ward: %v", err)
	}
	err := s.UpsertBooth(ctx, model.Booth{
		BoothNumber: booth,
		WardNo:      wardNo,
		Location:    fmt.Sprintf("Booth %d school", booth),
	})
	if err != nil {
		t.Fatalf("seeding booth: %v", err)
	}

	voters := make([]model.Voter, 0, n)
	for i := 1; i <= n; i++ {
		voters = append(voters, model.Voter{
			ID:          fmt.Sprintf("%d-%03d", booth, i),
			SerialNo:    i,
			Name:        fmt.Sprintf("Voter %d", i),
			Age:         18 + i%60,
			Gender:      "F",
			BoothNumber: booth,
		})
	}
	if err := s.UpsertVoters(ctx, voters); err != nil {
		t.Fatalf("seeding voters: %v", err)
	}
	return voters
}
