package progression

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestInitializeProgressionIdempotent(t *testing.T) {
	repo := NewMemoryRepository()
	now := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	first, err := repo.InitializeProgression(context.Background(), "user-1", NewBaseline("user-1", now))
	if err != nil {
		t.Fatalf("InitializeProgression: %v", err)
	}

	// A second initialization must be a no-op that hands back the stored record.
	later := NewBaseline("user-1", now.Add(time.Hour))
	second, err := repo.InitializeProgression(context.Background(), "user-1", later)
	if err != nil {
		t.Fatalf("InitializeProgression (second): %v", err)
	}

	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("second initialization overwrote the baseline: %v vs %v", second.CreatedAt, first.CreatedAt)
	}
}

func TestInitializeProgressionConcurrent(t *testing.T) {
	repo := NewMemoryRepository()
	base := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	const workers = 16
	results := make([]*UserProgression, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			baseline := NewBaseline("user-1", base.Add(time.Duration(i)*time.Millisecond))
			stored, err := repo.InitializeProgression(context.Background(), "user-1", baseline)
			if err != nil {
				t.Errorf("InitializeProgression: %v", err)
				return
			}
			results[i] = stored
		}(i)
	}
	wg.Wait()

	// Exactly one baseline won; every caller observed that same record.
	winner := results[0]
	for i, got := range results {
		if got == nil {
			t.Fatalf("worker %d returned nil", i)
		}
		if !got.CreatedAt.Equal(winner.CreatedAt) {
			t.Fatalf("worker %d observed a different baseline: %v vs %v", i, got.CreatedAt, winner.CreatedAt)
		}
	}

	stored, err := repo.GetProgression(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetProgression: %v", err)
	}
	if stored.Level != 1 || stored.Experience != 0 {
		t.Fatalf("stored record is not a clean baseline: %+v", stored)
	}
}

func TestUpdateProgressionRejectsNegativeCounters(t *testing.T) {
	repo := NewMemoryRepository()
	now := time.Now()

	if _, err := repo.InitializeProgression(context.Background(), "user-1", NewBaseline("user-1", now)); err != nil {
		t.Fatalf("InitializeProgression: %v", err)
	}

	corrupt := NewBaseline("user-1", now)
	corrupt.Coins = -5

	if _, err := repo.UpdateProgression(context.Background(), corrupt); err == nil {
		t.Fatal("expected invariant violation for negative coins")
	}
}

func TestDebitCoinsChecksAndSubtractsAtomically(t *testing.T) {
	repo := NewMemoryRepository()
	now := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	stored, err := repo.InitializeProgression(context.Background(), "user-1", NewBaseline("user-1", now))
	if err != nil {
		t.Fatalf("InitializeProgression: %v", err)
	}
	stored.Coins = 50
	if _, err := repo.UpdateProgression(context.Background(), *stored); err != nil {
		t.Fatalf("UpdateProgression: %v", err)
	}

	// Two racing 50-coin debits against a 50-coin balance: the check and the
	// subtraction share one critical section, so only one can go through.
	const workers = 2
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.DebitCoins(context.Background(), "user-1", 50, now)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrInsufficientCoins):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("debited %d times from a single 50-coin balance", successes)
	}

	final, err := repo.GetProgression(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetProgression: %v", err)
	}
	if final.Coins != 0 {
		t.Fatalf("final coins = %d, want 0", final.Coins)
	}
}

func TestClaimQuestRewardGrantsOnce(t *testing.T) {
	repo := NewMemoryRepository()
	now := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

	if _, err := repo.InitializeProgression(context.Background(), "user-1", NewBaseline("user-1", now)); err != nil {
		t.Fatalf("InitializeProgression: %v", err)
	}

	quest := Quest{
		ID:     "weekly-focus-2024-04-01",
		Reward: Reward{Experience: 100, Coins: 40, Badges: []string{"marathoner"}},
	}

	const workers = 4
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.ClaimQuestReward(context.Background(), "user-1", quest, now)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrQuestAlreadyClaimed):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 {
		t.Fatalf("reward granted %d times", successes)
	}

	final, err := repo.GetProgression(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetProgression: %v", err)
	}
	if final.Coins != 40 || len(final.Badges) != 1 {
		t.Fatalf("reward applied more than once: coins=%d badges=%v", final.Coins, final.Badges)
	}

	claimed, err := repo.IsQuestClaimed(context.Background(), "user-1", quest.ID)
	if err != nil {
		t.Fatalf("IsQuestClaimed: %v", err)
	}
	if !claimed {
		t.Fatal("claim marker missing after grant")
	}
}

func TestSaveAchievementAppendOnly(t *testing.T) {
	repo := NewMemoryRepository()
	first := Achievement{ID: "first_session", Name: "First Steps", UnlockedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	if err := repo.SaveAchievement(context.Background(), "user-1", first); err != nil {
		t.Fatalf("SaveAchievement: %v", err)
	}

	// Saving again with a different timestamp must not rewrite the unlock.
	replay := first
	replay.UnlockedAt = first.UnlockedAt.Add(24 * time.Hour)
	if err := repo.SaveAchievement(context.Background(), "user-1", replay); err != nil {
		t.Fatalf("SaveAchievement (replay): %v", err)
	}

	list, err := repo.ListAchievements(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListAchievements: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected one achievement, got %d", len(list))
	}
	if !list[0].UnlockedAt.Equal(first.UnlockedAt) {
		t.Fatalf("unlock timestamp was rewritten: %v", list[0].UnlockedAt)
	}
}
