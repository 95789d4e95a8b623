package progression

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Jaspreet000/remotify-sub001/internal/leaderboard"
)

type service struct {
	repo    Repository
	boards  leaderboard.Repository
	ranker  *leaderboard.Ranker
	catalog CatalogProvider
	now     func() time.Time
}

// NewService creates a new progression service.
func NewService(repo Repository, boards leaderboard.Repository, catalog CatalogProvider) Service {
	return &service{
		repo:    repo,
		boards:  boards,
		ranker:  leaderboard.NewRanker(boards),
		catalog: catalog,
		now:     time.Now,
	}
}

// GetProgression runs the full pipeline for a single request: load (or
// initialize) stats, derive quests and achievements, compute rank, assemble.
// Beyond the idempotent initialization write nothing is persisted on failure.
func (s *service) GetProgression(ctx context.Context, userID string) (*ProgressionResponse, error) {
	if userID == "" {
		return nil, ErrNotFound
	}

	stats, err := s.loadOrInitialize(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	var (
		unlocked []Achievement
		rank     int
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := s.repo.ListAchievements(gctx, userID)
		if err != nil {
			return err
		}
		unlocked = list
		return nil
	})

	g.Go(func() error {
		r, err := s.ranker.Rank(gctx, stats.TotalFocusTime)
		if err != nil {
			return err
		}
		rank = r
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	newly := Evaluate(*stats, s.catalog.Achievements(), unlocked, now)
	for _, achievement := range newly {
		if err := s.repo.SaveAchievement(ctx, userID, achievement); err != nil {
			return nil, err
		}
	}
	unlocked = append(unlocked, newly...)

	quests := append(GenerateDaily(*stats, now), GenerateWeekly(*stats, now)...)
	for _, q := range quests {
		if err := q.Validate(); err != nil {
			return nil, err
		}
	}
	if err := s.repo.SaveQuests(ctx, userID, quests); err != nil {
		return nil, err
	}

	active := ActiveQuests(quests, now)
	statuses := make([]QuestStatus, 0, len(active))
	for _, q := range active {
		claimed, err := s.repo.IsQuestClaimed(ctx, userID, q.ID)
		if err != nil {
			return nil, err
		}
		status := questStatus(q, *stats)
		status.Claimed = claimed
		statuses = append(statuses, status)
	}

	achievements := make([]AchievementPayload, 0, len(unlocked))
	for _, a := range unlocked {
		payload := AchievementPayload{ID: a.ID, Name: a.Name, Description: a.Description}
		if !a.UnlockedAt.IsZero() {
			payload.UnlockedAt = a.UnlockedAt.UTC().Format(time.RFC3339)
		}
		achievements = append(achievements, payload)
	}

	return &ProgressionResponse{
		Quests:       statuses,
		PowerUps:     powerUpCatalog(),
		Stats:        buildStats(*stats, len(unlocked), rank),
		Achievements: achievements,
	}, nil
}

// RecordSession applies a completed focus session and rewrites the leaderboard
// projection; the projection's score is recomputed inside the same save so it
// can never go stale relative to its inputs.
func (s *service) RecordSession(ctx context.Context, userID string, session CompletedSession) (*SessionResult, error) {
	if userID == "" {
		return nil, ErrNotFound
	}

	stats, err := s.loadOrInitialize(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	delta, err := ApplySession(stats, session, now)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateProgression(ctx, *stats)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.repo.ListAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	newly := Evaluate(*updated, s.catalog.Achievements(), unlocked, now)
	for _, achievement := range newly {
		if err := s.repo.SaveAchievement(ctx, userID, achievement); err != nil {
			return nil, err
		}
	}
	unlocked = append(unlocked, newly...)

	if _, err := s.boards.SaveEntry(ctx, projectEntry(*updated, unlocked)); err != nil {
		return nil, err
	}

	activity := SessionActivity{
		ID:              uuid.NewString(),
		DurationMinutes: session.DurationMinutes,
		Score:           session.Score,
		Category:        session.Category,
		TeamSession:     session.TeamSession,
		RecordedAt:      now,
	}
	if err := s.repo.RecordActivity(ctx, userID, activity); err != nil {
		return nil, err
	}

	rank, err := s.ranker.Rank(ctx, updated.TotalFocusTime)
	if err != nil {
		return nil, err
	}

	return &SessionResult{
		Stats: buildStats(*updated, len(unlocked), rank),
		Delta: delta,
	}, nil
}

// ClaimQuest grants the reward of a completed, still-active quest. The grant
// itself is delegated to the repository as one atomic claim-and-apply step, so
// replayed or racing claims cannot double-award.
func (s *service) ClaimQuest(ctx context.Context, userID, questID string) (*ClaimResult, error) {
	if userID == "" {
		return nil, ErrNotFound
	}

	stats, err := s.loadOrInitialize(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()

	// Only the current generation is claimable; a stale id from a closed
	// window never matches.
	var quest *Quest
	for _, q := range append(GenerateDaily(*stats, now), GenerateWeekly(*stats, now)...) {
		if q.ID == questID {
			candidate := q
			quest = &candidate
			break
		}
	}
	if quest == nil {
		return nil, ErrUnknownQuest
	}

	if !questStatus(*quest, *stats).Completed {
		return nil, ErrQuestNotCompleted
	}

	before := *stats
	updated, err := s.repo.ClaimQuestReward(ctx, userID, *quest, now)
	if err != nil {
		return nil, err
	}

	unlocked, err := s.repo.ListAchievements(ctx, userID)
	if err != nil {
		return nil, err
	}
	newly := Evaluate(*updated, s.catalog.Achievements(), unlocked, now)
	for _, achievement := range newly {
		if err := s.repo.SaveAchievement(ctx, userID, achievement); err != nil {
			return nil, err
		}
	}
	unlocked = append(unlocked, newly...)

	// Badges and XP feed the score, so the projection is rebuilt right away.
	if _, err := s.boards.SaveEntry(ctx, projectEntry(*updated, unlocked)); err != nil {
		return nil, err
	}

	rank, err := s.ranker.Rank(ctx, updated.TotalFocusTime)
	if err != nil {
		return nil, err
	}

	return &ClaimResult{
		QuestID: quest.ID,
		Reward:  quest.Reward,
		Stats:   buildStats(*updated, len(unlocked), rank),
		Delta: SessionDelta{
			ExperienceGained: quest.Reward.Experience,
			CoinsGained:      updated.Coins - before.Coins,
			LevelsGained:     updated.Level - before.Level,
			NewLevel:         updated.Level,
		},
	}, nil
}

func (s *service) RedeemPowerUp(ctx context.Context, userID, powerUpID string) (*RedeemResult, error) {
	if userID == "" {
		return nil, ErrNotFound
	}

	powerUp, ok := findPowerUp(powerUpID)
	if !ok {
		return nil, ErrUnknownPowerUp
	}

	if _, err := s.loadOrInitialize(ctx, userID); err != nil {
		return nil, err
	}

	now := s.now()

	// The repository owns the check-and-debit; re-checking the balance here
	// would race against concurrent redemptions.
	updated, err := s.repo.DebitCoins(ctx, userID, powerUp.Cost, now)
	if err != nil {
		return nil, err
	}

	return &RedeemResult{
		PowerUp:        powerUp,
		CoinsRemaining: updated.Coins,
		RedeemedAt:     now,
	}, nil
}

func (s *service) Leaderboard(ctx context.Context, userID string, limit int) (*LeaderboardView, error) {
	stats, err := s.loadOrInitialize(ctx, userID)
	if err != nil {
		return nil, err
	}

	var (
		entries []leaderboard.Entry
		rank    int
		me      *leaderboard.Entry
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := s.boards.TopByScore(gctx, limit)
		if err != nil {
			return err
		}
		entries = list
		return nil
	})

	g.Go(func() error {
		r, err := s.ranker.Rank(gctx, stats.TotalFocusTime)
		if err != nil {
			return err
		}
		rank = r
		return nil
	})

	g.Go(func() error {
		entry, err := s.boards.GetEntry(gctx, userID)
		if errors.Is(err, leaderboard.ErrNotFound) {
			// Projection not published yet; the caller still gets a rank.
			return nil
		}
		if err != nil {
			return err
		}
		me = entry
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &LeaderboardView{Entries: entries, Rank: rank, Me: me}, nil
}

// loadOrInitialize fetches progression state, performing the one-time atomic
// baseline insert when the account exists but was never initialized. The
// matching leaderboard projection is written right after a successful insert
// so rank queries see the new user immediately.
func (s *service) loadOrInitialize(ctx context.Context, userID string) (*UserProgression, error) {
	stats, err := s.repo.GetProgression(ctx, userID)
	if err == nil {
		return stats, nil
	}
	if !errors.Is(err, ErrUninitialized) {
		return nil, err
	}

	baseline := NewBaseline(userID, s.now())
	stats, err = s.repo.InitializeProgression(ctx, userID, baseline)
	if err != nil {
		return nil, err
	}

	if _, err := s.boards.SaveEntry(ctx, projectEntry(*stats, nil)); err != nil {
		return nil, err
	}

	return stats, nil
}

// projectEntry rebuilds the derived leaderboard projection from progression
// state; the projection is never hand-edited.
func projectEntry(p UserProgression, unlocked []Achievement) leaderboard.Entry {
	achievementIDs := make([]string, 0, len(unlocked))
	for _, a := range unlocked {
		achievementIDs = append(achievementIDs, a.ID)
	}

	return leaderboard.Entry{
		UserID:         p.UserID,
		FocusHours:     float64(p.TotalFocusTime) / 60,
		TasksCompleted: p.TasksCompleted,
		Level:          p.Level,
		Experience:     p.Experience,
		Badges:         p.Badges,
		Achievements:   achievementIDs,
		WeeklyStreak:   p.WeeklyStreak,
		TotalFocusTime: p.TotalFocusTime,
		LastActive:     p.LastActive,
	}
}

func buildStats(p UserProgression, achievementCount, rank int) StatsPayload {
	return StatsPayload{
		Level:           p.Level,
		XP:              p.Experience,
		Coins:           p.Coins,
		TotalFocusTime:  p.TotalFocusTime,
		WeeklyStreak:    p.WeeklyStreak,
		Achievements:    achievementCount,
		LeaderboardRank: rank,
	}
}
