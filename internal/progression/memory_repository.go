package progression

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu           sync.RWMutex
	progressions map[string]UserProgression
	achievements map[string]map[string]Achievement // userID -> achievementID -> Achievement
	quests       map[string]map[string]Quest       // userID -> questID -> Quest
	claims       map[string]map[string]time.Time   // userID -> questID -> claimed at
	activities   map[string][]SessionActivity
}

// NewMemoryRepository returns an in-memory repository intended for local
// development and tests. Account existence checks are delegated to the
// identity provider in this mode: every authenticated user is treated as an
// existing, not-yet-initialized account.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		progressions: make(map[string]UserProgression),
		achievements: make(map[string]map[string]Achievement),
		quests:       make(map[string]map[string]Quest),
		claims:       make(map[string]map[string]time.Time),
		activities:   make(map[string][]SessionActivity),
	}
}

func (r *memoryRepository) GetProgression(_ context.Context, userID string) (*UserProgression, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.progressions[userID]
	if !ok {
		return nil, ErrUninitialized
	}
	return &p, nil
}

func (r *memoryRepository) InitializeProgression(_ context.Context, userID string, baseline UserProgression) (*UserProgression, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Insert-if-missing: a concurrent initializer that won the race keeps its
	// record and we hand that back instead of overwriting.
	if existing, ok := r.progressions[userID]; ok {
		return &existing, nil
	}

	r.progressions[userID] = baseline
	stored := baseline
	return &stored, nil
}

func (r *memoryRepository) UpdateProgression(_ context.Context, p UserProgression) (*UserProgression, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.progressions[p.UserID]; !ok {
		return nil, ErrUninitialized
	}

	r.progressions[p.UserID] = p
	stored := p
	return &stored, nil
}

// DebitCoins holds the lock across the balance check and the write so two
// concurrent debits can never both spend the same coins.
func (r *memoryRepository) DebitCoins(_ context.Context, userID string, amount int, now time.Time) (*UserProgression, error) {
	if amount < 0 {
		return nil, ErrInvariant
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.progressions[userID]
	if !ok {
		return nil, ErrUninitialized
	}
	if p.Coins < amount {
		return nil, ErrInsufficientCoins
	}

	p.Coins -= amount
	p.UpdatedAt = now
	r.progressions[userID] = p
	stored := p
	return &stored, nil
}

func (r *memoryRepository) ListAchievements(_ context.Context, userID string) ([]Achievement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var list []Achievement
	for _, a := range r.achievements[userID] {
		list = append(list, a)
	}
	return list, nil
}

func (r *memoryRepository) SaveAchievement(_ context.Context, userID string, achievement Achievement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userStore, ok := r.achievements[userID]
	if !ok {
		userStore = make(map[string]Achievement)
		r.achievements[userID] = userStore
	}

	// Achievements are append-only; an existing unlock is never rewritten.
	if _, exists := userStore[achievement.ID]; exists {
		return nil
	}

	userStore[achievement.ID] = achievement
	return nil
}

func (r *memoryRepository) SaveQuests(_ context.Context, userID string, quests []Quest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userStore, ok := r.quests[userID]
	if !ok {
		userStore = make(map[string]Quest)
		r.quests[userID] = userStore
	}

	for _, q := range quests {
		userStore[q.ID] = q
	}
	return nil
}

func (r *memoryRepository) IsQuestClaimed(_ context.Context, userID, questID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, claimed := r.claims[userID][questID]
	return claimed, nil
}

// ClaimQuestReward marks the claim and applies the reward under one lock
// acquisition, so the grant happens at most once per (user, quest).
func (r *memoryRepository) ClaimQuestReward(_ context.Context, userID string, quest Quest, now time.Time) (*UserProgression, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userClaims, ok := r.claims[userID]
	if !ok {
		userClaims = make(map[string]time.Time)
		r.claims[userID] = userClaims
	}
	if _, claimed := userClaims[quest.ID]; claimed {
		return nil, ErrQuestAlreadyClaimed
	}

	p, ok := r.progressions[userID]
	if !ok {
		return nil, ErrUninitialized
	}

	ApplyReward(&p, quest.Reward, now)
	userClaims[quest.ID] = now
	r.progressions[userID] = p
	stored := p
	return &stored, nil
}

func (r *memoryRepository) RecordActivity(_ context.Context, userID string, activity SessionActivity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.activities[userID] = append(r.activities[userID], activity)
	return nil
}
