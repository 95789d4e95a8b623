package progression

import (
	"context"
	"time"

	"github.com/Jaspreet000/remotify-sub001/internal/leaderboard"
)

// UserProgression is the per-user progression record. Numeric fields start at
// their baseline on first access and are never negative or absent once
// initialized.
type UserProgression struct {
	UserID              string  `json:"user_id" firestore:"user_id"`
	Level               int     `json:"level" firestore:"level"`
	Experience          int     `json:"experience" firestore:"experience"`
	Coins               int     `json:"coins" firestore:"coins"`
	TotalFocusTime      int     `json:"total_focus_time" firestore:"total_focus_time"` // in minutes
	WeeklyStreak        int     `json:"weekly_streak" firestore:"weekly_streak"`
	AverageSessionScore float64 `json:"average_session_score" firestore:"average_session_score"`

	// Activity counters feeding quest progress and the leaderboard projection.
	SessionCount   int      `json:"session_count" firestore:"session_count"`
	TasksCompleted int      `json:"tasks_completed" firestore:"tasks_completed"`
	TeamSessions   int      `json:"team_sessions" firestore:"team_sessions"`
	Badges         []string `json:"badges" firestore:"badges"`

	LastActive time.Time `json:"last_active" firestore:"last_active"`
	CreatedAt  time.Time `json:"created_at" firestore:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" firestore:"updated_at"`
}

// validate rejects records that break the non-negativity invariants before
// they can be persisted.
func (p UserProgression) validate() error {
	if p.Level < 1 || p.Experience < 0 || p.Coins < 0 || p.TotalFocusTime < 0 ||
		p.WeeklyStreak < 0 || p.AverageSessionScore < 0 || p.AverageSessionScore > 100 ||
		p.SessionCount < 0 || p.TasksCompleted < 0 || p.TeamSessions < 0 {
		return ErrInvariant
	}
	return nil
}

// TeamParticipationPercent reports the share of sessions done in a team room.
func (p UserProgression) TeamParticipationPercent() int {
	if p.SessionCount <= 0 {
		return 0
	}
	percent := (p.TeamSessions * 100) / p.SessionCount
	if percent > 100 {
		percent = 100
	}
	return percent
}

// QuestKind distinguishes the two quest validity windows.
type QuestKind string

const (
	QuestKindDaily  QuestKind = "daily"
	QuestKindWeekly QuestKind = "weekly"
)

// RequirementKind identifies how quest progress is measured.
type RequirementKind string

const (
	RequirementFocusTime         RequirementKind = "focus_time"
	RequirementSessionCount      RequirementKind = "session_count"
	RequirementProductivityScore RequirementKind = "productivity_score"
	RequirementTeamParticipation RequirementKind = "team_participation"
)

// Requirement is a quest's completion criterion.
type Requirement struct {
	Kind   RequirementKind `json:"kind" firestore:"kind"`
	Target int             `json:"target" firestore:"target"`
}

// Reward is granted when a quest is completed.
type Reward struct {
	Experience int      `json:"experience" firestore:"experience"`
	Coins      int      `json:"coins" firestore:"coins"`
	Badges     []string `json:"badges,omitempty" firestore:"badges"`
}

// Quest is a time-boxed objective generated per day or per week. A quest is
// active iff now is strictly before EndDate; expired quests are filtered from
// responses but kept in storage for completion auditing.
type Quest struct {
	ID          string      `json:"id" firestore:"id"`
	Kind        QuestKind   `json:"kind" firestore:"kind"`
	Title       string      `json:"title" firestore:"title"`
	Description string      `json:"description" firestore:"description"`
	Requirement Requirement `json:"requirement" firestore:"requirement"`
	Reward      Reward      `json:"reward" firestore:"reward"`
	StartDate   time.Time   `json:"startDate" firestore:"start_date"`
	EndDate     time.Time   `json:"endDate" firestore:"end_date"`
}

// ActiveAt reports whether the quest is still running at the given instant.
// A quest whose window has just closed (EndDate == now) is not active.
func (q Quest) ActiveAt(now time.Time) bool {
	return now.Before(q.EndDate)
}

// Validate rejects malformed quest windows.
func (q Quest) Validate() error {
	if !q.EndDate.After(q.StartDate) {
		return ErrInvariant
	}
	return nil
}

// QuestStatus pairs a quest with progress computed against current stats.
type QuestStatus struct {
	Quest
	ProgressPercent int  `json:"progressPercent"`
	Completed       bool `json:"completed"`
	Claimed         bool `json:"claimed"`
}

// Achievement is an unlocked achievement instance. Achievements are append
// only: once created they are immutable and never re-locked.
type Achievement struct {
	ID          string    `json:"id" firestore:"id"`
	Name        string    `json:"name" firestore:"name"`
	Description string    `json:"description" firestore:"description"`
	UnlockedAt  time.Time `json:"unlocked_at" firestore:"unlocked_at"`
}

// AchievementDefinition is a static catalog entry with its unlock predicate.
type AchievementDefinition struct {
	ID          string
	Name        string
	Description string
	// Criterion reports whether the achievement is satisfied by the given stats.
	Criterion func(UserProgression) bool
}

// CatalogProvider supplies the static achievement catalog.
type CatalogProvider interface {
	Achievements() []AchievementDefinition
}

// PowerUp is a coin-purchasable boost listed alongside quests.
type PowerUp struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Cost            int    `json:"cost"`
	Effect          string `json:"effect"`
	DurationMinutes int    `json:"durationMinutes"`
}

// CompletedSession is the activity input applied to a user's progression.
type CompletedSession struct {
	DurationMinutes int     `json:"duration_minutes" validate:"required,gt=0"`
	Score           float64 `json:"session_score" validate:"gte=0,lte=100"`
	Category        string  `json:"category"`
	TeamSession     bool    `json:"team_session"`
	TaskCompleted   bool    `json:"task_completed"`
}

// SessionDelta reports what a recorded session changed.
type SessionDelta struct {
	ExperienceGained int `json:"experienceGained"`
	CoinsGained      int `json:"coinsGained"`
	LevelsGained     int `json:"levelsGained"`
	NewLevel         int `json:"newLevel"`
}

// SessionActivity is the audit record written for every applied session.
type SessionActivity struct {
	ID              string    `json:"id" firestore:"id"`
	DurationMinutes int       `json:"duration_minutes" firestore:"duration_minutes"`
	Score           float64   `json:"score" firestore:"score"`
	Category        string    `json:"category" firestore:"category"`
	TeamSession     bool      `json:"team_session" firestore:"team_session"`
	RecordedAt      time.Time `json:"recorded_at" firestore:"recorded_at"`
}

// StatsPayload is the wire shape of the stats block. Field names are a
// compatibility contract with existing clients.
type StatsPayload struct {
	Level           int `json:"level"`
	XP              int `json:"xp"`
	Coins           int `json:"coins"`
	TotalFocusTime  int `json:"totalFocusTime"`
	WeeklyStreak    int `json:"weeklyStreak"`
	Achievements    int `json:"achievements"`
	LeaderboardRank int `json:"leaderboardRank"`
}

// AchievementPayload is the wire shape of an unlocked achievement.
type AchievementPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	UnlockedAt  string `json:"unlockedAt,omitempty"` // RFC 3339
}

// ProgressionResponse is returned by GET /v1/progression.
type ProgressionResponse struct {
	Quests       []QuestStatus        `json:"quests"`
	PowerUps     []PowerUp            `json:"powerUps"`
	Stats        StatsPayload         `json:"stats"`
	Achievements []AchievementPayload `json:"achievements"`
}

// SessionResult is returned by POST /v1/progression/sessions.
type SessionResult struct {
	Stats StatsPayload `json:"stats"`
	Delta SessionDelta `json:"delta"`
}

// RedeemResult is returned when a power-up purchase succeeds.
type RedeemResult struct {
	PowerUp        PowerUp   `json:"powerUp"`
	CoinsRemaining int       `json:"coinsRemaining"`
	RedeemedAt     time.Time `json:"redeemedAt"`
}

// ClaimResult is returned when a quest reward is granted.
type ClaimResult struct {
	QuestID string       `json:"questId"`
	Reward  Reward       `json:"reward"`
	Stats   StatsPayload `json:"stats"`
	Delta   SessionDelta `json:"delta"`
}

// LeaderboardView is returned by GET /v1/leaderboard. Me is the caller's own
// projection entry, nil until one has been published.
type LeaderboardView struct {
	Entries []leaderboard.Entry `json:"entries"`
	Rank    int                 `json:"rank"`
	Me      *leaderboard.Entry  `json:"me,omitempty"`
}

// Repository defines the interface for progression data access.
type Repository interface {
	// GetProgression returns ErrNotFound when the user has no account record
	// and ErrUninitialized when the account exists but progression state was
	// never written.
	GetProgression(ctx context.Context, userID string) (*UserProgression, error)
	// InitializeProgression atomically inserts the baseline if no progression
	// state exists yet and returns the stored record. When a concurrent
	// request wins the insert, the winner's record is returned.
	InitializeProgression(ctx context.Context, userID string, baseline UserProgression) (*UserProgression, error)
	UpdateProgression(ctx context.Context, p UserProgression) (*UserProgression, error)
	// DebitCoins checks and subtracts the amount from the stored coin balance
	// in a single atomic step, so two concurrent debits can never both spend
	// the same coins. ErrInsufficientCoins when the balance cannot cover it.
	DebitCoins(ctx context.Context, userID string, amount int, now time.Time) (*UserProgression, error)

	ListAchievements(ctx context.Context, userID string) ([]Achievement, error)
	// SaveAchievement creates the achievement keyed by (userID, achievement ID)
	// if absent; an existing record is left untouched.
	SaveAchievement(ctx context.Context, userID string, achievement Achievement) error

	// SaveQuests upserts quests keyed by (userID, quest ID). Expired quests
	// already in storage are retained for auditing.
	SaveQuests(ctx context.Context, userID string, quests []Quest) error
	IsQuestClaimed(ctx context.Context, userID, questID string) (bool, error)
	// ClaimQuestReward records the claim keyed by (userID, quest ID) and
	// applies the reward to the progression record in a single atomic step.
	// A quest already claimed returns ErrQuestAlreadyClaimed unchanged.
	ClaimQuestReward(ctx context.Context, userID string, quest Quest, now time.Time) (*UserProgression, error)

	RecordActivity(ctx context.Context, userID string, activity SessionActivity) error
}

// Service defines the progression service interface.
type Service interface {
	GetProgression(ctx context.Context, userID string) (*ProgressionResponse, error)
	RecordSession(ctx context.Context, userID string, session CompletedSession) (*SessionResult, error)
	ClaimQuest(ctx context.Context, userID, questID string) (*ClaimResult, error)
	RedeemPowerUp(ctx context.Context, userID, powerUpID string) (*RedeemResult, error)
	Leaderboard(ctx context.Context, userID string, limit int) (*LeaderboardView, error)
}
