package leaderboard

import (
	"context"
	"errors"
	"time"
)

// Entry is the derived leaderboard projection kept per user. Its source of
// truth is the user's progression record plus activity counters; it is always
// rebuilt from those, never edited in place.
type Entry struct {
	UserID         string    `json:"userId" firestore:"user_id"`
	FocusHours     float64   `json:"focusHours" firestore:"focus_hours"`
	TasksCompleted int       `json:"tasksCompleted" firestore:"tasks_completed"`
	Level          int       `json:"level" firestore:"level"`
	Experience     int       `json:"experience" firestore:"experience"`
	Badges         []string  `json:"badges" firestore:"badges"`
	Achievements   []string  `json:"achievements" firestore:"achievements"`
	WeeklyStreak   int       `json:"weeklyStreak" firestore:"weekly_streak"`
	TotalFocusTime int       `json:"totalFocusTime" firestore:"total_focus_time"` // minutes, the ranking key
	LastActive     time.Time `json:"lastActive" firestore:"last_active"`

	// Score is recomputed from the other fields on every save and is never
	// independently settable.
	Score int `json:"score" firestore:"score"`
}

var (
	// ErrNotFound indicates the requested leaderboard entry does not exist.
	ErrNotFound = errors.New("leaderboard entry not found")
	// ErrNegativeInput indicates an entry carried a negative counter, which upstream must prevent.
	ErrNegativeInput = errors.New("leaderboard entry has negative input")
)

// Repository defines the interface for leaderboard data access.
type Repository interface {
	GetEntry(ctx context.Context, userID string) (*Entry, error)
	// SaveEntry persists the entry with its score recomputed from the supplied
	// fields inside the same write. The stored entry is returned.
	SaveEntry(ctx context.Context, entry Entry) (*Entry, error)
	// CountFocusTimeAbove returns how many users have strictly more total focus
	// time (in minutes) than the given value.
	CountFocusTimeAbove(ctx context.Context, minutes int) (int, error)
	// TopByScore returns up to limit entries ordered by descending score.
	TopByScore(ctx context.Context, limit int) ([]Entry, error)
}
