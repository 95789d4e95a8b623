package leaderboard

import (
	"errors"
	"testing"
)

func TestScoreWeightedSum(t *testing.T) {
	entry := Entry{
		UserID:         "user-1",
		FocusHours:     10,
		TasksCompleted: 4,
		Level:          2,
		Experience:     50,
		WeeklyStreak:   1,
	}

	got, err := Score(entry)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	// 10*10 + 4*5 + 2*100 + 50*0.1 + 0 + 0 + 1*15 = 340
	if got != 340 {
		t.Fatalf("expected score 340, got %d", got)
	}
}

func TestScoreZeroEntry(t *testing.T) {
	got, err := Score(Entry{UserID: "user-zero"})
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if got != 0 {
		t.Fatalf("expected score 0 for all-zero input, got %d", got)
	}
}

func TestScoreDeterministic(t *testing.T) {
	entry := Entry{
		FocusHours:     3.5,
		TasksCompleted: 7,
		Level:          4,
		Experience:     1234,
		Badges:         []string{"bronze", "silver"},
		Achievements:   []string{"first_session"},
		WeeklyStreak:   2,
	}

	first, err := Score(entry)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	second, err := Score(entry)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if first != second {
		t.Fatalf("identical input produced different scores: %d vs %d", first, second)
	}
}

func TestScoreRejectsNegativeInput(t *testing.T) {
	tests := []struct {
		name  string
		entry Entry
	}{
		{"negative focus hours", Entry{FocusHours: -1}},
		{"negative tasks", Entry{TasksCompleted: -3}},
		{"negative level", Entry{Level: -1}},
		{"negative experience", Entry{Experience: -10}},
		{"negative streak", Entry{WeeklyStreak: -2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Score(tt.entry); !errors.Is(err, ErrNegativeInput) {
				t.Fatalf("expected ErrNegativeInput, got %v", err)
			}
		})
	}
}
