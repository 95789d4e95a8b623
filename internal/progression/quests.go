package progression

import (
	"fmt"
	"time"
)

// Quest generation is deterministic given (stats, now): the same inputs always
// produce the same candidate set, so concurrent generators cannot race into
// duplicates and tests can pin exact output.

// GenerateDaily produces the day's quest candidates. The validity window is
// 24h from now floored to day granularity (UTC).
func GenerateDaily(stats UserProgression, now time.Time) []Quest {
	dayStart := truncateToDay(now.UTC())
	dayEnd := dayStart.Add(24 * time.Hour)
	dateKey := dayStart.Format("2006-01-02")

	// Focus target scales gently with level so established users keep a
	// meaningful goal.
	focusTarget := 60 + stats.Level*15

	return []Quest{
		{
			ID:          fmt.Sprintf("daily-focus-%s", dateKey),
			Kind:        QuestKindDaily,
			Title:       "Deep Focus",
			Description: fmt.Sprintf("Log %d minutes of focused work today", focusTarget),
			Requirement: Requirement{Kind: RequirementFocusTime, Target: focusTarget},
			Reward:      Reward{Experience: 100, Coins: 20},
			StartDate:   dayStart,
			EndDate:     dayEnd,
		},
		{
			ID:          fmt.Sprintf("daily-sessions-%s", dateKey),
			Kind:        QuestKindDaily,
			Title:       "Session Cadence",
			Description: "Complete 3 focus sessions today",
			Requirement: Requirement{Kind: RequirementSessionCount, Target: 3},
			Reward:      Reward{Experience: 75, Coins: 15},
			StartDate:   dayStart,
			EndDate:     dayEnd,
		},
		{
			ID:          fmt.Sprintf("daily-productivity-%s", dateKey),
			Kind:        QuestKindDaily,
			Title:       "Quality Over Quantity",
			Description: "Keep your average session score above 70",
			Requirement: Requirement{Kind: RequirementProductivityScore, Target: 70},
			Reward:      Reward{Experience: 50, Coins: 10},
			StartDate:   dayStart,
			EndDate:     dayEnd,
		},
	}
}

// GenerateWeekly produces the week's quest candidates. The validity window is
// the 7 days starting at the Monday of the current week (UTC).
func GenerateWeekly(stats UserProgression, now time.Time) []Quest {
	weekStart := getWeekStart(now.UTC())
	weekEnd := weekStart.AddDate(0, 0, 7)
	weekKey := weekStart.Format("2006-01-02")

	weeklyFocusTarget := 300 + stats.Level*60

	return []Quest{
		{
			ID:          fmt.Sprintf("weekly-focus-%s", weekKey),
			Kind:        QuestKindWeekly,
			Title:       "Marathon Week",
			Description: fmt.Sprintf("Accumulate %d focus minutes this week", weeklyFocusTarget),
			Requirement: Requirement{Kind: RequirementFocusTime, Target: weeklyFocusTarget},
			Reward:      Reward{Experience: 400, Coins: 80, Badges: []string{"marathoner"}},
			StartDate:   weekStart,
			EndDate:     weekEnd,
		},
		{
			ID:          fmt.Sprintf("weekly-team-%s", weekKey),
			Kind:        QuestKindWeekly,
			Title:       "Team Player",
			Description: "Do at least half of your sessions in a team room",
			Requirement: Requirement{Kind: RequirementTeamParticipation, Target: 50},
			Reward:      Reward{Experience: 250, Coins: 50},
			StartDate:   weekStart,
			EndDate:     weekEnd,
		},
	}
}

// ActiveQuests filters a candidate set down to quests whose window is still
// open. This is the sole gate for "active": candidates generated from a stale
// now are silently dropped, never surfaced as errors.
func ActiveQuests(quests []Quest, now time.Time) []Quest {
	active := make([]Quest, 0, len(quests))
	for _, q := range quests {
		if q.ActiveAt(now) {
			active = append(active, q)
		}
	}
	return active
}

// questStatus computes progress of a quest against the current stats.
func questStatus(q Quest, stats UserProgression) QuestStatus {
	var current int
	switch q.Requirement.Kind {
	case RequirementFocusTime:
		current = stats.TotalFocusTime
	case RequirementSessionCount:
		current = stats.SessionCount
	case RequirementProductivityScore:
		current = int(stats.AverageSessionScore)
	case RequirementTeamParticipation:
		current = stats.TeamParticipationPercent()
	}

	percent := 0
	if q.Requirement.Target > 0 {
		percent = (current * 100) / q.Requirement.Target
		if percent > 100 {
			percent = 100
		}
	}

	return QuestStatus{
		Quest:           q,
		ProgressPercent: percent,
		Completed:       current >= q.Requirement.Target,
	}
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// getWeekStart returns the Monday of the week containing the given date.
func getWeekStart(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday becomes 7
	}
	return truncateToDay(t.AddDate(0, 0, -(weekday - 1)))
}
