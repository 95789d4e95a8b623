package leaderboard

import "math"

// Score coefficients are a compatibility contract with existing clients:
// changing any of them changes user-visible rankings and must be versioned,
// never silently tuned.
const (
	focusHoursWeight   = 10
	tasksWeight        = 5
	levelWeight        = 100
	experienceWeight   = 0.1
	badgeWeight        = 50
	achievementWeight  = 25
	weeklyStreakWeight = 15
)

// Score computes the weighted leaderboard score for an entry. It is pure and
// deterministic. Negative counters are a contract violation and are rejected
// rather than propagated into a negative score.
func Score(e Entry) (int, error) {
	if e.FocusHours < 0 || e.TasksCompleted < 0 || e.Level < 0 || e.Experience < 0 || e.WeeklyStreak < 0 {
		return 0, ErrNegativeInput
	}

	sum := e.FocusHours*focusHoursWeight +
		float64(e.TasksCompleted)*tasksWeight +
		float64(e.Level)*levelWeight +
		float64(e.Experience)*experienceWeight +
		float64(len(e.Badges))*badgeWeight +
		float64(len(e.Achievements))*achievementWeight +
		float64(e.WeeklyStreak)*weeklyStreakWeight

	return int(math.Round(sum)), nil
}
