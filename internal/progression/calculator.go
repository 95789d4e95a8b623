package progression

import (
	"math"
	"time"
)

// Baseline values written exactly once per user. Initialization is an explicit
// state transition with an atomicity contract (insert-if-missing), not an
// incidental branch at read sites.
const (
	baselineLevel = 1

	// xpPerLevelStep is the XP required to leave level L: L * xpPerLevelStep.
	xpPerLevelStep = 500

	coinsPerFocusBlock = 5  // one coin per 5 focus minutes
	coinsPerLevelUp    = 10 // bonus on every level gained
)

// NewBaseline returns the initial progression record for a user.
func NewBaseline(userID string, now time.Time) UserProgression {
	return UserProgression{
		UserID:    userID,
		Level:     baselineLevel,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// experienceToLevelUp is the XP needed to advance past the given level.
func experienceToLevelUp(level int) int {
	return level * xpPerLevelStep
}

// applyExperience credits XP and resolves level-ups. XP carries over across
// level-ups and a large grant may advance several levels.
func applyExperience(p *UserProgression, xp int) (levelsGained int) {
	p.Experience += xp
	for p.Experience >= experienceToLevelUp(p.Level) {
		p.Experience -= experienceToLevelUp(p.Level)
		p.Level++
		levelsGained++
	}
	return levelsGained
}

// advanceWeeklyStreak derives the streak from the week boundaries of the last
// and current activity: consecutive weeks extend it, a skipped week resets it,
// repeat activity within the same week leaves it unchanged.
func advanceWeeklyStreak(current int, lastActive, now time.Time) int {
	if lastActive.IsZero() {
		return 1
	}

	lastWeek := getWeekStart(lastActive.UTC())
	thisWeek := getWeekStart(now.UTC())
	switch {
	case thisWeek.Equal(lastWeek):
		return current
	case thisWeek.Equal(lastWeek.AddDate(0, 0, 7)):
		return current + 1
	default:
		return 1
	}
}

// ApplySession folds a completed focus session into the progression record,
// returning the resulting deltas.
func ApplySession(p *UserProgression, session CompletedSession, now time.Time) (SessionDelta, error) {
	if session.DurationMinutes <= 0 || session.Score < 0 || session.Score > 100 {
		return SessionDelta{}, ErrInvariant
	}

	xpGained := session.DurationMinutes + int(math.Round(session.Score/10))
	levelsGained := applyExperience(p, xpGained)

	coinsGained := session.DurationMinutes/coinsPerFocusBlock + levelsGained*coinsPerLevelUp
	p.Coins += coinsGained

	p.TotalFocusTime += session.DurationMinutes
	p.AverageSessionScore = rollingAverage(p.AverageSessionScore, p.SessionCount, session.Score)
	p.SessionCount++
	if session.TeamSession {
		p.TeamSessions++
	}
	if session.TaskCompleted {
		p.TasksCompleted++
	}
	p.WeeklyStreak = advanceWeeklyStreak(p.WeeklyStreak, p.LastActive, now)
	p.LastActive = now
	p.UpdatedAt = now

	return SessionDelta{
		ExperienceGained: xpGained,
		CoinsGained:      coinsGained,
		LevelsGained:     levelsGained,
		NewLevel:         p.Level,
	}, nil
}

// ApplyReward folds a granted quest reward into the progression record. XP
// follows the same carry-over rules as sessions; badges are kept unique.
func ApplyReward(p *UserProgression, reward Reward, now time.Time) SessionDelta {
	levelsGained := applyExperience(p, reward.Experience)
	coinsGained := reward.Coins + levelsGained*coinsPerLevelUp
	p.Coins += coinsGained

	for _, badge := range reward.Badges {
		if !hasBadge(p.Badges, badge) {
			p.Badges = append(p.Badges, badge)
		}
	}
	p.UpdatedAt = now

	return SessionDelta{
		ExperienceGained: reward.Experience,
		CoinsGained:      coinsGained,
		LevelsGained:     levelsGained,
		NewLevel:         p.Level,
	}
}

func hasBadge(badges []string, name string) bool {
	for _, b := range badges {
		if b == name {
			return true
		}
	}
	return false
}

func rollingAverage(current float64, count int, sample float64) float64 {
	if count <= 0 {
		return sample
	}
	return (current*float64(count) + sample) / float64(count+1)
}
