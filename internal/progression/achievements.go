package progression

import "time"

// achievementDefinitions is the canonical achievement catalog. Keep IDs stable
// because unlocked achievements reference them forever.
func achievementDefinitions() []AchievementDefinition {
	return []AchievementDefinition{
		{
			ID:          "first_session",
			Name:        "First Steps",
			Description: "Complete your first focus session",
			Criterion:   func(p UserProgression) bool { return p.SessionCount >= 1 },
		},
		{
			ID:          "focus_10h",
			Name:        "Ten Hours Deep",
			Description: "Accumulate 10 hours of focus time",
			Criterion:   func(p UserProgression) bool { return p.TotalFocusTime >= 600 },
		},
		{
			ID:          "focus_100h",
			Name:        "Centurion",
			Description: "Accumulate 100 hours of focus time",
			Criterion:   func(p UserProgression) bool { return p.TotalFocusTime >= 6000 },
		},
		{
			ID:          "level_5",
			Name:        "Climbing",
			Description: "Reach level 5",
			Criterion:   func(p UserProgression) bool { return p.Level >= 5 },
		},
		{
			ID:          "level_10",
			Name:        "Double Digits",
			Description: "Reach level 10",
			Criterion:   func(p UserProgression) bool { return p.Level >= 10 },
		},
		{
			ID:          "streak_4",
			Name:        "Month of Momentum",
			Description: "Keep a 4-week streak alive",
			Criterion:   func(p UserProgression) bool { return p.WeeklyStreak >= 4 },
		},
		{
			ID:          "team_regular",
			Name:        "Better Together",
			Description: "Complete 10 team sessions",
			Criterion:   func(p UserProgression) bool { return p.TeamSessions >= 10 },
		},
		{
			ID:          "high_scorer",
			Name:        "In the Zone",
			Description: "Hold an average session score of 85 or above over 20+ sessions",
			Criterion: func(p UserProgression) bool {
				return p.SessionCount >= 20 && p.AverageSessionScore >= 85
			},
		},
	}
}

type staticCatalog struct{}

// NewStaticCatalog returns the built-in achievement catalog provider.
func NewStaticCatalog() CatalogProvider {
	return staticCatalog{}
}

func (staticCatalog) Achievements() []AchievementDefinition {
	return achievementDefinitions()
}

// Evaluate tests every catalog entry not yet unlocked against the given stats
// and returns the newly unlocked achievements stamped with now. It never
// re-emits an already unlocked ID, so repeated calls are safe; criteria are
// independent predicates, so evaluation order cannot change the result.
func Evaluate(stats UserProgression, catalog []AchievementDefinition, alreadyUnlocked []Achievement, now time.Time) []Achievement {
	unlocked := make(map[string]struct{}, len(alreadyUnlocked))
	for _, a := range alreadyUnlocked {
		unlocked[a.ID] = struct{}{}
	}

	var newly []Achievement
	for _, def := range catalog {
		if _, ok := unlocked[def.ID]; ok {
			continue
		}
		if def.Criterion == nil || !def.Criterion(stats) {
			continue
		}
		newly = append(newly, Achievement{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			UnlockedAt:  now,
		})
	}
	return newly
}
