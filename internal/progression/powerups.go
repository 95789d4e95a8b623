package progression

// powerUpCatalog is the static list of purchasable boosts. IDs must remain
// stable; clients cache them.
func powerUpCatalog() []PowerUp {
	return []PowerUp{
		{
			ID:              "double_xp",
			Name:            "Double XP",
			Description:     "Earn twice the experience from sessions for one hour",
			Cost:            50,
			Effect:          "xp_multiplier_2x",
			DurationMinutes: 60,
		},
		{
			ID:              "streak_shield",
			Name:            "Streak Shield",
			Description:     "Protect your weekly streak from one missed week",
			Cost:            120,
			Effect:          "streak_protection",
			DurationMinutes: 0,
		},
		{
			ID:              "quest_reroll",
			Name:            "Quest Reroll",
			Description:     "Swap one daily quest for a fresh one",
			Cost:            30,
			Effect:          "daily_quest_reroll",
			DurationMinutes: 0,
		},
	}
}

func findPowerUp(id string) (PowerUp, bool) {
	for _, p := range powerUpCatalog() {
		if p.ID == id {
			return p, true
		}
	}
	return PowerUp{}, false
}
