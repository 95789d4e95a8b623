package leaderboard

import "context"

// Ranker answers competitive rank queries against the whole population.
type Ranker struct {
	repo Repository
}

// NewRanker creates a ranker backed by the given repository.
func NewRanker(repo Repository) *Ranker {
	return &Ranker{repo: repo}
}

// Rank returns the competitive position for a user whose total focus time (in
// minutes) the caller has already loaded: the count of users with strictly
// greater total focus time, plus one. Ties intentionally share the same rank;
// there is no secondary ordering.
func (r *Ranker) Rank(ctx context.Context, totalFocusTime int) (int, error) {
	higher, err := r.repo.CountFocusTimeAbove(ctx, totalFocusTime)
	if err != nil {
		return 0, err
	}
	return higher + 1, nil
}
