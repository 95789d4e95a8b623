package leaderboard

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const leaderboardCollection = "leaderboard"

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository instantiates a Firestore-backed repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) GetEntry(ctx context.Context, userID string) (*Entry, error) {
	doc, err := r.client.Collection(leaderboardCollection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var entry Entry
	if err := doc.DataTo(&entry); err != nil {
		return nil, fmt.Errorf("unmarshal leaderboard entry: %w", err)
	}
	entry.UserID = doc.Ref.ID
	return &entry, nil
}

func (r *firestoreRepository) SaveEntry(ctx context.Context, entry Entry) (*Entry, error) {
	score, err := Score(entry)
	if err != nil {
		return nil, err
	}
	entry.Score = score

	// Score and the fields it derives from land in a single document write, so
	// readers can never observe a score stale relative to its inputs.
	if _, err := r.client.Collection(leaderboardCollection).Doc(entry.UserID).Set(ctx, entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *firestoreRepository) CountFocusTimeAbove(ctx context.Context, minutes int) (int, error) {
	query := r.client.Collection(leaderboardCollection).Where("total_focus_time", ">", minutes)

	results, err := query.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return 0, err
	}

	raw, ok := results["all"]
	if !ok {
		return 0, fmt.Errorf("aggregation result missing count")
	}
	value, ok := raw.(*firestorepb.Value)
	if !ok {
		return 0, fmt.Errorf("unexpected aggregation result type %T", raw)
	}
	return int(value.GetIntegerValue()), nil
}

func (r *firestoreRepository) TopByScore(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	iter := r.client.Collection(leaderboardCollection).
		OrderBy("score", firestore.Desc).
		Limit(limit).
		Documents(ctx)

	var entries []Entry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var entry Entry
		if err := doc.DataTo(&entry); err != nil {
			return nil, fmt.Errorf("unmarshal leaderboard entry: %w", err)
		}
		entry.UserID = doc.Ref.ID
		entries = append(entries, entry)
	}

	return entries, nil
}
