package progression

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	usersCollection        = "users"
	progressionCollection  = "progression"
	achievementsCollection = "achievements"
	questsCollection       = "quests"
	questClaimsCollection  = "quest_claims"
	activitiesCollection   = "session_log"
)

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository instantiates a Firestore-backed repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) userDoc(userID string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(userID)
}

func (r *firestoreRepository) progressionDoc(userID string) *firestore.DocumentRef {
	return r.client.Collection(progressionCollection).Doc(userID)
}

func (r *firestoreRepository) GetProgression(ctx context.Context, userID string) (*UserProgression, error) {
	doc, err := r.progressionDoc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		// Distinguish a brand-new account from a user that does not exist at
		// all: only the former is recoverable through initialization.
		if _, accountErr := r.userDoc(userID).Get(ctx); status.Code(accountErr) == codes.NotFound {
			return nil, ErrNotFound
		} else if accountErr != nil {
			return nil, accountErr
		}
		return nil, ErrUninitialized
	}
	if err != nil {
		return nil, err
	}

	var p UserProgression
	if err := doc.DataTo(&p); err != nil {
		return nil, fmt.Errorf("unmarshal progression: %w", err)
	}
	p.UserID = doc.Ref.ID
	return &p, nil
}

func (r *firestoreRepository) InitializeProgression(ctx context.Context, userID string, baseline UserProgression) (*UserProgression, error) {
	baseline.UserID = userID

	// Create is the store's native insert-if-missing: two concurrent
	// initializers cannot both write, and the loser reads the winner's record.
	_, err := r.progressionDoc(userID).Create(ctx, baseline)
	if status.Code(err) == codes.AlreadyExists {
		return r.GetProgression(ctx, userID)
	}
	if err != nil {
		return nil, err
	}
	return &baseline, nil
}

func (r *firestoreRepository) UpdateProgression(ctx context.Context, p UserProgression) (*UserProgression, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	if _, err := r.progressionDoc(p.UserID).Set(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DebitCoins runs the balance check and the subtraction inside one
// transaction, so two concurrent debits can never both spend the same coins.
func (r *firestoreRepository) DebitCoins(ctx context.Context, userID string, amount int, now time.Time) (*UserProgression, error) {
	if amount < 0 {
		return nil, ErrInvariant
	}

	ref := r.progressionDoc(userID)

	var stored UserProgression
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return ErrUninitialized
		}
		if err != nil {
			return err
		}

		var p UserProgression
		if err := doc.DataTo(&p); err != nil {
			return fmt.Errorf("unmarshal progression: %w", err)
		}
		p.UserID = doc.Ref.ID

		if p.Coins < amount {
			return ErrInsufficientCoins
		}

		p.Coins -= amount
		p.UpdatedAt = now
		stored = p
		return tx.Set(ref, p)
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *firestoreRepository) ListAchievements(ctx context.Context, userID string) ([]Achievement, error) {
	iter := r.userDoc(userID).Collection(achievementsCollection).Documents(ctx)

	var list []Achievement
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var a Achievement
		if err := doc.DataTo(&a); err != nil {
			return nil, fmt.Errorf("unmarshal achievement: %w", err)
		}
		a.ID = doc.Ref.ID
		list = append(list, a)
	}
	return list, nil
}

func (r *firestoreRepository) SaveAchievement(ctx context.Context, userID string, achievement Achievement) error {
	// Append-only: Create refuses to overwrite, so a concurrent unlock of the
	// same achievement keeps its original timestamp.
	_, err := r.userDoc(userID).Collection(achievementsCollection).Doc(achievement.ID).Create(ctx, achievement)
	if status.Code(err) == codes.AlreadyExists {
		return nil
	}
	return err
}

func (r *firestoreRepository) SaveQuests(ctx context.Context, userID string, quests []Quest) error {
	questCol := r.userDoc(userID).Collection(questsCollection)
	for _, q := range quests {
		if _, err := questCol.Doc(q.ID).Set(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (r *firestoreRepository) IsQuestClaimed(ctx context.Context, userID, questID string) (bool, error) {
	_, err := r.userDoc(userID).Collection(questClaimsCollection).Doc(questID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ClaimQuestReward writes the claim marker and the rewarded progression record
// in one transaction keyed by (userID, quest ID); a claim marker that already
// exists aborts the grant, so the reward is applied at most once.
func (r *firestoreRepository) ClaimQuestReward(ctx context.Context, userID string, quest Quest, now time.Time) (*UserProgression, error) {
	progressionRef := r.progressionDoc(userID)
	claimRef := r.userDoc(userID).Collection(questClaimsCollection).Doc(quest.ID)

	var stored UserProgression
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		_, err := tx.Get(claimRef)
		if err == nil {
			return ErrQuestAlreadyClaimed
		}
		if status.Code(err) != codes.NotFound {
			return err
		}

		doc, err := tx.Get(progressionRef)
		if status.Code(err) == codes.NotFound {
			return ErrUninitialized
		}
		if err != nil {
			return err
		}

		var p UserProgression
		if err := doc.DataTo(&p); err != nil {
			return fmt.Errorf("unmarshal progression: %w", err)
		}
		p.UserID = doc.Ref.ID

		ApplyReward(&p, quest.Reward, now)
		stored = p

		if err := tx.Set(progressionRef, p); err != nil {
			return err
		}
		return tx.Create(claimRef, map[string]any{
			"quest_id":   quest.ID,
			"claimed_at": now,
		})
	})
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *firestoreRepository) RecordActivity(ctx context.Context, userID string, activity SessionActivity) error {
	_, err := r.userDoc(userID).Collection(activitiesCollection).Doc(activity.ID).Create(ctx, activity)
	return err
}
