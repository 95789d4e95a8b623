package progression

import "errors"

var (
	// ErrNotFound indicates the referenced user has no account record.
	ErrNotFound = errors.New("user not found")
	// ErrUninitialized indicates progression state was never written for an existing account.
	ErrUninitialized = errors.New("progression not initialized")
	// ErrInvariant indicates corrupt inputs such as negative counters or malformed quest windows.
	ErrInvariant = errors.New("progression invariant violated")
	// ErrUnknownPowerUp indicates the requested power-up is not in the catalog.
	ErrUnknownPowerUp = errors.New("unknown power-up")
	// ErrInsufficientCoins indicates the stored balance cannot cover the requested debit.
	ErrInsufficientCoins = errors.New("insufficient coins")
	// ErrUnknownQuest indicates the quest id does not match any currently generated quest.
	ErrUnknownQuest = errors.New("unknown quest")
	// ErrQuestNotCompleted indicates the quest's requirement is not yet satisfied.
	ErrQuestNotCompleted = errors.New("quest not completed")
	// ErrQuestAlreadyClaimed indicates the quest reward was already granted.
	ErrQuestAlreadyClaimed = errors.New("quest reward already claimed")
)
