package service

import (
	"context"

	"github.com/shopspring/decimal"

	"wokebucks/models"
)

// UserRef identifies a platform user in a service call.
type UserRef struct {
	ID       string
	Username string
}

// TransferKind distinguishes gift-type from take-type peer transfers.
type TransferKind string

const (
	TransferGive TransferKind = "givebucks"
	TransferTake TransferKind = "takebucks"
)

// AccountRepository defines the interface for account document access
type AccountRepository interface {
	// Get retrieves an account, or nil when the user has none yet
	Get(ctx context.Context, userID string) (*models.UserAccount, error)

	// Upsert replaces the stored account document
	Upsert(ctx context.Context, account *models.UserAccount) error
}

// LeaderboardRepository defines the interface for the leaderboard document
type LeaderboardRepository interface {
	// Get retrieves the singleton leaderboard, or nil when unprovisioned
	Get(ctx context.Context) (*models.Leaderboard, error)

	// Upsert replaces the stored leaderboard document
	Upsert(ctx context.Context, leaderboard *models.Leaderboard) error
}

// LotteryRepository defines the interface for lottery document access
type LotteryRepository interface {
	// Get retrieves a guild's lottery, or nil when the guild has none
	Get(ctx context.Context, guildID string) (*models.Lottery, error)

	// Upsert replaces the stored lottery document
	Upsert(ctx context.Context, lottery *models.Lottery) error
}

// BetRepository defines the interface for bet document access
type BetRepository interface {
	// Get retrieves an open bet by id, or nil when none is open
	Get(ctx context.Context, betID string) (*models.Bet, error)

	// Upsert replaces the stored bet document
	Upsert(ctx context.Context, bet *models.Bet) error

	// Delete removes a settled bet
	Delete(ctx context.Context, betID string) error
}

// TicketRepository defines the interface for cancel-ticket document access
type TicketRepository interface {
	// Get retrieves a ticket by id, or nil when the pair has none
	Get(ctx context.Context, ticketID string) (*models.CancelTicket, error)

	// Upsert replaces the stored ticket document
	Upsert(ctx context.Context, ticket *models.CancelTicket) error
}

// TransferResult describes a successfully applied balance change.
type TransferResult struct {
	TargetUsername string
	NewBalance     decimal.Decimal
	Amount         decimal.Decimal
	Reason         string
}

// LedgerService is the transaction engine: it validates a proposed balance
// delta against rate limits and level caps and applies it across the
// account, leaderboard, and lottery documents.
type LedgerService interface {
	// Transfer applies a signed peer transfer from actor to target
	Transfer(ctx context.Context, actor, target UserRef, guildID string, amount decimal.Decimal, reason string, kind TransferKind) (*TransferResult, error)

	// ApplySystemCredit applies a system-initiated balance change that
	// bypasses cooldowns and caps (lottery payouts, bet winnings, penalties)
	ApplySystemCredit(ctx context.Context, target UserRef, guildID, initiator, comment string, amount decimal.Decimal) (*TransferResult, error)

	// GetOrCreateAccount fetches an account, creating it lazily with a
	// zero balance on first reference
	GetOrCreateAccount(ctx context.Context, user UserRef) (*models.UserAccount, error)

	// Leaderboard returns the singleton leaderboard for display
	Leaderboard(ctx context.Context) (*models.Leaderboard, error)
}

// TicketPurchaseResult describes a completed lottery ticket purchase.
type TicketPurchaseResult struct {
	TicketCount int
	Jackpot     decimal.Decimal
	NewBalance  decimal.Decimal
}

// LotterySettlement describes a lottery payout.
type LotterySettlement struct {
	GuildID        string
	WinnerID       string
	WinnerUsername string
	Jackpot        decimal.Decimal
}

// LotteryService manages per-guild ticket ledgers and the periodic draw.
type LotteryService interface {
	// EnsureExists provisions a guild's lottery if absent
	EnsureExists(ctx context.Context, guildID string) (*models.Lottery, error)

	// Get retrieves a guild's lottery; a miss is a provisioning defect
	Get(ctx context.Context, guildID string) (*models.Lottery, error)

	// BuyTicket sells one ticket to the buyer
	BuyTicket(ctx context.Context, guildID string, buyer UserRef) (*TicketPurchaseResult, error)

	// ResolveIfDue settles the lottery once a full period has elapsed.
	// It returns nil when the lottery is not due or nobody bought tickets.
	ResolveIfDue(ctx context.Context, guildID string) (*LotterySettlement, error)
}

// WagerResult describes a placed wager.
type WagerResult struct {
	Bet        *models.Bet
	Option     string
	Amount     decimal.Decimal
	NewBalance decimal.Decimal
}

// BetSettlement describes the payouts of an ended bet.
type BetSettlement struct {
	Reason        string
	WinningOption string
	Pot           decimal.Decimal
	Payouts       map[string]decimal.Decimal
	WinnerNames   map[string]string
}

// BetService manages user-created bets from creation through settlement.
type BetService interface {
	// StartBet opens a new bet; the reason content-addresses it
	StartBet(ctx context.Context, owner UserRef, reason string, options []string) (*models.Bet, error)

	// GetBet retrieves an open bet by id
	GetBet(ctx context.Context, betID string) (*models.Bet, error)

	// PlaceWager stakes amount on an option, debiting the user immediately
	PlaceWager(ctx context.Context, key models.BetOptionKey, user UserRef, amount decimal.Decimal) (*WagerResult, error)

	// EndBet settles the bet, pays winners, and deletes the document
	EndBet(ctx context.Context, caller UserRef, reason, winningOption, guildID string) (*BetSettlement, error)
}

// VoteResult describes the outcome of a cancellation vote.
type VoteResult struct {
	Ticket   *models.CancelTicket
	Canceled bool
	Penalty  decimal.Decimal
}

// CancelService manages cancellation tickets and their vote-driven penalty.
type CancelService interface {
	// OpenTicket opens (or overwrites, after cooldown) a ticket against a user
	OpenTicket(ctx context.Context, initiator, target UserRef, description string) (*models.CancelTicket, error)

	// Vote records an affirmative vote and fires the penalty at threshold
	Vote(ctx context.Context, ticketID string, voter UserRef, guildID string) (*VoteResult, error)
}

// LevelQuote describes a user's current tier and the next purchasable one.
type LevelQuote struct {
	Current *models.Level
	Next    *models.Level
	Balance decimal.Decimal
}

// LevelPurchaseResult describes a completed level purchase.
type LevelPurchaseResult struct {
	Level      models.Level
	NewBalance decimal.Decimal
}

// LevelService manages the purchasable level ladder.
type LevelService interface {
	// Quote returns the user's current level and next purchase
	Quote(ctx context.Context, user UserRef) (*LevelQuote, error)

	// Purchase buys the next level for the user
	Purchase(ctx context.Context, user UserRef, guildID string) (*LevelPurchaseResult, error)
}
