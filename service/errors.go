package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Validation errors are the caller's fault and map directly to formatted
// rejection replies. Missing singleton documents (leaderboard, lottery)
// indicate a provisioning defect and are raised as hard failures.
var (
	ErrSelfTarget         = errors.New("cannot target yourself")
	ErrAlreadyWagered     = errors.New("a wager has already been placed on this bet")
	ErrAlreadyVoted       = errors.New("vote has already been counted")
	ErrBetExists          = errors.New("a bet with this reason is already open")
	ErrBetClosed          = errors.New("this bet has ended")
	ErrUnknownOption      = errors.New("no such option on this bet")
	ErrNotBetOwner        = errors.New("only the bet owner can end it")
	ErrTicketNotFound     = errors.New("cancel ticket not found")
	ErrMaxLevel           = errors.New("already at the highest level")
	ErrLeaderboardMissing = errors.New("leaderboard document is missing")
	ErrLotteryMissing     = errors.New("lottery document is missing")
)

// RateLimitedError reports the remaining wait before the actor may give to
// or take from the same target again.
type RateLimitedError struct {
	Remaining      time.Duration
	TargetUsername string
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("rate limited: %s remaining before interacting with %s again",
		e.Remaining.Round(time.Second), e.TargetUsername)
}

// RemainingMinutes is the whole-minute wait surfaced to the user.
func (e *RateLimitedError) RemainingMinutes() int {
	minutes := int(e.Remaining.Minutes())
	if e.Remaining > time.Duration(minutes)*time.Minute {
		minutes++
	}
	return minutes
}

// InvalidAmountError reports an amount outside the permitted range.
type InvalidAmountError struct {
	Amount decimal.Decimal
	Min    decimal.Decimal
	Max    decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %s: must be between %s and %s",
		e.Amount.StringFixed(2), e.Min.StringFixed(2), e.Max.StringFixed(2))
}

// TicketCooldownError reports how long until a new ticket may be opened
// against the same target.
type TicketCooldownError struct {
	Remaining time.Duration
}

func (e *TicketCooldownError) Error() string {
	return fmt.Sprintf("ticket cooldown: %s remaining", e.Remaining.Round(time.Second))
}

// InsufficientBalanceError reports a balance too low for a purchase.
type InsufficientBalanceError struct {
	Balance decimal.Decimal
	Needed  decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: have %s, need %s",
		e.Balance.StringFixed(2), e.Needed.StringFixed(2))
}
