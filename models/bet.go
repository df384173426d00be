package models

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	// MinBetOptions and MaxBetOptions bound the option set at creation.
	MinBetOptions = 2
	MaxBetOptions = 6

	// maxOptionLength truncates option text and bet reasons.
	maxOptionLength = 200
)

// NormalizeReason canonicalizes a bet reason for content addressing:
// trimmed and case-folded. Two reasons that normalize equally identify the
// same bet.
func NormalizeReason(reason string) string {
	return strings.ToLower(strings.TrimSpace(reason))
}

// BetIDFromReason derives the deterministic bet id from the normalized
// reason: the first 16 bytes of its SHA-256 digest rendered as a UUID.
func BetIDFromReason(reason string) string {
	sum := sha256.Sum256([]byte(NormalizeReason(reason)))
	id, err := uuid.FromBytes(sum[:16])
	if err != nil {
		// FromBytes only fails on length, which is fixed here.
		panic(err)
	}
	return id.String()
}

// Wager is one user's stake on a bet. A user gets at most one wager per bet.
type Wager struct {
	UserID   string          `json:"uid"`
	Username string          `json:"username"`
	Option   string          `json:"option"`
	Amount   decimal.Decimal `json:"amount"`
}

// BetOption tracks the running total and voters for one outcome.
type BetOption struct {
	Name   string          `json:"opt"`
	Total  decimal.Decimal `json:"total"`
	Voters map[string]bool `json:"voters"`
}

// Bet is a user-created wager event with 2–6 immutable options. Its id is
// content-addressed from the reason, so only one bet with a given reason
// can be open at a time.
type Bet struct {
	ID          string                `json:"id"`
	Reason      string                `json:"reas"`
	OwnerID     string                `json:"owner"`
	Options     map[string]*BetOption `json:"options"`
	OptionOrder []string              `json:"order"`
	Wagers      map[string]*Wager     `json:"bets"`
}

// NewBet validates the option set and creates an open bet.
func NewBet(reason, ownerID string, options []string) (*Bet, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("bet reason must not be empty")
	}
	if len(reason) > maxOptionLength {
		reason = strings.TrimSpace(reason[:maxOptionLength])
	}
	if len(options) < MinBetOptions || len(options) > MaxBetOptions {
		return nil, fmt.Errorf("bet requires between %d and %d options, got %d", MinBetOptions, MaxBetOptions, len(options))
	}

	bet := &Bet{
		ID:      BetIDFromReason(reason),
		Reason:  reason,
		OwnerID: ownerID,
		Options: make(map[string]*BetOption),
		Wagers:  make(map[string]*Wager),
	}
	for _, option := range options {
		option = strings.TrimSpace(option)
		if option == "" {
			return nil, fmt.Errorf("bet option must not be empty")
		}
		if len(option) > maxOptionLength {
			option = strings.TrimSpace(option[:maxOptionLength])
		}
		if _, exists := bet.Options[option]; exists {
			return nil, fmt.Errorf("duplicate bet option %q", option)
		}
		bet.Options[option] = &BetOption{
			Name:   option,
			Total:  decimal.Zero,
			Voters: make(map[string]bool),
		}
		bet.OptionOrder = append(bet.OptionOrder, option)
	}
	return bet, nil
}

func (b *Bet) DocumentID() string { return b.ID }

// HasOption reports whether the option exists on this bet.
func (b *Bet) HasOption(option string) bool {
	_, ok := b.Options[option]
	return ok
}

// PlaceWager stakes amount on an option. It returns false without mutating
// anything when the user has already wagered on this bet.
func (b *Bet) PlaceWager(userID, username, option string, amount decimal.Decimal) bool {
	if _, exists := b.Wagers[userID]; exists {
		return false
	}
	if b.Wagers == nil {
		b.Wagers = make(map[string]*Wager)
	}
	b.Wagers[userID] = &Wager{
		UserID:   userID,
		Username: username,
		Option:   option,
		Amount:   amount,
	}
	opt := b.Options[option]
	opt.Total = opt.Total.Add(amount)
	if opt.Voters == nil {
		opt.Voters = make(map[string]bool)
	}
	opt.Voters[userID] = true
	return true
}

// Pot sums every option's total.
func (b *Bet) Pot() decimal.Decimal {
	pot := decimal.Zero
	for _, opt := range b.Options {
		pot = pot.Add(opt.Total)
	}
	return pot
}

// WinningPayouts computes each winning wagerer's share of the full pot.
// The share of the winning option's total is rounded to two places before
// multiplying by the pot, then the payout is rounded again; payout sums
// may therefore drift from the pot by rounding.
func (b *Bet) WinningPayouts(winningOption string) map[string]decimal.Decimal {
	payouts := make(map[string]decimal.Decimal)
	winner, ok := b.Options[winningOption]
	if !ok || winner.Total.IsZero() {
		return payouts
	}
	pot := b.Pot()
	for userID, wager := range b.Wagers {
		if wager.Option != winningOption {
			continue
		}
		percentage := wager.Amount.Div(winner.Total).Round(2)
		payouts[userID] = percentage.Mul(pot).Round(2)
	}
	return payouts
}

// BetOptionKey packs a bet id, option name, and guild id into the custom
// id of a select-menu entry so the selection can resume processing.
type BetOptionKey struct {
	BetID   string
	Option  string
	GuildID string
}

// ParseBetOptionKey splits a packed component custom id.
func ParseBetOptionKey(s string) (BetOptionKey, error) {
	parts := strings.SplitN(s, "|", 3)
	if len(parts) != 3 {
		return BetOptionKey{}, fmt.Errorf("malformed bet option key %q", s)
	}
	return BetOptionKey{BetID: parts[0], Option: parts[1], GuildID: parts[2]}, nil
}

func (k BetOptionKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.BetID, k.Option, k.GuildID)
}
