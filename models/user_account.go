package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

const (
	// TransactionLogCap is the number of most-recent transactions retained
	// on an account. Older entries are dropped silently.
	TransactionLogCap = 10

	// TicketListCap bounds the cancel-ticket references kept on an account.
	TicketListCap = 10
)

// Transaction is one entry in an account's capped transaction log.
type Transaction struct {
	Initiator string          `json:"init"`
	Comment   string          `json:"comment"`
	Amount    decimal.Decimal `json:"amount"`
	Timestamp time.Time       `json:"ts"`
}

// TicketRef is a display reference to a cancel ticket, kept on both the
// initiator's and the target's account.
type TicketRef struct {
	TicketID string `json:"id"`
	Note     string `json:"note"`
}

// UserAccount is the per-user ledger document, keyed by Discord user ID.
// Accounts are created lazily with a zero balance on first reference.
type UserAccount struct {
	ID              string               `json:"id"`
	Username        string               `json:"username"`
	Balance         decimal.Decimal      `json:"balance"`
	LastAccessTimes map[string]time.Time `json:"lastAccess"`
	TransactionLog  []Transaction        `json:"transLog"`
	Level           int                  `json:"lvl"`
	CancelTickets   []TicketRef          `json:"cncl"`
	CreatedTickets  []TicketRef          `json:"tckts"`
}

// NewUserAccount creates an empty account for a user.
func NewUserAccount(userID, username string) *UserAccount {
	return &UserAccount{
		ID:              userID,
		Username:        username,
		Balance:         decimal.Zero,
		LastAccessTimes: make(map[string]time.Time),
	}
}

func (u *UserAccount) DocumentID() string { return u.ID }

// MinutesSinceInteraction returns the minutes elapsed since this account
// last gave to or took from the other user. ok is false if the pair has
// never interacted.
func (u *UserAccount) MinutesSinceInteraction(otherID string, now time.Time) (float64, bool) {
	last, ok := u.LastAccessTimes[otherID]
	if !ok {
		return 0, false
	}
	return now.Sub(last).Minutes(), true
}

// TouchInteraction records now as the most recent interaction with the
// other user, starting that pair's cooldown window.
func (u *UserAccount) TouchInteraction(otherID string, now time.Time) {
	if u.LastAccessTimes == nil {
		u.LastAccessTimes = make(map[string]time.Time)
	}
	u.LastAccessTimes[otherID] = now
}

// AddToBalance applies a signed delta and refreshes the stored username.
func (u *UserAccount) AddToBalance(amount decimal.Decimal, username string) {
	u.Balance = u.Balance.Add(amount)
	if username != "" {
		u.Username = username
	}
}

// AddTransaction appends a log entry and truncates the log to the
// TransactionLogCap most recent entries by timestamp, newest first.
func (u *UserAccount) AddTransaction(initiator, comment string, amount decimal.Decimal, now time.Time) {
	u.TransactionLog = append(u.TransactionLog, Transaction{
		Initiator: initiator,
		Comment:   comment,
		Amount:    amount,
		Timestamp: now,
	})

	sort.SliceStable(u.TransactionLog, func(i, j int) bool {
		return u.TransactionLog[i].Timestamp.After(u.TransactionLog[j].Timestamp)
	})
	if len(u.TransactionLog) > TransactionLogCap {
		u.TransactionLog = u.TransactionLog[:TransactionLogCap]
	}
}

// Overdrawn reports whether the balance is negative.
func (u *UserAccount) Overdrawn() bool {
	return u.Balance.IsNegative()
}

// ApplyCancellation zeroes a non-negative balance or doubles a negative
// one, records the penalty transaction, and returns the applied delta.
func (u *UserAccount) ApplyCancellation(initiator string, now time.Time) decimal.Decimal {
	delta := u.Balance.Neg()
	if u.Balance.IsNegative() {
		delta = u.Balance
	}
	u.AddTransaction(initiator, "This person was canceled.", delta, now)
	u.Balance = u.Balance.Add(delta)
	return delta
}

// AddCancelTicket records a ticket opened against this account.
func (u *UserAccount) AddCancelTicket(t *CancelTicket) {
	note := fmt.Sprintf("Started by %s because %q.", t.InitiatorUsername, t.Description)
	u.CancelTickets = appendTicketRef(u.CancelTickets, TicketRef{TicketID: t.ID, Note: note})
}

// AddCreatedTicket records a ticket this account opened against someone.
func (u *UserAccount) AddCreatedTicket(t *CancelTicket) {
	note := fmt.Sprintf("Started for %s because %q.", t.TargetUsername, t.Description)
	u.CreatedTickets = appendTicketRef(u.CreatedTickets, TicketRef{TicketID: t.ID, Note: note})
}

// appendTicketRef replaces an existing reference to the same ticket id
// (tickets for a pair are overwritten after cooldown) or appends, dropping
// the oldest entry once the cap is exceeded.
func appendTicketRef(refs []TicketRef, ref TicketRef) []TicketRef {
	for i := range refs {
		if refs[i].TicketID == ref.TicketID {
			refs[i] = ref
			return refs
		}
	}
	refs = append(refs, ref)
	if len(refs) > TicketListCap {
		refs = refs[len(refs)-TicketListCap:]
	}
	return refs
}
