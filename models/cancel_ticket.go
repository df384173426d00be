package models

import (
	"crypto/sha256"
	"time"

	"github.com/google/uuid"
)

// TicketIDForPair derives the deterministic ticket id for an
// (initiator, target) identity pair, so re-opening a ticket against the
// same user lands on the same document.
func TicketIDForPair(initiatorID, targetID string) string {
	sum := sha256.Sum256([]byte(initiatorID + targetID))
	id, err := uuid.FromBytes(sum[:16])
	if err != nil {
		panic(err)
	}
	return id.String()
}

// CancelTicket is a time-windowed social vote against a user. Once the
// vote threshold is reached the ticket resolves and the target's balance
// penalty applies exactly once.
type CancelTicket struct {
	ID                string          `json:"id"`
	Opened            time.Time       `json:"opened"`
	Description       string          `json:"desc"`
	InitiatorID       string          `json:"init"`
	InitiatorUsername string          `json:"initUsername"`
	TargetID          string          `json:"target"`
	TargetUsername    string          `json:"targetUsername"`
	Votes             map[string]bool `json:"votes"`
	Resolved          bool            `json:"success"`
}

// NewCancelTicket opens a ticket, keyed by the initiator/target pair.
func NewCancelTicket(initiatorID, initiatorUsername, targetID, targetUsername, description string, now time.Time) *CancelTicket {
	return &CancelTicket{
		ID:                TicketIDForPair(initiatorID, targetID),
		Opened:            now,
		Description:       description,
		InitiatorID:       initiatorID,
		InitiatorUsername: initiatorUsername,
		TargetID:          targetID,
		TargetUsername:    targetUsername,
		Votes:             make(map[string]bool),
	}
}

func (t *CancelTicket) DocumentID() string { return t.ID }

// AddVote records an affirmative vote. The target cannot vote on their own
// cancellation and repeat votes do not count twice.
func (t *CancelTicket) AddVote(voterID string) bool {
	if t.Resolved || voterID == t.TargetID {
		return false
	}
	if t.Votes == nil {
		t.Votes = make(map[string]bool)
	}
	if t.Votes[voterID] {
		return false
	}
	t.Votes[voterID] = true
	return true
}

// VoteCount returns the number of distinct affirmative votes.
func (t *CancelTicket) VoteCount() int {
	return len(t.Votes)
}

// CooldownRemaining returns how long until a new ticket may be opened for
// this pair, or zero when the window has passed.
func (t *CancelTicket) CooldownRemaining(now time.Time, window time.Duration) time.Duration {
	deadline := t.Opened.Add(window)
	if now.Before(deadline) {
		return deadline.Sub(now)
	}
	return 0
}
