package models

import (
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const lotteryIDPrefix = "lottery|"

// LotteryID returns the document id for a guild's lottery.
func LotteryID(guildID string) string {
	return lotteryIDPrefix + guildID
}

// GuildIDFromLotteryID is the inverse of LotteryID.
func GuildIDFromLotteryID(id string) string {
	return strings.TrimPrefix(id, lotteryIDPrefix)
}

// TicketEntry records one user's ticket count. Entries keep purchase order
// so the weighted draw walks a deterministic sequence.
type TicketEntry struct {
	UserID string `json:"user"`
	Count  int    `json:"count"`
}

// Lottery is a guild's ticket ledger and jackpot, keyed "lottery|<guild>".
type Lottery struct {
	ID           string          `json:"id"`
	GuildID      string          `json:"guildId"`
	Tickets      []TicketEntry   `json:"rec"`
	TotalTickets int             `json:"ttlTickets"`
	Jackpot      decimal.Decimal `json:"jackpot"`
	Start        time.Time       `json:"start"`
}

// NewLottery creates a fresh lottery for a guild with the seed jackpot.
func NewLottery(guildID string, seed decimal.Decimal, now time.Time) *Lottery {
	return &Lottery{
		ID:      LotteryID(guildID),
		GuildID: guildID,
		Jackpot: seed,
		Start:   now,
	}
}

func (l *Lottery) DocumentID() string { return l.ID }

// AddTicket records one ticket for the user and grows the jackpot.
func (l *Lottery) AddTicket(userID string, jackpotIncrement decimal.Decimal) {
	for i := range l.Tickets {
		if l.Tickets[i].UserID == userID {
			l.Tickets[i].Count++
			l.TotalTickets++
			l.Jackpot = l.Jackpot.Add(jackpotIncrement)
			return
		}
	}
	l.Tickets = append(l.Tickets, TicketEntry{UserID: userID, Count: 1})
	l.TotalTickets++
	l.Jackpot = l.Jackpot.Add(jackpotIncrement)
}

// TicketCount returns how many tickets the user holds.
func (l *Lottery) TicketCount(userID string) int {
	for _, e := range l.Tickets {
		if e.UserID == userID {
			return e.Count
		}
	}
	return 0
}

// AddToJackpot grows the pot without selling a ticket.
func (l *Lottery) AddToJackpot(amount decimal.Decimal) {
	l.Jackpot = l.Jackpot.Add(amount)
}

// Due reports whether the lottery has run for at least one full period.
func (l *Lottery) Due(now time.Time, period time.Duration) bool {
	return !now.Before(l.Start.Add(period))
}

// DrawWinner picks a ticket holder weighted by ticket count: a uniform
// draw in [0, TotalTickets) walks the ledger in purchase order until the
// running count covers the draw. ok is false when no tickets were sold.
func (l *Lottery) DrawWinner(rng *rand.Rand) (userID string, ok bool) {
	if l.TotalTickets == 0 {
		return "", false
	}
	n := rng.Intn(l.TotalTickets)
	for _, e := range l.Tickets {
		if n < e.Count {
			return e.UserID, true
		}
		n -= e.Count
	}
	// Unreachable while TotalTickets matches the ledger sum.
	return "", false
}
