package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// LeaderboardID is the id of the single global leaderboard document.
const LeaderboardID = "leaderboard"

// RankedListSize is how many entries the per-guild top and bottom lists keep.
const RankedListSize = 3

// LeaderboardEntry is one user's record in the global user map.
type LeaderboardEntry struct {
	UserID   string          `json:"id"`
	Username string          `json:"username"`
	Balance  decimal.Decimal `json:"balance"`
	Guilds   map[string]bool `json:"guilds"`
}

// RankedEntry is one row of a guild's top or bottom list.
type RankedEntry struct {
	UserID   string          `json:"id"`
	Username string          `json:"username"`
	Balance  decimal.Decimal `json:"balance"`
}

// Leaderboard is the global balance ranking document. The top and bottom
// lists for a guild are always recomputed in full from AllUsers after any
// update touching a member of that guild.
type Leaderboard struct {
	ID            string                       `json:"id"`
	AllUsers      map[string]*LeaderboardEntry `json:"ldrbrd"`
	TopByGuild    map[string][]RankedEntry     `json:"most"`
	BottomByGuild map[string][]RankedEntry     `json:"least"`
}

// NewLeaderboard creates the empty singleton leaderboard.
func NewLeaderboard() *Leaderboard {
	return &Leaderboard{
		ID:            LeaderboardID,
		AllUsers:      make(map[string]*LeaderboardEntry),
		TopByGuild:    make(map[string][]RankedEntry),
		BottomByGuild: make(map[string][]RankedEntry),
	}
}

func (l *Leaderboard) DocumentID() string { return l.ID }

// Update upserts the user's entry, tags it with the guild, and recomputes
// the ranked lists for every guild the user belongs to.
func (l *Leaderboard) Update(guildID, userID, username string, balance decimal.Decimal) {
	if l.AllUsers == nil {
		l.AllUsers = make(map[string]*LeaderboardEntry)
	}
	entry, ok := l.AllUsers[userID]
	if !ok {
		entry = &LeaderboardEntry{UserID: userID, Guilds: make(map[string]bool)}
		l.AllUsers[userID] = entry
	}
	entry.Username = username
	entry.Balance = balance
	if entry.Guilds == nil {
		entry.Guilds = make(map[string]bool)
	}
	entry.Guilds[guildID] = true

	if l.TopByGuild == nil {
		l.TopByGuild = make(map[string][]RankedEntry)
	}
	if l.BottomByGuild == nil {
		l.BottomByGuild = make(map[string][]RankedEntry)
	}
	for guild := range entry.Guilds {
		members := l.guildMembers(guild)
		l.TopByGuild[guild] = rank(members, true)
		l.BottomByGuild[guild] = rank(members, false)
	}
}

// TopForGuild returns the guild's highest balances, descending.
func (l *Leaderboard) TopForGuild(guildID string) []RankedEntry {
	return l.TopByGuild[guildID]
}

// BottomForGuild returns the guild's lowest balances, ascending.
func (l *Leaderboard) BottomForGuild(guildID string) []RankedEntry {
	return l.BottomByGuild[guildID]
}

func (l *Leaderboard) guildMembers(guildID string) []RankedEntry {
	var members []RankedEntry
	for _, entry := range l.AllUsers {
		if entry.Guilds[guildID] {
			members = append(members, RankedEntry{
				UserID:   entry.UserID,
				Username: entry.Username,
				Balance:  entry.Balance,
			})
		}
	}
	return members
}

// rank sorts members by balance with user id as the deterministic
// tie-break and truncates to RankedListSize.
func rank(members []RankedEntry, descending bool) []RankedEntry {
	sorted := make([]RankedEntry, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool {
		cmp := sorted[i].Balance.Cmp(sorted[j].Balance)
		if cmp == 0 {
			return sorted[i].UserID < sorted[j].UserID
		}
		if descending {
			return cmp > 0
		}
		return cmp < 0
	})
	if len(sorted) > RankedListSize {
		sorted = sorted[:RankedListSize]
	}
	return sorted
}
