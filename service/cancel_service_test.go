package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"wokebucks/events"
	"wokebucks/models"
)

func newTestCancelService(tickets *MockTicketRepository, accounts *MockAccountRepository, leaderboards *MockLeaderboardRepository) *cancelService {
	svc := NewCancelService(tickets, accounts, leaderboards, testConfig(), events.NewBus()).(*cancelService)
	svc.now = func() time.Time { return testTime }
	return svc
}

func TestCancelService_OpenTicket_RecordsOnBothAccounts(t *testing.T) {
	ctx := context.Background()

	mockTickets := new(MockTicketRepository)
	mockAccounts := new(MockAccountRepository)
	service := newTestCancelService(mockTickets, mockAccounts, new(MockLeaderboardRepository))

	initiator := UserRef{ID: "init", Username: "alice"}
	target := UserRef{ID: "tgt", Username: "bob"}
	ticketID := models.TicketIDForPair("init", "tgt")

	mockTickets.On("Get", mock.Anything, ticketID).Return(nil, nil)
	mockAccounts.On("Get", mock.Anything, "init").Return(nil, nil)
	mockAccounts.On("Get", mock.Anything, "tgt").Return(nil, nil)

	mockTickets.On("Upsert", mock.Anything, mock.MatchedBy(func(tk *models.CancelTicket) bool {
		return tk.ID == ticketID && tk.TargetID == "tgt" && !tk.Resolved && tk.Opened.Equal(testTime)
	})).Return(nil)
	mockAccounts.On("Upsert", mock.Anything, mock.MatchedBy(func(a *models.UserAccount) bool {
		return a.ID == "init" && len(a.CreatedTickets) == 1 && a.CreatedTickets[0].TicketID == ticketID
	})).Return(nil)
	mockAccounts.On("Upsert", mock.Anything, mock.MatchedBy(func(a *models.UserAccount) bool {
		return a.ID == "tgt" && len(a.CancelTickets) == 1 && a.CancelTickets[0].TicketID == ticketID
	})).Return(nil)

	ticket, err := service.OpenTicket(ctx, initiator, target, "posted a bad take")

	assert.NoError(t, err)
	assert.Equal(t, ticketID, ticket.ID)
	assert.Equal(t, "posted a bad take", ticket.Description)

	mockTickets.AssertExpectations(t)
	mockAccounts.AssertExpectations(t)
}

func TestCancelService_OpenTicket_CooldownBlocksReopen(t *testing.T) {
	ctx := context.Background()

	mockTickets := new(MockTicketRepository)
	mockAccounts := new(MockAccountRepository)
	service := newTestCancelService(mockTickets, mockAccounts, new(MockLeaderboardRepository))

	existing := models.NewCancelTicket("init", "alice", "tgt", "bob", "old grudge", testTime.Add(-2*time.Hour))

	mockTickets.On("Get", mock.Anything, existing.ID).Return(existing, nil)
	mockAccounts.On("Get", mock.Anything, "init").Return(nil, nil)
	mockAccounts.On("Get", mock.Anything, "tgt").Return(nil, nil)

	ticket, err := service.OpenTicket(ctx,
		UserRef{ID: "init", Username: "alice"},
		UserRef{ID: "tgt", Username: "bob"}, "new grudge")

	assert.Nil(t, ticket)
	var cooldownErr *TicketCooldownError
	assert.ErrorAs(t, err, &cooldownErr)
	assert.Equal(t, 46*time.Hour, cooldownErr.Remaining)

	mockTickets.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestCancelService_OpenTicket_ExpiredTicketOverwritten(t *testing.T) {
	ctx := context.Background()

	mockTickets := new(MockTicketRepository)
	mockAccounts := new(MockAccountRepository)
	service := newTestCancelService(mockTickets, mockAccounts, new(MockLeaderboardRepository))

	expired := models.NewCancelTicket("init", "alice", "tgt", "bob", "old grudge", testTime.Add(-49*time.Hour))
	expired.AddVote("v1")
	expired.AddVote("v2")

	mockTickets.On("Get", mock.Anything, expired.ID).Return(expired, nil)
	mockAccounts.On("Get", mock.Anything, "init").Return(nil, nil)
	mockAccounts.On("Get", mock.Anything, "tgt").Return(nil, nil)

	mockTickets.On("Upsert", mock.Anything, mock.MatchedBy(func(tk *models.CancelTicket) bool {
		return tk.ID == expired.ID &&
			tk.Description == "new grudge" &&
			tk.VoteCount() == 0 &&
			tk.Opened.Equal(testTime)
	})).Return(nil)
	mockAccounts.On("Upsert", mock.Anything, mock.AnythingOfType("*models.UserAccount")).Return(nil).Times(2)

	ticket, err := service.OpenTicket(ctx,
		UserRef{ID: "init", Username: "alice"},
		UserRef{ID: "tgt", Username: "bob"}, "new grudge")

	assert.NoError(t, err)
	assert.Equal(t, expired.ID, ticket.ID)
	assert.Equal(t, 0, ticket.VoteCount())

	mockTickets.AssertExpectations(t)
}

func TestCancelService_OpenTicket_SelfTargetRejected(t *testing.T) {
	ctx := context.Background()

	service := newTestCancelService(new(MockTicketRepository), new(MockAccountRepository), new(MockLeaderboardRepository))

	self := UserRef{ID: "init", Username: "alice"}
	ticket, err := service.OpenTicket(ctx, self, self, "self-own")

	assert.Nil(t, ticket)
	assert.ErrorIs(t, err, ErrSelfTarget)
}

func TestCancelService_Vote_BelowThresholdJustRecords(t *testing.T) {
	ctx := context.Background()

	mockTickets := new(MockTicketRepository)
	mockAccounts := new(MockAccountRepository)
	service := newTestCancelService(mockTickets, mockAccounts, new(MockLeaderboardRepository))

	ticket := models.NewCancelTicket("init", "alice", "tgt", "bob", "bad take", testTime)

	mockTickets.On("Get", ctx, ticket.ID).Return(ticket, nil)
	mockTickets.On("Upsert", ctx, mock.MatchedBy(func(tk *models.CancelTicket) bool {
		return tk.VoteCount() == 1 && !tk.Resolved
	})).Return(nil)

	result, err := service.Vote(ctx, ticket.ID, UserRef{ID: "voter-1", Username: "carol"}, "guild-1")

	assert.NoError(t, err)
	assert.False(t, result.Canceled)
	assert.True(t, result.Penalty.IsZero())

	mockAccounts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	mockTickets.AssertExpectations(t)
}

func TestCancelService_Vote_DuplicateRejected(t *testing.T) {
	ctx := context.Background()

	mockTickets := new(MockTicketRepository)
	service := newTestCancelService(mockTickets, new(MockAccountRepository), new(MockLeaderboardRepository))

	ticket := models.NewCancelTicket("init", "alice", "tgt", "bob", "bad take", testTime)
	ticket.AddVote("voter-1")

	mockTickets.On("Get", ctx, ticket.ID).Return(ticket, nil)

	result, err := service.Vote(ctx, ticket.ID, UserRef{ID: "voter-1", Username: "carol"}, "guild-1")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAlreadyVoted)
}

func TestCancelService_Vote_TargetCannotVote(t *testing.T) {
	ctx := context.Background()

	mockTickets := new(MockTicketRepository)
	service := newTestCancelService(mockTickets, new(MockAccountRepository), new(MockLeaderboardRepository))

	ticket := models.NewCancelTicket("init", "alice", "tgt", "bob", "bad take", testTime)

	mockTickets.On("Get", ctx, ticket.ID).Return(ticket, nil)

	result, err := service.Vote(ctx, ticket.ID, UserRef{ID: "tgt", Username: "bob"}, "guild-1")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrSelfTarget)
	assert.Equal(t, 0, ticket.VoteCount())
}

func TestCancelService_Vote_ThresholdFiresPenaltyOnce(t *testing.T) {
	ctx := context.Background()

	mockTickets := new(MockTicketRepository)
	mockAccounts := new(MockAccountRepository)
	mockLeaderboards := new(MockLeaderboardRepository)
	service := newTestCancelService(mockTickets, mockAccounts, mockLeaderboards)

	ticket := models.NewCancelTicket("init", "alice", "tgt", "bob", "bad take", testTime)
	for _, voter := range []string{"v1", "v2", "v3", "v4", "v5"} {
		ticket.AddVote(voter)
	}

	target := models.NewUserAccount("tgt", "bob")
	target.Balance = decimal.NewFromInt(50)

	mockTickets.On("Get", mock.Anything, ticket.ID).Return(ticket, nil)
	mockAccounts.On("Get", mock.Anything, "tgt").Return(target, nil)
	mockLeaderboards.On("Get", mock.Anything).Return(models.NewLeaderboard(), nil)

	mockTickets.On("Upsert", mock.Anything, mock.MatchedBy(func(tk *models.CancelTicket) bool {
		return tk.Resolved
	})).Return(nil)
	mockAccounts.On("Upsert", mock.Anything, mock.MatchedBy(func(a *models.UserAccount) bool {
		return a.ID == "tgt" && a.Balance.IsZero()
	})).Return(nil)
	mockLeaderboards.On("Upsert", mock.Anything, mock.AnythingOfType("*models.Leaderboard")).Return(nil)

	result, err := service.Vote(ctx, ticket.ID, UserRef{ID: "v6", Username: "frank"}, "guild-1")

	assert.NoError(t, err)
	assert.True(t, result.Canceled)
	assert.True(t, result.Penalty.Equal(decimal.NewFromInt(-50)))
	assert.Equal(t, "This person was canceled.", target.TransactionLog[0].Comment)

	// A resolved ticket accepts no further votes and cannot fire again.
	_, err = service.Vote(ctx, ticket.ID, UserRef{ID: "v7", Username: "grace"}, "guild-1")
	assert.ErrorIs(t, err, ErrAlreadyVoted)

	mockTickets.AssertExpectations(t)
	mockAccounts.AssertExpectations(t)
}

func TestCancelService_Vote_NegativeBalanceDoubles(t *testing.T) {
	ctx := context.Background()

	mockTickets := new(MockTicketRepository)
	mockAccounts := new(MockAccountRepository)
	mockLeaderboards := new(MockLeaderboardRepository)
	service := newTestCancelService(mockTickets, mockAccounts, mockLeaderboards)

	ticket := models.NewCancelTicket("init", "alice", "tgt", "bob", "bad take", testTime)
	for _, voter := range []string{"v1", "v2", "v3", "v4", "v5"} {
		ticket.AddVote(voter)
	}

	target := models.NewUserAccount("tgt", "bob")
	target.Balance = decimal.NewFromInt(-30)

	mockTickets.On("Get", mock.Anything, ticket.ID).Return(ticket, nil)
	mockAccounts.On("Get", mock.Anything, "tgt").Return(target, nil)
	mockLeaderboards.On("Get", mock.Anything).Return(models.NewLeaderboard(), nil)
	mockTickets.On("Upsert", mock.Anything, mock.AnythingOfType("*models.CancelTicket")).Return(nil)
	mockAccounts.On("Upsert", mock.Anything, mock.MatchedBy(func(a *models.UserAccount) bool {
		return a.Balance.Equal(decimal.NewFromInt(-60))
	})).Return(nil)
	mockLeaderboards.On("Upsert", mock.Anything, mock.AnythingOfType("*models.Leaderboard")).Return(nil)

	result, err := service.Vote(ctx, ticket.ID, UserRef{ID: "v6", Username: "frank"}, "guild-1")

	assert.NoError(t, err)
	assert.True(t, result.Canceled)
	assert.True(t, result.Penalty.Equal(decimal.NewFromInt(-30)))

	mockAccounts.AssertExpectations(t)
}

func TestCancelService_Vote_UnknownTicket(t *testing.T) {
	ctx := context.Background()

	mockTickets := new(MockTicketRepository)
	service := newTestCancelService(mockTickets, new(MockAccountRepository), new(MockLeaderboardRepository))

	mockTickets.On("Get", ctx, "missing").Return(nil, nil)

	result, err := service.Vote(ctx, "missing", UserRef{ID: "voter", Username: "carol"}, "guild-1")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}
