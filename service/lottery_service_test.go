package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"wokebucks/events"
	"wokebucks/models"
)

func newTestLotteryService(accounts *MockAccountRepository, leaderboards *MockLeaderboardRepository, lotteries *MockLotteryRepository) *lotteryService {
	rng := rand.New(rand.NewSource(1))
	svc := NewLotteryService(accounts, leaderboards, lotteries, testConfig(), events.NewBus(), rng).(*lotteryService)
	svc.now = func() time.Time { return testTime }
	return svc
}

func TestLotteryService_EnsureExists_ProvisionsOnce(t *testing.T) {
	ctx := context.Background()

	mockLotteries := new(MockLotteryRepository)
	service := newTestLotteryService(new(MockAccountRepository), new(MockLeaderboardRepository), mockLotteries)

	mockLotteries.On("Get", mock.Anything, "guild-1").Return(nil, nil).Once()
	mockLotteries.On("Upsert", ctx, mock.MatchedBy(func(l *models.Lottery) bool {
		return l.GuildID == "guild-1" &&
			l.Jackpot.Equal(decimal.NewFromInt(5)) &&
			l.TotalTickets == 0 &&
			l.Start.Equal(testTime)
	})).Return(nil).Once()

	created, err := service.EnsureExists(ctx, "guild-1")
	assert.NoError(t, err)
	assert.NotNil(t, created)

	mockLotteries.On("Get", mock.Anything, "guild-1").Return(created, nil).Once()

	again, err := service.EnsureExists(ctx, "guild-1")
	assert.NoError(t, err)
	assert.Equal(t, created, again)

	mockLotteries.AssertExpectations(t)
}

func TestLotteryService_BuyTicket_DebitsPriceAndGrowsJackpot(t *testing.T) {
	ctx := context.Background()

	mockAccounts := new(MockAccountRepository)
	mockLeaderboards := new(MockLeaderboardRepository)
	mockLotteries := new(MockLotteryRepository)
	service := newTestLotteryService(mockAccounts, mockLeaderboards, mockLotteries)

	account := models.NewUserAccount("buyer", "alice")
	account.Balance = decimal.NewFromInt(10)
	lottery := models.NewLottery("guild-1", decimal.NewFromInt(5), testTime)

	mockAccounts.On("Get", mock.Anything, "buyer").Return(account, nil)
	mockLotteries.On("Get", mock.Anything, "guild-1").Return(lottery, nil)
	mockLeaderboards.On("Get", mock.Anything).Return(models.NewLeaderboard(), nil)
	mockAccounts.On("Upsert", mock.Anything, mock.MatchedBy(func(a *models.UserAccount) bool {
		return a.Balance.Equal(decimal.NewFromInt(8)) && len(a.TransactionLog) == 1
	})).Return(nil)
	mockLotteries.On("Upsert", mock.Anything, mock.MatchedBy(func(l *models.Lottery) bool {
		return l.TotalTickets == 1 && l.Jackpot.Equal(decimal.NewFromInt(7))
	})).Return(nil)
	mockLeaderboards.On("Upsert", mock.Anything, mock.MatchedBy(func(b *models.Leaderboard) bool {
		top := b.TopForGuild("guild-1")
		return len(top) == 1 && top[0].UserID == "buyer" && top[0].Balance.Equal(decimal.NewFromInt(8))
	})).Return(nil)

	result, err := service.BuyTicket(ctx, "guild-1", UserRef{ID: "buyer", Username: "alice"})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.TicketCount)
	assert.True(t, result.Jackpot.Equal(decimal.NewFromInt(7)))
	assert.True(t, result.NewBalance.Equal(decimal.NewFromInt(8)))
	assert.Equal(t, "Purchased a ticket", account.TransactionLog[0].Comment)

	mockAccounts.AssertExpectations(t)
	mockLeaderboards.AssertExpectations(t)
	mockLotteries.AssertExpectations(t)
}

func TestLotteryService_BuyTicket_FloorEnforced(t *testing.T) {
	ctx := context.Background()

	mockAccounts := new(MockAccountRepository)
	mockLeaderboards := new(MockLeaderboardRepository)
	mockLotteries := new(MockLotteryRepository)
	service := newTestLotteryService(mockAccounts, mockLeaderboards, mockLotteries)

	// Already below the floor before the purchase.
	account := models.NewUserAccount("buyer", "alice")
	account.Balance = decimal.NewFromInt(-101)

	mockAccounts.On("Get", mock.Anything, "buyer").Return(account, nil)
	mockLotteries.On("Get", mock.Anything, "guild-1").Return(models.NewLottery("guild-1", decimal.NewFromInt(5), testTime), nil)
	mockLeaderboards.On("Get", mock.Anything).Return(models.NewLeaderboard(), nil)

	result, err := service.BuyTicket(ctx, "guild-1", UserRef{ID: "buyer", Username: "alice"})

	assert.Nil(t, result)
	var balErr *InsufficientBalanceError
	assert.ErrorAs(t, err, &balErr)

	mockAccounts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	mockLotteries.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	mockLeaderboards.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestLotteryService_BuyTicket_AtFloorMayStillBuy(t *testing.T) {
	ctx := context.Background()

	mockAccounts := new(MockAccountRepository)
	mockLeaderboards := new(MockLeaderboardRepository)
	mockLotteries := new(MockLotteryRepository)
	service := newTestLotteryService(mockAccounts, mockLeaderboards, mockLotteries)

	// The floor gates entry on the pre-purchase balance, so a buyer at
	// -100 may still buy and land below the floor.
	account := models.NewUserAccount("buyer", "alice")
	account.Balance = decimal.NewFromInt(-100)

	mockAccounts.On("Get", mock.Anything, "buyer").Return(account, nil)
	mockLotteries.On("Get", mock.Anything, "guild-1").Return(models.NewLottery("guild-1", decimal.NewFromInt(5), testTime), nil)
	mockLeaderboards.On("Get", mock.Anything).Return(models.NewLeaderboard(), nil)
	mockAccounts.On("Upsert", mock.Anything, mock.MatchedBy(func(a *models.UserAccount) bool {
		return a.Balance.Equal(decimal.NewFromInt(-102))
	})).Return(nil)
	mockLotteries.On("Upsert", mock.Anything, mock.AnythingOfType("*models.Lottery")).Return(nil)
	mockLeaderboards.On("Upsert", mock.Anything, mock.AnythingOfType("*models.Leaderboard")).Return(nil)

	result, err := service.BuyTicket(ctx, "guild-1", UserRef{ID: "buyer", Username: "alice"})

	assert.NoError(t, err)
	assert.Equal(t, 1, result.TicketCount)
	assert.True(t, result.NewBalance.Equal(decimal.NewFromInt(-102)))

	mockAccounts.AssertExpectations(t)
}

func TestLotteryService_ResolveIfDue_NotDue(t *testing.T) {
	ctx := context.Background()

	mockLotteries := new(MockLotteryRepository)
	service := newTestLotteryService(new(MockAccountRepository), new(MockLeaderboardRepository), mockLotteries)

	lottery := models.NewLottery("guild-1", decimal.NewFromInt(5), testTime.Add(-23*time.Hour))
	lottery.AddTicket("player", decimal.NewFromInt(2))

	mockLotteries.On("Get", mock.Anything, "guild-1").Return(lottery, nil)

	settlement, err := service.ResolveIfDue(ctx, "guild-1")

	assert.NoError(t, err)
	assert.Nil(t, settlement)
	mockLotteries.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestLotteryService_ResolveIfDue_NoTicketsCarriesOver(t *testing.T) {
	ctx := context.Background()

	mockLotteries := new(MockLotteryRepository)
	service := newTestLotteryService(new(MockAccountRepository), new(MockLeaderboardRepository), mockLotteries)

	lottery := models.NewLottery("guild-1", decimal.NewFromInt(5), testTime.Add(-25*time.Hour))

	mockLotteries.On("Get", mock.Anything, "guild-1").Return(lottery, nil)

	settlement, err := service.ResolveIfDue(ctx, "guild-1")

	assert.NoError(t, err)
	assert.Nil(t, settlement)
	mockLotteries.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestLotteryService_ResolveIfDue_PaysWinnerAndResets(t *testing.T) {
	ctx := context.Background()

	mockAccounts := new(MockAccountRepository)
	mockLeaderboards := new(MockLeaderboardRepository)
	mockLotteries := new(MockLotteryRepository)
	service := newTestLotteryService(mockAccounts, mockLeaderboards, mockLotteries)

	// A single entrant always wins regardless of the draw.
	lottery := models.NewLottery("guild-1", decimal.NewFromInt(5), testTime.Add(-25*time.Hour))
	lottery.AddTicket("player", decimal.NewFromInt(2))
	jackpot := lottery.Jackpot

	winner := models.NewUserAccount("player", "alice")
	winner.Balance = decimal.NewFromInt(3)

	mockLotteries.On("Get", mock.Anything, "guild-1").Return(lottery, nil)
	mockAccounts.On("Get", mock.Anything, "player").Return(winner, nil)
	mockLeaderboards.On("Get", mock.Anything).Return(models.NewLeaderboard(), nil)

	mockAccounts.On("Upsert", mock.Anything, mock.MatchedBy(func(a *models.UserAccount) bool {
		return a.ID == "player" && a.Balance.Equal(decimal.NewFromInt(3).Add(jackpot))
	})).Return(nil)
	mockLeaderboards.On("Upsert", mock.Anything, mock.AnythingOfType("*models.Leaderboard")).Return(nil)
	mockLotteries.On("Upsert", mock.Anything, mock.MatchedBy(func(l *models.Lottery) bool {
		return l.TotalTickets == 0 &&
			l.Jackpot.Equal(decimal.NewFromInt(5)) &&
			l.Start.Equal(testTime)
	})).Return(nil)

	settlement, err := service.ResolveIfDue(ctx, "guild-1")

	assert.NoError(t, err)
	assert.NotNil(t, settlement)
	assert.Equal(t, "player", settlement.WinnerID)
	assert.Equal(t, "alice", settlement.WinnerUsername)
	assert.True(t, settlement.Jackpot.Equal(jackpot))
	assert.Equal(t, "Won the lottery!", winner.TransactionLog[0].Comment)

	mockAccounts.AssertExpectations(t)
	mockLotteries.AssertExpectations(t)
}
