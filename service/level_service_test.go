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

func newTestLevelService(accounts *MockAccountRepository, leaderboards *MockLeaderboardRepository, lotteries *MockLotteryRepository) *levelService {
	svc := NewLevelService(accounts, leaderboards, lotteries, testConfig(), events.NewBus()).(*levelService)
	svc.now = func() time.Time { return testTime }
	return svc
}

func TestLevelService_Quote_NewAccount(t *testing.T) {
	ctx := context.Background()

	mockAccounts := new(MockAccountRepository)
	service := newTestLevelService(mockAccounts, new(MockLeaderboardRepository), new(MockLotteryRepository))

	mockAccounts.On("Get", ctx, "user").Return(nil, nil)

	quote, err := service.Quote(ctx, UserRef{ID: "user", Username: "alice"})

	assert.NoError(t, err)
	assert.Nil(t, quote.Current)
	assert.Equal(t, "Neanderthal Brain", quote.Next.Name)
	assert.True(t, quote.Next.Cost.Equal(decimal.NewFromInt(75)))
	assert.True(t, quote.Balance.IsZero())
}

func TestLevelService_Quote_AtMaxLevel(t *testing.T) {
	ctx := context.Background()

	mockAccounts := new(MockAccountRepository)
	service := newTestLevelService(mockAccounts, new(MockLeaderboardRepository), new(MockLotteryRepository))

	account := models.NewUserAccount("user", "alice")
	account.Level = models.MaxLevel

	mockAccounts.On("Get", ctx, "user").Return(account, nil)

	quote, err := service.Quote(ctx, UserRef{ID: "user", Username: "alice"})

	assert.NoError(t, err)
	assert.Equal(t, "Galaxy Brain", quote.Current.Name)
	assert.Nil(t, quote.Next)
}

func TestLevelService_Purchase_DebitsCostAndGrowsJackpot(t *testing.T) {
	ctx := context.Background()

	mockAccounts := new(MockAccountRepository)
	mockLeaderboards := new(MockLeaderboardRepository)
	mockLotteries := new(MockLotteryRepository)
	service := newTestLevelService(mockAccounts, mockLeaderboards, mockLotteries)

	account := models.NewUserAccount("user", "alice")
	account.Balance = decimal.NewFromInt(100)
	lottery := models.NewLottery("guild-1", decimal.NewFromInt(5), testTime)

	mockAccounts.On("Get", mock.Anything, "user").Return(account, nil)
	mockLotteries.On("Get", mock.Anything, "guild-1").Return(lottery, nil)
	mockLeaderboards.On("Get", mock.Anything).Return(models.NewLeaderboard(), nil)

	mockAccounts.On("Upsert", mock.Anything, mock.MatchedBy(func(a *models.UserAccount) bool {
		return a.Level == 1 && a.Balance.Equal(decimal.NewFromInt(25))
	})).Return(nil)
	mockLotteries.On("Upsert", mock.Anything, mock.MatchedBy(func(l *models.Lottery) bool {
		return l.Jackpot.Equal(decimal.NewFromInt(25))
	})).Return(nil)
	mockLeaderboards.On("Upsert", mock.Anything, mock.MatchedBy(func(b *models.Leaderboard) bool {
		entry, ok := b.AllUsers["user"]
		return ok && entry.Balance.Equal(decimal.NewFromInt(25)) && entry.Guilds["guild-1"]
	})).Return(nil)

	result, err := service.Purchase(ctx, UserRef{ID: "user", Username: "alice"}, "guild-1")

	assert.NoError(t, err)
	assert.Equal(t, 1, result.Level.ID)
	assert.True(t, result.NewBalance.Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "Purchased level: Neanderthal Brain", account.TransactionLog[0].Comment)

	mockAccounts.AssertExpectations(t)
	mockLeaderboards.AssertExpectations(t)
	mockLotteries.AssertExpectations(t)
}

func TestLevelService_Purchase_InsufficientBalance(t *testing.T) {
	ctx := context.Background()

	mockAccounts := new(MockAccountRepository)
	mockLeaderboards := new(MockLeaderboardRepository)
	mockLotteries := new(MockLotteryRepository)
	service := newTestLevelService(mockAccounts, mockLeaderboards, mockLotteries)

	account := models.NewUserAccount("user", "alice")
	account.Balance = decimal.NewFromInt(74)

	mockAccounts.On("Get", mock.Anything, "user").Return(account, nil)
	mockLotteries.On("Get", mock.Anything, "guild-1").Return(models.NewLottery("guild-1", decimal.NewFromInt(5), testTime), nil)
	mockLeaderboards.On("Get", mock.Anything).Return(models.NewLeaderboard(), nil)

	result, err := service.Purchase(ctx, UserRef{ID: "user", Username: "alice"}, "guild-1")

	assert.Nil(t, result)
	var balErr *InsufficientBalanceError
	assert.ErrorAs(t, err, &balErr)
	assert.Equal(t, 0, account.Level)

	mockAccounts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestLevelService_Purchase_MaxLevel(t *testing.T) {
	ctx := context.Background()

	mockAccounts := new(MockAccountRepository)
	mockLeaderboards := new(MockLeaderboardRepository)
	mockLotteries := new(MockLotteryRepository)
	service := newTestLevelService(mockAccounts, mockLeaderboards, mockLotteries)

	account := models.NewUserAccount("user", "alice")
	account.Level = models.MaxLevel
	account.Balance = decimal.NewFromInt(1000)

	mockAccounts.On("Get", mock.Anything, "user").Return(account, nil)
	mockLotteries.On("Get", mock.Anything, "guild-1").Return(models.NewLottery("guild-1", decimal.NewFromInt(5), testTime), nil)
	mockLeaderboards.On("Get", mock.Anything).Return(models.NewLeaderboard(), nil)

	result, err := service.Purchase(ctx, UserRef{ID: "user", Username: "alice"}, "guild-1")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrMaxLevel)
}
