package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"wokebucks/models"
)

func newTestBetService(bets *MockBetRepository, accounts *MockAccountRepository, leaderboards *MockLeaderboardRepository) *betService {
	svc := NewBetService(bets, accounts, leaderboards, testConfig()).(*betService)
	svc.now = func() time.Time { return testTime }
	return svc
}

func TestBetService_StartBet_CreatesContentAddressedBet(t *testing.T) {
	ctx := context.Background()

	mockBets := new(MockBetRepository)
	service := newTestBetService(mockBets, new(MockAccountRepository), new(MockLeaderboardRepository))

	wantID := models.BetIDFromReason("Who wins the game?")

	mockBets.On("Get", ctx, wantID).Return(nil, nil)
	mockBets.On("Upsert", ctx, mock.MatchedBy(func(b *models.Bet) bool {
		return b.ID == wantID && b.OwnerID == "owner" && len(b.Options) == 2
	})).Return(nil)

	bet, err := service.StartBet(ctx, UserRef{ID: "owner", Username: "alice"}, "Who wins the game?", []string{"Red", "Blue"})

	assert.NoError(t, err)
	assert.Equal(t, wantID, bet.ID)
	assert.Equal(t, []string{"Red", "Blue"}, bet.OptionOrder)

	mockBets.AssertExpectations(t)
}

func TestBetService_StartBet_DuplicateReasonRejected(t *testing.T) {
	ctx := context.Background()

	mockBets := new(MockBetRepository)
	service := newTestBetService(mockBets, new(MockAccountRepository), new(MockLeaderboardRepository))

	existing, err := models.NewBet("who wins the game?", "someone-else", []string{"Yes", "No"})
	assert.NoError(t, err)

	// Case and whitespace differences normalize to the same id.
	mockBets.On("Get", ctx, existing.ID).Return(existing, nil)

	bet, err := service.StartBet(ctx, UserRef{ID: "owner", Username: "alice"}, "  Who Wins The Game?  ", []string{"Red", "Blue"})

	assert.Nil(t, bet)
	assert.ErrorIs(t, err, ErrBetExists)
	mockBets.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestBetService_StartBet_ValidatesOptions(t *testing.T) {
	ctx := context.Background()

	service := newTestBetService(new(MockBetRepository), new(MockAccountRepository), new(MockLeaderboardRepository))
	owner := UserRef{ID: "owner", Username: "alice"}

	_, err := service.StartBet(ctx, owner, "too few", []string{"only"})
	assert.Error(t, err)

	_, err = service.StartBet(ctx, owner, "too many", []string{"a", "b", "c", "d", "e", "f", "g"})
	assert.Error(t, err)

	_, err = service.StartBet(ctx, owner, "duplicate", []string{"same", "same"})
	assert.Error(t, err)

	_, err = service.StartBet(ctx, owner, "", []string{"a", "b"})
	assert.Error(t, err)
}

func TestBetService_PlaceWager_DebitsImmediately(t *testing.T) {
	ctx := context.Background()

	mockBets := new(MockBetRepository)
	mockAccounts := new(MockAccountRepository)
	mockLeaderboards := new(MockLeaderboardRepository)
	service := newTestBetService(mockBets, mockAccounts, mockLeaderboards)

	bet, err := models.NewBet("who wins?", "owner", []string{"Red", "Blue"})
	assert.NoError(t, err)
	account := models.NewUserAccount("player", "bob")
	account.Balance = decimal.NewFromInt(10)
	key := models.BetOptionKey{BetID: bet.ID, Option: "Red", GuildID: "guild-1"}

	mockBets.On("Get", mock.Anything, bet.ID).Return(bet, nil)
	mockAccounts.On("Get", mock.Anything, "player").Return(account, nil)
	mockLeaderboards.On("Get", mock.Anything).Return(models.NewLeaderboard(), nil)

	mockBets.On("Upsert", mock.Anything, mock.MatchedBy(func(b *models.Bet) bool {
		wager, ok := b.Wagers["player"]
		return ok && wager.Option == "Red" && wager.Amount.Equal(dec("4.00"))
	})).Return(nil)
	mockAccounts.On("Upsert", mock.Anything, mock.MatchedBy(func(a *models.UserAccount) bool {
		return a.Balance.Equal(decimal.NewFromInt(6))
	})).Return(nil)
	mockLeaderboards.On("Upsert", mock.Anything, mock.AnythingOfType("*models.Leaderboard")).Return(nil)

	result, err := service.PlaceWager(ctx, key, UserRef{ID: "player", Username: "bob"}, dec("4.00"))

	assert.NoError(t, err)
	assert.True(t, result.NewBalance.Equal(decimal.NewFromInt(6)))
	assert.True(t, bet.Options["Red"].Total.Equal(dec("4.00")))
	assert.Equal(t, "Entered a wager: who wins?", account.TransactionLog[0].Comment)

	mockBets.AssertExpectations(t)
	mockAccounts.AssertExpectations(t)
}

func TestBetService_PlaceWager_SecondWagerRejectedWithoutMutation(t *testing.T) {
	ctx := context.Background()

	mockBets := new(MockBetRepository)
	mockAccounts := new(MockAccountRepository)
	mockLeaderboards := new(MockLeaderboardRepository)
	service := newTestBetService(mockBets, mockAccounts, mockLeaderboards)

	bet, err := models.NewBet("who wins?", "owner", []string{"Red", "Blue"})
	assert.NoError(t, err)
	bet.PlaceWager("player", "bob", "Red", dec("4.00"))
	account := models.NewUserAccount("player", "bob")
	key := models.BetOptionKey{BetID: bet.ID, Option: "Blue", GuildID: "guild-1"}

	mockBets.On("Get", mock.Anything, bet.ID).Return(bet, nil)
	mockAccounts.On("Get", mock.Anything, "player").Return(account, nil)
	mockLeaderboards.On("Get", mock.Anything).Return(models.NewLeaderboard(), nil)

	result, err := service.PlaceWager(ctx, key, UserRef{ID: "player", Username: "bob"}, dec("2.00"))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrAlreadyWagered)
	assert.True(t, bet.Options["Blue"].Total.IsZero())
	assert.True(t, bet.Wagers["player"].Amount.Equal(dec("4.00")))
	mockBets.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	mockAccounts.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestBetService_PlaceWager_AmountBounds(t *testing.T) {
	ctx := context.Background()

	service := newTestBetService(new(MockBetRepository), new(MockAccountRepository), new(MockLeaderboardRepository))
	key := models.BetOptionKey{BetID: "irrelevant", Option: "Red", GuildID: "guild-1"}
	user := UserRef{ID: "player", Username: "bob"}

	for _, amount := range []string{"0.00", "-1.00", "20.01"} {
		result, err := service.PlaceWager(ctx, key, user, dec(amount))
		assert.Nil(t, result)
		var amountErr *InvalidAmountError
		assert.ErrorAs(t, err, &amountErr)
	}
}

func TestBetService_PlaceWager_ClosedBet(t *testing.T) {
	ctx := context.Background()

	mockBets := new(MockBetRepository)
	mockAccounts := new(MockAccountRepository)
	mockLeaderboards := new(MockLeaderboardRepository)
	service := newTestBetService(mockBets, mockAccounts, mockLeaderboards)

	mockBets.On("Get", mock.Anything, "gone").Return(nil, nil)
	mockAccounts.On("Get", mock.Anything, "player").Return(nil, nil)
	mockLeaderboards.On("Get", mock.Anything).Return(models.NewLeaderboard(), nil)

	key := models.BetOptionKey{BetID: "gone", Option: "Red", GuildID: "guild-1"}
	result, err := service.PlaceWager(ctx, key, UserRef{ID: "player", Username: "bob"}, dec("1.00"))

	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrBetClosed)
}

func TestBetService_EndBet_PaysWinnersProportionally(t *testing.T) {
	ctx := context.Background()

	mockBets := new(MockBetRepository)
	mockAccounts := new(MockAccountRepository)
	mockLeaderboards := new(MockLeaderboardRepository)
	service := newTestBetService(mockBets, mockAccounts, mockLeaderboards)

	// Pot 10: winners staked 2 and 3 on Red, loser staked 5 on Blue.
	bet, err := models.NewBet("who wins?", "owner", []string{"Red", "Blue"})
	assert.NoError(t, err)
	bet.PlaceWager("w1", "alice", "Red", dec("2.00"))
	bet.PlaceWager("w2", "bob", "Red", dec("3.00"))
	bet.PlaceWager("l1", "carol", "Blue", dec("5.00"))

	w1 := models.NewUserAccount("w1", "alice")
	w2 := models.NewUserAccount("w2", "bob")

	mockBets.On("Get", mock.Anything, bet.ID).Return(bet, nil)
	mockLeaderboards.On("Get", mock.Anything).Return(models.NewLeaderboard(), nil)
	mockAccounts.On("Get", mock.Anything, "w1").Return(w1, nil)
	mockAccounts.On("Get", mock.Anything, "w2").Return(w2, nil)

	mockAccounts.On("Upsert", mock.Anything, mock.MatchedBy(func(a *models.UserAccount) bool {
		return a.ID == "w1" && a.Balance.Equal(dec("4.00"))
	})).Return(nil)
	mockAccounts.On("Upsert", mock.Anything, mock.MatchedBy(func(a *models.UserAccount) bool {
		return a.ID == "w2" && a.Balance.Equal(dec("6.00"))
	})).Return(nil)
	mockLeaderboards.On("Upsert", mock.Anything, mock.AnythingOfType("*models.Leaderboard")).Return(nil)
	mockBets.On("Delete", ctx, bet.ID).Return(nil)

	settlement, err := service.EndBet(ctx, UserRef{ID: "owner", Username: "owner"}, "Who Wins?", "Red", "guild-1")

	assert.NoError(t, err)
	assert.True(t, settlement.Pot.Equal(decimal.NewFromInt(10)))
	assert.True(t, settlement.Payouts["w1"].Equal(dec("4.00")))
	assert.True(t, settlement.Payouts["w2"].Equal(dec("6.00")))
	assert.Equal(t, "alice", settlement.WinnerNames["w1"])

	mockBets.AssertExpectations(t)
	mockAccounts.AssertExpectations(t)
}

func TestBetService_EndBet_OnlyOwnerMayEnd(t *testing.T) {
	ctx := context.Background()

	mockBets := new(MockBetRepository)
	mockLeaderboards := new(MockLeaderboardRepository)
	service := newTestBetService(mockBets, new(MockAccountRepository), mockLeaderboards)

	bet, err := models.NewBet("who wins?", "owner", []string{"Red", "Blue"})
	assert.NoError(t, err)

	mockBets.On("Get", mock.Anything, bet.ID).Return(bet, nil)
	mockLeaderboards.On("Get", mock.Anything).Return(models.NewLeaderboard(), nil)

	settlement, err := service.EndBet(ctx, UserRef{ID: "intruder", Username: "mallory"}, "who wins?", "Red", "guild-1")

	assert.Nil(t, settlement)
	assert.ErrorIs(t, err, ErrNotBetOwner)
	mockBets.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestBetService_EndBet_BotOwnerMayEndAnyBet(t *testing.T) {
	ctx := context.Background()

	mockBets := new(MockBetRepository)
	mockLeaderboards := new(MockLeaderboardRepository)
	service := newTestBetService(mockBets, new(MockAccountRepository), mockLeaderboards)

	// Nobody wagered, so settlement is empty but still allowed.
	bet, err := models.NewBet("who wins?", "owner", []string{"Red", "Blue"})
	assert.NoError(t, err)

	mockBets.On("Get", mock.Anything, bet.ID).Return(bet, nil)
	mockLeaderboards.On("Get", mock.Anything).Return(models.NewLeaderboard(), nil)
	mockLeaderboards.On("Upsert", mock.Anything, mock.AnythingOfType("*models.Leaderboard")).Return(nil)
	mockBets.On("Delete", ctx, bet.ID).Return(nil)

	settlement, err := service.EndBet(ctx, UserRef{ID: "owner-id", Username: "root"}, "who wins?", "Red", "guild-1")

	assert.NoError(t, err)
	assert.Empty(t, settlement.Payouts)

	mockBets.AssertExpectations(t)
}
