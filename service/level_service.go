package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"wokebucks/config"
	"wokebucks/events"
	"wokebucks/models"
)

type levelService struct {
	accounts     AccountRepository
	leaderboards LeaderboardRepository
	lotteries    LotteryRepository
	cfg          *config.Config
	eventBus     *events.Bus
	now          func() time.Time
}

// NewLevelService creates a new level service
func NewLevelService(accounts AccountRepository, leaderboards LeaderboardRepository, lotteries LotteryRepository, cfg *config.Config, eventBus *events.Bus) LevelService {
	return &levelService{
		accounts:     accounts,
		leaderboards: leaderboards,
		lotteries:    lotteries,
		cfg:          cfg,
		eventBus:     eventBus,
		now:          time.Now,
	}
}

func (s *levelService) Quote(ctx context.Context, user UserRef) (*LevelQuote, error) {
	account, err := s.accounts.Get(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		account = models.NewUserAccount(user.ID, user.Username)
	}

	quote := &LevelQuote{Balance: account.Balance}
	if current, ok := models.Levels[account.Level]; ok {
		quote.Current = &current
	}
	if next, ok := models.Levels[account.Level+1]; ok {
		quote.Next = &next
	}
	return quote, nil
}

func (s *levelService) Purchase(ctx context.Context, user UserRef, guildID string) (*LevelPurchaseResult, error) {
	var (
		account     *models.UserAccount
		lottery     *models.Lottery
		leaderboard *models.Leaderboard
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		account, err = s.accounts.Get(gctx, user.ID)
		return err
	})
	g.Go(func() (err error) {
		lottery, err = s.lotteries.Get(gctx, guildID)
		return err
	})
	g.Go(func() (err error) {
		leaderboard, err = s.leaderboards.Get(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read purchase documents: %w", err)
	}
	if lottery == nil {
		return nil, ErrLotteryMissing
	}
	if leaderboard == nil {
		return nil, ErrLeaderboardMissing
	}
	if account == nil {
		account = models.NewUserAccount(user.ID, user.Username)
	}

	next, ok := models.Levels[account.Level+1]
	if !ok {
		return nil, ErrMaxLevel
	}
	if account.Balance.LessThan(next.Cost) {
		return nil, &InsufficientBalanceError{Balance: account.Balance, Needed: next.Cost}
	}

	account.AddToBalance(next.Cost.Neg(), user.Username)
	account.AddTransaction("Wokebucks Levels", fmt.Sprintf("Purchased level: %s", next.Name), next.Cost.Neg(), s.now())
	account.Level = next.ID
	lottery.AddToJackpot(s.cfg.LevelJackpotIncrement)
	leaderboard.Update(guildID, user.ID, user.Username, account.Balance)

	if err := fanout(ctx, []fanoutWrite{
		{"buyer account", func(ctx context.Context) error { return s.accounts.Upsert(ctx, account) }},
		{"lottery", func(ctx context.Context) error { return s.lotteries.Upsert(ctx, lottery) }},
		{"leaderboard", func(ctx context.Context) error { return s.leaderboards.Upsert(ctx, leaderboard) }},
	}); err != nil {
		return nil, err
	}

	s.eventBus.Emit(ctx, events.LevelPurchasedEvent{
		UserID:  user.ID,
		GuildID: guildID,
		Level:   next.ID,
	})

	return &LevelPurchaseResult{
		Level:      next,
		NewBalance: account.Balance,
	}, nil
}
