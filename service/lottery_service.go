package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"wokebucks/config"
	"wokebucks/events"
	"wokebucks/models"
)

type lotteryService struct {
	accounts     AccountRepository
	leaderboards LeaderboardRepository
	lotteries    LotteryRepository
	cfg          *config.Config
	eventBus     *events.Bus
	rng          *rand.Rand
	now          func() time.Time
}

// NewLotteryService creates a new lottery service
func NewLotteryService(accounts AccountRepository, leaderboards LeaderboardRepository, lotteries LotteryRepository, cfg *config.Config, eventBus *events.Bus, rng *rand.Rand) LotteryService {
	return &lotteryService{
		accounts:     accounts,
		leaderboards: leaderboards,
		lotteries:    lotteries,
		cfg:          cfg,
		eventBus:     eventBus,
		rng:          rng,
		now:          time.Now,
	}
}

func (s *lotteryService) EnsureExists(ctx context.Context, guildID string) (*models.Lottery, error) {
	lottery, err := s.lotteries.Get(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery != nil {
		return lottery, nil
	}

	lottery = models.NewLottery(guildID, s.cfg.LotterySeed, s.now())
	if err := s.lotteries.Upsert(ctx, lottery); err != nil {
		return nil, fmt.Errorf("failed to create lottery: %w", err)
	}
	return lottery, nil
}

func (s *lotteryService) Get(ctx context.Context, guildID string) (*models.Lottery, error) {
	lottery, err := s.lotteries.Get(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil {
		return nil, ErrLotteryMissing
	}
	return lottery, nil
}

func (s *lotteryService) BuyTicket(ctx context.Context, guildID string, buyer UserRef) (*TicketPurchaseResult, error) {
	var (
		account     *models.UserAccount
		lottery     *models.Lottery
		leaderboard *models.Leaderboard
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		account, err = s.accounts.Get(gctx, buyer.ID)
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
		return nil, fmt.Errorf("failed to read lottery documents: %w", err)
	}
	if lottery == nil {
		return nil, ErrLotteryMissing
	}
	if leaderboard == nil {
		return nil, ErrLeaderboardMissing
	}
	if account == nil {
		account = models.NewUserAccount(buyer.ID, buyer.Username)
	}

	// The floor gates entry, not the resulting balance: a buyer right at
	// the floor may still go one ticket deeper into debt.
	price := s.cfg.LotteryTicketPrice
	if account.Balance.LessThan(s.cfg.LotteryMinBalance) {
		return nil, &InsufficientBalanceError{Balance: account.Balance, Needed: price}
	}

	account.AddToBalance(price.Neg(), buyer.Username)
	account.AddTransaction("Wokebucks Lottery", "Purchased a ticket", price.Neg(), s.now())
	lottery.AddTicket(buyer.ID, s.cfg.TicketJackpotIncrement)
	leaderboard.Update(guildID, buyer.ID, buyer.Username, account.Balance)

	if err := fanout(ctx, []fanoutWrite{
		{"buyer account", func(ctx context.Context) error { return s.accounts.Upsert(ctx, account) }},
		{"lottery", func(ctx context.Context) error { return s.lotteries.Upsert(ctx, lottery) }},
		{"leaderboard", func(ctx context.Context) error { return s.leaderboards.Upsert(ctx, leaderboard) }},
	}); err != nil {
		return nil, err
	}

	return &TicketPurchaseResult{
		TicketCount: lottery.TicketCount(buyer.ID),
		Jackpot:     lottery.Jackpot,
		NewBalance:  account.Balance,
	}, nil
}

// ResolveIfDue settles the guild lottery when its drawing period has
// elapsed. A drawing with no tickets sold carries the jackpot forward
// without resetting the clock. Returns nil when nothing was settled.
func (s *lotteryService) ResolveIfDue(ctx context.Context, guildID string) (*LotterySettlement, error) {
	lottery, err := s.lotteries.Get(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lottery: %w", err)
	}
	if lottery == nil || !lottery.Due(s.now(), s.cfg.LotteryPeriod) {
		return nil, nil
	}

	winnerID, ok := lottery.DrawWinner(s.rng)
	if !ok {
		return nil, nil
	}

	var (
		winner      *models.UserAccount
		leaderboard *models.Leaderboard
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		winner, err = s.accounts.Get(gctx, winnerID)
		return err
	})
	g.Go(func() (err error) {
		leaderboard, err = s.leaderboards.Get(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read settlement documents: %w", err)
	}
	if leaderboard == nil {
		return nil, ErrLeaderboardMissing
	}
	if winner == nil {
		winner = models.NewUserAccount(winnerID, winnerID)
	}
	winnerUsername := winner.Username

	jackpot := lottery.Jackpot
	winner.AddToBalance(jackpot, winnerUsername)
	winner.AddTransaction("Wokebucks Lottery", "Won the lottery!", jackpot, s.now())
	leaderboard.Update(guildID, winnerID, winnerUsername, winner.Balance)

	fresh := models.NewLottery(guildID, s.cfg.LotterySeed, s.now())

	if err := fanout(ctx, []fanoutWrite{
		{"winner account", func(ctx context.Context) error { return s.accounts.Upsert(ctx, winner) }},
		{"leaderboard", func(ctx context.Context) error { return s.leaderboards.Upsert(ctx, leaderboard) }},
		{"lottery", func(ctx context.Context) error { return s.lotteries.Upsert(ctx, fresh) }},
	}); err != nil {
		return nil, err
	}

	s.eventBus.Emit(ctx, events.LotteryResolvedEvent{
		GuildID:  guildID,
		WinnerID: winnerID,
		Jackpot:  jackpot,
	})

	return &LotterySettlement{
		GuildID:        guildID,
		WinnerID:       winnerID,
		WinnerUsername: winnerUsername,
		Jackpot:        jackpot,
	}, nil
}
