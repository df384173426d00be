package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"wokebucks/config"
	"wokebucks/models"
)

type betService struct {
	bets         BetRepository
	accounts     AccountRepository
	leaderboards LeaderboardRepository
	cfg          *config.Config
	now          func() time.Time
}

// NewBetService creates a new bet service
func NewBetService(bets BetRepository, accounts AccountRepository, leaderboards LeaderboardRepository, cfg *config.Config) BetService {
	return &betService{
		bets:         bets,
		accounts:     accounts,
		leaderboards: leaderboards,
		cfg:          cfg,
		now:          time.Now,
	}
}

func (s *betService) StartBet(ctx context.Context, owner UserRef, reason string, options []string) (*models.Bet, error) {
	reason = sanitizeReason(reason)
	bet, err := models.NewBet(reason, owner.ID, options)
	if err != nil {
		return nil, err
	}

	existing, err := s.bets.Get(ctx, bet.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check for existing bet: %w", err)
	}
	if existing != nil {
		return nil, ErrBetExists
	}

	if err := s.bets.Upsert(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}
	return bet, nil
}

func (s *betService) GetBet(ctx context.Context, betID string) (*models.Bet, error) {
	bet, err := s.bets.Get(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}
	if bet == nil {
		return nil, ErrBetClosed
	}
	return bet, nil
}

func (s *betService) PlaceWager(ctx context.Context, key models.BetOptionKey, user UserRef, amount decimal.Decimal) (*WagerResult, error) {
	amount = amount.Round(2)
	if amount.LessThan(s.cfg.BetMinAmount) || amount.GreaterThan(s.cfg.BetMaxAmount) {
		return nil, &InvalidAmountError{Amount: amount, Min: s.cfg.BetMinAmount, Max: s.cfg.BetMaxAmount}
	}

	var (
		bet         *models.Bet
		account     *models.UserAccount
		leaderboard *models.Leaderboard
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		bet, err = s.bets.Get(gctx, key.BetID)
		return err
	})
	g.Go(func() (err error) {
		account, err = s.accounts.Get(gctx, user.ID)
		return err
	})
	g.Go(func() (err error) {
		leaderboard, err = s.leaderboards.Get(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read wager documents: %w", err)
	}
	if bet == nil {
		return nil, ErrBetClosed
	}
	if leaderboard == nil {
		return nil, ErrLeaderboardMissing
	}
	if !bet.HasOption(key.Option) {
		return nil, ErrUnknownOption
	}
	if account == nil {
		account = models.NewUserAccount(user.ID, user.Username)
	}

	if !bet.PlaceWager(user.ID, user.Username, key.Option, amount) {
		return nil, ErrAlreadyWagered
	}

	account.AddToBalance(amount.Neg(), user.Username)
	account.AddTransaction("Wokebucks Bet", fmt.Sprintf("Entered a wager: %s", bet.Reason), amount.Neg(), s.now())
	leaderboard.Update(key.GuildID, user.ID, user.Username, account.Balance)

	if err := fanout(ctx, []fanoutWrite{
		{"bet", func(ctx context.Context) error { return s.bets.Upsert(ctx, bet) }},
		{"wagerer account", func(ctx context.Context) error { return s.accounts.Upsert(ctx, account) }},
		{"leaderboard", func(ctx context.Context) error { return s.leaderboards.Upsert(ctx, leaderboard) }},
	}); err != nil {
		return nil, err
	}

	return &WagerResult{
		Bet:        bet,
		Option:     key.Option,
		Amount:     amount,
		NewBalance: account.Balance,
	}, nil
}

func (s *betService) EndBet(ctx context.Context, caller UserRef, reason, winningOption, guildID string) (*BetSettlement, error) {
	betID := models.BetIDFromReason(reason)

	var (
		bet         *models.Bet
		leaderboard *models.Leaderboard
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		bet, err = s.bets.Get(gctx, betID)
		return err
	})
	g.Go(func() (err error) {
		leaderboard, err = s.leaderboards.Get(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read settlement documents: %w", err)
	}
	if bet == nil {
		return nil, ErrBetClosed
	}
	if leaderboard == nil {
		return nil, ErrLeaderboardMissing
	}
	if bet.OwnerID != caller.ID && caller.ID != s.cfg.OwnerID {
		return nil, ErrNotBetOwner
	}
	if !bet.HasOption(winningOption) {
		return nil, ErrUnknownOption
	}

	pot := bet.Pot()
	payouts := bet.WinningPayouts(winningOption)
	winnerNames := make(map[string]string, len(payouts))
	now := s.now()

	writes := []fanoutWrite{
		{"leaderboard", func(ctx context.Context) error { return s.leaderboards.Upsert(ctx, leaderboard) }},
	}
	for userID, payout := range payouts {
		wager := bet.Wagers[userID]
		winnerNames[userID] = wager.Username

		account, err := s.accounts.Get(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to get winner account: %w", err)
		}
		if account == nil {
			account = models.NewUserAccount(userID, wager.Username)
		}
		account.AddToBalance(payout, wager.Username)
		account.AddTransaction("Wokebucks Bet", "Won the bet", payout, now)
		leaderboard.Update(guildID, userID, wager.Username, account.Balance)

		writes = append(writes, fanoutWrite{"winner account", func(ctx context.Context) error {
			return s.accounts.Upsert(ctx, account)
		}})
	}

	if err := fanout(ctx, writes); err != nil {
		return nil, err
	}

	if err := s.bets.Delete(ctx, bet.ID); err != nil {
		return nil, fmt.Errorf("failed to delete settled bet: %w", err)
	}

	return &BetSettlement{
		Reason:        bet.Reason,
		WinningOption: winningOption,
		Pot:           pot,
		Payouts:       payouts,
		WinnerNames:   winnerNames,
	}, nil
}
