package service

import (
	"context"
	"fmt"
	"time"

	goaway "github.com/TwiN/go-away"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"wokebucks/config"
	"wokebucks/events"
	"wokebucks/models"
)

const maxReasonLength = 200

var minTransferMagnitude = decimal.RequireFromString("0.01")

type ledgerService struct {
	accounts     AccountRepository
	leaderboards LeaderboardRepository
	lotteries    LotteryRepository
	cfg          *config.Config
	eventBus     *events.Bus
	now          func() time.Time
}

// NewLedgerService creates a new ledger service
func NewLedgerService(accounts AccountRepository, leaderboards LeaderboardRepository, lotteries LotteryRepository, cfg *config.Config, eventBus *events.Bus) LedgerService {
	return &ledgerService{
		accounts:     accounts,
		leaderboards: leaderboards,
		lotteries:    lotteries,
		cfg:          cfg,
		eventBus:     eventBus,
		now:          time.Now,
	}
}

// sanitizeReason caps the comment length and censors profanity before it
// is stored on the transaction log.
func sanitizeReason(reason string) string {
	if len(reason) > maxReasonLength {
		reason = reason[:maxReasonLength]
	}
	return goaway.Censor(reason)
}

func (s *ledgerService) Transfer(ctx context.Context, actor, target UserRef, guildID string, amount decimal.Decimal, reason string, kind TransferKind) (*TransferResult, error) {
	amount = amount.Round(2)
	reason = sanitizeReason(reason)
	isOwner := actor.ID == s.cfg.OwnerID

	if actor.ID == target.ID && !isOwner {
		return nil, ErrSelfTarget
	}

	// Fan-in: the actor account, target account, leaderboard, and lottery
	// are independent documents and are read concurrently.
	var (
		actorAccount  *models.UserAccount
		targetAccount *models.UserAccount
		leaderboard   *models.Leaderboard
		lottery       *models.Lottery
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		actorAccount, err = s.accounts.Get(gctx, actor.ID)
		return err
	})
	if actor.ID != target.ID {
		g.Go(func() (err error) {
			targetAccount, err = s.accounts.Get(gctx, target.ID)
			return err
		})
	}
	g.Go(func() (err error) {
		leaderboard, err = s.leaderboards.Get(gctx)
		return err
	})
	g.Go(func() (err error) {
		lottery, err = s.lotteries.Get(gctx, guildID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read transfer documents: %w", err)
	}

	if leaderboard == nil {
		return nil, ErrLeaderboardMissing
	}
	if lottery == nil {
		return nil, ErrLotteryMissing
	}
	if actorAccount == nil {
		actorAccount = models.NewUserAccount(actor.ID, actor.Username)
	}
	if actor.ID == target.ID {
		targetAccount = actorAccount
	} else if targetAccount == nil {
		targetAccount = models.NewUserAccount(target.ID, target.Username)
	}

	now := s.now()

	// Rate limit: the owner identity is treated as never having interacted.
	if !isOwner {
		elapsed, interacted := actorAccount.MinutesSinceInteraction(target.ID, now)
		window := float64(s.cfg.CooldownMinutes)
		if interacted && elapsed < window {
			return nil, &RateLimitedError{
				Remaining:      time.Duration((window - elapsed) * float64(time.Minute)),
				TargetUsername: target.Username,
			}
		}
	}

	if err := s.checkAmount(amount, kind, actorAccount.Level, isOwner); err != nil {
		return nil, err
	}

	targetAccount.AddToBalance(amount, target.Username)
	targetAccount.AddTransaction(actor.Username, reason, amount, now)
	actorAccount.TouchInteraction(target.ID, now)
	leaderboard.Update(guildID, target.ID, target.Username, targetAccount.Balance)
	if kind == TransferGive {
		lottery.AddToJackpot(s.cfg.TransferJackpotIncrement)
	}

	writes := []fanoutWrite{
		{"target account", func(ctx context.Context) error { return s.accounts.Upsert(ctx, targetAccount) }},
		{"leaderboard", func(ctx context.Context) error { return s.leaderboards.Upsert(ctx, leaderboard) }},
		{"lottery", func(ctx context.Context) error { return s.lotteries.Upsert(ctx, lottery) }},
	}
	if actor.ID != target.ID {
		writes = append(writes, fanoutWrite{"actor account", func(ctx context.Context) error { return s.accounts.Upsert(ctx, actorAccount) }})
	}
	if err := fanout(ctx, writes); err != nil {
		return nil, err
	}

	s.eventBus.Emit(ctx, events.BalanceChangeEvent{
		UserID:     target.ID,
		GuildID:    guildID,
		Username:   target.Username,
		NewBalance: targetAccount.Balance,
		Amount:     amount,
		Initiator:  actor.Username,
	})

	return &TransferResult{
		TargetUsername: target.Username,
		NewBalance:     targetAccount.Balance,
		Amount:         amount,
		Reason:         reason,
	}, nil
}

// checkAmount enforces the magnitude caps. The minimum magnitude of 0.01
// applies to everyone; the level-scaled cap is waived for the owner.
func (s *ledgerService) checkAmount(amount decimal.Decimal, kind TransferKind, actorLevel int, isOwner bool) error {
	upper, lower := models.TransferLimits(actorLevel)
	switch kind {
	case TransferGive:
		if amount.LessThan(minTransferMagnitude) || (amount.GreaterThan(upper) && !isOwner) {
			return &InvalidAmountError{Amount: amount, Min: minTransferMagnitude, Max: upper}
		}
	case TransferTake:
		if amount.GreaterThan(minTransferMagnitude.Neg()) || (amount.LessThan(lower) && !isOwner) {
			return &InvalidAmountError{Amount: amount, Min: lower, Max: minTransferMagnitude.Neg()}
		}
	default:
		return fmt.Errorf("unknown transfer kind %q", kind)
	}
	return nil
}

func (s *ledgerService) ApplySystemCredit(ctx context.Context, target UserRef, guildID, initiator, comment string, amount decimal.Decimal) (*TransferResult, error) {
	amount = amount.Round(2)

	var (
		account     *models.UserAccount
		leaderboard *models.Leaderboard
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		account, err = s.accounts.Get(gctx, target.ID)
		return err
	})
	g.Go(func() (err error) {
		leaderboard, err = s.leaderboards.Get(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read credit documents: %w", err)
	}
	if leaderboard == nil {
		return nil, ErrLeaderboardMissing
	}
	if account == nil {
		account = models.NewUserAccount(target.ID, target.Username)
	}

	account.AddToBalance(amount, target.Username)
	account.AddTransaction(initiator, comment, amount, s.now())
	leaderboard.Update(guildID, target.ID, target.Username, account.Balance)

	if err := fanout(ctx, []fanoutWrite{
		{"target account", func(ctx context.Context) error { return s.accounts.Upsert(ctx, account) }},
		{"leaderboard", func(ctx context.Context) error { return s.leaderboards.Upsert(ctx, leaderboard) }},
	}); err != nil {
		return nil, err
	}

	s.eventBus.Emit(ctx, events.BalanceChangeEvent{
		UserID:     target.ID,
		GuildID:    guildID,
		Username:   target.Username,
		NewBalance: account.Balance,
		Amount:     amount,
		Initiator:  initiator,
	})

	return &TransferResult{
		TargetUsername: target.Username,
		NewBalance:     account.Balance,
		Amount:         amount,
		Reason:         comment,
	}, nil
}

func (s *ledgerService) GetOrCreateAccount(ctx context.Context, user UserRef) (*models.UserAccount, error) {
	account, err := s.accounts.Get(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account != nil {
		return account, nil
	}

	account = models.NewUserAccount(user.ID, user.Username)
	if err := s.accounts.Upsert(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	return account, nil
}

func (s *ledgerService) Leaderboard(ctx context.Context) (*models.Leaderboard, error) {
	leaderboard, err := s.leaderboards.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	if leaderboard == nil {
		return nil, ErrLeaderboardMissing
	}
	return leaderboard, nil
}

// fanoutWrite is one independent document write in a best-effort batch.
type fanoutWrite struct {
	name string
	fn   func(ctx context.Context) error
}

// fanout issues the writes concurrently. Each failure is logged on its
// own; the remaining writes are not rolled back, and the first error is
// returned so the caller can surface a generic failure.
func fanout(ctx context.Context, writes []fanoutWrite) error {
	var g errgroup.Group
	for _, w := range writes {
		g.Go(func() error {
			if err := w.fn(ctx); err != nil {
				log.WithFields(log.Fields{
					"write": w.name,
					"error": err,
				}).Error("Document write failed in fan-out batch")
				return fmt.Errorf("failed to write %s: %w", w.name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
