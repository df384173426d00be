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

type cancelService struct {
	tickets      TicketRepository
	accounts     AccountRepository
	leaderboards LeaderboardRepository
	cfg          *config.Config
	eventBus     *events.Bus
	now          func() time.Time
}

// NewCancelService creates a new cancel service
func NewCancelService(tickets TicketRepository, accounts AccountRepository, leaderboards LeaderboardRepository, cfg *config.Config, eventBus *events.Bus) CancelService {
	return &cancelService{
		tickets:      tickets,
		accounts:     accounts,
		leaderboards: leaderboards,
		cfg:          cfg,
		eventBus:     eventBus,
		now:          time.Now,
	}
}

func (s *cancelService) OpenTicket(ctx context.Context, initiator, target UserRef, description string) (*models.CancelTicket, error) {
	isOwner := initiator.ID == s.cfg.OwnerID
	if initiator.ID == target.ID && !isOwner {
		return nil, ErrSelfTarget
	}
	description = sanitizeReason(description)

	ticketID := models.TicketIDForPair(initiator.ID, target.ID)

	var (
		existing         *models.CancelTicket
		initiatorAccount *models.UserAccount
		targetAccount    *models.UserAccount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		existing, err = s.tickets.Get(gctx, ticketID)
		return err
	})
	g.Go(func() (err error) {
		initiatorAccount, err = s.accounts.Get(gctx, initiator.ID)
		return err
	})
	if initiator.ID != target.ID {
		g.Go(func() (err error) {
			targetAccount, err = s.accounts.Get(gctx, target.ID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read ticket documents: %w", err)
	}

	now := s.now()
	if existing != nil && !isOwner {
		if remaining := existing.CooldownRemaining(now, s.cfg.TicketCooldown); remaining > 0 {
			return nil, &TicketCooldownError{Remaining: remaining}
		}
	}

	if initiatorAccount == nil {
		initiatorAccount = models.NewUserAccount(initiator.ID, initiator.Username)
	}
	if initiator.ID == target.ID {
		targetAccount = initiatorAccount
	} else if targetAccount == nil {
		targetAccount = models.NewUserAccount(target.ID, target.Username)
	}

	// The content-addressed id makes this an overwrite of any expired
	// ticket for the same pair, resetting its votes.
	ticket := models.NewCancelTicket(initiator.ID, initiator.Username, target.ID, target.Username, description, now)
	initiatorAccount.AddCreatedTicket(ticket)
	targetAccount.AddCancelTicket(ticket)

	writes := []fanoutWrite{
		{"ticket", func(ctx context.Context) error { return s.tickets.Upsert(ctx, ticket) }},
		{"initiator account", func(ctx context.Context) error { return s.accounts.Upsert(ctx, initiatorAccount) }},
	}
	if initiator.ID != target.ID {
		writes = append(writes, fanoutWrite{"target account", func(ctx context.Context) error {
			return s.accounts.Upsert(ctx, targetAccount)
		}})
	}
	if err := fanout(ctx, writes); err != nil {
		return nil, err
	}

	return ticket, nil
}

func (s *cancelService) Vote(ctx context.Context, ticketID string, voter UserRef, guildID string) (*VoteResult, error) {
	ticket, err := s.tickets.Get(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	if ticket == nil {
		return nil, ErrTicketNotFound
	}
	if voter.ID == ticket.TargetID {
		return nil, ErrSelfTarget
	}

	if !ticket.AddVote(voter.ID) {
		return nil, ErrAlreadyVoted
	}

	if ticket.VoteCount() < s.cfg.TicketVoteThreshold {
		if err := s.tickets.Upsert(ctx, ticket); err != nil {
			return nil, fmt.Errorf("failed to record vote: %w", err)
		}
		return &VoteResult{Ticket: ticket}, nil
	}

	// Threshold reached: the ticket resolves exactly once and the penalty
	// lands on the target.
	ticket.Resolved = true

	var (
		target      *models.UserAccount
		leaderboard *models.Leaderboard
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		target, err = s.accounts.Get(gctx, ticket.TargetID)
		return err
	})
	g.Go(func() (err error) {
		leaderboard, err = s.leaderboards.Get(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to read penalty documents: %w", err)
	}
	if leaderboard == nil {
		return nil, ErrLeaderboardMissing
	}
	if target == nil {
		target = models.NewUserAccount(ticket.TargetID, ticket.TargetUsername)
	}

	penalty := target.ApplyCancellation(ticket.InitiatorUsername, s.now())
	leaderboard.Update(guildID, ticket.TargetID, ticket.TargetUsername, target.Balance)

	if err := fanout(ctx, []fanoutWrite{
		{"ticket", func(ctx context.Context) error { return s.tickets.Upsert(ctx, ticket) }},
		{"target account", func(ctx context.Context) error { return s.accounts.Upsert(ctx, target) }},
		{"leaderboard", func(ctx context.Context) error { return s.leaderboards.Upsert(ctx, leaderboard) }},
	}); err != nil {
		return nil, err
	}

	s.eventBus.Emit(ctx, events.UserCanceledEvent{
		TicketID: ticket.ID,
		TargetID: ticket.TargetID,
		Penalty:  penalty,
	})

	return &VoteResult{
		Ticket:   ticket,
		Canceled: true,
		Penalty:  penalty,
	}, nil
}
