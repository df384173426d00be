package common

import (
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"wokebucks/service"
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to Discord user
	LogMessage  string // Internal message for logging
	Ephemeral   bool   // Whether the error message should be ephemeral
	Err         error  // Underlying error
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues (validation, cooldowns, etc)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
		Ephemeral:   true,
	}
}

// NewSystemError creates an error for system issues (database, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: "❌ Something went wrong. Please try again later.",
		LogMessage:  logMessage,
		Ephemeral:   true,
		Err:         err,
	}
}

// WrapServiceError translates service-layer errors into a BotError with a
// user-facing message. Unrecognized errors become system errors.
func WrapServiceError(err error, logMessage string) *BotError {
	var (
		rateErr     *service.RateLimitedError
		amountErr   *service.InvalidAmountError
		cooldownErr *service.TicketCooldownError
		balanceErr  *service.InsufficientBalanceError
	)

	switch {
	case errors.As(err, &rateErr):
		return NewUserError(fmt.Sprintf("Chill out! You need to wait **%d more minutes** before picking on **%s** again.",
			rateErr.RemainingMinutes(), rateErr.TargetUsername), logMessage)
	case errors.As(err, &amountErr):
		return NewUserError(fmt.Sprintf("You can't move **$%s**! The amount must be between **$%s** and **$%s**.",
			amountErr.Amount.StringFixed(2), amountErr.Min.StringFixed(2), amountErr.Max.StringFixed(2)), logMessage)
	case errors.As(err, &cooldownErr):
		return NewUserError(fmt.Sprintf("There is already a ticket open against this user. Try again in **%s**.",
			cooldownErr.Remaining.Round(time.Minute)), logMessage)
	case errors.As(err, &balanceErr):
		return NewUserError(fmt.Sprintf("You're too broke for that: you have **$%s** and need **$%s**.",
			balanceErr.Balance.StringFixed(2), balanceErr.Needed.StringFixed(2)), logMessage)
	case errors.Is(err, service.ErrSelfTarget):
		return NewUserError("You can't target yourself with that.", logMessage)
	case errors.Is(err, service.ErrAlreadyWagered):
		return NewUserError("You already placed a wager on this bet.", logMessage)
	case errors.Is(err, service.ErrAlreadyVoted):
		return NewUserError("Your vote has already been counted.", logMessage)
	case errors.Is(err, service.ErrBetExists):
		return NewUserError("A bet with that reason is already open. End it before starting another.", logMessage)
	case errors.Is(err, service.ErrBetClosed):
		return NewUserError("That bet has already ended.", logMessage)
	case errors.Is(err, service.ErrUnknownOption):
		return NewUserError("That option doesn't exist on this bet.", logMessage)
	case errors.Is(err, service.ErrNotBetOwner):
		return NewUserError("Only the person who started the bet can end it.", logMessage)
	case errors.Is(err, service.ErrTicketNotFound):
		return NewUserError("That cancellation ticket no longer exists.", logMessage)
	case errors.Is(err, service.ErrMaxLevel):
		return NewUserError("You've already reached **Galaxy Brain**. There is nothing left to buy.", logMessage)
	default:
		return NewSystemError(err, logMessage)
	}
}

// RespondWithError sends an error message as an interaction response
func RespondWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("❌ %s", message),
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Errorf("Error sending error response: %v", err)
	}
}

// FollowUpWithError sends an error message as a follow-up to a deferred interaction
func FollowUpWithError(s *discordgo.Session, i *discordgo.InteractionCreate, message string) {
	_, err := s.FollowupMessageCreate(i.Interaction, false, &discordgo.WebhookParams{
		Content: fmt.Sprintf("❌ %s", message),
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		log.Errorf("Error sending follow-up error message: %v", err)
	}
}

// HandleError processes an error from a handler and responds appropriately
func HandleError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, deferred bool) {
	botErr := &BotError{}
	if !errors.As(err, &botErr) {
		botErr = NewSystemError(err, "unhandled error in interaction handler")
	}

	if botErr.Err != nil {
		log.WithFields(log.Fields{
			"error":   botErr.Err,
			"message": botErr.LogMessage,
		}).Error("Interaction failed")
	} else {
		log.WithField("message", botErr.LogMessage).Debug("Rejected interaction")
	}

	if deferred {
		FollowUpWithError(s, i, botErr.UserMessage)
		return
	}
	RespondWithError(s, i, botErr.UserMessage)
}
