package cancel

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"wokebucks/bot/common"
	"wokebucks/config"
	"wokebucks/models"
	"wokebucks/service"
)

func (f *Feature) handleCancel(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	initiator := common.InteractionUser(i)

	var target *discordgo.User
	var reason string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			target = opt.UserValue(s)
		case "reason":
			reason = opt.StringValue()
		}
	}

	if target == nil {
		common.RespondWithError(s, i, "You have to pick someone to cancel.")
		return
	}
	if target.Bot {
		common.RespondWithError(s, i, "You can't cancel a bot. Believe me, people have tried.")
		return
	}

	ticket, err := f.cancelService.OpenTicket(ctx,
		service.UserRef{ID: initiator.ID, Username: initiator.Username},
		service.UserRef{ID: target.ID, Username: target.Username},
		reason)
	if err != nil {
		common.HandleError(s, i, common.WrapServiceError(err, "cancel ticket rejected"), false)
		return
	}

	log.WithFields(log.Fields{
		"ticket":    ticket.ID,
		"initiator": initiator.ID,
		"target":    target.ID,
	}).Info("Cancel ticket opened")

	threshold := config.Get().TicketVoteThreshold
	embed := buildTicketEmbed(ticket, threshold)

	if err := common.RespondWithEmbed(s, i, embed, voteComponents(ticket.ID), false); err != nil {
		log.Errorf("Error responding to cancel command: %v", err)
	}
}

func (f *Feature) handleVote(s *discordgo.Session, i *discordgo.InteractionCreate, ticketID string) {
	ctx := context.Background()
	voter := common.InteractionUser(i)

	result, err := f.cancelService.Vote(ctx, ticketID, service.UserRef{ID: voter.ID, Username: voter.Username}, i.GuildID)
	if err != nil {
		common.HandleError(s, i, common.WrapServiceError(err, "cancel vote rejected"), false)
		return
	}

	threshold := config.Get().TicketVoteThreshold

	if !result.Canceled {
		// Refresh the ticket message in place so the vote count stays current.
		if err := common.UpdateMessage(s, i, buildTicketEmbed(result.Ticket, threshold), voteComponents(ticketID)); err != nil {
			log.Errorf("Error updating cancel ticket message: %v", err)
		}
		return
	}

	log.WithFields(log.Fields{
		"ticket":  ticketID,
		"target":  result.Ticket.TargetID,
		"penalty": result.Penalty,
	}).Info("User canceled")

	embed := &discordgo.MessageEmbed{
		Title: "🔨 CANCELED",
		Description: fmt.Sprintf("The people have spoken: **%s** is canceled. Their balance takes a **%s** hit.",
			result.Ticket.TargetUsername, common.FormatAmount(result.Penalty)),
		Color: common.ColorDanger,
	}
	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Error responding to cancel resolution: %v", err)
	}
}

func (f *Feature) handleTickets(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := common.InteractionUser(i)

	account, err := f.ledgerService.GetOrCreateAccount(ctx, service.UserRef{ID: user.ID, Username: user.Username})
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to load account for tickets"), false)
		return
	}

	if len(account.CancelTickets) == 0 && len(account.CreatedTickets) == 0 {
		common.RespondWithContent(s, i, "No cancellation tickets on your record. Keep it that way.", true)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "Cancellation Tickets",
		Color: common.ColorWarning,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "Against you",
				Value: formatTicketRefs(account.CancelTickets),
			},
			{
				Name:  "Opened by you",
				Value: formatTicketRefs(account.CreatedTickets),
			},
		},
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Error responding to tickets command: %v", err)
	}
}

func formatTicketRefs(refs []models.TicketRef) string {
	if len(refs) == 0 {
		return "None."
	}
	var sb strings.Builder
	for _, ref := range refs {
		fmt.Fprintf(&sb, "• %s\n", ref.Note)
	}
	return sb.String()
}

func voteComponents(ticketID string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					CustomID: voteButtonPrefix + ticketID,
					Label:    "Vote to cancel",
					Style:    discordgo.DangerButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "🔨"},
				},
			},
		},
	}
}

func buildTicketEmbed(ticket *models.CancelTicket, threshold int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("⚖️ Cancellation Ticket: %s", ticket.TargetUsername),
		Description: fmt.Sprintf("**%s** wants to cancel **%s** because %q.\n\nVotes: **%d of %d**. A successful cancellation zeroes a positive balance and doubles a negative one.",
			ticket.InitiatorUsername, ticket.TargetUsername, ticket.Description, ticket.VoteCount(), threshold),
		Color: common.ColorWarning,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "The accused cannot vote.",
		},
	}
}
