package betting

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"wokebucks/bot/common"
	"wokebucks/models"
	"wokebucks/service"
)

func (f *Feature) handleStartBet(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := common.InteractionUser(i)

	var reason string
	var options []string
	for _, opt := range i.ApplicationCommandData().Options {
		switch {
		case opt.Name == "reason":
			reason = opt.StringValue()
		case strings.HasPrefix(opt.Name, "option"):
			if v := strings.TrimSpace(opt.StringValue()); v != "" {
				options = append(options, v)
			}
		}
	}

	bet, err := f.betService.StartBet(ctx, service.UserRef{ID: user.ID, Username: user.Username}, reason, options)
	if err != nil {
		common.HandleError(s, i, common.WrapServiceError(err, "start bet rejected"), false)
		return
	}

	log.WithFields(log.Fields{
		"bet":   bet.ID,
		"owner": user.ID,
	}).Info("Bet opened")

	embed := buildBetEmbed(bet, user.Username)
	components := buildOptionSelect(bet, i.GuildID)

	if err := common.RespondWithEmbed(s, i, embed, components, false); err != nil {
		log.Errorf("Error responding to startbet command: %v", err)
	}
}

func (f *Feature) handleEndBet(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := common.InteractionUser(i)

	var reason, winner string
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "reason":
			reason = opt.StringValue()
		case "winner":
			winner = opt.StringValue()
		}
	}

	// Settling touches every winner's account, so defer and follow up.
	if err := common.DeferResponse(s, i, false); err != nil {
		log.Errorf("Error deferring endbet response: %v", err)
		return
	}

	settlement, err := f.betService.EndBet(ctx, service.UserRef{ID: user.ID, Username: user.Username}, reason, winner, i.GuildID)
	if err != nil {
		common.HandleError(s, i, common.WrapServiceError(err, "end bet rejected"), true)
		return
	}

	log.WithFields(log.Fields{
		"reason":  settlement.Reason,
		"winner":  settlement.WinningOption,
		"payouts": len(settlement.Payouts),
	}).Info("Bet settled")

	if _, err := common.FollowUpWithEmbed(s, i, buildSettlementEmbed(settlement), nil, false); err != nil {
		log.Errorf("Error responding to endbet command: %v", err)
	}
}

func buildSettlementEmbed(settlement *service.BetSettlement) *discordgo.MessageEmbed {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%q** is settled: **%s** wins! The pot was **%s**.\n",
		settlement.Reason, settlement.WinningOption, common.FormatAmount(settlement.Pot))

	if len(settlement.Payouts) == 0 {
		sb.WriteString("\nNobody backed the winner, so the pot goes nowhere.")
	} else {
		sb.WriteString("\nPayouts:\n")
		for userID, payout := range settlement.Payouts {
			fmt.Fprintf(&sb, "• **%s**: %s\n", settlement.WinnerNames[userID], common.FormatAmount(payout))
		}
	}

	return &discordgo.MessageEmbed{
		Title:       "🏁 Bet Settled",
		Description: sb.String(),
		Color:       common.ColorSuccess,
	}
}

func buildBetEmbed(bet *models.Bet, ownerUsername string) *discordgo.MessageEmbed {
	var sb strings.Builder
	for _, name := range bet.OptionOrder {
		opt := bet.Options[name]
		fmt.Fprintf(&sb, "• **%s**: %s staked by %d\n", name, common.FormatAmount(opt.Total), len(opt.Voters))
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🎲 %s", bet.Reason),
		Description: sb.String(),
		Color:       common.ColorPrimary,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Started by %s. Pick an option below to place your wager. One wager per person.", ownerUsername),
		},
	}
}
