package balance

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"wokebucks/bot/common"
	"wokebucks/service"
)

func (f *Feature) handleBalance(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := common.InteractionUser(i)

	// Checking someone else's balance is allowed.
	target := user
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "user" {
			target = opt.UserValue(s)
		}
	}

	account, err := f.ledgerService.GetOrCreateAccount(ctx, service.UserRef{ID: target.ID, Username: target.Username})
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to load account for balance"), false)
		return
	}

	color := common.ColorSuccess
	if account.Overdrawn() {
		color = common.ColorDanger
	}

	displayName := common.GetDisplayName(s, i.GuildID, target.ID)
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s's Wokebucks", displayName),
		Description: fmt.Sprintf("Current balance: **%s**", common.FormatAmount(account.Balance)),
		Color:       color,
	}
	if account.Overdrawn() {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: "Yikes. Deeply in debt."}
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Error responding to balance command: %v", err)
	}
}

func (f *Feature) handleTransactions(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := common.InteractionUser(i)

	account, err := f.ledgerService.GetOrCreateAccount(ctx, service.UserRef{ID: user.ID, Username: user.Username})
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to load account for transactions"), false)
		return
	}

	if len(account.TransactionLog) == 0 {
		common.RespondWithContent(s, i, "No transactions yet. Go bother someone.", true)
		return
	}

	var sb strings.Builder
	for _, tx := range account.TransactionLog {
		fmt.Fprintf(&sb, "%s **%s** from **%s**",
			common.FormatDiscordTimestamp(tx.Timestamp, "R"),
			common.FormatSignedAmount(tx.Amount),
			tx.Initiator)
		if tx.Comment != "" {
			fmt.Fprintf(&sb, " for %q", tx.Comment)
		}
		sb.WriteString("\n")
	}

	embed := &discordgo.MessageEmbed{
		Title:       "Recent Transactions",
		Description: sb.String(),
		Color:       common.ColorPrimary,
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Only the ten most recent transactions are kept.",
		},
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, true); err != nil {
		log.Errorf("Error responding to transactions command: %v", err)
	}
}
