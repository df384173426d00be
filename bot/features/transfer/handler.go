package transfer

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"wokebucks/bot/common"
	"wokebucks/service"
)

func (f *Feature) handleTransfer(s *discordgo.Session, i *discordgo.InteractionCreate, kind service.TransferKind) {
	ctx := context.Background()
	actor := common.InteractionUser(i)

	var (
		target *discordgo.User
		amount decimal.Decimal
		reason string
	)
	for _, opt := range i.ApplicationCommandData().Options {
		switch opt.Name {
		case "user":
			target = opt.UserValue(s)
		case "amount":
			amount = decimal.NewFromFloat(opt.FloatValue())
		case "reason":
			reason = opt.StringValue()
		}
	}

	if target == nil {
		common.RespondWithError(s, i, "You have to pick a target.")
		return
	}
	if target.Bot {
		common.RespondWithError(s, i, "Bots don't carry Wokebucks.")
		return
	}

	// Takes are entered as a positive magnitude and applied negative.
	if kind == service.TransferTake {
		amount = amount.Abs().Neg()
	}

	result, err := f.ledgerService.Transfer(ctx,
		service.UserRef{ID: actor.ID, Username: actor.Username},
		service.UserRef{ID: target.ID, Username: target.Username},
		i.GuildID, amount, reason, kind)
	if err != nil {
		common.HandleError(s, i, common.WrapServiceError(err, "transfer rejected"), false)
		return
	}

	log.WithFields(log.Fields{
		"actor":  actor.ID,
		"target": target.ID,
		"amount": result.Amount,
		"kind":   kind,
	}).Info("Transfer applied")

	verb := "gave"
	color := common.ColorSuccess
	if kind == service.TransferTake {
		verb = "took"
		color = common.ColorDanger
	}

	description := fmt.Sprintf("**%s** %s **%s**", actor.Username, verb, common.FormatAmount(result.Amount.Abs()))
	if kind == service.TransferTake {
		description += fmt.Sprintf(" from **%s**", result.TargetUsername)
	} else {
		description += fmt.Sprintf(" to **%s**", result.TargetUsername)
	}
	if result.Reason != "" {
		description += fmt.Sprintf(" for %q", result.Reason)
	}
	description += fmt.Sprintf("\n\n%s's new balance: **%s**", result.TargetUsername, common.FormatAmount(result.NewBalance))

	embed := &discordgo.MessageEmbed{
		Title:       "Wokebucks Transfer",
		Description: description,
		Color:       color,
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Error responding to %s command: %v", kind, err)
	}
}
