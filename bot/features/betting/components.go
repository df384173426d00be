package betting

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"wokebucks/bot/common"
	"wokebucks/models"
	"wokebucks/service"
)

// buildOptionSelect renders the wager select menu. Each menu value packs
// the bet id, the option, and the guild so the modal submit can resume.
func buildOptionSelect(bet *models.Bet, guildID string) []discordgo.MessageComponent {
	options := make([]discordgo.SelectMenuOption, 0, len(bet.OptionOrder))
	for _, name := range bet.OptionOrder {
		key := models.BetOptionKey{BetID: bet.ID, Option: name, GuildID: guildID}
		options = append(options, discordgo.SelectMenuOption{
			Label: name,
			Value: key.String(),
		})
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    optionSelectID,
					Placeholder: "Place your wager",
					Options:     options,
				},
			},
		},
	}
}

// handleOptionSelect opens the amount modal for the chosen option.
func (f *Feature) handleOptionSelect(s *discordgo.Session, i *discordgo.InteractionCreate) {
	values := i.MessageComponentData().Values
	if len(values) != 1 {
		common.RespondWithError(s, i, "Pick exactly one option.")
		return
	}

	key, err := models.ParseBetOptionKey(values[0])
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "malformed bet option key in select menu"), false)
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: amountModalPrefix + key.String(),
			Title:    fmt.Sprintf("Wager on %q", key.Option),
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "amount",
							Label:       "Amount (0.01 to 20.00)",
							Style:       discordgo.TextInputShort,
							Placeholder: "1.00",
							Required:    true,
							MaxLength:   10,
						},
					},
				},
			},
		},
	})
	if err != nil {
		log.Errorf("Error opening wager amount modal: %v", err)
	}
}

// handleAmountModal places the wager once the amount is submitted.
func (f *Feature) handleAmountModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := common.InteractionUser(i)
	data := i.ModalSubmitData()

	key, err := models.ParseBetOptionKey(strings.TrimPrefix(data.CustomID, amountModalPrefix))
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "malformed bet option key in modal"), false)
		return
	}

	amountText := extractModalInput(data, "amount")
	amount, err := decimal.NewFromString(strings.TrimSpace(strings.TrimPrefix(amountText, "$")))
	if err != nil {
		common.RespondWithError(s, i, fmt.Sprintf("%q is not an amount.", amountText))
		return
	}

	result, err := f.betService.PlaceWager(ctx, key, service.UserRef{ID: user.ID, Username: user.Username}, amount)
	if err != nil {
		common.HandleError(s, i, common.WrapServiceError(err, "wager rejected"), false)
		return
	}

	log.WithFields(log.Fields{
		"bet":    key.BetID,
		"user":   user.ID,
		"option": key.Option,
		"amount": result.Amount,
	}).Info("Wager placed")

	message := fmt.Sprintf("**%s** wagered **%s** on **%s**. The pot is now **%s**.",
		user.Username, common.FormatAmount(result.Amount), result.Option, common.FormatAmount(result.Bet.Pot()))
	if err := common.RespondWithContent(s, i, message, false); err != nil {
		log.Errorf("Error responding to wager modal: %v", err)
	}
}

func extractModalInput(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		actionRow, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, comp := range actionRow.Components {
			if input, ok := comp.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}
