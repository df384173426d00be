package levels

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"wokebucks/bot/common"
	"wokebucks/service"
)

func (f *Feature) handleInfo(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := common.InteractionUser(i)

	quote, err := f.levelService.Quote(ctx, service.UserRef{ID: user.ID, Username: user.Username})
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to load level quote"), false)
		return
	}

	currentName := "none"
	color := common.ColorPrimary
	if quote.Current != nil {
		currentName = quote.Current.Name
		color = quote.Current.Color
	}

	description := fmt.Sprintf("Current level: **%s**\nBalance: **%s**", currentName, common.FormatAmount(quote.Balance))
	if quote.Next != nil {
		description += fmt.Sprintf("\n\nNext up: **%s** for **%s**. Buying it raises how much you can give and take, and pumps **$20** into the lottery jackpot.",
			quote.Next.Name, common.FormatAmount(quote.Next.Cost))
	} else {
		description += "\n\nYou've hit **Galaxy Brain**. It's all downhill from here."
	}

	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("%s's Level", user.Username),
		Description: description,
		Color:       color,
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Error responding to level command: %v", err)
	}
}

func (f *Feature) handleBuy(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := common.InteractionUser(i)

	result, err := f.levelService.Purchase(ctx, service.UserRef{ID: user.ID, Username: user.Username}, i.GuildID)
	if err != nil {
		common.HandleError(s, i, common.WrapServiceError(err, "level purchase rejected"), false)
		return
	}

	log.WithFields(log.Fields{
		"user":  user.ID,
		"level": result.Level.ID,
	}).Info("Level purchased")

	embed := &discordgo.MessageEmbed{
		Title: "Level Up!",
		Description: fmt.Sprintf("**%s** is now **%s**! New balance: **%s**.",
			user.Username, result.Level.Name, common.FormatAmount(result.NewBalance)),
		Color: result.Level.Color,
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Error responding to level buy command: %v", err)
	}
}
