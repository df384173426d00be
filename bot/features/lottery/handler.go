package lottery

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"wokebucks/bot/common"
	"wokebucks/config"
	"wokebucks/service"
)

func (f *Feature) handleInfo(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := common.InteractionUser(i)
	cfg := config.Get()

	lot, err := f.lotteryService.EnsureExists(ctx, i.GuildID)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to load lottery"), false)
		return
	}

	drawTime := lot.Start.Add(cfg.LotteryPeriod)
	embed := &discordgo.MessageEmbed{
		Title: "🎰 Wokebucks Lottery",
		Description: fmt.Sprintf("Current jackpot: **%s**\nTickets sold: **%d**\nNext drawing: %s",
			common.FormatAmount(lot.Jackpot),
			lot.TotalTickets,
			common.FormatDiscordTimestamp(drawTime, "R")),
		Color: common.ColorWarning,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Tickets cost %s each. You hold %d.",
				common.FormatAmount(cfg.LotteryTicketPrice), lot.TicketCount(user.ID)),
		},
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Error responding to lottery command: %v", err)
	}
}

func (f *Feature) handleBuy(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()
	user := common.InteractionUser(i)

	result, err := f.lotteryService.BuyTicket(ctx, i.GuildID, service.UserRef{ID: user.ID, Username: user.Username})
	if err != nil {
		common.HandleError(s, i, common.WrapServiceError(err, "lottery ticket purchase rejected"), false)
		return
	}

	log.WithFields(log.Fields{
		"user":    user.ID,
		"guild":   i.GuildID,
		"tickets": result.TicketCount,
	}).Info("Lottery ticket sold")

	message := fmt.Sprintf("**%s** bought a lottery ticket! They now hold **%d**. The jackpot is up to **%s**.",
		user.Username, result.TicketCount, common.FormatAmount(result.Jackpot))
	if err := common.RespondWithSuccess(s, i, message, false); err != nil {
		log.Errorf("Error responding to lottery buy command: %v", err)
	}
}
