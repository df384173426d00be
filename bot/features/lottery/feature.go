package lottery

import (
	"github.com/bwmarrin/discordgo"

	"wokebucks/service"
)

type Feature struct {
	lotteryService service.LotteryService
}

func New(lotteryService service.LotteryService) *Feature {
	return &Feature{
		lotteryService: lotteryService,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	options := i.ApplicationCommandData().Options
	if len(options) == 0 {
		f.handleInfo(s, i)
		return
	}

	switch options[0].Name {
	case "buy":
		f.handleBuy(s, i)
	default:
		f.handleInfo(s, i)
	}
}
