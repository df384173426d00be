package levels

import (
	"github.com/bwmarrin/discordgo"

	"wokebucks/service"
)

type Feature struct {
	levelService service.LevelService
}

func New(levelService service.LevelService) *Feature {
	return &Feature{
		levelService: levelService,
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
