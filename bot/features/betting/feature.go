package betting

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"wokebucks/service"
)

// Component and modal custom id prefixes for wager placement.
const (
	optionSelectID    = "bet_option_select"
	amountModalPrefix = "bet_amount_modal|"
)

type Feature struct {
	betService service.BetService
}

func New(betService service.BetService) *Feature {
	return &Feature{
		betService: betService,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "startbet":
		f.handleStartBet(s, i)
	case "endbet":
		f.handleEndBet(s, i)
	}
}

// HandleInteraction routes bet component and modal interactions. It returns
// false when the interaction belongs to another feature.
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	switch i.Type {
	case discordgo.InteractionMessageComponent:
		if i.MessageComponentData().CustomID == optionSelectID {
			f.handleOptionSelect(s, i)
			return true
		}
	case discordgo.InteractionModalSubmit:
		if strings.HasPrefix(i.ModalSubmitData().CustomID, amountModalPrefix) {
			f.handleAmountModal(s, i)
			return true
		}
	}
	return false
}
