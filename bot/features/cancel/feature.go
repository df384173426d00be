package cancel

import (
	"strings"

	"github.com/bwmarrin/discordgo"

	"wokebucks/service"
)

const voteButtonPrefix = "cancel_vote|"

type Feature struct {
	cancelService service.CancelService
	ledgerService service.LedgerService
}

func New(cancelService service.CancelService, ledgerService service.LedgerService) *Feature {
	return &Feature{
		cancelService: cancelService,
		ledgerService: ledgerService,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "cancel":
		f.handleCancel(s, i)
	case "tickets":
		f.handleTickets(s, i)
	}
}

// HandleInteraction routes the cancel vote button. It returns false when
// the interaction belongs to another feature.
func (f *Feature) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) bool {
	if i.Type != discordgo.InteractionMessageComponent {
		return false
	}
	customID := i.MessageComponentData().CustomID
	if !strings.HasPrefix(customID, voteButtonPrefix) {
		return false
	}
	f.handleVote(s, i, strings.TrimPrefix(customID, voteButtonPrefix))
	return true
}
