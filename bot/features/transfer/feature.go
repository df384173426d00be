package transfer

import (
	"github.com/bwmarrin/discordgo"

	"wokebucks/service"
)

type Feature struct {
	ledgerService service.LedgerService
}

func New(ledgerService service.LedgerService) *Feature {
	return &Feature{
		ledgerService: ledgerService,
	}
}

func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "givebucks":
		f.handleTransfer(s, i, service.TransferGive)
	case "takebucks":
		f.handleTransfer(s, i, service.TransferTake)
	}
}
