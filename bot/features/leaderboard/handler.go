package leaderboard

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"wokebucks/bot/common"
	"wokebucks/models"
)

var rankMedals = []string{"🥇", "🥈", "🥉"}

func (f *Feature) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	board, err := f.ledgerService.Leaderboard(ctx)
	if err != nil {
		common.HandleError(s, i, common.NewSystemError(err, "failed to load leaderboard"), false)
		return
	}

	top := board.TopForGuild(i.GuildID)
	bottom := board.BottomForGuild(i.GuildID)

	if len(top) == 0 {
		common.RespondWithContent(s, i, "Nobody here has touched their Wokebucks yet.", true)
		return
	}

	embed := &discordgo.MessageEmbed{
		Title: "Wokebucks Leaderboard",
		Color: common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:   "Most Woke",
				Value:  formatRanked(top),
				Inline: true,
			},
			{
				Name:   "Least Woke",
				Value:  formatRanked(bottom),
				Inline: true,
			},
		},
	}

	if err := common.RespondWithEmbed(s, i, embed, nil, false); err != nil {
		log.Errorf("Error responding to leaderboard command: %v", err)
	}
}

func formatRanked(entries []models.RankedEntry) string {
	var sb strings.Builder
	for idx, entry := range entries {
		medal := fmt.Sprintf("%d.", idx+1)
		if idx < len(rankMedals) {
			medal = rankMedals[idx]
		}
		fmt.Fprintf(&sb, "%s **%s**: %s\n", medal, entry.Username, common.FormatAmount(entry.Balance))
	}
	return sb.String()
}
