package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"wokebucks/bot/common"
	"wokebucks/bot/features/balance"
	"wokebucks/bot/features/betting"
	"wokebucks/bot/features/cancel"
	"wokebucks/bot/features/leaderboard"
	"wokebucks/bot/features/levels"
	"wokebucks/bot/features/lottery"
	"wokebucks/bot/features/transfer"
	"wokebucks/events"
	"wokebucks/models"
	"wokebucks/service"
)

// Config holds bot configuration
type Config struct {
	Token   string
	GuildID string
}

// commandHandler is the common entry point every feature exposes.
type commandHandler interface {
	HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate)
}

type Bot struct {
	config         Config
	session        *discordgo.Session
	lotteryService service.LotteryService
	eventBus       *events.Bus

	bettingFeature *betting.Feature
	cancelFeature  *cancel.Feature
	commands       map[string]commandHandler
}

func New(config Config, ledgerService service.LedgerService, lotteryService service.LotteryService, betService service.BetService, cancelService service.CancelService, levelService service.LevelService, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsAllWithoutPrivileged | discordgo.IntentsGuildMembers

	balanceFeature := balance.New(ledgerService)
	transferFeature := transfer.New(ledgerService)
	leaderboardFeature := leaderboard.New(ledgerService)
	lotteryFeature := lottery.New(lotteryService)
	levelsFeature := levels.New(levelService)
	bettingFeature := betting.New(betService)
	cancelFeature := cancel.New(cancelService, ledgerService)

	bot := &Bot{
		config:         config,
		session:        dg,
		lotteryService: lotteryService,
		eventBus:       eventBus,
		bettingFeature: bettingFeature,
		cancelFeature:  cancelFeature,
		commands: map[string]commandHandler{
			"balance":      balanceFeature,
			"transactions": balanceFeature,
			"givebucks":    transferFeature,
			"takebucks":    transferFeature,
			"leaderboard":  leaderboardFeature,
			"lottery":      lotteryFeature,
			"level":        levelsFeature,
			"startbet":     bettingFeature,
			"endbet":       bettingFeature,
			"cancel":       cancelFeature,
			"tickets":      cancelFeature,
		},
	}

	dg.AddHandler(bot.handleInteraction)
	dg.AddHandler(bot.handleGuildCreate)

	// Level purchases map onto guild roles named after the tier
	eventBus.Subscribe(events.EventTypeLevelPurchased, func(ctx context.Context, event events.Event) {
		purchase, ok := event.(events.LevelPurchasedEvent)
		if !ok {
			return
		}
		if err := bot.syncLevelRole(purchase.GuildID, purchase.UserID, purchase.Level); err != nil {
			log.Errorf("Failed to sync level role: %v", err)
		}
	})

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	// Any interaction in a guild is a chance to settle an overdue lottery.
	if i.GuildID != "" {
		go b.maybeResolveLottery(i.GuildID, i.ChannelID)
	}

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		feature, ok := b.commands[name]
		if !ok {
			log.Warnf("No handler registered for command %q", name)
			return
		}
		feature.HandleCommand(s, i)

	case discordgo.InteractionMessageComponent, discordgo.InteractionModalSubmit:
		if b.bettingFeature.HandleInteraction(s, i) {
			return
		}
		if b.cancelFeature.HandleInteraction(s, i) {
			return
		}
	}
}

// handleGuildCreate provisions the guild's lottery as soon as the bot sees
// the guild, so transfers can contribute to the jackpot before anyone has
// run a lottery command.
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	if _, err := b.lotteryService.EnsureExists(context.Background(), g.ID); err != nil {
		log.Errorf("Failed to provision lottery for guild %s: %v", g.ID, err)
	}
}

// maybeResolveLottery settles the guild lottery if its period has elapsed
// and announces the winner in the channel that triggered the check.
func (b *Bot) maybeResolveLottery(guildID, channelID string) {
	ctx := context.Background()

	settlement, err := b.lotteryService.ResolveIfDue(ctx, guildID)
	if err != nil {
		log.Errorf("Failed to resolve lottery for guild %s: %v", guildID, err)
		return
	}
	if settlement == nil {
		return
	}

	log.WithFields(log.Fields{
		"guild":   guildID,
		"winner":  settlement.WinnerID,
		"jackpot": settlement.Jackpot,
	}).Info("Lottery settled")

	embed := &discordgo.MessageEmbed{
		Title: "🎉 Lottery Drawing!",
		Description: fmt.Sprintf("**%s** won the lottery and takes home **%s**! A fresh jackpot is already growing.",
			settlement.WinnerUsername, common.FormatAmount(settlement.Jackpot)),
		Color: common.ColorWarning,
	}
	if _, err := b.session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		log.Errorf("Failed to announce lottery winner: %v", err)
	}
}

// syncLevelRole gives the member the role named after their new tier,
// creating it with the tier color if the guild doesn't have one, and
// strips any other tier roles they still carry.
func (b *Bot) syncLevelRole(guildID, userID string, levelID int) error {
	level, ok := models.Levels[levelID]
	if !ok {
		return fmt.Errorf("unknown level %d", levelID)
	}

	roles, err := b.session.GuildRoles(guildID)
	if err != nil {
		return fmt.Errorf("failed to list guild roles: %w", err)
	}

	tierNames := make(map[string]bool, len(models.Levels))
	for _, l := range models.Levels {
		tierNames[l.Name] = true
	}

	var roleID string
	for _, role := range roles {
		if role.Name == level.Name {
			roleID = role.ID
			break
		}
	}
	if roleID == "" {
		created, err := b.session.GuildRoleCreate(guildID, &discordgo.RoleParams{
			Name:  level.Name,
			Color: &level.Color,
		})
		if err != nil {
			return fmt.Errorf("failed to create level role: %w", err)
		}
		roleID = created.ID
	}

	member, err := b.session.GuildMember(guildID, userID)
	if err != nil {
		return fmt.Errorf("failed to get guild member: %w", err)
	}
	for _, held := range member.Roles {
		for _, role := range roles {
			if role.ID == held && tierNames[role.Name] && role.Name != level.Name {
				if err := b.session.GuildMemberRoleRemove(guildID, userID, held); err != nil {
					log.Errorf("Failed to remove old level role %s: %v", role.Name, err)
				}
			}
		}
	}

	if err := b.session.GuildMemberRoleAdd(guildID, userID, roleID); err != nil {
		return fmt.Errorf("failed to add level role: %w", err)
	}

	log.WithFields(log.Fields{
		"guild": guildID,
		"user":  userID,
		"role":  level.Name,
	}).Info("Level role assigned")
	return nil
}
