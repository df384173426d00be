package cmd

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"wokebucks/bot"
	"wokebucks/config"
	"wokebucks/database"
	"wokebucks/events"
	"wokebucks/models"
	"wokebucks/repository"
	"wokebucks/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting wokebucks bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize repositories
	accountRepo := repository.NewAccountRepository(db)
	leaderboardRepo := repository.NewLeaderboardRepository(db)
	lotteryRepo := repository.NewLotteryRepository(db)
	betRepo := repository.NewBetRepository(db)
	ticketRepo := repository.NewTicketRepository(db)

	// The leaderboard is a singleton document; provision it on first boot
	// so reads never have to handle a missing board.
	if err := provisionLeaderboard(ctx, leaderboardRepo); err != nil {
		return fmt.Errorf("failed to provision leaderboard: %w", err)
	}

	// Initialize services
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	ledgerService := service.NewLedgerService(accountRepo, leaderboardRepo, lotteryRepo, cfg, eventBus)
	lotteryService := service.NewLotteryService(accountRepo, leaderboardRepo, lotteryRepo, cfg, eventBus, rng)
	betService := service.NewBetService(betRepo, accountRepo, leaderboardRepo, cfg)
	cancelService := service.NewCancelService(ticketRepo, accountRepo, leaderboardRepo, cfg, eventBus)
	levelService := service.NewLevelService(accountRepo, leaderboardRepo, lotteryRepo, cfg, eventBus)

	// Initialize Discord bot
	log.Println("Initializing Discord bot...")
	botConfig := bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}
	discordBot, err := bot.New(botConfig, ledgerService, lotteryService, betService, cancelService, levelService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Println("Discord bot initialized successfully")

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")

	// Close Discord bot connection
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Close database connection
	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}

func provisionLeaderboard(ctx context.Context, repo *repository.LeaderboardRepository) error {
	board, err := repo.Get(ctx)
	if err != nil {
		return err
	}
	if board != nil {
		return nil
	}
	return repo.Upsert(ctx, models.NewLeaderboard())
}
