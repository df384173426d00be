package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// OwnerID is the privileged bot-owner identity: bypasses the transfer
	// cooldown, the transfer caps, and the self-target rule.
	OwnerID string

	// Database configuration
	DatabaseURL string

	// Transfer engine configuration
	CooldownMinutes          int             // per-pair transfer cooldown window
	TransferJackpotIncrement decimal.Decimal // added to the guild jackpot per gift

	// Lottery configuration
	LotterySeed            decimal.Decimal // jackpot value a fresh lottery starts with
	LotteryTicketPrice     decimal.Decimal
	TicketJackpotIncrement decimal.Decimal // jackpot growth per ticket sold
	LevelJackpotIncrement  decimal.Decimal // jackpot growth per level purchase
	LotteryMinBalance      decimal.Decimal // minimum balance required to buy tickets
	LotteryPeriod          time.Duration

	// Bet configuration
	BetMinAmount decimal.Decimal
	BetMaxAmount decimal.Decimal

	// Cancellation configuration
	TicketCooldown      time.Duration
	TicketVoteThreshold int

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),
		OwnerID:        os.Getenv("BOT_OWNER_ID"),

		// Database
		DatabaseURL: os.Getenv("DATABASE_URL"),

		// Defaults
		CooldownMinutes:          5,
		TransferJackpotIncrement: decimal.NewFromInt(1),
		LotterySeed:              decimal.NewFromInt(5),
		LotteryTicketPrice:       decimal.NewFromInt(2),
		TicketJackpotIncrement:   decimal.NewFromInt(2),
		LevelJackpotIncrement:    decimal.NewFromInt(20),
		LotteryMinBalance:        decimal.NewFromInt(-100),
		LotteryPeriod:            24 * time.Hour,
		BetMinAmount:             decimal.RequireFromString("0.01"),
		BetMaxAmount:             decimal.NewFromInt(20),
		TicketCooldown:           48 * time.Hour,
		TicketVoteThreshold:      6,

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if v := os.Getenv("COOLDOWN_MINUTES"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			config.CooldownMinutes = parsed
		}
	}
	if v := os.Getenv("TICKET_VOTE_THRESHOLD"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			config.TicketVoteThreshold = parsed
		}
	}
	if v := os.Getenv("TICKET_COOLDOWN_HOURS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			config.TicketCooldown = time.Duration(parsed) * time.Hour
		}
	}
	if v := os.Getenv("LOTTERY_PERIOD_HOURS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			config.LotteryPeriod = time.Duration(parsed) * time.Hour
		}
	}
	overrideDecimal(&config.TransferJackpotIncrement, "TRANSFER_JACKPOT_INCREMENT")
	overrideDecimal(&config.LotterySeed, "LOTTERY_SEED")
	overrideDecimal(&config.LotteryTicketPrice, "LOTTERY_TICKET_PRICE")
	overrideDecimal(&config.TicketJackpotIncrement, "TICKET_JACKPOT_INCREMENT")
	overrideDecimal(&config.LevelJackpotIncrement, "LEVEL_JACKPOT_INCREMENT")
	overrideDecimal(&config.LotteryMinBalance, "LOTTERY_MIN_BALANCE")
	overrideDecimal(&config.BetMinAmount, "BET_MIN_AMOUNT")
	overrideDecimal(&config.BetMaxAmount, "BET_MAX_AMOUNT")

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

func overrideDecimal(target *decimal.Decimal, envVar string) {
	if v := os.Getenv(envVar); v != "" {
		if parsed, err := decimal.NewFromString(v); err == nil {
			*target = parsed
		}
	}
}
