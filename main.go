package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mitchellh/go-homedir"
	"github.com/saravenpi/chorus/internal/auth"
	"github.com/saravenpi/chorus/internal/client"
	"github.com/saravenpi/chorus/internal/config"
	"github.com/saravenpi/chorus/internal/logging"
	"github.com/saravenpi/chorus/internal/session"
	"github.com/saravenpi/chorus/internal/ui"
)

const version = "1.0.0"

func main() {
	configPath := config.DefaultPath
	if p := os.Getenv("CHORUS_CONFIG"); p != "" {
		configPath = p
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version", "-v", "--version":
			fmt.Printf("Chorus v%s\n", version)
			return
		case "help", "-h", "--help":
			printHelp()
			return
		case "init":
			if err := writeDefaultConfig(configPath); err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			return
		default:
			fmt.Printf("Unknown command: %s\n", os.Args[1])
			printHelp()
			os.Exit(1)
		}
	}

	if err := run(configPath); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := logging.Init(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer closer.Close()
	logger.Info().Str("version", version).Str("config", configPath).Msg("starting chorus")

	sim := cfg.Simulation
	opts := []client.Option{
		client.WithLogger(logger),
		client.WithTimings(client.Timings{
			ReplyDelay:         sim.ReplyDelay,
			TypingIdle:         sim.TypingIdle,
			PeerTypingDelay:    sim.PeerTypingDelay,
			PeerTypingDuration: sim.PeerTypingDuration,
		}),
	}
	if sim.Seed != 0 {
		opts = append(opts, client.WithSeed(sim.Seed))
	}
	state := client.New(client.Profile{
		Username:      cfg.Profile.Username,
		Discriminator: cfg.Profile.Discriminator,
		Avatar:        cfg.Profile.Avatar,
		Status:        cfg.Profile.Status,
	}, opts...)
	defer state.Shutdown()

	appOpts := []ui.AppOption{
		ui.WithLogger(logger),
		ui.WithAuthPrompt(cfg.Auth.PromptOnStart),
	}
	if cfg.Auth.Remember {
		store := session.Open(cfg.Auth.SessionFile)
		appOpts = append(appOpts, ui.WithSessions(store))

		saved, err := store.Load()
		switch {
		case err == nil:
			state.SignIn(saved.User, saved.Token)
		case !errors.Is(err, session.ErrNoSession):
			logger.Warn().Err(err).Msg("failed to restore session")
		}
	}

	authClient := auth.NewClient(cfg.Auth.Endpoint, cfg.Auth.Timeout, auth.WithLogger(logger))
	p := tea.NewProgram(ui.NewApp(state, authClient, appOpts...), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run client: %w", err)
	}

	logger.Info().Msg("chorus stopped")
	return nil
}

// writeDefaultConfig creates a config file with the defaults unless one exists.
func writeDefaultConfig(path string) error {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config path: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		fmt.Printf("Config already exists at %s\n", expanded)
		return nil
	}

	if err := config.Save(expanded, config.Default()); err != nil {
		return err
	}
	fmt.Printf("Wrote default config to %s\n", expanded)
	return nil
}

func printHelp() {
	help := `Chorus - Terminal Chat Client

Usage:
  chorus             Start the client
  chorus init        Write a default config to ~/.chorus/config.yml
  chorus version     Show version information
  chorus help        Show this help message

Navigation:
  h                  Direct messages
  s                  Servers (press again for the next server)
  f                  Friends
  +                  Add a friend
  p                  Profile and settings
  ↑/↓ or j/k         Navigate lists and messages
  Enter              Select / start writing
  ESC                Go back
  q                  Quit
  ctrl+c             Force quit

Chat:
  enter or i         Write a message (enter sends, esc stops writing)
  1-6                React to the selected message (👍 ❤️ 😂 🔥 😮 🎉)
  [ and ]            Previous / next text channel
  v                  Join a voice channel
  c                  Call the friend (direct messages)

Calls:
  ctrl+o             Toggle microphone
  ctrl+d             Toggle sound
  ctrl+e             Hang up

Friends:
  /                  Search friends
  tab                All / online
  c                  Call
  x                  Remove
  y                  Copy friend code

Configuration:
  Settings live in ~/.chorus/config.yml (override with CHORUS_CONFIG).
  Environment: CHORUS_AUTH_ENDPOINT, CHORUS_LOG_LEVEL, CHORUS_LOG_FILE, CHORUS_SEED

Notes:
  - Conversations are simulated and kept in memory only
  - Signing in remembers the session in the system keyring when available
`
	fmt.Print(help)
}
