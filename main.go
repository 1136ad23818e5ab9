package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lithammer/dedent"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/nishadm/agrosage/config"
	"github.com/nishadm/agrosage/internal/api"
	"github.com/nishadm/agrosage/internal/auth"
	"github.com/nishadm/agrosage/internal/session"
	"github.com/nishadm/agrosage/internal/store"
	"github.com/nishadm/agrosage/internal/tui"
)

const logFileName = "agrosage.log"

func formatText(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	config.LoadEnvFile()

	if missing := config.CheckRequired(); len(missing) > 0 {
		fmt.Fprintln(os.Stderr, formatText(`
			missing required config: %s

			Set them in the environment or in %s under your user config
			directory. AGROSAGE_API_URL is the backend base URL and
			AGROSAGE_TOKEN_KEY is the passphrase encrypting stored tokens.`,
			strings.Join(missing, ", "), config.EnvFileName))
		os.Exit(1)
	}

	// The TUI owns the terminal, so console logs go to the file only.
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: logFile, NoColor: true})
	log.Info().Str("logFile", logFileName).Msg("logging to file")

	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("shutdown with error")
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("shutdown complete")
}

func run() error {
	dbPath := os.Getenv("AGROSAGE_DB_PATH")
	if dbPath == "" {
		dbPath = "agrosage.db"
	}

	encryptionKey := store.DeriveKey(os.Getenv("AGROSAGE_TOKEN_KEY"))
	tokenStore, err := store.NewSQLiteStore(dbPath, encryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize token store: %w", err)
	}
	defer tokenStore.Close()
	log.Info().Str("dbPath", dbPath).Msg("token store initialized")

	client := api.NewClient(api.ClientOpts{BaseURL: os.Getenv("AGROSAGE_API_URL")})

	google := auth.NewGoogleAuthenticator(
		os.Getenv("AGROSAGE_GOOGLE_CLIENT_ID"),
		os.Getenv("AGROSAGE_GOOGLE_CLIENT_SECRET"),
	)
	phone := auth.NewPhoneAuthenticator(
		os.Getenv("AGROSAGE_PHONE_AUTH_URL"),
		os.Getenv("AGROSAGE_PHONE_AUTH_KEY"),
		auth.StaticAttestor(os.Getenv("AGROSAGE_PHONE_ATTEST_TOKEN")),
	)

	manager := session.NewManager(session.ManagerConfig{
		Store:     tokenStore,
		Passwords: client,
		Refresher: session.NewRefresher(tokenStore, client),
		Exchanger: session.NewExchanger(tokenStore, client),
		Google:    google,
		Phone:     phone,
	})
	client.SetAuthSource(manager)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := tui.NewApp(tui.Config{
		Manager: manager,
		Gate:    session.NewGate(manager),
		Backend: client,
	})
	program := tea.NewProgram(app, tea.WithAltScreen())

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		_, err := program.Run()
		cancel()
		return err
	})

	g.Go(func() error {
		err := manager.KeepAlive(ctx)
		// The keep-alive loop ends with the context; make sure the TUI
		// comes down with it.
		program.Quit()
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	return g.Wait()
}
