package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nishadm/agrosage/config"
	"github.com/nishadm/agrosage/internal/api"
	"github.com/nishadm/agrosage/internal/session"
	"github.com/nishadm/agrosage/internal/store"
)

// Manual end-to-end check of the sign-in flow against a real backend:
//
//	AGROSAGE_API_URL=... AGROSAGE_TOKEN_KEY=... \
//	AGROSAGE_TEST_EMAIL=... AGROSAGE_TEST_PASSWORD=... go run ./cmd/test-login
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	config.LoadEnvFile()
	if missing := config.CheckRequired(); len(missing) > 0 {
		fmt.Printf("missing required config: %v\n", missing)
		os.Exit(1)
	}

	email := os.Getenv("AGROSAGE_TEST_EMAIL")
	password := os.Getenv("AGROSAGE_TEST_PASSWORD")
	if email == "" || password == "" {
		fmt.Println("AGROSAGE_TEST_EMAIL and AGROSAGE_TEST_PASSWORD are required")
		os.Exit(1)
	}

	tokenStore, err := store.NewSQLiteStore("test-login.db", store.DeriveKey(os.Getenv("AGROSAGE_TOKEN_KEY")))
	if err != nil {
		fmt.Printf("failed to open token store: %v\n", err)
		os.Exit(1)
	}
	defer tokenStore.Close()

	client := api.NewClient(api.ClientOpts{BaseURL: os.Getenv("AGROSAGE_API_URL")})
	manager := session.NewManager(session.ManagerConfig{
		Store:     tokenStore,
		Passwords: client,
		Refresher: session.NewRefresher(tokenStore, client),
		Exchanger: session.NewExchanger(tokenStore, client),
	})
	client.SetAuthSource(manager)

	ctx := context.Background()

	fmt.Println("=== Testing agrosage session ===")

	fmt.Println("\n--- Hydrating from store ---")
	manager.Load(ctx)
	state, sess := manager.Snapshot()
	fmt.Printf("state: %s\n", state)

	if !manager.IsAuthenticated() {
		fmt.Println("\n--- Password sign-in ---")
		if err := manager.LoginPassword(ctx, email, password); err != nil {
			fmt.Printf("login failed: %v\n", err)
			os.Exit(1)
		}
		state, sess = manager.Snapshot()
		fmt.Printf("state: %s\n", state)
	}
	fmt.Printf("user: %s <%s>\n", sess.UserID, sess.Email)

	fmt.Println("\n--- GET /api/me/ ---")
	profile, err := client.GetProfile(ctx)
	if err != nil {
		fmt.Printf("profile fetch failed: %v\n", err)
	} else {
		fmt.Printf("profile: %s %s <%s>\n", profile.FirstName, profile.LastName, profile.Email)
	}

	fmt.Println("\n--- POST /predict/ ---")
	pred, err := client.Predict(ctx, api.DefaultSoilSample())
	if err != nil {
		fmt.Printf("predict failed: %v\n", err)
	} else {
		fmt.Printf("recommended crop: %s\n", pred.RecommendedCrop)
	}

	fmt.Println("\n--- Forced refresh ---")
	if _, err := manager.RefreshAccess(ctx); err != nil {
		fmt.Printf("refresh failed: %v\n", err)
	} else {
		fmt.Println("refresh ok")
	}

	fmt.Println("\ndone")
}
