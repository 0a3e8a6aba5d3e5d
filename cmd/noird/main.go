package main

import (
	"os"

	"github.com/noirclub/noird/internal/client"
	"github.com/noirclub/noird/internal/ui"
	"github.com/spf13/cobra"
)

var (
	httpURL    string
	authToken  string
	jsonOutput bool
	actor      int64

	noirClient client.NoirClient
)

func defaultHTTPURL() string {
	if s := os.Getenv("NOIRD_HTTP_URL"); s != "" {
		return s
	}
	if u := activeRemoteURL(); u != "" {
		return u
	}
	return "http://localhost:8080"
}

func defaultToken() string {
	if s := os.Getenv("NOIRD_AUTH_TOKEN"); s != "" {
		return s
	}
	return activeRemoteToken()
}

var rootCmd = &cobra.Command{
	Use:   "noird <command>",
	Short: "CLI client for the noir club currency service",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		noirClient = client.NewHTTPClient(httpURL, authToken)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if noirClient != nil {
			noirClient.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&httpURL, "http-url", defaultHTTPURL(), "HTTP server URL")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", defaultToken(), "bearer token for the server")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().Int64Var(&actor, "actor", 0, "subject ID acting on behalf of admin operations")

	rootCmd.AddGroup(
		&cobra.Group{ID: "money", Title: "Money:"},
		&cobra.Group{ID: "market", Title: "Market:"},
		&cobra.Group{ID: "club", Title: "Club:"},
		&cobra.Group{ID: "games", Title: "Games:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false

	// Money
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(topCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(vaultCmd)

	// Market
	rootCmd.AddCommand(marketCmd)
	rootCmd.AddCommand(perkCmd)

	// Club
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(keysCmd)

	// Games
	rootCmd.AddCommand(gamesCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(remoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
