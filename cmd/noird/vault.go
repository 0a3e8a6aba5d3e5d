package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/noirclub/noird/internal/ui"
	"github.com/spf13/cobra"
)

var vaultCmd = &cobra.Command{
	Use:     "vault",
	Short:   "Inspect and manage the money supply",
	GroupID: "money",
}

var vaultStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the supply snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := noirClient.VaultStats(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(stats)
			return nil
		}
		if !stats.Initialized {
			fmt.Println("Vault not initialized")
			return nil
		}
		fmt.Printf("Cap:         %s\n", ui.RenderAmount(strconv.FormatInt(stats.Cap, 10)))
		fmt.Printf("Supply:      %s\n", ui.RenderAmount(strconv.FormatInt(stats.Supply, 10)))
		fmt.Printf("Vault:       %s\n", ui.RenderAmount(strconv.FormatInt(stats.Vault, 10)))
		fmt.Printf("Circulating: %d\n", stats.Circulating)
		fmt.Printf("Burned:      %d\n", stats.Burned)
		fmt.Printf("Bank total:  %d\n", stats.BankTotal)
		fmt.Printf("Income:      %d\n", stats.Income)
		fmt.Printf("Burn bps:    %d\n", stats.BurnBps)
		return nil
	},
}

var vaultInitCmd = &cobra.Command{
	Use:   "init <cap>",
	Short: "Start a new supply epoch with the given cap",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cap, err := parseAmountArg(args[0])
		if err != nil {
			return err
		}
		free, err := noirClient.InitVault(context.Background(), cap, actor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Vault initialized: cap %d, free %s\n", cap, ui.RenderAmount(strconv.FormatInt(free, 10)))
		return nil
	},
}

var vaultBurnCmd = &cobra.Command{
	Use:   "burn <amount>",
	Short: "Record a manual burn",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := parseAmountArg(args[0])
		if err != nil {
			return err
		}
		reason, _ := cmd.Flags().GetString("reason")
		if err := noirClient.RecordBurn(context.Background(), amount, reason); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Burned %d\n", amount)
		return nil
	},
}

func init() {
	vaultCmd.AddCommand(vaultStatsCmd)
	vaultCmd.AddCommand(vaultInitCmd)
	vaultCmd.AddCommand(vaultBurnCmd)

	vaultBurnCmd.Flags().String("reason", "", "reason recorded with the burn")
}
