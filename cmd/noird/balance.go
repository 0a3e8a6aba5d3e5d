package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/noirclub/noird/internal/client"
	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/ui"
	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:     "balance <subject> [subcommand]",
	Short:   "Show or change a subject's pocket balance",
	GroupID: "money",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		entry, err := noirClient.GetBalance(context.Background(), subject)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(entry)
		} else {
			fmt.Printf("Subject %d: %s\n", entry.Subject, ui.RenderAmount(strconv.FormatInt(entry.Balance, 10)))
		}
		return nil
	},
}

var balanceChangeCmd = &cobra.Command{
	Use:   "change <subject> <delta>",
	Short: "Apply a balance delta",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		delta, err := parseAmountArg(args[1])
		if err != nil {
			return err
		}
		reason, _ := cmd.Flags().GetString("reason")

		entry, err := noirClient.ChangeBalance(context.Background(), subject, delta, reason)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(entry)
		} else {
			fmt.Printf("Subject %d: %s\n", entry.Subject, ui.RenderAmount(strconv.FormatInt(entry.Balance, 10)))
		}
		return nil
	},
}

var balanceResetCmd = &cobra.Command{
	Use:   "reset [subject]",
	Short: "Reset one balance, or every balance with --all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		ctx := context.Background()

		if all {
			if err := noirClient.ResetAllBalances(ctx, actor); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println("All balances reset")
			return nil
		}
		if len(args) != 1 {
			return fmt.Errorf("subject required unless --all is set")
		}
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		if err := noirClient.ResetBalance(ctx, subject, actor); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Balance of %d reset\n", subject)
		return nil
	},
}

var topCmd = &cobra.Command{
	Use:     "top",
	Short:   "Show the balance leaderboard",
	GroupID: "money",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		top, err := noirClient.TopBalances(context.Background(), limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(top)
		} else {
			printBalanceTable(top)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:     "history",
	Short:   "Show recent events from the log",
	GroupID: "money",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		kind, _ := cmd.Flags().GetString("kind")
		subjectFlag, _ := cmd.Flags().GetInt64("subject")

		req := &client.ListEventsRequest{Kind: kind, Limit: limit}
		if cmd.Flags().Changed("subject") {
			req.Subject = model.Int64(subjectFlag)
		}

		list, err := noirClient.ListEvents(context.Background(), req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(list)
		} else {
			printEventTable(list)
		}
		return nil
	},
}

func init() {
	balanceCmd.AddCommand(balanceChangeCmd)
	balanceCmd.AddCommand(balanceResetCmd)

	balanceChangeCmd.Flags().String("reason", "", "reason recorded with the delta")
	balanceResetCmd.Flags().Bool("all", false, "reset every balance")
	topCmd.Flags().Int("limit", 10, "number of entries to show")
	historyCmd.Flags().Int("limit", 50, "number of events to show")
	historyCmd.Flags().String("kind", "", "filter by event kind")
	historyCmd.Flags().Int64("subject", 0, "filter by subject")
}
