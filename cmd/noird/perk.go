package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var perkCmd = &cobra.Command{
	Use:     "perk",
	Short:   "Manage perks and vouchers",
	GroupID: "market",
}

var perkListCmd = &cobra.Command{
	Use:   "list <subject>",
	Short: "List a subject's active perks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		perks, err := noirClient.GetPerks(context.Background(), subject)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(perks)
		} else if len(perks) == 0 {
			fmt.Printf("Subject %d has no perks\n", subject)
		} else {
			fmt.Printf("Subject %d: %s\n", subject, strings.Join(perks, ", "))
		}
		return nil
	},
}

var perkGrantCmd = &cobra.Command{
	Use:   "grant <subject> <code>",
	Short: "Grant a perk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		if err := noirClient.GrantPerk(context.Background(), subject, args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Granted %s to %d\n", args[1], subject)
		return nil
	},
}

var perkRevokeCmd = &cobra.Command{
	Use:   "revoke <subject> <code>",
	Short: "Revoke a perk (a voucher re-grants it)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		if err := noirClient.RevokePerk(context.Background(), subject, args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Revoked %s from %d\n", args[1], subject)
		return nil
	},
}

var perkCreditsCmd = &cobra.Command{
	Use:   "credits <subject> <code>",
	Short: "Show voucher credits for a perk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		credits, err := noirClient.GetCredits(context.Background(), subject, args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(map[string]int64{"credits": credits})
		} else {
			fmt.Printf("Subject %d holds %d %s credits\n", subject, credits, args[1])
		}
		return nil
	},
}

var perkCreditAddCmd = &cobra.Command{
	Use:   "credit-add <subject> <code> <n>",
	Short: "Issue voucher credits",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		n, err := parseAmountArg(args[2])
		if err != nil {
			return err
		}
		credits, err := noirClient.AddCredits(context.Background(), subject, args[1], n)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Subject %d now holds %d %s credits\n", subject, credits, args[1])
		return nil
	},
}

var perkUseCmd = &cobra.Command{
	Use:   "use <subject> <code>",
	Short: "Consume one voucher credit to bank a perk replacement",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		if err := noirClient.UseCredit(context.Background(), subject, args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Credit used, %s voucher banked for %d\n", args[1], subject)
		return nil
	},
}

func init() {
	perkCmd.AddCommand(perkListCmd)
	perkCmd.AddCommand(perkGrantCmd)
	perkCmd.AddCommand(perkRevokeCmd)
	perkCmd.AddCommand(perkCreditsCmd)
	perkCmd.AddCommand(perkCreditAddCmd)
	perkCmd.AddCommand(perkUseCmd)
}
