package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/ui"
	"github.com/spf13/cobra"
)

var bankCmd = &cobra.Command{
	Use:     "bank",
	Short:   "Operate bank cells",
	GroupID: "money",
}

func printReceipt(receipt *model.CellReceipt) {
	if jsonOutput {
		printJSON(receipt)
		return
	}
	fmt.Printf("Cell of %d: %s", receipt.Subject, ui.RenderAmount(strconv.FormatInt(receipt.Balance, 10)))
	if receipt.Fee > 0 {
		fmt.Printf(" (fee %d)", receipt.Fee)
	}
	if receipt.Taken > 0 {
		fmt.Printf(" (taken %d)", receipt.Taken)
	}
	fmt.Println()
}

var bankBalanceCmd = &cobra.Command{
	Use:   "balance <subject>",
	Short: "Show a cell balance, settling accrued fees",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		receipt, err := noirClient.CellBalance(context.Background(), subject)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printReceipt(receipt)
		return nil
	},
}

var bankDepositCmd = &cobra.Command{
	Use:   "deposit <subject> <amount>",
	Short: "Move money from pocket to cell",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		amount, err := parseAmountArg(args[1])
		if err != nil {
			return err
		}
		receipt, err := noirClient.Deposit(context.Background(), subject, amount)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printReceipt(receipt)
		return nil
	},
}

var bankWithdrawCmd = &cobra.Command{
	Use:   "withdraw <subject> <amount>",
	Short: "Move money from cell back to pocket",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		amount, err := parseAmountArg(args[1])
		if err != nil {
			return err
		}
		receipt, err := noirClient.Withdraw(context.Background(), subject, amount)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		printReceipt(receipt)
		return nil
	},
}

var bankTotalCmd = &cobra.Command{
	Use:   "total",
	Short: "Show the sum of every cell",
	RunE: func(cmd *cobra.Command, args []string) error {
		total, err := noirClient.BankTotal(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(map[string]int64{"total": total})
		} else {
			fmt.Printf("Bank total: %s\n", ui.RenderAmount(strconv.FormatInt(total, 10)))
		}
		return nil
	},
}

func init() {
	bankCmd.AddCommand(bankBalanceCmd)
	bankCmd.AddCommand(bankDepositCmd)
	bankCmd.AddCommand(bankWithdrawCmd)
	bankCmd.AddCommand(bankTotalCmd)
}
