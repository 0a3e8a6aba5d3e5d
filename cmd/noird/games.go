package main

import (
	"context"
	"fmt"
	"os"

	"github.com/noirclub/noird/internal/client"
	"github.com/spf13/cobra"
)

var gamesCmd = &cobra.Command{
	Use:     "games",
	Short:   "Run the club mini-games",
	GroupID: "games",
}

var heroCmd = &cobra.Command{
	Use:   "hero",
	Short: "Show the current hero of the day",
	RunE: func(cmd *cobra.Command, args []string) error {
		hero, err := noirClient.GetHero(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(hero)
		} else if hero.Title != "" {
			fmt.Printf("Hero of the day: %d (%s)\n", hero.Subject, hero.Title)
		} else {
			fmt.Printf("Hero of the day: %d\n", hero.Subject)
		}
		return nil
	},
}

var heroSetCmd = &cobra.Command{
	Use:   "set <subject>",
	Short: "Crown a new hero of the day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		title, _ := cmd.Flags().GetString("title")
		if err := noirClient.SetHero(context.Background(), subject, title); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Subject %d crowned\n", subject)
		return nil
	},
}

var heroClaimCmd = &cobra.Command{
	Use:   "claim <subject>",
	Short: "Claim the hero reward",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		reward, err := noirClient.ClaimHero(context.Background(), subject)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Hero reward paid: %d\n", reward)
		return nil
	},
}

var codewordCmd = &cobra.Command{
	Use:   "codeword <word> <prize>",
	Short: "Arm a new codeword",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		prize, err := parseAmountArg(args[1])
		if err != nil {
			return err
		}
		if err := noirClient.SetCodeword(context.Background(), args[0], prize, actor); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Codeword armed")
		return nil
	},
}

var guessCmd = &cobra.Command{
	Use:   "guess <subject> <word>",
	Short: "Guess the armed codeword",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		result, err := noirClient.GuessCodeword(context.Background(), subject, args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if result.Won {
			fmt.Printf("Correct! Prize: %d\n", result.Prize)
		} else {
			fmt.Println("Wrong guess")
		}
		return nil
	},
}

var poolCmd = &cobra.Command{
	Use:   "pool",
	Short: "Show the generosity pool",
	RunE: func(cmd *cobra.Command, args []string) error {
		pool, err := noirClient.PoolBalance(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Pool: %d\n", pool)
		return nil
	},
}

var poolContributeCmd = &cobra.Command{
	Use:   "contribute <subject> <amount>",
	Short: "Contribute to the generosity pool",
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
		if err := noirClient.Contribute(context.Background(), subject, amount); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Contributed %d\n", amount)
		return nil
	},
}

var poolPayoutCmd = &cobra.Command{
	Use:   "payout <subject>",
	Short: "Pay the whole pool to a subject",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		amount, err := noirClient.PoolPayout(context.Background(), subject)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Paid out %d to %d\n", amount, subject)
		return nil
	},
}

var betCmd = &cobra.Command{
	Use:   "bet <subject> <stake>",
	Short: "Resolve a bet for a subject",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		stake, err := parseAmountArg(args[1])
		if err != nil {
			return err
		}
		won, _ := cmd.Flags().GetBool("won")
		mult, _ := cmd.Flags().GetInt64("mult")

		result, err := noirClient.PlaceBet(context.Background(), &client.PlaceBetRequest{
			Subject:    subject,
			Stake:      stake,
			Won:        won,
			PayoutMult: mult,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(result)
		} else if result.Won {
			fmt.Printf("Won %d, balance %d (%s)\n", result.Payout, result.Balance, result.Ref)
		} else {
			fmt.Printf("Lost %d, balance %d (%s)\n", result.Stake, result.Balance, result.Ref)
		}
		return nil
	},
}

var robCmd = &cobra.Command{
	Use:   "rob <subject>",
	Short: "Rob the bank, emptying every cell",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		loot, err := noirClient.Rob(context.Background(), subject)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loot: %d\n", loot)
		return nil
	},
}

var salaryCmd = &cobra.Command{
	Use:   "salary <subject>",
	Short: "Claim the periodic salary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		amount, err := noirClient.ClaimSalary(context.Background(), subject)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Salary paid: %d\n", amount)
		return nil
	},
}

func init() {
	heroCmd.AddCommand(heroSetCmd)
	heroCmd.AddCommand(heroClaimCmd)
	poolCmd.AddCommand(poolContributeCmd)
	poolCmd.AddCommand(poolPayoutCmd)

	gamesCmd.AddCommand(heroCmd)
	gamesCmd.AddCommand(codewordCmd)
	gamesCmd.AddCommand(guessCmd)
	gamesCmd.AddCommand(poolCmd)
	gamesCmd.AddCommand(betCmd)
	gamesCmd.AddCommand(robCmd)
	gamesCmd.AddCommand(salaryCmd)

	heroSetCmd.Flags().String("title", "", "what the hero did")
	betCmd.Flags().Bool("won", false, "the bet was won")
	betCmd.Flags().Int64("mult", 2, "payout multiplier on a win")
}
