package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/noirclub/noird/internal/client"
	"github.com/spf13/cobra"
)

var marketCmd = &cobra.Command{
	Use:     "market",
	Short:   "Browse and trade market offers",
	GroupID: "market",
}

var marketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active offers",
	RunE: func(cmd *cobra.Command, args []string) error {
		offers, err := noirClient.ListOffers(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(offers)
		} else {
			printOfferTable(offers)
		}
		return nil
	},
}

var marketSellCmd = &cobra.Command{
	Use:   "sell <seller> <price> <item>",
	Short: "Put an offer on the market",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		seller, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		price, err := parseAmountArg(args[1])
		if err != nil {
			return err
		}
		perk, _ := cmd.Flags().GetBool("perk")
		req := &client.CreateOfferRequest{Seller: seller, Price: price, Item: args[2]}
		if perk {
			req.Kind = "perk"
		}

		offer, err := noirClient.CreateOffer(context.Background(), req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(offer)
		} else {
			fmt.Printf("Offer %d created: %s for %d (%s)\n", offer.ID, offer.Item, offer.Price, offer.Ref)
		}
		return nil
	},
}

var marketBuyCmd = &cobra.Command{
	Use:   "buy <offer-id> <buyer>",
	Short: "Settle an offer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid offer id %q", args[0])
		}
		buyer, err := parseSubjectArg(args[1])
		if err != nil {
			return err
		}
		settlement, err := noirClient.SettleOffer(context.Background(), id, buyer)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(settlement)
		} else {
			fmt.Printf("Offer %d settled: %d paid %d (burn %d, seller got %d)\n",
				settlement.OfferID, settlement.Buyer, settlement.Price, settlement.Burn, settlement.ToSeller)
		}
		return nil
	},
}

var marketCancelCmd = &cobra.Command{
	Use:   "cancel <offer-id> <by>",
	Short: "Cancel an offer",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid offer id %q", args[0])
		}
		by, err := parseSubjectArg(args[1])
		if err != nil {
			return err
		}
		if err := noirClient.CancelOffer(context.Background(), id, by); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Offer %d cancelled\n", id)
		return nil
	},
}

func init() {
	marketCmd.AddCommand(marketListCmd)
	marketCmd.AddCommand(marketSellCmd)
	marketCmd.AddCommand(marketBuyCmd)
	marketCmd.AddCommand(marketCancelCmd)

	marketSellCmd.Flags().Bool("perk", false, "sell a held perk instead of a free-form item")
}
