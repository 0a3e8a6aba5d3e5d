package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printBalanceTable(entries []model.BalanceEntry) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SUBJECT\tBALANCE")
	for _, e := range entries {
		fmt.Fprintf(w, "%d\t%s\n", e.Subject, ui.RenderAmount(strconv.FormatInt(e.Balance, 10)))
	}
	w.Flush()
}

func printEventTable(list []*model.Event) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tSUBJECT\tAMOUNT\tANNOTATION\tAT")
	for _, ev := range list {
		subject := ""
		if ev.Subject != nil {
			subject = strconv.FormatInt(*ev.Subject, 10)
		}
		amount := ""
		if ev.Amount != nil {
			amount = strconv.FormatInt(*ev.Amount, 10)
		}
		annotation := ev.Annotation
		if len(annotation) > 40 {
			annotation = annotation[:37] + "..."
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			ev.ID,
			ui.RenderAccent(string(ev.Kind)),
			subject,
			amount,
			ui.RenderMuted(annotation),
			ev.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	w.Flush()
}

func printOfferTable(offers []*model.Offer) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSELLER\tPRICE\tKIND\tITEM\tREF")
	for _, o := range offers {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\n",
			o.ID, o.Seller,
			ui.RenderAmount(strconv.FormatInt(o.Price, 10)),
			o.Kind, o.Item, ui.RenderMuted(o.Ref),
		)
	}
	w.Flush()
	fmt.Printf("\n%d active offers\n", len(offers))
}

func printRoleTable(roles []*model.Role) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SUBJECT\tROLE\tDESC\tUNTIL")
	for _, r := range roles {
		until := ""
		if r.Until != nil {
			until = r.Until.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.Subject, ui.RenderAccent(r.Name), r.Desc, until)
	}
	w.Flush()
}

// parseSubjectArg parses a positional subject ID argument.
func parseSubjectArg(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid subject %q", arg)
	}
	return id, nil
}

// parseAmountArg parses a positional amount argument.
func parseAmountArg(arg string) (int64, error) {
	n, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", arg)
	}
	return n, nil
}
