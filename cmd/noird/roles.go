package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:     "roles",
	Short:   "Show and assign club roles",
	GroupID: "club",
	RunE: func(cmd *cobra.Command, args []string) error {
		roles, err := noirClient.AllRoles(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(roles)
		} else {
			printRoleTable(roles)
		}
		return nil
	},
}

var roleSetCmd = &cobra.Command{
	Use:   "set <subject> <name>",
	Short: "Assign a role, replacing any current one",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		desc, _ := cmd.Flags().GetString("desc")
		ttl, _ := cmd.Flags().GetDuration("for")

		var until *time.Time
		if ttl > 0 {
			u := time.Now().Add(ttl)
			until = &u
		}
		role, err := noirClient.SetRole(context.Background(), subject, args[1], desc, until)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(role)
		} else {
			fmt.Printf("Subject %d is now %q\n", role.Subject, role.Name)
		}
		return nil
	},
}

var roleImageCmd = &cobra.Command{
	Use:   "image <subject> <ref>",
	Short: "Attach a picture to a subject's current role",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		role, err := noirClient.SetRoleImage(context.Background(), subject, args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(role)
		} else {
			fmt.Printf("Role %q of %d now has a picture\n", role.Name, role.Subject)
		}
		return nil
	},
}

var roleClearCmd = &cobra.Command{
	Use:   "clear <subject>",
	Short: "Remove a subject's role",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		if err := noirClient.ClearRole(context.Background(), subject); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Role of %d cleared\n", subject)
		return nil
	},
}

var keysCmd = &cobra.Command{
	Use:     "keys",
	Short:   "Show and manage safe keys",
	GroupID: "club",
	RunE: func(cmd *cobra.Command, args []string) error {
		holders, err := noirClient.KeyHolders(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(holders)
		} else if len(holders) == 0 {
			fmt.Println("Nobody holds a key")
		} else {
			fmt.Printf("Key holders: %v\n", holders)
		}
		return nil
	},
}

var keyGrantCmd = &cobra.Command{
	Use:   "grant <subject>",
	Short: "Hand a subject a safe key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		if err := noirClient.GrantKey(context.Background(), subject); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Key granted to %d\n", subject)
		return nil
	},
}

var keyRevokeCmd = &cobra.Command{
	Use:   "revoke <subject>",
	Short: "Take a subject's safe key away",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subject, err := parseSubjectArg(args[0])
		if err != nil {
			return err
		}
		if err := noirClient.RevokeKey(context.Background(), subject); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Key revoked from %d\n", subject)
		return nil
	},
}

func init() {
	rolesCmd.AddCommand(roleSetCmd)
	rolesCmd.AddCommand(roleImageCmd)
	rolesCmd.AddCommand(roleClearCmd)
	keysCmd.AddCommand(keyGrantCmd)
	keysCmd.AddCommand(keyRevokeCmd)

	roleSetCmd.Flags().String("desc", "", "role description")
	roleSetCmd.Flags().Duration("for", 0, "expire the role after this duration (0 = never)")
}
