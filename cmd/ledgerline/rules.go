package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgerline/ledgerline/internal/category"
	"github.com/ledgerline/ledgerline/internal/model"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage categorization rules",
	}
	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesDeleteCmd())
	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all rules, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			rules, err := store.ListRules(cmd.Context())
			if err != nil {
				return err
			}
			if len(rules) == 0 {
				fmt.Println("No rules defined.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPATTERN\tCATEGORY\tENABLED")
			for _, rule := range rules {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\n",
					rule.ID, rule.Pattern, category.DisplayLabel(rule.Category), rule.Enabled)
			}
			return w.Flush()
		},
	}
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <pattern> <category>",
		Short: "Add a rule mapping a substring pattern to a category",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.Migrate(cmd.Context()); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			rule := &model.Rule{
				Pattern:  args[0],
				Category: category.LookupKey(args[1]),
				Enabled:  true,
			}
			if err := store.CreateRule(cmd.Context(), rule); err != nil {
				return err
			}

			fmt.Printf("Created rule %s: %q -> %s\n",
				rule.ID, rule.Pattern, category.DisplayLabel(rule.Category))
			return nil
		},
	}
	return cmd
}

func rulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStorage()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRule(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted rule %s\n", args[0])
			return nil
		},
	}
}
