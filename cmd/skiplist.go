package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/contact-enrichment/internal/skiplist"
)

var skipReason string

var skiplistCmd = &cobra.Command{
	Use:   "skiplist",
	Short: "Manage the enrichment skip list",
}

var skiplistAddCmd = &cobra.Command{
	Use:   "add <pattern>",
	Short: "Add a domain or email address to the skip list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := skiplist.Open(ctx, cfg.Skiplist.Driver, cfg.Skiplist.DatabaseURL)
		if err != nil {
			return eris.Wrap(err, "open skip list")
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate skip list")
		}

		pattern := strings.ToLower(strings.TrimSpace(args[0]))
		kind := skiplist.KindDomain
		if strings.Contains(pattern, "@") {
			kind = skiplist.KindEmail
		}

		entry := skiplist.Entry{Pattern: pattern, Kind: kind, Reason: skipReason}
		if err := store.Add(ctx, entry); err != nil {
			return err
		}
		fmt.Printf("added %s %q to skip list\n", kind, pattern)
		return nil
	},
}

var skiplistListCmd = &cobra.Command{
	Use:   "list",
	Short: "List skip-list entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := skiplist.Open(ctx, cfg.Skiplist.Driver, cfg.Skiplist.DatabaseURL)
		if err != nil {
			return eris.Wrap(err, "open skip list")
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate skip list")
		}

		list, err := store.Load(ctx)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("skip list is empty")
			return nil
		}
		for _, e := range list {
			line := fmt.Sprintf("%-8s %-40s %s", e.Kind, e.Pattern, e.CreatedAt.Format("2006-01-02"))
			if e.Reason != "" {
				line += "  # " + e.Reason
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	skiplistAddCmd.Flags().StringVar(&skipReason, "reason", "", "why this pattern is skipped")
	skiplistCmd.AddCommand(skiplistAddCmd, skiplistListCmd)
	rootCmd.AddCommand(skiplistCmd)
}
