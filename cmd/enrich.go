package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/contact-enrichment/internal/model"
	"github.com/sells-group/contact-enrichment/internal/strategy"
)

var (
	enrichFieldsFile string
	enrichJSON       bool
	enrichConcurrent int
)

var enrichCmd = &cobra.Command{
	Use:   "enrich <email> [email...]",
	Short: "Enrich one or more email addresses",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		fields, err := loadFields()
		if err != nil {
			return err
		}

		concurrency := enrichConcurrent
		if concurrency <= 0 {
			concurrency = cfg.Enrich.MaxConcurrent
		}

		var mu sync.Mutex
		outcomes := make([]strategy.Outcome, 0, len(args))

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(concurrency)
		for _, email := range args {
			g.Go(func() error {
				outcome := env.Strategy.EnrichEmail(gctx, email, fields)
				mu.Lock()
				outcomes = append(outcomes, outcome)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		// Restore input order for stable output.
		order := make(map[string]int, len(args))
		for i, email := range args {
			order[email] = i
		}
		sort.SliceStable(outcomes, func(i, j int) bool {
			return order[outcomes[i].Email] < order[outcomes[j].Email]
		})

		if enrichJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(outcomes)
		}
		for _, outcome := range outcomes {
			printOutcome(outcome)
		}
		return nil
	},
}

func loadFields() ([]model.EnrichmentField, error) {
	path := enrichFieldsFile
	if path == "" {
		path = cfg.Enrich.FieldsFile
	}
	if path == "" {
		return model.DefaultFields(), nil
	}
	return model.LoadFields(path)
}

func printOutcome(outcome strategy.Outcome) {
	fmt.Printf("%s  [%s]\n", outcome.Email, outcome.Status)
	if outcome.Err != nil {
		fmt.Printf("  error: %v\n", outcome.Err)
		return
	}

	names := make([]string, 0, len(outcome.Enrichments))
	for name := range outcome.Enrichments {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r := outcome.Enrichments[name]
		fmt.Printf("  %-20s %v  (%.2f via %s)\n", name, r.Value, r.Confidence, r.Source)
	}
}

func init() {
	enrichCmd.Flags().StringVar(&enrichFieldsFile, "fields", "", "YAML file describing the fields to enrich")
	enrichCmd.Flags().BoolVar(&enrichJSON, "json", false, "emit JSON instead of text")
	enrichCmd.Flags().IntVar(&enrichConcurrent, "concurrency", 0, "max emails enriched in parallel (default from config)")
	rootCmd.AddCommand(enrichCmd)
}
