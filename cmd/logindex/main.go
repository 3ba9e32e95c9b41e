package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pbaille/logindex/internal/config"
	"github.com/pbaille/logindex/internal/engine"
	"github.com/pbaille/logindex/internal/logging"
	"github.com/pbaille/logindex/internal/markup"
	"github.com/pbaille/logindex/internal/store"
	"github.com/pbaille/logindex/internal/temporal"
	"github.com/pbaille/logindex/internal/watch"
)

var (
	rootDir    string
	configPath string
	nowFlag    string
	verbose    bool

	logger *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "logindex",
		Short:         "Index session diaries and compare them with the self-model",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			logger, err = logging.New(verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "root directory holding logs, claims and decisions")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default <root>/"+config.DefaultFile+")")
	rootCmd.PersistentFlags().StringVar(&nowFlag, "now", "", "reference date YYYY-MM-DD (default today)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(indexCmd())
	rootCmd.AddCommand(mirrorCmd())
	rootCmd.AddCommand(calibrationCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(watchCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	return config.Load(root, configPath)
}

func referenceTime() (time.Time, error) {
	if nowFlag == "" {
		return time.Now(), nil
	}
	t, err := time.ParseInLocation(temporal.DateLayout, nowFlag, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse --now: %w", err)
	}
	return t, nil
}

func run() (*config.Config, *engine.Report, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	now, err := referenceTime()
	if err != nil {
		return nil, nil, err
	}
	r, err := engine.Run(cfg, now, logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, r, nil
}

func indexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Rebuild the index document",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, r, err := run()
			if err != nil {
				return err
			}
			if err := engine.WriteIndex(cfg, r); err != nil {
				return err
			}

			fmt.Printf("Index written: %s\n", cfg.OutputPath())
			fmt.Printf("  Files:      %d\n", r.Index.Files)
			fmt.Printf("  Sessions:   %d\n", r.Index.Sessions)
			fmt.Printf("  Open items: %d\n", len(r.Index.OpenItems))
			fmt.Printf("  Key facts:  %d\n", len(r.Index.KeyFacts))
			if r.Index.Sessions == 0 {
				fmt.Println(mutedStyle.Render("  (source files contain no sessions)"))
			}
			return nil
		},
	}
}

func mirrorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mirror",
		Short: "Show divergences between claims and behavior",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, r, err := run()
			if err != nil {
				return err
			}

			fmt.Printf("Mirror: %d claims, %d behaviors, %d divergences\n",
				len(r.Claims), r.Behaviors, len(r.Divergence.Records))

			for _, d := range r.Divergence.Records {
				fmt.Println()
				fmt.Printf("%s %s  severity %.0f  %s\n",
					typeLabel(d.Type), headerStyle.Render(d.Label), d.Severity, natureLabel(d.Nature))
				fmt.Printf("  claim: %s\n", d.ClaimText)
				for _, e := range d.Evidence {
					fmt.Println(mutedStyle.Render("  - " + markup.Truncate(e, 80)))
				}
				fmt.Printf("  %s\n", d.Insight)
				fmt.Printf("  -> %s\n", d.Recommendation)
			}

			if r.Divergence.Emphasis == nil {
				fmt.Println(mutedStyle.Render("\n(no claims file, emphasis omitted)"))
				return nil
			}
			fmt.Println()
			fmt.Println(headerStyle.Render("Emphasis"))
			fmt.Printf("  %-12s %-22s %8s %8s %8s %8s  %s\n", "concept", "category", "claims", "behavior", "weighted", "gap", "status")
			for _, row := range r.Divergence.Emphasis {
				fmt.Printf("  %-12s %-22s %7.1f%% %7.1f%% %7.1f%% %+8.1f  %s\n",
					row.Concept, row.Category, row.ClaimPct, row.BehaviorPct, row.WeightedPct, row.Gap, row.Status)
			}
			return nil
		},
	}
}

func calibrationCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calibration",
		Short: "Show decision confidence calibration",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, r, err := run()
			if err != nil {
				return err
			}

			if len(r.Decisions) == 0 {
				fmt.Println("No decision records found.")
				return nil
			}

			fmt.Printf("Decisions: %d (%d pending)\n", len(r.Decisions), len(r.Pending))
			if r.Calibration == nil {
				fmt.Println(mutedStyle.Render("Not enough resolved decisions yet. Fill in outcomes as they become known."))
			} else {
				c := r.Calibration
				fmt.Printf("Mean confidence %.0f%%, accuracy %.0f%% over %d resolved: %s\n",
					c.MeanConfidence, c.Accuracy, c.Resolved, headerStyle.Render(string(c.Tendency)))
			}

			if r.Bands != nil && len(r.Bands.Bands) > 0 {
				fmt.Println()
				fmt.Println(headerStyle.Render("Bands"))
				for _, b := range r.Bands.Bands {
					gap := b.Accuracy - float64(b.Floor+5)
					fmt.Printf("  %d-%d%%  n=%-3d correct=%d partial=%d incorrect=%d  accuracy %.0f%% (%+.0f)\n",
						b.Floor, b.Floor+10, b.Total, b.Correct, b.Partial, b.Incorrect, b.Accuracy, gap)
				}
				fmt.Printf("  mean absolute gap %.1fpp, tendency %s\n", r.Bands.MeanAbsGap, r.Bands.Tendency)
			}

			fmt.Println()
			fmt.Println(headerStyle.Render("Categories"))
			for _, c := range r.Categories {
				fmt.Printf("  %-16s n=%-3d accuracy %.0f%%  unresolved %d\n", c.Category, c.Total, c.Accuracy, c.Unresolved)
			}

			if len(r.Pending) > 0 {
				fmt.Println()
				fmt.Println(headerStyle.Render("Pending"))
				for _, d := range r.Pending {
					fmt.Printf("  %s  %s\n", d.ID, markup.Truncate(d.Summary, 60))
				}
			}
			return nil
		},
	}
}

func reportCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Export the full structured report",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, r, err := run()
			if err != nil {
				return err
			}

			if !asJSON {
				fmt.Printf("Run %s at %s\n", r.RunID[:8], r.Generated.Format("2006-01-02 15:04"))
				fmt.Printf("  %d files, %d sessions, %d entries\n", r.Index.Files, r.Index.Sessions, len(r.Index.Entries))
				fmt.Printf("  %d divergences, %d decisions\n", len(r.Divergence.Records), len(r.Decisions))
				fmt.Println(mutedStyle.Render("Use --json for the full report."))
				return nil
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(r); err != nil {
				return fmt.Errorf("encode report: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "write the report as JSON to stdout")
	return cmd
}

func searchCmd() *cobra.Command {
	var (
		topic    string
		limit    int
		listTags bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search log entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, r, err := run()
			if err != nil {
				return err
			}

			s, err := store.Open(r.Index.Entries)
			if err != nil {
				return err
			}
			defer s.Close()

			if listTags {
				tags, err := s.ListTags()
				if err != nil {
					return err
				}
				for _, t := range tags {
					fmt.Printf("%-16s %d\n", t.Name, t.Count)
				}
				return nil
			}

			q := store.Query{Topic: topic, Limit: limit}
			if len(args) == 1 {
				q.Text = args[0]
			}
			if q.Text == "" && q.Topic == "" {
				return fmt.Errorf("search needs a query or --topic")
			}

			hits, err := s.Search(q)
			if err != nil {
				return err
			}
			if len(hits) == 0 {
				fmt.Println("No matching entries found.")
				return nil
			}

			for _, h := range hits {
				fmt.Printf("%s %s  %s\n",
					mutedStyle.Render(h.Date),
					mutedStyle.Render(h.Session),
					highlight(markup.Truncate(h.Text, 100), q.Text))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "", "only entries tagged with this topic")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum results (0 for all)")
	cmd.Flags().BoolVar(&listTags, "tags", false, "list topics with entry counts")
	return cmd
}

// highlight styles case-insensitive occurrences of q in s
func highlight(s, q string) string {
	if q == "" {
		return s
	}
	lower, lq := strings.ToLower(s), strings.ToLower(q)
	// byte offsets into lower must be valid in s
	if len(lower) != len(s) || len(lq) != len(q) {
		return s
	}

	var sb strings.Builder
	for {
		i := strings.Index(lower, lq)
		if i < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:i])
		sb.WriteString(matchStyle.Render(s[i : i+len(lq)]))
		s, lower = s[i+len(lq):], lower[i+len(lq):]
	}
}

func watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the index whenever sources change",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			rebuild := func() error {
				now, err := referenceTime()
				if err != nil {
					return err
				}
				r, err := engine.Run(cfg, now, logger)
				if err != nil {
					return err
				}
				return engine.WriteIndex(cfg, r)
			}
			if err := rebuild(); err != nil {
				return err
			}
			fmt.Printf("Index written: %s\n", cfg.OutputPath())

			dirs := []string{cfg.LogsPath(), cfg.DecisionsPath(), filepath.Dir(cfg.ClaimsPath())}
			w, err := watch.New(dirs, rebuild, logger)
			if err != nil {
				return err
			}
			w.Ignore(cfg.OutputPath())

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return w.Run(ctx)
		},
	}
}
