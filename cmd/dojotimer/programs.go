package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/dojotimer/internal/domain"
	"github.com/hammamikhairi/dojotimer/internal/expand"
	"github.com/hammamikhairi/dojotimer/internal/program"
	"github.com/hammamikhairi/dojotimer/internal/title"
)

var listRecent bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available programs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return listPrograms(cmd.Context())
	},
}

var showCmd = &cobra.Command{
	Use:   "show <program-id|file>",
	Short: "Print the expanded steps of a program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showProgram(cmd.Context(), args[0])
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Validate a program file and add it to the recent programs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return importProgram(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(importCmd)

	listCmd.Flags().BoolVar(&listRecent, "recent", false, "list only recently used programs")
}

func listPrograms(ctx context.Context) error {
	store, closeStore := openStore(cfg, log)
	defer closeStore()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tROWS\tPASS\tSOURCE")

	if !listRecent {
		summaries, err := loadCatalog(cfg, log).List(ctx)
		if err != nil {
			return fmt.Errorf("listing programs: %w", err)
		}
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\tcatalog\n", s.ID, s.Title, s.Rows, formatSeconds(s.DurationSec))
		}
	}

	recent, err := store.Recent(ctx)
	if err != nil {
		return fmt.Errorf("listing recent programs: %w", err)
	}
	for _, p := range recent {
		s := p.Summary()
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\trecent\n", s.ID, s.Title, s.Rows, formatSeconds(s.DurationSec))
	}
	return w.Flush()
}

func showProgram(ctx context.Context, ref string) error {
	store, closeStore := openStore(cfg, log)
	defer closeStore()

	p, err := loadCatalog(cfg, log).Resolve(ctx, ref, store)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	steps := expand.Program(*p, expand.WithInfiniteSets(cfg.InfiniteSets))
	printPlan(os.Stdout, *p, steps)
	return nil
}

func printPlan(out io.Writer, p domain.Program, steps []domain.Step) {
	fmt.Fprintf(out, "%s (%s)\n\n", p.Title, p.ID)

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTITLE\tTIME\tSIDE")
	for i, st := range steps {
		side := "-"
		if st.Alternating() {
			side = fmt.Sprintf("%s/%s", st.Side, st.Color)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, title.ForStep(st), formatSeconds(st.DurationSec), side)
	}
	_ = w.Flush()

	fmt.Fprintf(out, "\n%d steps, %s total\n", len(steps), formatSeconds(domain.TotalDuration(steps)))
}

func importProgram(ctx context.Context, path string) error {
	p, err := program.LoadFile(path)
	if err != nil {
		return err
	}

	store, closeStore := openStore(cfg, log)
	defer closeStore()

	if err := store.Touch(ctx, p); err != nil {
		return fmt.Errorf("saving program %s: %w", p.ID, err)
	}
	steps := expand.Program(p, expand.WithInfiniteSets(cfg.InfiniteSets))
	fmt.Printf("imported %q as %s (%d steps, %s)\n", p.Title, p.ID, len(steps), formatSeconds(domain.TotalDuration(steps)))
	return nil
}

// formatSeconds renders whole seconds as "4m", "1m30s" or "1h05m".
func formatSeconds(sec int) string {
	if sec < 60 {
		return fmt.Sprintf("%ds", sec)
	}
	if sec < 3600 {
		m, s := sec/60, sec%60
		if s == 0 {
			return fmt.Sprintf("%dm", m)
		}
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%dh%02dm", sec/3600, (sec/60)%60)
}
