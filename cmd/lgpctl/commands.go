package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"lgpkit/internal/report"
	"lgpkit/pkg/lgpkit"
)

func newInitCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the solution store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, cfg, err := openClient(cmd, flags)
			if err != nil {
				return err
			}
			defer client.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "initialized store=%s compression=%s\n", cfg.Store, cfg.Compression)
			return nil
		},
	}
}

func newImportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "import <solution.json|dir>",
		Short: "Store an exported solution under a new id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := openClient(cmd, flags)
			if err != nil {
				return err
			}
			defer client.Close()

			summary, err := client.Import(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported id=%s problem=%q runs=%d best=%s fingerprint=%s\n",
				summary.ID, summary.Problem, summary.Runs, formatBest(summary.HasBest, summary.BestFitness), summary.Fingerprint)
			return nil
		},
	}
}

func newListCmd(flags *globalFlags) *cobra.Command {
	var problem string
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored solutions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit <= 0 {
				return errors.New("limit must be > 0")
			}
			client, _, err := openClient(cmd, flags)
			if err != nil {
				return err
			}
			defer client.Close()

			items, err := client.List(cmd.Context(), lgpkit.ListRequest{Problem: problem, Limit: limit})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "no solutions found")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tPROBLEM\tRUNS\tGENERATIONS\tBEST\tCREATED")
			for _, item := range items {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
					item.ID, item.Problem, item.Runs, item.Generations,
					formatBest(item.HasBest, item.BestFitness), formatCreated(item.CreatedAtUTC))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&problem, "problem", "", "only solutions for this problem")
	cmd.Flags().IntVar(&limit, "limit", 20, "max solutions to list")
	return cmd
}

func newShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print one stored solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := openClient(cmd, flags)
			if err != nil {
				return err
			}
			defer client.Close()

			solution, ok, err := client.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w: %s", lgpkit.ErrNotFound, args[0])
			}
			return writeSolution(cmd.OutOrStdout(), solution)
		},
	}
}

func writeSolution(w io.Writer, s *lgpkit.StoredSolution) error {
	result := s.Result()
	best, ok := result.BestFitness()
	fmt.Fprintf(w, "id:          %s\n", s.ID())
	fmt.Fprintf(w, "problem:     %s\n", s.Problem())
	if s.Backend() != "" {
		fmt.Fprintf(w, "backend:     %s\n", s.Backend())
	}
	fmt.Fprintf(w, "shapes:      output=%s target=%s\n", result.OutputShape(), result.TargetShape())
	fmt.Fprintf(w, "fingerprint: %s\n", s.Fingerprint())
	fmt.Fprintf(w, "created:     %s\n", formatCreated(s.Record().CreatedAtUTC))
	fmt.Fprintf(w, "best:        %s\n", formatBest(ok, best))

	for run := 0; run < result.Runs(); run++ {
		summary := result.Summary(run)
		fmt.Fprintf(w, "\nrun %d: best=%s generations=%d\n", summary.Run, formatBest(summary.HasBest, summary.BestFitness), len(summary.Statistics))
		if last := len(summary.Statistics) - 1; last >= 0 {
			for key, value := range summary.Statistics[last].All() {
				fmt.Fprintf(w, "  %s = %v\n", key, value)
			}
		}
		if summary.HasBest {
			fmt.Fprintln(w, summary.Program)
		}
	}
	return nil
}

func newCompareCmd(flags *globalFlags) *cobra.Command {
	var problem string
	var csvOut bool
	cmd := &cobra.Command{
		Use:   "compare [ids...]",
		Short: "Rank solutions by best fitness",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := openClient(cmd, flags)
			if err != nil {
				return err
			}
			defer client.Close()

			rows, err := client.Compare(cmd.Context(), lgpkit.CompareRequest{IDs: args, Problem: problem})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if csvOut {
				return report.WriteComparisonCSV(out, rows)
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "no solutions found")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RANK\tID\tPROBLEM\tBACKEND\tRUNS\tBEST")
			for _, row := range rows {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%s\n",
					row.Rank, row.ID, row.Problem, row.Backend, row.Runs, formatBest(row.HasBest, row.BestFitness))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&problem, "problem", "", "rank every solution of this problem")
	cmd.Flags().BoolVar(&csvOut, "csv", false, "emit CSV instead of a table")
	return cmd
}

func newExportCmd(flags *globalFlags) *cobra.Command {
	var latest bool
	var outDir string
	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Write solution.json, statistics.csv and programs.txt",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			if id != "" && latest {
				return errors.New("use either an id or --latest, not both")
			}
			if id == "" && !latest {
				return errors.New("export requires an id or --latest")
			}

			client, _, err := openClient(cmd, flags)
			if err != nil {
				return err
			}
			defer client.Close()

			exported, err := client.Export(cmd.Context(), lgpkit.ExportRequest{ID: id, Latest: latest, OutDir: outDir})
			if err != nil {
				return err
			}
			size, err := dirSize(exported.Directory)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported id=%s to=%s (%s)\n", exported.ID, exported.Directory, humanize.Bytes(size))
			return nil
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "export the most recent solution")
	cmd.Flags().StringVar(&outDir, "out", "", "export output directory (default from config)")
	return cmd
}

func newDeleteCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a stored solution",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := openClient(cmd, flags)
			if err != nil {
				return err
			}
			defer client.Close()

			deleted, err := client.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("%w: %s", lgpkit.ErrNotFound, args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted id=%s\n", args[0])
			return nil
		},
	}
}

func formatBest(ok bool, fitness float64) string {
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(fitness, 'g', 6, 64)
}

func formatCreated(createdAtUTC string) string {
	t, err := time.Parse(time.RFC3339Nano, createdAtUTC)
	if err != nil {
		return createdAtUTC
	}
	return fmt.Sprintf("%s (%s)", t.Format(time.RFC3339), humanize.Time(t))
}

func dirSize(dir string) (uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, entry := range entries {
		info, err := entry.Info()
		if err != nil {
			return 0, err
		}
		if !entry.IsDir() {
			total += uint64(info.Size())
		}
	}
	return total, nil
}
