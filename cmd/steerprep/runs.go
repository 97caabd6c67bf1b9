package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/banshee-data/steering.dataset/internal/manifest"
)

func runRuns(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	dbPath := fs.String("db", defaultDBPath, "Manifest database path")
	limit := fs.Int("n", 20, "Number of runs to list; 0 lists all")
	asJSON := fs.Bool("json", false, "Print JSON instead of a table")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	store, err := manifest.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("open manifest: %w", err)
	}
	defer store.Close()

	if fs.NArg() > 0 {
		run, err := store.GetRun(fs.Arg(0))
		if err != nil {
			return err
		}
		if *asJSON {
			return writeJSON(stdout, run)
		}
		return printRun(stdout, run)
	}

	runs, err := store.ListRuns(*limit)
	if err != nil {
		return err
	}
	if *asJSON {
		return writeJSON(stdout, runs)
	}
	return printRuns(stdout, runs)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRuns(w io.Writer, runs []*manifest.Run) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tVARIANT\tSTATUS\tEXAMPLES\tMEAN\tSTARTED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.4f\t%s\n",
			r.RunID, r.Variant, r.Status, r.Examples, r.LabelMean, formatNanos(r.StartedAt))
	}
	return tw.Flush()
}

func printRun(w io.Writer, r *manifest.Run) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "run\t%s\n", r.RunID)
	fmt.Fprintf(tw, "variant\t%s (%s)\n", r.Variant, r.ColorMode)
	fmt.Fprintf(tw, "data\t%s\n", r.DataDir)
	fmt.Fprintf(tw, "geometry\t%dx%d\n", r.TargetHeight, r.TargetWidth)
	fmt.Fprintf(tw, "policy\t%s\n", r.CountPolicy)
	fmt.Fprintf(tw, "status\t%s\n", r.Status)
	if r.Error != "" {
		fmt.Fprintf(tw, "error\t%s\n", r.Error)
	}
	fmt.Fprintf(tw, "examples\t%d\n", r.Examples)
	fmt.Fprintf(tw, "labels\tmean=%.4f std=%.4f range=[%.4f, %.4f]\n", r.LabelMean, r.LabelStdDev, r.LabelMin, r.LabelMax)
	fmt.Fprintf(tw, "started\t%s\n", formatNanos(r.StartedAt))
	if r.FinishedAt > 0 {
		fmt.Fprintf(tw, "took\t%s\n", time.Duration(r.FinishedAt-r.StartedAt).Round(time.Millisecond))
	}
	if len(r.Sessions) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "#\tEPOCH\tMIRROR\tPROBED\tDECODED\tLABELS\tEXAMPLES")
		for _, s := range r.Sessions {
			fmt.Fprintf(tw, "%d\t%02d\t%t\t%d\t%d\t%d\t%d\n",
				s.Ordinal, s.Epoch, s.Mirror, s.ProbedFrames, s.DecodedFrames, s.LabelRows, s.Examples)
		}
	}
	return tw.Flush()
}

func formatNanos(ns int64) string {
	if ns == 0 {
		return "-"
	}
	return time.Unix(0, ns).UTC().Format(time.RFC3339)
}
