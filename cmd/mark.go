package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/smart-attendance/internal/ledger"
)

var markCmd = &cobra.Command{
	Use:   "mark <photo>",
	Short: "Recognize faces in a photo and mark attendance",
	Long: `Run face recognition on a captured photo and record every recognized
student as present today. Students already marked today are reported but
not recorded twice.

Example:
  smart-attendance mark classroom.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runMark,
}

func init() {
	rootCmd.AddCommand(markCmd)

	markCmd.Flags().Float64("tolerance", 0, "Maximum match distance (0 = configured default)")
	markCmd.Flags().Bool("dry-run", false, "Recognize only, do not write to the ledger")
}

func runMark(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	ctx := context.Background()

	photo, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading photo: %w", err)
	}

	db, err := rt.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading encodings: %w", err)
	}
	if db.Count() == 0 {
		fmt.Println("Encoding database is empty. Run 'smart-attendance encode' first.")
		return nil
	}

	tolerance := mustGetFloat64(cmd, "tolerance")
	if tolerance <= 0 {
		tolerance = rt.config.Tolerance(rt.config.Embedding.Model)
	}

	matches, err := rt.matcher.Recognize(ctx, photo, db, tolerance)
	if err != nil {
		return fmt.Errorf("recognizing faces: %w", err)
	}
	if len(matches) == 0 {
		fmt.Println("No faces recognized")
		return nil
	}

	dryRun := mustGetBool(cmd, "dry-run")
	now := time.Now()

	for _, m := range matches {
		if !m.Known() {
			fmt.Println("Unknown face, skipped")
			continue
		}
		if dryRun {
			fmt.Printf("%s (%.1f%%) - dry run, not marked\n", m.Name, m.Confidence)
			continue
		}

		conf, err := rt.ledger.Mark(m.Name, now)
		if err != nil {
			var rej *ledger.Rejection
			if errors.As(err, &rej) {
				fmt.Printf("%s (%.1f%%) - %s\n", m.Name, m.Confidence, rej.Reason)
				continue
			}
			return fmt.Errorf("marking %s: %w", m.Name, err)
		}
		fmt.Printf("%s (%.1f%%) - marked present at %s\n", conf.Name, m.Confidence, conf.At.Format("15:04:05"))
	}

	return nil
}
