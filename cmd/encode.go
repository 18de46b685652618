package cmd

import (
	"context"
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Rebuild the face encoding database",
	Long: `Scan every registered reference photo, compute a face descriptor per
image and persist the result. Run this after adding or removing student
photos. Photos without a detectable face are skipped.`,
	RunE: runEncode,
}

func init() {
	rootCmd.AddCommand(encodeCmd)
}

func runEncode(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if !rt.provider.Available(ctx) {
		fmt.Printf("Embedding service at %s is not reachable, nothing encoded\n", rt.config.Embedding.URL)
		return nil
	}

	students, err := rt.roster.List()
	if err != nil {
		return fmt.Errorf("listing reference photos: %w", err)
	}
	if len(students) == 0 {
		fmt.Println("No reference photos found. Add photos like alice_1.jpg first.")
		return nil
	}

	bar := progressbar.NewOptions(len(students),
		progressbar.OptionSetDescription("Encoding faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	db, err := rt.store.Rebuild(ctx, func(processed, total int) {
		bar.Set(processed)
	})
	if err != nil {
		return fmt.Errorf("rebuilding encodings: %w", err)
	}
	fmt.Println()

	skipped := len(students) - db.Count()
	fmt.Printf("Encoded %d descriptors for %d students", db.Count(), len(db))
	if skipped > 0 {
		fmt.Printf(" (%d photos skipped, no face found)", skipped)
	}
	fmt.Println()
	fmt.Printf("Database written to %s\n", rt.config.Storage.EncodingsPath())

	return nil
}
