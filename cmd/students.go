package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var studentsCmd = &cobra.Command{
	Use:   "students",
	Short: "List registered students and their reference photos",
	RunE:  runStudents,
}

func init() {
	rootCmd.AddCommand(studentsCmd)
}

func runStudents(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}

	students, err := rt.roster.List()
	if err != nil {
		return fmt.Errorf("listing students: %w", err)
	}
	if len(students) == 0 {
		fmt.Printf("No reference photos in %s\n", rt.roster.Dir())
		fmt.Println("Add photos named like alice_1.jpg, then run 'smart-attendance encode'.")
		return nil
	}

	photosPerName := make(map[string]int)
	for _, s := range students {
		photosPerName[s.Name]++
	}

	names, err := rt.roster.Names()
	if err != nil {
		return fmt.Errorf("listing students: %w", err)
	}

	fmt.Printf("%d students, %d reference photos\n\n", len(names), len(students))
	for _, name := range names {
		fmt.Printf("  %-25s %d photos\n", name, photosPerName[name])
	}

	if builtAt, ok := rt.store.BuiltAt(); ok {
		fmt.Printf("\nEncoding database built %s\n", builtAt.Format(time.RFC1123))
	} else {
		fmt.Println("\nEncoding database not built yet, run 'smart-attendance encode'")
	}

	return nil
}
