package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "smart-attendance",
	Short: "Face recognition attendance tracking",
	Long: `Smart Attendance marks daily class attendance from captured photos.
Students are registered with labeled reference photos; faces detected in a
capture are matched against them and recognized students are recorded in a
CSV attendance ledger, once per day.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
