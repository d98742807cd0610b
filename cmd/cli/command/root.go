package command

// root.go defines the root command for the bookhub CLI.
// Global flags and shared wiring live here.

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL string // Global flag for API server URL, overrides BOOKHUB_API_URL
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bookhub",
	Short: "bookhub - Bookstore Management Command Line Interface",
	Long: `bookhub is a staff tool for managing a bookstore over its REST API.
Use it to:
- Login and keep a session across invocations
- List, add, edit, delete and like book records
- View the category distribution chart
- Ask the Gemini assistant about a selected book

Use "bookhub command -h" to see all available commands.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API server URL (default from BOOKHUB_API_URL)")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(bookCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(shellCmd)
}
