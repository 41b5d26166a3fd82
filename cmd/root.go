package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the calendar proxy
var rootCmd = &cobra.Command{
	Use:   "calendar-proxy",
	Short: "Aggregates three Google Calendars behind a small HTTP API",
	Long: `calendar-proxy serves a merged day agenda across a planner, a booking,
and a routines calendar, plus event search, raw event CRUD, and a keyed
pass-through to a Google Apps Script backend.

It can run as:
  - An HTTP server (default)
  - A one-shot CLI to inspect the reachable calendars`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "calendar-proxy version %s\n" .Version}}`)

	// If no subcommand is provided, run the server by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newCalendarsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("calendar-proxy version %s\n", version)
		},
	}
}
