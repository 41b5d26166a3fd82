// Package cmd implements the command-line interface for calendar-proxy.
//
// This package provides the following commands:
//   - serve: Start the HTTP API server
//   - calendars: List the calendars reachable with the configured credentials
//   - version: Display version information
//
// The serve command is the default command when no subcommand is specified.
package cmd
