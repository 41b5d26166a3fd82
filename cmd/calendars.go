package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/slawinskiproduction/slawinski-calendar-proxy/internal/calendar"
	"github.com/slawinskiproduction/slawinski-calendar-proxy/internal/config"
	"github.com/slawinskiproduction/slawinski-calendar-proxy/internal/google"
)

func newCalendarsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "calendars",
		Short: "List the calendars reachable with the configured credentials",
		Long: `List the calendars the configured Google account can see, with their IDs.

Use this to find the calendar IDs for CAL_PLANNER_ID, CAL_BOOKING_ID and
CAL_ROUTINES_ID.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if !cfg.HasCredentials() {
				return fmt.Errorf("missing Google credentials: set GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET and GOOGLE_REFRESH_TOKEN")
			}

			ctx := cmd.Context()
			broker := google.NewTokenBroker(google.Credentials{
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RefreshToken: cfg.GoogleRefreshToken,
			})

			token, err := broker.AccessToken(ctx)
			if err != nil {
				return err
			}

			client, err := calendar.NewClient(ctx, token)
			if err != nil {
				return err
			}

			infos, err := client.ListCalendars(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tID")
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%s\n", info.Name, info.ID)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file (optional)")

	return cmd
}
