package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	eventsCmd := &cobra.Command{Use: "events", Short: "Event operations"}

	// list
	var sport string
	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List events",
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			if sport != "" {
				q.Set("sport", sport)
			}
			if limit > 0 {
				q.Set("limit", fmt.Sprintf("%d", limit))
			}
			u := fmt.Sprintf("%s/api/events", apiFlag)
			if enc := q.Encode(); enc != "" {
				u += "?" + enc
			}
			data, err := doGet(u)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	listCmd.Flags().StringVarP(&sport, "sport", "s", "", "Filter by sport")
	listCmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum number of events")
	eventsCmd.AddCommand(listCmd)

	// show
	showCmd := &cobra.Command{
		Use:   "show EVENT_ID",
		Short: "Show one event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/events/%s", apiFlag, args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	eventsCmd.AddCommand(showCmd)

	// ics
	icsCmd := &cobra.Command{
		Use:   "ics EVENT_ID",
		Short: "Export one event as iCalendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := doGet(fmt.Sprintf("%s/api/events/%s/ics", apiFlag, args[0]))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(os.Stdout, string(data))
			return nil
		},
	}
	eventsCmd.AddCommand(icsCmd)

	// delete
	deleteCmd := &cobra.Command{
		Use:   "delete EVENT_ID",
		Short: "Delete an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := doDelete(fmt.Sprintf("%s/api/events/%s", apiFlag, args[0])); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(os.Stdout, "deleted")
			return nil
		},
	}
	eventsCmd.AddCommand(deleteCmd)

	rootCmd.AddCommand(eventsCmd)
}
