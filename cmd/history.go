package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history <topic>",
	Short: "List recent module attempts for a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		topic := strings.Join(args, " ")
		limit, _ := cmd.Flags().GetInt("limit")

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		records, err := d.sessions.RecentAttempts(ctx, topic, limit)
		if err != nil {
			return fmt.Errorf("query attempts: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No attempts recorded.")
			return nil
		}

		fmt.Fprintf(out, "%-19s  %-28s  %-4s  %s\n", "Timestamp", "Concept", "", "Score")
		fmt.Fprintln(out, strings.Repeat("─", 64))
		for _, r := range records {
			ok := "✓"
			if !r.Passed() {
				ok = "✗"
			}
			fmt.Fprintf(out, "%-19s  %-28s  %-4s  %3.0f%%\n",
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(r.NodeID, 28),
				ok,
				r.Score*100,
			)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of attempts to show")
}
