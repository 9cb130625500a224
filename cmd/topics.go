package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var topicsCmd = &cobra.Command{
	Use:   "topics",
	Short: "List the topics with a saved curriculum",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()
		return printTopics(cmd.Context(), cmd.OutOrStdout(), d.sessions)
	},
}

func printTopics(ctx context.Context, out io.Writer, sessions sessionStore) error {
	infos, err := sessions.ListSessions(ctx)
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Fprintln(out, "No saved topics.")
		return nil
	}

	fmt.Fprintf(out, "%-32s  %-9s  %s\n", "Topic", "Progress", "Last saved")
	fmt.Fprintln(out, strings.Repeat("─", 64))
	for _, info := range infos {
		progress := "?"
		if snap, err := sessions.Load(ctx, info.Key); err == nil && snap != nil {
			progress = fmt.Sprintf("%d/%d", len(snap.CompletedNodes), len(snap.Nodes))
		}
		fmt.Fprintf(out, "%-32s  %-9s  %s\n",
			truncate(info.Topic, 32),
			progress,
			info.UpdatedAt.Local().Format("2006-01-02 15:04:05"),
		)
	}
	return nil
}
