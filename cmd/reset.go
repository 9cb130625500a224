package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/tutor"
)

var resetCmd = &cobra.Command{
	Use:   "reset <topic>",
	Short: "Delete the saved curriculum and attempts for a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		topic := strings.Join(args, " ")

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		key := tutor.SessionKey(d.user, topic)
		deleted, err := d.sessions.DeleteSession(cmd.Context(), key)
		if err != nil {
			return fmt.Errorf("reset %s: %w", key, err)
		}
		if !deleted {
			fmt.Fprintf(cmd.OutOrStdout(), "Nothing saved for %q.\n", topic)
			return nil
		}
		d.log.Info("session reset", "session_key", key)
		fmt.Fprintf(cmd.OutOrStdout(), "Reset %q.\n", topic)
		return nil
	},
}
