package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/app"
	"github.com/abhisek/pathwise/internal/tutor"
)

var startCmd = &cobra.Command{
	Use:   "start <topic>",
	Short: "Open the interactive tutor for a topic",
	Long: "Resume the saved curriculum for <topic>, or pick a level and generate a new one. " +
		"Use --fresh to ignore a saved curriculum.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		topic := strings.Join(args, " ")
		level, _ := cmd.Flags().GetString("level")
		fresh, _ := cmd.Flags().GetBool("fresh")

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		svc, err := d.service(ctx)
		if err != nil {
			return err
		}

		opts := app.Options{Service: svc, Topic: topic, Level: level}
		if !fresh {
			if opts.Session, err = svc.Resume(ctx, topic); err != nil {
				d.log.Warn("load session failed", "topic", topic, "error", err)
			}
		}
		if opts.Session == nil && level != "" {
			// The level is known, so skip the picker.
			if opts.Session, err = svc.Start(ctx, topic, level, false); err != nil {
				return err
			}
		}

		session, err := app.Run(ctx, opts)
		if err != nil {
			return err
		}
		printLog(cmd, session)
		return nil
	},
}

// printLog writes the session's audit log after the program exits.
func printLog(cmd *cobra.Command, s *tutor.Session) {
	if s == nil {
		return
	}
	out := cmd.OutOrStdout()
	for _, e := range s.Log() {
		fmt.Fprintf(out, "%s  %s\n", e.Time.Format("15:04:05"), e.Message)
	}
}

func init() {
	startCmd.Flags().StringP("level", "l", "", "Academic level (Undergraduate, Graduate, PhD)")
	startCmd.Flags().Bool("fresh", false, "Generate a new curriculum even if one is saved")
}
