package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/curriculum"
	"github.com/abhisek/pathwise/internal/tutor"
)

var graphCmd = &cobra.Command{
	Use:   "graph <topic>",
	Short: "Show the saved curriculum graph for a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		topic := strings.Join(args, " ")
		dot, _ := cmd.Flags().GetBool("dot")

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		snap, err := d.sessions.Load(ctx, tutor.SessionKey(d.user, topic))
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		if snap == nil {
			return fmt.Errorf("no saved curriculum for %q; run `pathwise start %s` first", topic, topic)
		}
		g := curriculum.FromSnapshot(*snap)

		out := cmd.OutOrStdout()
		if dot {
			fmt.Fprintln(out, g.RenderGraphDescription())
			return nil
		}

		fmt.Fprintf(out, "%s (%s)  %d/%d completed\n", g.Topic(), g.Context(), len(g.CompletedIDs()), g.Len())
		fmt.Fprintln(out, strings.Repeat("─", 60))
		for _, n := range g.Nodes() {
			line := fmt.Sprintf("%s %-36s %-10s %s", n.Status.Icon(), truncate(n.Label, 36), n.Status.Label(), n.ID)
			if pre := g.Prerequisites(n.ID); len(pre) > 0 {
				line += "  ← " + strings.Join(pre, ", ")
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

func init() {
	graphCmd.Flags().Bool("dot", false, "Print the graph in Graphviz DOT form")
}
