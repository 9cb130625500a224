package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pathwise",
	Short: "Adaptive curriculum tutor for the terminal",
	Long: "Pathwise builds a prerequisite graph for any topic, generates a lecture, quiz and " +
		"notation for each concept, and splices in remedial concepts when a quiz is failed.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return startMetricsServer(cmd)
	},
}

// Execute runs the command tree until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("db", "", "Path to SQLite database file (overrides PATHWISE_DB env var)")
	flags.String("config", "", "Path to config file (overrides PATHWISE_CONFIG env var)")
	flags.String("user", defaultUser(), "Learner id that owns the sessions")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	flags.String("log-mode", "", "Log encoding: dev or prod")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(topicsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

func defaultUser() string {
	if u := os.Getenv("PATHWISE_USER"); u != "" {
		return u
	}
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "learner"
}
