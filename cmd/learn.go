package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/remediation"
	"github.com/abhisek/pathwise/internal/tutor"
)

var learnCmd = &cobra.Command{
	Use:   "learn <topic>",
	Short: "Study one module in plain text",
	Long: "Run one module of <topic> without the full-screen interface: print the lecture, " +
		"ask the quiz on stdin and report the verdict. Defaults to the first available concept.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		topic := strings.Join(args, " ")
		level, _ := cmd.Flags().GetString("level")
		nodeID, _ := cmd.Flags().GetString("node")

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		svc, err := d.service(ctx)
		if err != nil {
			return err
		}
		s, err := svc.Start(ctx, topic, level, true)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if nodeID == "" {
			avail := s.Graph.AvailableNodes()
			if len(avail) == 0 {
				fmt.Fprintln(out, "Every concept is completed.")
				return nil
			}
			nodeID = avail[0].ID
		}

		fmt.Fprintf(out, "Preparing %s…\n", nodeID)
		m, err := svc.BeginModule(ctx, s, nodeID)
		if err != nil {
			return err
		}
		printLecture(out, m, svc)

		answers, err := askQuiz(cmd.InOrStdin(), out, m)
		if err != nil {
			return err
		}
		report, err := svc.Submit(ctx, s, answers)
		if err != nil {
			return err
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, report.Message())
		if report.Decision.Verdict == remediation.VerdictFailWithRemediation {
			fmt.Fprintf(out, "Added remedial concept %q (%s)\n", report.Decision.RemedialLabel, report.Decision.RemedialID)
		}
		fmt.Fprintln(out)
		printLog(cmd, s)
		return nil
	},
}

func printLecture(out io.Writer, m *tutor.Module, svc *tutor.Service) {
	sep := strings.Repeat("─", 60)
	c := m.Content

	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, m.Concept.Label)
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out, c.Explanation)
	fmt.Fprintln(out)
	if c.Notation.Empty() {
		fmt.Fprintln(out, "Notation: none")
	} else {
		fmt.Fprintf(out, "Notation: %s\n", c.Notation.LatexEquation)
	}
	fmt.Fprintln(out, tutor.DescribeAudit(c.Audit).Text)
	if d, ok := svc.Pipeline().Latencies().Get(m.Concept.ID); ok {
		fmt.Fprintf(out, "Generated in %.1fs\n", d.Seconds())
	}
	fmt.Fprintln(out, sep)
}

// askQuiz reads one answer (1-4) per question. Blank or invalid input asks
// again; end of input leaves the rest unanswered.
func askQuiz(in io.Reader, out io.Writer, m *tutor.Module) ([]int, error) {
	items := m.Content.Items
	if len(items) == 0 {
		return nil, tutor.ErrNoAssessment
	}
	answers := make([]int, len(items))
	for i := range answers {
		answers[i] = -1
	}

	sc := bufio.NewScanner(in)
	for i, it := range items {
		fmt.Fprintf(out, "\nQ%d. %s\n", i+1, it.Question)
		for j, opt := range it.Options {
			fmt.Fprintf(out, "  %d) %s\n", j+1, opt)
		}
		for {
			fmt.Fprint(out, "> ")
			if !sc.Scan() {
				if err := sc.Err(); err != nil && !errors.Is(err, io.EOF) {
					return nil, fmt.Errorf("read answer: %w", err)
				}
				return answers, nil
			}
			n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
			if err == nil && n >= 1 && n <= len(it.Options) {
				answers[i] = n - 1
				break
			}
			fmt.Fprintf(out, "Enter a number from 1 to %d.\n", len(it.Options))
		}
	}
	return answers, nil
}

func init() {
	learnCmd.Flags().StringP("node", "N", "", "Concept id to study (default: first available)")
	learnCmd.Flags().StringP("level", "l", "Undergraduate", "Academic level when no curriculum is saved")
}
