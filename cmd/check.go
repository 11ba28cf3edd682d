package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/cottand/slottype/scenario"
)

var CheckCmd = &cobra.Command{
	Use:          "check scenario.yaml...",
	Short:        "Run scenario files against the connection checker",
	RunE:         runCheck,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var checkVerbose *bool

func init() {
	checkVerbose = CheckCmd.Flags().BoolP("verbose", "v", false, "print passing steps too")
}

func runCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		s, err := scenario.LoadFile(path)
		if err != nil {
			return fmt.Errorf("could not load scenario: %w", err)
		}
		report, err := s.Run()
		if err != nil {
			return fmt.Errorf("could not set up scenario: %w", err)
		}
		printReport(out, report, *checkVerbose)
		if !report.Passed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(args))
	}
	return nil
}

func printReport(out io.Writer, report *scenario.Report, verbose bool) {
	if report.Passed() {
		_, _ = fmt.Fprintf(out, "%s %s (%d steps)\n", pass("PASS"), report.Scenario, len(report.Outcomes))
	} else {
		_, _ = fmt.Fprintf(out, "%s %s\n", fail("FAIL"), report.Scenario)
	}
	for _, o := range report.Outcomes {
		if o.Passed && !verbose {
			continue
		}
		status := pass("ok  ")
		if !o.Passed {
			status = fail("FAIL")
		}
		_, _ = fmt.Fprintf(out, "  %s %2d. %s", status, o.Step, o.Action)
		if o.Passed {
			_, _ = fmt.Fprintf(out, " %s\n", dim("-> "+o.Got))
		} else {
			_, _ = fmt.Fprintf(out, "\n         want: %s\n         got:  %s\n", o.Want, o.Got)
		}
	}
}
