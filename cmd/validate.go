package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cottand/slottype/hierdef"
	"github.com/cottand/slottype/typeerr"
)

var ValidateCmd = &cobra.Command{
	Use:          "validate hierarchy-file...",
	Short:        "Load hierarchy files and report what is wrong with them",
	RunE:         runValidate,
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
}

var validateJobs *int

func init() {
	validateJobs = ValidateCmd.Flags().IntP("jobs", "j", runtime.NumCPU(), "how many files to load at once")
}

func runValidate(cmd *cobra.Command, args []string) error {
	types := make([]int, len(args))
	errs := make([]error, len(args))

	g := &errgroup.Group{}
	g.SetLimit(max(*validateJobs, 1))
	for i, path := range args {
		g.Go(func() error {
			h, err := hierdef.LoadFile(path)
			if err != nil {
				errs[i] = err
				return nil
			}
			types[i] = len(h.Types())
			return nil
		})
	}
	_ = g.Wait()

	var all *typeerr.Errors
	out := cmd.OutOrStdout()
	for i, path := range args {
		if errs[i] != nil {
			all = all.With(errs[i])
			_, _ = fmt.Fprintf(out, "%s %s\n     %s\n", fail("FAIL"), path, typeerr.FormatWithCode(errs[i]))
			continue
		}
		_, _ = fmt.Fprintf(out, "%s %s %s\n", pass("ok  "), path, dim(fmt.Sprintf("(%d types)", types[i])))
	}
	if all.HasError() {
		logger.Debug("validation failed", "errors", all)
		return fmt.Errorf("%d of %d hierarchies are invalid", len(all.Errors()), len(args))
	}
	return nil
}
