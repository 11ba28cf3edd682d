package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cottand/slottype/hierdef"
)

var CompileCmd = &cobra.Command{
	Use:          "compile hierarchy-file",
	Short:        "Pre-process a hierarchy into a snapshot that loads without recomputing its tables",
	RunE:         runCompile,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
}

var compileOutPath *string

func init() {
	compileOutPath = CompileCmd.Flags().StringP("out", "o", "", "output path (defaults to the input with a .msgpack extension)")
}

func runCompile(cmd *cobra.Command, args []string) error {
	in := args[0]
	out := *compileOutPath
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".msgpack"
	}
	if filepath.Clean(out) == filepath.Clean(in) {
		return fmt.Errorf("refusing to overwrite the input file %s", in)
	}

	h, err := hierdef.LoadFile(in)
	if err != nil {
		return fmt.Errorf("could not load hierarchy: %w", err)
	}

	f, err := os.Create(filepath.Clean(out))
	if err != nil {
		return fmt.Errorf("could not create file: %w", err)
	}
	if err := h.WriteSnapshot(f); err != nil {
		_ = f.Close()
		return fmt.Errorf("could not write snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not write snapshot: %w", err)
	}
	logger.Info("wrote snapshot", "in", in, "out", out, "types", len(h.Types()))
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", pass("ok  "), in, out)
	return nil
}
