package cmd

import (
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/cottand/slottype/internal/log"
)

var (
	logLevel    *int
	logSections *[]string
	noColor     *bool
)

var logger = log.DefaultLogger.With("section", "cli")

var (
	pass = color.New(color.FgGreen, color.Bold).SprintFunc()
	fail = color.New(color.FgRed, color.Bold).SprintFunc()
	dim  = color.New(color.Faint).SprintFunc()
)

// AddGlobalFlags registers the flags every command understands on root
func AddGlobalFlags(root *cobra.Command) {
	logLevel = root.PersistentFlags().IntP("log-level", "l", int(slog.LevelWarn), "log level (-4 debug, 0 info, 4 warn, 8 error)")
	logSections = root.PersistentFlags().StringSlice("log-sections", nil, "extra sections to show debug and info logs for (engine, scenario)")
	noColor = root.PersistentFlags().Bool("no-color", false, "disable coloured output")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		applyGlobalFlags(cmd)
	}
}

func applyGlobalFlags(cmd *cobra.Command) {
	if logLevel != nil {
		log.SetLevel(slog.Level(*logLevel))
	}
	if logSections != nil {
		log.EnableSections(*logSections...)
	}
	colorOff := noColor != nil && *noColor
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		colorOff = colorOff || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	} else {
		colorOff = true
	}
	color.NoColor = colorOff
}
