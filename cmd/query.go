package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cottand/slottype/hierarchy"
	"github.com/cottand/slottype/hierdef"
	"github.com/cottand/slottype/typeexpr"
)

var QueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Ask questions about a hierarchy",
	Args:  cobra.NoArgs,
}

var queryHierarchy *string

func init() {
	queryHierarchy = QueryCmd.PersistentFlags().StringP("hierarchy", "H", "", "hierarchy file to query")
	_ = QueryCmd.MarkPersistentFlagRequired("hierarchy")

	QueryCmd.AddCommand(
		&cobra.Command{
			Use:          "types",
			Short:        "List the declared types",
			Args:         cobra.NoArgs,
			RunE:         withHierarchy(queryTypes),
			SilenceUsage: true,
		},
		&cobra.Command{
			Use:          "fulfills sub super",
			Short:        "Whether sub can be used where super is expected",
			Args:         cobra.ExactArgs(2),
			RunE:         withHierarchy(queryFulfills),
			SilenceUsage: true,
		},
		&cobra.Command{
			Use:          "parents type...",
			Short:        "The nearest types every one of the given types fulfills",
			Args:         cobra.MinimumNArgs(1),
			RunE:         withHierarchy(queryParents),
			SilenceUsage: true,
		},
		&cobra.Command{
			Use:          "descendants type...",
			Short:        "The nearest types that fulfill every one of the given types",
			Args:         cobra.MinimumNArgs(1),
			RunE:         withHierarchy(queryDescendants),
			SilenceUsage: true,
		},
		&cobra.Command{
			Use:          "ancestors type",
			Short:        "Every type the given type name fulfills",
			Args:         cobra.ExactArgs(1),
			RunE:         withHierarchy(queryAncestors),
			SilenceUsage: true,
		},
	)
}

type queryFunc func(cmd *cobra.Command, h *hierarchy.Hierarchy, args []string) error

func withHierarchy(f queryFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		h, err := hierdef.LoadFile(*queryHierarchy)
		if err != nil {
			return fmt.Errorf("could not load hierarchy: %w", err)
		}
		return f(cmd, h, args)
	}
}

func printList(cmd *cobra.Command, items []string) {
	if len(items) == 0 {
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), dim("(none)"))
		return
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(items, "\n"))
}

func queryTypes(cmd *cobra.Command, h *hierarchy.Hierarchy, _ []string) error {
	var lines []string
	for _, name := range h.Types() {
		params, err := h.Params(name)
		if err != nil {
			return err
		}
		line := name
		if len(params) > 0 {
			var ps []string
			for _, p := range params {
				ps = append(ps, p.Variance.String()+" "+p.Name)
			}
			line += "[" + strings.Join(ps, ", ") + "]"
		}
		supers, err := h.Supers(name)
		if err != nil {
			return err
		}
		if len(supers) > 0 {
			line += " " + dim("fulfills") + " " + strings.Join(typeexpr.Strings(supers), ", ")
		}
		lines = append(lines, line)
	}
	printList(cmd, lines)
	return nil
}

func queryFulfills(cmd *cobra.Command, h *hierarchy.Hierarchy, args []string) error {
	exprs, err := typeexpr.ParseAll(args...)
	if err != nil {
		return err
	}
	ok, err := h.Fulfills(exprs[0], exprs[1])
	if err != nil {
		return err
	}
	if ok {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s fulfills %s\n", pass("yes"), exprs[0], exprs[1])
	} else {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s does not fulfill %s\n", fail("no"), exprs[0], exprs[1])
	}
	return nil
}

func queryParents(cmd *cobra.Command, h *hierarchy.Hierarchy, args []string) error {
	exprs, err := typeexpr.ParseAll(args...)
	if err != nil {
		return err
	}
	parents, err := h.NearestCommonParents(exprs...)
	if err != nil {
		return err
	}
	printList(cmd, typeexpr.Strings(parents))
	return nil
}

func queryDescendants(cmd *cobra.Command, h *hierarchy.Hierarchy, args []string) error {
	exprs, err := typeexpr.ParseAll(args...)
	if err != nil {
		return err
	}
	descendants, err := h.NearestCommonDescendants(exprs...)
	if err != nil {
		return err
	}
	printList(cmd, typeexpr.Strings(descendants))
	return nil
}

func queryAncestors(cmd *cobra.Command, h *hierarchy.Hierarchy, args []string) error {
	ancestors, err := h.Ancestors(args[0])
	if err != nil {
		return err
	}
	printList(cmd, ancestors)
	return nil
}
