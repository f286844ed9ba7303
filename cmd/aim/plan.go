package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"pipelined.dev/aim/project"
)

var dumper = spew.ConfigState{
	Indent:                  "\t",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func newPlanCmd() *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "plan [dir]",
		Short: "Print execution order of modules",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := projectDir(args)
			if err != nil {
				return err
			}
			return runPlan(cmd.OutOrStdout(), dir, dump)
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "dump port tables")
	return cmd
}

func runPlan(out io.Writer, dir string, dump bool) error {
	files, err := project.LoadAll(dir)
	if err != nil {
		return err
	}
	var failed error
	for _, f := range files {
		m := f.Module
		if err := m.Plan(); err != nil {
			fmt.Fprintf(out, "%s: %v\n", m.ID, err)
			failed = err
			continue
		}
		fmt.Fprintf(out, "%s: %s\n", m.ID, strings.Join(m.Order, " -> "))
		if dump {
			dumper.Fdump(out, m.Ports)
		}
	}
	return failed
}
