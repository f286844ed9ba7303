package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"pipelined.dev/aim/project"
)

var errModules = errors.New("modules have errors")

func newCheckCmd() *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Parse modules and report errors",
		Long:  `Parses every module of the project, prints errors and the diff of allocated ids and annotations. With --write the annotated text is saved.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := projectDir(args)
			if err != nil {
				return err
			}
			return runCheck(cmd.OutOrStdout(), dir, write)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write annotated modules back")
	return cmd
}

func runCheck(out io.Writer, dir string, write bool) error {
	files, err := project.LoadAll(dir)
	if err != nil {
		return err
	}
	var count int
	for _, f := range files {
		for _, msg := range f.Module.Errors {
			fmt.Fprintf(out, "%s: %s\n", f.Path, msg)
		}
		count += len(f.Module.Errors)
		if !f.Changed() {
			continue
		}
		diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(f.Source),
			B:        difflib.SplitLines(f.Text),
			FromFile: f.Path,
			ToFile:   f.Path,
			Context:  1,
		})
		if err != nil {
			return err
		}
		fmt.Fprint(out, diff)
		if write {
			if err := f.Write(); err != nil {
				return err
			}
		}
	}
	if count > 0 {
		return fmt.Errorf("%d errors: %w", count, errModules)
	}
	return nil
}
