package main

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pipelined.dev/aim/log"
)

var logger = log.GetLogger()

func main() {
	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd(logger).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(logger *logrus.Logger) *cobra.Command {
	var debug bool
	root := &cobra.Command{
		Use:           "aim",
		Short:         "Aim builds and plays audio graphs written in plain text",
		Long:          `Aim reads *.txt modules of a project directory, annotates errors in place and runs the graphs.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if cmd.Flags().Changed("debug") {
				logger.SetLevel(log.Level(debug))
			}
		},
	}
	root.PersistentFlags().BoolVar(&debug, "debug", log.Debug(), "log at debug level, overrides "+log.DebugEnv)
	root.AddCommand(
		newCheckCmd(),
		newPlanCmd(),
		newRunCmd(logger),
	)
	return root
}

// projectDir returns the directory argument or the working directory.
func projectDir(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	return os.Getwd()
}
