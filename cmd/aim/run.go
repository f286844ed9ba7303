package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"pipelined.dev/aim"
	"pipelined.dev/aim/config"
	"pipelined.dev/aim/metric"
	"pipelined.dev/aim/portaudio"
	"pipelined.dev/aim/project"
	"pipelined.dev/aim/signal"
	"pipelined.dev/aim/wav"
)

type runOptions struct {
	module      string
	frames      int
	output      string
	wavPath     string
	watch       bool
	metricsAddr string
}

func newRunCmd(logger logrus.FieldLogger) *cobra.Command {
	var opts runOptions
	cmd := &cobra.Command{
		Use:   "run [dir]",
		Short: "Run a module",
		Long:  `Runs a module of the project and sends its output to the audio device or a wav file. Settings are read from aim.yaml in the project directory, flags override them.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := projectDir(args)
			if err != nil {
				return err
			}
			cfg, err := config.Load(filepath.Join(dir, config.File))
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("frames") {
				cfg.Frames = opts.frames
			}
			if flags.Changed("output") {
				cfg.Output = opts.output
			}
			if flags.Changed("wav") {
				cfg.Wav.Path = opts.wavPath
			}
			if flags.Changed("metrics-addr") {
				cfg.Metrics.Addr = opts.metricsAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runModule(cmd.Context(), logger, dir, cfg, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.module, "module", "m", "main", "name of the module file without extension")
	flags.IntVarP(&opts.frames, "frames", "n", -1, "number of frames to run, negative runs until interrupted")
	flags.StringVarP(&opts.output, "output", "o", config.OutputPortaudio, "output: portaudio, wav or none")
	flags.StringVar(&opts.wavPath, "wav", "out.wav", "path of the wav output")
	flags.BoolVarP(&opts.watch, "watch", "w", false, "reload the module when its file changes")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	return cmd
}

func runModule(ctx context.Context, logger logrus.FieldLogger, dir string, cfg config.Config, opts runOptions) error {
	path := filepath.Join(dir, opts.module+".txt")
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	m := serveMetrics(ctx, logger, cfg.Metrics.Addr)
	var (
		changes <-chan string
		errs    <-chan error
	)
	if opts.watch {
		w, err := project.NewWatcher(dir)
		if err != nil {
			return err
		}
		c := make(chan string, 1)
		e := make(chan error, 1)
		go func() {
			e <- w.Run(ctx, func(p string) {
				select {
				case c <- p:
				default:
				}
			})
		}()
		changes, errs = c, e
	}

	for {
		f, err := project.Load(path)
		if err != nil {
			return err
		}
		if err := f.Write(); err != nil {
			return err
		}
		sink, err := newSink(cfg)
		if err != nil {
			return err
		}
		r, err := aim.NewRunner(f.Module, cfg.Environment(), sink,
			aim.WithLogger(logger),
			aim.WithMetric(m),
			aim.WithBuffers(cfg.Buffers),
		)
		if err != nil {
			return err
		}

		runCtx, stop := context.WithCancel(ctx)
		done := make(chan error, 1)
		go func() {
			done <- r.Run(runCtx, cfg.Frames)
		}()
		reload, errWatch := awaitReload(changes, errs, done, path, f.Text)
		stop()
		errRun := <-done
		if errWatch != nil {
			logger.WithError(errWatch).Error("watch stopped")
			return errWatch
		}
		if !reload || errRun != nil {
			return errRun
		}
		logger.WithField("module", f.Module.ID).Info("reload")
	}
}

// awaitReload blocks until the run is done, the module file is changed or
// the watcher fails. It returns true if the module needs to be reloaded.
// The run is still going unless done was received, the result is put back
// in that case.
func awaitReload(changes <-chan string, errs <-chan error, done chan error, path, text string) (bool, error) {
	for {
		select {
		case err := <-done:
			done <- err
			return false, nil
		case err := <-errs:
			if err != nil {
				return false, err
			}
			errs = nil
		case p := <-changes:
			if p != path {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil || string(data) == text {
				continue
			}
			return true, nil
		}
	}
}

// serveMetrics starts the metrics endpoint until ctx is done. Empty address
// disables metrics.
func serveMetrics(ctx context.Context, logger logrus.FieldLogger, addr string) *metric.Metric {
	if addr == "" {
		return nil
	}
	reg := prometheus.NewRegistry()
	m := metric.New(reg)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("metrics server")
		}
	}()
	go func() {
		<-ctx.Done()
		srv.Close()
	}()
	return m
}

func newSink(cfg config.Config) (aim.Sink, error) {
	switch cfg.Output {
	case config.OutputWav:
		return wav.NewSink(cfg.Wav.Path, signal.BitDepth(cfg.Wav.BitDepth))
	case config.OutputPortaudio:
		return portaudio.NewSink(), nil
	case config.OutputNone:
		return discard{}, nil
	}
	return nil, fmt.Errorf("%w: unknown output %q", config.ErrInvalid, cfg.Output)
}

// discard drops all frames.
type discard struct{}

func (discard) Sink(string, int, int, int) (func(signal.Float64) error, error) {
	return func(signal.Float64) error { return nil }, nil
}
