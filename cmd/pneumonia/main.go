package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/neurlang/pneumonia/config"
)

// app is the state shared by every subcommand
type app struct {
	configPath string
	verbose    bool
	pgo        string

	cfg    config.Config
	logger *zap.Logger
	out    io.Writer
	stop   func()
}

// newRootCmd builds the command tree. The returned cleanup stops profiling and flushes the
// logger; it must run even when the command fails.
func newRootCmd(out io.Writer) (*cobra.Command, func()) {
	a := &app{out: out, logger: zap.NewNop()}
	root := &cobra.Command{
		Use:   "pneumonia",
		Short: "Chest X-ray pneumonia classifier",
		Long: `Trains a hashtron ensemble on a chest_xray style image tree and reports how it
classifies the test split.

The run command trains when the checkpoint file is missing and loads it otherwise.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging := zap.NewProductionConfig()
			if a.verbose {
				logging.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			var err error
			a.logger, err = logging.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.cfg, err = config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.pgo != "" {
				a.stop, err = startProfile(a.pgo)
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	root.PersistentFlags().StringVar(&a.pgo, "pgo", "", "write a cpu profile to this file (e.g. default.pgo)")

	root.AddCommand(
		a.runCmd(),
		a.trainCmd(),
		a.evaluateCmd(),
		a.countsCmd(),
		a.historyCmd(),
		a.deviceCmd(),
	)
	return root, a.close
}

func (a *app) close() {
	if a.stop != nil {
		a.stop()
		a.stop = nil
	}
	_ = a.logger.Sync()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	root, cleanup := newRootCmd(os.Stdout)
	err := root.ExecuteContext(ctx)
	cleanup()
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
