package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neurlang/pneumonia/datasets/xray"
	"github.com/neurlang/pneumonia/device"
	"github.com/neurlang/pneumonia/report"
	"github.com/neurlang/pneumonia/runner"
	"github.com/neurlang/pneumonia/store"
)

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Train or load the checkpoint, then evaluate",
		Long: `Trains from scratch and saves the checkpoint when the checkpoint file is missing.
Otherwise loads it, prepares only the test split and skips training.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.execute(cmd, nil)
		},
	}
}

func (a *app) trainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Train from scratch, overwrite the checkpoint, then evaluate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := runner.Train
			return a.execute(cmd, &d)
		},
	}
}

func (a *app) evaluateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "evaluate",
		Short: "Load the checkpoint and evaluate it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := runner.Load
			return a.execute(cmd, &d)
		},
	}
}

// execute runs the controller, forcing d when set
func (a *app) execute(cmd *cobra.Command, d *runner.Decision) (err error) {
	info, err := device.Probe(a.cfg.Device)
	if err != nil {
		return err
	}
	a.logger.Info("device", zap.Stringer("device", info))

	c := &runner.Controller{Config: a.cfg, Logger: a.logger.Named("runner")}
	if a.cfg.History != "" {
		s, openErr := store.Open(a.cfg.History)
		if openErr != nil {
			return fmt.Errorf("history: %w", openErr)
		}
		defer func() { err = errors.Join(err, s.Close()) }()
		c.History = s
	}

	var res *runner.Result
	if d == nil {
		res, err = c.Run(cmd.Context())
	} else {
		res, err = c.Execute(cmd.Context(), *d)
	}
	if err != nil {
		a.logger.Error("run failed", zap.Error(err))
		return err
	}
	fmt.Fprintln(a.out, report.Confusion(res.Table))
	fmt.Fprintln(a.out, report.Sentence(res.Table))
	fmt.Fprintln(a.out, report.Metrics(res.Metrics))
	return nil
}

func (a *app) countsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Count the images of every split and class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, classes, err := xray.Counts(a.cfg.DataDir, xray.LabelMode(a.cfg.LabelMode))
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, report.Counts(counts, classes))
			return nil
		},
	}
}

func (a *app) historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List the recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.History == "" {
				return errors.New("history is disabled in the configuration")
			}
			s, err := store.Open(a.cfg.History)
			if err != nil {
				return err
			}
			defer s.Close()
			runs, err := s.ListRuns(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, report.Runs(runs))
			return nil
		},
	}
}

func (a *app) deviceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "device",
		Short: "Show the configured compute device",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := device.Probe(a.cfg.Device)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, info)
			return nil
		},
	}
}
