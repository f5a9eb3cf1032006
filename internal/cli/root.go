package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/llxisdsh/parkinglot/internal/log"
	"github.com/llxisdsh/parkinglot/lockbench"
)

type benchArgs struct {
	workInside   int
	workOutside  int
	acquisitions int
	totalIters   int64
	numLocks     int
	randomLocks  bool
	kind         string
	readPercent  int
	duration     time.Duration
}

// NewRootCmd returns the lockbench command.
func NewRootCmd(name, shortDesc, longDesc string) *cobra.Command {
	args := &benchArgs{}

	cmd := &cobra.Command{
		Use:           name + " [threads]",
		Short:         shortDesc,
		Long:          longDesc,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("log_level", "warn", "Set the log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log_format", "text", "Set the log format (text, logfmt, json)")

	cmd.PersistentPreRunE = func(cc *cobra.Command, _ []string) error {
		flags := cc.Flags()

		var merr error

		logLevel, err := flags.GetString("log_level")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		logFormat, err := flags.GetString("log_format")
		if err != nil {
			merr = multierror.Append(merr, err)
		}

		if merr != nil {
			return fmt.Errorf("invalid argument: %w", merr)
		}

		h, err := log.CreateHandler(cc.ErrOrStderr(), logLevel, logFormat)
		if err != nil {
			return fmt.Errorf("failed creating log handler: %w", err)
		}
		slog.SetDefault(slog.New(h))

		return nil
	}

	flags := cmd.Flags()
	flags.IntVar(&args.workInside, "work-inside", 1, "units of work inside the critical section")
	flags.IntVar(&args.workOutside, "work-outside", 0, "units of work outside the critical section")
	flags.IntVar(&args.acquisitions, "acquisitions", 1, "lock acquisitions per loop iteration")
	flags.Int64Var(&args.totalIters, "total-iters", 0, "fixed iterations per thread (0 = time-based)")
	flags.IntVar(&args.numLocks, "num-locks", 1, "number of independent locks (round-robin assignment)")
	flags.BoolVar(&args.randomLocks, "random-locks", false, "pick a random lock per acquisition")
	flags.StringVar(&args.kind, "lock", string(lockbench.KindMutex), "lock under test (mutex, rwmutex, recursive, sync)")
	flags.IntVar(&args.readPercent, "read-percent", 0, "percent of acquisitions taken in read mode (rwmutex only)")
	flags.DurationVar(&args.duration, "duration", time.Second, "length of each time-based run")

	cmd.RunE = func(cc *cobra.Command, posArgs []string) error {
		threads := "1-10"
		if len(posArgs) == 1 {
			threads = posArgs[0]
		}

		lo, hi, cfg, err := args.config(threads)
		if err != nil {
			return err
		}

		out := cc.OutOrStdout()
		tbl := newTable(out, isTerminal(out), cfg.TotalIters > 0)
		tbl.header()
		for n := lo; n <= hi; n++ {
			cfg.NumThreads = n
			res, err := lockbench.Run(cc.Context(), cfg)
			if err != nil {
				return fmt.Errorf("run with %d threads: %w", n, err)
			}
			tbl.row(n, res)
		}

		return nil
	}

	return cmd
}

func (a *benchArgs) config(threads string) (int, int, lockbench.Config, error) {
	var merr error

	lo, hi, err := lockbench.ParseThreads(threads)
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	kind, err := lockbench.ParseKind(a.kind)
	if err != nil {
		merr = multierror.Append(merr, err)
	}

	cfg := lockbench.DefaultConfig(lo)
	cfg.WorkInside = a.workInside
	cfg.WorkOutside = a.workOutside
	cfg.NumAcquisitions = a.acquisitions
	cfg.TotalIters = a.totalIters
	cfg.NumLocks = a.numLocks
	cfg.RandomLocks = a.randomLocks
	cfg.Kind = kind
	cfg.ReadPercent = a.readPercent

	cfg.Duration = a.duration
	if a.randomLocks && a.numLocks < 2 {
		merr = multierror.Append(merr, errors.New("--random-locks requires --num-locks > 1"))
	}

	if merr != nil {
		return 0, 0, cfg, fmt.Errorf("invalid argument: %w", merr)
	}
	if err := cfg.Validate(); err != nil {
		return 0, 0, cfg, err
	}

	return lo, hi, cfg, nil
}
