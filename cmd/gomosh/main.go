// Command gomosh datamoshes an mp4 video by shuffling its samples.
//
//	gomosh [flags] <input> <output>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ugparu/gomosh/config"
	"github.com/ugparu/gomosh/mosh"
	"github.com/ugparu/gomosh/premux"
	"github.com/ugparu/gomosh/utils/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type cliArgs struct {
	cfg    config.Config
	input  string
	output string
}

func parseArgs(args []string, stderr io.Writer) (cliArgs, error) {
	fs := flag.NewFlagSet("gomosh", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "usage: gomosh [flags] <input> <output>")
		fs.PrintDefaults()
	}

	var (
		configPath      string
		premuxed        bool
		removeTemporary bool
		fraction        float64
		seed            uint64
		syncTracks      bool
		parallel        bool
		atomic          bool
		logLevel        string
		pprofAddr       string
	)
	fs.StringVar(&configPath, "config", "", "YAML configuration file")
	fs.BoolVar(&premuxed, "premuxed", false, "skip the ffmpeg pre-processing, the input is already premuxed")
	fs.BoolVar(&premuxed, "p", false, "shorthand for -premuxed")
	fs.BoolVar(&removeTemporary, "remove-temporary", false, "remove the intermediate file")
	fs.BoolVar(&removeTemporary, "r", false, "shorthand for -remove-temporary")
	fs.Float64Var(&fraction, "shuffle-start-fraction", 0, "where in each track the shuffle starts, from 0 to 1")
	fs.Float64Var(&fraction, "s", 0, "shorthand for -shuffle-start-fraction")
	fs.Uint64Var(&seed, "seed", 0, "seed for reproducible shuffles")
	fs.BoolVar(&syncTracks, "sync-tracks", false, "shuffle every track along the first video track")
	fs.BoolVar(&parallel, "parallel", false, "copy tracks concurrently")
	fs.BoolVar(&atomic, "atomic", true, "write through a temporary file renamed on success")
	fs.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "log level, trace to fatal")
	fs.StringVar(&pprofAddr, "pprof", "", "listen address of the pprof endpoint")

	if err := fs.Parse(args); err != nil {
		return cliArgs{}, err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return cliArgs{}, errors.New("expected <input> and <output>")
	}

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return cliArgs{}, err
		}
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "premuxed", "p":
			cfg.Premux.Skip = premuxed
		case "remove-temporary", "r":
			cfg.Premux.RemoveTemporary = removeTemporary
		case "shuffle-start-fraction", "s":
			cfg.Shuffle.StartFraction = fraction
		case "seed":
			cfg.Shuffle.Seed = &seed
		case "sync-tracks":
			cfg.Shuffle.SyncTracks = syncTracks
		case "parallel":
			cfg.Shuffle.Parallel = parallel
		case "atomic":
			cfg.Output.Atomic = atomic
		case "log-level":
			cfg.Log.Level = logLevel
		case "pprof":
			cfg.Pprof = pprofAddr
		}
	})
	if err := cfg.Validate(); err != nil {
		return cliArgs{}, err
	}

	return cliArgs{cfg: cfg, input: fs.Arg(0), output: fs.Arg(1)}, nil
}

func options(cfg config.Config) mosh.Options {
	opts := mosh.Options{
		Fraction:   cfg.Shuffle.StartFraction,
		SyncTracks: cfg.Shuffle.SyncTracks,
		Parallel:   cfg.Shuffle.Parallel,
		Atomic:     cfg.Output.Atomic,
	}
	if cfg.Shuffle.Seed != nil {
		opts.Rand = mosh.SeededRand(*cfg.Shuffle.Seed)
	}
	return opts
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "gomosh: %v\n", err)
		return 2
	}
	cfg := a.cfg

	lvl, _ := logger.ParseLevel(cfg.Log.Level)
	logger.Init(lvl)

	if cfg.Pprof != "" {
		srv := newServer(cfg.Pprof)
		go srv.Start()
		defer srv.Close()
	}

	temporary := a.input
	if !cfg.Premux.Skip {
		temporary = premux.TemporaryPath(a.input)
		fmt.Fprintln(stdout, "converting all possible frames to p-frames...")
		if err = premux.New(cfg.Premux.FFmpeg).Run(ctx, a.input, temporary); err != nil {
			return fail(stderr, "pre-processing", err)
		}
	}

	fmt.Fprintln(stdout, "datamoshing video...")
	if err = mosh.File(ctx, temporary, a.output, options(cfg)); err != nil {
		return fail(stderr, "remux", err)
	}

	if cfg.Premux.RemoveTemporary && !cfg.Premux.Skip {
		fmt.Fprintln(stdout, "removing temporaries...")
		if err = os.Remove(temporary); err != nil {
			return fail(stderr, "cleanup", err)
		}
	}
	fmt.Fprintln(stdout, "video has been datamoshed!")
	return 0
}

func fail(stderr io.Writer, stage string, err error) int {
	logger.Errorf("gomosh", "%s failed: %v", stage, err)
	fmt.Fprintf(stderr, "gomosh: %s: %v\n", stage, err)
	return 1
}
