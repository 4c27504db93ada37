package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/walkv/internal/cli"
	"github.com/julianstephens/walkv/internal/logger"
	"github.com/julianstephens/walkv/internal/walkv"
	"github.com/julianstephens/walkv/internal/walkv/config"
)

var (
	version = "walkv v0.1.0"
)

type LogOpts struct {
	Level  string `help:"Logging level (debug, info, warn, error); overrides log.level" envvar:"WALKV_LOG_LEVEL"`
	Debug  bool   `help:"Enable debug logging (overrides --log-level)"                  envvar:"WALKV_DEBUG"`
	Stream string `help:"Console log stream (stdout, stderr, none)"                     envvar:"WALKV_LOG_STREAM"`
	Dir    string `help:"Also write rotating log files to this directory"                envvar:"WALKV_LOG_DIR"    type:"path"`
}

type CLI struct {
	Init   cli.InitCmd   `cmd:"" help:"Write a config file with default settings"`
	Get    cli.GetCmd    `cmd:"" help:"Get a value by key"`
	Put    cli.PutCmd    `cmd:"" help:"Put a key-value pair"`
	Del    cli.DelCmd    `cmd:"" help:"Delete a key"`
	Scan   cli.ScanCmd   `cmd:"" help:"List keys in order"`
	Batch  cli.BatchCmd  `cmd:"" help:"Commit the operations in a file as one transaction"`
	Stats  cli.StatsCmd  `cmd:"" help:"Display store statistics"`
	Repair cli.RepairCmd `cmd:"" help:"Drop a torn WAL tail"`
	Demo   cli.DemoCmd   `cmd:"" help:"Run a short put/get/transaction walkthrough"`

	DataDir string           `help:"Data directory holding wal.log; overrides data_dir" short:"d" envvar:"WALKV_DATA_DIR" type:"path"`
	Config  string           `help:"Path to the YAML config file"                       short:"c" envvar:"WALKV_CONFIG"   type:"path" default:"${config}"`
	LogOpts LogOpts          `embed:"" prefix:"log-" help:"Logging options"`
	Version kong.VersionFlag `help:"Show version information" short:"V"`
}

func createLogger(cfg config.LogConfig, opts LogOpts) (logger.Logger, error) {
	level := cfg.Level
	if opts.Level != "" {
		level = opts.Level
	}
	if opts.Debug {
		level = "debug"
	}
	if _, err := logger.ParseLevel(level); err != nil {
		return nil, err
	}

	stream := cfg.Stream
	if opts.Stream != "" {
		stream = opts.Stream
	}
	dir := cfg.Dir
	if opts.Dir != "" {
		dir = opts.Dir
	}

	var loggers []logger.Logger
	switch stream {
	case walkv.LogStreamStdout:
		loggers = append(loggers, logger.NewWriterLogger(level, os.Stdout, os.Stderr))
	case walkv.LogStreamStderr, "":
		loggers = append(loggers, logger.NewWriterLogger(level, os.Stderr, os.Stderr))
	case walkv.LogStreamNone:
	default:
		return nil, fmt.Errorf("unknown log stream %q", stream)
	}

	if dir != "" {
		fileLogger, err := logger.NewFileLogger(logger.FileConfig{
			Dir:        dir,
			FileName:   walkv.DefaultLogFileName,
			Level:      level,
			MaxSizeMB:  cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
		})
		if err != nil {
			return nil, err
		}
		loggers = append(loggers, fileLogger)
	}

	switch len(loggers) {
	case 0:
		return logger.NoOpLogger{}, nil
	case 1:
		return loggers[0], nil
	default:
		return logger.NewMultiLogger(loggers...), nil
	}
}

func main() {
	cliApp := &CLI{}
	ctx := kong.Parse(cliApp,
		kong.Name("walkv"),
		kong.Description("An embedded key-value store backed by a write-ahead log"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
			"config":  filepath.Join(".", walkv.DefaultConfigFileName),
		},
	)

	globals := &cli.Globals{
		ConfigPath: cliApp.Config,
		DataDir:    cliApp.DataDir,
		Out:        os.Stdout,
	}

	cfg, err := globals.LoadConfig()
	ctx.FatalIfErrorf(err)

	lg, err := createLogger(cfg.Log, cliApp.LogOpts)
	ctx.FatalIfErrorf(err)
	globals.Logger = lg

	err = ctx.Run(globals)

	if c, ok := lg.(logger.Closeable); ok {
		_ = c.Close()
	}

	if err != nil {
		if errors.Is(err, cli.ErrKeyNotFound) || errors.Is(err, os.ErrExist) {
			os.Exit(1)
		}
		lg.Error("command failed", err, "command", ctx.Command())
		ctx.FatalIfErrorf(err)
	}
}
