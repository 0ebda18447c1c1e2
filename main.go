package main

import (
	"context"
	"fmt"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	ruad "github.com/taoxinyi/ruad/framework"
	"os"
	"time"
)

const (
	APP     = "ruad"
	VERSION = "0.1.0"
	ERROR   = 1
	SUCCESS = 0
)

var (
	flags *flag.FlagSet

	config     = ruad.DefaultConfig()
	configFile string
	logJSON    bool
	version    bool
)

func init() {
	flags = flag.NewFlagSet(APP, flag.ContinueOnError)
	flags.Usage = printUsages
	flags.SortFlags = false

	flags.StringVar(&config.Host, "host", config.Host, "Host to listen on")
	flags.IntVarP(&config.Port, "port", "p", config.Port, "Port to listen on")
	flags.IntVarP(&config.Backlog, "backlog", "b", config.Backlog, "Accept backlog of the listening socket, 0 for the system default")
	flags.StringVarP(&config.Root, "root", "r", config.Root, "Directory to serve files from")
	flags.IntVarP(&config.MaxConns, "max-conns", "c", config.MaxConns, "Max connections served at once, 0 for no limit")

	flags.DurationVarP(&config.ReadTimeout, "read-timeout", "T", config.ReadTimeout, "Read deadline per connection, 0 for none")
	flags.DurationVarP(&config.WriteTimeout, "write-timeout", "W", config.WriteTimeout, "Write deadline per connection, 0 for none")
	flags.DurationVar(&config.ShutdownTimeout, "shutdown-timeout", config.ShutdownTimeout, "Grace period for open connections on shutdown, 0 to interrupt them at once")
	flags.IntVar(&config.ReadBufferSize, "read-buffer", config.ReadBufferSize, "Initial read buffer size per connection")
	flags.IntVarP(&config.MaxRequestSize, "max-request-size", "M", config.MaxRequestSize, "Max request size including headers and body")
	flags.BoolVarP(&config.Strict, "strict", "s", config.Strict, "Reject over-long request tokens instead of truncating them")

	flags.StringVarP(&configFile, "config", "f", "", "YAML config file, flags given on the command line take precedence")
	flags.StringVarP(&config.LogLevel, "log-level", "l", config.LogLevel, "Log level (debug, info, warn, error)")
	flags.BoolVar(&logJSON, "log-json", false, "Write logs as JSON instead of console text")
	flags.BoolVarP(&version, "version", "v", false, "Print the version and exit")
}

func printUsages() {
	fmt.Fprintf(os.Stderr, "Usage: %s <options> [root]\nOptions:\n", APP)
	flags.PrintDefaults()
}

// loadConfigFile applies the config file underneath the flags that were set explicitly
func loadConfigFile(path string) error {
	fromFile := config
	if err := ruad.LoadConfigFile(path, &fromFile); err != nil {
		return err
	}
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			fromFile.Host = config.Host
		case "port":
			fromFile.Port = config.Port
		case "backlog":
			fromFile.Backlog = config.Backlog
		case "root":
			fromFile.Root = config.Root
		case "max-conns":
			fromFile.MaxConns = config.MaxConns
		case "read-timeout":
			fromFile.ReadTimeout = config.ReadTimeout
		case "write-timeout":
			fromFile.WriteTimeout = config.WriteTimeout
		case "shutdown-timeout":
			fromFile.ShutdownTimeout = config.ShutdownTimeout
		case "read-buffer":
			fromFile.ReadBufferSize = config.ReadBufferSize
		case "max-request-size":
			fromFile.MaxRequestSize = config.MaxRequestSize
		case "strict":
			fromFile.Strict = config.Strict
		case "log-level":
			fromFile.LogLevel = config.LogLevel
		}
	})
	config = fromFile
	return nil
}

func newLogger(level string, json bool) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	var logger zerolog.Logger
	if json {
		logger = zerolog.New(os.Stderr)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return logger.Level(lvl).With().Timestamp().Str("app", APP).Logger(), nil
}

func main() {
	err := flags.Parse(os.Args)
	// parse failed
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		printUsages()
		os.Exit(ERROR)
	}
	if version {
		fmt.Printf("%s %s\n", APP, VERSION)
		os.Exit(SUCCESS)
	}
	if configFile != "" {
		if err := loadConfigFile(configFile); err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			os.Exit(ERROR)
		}
	}
	// the positional root wins over everything
	if root := flags.Arg(1); root != "" {
		config.Root = root
	}

	logger, err := newLogger(config.LogLevel, logJSON)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		printUsages()
		os.Exit(ERROR)
	}
	config.Logger = &logger

	srv, err := ruad.NewServer(&config)
	if err != nil {
		logger.Error().Err(err).Msg("cannot create server")
		os.Exit(ERROR)
	}
	l, err := srv.Listen()
	if err != nil {
		logger.Error().Err(err).Msg("cannot listen")
		os.Exit(ERROR)
	}

	start := time.Now()
	stats, err := srv.Serve(context.Background(), l)
	if err != nil {
		logger.Error().Err(err).Msg("server failed")
	}
	printer.print(stats, time.Since(start))
	if err != nil {
		os.Exit(ERROR)
	}
}
