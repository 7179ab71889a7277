// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dposnet/dposd/domain/transactionpool"
	"github.com/dposnet/dposd/infrastructure/logger"
	"github.com/dposnet/dposd/version"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	defaultConfigFilename          = "dposd.conf"
	defaultDataDirname             = "data"
	defaultLogLevel                = "info"
	defaultLogDirname              = "logs"
	defaultLogFilename             = "dposd.log"
	defaultErrLogFilename          = "dposd_err.log"
	defaultTransactionTimeout      = 3 * time.Hour
	defaultMaxTransactionsPerQueue = 10000
	defaultExpiryInterval          = 30 * time.Second
	minExpiryInterval              = time.Second
)

var (
	// DefaultAppDir is the default home directory for dposd.
	DefaultAppDir = appDir()

	defaultConfigFile = filepath.Join(DefaultAppDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(DefaultAppDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(DefaultAppDir, defaultLogDirname)
)

// Flags defines the configuration options for dposd.
//
// See loadConfig for details on the configuration load process.
type Flags struct {
	ShowVersion             bool          `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile              string        `short:"C" long:"configfile" description:"Path to configuration file"`
	DataDir                 string        `short:"b" long:"datadir" description:"Directory to store data"`
	LogDir                  string        `long:"logdir" description:"Directory to log output."`
	DebugLevel              string        `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	Profile                 string        `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65536"`
	MetricsListen           string        `long:"metricslisten" description:"Serve prometheus metrics on the given interface/port (eg. 127.0.0.1:9100) -- Metrics are disabled if empty"`
	TransactionTimeout      time.Duration `long:"txtimeout" description:"How long a transaction may wait in the pool before it expires. Valid time units are {s, m, h}"`
	MaxTransactionsPerQueue int           `long:"maxtxsperqueue" description:"Maximum number of transactions in every pool queue"`
	ExpiryInterval          time.Duration `long:"expiryinterval" description:"How often the pool looks for expired transactions. Valid time units are {s, m, h}. Minimum 1 second"`
	SnapshotHistory         uint64        `long:"snapshothistory" description:"Number of past round snapshots to keep, which bounds how many blocks can be deleted -- Uses the network default if 0"`
	NetworkFlags
}

// Config defines the configuration options for dposd.
//
// See loadConfig for details on the configuration load process.
type Config struct {
	*Flags
}

// TransactionPoolConfig returns the transaction pool configuration the
// flags describe
func (cfg *Config) TransactionPoolConfig() *transactionpool.Config {
	poolConfig := transactionpool.DefaultConfig(cfg.NetParams())
	poolConfig.TransactionTimeout = cfg.TransactionTimeout
	poolConfig.MaxTransactionsPerQueue = cfg.MaxTransactionsPerQueue
	return poolConfig
}

func appDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".dposd")
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(DefaultAppDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

func defaultFlags() *Flags {
	return &Flags{
		ConfigFile:              defaultConfigFile,
		DebugLevel:              defaultLogLevel,
		DataDir:                 defaultDataDir,
		LogDir:                  defaultLogDir,
		TransactionTimeout:      defaultTransactionTimeout,
		MaxTransactionsPerQueue: defaultMaxTransactionsPerQueue,
		ExpiryInterval:          defaultExpiryInterval,
	}
}

// LoadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
// 	1) Start with a default config with sane settings
// 	2) Pre-parse the command line to check for an alternative config file
// 	3) Load configuration file overwriting defaults with any specified options
// 	4) Parse CLI options and overwrite/add any specified options
//
// The above results in dposd functioning properly without any config settings
// while still allowing the user to override settings with config files and
// command line options. Command line options always take precedence.
func LoadConfig() (*Config, error) {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		return nil, err
	}

	// Initialize log rotation. After log rotation has been initialized, the
	// logger variables may be used.
	logger.InitLog(filepath.Join(cfg.LogDir, defaultLogFilename), filepath.Join(cfg.LogDir, defaultErrLogFilename))

	// Parse, validate, and set debug log level(s).
	if err := logger.ParseAndSetLogLevels(cfg.DebugLevel); err != nil {
		err := errors.Errorf("LoadConfig: %s", err.Error())
		fmt.Fprintln(os.Stderr, err)
		return nil, err
	}
	return cfg, nil
}

func parseConfig(args []string) (*Config, error) {
	cfgFlags := defaultFlags()

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified. Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := *cfgFlags
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			return nil, err
		}
	}

	// Show the version and exit if the version flag was specified.
	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", version.Version())
		os.Exit(0)
	}

	// Load additional config from file.
	var configFileError error
	parser := flags.NewParser(cfgFlags, flags.Default)
	cfg := &Config{
		Flags: cfgFlags,
	}
	err = flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
	if err != nil {
		if _, ok := err.(*os.PathError); !ok {
			fmt.Fprintf(os.Stderr, "Error parsing config "+
				"file: %s\n", err)
			fmt.Fprintln(os.Stderr, usageMessage)
			return nil, err
		}
		configFileError = err
	}

	// Parse command line options again to ensure they take precedence.
	_, err = parser.ParseArgs(args)
	if err != nil {
		if e, ok := err.(*flags.Error); !ok || e.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return nil, err
	}

	err = cfg.ResolveNetwork(parser)
	if err != nil {
		return nil, err
	}

	err = cfg.validate()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, err
	}

	if cfg.SnapshotHistory != 0 {
		cfg.NetParams().RoundSnapshotHistory = cfg.SnapshotHistory
	}

	// Append the network type to the data directory so it is "namespaced"
	// per network. All data is specific to a network, so namespacing the
	// data directory means each individual piece of serialized data does
	// not have to worry about changing names per network and such.
	cfg.DataDir = cleanAndExpandPath(cfg.DataDir)
	cfg.DataDir = filepath.Join(cfg.DataDir, cfg.NetParams().Name)

	// Append the network type to the log directory so it is "namespaced"
	// per network in the same fashion as the data directory.
	cfg.LogDir = cleanAndExpandPath(cfg.LogDir)
	cfg.LogDir = filepath.Join(cfg.LogDir, cfg.NetParams().Name)

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", logger.SupportedSubsystems())
		os.Exit(0)
	}

	// Warn about missing config file only after all other configuration is
	// done. This prevents the warning on help messages and invalid
	// options. Note this should go directly before the return.
	if configFileError != nil {
		log.Warnf("%s", configFileError)
	}

	return cfg, nil
}

func (cfg *Config) validate() error {
	funcName := "loadConfig"

	// Validate profile port number
	if cfg.Profile != "" {
		profilePort, err := strconv.Atoi(cfg.Profile)
		if err != nil || profilePort < 1024 || profilePort > 65535 {
			return errors.Errorf("%s: The profile port must be between 1024 and 65535", funcName)
		}
	}

	if cfg.MetricsListen != "" {
		_, _, err := net.SplitHostPort(cfg.MetricsListen)
		if err != nil {
			return errors.Errorf("%s: The metricslisten value of '%s' is invalid: %s",
				funcName, cfg.MetricsListen, err)
		}
	}

	if cfg.TransactionTimeout <= 0 {
		return errors.Errorf("%s: The txtimeout option must be positive -- parsed [%s]",
			funcName, cfg.TransactionTimeout)
	}

	if cfg.MaxTransactionsPerQueue < 1 {
		return errors.Errorf("%s: The maxtxsperqueue option must be at least 1 -- parsed [%d]",
			funcName, cfg.MaxTransactionsPerQueue)
	}

	// Don't allow expiry intervals that are too short.
	if cfg.ExpiryInterval < minExpiryInterval {
		return errors.Errorf("%s: The expiryinterval option may not be less than %s -- parsed [%s]",
			funcName, minExpiryInterval, cfg.ExpiryInterval)
	}

	if cfg.SnapshotHistory != 0 && cfg.SnapshotHistory < 2 {
		return errors.Errorf("%s: The snapshothistory option must keep at least 2 rounds -- parsed [%d]",
			funcName, cfg.SnapshotHistory)
	}
	return nil
}
