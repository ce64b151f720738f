// Package kasumi is the command-line interface of the Kasumi server.
package kasumi

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go.minekube.com/kasumi/pkg/kasumi"
	"go.minekube.com/kasumi/pkg/proto/packet"
	"go.minekube.com/kasumi/pkg/telemetry"
	"go.minekube.com/kasumi/pkg/util/interrupt"
	"go.minekube.com/kasumi/pkg/version"
)

// Execute runs App() and calls os.Exit when finished.
func Execute() {
	if err := App().Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func App() *cli.App {
	app := cli.NewApp()
	app.Name = "kasumi"
	app.Usage = "Kasumi is a lightweight Minecraft server with a flat world."
	app.Description = `A Minecraft ` + packet.MinecraftVersion + ` server that takes clients through
login and configuration into a flat world, without simulating the game.`
	app.Version = version.String()
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}

	var (
		debug      bool
		configFile string
		verbosity  int
		bind       string
	)
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       `config file (default: ./config.yml) Supports: yaml/yml, json, toml, hcl, ini, prop/properties/props, env/dotenv`,
			EnvVars:     []string{"KASUMI_CONFIG"},
			Destination: &configFile,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Aliases:     []string{"d"},
			Usage:       "Enable debug mode and highest log verbosity",
			Destination: &debug,
			EnvVars:     []string{"KASUMI_DEBUG"},
		},
		&cli.IntFlag{
			Name:        "verbosity",
			Aliases:     []string{"v"},
			Usage:       "The higher the verbosity the more logs are shown",
			EnvVars:     []string{"KASUMI_VERBOSITY"},
			Destination: &verbosity,
		},
		&cli.StringFlag{
			Name:        "bind",
			Aliases:     []string{"b"},
			Usage:       "The address to listen for connections, overrides the config",
			Destination: &bind,
		},
	}
	app.Commands = []*cli.Command{configCommand()}
	app.Action = func(c *cli.Context) error {
		v, err := initViper(configFile)
		if err != nil {
			return cli.Exit(err, 1)
		}
		if bind != "" {
			v.Set("bind", bind)
		}
		if debug {
			v.Set("debug", true)
		}

		// Load config
		cfg, err := loadConfig(v)
		if err != nil {
			return cli.Exit(err, 1)
		}

		if cfg.Debug {
			verbosity = 10
		}
		log, err := newLogger(cfg.Debug, verbosity)
		if err != nil {
			return cli.Exit(fmt.Errorf("error creating zap logger: %w", err), 1)
		}
		if v.ConfigFileUsed() != "" {
			log.Info("using config file", "config", v.ConfigFileUsed())
		}

		warns, errs := cfg.Validate()
		for _, err := range warns {
			log.Info("config validation warn", "warn", err.Error())
		}
		if len(errs) != 0 {
			for _, err := range errs {
				log.Info("config validation error", "error", err.Error())
			}
			return cli.Exit(fmt.Errorf("invalid config with %d error(s)", len(errs)), 1)
		}

		ctx, stop := interrupt.TerminationContext(logr.NewContext(c.Context, log))
		defer stop()

		cleanupTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
		if err != nil {
			return cli.Exit(fmt.Errorf("error initializing telemetry: %w", err), 1)
		}
		defer cleanupTelemetry()

		s, err := kasumi.New(kasumi.Options{Config: cfg, Logger: log})
		if err != nil {
			return cli.Exit(fmt.Errorf("error creating Kasumi: %w", err), 1)
		}
		log.Info("starting Kasumi", "version", version.String(), "bind", cfg.Bind)
		if err = s.Start(ctx); err != nil {
			return cli.Exit(fmt.Errorf("error running Kasumi: %w", err), 1)
		}
		return nil
	}
	return app
}

// initViper reads the config file, if any, and environment variables.
func initViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	kasumi.SetDefaults(v)

	v.SetEnvPrefix("KASUMI")
	v.AutomaticEnv() // read in environment variables that match
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	optional := configFile == ""
	if optional {
		configFile = "config.yml"
	}
	v.SetConfigFile(configFile)
	if err := v.ReadInConfig(); err != nil {
		if optional && errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("error reading config file %q: %w", configFile, err)
	}
	return v, nil
}

func loadConfig(v *viper.Viper) (*kasumi.Config, error) {
	var cfg kasumi.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}
	return &cfg, nil
}

// newLogger returns a new zap logger with a modified production
// or development default config to ensure human readability.
func newLogger(debug bool, v int) (l logr.Logger, err error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-v))

	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), err
	}
	return zapr.NewLogger(zl), nil
}
