/*
main.go - Application entry point

PURPOSE:
  The rota command serves the HTTP API, generates schedules from the
  command line, and migrates rosters into the SQLite store.

COMMANDS:
  serve              Start the HTTP API with graceful shutdown
  generate           Print schedules as JSON (store or legacy file)
  import roster      Load an .xlsx/.csv roster into the store
  import legacy      Load a legacy escalas_store.json into the store
  export legacy      Write the store in the legacy JSON shape
  export template    Write a blank roster workbook

CONFIGURATION:
  --config points at a YAML file (default: search ./config.yaml,
  $HOME/.rota, /etc/rota). ROTA_* environment variables override it,
  e.g. ROTA_DATABASE_PATH=":memory:" or ROTA_DATABASE_DRIVER=memory.

LOGGING:
  zap JSON logs on stderr, or to log.file with rotation (lumberjack).
  stdout is reserved for command output.

EXAMPLES:
  rota serve --config ./config.yaml
  rota import roster ./funcionarios.xlsx
  rota generate --start 2025-03-01 --end 2025-03-31 --post "SHOPPING"
  rota generate --legacy ./escalas_store.json --start 2025-01-01 --end 2025-01-31

SEE ALSO:
  - config/config.go: Configuration keys
  - api/server.go: Router configuration
*/
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/warp/rota-engine/config"
	"github.com/warp/rota-engine/rota"
	"github.com/warp/rota-engine/store/memory"
	"github.com/warp/rota-engine/store/sqlite"
)

var (
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "rota",
		Short:         "Work/rest day schedules for rotating shifts",
		Long:          "Classify every day of a period for each employee from rotation, holidays and manual overrides",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
			if cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger(cfg.Log.Level) // Fallback to console
				}
			} else {
				initLogger(cfg.Log.Level)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(exportCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// repository is a configuration store the commands can close.
type repository interface {
	rota.Repository
	Close() error
}

// openStore opens the configured store. The memory driver keeps nothing
// between runs and is meant for `serve` with demo scenarios.
func openStore() (repository, error) {
	if cfg.Database.Driver == config.DriverMemory {
		return memory.NewMemory(), nil
	}
	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Database.Path, err)
	}
	return store, nil
}

func parseLevel(level string) zapcore.Level {
	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}
	return zapLevel
}

func initLogger(level string) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(parseLevel(level))
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    100, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		parseLevel(level),
	)

	return zap.New(core), nil
}
