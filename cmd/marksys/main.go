package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/marking-system/backend/internal/config"
	"github.com/marking-system/backend/internal/marking"
	"github.com/marking-system/backend/internal/storage"
)

// app holds what every sub-command needs, built once before the command runs
type app struct {
	cfg     *config.Config
	logger  *logrus.Entry
	service *marking.Service
}

func main() {
	if err := newRootCmd(&app{}).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "marksys",
		Short:         "Student marking system with plagiarism checks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// help and completion run without touching the table
	for _, cmd := range []*cobra.Command{
		registerCmd(a),
		uploadCmd(a),
		marksCmd(a),
		showCmd(a),
		listCmd(a),
		serveCmd(a),
	} {
		cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
			return a.setup()
		}
		rootCmd.AddCommand(cmd)
	}
	return rootCmd
}

// setup loads configuration, sets up logging and opens the record table
func (a *app) setup() error {
	a.cfg = config.Load()
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(a.cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger.WithField("service", "marksys")

	if err := os.MkdirAll(a.cfg.Store.AssignmentsDir, 0755); err != nil {
		return fmt.Errorf("failed to create assignments directory: %w", err)
	}

	store, err := storage.NewStore(a.cfg.Store.TablePath, a.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	a.service = marking.NewService(a.cfg, a.logger, store)
	return nil
}

func newLogger(cfg config.LogConfig) (*logrus.Logger, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return logger, nil
}
