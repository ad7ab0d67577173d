package main

import (
	"fmt"
	"os"

	"github.com/gtemgoua/property-manager-app/pkg/config"
	"github.com/gtemgoua/property-manager-app/pkg/logger"
	"github.com/spf13/cobra"
)

var envFile string

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "property-manager",
		Short:         "Property manager back office: tenants, contracts and rent payments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load instead of ./.env")

	root.AddCommand(newServeCommand(), newMigrateCommand(), newScanAlertsCommand())
	return root
}

// loadConfig reads the configuration and initializes the global logger from it
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if envFile != "" {
		cfg, err = config.LoadWithPath(envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	logCfg := logger.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.ServiceName = cfg.App.Name
	logCfg.Development = cfg.IsDevelopment()
	logCfg.OutputPath = cfg.Log.OutputPath
	logCfg.OTLPEnabled = cfg.Log.OTLPEnabled
	logCfg.OTLPEndpoint = cfg.Log.OTLPEndpoint
	if err := logger.Init(logCfg); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}
