// datalake-setup provisions and audits the S3 data lake of the patient
// outcome prediction platform.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/goodwin282/patient-outcome-prediction-pipeline/internal/config"
	"github.com/goodwin282/patient-outcome-prediction-pipeline/internal/lake"
	"github.com/goodwin282/patient-outcome-prediction-pipeline/internal/log"
)

var (
	flagConfig   string
	flagLogLevel string

	flagProject     string
	flagEnvironment string
	flagRegion      string
	flagEndpoint    string
	flagManifest    string
)

var rootCmd = &cobra.Command{
	Use:   "datalake-setup",
	Short: "Provision and audit the patient-outcome S3 data lake",
	Long: `datalake-setup manages the bronze, silver and gold S3 buckets of the
patient outcome prediction platform: bucket creation, versioning, default
encryption, public-access blocking, tier lifecycle policies and compliance
tags, plus optional object-created notification queues.

Configuration comes from defaults, an optional YAML file (--config),
DATALAKE_* environment variables and flags, in that order.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Configure(log.Config{Level: flagLogLevel})
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "", "path to a YAML config file")
	pf.StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&flagProject, "project", "", "project name prefixing every bucket")
	pf.StringVar(&flagEnvironment, "environment", "", "deployment environment (dev, staging, prod)")
	pf.StringVar(&flagRegion, "region", "", "AWS region")
	pf.StringVar(&flagEndpoint, "endpoint", "", "AWS endpoint override (LocalStack)")
	pf.StringVar(&flagManifest, "manifest", "", "path of the JSON manifest to write")

	rootCmd.AddCommand(provisionCmd, verifyCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger := log.Base()
		logger.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration for the current command,
// with flags as the highest layer.
func loadConfig() (config.Config, error) {
	return config.Load(flagConfig, config.Overrides{
		Project:     flagProject,
		Environment: flagEnvironment,
		Region:      flagRegion,
		Endpoint:    flagEndpoint,
		Manifest:    flagManifest,
	})
}

// eventTiers translates the events config into the tier set the lake
// package expects.
func eventTiers(cfg config.Config) (map[lake.Tier]bool, error) {
	tiers := make(map[lake.Tier]bool)
	if !cfg.Events.Enabled {
		return tiers, nil
	}
	for _, name := range cfg.Events.Tiers {
		tier, err := lake.ParseTier(name)
		if err != nil {
			return nil, err
		}
		tiers[tier] = true
	}
	return tiers, nil
}
