package main

import (
	"github.com/spf13/cobra"

	"github.com/goodwin282/patient-outcome-prediction-pipeline/internal/lake"
	"github.com/goodwin282/patient-outcome-prediction-pipeline/internal/log"
)

var flagDryRun bool

var provisionCmd = &cobra.Command{
	Use:   "provision",
	Short: "Create and configure the bronze, silver and gold buckets",
	Long: `Create the three tier buckets and apply the managed settings:
versioning, AES256 default encryption with bucket keys, a full public
access block, tier lifecycle rules and the compliance tag set. Re-running
against existing buckets re-applies the settings.

After a fully successful run the JSON manifest is written for the rest of
the platform to consume.`,
	RunE: runProvision,
}

func init() {
	provisionCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "log intended actions without calling AWS")
}

func runProvision(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	events, err := eventTiers(cfg)
	if err != nil {
		return err
	}
	specs, err := lake.Specs(cfg.Project, cfg.Environment, cfg.Region, events)
	if err != nil {
		return err
	}

	var s3c lake.S3API
	var sqsc lake.SQSAPI
	if !flagDryRun {
		clients, err := lake.NewClients(cmd.Context(), cfg.Region, cfg.Endpoint, cfg.PathStyle)
		if err != nil {
			return err
		}
		s3c, sqsc = clients.S3, clients.SQS
	}

	res, err := lake.NewProvisioner(s3c, sqsc, flagDryRun).Run(cmd.Context(), specs)
	if err != nil {
		return err
	}
	if flagDryRun {
		logger := log.Base()
		logger.Info().Msg("dry run complete, no changes made")
		return nil
	}

	return lake.NewManifest(cfg.Project, cfg.Environment, cfg.Region, res).Write(cfg.Manifest)
}
