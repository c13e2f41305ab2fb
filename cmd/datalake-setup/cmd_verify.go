package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goodwin282/patient-outcome-prediction-pipeline/internal/lake"
	"github.com/goodwin282/patient-outcome-prediction-pipeline/internal/log"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Audit the buckets against the desired state",
	Long: `Read back every managed setting of every tier bucket and compare it
with the desired state. Each finding is printed; the command exits non-zero
when any setting has drifted.`,
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
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

	clients, err := lake.NewClients(cmd.Context(), cfg.Region, cfg.Endpoint, cfg.PathStyle)
	if err != nil {
		return err
	}

	findings, err := lake.NewVerifier(clients.S3).Verify(cmd.Context(), specs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range findings {
		status := "ok"
		if !f.OK {
			status = "DRIFT"
		}
		fmt.Fprintf(out, "%-5s  %-40s  %-25s  want=%q got=%q\n", status, f.Bucket, f.Check, f.Want, f.Got)
	}

	if failed := lake.Failures(findings); len(failed) > 0 {
		return fmt.Errorf("%d of %d checks failed", len(failed), len(findings))
	}
	logger := log.Base()
	logger.Info().Int("checks", len(findings)).Msg("data lake matches desired state")
	return nil
}
