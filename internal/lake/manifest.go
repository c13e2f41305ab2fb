package lake

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/goodwin282/patient-outcome-prediction-pipeline/internal/log"
)

// Manifest is the data_lake_config.json document a successful provisioning
// run leaves behind for the rest of the platform to consume.
type Manifest struct {
	Project     string            `json:"project"`
	Environment string            `json:"environment"`
	Region      string            `json:"region"`
	RunID       string            `json:"run_id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Buckets     map[string]string `json:"buckets"`
	Queues      map[string]string `json:"queues,omitempty"`
}

// NewManifest captures a provisioning result.
func NewManifest(project, environment, region string, res *Result) Manifest {
	m := Manifest{
		Project:     project,
		Environment: environment,
		Region:      region,
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Buckets:     make(map[string]string, len(res.Buckets)),
	}
	for tier, name := range res.Buckets {
		m.Buckets[string(tier)] = name
	}
	if len(res.Queues) > 0 {
		m.Queues = make(map[string]string, len(res.Queues))
		for tier, url := range res.Queues {
			m.Queues[string(tier)] = url
		}
	}
	return m
}

// Write stores the manifest as indented JSON at path.
func (m Manifest) Write(path string) error {
	raw, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	logger := log.WithComponent("manifest")
	logger.Info().Str("path", path).Msg("manifest written")
	return nil
}
