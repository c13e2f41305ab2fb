package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/goodwin282/patient-outcome-prediction-pipeline/internal/log"
)

// applyEnv overlays DATALAKE_* environment variables onto the configuration.
// Empty variables are ignored so an exported-but-blank value never clears a
// file setting.
func (c *Config) applyEnv() {
	c.Project = envString("DATALAKE_PROJECT", c.Project)
	c.Environment = envString("DATALAKE_ENVIRONMENT", c.Environment)
	c.Region = envString("DATALAKE_REGION", c.Region)
	c.Endpoint = envString("DATALAKE_ENDPOINT", c.Endpoint)
	c.PathStyle = envBool("DATALAKE_PATH_STYLE", c.PathStyle)
	c.Manifest = envString("DATALAKE_MANIFEST", c.Manifest)
	c.Events.Enabled = envBool("DATALAKE_EVENTS", c.Events.Enabled)
	c.Events.Tiers = envList("DATALAKE_EVENTS_TIERS", c.Events.Tiers)
}

func envString(key, current string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return current
	}
	logger := log.WithComponent("config")
	logger.Debug().
		Str("key", key).
		Str("value", v).
		Msg("using environment override")
	return v
}

func envBool(key string, current bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return current
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		logger := log.WithComponent("config")
		logger.Warn().
			Str("key", key).
			Str("value", v).
			Msg("invalid boolean in environment variable, keeping previous value")
		return current
	}
	return b
}

// envList parses a comma-separated environment variable into a list,
// trimming whitespace and dropping empty entries.
func envList(key string, current []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return current
	}
	parts := lo.FilterMap(strings.Split(v, ","), func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
	if len(parts) == 0 {
		return current
	}
	logger := log.WithComponent("config")
	logger.Debug().
		Str("key", key).
		Strs("value", parts).
		Msg("using environment override")
	return parts
}
