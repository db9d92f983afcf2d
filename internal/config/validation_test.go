package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*DroverConfig)
		fields []string
	}{
		{
			name:   "defaults are valid",
			modify: func(*DroverConfig) {},
		},
		{
			name:   "json logging",
			modify: func(c *DroverConfig) { c.Logging.Format = "json" },
		},
		{
			name:   "unknown format",
			modify: func(c *DroverConfig) { c.Logging.Format = "xml" },
			fields: []string{"logging.format"},
		},
		{
			name:   "empty root service",
			modify: func(c *DroverConfig) { c.Analysis.RootService = " " },
			fields: []string{"analysis.rootService"},
		},
		{
			name: "bad migration section",
			modify: func(c *DroverConfig) {
				c.Migration.PerServiceTime = 0
				c.Migration.DefaultBatchDelay = -time.Second
				c.Migration.LargeScaleThreshold = 0
				c.Migration.ScaleHintThreshold = -1
			},
			fields: []string{
				"migration.perServiceTime",
				"migration.defaultBatchDelay",
				"migration.largeScaleThreshold",
				"migration.scaleHintThreshold",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var errs ValidationErrors
			require.ErrorAs(t, err, &errs)
			var fields []string
			for _, e := range errs {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	var errs ValidationErrors
	assert.False(t, errs.HasErrors())
	assert.Equal(t, "no validation errors", errs.Error())

	errs.Add("a", "is required")
	assert.Equal(t, "field 'a': is required", errs.Error())

	errs.Add("", "something else", 42)
	assert.Equal(t, "validation failed: field 'a': is required; something else", errs.Error())
	assert.Equal(t, 42, errs[1].Value)
}

func TestMigrationConfig_PlannerConfig(t *testing.T) {
	m := GetDefaultConfig().Migration
	m.PerServiceTime = time.Minute

	pc := m.PlannerConfig()
	assert.Equal(t, time.Minute, pc.PerServiceTime)
	assert.Equal(t, m.LargeScaleThreshold, pc.LargeScaleThreshold)
	assert.Equal(t, m.ScaleHintThreshold, pc.ScaleHintThreshold)
}
