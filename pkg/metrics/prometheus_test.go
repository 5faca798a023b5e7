package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsWithRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetricsWithRegisterer("travelbot", reg)

	m.StrategyAttempts.WithLabelValues("keyword", "success").Inc()
	m.Resolutions.WithLabelValues("keyword").Inc()
	m.DirectorySize.Set(42)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.StrategyAttempts.WithLabelValues("keyword", "success")))
	assert.Equal(t, 42.0, testutil.ToFloat64(m.DirectorySize))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "travelbot_extraction_attempts_total")
	assert.Contains(t, names, "travelbot_resolutions_total")
	assert.Contains(t, names, "travelbot_airline_directory_records")
}

func TestSeparateRegistriesDoNotCollide(t *testing.T) {
	assert.NotPanics(t, func() {
		NewMetricsWithRegisterer("travelbot", prometheus.NewRegistry())
		NewMetricsWithRegisterer("travelbot", prometheus.NewRegistry())
	})
}
