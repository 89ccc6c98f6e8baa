package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveBuild("widgets", 1500*time.Millisecond, true)
	pr.ObserveBuild("widgets", 200*time.Millisecond, false)
	pr.ObserveSync(3*time.Second, true)
	pr.IncPublishOutcome(OutcomeDeployed)
	pr.SetLastSuccess("widgets", time.Unix(1700000000, 0))

	require.Equal(t, 1.0, testutil.ToFloat64(pr.buildResults.WithLabelValues("widgets", "success")))
	require.Equal(t, 1.0, testutil.ToFloat64(pr.buildResults.WithLabelValues("widgets", "failed")))
	require.Equal(t, 1.0, testutil.ToFloat64(pr.publishOutcome.WithLabelValues(OutcomeDeployed)))
	require.Equal(t, 1700000000.0, testutil.ToFloat64(pr.lastSuccess.WithLabelValues("widgets")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, mfs)
}

func TestNilPrometheusRecorderIsSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveBuild("x", time.Second, true)
	pr.ObserveSync(time.Second, false)
	pr.IncPublishOutcome(OutcomeSkipped)
	pr.SetLastSuccess("x", time.Now())
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncPublishOutcome(OutcomeSyncFailed)

	path := filepath.Join(t.TempDir(), "docpublish.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), `docpublish_publish_outcomes_total{outcome="sync_failed"} 1`))

	require.NoError(t, WriteTextfile("", reg), "empty path is a no-op")
}
