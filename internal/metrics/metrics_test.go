package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFramesCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := NewFrames(reg)

	f.FrameRendered("masked_reveal")
	f.FrameRendered("masked_reveal")
	f.FrameRendered("full_video")
	f.FrameSkipped("full_video")
	f.MasksPruned(3)
	f.TrailSize(42)
	f.Spawned()

	assert.Equal(t, 2.0, testutil.ToFloat64(f.Rendered.WithLabelValues("masked_reveal")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.Rendered.WithLabelValues("full_video")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.Skipped.WithLabelValues("full_video")))
	assert.Equal(t, 3.0, testutil.ToFloat64(f.Pruned))
	assert.Equal(t, 42.0, testutil.ToFloat64(f.Trail))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.Spawns))
}

func TestFramesRegisterOnce(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewFrames(reg)
	assert.Panics(t, func() { NewFrames(reg) })
}

func TestServerExposesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	f := NewFrames(reg)
	f.FrameRendered("full_video")

	srv := NewServer(":0", reg)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `reveal_frames_rendered_total{mode="full_video"} 1`)
}
