package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Frames tracks per-frame compositor counters.
type Frames struct {
	Rendered *prometheus.CounterVec
	Skipped  *prometheus.CounterVec
	Pruned   prometheus.Counter
	Trail    prometheus.Gauge
	Spawns   prometheus.Counter
}

// NewFrames creates the frame collectors and registers them on reg.
func NewFrames(reg prometheus.Registerer) *Frames {
	f := &Frames{
		Rendered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reveal_frames_rendered_total",
				Help: "Frames composed, by mode",
			},
			[]string{"mode"},
		),
		Skipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reveal_frames_video_skipped_total",
				Help: "Frames drawn without video because the source was not ready, by mode",
			},
			[]string{"mode"},
		),
		Pruned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reveal_trail_masks_pruned_total",
				Help: "Trail masks removed after fading out",
			},
		),
		Trail: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "reveal_trail_size",
				Help: "Masks currently in the trail",
			},
		),
		Spawns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reveal_trail_spawns_total",
				Help: "Trail masks spawned by pointer movement",
			},
		),
	}
	reg.MustRegister(f.Rendered, f.Skipped, f.Pruned, f.Trail, f.Spawns)
	return f
}

func (f *Frames) FrameRendered(mode string) { f.Rendered.WithLabelValues(mode).Inc() }

func (f *Frames) FrameSkipped(mode string) { f.Skipped.WithLabelValues(mode).Inc() }

func (f *Frames) TrailSize(n int) { f.Trail.Set(float64(n)) }

func (f *Frames) MasksPruned(n int) { f.Pruned.Add(float64(n)) }

func (f *Frames) Spawned() { f.Spawns.Inc() }

// NewServer exposes the registry on /metrics.
func NewServer(addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
}
