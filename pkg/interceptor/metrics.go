// Kunhua Huang 2026

package interceptor

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ecstasoy/cipherecho/pkg/protocol"
)

var (
	framesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cipherecho_frames_total",
			Help: "Total number of frames handled",
		},
		[]string{"status"},
	)
	frameDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cipherecho_frame_duration_seconds",
			Help:    "Time spent turning a request frame into a reply",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 10),
		},
	)
	frameBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cipherecho_frame_bytes",
			Help:    "Size of request frames in bytes",
			Buckets: prometheus.LinearBuckets(0, 128, 9),
		},
	)
)

func init() {
	prometheus.MustRegister(framesTotal)
	prometheus.MustRegister(frameDuration)
	prometheus.MustRegister(frameBytes)
}

func Metrics() Interceptor {
	return func(ctx context.Context, req protocol.Frame, invoker Invoker) (protocol.Frame, error) {
		start := time.Now()

		resp, err := invoker(ctx, req)

		status := "success"
		if err != nil {
			status = "error"
			if code := protocol.CodeOf(err); code > protocol.ErrorCodeOK {
				status = code.String()
			}
		}

		framesTotal.WithLabelValues(status).Inc()
		frameDuration.Observe(time.Since(start).Seconds())
		frameBytes.Observe(float64(req.Len()))

		return resp, err
	}
}
