// Package metrics holds the Prometheus collectors for the recognition loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signscribe_frames_processed_total",
			Help: "Frames run through the pipeline, by outcome",
		},
		[]string{"outcome"},
	)

	Commits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signscribe_commits_total",
			Help: "Committed symbols, by kind",
		},
		[]string{"kind"},
	)

	ClassifierLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signscribe_classifier_latency_seconds",
			Help:    "Classifier call latency in seconds",
			Buckets: []float64{.002, .005, .01, .02, .03, .05, .1, .25},
		},
	)

	FrameDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "signscribe_frame_duration_seconds",
			Help:    "Full pipeline pass duration in seconds",
			Buckets: []float64{.005, .01, .02, .03, .05, .1, .25},
		},
	)

	SpeechRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signscribe_speech_requests_total",
			Help: "Speech requests, by result",
		},
		[]string{"result"},
	)

	DisplayClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "signscribe_display_clients",
			Help: "Connected websocket display clients",
		},
	)
)
