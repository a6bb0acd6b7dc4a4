package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	VoiceCommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "voxmart_voice_commands_total",
		Help: "Voice commands processed, by resolved intent and outcome",
	}, []string{"intent", "status"})

	VoiceProcessingLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voxmart_voice_processing_seconds",
		Help:    "End-to-end latency of one voice pipeline run",
		Buckets: prometheus.DefBuckets,
	})

	TranscriptionLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voxmart_transcription_seconds",
		Help:    "ASR latency per utterance",
		Buckets: prometheus.DefBuckets,
	})

	SynthesisLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voxmart_synthesis_seconds",
		Help:    "TTS latency per response",
		Buckets: prometheus.DefBuckets,
	})

	OrdersPlacedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voxmart_orders_placed_total",
		Help: "Orders placed through voice checkout",
	})

	// Infrastructure metrics
	ActiveVoiceStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "voxmart_active_voice_streams",
		Help: "Open websocket voice streams",
	})

	DatabaseLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "voxmart_database_latency_seconds",
		Help:    "Database query latency",
		Buckets: prometheus.DefBuckets,
	})
)
