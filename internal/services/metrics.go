package services

import "github.com/prometheus/client_golang/prometheus"

var (
	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "design_generations_total",
			Help: "Generation runs by outcome",
		},
		[]string{"outcome"},
	)
	generationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "design_generation_duration_seconds",
			Help:    "Duration of successful generation runs",
			Buckets: []float64{5, 10, 20, 30, 45, 60, 90},
		},
	)
)

// InitPrometheus registers the generation metrics with reg.
func InitPrometheus(reg prometheus.Registerer) {
	reg.MustRegister(generationsTotal, generationDuration)
}
