package usecase

import (
	"sync"
	"time"

	"github.com/example/pricetag-widget/internal/render"
)

// MetricsSummary represents aggregated submission outcomes since start-up.
type MetricsSummary struct {
	TotalSubmissions    int64   `json:"total_submissions"`
	Succeeded           int64   `json:"succeeded"`
	Failed              int64   `json:"failed"`
	Errored             int64   `json:"errored"`
	Rejected            int64   `json:"rejected"`
	SuccessRate         float64 `json:"success_rate"`
	AverageRoundTripMs  float64 `json:"average_round_trip_ms"`
	CompletedRoundTrips int64   `json:"completed_round_trips"`
}

type metrics struct {
	mu         sync.Mutex
	byKind     map[render.ResponseKind]int64
	roundTrips int64
	totalTrip  time.Duration
}

func newMetrics() *metrics {
	return &metrics{byKind: make(map[render.ResponseKind]int64)}
}

func (m *metrics) record(kind render.ResponseKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byKind[kind]++
}

func (m *metrics) observeRoundTrip(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roundTrips++
	m.totalTrip += d
}

// GetMetricsSummary aggregates the outcomes recorded by Submit.
func (uc *SubmissionUseCase) GetMetricsSummary() *MetricsSummary {
	m := uc.metrics
	m.mu.Lock()
	defer m.mu.Unlock()

	summary := &MetricsSummary{
		Succeeded:           m.byKind[render.ResponseSuccess],
		Failed:              m.byKind[render.ResponseFailure] + m.byKind[render.ResponseFallback],
		Errored:             m.byKind[render.ResponseException],
		Rejected:            m.byKind[render.ResponseValidation] + m.byKind[render.ResponseBusy],
		CompletedRoundTrips: m.roundTrips,
	}
	summary.TotalSubmissions = summary.Succeeded + summary.Failed + summary.Errored + summary.Rejected

	if summary.TotalSubmissions > 0 {
		summary.SuccessRate = float64(summary.Succeeded) / float64(summary.TotalSubmissions)
	}
	if m.roundTrips > 0 {
		summary.AverageRoundTripMs = float64(m.totalTrip.Milliseconds()) / float64(m.roundTrips)
	}
	return summary
}
