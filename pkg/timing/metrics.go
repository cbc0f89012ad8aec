package timing

import (
	"sync"

	"github.com/libradesk/libradesk/internal/event_bus"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK           = "ok"
	resultFailed       = "failed"
	resultDeleteFailed = "delete_failed"
	resultInsertFailed = "insert_failed"
	resultRejected     = "rejected"
)

var (
	metricsOnce sync.Once

	timingLoads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "libradesk",
			Name:      "timing_loads_total",
			Help:      "Count of branch timing loads by result.",
		},
		[]string{"result"},
	)

	timingSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "libradesk",
			Name:      "timing_saves_total",
			Help:      "Count of branch timing saves by result.",
		},
		[]string{"result"},
	)

	timingRowsWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "libradesk",
			Name:      "timing_rows_written_total",
			Help:      "Count of timing rows inserted by successful saves.",
		},
	)
)

// RegisterMetrics registers the timing collectors with the default registry
// and counts written rows from TimingsSaved events.
func RegisterMetrics(bus *event_bus.EventBus) {
	metricsOnce.Do(func() {
		prometheus.MustRegister(timingLoads, timingSaves, timingRowsWritten)
		if bus != nil {
			event_bus.SubscribeTyped[event_bus.TimingsSaved](bus, event_bus.TimingsSavedEvent,
				func(e event_bus.EventT[event_bus.TimingsSaved]) error {
					timingRowsWritten.Add(float64(e.Data.RowCount))
					return nil
				})
		}
	})
}

func incLoad(result string) {
	timingLoads.WithLabelValues(result).Inc()
}

func incSave(result string) {
	timingSaves.WithLabelValues(result).Inc()
}
