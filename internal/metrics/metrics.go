// Package metrics exposes basic counters from the pipeline. The noop
// implementation is the default; the Prometheus one is wired when a
// metrics listen address is given.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/BartekS5/connector/pkg/logger"
)

// Counter event names.
const (
	RecordsExtracted = "records_extracted"
	RecordsLoaded    = "records_loaded"
	RecordsSkipped   = "records_skipped"
	PagesFetched     = "pages_fetched"
	APIRetries       = "api_retries"
)

// Counter is used for exposing basic metrics from the pipeline.
type Counter interface {
	Add(name string, n int64)
}

type noopCounter struct{}

func (noopCounter) Add(string, int64) {}

// Noop returns a counter that discards everything.
func Noop() Counter {
	return noopCounter{}
}

// Prometheus implements Counter on top of a prometheus CounterVec.
type Prometheus struct {
	events *prometheus.CounterVec
}

// NewPrometheus registers the connector counters with the given
// registerer (nil means the default registry).
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	vec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "connector",
		Name:      "events_total",
		Help:      "Count of pipeline events by type.",
	}, []string{"event"})
	reg.MustRegister(vec)
	return &Prometheus{events: vec}
}

func (p *Prometheus) Add(name string, n int64) {
	p.events.WithLabelValues(name).Add(float64(n))
}

// Serve exposes /metrics on addr in a background goroutine. Long syncs
// can be watched while they run; the listener dies with the process.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Errorf("metrics listener: %v", err)
		}
	}()
}
