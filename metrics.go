package danton

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// RunSummary accumulates the gauges a run reports when --metrics-push-url
// is set (spec's A3 addition), mirroring the teacher's OutMetrics/OutSolMetrics
// (app/plot) shape: build a GaugeVec per run, populate it, push it.
type RunSummary struct {
	EventsProcessed int64
	TausDetected    int64
	WeightSum       float64
	GrammageSum     float64
}

// Observe folds one emitted record into the running summary.
func (s *RunSummary) Observe(r Record) {
	s.EventsProcessed++
	switch rec := r.(type) {
	case TauPairRecord:
		s.TausDetected++
		s.WeightSum += rec.Decay.Weight
		s.GrammageSum += rec.Decay.Grammage
	case AncestorRecord:
		s.WeightSum += rec.Weight
	}
}

// MeanWeight and MeanGrammage are the run-summary's derived statistics,
// pushed as separate gauges.
func (s *RunSummary) MeanWeight() float64 {
	if s.TausDetected == 0 {
		return 0
	}
	return s.WeightSum / float64(s.TausDetected)
}

func (s *RunSummary) MeanGrammage() float64 {
	if s.TausDetected == 0 {
		return 0
	}
	return s.GrammageSum / float64(s.TausDetected)
}

// gaugeVec builds the Collector the teacher's OutMetrics returns: one
// GaugeVec per run, labelled by run name, one label value row per gauge.
func (s *RunSummary) gaugeVec(name string) *prometheus.GaugeVec {
	gv := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "danton_run_summary",
			Help: "summary gauges for one danton simulation run",
		},
		[]string{"run", "metric"},
	)
	gv.WithLabelValues(name, "events_processed").Set(float64(s.EventsProcessed))
	gv.WithLabelValues(name, "taus_detected").Set(float64(s.TausDetected))
	gv.WithLabelValues(name, "mean_weight").Set(s.MeanWeight())
	gv.WithLabelValues(name, "mean_grammage").Set(s.MeanGrammage())
	return gv
}

// PushTo pushes the run summary to a Prometheus Pushgateway at url,
// mirroring the teacher's PushGaugeMetric (app/plot) which targets
// http://127.0.0.1:9091 by default; here the gateway is always caller-chosen
// since a CLI flag drives it rather than a hardcoded address.
func (s *RunSummary) PushTo(url, runName string) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, "danton").Collector(s.gaugeVec(runName)).Push(); err != nil {
		return fmt.Errorf("danton: could not push run summary to %q: %w", url, err)
	}
	return nil
}
