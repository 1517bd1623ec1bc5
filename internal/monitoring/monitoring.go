// Package monitoring records per-stage run entries and exposes process
// metrics for them.
package monitoring

import (
	"context"
	"log"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/leadflowhq/leadflow/internal/events"
	"github.com/leadflowhq/leadflow/internal/model"
	"github.com/leadflowhq/leadflow/internal/store"
)

// Error text persisted with a run entry is capped at this many bytes.
const maxErrorTextBytes = 1024

// Recorder persists run entries and updates run metrics. It is a
// best-effort sink: recording failures are logged, never propagated.
type Recorder struct {
	store   store.Store
	bus     *events.Bus
	logger  *log.Logger
	runs    *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

func NewRecorder(st store.Store, bus *events.Bus, logger *log.Logger, reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		store:  st,
		bus:    bus,
		logger: logger,
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "leadflow",
			Name:      "stage_runs_total",
			Help:      "Stage executions by stage and outcome.",
		}, []string{"stage", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "leadflow",
			Name:      "stage_duration_seconds",
			Help:      "Stage execution latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}
	if reg != nil {
		reg.MustRegister(r.runs, r.latency)
	}
	return r
}

// RecordRun persists one stage attempt and publishes a step event.
func (r *Recorder) RecordRun(ctx context.Context, ownerID, leadID, stage string, success bool, duration time.Duration, errText string) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	r.runs.WithLabelValues(stage, outcome).Inc()
	r.latency.WithLabelValues(stage).Observe(duration.Seconds())

	id, err := model.NewID(model.IDTypeRun)
	if err != nil {
		r.logger.Printf("[WARN] run_entry_id_failed stage=%s err=%v", stage, err)
		return
	}
	entry := &model.RunEntry{
		ID:         id,
		OwnerID:    ownerID,
		LeadID:     leadID,
		Stage:      stage,
		Success:    success,
		DurationMS: float64(duration.Microseconds()) / 1000.0,
		Error:      TruncateError(errText),
		Timestamp:  time.Now().UTC(),
	}
	if err := r.store.PutRunEntry(ctx, entry); err != nil {
		r.logger.Printf("[WARN] run_entry_write_failed stage=%s err=%v", stage, err)
		return
	}
	if r.bus != nil {
		r.bus.Publish(events.EventStepCompleted, map[string]interface{}{
			"owner_id": ownerID,
			"lead_id":  leadID,
			"stage":    stage,
			"success":  success,
		})
	}
}

// TruncateError caps error text at the persisted limit.
func TruncateError(text string) string {
	if len(text) <= maxErrorTextBytes {
		return text
	}
	return text[:maxErrorTextBytes]
}
