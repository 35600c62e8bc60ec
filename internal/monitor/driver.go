package monitor

import (
	"context"
	"time"

	"github.com/taskstack/hqpik/internal/manager"
)

// Driver drains a manager's monitoring-record channel on its own
// cadence and publishes a Batch per tick of that cadence, decoupling
// the realtime control tick's rate from the monitoring stream's rate.
// If no fresh records have arrived since the last publish, that tick
// is skipped rather than re-publishing a stale batch.
type Driver struct {
	records <-chan []manager.MonitorRecord
	pub     *Publisher
	rate    time.Duration
}

// NewDriver builds a Driver publishing via pub at rateHz (spec.md
// §6's monitoring.publish_rate).
func NewDriver(records <-chan []manager.MonitorRecord, pub *Publisher, rateHz float64) *Driver {
	if rateHz <= 0 {
		rateHz = 1
	}
	return &Driver{records: records, pub: pub, rate: time.Duration(float64(time.Second) / rateHz)}
}

// Run blocks, publishing batches until ctx is done.
func (d *Driver) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.rate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			select {
			case recs := <-d.records:
				d.pub.Publish(NewBatch(toTaskMeasures(recs)))
			default:
				// no fresh telemetry since the last publish; skip this tick
			}
		}
	}
}

func toTaskMeasures(recs []manager.MonitorRecord) []TaskMeasure {
	out := make([]TaskMeasure, len(recs))
	for i, r := range recs {
		out[i] = TaskMeasure{Name: r.Name, E: r.E, EDotStar: r.EDotStar, PerformanceMeasures: r.Measures}
	}
	return out
}
