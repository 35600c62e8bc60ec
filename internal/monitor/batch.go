package monitor

import "time"

// TaskMeasure is one monitored task's contribution to a Batch, per
// spec.md §6's monitoring stream record.
type TaskMeasure struct {
	Name                string    `json:"name"`
	E                   []float64 `json:"e"`
	EDotStar            []float64 `json:"e_dot_star"`
	PerformanceMeasures []float64 `json:"performance_measures"`
}

// Batch is one tick's monitoring record, published at the configured
// rate to every subscribed stream.
type Batch struct {
	Timestamp time.Time     `json:"timestamp"`
	BatchID   string        `json:"batch_id"`
	Tasks     []TaskMeasure `json:"tasks"`
}
