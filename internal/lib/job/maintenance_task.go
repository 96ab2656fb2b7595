package job

import (
	"time"

	"github.com/hibiken/asynq"
)

// TaskReconcileCounters recomputes enrollment_count, rating and
// review_count of every course from the source rows.
const TaskReconcileCounters = "maintenance:reconcile_counters"

// NewReconcileCountersTask builds the task the scheduler enqueues on
// jobs.reconcile_schedule. It runs on the low queue.
func NewReconcileCountersTask() (*asynq.Task, error) {
	return asynq.NewTask(
		TaskReconcileCounters,
		nil,
		asynq.MaxRetry(1),
		asynq.Queue(QueueLow),
		asynq.Timeout(5*time.Minute),
		// A slow run must not overlap the next one.
		asynq.Unique(time.Hour),
	), nil
}
