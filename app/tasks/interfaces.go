package tasks

// TaskSchedulerInterface defines the interface for background task
// scheduling. Used by the main application to manage the worker pool and the
// periodic ingestion/promotion tasks.
// Example usage:
//
//	scheduler := NewScheduler(builder, noveltyStore, promoter, denylist)
//	scheduler.Start()
//	defer scheduler.Stop()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}
