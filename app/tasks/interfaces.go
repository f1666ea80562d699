package tasks

import "context"

// TaskSchedulerInterface is the scheduling surface used by the main
// application and the HTTP trigger endpoints.
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	EnqueueFetchFeed(feedID string) error
	EnqueuePublishFeed(feedID string) error
	RunFetchCycle(ctx context.Context)
	RunPublishCycle(ctx context.Context)
}
