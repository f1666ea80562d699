package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/feedpost/feedpost/app/cfg"
	"github.com/feedpost/feedpost/app/compose"
	"github.com/feedpost/feedpost/app/database"
	"github.com/feedpost/feedpost/app/extract"
	"github.com/feedpost/feedpost/app/feed"
	"github.com/feedpost/feedpost/app/publish"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// Scheduler drives the two pipeline cadences: a fetch ticker that ingests all
// feeds and a publish ticker that posts one item per feed. Tasks run on a
// bounded worker pool; a failing feed only fails its own task.
type Scheduler struct {
	configCache *feed.ConfigCache
	feedRepo    database.FeedRepository
	itemRepo    database.ItemRepository
	fetcher     *feed.Fetcher
	extractor   *extract.Extractor
	summarizer  *compose.Summarizer
	hashtagGen  *compose.HashtagGenerator
	composer    *compose.Composer
	publisher   *publish.Publisher

	fetchInterval   time.Duration
	publishInterval time.Duration
	workerCount     int
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	taskQueue       chan TaskInterface
}

func NewScheduler(configCache *feed.ConfigCache, feedRepo database.FeedRepository,
	itemRepo database.ItemRepository, fetcher *feed.Fetcher, extractor *extract.Extractor,
	summarizer *compose.Summarizer, hashtagGen *compose.HashtagGenerator,
	composer *compose.Composer, publisher *publish.Publisher) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		configCache:     configCache,
		feedRepo:        feedRepo,
		itemRepo:        itemRepo,
		fetcher:         fetcher,
		extractor:       extractor,
		summarizer:      summarizer,
		hashtagGen:      hashtagGen,
		composer:        composer,
		publisher:       publisher,
		fetchInterval:   time.Duration(cfg.FetchInterval) * time.Second,
		publishInterval: time.Duration(cfg.PublishInterval) * time.Second,
		workerCount:     cfg.WorkerCount,
		ctx:             ctx,
		cancel:          cancel,
		taskQueue:       make(chan TaskInterface, 300),
	}
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		fetchTicker := time.NewTicker(s.fetchInterval)
		defer fetchTicker.Stop()
		publishTicker := time.NewTicker(s.publishInterval)
		defer publishTicker.Stop()

		s.enqueueStartupTasks()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-fetchTicker.C:
				s.enqueueFetchTasks()
			case <-publishTicker.C:
				s.enqueuePublishTasks()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

// EnqueueFetchFeed schedules a fetch for a single feed, used by the manual
// trigger endpoint.
func (s *Scheduler) EnqueueFetchFeed(feedID string) error {
	feedConfig, err := s.configCache.GetConfig(feedID)
	if err != nil {
		return err
	}
	return s.EnqueueTask(NewFetchFeedTask(feedID, feedConfig, s.fetcher))
}

// EnqueuePublishFeed schedules a publish attempt for a single feed, used by
// the manual trigger endpoint.
func (s *Scheduler) EnqueuePublishFeed(feedID string) error {
	feedConfig, err := s.configCache.GetConfig(feedID)
	if err != nil {
		return err
	}
	return s.EnqueueTask(s.newPublishTask(feedID, feedConfig))
}

// RunFetchCycle fetches all enabled feeds synchronously, isolating per-feed
// failures. Used by the one-shot run mode.
func (s *Scheduler) RunFetchCycle(ctx context.Context) {
	for feedID, feedConfig := range s.configCache.GetEnabledConfigs() {
		task := NewFetchFeedTask(feedID, feedConfig, s.fetcher)
		s.executeSynchronously(ctx, task)
	}
}

// RunPublishCycle runs one publish attempt for every enabled feed
// synchronously, isolating per-feed failures. Used by the one-shot run mode.
func (s *Scheduler) RunPublishCycle(ctx context.Context) {
	for feedID, feedConfig := range s.configCache.GetEnabledConfigs() {
		task := s.newPublishTask(feedID, feedConfig)
		s.executeSynchronously(ctx, task)
	}
}

// SyncFeedConfigs mirrors every loaded configuration into the database before
// the pipeline starts.
func (s *Scheduler) SyncFeedConfigs(ctx context.Context) {
	for feedID, feedConfig := range s.configCache.GetConfigs() {
		task := NewSyncFeedConfigTask(feedID, feedConfig, s.feedRepo)
		s.executeSynchronously(ctx, task)
	}
}

func (s *Scheduler) newPublishTask(feedID string, feedConfig *feed.Config) *PublishFeedTask {
	return NewPublishFeedTask(feedID, feedConfig, s.itemRepo, s.extractor,
		s.summarizer, s.hashtagGen, s.composer, s.publisher)
}

func (s *Scheduler) executeSynchronously(ctx context.Context, task TaskInterface) {
	task.Start()
	if err := task.Execute(ctx); err != nil {
		slog.Warn("Task failed", "type", string(task.GetType()), "feed", task.GetFeedID(), "error", err)
	}
}

func (s *Scheduler) enqueueStartupTasks() {
	for feedID, feedConfig := range s.configCache.GetConfigs() {
		syncTask := NewSyncFeedConfigTask(feedID, feedConfig, s.feedRepo)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncFeedConfigTask", "feed", feedID, "error", err)
			continue
		}

		if !feedConfig.Settings.Enabled {
			slog.Debug("Feed disabled, skipping FetchFeedTask", "feed", feedID)
			continue
		}

		fetchTask := NewFetchFeedTask(feedID, feedConfig, s.fetcher)
		if err := s.EnqueueTask(fetchTask); err != nil {
			slog.Warn("Failed to enqueue FetchFeedTask", "feed", feedID, "error", err)
		}
	}
}

func (s *Scheduler) enqueueFetchTasks() {
	feedConfigs := s.configCache.GetEnabledConfigs()
	if len(feedConfigs) == 0 {
		slog.Debug("No enabled feed configurations found")
		return
	}

	for feedID, feedConfig := range feedConfigs {
		fetchTask := NewFetchFeedTask(feedID, feedConfig, s.fetcher)
		if err := s.EnqueueTask(fetchTask); err != nil {
			slog.Warn("Failed to enqueue FetchFeedTask", "feed", feedID, "error", err)
		}
	}
}

func (s *Scheduler) enqueuePublishTasks() {
	feedConfigs := s.configCache.GetEnabledConfigs()
	if len(feedConfigs) == 0 {
		slog.Debug("No enabled feed configurations found")
		return
	}

	for feedID, feedConfig := range feedConfigs {
		publishTask := s.newPublishTask(feedID, feedConfig)
		if err := s.EnqueueTask(publishTask); err != nil {
			slog.Warn("Failed to enqueue PublishFeedTask", "feed", feedID, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "feed", task.GetFeedID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
