package api

import (
	"github.com/feedpost/feedpost/app/database"
	"github.com/feedpost/feedpost/app/feed"
	"github.com/feedpost/feedpost/app/tasks"
)

type Handler struct {
	feedRepo    database.FeedRepository
	itemRepo    database.ItemRepository
	configCache *feed.ConfigCache
	scheduler   tasks.TaskSchedulerInterface
}

func NewHandler(feedRepo database.FeedRepository, itemRepo database.ItemRepository,
	configCache *feed.ConfigCache, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		feedRepo:    feedRepo,
		itemRepo:    itemRepo,
		configCache: configCache,
		scheduler:   scheduler,
	}
}
