package content

import (
	"context"

	"github.com/charmbracelet/log"
)

// ArchivingFeed wraps a Feed and stores every tweet it delivers into an
// archive, so the next start can replay it as history.
type ArchivingFeed struct {
	Feed
	cancel func()
}

// NewArchivingFeed subscribes once to feed and stores every tweet in archive.
// Store failures are logged and do not interrupt delivery.
func NewArchivingFeed(feed Feed, archive Archive, logger *log.Logger) *ArchivingFeed {
	if logger == nil {
		logger = log.Default()
	}
	cancel := feed.Subscribe(func(t Tweet) {
		if err := archive.Store(context.Background(), t); err != nil {
			logger.Warn("failed to archive tweet", "id", t.ID, "error", err)
		}
	})
	return &ArchivingFeed{Feed: feed, cancel: cancel}
}

// Close stops archiving.
func (f *ArchivingFeed) Close() error {
	f.cancel()
	return nil
}
