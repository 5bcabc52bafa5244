package service

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/jsonrpc"
	"github.com/viant/mcp-protocol/schema"
)

// ensureWatcher starts the store file poller unless it is already running
func (i *Implementer) ensureWatcher() {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	if i.stopWatch != nil {
		return
	}
	parent := i.ctx
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	i.stopWatch = cancel
	i.lastModTime, i.lastExists = i.service.store.ModTime()
	go i.watchLoop(ctx)
}

func (i *Implementer) stopWatcher() {
	i.mutex.Lock()
	defer i.mutex.Unlock()
	if i.stopWatch != nil {
		i.stopWatch()
		i.stopWatch = nil
	}
}

func (i *Implementer) watchLoop(ctx context.Context) {
	tick := time.NewTicker(i.service.pollInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			if err := i.pollChanges(ctx); err != nil {
				i.service.logger.Warn().Err(err).Msg("failed to poll credential store")
				if i.Logger != nil {
					_ = i.Logger.Error(ctx, fmt.Sprintf("failed to poll changes: %v", err))
				}
			}
		}
	}
}

// pollChanges notifies subscribers when the store file mtime or existence changes
func (i *Implementer) pollChanges(ctx context.Context) error {
	modTime, exists := i.service.store.ModTime()
	i.mutex.Lock()
	changed := exists != i.lastExists || !modTime.Equal(i.lastModTime)
	i.lastModTime, i.lastExists = modTime, exists
	i.mutex.Unlock()
	if !changed || !i.subscribed(InfoURI) {
		return nil
	}
	return i.notifyResourceUpdated(ctx, InfoURI)
}

func (i *Implementer) subscribed(uri string) bool {
	_, ok := i.Subscription.Get(uri)
	return ok
}

// notifyResourceUpdated sends notifications/resources/updated for uri
func (i *Implementer) notifyResourceUpdated(ctx context.Context, uri string) error {
	notification, err := jsonrpc.NewNotification(schema.MethodNotificationResourceUpdated, &schema.ResourceUpdatedNotificationParams{Uri: uri})
	if err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return i.Notifier.Notify(ctx, notification)
}
