package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settle is how long Watch waits after the last event before re-running, so
// an editor's write-rename-chmod burst produces a single run.
const settle = 150 * time.Millisecond

// Watch processes input once, then again every time it changes, until ctx is
// cancelled. onResult receives every outcome. The parent directory is watched
// rather than the file so editors that replace the file are still seen.
func (p *Pipeline) Watch(ctx context.Context, input, outDir string, onResult func(*Result, error)) error {
	if onResult == nil {
		onResult = func(*Result, error) {}
	}
	target, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("pipeline: resolve %s: %w", input, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("pipeline: start watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("pipeline: watch %s: %w", filepath.Dir(target), err)
	}

	onResult(p.Process(ctx, input, outDir))

	timer := time.NewTimer(settle)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			p.logger.Debug("declaration changed", zap.String("input", input), zap.Stringer("op", event.Op))
			timer.Reset(settle)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			p.logger.Error("watch error", zap.Error(err))
		case <-timer.C:
			onResult(p.Process(ctx, input, outDir))
		}
	}
}
