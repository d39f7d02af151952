// Package importer watches a local directory for dropped media files
// and turns them into assets: bytes go to MinIO, metadata (duration,
// frame size) comes from ffprobe and lands in the asset repository.
package importer

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"cutroom/config"
	"cutroom/logger"
	"cutroom/model"
	"cutroom/repository"
	"cutroom/storage"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// settleDelay is how long a new file must sit before it is imported, so
// half-copied files are not probed mid-write.
const settleDelay = 2 * time.Second

var mediaExtensions = map[string]model.AssetKind{
	".mp4":  model.AssetVideo,
	".mov":  model.AssetVideo,
	".mkv":  model.AssetVideo,
	".webm": model.AssetVideo,
	".mp3":  model.AssetAudio,
	".wav":  model.AssetAudio,
	".aac":  model.AssetAudio,
	".flac": model.AssetAudio,
}

// Watcher imports media files appearing in the configured directory.
// Imported assets are attributed to ownerID (the single-editor
// deployment default is user 1).
type Watcher struct {
	cfg     *config.Config
	assets  repository.AssetRepository
	ownerID int64

	watcher  *fsnotify.Watcher
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewWatcher creates an import watcher. Returns nil without error when
// no import directory is configured.
func NewWatcher(cfg *config.Config, assets repository.AssetRepository, ownerID int64) (*Watcher, error) {
	if cfg.ImportDir == "" {
		return nil, nil
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(cfg.ImportDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", cfg.ImportDir, err)
	}
	return &Watcher{
		cfg:      cfg,
		assets:   assets,
		ownerID:  ownerID,
		watcher:  fsw,
		stopChan: make(chan struct{}),
	}, nil
}

// Start launches the watch loop.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.run()
	logger.Info("import watcher started", logger.String("dir", w.cfg.ImportDir))
}

// Stop shuts the watch loop down.
func (w *Watcher) Stop() {
	close(w.stopChan)
	w.watcher.Close()
	w.wg.Wait()
}

func (w *Watcher) run() {
	defer w.wg.Done()

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if _, known := mediaExtensions[strings.ToLower(filepath.Ext(event.Name))]; !known {
				continue
			}
			// Writes keep pushing the settle deadline forward.
			pending[event.Name] = time.Now().Add(settleDelay)

		case <-ticker.C:
			now := time.Now()
			for path, due := range pending {
				if now.Before(due) {
					continue
				}
				delete(pending, path)
				if err := w.importFile(path); err != nil {
					logger.Error("media import failed", logger.String("file", path), logger.ErrorField(err))
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("import watcher error", logger.ErrorField(err))

		case <-w.stopChan:
			return
		}
	}
}

// importFile probes, uploads and registers one media file.
func (w *Watcher) importFile(path string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	name := filepath.Base(path)
	kind := mediaExtensions[strings.ToLower(filepath.Ext(path))]
	objectPath := fmt.Sprintf("assets/%d/%s", w.ownerID, name)

	if existing, err := w.assets.GetAssetByObjectPath(w.ownerID, objectPath); err != nil {
		return err
	} else if existing != nil {
		logger.Debug("skipping already imported file", logger.String("file", name))
		return nil
	}

	info, err := Probe(w.cfg.FFprobePath, path)
	if err != nil {
		return err
	}
	if kind == model.AssetVideo && !info.HasVideo {
		kind = model.AssetAudio
	}

	if err := storage.UploadFile(ctx, objectPath, path); err != nil {
		return err
	}
	stat, err := storage.StatObject(ctx, objectPath)
	if err != nil {
		return err
	}

	asset := &model.Asset{
		ID:         uuid.NewString(),
		UserID:     w.ownerID,
		Name:       name,
		Kind:       kind,
		ObjectPath: objectPath,
		Duration:   info.DurationMs,
		Width:      info.Width,
		Height:     info.Height,
		SizeBytes:  stat.Size,
	}
	if err := w.assets.CreateAsset(asset); err != nil {
		return err
	}

	logger.Info("imported media asset",
		logger.String("asset", asset.ID),
		logger.String("file", name),
		logger.Int64("durationMs", asset.Duration))
	return nil
}
