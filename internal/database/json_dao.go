package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"sync"
	"time"

	"github.com/cerodriguez46/devbyte/internal/logger"
	"github.com/cerodriguez46/devbyte/internal/observable"
	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
)

const watcherDebounce = 200 * time.Millisecond

// videoDocument is the on-disk layout of the file store.
type videoDocument struct {
	Metadata Metadata        `json:"metadata"`
	Videos   []DatabaseVideo `json:"videos" validate:"dive"`
}

// JSONDao stores the videos table in a single JSON file.
type JSONDao struct {
	path      string
	dir       string
	base      string
	mode      WriteMode
	validator *validator.Validate
	now       func() time.Time

	mu         sync.Mutex
	videos     []DatabaseVideo
	lastUpdate int64
	live       *observable.Live[[]DatabaseVideo]
}

// NewJSONDao opens the file store at path. A missing file is an empty table;
// it is created on the first write.
func NewJSONDao(path string, mode WriteMode) (*JSONDao, error) {
	if path == "" {
		return nil, errors.New("data file path is required")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	d := &JSONDao{
		path:      path,
		dir:       dir,
		base:      filepath.Base(path),
		mode:      mode,
		validator: validator.New(),
		now:       time.Now,
	}

	doc, err := d.load()
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.WithComponent("json-dao").Infof("data file %s not found, starting with an empty table", path)
		doc = &videoDocument{Videos: []DatabaseVideo{}}
	case err != nil:
		return nil, err
	}

	d.videos = doc.Videos
	d.lastUpdate = doc.Metadata.LastUpdate
	d.live = observable.NewLive(slices.Clone(d.videos))
	return d, nil
}

func (d *JSONDao) Videos() observable.Observable[[]DatabaseVideo] {
	return d.live
}

// InsertAll merges videos into the table and atomically rewrites the file.
func (d *JSONDao) InsertAll(ctx context.Context, videos ...DatabaseVideo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateVideos(d.validator, videos); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	merged := mergeVideos(d.videos, videos, d.mode)
	stamp := d.now().UnixMilli()
	if stamp <= d.lastUpdate {
		stamp = d.lastUpdate + 1
	}

	doc := videoDocument{Metadata: Metadata{LastUpdate: stamp}, Videos: merged}
	if err := d.save(&doc); err != nil {
		return err
	}

	d.videos = merged
	d.lastUpdate = stamp
	logger.WithComponent("json-dao").Debugf("bulk write of %d videos (%s), table now has %d", len(videos), d.mode, len(merged))
	d.live.Publish(slices.Clone(merged))
	return nil
}

func (d *JSONDao) Close() error {
	return nil
}

// LastUpdate returns the version stamp of the content currently published.
func (d *JSONDao) LastUpdate() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastUpdate
}

func (d *JSONDao) load() (*videoDocument, error) {
	file, err := os.Open(d.path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer file.Close()

	var doc videoDocument
	if err := json.NewDecoder(file).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode data file: %w", err)
	}
	if doc.Videos == nil {
		doc.Videos = []DatabaseVideo{}
	}
	if err := d.validator.Struct(&doc); err != nil {
		return nil, fmt.Errorf("validate data file: %w", err)
	}
	return &doc, nil
}

// save writes the document through a temp file and rename so readers never see a partial file.
func (d *JSONDao) save(doc *videoDocument) error {
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal data: %w", err)
	}

	tmpFile, err := os.CreateTemp(d.dir, d.base+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmpFile.Close()
		os.Remove(tmpFile.Name())
	}()

	if _, err := tmpFile.Write(payload); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpFile.Name(), d.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

// StartWatcher reloads the table when the data file is changed by another process.
// It watches the parent directory so atomic replace sequences (temp+rename) are
// observed too. Events are filtered by basename and debounced. Cancel ctx to stop.
func (d *JSONDao) StartWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(d.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch dir: %w", err)
	}

	go func() {
		defer watcher.Close()

		var debounce *time.Timer
		schedule := func() {
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(watcherDebounce, d.reloadFromDisk)
		}
		defer func() {
			if debounce != nil {
				debounce.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != d.base {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Chmod|fsnotify.Rename|fsnotify.Remove) != 0 {
					schedule()
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.WithComponent("json-dao").Warnf("watcher error: %v", err)
			}
		}
	}()

	return nil
}

// reloadFromDisk publishes the file content if it is newer than what the store holds.
func (d *JSONDao) reloadFromDisk() {
	doc, err := d.load()
	if err != nil {
		logger.WithComponent("json-dao").Warnf("watch reload failed: %v", err)
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if doc.Metadata.LastUpdate < d.lastUpdate {
		logger.WithComponent("json-dao").Debugf("disk version is older than store: disk=%d store=%d", doc.Metadata.LastUpdate, d.lastUpdate)
		return
	}
	if doc.Metadata.LastUpdate == d.lastUpdate && reflect.DeepEqual(doc.Videos, d.videos) {
		logger.WithComponent("json-dao").Tracef("disk content equals store content, skipping reload")
		return
	}

	d.videos = doc.Videos
	d.lastUpdate = doc.Metadata.LastUpdate
	logger.WithComponent("json-dao").Infof("store reloaded from disk: %d videos", len(d.videos))
	d.live.Publish(slices.Clone(d.videos))
}
