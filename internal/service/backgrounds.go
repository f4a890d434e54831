package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/timmy/sentencebot/internal/catalog"
	"github.com/timmy/sentencebot/internal/domain"
	"github.com/timmy/sentencebot/internal/logger"
	"github.com/timmy/sentencebot/internal/storage"
	_ "golang.org/x/image/webp"
)

// SyncService uploads a local background pack to object storage so that
// several bot instances can share it.
type SyncService struct {
	storage storage.ObjectStorage
	logger  *logger.Logger
	workers int
}

// SyncConfig holds configuration for the sync service
type SyncConfig struct {
	Workers int
}

// SyncOptions holds options for one sync run
type SyncOptions struct {
	Prefix string
	Force  bool // If true, overwrite objects that already exist
	DryRun bool
}

// SyncStats holds statistics for a sync run
type SyncStats struct {
	TotalItems    int64
	UploadedItems int64
	SkippedItems  int64
	FailedItems   int64
	StartTime     time.Time
	EndTime       time.Time
}

// NewSyncService creates a new sync service
func NewSyncService(objectStorage storage.ObjectStorage, log *logger.Logger, cfg *SyncConfig) *SyncService {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &SyncService{
		storage: objectStorage,
		logger:  log,
		workers: workers,
	}
}

// log returns a logger from context if available, otherwise returns the service logger
func (s *SyncService) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != logger.GetDefault() {
		return l
	}
	return s.logger
}

type syncResult struct {
	key     string
	skipped bool
	err     error
}

// errSkipExisting marks an entry whose object is already in the bucket
var errSkipExisting = errors.New("skipped: object exists")

// errSkipNotImage marks a catalog file that does not decode as an image
var errSkipNotImage = errors.New("skipped: not an image")

// Sync uploads every entry of a local catalog under opts.Prefix.
// The file name is kept as the object name because captions are derived from it.
func (s *SyncService) Sync(ctx context.Context, cat *catalog.Catalog, opts *SyncOptions) (*SyncStats, error) {
	if opts == nil {
		opts = &SyncOptions{}
	}

	stats := &SyncStats{StartTime: time.Now()}

	if !opts.DryRun {
		if err := s.storage.EnsureBucket(ctx); err != nil {
			return nil, fmt.Errorf("failed to ensure bucket: %w", err)
		}
	}

	s.log(ctx).WithFields(logger.Fields{
		"source": cat.Source(),
		"prefix": opts.Prefix,
		"count":  cat.Len(),
		"force":  opts.Force,
	}).Info("Starting background sync")

	entries := make(chan domain.ImageEntry, s.workers*2)
	results := make(chan *syncResult, s.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.worker(ctx, entries, results, opts)
		}()
	}

	done := make(chan struct{})
	go func() {
		for result := range results {
			switch {
			case result.skipped:
				atomic.AddInt64(&stats.SkippedItems, 1)
			case result.err != nil:
				atomic.AddInt64(&stats.FailedItems, 1)
				s.log(ctx).WithField("key", result.key).WithError(result.err).Error("Failed to sync background")
			default:
				atomic.AddInt64(&stats.UploadedItems, 1)
			}
		}
		close(done)
	}()

feed:
	for _, entry := range cat.Entries() {
		select {
		case entries <- entry:
			atomic.AddInt64(&stats.TotalItems, 1)
		case <-ctx.Done():
			break feed
		}
	}

	close(entries)
	wg.Wait()
	close(results)
	<-done

	stats.EndTime = time.Now()

	s.log(ctx).WithFields(logger.Fields{
		"total":    stats.TotalItems,
		"uploaded": stats.UploadedItems,
		"skipped":  stats.SkippedItems,
		"failed":   stats.FailedItems,
		"duration": stats.EndTime.Sub(stats.StartTime).String(),
	}).Info("Background sync completed")

	return stats, ctx.Err()
}

func (s *SyncService) worker(ctx context.Context, entries <-chan domain.ImageEntry, results chan<- *syncResult, opts *SyncOptions) {
	for entry := range entries {
		if ctx.Err() != nil {
			results <- &syncResult{key: entry.Location, err: ctx.Err()}
			continue
		}

		key := ObjectKey(opts.Prefix, entry.Location)
		result := &syncResult{key: key}
		if err := s.syncEntry(ctx, key, entry, opts); err != nil {
			if errors.Is(err, errSkipExisting) || errors.Is(err, errSkipNotImage) {
				result.skipped = true
				s.log(ctx).WithField("key", key).Debugf("Background %v", err)
			} else {
				result.err = err
			}
		}
		results <- result
	}
}

func (s *SyncService) syncEntry(ctx context.Context, key string, entry domain.ImageEntry, opts *SyncOptions) error {
	data, err := os.ReadFile(entry.Location)
	if err != nil {
		return fmt.Errorf("failed to read background: %w", err)
	}

	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return errSkipNotImage
	}

	if opts.DryRun {
		return nil
	}

	if !opts.Force {
		exists, err := s.storage.Exists(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to check storage existence: %w", err)
		}
		if exists {
			return errSkipExisting
		}
	}

	if err := s.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), ContentType(entry.Format)); err != nil {
		return fmt.Errorf("failed to upload to storage: %w", err)
	}
	return nil
}

// ObjectKey joins a prefix and the base name of a local file into an object key.
func ObjectKey(prefix, location string) string {
	name := filepath.Base(location)
	if prefix == "" {
		return name
	}
	return path.Join(prefix, name)
}

// ContentType maps a catalog format to its MIME type.
func ContentType(format string) string {
	switch format {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return domain.MimeTypePNG
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "application/octet-stream"
	}
}
