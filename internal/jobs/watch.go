package jobs

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mrcgomez/safetyagent/internal/domain"
	"github.com/mrcgomez/safetyagent/internal/extract"
	"github.com/mrcgomez/safetyagent/internal/service"
)

// WatchCategory is the category assigned to documents ingested from the
// watched directory.
const WatchCategory = "watched"

// DocumentIngestor defines the knowledge operations the watcher needs.
type DocumentIngestor interface {
	IngestText(ctx context.Context, input service.IngestTextInput) (*domain.Document, error)
	RemoveDocument(ctx context.Context, id string) bool
}

type fileState struct {
	modTime time.Time
	size    int64
	docID   string
}

// WatchProcessor scans a directory for supported document files and ingests
// new or changed ones. A changed file replaces its earlier document. It
// implements JobProcessor so the polling Worker can drive periodic rescans.
type WatchProcessor struct {
	dir      string
	ingestor DocumentIngestor

	mu   sync.Mutex
	seen map[string]fileState
}

// NewWatchProcessor creates a processor for the given directory.
func NewWatchProcessor(dir string, ingestor DocumentIngestor) *WatchProcessor {
	return &WatchProcessor{
		dir:      dir,
		ingestor: ingestor,
		seen:     make(map[string]fileState),
	}
}

// ProcessJobs implements the JobProcessor interface by rescanning the
// watched directory once.
func (p *WatchProcessor) ProcessJobs(ctx context.Context) error {
	entries, err := os.ReadDir(p.dir)
	if err != nil {
		return fmt.Errorf("failed to scan watch directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !extract.IsSupported(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			log.Printf("Skipping %s: %v", entry.Name(), err)
			continue
		}

		path := filepath.Join(p.dir, entry.Name())
		if err := p.processFile(ctx, path, info.ModTime(), info.Size()); err != nil {
			log.Printf("Error ingesting %s: %v", entry.Name(), err)
		}
	}
	return nil
}

func (p *WatchProcessor) processFile(ctx context.Context, path string, modTime time.Time, size int64) error {
	p.mu.Lock()
	prev, known := p.seen[path]
	p.mu.Unlock()

	if known && prev.modTime.Equal(modTime) && prev.size == size {
		return nil
	}

	text, err := extract.Extract(path)
	if err != nil {
		return err
	}

	if known && prev.docID != "" {
		p.ingestor.RemoveDocument(ctx, prev.docID)
	}

	doc, err := p.ingestor.IngestText(ctx, service.IngestTextInput{
		Text:      text,
		Filename:  filepath.Base(path),
		Category:  WatchCategory,
		SizeBytes: size,
	})
	if err != nil {
		// Remember the failed file so one bad document does not get
		// re-extracted on every rescan.
		p.remember(path, fileState{modTime: modTime, size: size})
		return err
	}

	p.remember(path, fileState{modTime: modTime, size: size, docID: doc.ID})
	log.Printf("Watched file ingested: %s (document %s)", filepath.Base(path), doc.ID)
	return nil
}

func (p *WatchProcessor) remember(path string, state fileState) {
	p.mu.Lock()
	p.seen[path] = state
	p.mu.Unlock()
}

// DirWatcher reacts to filesystem events in the watched directory by
// triggering an immediate rescan, so new uploads land without waiting for
// the next polling interval.
type DirWatcher struct {
	watcher   *fsnotify.Watcher
	processor JobProcessor
	stopChan  chan struct{}
	doneChan  chan struct{}
}

// NewDirWatcher creates a watcher for dir backed by the given processor.
func NewDirWatcher(dir string, processor JobProcessor) (*DirWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return &DirWatcher{
		watcher:   watcher,
		processor: processor,
		stopChan:  make(chan struct{}),
		doneChan:  make(chan struct{}),
	}, nil
}

// Start begins the event loop. Blocks until the context is cancelled or
// Stop is called.
func (w *DirWatcher) Start(ctx context.Context) {
	defer close(w.doneChan)
	defer w.watcher.Close()

	log.Println("Directory watcher started")

	for {
		select {
		case <-ctx.Done():
			log.Println("Directory watcher stopped: context cancelled")
			return
		case <-w.stopChan:
			log.Println("Directory watcher stopped: stop signal received")
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Write) {
				if err := w.processor.ProcessJobs(ctx); err != nil {
					log.Printf("Error processing watch event: %v", err)
				}
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Filesystem watcher error: %v", err)
		}
	}
}

// Stop gracefully stops the watcher.
func (w *DirWatcher) Stop() {
	close(w.stopChan)
	<-w.doneChan
	log.Println("Directory watcher shutdown complete")
}
