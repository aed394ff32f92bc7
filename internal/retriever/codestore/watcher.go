package codestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher keeps a Retriever's in-memory corpus current by watching the
// configured code directory for edits and reloading the whole corpus.
//
// Adapted from the teacher's internal/watch.Watcher: the same glob
// expansion and lifecycle shape, swapping github.com/nxadm/tail's
// line-follow loop (suited to growing log files) for
// github.com/fsnotify/fsnotify's directory-event loop (suited to a
// source tree that is edited, not appended to) — the code corpus's
// *construction* algorithm is out of scope (spec.md §1), but keeping
// it current is an ambient operational concern the teacher already
// models for a different kind of file.
type Watcher struct {
	retriever *Retriever
	cfg       Config
	embedder  Embedder
	watcher   *fsnotify.Watcher
	log       *zap.Logger
	cancel    context.CancelFunc
}

// NewWatcher builds a Watcher over r's configured code directory and
// performs the initial corpus load.
func NewWatcher(r *Retriever, log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("codestore: new fsnotify watcher: %w", err)
	}
	if err := fsw.Add(r.cfg.Path); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("codestore: watch %q: %w", r.cfg.Path, err)
	}

	w := &Watcher{retriever: r, cfg: r.cfg, embedder: r.embedder, watcher: fsw, log: log}
	if err := w.reload(context.Background()); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run processes fsnotify events until ctx is cancelled, reloading the
// corpus on create/write/remove. Callers run it in its own goroutine.
func (w *Watcher) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if err := w.reload(ctx); err != nil {
				w.log.Warn("codestore: corpus reload failed", zap.Error(err))
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("codestore: watcher error", zap.Error(err))
		}
	}
}

// Stop cancels a running Watcher.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	return hasConfiguredExtension(ev.Name, w.cfg.Extensions)
}

func (w *Watcher) reload(ctx context.Context) error {
	pattern := filepath.Join(w.cfg.Path, w.cfg.Glob)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("codestore: invalid glob %q: %w", pattern, err)
	}

	files := make([]fileRecord, 0, len(matches))
	for _, path := range matches {
		if !hasConfiguredExtension(path, w.cfg.Extensions) {
			continue
		}
		body, err := os.ReadFile(path)
		if err != nil {
			w.log.Warn("codestore: read file", zap.String("path", path), zap.Error(err))
			continue
		}
		vec, err := w.embedder.Embed(ctx, string(body))
		if err != nil {
			w.log.Warn("codestore: embed file", zap.String("path", path), zap.Error(err))
			continue
		}
		files = append(files, fileRecord{
			path:   path,
			name:   filepath.Base(path),
			body:   string(body),
			vector: vec,
		})
	}

	w.retriever.replaceCorpus(files)
	return nil
}

func hasConfiguredExtension(path string, extensions []string) bool {
	if len(extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	for _, e := range extensions {
		if strings.TrimPrefix(e, ".") == ext {
			return true
		}
	}
	return false
}
