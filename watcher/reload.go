package watcher

import (
	"context"
	"errors"

	"github.com/ChristianF88/burstx/ingestor"
	"github.com/ChristianF88/burstx/tree"
	"go.uber.org/zap"
)

// TreeReloader re-reads a data file after each change and hands the decoded
// tree to apply. A file that fails to load is logged and the previous tree
// stays in place.
type TreeReloader struct {
	path  string
	apply func([]*tree.Node)
	log   *zap.Logger
	opts  []Option
}

func NewTreeReloader(path string, apply func([]*tree.Node), logger *zap.Logger, opts ...Option) *TreeReloader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TreeReloader{path: path, apply: apply, log: logger, opts: opts}
}

// Reload loads the file once and applies it on success.
func (r *TreeReloader) Reload() error {
	nodes, err := ingestor.Load(r.path)
	if err != nil {
		r.log.Warn("reload failed, keeping previous tree", zap.String("path", r.path), zap.Error(err))
		return err
	}
	r.log.Info("data file reloaded", zap.String("path", r.path), zap.Int("nodes", tree.Count(nodes)))
	r.apply(nodes)
	return nil
}

// Run watches the file until ctx is cancelled.
func (r *TreeReloader) Run(ctx context.Context) error {
	opts := append([]Option{
		WithLogger(r.log),
		WithOnChange(func() { _ = r.Reload() }),
		WithOnError(func(err error) {
			if errors.Is(err, ErrFileRemoved) {
				r.log.Warn("data file removed, keeping previous tree", zap.String("path", r.path))
				return
			}
			r.log.Error("watch error", zap.String("path", r.path), zap.Error(err))
		}),
	}, r.opts...)

	w, err := New(r.path, opts...)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
