package takeoff

import (
	"context"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tsawler/takeoff/model"
)

// BatchItem is one drawing of a batch.
type BatchItem struct {
	Path    string
	Request Request
}

// AnalyzeAll analyses drawings in parallel, at most concurrency at a time
// (GOMAXPROCS when concurrency <= 0). Results are returned in input order.
// Drawings that cannot be read yield results with an extraction-failed
// question; the error is returned only when ctx is cancelled.
func (a *Analyzer) AnalyzeAll(ctx context.Context, items []BatchItem, concurrency int) ([]*model.Result, error) {
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}

	results := make([]*model.Result, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, item := range items {
		req := item.Request
		if req.DrawingRef == "" {
			req.DrawingRef = RefFromPath(item.Path)
		}
		g.Go(func() error {
			res, err := a.AnalyzeFile(gctx, item.Path, req)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// RefFromPath derives a drawing reference from a file name, such as
// "E-101" for "plans/E-101.pdf".
func RefFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
