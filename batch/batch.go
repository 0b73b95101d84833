// Package batch - Applies detection filtering across a batch of instances.
//
// The filter itself is a pure per-instance function; this package is the thin
// scheduler around it: one call per item, optionally across a worker pool,
// results collected in item order. No state is shared between invocations.
package batch

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-filter/filter"
	"github.com/nvr-ai/go-filter/images"
)

// Item is one detection instance of a batch.
type Item struct {
	Boxes          []images.Rect
	Classification [][]float32
	Other          []filter.Aux
}

// Run filters every item of the batch with the same configuration.
//
// Arguments:
//   - items: The batch; each item is filtered independently.
//   - cfg: Filtering parameters, shared by all items.
//   - workers: Number of goroutines. Values below 2 run sequentially.
//
// Returns:
//   - One *filter.Detections per item, indexed by item position.
//   - error: The error of the lowest-index failing item, annotated with its
//     index. Results are discarded on error.
func Run(items []Item, cfg filter.Config, workers int) ([]*filter.Detections, error) {
	out := make([]*filter.Detections, len(items))

	if workers < 2 || len(items) < 2 {
		for i, item := range items {
			d, err := filter.Filter(item.Boxes, item.Classification, item.Other, cfg)
			if err != nil {
				return nil, errors.Wrapf(err, "item %d", i)
			}
			out[i] = d
		}
		return out, nil
	}

	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int)
	errs := make([]error, len(items))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i], errs[i] = filter.Filter(items[i].Boxes, items[i].Classification, items[i].Other, cfg)
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	// Report the lowest-index failure so the outcome does not depend on
	// goroutine scheduling.
	for i, err := range errs {
		if err != nil {
			return nil, errors.Wrapf(err, "item %d", i)
		}
	}
	return out, nil
}
