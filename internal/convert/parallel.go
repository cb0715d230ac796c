package convert

import (
	"context"
	"fmt"
	"sync"

	"github.com/emirpasic/gods/trees/binaryheap"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/daijirin-converter/internal/segment"
)

// runParallel parses blocks on cfg.Workers goroutines. Results are put back
// in sequence order by a min-heap before they reach handle. A semaphore of
// cfg.Window slots is taken per block read and released once the block is
// handled, which bounds the reorder buffer.
func (c *Converter) runParallel(ctx context.Context, src Source, stats *Stats) error {
	g, gctx := errgroup.WithContext(ctx)

	jobs := make(chan segment.Block)
	results := make(chan result, c.cfg.Window)
	window := make(chan struct{}, c.cfg.Window)

	g.Go(func() error {
		defer close(jobs)
		for src.Scan() {
			select {
			case window <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			c.bytes.Store(src.BytesConsumed())
			select {
			case jobs <- src.Block():
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		if err := src.Err(); err != nil {
			return fmt.Errorf("read dump: %w", err)
		}
		return nil
	})

	var workers sync.WaitGroup
	for range c.cfg.Workers {
		workers.Add(1)
		g.Go(func() error {
			defer workers.Done()
			for b := range jobs {
				select {
				case results <- c.convert(b):
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		workers.Wait()
		close(results)
		return nil
	})

	g.Go(func() error {
		pending := binaryheap.NewWith(func(a, b any) int {
			return a.(result).block.Seq - b.(result).block.Seq
		})
		next := 0
		for r := range results {
			pending.Push(r)
			for {
				top, ok := pending.Peek()
				if !ok || top.(result).block.Seq != next {
					break
				}
				pending.Pop()
				if err := c.handle(gctx, top.(result), stats); err != nil {
					return err
				}
				next++
				<-window
			}
		}
		if err := gctx.Err(); err != nil {
			return err
		}
		if !pending.Empty() {
			return fmt.Errorf("reorder buffer holds %d entries after input end", pending.Size())
		}
		return nil
	})

	return g.Wait()
}
