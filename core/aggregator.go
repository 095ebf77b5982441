package core

import (
	"context"
	"math"
	"runtime"
	"sync"

	"github.com/signalsfoundry/coverage-simulator/model"
)

const defaultChunkSize = 256

// EvaluateGrid evaluates the propagation model for every transmitter at every
// grid point and combines the per-transmitter estimates under the given rule.
//
// Points are independent, so evaluation is chunked across a bounded worker
// pool. Results are written by grid index into a pre-sized slice, keeping the
// output order deterministic regardless of worker scheduling. Cancellation is
// honoured between chunks; a cancelled or failed evaluation returns no
// partial results.
func EvaluateGrid(ctx context.Context, points []model.GridPoint, txs []model.Transmitter, pm PropagationModel, rule model.CombinationRule, workers, chunkSize int) ([]model.GridPoint, error) {
	if len(txs) == 0 {
		return nil, &ModelParameterError{Model: "aggregator", Param: "transmitters", Reason: "at least one transmitter is required"}
	}
	switch rule {
	case model.CombineMaxSelect, model.CombineLinearSum:
	default:
		return nil, &ModelParameterError{Model: "aggregator", Param: "combination_rule", Reason: "unknown combination rule"}
	}
	if err := pm.Validate(); err != nil {
		return nil, err
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	out := make([]model.GridPoint, len(points))
	copy(out, points)

	type chunk struct{ start, end int }
	chunks := make(chan chunk)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for c := range chunks {
				if failed() {
					continue
				}
				for i := c.start; i < c.end; i++ {
					if err := evaluatePoint(&out[i], txs, pm, rule); err != nil {
						fail(err)
						break
					}
				}
			}
		}()
	}

dispatch:
	for start := 0; start < len(out); start += chunkSize {
		select {
		case <-ctx.Done():
			fail(ctx.Err())
			break dispatch
		default:
		}
		end := start + chunkSize
		if end > len(out) {
			end = len(out)
		}
		chunks <- chunk{start: start, end: end}
	}
	close(chunks)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// evaluatePoint fills one grid point in place. It touches no state outside
// the point under evaluation.
func evaluatePoint(pt *model.GridPoint, txs []model.Transmitter, pm PropagationModel, rule model.CombinationRule) error {
	signals := make(map[string]float64, len(txs))
	best := math.Inf(-1)
	bestID := ""
	linearSumMW := 0.0

	for _, tx := range txs {
		dbm, err := pm.SignalAt(tx, pt.Position)
		if err != nil {
			return err
		}
		signals[tx.ID] = dbm
		if dbm > best {
			best = dbm
			bestID = tx.ID
		}
		linearSumMW += math.Pow(10, dbm/10)
	}

	pt.Signals = signals
	pt.BestID = bestID
	switch rule {
	case model.CombineLinearSum:
		pt.AggregatedDBm = 10 * math.Log10(linearSumMW)
	default:
		pt.AggregatedDBm = best
	}
	return nil
}
