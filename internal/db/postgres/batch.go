package postgres

import (
	"log"
)

// batchSize bounds how many ids one IN-list query carries
const batchSize = 100

// forEachBatch splits ids into fixed-size batches and runs fn on each.
// A failed batch is logged and skipped so one bad query degrades the
// result instead of aborting the whole lookup; an error is returned only
// when every batch failed.
func forEachBatch(ids []string, fn func(batch []string) error) error {
	if len(ids) == 0 {
		return nil
	}

	total := (len(ids) + batchSize - 1) / batchSize
	failed := 0
	var firstErr error

	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}

		if err := fn(ids[start:end]); err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}
			log.Printf("[DB] Warning: batch %d/%d failed (%d ids skipped): %v", start/batchSize+1, total, end-start, err)
		}
	}

	if failed == total {
		return firstErr
	}
	return nil
}
