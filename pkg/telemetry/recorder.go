// Package telemetry persists per-query records to Parquet files for offline
// analysis of retrieval quality and latency.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/ragno-ai/ragno/pkg/types"
)

// QueryRecord is one completed search, flattened for Parquet storage
type QueryRecord struct {
	ID              string    `parquet:"id"`
	Timestamp       time.Time `parquet:"timestamp"`
	Query           string    `parquet:"query"`
	Mode            string    `parquet:"mode"`
	ElapsedMillis   int64     `parquet:"elapsed_millis"`
	ResultCount     int       `parquet:"result_count"`
	ExactCount      int       `parquet:"exact_count"`
	SimilarityCount int       `parquet:"similarity_count"`
	TraversalCount  int       `parquet:"traversal_count"`
	Degraded        bool      `parquet:"degraded"`
}

// Recorder buffers query records and writes them out in batches. It never
// fails a query: write errors are returned from Flush and Close only.
type Recorder struct {
	outputDir string
	mu        sync.Mutex
	buffer    []QueryRecord
	batchSize int
}

// NewRecorder creates a Recorder writing batches under outputDir.
func NewRecorder(outputDir string) (*Recorder, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	return &Recorder{
		outputDir: outputDir,
		batchSize: 100,
		buffer:    make([]QueryRecord, 0, 100),
	}, nil
}

// Record buffers one result set, flushing when the batch fills.
func (r *Recorder) Record(results *types.ResultSet) {
	record := QueryRecord{
		ID:              results.QueryID,
		Timestamp:       time.Now().UTC(),
		Query:           results.Query,
		Mode:            results.Mode,
		ElapsedMillis:   results.Elapsed.Milliseconds(),
		ResultCount:     len(results.Candidates),
		ExactCount:      results.Counts[types.ExactMethod],
		SimilarityCount: results.Counts[types.SimilarityMethod],
		TraversalCount:  results.Counts[types.TraversalMethod],
		Degraded:        results.Degraded,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.buffer = append(r.buffer, record)
	if len(r.buffer) >= r.batchSize {
		// Best effort: a full disk must not take queries down with it.
		if err := r.flush(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write telemetry parquet file: %v\n", err)
		}
	}
}

// Flush writes any buffered records immediately.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flush()
}

// Close flushes remaining records.
func (r *Recorder) Close() error {
	return r.Flush()
}

// flush writes the current buffer to a new Parquet file.
// Caller must hold the lock.
func (r *Recorder) flush() error {
	if len(r.buffer) == 0 {
		return nil
	}

	filename := fmt.Sprintf("queries_%s_%d.parquet", time.Now().Format("20060102_150405"), time.Now().UnixNano())
	path := filepath.Join(r.outputDir, filename)

	if err := parquet.WriteFile(path, r.buffer); err != nil {
		return err
	}

	r.buffer = r.buffer[:0]
	return nil
}
