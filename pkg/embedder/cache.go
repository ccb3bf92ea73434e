package embedder

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"

	badger "github.com/dgraph-io/badger/v4"
)

// CachingClient is a read-through embedding cache backed by Badger. Keys are
// hashes of model+text, values the raw little-endian float32 vector, so
// repeated queries for the same text skip the embedding service entirely.
type CachingClient struct {
	inner  Client
	model  string
	db     *badger.DB
	logger *slog.Logger
}

// NewCachingClient opens (or creates) a cache at dir wrapping inner.
func NewCachingClient(inner Client, model, dir string, logger *slog.Logger) (*CachingClient, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening embedding cache: %w", err)
	}

	return &CachingClient{inner: inner, model: model, db: db, logger: logger}, nil
}

func (c *CachingClient) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	var missTexts []string
	var missIndexes []int

	for i, text := range texts {
		vec, ok := c.lookup(text)
		if ok {
			vectors[i] = vec
			continue
		}
		missTexts = append(missTexts, text)
		missIndexes = append(missIndexes, i)
	}

	if len(missTexts) == 0 {
		return vectors, nil
	}

	fresh, err := c.inner.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	for j, vec := range fresh {
		vectors[missIndexes[j]] = vec
		c.put(missTexts[j], vec)
	}
	return vectors, nil
}

func (c *CachingClient) Dimensions() int { return c.inner.Dimensions() }

func (c *CachingClient) Close() error {
	if err := c.db.Close(); err != nil {
		return err
	}
	return c.inner.Close()
}

func (c *CachingClient) key(text string) []byte {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return sum[:]
}

func (c *CachingClient) lookup(text string) ([]float32, bool) {
	var vec []float32
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(text))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			vec = decodeVector(val)
			return nil
		})
	})
	if err != nil {
		return nil, false
	}
	return vec, true
}

func (c *CachingClient) put(text string, vec []float32) {
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(c.key(text), encodeVector(vec))
	})
	if err != nil {
		// Cache writes are best effort.
		c.logger.Warn("embedding cache write failed", "error", err)
	}
}

func encodeVector(vec []float32) []byte {
	buf := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(buf []byte) []float32 {
	vec := make([]float32, len(buf)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return vec
}
