package store

import (
	"context"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/preston-bernstein/fixture-data-service/internal/domain/fixtures"
)

// Record is one cache entry in backend-neutral form. Key is the canonical scope string.
type Record struct {
	Key       string             `json:"key"`
	Fixtures  []fixtures.Fixture `json:"fixtures"`
	WrittenAt time.Time          `json:"writtenAt"`
}

// Backend persists records. Set replaces the whole record for its key atomically.
type Backend interface {
	Get(ctx context.Context, key string) (Record, bool, error)
	Set(ctx context.Context, rec Record) error
	// List returns every record whose key starts with prefix, ordered by key.
	List(ctx context.Context, prefix string) ([]Record, error)
	Close() error
}

// EncodeRecord serializes a record for byte-oriented backends.
func EncodeRecord(rec Record) ([]byte, error) {
	return sonic.ConfigStd.Marshal(rec)
}

// DecodeRecord parses bytes written by EncodeRecord.
func DecodeRecord(data []byte) (Record, error) {
	var rec Record
	if err := sonic.ConfigStd.Unmarshal(data, &rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func cloneRecord(rec Record) Record {
	if rec.Fixtures != nil {
		rec.Fixtures = append([]fixtures.Fixture(nil), rec.Fixtures...)
	}
	return rec
}

func hasPrefix(key, prefix string) bool {
	return prefix == "" || strings.HasPrefix(key, prefix)
}
