// Package storage persists period records inside a single named container.
//
// The container holds a JSON mapping from period key ("YYYY-MM") to
// {events, resourceCount}. A missing or unparseable container reads as an
// empty mapping; only genuine I/O failures are returned as errors.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/Tiliavir/resource-board/internal/model"
)

// DefaultContainer is the container name used when none is configured.
const DefaultContainer = "calendarData"

// Backend kinds accepted by Open.
const (
	KindFile   = "file"
	KindSQLite = "sqlite"
)

// backend reads and writes the raw bytes of one container.
type backend interface {
	read(ctx context.Context) ([]byte, bool, error)
	write(ctx context.Context, data []byte) error
	close() error
}

// quarantiner is implemented by backends that can set aside a corrupt container.
type quarantiner interface {
	quarantine() (string, error)
}

// Store is a durable period store over one container.
type Store struct {
	name    string
	backend backend
	logger  *slog.Logger
}

func newStore(name string, b backend, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		name:    name,
		backend: b,
		logger:  logger.With("component", "storage", "container", name),
	}
}

// BaseDir returns the default data directory (~/.rboard).
func BaseDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".rboard"), nil
}

// Open returns a store of the given kind rooted at dir.
func Open(ctx context.Context, kind, dir, container string, logger *slog.Logger) (*Store, error) {
	if container == "" {
		container = DefaultContainer
	}
	switch kind {
	case "", KindFile:
		return NewFileStore(dir, container, logger), nil
	case KindSQLite:
		return OpenSQLite(ctx, filepath.Join(dir, "board.db"), container, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", kind)
	}
}

// Name returns the container name.
func (s *Store) Name() string {
	return s.name
}

// Close releases the backend.
func (s *Store) Close() error {
	return s.backend.close()
}

// Load returns the record stored under key. found is false when the
// container has no record for key; the returned record is then zero.
func (s *Store) Load(ctx context.Context, key string) (model.PeriodRecord, bool, error) {
	c, err := s.readContainer(ctx)
	if err != nil {
		return model.PeriodRecord{}, false, err
	}
	rec, ok := c[key]
	if !ok {
		return model.PeriodRecord{}, false, nil
	}
	return rec, true, nil
}

// Save stores rec under key, leaving every other period untouched.
func (s *Store) Save(ctx context.Context, key string, rec model.PeriodRecord) error {
	c, err := s.readContainer(ctx)
	if err != nil {
		return err
	}
	if rec.Events == nil {
		rec.Events = []model.Event{}
	}
	c[key] = rec
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("storage error marshalling container: %w", err)
	}
	if err := s.backend.write(ctx, data); err != nil {
		return err
	}
	s.logger.Debug("period saved", "period", key, "events", len(rec.Events), "resources", rec.ResourceCount)
	return nil
}

// Periods lists the stored period keys in ascending order.
func (s *Store) Periods(ctx context.Context) ([]string, error) {
	c, err := s.readContainer(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *Store) readContainer(ctx context.Context) (model.Container, error) {
	data, ok, err := s.backend.read(ctx)
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return model.Container{}, nil
	}
	c, err := decodeContainer(data)
	if err != nil {
		attrs := []any{"err", err}
		if q, ok := s.backend.(quarantiner); ok {
			if backup, qerr := q.quarantine(); qerr == nil {
				attrs = append(attrs, "backup", backup)
			}
		}
		s.logger.Warn("corrupt container, starting empty", attrs...)
		return model.Container{}, nil
	}
	return c, nil
}

var errNullContainer = errors.New("container is null")

func decodeContainer(data []byte) (model.Container, error) {
	var c model.Container
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errNullContainer
	}
	return c, nil
}
