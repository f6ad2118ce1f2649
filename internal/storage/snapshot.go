package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mselser95/bookie-arb/internal/arbitrage"
	"github.com/mselser95/bookie-arb/pkg/types"
)

// Snapshot file names.
const (
	PairsFile          = "matching_matches.json"
	opportunityLogFile = "opportunities.jsonl"
)

// ErrNoSnapshot is returned when a snapshot file has not been written yet.
var ErrNoSnapshot = errors.New("snapshot not found")

// SnapshotStorage keeps JSON snapshots under one directory: the fixture list
// of each source, the matched pairs, and opportunities both as an append-only
// log and as per-run files.
type SnapshotStorage struct {
	dir    string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSnapshotStorage creates dir if needed.
func NewSnapshotStorage(dir string, logger *zap.Logger) (*SnapshotStorage, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	return &SnapshotStorage{
		dir:    dir,
		logger: logger,
	}, nil
}

// Dir returns the snapshot directory.
func (s *SnapshotStorage) Dir() string {
	return s.dir
}

// FixturesFile returns the snapshot file name for a source's fixture list.
func FixturesFile(source string) string {
	return source + "_matches.json"
}

// StoreOpportunity appends the opportunity to the opportunity log.
func (s *SnapshotStorage) StoreOpportunity(_ context.Context, opp *arbitrage.Opportunity) error {
	line, err := json.Marshal(opp)
	if err != nil {
		return fmt.Errorf("encode opportunity: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(filepath.Join(s.dir, opportunityLogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open opportunity log: %w", err)
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	if err != nil {
		return fmt.Errorf("append opportunity: %w", err)
	}

	return nil
}

// WriteOpportunities writes one run's opportunities to
// opportunities-<timestamp>.json and returns the path.
func (s *SnapshotStorage) WriteOpportunities(opps []*arbitrage.Opportunity, at time.Time) (string, error) {
	if opps == nil {
		opps = []*arbitrage.Opportunity{}
	}

	name := "opportunities-" + at.UTC().Format("20060102T150405Z") + ".json"
	err := s.writeJSON(name, opps)
	if err != nil {
		return "", err
	}

	return filepath.Join(s.dir, name), nil
}

// WriteFixtures replaces the fixture snapshot of source.
func (s *SnapshotStorage) WriteFixtures(source string, fixtures []types.RawFixture) error {
	if fixtures == nil {
		fixtures = []types.RawFixture{}
	}

	err := s.writeJSON(FixturesFile(source), fixtures)
	if err != nil {
		return err
	}

	s.logger.Info("fixtures-snapshot-written",
		zap.String("source", source),
		zap.Int("fixture-count", len(fixtures)))

	return nil
}

// ReadFixtures loads the fixture snapshot of source.
func (s *SnapshotStorage) ReadFixtures(source string) ([]types.RawFixture, error) {
	var fixtures []types.RawFixture
	err := s.readJSON(FixturesFile(source), &fixtures)
	if err != nil {
		return nil, err
	}

	return fixtures, nil
}

// WritePairs replaces the matched pairs snapshot.
func (s *SnapshotStorage) WritePairs(pairs []types.MatchedFixturePair) error {
	if pairs == nil {
		pairs = []types.MatchedFixturePair{}
	}

	return s.writeJSON(PairsFile, pairs)
}

// ReadPairs loads the matched pairs snapshot.
func (s *SnapshotStorage) ReadPairs() ([]types.MatchedFixturePair, error) {
	var pairs []types.MatchedFixturePair
	err := s.readJSON(PairsFile, &pairs)
	if err != nil {
		return nil, err
	}

	return pairs, nil
}

// Close is a no-op; every write is flushed when it returns.
func (s *SnapshotStorage) Close() error {
	return nil
}

// writeJSON writes through a temp file so readers never see a partial file.
func (s *SnapshotStorage) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}

	err = os.Rename(tmp.Name(), filepath.Join(s.dir, name))
	if err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}

	return nil
}

func (s *SnapshotStorage) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", name, ErrNoSnapshot)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}

	err = json.Unmarshal(data, v)
	if err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}

	return nil
}

// ReadFixturesFile loads a fixture list from any JSON file path.
func ReadFixturesFile(path string) ([]types.RawFixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures file: %w", err)
	}

	var fixtures []types.RawFixture
	err = json.Unmarshal(data, &fixtures)
	if err != nil {
		return nil, fmt.Errorf("decode fixtures file: %w", err)
	}

	return fixtures, nil
}
