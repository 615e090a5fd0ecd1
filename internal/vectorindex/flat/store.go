package flat

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"docqa/internal/domain"
)

const (
	indexFile    = "index.gob"
	metadataFile = "metadata.json"
)

// snapshot is the serialized form of the vector blob. The payload sidecar is
// written separately as JSON; the two artifacts are read and written
// together, position i in one corresponding to position i in the other.
type snapshot struct {
	Dimension int
	Vectors   [][]float32
}

type store struct {
	dir string
}

func newStore(dir string) (*store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	return &store{dir: dir}, nil
}

func (s *store) indexPath() string    { return filepath.Join(s.dir, indexFile) }
func (s *store) metadataPath() string { return filepath.Join(s.dir, metadataFile) }

// load reads both artifacts. ok is false when neither exists yet. Exactly
// one artifact present, or disagreeing record counts, is corruption.
func (s *store) load() (snapshot, []domain.Chunk, bool, error) {
	indexData, indexErr := os.ReadFile(s.indexPath())
	metaData, metaErr := os.ReadFile(s.metadataPath())

	indexMissing := errors.Is(indexErr, fs.ErrNotExist)
	metaMissing := errors.Is(metaErr, fs.ErrNotExist)
	if indexMissing && metaMissing {
		return snapshot{}, nil, false, nil
	}
	if indexMissing || metaMissing {
		return snapshot{}, nil, false,
			fmt.Errorf("%w: only one of %s/%s present", domain.ErrIndexCorrupt, indexFile, metadataFile)
	}
	if indexErr != nil {
		return snapshot{}, nil, false, fmt.Errorf("read %s: %w", indexFile, indexErr)
	}
	if metaErr != nil {
		return snapshot{}, nil, false, fmt.Errorf("read %s: %w", metadataFile, metaErr)
	}

	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(indexData)).Decode(&snap); err != nil {
		return snapshot{}, nil, false, fmt.Errorf("%w: decode %s: %v", domain.ErrIndexCorrupt, indexFile, err)
	}
	var payloads []domain.Chunk
	if err := json.Unmarshal(metaData, &payloads); err != nil {
		return snapshot{}, nil, false, fmt.Errorf("%w: decode %s: %v", domain.ErrIndexCorrupt, metadataFile, err)
	}
	if len(snap.Vectors) != len(payloads) {
		return snapshot{}, nil, false, fmt.Errorf("%w: %d vectors, %d payloads",
			domain.ErrIndexCorrupt, len(snap.Vectors), len(payloads))
	}
	return snap, payloads, true, nil
}

// save writes both artifacts through temp files renamed into place, so a
// crash mid-write leaves the previous pair readable.
func (s *store) save(snap snapshot, payloads []domain.Chunk) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return fmt.Errorf("encode %s: %w", indexFile, err)
	}
	metaData, err := json.Marshal(payloads)
	if err != nil {
		return fmt.Errorf("encode %s: %w", metadataFile, err)
	}
	if err := writeAtomic(s.indexPath(), buf.Bytes()); err != nil {
		return err
	}
	return writeAtomic(s.metadataPath(), metaData)
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
