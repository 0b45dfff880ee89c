// Package store persists the network counters across reboots.
//
// The counters live in a single file that mimics one erasable flash sector: the
// CBOR encoded record followed by 0xFF padding up to the sector size.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fxamacker/cbor/v2"
)

// MaxBSSIDs bounds the number of remembered access points.
const MaxBSSIDs = 1000

// DefaultSectorSize is the erase size of the RP2040 flash.
const DefaultSectorSize = 4096

// ErrTooLarge is returned when a record does not fit the sector.
var ErrTooLarge = errors.New("store: record too large for sector")

// Counters is the persisted record.
type Counters struct {
	WifiCounted uint32   `cbor:"1,keyasint"`
	BSSIDs      []string `cbor:"2,keyasint"`
}

// Store loads and saves counters.
type Store interface {
	Load() (Counters, error)
	Save(Counters) error
}

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsEmpty,
	}
	if encMode, err = encOpts.EncMode(); err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxArrayElements: MaxBSSIDs + 1,
	}
	if decMode, err = decOpts.DecMode(); err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// FileStore keeps the counters in a sector sized file.
type FileStore struct {
	Path       string
	SectorSize int
}

// NewFileStore returns a store at path with the default sector size.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path, SectorSize: DefaultSectorSize}
}

func (s *FileStore) sectorSize() int {
	if s.SectorSize <= 0 {
		return DefaultSectorSize
	}
	return s.SectorSize
}

// Load reads the counters. A missing file or an erased sector yields zero counters.
func (s *FileStore) Load() (Counters, error) {
	var c Counters

	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	} else if err != nil {
		return c, fmt.Errorf("store: %w", err)
	}
	if len(bytes.Trim(data, "\xff")) == 0 {
		return c, nil
	}

	if _, err = decMode.UnmarshalFirst(data, &c); err != nil {
		return Counters{}, fmt.Errorf("store: %s: %w", s.Path, err)
	}
	if len(c.BSSIDs) > MaxBSSIDs {
		c.BSSIDs = c.BSSIDs[:MaxBSSIDs]
	}
	return c, nil
}

// Save writes the counters, replacing the file atomically. BSSIDs are ordered oldest
// first; the oldest ones are dropped until the record fits the sector. The count is
// always kept.
func (s *FileStore) Save(c Counters) error {
	if len(c.BSSIDs) > MaxBSSIDs {
		c.BSSIDs = c.BSSIDs[len(c.BSSIDs)-MaxBSSIDs:]
	}
	size := s.sectorSize()
	data, err := fit(c, size)
	if err != nil {
		return err
	}

	sector := bytes.Repeat([]byte{0xff}, size)
	copy(sector, data)

	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".counters-*")
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(sector); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("store: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("store: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err = os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}

// fit encodes c with the longest suffix of its BSSIDs that fits in size bytes.
func fit(c Counters, size int) ([]byte, error) {
	encode := func(drop int) ([]byte, error) {
		data, err := encMode.Marshal(Counters{WifiCounted: c.WifiCounted, BSSIDs: c.BSSIDs[drop:]})
		if err != nil {
			return nil, fmt.Errorf("store: %w", err)
		}
		return data, nil
	}

	data, err := encode(0)
	if err != nil || len(data) <= size {
		return data, err
	}
	// Smallest number of dropped BSSIDs that fits, the record shrinks as drop grows.
	lo, hi := 1, len(c.BSSIDs)
	for lo < hi {
		mid := (lo + hi) / 2
		if data, err = encode(mid); err != nil {
			return nil, err
		}
		if len(data) <= size {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	if data, err = encode(lo); err != nil {
		return nil, err
	}
	if len(data) > size {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrTooLarge, len(data), size)
	}
	return data, nil
}

// Interface checks.
var _ Store = (*FileStore)(nil)
