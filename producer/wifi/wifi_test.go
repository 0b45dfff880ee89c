package wifi

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BeatGlow/badge/share"
	"github.com/BeatGlow/badge/store"
)

const iwOutput = `BSS aa:bb:cc:00:00:01(on wlan0) -- associated
	last seen: 120 ms ago
	TSF: 0 usec (0d, 00:00:00)
	freq: 2437
	signal: -48.00 dBm
	SSID: home
	RSN:	 * Version: 1
BSS AA:BB:CC:00:00:02(on wlan0)
	freq: 5180
	signal: -71.00 dBm
	SSID: cafe
BSS aa:bb:cc:00:00:03(on wlan0)
	signal: -60.00 dBm
	SSID:
`

func TestParseIW(t *testing.T) {
	aps, err := ParseIW(strings.NewReader(iwOutput))
	require.NoError(t, err)
	require.Len(t, aps, 3)

	assert.Equal(t, AccessPoint{BSSID: "aa:bb:cc:00:00:01", SSID: "home", Signal: -48}, aps[0])
	assert.Equal(t, "aa:bb:cc:00:00:02", aps[1].BSSID, "BSSIDs are lower case")
	assert.Equal(t, "cafe", aps[1].SSID)
	assert.Equal(t, "aa:bb:cc:00:00:03", aps[2].Name(), "hidden networks show their BSSID")
}

func TestIWScannerError(t *testing.T) {
	s := &IWScanner{Interface: "wlan0", Command: filepath.Join(t.TempDir(), "no-such-iw")}
	_, err := s.Scan()
	assert.Error(t, err)
}

type fakeScanner struct {
	scans [][]AccessPoint
	err   error
}

func (f *fakeScanner) Scan() ([]AccessPoint, error) {
	if f.err != nil {
		return nil, f.err
	}
	aps := f.scans[0]
	f.scans = f.scans[1:]
	return aps, nil
}

type memStore struct {
	counters store.Counters
	saves    int
	err      error
}

func (m *memStore) Load() (store.Counters, error) { return m.counters, nil }

func (m *memStore) Save(c store.Counters) error {
	if m.err != nil {
		return m.err
	}
	m.counters = c
	m.saves++
	return nil
}

func ap(n int, ssid string, signal float64) AccessPoint {
	return AccessPoint{BSSID: fmt.Sprintf("00:00:00:00:00:%02x", n), SSID: ssid, Signal: signal}
}

func TestPublishCountsNewBSSIDs(t *testing.T) {
	s := share.New()
	st := &memStore{counters: store.Counters{WifiCounted: 10, BSSIDs: []string{"00:00:00:00:00:01"}}}
	scanner := &fakeScanner{scans: [][]AccessPoint{
		{ap(1, "home", -40), ap(2, "cafe", -70), ap(3, "library", -50)},
		{ap(1, "home", -40), ap(3, "library", -50)},
	}}
	p := New(s, scanner, st)
	require.NoError(t, p.Restore())
	assert.Equal(t, uint32(10), s.WifiCount())

	added, err := p.Publish()
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, uint32(12), s.WifiCount())
	assert.Equal(t, []string{"home", "library", "cafe"}, s.Networks(), "strongest first")
	assert.Equal(t, 1, st.saves)
	assert.Equal(t, uint32(12), st.counters.WifiCounted)
	assert.Len(t, st.counters.BSSIDs, 3)

	added, err = p.Publish()
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Equal(t, 1, st.saves, "nothing new, nothing saved")
	assert.Equal(t, []string{"home", "library"}, s.Networks())
}

func TestPublishErrors(t *testing.T) {
	s := share.New()
	st := &memStore{}
	scanner := &fakeScanner{err: errors.New("device busy")}
	p := New(s, scanner, st)

	_, err := p.Publish()
	assert.Error(t, err)

	scanner.err = nil
	scanner.scans = [][]AccessPoint{{ap(1, "home", -40)}}
	st.err = errors.New("read-only file system")
	added, err := p.Publish()
	assert.Error(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, uint32(1), s.WifiCount(), "the count is published even when saving fails")
}

func TestRememberBounded(t *testing.T) {
	p := New(share.New(), nil, &memStore{})
	for i := 0; i < store.MaxBSSIDs+10; i++ {
		assert.True(t, p.remember(fmt.Sprintf("bssid-%d", i)))
	}
	assert.Len(t, p.recent, store.MaxBSSIDs)
	assert.Len(t, p.known, store.MaxBSSIDs)
	assert.Equal(t, "bssid-10", p.recent[0])
	assert.False(t, p.remember("bssid-20"))
}

func TestRestoreFromFile(t *testing.T) {
	st := store.NewFileStore(filepath.Join(t.TempDir(), "counters.bin"))
	require.NoError(t, st.Save(store.Counters{WifiCounted: 5, BSSIDs: []string{"00:00:00:00:00:01"}}))

	s := share.New()
	p := New(s, &fakeScanner{scans: [][]AccessPoint{{ap(1, "home", -40), ap(2, "cafe", -40)}}}, st)
	require.NoError(t, p.Restore())
	added, err := p.Publish()
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	c, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, uint32(6), c.WifiCounted)
	assert.Equal(t, uint32(6), p.Count())
}

func TestPersistBeyondSectorCapacity(t *testing.T) {
	st := store.NewFileStore(filepath.Join(t.TempDir(), "counters.bin"))
	scanner := &fakeScanner{}
	for i := 0; i < 300; i++ {
		scanner.scans = append(scanner.scans, []AccessPoint{{
			BSSID:  fmt.Sprintf("02:00:00:00:%02x:%02x", i>>8, i&0xff),
			SSID:   "net",
			Signal: -60,
		}})
	}
	p := New(share.New(), scanner, st)
	require.NoError(t, p.Restore())

	for i := 0; i < 300; i++ {
		_, err := p.Publish()
		require.NoError(t, err, "scan %d", i)
	}

	c, err := st.Load()
	require.NoError(t, err)
	assert.Equal(t, uint32(300), c.WifiCounted)

	restored := New(share.New(), nil, st)
	require.NoError(t, restored.Restore())
	assert.Equal(t, uint32(300), restored.Count())
}
