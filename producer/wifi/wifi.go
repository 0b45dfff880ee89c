// Package wifi counts the distinct access points the badge has been near.
package wifi

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/BeatGlow/badge/internal/logging"
	"github.com/BeatGlow/badge/share"
	"github.com/BeatGlow/badge/store"
)

// DefaultPeriod between scans.
const DefaultPeriod = time.Minute

// Producer scans for networks, counts new BSSIDs and publishes the count and the
// strongest network names. Counters are persisted whenever they grow.
type Producer struct {
	surface *share.Surface
	scanner Scanner
	store   store.Store
	log     *zap.Logger

	count  uint32
	known  map[string]struct{}
	recent []string // remembered BSSIDs, oldest first
}

// New returns a producer. Call [Producer.Restore] before the first scan.
func New(surface *share.Surface, scanner Scanner, st store.Store) *Producer {
	return &Producer{
		surface: surface,
		scanner: scanner,
		store:   st,
		log:     logging.Named("wifi"),
		known:   make(map[string]struct{}),
	}
}

// Restore loads the persisted counters and publishes the count.
func (p *Producer) Restore() error {
	c, err := p.store.Load()
	if err != nil {
		return err
	}
	p.count = c.WifiCounted
	for _, bssid := range c.BSSIDs {
		p.remember(bssid)
	}
	p.surface.SetWifiCount(p.count)
	p.log.Info("counters restored",
		zap.Uint32("count", p.count),
		zap.Int("remembered", len(p.recent)))
	return nil
}

// remember adds bssid, forgetting the oldest one when full.
func (p *Producer) remember(bssid string) bool {
	if _, ok := p.known[bssid]; ok {
		return false
	}
	if len(p.recent) == store.MaxBSSIDs {
		delete(p.known, p.recent[0])
		p.recent = p.recent[1:]
	}
	p.known[bssid] = struct{}{}
	p.recent = append(p.recent, bssid)
	return true
}

// Count is the number of distinct access points seen.
func (p *Producer) Count() uint32 {
	return p.count
}

// Publish runs one scan and returns the number of new access points.
func (p *Producer) Publish() (int, error) {
	aps, err := p.scanner.Scan()
	if err != nil {
		p.log.Warn("scan failed", zap.Error(err))
		return 0, err
	}

	var added int
	for _, ap := range aps {
		if ap.BSSID != "" && p.remember(ap.BSSID) {
			added++
		}
	}

	sort.SliceStable(aps, func(i, j int) bool {
		return aps[i].Signal > aps[j].Signal
	})
	names := make([]string, 0, share.MaxNetworks)
	seen := make(map[string]bool)
	for _, ap := range aps {
		if name := ap.Name(); name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		if len(names) == share.MaxNetworks {
			break
		}
	}
	p.surface.SetNetworks(names)

	if added == 0 {
		return 0, nil
	}
	p.count += uint32(added)
	p.surface.SetWifiCount(p.count)
	p.log.Debug("new networks",
		zap.Int("added", added),
		zap.Uint32("count", p.count))

	if err = p.store.Save(store.Counters{
		WifiCounted: p.count,
		BSSIDs:      append([]string(nil), p.recent...),
	}); err != nil {
		p.log.Error("saving counters failed", zap.Error(err))
		return added, err
	}
	return added, nil
}

// Run scans every period, forever.
func (p *Producer) Run(period time.Duration) {
	for {
		_, _ = p.Publish()
		time.Sleep(period)
	}
}
