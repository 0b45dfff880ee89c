// Package rotate advances the badge image on a timer.
package rotate

import (
	"time"

	"go.uber.org/zap"

	"github.com/BeatGlow/badge/images"
	"github.com/BeatGlow/badge/internal/logging"
	"github.com/BeatGlow/badge/share"
)

// Run shows the next image every interval, forever. A zero interval returns at once.
func Run(surface *share.Surface, interval time.Duration) {
	if interval <= 0 {
		return
	}
	log := logging.Named("rotate")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		id := images.Rotate(surface, images.Forward)
		log.Debug("rotated", zap.Stringer("image", id))
	}
}
