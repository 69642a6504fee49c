package tracking

import (
	"log/slog"

	"snakesound.click/internal/audio"
)

// SlogObserver provides structured logging of manager events for debugging
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver creates a new SlogObserver with the given logger.
// If logger is nil, uses the default logger.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogObserver{logger: logger}
}

func (s *SlogObserver) OnAudioEvent(e audio.Event) {
	s.logger.Debug("audio event",
		"kind", string(e.Kind),
		"sound_id", int(e.SoundID),
		"detail", e.Detail,
	)
}
