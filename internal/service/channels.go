package service

import (
	"sync"

	"github.com/tejashwikalptaru/sonik/internal/domain"
)

// Channels connects the UI task and the audio task.
// All three channels are unbuffered: a send completes only when the other
// task is ready to receive it.
type Channels struct {
	// Tracks carries the track to play next (UI -> audio).
	Tracks chan domain.Track

	// Commands carries pause/stop commands (UI -> audio).
	Commands chan domain.PlaybackCommand

	// Beacon reports whether the audio sink is empty (audio -> UI).
	Beacon chan bool

	closeOnce sync.Once
}

// NewChannels creates the channel set.
func NewChannels() *Channels {
	return &Channels{
		Tracks:   make(chan domain.Track),
		Commands: make(chan domain.PlaybackCommand),
		Beacon:   make(chan bool),
	}
}

// Close closes the UI -> audio channels, which ends the audio task.
// Only the UI task may call it; repeated calls are no-ops.
func (c *Channels) Close() {
	c.closeOnce.Do(func() {
		close(c.Tracks)
		close(c.Commands)
	})
}
