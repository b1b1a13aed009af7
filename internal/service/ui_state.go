package service

import (
	"log/slog"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/tejashwikalptaru/sonik/internal/domain"
)

// DefaultSendTimeout bounds how long the UI waits for the audio task to take
// a track or command before dropping it.
const DefaultSendTimeout = time.Second

// UIState is everything the UI task owns: tabs, cursors, the queue, search
// state and the now-playing track. It also holds the UI ends of the channels
// to the audio task. The renderer reads the exported fields every frame.
//
// UIState is not safe for concurrent use; only the UI task touches it.
type UIState struct {
	logger *slog.Logger

	Tabs    TabsState
	Columns LibraryColumns
	Queue   *Queue

	// NowPlaying is the dummy track when nothing is playing.
	NowPlaying domain.Track

	SearchInput   string
	SearchResults []SearchResult
	SearchSelect  int

	// LibraryStale is set when the music folder changed after indexing.
	LibraryStale bool

	Library domain.Library
	Stats   domain.Stats

	search *SearchService

	trackTx     chan<- domain.Track
	cmdTx       chan<- domain.PlaybackCommand
	beaconRx    <-chan bool
	sendTimeout time.Duration
}

// NewUIState creates the UI state for a loaded library.
func NewUIState(
	logger *slog.Logger,
	library domain.Library,
	stats domain.Stats,
	search *SearchService,
	tracks chan<- domain.Track,
	commands chan<- domain.PlaybackCommand,
	beacon <-chan bool,
) *UIState {
	return &UIState{
		logger:      logger,
		Tabs:        NewTabsState(),
		Queue:       NewQueue(),
		NowPlaying:  domain.DummyTrack(),
		Library:     library,
		Stats:       stats,
		search:      search,
		trackTx:     tracks,
		cmdTx:       commands,
		beaconRx:    beacon,
		sendTimeout: DefaultSendTimeout,
	}
}

// SetSendTimeout overrides DefaultSendTimeout.
func (u *UIState) SetSendTimeout(d time.Duration) {
	u.sendTimeout = d
}

// OnUp moves the cursor of the current tab up.
func (u *UIState) OnUp() {
	switch u.Tabs.Index {
	case TabLibrary:
		u.Columns.Up(u.Library)
	case TabSearch:
		if n := len(u.SearchResults); n > 0 {
			u.SearchSelect = wrap(u.SearchSelect-1, n)
		}
	}
}

// OnDown moves the cursor of the current tab down.
func (u *UIState) OnDown() {
	switch u.Tabs.Index {
	case TabLibrary:
		u.Columns.Down(u.Library)
	case TabSearch:
		if n := len(u.SearchResults); n > 0 {
			u.SearchSelect = wrap(u.SearchSelect+1, n)
		}
	}
}

// SwitchLeft activates the library column to the left.
func (u *UIState) SwitchLeft() {
	u.Columns.SwitchLeft()
}

// SwitchRight activates the library column to the right.
func (u *UIState) SwitchRight() {
	u.Columns.SwitchRight()
}

// selection returns the tracks under the library cursor: the selected track,
// the selected album or every album of the selected artist, depending on the
// active column.
func (u *UIState) selection() []domain.Track {
	at := u.Columns.Coordinate()
	switch u.Columns.Active {
	case ColumnArtist:
		if artist, ok := u.Library.Artist(at); ok {
			return artist.Tracks()
		}
	case ColumnAlbum:
		if album, ok := u.Library.Album(at); ok {
			return slices.Clone(album.Tracks)
		}
	case ColumnTrack:
		if track, ok := u.Library.Track(at); ok {
			return []domain.Track{track}
		}
	}
	return nil
}

// AddToQueue appends the library selection to the queue.
func (u *UIState) AddToQueue() {
	for _, t := range u.selection() {
		u.Queue.PushBack(t)
	}
}

// AddToFront puts the library selection at the head of the queue, keeping
// its order.
func (u *UIState) AddToFront() {
	tracks := u.selection()
	for i := len(tracks) - 1; i >= 0; i-- {
		u.Queue.PushFront(tracks[i])
	}
}

// PlayNow plays the track under the library cursor.
func (u *UIState) PlayNow() {
	if track, ok := u.Library.Track(u.Columns.Coordinate()); ok {
		_ = u.play(track)
	}
}

// PlayFromQueue plays the next queued track. A track the audio task did not
// take goes back to the head of the queue.
func (u *UIState) PlayFromQueue() {
	track, err := u.Queue.TakeFront()
	if err != nil {
		return
	}
	if err := u.play(track); err != nil {
		u.Queue.PushFront(track)
	}
}

func (u *UIState) play(track domain.Track) error {
	if err := u.sendTrack(track); err != nil {
		return err
	}
	u.NowPlaying = track
	return nil
}

// PausePlay toggles pause on the audio task.
func (u *UIState) PausePlay() {
	_ = u.sendCommand(domain.CommandTogglePause)
}

// Stop stops playback and blanks the now-playing track.
func (u *UIState) Stop() {
	if err := u.sendCommand(domain.CommandStop); err == nil {
		u.BlankNowPlay()
	}
}

// SkipNext plays the next queued track, or stops when the queue is empty.
func (u *UIState) SkipNext() {
	if u.Queue.IsEmpty() {
		u.Stop()
		return
	}
	u.PlayFromQueue()
}

// ClearQueue empties the queue.
func (u *UIState) ClearQueue() {
	u.Queue.Clear()
}

// ShuffleQueue shuffles the queue.
func (u *UIState) ShuffleQueue() {
	u.Queue.Shuffle()
}

// Search runs the query in SearchInput. On success the input is cleared and
// the results replace the previous ones; unparsable input is left as typed.
func (u *UIState) Search() {
	q, ok := domain.ParseQuery(u.SearchInput)
	if !ok {
		return
	}
	u.SearchInput = ""
	u.SearchSelect = 0
	u.SearchResults = u.search.Search(q)
}

// BlankNowPlay resets the now-playing track to the dummy.
func (u *UIState) BlankNowPlay() {
	if !u.NowPlaying.IsDummy() {
		u.NowPlaying = domain.DummyTrack()
	}
}

// OnEnter plays the selection on the library tab. On the search tab it runs
// the typed query, or plays the selected track result when nothing is typed.
func (u *UIState) OnEnter() {
	switch u.Tabs.Index {
	case TabLibrary:
		u.PlayNow()
	case TabSearch:
		if u.SearchInput != "" {
			u.Search()
			return
		}
		if r, ok := u.SelectedResult(); ok && r.Scope == domain.ScopeTitle {
			if track, ok := u.Library.Track(r.At); ok {
				_ = u.play(track)
			}
		}
	}
}

// SelectedResult returns the search result under the cursor.
func (u *UIState) SelectedResult() (SearchResult, bool) {
	if u.SearchSelect < 0 || u.SearchSelect >= len(u.SearchResults) {
		return SearchResult{}, false
	}
	return u.SearchResults[u.SearchSelect], true
}

// AddSelectedResult appends the tracks of the selected search result to the queue.
func (u *UIState) AddSelectedResult() {
	r, ok := u.SelectedResult()
	if !ok {
		return
	}
	for _, t := range r.Tracks(u.Library) {
		u.Queue.PushBack(t)
	}
}

// PushSearchChar appends r to the search input.
func (u *UIState) PushSearchChar(r rune) {
	u.SearchInput += string(r)
}

// PopSearchChar removes the last character of the search input.
func (u *UIState) PopSearchChar() {
	_, size := utf8.DecodeLastRuneInString(u.SearchInput)
	u.SearchInput = u.SearchInput[:len(u.SearchInput)-size]
}

// MarkLibraryStale records that the music folder changed since indexing.
func (u *UIState) MarkLibraryStale() {
	u.LibraryStale = true
}

// AwaitBeacon waits up to timeout for the audio task's beacon. An empty sink
// advances to the next queued track, or blanks the now-playing track when the
// queue is empty. Reports whether a beacon arrived.
func (u *UIState) AwaitBeacon(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case empty, ok := <-u.beaconRx:
		if !ok {
			return false
		}
		if empty {
			if u.Queue.IsEmpty() {
				u.BlankNowPlay()
			} else {
				u.PlayFromQueue()
			}
		}
		return true
	case <-timer.C:
		return false
	}
}

// sendTrack hands track to the audio task, giving up with
// domain.ErrSendTimeout after the send timeout.
func (u *UIState) sendTrack(track domain.Track) error {
	timer := time.NewTimer(u.sendTimeout)
	defer timer.Stop()

	select {
	case u.trackTx <- track:
		return nil
	case <-timer.C:
		u.logger.Debug("audio task did not take track", slog.String("file_path", track.FilePath))
		return domain.ErrSendTimeout
	}
}

func (u *UIState) sendCommand(cmd domain.PlaybackCommand) error {
	timer := time.NewTimer(u.sendTimeout)
	defer timer.Stop()

	select {
	case u.cmdTx <- cmd:
		return nil
	case <-timer.C:
		u.logger.Debug("audio task did not take command", slog.String("command", cmd.String()))
		return domain.ErrSendTimeout
	}
}
