package service

import "github.com/tejashwikalptaru/sonik/internal/domain"

// Tab indices, in display order.
const (
	TabQueue = iota
	TabLibrary
	TabSearch
)

// TabTitles are the labels of the tabs, indexed by the Tab constants.
var TabTitles = []string{"queue", "library", "search"}

// TabsState is the selected tab. Next and Previous wrap around.
type TabsState struct {
	Titles []string
	Index  int
}

// NewTabsState starts on the first tab.
func NewTabsState() TabsState {
	return TabsState{Titles: TabTitles}
}

// Next selects the tab to the right, wrapping to the first.
func (t *TabsState) Next() {
	t.Index = (t.Index + 1) % len(t.Titles)
}

// Previous selects the tab to the left, wrapping to the last.
func (t *TabsState) Previous() {
	t.Index = (t.Index + len(t.Titles) - 1) % len(t.Titles)
}

// Select jumps to tab i. Out of range indices are ignored.
func (t *TabsState) Select(i int) {
	if i >= 0 && i < len(t.Titles) {
		t.Index = i
	}
}

// Column identifies one of the three library columns.
type Column int

const (
	ColumnArtist Column = iota
	ColumnAlbum
	ColumnTrack
)

// LibraryColumns holds one cursor per library column and the active column.
// Cursors are indices into the library as of the last move; moving a parent
// cursor resets the cursors to its right.
type LibraryColumns struct {
	Artist int
	Album  int
	Track  int
	Active Column
}

// Coordinate returns the selected position.
func (c LibraryColumns) Coordinate() domain.Coordinate {
	return domain.Coordinate{Artist: c.Artist, Album: c.Album, Track: c.Track}
}

// SwitchLeft activates the column to the left, stopping at the artist column.
func (c *LibraryColumns) SwitchLeft() {
	if c.Active > ColumnArtist {
		c.Active--
	}
}

// SwitchRight activates the column to the right, stopping at the track column.
func (c *LibraryColumns) SwitchRight() {
	if c.Active < ColumnTrack {
		c.Active++
	}
}

// Up moves the active cursor up, wrapping to the bottom.
func (c *LibraryColumns) Up(lib domain.Library) {
	c.move(lib, -1)
}

// Down moves the active cursor down, wrapping to the top.
func (c *LibraryColumns) Down(lib domain.Library) {
	c.move(lib, 1)
}

func (c *LibraryColumns) move(lib domain.Library, step int) {
	switch c.Active {
	case ColumnArtist:
		if n := len(lib); n > 0 {
			c.Artist = wrap(c.Artist+step, n)
			c.Album, c.Track = 0, 0
		}
	case ColumnAlbum:
		if artist, ok := lib.Artist(c.Coordinate()); ok && len(artist.Albums) > 0 {
			c.Album = wrap(c.Album+step, len(artist.Albums))
			c.Track = 0
		}
	case ColumnTrack:
		if album, ok := lib.Album(c.Coordinate()); ok && len(album.Tracks) > 0 {
			c.Track = wrap(c.Track+step, len(album.Tracks))
		}
	}
}

// wrap maps i into [0, n).
func wrap(i, n int) int {
	return ((i % n) + n) % n
}
