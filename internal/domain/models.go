// Package domain contains core business models and logic with no external dependencies.
// This package defines the fundamental entities of the sonik music player.
package domain

import (
	"slices"
	"strings"
	"time"
)

// Record is implemented by every level of the library hierarchy.
// It gives search and rendering a uniform way to obtain a display name.
type Record interface {
	// DisplayName returns the title of a track or album, or the name of an artist.
	DisplayName() string
}

// Track represents a single audio file and the tags read from it.
// Tracks are immutable once created and are passed around by value.
type Track struct {
	// FilePath is the path to the audio file on the filesystem
	FilePath string

	// Title is the song title (empty when the tag is absent)
	Title string

	// Artist is the performing artist
	Artist string

	// AlbumArtist is the artist credited for the whole album
	AlbumArtist string

	// Album is the album title
	Album string

	// Year is the release year (0 when absent)
	Year int32

	// TrackNum is the position on the album (0 when absent)
	TrackNum uint32

	// Duration is the track length in milliseconds (0 when absent)
	Duration uint32
}

// DummyTrack returns the placeholder track meaning "nothing is playing".
func DummyTrack() Track {
	return Track{}
}

// IsDummy reports whether t is the placeholder track.
func (t Track) IsDummy() bool {
	return t == (Track{})
}

// DisplayName returns the track title.
func (t Track) DisplayName() string {
	return t.Title
}

// Equal reports whether both tracks refer to the same file.
func (t Track) Equal(other Track) bool {
	return t.FilePath == other.FilePath
}

// Less orders tracks by track number.
func (t Track) Less(other Track) bool {
	return t.TrackNum < other.TrackNum
}

// Length returns the duration as a time.Duration.
func (t Track) Length() time.Duration {
	return time.Duration(t.Duration) * time.Millisecond
}

// GroupingArtist returns the key used to place the track in the library.
// Files without an album artist tag fall back to the track artist.
func (t Track) GroupingArtist() string {
	if t.AlbumArtist != "" {
		return t.AlbumArtist
	}
	return t.Artist
}

// Album groups the tracks that share an album title under one artist.
type Album struct {
	// Title is the album title
	Title string

	// Artist is the album artist the album was grouped under
	Artist string

	// Year is the year of the first track that created the album
	Year int32

	// Tracks is kept sorted by track number
	Tracks []Track
}

// NewAlbum creates an empty album.
func NewAlbum(title, artist string, year int32) Album {
	return Album{
		Title:  title,
		Artist: artist,
		Year:   year,
		Tracks: make([]Track, 0),
	}
}

// Insert adds a track and restores track number order.
// The sort is stable so equal track numbers keep insertion order.
func (a *Album) Insert(t Track) {
	a.Tracks = append(a.Tracks, t)
	slices.SortStableFunc(a.Tracks, func(x, y Track) int {
		switch {
		case x.TrackNum < y.TrackNum:
			return -1
		case x.TrackNum > y.TrackNum:
			return 1
		}
		return 0
	})
}

// DisplayName returns the album title.
func (a Album) DisplayName() string {
	return a.Title
}

// Equal compares titles and track lists.
func (a Album) Equal(other Album) bool {
	return a.Title == other.Title && slices.EqualFunc(a.Tracks, other.Tracks, Track.Equal)
}

// Less orders albums by title.
func (a Album) Less(other Album) bool {
	return a.Title < other.Title
}

// TotalTime returns the summed duration of all tracks in milliseconds.
func (a Album) TotalTime() uint64 {
	var total uint64
	for _, t := range a.Tracks {
		total += uint64(t.Duration)
	}
	return total
}

// Artist groups albums under one album-artist name.
type Artist struct {
	// Name is the album-artist tag value, verbatim
	Name string

	// Albums is kept sorted by case-folded title
	Albums []Album
}

// NewArtist creates an artist with no albums.
func NewArtist(name string) Artist {
	return Artist{
		Name:   name,
		Albums: make([]Album, 0),
	}
}

// AddAlbum appends an album and restores case-insensitive title order.
func (a *Artist) AddAlbum(album Album) {
	a.Albums = append(a.Albums, album)
	a.SortAlbums()
}

// SortAlbums restores case-insensitive title order.
func (a *Artist) SortAlbums() {
	slices.SortStableFunc(a.Albums, func(x, y Album) int {
		return strings.Compare(strings.ToLower(x.Title), strings.ToLower(y.Title))
	})
}

// DisplayName returns the artist name.
func (a Artist) DisplayName() string {
	return a.Name
}

// Equal compares names and album lists.
func (a Artist) Equal(other Artist) bool {
	return a.Name == other.Name && slices.EqualFunc(a.Albums, other.Albums, Album.Equal)
}

// Less orders artists by name.
func (a Artist) Less(other Artist) bool {
	return a.Name < other.Name
}

// Tracks returns every track of every album, in album order.
func (a Artist) Tracks() []Track {
	tracks := make([]Track, 0)
	for _, album := range a.Albums {
		tracks = append(tracks, album.Tracks...)
	}
	return tracks
}

// Library is the full artist -> album -> track hierarchy.
// It is rebuilt wholesale and read-only between builds.
type Library []Artist

// Sort orders artists by case-folded name.
func (l Library) Sort() {
	slices.SortStableFunc(l, func(x, y Artist) int {
		return strings.Compare(strings.ToLower(x.Name), strings.ToLower(y.Name))
	})
}

// Equal compares two libraries artist by artist.
func (l Library) Equal(other Library) bool {
	return slices.EqualFunc(l, other, Artist.Equal)
}

// Track returns the record at the given coordinate.
func (l Library) Track(c Coordinate) (Track, bool) {
	album, ok := l.Album(c)
	if !ok || c.Track < 0 || c.Track >= len(album.Tracks) {
		return Track{}, false
	}
	return album.Tracks[c.Track], true
}

// Album returns the album at the given coordinate, ignoring the track index.
func (l Library) Album(c Coordinate) (Album, bool) {
	artist, ok := l.Artist(c)
	if !ok || c.Album < 0 || c.Album >= len(artist.Albums) {
		return Album{}, false
	}
	return artist.Albums[c.Album], true
}

// Artist returns the artist at the given coordinate, ignoring the other indices.
func (l Library) Artist(c Coordinate) (Artist, bool) {
	if c.Artist < 0 || c.Artist >= len(l) {
		return Artist{}, false
	}
	return l[c.Artist], true
}

// Coordinate locates a record in the library by index.
// Album and Track are ignored for artist-level lookups.
type Coordinate struct {
	Artist int
	Album  int
	Track  int
}

// Stats holds the counters gathered while building the library.
type Stats struct {
	// Artists is the number of distinct album artists
	Artists int

	// Albums is the number of distinct (artist, album) pairs
	Albums int

	// Tracks is the number of indexed tracks
	Tracks int

	// TotalTime is the summed duration of all tracks in milliseconds
	TotalTime uint64
}

// PlaybackCommand is sent from the UI to the audio task.
type PlaybackCommand int

const (
	// CommandTogglePause pauses a playing sink or resumes a paused one
	CommandTogglePause PlaybackCommand = iota

	// CommandStop stops playback and empties the sink
	CommandStop
)

// String returns a human-readable representation of the command.
func (c PlaybackCommand) String() string {
	switch c {
	case CommandTogglePause:
		return "toggle_pause"
	case CommandStop:
		return "stop"
	default:
		return "unknown"
	}
}

// ScanProgress represents the progress of a library build.
type ScanProgress struct {
	// CurrentFile is the file currently being read
	CurrentFile string

	// FilesScanned is the number of files processed so far
	FilesScanned int

	// TotalFiles is the number of candidate files found by the walk
	TotalFiles int

	// TracksFound is the number of files whose tags could be read
	TracksFound int
}

// Percentage returns the completion percentage (0-100), or -1 if total is unknown.
func (p ScanProgress) Percentage() float64 {
	if p.TotalFiles <= 0 {
		return -1
	}
	return float64(p.FilesScanned) / float64(p.TotalFiles) * 100
}

// Verify that every level of the hierarchy implements Record
var (
	_ Record = Track{}
	_ Record = Album{}
	_ Record = Artist{}
)
