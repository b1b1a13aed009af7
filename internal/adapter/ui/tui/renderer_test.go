package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/sonik/internal/domain"
	"github.com/tejashwikalptaru/sonik/internal/logger"
	"github.com/tejashwikalptaru/sonik/internal/service"
)

var sampleTracks = []domain.Track{
	{FilePath: "/r/1.mp3", Title: "Airbag", Artist: "Radiohead", Album: "OK Computer", TrackNum: 1, Duration: 284000},
	{FilePath: "/r/2.mp3", Title: "Paranoid Android", Artist: "Radiohead", Album: "OK Computer", TrackNum: 2, Duration: 383000},
	{FilePath: "/b/1.mp3", Title: "Come Together", Artist: "The Beatles", Album: "Abbey Road", TrackNum: 1, Duration: 259000},
}

// Helper to create UI state over a small library. Channels are buffered so
// sends never block without an audio task.
func newTestState() *service.UIState {
	lib, stats := service.Aggregate(sampleTracks)
	state := service.NewUIState(logger.NewTestLogger(), lib, stats,
		service.NewSearchService(logger.NewTestLogger(), lib),
		make(chan domain.Track, 8), make(chan domain.PlaybackCommand, 8), make(chan bool, 1))
	state.SetSendTimeout(10 * time.Millisecond)
	return state
}

func newTestScreen(t *testing.T) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(120, 30)
	return screen
}

// screenText returns the visible screen as lines of text.
func screenText(screen tcell.SimulationScreen) string {
	cells, width, height := screen.GetContents()
	var b strings.Builder
	for y := range height {
		for x := range width {
			if runes := cells[y*width+x].Runes; len(runes) > 0 {
				b.WriteRune(runes[0])
			} else {
				b.WriteRune(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func drawState(t *testing.T, state *service.UIState, notice string) string {
	t.Helper()
	screen := newTestScreen(t)
	defer screen.Fini()

	r := NewRenderer(screen)
	r.now = func() time.Time { return time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC) }
	r.Draw(state, notice)
	return screenText(screen)
}

func TestRenderer_QueueTab(t *testing.T) {
	state := newTestState()
	state.AddToQueue()

	text := drawState(t, state, "")

	assert.Contains(t, text, "queue | library | search")
	assert.Contains(t, text, "nothing playing")
	assert.Contains(t, text, "Tuesday, March 05, 2024 | 14:07:09")
	assert.Contains(t, text, "Title")
	assert.Contains(t, text, "Paranoid Android")
	assert.Contains(t, text, "2 tracks queued | 11:07 remaining")
}

func TestRenderer_NowPlayingAndNotice(t *testing.T) {
	state := newTestState()
	state.NowPlaying = sampleTracks[2]

	text := drawState(t, state, "cannot play Something")

	assert.Contains(t, text, "Come Together - The Beatles - Abbey Road")
	assert.Contains(t, text, "cannot play Something")
	assert.NotContains(t, text, "14:07:09")
}

func TestRenderer_LibraryTab(t *testing.T) {
	state := newTestState()
	state.Tabs.Select(service.TabLibrary)
	state.SwitchRight()
	state.SwitchRight()
	state.OnDown()

	text := drawState(t, state, "")

	assert.Contains(t, text, ">> Radiohead")
	assert.Contains(t, text, "The Beatles")
	assert.Contains(t, text, ">> OK Computer")
	assert.Contains(t, text, ">> Paranoid Android")
	assert.Contains(t, text, "   Airbag")
	assert.Contains(t, text, "2 artists | 2 albums | 3 tracks | 15:26 total")
}

func TestRenderer_SearchTab(t *testing.T) {
	state := newTestState()
	state.Tabs.Select(service.TabSearch)
	state.SearchInput = "artist:beatles"
	state.Search()
	state.SearchInput = "title:air"

	text := drawState(t, state, "")

	assert.Contains(t, text, "search: title:air")
	assert.Contains(t, text, "Available Terms")
	assert.Contains(t, text, "artist:<text>")
	assert.Contains(t, text, ">> [artist] The Beatles")
	assert.Contains(t, text, "1 results")
}

func TestRenderer_SearchRowsFollowSelection(t *testing.T) {
	state := newTestState()
	state.Tabs.Select(service.TabSearch)
	state.SearchResults = []service.SearchResult{
		{Scope: domain.ScopeArtist, At: domain.Coordinate{Artist: 7}},
		{Scope: domain.ScopeArtist, At: domain.Coordinate{Artist: 1}},
	}
	state.SearchSelect = 1

	text := drawState(t, state, "")

	assert.Contains(t, text, "   [artist] (missing)")
	assert.Contains(t, text, ">> [artist] The Beatles")
	assert.Less(t, strings.Index(text, "(missing)"), strings.Index(text, "The Beatles"))
	assert.Contains(t, text, "2 results")
}

func TestRenderer_LargeCounts(t *testing.T) {
	state := newTestState()
	state.Tabs.Select(service.TabLibrary)
	state.Stats = domain.Stats{Artists: 1200, Albums: 4321, Tracks: 12345, TotalTime: 3723000}

	text := drawState(t, state, "")

	assert.Contains(t, text, "1,200 artists | 4,321 albums | 12,345 tracks | 1:02:03 total")
}

func TestRenderer_EmptyLibrary(t *testing.T) {
	state := service.NewUIState(logger.NewTestLogger(), nil, domain.Stats{},
		service.NewSearchService(logger.NewTestLogger(), nil), nil, nil, nil)
	state.Tabs.Select(service.TabLibrary)

	text := drawState(t, state, "")

	assert.Contains(t, text, "artists")
	assert.Contains(t, text, "0 artists | 0 albums | 0 tracks | 0:00 total")
}

func TestFormatMillis(t *testing.T) {
	assert.Equal(t, "0:00", FormatMillis(0))
	assert.Equal(t, "0:59", FormatMillis(59999))
	assert.Equal(t, "1:01", FormatMillis(61000))
	assert.Equal(t, "1:02:03", FormatMillis(3723000))
}
