// Package tui is the terminal user interface: a presenter running the UI
// task loop and a renderer drawing UI state with tview primitives on a tcell
// screen.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/tejashwikalptaru/sonik/internal/domain"
	"github.com/tejashwikalptaru/sonik/internal/service"
)

// Layout sizes in cells.
const (
	topBarHeight = 3
	statsHeight  = 3
	inputHeight  = 3
	tabsWidth    = 28
	statusWidth  = 40
)

// ClockFormat is the status box date layout.
const ClockFormat = "Monday, January 02, 2006 | 15:04:05"

// selectionMark prefixes the selected row of a list.
const selectionMark = ">> "

var (
	activeColumnColor   = tcell.NewRGBColor(255, 255, 0)
	inactiveColumnColor = tcell.NewRGBColor(173, 176, 73)
	headerColor         = tcell.ColorYellow
)

// Renderer draws a full frame from UI state. Primitives are rebuilt every
// frame; the state is the only thing that persists between frames.
type Renderer struct {
	screen tcell.Screen
	now    func() time.Time
}

// NewRenderer creates a renderer for screen.
func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen, now: time.Now}
}

// Draw renders state. A non-empty notice replaces the clock in the status box.
func (r *Renderer) Draw(state *service.UIState, notice string) {
	width, height := r.screen.Size()

	body := r.tabBody(state)
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(r.topBar(state, notice), topBarHeight, 0, false).
		AddItem(body, 0, 1, false).
		AddItem(r.statsStrip(state), statsHeight, 0, false)

	r.screen.Clear()
	root.SetRect(0, 0, width, height)
	root.Draw(r.screen)
	r.screen.Show()
}

func (r *Renderer) topBar(state *service.UIState, notice string) tview.Primitive {
	tabs := make([]string, len(state.Tabs.Titles))
	for i, title := range state.Tabs.Titles {
		if i == state.Tabs.Index {
			tabs[i] = "[yellow::b]" + title + "[-::-]"
		} else {
			tabs[i] = title
		}
	}
	tabsBox := textBox(" sonik ", strings.Join(tabs, " | "))

	playing := "[gray]nothing playing[-]"
	if np := state.NowPlaying; !np.IsDummy() {
		playing = fmt.Sprintf("[lightblue]%s[-] - [lightgreen]%s[-] - [lightcoral]%s[-]",
			tview.Escape(np.Title), tview.Escape(np.Artist), tview.Escape(np.Album))
	}
	nowBox := textBox(" now playing ", playing)

	status := r.now().Format(ClockFormat)
	if notice != "" {
		status = "[orange]" + tview.Escape(notice) + "[-]"
	}
	statusBox := textBox(" status ", status)

	return tview.NewFlex().
		AddItem(tabsBox, tabsWidth, 0, false).
		AddItem(nowBox, 0, 1, false).
		AddItem(statusBox, statusWidth, 0, false)
}

func (r *Renderer) tabBody(state *service.UIState) tview.Primitive {
	switch state.Tabs.Index {
	case service.TabLibrary:
		return libraryView(state)
	case service.TabSearch:
		return searchView(state)
	default:
		return queueView(state)
	}
}

func queueView(state *service.UIState) tview.Primitive {
	table := tview.NewTable().SetFixed(1, 0)
	table.SetBorder(true).SetTitle(" queue ")

	for col, name := range []string{"Title", "Artist", "Album"} {
		table.SetCell(0, col, tview.NewTableCell(name).
			SetTextColor(headerColor).
			SetAttributes(tcell.AttrBold).
			SetExpansion(1).
			SetSelectable(false))
	}
	for i, t := range state.Queue.Tracks() {
		table.SetCell(i+1, 0, tview.NewTableCell(tview.Escape(t.Title)).SetExpansion(1))
		table.SetCell(i+1, 1, tview.NewTableCell(tview.Escape(t.Artist)).SetExpansion(1))
		table.SetCell(i+1, 2, tview.NewTableCell(tview.Escape(t.Album)).SetExpansion(1))
	}
	return table
}

func libraryView(state *service.UIState) tview.Primitive {
	lib := state.Library
	at := state.Columns.Coordinate()

	var artists, albums, tracks []string
	for _, a := range lib {
		artists = append(artists, a.Name)
	}
	if artist, ok := lib.Artist(at); ok {
		for _, a := range artist.Albums {
			albums = append(albums, a.Title)
		}
	}
	if album, ok := lib.Album(at); ok {
		for _, t := range album.Tracks {
			tracks = append(tracks, t.Title)
		}
	}

	return tview.NewFlex().
		AddItem(column(" artists ", artists, at.Artist, state.Columns.Active == service.ColumnArtist), 0, 1, false).
		AddItem(column(" albums ", albums, at.Album, state.Columns.Active == service.ColumnAlbum), 0, 1, false).
		AddItem(column(" tracks ", tracks, at.Track, state.Columns.Active == service.ColumnTrack), 0, 1, false)
}

// column lists names with the selected one marked. The table keeps the
// selected row in view.
func column(title string, names []string, selected int, active bool) tview.Primitive {
	color := inactiveColumnColor
	if active {
		color = activeColumnColor
	}

	table := tview.NewTable().SetSelectable(true, false)
	table.SetBorder(true).SetTitle(title).SetBorderColor(color).SetTitleColor(color)
	table.SetSelectedStyle(tcell.StyleDefault.Foreground(color).Attributes(tcell.AttrBold))

	for i, name := range names {
		prefix := "   "
		if i == selected {
			prefix = selectionMark
		}
		table.SetCell(i, 0, tview.NewTableCell(prefix+tview.Escape(name)).SetTextColor(color).SetExpansion(1))
	}
	if selected >= 0 && selected < len(names) {
		table.Select(selected, 0)
	}
	return table
}

func searchView(state *service.UIState) tview.Primitive {
	input := tview.NewInputField().
		SetLabel("search: ").
		SetText(state.SearchInput).
		SetFieldBackgroundColor(tcell.ColorDefault)
	input.SetBorder(true).SetTitle(" query ")

	var help strings.Builder
	help.WriteString("[yellow::b]Available Terms[-::-]\n\n")
	for _, term := range domain.Terms {
		help.WriteString(term.String() + ":<text>\n")
	}
	help.WriteString("\nEnter runs the query. With an empty query, Enter plays the selected track and Space queues the selected result.")
	helpBox := textBox(" help ", help.String()).SetWrap(true).SetWordWrap(true)

	// one row per result so the highlight follows SearchSelect
	names := make([]string, 0, len(state.SearchResults))
	for _, result := range state.SearchResults {
		name := "(missing)"
		if record, ok := result.Record(state.Library); ok {
			name = record.DisplayName()
		}
		names = append(names, fmt.Sprintf("[%s] %s", result.Scope, name))
	}
	results := column(" results ", names, state.SearchSelect, true)

	body := tview.NewFlex().
		AddItem(helpBox, 0, 1, false).
		AddItem(results, 0, 3, false)

	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(input, inputHeight, 0, false).
		AddItem(body, 0, 1, false)
}

func (r *Renderer) statsStrip(state *service.UIState) tview.Primitive {
	var text string
	switch state.Tabs.Index {
	case service.TabLibrary:
		s := state.Stats
		text = fmt.Sprintf("%s artists | %s albums | %s tracks | %s total",
			humanize.Comma(int64(s.Artists)),
			humanize.Comma(int64(s.Albums)),
			humanize.Comma(int64(s.Tracks)),
			FormatMillis(s.TotalTime))
	case service.TabSearch:
		text = fmt.Sprintf("%s results", humanize.Comma(int64(len(state.SearchResults))))
	default:
		text = fmt.Sprintf("%s tracks queued | %s remaining",
			humanize.Comma(int64(state.Queue.Len())),
			FormatMillis(state.Queue.TotalTimeMs()))
	}
	return textBox(" stats ", text)
}

// FormatMillis renders a millisecond count as h:mm:ss, or m:ss below an hour.
func FormatMillis(ms uint64) string {
	total := ms / 1000
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

func textBox(title, text string) *tview.TextView {
	box := tview.NewTextView().SetDynamicColors(true).SetWrap(false).SetText(text)
	box.SetBorder(true).SetTitle(title)
	return box
}
