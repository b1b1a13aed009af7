package tui

import (
	"github.com/gdamore/tcell/v2"

	"github.com/tejashwikalptaru/sonik/internal/service"
)

// pollKeys forwards key events from screen to out until the screen is
// finalised or done is closed. Resize events trigger a full redraw.
func pollKeys(screen tcell.Screen, out chan<- *tcell.EventKey, done <-chan struct{}) {
	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			select {
			case out <- ev:
			case <-done:
				return
			}
		}
	}
}

// dispatch applies one key press to the UI state and reports whether the
// user asked to quit.
func dispatch(state *service.UIState, ev *tcell.EventKey) (quit bool) {
	switch ev.Key() {
	case tcell.KeyEsc, tcell.KeyCtrlC:
		return true
	case tcell.KeyTab:
		state.Tabs.Next()
	case tcell.KeyBacktab:
		state.Tabs.Previous()
	case tcell.KeyUp:
		state.OnUp()
	case tcell.KeyDown:
		state.OnDown()
	case tcell.KeyLeft:
		if state.Tabs.Index == service.TabLibrary {
			state.SwitchLeft()
		}
	case tcell.KeyRight:
		if state.Tabs.Index == service.TabLibrary {
			state.SwitchRight()
		}
	case tcell.KeyEnter:
		state.OnEnter()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if state.Tabs.Index == service.TabSearch {
			state.PopSearchChar()
		}
	case tcell.KeyRune:
		dispatchRune(state, ev.Rune())
	}
	return false
}

// dispatchRune handles printable keys. In the search tab they are typed into
// the query, except a space on an empty query which queues the selected result.
func dispatchRune(state *service.UIState, r rune) {
	if state.Tabs.Index == service.TabSearch {
		if r == ' ' && state.SearchInput == "" {
			state.AddSelectedResult()
			return
		}
		state.PushSearchChar(r)
		return
	}

	switch r {
	case '1', '2', '3':
		state.Tabs.Select(int(r - '1'))
	case ' ':
		if state.Tabs.Index == service.TabLibrary {
			state.AddToQueue()
		}
	case 'n':
		if state.Tabs.Index == service.TabLibrary {
			state.AddToFront()
		}
	case 'c':
		state.ClearQueue()
	case 's':
		state.ShuffleQueue()
	case 'p':
		state.PausePlay()
	case '>':
		state.SkipNext()
	}
}
