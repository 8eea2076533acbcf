package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jroimartin/gocui"
)

var ErrAborted = errors.New("selection aborted")

// ansi colors
const (
	colorReset = "\033[0m"
	colorGreen = "\033[32m"
	colorDim   = "\033[90m"
)

const quickSelectMax = 9

// Picker asks the operator for one choice per call on a full-screen list.
// The terminal is only held while a prompt is open.
type Picker struct {
	title string
}

func NewPicker(title string) *Picker {
	return &Picker{title: title}
}

// session is one open prompt.
type session struct {
	g      *gocui.Gui
	title  string
	prompt string
	state  *pickerState

	chosen  int
	done    bool
	aborted bool
}

// Choose implements publish.Chooser.
func (p *Picker) Choose(ctx context.Context, prompt string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("%s: no options", prompt)
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return 0, fmt.Errorf("open terminal: %w", err)
	}
	s := &session{g: g, title: p.title, prompt: prompt, state: newPickerState(options)}

	g.BgColor = gocui.ColorBlack
	g.FgColor = gocui.ColorWhite
	g.InputEsc = true
	g.SetManagerFunc(s.layout)

	if err := s.bindKeys(); err != nil {
		g.Close()
		return 0, err
	}

	// Cancel the prompt when ctx ends.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-ctx.Done():
			g.Update(func(*gocui.Gui) error {
				s.aborted = true
				return gocui.ErrQuit
			})
		case <-stop:
		}
	}()

	err = g.MainLoop()
	close(stop)
	wg.Wait()
	g.Close()

	if err != nil && err != gocui.ErrQuit {
		return 0, err
	}
	if cerr := ctx.Err(); cerr != nil {
		return 0, cerr
	}
	if s.aborted || !s.done {
		return 0, ErrAborted
	}
	return s.chosen, nil
}

func (s *session) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()

	if v, err := g.SetView("header", 0, 0, maxX-1, 2); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = false
		title := s.title
		if title == "" {
			title = "gwspec"
		}
		fmt.Fprintln(v, colorGreen+title+colorReset+"  -  "+s.prompt)
	}

	if v, err := g.SetView("filter", 0, 2, maxX-1, 4); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = "Filter"
	}

	if v, err := g.SetView("options", 0, 4, maxX-1, maxY-3); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Title = s.prompt
		v.Highlight = true
		v.SelFgColor = gocui.ColorBlack
		v.SelBgColor = gocui.ColorGreen
	}

	if v, err := g.SetView("footer", 0, maxY-2, maxX-1, maxY); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}
		v.Frame = false
		fmt.Fprint(v, "type: filter   1-9: quick select   enter: select   esc: abort")
	}

	s.render()
	if _, err := g.SetCurrentView("options"); err != nil {
		return err
	}
	return nil
}

func (s *session) render() {
	if v, err := s.g.View("filter"); err == nil {
		v.Clear()
		fmt.Fprint(v, s.state.filter)
	}

	v, err := s.g.View("options")
	if err != nil {
		return
	}
	v.Clear()
	if len(s.state.filtered) == 0 {
		fmt.Fprintln(v, colorDim+"no matches"+colorReset)
	}
	for i, idx := range s.state.filtered {
		prefix := "  "
		if i < quickSelectMax {
			prefix = fmt.Sprintf("%d ", i+1)
		}
		fmt.Fprintf(v, "%s%s\n", prefix, s.state.options[idx])
	}
	_ = v.SetCursor(0, s.state.selected)
}

func (s *session) bindKeys() error {
	g := s.g
	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, s.abort); err != nil {
		return err
	}
	if err := g.SetKeybinding("", gocui.KeyEsc, gocui.ModNone, s.abort); err != nil {
		return err
	}
	if err := g.SetKeybinding("options", gocui.KeyArrowDown, gocui.ModNone, s.moveSel(1)); err != nil {
		return err
	}
	if err := g.SetKeybinding("options", gocui.KeyArrowUp, gocui.ModNone, s.moveSel(-1)); err != nil {
		return err
	}
	if err := g.SetKeybinding("options", gocui.KeyEnter, gocui.ModNone, s.choose); err != nil {
		return err
	}
	if err := g.SetKeybinding("options", gocui.KeyBackspace, gocui.ModNone, s.filterBackspace); err != nil {
		return err
	}
	if err := g.SetKeybinding("options", gocui.KeyBackspace2, gocui.ModNone, s.filterBackspace); err != nil {
		return err
	}
	for i := 1; i <= quickSelectMax; i++ {
		if err := g.SetKeybinding("options", rune('0'+i), gocui.ModNone, s.quickSelect(i)); err != nil {
			return err
		}
	}
	// printable ASCII other than digits feeds the filter
	for r := rune(32); r <= rune(126); r++ {
		if r >= '0' && r <= '9' {
			continue
		}
		if err := g.SetKeybinding("options", r, gocui.ModNone, s.appendFilterRune(r)); err != nil {
			return err
		}
	}
	return nil
}

func (s *session) abort(*gocui.Gui, *gocui.View) error {
	s.aborted = true
	return gocui.ErrQuit
}

func (s *session) choose(*gocui.Gui, *gocui.View) error {
	idx, ok := s.state.current()
	if !ok {
		return nil
	}
	s.chosen = idx
	s.done = true
	return gocui.ErrQuit
}

func (s *session) quickSelect(num int) func(*gocui.Gui, *gocui.View) error {
	return func(g *gocui.Gui, v *gocui.View) error {
		if _, ok := s.state.quickSelect(num); !ok {
			return nil
		}
		return s.choose(g, v)
	}
}

func (s *session) moveSel(delta int) func(*gocui.Gui, *gocui.View) error {
	return func(*gocui.Gui, *gocui.View) error {
		s.state.move(delta)
		s.render()
		return nil
	}
}

func (s *session) appendFilterRune(r rune) func(*gocui.Gui, *gocui.View) error {
	return func(*gocui.Gui, *gocui.View) error {
		s.state.appendFilter(r)
		s.render()
		return nil
	}
}

func (s *session) filterBackspace(*gocui.Gui, *gocui.View) error {
	s.state.backspace()
	s.render()
	return nil
}
