package ui

// pickerState is the list model behind the picker: a filter, the matching
// option indexes and the highlighted row.
type pickerState struct {
	options  []string
	filter   string
	filtered []int
	selected int
}

func newPickerState(options []string) *pickerState {
	s := &pickerState{options: options}
	s.recompute()
	return s
}

func (s *pickerState) recompute() {
	s.filtered = rankOptions(s.filter, s.options)
	if s.selected >= len(s.filtered) {
		s.selected = 0
	}
}

func (s *pickerState) appendFilter(r rune) {
	s.filter += string(r)
	s.recompute()
}

func (s *pickerState) backspace() {
	if s.filter == "" {
		return
	}
	rs := []rune(s.filter)
	s.filter = string(rs[:len(rs)-1])
	s.recompute()
}

func (s *pickerState) move(delta int) {
	if len(s.filtered) == 0 {
		return
	}
	s.selected += delta
	if s.selected < 0 {
		s.selected = 0
	}
	if s.selected >= len(s.filtered) {
		s.selected = len(s.filtered) - 1
	}
}

// current returns the option index under the cursor.
func (s *pickerState) current() (int, bool) {
	if len(s.filtered) == 0 {
		return 0, false
	}
	return s.filtered[s.selected], true
}

// quickSelect picks the num-th visible row (1-based).
func (s *pickerState) quickSelect(num int) (int, bool) {
	idx := num - 1
	if idx < 0 || idx >= len(s.filtered) {
		return 0, false
	}
	s.selected = idx
	return s.current()
}
