package lcd

// FakeDisplay records what would be shown.
type FakeDisplay struct {
	Line1, Line2 string

	// History contains every Show call.
	History [][2]string

	// ShowError, if set, will be returned by Show().
	ShowError error

	Cleared bool
	Closed  bool
}

// NewFakeDisplay creates an empty FakeDisplay.
func NewFakeDisplay() *FakeDisplay {
	return &FakeDisplay{}
}

// Show records the lines.
func (f *FakeDisplay) Show(line1, line2 string) error {
	if f.ShowError != nil {
		return f.ShowError
	}
	f.Line1, f.Line2 = line1, line2
	f.History = append(f.History, [2]string{line1, line2})
	f.Cleared = false
	return nil
}

// Clear blanks the recorded lines.
func (f *FakeDisplay) Clear() error {
	f.Line1, f.Line2 = "", ""
	f.Cleared = true
	return nil
}

// Close clears and marks the display closed.
func (f *FakeDisplay) Close() error {
	f.Clear()
	f.Closed = true
	return nil
}
