package polyphony

// Universe tracks the descriptor most recently computed for one node.
// The zero value describes a node that has never been evaluated.
type Universe struct {
	current  Descriptor
	previous int
	changes  uint64
}

// Descriptor returns the current descriptor. The returned Inputs slice is
// owned by the universe and must not be modified.
func (u *Universe) Descriptor() Descriptor {
	return u.current
}

// Voices returns the current voice count.
func (u *Universe) Voices() int {
	return u.current.Voices
}

// PreviousVoices returns the voice count before the most recent change.
func (u *Universe) PreviousVoices() int {
	return u.previous
}

// Changes returns how many times the descriptor has changed.
func (u *Universe) Changes() uint64 {
	return u.changes
}

// Pointer returns the addressing token consumers of source receive.
func (u *Universe) Pointer(source uint64) Pointer {
	return Pointer{Source: source, Voices: u.current.Voices}
}

// Update stores d and reports whether it differs from the current
// descriptor. Input pointers are copied into storage owned by the universe,
// reusing its capacity.
func (u *Universe) Update(d Descriptor) bool {
	if u.changes > 0 && u.current.Equal(d) {
		return false
	}

	u.previous = u.current.Voices
	u.current.Voices = d.Voices
	u.current.Inputs = append(u.current.Inputs[:0], d.Inputs...)
	u.changes++

	return true
}

// Reset forgets the current descriptor so the next Update always reports a
// change.
func (u *Universe) Reset() {
	u.previous = u.current.Voices
	u.current.Voices = 0
	u.current.Inputs = u.current.Inputs[:0]
	u.changes = 0
}
