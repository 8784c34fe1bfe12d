package polyphony

// Bundles holds node-owned persistent state, one entry per voice.
type Bundles[T any] struct {
	items []T
}

// Resize makes the bundle count equal to voices. Entries below the smaller of
// the old and new counts keep their state, new entries are produced by init
// and entries past the new count are discarded. Resizing to the current
// count is a no-op.
func (b *Bundles[T]) Resize(voices int, init func(voice int) T) {
	if voices < 0 {
		voices = 0
	}

	n := len(b.items)

	switch {
	case voices == n:
		return
	case voices < n:
		var zero T
		for i := voices; i < n; i++ {
			b.items[i] = zero
		}

		b.items = b.items[:voices]
	default:
		for i := n; i < voices; i++ {
			b.items = append(b.items, init(i))
		}
	}
}

// Len returns the number of voices held.
func (b *Bundles[T]) Len() int {
	return len(b.items)
}

// At returns the state of voice i.
func (b *Bundles[T]) At(i int) *T {
	return &b.items[i]
}

// Slice exposes the underlying per-voice state.
func (b *Bundles[T]) Slice() []T {
	return b.items
}

// Clone returns an independent shallow copy of the bundles.
func (b *Bundles[T]) Clone() Bundles[T] {
	if b.items == nil {
		return Bundles[T]{}
	}

	items := make([]T, len(b.items))
	copy(items, b.items)

	return Bundles[T]{items: items}
}
