package engine

import (
	"time"

	"github.com/audionodes/native/pkg/polyphony"
	"github.com/audionodes/native/pkg/window"
)

// Tick evaluates every active node once, upstream before downstream.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()

	if e.dirty {
		e.rebuild()
	}

	for _, en := range e.order {
		e.step(en)
	}

	e.ticks++

	elapsed := time.Since(start)
	e.metrics.Ticks.Inc()
	e.metrics.TickDuration.Observe(elapsed.Seconds())

	if elapsed > e.cfg.BlockDuration() {
		e.metrics.DeadlineMisses.Inc()
	}
}

// Ticks returns the number of completed ticks.
func (e *Engine) Ticks() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.ticks
}

func (e *Engine) step(en *entry) {
	for i, l := range en.inputs {
		if l.src == nil {
			en.pointers[i] = polyphony.Pointer{}

			continue
		}

		en.pointers[i] = l.src.universe.Pointer(l.src.base.UID())
	}

	desc := en.node.InferPolyphonyOperation(en.pointers)
	if desc.Voices < 0 {
		desc.Voices = 0
	}

	if en.universe.Update(desc) {
		en.node.ApplyBundleUniverseChanges(&en.universe)
		e.metrics.DescriptorChanges.Inc()
	}

	en.base.PrepareOutputWindow(en.universe.Voices(), e.format.BlockSize)
	en.in.Bind(e.format, en.universe.Descriptor(), en.base.InputSocketTypes())

	for i, l := range en.inputs {
		if l.src != nil {
			en.in.Connect(i, l.src.base.Output(), l.socket)

			continue
		}

		v, _ := en.base.InputValue(i)
		buf := en.consts[i]

		for j := range buf {
			buf[j] = v
		}

		en.in.Constant(i, buf)
	}

	e.process(en)
	en.node.CopyInputValues(en.node)
}

// process runs one node. A panicking node is silenced for the block instead
// of taking the execution thread down.
func (e *Engine) process(en *entry) {
	defer func() {
		if r := recover(); r != nil {
			en.base.Output().Silence()
			e.metrics.NodePanics.Inc()
			e.logger.Error("Node panicked during process", "uid", en.base.UID(), "type", en.base.TypeID(), "panic", r)
		}
	}()

	en.node.Process(&en.in)
}

// rebuild recomputes reachability and evaluation order after a structural
// edit. Each node crossing the active boundary gets exactly one lifecycle
// hook.
func (e *Engine) rebuild() {
	for _, en := range e.all {
		en.tmpConnected = false
	}

	var mark func(*entry)
	mark = func(en *entry) {
		if en.tmpConnected || en.markDeletion {
			return
		}

		en.tmpConnected = true

		for _, l := range en.inputs {
			if l.src != nil {
				mark(l.src)
			}
		}
	}

	for _, en := range e.all {
		if en.base.IsSink() {
			mark(en)
		}
	}

	kept := e.all[:0]

	for _, en := range e.all {
		switch {
		case en.tmpConnected && !en.connected:
			en.node.ConnectCallback()
			en.connected = true
		case !en.tmpConnected && en.connected:
			en.node.DisconnectCallback()
			en.connected = false
			en.universe.Reset()
		}

		if en.markDeletion {
			delete(e.entries, en.base.UID())
			e.logger.Debug("Dropped node", "uid", en.base.UID(), "type", en.base.TypeID())

			continue
		}

		kept = append(kept, en)
	}

	clear(e.all[len(kept):])
	e.all = kept

	e.order = e.order[:0]
	visited := make(map[*entry]bool, len(e.all))

	var visit func(*entry)
	visit = func(en *entry) {
		if visited[en] || !en.tmpConnected {
			return
		}

		visited[en] = true

		for _, l := range en.inputs {
			if l.src != nil {
				visit(l.src)
			}
		}

		e.order = append(e.order, en)
	}

	for _, en := range e.all {
		if en.base.IsSink() {
			visit(en)
		}
	}

	e.metrics.ActiveNodes.Set(float64(len(e.order)))
	e.dirty = false
}

// Active reports whether the node is currently evaluated each tick.
func (e *Engine) Active(uid uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, ok := e.entries[uid]

	return ok && en.connected
}

// Output returns the node's output window. The window is only stable
// between ticks.
func (e *Engine) Output(uid uint64) (*window.Window, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, ok := e.entries[uid]
	if !ok {
		return nil, false
	}

	return en.base.Output(), true
}

// Descriptor returns the voice shape computed for the node at the last tick.
func (e *Engine) Descriptor(uid uint64) (polyphony.Descriptor, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, ok := e.entries[uid]
	if !ok {
		return polyphony.Descriptor{}, false
	}

	d := en.universe.Descriptor()
	d.Inputs = append([]polyphony.Pointer(nil), d.Inputs...)

	return d, true
}
