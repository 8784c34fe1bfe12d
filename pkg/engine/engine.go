// Package engine drives a node graph one block at a time.
//
// The engine is the reference scheduler for the node contract. Structural
// edits and control-context mutations take the same lock as Tick, so they
// always land between two ticks and never tear a node's state mid-block.
package engine

import (
	"log/slog"
	"sync"

	"github.com/audionodes/native/pkg/metrics"
	"github.com/audionodes/native/pkg/models"
	"github.com/audionodes/native/pkg/node"
	"github.com/audionodes/native/pkg/polyphony"
	"github.com/audionodes/native/pkg/window"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/audionodes/native/pkg/engine"

type link struct {
	src    *entry
	socket int
}

// entry is the scheduler-owned side table of one node.
type entry struct {
	node     node.Node
	base     *node.Base
	universe polyphony.Universe
	inputs   []link
	pointers []polyphony.Pointer
	consts   [][]float32
	in       window.InputWindow

	markDeletion bool
	connected    bool
	tmpConnected bool
}

// Engine owns the nodes added to it and evaluates those reachable from a
// sink once per Tick.
type Engine struct {
	mu      sync.Mutex
	cfg     Config
	format  window.Format
	logger  *slog.Logger
	metrics *metrics.Engine
	tracer  trace.Tracer

	entries map[uint64]*entry
	all     []*entry
	order   []*entry
	dirty   bool
	ticks   uint64
}

// Option configures an Engine.
type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

func WithMetrics(m *metrics.Engine) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithTracer sets the tracer for control-context operations. Ticks are
// never traced.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = t
	}
}

// New creates an empty engine.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     cfg,
		format:  cfg.Format(),
		entries: make(map[uint64]*entry),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	if e.metrics == nil {
		e.metrics = metrics.NewEngine(nil)
	}

	if e.tracer == nil {
		e.tracer = otel.Tracer(tracerName)
	}

	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Add hands n to the engine. The node stays inactive until it is reachable
// from a sink.
func (e *Engine) Add(n node.Node) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	base := n.Core()
	if _, exists := e.entries[base.UID()]; exists {
		return &NodeError{Op: "Add", UID: base.UID(), Err: ErrNodeExists}
	}

	en := &entry{
		node:     n,
		base:     base,
		inputs:   make([]link, base.InputCount()),
		pointers: make([]polyphony.Pointer, base.InputCount()),
		consts:   make([][]float32, base.InputCount()),
	}

	for i := range en.consts {
		en.consts[i] = make([]float32, e.format.BlockSize)
	}

	e.entries[base.UID()] = en
	e.all = append(e.all, en)
	e.dirty = true

	e.logger.Debug("Added node", "uid", base.UID(), "type", base.TypeID())

	return nil
}

// Remove queues a node for deletion. Its links are cut immediately; the
// disconnect hook fires and the node is dropped at the next tick.
func (e *Engine) Remove(uid uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, err := e.lookup("Remove", uid)
	if err != nil {
		return err
	}

	en.markDeletion = true
	clear(en.inputs)

	for _, other := range e.all {
		for i := range other.inputs {
			if other.inputs[i].src == en {
				other.inputs[i] = link{}
			}
		}
	}

	e.dirty = true

	return nil
}

// Connect feeds output socket out of src into input socket in of dst,
// replacing any previous link on that input.
func (e *Engine) Connect(src uint64, out int, dst uint64, in int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	from, err := e.lookup("Connect", src)
	if err != nil {
		return err
	}

	to, err := e.lookup("Connect", dst)
	if err != nil {
		return err
	}

	outputs := from.base.OutputSocketTypes()
	inputs := to.base.InputSocketTypes()

	if out < 0 || out >= len(outputs) {
		return &NodeError{Op: "Connect", UID: src, Err: ErrSocketOutOfRange}
	}

	if in < 0 || in >= len(inputs) {
		return &NodeError{Op: "Connect", UID: dst, Err: ErrSocketOutOfRange}
	}

	if !models.Compatible(outputs[out], inputs[in]) {
		return &NodeError{Op: "Connect", UID: dst, Err: ErrIncompatibleSockets}
	}

	if from == to || dependsOn(from, to) {
		return &NodeError{Op: "Connect", UID: dst, Err: ErrCycle}
	}

	to.inputs[in] = link{src: from, socket: out}
	e.dirty = true

	return nil
}

// Disconnect cuts the link feeding input socket in of dst.
func (e *Engine) Disconnect(dst uint64, in int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	to, err := e.lookup("Disconnect", dst)
	if err != nil {
		return err
	}

	if in < 0 || in >= len(to.inputs) {
		return &NodeError{Op: "Disconnect", UID: dst, Err: ErrSocketOutOfRange}
	}

	to.inputs[in] = link{}
	e.dirty = true

	return nil
}

// Replace swaps the node with instance id uid for n, typically a registry
// copy of it. n inherits the links and input values of the old node, which
// is queued for deletion.
func (e *Engine) Replace(uid uint64, n node.Node) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	old, err := e.lookup("Replace", uid)
	if err != nil {
		return err
	}

	base := n.Core()
	if _, exists := e.entries[base.UID()]; exists {
		return &NodeError{Op: "Replace", UID: base.UID(), Err: ErrNodeExists}
	}

	if !sameSockets(old.base.InputSocketTypes(), base.InputSocketTypes()) ||
		!sameSockets(old.base.OutputSocketTypes(), base.OutputSocketTypes()) {
		return &NodeError{Op: "Replace", UID: base.UID(), Err: ErrIncompatibleSockets}
	}

	en := &entry{
		node:     n,
		base:     base,
		inputs:   make([]link, len(old.inputs)),
		pointers: make([]polyphony.Pointer, len(old.inputs)),
		consts:   make([][]float32, len(old.inputs)),
	}

	copy(en.inputs, old.inputs)

	for i := range en.consts {
		en.consts[i] = make([]float32, e.format.BlockSize)
		if v, err := old.base.InputValue(i); err == nil {
			_ = base.SetInputValue(i, v)
		}
	}

	n.CopyInputValues(old.node)

	for _, other := range e.all {
		for i := range other.inputs {
			if other.inputs[i].src == old {
				other.inputs[i].src = en
			}
		}
	}

	old.markDeletion = true
	clear(old.inputs)

	e.entries[base.UID()] = en
	e.all = append(e.all, en)
	e.dirty = true

	return nil
}

// Node returns the node with instance id uid.
func (e *Engine) Node(uid uint64) (node.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	en, ok := e.entries[uid]
	if !ok || en.markDeletion {
		return nil, false
	}

	return en.node, true
}

// Len returns the number of nodes not queued for deletion.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := 0

	for _, en := range e.all {
		if !en.markDeletion {
			n++
		}
	}

	return n
}

func (e *Engine) lookup(op string, uid uint64) (*entry, error) {
	en, ok := e.entries[uid]
	if !ok || en.markDeletion {
		return nil, &NodeError{Op: op, UID: uid, Err: ErrNodeNotFound}
	}

	return en, nil
}

// dependsOn reports whether target is upstream of en.
func dependsOn(en, target *entry) bool {
	seen := map[*entry]bool{}

	var visit func(*entry) bool
	visit = func(cur *entry) bool {
		if cur == target {
			return true
		}

		if seen[cur] {
			return false
		}

		seen[cur] = true

		for _, l := range cur.inputs {
			if l.src != nil && visit(l.src) {
				return true
			}
		}

		return false
	}

	return visit(en)
}

func sameSockets(a, b models.SocketTypeList) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}

	return true
}
