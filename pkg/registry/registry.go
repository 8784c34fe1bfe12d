// Package registry maps node type identifiers to their factory pairs.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/audionodes/native/pkg/node"
	"github.com/audionodes/native/pkg/otelhelper"
	"github.com/audionodes/native/pkg/protocol"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/audionodes/native/pkg/registry"

// Registry is the catalog of node kinds. Registration takes the write lock
// and construction the read lock, so registering or unregistering a type
// never overlaps building an instance.
type Registry struct {
	mu        sync.RWMutex
	logger    *slog.Logger
	tracer    trace.Tracer
	messenger node.Messenger
	creators  map[string]node.Creator
	factories map[string]protocol.NodeFactory
}

// Option configures a Registry.
type Option func(*Registry)

// WithMessenger attaches m to every instance the registry builds.
func WithMessenger(m node.Messenger) Option {
	return func(r *Registry) {
		r.messenger = m
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(r *Registry) {
		r.tracer = t
	}
}

func NewRegistry(log *slog.Logger, opts ...Option) *Registry {
	r := &Registry{
		logger:    log,
		creators:  make(map[string]node.Creator),
		factories: make(map[string]protocol.NodeFactory),
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	if r.tracer == nil {
		r.tracer = otel.Tracer(tracerName)
	}

	return r
}

// Register records the factory pair for typeID.
func (r *Registry) Register(typeID string, creator node.Creator) error {
	if typeID == "" || creator.Construct == nil || creator.Copy == nil {
		return &TypeError{Op: "Register", TypeID: typeID, Err: ErrInvalidCreator}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.creators[typeID]; exists {
		return &TypeError{Op: "Register", TypeID: typeID, Err: ErrTypeAlreadyRegistered}
	}

	r.creators[typeID] = creator
	r.logger.Debug("Registered node type", "type", typeID)

	return nil
}

// RegisterNode records a factory together with its metadata.
func (r *Registry) RegisterNode(factory protocol.NodeFactory) error {
	if err := r.Register(factory.ID(), factory.Creator()); err != nil {
		return err
	}

	r.mu.Lock()
	r.factories[factory.ID()] = factory
	r.mu.Unlock()

	return nil
}

// Unregister removes typeID. Existing instances stay valid.
func (r *Registry) Unregister(typeID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.creators[typeID]; !exists {
		return &TypeError{Op: "Unregister", TypeID: typeID, Err: ErrTypeNotRegistered}
	}

	delete(r.creators, typeID)
	delete(r.factories, typeID)
	r.logger.Debug("Unregistered node type", "type", typeID)

	return nil
}

// Construct builds a fresh instance of typeID.
func (r *Registry) Construct(ctx context.Context, typeID string) (node.Node, error) {
	_, span := otelhelper.StartSpan(ctx, r.tracer, "registry.construct",
		attribute.String(otelhelper.NodeTypeKey, typeID))
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	creator, ok := r.creators[typeID]
	if !ok {
		err := &TypeError{Op: "Construct", TypeID: typeID, Err: ErrTypeNotRegistered}
		otelhelper.SetError(span, err)

		return nil, err
	}

	n, err := guard(creator.Construct)
	if err == nil {
		err = r.adopt("Construct", typeID, n)
	}

	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	span.SetAttributes(attribute.String(otelhelper.NodeUIDKey, strconv.FormatUint(n.Core().UID(), 10)))

	return n, nil
}

// Copy builds a new instance of typeID duplicating src. The source must be
// of the same concrete kind and must not be processing concurrently; a
// mismatch returns ErrTypeMismatch and leaves src untouched.
func (r *Registry) Copy(ctx context.Context, typeID string, src node.Node) (node.Node, error) {
	_, span := otelhelper.StartSpan(ctx, r.tracer, "registry.copy",
		attribute.String(otelhelper.NodeTypeKey, typeID))
	defer span.End()

	if src == nil {
		err := &TypeError{Op: "Copy", TypeID: typeID, Err: ErrTypeMismatch}
		otelhelper.SetError(span, err)

		return nil, err
	}

	actual := src.Core().TypeID()
	span.SetAttributes(
		attribute.String(otelhelper.SourceTypeKey, actual),
		attribute.String(otelhelper.SourceUIDKey, strconv.FormatUint(src.Core().UID(), 10)),
	)

	r.mu.RLock()
	defer r.mu.RUnlock()

	creator, ok := r.creators[typeID]
	if !ok {
		err := &TypeError{Op: "Copy", TypeID: typeID, Err: ErrTypeNotRegistered}
		otelhelper.SetError(span, err)

		return nil, err
	}

	if actual != typeID {
		err := &TypeError{Op: "Copy", TypeID: typeID, Actual: actual, Err: ErrTypeMismatch}
		otelhelper.SetError(span, err)

		return nil, err
	}

	n, err := guard(func() node.Node { return creator.Copy(src) })
	if err == nil {
		err = r.adopt("Copy", typeID, n)
	}

	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	return n, nil
}

// guard turns a panicking factory into ErrConstructFailed.
func guard(build func() node.Node) (n node.Node, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			n, err = nil, fmt.Errorf("%w: %v", ErrConstructFailed, rec)
		}
	}()

	return build(), nil
}

func (r *Registry) adopt(op, typeID string, n node.Node) error {
	if n == nil || n.Core() == nil {
		return &TypeError{Op: op, TypeID: typeID, Err: ErrConstructFailed}
	}

	if actual := n.Core().TypeID(); actual != typeID {
		return &TypeError{Op: op, TypeID: typeID, Actual: actual, Err: ErrTypeMismatch}
	}

	if r.messenger != nil {
		n.Core().Attach(r.messenger)
	}

	return nil
}

// NewestInstanceID returns the most recently assigned instance identifier.
func (r *Registry) NewestInstanceID() uint64 {
	return node.NewestUID()
}

// IsRegistered checks if a type identifier is registered.
func (r *Registry) IsRegistered(typeID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.creators[typeID]

	return exists
}

// Types returns the registered identifiers in lexical order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.creators))
	for typeID := range r.creators {
		types = append(types, typeID)
	}

	sort.Strings(types)

	return types
}

// Factory returns the metadata registered with RegisterNode.
func (r *Registry) Factory(typeID string) (protocol.NodeFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[typeID]

	return f, ok
}
