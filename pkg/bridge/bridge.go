// Package bridge is the call-shaped boundary between the host and the
// execution core.
//
// The bridge holds one process-scoped registry and return-message channel.
// Init must be called before any other function, typically when the module
// is loaded, and Shutdown after the last one, when it is unloaded. Every
// failure is returned as a value; nothing panics across the boundary.
package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/audionodes/native/pkg/messages"
	"github.com/audionodes/native/pkg/node"
	"github.com/audionodes/native/pkg/protocol"
	"github.com/audionodes/native/pkg/registry"
)

var (
	ErrNotInitialized     = errors.New("bridge not initialized")
	ErrAlreadyInitialized = errors.New("bridge already initialized")
)

type instance struct {
	registry *registry.Registry
	channel  *messages.Channel
	cancel   context.CancelFunc
	done     chan struct{}
}

var (
	mu    sync.RWMutex
	state *instance
)

// Init creates the process-scoped registry and starts delivering real-time
// return messages to sink.
func Init(sink messages.Sink, logger *slog.Logger, opts ...messages.Option) error {
	mu.Lock()
	defer mu.Unlock()

	if state != nil {
		return ErrAlreadyInitialized
	}

	if logger == nil {
		logger = slog.Default()
	}

	opts = append([]messages.Option{messages.WithLogger(logger)}, opts...)
	channel := messages.NewChannel(sink, opts...)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)

		_ = channel.Run(ctx)
	}()

	state = &instance{
		registry: registry.NewRegistry(logger, registry.WithMessenger(channel)),
		channel:  channel,
		cancel:   cancel,
		done:     done,
	}

	logger.Info("Bridge initialized")

	return nil
}

// Shutdown delivers pending return messages and releases the registry.
func Shutdown() error {
	mu.Lock()
	defer mu.Unlock()

	if state == nil {
		return ErrNotInitialized
	}

	state.cancel()
	<-state.done
	state = nil

	return nil
}

func current() (*instance, error) {
	mu.RLock()
	defer mu.RUnlock()

	if state == nil {
		return nil, ErrNotInitialized
	}

	return state, nil
}

// Registry returns the process-scoped registry.
func Registry() (*registry.Registry, error) {
	s, err := current()
	if err != nil {
		return nil, err
	}

	return s.registry, nil
}

// Register records the factory pair for typeID.
func Register(typeID string, creator node.Creator) error {
	s, err := current()
	if err != nil {
		return err
	}

	return s.registry.Register(typeID, creator)
}

// Unregister removes typeID.
func Unregister(typeID string) error {
	s, err := current()
	if err != nil {
		return err
	}

	return s.registry.Unregister(typeID)
}

// NewestInstanceIdentifier returns the most recently assigned instance
// identifier.
func NewestInstanceIdentifier() uint64 {
	return node.NewestUID()
}

// Construct builds a fresh instance of typeID, or returns nil with the reason.
func Construct(typeID string) (node.Node, error) {
	s, err := current()
	if err != nil {
		return nil, err
	}

	return s.registry.Construct(context.Background(), typeID)
}

// Copy builds an instance of typeID duplicating src, or returns nil when src
// is of another concrete kind.
func Copy(typeID string, src node.Node) (node.Node, error) {
	s, err := current()
	if err != nil {
		return nil, err
	}

	return s.registry.Copy(context.Background(), typeID, src)
}

// DeliverReturnMessage routes msg toward the host. With execThread set the
// call never blocks.
func DeliverReturnMessage(msg messages.ReturnMessage, execThread bool) error {
	s, err := current()
	if err != nil {
		return err
	}

	s.channel.Send(msg, execThread)

	return nil
}

// Registration ties a node type to the lifetime of the module declaring it.
type Registration struct {
	typeID string
}

// RegisterNode registers factory and returns a handle that unregisters it.
func RegisterNode(factory protocol.NodeFactory) (*Registration, error) {
	s, err := current()
	if err != nil {
		return nil, err
	}

	if err := s.registry.RegisterNode(factory); err != nil {
		return nil, err
	}

	return &Registration{typeID: factory.ID()}, nil
}

// TypeID returns the registered identifier.
func (r *Registration) TypeID() string {
	return r.typeID
}

// Close unregisters the type.
func (r *Registration) Close() error {
	return Unregister(r.typeID)
}
