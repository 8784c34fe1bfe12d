package bridge

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/audionodes/native/pkg/messages"
	"github.com/audionodes/native/pkg/mocks"
	"github.com/audionodes/native/pkg/nodes/meter"
	"github.com/audionodes/native/pkg/nodes/oscillator"
	"github.com/audionodes/native/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type hostSink struct {
	mu  sync.Mutex
	got []messages.ReturnMessage
}

func (h *hostSink) Deliver(_ context.Context, msg messages.ReturnMessage, _ bool) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.got = append(h.got, msg)

	return nil
}

func (h *hostSink) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.got)
}

func setup(t *testing.T) *hostSink {
	t.Helper()

	sink := &hostSink{}
	require.NoError(t, Init(sink, slog.Default()))

	t.Cleanup(func() {
		_ = Shutdown()
	})

	return sink
}

func TestNotInitialized(t *testing.T) {
	_, err := Construct(oscillator.TypeID)
	assert.ErrorIs(t, err, ErrNotInitialized)

	assert.ErrorIs(t, Shutdown(), ErrNotInitialized)
	assert.ErrorIs(t, DeliverReturnMessage(messages.NewInteger(1, 1, 1), true), ErrNotInitialized)

	_, err = Registry()
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestInitTwice(t *testing.T) {
	setup(t)

	assert.ErrorIs(t, Init(&hostSink{}, nil), ErrAlreadyInitialized)
}

func TestRegisterConstructCopy(t *testing.T) {
	setup(t)

	reg, err := RegisterNode(oscillator.NewFactory())
	require.NoError(t, err)
	assert.Equal(t, oscillator.TypeID, reg.TypeID())

	n, err := Construct(oscillator.TypeID)
	require.NoError(t, err)
	assert.Equal(t, n.Core().UID(), NewestInstanceIdentifier())

	c, err := Copy(oscillator.TypeID, n)
	require.NoError(t, err)
	assert.Greater(t, c.Core().UID(), n.Core().UID())

	bad, err := Copy(meter.TypeID, n)
	assert.Nil(t, bad)
	assert.True(t, registry.IsTypeNotRegistered(err))

	require.NoError(t, reg.Close())

	_, err = Construct(oscillator.TypeID)
	assert.True(t, registry.IsTypeNotRegistered(err))
}

func TestRegisterCreator(t *testing.T) {
	setup(t)

	require.NoError(t, Register(meter.TypeID, meter.NewFactory().Creator()))
	require.NoError(t, Register(oscillator.TypeID, oscillator.NewFactory().Creator()))

	osc, err := Construct(oscillator.TypeID)
	require.NoError(t, err)

	c, err := Copy(meter.TypeID, osc)
	assert.Nil(t, c)
	assert.True(t, registry.IsTypeMismatch(err))

	require.NoError(t, Unregister(meter.TypeID))
	assert.True(t, registry.IsTypeNotRegistered(Unregister(meter.TypeID)))
}

func TestDeliverReturnMessage(t *testing.T) {
	sink := setup(t)

	require.NoError(t, DeliverReturnMessage(messages.NewInteger(1, 1, 5), false))
	assert.Equal(t, 1, sink.count())

	require.NoError(t, DeliverReturnMessage(messages.NewNumber(1, 2, 0.5), true))
	assert.Eventually(t, func() bool { return sink.count() == 2 }, time.Second, time.Millisecond)
}

func TestNodesSendThroughBridge(t *testing.T) {
	sink := setup(t)

	_, err := RegisterNode(meter.NewFactory())
	require.NoError(t, err)

	n, err := Construct(meter.TypeID)
	require.NoError(t, err)

	n.SendReturnMessageF(meter.LevelMessage, 0.25, true)

	require.NoError(t, Shutdown())
	require.Equal(t, 1, sink.count())
	assert.Equal(t, n.Core().UID(), sink.got[0].UID)

	require.NoError(t, Init(sink, nil))
}

func TestDeliverReturnMessage_HostFailureIsNotPropagated(t *testing.T) {
	sink := &mocks.MockSink{}
	sink.On("Deliver", mock.Anything, messages.NewInteger(3, 1, 1), false).Return(errors.New("host gone")).Once()

	require.NoError(t, Init(sink, slog.Default()))
	t.Cleanup(func() {
		_ = Shutdown()
	})

	assert.NoError(t, DeliverReturnMessage(messages.NewInteger(3, 1, 1), false))
	sink.AssertExpectations(t)
}
