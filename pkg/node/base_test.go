package node

import (
	"errors"
	"testing"

	"github.com/audionodes/native/pkg/messages"
	"github.com/audionodes/native/pkg/models"
	"github.com/audionodes/native/pkg/polyphony"
	"github.com/audionodes/native/pkg/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sent struct {
	msg        messages.ReturnMessage
	execThread bool
}

type recordingMessenger struct {
	sent   []sent
	reject bool
}

func (m *recordingMessenger) Send(msg messages.ReturnMessage, execThread bool) bool {
	m.sent = append(m.sent, sent{msg: msg, execThread: execThread})

	return !m.reject
}

type testNode struct {
	*Base
	processed int
}

func (n *testNode) Process(*window.InputWindow) {
	n.processed++
}

func (n *testNode) Clone() *testNode {
	return &testNode{Base: n.Base.Clone()}
}

type otherNode struct {
	*Base
}

func (n *otherNode) Process(*window.InputWindow) {}

var testSpec = Spec{
	TypeID:     "test",
	Inputs:     models.SocketTypeList{models.SocketAudio, models.SocketMIDI},
	Outputs:    models.SocketTypeList{models.SocketAudio},
	Properties: models.PropertyTypeList{models.PropertyInteger, models.PropertyBoolean, models.PropertySelect},
}

func newTestNode() *testNode {
	return &testNode{Base: NewBase(testSpec)}
}

func TestNewBase_AssignsIncreasingIdentifiers(t *testing.T) {
	a := newTestNode()
	b := newTestNode()

	assert.Greater(t, b.UID(), a.UID())
	assert.GreaterOrEqual(t, NewestUID(), b.UID())
	assert.Equal(t, "test", a.TypeID())
}

func TestBase_ValueListsMatchDeclaredTypes(t *testing.T) {
	n := newTestNode()

	assert.Equal(t, 2, n.InputCount())
	assert.Equal(t, 1, n.OutputCount())
	assert.Equal(t, 3, n.PropertyCount())
	assert.Len(t, n.inputValues, len(n.InputSocketTypes()))
	assert.Len(t, n.oldInputValues, len(n.InputSocketTypes()))
	assert.Len(t, n.propertyValues, len(n.PropertyTypes()))
	assert.False(t, n.IsSink())
}

func TestBase_DeclaredTypesAreCopied(t *testing.T) {
	spec := Spec{Inputs: models.SocketTypeList{models.SocketAudio}}
	n := NewBase(spec)

	spec.Inputs[0] = models.SocketMIDI

	assert.Equal(t, models.SocketAudio, n.InputSocketTypes()[0])
}

func TestBase_SetAndReadValues(t *testing.T) {
	n := newTestNode()

	require.NoError(t, n.SetInputValue(1, 0.25))
	require.NoError(t, n.SetPropertyValue(2, 3))

	v, err := n.InputValue(1)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, v, 1e-9)

	p, err := n.PropertyValue(2)
	require.NoError(t, err)
	assert.Equal(t, 3, p)
	assert.Equal(t, 3, n.Property(2))
	assert.Equal(t, 0, n.Property(7))
}

func TestBase_IndexOutOfRange(t *testing.T) {
	n := newTestNode()

	tests := []struct {
		name string
		call func() error
	}{
		{"negative input", func() error { return n.SetInputValue(-1, 1) }},
		{"input past end", func() error { return n.SetInputValue(2, 1) }},
		{"property past end", func() error { return n.SetPropertyValue(3, 1) }},
		{"property read", func() error { _, err := n.PropertyValue(5); return err }},
		{"old input read", func() error { _, err := n.OldInputValue(-3); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.True(t, IsIndexOutOfRange(err))

			var ie *IndexError
			require.True(t, errors.As(err, &ie))
			assert.NotEmpty(t, ie.Op)
		})
	}

	assert.Len(t, n.inputValues, 2)
	assert.Len(t, n.propertyValues, 3)
}

func TestBase_DefaultHooks(t *testing.T) {
	n := newTestNode()

	assert.NoError(t, n.ReceiveBinary(1, []byte{1, 2, 3}))
	assert.Empty(t, n.ConfigurationOptions())
	assert.Equal(t, StatusUnsupported, n.SetConfigurationOption("anything", "value"))

	desc := n.InferPolyphonyOperation([]polyphony.Pointer{{Source: 9, Voices: 4}, {}})
	assert.Equal(t, 4, desc.Voices)

	var u polyphony.Universe
	assert.NotPanics(t, func() {
		n.ApplyBundleUniverseChanges(&u)
		n.ConnectCallback()
		n.DisconnectCallback()
	})
}

func TestBase_CopyInputValues(t *testing.T) {
	src := newTestNode()
	dst := newTestNode()

	require.NoError(t, src.SetInputValue(0, 7))
	require.NoError(t, dst.SetInputValue(0, 2))

	dst.CopyInputValues(src)

	old, err := dst.OldInputValue(0)
	require.NoError(t, err)
	assert.InDelta(t, 7, old, 1e-9)
	assert.True(t, dst.InputChanged(0))

	dst.CopyInputValues(dst)
	assert.False(t, dst.InputChanged(0))
}

func TestBase_Clone(t *testing.T) {
	m := &recordingMessenger{}
	n := newTestNode()
	n.Attach(m)
	require.NoError(t, n.SetInputValue(0, 5))
	require.NoError(t, n.SetPropertyValue(0, 4))
	n.SendReturnMessage(1, 1, false)

	c := n.Clone()

	assert.NotEqual(t, n.UID(), c.UID())
	assert.Equal(t, n.TypeID(), c.TypeID())
	assert.Equal(t, 4, c.Property(0))
	assert.False(t, c.RefreshUIPending())

	require.NoError(t, c.SetInputValue(0, 9))
	v, _ := n.InputValue(0)
	assert.InDelta(t, 5, v, 1e-9)

	c.SendReturnMessage(1, 1, false)
	require.Len(t, m.sent, 2)
	assert.Equal(t, c.UID(), m.sent[1].msg.UID)
}

func TestBase_SendReturnMessage_Debounce(t *testing.T) {
	m := &recordingMessenger{}
	n := newTestNode()
	n.Attach(m)

	n.SendReturnMessageF(1, 0.5, true)
	n.SendReturnMessageF(1, 0.5, true)
	require.Len(t, m.sent, 1)
	assert.True(t, m.sent[0].execThread)
	assert.True(t, n.RefreshUIPending())

	n.SendReturnMessageF(1, 0.75, true)
	require.Len(t, m.sent, 2)

	n.SendReturnMessageF(2, 0.75, true)
	require.Len(t, m.sent, 3)

	n.ClearRefreshUI()
	n.SendReturnMessageF(2, 0.75, false)
	require.Len(t, m.sent, 4)
	assert.False(t, m.sent[3].execThread)

	v, ok := m.sent[3].msg.Number()
	require.True(t, ok)
	assert.InDelta(t, 0.75, v, 1e-9)
}

func TestBase_SendReturnMessage_IntegerAndNumberDiffer(t *testing.T) {
	m := &recordingMessenger{}
	n := newTestNode()
	n.Attach(m)

	n.SendReturnMessage(1, 0, true)
	n.SendReturnMessageF(1, 0, true)

	require.Len(t, m.sent, 2)
	assert.Equal(t, messages.PayloadInteger, m.sent[0].msg.PayloadKind())
	assert.Equal(t, messages.PayloadNumber, m.sent[1].msg.PayloadKind())
}

func TestBase_SendReturnMessage_RejectedReleasesLatch(t *testing.T) {
	m := &recordingMessenger{reject: true}
	n := newTestNode()
	n.Attach(m)

	n.SendReturnMessageF(1, 0.5, true)
	assert.False(t, n.RefreshUIPending())

	m.reject = false
	n.SendReturnMessageF(1, 0.5, true)

	assert.Len(t, m.sent, 2)
	assert.True(t, n.RefreshUIPending())
}

func TestBase_SendReturnMessage_DebouncePerKind(t *testing.T) {
	m := &recordingMessenger{}
	n := newTestNode()
	n.Attach(m)

	for range 3 {
		n.SendReturnMessageF(1, 0.5, true)
		n.SendReturnMessage(2, 7, true)
	}

	require.Len(t, m.sent, 2)
	assert.Equal(t, 1, m.sent[0].msg.Kind)
	assert.Equal(t, 2, m.sent[1].msg.Kind)

	n.SendReturnMessageF(1, 0.25, true)
	n.SendReturnMessage(2, 7, true)
	require.Len(t, m.sent, 3)

	n.ClearRefreshUI()
	n.SendReturnMessage(2, 7, true)
	assert.Len(t, m.sent, 4)
}

func TestBase_SendReturnMessage_ManyKindsStillDeliverChanges(t *testing.T) {
	m := &recordingMessenger{}
	n := newTestNode()
	n.Attach(m)

	for kind := range debounceKinds + 2 {
		n.SendReturnMessage(kind, 1, true)
	}

	assert.Len(t, m.sent, debounceKinds+2)

	n.SendReturnMessage(debounceKinds+1, 1, true)
	assert.Len(t, m.sent, debounceKinds+2)
}

func TestBase_SendReturnMessage_WithoutMessenger(t *testing.T) {
	n := newTestNode()

	assert.NotPanics(t, func() { n.SendReturnMessage(1, 3, true) })
	assert.True(t, n.RefreshUIPending())
}

func TestBase_PrepareOutputWindow(t *testing.T) {
	n := newTestNode()

	n.PrepareOutputWindow(3, 16)

	out := n.Output()
	assert.Equal(t, 3, out.Voices())
	assert.Equal(t, 1, out.Sockets())
	assert.Len(t, out.Samples(2, 0), 16)
}

func TestCopyAs(t *testing.T) {
	src := newTestNode()

	c := CopyAs(Node(src), (*testNode).Clone)
	require.NotNil(t, c)
	assert.NotEqual(t, src.UID(), c.Core().UID())

	other := &otherNode{Base: NewBase(Spec{TypeID: "other"})}
	assert.Nil(t, CopyAs(Node(other), (*testNode).Clone))
}

func TestValidateOption(t *testing.T) {
	options := []models.ConfigurationDescriptor{
		{Name: "mode", CurrentValue: "a", AvailableValues: []string{"a", "b"}},
	}

	idx, status := ValidateOption(options, "mode", "b")
	assert.Equal(t, StatusOK, status)
	assert.Equal(t, 1, idx)

	_, status = ValidateOption(options, "mode", "c")
	assert.Equal(t, StatusInvalidValue, status)

	_, status = ValidateOption(options, "shape", "a")
	assert.Equal(t, StatusUnknownOption, status)

	_, status = ValidateOption(nil, "mode", "a")
	assert.Equal(t, StatusUnknownOption, status)
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusOK.OK())
	assert.False(t, StatusInvalidValue.OK())
	assert.Equal(t, "invalid value", StatusInvalidValue.String())
	assert.Equal(t, "status(42)", Status(42).String())
}
