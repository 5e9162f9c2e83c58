package livemodel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSession struct {
	audioSent [][]byte
	textSent  []string
	events    chan Event
	closed    bool
}

func newMockSession() *mockSession {
	return &mockSession{events: make(chan Event, 10)}
}

func (m *mockSession) SendAudio(ctx context.Context, audio []byte) error {
	m.audioSent = append(m.audioSent, audio)
	return nil
}
func (m *mockSession) SendText(ctx context.Context, text string) error {
	m.textSent = append(m.textSent, text)
	return nil
}
func (m *mockSession) SendVideoFrame(ctx context.Context, frame []byte, mimeType string) error {
	return nil
}
func (m *mockSession) SendFunctionResponse(ctx context.Context, callID, name, result string) error {
	return nil
}
func (m *mockSession) SendInterrupt(ctx context.Context) error { return nil }
func (m *mockSession) Events() <-chan Event                    { return m.events }
func (m *mockSession) Close() error {
	if !m.closed {
		close(m.events)
		m.closed = true
	}
	return nil
}

var _ Session = (*mockSession)(nil)

type mockProvider struct{ session *mockSession }

func (m *mockProvider) Start(ctx context.Context, cfg Config) (Session, error) {
	if m.session == nil {
		m.session = newMockSession()
	}
	return m.session, nil
}

var _ Provider = (*mockProvider)(nil)

func TestRegister_AndGet(t *testing.T) {
	Register("mock-livemodel-test", &mockProvider{})

	p, err := Get("mock-livemodel-test")
	require.NoError(t, err)
	require.NotNil(t, p)

	session, err := p.Start(context.Background(), Config{})
	require.NoError(t, err)
	defer session.Close()
}

func TestGet_UnknownProvider(t *testing.T) {
	_, err := Get("nonexistent-provider")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown provider")
}

func TestRegister_PanicOnEmptyName(t *testing.T) {
	assert.Panics(t, func() {
		Register("", &mockProvider{})
	})
}

func TestRegister_PanicOnNilProvider(t *testing.T) {
	assert.Panics(t, func() {
		Register("mock-livemodel-nil", nil)
	})
}

func TestRegister_PanicOnDuplicate(t *testing.T) {
	Register("mock-livemodel-dup", &mockProvider{})
	assert.Panics(t, func() {
		Register("mock-livemodel-dup", &mockProvider{})
	})
}

func TestList_ContainsRegistered(t *testing.T) {
	Register("mock-livemodel-list", &mockProvider{})
	names := List()
	assert.Contains(t, names, "mock-livemodel-list")
	for i := 1; i < len(names); i++ {
		assert.LessOrEqual(t, names[i-1], names[i], "list should be sorted")
	}
}

func TestSession_SendAudioAndText(t *testing.T) {
	session := newMockSession()
	defer session.Close()

	require.NoError(t, session.SendAudio(context.Background(), []byte{0x01, 0x02}))
	require.NoError(t, session.SendText(context.Background(), "hello"))

	assert.Len(t, session.audioSent, 1)
	assert.Equal(t, []string{"hello"}, session.textSent)
}

func TestSession_EventsChannel(t *testing.T) {
	session := newMockSession()
	session.events <- Event{Type: EventTextOutput, Text: "hi"}
	session.events <- Event{Type: EventTurnEnd}
	close(session.events)
	session.closed = true

	var got []Event
	for e := range session.Events() {
		got = append(got, e)
	}
	require.Len(t, got, 2)
	assert.Equal(t, EventTextOutput, got[0].Type)
	assert.Equal(t, EventTurnEnd, got[1].Type)
}
