package livemodel

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"

	"github.com/lookatitude/beluga-ai/schema"
)

// ProviderName is the registry name for the Gemini Live provider.
const ProviderName = "gemini-live"

func init() {
	Register(ProviderName, geminiProvider{})
}

type geminiProvider struct{}

// Start opens a new Gemini Live API session (Vertex AI backend),
// grounded on gemini_client.py's GeminiLiveSession.connect.
func (geminiProvider) Start(ctx context.Context, cfg Config) (Session, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  cfg.ProjectID,
		Location: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("livemodel: creating genai client: %w", err)
	}

	liveConfig := &genai.LiveConnectConfig{
		ResponseModalities: []genai.Modality{genai.ModalityAudio, genai.ModalityText},
		SystemInstruction:  genai.NewContentFromText(cfg.SystemInstruction, genai.RoleUser),
		Tools:              []*genai.Tool{{FunctionDeclarations: toolDeclarations(cfg.Tools)}},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voiceOrDefault(cfg.Voice)},
			},
		},
	}

	session, err := client.Live.Connect(ctx, cfg.Model, liveConfig)
	if err != nil {
		return nil, fmt.Errorf("livemodel: connecting gemini live: %w", err)
	}

	s := &geminiSession{
		session: session,
		events:  make(chan Event, 32),
		done:    make(chan struct{}),
	}
	go s.listen(ctx)
	return s, nil
}

func voiceOrDefault(v string) string {
	if v == "" {
		return "Aoede"
	}
	return v
}

func toolDeclarations(tools []schema.ToolDefinition) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
		})
	}
	return decls
}

// geminiSession wraps a genai.LiveSession behind the Session interface.
type geminiSession struct {
	session *genai.LiveSession

	mu     sync.Mutex
	closed bool
	events chan Event
	done   chan struct{}
}

func (s *geminiSession) SendAudio(ctx context.Context, audio []byte) error {
	return s.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{Data: audio, MIMEType: "audio/pcm;rate=16000"},
	})
}

func (s *geminiSession) SendText(ctx context.Context, text string) error {
	return s.session.SendClientContent(genai.LiveClientContentInput{
		Turns:        []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		TurnComplete: true,
	})
}

func (s *geminiSession) SendVideoFrame(ctx context.Context, frame []byte, mimeType string) error {
	return s.session.SendRealtimeInput(genai.LiveRealtimeInput{
		Media: &genai.Blob{Data: frame, MIMEType: mimeType},
	})
}

func (s *geminiSession) SendFunctionResponse(ctx context.Context, callID, name, result string) error {
	return s.session.SendToolResponse(genai.LiveClientToolResponseInput{
		FunctionResponses: []*genai.FunctionResponse{{
			ID:       callID,
			Name:     name,
			Response: map[string]any{"result": result},
		}},
	})
}

// SendInterrupt is a deliberate no-op: the Gemini Live API interrupts
// generation automatically on new audio input, and explicit barge-in
// signaling is not part of the wire protocol. See the SendInterrupt
// resolution in SPEC_FULL.md §9.
func (s *geminiSession) SendInterrupt(ctx context.Context) error {
	return nil
}

func (s *geminiSession) Events() <-chan Event {
	return s.events
}

func (s *geminiSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.done)
	return s.session.Close()
}

// listen translates raw Gemini Live messages into Events, mirroring
// gemini_client.py's _listen background task.
func (s *geminiSession) listen(ctx context.Context) {
	defer close(s.events)

	for {
		select {
		case <-s.done:
			return
		case <-ctx.Done():
			return
		default:
		}

		msg, err := s.session.Receive()
		if err != nil {
			s.emit(Event{Type: EventError, Error: err})
			return
		}

		s.translate(msg)
	}
}

func (s *geminiSession) translate(msg *genai.LiveServerMessage) {
	if msg == nil {
		return
	}
	if text := msg.Text(); text != "" {
		s.emit(Event{Type: EventTextOutput, Text: text})
	}
	if data := msg.Data(); len(data) > 0 {
		s.emit(Event{Type: EventAudioOutput, Audio: data})
	}
	if msg.ToolCall != nil {
		for _, fc := range msg.ToolCall.FunctionCalls {
			s.emit(Event{Type: EventToolCall, ToolCall: &schema.ToolCall{
				ID:   fc.ID,
				Name: fc.Name,
			}})
		}
	}
	if msg.ServerContent != nil {
		if msg.ServerContent.Interrupted {
			s.emit(Event{Type: EventInterrupted})
		}
		if msg.ServerContent.TurnComplete {
			s.emit(Event{Type: EventTurnEnd})
		}
	}
}

func (s *geminiSession) emit(e Event) {
	select {
	case s.events <- e:
	case <-s.done:
	}
}
