// Package schema defines the wire and in-process data model shared across
// the gateway: multi-modal message content, chat messages and sessions,
// tool calls, streaming chunks, and the gateway's client/server protocol
// and A2A task types.
package schema

// ContentType names the kind of content carried by a ContentPart.
type ContentType string

const (
	ContentText  ContentType = "text"
	ContentImage ContentType = "image"
	ContentAudio ContentType = "audio"
	ContentVideo ContentType = "video"
	ContentFile  ContentType = "file"
)

// ContentPart is one piece of a multi-modal message body.
type ContentPart interface {
	PartType() ContentType
}

// TextPart is plain text content.
type TextPart struct {
	Text string `json:"text"`
}

func (TextPart) PartType() ContentType { return ContentText }

// ImagePart references image content, either inline (Data) or by URL.
type ImagePart struct {
	MimeType string `json:"mime_type,omitempty"`
	URL      string `json:"url,omitempty"`
	Data     []byte `json:"data,omitempty"`
}

func (ImagePart) PartType() ContentType { return ContentImage }

// AudioPart carries a chunk of PCM audio, opaque to everything but the
// live-model adapter and the client transport.
type AudioPart struct {
	Format     string `json:"format"`
	SampleRate int    `json:"sample_rate,omitempty"`
	Data       []byte `json:"data,omitempty"`
}

func (AudioPart) PartType() ContentType { return ContentAudio }

// VideoPart references a video frame or clip, either inline or by URL.
type VideoPart struct {
	MimeType string `json:"mime_type,omitempty"`
	URL      string `json:"url,omitempty"`
	Data     []byte `json:"data,omitempty"`
}

func (VideoPart) PartType() ContentType { return ContentVideo }

// FilePart references an arbitrary named attachment.
type FilePart struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type,omitempty"`
	Data     []byte `json:"data,omitempty"`
}

func (FilePart) PartType() ContentType { return ContentFile }
