package bus

// IncomingMessage represents a message received from a messaging channel.
// It is owned by the channel layer and passed by value through the pipeline;
// nothing downstream mutates it.
type IncomingMessage struct {
	Channel     string            `json:"channel"`
	SenderID    string            `json:"sender_id"`   // phone number or platform user ID
	ChatID      string            `json:"chat_id"`     // conversation identifier
	Text        string            `json:"text"`        // message text (empty for pure audio)
	Attachments []Attachment      `json:"attachments,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// Attachment describes a media item carried by an inbound message.
type Attachment struct {
	Type string `json:"type"` // "audio", "photo", "document"
	Ref  string `json:"ref"`  // retrievable reference (local path or file ID)
}

// HasAudio reports whether the message carries at least one audio attachment.
func (m IncomingMessage) HasAudio() bool {
	for _, a := range m.Attachments {
		if a.Type == "audio" {
			return true
		}
	}
	return false
}

// AudioRef returns the first audio attachment reference, or "".
func (m IncomingMessage) AudioRef() string {
	for _, a := range m.Attachments {
		if a.Type == "audio" {
			return a.Ref
		}
	}
	return ""
}

// OutboundMessage represents a reply to be delivered to a channel.
type OutboundMessage struct {
	Channel  string            `json:"channel"`
	ChatID   string            `json:"chat_id"`
	Text     string            `json:"text"`
	Private  bool              `json:"private,omitempty"`  // side-channel: mark conversation private
	Metadata map[string]string `json:"metadata,omitempty"` // channel-specific metadata (status changes etc.)
}

// MessageHandler processes one inbound message end-to-end and returns the reply.
type MessageHandler func(IncomingMessage) OutboundMessage
