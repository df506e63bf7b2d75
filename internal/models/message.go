package models

import "time"

// MediaKind is the closed set of message media types.
type MediaKind string

const (
	MediaText  MediaKind = "texto"
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
	MediaImage MediaKind = "imagem"
)

// Valid reports whether the media kind belongs to the closed set.
func (k MediaKind) Valid() bool {
	switch k {
	case MediaText, MediaAudio, MediaVideo, MediaImage:
		return true
	}
	return false
}

// Message is a directed communication unit between two identities.
// It is immutable once created except for the read timestamp, which
// transitions once from unset to set.
type Message struct {
	ID          int64          `json:"id"`
	SenderID    int64          `json:"remetente_id"`
	RecipientID int64          `json:"destinatario_id"`
	Subject     string         `json:"assunto"`
	Body        string         `json:"conteudo"`
	MediaKind   MediaKind      `json:"tipo_midia"`
	MediaURL    string         `json:"midia_url,omitempty"`
	SentAt      time.Time      `json:"enviada_em"`
	ReadAt      *time.Time     `json:"lida_em,omitempty"`
	ReadReceipt bool           `json:"confirmacao_leitura"`
	Sender      *MessageSender `json:"remetente,omitempty"`
}

// MessageSender is the embedded sender detail the upstream attaches to
// inbox records.
type MessageSender struct {
	FullName string `json:"nome_completo"`
	Role     Role   `json:"tipo_usuario"`
}

// OutboundFor reports whether the message was sent by the given identity.
// Derived at read time, never stored.
func (m Message) OutboundFor(identityID int64) bool {
	return m.SenderID == identityID
}

// BetweenPair reports whether {sender, recipient} as an unordered pair
// equals {a, b}.
func (m Message) BetweenPair(a, b int64) bool {
	return (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a)
}
