package dto

import (
	"time"

	"github.com/kazumi-edu/kazumi-comm-gateway/internal/models"
)

// SelectSchoolRequest picks the top level of the conversation context.
type SelectSchoolRequest struct {
	SchoolID int64 `json:"escola_id" validate:"required,gt=0"`
}

// SelectClassRequest picks the class level; requires a selected school.
type SelectClassRequest struct {
	ClassID int64 `json:"turma_id" validate:"required,gt=0"`
}

// SelectContactRequest picks the conversation partner; requires a selected class.
type SelectContactRequest struct {
	ContactID int64 `json:"contato_id" validate:"required,gt=0"`
}

// SendMessageRequest posts a new message to the active contact.
type SendMessageRequest struct {
	Subject   string           `json:"assunto"`
	Body      string           `json:"conteudo" validate:"required"`
	MediaKind models.MediaKind `json:"tipo_midia"`
}

// ThreadMessage decorates a message with its derived direction.
type ThreadMessage struct {
	models.Message
	Outbound bool `json:"outbound"`
}

// ThreadResponse is the materialized conversation view.
type ThreadResponse struct {
	Contact  *models.Contact `json:"contact,omitempty"`
	Messages []ThreadMessage `json:"messages"`
	SyncedAt *time.Time      `json:"synced_at,omitempty"`
	Stale    bool            `json:"stale"`
}

// SelectionResponse reports the current cascading selection state.
type SelectionResponse struct {
	School   *models.School   `json:"school,omitempty"`
	Class    *models.Class    `json:"class,omitempty"`
	Contact  *models.Contact  `json:"contact,omitempty"`
	Classes  []models.Class   `json:"classes,omitempty"`
	Contacts []models.Contact `json:"contacts,omitempty"`
}
