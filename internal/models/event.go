package models

// EventKind is the closed set of calendar event types.
type EventKind string

const (
	EventMeeting      EventKind = "reuniao"
	EventParty        EventKind = "festa"
	EventPresentation EventKind = "apresentacao"
	EventLecture      EventKind = "palestra"
	EventFieldTrip    EventKind = "excursao"
	EventOther        EventKind = "outro"
)

// Valid reports whether the event kind belongs to the closed set.
func (k EventKind) Valid() bool {
	switch k {
	case EventMeeting, EventParty, EventPresentation, EventLecture, EventFieldTrip, EventOther:
		return true
	}
	return false
}

// Event is a shared calendar entry.
type Event struct {
	ID                   int64     `json:"id"`
	Title                string    `json:"titulo"`
	Description          string    `json:"descricao"`
	Kind                 EventKind `json:"tipo"`
	Date                 string    `json:"data_evento"`
	StartTime            string    `json:"hora_inicio,omitempty"`
	EndTime              string    `json:"hora_fim,omitempty"`
	Location             string    `json:"local,omitempty"`
	Audience             string    `json:"publico_alvo,omitempty"`
	RequiresConfirmation int       `json:"requer_confirmacao"`
}
