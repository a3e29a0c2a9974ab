package publishers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event is the message sent downstream for every exported card.
type Event struct {
	ID         string         `json:"id"`
	Query      string         `json:"query"`
	CardID     string         `json:"card_id"`
	CardName   string         `json:"card_name"`
	SetCode    string         `json:"set,omitempty"`
	Card       map[string]any `json:"card"`
	ExportedAt time.Time      `json:"exported_at"`
}

// NewEvent wraps a raw card payload matched by query.
func NewEvent(query string, card map[string]any) Event {
	return Event{
		ID:         uuid.NewString(),
		Query:      query,
		CardID:     cardString(card, "id"),
		CardName:   cardString(card, "name"),
		SetCode:    cardString(card, "set"),
		Card:       card,
		ExportedAt: time.Now().UTC(),
	}
}

// encode is the body every sink sends.
func (e Event) encode() ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode card event: %w", err)
	}
	return b, nil
}

// attributes are the routing attributes for queue and topic messages.
// Empty values are left out.
func (e Event) attributes() map[string]string {
	out := make(map[string]string, 4)
	for k, v := range map[string]string{
		"event_id": e.ID,
		"card_id":  e.CardID,
		"set":      e.SetCode,
		"query":    e.Query,
	} {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// legalIn reports whether the card's legalities mark it legal in format.
func (e Event) legalIn(format string) bool {
	legalities, _ := e.Card["legalities"].(map[string]any)
	return legalities[format] == "legal"
}

func cardString(card map[string]any, key string) string {
	s, _ := card[key].(string)
	return s
}
