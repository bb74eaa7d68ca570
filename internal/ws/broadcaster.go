package ws

import (
	"encoding/json"
	"time"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/remittance"
)

// Broadcaster pushes remittance events to the global admin topic and
// the owning organization's topic. Publish never blocks.
type Broadcaster struct {
	hub *Hub
}

func NewBroadcaster(hub *Hub) *Broadcaster {
	return &Broadcaster{hub: hub}
}

func (b *Broadcaster) Publish(event remittance.Event) {
	payload, err := json.Marshal(map[string]any{
		"event": event.Type,
		"data": map[string]any{
			"transaction_id":  event.TransactionID,
			"organization_id": event.OrganizationID,
			"reference":       event.Reference,
			"amount":          event.Amount,
			"match_status":    event.MatchStatus,
			"at":              event.At.UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return
	}
	b.hub.Publish(TopicRemittances, payload)
	b.hub.Publish(OrgTopic(event.OrganizationID), payload)
}
