package ws

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/websocket"
)

const (
	// TopicRemittances carries every remittance event, for the admin
	// reconciliation screen.
	TopicRemittances = "remittances"

	orgTopicPrefix = "remittances:org:"
)

func OrgTopic(organizationID int64) string {
	return orgTopicPrefix + strconv.FormatInt(organizationID, 10)
}

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

type subscribeMessage struct {
	Action         string `json:"action"`
	Channel        string `json:"channel"`
	OrganizationID int64  `json:"organizationId"`
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	websocket.Handler(func(conn *websocket.Conn) {
		client := NewClient(conn)
		go h.writer(client)
		h.reader(client)
	}).ServeHTTP(c.Writer, c.Request)
}

func (h *Handler) reader(client *Client) {
	defer func() {
		h.hub.Drop(client)
		close(client.out)
		_ = client.conn.Close()
	}()

	for {
		var raw string
		if err := websocket.Message.Receive(client.conn, &raw); err != nil {
			return
		}
		var msg subscribeMessage
		if err := json.Unmarshal([]byte(raw), &msg); err != nil {
			continue
		}
		if strings.ToLower(strings.TrimSpace(msg.Action)) != "subscribe" {
			continue
		}
		topic := subscriptionTopic(msg)
		if topic == "" {
			continue
		}
		h.hub.Subscribe(topic, client)
	}
}

func (h *Handler) writer(client *Client) {
	for payload := range client.out {
		if err := websocket.Message.Send(client.conn, string(payload)); err != nil {
			return
		}
	}
}

func subscriptionTopic(msg subscribeMessage) string {
	switch strings.ToLower(strings.TrimSpace(msg.Channel)) {
	case "remittances":
		return TopicRemittances
	case "org:remittances":
		if msg.OrganizationID <= 0 {
			return ""
		}
		return OrgTopic(msg.OrganizationID)
	default:
		return ""
	}
}
