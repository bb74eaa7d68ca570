package ws

import "golang.org/x/net/websocket"

type Client struct {
	conn *websocket.Conn
	out  chan []byte
}

func NewClient(conn *websocket.Conn) *Client {
	return &Client{
		conn: conn,
		out:  make(chan []byte, 64),
	}
}

// send drops the connection when the client cannot keep up; a slow
// dashboard must never stall the hub.
func (c *Client) send(payload []byte) {
	select {
	case c.out <- payload:
	default:
		_ = c.conn.Close()
	}
}
