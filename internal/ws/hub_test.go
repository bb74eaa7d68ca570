package ws

import (
	"testing"
	"time"
)

func TestHubSubscribeAndPublish(t *testing.T) {
	hub := NewHub()
	client := NewClient(nil)

	hub.Subscribe(TopicRemittances, client)
	hub.Publish(TopicRemittances, []byte(`{"event":"remittance.applied"}`))

	select {
	case msg := <-client.out:
		if string(msg) != `{"event":"remittance.applied"}` {
			t.Fatalf("unexpected payload: %s", string(msg))
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for message")
	}

	hub.Drop(client)
}

func TestHubOrgTopicIsolation(t *testing.T) {
	hub := NewHub()
	orgClient := NewClient(nil)
	otherClient := NewClient(nil)

	hub.Subscribe(OrgTopic(9), orgClient)
	hub.Subscribe(OrgTopic(10), otherClient)
	hub.Publish(OrgTopic(9), []byte(`{"event":"remittance.ingested"}`))

	select {
	case <-orgClient.out:
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for org message")
	}
	select {
	case msg := <-otherClient.out:
		t.Fatalf("message leaked to other org: %s", string(msg))
	default:
	}
}

func TestHubDropRemovesAllTopics(t *testing.T) {
	hub := NewHub()
	client := NewClient(nil)

	hub.Subscribe(TopicRemittances, client)
	hub.Subscribe(OrgTopic(9), client)
	hub.Drop(client)

	hub.Publish(TopicRemittances, []byte(`x`))
	hub.Publish(OrgTopic(9), []byte(`x`))

	select {
	case msg := <-client.out:
		t.Fatalf("dropped client still receiving: %s", string(msg))
	default:
	}
}
