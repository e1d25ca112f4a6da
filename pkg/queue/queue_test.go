package queue_test

import (
	"context"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/yeisme/projecthub/pkg/queue"
)

type recordingPublisher struct {
	topics []string
	msgs   []*message.Message
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, msgs ...*message.Message) error {
	r.topics = append(r.topics, topic)
	r.msgs = append(r.msgs, msgs...)

	return nil
}

func TestPublishShareIssuedEnvelope(t *testing.T) {
	pub := &recordingPublisher{}

	err := queue.PublishShareIssued(context.Background(), pub, queue.ShareIssuedPayload{
		ProjectID:   "proj-1",
		Token:       "sh_abc",
		NotifyEmail: "client@example.com",
	}, queue.WithTraceID("trace-1"), queue.WithProducer("projecthub"))
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(pub.msgs) != 1 || pub.topics[0] != queue.TopicShareIssued {
		t.Fatalf("unexpected publish: topics=%v msgs=%d", pub.topics, len(pub.msgs))
	}

	msg := pub.msgs[0]
	if msg.Metadata.Get("trace_id") != "trace-1" {
		t.Errorf("trace_id metadata = %q", msg.Metadata.Get("trace_id"))
	}

	env, err := queue.ParseShareIssued(msg)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if env.Header.Topic != queue.TopicShareIssued || env.Header.Version != queue.PayloadVersionV1 {
		t.Errorf("header = %+v", env.Header)
	}

	if env.Header.ID == "" || env.Header.ID != msg.UUID {
		t.Errorf("header id %q should equal message uuid %q", env.Header.ID, msg.UUID)
	}

	if env.Payload.Token != "sh_abc" || env.Payload.NotifyEmail != "client@example.com" {
		t.Errorf("payload = %+v", env.Payload)
	}
}

func TestTopicsAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, topic := range queue.AllTopics {
		if seen[topic] {
			t.Errorf("duplicate topic %q", topic)
		}

		seen[topic] = true
	}
}
