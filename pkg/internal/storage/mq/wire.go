package mq

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/bytedance/sonic"
)

// wireMessage 为不支持消息头的传输（Redis pub/sub）携带 UUID 与元数据.
type wireMessage struct {
	UUID     string            `json:"uuid"`
	Metadata map[string]string `json:"metadata,omitempty"`
	Payload  []byte            `json:"payload"`
}

func marshalWire(m *message.Message) ([]byte, error) {
	return sonic.Marshal(wireMessage{UUID: m.UUID, Metadata: m.Metadata, Payload: m.Payload})
}

func unmarshalWire(b []byte) (*message.Message, error) {
	var w wireMessage
	if err := sonic.Unmarshal(b, &w); err != nil {
		return nil, err
	}

	msg := message.NewMessage(w.UUID, w.Payload)
	for k, v := range w.Metadata {
		msg.Metadata.Set(k, v)
	}

	return msg, nil
}

// deliver 把消息交给订阅方并等待确认，返回 true 表示已 Ack.
func deliver(done <-chan struct{}, out chan<- *message.Message, msg *message.Message) (acked bool, ok bool) {
	select {
	case out <- msg:
	case <-done:
		return false, false
	}

	select {
	case <-msg.Acked():
		return true, true
	case <-msg.Nacked():
		return false, true
	case <-done:
		return false, false
	}
}
