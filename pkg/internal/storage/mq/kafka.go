package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/segmentio/kafka-go"

	"github.com/yeisme/projecthub/pkg/configs"
)

const kafkaUUIDHeader = "_watermill_message_uuid"

func init() {
	RegisterFactory(configs.MQTypeKafka, kafkaFactory)
}

// kafkaFactory 创建 Kafka Publisher & Subscriber.
func kafkaFactory(
	_ context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil, errors.New("kafka brokers not configured")
	}

	pub := &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Kafka.Brokers...),
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
			RequiredAcks:           kafka.RequireOne,
		},
	}

	sub := &KafkaSubscriber{cfg: cfg.Kafka, logger: logger, closeCh: make(chan struct{})}

	return pub, sub, nil
}

// KafkaPublisher 以消息 UUID 作为分区键.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// Publish 实现 Publisher 接口.
func (p *KafkaPublisher) Publish(topic string, msgs ...*message.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	out := make([]kafka.Message, 0, len(msgs))

	for _, msg := range msgs {
		headers := []kafka.Header{{Key: kafkaUUIDHeader, Value: []byte(msg.UUID)}}
		for k, v := range msg.Metadata {
			headers = append(headers, kafka.Header{Key: k, Value: []byte(v)})
		}

		out = append(out, kafka.Message{
			Topic:   topic,
			Key:     []byte(msg.UUID),
			Value:   msg.Payload,
			Headers: headers,
		})
	}

	if err := p.writer.WriteMessages(msgs[0].Context(), out...); err != nil {
		return fmt.Errorf("write kafka messages: %w", err)
	}

	return nil
}

// Close 实现 Publisher 接口.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// KafkaSubscriber 每个主题一个消费组 Reader，Ack 后提交位移.
type KafkaSubscriber struct {
	cfg     configs.MQKafkaConfig
	logger  watermill.LoggerAdapter
	mu      sync.Mutex
	readers []*kafka.Reader
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Subscribe 实现 Subscriber 接口；Nack 的消息不提交位移，重启后重新消费.
func (s *KafkaSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("kafka subscriber closed")
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: s.cfg.Brokers,
		GroupID: s.cfg.GroupID,
		Topic:   topic,
	})
	s.readers = append(s.readers, reader)

	out := make(chan *message.Message)
	readCtx, cancel := context.WithCancel(ctx)

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer close(out)
		defer cancel()

		go func() {
			select {
			case <-s.closeCh:
				cancel()
			case <-readCtx.Done():
			}
		}()

		for {
			km, err := reader.FetchMessage(readCtx)
			if err != nil {
				if readCtx.Err() == nil {
					s.logger.Error("kafka fetch failed", err, watermill.LogFields{"topic": topic})
				}

				return
			}

			uuid := string(km.Key)
			msg := message.NewMessage(uuid, km.Value)

			for _, h := range km.Headers {
				if h.Key == kafkaUUIDHeader {
					msg.UUID = string(h.Value)

					continue
				}

				msg.Metadata.Set(h.Key, string(h.Value))
			}

			msg.SetContext(ctx)

			acked, alive := deliver(readCtx.Done(), out, msg)
			if !alive {
				return
			}

			if acked {
				if err := reader.CommitMessages(readCtx, km); err != nil {
					s.logger.Error("kafka commit failed", err, watermill.LogFields{"topic": topic})
				}
			}
		}
	}()

	return out, nil
}

// Close 关闭所有 Reader.
func (s *KafkaSubscriber) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()

		return nil
	}

	s.closed = true
	close(s.closeCh)

	readers := s.readers
	s.mu.Unlock()

	s.wg.Wait()

	var errs []error
	for _, r := range readers {
		errs = append(errs, r.Close())
	}

	return errors.Join(errs...)
}
