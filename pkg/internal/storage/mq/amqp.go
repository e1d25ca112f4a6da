package mq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/yeisme/projecthub/pkg/configs"
)

const amqpExchangeType = "topic"

func init() {
	RegisterFactory(configs.MQTypeAMQP, amqpFactory)
}

// amqpFactory 创建 RabbitMQ Publisher & Subscriber，共享一条连接.
func amqpFactory(
	_ context.Context,
	cfg *configs.MQConfig,
	logger watermill.LoggerAdapter) (
	message.Publisher, message.Subscriber, error) {
	conn, err := amqp.Dial(cfg.AMQP.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()

		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(cfg.AMQP.Exchange, amqpExchangeType, cfg.AMQP.Durable, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()

		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}

	pub := &AMQPPublisher{conn: conn, ch: ch, exchange: cfg.AMQP.Exchange}
	sub := &AMQPSubscriber{conn: conn, cfg: cfg.AMQP, logger: logger, closeCh: make(chan struct{})}

	return pub, sub, nil
}

// AMQPPublisher 发布到 topic 交换机，路由键为主题名.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
	mu       sync.Mutex // amqp.Channel 发布不支持并发
}

// Publish 实现 Publisher 接口.
func (p *AMQPPublisher) Publish(topic string, msgs ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, msg := range msgs {
		headers := amqp.Table{}
		for k, v := range msg.Metadata {
			headers[k] = v
		}

		err := p.ch.PublishWithContext(msg.Context(), p.exchange, topic, false, false, amqp.Publishing{
			MessageId:    msg.UUID,
			Headers:      headers,
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         msg.Payload,
		})
		if err != nil {
			return fmt.Errorf("publish %s: %w", topic, err)
		}
	}

	return nil
}

// Close 关闭发布通道，连接由 Subscriber 关闭.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == nil || p.ch.IsClosed() {
		return nil
	}

	return p.ch.Close()
}

// AMQPSubscriber 每个主题一个队列，绑定到同一交换机.
type AMQPSubscriber struct {
	conn    *amqp.Connection
	cfg     configs.MQAMQPConfig
	logger  watermill.LoggerAdapter
	mu      sync.Mutex
	closed  bool
	closeCh chan struct{}
	wg      sync.WaitGroup
}

// Subscribe 实现 Subscriber 接口，Nack 的消息重新入队.
func (s *AMQPSubscriber) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("amqp subscriber closed")
	}

	ch, err := s.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}

	queue := s.cfg.QueuePrefix + topic

	if _, err := ch.QueueDeclare(queue, s.cfg.Durable, false, false, false, nil); err != nil {
		_ = ch.Close()

		return nil, fmt.Errorf("declare queue %s: %w", queue, err)
	}

	if err := ch.QueueBind(queue, topic, s.cfg.Exchange, false, nil); err != nil {
		_ = ch.Close()

		return nil, fmt.Errorf("bind queue %s: %w", queue, err)
	}

	deliveries, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()

		return nil, fmt.Errorf("consume %s: %w", queue, err)
	}

	out := make(chan *message.Message)

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		defer close(out)
		defer ch.Close()

		done := mergeDone(ctx, s.closeCh)

		for {
			select {
			case <-done:
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				msg := message.NewMessage(d.MessageId, d.Body)
				for k, v := range d.Headers {
					if sv, ok := v.(string); ok {
						msg.Metadata.Set(k, sv)
					}
				}

				msg.SetContext(ctx)

				acked, alive := deliver(done, out, msg)

				switch {
				case acked:
					_ = d.Ack(false)
				case alive:
					_ = d.Nack(false, true)
				default:
					_ = d.Nack(false, true)

					return
				}
			}
		}
	}()

	s.logger.Debug("amqp subscribed", watermill.LogFields{"queue": queue, "topic": topic})

	return out, nil
}

// Close 停止所有消费并关闭连接.
func (s *AMQPSubscriber) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()

		return nil
	}

	s.closed = true
	close(s.closeCh)
	s.mu.Unlock()

	s.wg.Wait()

	if s.conn.IsClosed() {
		return nil
	}

	return s.conn.Close()
}
