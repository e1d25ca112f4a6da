// Package mq 基于 Watermill 提供统一的消息发布/订阅客户端.
// 支持的类型：memory（gochannel）、nats（JetStream）、redis（pub/sub）、amqp（RabbitMQ）、kafka.
//
// 使用示例：
//
//	client, err := mq.New(ctx, &cfg.MQ)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	client.AddConsumer("notify.share_issued", queue.TopicShareIssued, handle)
//	if err := client.Start(ctx); err != nil {
//		return err
//	}
package mq

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	watermill "github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/yeisme/projecthub/pkg/configs"
	nlog "github.com/yeisme/projecthub/pkg/log"
)

// Factory 定义创建 Publisher + Subscriber 的工厂函数.
type Factory func(ctx context.Context, cfg *configs.MQConfig, logger watermill.LoggerAdapter) (message.Publisher, message.Subscriber, error)

var factories = map[configs.MQType]Factory{}

// RegisterFactory 注册指定 MQType 的工厂.
func RegisterFactory(t configs.MQType, f Factory) {
	factories[t] = f
}

// GetRegisteredMQTypes 返回已注册的 MQ 类型.
func GetRegisteredMQTypes() []configs.MQType {
	out := make([]configs.MQType, 0, len(factories))
	for t := range factories {
		out = append(out, t)
	}

	slices.Sort(out)

	return out
}

// Client 封装 watermill Publisher、Subscriber 与 Router.
type Client struct {
	typ        configs.MQType
	publisher  message.Publisher
	subscriber message.Subscriber
	router     *message.Router
	closeFunc  func() // 关闭 metrics 服务器

	mu        sync.Mutex
	started   bool
	closeOnce sync.Once
}

// New 按配置创建消息队列客户端.
func New(ctx context.Context, cfg *configs.MQConfig) (*Client, error) {
	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unsupported mq type: %s", cfg.Type)
	}

	l := nlog.Component("mq")
	logger := newWatermillLogger(l)

	pub, sub, err := factory(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init mq (%s): %w", cfg.Type, err)
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: 10 * time.Second}, logger)
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	router.AddMiddleware(
		middleware.Recoverer,
		middleware.Retry{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			Logger:          logger,
		}.Middleware,
	)

	c := &Client{typ: cfg.Type, router: router}

	if cfg.Common.EnableMetrics {
		registry, closeMetricsServer := metrics.CreateRegistryAndServeHTTP(cfg.Common.Endpoint)
		c.closeFunc = closeMetricsServer

		builder := metrics.NewPrometheusMetricsBuilder(registry, "projecthub", "mq")
		builder.AddPrometheusRouterMetrics(router)

		if pub, err = builder.DecoratePublisher(pub); err != nil {
			return nil, fmt.Errorf("decorate publisher with metrics: %w", err)
		}

		if sub, err = builder.DecorateSubscriber(sub); err != nil {
			return nil, fmt.Errorf("decorate subscriber with metrics: %w", err)
		}

		l.Info().Str("endpoint", cfg.Common.Endpoint).Msg("mq metrics enabled")
	}

	c.publisher = pub
	c.subscriber = sub

	l.Info().Str("type", string(cfg.Type)).Msg("mq client initialized")

	return c, nil
}

// Type 返回客户端的队列类型.
func (c *Client) Type() configs.MQType {
	return c.typ
}

// Publish 便捷发布，ctx 会附加到每条消息上.
func (c *Client) Publish(ctx context.Context, topic string, msgs ...*message.Message) error {
	if c == nil || c.publisher == nil {
		return errors.New("mq publisher not initialized")
	}

	for _, m := range msgs {
		m.SetContext(ctx)
	}

	return c.publisher.Publish(topic, msgs...)
}

// Subscribe 便捷订阅，调用方负责 Ack/Nack.
func (c *Client) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if c == nil || c.subscriber == nil {
		return nil, errors.New("mq subscriber not initialized")
	}

	return c.subscriber.Subscribe(ctx, topic)
}

// AddConsumer 在 Router 上注册消费者，handler 返回错误时按重试中间件重投.
func (c *Client) AddConsumer(name, topic string, handler message.NoPublishHandlerFunc) {
	c.router.AddNoPublisherHandler(name, topic, c.subscriber, handler)
}

// Start 启动 Router 并等待其进入运行状态；重复调用时在已运行的 Router 上启动新增的消费者.
func (c *Client) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return c.router.RunHandlers(ctx)
	}

	c.started = true

	go func() {
		if err := c.router.Run(ctx); err != nil {
			nlog.Logger().Error().Err(err).Msg("mq router stopped")
		}
	}()

	select {
	case <-c.router.Running():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HealthCheck 检查发布端是否可用.
func (c *Client) HealthCheck(context.Context) error {
	if c == nil || c.publisher == nil {
		return errors.New("mq not initialized")
	}

	return nil
}

// Close 关闭资源，可重复调用.
func (c *Client) Close() error {
	var errs []error

	c.closeOnce.Do(func() {
		if c.router != nil {
			errs = append(errs, c.router.Close())
		}

		if c.publisher != nil {
			errs = append(errs, c.publisher.Close())
		}

		if c.subscriber != nil && any(c.subscriber) != any(c.publisher) {
			errs = append(errs, c.subscriber.Close())
		}

		if c.closeFunc != nil {
			c.closeFunc()
		}
	})

	return errors.Join(errs...)
}
