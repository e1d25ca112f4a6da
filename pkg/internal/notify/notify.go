// Package notify 消费分享签发事件，为带通知邮箱的授权写入发件箱.
// 实际投递由外部程序读取 queued 状态的记录完成.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeisme/projecthub/pkg/internal/model"
	"github.com/yeisme/projecthub/pkg/internal/storage/mq"
	nlog "github.com/yeisme/projecthub/pkg/log"
	"github.com/yeisme/projecthub/pkg/queue"
)

// ConsumerName 在 MQ Router 上的处理器名称.
const ConsumerName = "notify.share_issued"

// Outbox 通知发件箱.
type Outbox struct {
	db *gorm.DB
}

// NewOutbox 创建发件箱.
func NewOutbox(db *gorm.DB) *Outbox {
	return &Outbox{db: db}
}

// Register 在 MQ Router 上注册分享签发事件的消费者.
func (o *Outbox) Register(c *mq.Client) {
	c.AddConsumer(ConsumerName, queue.TopicShareIssued, o.HandleShareIssued)
}

// HandleShareIssued 写入一条 queued 通知；同一令牌重复投递时只保留一条.
// 无法解析的消息直接丢弃，避免无限重试.
func (o *Outbox) HandleShareIssued(msg *message.Message) error {
	l := nlog.Component("notify")

	evt, err := queue.ParseShareIssued(msg)
	if err != nil {
		l.Warn().Err(err).Str("uuid", msg.UUID).Msg("drop malformed share.issued event")

		return nil
	}

	p := evt.Payload
	if p.NotifyEmail == "" {
		return nil
	}

	if p.Token == "" {
		l.Warn().Str("uuid", msg.UUID).Msg("drop share.issued event without token")

		return nil
	}

	n := model.Notification{
		ID:         uuid.NewString(),
		Channel:    model.NotificationChannelEmail,
		Recipient:  p.NotifyEmail,
		Language:   p.NotifyLanguage,
		ProjectID:  p.ProjectID,
		ShareToken: p.Token,
		Status:     model.NotificationStatusQueued,
		CreatedAt:  time.Now().UTC(),
	}

	res := o.db.WithContext(msg.Context()).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "share_token"}}, DoNothing: true}).
		Create(&n)
	if res.Error != nil {
		return fmt.Errorf("write notification outbox: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		l.Debug().Str("token", p.Token).Msg("notification already queued")

		return nil
	}

	l.Info().Str("token", p.Token).Str("project_id", p.ProjectID).Msg("notification queued")

	return nil
}

// Pending 返回排队中的通知，按创建时间升序，供 projecthub notify pending 与外部投递程序使用.
func (o *Outbox) Pending(ctx context.Context, limit int) ([]model.Notification, error) {
	if o.db == nil {
		return nil, errors.New("outbox database not initialized")
	}

	var out []model.Notification
	err := o.db.WithContext(ctx).Where("status = ?", model.NotificationStatusQueued).
		Order("created_at").Limit(limit).
		Find(&out).Error

	return out, err
}
