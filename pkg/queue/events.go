package queue

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
)

// Publisher 发布消息的最小接口，由 storage/mq.Client 实现.
type Publisher interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

func publish[T any](ctx context.Context, pub Publisher, topic string, payload T, opts ...HeaderOption) error {
	msg, err := NewWatermillMessage(topic, payload, opts...)
	if err != nil {
		return err
	}

	return pub.Publish(ctx, topic, msg)
}

// PublishFileUploaded 发布 ph.file.uploaded 事件.
func PublishFileUploaded(ctx context.Context, pub Publisher, p FileUploadedPayload, opts ...HeaderOption) error {
	return publish(ctx, pub, TopicFileUploaded, p, opts...)
}

// PublishFileDeleted 发布 ph.file.deleted 事件.
func PublishFileDeleted(ctx context.Context, pub Publisher, p FileDeletedPayload, opts ...HeaderOption) error {
	return publish(ctx, pub, TopicFileDeleted, p, opts...)
}

// PublishFileRestored 发布 ph.file.restored 事件.
func PublishFileRestored(ctx context.Context, pub Publisher, p FileRestoredPayload, opts ...HeaderOption) error {
	return publish(ctx, pub, TopicFileRestored, p, opts...)
}

// PublishFilePurged 发布 ph.file.purged 事件.
func PublishFilePurged(ctx context.Context, pub Publisher, p FilePurgedPayload, opts ...HeaderOption) error {
	return publish(ctx, pub, TopicFilePurged, p, opts...)
}

// PublishShareIssued 发布 ph.share.issued 事件，通知消费者据此写入通知发件箱.
func PublishShareIssued(ctx context.Context, pub Publisher, p ShareIssuedPayload, opts ...HeaderOption) error {
	return publish(ctx, pub, TopicShareIssued, p, opts...)
}

// PublishDocumentStatusChanged 发布 ph.document.status_changed 事件.
func PublishDocumentStatusChanged(ctx context.Context, pub Publisher, p DocumentStatusChangedPayload, opts ...HeaderOption) error {
	return publish(ctx, pub, TopicDocumentStatusChanged, p, opts...)
}

// ParseShareIssued 将 Watermill 消息解析为强类型 Envelope.
func ParseShareIssued(msg *message.Message) (Message[ShareIssuedPayload], error) {
	return ParseWatermillMessage[ShareIssuedPayload](msg)
}

// ParseFileUploaded 将 Watermill 消息解析为强类型 Envelope.
func ParseFileUploaded(msg *message.Message) (Message[FileUploadedPayload], error) {
	return ParseWatermillMessage[FileUploadedPayload](msg)
}
