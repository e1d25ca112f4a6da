package notify_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/projecthub/pkg/configs"
	"github.com/yeisme/projecthub/pkg/internal/model"
	"github.com/yeisme/projecthub/pkg/internal/notify"
	"github.com/yeisme/projecthub/pkg/internal/storage/db"
	"github.com/yeisme/projecthub/pkg/internal/storage/mq"
	"github.com/yeisme/projecthub/pkg/queue"
)

func TestShareIssuedWritesOutboxOnce(t *testing.T) {
	cfg := configs.Defaults()
	cfg.DB.Type = configs.SQLite
	cfg.DB.Database = filepath.Join(t.TempDir(), "notify")
	cfg.DB.MaxOpenConns = 1
	cfg.Metrics.DBStats = false
	configs.SetConfig(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbc, err := db.New(ctx, &cfg.DB)
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbc.Close() })
	require.NoError(t, dbc.Migrate(ctx, model.All()...))

	mqc, err := mq.New(ctx, &cfg.MQ)
	require.NoError(t, err)
	t.Cleanup(func() { _ = mqc.Close() })

	outbox := notify.NewOutbox(dbc.GetDB())
	outbox.Register(mqc)
	require.NoError(t, mqc.Start(ctx))

	payload := queue.ShareIssuedPayload{
		ProjectID:      "proj-9",
		Token:          "sh_01j0000000000000000000000",
		ShareLink:      "https://portal.example.com/share/sh_01j0000000000000000000000",
		ExpiresAt:      time.Now().Add(time.Hour),
		NotifyEmail:    "client@example.com",
		NotifyLanguage: "hu",
	}

	require.NoError(t, queue.PublishShareIssued(ctx, mqc, payload))
	require.NoError(t, queue.PublishShareIssued(ctx, mqc, payload))

	silent := payload
	silent.Token = "sh_01j0000000000000000000001"
	silent.NotifyEmail = ""
	require.NoError(t, queue.PublishShareIssued(ctx, mqc, silent))

	require.Eventually(t, func() bool {
		pending, err := outbox.Pending(context.Background(), 10)

		return err == nil && len(pending) == 1
	}, 3*time.Second, 20*time.Millisecond)

	// 等待其余消息处理完，确认没有重复记录
	time.Sleep(100 * time.Millisecond)

	pending, err := outbox.Pending(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "client@example.com", pending[0].Recipient)
	assert.Equal(t, "hu", pending[0].Language)
	assert.Equal(t, model.NotificationChannelEmail, pending[0].Channel)
}
