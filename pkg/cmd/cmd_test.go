package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yeisme/projecthub/pkg/configs"
	"github.com/yeisme/projecthub/pkg/internal/model"
	"github.com/yeisme/projecthub/pkg/internal/storage/db"
)

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()

	var out bytes.Buffer

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append(args, "--config", t.TempDir()))

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("projecthub %v: %v\n%s", args, err, out.String())
	}

	return out.String()
}

func TestHashKeyFromArgAndStdin(t *testing.T) {
	for _, tc := range []struct {
		name  string
		stdin string
		args  []string
	}{
		{"argument", "", []string{"auth", "hash-key", "s3cret"}},
		{"stdin", "s3cret\n", []string{"auth", "hash-key"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			hash := strings.TrimSpace(run(t, tc.stdin, tc.args...))

			if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")); err != nil {
				t.Errorf("hash %q does not match key: %v", hash, err)
			}
		})
	}
}

func TestRegistryListings(t *testing.T) {
	cases := []struct {
		args []string
		want string
	}{
		{[]string{"db", "ls"}, "sqlite"},
		{[]string{"kv", "ls"}, "memory"},
		{[]string{"mq", "ls"}, "memory"},
		{[]string{"mq", "topics"}, "ph.share.issued"},
		{[]string{"kv", "keys"}, ""},
	}

	for _, tc := range cases {
		if got := run(t, "", tc.args...); !strings.Contains(got, tc.want) {
			t.Errorf("%v output %q does not mention %q", tc.args, got, tc.want)
		}
	}
}

func TestConfigShowMasksSecrets(t *testing.T) {
	t.Setenv("PROJECTHUB_AUTH_ADMIN_API_KEY", "very-secret-admin")

	got := run(t, "", "config", "show")

	if strings.Contains(got, "very-secret-admin") {
		t.Fatalf("config show leaked the admin key:\n%s", got)
	}

	if !strings.Contains(got, redacted) {
		t.Errorf("config show output has no masked value:\n%s", got)
	}
}

func TestNotifyPendingListsQueuedNotifications(t *testing.T) {
	database := filepath.Join(t.TempDir(), "outbox")
	t.Setenv("PROJECTHUB_DB_DATABASE", database)
	t.Setenv("PROJECTHUB_METRICS_DB_STATS", "false")

	if got := run(t, "", "db", "migrate"); !strings.Contains(got, "migrated") {
		t.Fatalf("db migrate output %q", got)
	}

	client, err := db.New(context.Background(), &configs.DBConfig{Type: configs.SQLite, Database: database, MaxOpenConns: 1})
	if err != nil {
		t.Fatal(err)
	}

	err = client.GetDB().Create(&model.Notification{
		ID:         "n-1",
		Channel:    model.NotificationChannelEmail,
		Recipient:  "client@example.com",
		ProjectID:  "proj-1",
		ShareToken: "sh_01",
		Status:     model.NotificationStatusQueued,
		CreatedAt:  time.Now().UTC(),
	}).Error
	_ = client.Close()

	if err != nil {
		t.Fatal(err)
	}

	got := run(t, "", "notify", "pending", "--limit", "5")

	for _, want := range []string{"RECIPIENT", "client@example.com", "sh_01"} {
		if !strings.Contains(got, want) {
			t.Errorf("notify pending output %q does not mention %q", got, want)
		}
	}
}
