package configs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yeisme/projecthub/pkg/configs"
	"github.com/yeisme/projecthub/pkg/rule"
)

func TestDefaultsAreValid(t *testing.T) {
	cfg := configs.Defaults()

	if err := rule.ValidateStruct(cfg); err != nil {
		t.Fatalf("defaults should validate, got %v", err)
	}

	if cfg.Share.DefaultTTL != configs.DefaultShareTTL {
		t.Errorf("share.default_ttl = %v, want %v", cfg.Share.DefaultTTL, configs.DefaultShareTTL)
	}

	if cfg.S3.Driver != configs.S3DriverMemory {
		t.Errorf("s3.driver = %q, want memory", cfg.S3.Driver)
	}

	if cfg.Auth.AdminAPIKey != "" || cfg.Auth.PublicAPIKey != "" {
		t.Error("api keys must not have non-empty defaults")
	}
}

func TestInitConfigFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	body := []byte(`
server:
  port: 9001
share:
  default_ttl: 48h
  public_base_url: https://portal.example.com
`)

	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), body, 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PROJECTHUB_AUTH_PUBLIC_API_KEY", "pub-key")
	t.Setenv("PROJECTHUB_UPLOAD_MAX_BYTES", "1024")

	if err := configs.InitConfig(dir); err != nil {
		t.Fatalf("InitConfig: %v", err)
	}

	cfg := configs.GetConfig()
	if cfg.Server.Port != 9001 {
		t.Errorf("server.port = %d, want 9001", cfg.Server.Port)
	}

	if cfg.Share.DefaultTTL != 48*time.Hour {
		t.Errorf("share.default_ttl = %v, want 48h", cfg.Share.DefaultTTL)
	}

	if cfg.Auth.PublicAPIKey != "pub-key" {
		t.Errorf("public api key from env = %q", cfg.Auth.PublicAPIKey)
	}

	if cfg.Upload.MaxBytes != 1024 {
		t.Errorf("upload.max_bytes = %d, want 1024", cfg.Upload.MaxBytes)
	}
}

func TestInitConfigWithoutFileUsesDefaults(t *testing.T) {
	if err := configs.InitConfig(t.TempDir()); err != nil {
		t.Fatalf("missing config file should not fail: %v", err)
	}

	if got := configs.GetConfig().Server.Port; got != configs.DefaultPort {
		t.Errorf("server.port = %d, want %d", got, configs.DefaultPort)
	}
}

func TestObjectURL(t *testing.T) {
	c := configs.S3Config{BucketName: "files", Region: "eu-central-1"}

	got := c.ObjectURL("projects/p1/a b.pdf")
	want := "https://files.s3.eu-central-1.amazonaws.com/projects/p1/a%20b.pdf"

	if got != want {
		t.Errorf("ObjectURL = %q, want %q", got, want)
	}

	c.PublicBaseURL = "https://cdn.example.com/"
	if got := c.ObjectURL("k.txt"); got != "https://cdn.example.com/k.txt" {
		t.Errorf("ObjectURL with public base = %q", got)
	}
}
