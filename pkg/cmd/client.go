package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/yeisme/projecthub/pkg/client"
	"github.com/yeisme/projecthub/pkg/configs"
	"github.com/yeisme/projecthub/pkg/log"
)

var serverURL string

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "projecthub base url for client commands (default http://127.0.0.1:{server.port})")
}

// newClient 按本地配置构造 SDK 客户端，密钥与存储位置取自配置文件与环境变量.
func newClient() (*client.Client, error) {
	cfg := configs.GetConfig()

	base := serverURL
	if base == "" {
		base = fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	}

	endpoint := ""
	if cfg.S3.Driver == configs.S3DriverMinio && cfg.S3.Endpoint != "" {
		scheme := "http"
		if cfg.S3.UseSSL {
			scheme = "https"
		}

		endpoint = scheme + "://" + strings.TrimPrefix(strings.TrimPrefix(cfg.S3.Endpoint, "http://"), "https://")
	}

	l := log.Component("cli")

	return client.New(client.Config{
		BaseURL:           base,
		AdminAPIKey:       cfg.Auth.AdminAPIKey,
		PublicAPIKey:      cfg.Auth.PublicAPIKey,
		Bucket:            cfg.S3.BucketName,
		Region:            cfg.S3.Region,
		Endpoint:          endpoint,
		UploadConcurrency: cfg.Upload.Concurrency,
		Logger:            &l,
	})
}

// printJSON 以缩进 JSON 输出结果.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
