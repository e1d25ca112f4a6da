package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/projecthub/pkg/configs"
)

const redacted = "******"

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "print the config file in use",
		Run: func(cmd *cobra.Command, args []string) {
			used := ""
			if v := configs.GetViper(); v != nil {
				used = v.ConfigFileUsed()
			}

			if used == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "no config file used (defaults and PROJECTHUB_* env only)")

				return
			}

			fmt.Fprintln(cmd.OutOrStdout(), used)
		},
	}

	configShowCmd = &cobra.Command{
		Use:     "show",
		Short:   "print the merged config as JSON with secrets masked",
		Aliases: []string{"debug"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				if v := configs.GetViper(); v != nil {
					v.Debug()
				}
			}

			b, err := json.MarshalIndent(masked(*configs.GetConfig()), "", "  ")
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(b))

			return nil
		},
	}
)

// masked 返回隐藏密钥与密码后的配置副本.
func masked(c configs.AppConfig) configs.AppConfig {
	for _, s := range []*string{
		&c.Auth.AdminAPIKey, &c.Auth.AdminAPIKeyHash, &c.Auth.PublicAPIKey,
		&c.DB.Password, &c.DB.DSN,
		&c.S3.SecretAccessKey,
		&c.KV.Redis.Password, &c.KV.NATS.Password,
		&c.MQ.Common.Password, &c.MQ.Redis.Password,
	} {
		if *s != "" {
			*s = redacted
		}
	}

	return c
}

// registerConfigsCommands 注册 config 子命令.
func registerConfigsCommands() {
	configCmd.AddCommand(configPathCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}
