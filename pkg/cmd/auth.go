package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yeisme/projecthub/pkg/middleware"
)

var (
	authCmd = &cobra.Command{
		Use:   "auth",
		Short: "API key helpers",
	}

	// hash-key 输出 bcrypt 哈希，写入 auth.admin_api_key_hash 后配置中无需保存明文.
	hashKeyCmd = &cobra.Command{
		Use:   "hash-key [key]",
		Short: "print the bcrypt hash of an admin api key (reads stdin when no argument)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var key string
			if len(args) == 1 {
				key = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read key: %w", err)
				}

				key = strings.TrimSpace(line)
			}

			if key == "" {
				return errors.New("empty key")
			}

			hash, err := middleware.HashAPIKey(key)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), hash)

			return nil
		},
	}
)

// registerAuthCommands 注册认证相关命令.
func registerAuthCommands() {
	authCmd.AddCommand(hashKeyCmd)
	rootCmd.AddCommand(authCmd)
}
