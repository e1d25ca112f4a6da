package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yeisme/projecthub/pkg/configs"
	kv "github.com/yeisme/projecthub/pkg/internal/storage/kv"
)

var (
	kvCmd = &cobra.Command{
		Use:   "kv",
		Short: "Inspect the cache store (share grants, response cache)",
	}

	kvListCmd = &cobra.Command{
		Use:     "ls",
		Short:   "list registered kv drivers",
		Aliases: []string{"list"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Registered kv types:")
			for _, t := range kv.GetRegisteredKVTypes() {
				fmt.Fprintln(cmd.OutOrStdout(), " - "+string(t))
			}
		},
	}

	kvKeysCmd = &cobra.Command{
		Use:   "keys [pattern]",
		Short: "list cached keys, e.g. 'share.v1.*'",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := kv.NewKVClient(cmd.Context(), &configs.GetConfig().KV)
			if err != nil {
				return err
			}
			defer store.Close()

			pattern := ""
			if len(args) == 1 {
				pattern = args[0]
			}

			keys, err := store.Keys(cmd.Context(), pattern)
			if err != nil {
				return err
			}

			for _, k := range keys {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}

			return nil
		},
	}

	kvDeleteCmd = &cobra.Command{
		Use:   "rm <key>...",
		Short: "evict cached keys",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := kv.NewKVClient(cmd.Context(), &configs.GetConfig().KV)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, k := range args {
				if err := store.Delete(cmd.Context(), k); err != nil {
					return fmt.Errorf("delete %s: %w", k, err)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "evicted %d keys\n", len(args))

			return nil
		},
	}
)

// registerKVCommands 注册 KV 相关命令.
func registerKVCommands() {
	rootCmd.AddCommand(kvCmd)
	kvCmd.AddCommand(kvListCmd, kvKeysCmd, kvDeleteCmd)
}
