package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ramiro/assistant-core/internal/chat"
	"github.com/ramiro/assistant-core/internal/execsvc"
	"github.com/ramiro/assistant-core/internal/store"
)

var syncCmd = &cobra.Command{
	Use:   "sync <conversation-id>",
	Short: "Mirror the remote transcript into local records",
	Long: `Fetches the conversation's remote transcript and creates local rows for any
messages not yet mirrored. Running it again with no new remote activity
creates nothing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Service.BaseURL == "" {
			return fmt.Errorf("service base URL is not configured; set service.base_url or ASSISTANT_BASE_URL")
		}

		st, err := store.Open(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		client := execsvc.NewHTTPClient(cfg.Service.BaseURL, cfg.Service.APIKey, cfg.Service.RequestTimeout.Std())
		svc := chat.New(client, st, cfg, log)

		msgs, err := svc.SyncConversation(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("synced %d new messages\n", len(msgs))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
