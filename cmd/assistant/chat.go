package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ramiro/assistant-core/internal/chat"
	"github.com/ramiro/assistant-core/internal/coordinator"
	"github.com/ramiro/assistant-core/internal/domain"
	"github.com/ramiro/assistant-core/internal/execsvc"
	"github.com/ramiro/assistant-core/internal/store"
)

var (
	assistantRef   string
	participantRef string
	conversationID string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive conversation with the assistant",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVar(&assistantRef, "assistant", "", "Assistant reference for a new conversation")
	chatCmd.Flags().StringVar(&participantRef, "participant", "", "Participant reference attached to the conversation")
	chatCmd.Flags().StringVar(&conversationID, "conversation", "", "Existing conversation to continue")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
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

	// Graceful shutdown on Ctrl-C (SIGINT) / SIGTERM.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		<-sigch
		fmt.Println("\nExiting...")
		cancel()
	}()

	conv, err := resolveConversation(ctx, svc, st)
	if err != nil {
		return err
	}
	fmt.Printf("Conversation %s (Ctrl-C to quit)\n", conv.ID)

	// stdin reader goroutine -> lines into channel
	scanner := bufio.NewScanner(os.Stdin)
	inputCh := make(chan string)
	go func() {
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

	you := color.New(color.FgBlue, color.Bold).SprintFunc()
	reply := color.New(color.FgYellow, color.Bold).SprintFunc()

	for {
		fmt.Printf("%s: ", you("You"))
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-inputCh:
			if !ok {
				return scanner.Err()
			}
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		msgs, err := svc.SendMessage(ctx, conv.ID, domain.RoleUser, line)
		if err != nil {
			printSendError(err)
			continue
		}
		for _, m := range msgs {
			if m.Role == domain.RoleAssistant && m.Content != "" {
				fmt.Printf("%s: %s\n", reply("Assistant"), m.Content)
			}
		}
	}
}

func resolveConversation(ctx context.Context, svc *chat.Service, st *store.Store) (*domain.Conversation, error) {
	if conversationID != "" {
		return st.GetConversation(ctx, conversationID)
	}
	if assistantRef == "" {
		return nil, fmt.Errorf("either --conversation or --assistant is required")
	}
	return svc.StartConversation(ctx, assistantRef, participantRef)
}

// printSendError keeps the console usable when a run fails: the conversation
// survives, only this turn is lost.
func printSendError(err error) {
	switch {
	case errors.Is(err, coordinator.ErrRunTimeout):
		fmt.Fprintln(os.Stderr, "The assistant is taking too long; please try again.")
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
}
