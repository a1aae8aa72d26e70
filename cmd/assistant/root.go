package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ramiro/assistant-core/internal/config"
	"github.com/ramiro/assistant-core/internal/logging"
)

var (
	configPath string
	verbose    bool

	cfg config.Config
	log zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Chat with a tool-using assistant from the terminal",
	Long: `Console front end for the assistant orchestration core.

It appends your message to the conversation's remote thread, runs the
assistant (executing any tool calls the run requests), and prints the
assistant's reply once the run completes.

Quick start:
  assistant chat --assistant <assistant-ref>     # start a new conversation
  assistant chat --conversation <id>             # continue an existing one
  assistant sync <conversation-id>               # mirror the remote transcript`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		if verbose {
			cfg.Log.Level = "debug"
		}
		log = logging.New(logging.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}
