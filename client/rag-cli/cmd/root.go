package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	serverURL   string
	sessionFile string
)

var rootCmd = &cobra.Command{
	Use:   "rag-cli",
	Short: "A CLI client to chat with PDF documents through the RAG service",
	Long:  `A command-line interface for uploading PDFs to the RAG service and asking questions about them.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	defaultServer := os.Getenv("RAG_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "RAG service base URL (env RAG_SERVER)")
	rootCmd.PersistentFlags().StringVar(&sessionFile, "session-file", "", "file storing the session ID (default is <user config dir>/rag-cli/session)")
}
