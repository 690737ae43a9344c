package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	ragclient "PDFChat/backend/go/pkg/http"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	queryFile  string
	newSession bool
)

var ragCmd = &cobra.Command{
	Use:   "rag",
	Short: "Interact with the RAG service",
}

var uploadCmd = &cobra.Command{
	Use:   "upload [pdf-path]",
	Short: "Upload a PDF to the RAG service and make it the current document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(ctx context.Context, c *ragclient.Client) error {
			return uploadFile(ctx, c, args[0])
		})
	},
}

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about the current document",
	Long:  `Ask a question about the current document. With --file the PDF is uploaded first, so a single command can load a document and answer.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(ctx context.Context, c *ragclient.Client) error {
			if queryFile != "" {
				if err := uploadFile(ctx, c, queryFile); err != nil {
					return err
				}
			}
			return ask(ctx, c, args[0])
		})
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the questions and answers of the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(ctx context.Context, c *ragclient.Client) error {
			h, err := c.History(ctx)
			if err != nil {
				return err
			}
			if h.Collection == "" {
				color.Yellow("No document loaded in this session.")
			} else {
				color.Cyan("Document: %s", h.Collection)
			}
			for _, e := range h.History {
				color.Green("\nQ: %s", e.Question)
				fmt.Printf("A: %s\n", e.Answer)
			}
			return nil
		})
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat [pdf-path]",
	Short: "Upload a PDF and start an interactive question loop",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withClient(cmd.Context(), func(ctx context.Context, c *ragclient.Client) error {
			if len(args) == 1 {
				if err := uploadFile(ctx, c, args[0]); err != nil {
					return err
				}
			}
			return chatLoop(ctx, c)
		})
	},
}

func init() {
	rootCmd.AddCommand(ragCmd)
	ragCmd.AddCommand(uploadCmd)
	ragCmd.AddCommand(queryCmd)
	ragCmd.AddCommand(historyCmd)
	ragCmd.AddCommand(chatCmd)

	queryCmd.Flags().StringVar(&queryFile, "file", "", "PDF to upload before asking")
	ragCmd.PersistentFlags().BoolVar(&newSession, "new-session", false, "start a fresh session instead of resuming the saved one")
}

// withClient runs fn with a session-bound client and saves the session afterwards.
func withClient(ctx context.Context, fn func(context.Context, *ragclient.Client) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	c, save, err := newClient()
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if newSession {
		if _, err := c.CreateSession(ctx); err != nil {
			return err
		}
	}
	runErr := fn(ctx, c)
	if err := save(); err != nil {
		color.Yellow("Warning: could not save session: %v", err)
	}
	return runErr
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// spin animates a spinner until the returned stop func is called.
func spin(description string) func() {
	bar := getSpinner(description)
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()
	return func() {
		close(done)
		_ = bar.Finish()
		fmt.Println()
	}
}

func uploadFile(ctx context.Context, c *ragclient.Client, path string) error {
	stop := spin(" Indexing " + path)
	res, err := c.Upload(ctx, path)
	stop()
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	color.Green("✓ Document %q %s (%d chunks)", res.Collection, res.Status, res.ChunkCount)
	return nil
}

func ask(ctx context.Context, c *ragclient.Client, question string) error {
	entry, err := c.Query(ctx, question)
	if err != nil {
		return err
	}
	fmt.Println(entry.Answer)
	return nil
}

func chatLoop(ctx context.Context, c *ragclient.Client) error {
	color.Cyan("\nAsk questions about the document (type 'exit' to quit)")

	scanner := bufio.NewScanner(os.Stdin)
	userPrompt := color.New(color.FgGreen).PrintfFunc()
	assistantPrompt := color.New(color.FgCyan).PrintfFunc()

	for {
		userPrompt("\nYou: ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(question, "exit") {
			break
		}
		if question == "" {
			continue
		}

		entry, err := c.Query(ctx, question)
		if err != nil {
			color.Red("Error: %v", err)
			continue
		}
		assistantPrompt("Assistant: ")
		fmt.Println(entry.Answer)
	}
	return scanner.Err()
}
