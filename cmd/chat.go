package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"claudehub/internal/assistant"
	"claudehub/internal/chat"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var chatOpts struct {
	server string
	token  string
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant of a running server",
	Long: `Opens an interactive conversation against a running server's /api/claude
endpoint. Type /clear to start over and /quit to leave.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatOpts.server, "server", "http://localhost:8080", "base URL of the server")
	chatCmd.Flags().StringVar(&chatOpts.token, "token", "", "bearer token sent with each request")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	client := chat.NewClient(chatOpts.server, chatOpts.token, cfg.GatewayTimeout+5*time.Second)
	return runREPL(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), assistant.NewSession(client))
}

func runREPL(ctx context.Context, in io.Reader, out io.Writer, session *assistant.Session) error {
	fmt.Fprintln(out, "Ask about your dashboard. /clear starts over, /quit exits.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "/quit", "/exit":
			return nil
		case "/clear":
			session.Clear()
			fmt.Fprintln(out, "Conversation cleared.")
			continue
		}

		resp, err := session.Submit(ctx, line)
		switch {
		case errors.Is(err, assistant.ErrEmptyMessage):
			continue
		case err != nil:
			logrus.Debugf("Chat request failed: %v", err)
		}

		fmt.Fprintln(out, resp.Text)
		if resp.Demo() {
			fmt.Fprintln(out, "(demo mode)")
		}
	}
}
