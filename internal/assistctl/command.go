package assistctl

import (
	"fmt"
	"os"
	"time"

	"ai-topic-assist-be/internal/pkg/logger"
	"ai-topic-assist-be/internal/pkg/serverutils"
	"ai-topic-assist-be/pkg/assistclient"
	"ai-topic-assist-be/pkg/topicassist"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	server string
	token  string
}

func Execute(version string) error {
	return NewRootCmd(version).Execute()
}

func NewRootCmd(version string) *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "assistctl",
		Short:         "Terminal client for the topic assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	cmd.PersistentFlags().StringVar(&opts.server, "server", envOr("ASSIST_SERVER", "http://localhost:3000"), "API base URL")
	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("ASSIST_TOKEN"), "bearer token (defaults to $ASSIST_TOKEN)")

	cmd.AddCommand(newChatCmd(opts), newTokenCmd())
	return cmd
}

func newChatCmd(opts *rootOptions) *cobra.Command {
	var (
		streamId int64
		topic    string
		logPath  string
		settings = topicassist.DefaultSettings()
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Send messages to a stream with live topic suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.token == "" {
				return fmt.Errorf("a token is required (--token or $ASSIST_TOKEN)")
			}
			diag := logger.NewIsolatedLogger(logPath)
			defer diag.Sync()

			client := assistclient.New(opts.server, opts.token)
			session := NewChatSession(client, settings, streamId, topic, cmd.OutOrStdout(), diag)
			return session.Run(cmd.Context(), cmd.InOrStdin())
		},
	}
	cmd.Flags().Int64Var(&streamId, "stream", 1, "stream id to send to")
	cmd.Flags().StringVar(&topic, "topic", "", "initial topic")
	cmd.Flags().StringVar(&logPath, "log", "logs/assistctl.log", "diagnostic log file")
	cmd.Flags().IntVar(&settings.BatchThreshold, "batch", settings.BatchThreshold, "sends per suggestion request")
	cmd.Flags().DurationVar(&settings.CooldownWindow, "cooldown", settings.CooldownWindow, "minimum time between suggestion requests")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		userId string
		secret string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a development bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("a signing secret is required (--secret or $JWT_SECRET)")
			}
			id := uuid.New()
			if userId != "" {
				parsed, err := uuid.Parse(userId)
				if err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
				id = parsed
			}

			token, err := serverutils.SignToken(id, secret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&userId, "user", "", "user id (random when empty)")
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "HMAC secret shared with the server")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
