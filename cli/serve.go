package main

import (
	"github.com/spf13/cobra"

	linerag "github.com/hsmtkk/turbo-octo-pancake"
	"github.com/hsmtkk/turbo-octo-pancake/callback"
	"github.com/hsmtkk/turbo-octo-pancake/coldstart"
)

func newServeCmd(_ *globalFlags) *cobra.Command {
	var (
		addr      string
		replyMode string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook locally",
		Long: `Run the webhook locally with the same cold start as the query function.
SECRET_ARN and VECTOR_BUCKET are read from the environment or .env.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := coldstart.Init(cmd.Context())
			if err != nil {
				return err
			}
			if replyMode != "" {
				env.Config.ReplyMode = replyMode
			}
			handler, err := callback.NewApp(env.Config, env.Secrets, &env.AWS)
			if err != nil {
				return err
			}
			linerag.Logger.Info("Listening", "addr", addr, "reply_mode", env.Config.ReplyMode)
			return callback.NewRouter(handler).Run(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&replyMode, "reply-mode", "", "override REPLY_MODE: echo, completion or rag")
	return cmd
}
