package cmd

import (
	"context"

	chatadapter "github.com/bnema/qrchat-cli/internal/adapters/render/chat"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newChatCmd(app *app) *cobra.Command {
	var name string
	var inline bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive chat screen",
		Long:  "chat keeps rooms, messages and members in sync with the server while you type. Plain text is sent to the joined room; /name, /join, /create, /leave, /kick, /close and /quit control membership.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if err := applyDisplayName(ctx, app, name); err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return app.reconciler.Run(ctx)
			})
			g.Go(func() error {
				defer cancel()
				return app.runChat(ctx, app.membership, app.state, chatadapter.Options{
					Input:     cmd.InOrStdin(),
					Output:    cmd.OutOrStdout(),
					AltScreen: !inline,
				})
			})

			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name to use")
	cmd.Flags().BoolVar(&inline, "inline", false, "Draw inline instead of using the alternate screen")

	return cmd
}
