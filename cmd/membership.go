package cmd

import (
	"strings"

	"github.com/bnema/qrchat-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newJoinCmd(app *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "join ROOM_ID",
		Short: "Join an existing room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := applyDisplayName(ctx, app, name); err != nil {
				return err
			}

			if err := app.membership.Join(ctx, domain.RoomID(args[0]), ""); err != nil {
				return err
			}

			return writeLine(cmd, "joined %s", describeSession(app.sessions.Current()))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name to join with")

	return cmd
}

func newCreateCmd(app *app) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create ROOM_NAME",
		Short: "Create a room and join it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := applyDisplayName(ctx, app, name); err != nil {
				return err
			}

			if err := app.membership.CreateAndJoin(ctx, strings.Join(args, " ")); err != nil {
				return err
			}

			return writeLine(cmd, "joined %s", describeSession(app.sessions.Current()))
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name to join with")

	return cmd
}

func newLeaveCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "leave",
		Short: "Leave the joined room",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := app.sessions.Current()
			if !session.Joined() {
				return writeLine(cmd, "not in a room")
			}

			app.membership.Leave(cmd.Context())
			return writeLine(cmd, "left %s (%s)", session.RoomName, session.RoomID)
		},
	}
}
