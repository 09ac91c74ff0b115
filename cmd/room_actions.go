package cmd

import (
	"fmt"
	"strings"

	"github.com/bnema/qrchat-cli/internal/domain"
	"github.com/spf13/cobra"
)

func newSendCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send TEXT...",
		Short: "Send a message to the joined room",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.membership.SendMessage(cmd.Context(), strings.Join(args, " ")); err != nil {
				return err
			}

			return writeLine(cmd, "sent to %s", app.sessions.Current().RoomName)
		},
	}
}

func newCloseCmd(app *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "close ROOM_ID",
		Short: "Close a room for everyone",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			roomID := domain.RoomID(args[0])
			if !yes {
				return fmt.Errorf("close room %s: %w (pass --yes to close it for everyone)", roomID, domain.NewValidationError("confirmation"))
			}

			previous := app.sessions.Current()
			if err := app.membership.CloseRoom(cmd.Context(), roomID); err != nil {
				return err
			}

			if err := writeLine(cmd, "closed %s", roomID); err != nil {
				return err
			}
			if previous.RoomID == roomID && !app.sessions.Current().Joined() {
				return writeLine(cmd, "left %s (%s)", previous.RoomName, previous.RoomID)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm closing the room")

	return cmd
}

func newKickCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kick USER_ID",
		Short: "Remove a member from the joined room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			previous := app.sessions.Current()
			userID := domain.UserID(args[0])

			if err := app.membership.RemoveUser(cmd.Context(), userID); err != nil {
				return err
			}

			if err := writeLine(cmd, "removed %s from %s", userID, previous.RoomName); err != nil {
				return err
			}
			if !app.sessions.Current().Joined() {
				return writeLine(cmd, "you are no longer a member of %s (%s)", previous.RoomName, previous.RoomID)
			}

			return nil
		},
	}
}
