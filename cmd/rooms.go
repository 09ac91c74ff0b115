package cmd

import (
	"fmt"

	roomsadapter "github.com/bnema/qrchat-cli/internal/adapters/render/rooms"
	"github.com/bnema/qrchat-cli/internal/domain"
	"github.com/spf13/cobra"
)

type syncView struct {
	Snapshot domain.Snapshot
	Evicted  bool
	Errors   []string
}

func newRoomsCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List rooms on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			report, err := runTick(cmd, app, "Fetching rooms...", asJSON)
			if err != nil {
				return err
			}
			if report.RoomsErr != nil {
				return fmt.Errorf("list rooms: %w", report.RoomsErr)
			}

			snap := app.state.Snapshot()
			if asJSON {
				return writeJSON(cmd, snap.Rooms)
			}

			return writeSnapshot(cmd, app, snap, roomsadapter.RenderOptions{RoomListOnly: true})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newSyncCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one reconciliation pass and print the result",
		Long:  "sync fetches rooms, and the messages and members of the joined room, once. If the server no longer lists you in your room, the stored session is cleared.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			previous := app.sessions.Current()

			report, err := runTick(cmd, app, "Syncing...", asJSON)
			if err != nil {
				return err
			}

			var failures []string
			for _, failure := range []error{report.RoomsErr, report.MessagesErr, report.PresenceErr} {
				if failure != nil {
					failures = append(failures, failure.Error())
				}
			}

			snap := app.state.Snapshot()
			if asJSON {
				return writeJSON(cmd, syncView{Snapshot: snap, Evicted: report.Evicted, Errors: failures})
			}

			for _, failure := range failures {
				if _, err := fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", failure); err != nil {
					return err
				}
			}

			if err := writeSnapshot(cmd, app, snap, roomsadapter.RenderOptions{}); err != nil {
				return err
			}
			if report.Evicted {
				return writeLine(cmd, "you are no longer a member of %s (%s)", previous.RoomName, previous.RoomID)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
