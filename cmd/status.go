package cmd

import (
	roomsadapter "github.com/bnema/qrchat-cli/internal/adapters/render/rooms"
	"github.com/bnema/qrchat-cli/internal/domain"
	"github.com/spf13/cobra"
)

type statusView struct {
	State   domain.MembershipState
	Session domain.Session
}

func newStatusCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session := app.sessions.Current()
			if asJSON {
				return writeJSON(cmd, statusView{State: session.State(), Session: session})
			}

			return writeSnapshot(cmd, app, domain.Snapshot{Session: session}, roomsadapter.RenderOptions{SessionOnly: true})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}
