package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	roomsadapter "github.com/bnema/qrchat-cli/internal/adapters/render/rooms"
	"github.com/bnema/qrchat-cli/internal/application"
	"github.com/bnema/qrchat-cli/internal/domain"
	"github.com/spf13/cobra"
)

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSnapshot(cmd *cobra.Command, app *app, snap domain.Snapshot, opts roomsadapter.RenderOptions) error {
	opts.Now = app.now()
	opts.StaleAfter = 3 * app.cfg.Poll.Interval

	rendered, err := app.roomsRenderer(snap, opts)
	if err != nil {
		return fmt.Errorf("render rooms: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
	return err
}

func writeLine(cmd *cobra.Command, format string, args ...any) error {
	_, err := fmt.Fprintf(cmd.OutOrStdout(), format+"\n", args...)
	return err
}

// runTick runs one reconciliation tick, behind a spinner unless quiet.
func runTick(cmd *cobra.Command, app *app, label string, quiet bool) (application.TickReport, error) {
	if quiet {
		return app.reconciler.Tick(cmd.Context()), nil
	}

	return runTickSpinner(cmd.Context(), cmd.ErrOrStderr(), label, app.sessions.Current(), app.reconciler.Tick)
}

// applyDisplayName sets the display name when one was given on the command line.
func applyDisplayName(ctx context.Context, app *app, name string) error {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	return app.membership.SetDisplayName(ctx, name)
}

func describeSession(session domain.Session) string {
	if !session.Joined() {
		return "lobby"
	}
	return fmt.Sprintf("%s (%s) as %s [%s]", session.RoomName, session.RoomID, session.DisplayName, session.SelfID)
}
