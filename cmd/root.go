package cmd

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configFile string
	server     string
	logLevel   string
	logPretty  bool
}

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var opts rootOptions
	app := &app{}

	rootCmd := &cobra.Command{
		Use:           "qc",
		Short:         "QR Chat CLI (qc): join rooms and chat from the terminal",
		Long:          "qc (QR Chat CLI) talks to a QR Chat room server: list rooms, create or join one, send messages and follow the room with an interactive screen. Membership is kept in sync with the server by polling.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[annotationSkipWire] == "true" {
				return nil
			}

			wired, err := wireApp(cmd, opts)
			if err != nil {
				return err
			}
			*app = *wired
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "Config file (default: ~/.qrchat/config.toml)")
	flags.StringVar(&opts.server, "server", "", "Room server base URL")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	flags.BoolVar(&opts.logPretty, "log-pretty", false, "Human readable logs on stderr")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRoomsCmd(app),
		newStatusCmd(app),
		newJoinCmd(app),
		newCreateCmd(app),
		newLeaveCmd(app),
		newSendCmd(app),
		newCloseCmd(app),
		newKickCmd(app),
		newSyncCmd(app),
		newChatCmd(app),
	)

	return rootCmd
}
