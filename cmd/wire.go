package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/qrchat-cli/internal/adapters/gateway/rest"
	chatadapter "github.com/bnema/qrchat-cli/internal/adapters/render/chat"
	roomsadapter "github.com/bnema/qrchat-cli/internal/adapters/render/rooms"
	tomlrepo "github.com/bnema/qrchat-cli/internal/adapters/repo/toml"
	"github.com/bnema/qrchat-cli/internal/application"
	"github.com/bnema/qrchat-cli/internal/config"
	"github.com/bnema/qrchat-cli/internal/domain"
	applog "github.com/bnema/qrchat-cli/internal/log"
	"github.com/bnema/qrchat-cli/internal/ports"
	"github.com/bnema/qrchat-cli/internal/version"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const annotationSkipWire = "qc.skip-wire"

type app struct {
	cfg        config.Config
	sessions   *application.Sessions
	state      *application.State
	membership *application.MembershipController
	reconciler *application.Reconciler

	roomsRenderer func(domain.Snapshot, roomsadapter.RenderOptions) (string, error)
	runChat       func(context.Context, chatadapter.Actions, chatadapter.Source, chatadapter.Options) error
	now           func() time.Time
}

func wireApp(cmd *cobra.Command, opts rootOptions) (*app, error) {
	v := viper.New()
	if err := bindRootFlags(cmd, v); err != nil {
		return nil, err
	}

	cfg, err := config.Load(v, opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	applog.Init(applog.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
		Output: cmd.ErrOrStderr(),
	})
	ctx := applog.WithLogger(cmd.Context(), applog.Component("qc"))
	cmd.SetContext(ctx)

	store, err := tomlrepo.NewSessionRepository(v)
	if err != nil {
		return nil, fmt.Errorf("wire session store: %w", err)
	}

	gateway, err := rest.NewClient(rest.Options{
		BaseURL:        cfg.Server.BaseURL,
		RequestTimeout: cfg.Server.RequestTimeout,
		UserAgent:      "qc/" + version.Version,
	})
	if err != nil {
		return nil, fmt.Errorf("wire room gateway: %w", err)
	}

	sessions := application.NewSessions(store)
	if _, err := sessions.Restore(ctx); err != nil {
		return nil, err
	}

	state := application.NewState(ports.SystemClock{})
	membership := application.NewMembershipController(gateway, sessions, state)

	return &app{
		cfg:        cfg,
		sessions:   sessions,
		state:      state,
		membership: membership,
		reconciler: application.NewReconciler(gateway, sessions, state, membership, application.ReconcilerOptions{
			Interval:    cfg.Poll.Interval,
			TickTimeout: cfg.Poll.TickTimeout,
		}),
		roomsRenderer: roomsadapter.Render,
		runChat:       chatadapter.Run,
		now:           time.Now,
	}, nil
}

// bindRootFlags lets explicit flags win over the config file and QC_* env.
func bindRootFlags(cmd *cobra.Command, v *viper.Viper) error {
	bindings := map[string]string{
		config.KeyBaseURL:   "server",
		config.KeyLogLevel:  "log-level",
		config.KeyLogPretty: "log-pretty",
	}

	flags := cmd.Root().PersistentFlags()
	for key, name := range bindings {
		flag := flags.Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind --%s: %w", name, err)
		}
	}

	return nil
}
