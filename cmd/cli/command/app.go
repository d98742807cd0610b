package command

import (
	"fmt"

	"go.uber.org/zap"

	"bookhub/cmd/cli/authentication"
	"bookhub/cmd/cli/command/client"
	"bookhub/internal/books"
	"bookhub/internal/config"
	"bookhub/internal/logging"
	"bookhub/internal/session"
)

// app bundles the wired components shared by every subcommand: config,
// logger, token store, the single HTTP client, the session controller and
// the book collection manager.
type app struct {
	cfg    *config.Config
	log    *zap.Logger
	store  *authentication.Store
	client *client.Client
	ctrl   *session.Controller
	books  *books.Manager
}

// newApp resolves configuration, restores the session from the token
// store, and registers the controller as the client's auth-failure hook.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
	}

	log, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	store := authentication.NewStore()
	httpClient := client.NewClient(cfg.APIURL)
	ctrl := session.NewController(store, httpClient, log)
	httpClient.OnAuthFailure(ctrl.AuthFailed)

	return &app{
		cfg:    cfg,
		log:    log,
		store:  store,
		client: httpClient,
		ctrl:   ctrl,
		books:  books.NewManager(httpClient, log),
	}, nil
}

// Close deregisters the auth-failure hook and flushes the logger.
func (a *app) Close() {
	a.client.OnAuthFailure(nil)
	_ = a.log.Sync()
}

// requireAuth runs the route guard for a view path and translates a
// redirect into the CLI equivalent: an error telling the user to login.
func (a *app) requireAuth(path string) error {
	if decision := session.Decide(a.ctrl.IsAuthenticated(), path); decision.Redirect {
		return fmt.Errorf("not logged in, please run 'bookhub auth login'")
	}
	return nil
}
