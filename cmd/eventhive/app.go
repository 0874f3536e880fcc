package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/eventhive/eventhive-go/internal/credstore"
	"github.com/eventhive/eventhive-go/internal/gateway"
	"github.com/eventhive/eventhive-go/internal/logger"
	"github.com/eventhive/eventhive-go/internal/models"
	"github.com/eventhive/eventhive-go/internal/session"
)

// App wires the session core together: credential store, gateway, manager.
type App struct {
	manager *session.Manager
	logger  logger.Logger
}

func NewApp(c *Config) (*App, error) {
	log, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	dir := c.SessionDir
	if dir == "" {
		dir, err = credstore.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("error while resolving session dir: %w", err)
		}
	}

	var store credstore.Store
	if c.Passphrase != "" {
		store, err = credstore.NewSealedFile(dir, c.Passphrase)
	} else {
		store, err = credstore.NewFile(dir)
	}
	if err != nil {
		return nil, fmt.Errorf("error while opening credential store: %w", err)
	}

	gw := gateway.NewHTTP(gateway.Config{
		BaseURL: c.APIAddr,
		Tokens:  store,
		Logger:  log,
	})

	manager, err := session.NewManager(gw, store, log)
	if err != nil {
		return nil, fmt.Errorf("error while creating session manager: %w", err)
	}

	return &App{manager: manager, logger: log}, nil
}

// Run dispatches one subcommand.
func (a *App) Run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "refresh":
		return a.refresh(ctx)
	case "logout":
		return a.logout(ctx)
	case "whoami":
		return a.whoami(ctx)
	case "watch":
		return a.watch(ctx)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *App) login(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
	email := fs.StringP("email", "u", "", "account email")
	password := fs.StringP("password", "p", "", "account password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := a.manager.SignIn(ctx, *email, *password)
	if err != nil {
		return err
	}

	fmt.Printf("signed in as %s (%s)\n", data.User.FullName(), data.User.Email)
	return nil
}

func (a *App) register(ctx context.Context, args []string) error {
	fs := pflag.NewFlagSet("register", pflag.ContinueOnError)
	email := fs.StringP("email", "u", "", "account email")
	password := fs.StringP("password", "p", "", "account password")
	first := fs.String("first-name", "", "first name")
	last := fs.String("last-name", "", "last name")
	phone := fs.String("phone", "", "phone number (E.164)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := a.manager.SignUp(ctx, models.SignUpRequest{
		Email:     *email,
		Password:  *password,
		FirstName: *first,
		LastName:  *last,
		Phone:     *phone,
	})
	if err != nil {
		return err
	}

	fmt.Printf("registered %s, verification mail sent to %s\n", data.User.ID, data.User.Email)
	return nil
}

func (a *App) refresh(ctx context.Context) error {
	tokens, err := a.manager.CurrentTokens(ctx)
	if err != nil {
		return err
	}
	if tokens == nil {
		return errors.New("no session, login first")
	}

	pair, err := a.manager.RefreshTokens(ctx, tokens.RefreshToken)
	if err != nil {
		return err
	}

	fmt.Printf("tokens refreshed, access token valid until %s\n",
		pair.ExpiresAt().Format(time.RFC3339))
	return nil
}

func (a *App) logout(ctx context.Context) error {
	// Advisory only: the local session is gone either way.
	if err := a.manager.SignOut(ctx); err != nil {
		a.logger.Warn("Remote sign-out reported failure", "error", err)
	}

	fmt.Println("signed out")
	return nil
}

func (a *App) whoami(ctx context.Context) error {
	profile, err := a.manager.CurrentUser(ctx)
	if err != nil {
		return err
	}
	if profile == nil {
		return errors.New("not signed in")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(profile)
}

// watch streams session states until interrupted.
func (a *App) watch(ctx context.Context) error {
	if _, err := a.manager.CheckCurrentUser(ctx); err != nil {
		return err
	}

	for state := range a.manager.Observe(ctx) {
		switch s := state.(type) {
		case session.Loading:
			fmt.Println("loading")
		case session.Unauthenticated:
			fmt.Println("unauthenticated")
		case session.Authenticated:
			fmt.Printf("authenticated as %s, token expires %s\n",
				s.User.Email, s.Tokens.ExpiresAt().Format(time.RFC3339))
		case session.Failed:
			fmt.Printf("error: %s\n", s.Message)
		}
	}
	return nil
}
