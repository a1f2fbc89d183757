package main

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"vereinsportal/internal/attendance"
	"vereinsportal/internal/config"
	"vereinsportal/internal/dashboard"
	"vereinsportal/internal/directory"
	"vereinsportal/internal/guard"
	"vereinsportal/internal/models"
	"vereinsportal/internal/portal"
	"vereinsportal/internal/session"
)

func main() {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "vereinsportal",
		Usage: "Terminal client for the club membership portal.",
		Commands: []*cli.Command{
			loginCommand(),
			logoutCommand(),
			eventsCommand(),
			mineCommand(),
			signupCommand(),
			cancelCommand(),
			profileCommand(),
			rankingCommand(),
			exportCommand(),
			authCommand(),
			syncCommand(),
			adminCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

// appEnv bundles the wired-up client stack every command needs.
type appEnv struct {
	cfg      *config.Config
	logger   *slog.Logger
	sessions *session.Store
	client   *portal.Client
	dir      *directory.Directory
	loc      *time.Location
}

// newAppEnv loads config, restores a persisted session and wires the portal
// client behind it.
func newAppEnv() (*appEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := setupLogger(cfg.LogLevel)

	loc, err := cfg.Calendar.Location()
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(cfg.Portal.SessionFile)
	if err := sessions.Load(); err != nil {
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	client := portal.NewClient(logger, cfg.Portal.BaseURL, sessions, cfg.Portal.Timeout())
	return &appEnv{
		cfg:      cfg,
		logger:   logger,
		sessions: sessions,
		client:   client,
		dir:      directory.New(logger, client),
		loc:      loc,
	}, nil
}

// requireRoute checks the route guard and translates a redirect into an error
// the user can act on.
func (env *appEnv) requireRoute(want guard.Route) (models.Session, error) {
	sess, ok := env.sessions.Current()
	var sp *models.Session
	if ok {
		sp = &sess
	}
	switch got := guard.Resolve(sp, want); got {
	case want:
		return sess, nil
	case guard.RouteLogin:
		return models.Session{}, errors.New("not logged in. Run 'vereinsportal login' first")
	default:
		return models.Session{}, errors.New("this command requires the admin role")
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Log in to the portal and store the session.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Portal username."},
		},
		Action: func(c *cli.Context) error {
			env, err := newAppEnv()
			if err != nil {
				return err
			}

			reader := bufio.NewReader(os.Stdin)
			username := c.String("username")
			if username == "" {
				fmt.Print("Benutzername: ")
				username, _ = reader.ReadString('\n')
				username = strings.TrimSpace(username)
			}
			fmt.Print("Passwort: ")
			password, _ := reader.ReadString('\n')
			password = strings.TrimSpace(password)

			sess, err := env.client.Login(c.Context, username, password)
			if err != nil {
				if errors.Is(err, portal.ErrUnauthorized) {
					return errors.New("login failed, please check your credentials")
				}
				return fmt.Errorf("login failed: %w", err)
			}
			if err := env.sessions.Set(sess); err != nil {
				return fmt.Errorf("failed to store session: %w", err)
			}

			fmt.Printf("Logged in as %s (%s).\n", sess.Username, sess.Role)
			return nil
		},
	}
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Discard the stored session.",
		Action: func(c *cli.Context) error {
			env, err := newAppEnv()
			if err != nil {
				return err
			}
			if err := env.sessions.Clear(); err != nil {
				return fmt.Errorf("failed to clear session: %w", err)
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Show the dashboard: next termin, upcoming termine, own registrations.",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "all", Usage: "Include past termine."},
		},
		Action: func(c *cli.Context) error {
			env, err := newAppEnv()
			if err != nil {
				return err
			}
			if _, err := env.requireRoute(guard.RouteDashboard); err != nil {
				return err
			}

			termine, err := env.dir.RefreshTermine(c.Context)
			if err != nil {
				return err
			}
			if err := env.dir.RefreshMine(c.Context); err != nil {
				return err
			}

			now := time.Now()
			if next, ok := dashboard.Next(termine, now, env.loc); ok {
				fmt.Println("Nächster Termin:")
				env.printTermin(next)
			}

			upcoming := dashboard.Upcoming(termine, now, env.loc)
			if len(upcoming) > 0 {
				fmt.Println("\nWeitere Termine:")
				for _, t := range upcoming {
					env.printTermin(t)
				}
			}

			if c.Bool("all") {
				fmt.Println("\nVergangene Termine:")
				for _, t := range termine {
					if dashboard.IsPast(t, now, env.loc) {
						env.printTermin(t)
					}
				}
			}
			return nil
		},
	}
}

func mineCommand() *cli.Command {
	return &cli.Command{
		Name:  "mine",
		Usage: "List the termine you are registered for.",
		Action: func(c *cli.Context) error {
			env, err := newAppEnv()
			if err != nil {
				return err
			}
			if _, err := env.requireRoute(guard.RouteDashboard); err != nil {
				return err
			}

			termine, err := env.dir.RefreshTermine(c.Context)
			if err != nil {
				return err
			}
			if err := env.dir.RefreshMine(c.Context); err != nil {
				return err
			}

			registered := 0
			for _, t := range termine {
				if env.dir.Registered(t.ID) {
					env.printTermin(t)
					registered++
				}
			}
			if registered == 0 {
				fmt.Println("No registrations.")
			}
			return nil
		},
	}
}

func signupCommand() *cli.Command {
	return &cli.Command{
		Name:      "signup",
		Usage:     "Register for a termin by id.",
		ArgsUsage: "<termin-id>",
		Action: func(c *cli.Context) error {
			return toggleAction(c, false)
		},
	}
}

func cancelCommand() *cli.Command {
	return &cli.Command{
		Name:      "cancel",
		Usage:     "Cancel your registration for a termin by id.",
		ArgsUsage: "<termin-id>",
		Action: func(c *cli.Context) error {
			return toggleAction(c, true)
		},
	}
}

// toggleAction is the shared body of signup and cancel. wantCancel selects the
// direction; the current registration state comes from a fresh server read.
func toggleAction(c *cli.Context, wantCancel bool) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}
	if _, err := env.requireRoute(guard.RouteDashboard); err != nil {
		return err
	}

	id, err := terminIDArg(c)
	if err != nil {
		return err
	}

	termine, err := env.dir.RefreshTermine(c.Context)
	if err != nil {
		return err
	}
	if err := env.dir.RefreshMine(c.Context); err != nil {
		return err
	}

	termin, ok := findTermin(termine, id)
	if !ok {
		return fmt.Errorf("no termin with id %d", id)
	}
	if dashboard.IsPast(termin, time.Now(), env.loc) {
		return fmt.Errorf("termin %d is in the past and can no longer be changed", id)
	}

	registered := env.dir.Registered(id)
	if wantCancel && !registered {
		fmt.Printf("You are not registered for %q.\n", termin.Title)
		return nil
	}
	if !wantCancel && registered {
		fmt.Printf("You are already registered for %q.\n", termin.Title)
		return nil
	}

	ctrl := attendance.NewController(env.logger, env.client, env.dir, env.sessions)
	if err := ctrl.Toggle(c.Context, id, registered); err != nil {
		return err
	}

	if wantCancel {
		fmt.Printf("Registration for %q cancelled.\n", termin.Title)
	} else {
		fmt.Printf("Registered for %q.\n", termin.Title)
	}
	return nil
}

func profileCommand() *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show your profile.",
		Action: func(c *cli.Context) error {
			env, err := newAppEnv()
			if err != nil {
				return err
			}
			if _, err := env.requireRoute(guard.RouteProfile); err != nil {
				return err
			}

			account, err := env.client.Profile(c.Context)
			if err != nil {
				return err
			}
			role := "Mitglied"
			if account.Role == models.RoleAdmin {
				role = "Admin"
			}
			fmt.Printf("Benutzername: %s\nE-Mail: %s\nRolle: %s\nScore: %d\n",
				account.Username, account.Email, role, account.Score)
			return nil
		},
	}
}

func rankingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ranking",
		Usage: "Show the member score ranking.",
		Action: func(c *cli.Context) error {
			env, err := newAppEnv()
			if err != nil {
				return err
			}
			if _, err := env.requireRoute(guard.RouteDashboard); err != nil {
				return err
			}

			users, err := env.client.ListUsers(c.Context)
			if err != nil {
				return err
			}
			for i, u := range dashboard.Ranking(users) {
				fmt.Printf("%3d. %-20s %d\n", i+1, u.Username, u.Score)
			}
			return nil
		},
	}
}

// printTermin writes one termin in the dashboard card format.
func (env *appEnv) printTermin(t models.Termin) {
	when := t.Date
	if t.Begin != "" {
		when = fmt.Sprintf("%s %s", t.Date, t.Begin)
		if t.End != "" {
			when += " - " + t.End
		}
	}
	marker := " "
	if env.dir.Registered(t.ID) {
		marker = "*"
	}
	fmt.Printf("%s [%d] %s (%s)\n", marker, t.ID, t.Title, when)
	if t.Description != "" {
		fmt.Printf("      %s\n", t.Description)
	}
	if t.Capacity > 0 {
		fmt.Printf("      Max. %d Plätze", t.Capacity)
		if t.Deadline != "" {
			fmt.Printf(", Stichtag: %s", t.Deadline)
		}
		fmt.Println()
	} else if t.Deadline != "" {
		fmt.Printf("      Stichtag: %s\n", t.Deadline)
	}
}

func terminIDArg(c *cli.Context) (int, error) {
	if c.NArg() != 1 {
		return 0, errors.New("expected exactly one termin id argument")
	}
	id, err := strconv.Atoi(c.Args().First())
	if err != nil {
		return 0, fmt.Errorf("invalid termin id %q", c.Args().First())
	}
	return id, nil
}

func findTermin(termine []models.Termin, id int) (models.Termin, bool) {
	for _, t := range termine {
		if t.ID == id {
			return t, true
		}
	}
	return models.Termin{}, false
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
