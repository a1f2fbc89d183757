package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"vereinsportal/internal/guard"
	"vereinsportal/internal/models"
)

func adminCommand() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Manage termine and user accounts (admin role required).",
		Subcommands: []*cli.Command{
			{
				Name:  "termin",
				Usage: "Manage termine.",
				Subcommands: []*cli.Command{
					adminTerminAddCommand(),
					adminTerminEditCommand(),
					adminTerminRemoveCommand(),
				},
			},
			{
				Name:  "user",
				Usage: "Manage user accounts.",
				Subcommands: []*cli.Command{
					adminUserListCommand(),
					adminUserAddCommand(),
					adminUserEditCommand(),
					adminUserRemoveCommand(),
				},
			},
		},
	}
}

// terminFlags are shared between add and edit.
func terminFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "titel", Usage: "Event title."},
		&cli.StringFlag{Name: "beschreibung", Usage: "Event description."},
		&cli.StringFlag{Name: "datum", Usage: "Event date (YYYY-MM-DD)."},
		&cli.StringFlag{Name: "beginn", Usage: "Start time (HH:MM)."},
		&cli.StringFlag{Name: "ende", Usage: "End time (HH:MM)."},
		&cli.IntFlag{Name: "anzahl", Usage: "Capacity."},
		&cli.StringFlag{Name: "stichtag", Usage: "Signup deadline (YYYY-MM-DD)."},
		&cli.StringFlag{Name: "kontakt-name", Usage: "Contact person name."},
		&cli.StringFlag{Name: "kontakt-mail", Usage: "Contact person email."},
	}
}

func terminFromFlags(c *cli.Context, base models.Termin) models.Termin {
	t := base
	if c.IsSet("titel") {
		t.Title = c.String("titel")
	}
	if c.IsSet("beschreibung") {
		t.Description = c.String("beschreibung")
	}
	if c.IsSet("datum") {
		t.Date = c.String("datum")
	}
	if c.IsSet("beginn") {
		t.Begin = c.String("beginn")
	}
	if c.IsSet("ende") {
		t.End = c.String("ende")
	}
	if c.IsSet("anzahl") {
		t.Capacity = c.Int("anzahl")
	}
	if c.IsSet("stichtag") {
		t.Deadline = c.String("stichtag")
	}
	if c.IsSet("kontakt-name") {
		t.ContactName = c.String("kontakt-name")
	}
	if c.IsSet("kontakt-mail") {
		t.ContactMail = c.String("kontakt-mail")
	}
	return t
}

func adminTerminAddCommand() *cli.Command {
	return &cli.Command{
		Name:  "add",
		Usage: "Create a termin.",
		Flags: terminFlags(),
		Action: func(c *cli.Context) error {
			env, err := newAppEnv()
			if err != nil {
				return err
			}
			if _, err := env.requireRoute(guard.RouteAdmin); err != nil {
				return err
			}

			t := terminFromFlags(c, models.Termin{})
			if t.Title == "" || t.Date == "" {
				return fmt.Errorf("--titel and --datum are required")
			}

			created, err := env.client.CreateTermin(c.Context, t)
			if err != nil {
				return err
			}
			fmt.Printf("Created termin %d: %s (%s)\n", created.ID, created.Title, created.Date)
			return nil
		},
	}
}

func adminTerminEditCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Update a termin. Unset flags keep their current value.",
		ArgsUsage: "<termin-id>",
		Flags:     terminFlags(),
		Action: func(c *cli.Context) error {
			env, err := newAppEnv()
			if err != nil {
				return err
			}
			if _, err := env.requireRoute(guard.RouteAdmin); err != nil {
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
			current, ok := findTermin(termine, id)
			if !ok {
				return fmt.Errorf("no termin with id %d", id)
			}

			if err := env.client.UpdateTermin(c.Context, terminFromFlags(c, current)); err != nil {
				return err
			}
			fmt.Printf("Updated termin %d.\n", id)
			return nil
		},
	}
}

func adminTerminRemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a termin.",
		ArgsUsage: "<termin-id>",
		Action: func(c *cli.Context) error {
			env, err := newAppEnv()
			if err != nil {
				return err
			}
			if _, err := env.requireRoute(guard.RouteAdmin); err != nil {
				return err
			}

			id, err := terminIDArg(c)
			if err != nil {
				return err
			}
			if err := env.client.DeleteTermin(c.Context, id); err != nil {
				return err
			}
			fmt.Printf("Deleted termin %d.\n", id)
			return nil
		},
	}
}

func adminUserListCommand() *cli.Command {
	return &cli.Command{
		Name:  "ls",
		Usage: "List all user accounts.",
		Action: func(c *cli.Context) error {
			env, err := newAppEnv()
			if err != nil {
				return err
			}
			if _, err := env.requireRoute(guard.RouteAdmin); err != nil {
				return err
			}

			users, err := env.client.ListUsers(c.Context)
			if err != nil {
				return err
			}
			for _, u := range users {
				fmt.Printf("%-20s %-30s %-6s %d\n", u.Username, u.Email, u.Role, u.Score)
			}
			return nil
		},
	}
}

func userFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "email", Usage: "Account email."},
		&cli.StringFlag{Name: "password", Usage: "Account password."},
		&cli.StringFlag{Name: "role", Usage: "Account role: user or admin."},
		&cli.IntFlag{Name: "score", Usage: "Account score."},
	}
}

func adminUserAddCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Create a user account.",
		ArgsUsage: "<username>",
		Flags:     userFlags(),
		Action: func(c *cli.Context) error {
			env, err := newAppEnv()
			if err != nil {
				return err
			}
			if _, err := env.requireRoute(guard.RouteAdmin); err != nil {
				return err
			}
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one username argument")
			}

			u := models.UserAccount{
				Username: c.Args().First(),
				Email:    c.String("email"),
				Password: c.String("password"),
				Role:     c.String("role"),
				Score:    c.Int("score"),
			}
			if u.Role == "" {
				u.Role = models.RoleUser
			}
			if u.Role != models.RoleUser && u.Role != models.RoleAdmin {
				return fmt.Errorf("role must be %q or %q", models.RoleUser, models.RoleAdmin)
			}
			if u.Email == "" || u.Password == "" {
				return fmt.Errorf("--email and --password are required")
			}

			if err := env.client.CreateUser(c.Context, u); err != nil {
				return err
			}
			fmt.Printf("Created user %s.\n", u.Username)
			return nil
		},
	}
}

func adminUserEditCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Update a user account. Unset flags keep their current value.",
		ArgsUsage: "<username>",
		Flags:     userFlags(),
		Action: func(c *cli.Context) error {
			env, err := newAppEnv()
			if err != nil {
				return err
			}
			if _, err := env.requireRoute(guard.RouteAdmin); err != nil {
				return err
			}
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one username argument")
			}
			username := c.Args().First()

			users, err := env.client.ListUsers(c.Context)
			if err != nil {
				return err
			}
			var current *models.UserAccount
			for i := range users {
				if users[i].Username == username {
					current = &users[i]
					break
				}
			}
			if current == nil {
				return fmt.Errorf("no user %q", username)
			}

			u := *current
			if c.IsSet("email") {
				u.Email = c.String("email")
			}
			if c.IsSet("password") {
				u.Password = c.String("password")
			}
			if c.IsSet("role") {
				u.Role = c.String("role")
			}
			if c.IsSet("score") {
				u.Score = c.Int("score")
			}
			if u.Role != models.RoleUser && u.Role != models.RoleAdmin {
				return fmt.Errorf("role must be %q or %q", models.RoleUser, models.RoleAdmin)
			}

			if err := env.client.UpdateUser(c.Context, u); err != nil {
				return err
			}
			fmt.Printf("Updated user %s.\n", username)
			return nil
		},
	}
}

func adminUserRemoveCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete a user account.",
		ArgsUsage: "<username>",
		Action: func(c *cli.Context) error {
			env, err := newAppEnv()
			if err != nil {
				return err
			}
			if _, err := env.requireRoute(guard.RouteAdmin); err != nil {
				return err
			}
			if c.NArg() != 1 {
				return fmt.Errorf("expected exactly one username argument")
			}

			username := c.Args().First()
			if err := env.client.DeleteUser(c.Context, username); err != nil {
				return err
			}
			fmt.Printf("Deleted user %s.\n", username)
			return nil
		},
	}
}
