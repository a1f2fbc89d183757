package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"

	"vereinsportal/internal/calsync"
	"vereinsportal/internal/dashboard"
	"vereinsportal/internal/google"
	"vereinsportal/internal/guard"
	"vereinsportal/internal/icloud"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write upcoming termine to an iCalendar file.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Value: "termine.ics", Usage: "Output file path."},
			&cli.BoolFlag{Name: "mine", Usage: "Export only termine you are registered for."},
		},
		Action: func(c *cli.Context) error {
			env, err := newAppEnv()
			if err != nil {
				return err
			}

			entries, err := upcomingEntries(c, env, c.Bool("mine"))
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("Nothing to export.")
				return nil
			}

			cal := ical.NewCalendar()
			cal.Props.SetText(ical.PropVersion, "2.0")
			cal.Props.SetText(ical.PropProductID, "-//vereinsportal//EN")
			for _, entry := range entries {
				cal.Children = append(cal.Children, icloud.ToICal(entry, icloud.GenerateUID()))
			}

			f, err := os.Create(c.String("out"))
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()

			if err := ical.NewEncoder(f).Encode(cal); err != nil {
				return fmt.Errorf("failed to encode calendar: %w", err)
			}
			fmt.Printf("Wrote %d termine to %s.\n", len(entries), c.String("out"))
			return nil
		},
	}
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authenticate with a Google account for calendar sync.",
		Action: func(c *cli.Context) error {
			logger := setupLogger("info")
			logger.Info("Starting Google authentication flow.")

			config, err := google.GetOAuthConfigForAuthFlow(os.Getenv("GOOGLE_CLIENT_ID"), os.Getenv("GOOGLE_CLIENT_SECRET"))
			if err != nil {
				return fmt.Errorf("failed to get google oauth config: %w", err)
			}

			authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
			fmt.Printf("Go to the following link in your browser then type the "+
				"authorization code: \n%v\n", authURL)

			fmt.Print("Enter Authorization Code: ")
			reader := bufio.NewReader(os.Stdin)
			authCode, _ := reader.ReadString('\n')
			authCode = strings.TrimSpace(authCode)

			token, err := google.TokenFromWeb(config, authCode)
			if err != nil {
				return fmt.Errorf("unable to retrieve token from web: %w", err)
			}

			fmt.Print("Enter a name for this account (e.g., 'personal', 'work'): ")
			accountName, _ := reader.ReadString('\n')
			accountName = strings.TrimSpace(accountName)
			tokenFile := "token-" + accountName + ".json"

			if err := google.SaveToken(tokenFile, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			logger.Info("Successfully authenticated and saved token.", "file", tokenFile)
			return nil
		},
	}
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Push your upcoming termine into a personal calendar.",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "target", Value: cli.NewStringSlice("icloud"), Usage: "Sync targets: icloud, google."},
			&cli.BoolFlag{Name: "dry-run", Usage: "Log what would be synced without making changes."},
			&cli.BoolFlag{Name: "all", Usage: "Sync all upcoming termine, not only your registrations."},
		},
		Action: func(c *cli.Context) error {
			env, err := newAppEnv()
			if err != nil {
				return err
			}
			if _, err := env.requireRoute(guard.RouteDashboard); err != nil {
				return err
			}

			if c.Bool("dry-run") {
				env.logger.Info("Performing a dry run. No changes will be made.")
			}

			targets, err := buildTargets(c, env)
			if err != nil {
				return err
			}

			entries, err := upcomingEntries(c, env, !c.Bool("all"))
			if err != nil {
				return err
			}

			s, err := calsync.NewSyncer(env.logger, targets, env.cfg.Calendar.StateFile, c.Bool("dry-run"))
			if err != nil {
				return fmt.Errorf("failed to create syncer: %w", err)
			}
			return s.Sync(c.Context, entries)
		},
	}
}

// buildTargets instantiates the calendar clients selected via --target.
func buildTargets(c *cli.Context, env *appEnv) ([]calsync.Target, error) {
	var targets []calsync.Target
	for _, name := range c.StringSlice("target") {
		switch name {
		case "icloud":
			client, err := icloud.NewClient(env.logger,
				env.cfg.Calendar.ICloudUsername,
				env.cfg.Calendar.ICloudPassword,
				env.cfg.Calendar.ICloudCalendar)
			if err != nil {
				return nil, fmt.Errorf("failed to create icloud client: %w", err)
			}
			targets = append(targets, client)
		case "google":
			accounts, err := google.GetTokenAccounts()
			if err != nil || len(accounts) == 0 {
				return nil, fmt.Errorf("no google accounts found. Run the 'auth' command first")
			}
			for _, acc := range accounts {
				client, err := google.NewClient(c.Context, env.logger,
					env.cfg.Calendar.GoogleClientID,
					env.cfg.Calendar.GoogleClientSecret,
					env.cfg.Calendar.GoogleCalendarID, acc)
				if err != nil {
					return nil, fmt.Errorf("failed to create google client for account %s: %w", acc, err)
				}
				targets = append(targets, client)
			}
		default:
			return nil, fmt.Errorf("unknown sync target %q", name)
		}
	}
	return targets, nil
}

// upcomingEntries fetches the directory and derives the calendar entries of
// all not-past termine, optionally restricted to own registrations.
func upcomingEntries(c *cli.Context, env *appEnv, mineOnly bool) ([]dashboard.Entry, error) {
	termine, err := env.dir.RefreshTermine(c.Context)
	if err != nil {
		return nil, err
	}
	if mineOnly {
		if err := env.dir.RefreshMine(c.Context); err != nil {
			return nil, err
		}
	}

	now := time.Now()
	var selected []dashboard.Entry
	for _, entry := range dashboard.Entries(termine, env.loc) {
		termin, ok := findTermin(termine, entry.TerminID)
		if !ok || dashboard.IsPast(termin, now, env.loc) {
			continue
		}
		if mineOnly && !env.dir.Registered(entry.TerminID) {
			continue
		}
		selected = append(selected, entry)
	}
	return selected, nil
}
