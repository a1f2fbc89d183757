// Package google pushes club termine into a Google Calendar. Authentication
// uses the OAuth desktop flow; tokens are stored per account in
// token-<name>.json files next to the binary.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"vereinsportal/internal/dashboard"
	"vereinsportal/internal/models"
)

const (
	credentialsFile = "credentials.json"
)

// CalendarClient writes events into a Google Calendar.
type CalendarClient struct {
	service    *calendar.Service
	calendarID string
	logger     *slog.Logger
}

// NewClient creates a Google Calendar client for the given account. The
// account name selects the token file written by the 'auth' command.
func NewClient(ctx context.Context, logger *slog.Logger, clientID, clientSecret, calendarID, accountName string) (*CalendarClient, error) {
	config, err := getOAuthConfig(clientID, clientSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to get OAuth config: %w", err)
	}

	tokenFile := fmt.Sprintf("token-%s.json", accountName)
	token, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("could not load token for account %s: %w. Please run the 'auth' command first", accountName, err)
	}

	client := config.Client(ctx, token)
	service, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}

	return &CalendarClient{service: service, calendarID: calendarID, logger: logger}, nil
}

// Name identifies the sync target in logs and sync state.
func (c *CalendarClient) Name() string {
	return "google"
}

// Push inserts the calendar entry into the configured Google Calendar under
// the given iCal UID.
func (c *CalendarClient) Push(ctx context.Context, entry dashboard.Entry, uid string) error {
	c.logger.Debug("Pushing termin to Google Calendar", "title", entry.Title, "uid", uid)

	ev := &calendar.Event{
		Summary:     entry.Title,
		Description: entry.Description,
		ICalUID:     uid,
	}
	if entry.AllDay {
		// All-day events carry dates only; Google treats End as exclusive.
		ev.Start = &calendar.EventDateTime{Date: entry.Start.Format(models.DateLayout)}
		ev.End = &calendar.EventDateTime{Date: entry.Start.AddDate(0, 0, 1).Format(models.DateLayout)}
	} else {
		ev.Start = &calendar.EventDateTime{DateTime: entry.Start.Format(time.RFC3339)}
		ev.End = &calendar.EventDateTime{DateTime: entry.End.Format(time.RFC3339)}
	}

	if _, err := c.service.Events.Insert(c.calendarID, ev).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}

	c.logger.Info("Pushed termin to Google Calendar", "title", entry.Title)
	return nil
}

// GetOAuthConfigForAuthFlow is used by the auth command to get the config for the web flow.
func GetOAuthConfigForAuthFlow(clientID, clientSecret string) (*oauth2.Config, error) {
	return getOAuthConfig(clientID, clientSecret)
}

// getOAuthConfig reads credentials and returns an OAuth2 config.
// It prioritizes environment variables over a local credentials.json file.
func getOAuthConfig(clientID, clientSecret string) (*oauth2.Config, error) {
	if clientID != "" && clientSecret != "" {
		return &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  "urn:ietf:wg:oauth:2.0:oob",
			Scopes:       []string{calendar.CalendarEventsScope},
			Endpoint:     google.Endpoint,
		}, nil
	}

	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		if _, ok := err.(*fs.PathError); ok {
			return nil, fmt.Errorf("credentials.json not found. Please provide GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars or place credentials.json in the root directory")
		}
		return nil, fmt.Errorf("unable to read client secret file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	config.RedirectURL = "urn:ietf:wg:oauth:2.0:oob" // For desktop app flow
	return config, nil
}

// TokenFromWeb is called by the auth flow to retrieve a token.
func TokenFromWeb(config *oauth2.Config, authCode string) (*oauth2.Token, error) {
	return config.Exchange(context.Background(), authCode)
}

// SaveToken saves a token to a file path.
func SaveToken(path string, token *oauth2.Token) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create token file: %w", err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// tokenFromFile retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

// GetTokenAccounts lists the account names with a saved token file.
func GetTokenAccounts() ([]string, error) {
	files, err := os.ReadDir(".")
	if err != nil {
		return nil, err
	}

	var accounts []string
	for _, file := range files {
		if strings.HasPrefix(file.Name(), "token-") && strings.HasSuffix(file.Name(), ".json") {
			accountName := strings.TrimSuffix(strings.TrimPrefix(file.Name(), "token-"), ".json")
			accounts = append(accounts, accountName)
		}
	}
	return accounts, nil
}
