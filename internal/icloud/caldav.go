// Package icloud pushes club termine into an iCloud calendar over CalDAV.
package icloud

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"

	"vereinsportal/internal/dashboard"
)

const (
	iCloudCalDAVEndpoint = "https://caldav.icloud.com/"

	icalDateLayout = "20060102"
)

// basicAuthTransport adds Basic Auth and a User-Agent to every CalDAV request.
type basicAuthTransport struct {
	Username  string
	Password  string
	Transport http.RoundTripper
}

// RoundTrip adds required headers and authentication to each request.
func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.Username, t.Password)
	req.Header.Set("User-Agent", "vereinsportal/1.0")
	return t.Transport.RoundTrip(req)
}

// CalDAVClient writes events into one calendar on a CalDAV server (iCloud).
type CalDAVClient struct {
	caldavClient *caldav.Client
	webdavClient *webdav.Client
	logger       *slog.Logger
	calendarURL  string
	username     string
}

// NewClient creates a CalDAVClient bound to the named iCloud calendar.
func NewClient(logger *slog.Logger, username, password, calendarName string) (*CalDAVClient, error) {
	transport := &basicAuthTransport{
		Username:  username,
		Password:  password,
		Transport: http.DefaultTransport,
	}
	httpClient := &http.Client{Transport: transport}

	caldavClient, err := caldav.NewClient(httpClient, iCloudCalDAVEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}

	webdavClient, err := webdav.NewClient(httpClient, iCloudCalDAVEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create webdav client: %w", err)
	}

	c := &CalDAVClient{
		caldavClient: caldavClient,
		webdavClient: webdavClient,
		logger:       logger,
		username:     username,
	}

	logger.Info("Finding iCloud calendar", "calendarName", calendarName)
	calendarURL, err := c.findCalendar(context.Background(), calendarName)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar '%s': %w", calendarName, err)
	}
	c.calendarURL = calendarURL
	logger.Info("Successfully found iCloud calendar", "url", calendarURL)

	return c, nil
}

// Name identifies the sync target in logs and sync state.
func (c *CalDAVClient) Name() string {
	return "icloud"
}

// Push creates the calendar entry on the CalDAV server under the given UID.
func (c *CalDAVClient) Push(ctx context.Context, entry dashboard.Entry, uid string) error {
	c.logger.Debug("Pushing termin to iCloud", "title", entry.Title, "uid", uid)

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//vereinsportal//EN")
	cal.Children = append(cal.Children, ToICal(entry, uid))

	// The event path must be relative to the endpoint for the webdav client.
	eventPath := path.Join(strings.TrimPrefix(c.calendarURL, iCloudCalDAVEndpoint), fmt.Sprintf("%s.ics", uid))

	writer, err := c.webdavClient.Create(ctx, eventPath)
	if err != nil {
		return fmt.Errorf("failed to create event on CalDAV server: %w", err)
	}
	defer writer.Close()

	if err := ical.NewEncoder(writer).Encode(cal); err != nil {
		return fmt.Errorf("failed to encode event to iCal format: %w", err)
	}

	c.logger.Info("Pushed termin to iCloud", "title", entry.Title)
	return nil
}

// ToICal converts a calendar entry to an ical VEVENT. All-day termine use
// VALUE=DATE properties with an exclusive end on the following day.
func ToICal(entry dashboard.Entry, uid string) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, uid)
	ve.Props.SetText(ical.PropSummary, entry.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())

	if entry.AllDay {
		start := ical.NewProp(ical.PropDateTimeStart)
		start.SetValueType(ical.ValueDate)
		start.Value = entry.Start.Format(icalDateLayout)
		ve.Props.Set(start)

		end := ical.NewProp(ical.PropDateTimeEnd)
		end.SetValueType(ical.ValueDate)
		end.Value = entry.Start.AddDate(0, 0, 1).Format(icalDateLayout)
		ve.Props.Set(end)
	} else {
		ve.Props.SetDateTime(ical.PropDateTimeStart, entry.Start)
		ve.Props.SetDateTime(ical.PropDateTimeEnd, entry.End)
	}

	if entry.Description != "" {
		ve.Props.SetText(ical.PropDescription, entry.Description)
	}
	return ve
}

// findCalendar discovers the user's calendars and returns the URL for the one
// with the matching name.
func (c *CalDAVClient) findCalendar(ctx context.Context, name string) (string, error) {
	principalPath, err := c.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := c.caldavClient.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.caldavClient.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	for _, cal := range calendars {
		if cal.Name == name {
			return fmt.Sprintf("%s%s", strings.TrimSuffix(iCloudCalDAVEndpoint, "/"), cal.Path), nil
		}
	}

	return "", fmt.Errorf("no calendar found with name '%s'", name)
}

// GenerateUID creates a new unique identifier for a calendar entry.
func GenerateUID() string {
	return uuid.New().String()
}
