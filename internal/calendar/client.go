// Package calendar pushes checklist reminders into Google Calendar as
// events, so reminders survive outside the running service.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Client wraps the Calendar API for one target calendar.
type Client struct {
	srv        *gcal.Service
	calendarID string
}

// New builds an authenticated client from an OAuth credentials file and a
// previously obtained token file. Obtaining the token is a one-time offline
// step; the refresh token in the file keeps the client alive after that.
func New(ctx context.Context, credentialsFile, tokenFile, calendarID string) (*Client, error) {
	b, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read calendar credentials: %w", err)
	}
	cfg, err := google.ConfigFromJSON(b, gcal.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parse calendar credentials: %w", err)
	}
	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("read calendar token: %w", err)
	}

	srv, err := gcal.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("build calendar service: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Client{srv: srv, calendarID: calendarID}, nil
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decode token %s: %w", path, err)
	}
	return tok, nil
}

// SyncEvent creates or updates the calendar event for one reminder. The
// checklist item id rides along as a private extended property, which is how
// later syncs find the event again.
func (c *Client) SyncEvent(ev *ReminderEvent) (string, error) {
	target := ev.ToAPI()

	existing, err := c.findByItemID(ev.ItemID)
	if err != nil {
		return "", fmt.Errorf("search calendar events: %w", err)
	}

	if existing != nil {
		if patch := diffEvent(existing, target); patch != nil {
			updated, err := c.srv.Events.Patch(c.calendarID, existing.Id, patch).Do()
			if err != nil {
				return "", fmt.Errorf("update calendar event: %w", err)
			}
			return updated.Id, nil
		}
		return existing.Id, nil
	}

	created, err := c.srv.Events.Insert(c.calendarID, target).Do()
	if err != nil {
		return "", fmt.Errorf("create calendar event: %w", err)
	}
	return created.Id, nil
}

// RemoveEvent deletes the event for a checklist item, if one exists.
func (c *Client) RemoveEvent(itemID string) error {
	existing, err := c.findByItemID(itemID)
	if err != nil {
		return fmt.Errorf("search calendar events: %w", err)
	}
	if existing == nil {
		return nil
	}
	if err := c.srv.Events.Delete(c.calendarID, existing.Id).Do(); err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	return nil
}

func (c *Client) findByItemID(itemID string) (*gcal.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(fmt.Sprintf("%s=%s", itemIDProperty, itemID)).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}
