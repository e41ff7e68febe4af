package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"meeting-brief-service/internal/config"
	"meeting-brief-service/internal/domain"
	"meeting-brief-service/internal/domain/ports/adapter"
	"meeting-brief-service/internal/domain/ports/repository"
)

const (
	tokenEndpoint  = "https://oauth2.googleapis.com/token"
	eventsEndpoint = "https://www.googleapis.com/calendar/v3/calendars"

	accessTokenKey = "google_calendar_access_token"
)

var _ adapter.CalendarAdapter = (*GoogleCalendarAdapter)(nil)

// GoogleCalendarAdapter fetches events over the plain HTTP events API. Access
// tokens come from a refresh-token exchange and live in the token cache until
// shortly before expiry.
type GoogleCalendarAdapter struct {
	cfg    config.CalendarConfig
	tokens repository.TokenCache
	client *http.Client
	log    *zerolog.Logger
}

func NewGoogleCalendarAdapter(cfg config.CalendarConfig, tokens repository.TokenCache, log *zerolog.Logger) (*GoogleCalendarAdapter, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, errors.New("calendar: incomplete oauth credentials")
	}
	return &GoogleCalendarAdapter{
		cfg:    cfg,
		tokens: tokens,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    log,
	}, nil
}

func (g *GoogleCalendarAdapter) FetchEvent(ctx context.Context, eventID string) (*adapter.CalendarEvent, error) {
	token, err := g.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	ev, status, err := g.getEvent(ctx, token, eventID)
	if status == http.StatusUnauthorized {
		// Token went stale before its recorded expiry; refresh once.
		if err := g.tokens.Invalidate(ctx, accessTokenKey); err != nil {
			g.log.Debug().Err(err).Msg("token cache invalidate failed")
		}
		token, err = g.accessToken(ctx)
		if err != nil {
			return nil, err
		}
		ev, _, err = g.getEvent(ctx, token, eventID)
		return ev, err
	}
	return ev, err
}

func (g *GoogleCalendarAdapter) getEvent(ctx context.Context, token, eventID string) (*adapter.CalendarEvent, int, error) {
	calID := g.cfg.CalendarID
	if calID == "" {
		calID = "primary"
	}
	endpoint := fmt.Sprintf("%s/%s/events/%s", eventsEndpoint, url.PathEscape(calID), url.PathEscape(eventID))
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, resp.StatusCode, fmt.Errorf("%w: calendar event %s", domain.ErrNotFound, eventID)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, resp.StatusCode, fmt.Errorf("%w: calendar http %d", domain.ErrAuthentication, resp.StatusCode)
	case resp.StatusCode >= 300:
		return nil, resp.StatusCode, fmt.Errorf("calendar http %d", resp.StatusCode)
	}

	var payload struct {
		ID          string `json:"id"`
		Summary     string `json:"summary"`
		Description string `json:"description"`
		HTMLLink    string `json:"htmlLink"`
		Start       struct {
			DateTime string `json:"dateTime"`
			Date     string `json:"date"`
		} `json:"start"`
		End struct {
			DateTime string `json:"dateTime"`
			Date     string `json:"date"`
		} `json:"end"`
		Attendees []struct {
			Email       string `json:"email"`
			DisplayName string `json:"displayName"`
		} `json:"attendees"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, resp.StatusCode, err
	}

	ev := &adapter.CalendarEvent{
		ID:          payload.ID,
		Summary:     payload.Summary,
		Description: payload.Description,
		HTMLLink:    payload.HTMLLink,
		Start:       parseEventTime(payload.Start.DateTime, payload.Start.Date),
		End:         parseEventTime(payload.End.DateTime, payload.End.Date),
	}
	for _, a := range payload.Attendees {
		name := a.DisplayName
		if name == "" {
			name = a.Email
		}
		if name != "" {
			ev.Attendees = append(ev.Attendees, name)
		}
	}
	return ev, resp.StatusCode, nil
}

func (g *GoogleCalendarAdapter) accessToken(ctx context.Context) (string, error) {
	if token, ok, err := g.tokens.Get(ctx, accessTokenKey); err == nil && ok {
		return token, nil
	}

	form := url.Values{
		"client_id":     {g.cfg.ClientID},
		"client_secret": {g.cfg.ClientSecret},
		"refresh_token": {g.cfg.RefreshToken},
		"grant_type":    {"refresh_token"},
	}
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, tokenEndpoint, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: token exchange http %d", domain.ErrAuthentication, resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.AccessToken == "" {
		return "", errors.New("calendar: token exchange returned no access_token")
	}

	// Expire a minute early so a request never rides a dying token.
	expiresAt := time.Now().Add(time.Duration(payload.ExpiresIn)*time.Second - time.Minute)
	if err := g.tokens.Set(ctx, accessTokenKey, payload.AccessToken, expiresAt); err != nil {
		g.log.Debug().Err(err).Msg("token cache store failed")
	}
	return payload.AccessToken, nil
}

func parseEventTime(dateTime, date string) time.Time {
	if dateTime != "" {
		if t, err := time.Parse(time.RFC3339, dateTime); err == nil {
			return t
		}
	}
	if date != "" {
		if t, err := time.Parse("2006-01-02", date); err == nil {
			return t
		}
	}
	return time.Time{}
}
