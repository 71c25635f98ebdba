package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"schedulr-api/core/config"
	"schedulr-api/modules/calendar/entity"
)

// BusyFetcher returns the provider's busy windows for one connection. The
// second return value carries a rotated token when the provider refreshed
// credentials during the call, nil otherwise.
type BusyFetcher interface {
	FreeBusy(ctx context.Context, conn *entity.CalendarConnection, from, to time.Time) ([]entity.BusyInterval, *oauth2.Token, error)
}

const (
	freeBusyURL       = "https://www.googleapis.com/calendar/v3/freeBusy"
	calendarReadScope = "https://www.googleapis.com/auth/calendar.readonly"
)

type googleFreeBusy struct {
	oauth *oauth2.Config
}

func NewGoogleFreeBusy(api config.GoogleAPIConfig) BusyFetcher {
	return &googleFreeBusy{oauth: &oauth2.Config{
		ClientID:     api.ClientID,
		ClientSecret: api.ClientSecret,
		RedirectURL:  api.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{calendarReadScope},
	}}
}

type freeBusyItem struct {
	ID string `json:"id"`
}

type freeBusyRequest struct {
	TimeMin string         `json:"timeMin"`
	TimeMax string         `json:"timeMax"`
	Items   []freeBusyItem `json:"items"`
}

type freeBusyResponse struct {
	Calendars map[string]struct {
		Busy []struct {
			Start time.Time `json:"start"`
			End   time.Time `json:"end"`
		} `json:"busy"`
		Errors []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"calendars"`
}

func (g *googleFreeBusy) FreeBusy(ctx context.Context, conn *entity.CalendarConnection, from, to time.Time) ([]entity.BusyInterval, *oauth2.Token, error) {
	ts := g.oauth.TokenSource(ctx, &oauth2.Token{
		AccessToken:  conn.AccessToken,
		RefreshToken: conn.RefreshToken,
		Expiry:       conn.TokenExpiry,
	})
	token, err := ts.Token()
	if err != nil {
		return nil, nil, fmt.Errorf("refresh google token: %w", err)
	}

	body, err := json.Marshal(freeBusyRequest{
		TimeMin: from.UTC().Format(time.RFC3339),
		TimeMax: to.UTC().Format(time.RFC3339),
		Items:   []freeBusyItem{{ID: conn.CalendarID}},
	})
	if err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, freeBusyURL, bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := oauth2.NewClient(ctx, ts).Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("freebusy request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, nil, fmt.Errorf("freebusy request: status %d: %s", resp.StatusCode, raw)
	}

	var parsed freeBusyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, nil, fmt.Errorf("decode freebusy response: %w", err)
	}

	cal, ok := parsed.Calendars[conn.CalendarID]
	if !ok {
		return nil, rotatedToken(conn, token), nil
	}
	if len(cal.Errors) > 0 {
		return nil, rotatedToken(conn, token), fmt.Errorf("freebusy calendar error: %s", cal.Errors[0].Reason)
	}

	busy := make([]entity.BusyInterval, 0, len(cal.Busy))
	for _, b := range cal.Busy {
		if !b.End.After(b.Start) {
			continue
		}
		busy = append(busy, entity.BusyInterval{Start: b.Start.UTC(), End: b.End.UTC()})
	}
	return busy, rotatedToken(conn, token), nil
}

func rotatedToken(conn *entity.CalendarConnection, token *oauth2.Token) *oauth2.Token {
	if token == nil || token.AccessToken == conn.AccessToken {
		return nil
	}
	return token
}
