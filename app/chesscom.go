package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"example/chess-history/app/config"
	"example/chess-history/app/logging"
	"example/chess-history/app/models"
)

// ChessClient talks to the chess.com published-data API. It covers archive
// discovery and game fetching; every failure there degrades to an empty
// result plus a log line.
type ChessClient struct {
	httpc     *http.Client
	baseURL   string
	userAgent string
	now       func() time.Time
	log       *logging.Logger
}

// NewChessClient builds a client from cfg. A nil hc gets a client with cfg.Timeout.
func NewChessClient(cfg config.ChessComConfig, hc *http.Client) *ChessClient {
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = config.DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	base := cfg.BaseURL
	if base == "" {
		base = config.DefaultBaseURL
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = config.DefaultUserAgent
	}
	return &ChessClient{
		httpc:     hc,
		baseURL:   base,
		userAgent: ua,
		now:       time.Now,
		log:       logging.Named("chesscom"),
	}
}

// ListArchives returns the identity's monthly archives in source order.
// Failures are logged as a ResolutionError and yield an empty slice.
func (c *ChessClient) ListArchives(ctx context.Context, identity string) []models.ArchiveRef {
	refs, err := c.fetchArchives(ctx, identity)
	if err != nil {
		c.log.Error().Err(err).Str("identity", identity).Msg("archive resolution failed")
		return []models.ArchiveRef{}
	}
	return refs
}

// ListYears returns every year from the first archive through the current
// year, ascending. Empty when there are no archives.
func (c *ChessClient) ListYears(ctx context.Context, identity string) []string {
	refs := c.ListArchives(ctx, identity)
	if len(refs) == 0 {
		return []string{}
	}
	return yearsBetween(refs[0].Year, c.now().Year())
}

func yearsBetween(first, last int) []string {
	out := []string{}
	for y := first; y <= last; y++ {
		out = append(out, strconv.Itoa(y))
	}
	return out
}

// FetchByLocator returns the raw games behind one archive URL.
// Failures are logged as a FetchError and yield an empty slice.
func (c *ChessClient) FetchByLocator(ctx context.Context, locator string) []models.RawGame {
	games, err := c.fetchGames(ctx, locator)
	if err != nil {
		c.log.Error().Err(err).Str("url", locator).Msg("fetch failed")
		return []models.RawGame{}
	}
	return games
}

// FetchMonth builds the canonical archive URL and delegates to FetchByLocator.
func (c *ChessClient) FetchMonth(ctx context.Context, identity string, year, month int) []models.RawGame {
	return c.FetchByLocator(ctx, c.MonthURL(identity, year, month))
}

func (c *ChessClient) MonthURL(identity string, year, month int) string {
	return fmt.Sprintf("%s/player/%s/games/%04d/%02d", c.baseURL, url.PathEscape(identity), year, month)
}

// ResolveLocator accepts only monthly archive URLs of identity on the
// configured API host. The archive index lowercases usernames, so the
// comparison ignores case. Queries and fragments are rejected.
func (c *ChessClient) ResolveLocator(identity, locator string) (models.ArchiveRef, error) {
	ref, err := models.ParseArchiveRef(locator)
	if err != nil {
		return models.ArchiveRef{}, fmt.Errorf("%w: %v", ErrInvalidSelection, err)
	}
	want := c.MonthURL(identity, ref.Year, ref.Month)
	if !strings.EqualFold(strings.TrimRight(locator, "/"), want) {
		return models.ArchiveRef{}, fmt.Errorf("%w: %q is not an archive of %s", ErrInvalidSelection, locator, identity)
	}
	return ref, nil
}

// FetchProfile loads the public profile; unlike the archive calls it
// returns its error so callers can tell a missing player apart.
func (c *ChessClient) FetchProfile(ctx context.Context, identity string) (*models.Profile, error) {
	u := fmt.Sprintf("%s/player/%s", c.baseURL, url.PathEscape(identity))
	var p models.Profile
	if err := c.getJSON(ctx, u, &p); err != nil {
		if isNotFound(err) {
			return nil, errUserNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (c *ChessClient) fetchArchives(ctx context.Context, identity string) ([]models.ArchiveRef, error) {
	u := fmt.Sprintf("%s/player/%s/games/archives", c.baseURL, url.PathEscape(identity))
	var idx models.ArchiveIndex
	if err := c.getJSON(ctx, u, &idx); err != nil {
		if isNotFound(err) {
			err = errUserNotFound
		}
		return nil, &ResolutionError{Identity: identity, Err: err}
	}
	if idx.Archives == nil {
		return nil, &ResolutionError{Identity: identity, Err: ErrMalformedBody}
	}

	refs := make([]models.ArchiveRef, 0, len(idx.Archives))
	for _, a := range idx.Archives {
		ref, err := models.ParseArchiveRef(a)
		if err != nil {
			c.log.Warn().Err(err).Str("identity", identity).Msg("skipping unreadable archive entry")
			continue
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func (c *ChessClient) fetchGames(ctx context.Context, locator string) ([]models.RawGame, error) {
	var mg models.MonthlyGames
	if err := c.getJSON(ctx, locator, &mg); err != nil {
		return nil, &FetchError{URL: locator, Err: err}
	}
	if mg.Games == nil {
		return nil, &FetchError{URL: locator, Err: ErrMalformedBody}
	}

	out := make([]models.RawGame, 0, len(mg.Games))
	for i, raw := range mg.Games {
		g, err := models.FlattenGame(raw)
		if err != nil {
			c.log.Warn().Err(err).Str("url", locator).Int("index", i).Msg("skipping undecodable game")
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func isNotFound(err error) bool {
	var he httpError
	return errors.As(err, &he) && he.Status == http.StatusNotFound
}

// getJSON issues one GET; there is no retry, callers may re-invoke.
func (c *ChessClient) getJSON(ctx context.Context, u string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	res, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		// capture the API's message for error clarity
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(res.Body).Decode(&msg)
		return httpError{Status: res.StatusCode, Body: msg.Message}
	}
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}

// SelectableYears lists years from the profile's join year to now, newest first.
func SelectableYears(p *models.Profile, now time.Time) []int {
	if p == nil || p.Joined <= 0 {
		return []int{now.Year()}
	}
	joined := time.Unix(p.Joined, 0).UTC().Year()
	if joined > now.Year() {
		return []int{now.Year()}
	}
	out := []int{}
	for y := now.Year(); y >= joined; y-- {
		out = append(out, y)
	}
	return out
}

// SelectableMonths lists "MM" values for a year: up to the current month
// for the current year, all twelve otherwise. Newest first.
func SelectableMonths(year int, now time.Time) []string {
	last := 12
	if year == now.Year() {
		last = int(now.Month())
	}
	out := make([]string, 0, last)
	for m := last; m >= 1; m-- {
		out = append(out, fmt.Sprintf("%02d", m))
	}
	return out
}
