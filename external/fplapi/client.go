package fplapi

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/fplstats/fdr-engine/internal/platform/logging"
	"github.com/fplstats/fdr-engine/internal/platform/resilience"
	"github.com/fplstats/fdr-engine/internal/usecase"
)

const (
	defaultBaseURL     = "https://fantasy.premierleague.com/api"
	defaultTimeout     = 20 * time.Second
	maxResponseBytes   = 6 << 20
	pathBootstrap      = "/bootstrap-static/"
	pathFixtures       = "/fixtures/"
	pathElementSummary = "/element-summary/%d/"
)

var errFPLTransient = crerr.New("fpl transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client wraps the public FPL endpoints behind the StatProvider interface.
// Requests are deduplicated per URL and guarded by a circuit breaker.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	maxRetries     int
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         resilience.SingleFlight
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = defaultTimeout
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		maxRetries:     maxInt(cfg.MaxRetries, 0),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// FetchBootstrap pulls the season state: teams, the full roster and the
// gameweek markers.
func (c *Client) FetchBootstrap(ctx context.Context) (usecase.ExternalBootstrap, error) {
	var envelope bootstrapEnvelope
	if err := c.doJSON(ctx, pathBootstrap, &envelope); err != nil {
		return usecase.ExternalBootstrap{}, fmt.Errorf("fetch bootstrap: %w", err)
	}

	out := usecase.ExternalBootstrap{
		Teams:   make([]usecase.ExternalTeam, 0, len(envelope.Teams)),
		Players: make([]usecase.ExternalPlayer, 0, len(envelope.Elements)),
		Events:  make([]usecase.ExternalEvent, 0, len(envelope.Events)),
	}
	for _, item := range envelope.Teams {
		if item.ID <= 0 {
			continue
		}
		out.Teams = append(out.Teams, usecase.ExternalTeam{
			RefID: item.ID,
			Name:  strings.TrimSpace(item.Name),
			Short: strings.TrimSpace(item.ShortName),
		})
	}
	for _, item := range envelope.Elements {
		if item.ID <= 0 {
			continue
		}
		out.Players = append(out.Players, usecase.ExternalPlayer{
			RefID:     item.ID,
			TeamRefID: item.Team,
			Name:      strings.TrimSpace(item.WebName),
			Position:  positionFromElementType(item.ElementType),
			Price:     item.NowCost,
		})
	}
	for _, item := range envelope.Events {
		out.Events = append(out.Events, usecase.ExternalEvent{
			ID:        item.ID,
			IsCurrent: item.IsCurrent,
			Finished:  item.Finished,
		})
	}

	return out, nil
}

// FetchFixtures pulls the full season schedule.
func (c *Client) FetchFixtures(ctx context.Context) ([]usecase.ExternalFixture, error) {
	var rows []fixtureRow
	if err := c.doJSON(ctx, pathFixtures, &rows); err != nil {
		return nil, fmt.Errorf("fetch fixtures: %w", err)
	}

	out := make([]usecase.ExternalFixture, 0, len(rows))
	for _, item := range rows {
		if item.ID <= 0 || item.Event == nil {
			// Unscheduled fixtures carry a null event; they cannot be
			// attributed to a gameweek yet.
			continue
		}
		out = append(out, usecase.ExternalFixture{
			RefID:         item.ID,
			Gameweek:      *item.Event,
			HomeTeamRefID: item.TeamH,
			AwayTeamRefID: item.TeamA,
			KickoffAt:     parseKickoff(item.KickoffTime),
			Finished:      item.Finished,
			HomeScore:     item.TeamHScore,
			AwayScore:     item.TeamAScore,
		})
	}
	return out, nil
}

// FetchPlayerHistory pulls one player's per-gameweek history. A gameweek
// absent from the response simply has not been played yet.
func (c *Client) FetchPlayerHistory(ctx context.Context, playerRefID int64) ([]usecase.ExternalPlayerGameweek, error) {
	if playerRefID <= 0 {
		return nil, fmt.Errorf("player reference id must be greater than zero")
	}

	var envelope elementSummaryEnvelope
	path := fmt.Sprintf(pathElementSummary, playerRefID)
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return nil, fmt.Errorf("fetch element summary player_ref_id=%d: %w", playerRefID, err)
	}

	out := make([]usecase.ExternalPlayerGameweek, 0, len(envelope.History))
	for _, item := range envelope.History {
		if item.Round <= 0 {
			continue
		}
		out = append(out, usecase.ExternalPlayerGameweek{
			Gameweek:          item.Round,
			OpponentTeamRefID: item.OpponentTeam,
			WasHome:           item.WasHome,
			KickoffAt:         parseKickoff(item.KickoffTime),

			TotalPoints:              item.TotalPoints,
			Minutes:                  item.Minutes,
			GoalsScored:              item.GoalsScored,
			Assists:                  item.Assists,
			CleanSheets:              item.CleanSheets,
			GoalsConceded:            item.GoalsConceded,
			OwnGoals:                 item.OwnGoals,
			PenaltiesSaved:           item.PenaltiesSaved,
			PenaltiesMissed:          item.PenaltiesMissed,
			YellowCards:              item.YellowCards,
			RedCards:                 item.RedCards,
			Saves:                    item.Saves,
			Bonus:                    item.Bonus,
			BPS:                      item.BPS,
			Influence:                parseDecimalString(item.Influence),
			Creativity:               parseDecimalString(item.Creativity),
			Threat:                   parseDecimalString(item.Threat),
			ICTIndex:                 parseDecimalString(item.ICTIndex),
			ExpectedGoals:            parseDecimalString(item.ExpectedGoals),
			ExpectedAssists:          parseDecimalString(item.ExpectedAssists),
			ExpectedGoalInvolvements: parseDecimalString(item.ExpectedGoalInvolvements),
			ExpectedGoalsConceded:    parseDecimalString(item.ExpectedGoalsConceded),
			SelectedBy:               item.Selected,
			TransfersIn:              item.TransfersIn,
			TransfersOut:             item.TransfersOut,
		})
	}
	return out, nil
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "fpl circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: stat source is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	fullURL := c.baseURL + path
	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.circuitEnabled {
			if reqErr != nil && isFPLCircuitFailure(reqErr) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode fpl payload: %w", err)
	}

	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errFPLTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errFPLTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else {
				if isRetryableStatus(resp.StatusCode) {
					lastErr = fmt.Errorf("%w: fpl status=%d body=%s", errFPLTransient, resp.StatusCode, abbreviateBody(raw))
				} else {
					return nil, fmt.Errorf("%w: fpl status=%d body=%s", usecase.ErrSourceUnavailable, resp.StatusCode, abbreviateBody(raw))
				}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("fpl request failed")
	}
	c.logger.WarnContext(ctx, "fpl request failed", "url", fullURL, "error", lastErr)
	return nil, fmt.Errorf("%w: %v", usecase.ErrSourceUnavailable, lastErr)
}

func isFPLCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, errFPLTransient) || stderrors.Is(err, usecase.ErrSourceUnavailable)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

// parseDecimalString parses the FPL habit of serializing floats as strings.
func parseDecimalString(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return parsed
}

func parseKickoff(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}
	}
	return parsed.UTC()
}

func positionFromElementType(elementType int) string {
	switch elementType {
	case 1:
		return "GK"
	case 2:
		return "DEF"
	case 3:
		return "MID"
	case 4:
		return "FWD"
	default:
		return "MID"
	}
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
