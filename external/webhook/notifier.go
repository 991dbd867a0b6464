package webhook

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fplstats/fdr-engine/internal/platform/id"
	"github.com/fplstats/fdr-engine/internal/platform/resilience"
	"github.com/fplstats/fdr-engine/internal/usecase"
)

var errWebhookTransient = crerr.New("webhook transient failure")

type NotifierConfig struct {
	TargetURL      string
	Token          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Notifier posts rating-refresh summaries to a configured dashboard
// webhook. Delivery is fire-and-forget from the pipeline's point of view.
type Notifier struct {
	client         *fasthttp.Client
	targetURL      string
	token          string
	timeout        time.Duration
	logger         *slog.Logger
	ids            id.Generator
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewNotifier(cfg NotifierConfig, logger *slog.Logger) *Notifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Notifier{
		client: &fasthttp.Client{
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		targetURL:      strings.TrimSpace(cfg.TargetURL),
		token:          strings.TrimSpace(cfg.Token),
		timeout:        timeout,
		logger:         logger,
		ids:            id.NewRandomGenerator(),
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (n *Notifier) NotifyRatingsRefreshed(ctx context.Context, summary usecase.RatingRefreshSummary) error {
	if n.circuitEnabled {
		if err := n.breaker.Allow(); err != nil {
			n.logger.WarnContext(ctx, "webhook circuit breaker rejected request", "state", n.breaker.State())
			return fmt.Errorf("webhook is temporarily unavailable: %w", err)
		}
	}

	targetURL, err := validateHTTPBaseURL(n.targetURL)
	if err != nil {
		return crerr.Wrap(err, "invalid WEBHOOK_TARGET_URL")
	}

	body, err := sonic.Marshal(summary)
	if err != nil {
		return crerr.Wrap(err, "marshal refresh summary")
	}

	eventID, err := n.ids.NewID()
	if err != nil {
		return crerr.Wrap(err, "generate event id")
	}

	preview := buildCurlPreview(targetURL, string(body), n.token != "")
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("webhook.target_url", targetURL),
			attribute.String("webhook.event_id", eventID),
			attribute.String("webhook.request_curl_preview", preview),
		)
	}
	n.logger.InfoContext(ctx, "webhook publish request", "target_url", targetURL, "event_id", eventID, "curl_preview", preview)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(targetURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("X-Event-Id", eventID)
	if n.token != "" {
		req.Header.Set("Authorization", "Bearer "+n.token)
	}
	req.SetBody(body)

	if err := n.client.DoTimeout(req, resp, n.timeout); err != nil {
		callErr := fmt.Errorf("%w: post refresh summary target_url=%s: %v", errWebhookTransient, targetURL, err)
		n.recordCircuitResult(callErr)
		return callErr
	}

	status := resp.StatusCode()
	if status/100 != 2 {
		raw := strings.TrimSpace(string(resp.Body()))
		if isRetryableStatus(status) {
			callErr := fmt.Errorf("%w: post refresh summary status=%d target_url=%s body=%s", errWebhookTransient, status, targetURL, raw)
			n.recordCircuitResult(callErr)
			return callErr
		}

		callErr := fmt.Errorf("post refresh summary status=%d target_url=%s body=%s", status, targetURL, raw)
		n.recordCircuitResult(callErr)
		return callErr
	}

	n.logger.InfoContext(ctx, "webhook published", "target_url", targetURL, "event_id", eventID, "gameweek", summary.Gameweek)
	n.recordCircuitResult(nil)
	return nil
}

func (n *Notifier) recordCircuitResult(err error) {
	if !n.circuitEnabled || n.breaker == nil {
		return
	}
	if err == nil {
		n.breaker.RecordSuccess()
		return
	}
	if stderrors.Is(err, errWebhookTransient) {
		n.breaker.RecordFailure()
		return
	}
	n.breaker.RecordSuccess()
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == fasthttp.StatusRequestTimeout ||
		statusCode == fasthttp.StatusTooManyRequests ||
		statusCode >= fasthttp.StatusInternalServerError
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func buildCurlPreview(targetURL, body string, withToken bool) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}

	appendPart("curl")
	appendPart("-X")
	appendPart("POST")
	appendPart(shellQuote(targetURL))
	appendPart("-H")
	appendPart(shellQuote("Content-Type: application/json"))
	if withToken {
		appendPart("-H")
		appendPart(shellQuote("Authorization: Bearer ***"))
	}
	appendPart("-d")
	appendPart(shellQuote(truncateForLog(body, 4096)))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
