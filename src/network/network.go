package network

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"ssvep-observer/src/logger"
	"ssvep-observer/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// WebsocketConnector dials and re-dials upstream websocket endpoints (signal
// gateways) with retries and quadratic backoff. The connection itself is
// handed back to the caller; the connector only owns dial policy.
// -----------------------------------------------------------------------------

type WebsocketConnector struct {
	Config *models.MConfig
	Dialer *websocket.Dialer
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewWebsocketConnector(cfg *models.MConfig, log *logger.Logger) *WebsocketConnector {
	return &WebsocketConnector{
		Config: cfg,
		Dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		Logger: log,
	}
}

// -----------------------------------------------------------------------------

// Dial connects to the given websocket URL with retries and quadratic
// backoff. Returns the established connection or the last dial error once
// retries are exhausted or the context is cancelled.
func (wc *WebsocketConnector) Dial(ctx context.Context, urlStr string) (*websocket.Conn, error) {
	maxRetries := wc.Config.Network.MaxRetries
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			backoff := time.Duration(i*i) * time.Second
			wc.Logger.Info("Reconnecting to %s in %v (attempt %d/%d)", urlStr, backoff, i+1, maxRetries+1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		conn, resp, err := wc.Dialer.DialContext(ctx, urlStr, nil)
		if err != nil {
			lastErr = err
			if resp != nil && resp.StatusCode != http.StatusSwitchingProtocols {
				lastErr = fmt.Errorf("handshake rejected with status %d: %w", resp.StatusCode, err)
			}
			wc.Logger.Info("Dial failed (attempt %d/%d): %v", i+1, maxRetries+1, lastErr)
			continue
		}

		return conn, nil
	}

	return nil, fmt.Errorf("failed to connect to %s after %d attempts: %w", urlStr, maxRetries+1, lastErr)
}
