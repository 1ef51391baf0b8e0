package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"checkin/internal/notify"
)

// Worker tails the live change feed over the push channel and logs every
// change event, giving operators a terminal view of the dashboard stream.
func main() {
	logger := logrus.New()

	wsURL := os.Getenv("CHECKIN_WS_URL")
	if wsURL == "" {
		wsURL = "ws://localhost:8080/ws/records"
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	for ctx.Err() == nil {
		if err := tail(ctx, wsURL, logger); err != nil && ctx.Err() == nil {
			logger.WithError(err).Warn("feed disconnected, retrying")
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
			}
		}
	}
	logger.Info("worker stopped")
}

// tail follows one websocket session until it drops or ctx is cancelled.
func tail(ctx context.Context, wsURL string, logger *logrus.Logger) error {
	dialCtx, dialCancel := context.WithTimeout(ctx, 5*time.Second)
	defer dialCancel()
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	logger.WithField("url", wsURL).Info("following change feed")

	// The watcher must not outlive the session, or one goroutine would
	// pile up per reconnect.
	sessionDone := make(chan struct{})
	defer close(sessionDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-sessionDone:
		}
	}()

	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var change notify.Change
		if err := json.Unmarshal(frame, &change); err != nil {
			logger.WithError(err).Warn("unparseable change frame")
			continue
		}
		logger.WithFields(logrus.Fields{
			"event": change.Type,
			"data":  change.Data,
		}).Info("change")
	}
}
