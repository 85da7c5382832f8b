package main

import (
	"context"
	"net/http"
	"time"

	"crmrelay/internal/httputil"
	"crmrelay/internal/metrics"
	"crmrelay/internal/service"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/sirupsen/logrus"
)

const eventWriteTimeout = 10 * time.Second

// handleEvents streams dispatched message records to dashboard clients
// over a WebSocket. Slow consumers miss events rather than block the
// dispatcher; the hub drops on full buffers.
func (s *Server) handleEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			s.logger.WithError(err).Warn("WebSocket accept failed")
			return
		}
		defer conn.Close(websocket.StatusInternalError, "stream closed")

		clientIP := httputil.GetClientIP(r)
		s.logger.WithFields(logrus.Fields{
			service.LogFieldRemoteIP: clientIP,
		}).Info("Event stream client connected")

		metrics.IncrementCounter("event_stream_connections_total", nil, "Total event stream connections")
		metrics.SetGauge("event_stream_subscribers", float64(s.hub.SubscriberCount()+1), nil, "Active event stream subscribers")

		events, cancel := s.hub.Subscribe()
		defer cancel()

		defer func() {
			metrics.SetGauge("event_stream_subscribers", float64(s.hub.SubscriberCount()), nil, "Active event stream subscribers")
			s.logger.WithFields(logrus.Fields{
				service.LogFieldRemoteIP: clientIP,
			}).Info("Event stream client disconnected")
		}()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				conn.Close(websocket.StatusNormalClosure, "")
				return
			case msg, ok := <-events:
				if !ok {
					conn.Close(websocket.StatusGoingAway, "server shutting down")
					return
				}

				writeCtx, writeCancel := context.WithTimeout(ctx, eventWriteTimeout)
				err := wsjson.Write(writeCtx, conn, msg)
				writeCancel()
				if err != nil {
					s.logger.WithError(err).Debug("Event stream write failed, dropping client")
					return
				}
			}
		}
	}
}
