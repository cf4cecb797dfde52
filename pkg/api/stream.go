/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/carverauto/airpoller/pkg/logger"
	"github.com/carverauto/airpoller/pkg/models"
	"github.com/carverauto/airpoller/pkg/poller"
	"github.com/gorilla/websocket"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMessageSize   = 512
	clientBufferSize = 64
)

// StreamMessage is one frame sent to /api/stream subscribers.
type StreamMessage struct {
	Type      string               `json:"type"` // "channel", "status", "error"
	DeviceID  string               `json:"device_id,omitempty"`
	ChannelID string               `json:"channel_id,omitempty"`
	Value     *models.Value        `json:"value,omitempty"`
	Status    *models.DeviceStatus `json:"status,omitempty"`
	Detail    string               `json:"detail,omitempty"`
	Error     string               `json:"error,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// StreamHub fans driver updates out to websocket subscribers. It is a poller.Sink;
// publishing never blocks and subscribers that fall behind are dropped.
type StreamHub struct {
	mu      sync.Mutex
	clients map[*streamClient]struct{}
	logger  logger.Logger
	now     func() time.Time
}

var _ poller.Sink = (*StreamHub)(nil)

type streamClient struct {
	send     chan StreamMessage
	deviceID string
}

func NewStreamHub(log logger.Logger) *StreamHub {
	return &StreamHub{
		clients: make(map[*streamClient]struct{}),
		logger:  log,
		now:     time.Now,
	}
}

func (h *StreamHub) UpdateChannel(deviceID, channelID string, value models.Value) {
	h.broadcast(StreamMessage{
		Type:      "channel",
		DeviceID:  deviceID,
		ChannelID: channelID,
		Value:     &value,
		Timestamp: h.now(),
	})
}

func (h *StreamHub) UpdateStatus(deviceID string, status models.DeviceStatus, detail string) {
	h.broadcast(StreamMessage{
		Type:      "status",
		DeviceID:  deviceID,
		Status:    &status,
		Detail:    detail,
		Timestamp: h.now(),
	})
}

// Subscribers reports the number of connected clients.
func (h *StreamHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.clients)
}

func (h *StreamHub) broadcast(msg StreamMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if c.deviceID != "" && c.deviceID != msg.DeviceID {
			continue
		}

		select {
		case c.send <- msg:
		default:
			h.logger.Warn().Str("device", msg.DeviceID).Msg("Stream subscriber too slow, dropping it")
			delete(h.clients, c)
			close(c.send)
		}
	}
}

func (h *StreamHub) register(deviceID string) *streamClient {
	c := &streamClient{
		send:     make(chan StreamMessage, clientBufferSize),
		deviceID: deviceID,
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	return c
}

func (h *StreamHub) unregister(c *streamClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// handleStream upgrades to a websocket and forwards updates, optionally for a
// single device (?device=id).
func (s *APIServer) handleStream(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("device")
	if deviceID != "" {
		if _, err := s.devices.Get(deviceID); err != nil {
			s.fail(w, r, err)
			return
		}
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkWebSocketOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Failed to upgrade to WebSocket")
		return
	}

	client := s.stream.register(deviceID)

	s.logger.Debug().Str("remote_addr", r.RemoteAddr).Str("device", deviceID).Msg("Stream subscriber connected")

	go s.readPump(conn, client)

	s.writePump(conn, client)
}

// checkWebSocketOrigin allows same-host requests and the configured CORS origins.
func (s *APIServer) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if strings.HasSuffix(origin, "://"+r.Host) {
		return true
	}

	for _, o := range s.corsConfig.AllowedOrigins {
		if o == "*" || strings.EqualFold(o, origin) {
			return true
		}
	}

	return false
}

// readPump discards client frames and unregisters on disconnect.
func (s *APIServer) readPump(conn *websocket.Conn, client *streamClient) {
	defer s.stream.unregister(client)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Debug().Err(err).Msg("Stream read failed")
			}

			return
		}
	}
}

func (s *APIServer) writePump(conn *websocket.Conn, client *streamClient) {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := conn.WriteJSON(msg); err != nil {
				s.logger.Debug().Err(err).Msg("Stream write failed")
				s.stream.unregister(client)

				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.stream.unregister(client)
				return
			}
		}
	}
}
