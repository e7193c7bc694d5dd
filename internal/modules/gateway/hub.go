// Package gateway pushes realtime notifications to users over socket.io.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	pkgredis "github.com/panotour/core/internal/pkg/redis"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

// NewHub builds a hub. rc may be nil for a single instance deployment.
func NewHub(rc *pkgredis.Client, logger *zap.Logger, validate TokenValidator) *Hub {
	h := &Hub{
		sockets:  make(map[int64]map[socketio.SocketId]*socketio.Socket),
		outbound: make(chan Message, outboundBuffer),
		rc:       rc,
		logger:   logger.Named("gateway"),
		sio:      socketio.NewServer(nil, nil),
		validate: validate,
	}
	h.registerNamespace()
	return h
}

// Run pumps outbound pushes until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rc != nil {
		go h.subscribeRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			h.sio.Close(nil)
			return

		case msg := <-h.outbound:
			if h.rc == nil {
				h.deliver(msg)
				continue
			}
			data, err := json.Marshal(msg)
			if err != nil {
				h.logger.Warn("gateway encode failed", zap.Error(err))
				continue
			}
			if err := h.rc.Publish(ctx, redisChanNotification, string(data)); err != nil {
				h.logger.Warn("gateway publish failed, delivering locally", zap.Error(err))
				h.deliver(msg)
			}
		}
	}
}

// PushToUser queues event for every socket of userID. It never blocks; when
// the queue is full the push is dropped and logged.
func (h *Hub) PushToUser(_ context.Context, userID int64, event string, payload interface{}) {
	select {
	case h.outbound <- Message{Event: event, Payload: payload, UserID: userID}:
	default:
		h.logger.Warn("gateway queue full, push dropped", zap.Int64("user_id", userID), zap.String("event", event))
	}
}

func (h *Hub) deliver(msg Message) {
	h.mu.RLock()
	targets := make([]*socketio.Socket, 0, len(h.sockets[msg.UserID]))
	for _, s := range h.sockets[msg.UserID] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		if err := s.Emit("message", gatewayPayload{Type: msg.Event, Data: msg.Payload}); err != nil {
			h.logger.Debug("gateway emit failed", zap.Int64("user_id", msg.UserID), zap.Error(err))
		}
	}
}

// subscribeRedis delivers pushes published by any instance, this one included.
func (h *Hub) subscribeRedis(ctx context.Context) {
	pubsub := h.rc.Subscribe(ctx, redisChanNotification)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return

		case redisMsg, ok := <-ch:
			if !ok {
				return
			}
			var msg Message
			if err := json.Unmarshal([]byte(redisMsg.Payload), &msg); err != nil {
				continue
			}
			h.deliver(msg)
		}
	}
}

func (h *Hub) attach(userID int64, s *socketio.Socket) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.sockets[userID]
	if !ok {
		set = make(map[socketio.SocketId]*socketio.Socket)
		h.sockets[userID] = set
	}
	set[s.Id()] = s
}

func (h *Hub) detach(userID int64, id socketio.SocketId) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.sockets[userID]
	delete(set, id)
	if len(set) == 0 {
		delete(h.sockets, userID)
	}
}

// OnlineCount returns how many sockets userID has open on this instance.
func (h *Hub) OnlineCount(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sockets[userID])
}

// Handler returns the socket.io HTTP handler mounted at /socket.io.
func (h *Hub) Handler() http.Handler {
	return h.sio.ServeHandler(nil)
}

func userRoom(userID int64) socketio.Room {
	return socketio.Room("user:" + strconv.FormatInt(userID, 10))
}
