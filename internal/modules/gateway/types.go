package gateway

import (
	"sync"

	pkgredis "github.com/panotour/core/internal/pkg/redis"
	socketio "github.com/zishang520/socket.io/v2/socket"
	"go.uber.org/zap"
)

const (
	namespaceNotification = "/notification"
	redisChanNotification = "panotour:gateway:notification"

	eventConnect      = "GATEWAY_CONNECT"
	eventAuthFailed   = "AUTH_FAILED"

	outboundBuffer = 256
)

// Message is the envelope used for user pushes and Redis fan-out.
type Message struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
	UserID  int64       `json:"userId"`
}

type gatewayPayload struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// TokenValidator resolves a bearer token to a user id.
type TokenValidator func(token string) (int64, bool)

// Hub delivers per-user pushes to connected socket.io clients. With Redis
// configured, pushes go through pub/sub so every instance delivers to its own
// sockets.
type Hub struct {
	mu      sync.RWMutex
	sockets map[int64]map[socketio.SocketId]*socketio.Socket

	outbound chan Message

	rc       *pkgredis.Client
	logger   *zap.Logger
	sio      *socketio.Server
	validate TokenValidator
}
