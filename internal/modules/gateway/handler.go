package gateway

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the socket.io endpoint.
func RegisterRoutes(r gin.IRoutes, hub *Hub) {
	handler := gin.WrapH(hub.Handler())
	r.Any("/socket.io", handler)
	r.Any("/socket.io/*any", handler)
}
