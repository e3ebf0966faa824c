package ws

import (
	"log"
	"net/http"
	"strings"

	"skillbridge/internal/delivery/http/middleware"
	"skillbridge/internal/pkg/jwt"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type Handler struct {
	hub    *Hub
	jwt    jwt.Service
	logger *log.Logger
}

func NewHandler(hub *Hub, jwtSvc jwt.Service, logger *log.Logger) *Handler {
	return &Handler{hub: hub, jwt: jwtSvc, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// HandleSubmissionsWS streams submission changes for the caller. Browsers
// cannot set headers on an upgrade, so the access_token query parameter is
// accepted alongside a bearer header.
func (h *Handler) HandleSubmissionsWS(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}

	token, ok := upgradeToken(c)
	if !ok {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Unauthorized", nil, nil)
	}
	claims, err := h.jwt.ValidateToken(token, jwt.TokenTypeAccess)
	if err != nil || claims.UserID == uuid.Nil {
		return middleware.NewAppError(fiber.StatusUnauthorized, "Invalid token", nil, err)
	}
	userID := claims.UserID

	fiberHandler := adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if h.logger != nil {
				h.logger.Printf("[Realtime] upgrade failed user_id=%s err=%v", userID, err)
			}
			return
		}

		client := NewClient(h.hub, conn, userID)
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})

	return fiberHandler(c)
}

func upgradeToken(c fiber.Ctx) (string, bool) {
	if token := strings.TrimSpace(c.Query("access_token")); token != "" {
		return token, true
	}
	return middleware.BearerToken(c.Get(fiber.HeaderAuthorization))
}
