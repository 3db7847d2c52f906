// AngelaMos | 2026
// handler.go

package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/taskboard/internal/access"
	"github.com/carterperez-dev/taskboard/internal/middleware"
)

const (
	actionJoin  = "join"
	actionLeave = "leave"

	writeTimeout  = 10 * time.Second
	pingInterval  = 30 * time.Second
	readLimit     = 4096
	defaultBuffer = 64
)

type HandlerConfig struct {
	AllowedOrigins []string
	SendBuffer     int
}

type Handler struct {
	hub     *Hub
	checker *access.Checker
	cfg     HandlerConfig
	logger  *slog.Logger
}

func NewHandler(
	hub *Hub,
	checker *access.Checker,
	cfg HandlerConfig,
	logger *slog.Logger,
) *Handler {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = defaultBuffer
	}

	return &Handler{
		hub:     hub,
		checker: checker,
		cfg:     cfg,
		logger:  logger,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.With(authenticator).Get("/realtime", h.Serve)
}

// Serve upgrades the request and pumps messages until either side closes.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	isAdmin := middleware.IsAdmin(r.Context())

	// the server's read/write timeouts would otherwise cut the socket
	rc := http.NewResponseController(w)
	_ = rc.SetReadDeadline(time.Time{})  //nolint:errcheck // unsupported writers keep defaults
	_ = rc.SetWriteDeadline(time.Time{}) //nolint:errcheck // unsupported writers keep defaults

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.cfg.AllowedOrigins,
	})
	if err != nil {
		h.logger.Warn("websocket accept failed", "error", err, "user_id", userID)
		return
	}
	conn.SetReadLimit(readLimit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := h.hub.Register(userID, h.cfg.SendBuffer)
	defer h.hub.Unregister(client)

	h.logger.Debug("realtime client connected", "client_id", client.ID, "user_id", userID)

	go h.writePump(ctx, cancel, conn, client)

	status := h.readPump(ctx, conn, client, isAdmin)
	cancel()

	_ = conn.Close(status, "") //nolint:errcheck // peer may already be gone

	h.logger.Debug("realtime client disconnected", "client_id", client.ID, "user_id", userID)
}

func (h *Handler) readPump(
	ctx context.Context,
	conn *websocket.Conn,
	client *Client,
	isAdmin bool,
) websocket.StatusCode {
	for {
		var msg clientMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if s := websocket.CloseStatus(err); s != -1 {
				return websocket.StatusNormalClosure
			}
			var syntaxErr *json.SyntaxError
			if errors.As(err, &syntaxErr) {
				return websocket.StatusUnsupportedData
			}
			return websocket.StatusGoingAway
		}

		h.hub.Direct(client, h.handleMessage(ctx, client, msg, isAdmin))
	}
}

func (h *Handler) handleMessage(
	ctx context.Context,
	client *Client,
	msg clientMessage,
	isAdmin bool,
) []byte {
	if msg.ProjectID == "" {
		return encode(serverMessage{Type: "error", Message: "project_id is required"})
	}

	switch msg.Action {
	case actionJoin:
		if _, err := h.checker.Require(ctx, msg.ProjectID, client.UserID, isAdmin, access.CapView); err != nil {
			return encode(serverMessage{Type: "error", ProjectID: msg.ProjectID, Message: "project not found"})
		}
		h.hub.Join(client, msg.ProjectID)
		return encode(serverMessage{Type: "joined", ProjectID: msg.ProjectID})
	case actionLeave:
		h.hub.Leave(client, msg.ProjectID)
		return encode(serverMessage{Type: "left", ProjectID: msg.ProjectID})
	default:
		return encode(serverMessage{Type: "error", Message: "unknown action"})
	}
}

func (h *Handler) writePump(
	ctx context.Context,
	cancel context.CancelFunc,
	conn *websocket.Conn,
	client *Client,
) {
	defer cancel()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-client.Messages():
			if !ok {
				return
			}
			wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(wctx, websocket.MessageText, msg)
			wcancel()
			if err != nil {
				return
			}
		case <-ticker.C:
			pctx, pcancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Ping(pctx)
			pcancel()
			if err != nil {
				return
			}
		}
	}
}

func encode(msg serverMessage) []byte {
	b, _ := json.Marshal(msg) //nolint:errcheck // fixed shape, cannot fail
	return b
}
