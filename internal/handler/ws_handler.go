package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/jadwal-backend/internal/middleware"
	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/response"
	"github.com/stemsi/jadwal-backend/internal/schedule"
	"github.com/stemsi/jadwal-backend/internal/service"
	"github.com/stemsi/jadwal-backend/internal/validator"
	ws "github.com/stemsi/jadwal-backend/internal/websocket"
)

// checkTimeout bounds one live conflict check.
const checkTimeout = 5 * time.Second

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// ChangeSubscriber opens a class's change channel. Implemented by broker.ChangeFeed.
type ChangeSubscriber interface {
	Subscribe(ctx context.Context, classID int) *redis.PubSub
}

// WSHandler streams timetable changes of one class to connected editors and
// answers live conflict checks over the same socket.
type WSHandler struct {
	feed      ChangeSubscriber
	timetable *service.TimetableService
	log       zerolog.Logger
	upgrader  websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(feed ChangeSubscriber, timetable *service.TimetableService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		feed:      feed,
		timetable: timetable,
		log:       log.With().Str("component", "ws_handler").Logger(),
		upgrader:  buildUpgrader(allowedOrigins),
	}
}

// ClassTimetableStream godoc
// WS /ws/v1/timetable/classes/:id/stream?token=
func (h *WSHandler) ClassTimetableStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	classID, ok := intParam(c, "id")
	if !ok {
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wsLog := h.log.With().
		Int("admin_id", claims.UserID).
		Int("class_id", classID).
		Logger()

	sub := h.feed.Subscribe(ctx, classID)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		wsLog.Error().Err(err).Msg("Subscribe failed")
		_ = conn.WriteError("", "subscription failed")
		return
	}

	wsLog.Info().Msg("Editor connected")
	_ = conn.WriteTyped(ws.ReadyResponse{Event: ws.EventReady, ClassID: classID})

	go h.relay(ctx, cancel, conn, sub, wsLog)

	for {
		data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}
		if ctx.Err() != nil {
			return
		}

		var env ws.RequestEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			_ = conn.WriteError("", "invalid message")
			continue
		}

		switch env.Action {
		case ws.ActionPing:
			_ = conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		case ws.ActionCheck:
			h.handleCheck(ctx, conn, data)
		default:
			wsLog.Warn().Str("action", string(env.Action)).Msg("Unknown action")
			_ = conn.WriteError("", "unknown action: "+string(env.Action))
		}
	}
}

// relay forwards Pub/Sub messages and keeps the connection alive with pings.
// It cancels ctx when the socket or the subscription dies.
func (h *WSHandler) relay(ctx context.Context, cancel context.CancelFunc, conn *ws.Conn, sub *redis.PubSub, log zerolog.Logger) {
	defer cancel()

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()
	messages := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				_ = conn.Close()
				return
			}
		case msg, ok := <-messages:
			if !ok {
				_ = conn.Close()
				return
			}
			frame, err := changeFrame(msg.Payload)
			if err != nil {
				log.Warn().Err(err).Msg("Dropping malformed change event")
				continue
			}
			if err := conn.WriteTyped(frame); err != nil {
				_ = conn.Close()
				return
			}
		}
	}
}

func (h *WSHandler) handleCheck(ctx context.Context, conn *ws.Conn, data []byte) {
	var req ws.CheckRequest
	if err := json.Unmarshal(data, &req); err != nil {
		_ = conn.WriteError("", "invalid check payload")
		return
	}
	if fields := validator.Struct(&req.Candidate); fields != nil {
		_ = conn.WriteTyped(ws.ConflictsResponse{
			Event:     ws.EventConflicts,
			RequestID: req.RequestID,
			Conflicts: []schedule.Conflict{},
			Fields:    fields,
		})
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	conflicts, err := h.timetable.CheckConflicts(checkCtx, req.Candidate)
	if err != nil {
		_ = conn.WriteError(req.RequestID, err.Error())
		return
	}
	if conflicts == nil {
		conflicts = []schedule.Conflict{}
	}
	_ = conn.WriteTyped(ws.ConflictsResponse{
		Event:     ws.EventConflicts,
		RequestID: req.RequestID,
		OK:        len(conflicts) == 0,
		Conflicts: conflicts,
	})
}

// changeFrame decodes a Pub/Sub payload into the frame sent to editors.
// Snapshots are dropped; editors refetch what they display.
func changeFrame(payload string) (ws.ChangeResponse, error) {
	var ev model.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return ws.ChangeResponse{}, err
	}
	ev.Snapshot = nil
	return ws.ChangeResponse{Event: ws.EventChange, Change: ev}, nil
}
