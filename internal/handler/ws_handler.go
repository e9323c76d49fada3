package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/qbank-backend/internal/middleware"
	"github.com/stemsi/qbank-backend/internal/model"
	"github.com/stemsi/qbank-backend/internal/response"
	"github.com/stemsi/qbank-backend/internal/service"
	ws "github.com/stemsi/qbank-backend/internal/websocket"
)

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

// WSHandler streams import job progress over WebSocket.
type WSHandler struct {
	jobs     importJobs
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(jobs importJobs, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		jobs:     jobs,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// ImportJobStream godoc
// WS /ws/v1/imports/:job_id?token=...
// Sends the current job status, then every change until the job is done.
func (h *WSHandler) ImportJobStream(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	ctx := c.Request.Context()
	initial, err := h.jobs.Status(ctx, jobID)
	if err != nil {
		if errors.Is(err, service.ErrImportJobNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrJobNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if !canViewJob(middleware.GetClaims(c), initial) {
		response.Fail(c, http.StatusForbidden, response.ErrForbidden)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("job_id", jobID.String()).Logger()
	wsLog.Debug().Msg("Client connected")

	sub := h.jobs.Subscribe(ctx, jobID)
	defer sub.Close()
	// Wait for the subscription to be active so no update published after
	// the status read below can be missed.
	if _, err := sub.Receive(ctx); err != nil {
		wsLog.Error().Err(err).Msg("Subscribe failed")
		ws.WriteError(conn, "subscription failed")
		return
	}

	current, err := h.jobs.Status(ctx, jobID)
	if err != nil {
		ws.WriteError(conn, "job expired")
		return
	}
	if err := ws.WriteTyped(conn, ws.NewStatusResponse(current)); err != nil || current.State == model.JobStateDone {
		closeNormally(conn)
		return
	}

	// The reader only forwards pings; all writes happen on this goroutine.
	pings := make(chan struct{}, 1)
	gone := make(chan struct{})
	ws.KeepAlive(conn)
	go func() {
		defer close(gone)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()
	updates := sub.Channel()

	for {
		select {
		case <-gone:
			wsLog.Debug().Msg("Client disconnected")
			return
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case <-ticker.C:
			if err := ws.WritePing(conn); err != nil {
				return
			}
		case msg, ok := <-updates:
			if !ok {
				return
			}
			var st model.ImportJobStatus
			if err := json.Unmarshal([]byte(msg.Payload), &st); err != nil {
				wsLog.Error().Err(err).Msg("Malformed status event")
				continue
			}
			if err := ws.WriteTyped(conn, ws.NewStatusResponse(&st)); err != nil {
				return
			}
			if st.State == model.JobStateDone {
				closeNormally(conn)
				return
			}
		}
	}
}

func closeNormally(conn *websocket.Conn) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished"),
		time.Now().Add(time.Second))
}
