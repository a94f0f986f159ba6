package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/polly-backend/internal/broker"
	"github.com/stemsi/polly-backend/internal/service"
	ws "github.com/stemsi/polly-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
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

// WSHandler streams live survey statistics over WebSocket.
type WSHandler struct {
	surveyService *service.SurveyService
	broker        broker.Broker
	pushInterval  time.Duration
	log           zerolog.Logger
	upgrader      websocket.Upgrader
}

// NewWSHandler creates a new WSHandler. A zero pushInterval disables the
// periodic refresh; snapshots are then sent only on new responses.
func NewWSHandler(
	surveyService *service.SurveyService,
	b broker.Broker,
	pushInterval time.Duration,
	log zerolog.Logger,
	allowedOrigins []string,
) *WSHandler {
	return &WSHandler{
		surveyService: surveyService,
		broker:        b,
		pushInterval:  pushInterval,
		log:           log.With().Str("component", "ws_handler").Logger(),
		upgrader:      buildUpgrader(allowedOrigins),
	}
}

// SurveyStatsStream godoc
// WS /ws/v1/surveys/:id/stats
// Sends a statistics snapshot on connect, after every new response and on
// a fixed interval. Clients may send {"action":"refresh"} or {"action":"ping"}.
func (h *WSHandler) SurveyStatsStream(c *gin.Context) {
	surveyID, ok := parseSurveyID(c)
	if !ok {
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("survey_id", surveyID.String()).Logger()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	if !h.pushStats(ctx, conn, wsLog, surveyID) {
		return
	}

	events, unsubscribe, err := h.broker.Subscribe(ctx, surveyID)
	if err != nil {
		wsLog.Error().Err(err).Msg("Subscribe failed")
		_ = ws.WriteError(conn, "live updates unavailable")
		closeConn(conn, websocket.CloseInternalServerErr)
		return
	}
	defer unsubscribe()

	actions := make(chan ws.Action, 4)
	go readActions(conn, wsLog, cancel, actions)

	var tick <-chan time.Time
	if h.pushInterval > 0 {
		ticker := time.NewTicker(h.pushInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	wsLog.Info().Msg("Stats stream attached")

	for {
		select {
		case <-ctx.Done():
			wsLog.Debug().Msg("Stats stream detached")
			return

		case _, open := <-events:
			if !open {
				wsLog.Info().Msg("Broker closed subscription")
				closeConn(conn, websocket.CloseGoingAway)
				return
			}
			drain(events)
			if !h.pushStats(ctx, conn, wsLog, surveyID) {
				return
			}

		case <-tick:
			if !h.pushStats(ctx, conn, wsLog, surveyID) {
				return
			}

		case action := <-actions:
			var err error
			switch action {
			case ws.ActionPing:
				err = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			case ws.ActionRefresh:
				if !h.pushStats(ctx, conn, wsLog, surveyID) {
					return
				}
			default:
				err = ws.WriteError(conn, "unknown action: "+string(action))
			}
			if err != nil {
				return
			}
		}
	}
}

// pushStats sends a fresh snapshot. It returns false once the stream
// should end, either because the client is gone or the survey is.
func (h *WSHandler) pushStats(ctx context.Context, conn *websocket.Conn, log zerolog.Logger, surveyID uuid.UUID) bool {
	stats, err := h.surveyService.GetStatistics(ctx, surveyID)
	if err != nil {
		msg := "statistics unavailable"
		if errors.Is(err, service.ErrSurveyNotFound) {
			msg = "survey not found"
		} else {
			log.Error().Err(err).Msg("Statistics failed")
		}
		_ = ws.WriteError(conn, msg)
		closeConn(conn, websocket.ClosePolicyViolation)
		return false
	}

	if err := ws.WriteStats(conn, stats); err != nil {
		log.Debug().Err(err).Msg("Stats write failed")
		return false
	}
	return true
}

// readActions forwards client actions until the connection fails, then
// cancels the stream.
func readActions(conn *websocket.Conn, log zerolog.Logger, cancel context.CancelFunc, actions chan<- ws.Action) {
	defer cancel()
	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}
		select {
		case actions <- msg.Action:
		default:
		}
	}
}

func drain(events <-chan broker.Event) {
	for {
		select {
		case _, open := <-events:
			if !open {
				return
			}
		default:
			return
		}
	}
}

func closeConn(conn *websocket.Conn, code int) {
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, ""),
		time.Now().Add(time.Second))
}
