package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"journeylens/api/particles"
	"journeylens/api/theme"
)

const fieldWriteWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// fieldMessage is what clients send on the field socket. Only "resize" is
// understood; other types are ignored.
type fieldMessage struct {
	Type string `json:"type"`
	particles.Size
}

type frameMessage struct {
	Type  string          `json:"type"`
	Theme string          `json:"theme"`
	Frame particles.Frame `json:"frame"`
}

type FieldHandlers struct {
	Theme    *theme.Flag
	Count    int
	Interval time.Duration
	logger   *zap.Logger
}

func NewFieldHandlers(flag *theme.Flag, count int, interval time.Duration, logger *zap.Logger) *FieldHandlers {
	return &FieldHandlers{Theme: flag, Count: count, Interval: interval, logger: logger}
}

func parseHostSize(c *gin.Context) (particles.Size, error) {
	var s particles.Size
	for _, p := range []struct {
		name string
		dst  *float64
	}{
		{"vw", &s.ViewportWidth},
		{"vh", &s.ViewportHeight},
		{"ch", &s.ContentHeight},
	} {
		v := c.Query(p.name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return particles.Size{}, errors.New("invalid '" + p.name + "' parameter. Must be a non-negative number.")
		}
		*p.dst = f
	}
	return s, nil
}

// StreamField upgrades to a websocket and streams one particle field per
// connection. The host size comes from ?vw, ?vh and ?ch; later changes
// arrive as resize messages.
func (h *FieldHandlers) StreamField(c *gin.Context) {
	host, err := parseHostSize(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("field websocket upgrade failed", zap.Error(err))
		return
	}

	clientID := uuid.New().String()
	logger := h.logger.With(zap.String("client_id", clientID))
	logger.Info("field client connected", zap.Float64("vw", host.ViewportWidth), zap.Float64("vh", host.ViewportHeight))

	recorder := &particles.Recorder{}
	field := particles.NewField(particles.WithCount(h.Count), particles.WithTheme(h.Theme))
	loop := particles.NewLoop(field, recorder, particles.LoopConfig{
		Host:     host,
		Interval: h.Interval,
		Logger:   logger,
		OnFrame: func(uint64) error {
			conn.SetWriteDeadline(time.Now().Add(fieldWriteWait))
			return conn.WriteJSON(frameMessage{Type: "frame", Theme: h.Theme.Name(), Frame: recorder.Frame()})
		},
	})

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		defer conn.Close()
		err := loop.Run(ctx)
		conn.SetWriteDeadline(time.Now().Add(fieldWriteWait))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		return err
	})
	g.Go(func() error {
		for {
			var msg fieldMessage
			if err := conn.ReadJSON(&msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					return err
				}
				return errClientGone
			}
			if msg.Type == "resize" {
				loop.Resize(msg.Size)
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errClientGone) {
		logger.Debug("field stream ended", zap.Error(err))
	}
	logger.Info("field client disconnected")
}

// errClientGone ends the reader when the socket closes, which in turn stops
// the frame loop.
var errClientGone = errors.New("field client gone")
