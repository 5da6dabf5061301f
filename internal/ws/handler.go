package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mehrbod2002/coinboard/internal/models"
	"github.com/mehrbod2002/coinboard/internal/service"
	"github.com/mehrbod2002/coinboard/internal/updater"
	"github.com/rs/zerolog/log"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// AssetSource feeds chart updaters from the asset service.
type AssetSource struct {
	Service service.AssetService
}

func (s AssetSource) History(ctx context.Context, coinID string) ([]models.PricePoint, error) {
	return s.Service.GetHistory(ctx, coinID)
}

func (s AssetSource) Price(ctx context.Context, coinID string) (string, error) {
	asset, err := s.Service.GetAsset(ctx, coinID)
	if err != nil {
		return "", err
	}
	return asset.PriceUsd.String(), nil
}

type WebSocketHandler struct {
	hub    *Hub
	source updater.Source
	cfg    updater.Config
}

func NewWebSocketHandler(hub *Hub, source updater.Source, cfg updater.Config) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, source: source, cfg: cfg}
}

// HandleConnection upgrades the request and starts a live chart session.
// @Summary Live price chart stream
// @Description Websocket. Send {"action":"subscribe","coin_id":"bitcoin"} to follow a coin; every state change is pushed as a chart message.
// @Tags Live
// @Router /ws [get]
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := NewClient(uuid.New().String(), conn)
	client.Updater = updater.New(h.source, client, h.cfg)

	if !h.hub.RegisterClient(client) {
		client.Close()
		return
	}

	go h.readPump(client)
	go h.writePump(client)
}

func (h *WebSocketHandler) readPump(client *Client) {
	defer func() {
		h.hub.UnregisterClient(client)
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warn().Err(err).Str("client", client.ID).Msg("websocket read failed")
			}
			break
		}

		var socketMsg models.SocketMessage
		if err := json.Unmarshal(message, &socketMsg); err != nil {
			client.enqueue(models.ErrorResponse{Error: "Invalid message format"})
			continue
		}

		switch socketMsg.Action {
		case "subscribe":
			if socketMsg.CoinID == "" {
				client.enqueue(models.ErrorResponse{Error: "coin_id is required"})
				continue
			}
			client.enqueue(models.SubscriptionResponse{
				Status:  "success",
				Message: "Subscribed to " + socketMsg.CoinID,
				CoinID:  socketMsg.CoinID,
			})
			client.Updater.Activate(socketMsg.CoinID)

		case "unsubscribe":
			client.Updater.Deactivate()
			client.enqueue(models.SubscriptionResponse{
				Status:  "success",
				Message: "Unsubscribed",
			})

		case "retry":
			client.Updater.Retry()

		default:
			client.enqueue(models.ErrorResponse{Error: "Unknown action"})
		}
	}
}

func (h *WebSocketHandler) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case <-client.Done():
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case msg := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
