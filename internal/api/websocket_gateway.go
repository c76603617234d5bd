// Package api exposes the chat engine over HTTP: a websocket chat
// endpoint plus the settings surface for the merchant agent URL. Each
// websocket connection gets its own engine and session state; sessions
// are never shared.
package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/agentic-commerce/shopping-assistant/internal/bus"
	"github.com/agentic-commerce/shopping-assistant/internal/chat"
	"github.com/agentic-commerce/shopping-assistant/internal/config"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local chat surface; the hosting app fronts any real origin policy.
		return true
	},
}

// ClientMessage is one frame from the chat client.
type ClientMessage struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

const messageTypeChat = "CHAT_MESSAGE"

// EngineFactory builds a fresh engine bound to the given event bus, one
// per websocket connection.
type EngineFactory func(eventBus *bus.EventBus) (*chat.Engine, error)

// Gateway serves the chat API.
type Gateway struct {
	factory  EngineFactory
	agentURL *config.Setting
	logger   *logrus.Logger
	port     int
}

func NewGateway(port int, factory EngineFactory, agentURL *config.Setting, logger *logrus.Logger) *Gateway {
	return &Gateway{
		factory:  factory,
		agentURL: agentURL,
		logger:   logger,
		port:     port,
	}
}

// Router assembles the gin engine.
func (gw *Gateway) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/settings/agent-url", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"url": gw.agentURL.Get()})
	})
	r.POST("/settings/agent-url", gw.handleSetAgentURL)
	r.GET("/ws/chat", gw.handleChat)

	return r
}

// Run starts the gateway and blocks.
func (gw *Gateway) Run() error {
	addr := fmt.Sprintf(":%d", gw.port)
	gw.logger.Infof("Chat gateway starting on %s", addr)
	return gw.Router().Run(addr)
}

func (gw *Gateway) handleSetAgentURL(c *gin.Context) {
	var body struct {
		URL string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gw.agentURL.Set(body.URL)
	c.JSON(http.StatusOK, gin.H{"url": body.URL})
}

// handleChat upgrades the connection and runs one conversation over it.
// The read loop is strictly sequential: a user message is fully
// processed before the next frame is read, mirroring the single-session
// concurrency model.
func (gw *Gateway) handleChat(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		gw.logger.Errorf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	var writeMu sync.Mutex
	writeEvent := func(event bus.Event) {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(event); err != nil {
			gw.logger.Debugf("WebSocket write failed: %v", err)
		}
	}

	eventBus := bus.NewEventBus(gw.logger)
	defer eventBus.Stop()
	eventBus.SubscribeAll(writeEvent)

	engine, err := gw.factory(eventBus)
	if err != nil {
		gw.logger.Errorf("Failed to build chat engine: %v", err)
		writeEvent(bus.Event{Type: bus.EventChatMessage, Payload: map[string]interface{}{
			"role": "system",
			"text": "The assistant is unavailable right now.",
		}})
		return
	}

	ctx := c.Request.Context()
	if err := engine.SetAgentURL(ctx, gw.agentURL.Get()); err != nil {
		// Session stays usable; the engine reports the missing
		// connection per tool call until a valid URL is set.
		gw.logger.Warnf("Merchant agent discovery failed: %v", err)
	}
	// The subscription must not outlive the connection or the engine
	// would be kept alive and re-discovered on every later URL change.
	unsubscribe := gw.agentURL.Subscribe(func(url string) {
		if err := engine.SetAgentURL(context.Background(), url); err != nil {
			gw.logger.Warnf("Re-discovery after URL change failed: %v", err)
		}
	})
	defer unsubscribe()

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			gw.logger.Debugf("WebSocket closed: %v", err)
			return
		}
		if msg.Type != messageTypeChat {
			gw.logger.Warnf("Unknown client message type: %s", msg.Type)
			continue
		}
		text, _ := msg.Payload["text"].(string)
		if text == "" {
			continue
		}

		reply, err := engine.Respond(ctx, text)
		if err != nil {
			gw.logger.Errorf("Turn failed: %v", err)
			writeEvent(bus.Event{Type: bus.EventChatMessage, Payload: map[string]interface{}{
				"role": "system",
				"text": "An error occurred.",
			}})
			continue
		}
		// The engine already published the reply as a chat event; log
		// for the server operator.
		gw.logger.Debugf("Turn complete: %d chars", len(reply))
	}
}
