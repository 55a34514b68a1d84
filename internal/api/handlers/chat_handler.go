package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/jnphilipp/computer/internal/pipeline"
	"github.com/jnphilipp/computer/pkg/logger"
)

// ChatHandler serves the continuation path over a websocket: each inbound
// chat message is answered with the generated suffix, streamed word-wise.
type ChatHandler struct {
	engine *pipeline.Engine
}

func NewChatHandler(engine *pipeline.Engine) *ChatHandler {
	return &ChatHandler{
		engine: engine,
	}
}

type chatMessage struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func (h *ChatHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("Chat connection established")

	defer func() {
		c.Close()
		logger.Info("Chat connection closed")
	}()

	for {
		var msg chatMessage
		if err := c.ReadJSON(&msg); err != nil {
			logger.Debug("Chat connection read failed", zap.Error(err))
			break
		}

		if msg.Type != "chat" {
			continue
		}

		reply, err := h.engine.Chat(context.Background(), strings.ToLower(msg.Content))
		if err != nil {
			logger.Error("Chat generation failed", zap.Error(err))
			h.send(c, "error", "Failed to generate a reply")
			continue
		}

		if err := h.stream(c, reply); err != nil {
			logger.Error("Failed to stream chat reply", zap.Error(err))
			break
		}
	}
}

func (h *ChatHandler) stream(c *websocket.Conn, reply string) error {
	words := strings.Fields(reply)
	for i, word := range words {
		chunk := word
		if i < len(words)-1 {
			chunk += " "
		}
		if err := h.send(c, "chunk", chunk); err != nil {
			return err
		}
	}
	return h.send(c, "complete", reply)
}

func (h *ChatHandler) send(c *websocket.Conn, msgType, content string) error {
	return c.WriteJSON(chatMessage{Type: msgType, Content: content})
}
