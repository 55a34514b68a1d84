package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/jnphilipp/computer/internal/pipeline"
	"github.com/jnphilipp/computer/pkg/logger"
)

type NLUHandler struct {
	engine *pipeline.Engine
}

func NewNLUHandler(engine *pipeline.Engine) *NLUHandler {
	return &NLUHandler{
		engine: engine,
	}
}

// HandleNLU accepts the utterance via form parameters or a JSON body.
func (h *NLUHandler) HandleNLU(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text" form:"text"`
	}

	if err := c.BodyParser(&req); err != nil && req.Text == "" {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": `The parameter "text" was not given.`,
		})
	}

	text := strings.ToLower(req.Text)
	result := h.engine.Resolve(c.Context(), text, c.Get("User-Agent"))

	return c.JSON(fiber.Map{
		"response_date": responseDate(time.Now()),
		"intent":        result.Intent,
		"certainty":     result.Certainty,
		"replies":       result.Replies,
	})
}

// responseDate renders timestamps as year-month-dayThour:minute:second:
// microseconds with the numeric zone offset.
func responseDate(t time.Time) string {
	return t.Format("2006-01-02T15:04:05") +
		fmt.Sprintf(":%06d", t.Nanosecond()/1000) +
		t.Format("-0700")
}
