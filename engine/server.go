package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"

	"github.com/sicko7947/slims"
)

// App returns the callback server, for mounting or testing
func (e *Engine) App() *fiber.App {
	return e.app
}

// registerRoutes registers all HTTP routes
func (e *Engine) registerRoutes(app *fiber.App) {
	// Health check endpoint
	app.Get("/health", func(c fiber.Ctx) error {
		running, err := e.store.List(context.Background(), slims.RunFilter{
			Status: slims.ToPtr(slims.StepStatusRunning),
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"status":   "healthy",
			"instance": e.client.Name(),
			"flows":    len(e.Flows()),
			"running":  len(running),
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(e.metrics.handler()))

	// Redirect target of the authorization code flow
	app.Get("/:instance/token", e.handleToken)

	// Step callbacks
	app.Post("/:instance/:flow/:step", e.handleCallback)
}

// handleCallback runs one step for the server
func (e *Engine) handleCallback(c fiber.Ctx) error {
	if c.Params("instance") != e.client.Name() {
		return e.reply(c, fiber.StatusNotFound, fiber.Map{
			"error": "Unknown instance",
		})
	}

	// Params and body are only valid during the request
	flowID := strings.Clone(c.Params("flow"))
	stepParam := strings.Clone(c.Params("step"))
	body := append([]byte(nil), c.Body()...)

	index, err := strconv.Atoi(stepParam)
	if err != nil || index < 0 {
		return e.reply(c, fiber.StatusNotFound, fiber.Map{
			"error": (&slims.RouteNotFoundError{Route: flowID + "/" + stepParam}).Error(),
		})
	}

	value, err := e.Execute(context.Background(), flowID, index, body)
	switch {
	case slims.IsRouteNotFound(err):
		return e.reply(c, fiber.StatusNotFound, fiber.Map{"error": err.Error()})
	case slims.IsInvalidPayload(err):
		return e.reply(c, fiber.StatusBadRequest, fiber.Map{"error": err.Error()})
	case err != nil:
		return e.reply(c, fiber.StatusInternalServerError, fiber.Map{"error": err.Error()})
	}

	data, err := encodeResult(value)
	if err != nil {
		e.logger.Error().Err(err).Str("flow_id", flowID).Int("index", index).Msg("Failed to encode step result")
		return e.reply(c, fiber.StatusInternalServerError, fiber.Map{"error": err.Error()})
	}

	e.metrics.recordCallback(strconv.Itoa(fiber.StatusOK))
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(data)
}

// handleToken exchanges the authorization code sent by the server
func (e *Engine) handleToken(c fiber.Ctx) error {
	if c.Params("instance") != e.client.Name() {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown instance",
		})
	}

	code := c.Query("code")
	if code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing authorization code",
		})
	}

	state := strings.Clone(c.Query("state"))
	if err := e.HandleOAuthCode(context.Background(), strings.Clone(code), state); err != nil {
		status := fiber.StatusBadGateway
		switch {
		case errors.Is(err, slims.ErrAuthorizationState):
			status = fiber.StatusForbidden
		case slims.IsConfigError(err):
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.SendString(fmt.Sprintf("Instance %q registered", e.client.Name()))
}

// reply writes a callback error response and counts it
func (e *Engine) reply(c fiber.Ctx, status int, body fiber.Map) error {
	e.metrics.recordCallback(strconv.Itoa(status))
	return c.Status(status).JSON(body)
}
