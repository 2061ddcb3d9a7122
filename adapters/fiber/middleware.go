package fiber

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lborres/inkwell/core"
)

const (
	HeaderRequestID = fiber.HeaderXRequestID

	localsSession = "session"
)

// requestID propagates the caller's X-Request-ID or assigns a new one.
func requestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:    HeaderRequestID,
		Generator: uuid.NewString,
	})
}

func requestIDFrom(c fiber.Ctx) string {
	return requestid.FromContext(c)
}

func (a *Adapter) accessLog(c fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	fields := []zap.Field{
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("latency", time.Since(start)),
		zap.String("request_id", requestIDFrom(c)),
	}
	if err != nil {
		a.logger.Warn("request failed", append(fields, zap.Error(err))...)
		return err
	}
	a.logger.Info("request", fields...)
	return nil
}

// routeGate redirects browser navigation based only on whether a session
// cookie is present. It never validates the token.
func (a *Adapter) routeGate(c fiber.Ctx) error {
	decision := a.gate.Decide(c.Cookies(a.cookie.Name) != "", c.Path())
	if !decision.Redirect {
		return c.Next()
	}
	return c.Redirect().Status(fiber.StatusTemporaryRedirect).To(decision.Location)
}

// requireSession resolves the caller's session and stores it for the
// handler, answering 401 when there is none.
func (a *Adapter) requireSession(c fiber.Ctx) error {
	data, err := a.auth.GetSession(c.Context(), a.extractToken(c))
	if err != nil {
		return a.writeError(c, err)
	}
	c.Locals(localsSession, data)
	return c.Next()
}

func sessionFrom(c fiber.Ctx) *core.SessionData {
	data, _ := c.Locals(localsSession).(*core.SessionData)
	return data
}
