// Package fiber exposes the core handlers over HTTP with gofiber/fiber.
package fiber

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/lborres/inkwell/core"
	"github.com/lborres/inkwell/pkg/logging"
	"github.com/lborres/inkwell/services"
)

type Adapter struct {
	app    *fiber.App
	logger *zap.Logger

	auth    core.AuthHandler
	content core.ContentHandler
	seeder  core.SeedHandler
	cookie  core.CookieConfig
	gate    *core.RouteGate
}

var _ core.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App, logger *zap.Logger) *Adapter {
	return &Adapter{app: app, logger: logging.OrNop(logger)}
}

// RegisterRoutes installs the request middleware and the route gate, then
// binds every endpoint to its handler by operation id.
func (a *Adapter) RegisterRoutes(h core.Handlers) error {
	if h.Auth == nil || h.Content == nil || h.Seeder == nil {
		return fmt.Errorf("fiber adapter: auth, content and seed handlers are required")
	}
	a.auth, a.content, a.seeder = h.Auth, h.Content, h.Seeder
	a.cookie = h.Cookie
	if a.cookie.Name == "" {
		a.cookie.Name = core.DefaultCookieName
	}
	a.gate = h.Gate

	a.app.Use(requestID(), a.accessLog)
	if a.gate != nil {
		a.app.Use(a.routeGate)
	}

	handlers := map[string]fiber.Handler{
		services.OpLogin:          a.login,
		services.OpLogout:         a.logout,
		services.OpMe:             a.me,
		services.OpSignUp:         a.signUp,
		services.OpListUsers:      a.listUsers,
		services.OpListPosts:      a.listPosts,
		services.OpGetPost:        a.getPost,
		services.OpCreatePost:     a.createPost,
		services.OpDeletePost:     a.deletePost,
		services.OpListCategories: a.listCategories,
		services.OpGetCategory:    a.getCategory,
		services.OpCreateCategory: a.createCategory,
		services.OpDeleteCategory: a.deleteCategory,
		services.OpInit:           a.initDemo,
		services.OpSeed:           a.seedDemo,
	}

	api := a.app.Group(h.BasePath)
	for _, ep := range h.Endpoints {
		handler, ok := handlers[ep.Metadata.OperationID]
		if !ok {
			return fmt.Errorf("fiber adapter: no handler for operation %q (%s)", ep.Metadata.OperationID, ep.Key())
		}

		if ep.Metadata.Protected {
			api.Add([]string{ep.Method}, ep.Path, a.requireSession, handler)
		} else {
			api.Add([]string{ep.Method}, ep.Path, handler)
		}
		a.logger.Debug("route registered",
			zap.String("method", ep.Method),
			zap.String("path", h.BasePath+ep.Path),
			zap.String("operation", ep.Metadata.OperationID),
		)
	}

	return nil
}
