package fiber

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/lborres/inkwell/core"
)

const (
	msgInvalidBody        = "invalid request body"
	msgInvalidCredentials = "Invalid credentials"
)

// ============================================
// ERRORS
// ============================================

// statusFor maps an action error kind to its HTTP status.
func statusFor(err error) int {
	switch core.KindOf(err) {
	case core.ErrUnauthenticated:
		return http.StatusUnauthorized
	case core.ErrValidationFailed:
		return http.StatusBadRequest
	case core.ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusServiceUnavailable
	}
}

// writeError answers with the action error's message. Errors that are not
// action errors never reach the client verbatim.
func (a *Adapter) writeError(c fiber.Ctx, err error) error {
	msg := "Service unavailable"
	var ae *core.ActionError
	if errors.As(err, &ae) {
		msg = ae.Message
	} else {
		a.logger.Error("unexpected handler error", zap.String("request_id", requestIDFrom(c)), zap.Error(err))
	}
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   msg,
	})
}

// ============================================
// USERS
// ============================================

func (a *Adapter) login(c fiber.Ctx) error {
	unauthorized := func() error {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"success": false,
			"error":   msgInvalidCredentials,
		})
	}

	var input core.SignInInput
	if err := c.Bind().Body(&input); err != nil {
		return unauthorized()
	}

	result, err := a.auth.SignIn(c.Context(), input, c.IP(), c.Get(fiber.HeaderUserAgent))
	if err != nil {
		return unauthorized()
	}

	a.setSessionCookie(c, result.Token)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"user":    result.User,
		"token":   result.Token,
		"exp":     result.Session.ExpiresAt.Unix(),
	})
}

// logout always clears the cookie, even when revoking the session fails.
func (a *Adapter) logout(c fiber.Ctx) error {
	if err := a.auth.SignOut(c.Context(), a.extractToken(c)); err != nil {
		a.logger.Warn("session revocation failed", zap.String("request_id", requestIDFrom(c)), zap.Error(err))
	}

	a.clearSessionCookie(c)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Logged out",
	})
}

func (a *Adapter) me(c fiber.Ctx) error {
	data := sessionFrom(c)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"user":    data.User,
		"session": data.Session,
		"exp":     data.Session.ExpiresAt.Unix(),
	})
}

func (a *Adapter) signUp(c fiber.Ctx) error {
	var input core.SignUpInput
	if err := c.Bind().Body(&input); err != nil {
		return badRequest(c, msgInvalidBody)
	}

	user, err := a.auth.SignUp(c.Context(), input)
	if err != nil {
		return a.writeError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

func (a *Adapter) listUsers(c fiber.Ctx) error {
	page, err := a.auth.ListUsers(c.Context(), a.extractToken(c), listOptions(c))
	if err != nil {
		return a.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(page)
}

// ============================================
// POSTS
// ============================================

func (a *Adapter) listPosts(c fiber.Ctx) error {
	page, err := a.content.ListPosts(c.Context(), listOptions(c))
	if err != nil {
		return a.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(page)
}

func (a *Adapter) getPost(c fiber.Ctx) error {
	post, err := a.content.GetPost(c.Context(), c.Params("id"), depthParam(c))
	if err != nil {
		return a.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(post)
}

func (a *Adapter) createPost(c fiber.Ctx) error {
	var input core.CreatePostInput
	if err := c.Bind().Body(&input); err != nil {
		return badRequest(c, msgInvalidBody)
	}

	post, err := a.content.CreatePost(c.Context(), a.extractToken(c), input)
	if err != nil {
		return a.writeError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}

func (a *Adapter) deletePost(c fiber.Ctx) error {
	post, err := a.content.DeletePost(c.Context(), a.extractToken(c), c.Params("id"))
	if err != nil {
		return a.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}

// ============================================
// CATEGORIES
// ============================================

func (a *Adapter) listCategories(c fiber.Ctx) error {
	page, err := a.content.ListCategories(c.Context(), listOptions(c))
	if err != nil {
		return a.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(page)
}

func (a *Adapter) getCategory(c fiber.Ctx) error {
	category, err := a.content.GetCategory(c.Context(), c.Params("id"), depthParam(c))
	if err != nil {
		return a.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(category)
}

func (a *Adapter) createCategory(c fiber.Ctx) error {
	var input core.CreateCategoryInput
	if err := c.Bind().Body(&input); err != nil {
		return badRequest(c, msgInvalidBody)
	}

	category, err := a.content.CreateCategory(c.Context(), a.extractToken(c), input)
	if err != nil {
		return a.writeError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"category": category,
	})
}

func (a *Adapter) deleteCategory(c fiber.Ctx) error {
	category, err := a.content.DeleteCategory(c.Context(), a.extractToken(c), c.Params("id"))
	if err != nil {
		return a.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":  true,
		"category": category,
	})
}

// ============================================
// SEEDING
// ============================================

func (a *Adapter) initDemo(c fiber.Ctx) error {
	result, err := a.seeder.Init(c.Context())
	if err != nil {
		return a.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(result)
}

func (a *Adapter) seedDemo(c fiber.Ctx) error {
	result, err := a.seeder.Seed(c.Context())
	if err != nil {
		return a.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(result)
}

// ============================================
// QUERY PARAMETERS
// ============================================

// listOptions reads limit, page and depth. Malformed values fall back to
// the defaults.
func listOptions(c fiber.Ctx) core.ListOptions {
	return core.ListOptions{
		Limit: fiber.Query[int](c, "limit", 0),
		Page:  fiber.Query[int](c, "page", 0),
		Depth: depthParam(c),
	}
}

func depthParam(c fiber.Ctx) *int {
	if strings.TrimSpace(c.Query("depth")) == "" {
		return nil
	}
	d := fiber.Query[int](c, "depth", core.DefaultDepth)
	return &d
}
