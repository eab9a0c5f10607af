// Package server is the fiber HTTP surface over the service layer. It
// owns token issuance, actor binding and error-to-status mapping; every
// business rule stays in the services.
package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"go.uber.org/zap"

	"github.com/infoyupay/gang-comisiones-backend/internal/apperr"
	"github.com/infoyupay/gang-comisiones-backend/internal/config"
	"github.com/infoyupay/gang-comisiones-backend/internal/service"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage"
)

// Server wires handlers and middleware over one fiber app.
type Server struct {
	cfg      config.Config
	services *service.Services
	store    storage.Store
	log      *zap.SugaredLogger
	app      *fiber.App
}

// New builds the fiber app with all routes registered.
func New(cfg config.Config, services *service.Services, store storage.Store, log *zap.SugaredLogger) *Server {
	s := &Server{cfg: cfg, services: services, store: store, log: log}

	s.app = fiber.New(fiber.Config{
		ErrorHandler: errorHandler,
	})
	s.app.Use(cors.New())
	s.app.Use(s.requestLogger())

	s.registerRoutes()
	return s
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen blocks serving on the configured port.
func (s *Server) Listen() error {
	return s.app.Listen(":" + s.cfg.Port)
}

func (s *Server) registerRoutes() {
	app := s.app

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	app.Post("/api/auth/login", s.login)

	authMW := s.authRequired()

	app.Get("/api/banks", authMW, s.listBanks)
	app.Post("/api/banks", authMW, s.createBank)
	app.Get("/api/banks/by-name/:name", authMW, s.findBankByName)
	app.Get("/api/banks/:id", authMW, s.findBank)
	app.Put("/api/banks/:id", authMW, s.updateBank)

	app.Get("/api/concepts", authMW, s.listConcepts)
	app.Post("/api/concepts", authMW, s.createConcept)
	app.Get("/api/concepts/by-name/:name", authMW, s.findConceptByName)
	app.Get("/api/concepts/:id", authMW, s.findConcept)
	app.Put("/api/concepts/:id", authMW, s.updateConcept)

	app.Get("/api/users", authMW, s.listUsers)
	app.Post("/api/users", authMW, s.createUser)
	app.Post("/api/users/password", authMW, s.changePassword)
	app.Post("/api/users/:username/password-reset", authMW, s.resetPassword)
	app.Post("/api/users/:username/active", authMW, s.setUserActive)

	app.Post("/api/transactions", s.rateLimitTransactions(), authMW, s.createTransaction)
	app.Get("/api/transactions", authMW, s.listTransactions)
	app.Get("/api/transactions/:id", authMW, s.findTransaction)

	app.Post("/api/reversals", authMW, s.createReversal)
	app.Get("/api/reversals/pending", authMW, s.listPendingReversals)
	app.Get("/api/reversals/:id", authMW, s.findReversal)
	app.Post("/api/reversals/:id/resolve", authMW, s.resolveReversal)

	app.Get("/api/config", authMW, s.getConfig)
	app.Put("/api/config", authMW, s.updateConfig)

	app.Get("/api/audit/report", authMW, s.auditReportPDF)
}

func (s *Server) rateLimitTransactions() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        s.cfg.RateLimitMax,
		Expiration: s.cfg.RateLimitWindow,
	})
}

// errorHandler maps the shared error taxonomy onto HTTP statuses.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal server error"

	var fiberErr *fiber.Error
	switch {
	case errors.As(err, &fiberErr):
		code = fiberErr.Code
		message = fiberErr.Message
	case apperr.IsValidation(err):
		code = fiber.StatusBadRequest
		message = err.Error()
	case apperr.IsAuthorization(err):
		code = fiber.StatusForbidden
		message = err.Error()
	case apperr.IsNotFound(err):
		code = fiber.StatusNotFound
		message = err.Error()
	case apperr.IsConstraint(err, ""):
		code = fiber.StatusConflict
		message = err.Error()
	}

	return c.Status(code).JSON(fiber.Map{"error": message})
}
