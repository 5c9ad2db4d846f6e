// Package server serves the voter directory REST API from a local store.
// It backs field clients during development and rehearsals with the same
// routes and payloads as the production backend.
package server

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/nhle/voter-roll/internal/store"
)

// Config controls the HTTP surface of the development backend.
type Config struct {
	// JWTSecret enables bearer-token checks on every /api route when set.
	JWTSecret string

	// AccessLog enables fiber's per-request log line.
	AccessLog bool

	Logger *slog.Logger
}

// New builds the fiber application serving st.
func New(st store.Store, cfg Config) *fiber.App {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	app := fiber.New(fiber.Config{
		AppName:               "rolld",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})

	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(logger.New())
	}

	h := &handlers{store: st, log: log}

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})

	api := app.Group("/api")
	if cfg.JWTSecret != "" {
		api.Use(requireToken(cfg.JWTSecret))
	}

	api.Get("/voter/by-ward/:ward", h.countByWard)
	api.Get("/booth/getBooths/:ward", h.boothsByWard)
	api.Get("/voter/by-booth/:booth", h.votersByBooth)
	api.Get("/voter/political-status/:booth", h.politicalStatusVoters)
	api.Get("/voter/voting-status/:booth", h.votingStatusVoters)
	api.Post("/voter/political-status/bulk", h.bulkPoliticalStatus)
	api.Post("/voter/voting-status/bulk", h.bulkVotingStatus)
	api.Get("/stats/:ward", h.tallies)
	api.Get("/voter/:id", h.voter)

	return app
}

// errorHandler renders every unhandled error as the API's JSON envelope.
func errorHandler(log *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed", "method", c.Method(), "path", c.Path(), "err", err)
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   err.Error(),
		})
	}
}
