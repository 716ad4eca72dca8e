package web

import (
	"log/slog"

	"luna/app/config"
	"luna/app/service/store"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
)

var _ do.Shutdownable = (*Service)(nil)

// Service exposes a small local status surface. Disabled entirely when no
// listen address is configured.
type Service struct {
	app   *fiber.App
	addr  string
	store *store.Service
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	s := &Service{
		addr:  cfg.Web.Addr,
		store: do.MustInvoke[*store.Service](di),
	}

	if s.addr == "" {
		return s, nil
	}

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s.app.Get("/healthz", s.handleHealthz)
	s.app.Get("/status", s.handleStatus)

	return s, nil
}

func (s *Service) Run() {
	if s.app == nil {
		return
	}

	slog.Info("Status server listening", "addr", s.addr)

	if err := s.app.Listen(s.addr); err != nil {
		slog.Error("Status server stopped", "error", err)
	}
}

func (s *Service) handleHealthz(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

func (s *Service) handleStatus(c *fiber.Ctx) error {
	factCount, err := s.store.CountFacts()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	lastSummary, err := s.store.LastSummarySent()
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{
		"facts":        factCount,
		"last_summary": lastSummary,
	})
}

func (s *Service) Shutdown() error {
	if s.app == nil {
		return nil
	}

	return s.app.Shutdown()
}
