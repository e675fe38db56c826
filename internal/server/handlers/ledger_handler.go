package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mbazira/agrostock/internal/repository/mongodb"
	"github.com/mbazira/agrostock/internal/server/auth"
	"github.com/mbazira/agrostock/internal/service/reporting"
)

// LedgerHandler exposes the stock ledger read-only.
type LedgerHandler struct {
	ledger    mongodb.LedgerStore
	alerts    mongodb.AlertStore
	reporting *reporting.Service
	logger    *zap.Logger
}

// NewLedgerHandler constructs the HTTP handler adapter.
func NewLedgerHandler(ledger mongodb.LedgerStore, alerts mongodb.AlertStore, reportingSvc *reporting.Service, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{ledger: ledger, alerts: alerts, reporting: reportingSvc, logger: logger}
}

// List returns the current stock positions of a branch.
func (h *LedgerHandler) List(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)

	branch := c.Query("branch")
	if branch == "" {
		branch = actor.Branch
	}

	records, err := h.ledger.ListByBranch(c.Request.Context(), branch)
	if err != nil {
		h.logger.Error("failed listing stock records", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// Report returns the branch stock summary.
func (h *LedgerHandler) Report(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)

	branch := c.Query("branch")
	if branch == "" {
		branch = actor.Branch
	}

	report, err := h.reporting.BranchReport(c.Request.Context(), branch)
	if err != nil {
		h.logger.Error("failed building branch report", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// Alerts returns the branch's recent stock alerts.
func (h *LedgerHandler) Alerts(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)

	branch := c.Query("branch")
	if branch == "" {
		branch = actor.Branch
	}

	alerts, err := h.alerts.ListRecent(c.Request.Context(), branch, 50)
	if err != nil {
		h.logger.Error("failed listing stock alerts", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, alerts)
}
