package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mbazira/agrostock/internal/domain/models"
	"github.com/mbazira/agrostock/internal/repository/mongodb"
	"github.com/mbazira/agrostock/internal/server/auth"
	"github.com/mbazira/agrostock/internal/service/staffing"
)

// RosterHandler adapts roster mutations onto HTTP.
type RosterHandler struct {
	svc    *staffing.Service
	roster mongodb.RosterStore
	logger *zap.Logger
}

// NewRosterHandler constructs the HTTP handler adapter.
func NewRosterHandler(svc *staffing.Service, roster mongodb.RosterStore, logger *zap.Logger) *RosterHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterHandler{svc: svc, roster: roster, logger: logger}
}

type hireRequest struct {
	Name   string           `json:"name"`
	Role   models.StaffRole `json:"role"`
	Branch string           `json:"branch"`
	Slot   int              `json:"slot"`
}

type reassignRequest struct {
	Branch string           `json:"branch"`
	Role   models.StaffRole `json:"role"`
	Slot   int              `json:"slot"`
}

// Hire places a new person on the roster.
func (h *RosterHandler) Hire(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)

	var req hireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	member, err := h.svc.Hire(c.Request.Context(), actor, models.StaffMember{
		Name:   req.Name,
		Role:   req.Role,
		Branch: req.Branch,
		Slot:   req.Slot,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, member)
}

// Remove deactivates a roster entry, subject to the staffing floor.
func (h *RosterHandler) Remove(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
		return
	}

	if err := h.svc.Remove(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Reassign moves a person to a new assignment, subject to the staffing floor.
func (h *RosterHandler) Reassign(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
		return
	}

	var req reassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if err := h.svc.Reassign(c.Request.Context(), actor, id, req.Branch, req.Role, req.Slot); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// List returns a branch's active roster.
func (h *RosterHandler) List(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)

	branch := c.Query("branch")
	if branch == "" {
		branch = actor.Branch
	}

	members, err := h.roster.ListByBranch(c.Request.Context(), branch)
	if err != nil {
		h.logger.Error("failed listing roster", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, members)
}
