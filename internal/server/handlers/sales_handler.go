package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mbazira/agrostock/internal/domain/models"
	"github.com/mbazira/agrostock/internal/repository/mongodb"
	"github.com/mbazira/agrostock/internal/server/auth"
	"github.com/mbazira/agrostock/internal/service/sales"
)

// saleRequestBody is the wire shape of a sale create/revise call.
type saleRequestBody struct {
	Variant        models.SettlementVariant `json:"variant"`
	ProduceName    string                   `json:"produce_name"`
	ProduceType    string                   `json:"produce_type"`
	Branch         string                   `json:"branch"`
	TonnageKg      float64                  `json:"tonnage_kg"`
	Amount         float64                  `json:"amount"`
	BuyerName      string                   `json:"buyer_name"`
	DealerName     string                   `json:"dealer_name"`
	DealerLocation string                   `json:"dealer_location"`
	DealerContact  string                   `json:"dealer_contact"`
	DueDate        *time.Time               `json:"due_date"`
	Date           time.Time                `json:"date"`
}

func (b saleRequestBody) toRequest() models.SaleRequest {
	return models.SaleRequest{
		ProduceName:    b.ProduceName,
		ProduceType:    b.ProduceType,
		Branch:         b.Branch,
		TonnageKg:      b.TonnageKg,
		Amount:         b.Amount,
		BuyerName:      b.BuyerName,
		DealerName:     b.DealerName,
		DealerLocation: b.DealerLocation,
		DealerContact:  b.DealerContact,
		DueDate:        b.DueDate,
		Date:           b.Date,
	}
}

// SalesHandler adapts sale reconciliation onto HTTP.
type SalesHandler struct {
	svc    *sales.Service
	events mongodb.SaleStore
	logger *zap.Logger
}

// NewSalesHandler constructs the HTTP handler adapter.
func NewSalesHandler(svc *sales.Service, events mongodb.SaleStore, logger *zap.Logger) *SalesHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesHandler{svc: svc, events: events, logger: logger}
}

// Create records an outflow under the requested settlement variant.
func (h *SalesHandler) Create(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)

	var body saleRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	variant := body.Variant
	if variant == "" {
		variant = models.SettlementImmediate
	}

	event, err := h.svc.CreateOutflow(c.Request.Context(), actor, variant, body.toRequest())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

// Update revises an existing sale event.
func (h *SalesHandler) Update(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	var body saleRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	event, err := h.svc.Revise(c.Request.Context(), actor, id, body.Variant, body.toRequest())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// Delete removes a sale event and credits its tonnage back.
func (h *SalesHandler) Delete(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid event id"})
		return
	}

	if err := h.svc.Remove(c.Request.Context(), actor, id); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// List returns the branch's sale history.
func (h *SalesHandler) List(c *gin.Context) {
	actor, _ := auth.ActorFrom(c)

	branch := c.Query("branch")
	if branch == "" {
		branch = actor.Branch
	}

	events, err := h.events.ListByBranch(c.Request.Context(), branch)
	if err != nil {
		h.logger.Error("failed listing sale events", zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}
