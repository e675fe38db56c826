package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mbazira/agrostock/internal/domain/models"
	"github.com/mbazira/agrostock/internal/repository/mongodb"
	"github.com/mbazira/agrostock/internal/service/procurement"
	"github.com/mbazira/agrostock/internal/service/sales"
)

// respondError maps the typed domain failures onto transport statuses. Every
// failure carries its context in the message, so callers can correct the
// request without another round trip.
func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	var (
		insufficient *models.InsufficientStockError
		notFound     *models.LedgerKeyNotFoundError
		ambiguous    *models.AmbiguousProduceTypeError
		mismatch     *models.PriceMismatchError
		belowMin     *models.BelowMinimumTransactionValueError
		floor        *models.StaffingFloorViolationError
		duplicate    *models.DuplicateRosterSlotError
	)

	switch {
	case errors.As(err, &notFound), errors.Is(err, mongodb.ErrEventNotFound):
		return http.StatusNotFound
	case errors.As(err, &insufficient),
		errors.As(err, &ambiguous),
		errors.As(err, &floor),
		errors.As(err, &duplicate):
		return http.StatusConflict
	case errors.As(err, &mismatch),
		errors.As(err, &belowMin),
		errors.Is(err, procurement.ErrTonnageBelowMinimum),
		errors.Is(err, procurement.ErrInvalidSellingPrice),
		errors.Is(err, sales.ErrSettlementVariantImmutable):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
