package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/krswitch/backend/internal/app/models/dto"
	"github.com/krswitch/backend/internal/app/services"
	"github.com/krswitch/backend/internal/middleware"
)

// BarterController handles offer lifecycle operations
type BarterController struct {
	barterService services.BarterService
}

// NewBarterController creates a new BarterController
func NewBarterController(barterService services.BarterService) *BarterController {
	return &BarterController{
		barterService: barterService,
	}
}

// CreateOffer handles offer creation
// @Summary Create a new barter offer
// @Description Posts an offer to swap a held section for a parallel section of the same course and type
// @Tags offers
// @Accept json
// @Produce json
// @Param request body dto.CreateOfferRequest true "Offer information"
// @Success 201 {object} dto.APIResponse{data=models.Offer} "Offer created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid or domain-illegal request"
// @Failure 404 {object} dto.ErrorResponse "Student or section not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /offers [post]
func (c *BarterController) CreateOffer(ctx *gin.Context) {
	var req dto.CreateOfferRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.ValidationErrorDetail(err)))
		return
	}

	offer, err := c.barterService.CreateOffer(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.APIResponse{
		Data:      offer,
		Timestamp: time.Now(),
	})
}

// ListOpenOffers retrieves all open offers
// @Summary List open offers
// @Description Retrieves every offer still open for taking, newest first
// @Tags offers
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Offer} "Offers retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /offers [get]
func (c *BarterController) ListOpenOffers(ctx *gin.Context) {
	offers, err := c.barterService.ListOpenOffers(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      offers,
		Timestamp: time.Now(),
	})
}

// GetOffer retrieves an offer by ID
// @Summary Get offer by ID
// @Description Retrieves a single offer regardless of status
// @Tags offers
// @Produce json
// @Param id path int true "Offer ID"
// @Success 200 {object} dto.APIResponse{data=models.Offer} "Offer retrieved successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid offer ID"
// @Failure 404 {object} dto.ErrorResponse "Offer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /offers/{id} [get]
func (c *BarterController) GetOffer(ctx *gin.Context) {
	id, ok := offerID(ctx)
	if !ok {
		return
	}

	offer, err := c.barterService.GetOffer(ctx, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      offer,
		Timestamp: time.Now(),
	})
}

// TakeOffer accepts an open offer
// @Summary Take an open offer
// @Description Atomically accepts the offer, swapping both students' enrollments. Racing takers lose with a conflict.
// @Tags offers
// @Accept json
// @Produce json
// @Param id path int true "Offer ID"
// @Param request body dto.TakeOfferRequest true "Taker information"
// @Success 200 {object} dto.APIResponse{data=models.Offer} "Swap completed"
// @Failure 400 {object} dto.ErrorResponse "Taker not eligible"
// @Failure 404 {object} dto.ErrorResponse "Offer not found"
// @Failure 409 {object} dto.ErrorResponse "Offer already taken or cancelled"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /offers/{id}/take [post]
func (c *BarterController) TakeOffer(ctx *gin.Context) {
	id, ok := offerID(ctx)
	if !ok {
		return
	}

	var req dto.TakeOfferRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(middleware.ValidationErrorDetail(err)))
		return
	}

	offer, err := c.barterService.TakeOffer(ctx, id, req.TakerNIM)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      offer,
		Timestamp: time.Now(),
	})
}

// CancelOffer cancels an open offer
// @Summary Cancel an open offer
// @Description Terminates an offer without touching enrollments. Only the offerer may cancel.
// @Tags offers
// @Produce json
// @Param id path int true "Offer ID"
// @Param nim query string true "NIM of the requesting student"
// @Success 200 {object} dto.APIResponse{data=models.Offer} "Offer cancelled"
// @Failure 400 {object} dto.ErrorResponse "Missing NIM"
// @Failure 403 {object} dto.ErrorResponse "Requester is not the offerer"
// @Failure 404 {object} dto.ErrorResponse "Offer not found"
// @Failure 409 {object} dto.ErrorResponse "Offer already taken or cancelled"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /offers/{id} [delete]
func (c *BarterController) CancelOffer(ctx *gin.Context) {
	id, ok := offerID(ctx)
	if !ok {
		return
	}

	nim := ctx.Query("nim")
	if nim == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Query parameter 'nim' is required")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	offer, err := c.barterService.CancelOffer(ctx, id, nim)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      offer,
		Timestamp: time.Now(),
	})
}

// offerID parses the offer ID path parameter, writing the error response
// itself on failure
func offerID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid offer ID")
		errorDetail = errorDetail.WithDetails("Offer ID must be a valid number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return 0, false
	}
	return id, true
}
