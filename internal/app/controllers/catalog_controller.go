package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/krswitch/backend/internal/app/models/dto"
	"github.com/krswitch/backend/internal/app/services"
	"github.com/krswitch/backend/internal/middleware"
)

// CatalogController handles read-only catalog and discovery operations
type CatalogController struct {
	catalogService services.CatalogService
}

// NewCatalogController creates a new CatalogController
func NewCatalogController(catalogService services.CatalogService) *CatalogController {
	return &CatalogController{
		catalogService: catalogService,
	}
}

// GetAllUsers retrieves all students
// @Summary List students
// @Description Retrieves every registered student
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.User} "Students retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /users [get]
func (c *CatalogController) GetAllUsers(ctx *gin.Context) {
	users, err := c.catalogService.GetAllUsers(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      users,
		Timestamp: time.Now(),
	})
}

// GetAllSections retrieves the section catalog
// @Summary List sections
// @Description Retrieves every course section with its schedule metadata
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Section} "Sections retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /sections [get]
func (c *CatalogController) GetAllSections(ctx *gin.Context) {
	sections, err := c.catalogService.GetAllSections(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      sections,
		Timestamp: time.Now(),
	})
}

// GetEnrollments retrieves enrollments, optionally filtered by student
// @Summary List enrollments
// @Description Retrieves enrollments with sections attached. Pass nim to see a single student's.
// @Tags catalog
// @Produce json
// @Param nim query string false "Filter by student NIM"
// @Success 200 {object} dto.APIResponse{data=[]models.Enrollment} "Enrollments retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /enrollments [get]
func (c *CatalogController) GetEnrollments(ctx *gin.Context) {
	enrollments, err := c.catalogService.GetEnrollments(ctx, ctx.Query("nim"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      enrollments,
		Timestamp: time.Now(),
	})
}

// GetOpportunities recomputes and returns all legal swap opportunities
// @Summary List swap opportunities
// @Description Enumerates every directed swap currently possible, from a fresh enrollment snapshot
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]models.Opportunity} "Opportunities retrieved successfully"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /opportunities [get]
func (c *CatalogController) GetOpportunities(ctx *gin.Context) {
	opportunities, err := c.catalogService.DiscoverOpportunities(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.APIResponse{
		Data:      opportunities,
		Timestamp: time.Now(),
	})
}
