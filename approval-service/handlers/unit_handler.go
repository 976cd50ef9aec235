package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"approvalflow-backend/approval-service/middleware"
	"approvalflow-backend/approval-service/services"
	"approvalflow-backend/shared/database"
	"approvalflow-backend/shared/database/models"
	"approvalflow-backend/shared/utils/hierarchy"
	"approvalflow-backend/shared/utils/query"
)

// CreateUnitRequest represents request body for creating a unit
type CreateUnitRequest struct {
	Name     string          `json:"name" binding:"required"`
	Code     string          `json:"code" binding:"required"`
	UnitType models.UnitType `json:"unit_type" binding:"required"`
	ParentID *uuid.UUID      `json:"parent_id"`
}

// UpdateUnitParentRequest represents request body for re-parenting a unit
type UpdateUnitParentRequest struct {
	ParentID *uuid.UUID `json:"parent_id"`
}

// UnitTreeNode represents a unit with its children for tree responses
type UnitTreeNode struct {
	ID       uuid.UUID       `json:"id"`
	Name     string          `json:"name"`
	Code     string          `json:"code"`
	UnitType models.UnitType `json:"unit_type"`
	Children []*UnitTreeNode `json:"children"`
}

// requireAdmin aborts with 403 unless the current user holds the ADMIN role
func requireAdmin(ctx *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return nil, false
	}
	if !user.HasRole(models.RoleAdmin) {
		ctx.JSON(http.StatusForbidden, gin.H{
			"error":   "FORBIDDEN",
			"message": "Only ADMIN role can manage units",
		})
		return nil, false
	}
	return user, true
}

// GetUnits retrieves all units with pagination and filtering
// @Summary Get all units
// @Description Get all organizational units with pagination, filtering, sorting and search
// @Tags units
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across name and code"
// @Param filters[unit_type] query string false "Filter by unit type (HO, CIRCLE, NETWORK, AO, RBO, BR)"
// @Param filters[parent_id] query string false "Filter by parent unit ID"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /units [get]
func GetUnits(ctx *gin.Context) {
	if _, ok := middleware.CurrentUser(ctx); !ok {
		return
	}

	params := query.ParseQueryParams(ctx)

	allowedFilters := map[string]string{
		"unit_type": "unit_type",
		"parent_id": "parent_id",
	}
	allowedSortFields := map[string]string{
		"name":       "name",
		"code":       "code",
		"unit_type":  "unit_type",
		"created_at": "created_at",
	}
	searchFields := []string{"name", "code"}

	dbQuery := database.DB.Model(&models.Unit{})
	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, searchFields)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		respondError(ctx, err)
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var units []models.Unit
	if err := dbQuery.Find(&units).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      units,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

// GetUnitTree returns the full organizational tree
// @Summary Get unit tree
// @Description Get all units as nested trees, one per root
// @Tags units
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /units/tree [get]
func GetUnitTree(ctx *gin.Context) {
	if _, ok := middleware.CurrentUser(ctx); !ok {
		return
	}

	var units []models.Unit
	if err := database.DB.Order("code ASC").Find(&units).Error; err != nil {
		respondError(ctx, err)
		return
	}

	nodes := make(map[uuid.UUID]*UnitTreeNode, len(units))
	for _, unit := range units {
		nodes[unit.ID] = &UnitTreeNode{
			ID:       unit.ID,
			Name:     unit.Name,
			Code:     unit.Code,
			UnitType: unit.UnitType,
			Children: []*UnitTreeNode{},
		}
	}

	var roots []*UnitTreeNode
	for _, unit := range units {
		node := nodes[unit.ID]
		if unit.ParentID != nil {
			if parent, ok := nodes[*unit.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    roots,
	})
}

// CreateUnit creates a new unit in the hierarchy
// @Summary Create unit
// @Description Create a new organizational unit under an optional parent (ADMIN only)
// @Tags units
// @Accept json
// @Produce json
// @Param request body handlers.CreateUnitRequest true "Unit data"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Missing ADMIN role"
// @Router /units [post]
func CreateUnit(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx); !ok {
		return
	}

	var req CreateUnitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "VALIDATION_ERROR",
			"message": err.Error(),
		})
		return
	}

	if req.ParentID != nil {
		var parent models.Unit
		if err := database.DB.First(&parent, "id = ?", *req.ParentID).Error; err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "VALIDATION_ERROR",
				"message": "Parent unit does not exist",
			})
			return
		}
	}

	unit := models.Unit{
		Name:     req.Name,
		Code:     req.Code,
		UnitType: req.UnitType,
		ParentID: req.ParentID,
	}
	if err := database.DB.Create(&unit).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    unit,
	})
}

// UpdateUnitParent moves a unit under a new parent
// @Summary Re-parent unit
// @Description Change a unit's parent; rejected when the move would create a cycle (ADMIN only)
// @Tags units
// @Accept json
// @Produce json
// @Param id path string true "Unit ID" format(uuid)
// @Param request body handlers.UpdateUnitParentRequest true "New parent (null makes the unit a root)"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Cycle detected or invalid parent"
// @Failure 403 {object} map[string]string "Missing ADMIN role"
// @Failure 404 {object} map[string]string "Unit not found"
// @Router /units/{id}/parent [put]
func UpdateUnitParent(ctx *gin.Context) {
	if _, ok := requireAdmin(ctx); !ok {
		return
	}

	unitID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "VALIDATION_ERROR",
			"message": "Invalid unit ID format",
		})
		return
	}

	var req UpdateUnitParentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "VALIDATION_ERROR",
			"message": err.Error(),
		})
		return
	}

	var unit models.Unit
	if err := database.DB.First(&unit, "id = ?", unitID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			ctx.JSON(http.StatusNotFound, gin.H{
				"error":   "NOT_FOUND",
				"message": "Unit not found",
			})
			return
		}
		respondError(ctx, err)
		return
	}

	if req.ParentID != nil {
		idx, err := hierarchy.LoadIndex(database.DB)
		if err != nil {
			respondError(ctx, err)
			return
		}
		cycle, err := idx.WouldCreateCycle(unitID, *req.ParentID)
		if err != nil {
			respondError(ctx, err)
			return
		}
		if cycle {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "VALIDATION_ERROR",
				"message": "Cannot move a unit under itself or one of its descendants",
			})
			return
		}
	}

	// Single-column update; the database's row atomicity is enough, routing
	// reads never observe a half-written parent link.
	if err := database.DB.Model(&unit).Update("parent_id", req.ParentID).Error; err != nil {
		respondError(ctx, err)
		return
	}
	unit.ParentID = req.ParentID

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    unit,
	})
}

// GetEligibleCheckers lists the checkers considered for requests from a unit
// @Summary Eligible checkers for a unit
// @Description Active CHECKER users in ancestor units, in routing order (diagnostic/administrative)
// @Tags units
// @Produce json
// @Param id path string true "Unit ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]string "Unit not found"
// @Router /units/{id}/eligible-checkers [get]
func GetEligibleCheckers(ctx *gin.Context) {
	if _, ok := middleware.CurrentUser(ctx); !ok {
		return
	}

	unitID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "VALIDATION_ERROR",
			"message": "Invalid unit ID format",
		})
		return
	}

	service := services.NewWorkflowService(database.DB)
	checkers, err := service.EligibleCheckers(unitID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    checkers,
	})
}
