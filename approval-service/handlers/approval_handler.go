package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"approvalflow-backend/approval-service/middleware"
	"approvalflow-backend/approval-service/services"
	"approvalflow-backend/shared/database"
	"approvalflow-backend/shared/database/models"
	"approvalflow-backend/shared/database/models/approval"
	"approvalflow-backend/shared/utils/apperrors"
	"approvalflow-backend/shared/utils/hierarchy"
	"approvalflow-backend/shared/utils/query"
)

// CreateApprovalRequest represents request body for submitting an approval request
type CreateApprovalRequest struct {
	RequestType string                 `json:"request_type" binding:"required"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Payload     map[string]interface{} `json:"payload"`
}

// DecisionRequest represents request body for approve/reject
type DecisionRequest struct {
	Remarks string `json:"remarks"`
}

// respondError maps typed workflow errors onto HTTP statuses
func respondError(ctx *gin.Context, err error) {
	if appErr := apperrors.As(err); appErr != nil {
		ctx.JSON(appErr.HTTPStatus(), gin.H{
			"error":   string(appErr.Kind),
			"message": appErr.Message,
		})
		return
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{
		"error":   "INTERNAL_ERROR",
		"message": err.Error(),
	})
}

// CreateApproval submits a new approval request
// @Summary Submit approval request
// @Description Create a new approval request and route it to an eligible checker in an ancestor unit
// @Tags approvals
// @Accept json
// @Produce json
// @Param request body handlers.CreateApprovalRequest true "Request data"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 403 {object} map[string]string "Missing MAKER role"
// @Router /approvals [post]
func CreateApproval(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return
	}

	var req CreateApprovalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "VALIDATION_ERROR",
			"message": err.Error(),
		})
		return
	}

	service := services.NewWorkflowService(database.DB)
	created, err := service.SubmitRequest(user, services.SubmitInput{
		RequestType: req.RequestType,
		Title:       req.Title,
		Description: req.Description,
		Payload:     req.Payload,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    created,
	})
}

// ListApprovals lists approval requests filtered by the caller's role
// @Summary List approval requests
// @Description ADMIN sees all requests, MAKER own requests, CHECKER requests from their subtree
// @Tags approvals
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10)"
// @Param search query string false "Search term across type, title and description"
// @Param filters[status] query string false "Filter by status (PENDING, APPROVED, REJECTED)"
// @Param filters[request_type] query string false "Filter by request type"
// @Param filters[maker_unit_id] query string false "Filter by maker unit"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /approvals [get]
func ListApprovals(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return
	}

	params := query.ParseQueryParams(ctx)

	allowedFilters := map[string]string{
		"status":        "status",
		"request_type":  "request_type",
		"maker_unit_id": "maker_unit_id",
	}
	allowedSortFields := map[string]string{
		"created_at":   "created_at",
		"status":       "status",
		"request_type": "request_type",
	}
	searchFields := []string{"request_type", "title", "description"}

	dbQuery := database.DB.Model(&approval.ApprovalRequest{})

	// Role-based visibility
	switch {
	case user.HasRole(models.RoleAdmin):
		// Admin sees everything
	case user.HasRole(models.RoleChecker):
		idx, err := hierarchy.LoadIndex(database.DB)
		if err != nil {
			respondError(ctx, err)
			return
		}
		if user.UnitID == nil {
			ctx.JSON(http.StatusOK, emptyListResponse(params))
			return
		}
		descendants, err := idx.Descendants(*user.UnitID)
		if err != nil {
			respondError(ctx, err)
			return
		}
		unitIDs := []uuid.UUID{*user.UnitID}
		for _, unit := range descendants {
			unitIDs = append(unitIDs, unit.ID)
		}
		dbQuery = dbQuery.Where("maker_unit_id IN ?", unitIDs)
	case user.HasRole(models.RoleMaker):
		dbQuery = dbQuery.Where("created_by_id = ?", user.ID)
	default:
		ctx.JSON(http.StatusOK, emptyListResponse(params))
		return
	}

	dbQuery = query.ApplyFilters(dbQuery, params.Filters, allowedFilters)
	dbQuery = query.ApplySearch(dbQuery, params.Search, searchFields)
	dbQuery = query.ApplySort(dbQuery, params.Sort, allowedSortFields)

	var total int64
	if err := dbQuery.Count(&total).Error; err != nil {
		respondError(ctx, err)
		return
	}

	dbQuery = query.ApplyPagination(dbQuery, params.Page, params.Limit)

	var requests []approval.ApprovalRequest
	if err := dbQuery.
		Preload("CreatedBy").
		Preload("MakerUnit").
		Preload("AssignedChecker").
		Find(&requests).Error; err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"items":      requests,
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, total),
		},
	})
}

func emptyListResponse(params query.FilterParams) gin.H {
	return gin.H{
		"success": true,
		"data": gin.H{
			"items":      []approval.ApprovalRequest{},
			"pagination": query.BuildPaginationResponse(params.Page, params.Limit, 0),
		},
	}
}

// GetApproval returns a single request with its audit trail
// @Summary Get approval request by ID
// @Description Get request details; viewer must be admin, creator, assigned checker or an eligible checker
// @Tags approvals
// @Produce json
// @Param id path string true "Request ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Not permitted to view"
// @Failure 404 {object} map[string]string "Request not found"
// @Router /approvals/{id} [get]
func GetApproval(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return
	}

	requestID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "VALIDATION_ERROR",
			"message": "Invalid request ID format",
		})
		return
	}

	service := services.NewWorkflowService(database.DB)
	req, err := service.GetRequest(requestID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	allowed := user.HasRole(models.RoleAdmin) ||
		req.CreatedByID == user.ID ||
		(req.AssignedCheckerID != nil && *req.AssignedCheckerID == user.ID)
	if !allowed && user.HasRole(models.RoleChecker) {
		idx, idxErr := hierarchy.LoadIndex(database.DB)
		if idxErr != nil {
			respondError(ctx, idxErr)
			return
		}
		eligible, eligErr := approval.IsEligibleChecker(req, user, idx)
		if eligErr != nil {
			respondError(ctx, eligErr)
			return
		}
		allowed = eligible
	}
	if !allowed {
		ctx.JSON(http.StatusForbidden, gin.H{
			"error":   "FORBIDDEN",
			"message": "You do not have permission to view this request",
		})
		return
	}

	service.RecordView(req.ID, user.ID)

	logs, err := service.GetLogs(req.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"request": req,
			"logs":    logs,
		},
	})
}

// ApproveApproval approves a pending request
// @Summary Approve request
// @Description Approve a pending request; caller must be an eligible checker in an ancestor unit
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Request ID" format(uuid)
// @Param request body handlers.DecisionRequest true "Decision remarks"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Checker not eligible"
// @Failure 409 {object} map[string]string "Request already decided"
// @Router /approvals/{id}/approve [post]
func ApproveApproval(ctx *gin.Context) {
	decide(ctx, approval.DecisionApprove)
}

// RejectApproval rejects a pending request
// @Summary Reject request
// @Description Reject a pending request; caller must be an eligible checker in an ancestor unit
// @Tags approvals
// @Accept json
// @Produce json
// @Param id path string true "Request ID" format(uuid)
// @Param request body handlers.DecisionRequest true "Decision remarks"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Checker not eligible"
// @Failure 409 {object} map[string]string "Request already decided"
// @Router /approvals/{id}/reject [post]
func RejectApproval(ctx *gin.Context) {
	decide(ctx, approval.DecisionReject)
}

func decide(ctx *gin.Context, decision approval.Decision) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return
	}

	requestID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "VALIDATION_ERROR",
			"message": "Invalid request ID format",
		})
		return
	}

	if !user.HasRole(models.RoleChecker) {
		ctx.JSON(http.StatusForbidden, gin.H{
			"error":   "FORBIDDEN",
			"message": "Only CHECKER role can decide requests",
		})
		return
	}

	var body DecisionRequest
	if err := ctx.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		ctx.JSON(http.StatusBadRequest, gin.H{
			"error":   "VALIDATION_ERROR",
			"message": err.Error(),
		})
		return
	}

	service := services.NewWorkflowService(database.DB)
	updated, err := service.Decide(requestID, user, decision, body.Remarks)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    updated,
	})
}

// MyRequests lists requests created by the current user
// @Summary My requests
// @Description All requests created by the current user, newest first
// @Tags approvals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /approvals/my-requests [get]
func MyRequests(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return
	}

	service := services.NewWorkflowService(database.DB)
	requests, err := service.GetMakerRequests(user.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    requests,
	})
}

// PendingQueue lists pending requests assigned to the current checker
// @Summary Pending queue (narrow)
// @Description Pending requests auto-assigned to the current checker
// @Tags approvals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Missing CHECKER role"
// @Router /approvals/pending-queue [get]
func PendingQueue(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return
	}

	if !user.HasRole(models.RoleChecker) {
		ctx.JSON(http.StatusForbidden, gin.H{
			"error":   "FORBIDDEN",
			"message": "Only CHECKER role can view the approval queue",
		})
		return
	}

	service := services.NewWorkflowService(database.DB)
	requests, err := service.GetQueueForChecker(user.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    requests,
	})
}

// BroadQueue lists every pending request the current checker could decide
// @Summary Pending queue (broad)
// @Description Pending requests from the checker's subtree, including unassigned ones awaiting manual pickup
// @Tags approvals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]string "Missing CHECKER role"
// @Router /approvals/broad-queue [get]
func BroadQueue(ctx *gin.Context) {
	user, ok := middleware.CurrentUser(ctx)
	if !ok {
		return
	}

	if !user.HasRole(models.RoleChecker) {
		ctx.JSON(http.StatusForbidden, gin.H{
			"error":   "FORBIDDEN",
			"message": "Only CHECKER role can view the approval queue",
		})
		return
	}

	service := services.NewWorkflowService(database.DB)
	requests, err := service.GetBroadQueueForChecker(user)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    requests,
	})
}

// ApprovalStatistics returns request counters, optionally scoped to a unit
// @Summary Approval statistics
// @Description Total/pending/approved/rejected counters; unit_id scopes to requests whose maker unit matches exactly
// @Tags approvals
// @Produce json
// @Param unit_id query string false "Maker unit ID (exact match, not hierarchy-scoped)" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /approvals/statistics [get]
func ApprovalStatistics(ctx *gin.Context) {
	if _, ok := middleware.CurrentUser(ctx); !ok {
		return
	}

	var unitID *uuid.UUID
	if raw := ctx.Query("unit_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{
				"error":   "VALIDATION_ERROR",
				"message": "Invalid unit_id format",
			})
			return
		}
		unitID = &parsed
	}

	service := services.NewWorkflowService(database.DB)
	stats, err := service.GetStatistics(unitID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}
