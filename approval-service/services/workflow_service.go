package services

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"approvalflow-backend/shared/clients"
	"approvalflow-backend/shared/database/models"
	"approvalflow-backend/shared/database/models/approval"
	"approvalflow-backend/shared/utils/apperrors"
	"approvalflow-backend/shared/utils/cache"
	"approvalflow-backend/shared/utils/hierarchy"
)

// WorkflowService orchestrates the maker-checker lifecycle: submission,
// routing, decision and queue queries.
type WorkflowService struct {
	db       *gorm.DB
	notifier *clients.NotificationClient
}

// NewWorkflowService creates a new WorkflowService.
func NewWorkflowService(db *gorm.DB) *WorkflowService {
	return &WorkflowService{
		db:       db,
		notifier: clients.NewNotificationClient(),
	}
}

// SubmitInput carries the maker-supplied fields of a new request.
type SubmitInput struct {
	RequestType string
	Title       string
	Description string
	Payload     map[string]interface{}
}

// payloadResubmissionKey marks a new submission as the follow-up of a
// rejected request. The old request gets a RESUBMIT log entry; its status
// never changes, terminal states are permanent.
const payloadResubmissionKey = "resubmission_of"

// ValidateMakerSubmission checks the submission preconditions. Routing is
// impossible for a maker without a unit, so that case is rejected up front.
func ValidateMakerSubmission(maker *models.User) error {
	if maker == nil {
		return apperrors.Validation("maker is required")
	}
	if !maker.IsActive() {
		return apperrors.Forbidden("maker account is inactive")
	}
	if !maker.HasRole(models.RoleMaker) {
		return apperrors.Forbidden("only users with MAKER role can create approval requests")
	}
	if maker.UnitID == nil {
		return apperrors.Validation("maker has no unit")
	}
	return nil
}

// DecisionGuard checks whether checker may decide the request right now.
// Returns InvalidState for non-pending requests and Forbidden for
// ineligible checkers.
func DecisionGuard(req *approval.ApprovalRequest, checker *models.User, idx *hierarchy.Index) error {
	if !req.IsPending() {
		return apperrors.InvalidState("request already decided")
	}
	eligible, err := approval.IsEligibleChecker(req, checker, idx)
	if err != nil {
		return err
	}
	if !eligible {
		return apperrors.Forbidden("checker not eligible: maker must be in a subordinate unit")
	}
	return nil
}

// SubmitRequest creates a request and routes it to a checker in one
// transaction. The created request comes back with checker fields populated
// when routing found one.
func (s *WorkflowService) SubmitRequest(maker *models.User, input SubmitInput) (*approval.ApprovalRequest, error) {
	if err := ValidateMakerSubmission(maker); err != nil {
		return nil, err
	}
	if input.RequestType == "" {
		return nil, apperrors.Validation("request_type is required")
	}

	idx, err := hierarchy.LoadIndex(s.db)
	if err != nil {
		return nil, err
	}
	if _, err := idx.Unit(*maker.UnitID); err != nil {
		return nil, err
	}

	req := &approval.ApprovalRequest{
		CreatedByID: maker.ID,
		MakerUnitID: *maker.UnitID,
		RequestType: input.RequestType,
		Title:       input.Title,
		Description: input.Description,
		Payload:     input.Payload,
		Status:      approval.StatusPending,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(req).Error; err != nil {
			return err
		}

		entry := approval.UserEntry(req.ID, approval.ActionCreate, maker.ID,
			fmt.Sprintf("Created approval request: %s", input.RequestType))
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}

		if err := s.recordResubmission(tx, req, maker); err != nil {
			return err
		}

		return AssignChecker(tx, req, idx)
	})
	if err != nil {
		return nil, err
	}

	s.afterSubmit(req)
	return req, nil
}

// recordResubmission appends a RESUBMIT log entry to the rejected request a
// new submission references via its payload.
func (s *WorkflowService) recordResubmission(tx *gorm.DB, req *approval.ApprovalRequest, maker *models.User) error {
	raw, ok := req.Payload[payloadResubmissionKey]
	if !ok {
		return nil
	}
	refStr, ok := raw.(string)
	if !ok {
		return apperrors.Validation("resubmission_of must be a request id")
	}
	refID, err := uuid.Parse(refStr)
	if err != nil {
		return apperrors.Validation("resubmission_of must be a request id")
	}

	var prior approval.ApprovalRequest
	findErr := tx.Where("id = ? AND created_by_id = ? AND status = ?",
		refID, maker.ID, approval.StatusRejected).First(&prior).Error
	if findErr != nil {
		return apperrors.Validation("resubmission_of does not reference a rejected request of yours")
	}

	entry := approval.UserEntry(prior.ID, approval.ActionResubmit, maker.ID,
		fmt.Sprintf("Resubmitted as request %s", req.ID))
	return tx.Create(&entry).Error
}

// Decide approves or rejects a pending request. The status mutation,
// reviewer fields and log append commit atomically; a compare-and-swap on
// the status column guarantees exactly one winner under concurrent attempts.
func (s *WorkflowService) Decide(requestID uuid.UUID, checker *models.User, decision approval.Decision, remarks string) (*approval.ApprovalRequest, error) {
	if decision != approval.DecisionApprove && decision != approval.DecisionReject {
		return nil, apperrors.Validationf("unknown decision: %s", decision)
	}

	req, err := s.GetRequest(requestID)
	if err != nil {
		return nil, err
	}

	idx, err := hierarchy.LoadIndex(s.db)
	if err != nil {
		return nil, err
	}
	if err := DecisionGuard(req, checker, idx); err != nil {
		return nil, err
	}

	status := decision.TerminalStatus()
	action := approval.ActionApprove
	if status == approval.StatusRejected {
		action = approval.ActionReject
	}

	now := time.Now().UTC()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&approval.ApprovalRequest{}).
			Where("id = ? AND status = ?", requestID, approval.StatusPending).
			Updates(map[string]interface{}{
				"status":         status,
				"reviewed_by_id": checker.ID,
				"reviewed_at":    now,
				"remarks":        remarks,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// Lost the race: another decision landed first.
			return apperrors.InvalidState("request already decided")
		}

		entry := approval.UserEntry(requestID, action, checker.ID, remarks)
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}

	req.Status = status
	req.ReviewedByID = &checker.ID
	req.ReviewedAt = &now
	req.Remarks = remarks

	s.afterDecision(req)
	return req, nil
}

// GetRequest loads a request with its references preloaded.
func (s *WorkflowService) GetRequest(id uuid.UUID) (*approval.ApprovalRequest, error) {
	var req approval.ApprovalRequest
	err := s.db.
		Preload("CreatedBy").
		Preload("MakerUnit").
		Preload("AssignedChecker").
		Preload("CheckerUnit").
		Preload("ReviewedBy").
		First(&req, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NotFound("approval request", id.String())
		}
		return nil, err
	}
	return &req, nil
}

// GetLogs returns the audit trail of a request, oldest first.
func (s *WorkflowService) GetLogs(requestID uuid.UUID) ([]approval.Log, error) {
	var logs []approval.Log
	err := s.db.
		Where("approval_request_id = ?", requestID).
		Order("created_at ASC, sequence ASC").
		Find(&logs).Error
	return logs, err
}

// RecordView appends a VIEW log entry. Best effort, never blocks a read.
func (s *WorkflowService) RecordView(requestID, viewerID uuid.UUID) {
	entry := approval.UserEntry(requestID, approval.ActionView, viewerID, "")
	if err := s.db.Create(&entry).Error; err != nil {
		log.Printf("❌ Failed to record view for request %s: %v", requestID, err)
	}
}

// GetQueueForChecker returns the narrow queue: pending requests assigned to
// exactly this checker, newest first.
func (s *WorkflowService) GetQueueForChecker(checkerID uuid.UUID) ([]approval.ApprovalRequest, error) {
	var requests []approval.ApprovalRequest
	err := s.db.
		Where("status = ? AND assigned_checker_id = ?", approval.StatusPending, checkerID).
		Preload("CreatedBy").
		Preload("MakerUnit").
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// GetBroadQueueForChecker returns every pending request the checker could
// legally decide: maker unit inside the checker's subtree, own unit included
// (requests from the unit itself still fail the strict-ancestor eligibility
// check at decision time). Supports manual pickup of unassigned requests.
func (s *WorkflowService) GetBroadQueueForChecker(checker *models.User) ([]approval.ApprovalRequest, error) {
	if checker.UnitID == nil {
		return nil, apperrors.Validation("checker has no unit")
	}

	idx, err := hierarchy.LoadIndex(s.db)
	if err != nil {
		return nil, err
	}
	descendants, err := idx.Descendants(*checker.UnitID)
	if err != nil {
		return nil, err
	}

	unitIDs := make([]uuid.UUID, 0, len(descendants)+1)
	unitIDs = append(unitIDs, *checker.UnitID)
	for _, unit := range descendants {
		unitIDs = append(unitIDs, unit.ID)
	}

	var requests []approval.ApprovalRequest
	err = s.db.
		Where("status = ? AND maker_unit_id IN ?", approval.StatusPending, unitIDs).
		Preload("CreatedBy").
		Preload("MakerUnit").
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// GetMakerRequests returns all requests created by a maker, newest first.
func (s *WorkflowService) GetMakerRequests(makerID uuid.UUID) ([]approval.ApprovalRequest, error) {
	var requests []approval.ApprovalRequest
	err := s.db.
		Where("created_by_id = ?", makerID).
		Preload("AssignedChecker").
		Preload("CheckerUnit").
		Preload("ReviewedBy").
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

// Statistics holds approval counters for a unit scope.
type Statistics struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// GetStatistics counts requests, optionally scoped to an exact maker unit
// (not hierarchy-scoped). Results are cached in Redis for a short period.
func (s *WorkflowService) GetStatistics(unitID *uuid.UUID) (*Statistics, error) {
	scope := ""
	if unitID != nil {
		scope = unitID.String()
	}

	if cm := cache.GetCacheManager(); cm != nil {
		if cached := cm.GetStatisticsCache(scope); cached != nil {
			return &Statistics{
				Total:    cached.Total,
				Pending:  cached.Pending,
				Approved: cached.Approved,
				Rejected: cached.Rejected,
			}, nil
		}
	}

	scoped := func() *gorm.DB {
		q := s.db.Model(&approval.ApprovalRequest{})
		if unitID != nil {
			q = q.Where("maker_unit_id = ?", *unitID)
		}
		return q
	}

	var stats Statistics
	if err := scoped().Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	counts := map[approval.Status]*int64{
		approval.StatusPending:  &stats.Pending,
		approval.StatusApproved: &stats.Approved,
		approval.StatusRejected: &stats.Rejected,
	}
	for status, target := range counts {
		if err := scoped().Where("status = ?", status).Count(target).Error; err != nil {
			return nil, err
		}
	}

	if cm := cache.GetCacheManager(); cm != nil {
		if err := cm.SetStatisticsCache(scope, &cache.StatisticsCacheData{
			Total:    stats.Total,
			Pending:  stats.Pending,
			Approved: stats.Approved,
			Rejected: stats.Rejected,
		}); err != nil {
			log.Printf("❌ Failed to cache statistics: %v", err)
		}
	}

	return &stats, nil
}

// EligibleCheckers lists the checkers that would be considered for a request
// from the given unit, in routing order. Diagnostic/administrative use.
func (s *WorkflowService) EligibleCheckers(unitID uuid.UUID) ([]models.User, error) {
	idx, err := hierarchy.LoadIndex(s.db)
	if err != nil {
		return nil, err
	}
	if _, err := idx.Unit(unitID); err != nil {
		return nil, err
	}

	candidates, err := loadCheckerCandidates(s.db)
	if err != nil {
		return nil, err
	}
	return idx.EligibleCheckers(unitID, candidates)
}

// afterSubmit runs post-commit side effects: checker notification and
// statistics cache invalidation. Failures are logged, never surfaced.
func (s *WorkflowService) afterSubmit(req *approval.ApprovalRequest) {
	if cm := cache.GetCacheManager(); cm != nil {
		cm.InvalidateStatistics(req.MakerUnitID.String())
	}

	if req.AssignedCheckerID == nil {
		return
	}
	err := s.notifier.NotifyAssignment(
		req.AssignedCheckerID.String(), req.ID.String(), req.RequestType, req.Title)
	if err != nil {
		log.Printf("❌ Failed to notify checker %s: %v", req.AssignedCheckerID, err)
	}
}

// afterDecision mirrors afterSubmit for the terminal transition.
func (s *WorkflowService) afterDecision(req *approval.ApprovalRequest) {
	if cm := cache.GetCacheManager(); cm != nil {
		cm.InvalidateStatistics(req.MakerUnitID.String())
	}

	err := s.notifier.NotifyDecision(
		req.CreatedByID.String(), req.ID.String(), req.RequestType, req.Title,
		string(req.Status), req.Remarks)
	if err != nil {
		log.Printf("❌ Failed to notify maker %s: %v", req.CreatedByID, err)
	}
}
