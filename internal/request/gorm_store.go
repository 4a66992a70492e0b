package request

import (
	"context"
	"errors"
	"time"

	"go-workforce/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Model is implemented by the gorm entities of each request kind. The
// backing table must carry the shared workflow columns: id, company_id,
// employee_id, status, approval_step, approver_id, approver_comment,
// decided_at, created_at, updated_at.
type Model interface {
	ToRequest() Request
}

// GormStore implements Store for one entity type.
type GormStore[T Model] struct {
	db      *gorm.DB
	kind    Kind
	pending []string
}

func NewGormStore[T Model](db *gorm.DB, kind Kind, pendingStatuses ...string) *GormStore[T] {
	return &GormStore[T]{db: db, kind: kind, pending: pendingStatuses}
}

// WithDB rebinds the store, typically to a transaction session.
func (s *GormStore[T]) WithDB(db *gorm.DB) *GormStore[T] {
	return &GormStore[T]{db: db, kind: s.kind, pending: s.pending}
}

func (s *GormStore[T]) Kind() Kind { return s.kind }

func (s *GormStore[T]) FindRequest(ctx context.Context, companyID, id string) (Request, error) {
	m, err := s.FindModel(ctx, companyID, id)
	if err != nil {
		return Request{}, err
	}
	return m.ToRequest(), nil
}

// FindModel loads the full entity. Malformed ids are reported as not found
// so callers cannot probe for rows outside their tenant.
func (s *GormStore[T]) FindModel(ctx context.Context, companyID, id string) (T, error) {
	var m T
	if _, err := uuid.Parse(id); err != nil {
		return m, ErrNotFound
	}
	err := s.db.WithContext(ctx).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return m, ErrNotFound
	}
	return m, err
}

func (s *GormStore[T]) pendingQuery(ctx context.Context, companyID, excludeRequesterID string) *gorm.DB {
	q := s.db.WithContext(ctx).
		Model(new(T)).
		Scopes(tenant.Scope(companyID)).
		Where("status IN ?", s.pending)
	if excludeRequesterID != "" {
		q = q.Where("employee_id <> ?", excludeRequesterID)
	}
	return q
}

func (s *GormStore[T]) ListPendingRequests(ctx context.Context, companyID, excludeRequesterID string) ([]Request, error) {
	var rows []T
	err := s.pendingQuery(ctx, companyID, excludeRequesterID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Request, len(rows))
	for i, r := range rows {
		out[i] = r.ToRequest()
	}
	return out, nil
}

func (s *GormStore[T]) CountPendingRequests(ctx context.Context, companyID, excludeRequesterID string) (int64, error) {
	var count int64
	err := s.pendingQuery(ctx, companyID, excludeRequesterID).Count(&count).Error
	return count, err
}

func (s *GormStore[T]) UpdateStatus(ctx context.Context, companyID string, t Transition) error {
	updates := map[string]any{
		"status":        t.ToStatus,
		"approval_step": t.NextStep,
		"updated_at":    t.At,
	}
	if t.ApproverID != "" {
		approverID, err := uuid.Parse(t.ApproverID)
		if err != nil {
			return err
		}
		updates["approver_id"] = approverID
		updates["approver_comment"] = t.Comment
	}
	if t.Decided() {
		updates["decided_at"] = t.At
	}

	return s.casUpdate(ctx, companyID, t.ID, updates, "status = ? AND approval_step = ?", t.FromStatus, t.ExpectedStep)
}

// SetStatus moves a row from one status to another outside the approval
// step sequence, e.g. reimbursing an approved expense. extra columns are
// written in the same statement.
func (s *GormStore[T]) SetStatus(ctx context.Context, companyID, id, fromStatus, toStatus string, extra map[string]any) error {
	updates := map[string]any{"status": toStatus}
	for k, v := range extra {
		updates[k] = v
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return s.casUpdate(ctx, companyID, id, updates, "status = ?", fromStatus)
}

func (s *GormStore[T]) casUpdate(ctx context.Context, companyID, id string, updates map[string]any, guard string, args ...any) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	res := s.db.WithContext(ctx).
		Model(new(T)).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Where(guard, args...).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(new(T)).
		Scopes(tenant.Scope(companyID)).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrStaleStatus
}
