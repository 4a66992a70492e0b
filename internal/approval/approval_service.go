package approval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go-workforce/internal/activity"
	approvalerrors "go-workforce/internal/approval/errors"
	"go-workforce/internal/chain"
	"go-workforce/internal/request"
	"go-workforce/internal/shared/apperror"
	"go-workforce/internal/tenant"

	"go.uber.org/zap"
)

const (
	ActionApprove   = "approve"
	ActionReject    = "reject"
	ActionCancel    = "cancel"
	ActionReimburse = "reimburse"
	ActionStart     = "start"

	DefaultBulkMaxItems = 100
)

//go:generate mockgen -source=approval_service.go -destination=mock/approval_service_mock.go -package=mock
type Service interface {
	Approve(ctx context.Context, tc tenant.Context, kind, id string, comment *string) (Result, error)
	Reject(ctx context.Context, tc tenant.Context, kind, id string, comment *string) (Result, error)
	Cancel(ctx context.Context, tc tenant.Context, kind, id string) (Result, error)
	Reimburse(ctx context.Context, tc tenant.Context, id string) (Result, error)
	StartProgress(ctx context.Context, tc tenant.Context, id string) (Result, error)

	BulkApprove(ctx context.Context, tc tenant.Context, items []BulkItem, comment *string) (BulkApproveResult, error)
	BulkReject(ctx context.Context, tc tenant.Context, items []BulkItem, comment *string) (BulkRejectResult, error)

	ListPending(ctx context.Context, tc tenant.Context) ([]PendingItem, error)
	Counts(ctx context.Context, tc tenant.Context) (Counts, error)
}

type Options struct {
	BulkMaxItems int
	Metrics      *Metrics
	Now          func() time.Time
	// Directory, when set, fills requester names in the inbox.
	Directory Directory
}

// Directory resolves employee display names within a company.
type Directory interface {
	NamesByIDs(ctx context.Context, companyID string, ids []string) (map[string]string, error)
}

type service struct {
	kinds     Registry
	resolver  chain.Resolver
	activity  activity.Recorder
	metrics   *Metrics
	directory Directory
	bulkMax   int
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(kinds Registry, resolver chain.Resolver, recorder activity.Recorder, opts Options, logger ...*zap.Logger) Service {
	l := zap.L().Named("approval.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.service")
	}
	if opts.BulkMaxItems <= 0 {
		opts.BulkMaxItems = DefaultBulkMaxItems
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if resolver == nil {
		resolver = chain.NewResolver(nil, false, l)
	}
	return &service{
		kinds:     kinds,
		resolver:  resolver,
		activity:  recorder,
		metrics:   opts.Metrics,
		directory: opts.Directory,
		bulkMax:   opts.BulkMaxItems,
		now:       opts.Now,
		logger:    l,
	}
}

func (s *service) Approve(ctx context.Context, tc tenant.Context, kind, id string, comment *string) (Result, error) {
	res, err := s.approve(ctx, tc, kind, id, comment)
	s.metrics.observeTransition(kind, ActionApprove, err)
	return res, err
}

func (s *service) approve(ctx context.Context, tc tenant.Context, kind, id string, comment *string) (Result, error) {
	log := s.logger.With(
		zap.String("company_id", tc.CompanyID),
		zap.String("actor_id", tc.ActorID),
		zap.String("kind", kind),
		zap.String("request_id", id),
	)
	log.Debug("approve requested")

	k, st, r, err := s.loadForDecision(ctx, tc, kind, id)
	if err != nil {
		log.Warn("approve rejected", zap.Error(err))
		return Result{}, err
	}

	resolution, next := s.resolver.Next(ctx, r)
	final := resolution.IsFinal()

	var warnings []string
	if final && st.Advisor != nil {
		warnings = st.Advisor.Advise(ctx, r)
	}

	t := request.Transition{
		ID:           r.ID,
		FromStatus:   r.Status,
		ToStatus:     r.Status,
		ExpectedStep: r.ApprovalStep,
		NextStep:     r.ApprovalStep + 1,
		ApproverID:   tc.ActorID,
		Comment:      comment,
		At:           s.now(),
	}
	if final {
		t.ToStatus = st.Lifecycle.Approved
	}
	if err := st.Store.UpdateStatus(ctx, tc.CompanyID, t); err != nil {
		err = mapStoreError(err)
		log.Warn("approve transition failed", zap.Error(err))
		return Result{}, err
	}

	action := activity.ActionApproved
	if !final {
		action = activity.ActionStepApproved
	}
	s.record(ctx, tc, action, r, comment)

	log.Info("approve success",
		zap.Bool("final", final),
		zap.Int("approval_step", t.NextStep),
		zap.String("chain_id", resolution.ChainID),
	)
	return Result{
		Kind:             k,
		ID:               r.ID,
		Reference:        r.Reference,
		Status:           t.ToStatus,
		ApprovalStep:     t.NextStep,
		TotalApprovals:   resolution.TotalApprovals,
		Final:            final,
		NextApproverRole: next,
		Warnings:         warnings,
	}, nil
}

func (s *service) Reject(ctx context.Context, tc tenant.Context, kind, id string, comment *string) (Result, error) {
	res, err := s.reject(ctx, tc, kind, id, comment)
	s.metrics.observeTransition(kind, ActionReject, err)
	return res, err
}

func (s *service) reject(ctx context.Context, tc tenant.Context, kind, id string, comment *string) (Result, error) {
	log := s.logger.With(
		zap.String("company_id", tc.CompanyID),
		zap.String("actor_id", tc.ActorID),
		zap.String("kind", kind),
		zap.String("request_id", id),
	)

	k, st, r, err := s.loadForDecision(ctx, tc, kind, id)
	if err != nil {
		log.Warn("reject rejected", zap.Error(err))
		return Result{}, err
	}

	t := request.Transition{
		ID:           r.ID,
		FromStatus:   r.Status,
		ToStatus:     st.Lifecycle.Rejected,
		ExpectedStep: r.ApprovalStep,
		NextStep:     r.ApprovalStep,
		ApproverID:   tc.ActorID,
		Comment:      comment,
		At:           s.now(),
	}
	if err := st.Store.UpdateStatus(ctx, tc.CompanyID, t); err != nil {
		err = mapStoreError(err)
		log.Warn("reject transition failed", zap.Error(err))
		return Result{}, err
	}

	s.record(ctx, tc, activity.ActionRejected, r, comment)
	log.Info("reject success")
	return Result{
		Kind:         k,
		ID:           r.ID,
		Reference:    r.Reference,
		Status:       t.ToStatus,
		ApprovalStep: t.NextStep,
		Final:        true,
	}, nil
}

// Cancel is self-service: only the requester may withdraw a pending request.
func (s *service) Cancel(ctx context.Context, tc tenant.Context, kind, id string) (Result, error) {
	res, err := s.cancel(ctx, tc, kind, id)
	s.metrics.observeTransition(kind, ActionCancel, err)
	return res, err
}

func (s *service) cancel(ctx context.Context, tc tenant.Context, kind, id string) (Result, error) {
	if err := tc.Validate(); err != nil {
		return Result{}, err
	}
	k, st, ok := s.kinds.lookup(kind)
	if !ok {
		return Result{}, approvalerrors.ErrUnknownKind
	}
	r, err := st.Store.FindRequest(ctx, tc.CompanyID, id)
	if err != nil {
		return Result{}, mapStoreError(err)
	}
	if r.RequesterID != tc.ActorID {
		return Result{}, approvalerrors.ErrNotRequester
	}
	if !st.Lifecycle.IsPending(r.Status) {
		return Result{}, approvalerrors.ErrInvalidState
	}

	t := request.Transition{
		ID:           r.ID,
		FromStatus:   r.Status,
		ToStatus:     st.Lifecycle.Cancelled,
		ExpectedStep: r.ApprovalStep,
		NextStep:     r.ApprovalStep,
		At:           s.now(),
	}
	if err := st.Store.UpdateStatus(ctx, tc.CompanyID, t); err != nil {
		err = mapStoreError(err)
		s.logger.Warn("cancel transition failed",
			zap.String("company_id", tc.CompanyID),
			zap.String("request_id", id),
			zap.Error(err),
		)
		return Result{}, err
	}

	s.record(ctx, tc, activity.ActionCancelled, r, nil)
	return Result{
		Kind:         k,
		ID:           r.ID,
		Reference:    r.Reference,
		Status:       t.ToStatus,
		ApprovalStep: r.ApprovalStep,
		Final:        true,
	}, nil
}

// Reimburse moves an approved expense claim to reimbursed. It takes hr or
// admin and, like approval, never the claimant.
func (s *service) Reimburse(ctx context.Context, tc tenant.Context, id string) (Result, error) {
	res, err := s.reimburse(ctx, tc, id)
	s.metrics.observeTransition(string(request.KindExpense), ActionReimburse, err)
	return res, err
}

func (s *service) reimburse(ctx context.Context, tc tenant.Context, id string) (Result, error) {
	k, st, r, err := s.loadForFollowUp(ctx, tc, string(request.KindExpense), id, tenant.RoleHR)
	if err != nil {
		return Result{}, err
	}
	if st.Reimburser == nil {
		return Result{}, approvalerrors.ErrActionNotSupported
	}
	if r.Status != st.Lifecycle.Approved {
		return Result{}, approvalerrors.ErrInvalidState
	}
	if err := st.Reimburser.MarkReimbursed(ctx, tc.CompanyID, r.ID, tc.ActorID, s.now()); err != nil {
		return Result{}, mapStoreError(err)
	}

	s.record(ctx, tc, activity.ActionReimbursed, r, nil)
	updated, err := st.Store.FindRequest(ctx, tc.CompanyID, r.ID)
	if err != nil {
		return Result{}, mapStoreError(err)
	}
	return Result{
		Kind:         k,
		ID:           updated.ID,
		Reference:    updated.Reference,
		Status:       updated.Status,
		ApprovalStep: updated.ApprovalStep,
		Final:        true,
	}, nil
}

// StartProgress picks up an open ticket. Any manager other than the
// requester may start it; the caller becomes the assignee.
func (s *service) StartProgress(ctx context.Context, tc tenant.Context, id string) (Result, error) {
	res, err := s.startProgress(ctx, tc, id)
	s.metrics.observeTransition(string(request.KindTicket), ActionStart, err)
	return res, err
}

func (s *service) startProgress(ctx context.Context, tc tenant.Context, id string) (Result, error) {
	k, st, r, err := s.loadForFollowUp(ctx, tc, string(request.KindTicket), id, tenant.RoleManager)
	if err != nil {
		return Result{}, err
	}
	if st.Starter == nil {
		return Result{}, approvalerrors.ErrActionNotSupported
	}
	if !st.Lifecycle.IsPending(r.Status) {
		return Result{}, approvalerrors.ErrInvalidState
	}
	if err := st.Starter.MarkInProgress(ctx, tc.CompanyID, r.ID, tc.ActorID, s.now()); err != nil {
		return Result{}, mapStoreError(err)
	}

	s.record(ctx, tc, activity.ActionStarted, r, nil)
	updated, err := st.Store.FindRequest(ctx, tc.CompanyID, r.ID)
	if err != nil {
		return Result{}, mapStoreError(err)
	}
	return Result{
		Kind:         k,
		ID:           updated.ID,
		Reference:    updated.Reference,
		Status:       updated.Status,
		ApprovalStep: updated.ApprovalStep,
	}, nil
}

func (s *service) BulkApprove(ctx context.Context, tc tenant.Context, items []BulkItem, comment *string) (BulkApproveResult, error) {
	advanced := 0
	ok, failed, errs, err := s.bulk(ctx, tc, ActionApprove, items, func(item BulkItem) error {
		res, err := s.Approve(ctx, tc, item.Type, item.ID, comment)
		if err == nil && !res.Final {
			advanced++
		}
		return err
	})
	if err != nil {
		return BulkApproveResult{}, err
	}
	return BulkApproveResult{Approved: ok - advanced, Advanced: advanced, Failed: failed, Errors: errs}, nil
}

func (s *service) BulkReject(ctx context.Context, tc tenant.Context, items []BulkItem, comment *string) (BulkRejectResult, error) {
	ok, failed, errs, err := s.bulk(ctx, tc, ActionReject, items, func(item BulkItem) error {
		_, err := s.Reject(ctx, tc, item.Type, item.ID, comment)
		return err
	})
	if err != nil {
		return BulkRejectResult{}, err
	}
	return BulkRejectResult{Rejected: ok, Failed: failed, Errors: errs}, nil
}

// bulk runs op for every item in order. Item failures are collected as
// "{type}:{id} - {message}" and never stop the batch; items that already
// succeeded are not rolled back.
func (s *service) bulk(ctx context.Context, tc tenant.Context, action string, items []BulkItem, op func(BulkItem) error) (int, int, []string, error) {
	if err := s.authorizeApprover(tc); err != nil {
		return 0, 0, nil, err
	}
	if len(items) == 0 {
		return 0, 0, nil, approvalerrors.ErrBulkEmpty
	}
	if len(items) > s.bulkMax {
		return 0, 0, nil, approvalerrors.ErrBulkTooLarge
	}

	succeeded, failed := 0, 0
	errs := []string{}
	for _, item := range items {
		err := op(item)
		s.metrics.observeBulkItem(action, err)
		if err != nil {
			failed++
			errs = append(errs, fmt.Sprintf("%s:%s - %s", item.Type, item.ID, apperror.ToHTTP(err).Message))
			continue
		}
		succeeded++
	}

	s.logger.Info("bulk "+action+" finished",
		zap.String("company_id", tc.CompanyID),
		zap.String("actor_id", tc.ActorID),
		zap.Int("items", len(items)),
		zap.Int("succeeded", succeeded),
		zap.Int("failed", failed),
	)
	return succeeded, failed, errs, nil
}

// ListPending is the approver's inbox across every kind, oldest first. The
// actor's own requests never appear.
func (s *service) ListPending(ctx context.Context, tc tenant.Context) ([]PendingItem, error) {
	if err := s.authorizeApprover(tc); err != nil {
		return nil, err
	}

	type pending struct {
		item      PendingItem
		createdAt time.Time
	}
	var all []pending
	for _, k := range request.Kinds {
		st, ok := s.kinds[k]
		if !ok || st.Store == nil {
			continue
		}
		rows, err := st.Store.ListPendingRequests(ctx, tc.CompanyID, tc.ActorID)
		if err != nil {
			s.logger.Error("list pending failed",
				zap.String("company_id", tc.CompanyID),
				zap.String("kind", string(k)),
				zap.Error(err),
			)
			return nil, err
		}
		for _, r := range rows {
			resolution := s.resolver.Resolve(ctx, r)
			all = append(all, pending{
				item: PendingItem{
					Type:             k,
					ID:               r.ID,
					Reference:        r.Reference,
					RequesterID:      r.RequesterID,
					Status:           r.Status,
					Summary:          r.Summary,
					ApprovalStep:     r.ApprovalStep,
					NextApproverRole: resolution.RequiredRole,
					CreatedAt:        r.CreatedAt.Format(time.RFC3339),
				},
				createdAt: r.CreatedAt,
			})
		}
	}

	sort.SliceStable(all, func(i, j int) bool { return all[i].createdAt.Before(all[j].createdAt) })
	items := make([]PendingItem, len(all))
	for i, p := range all {
		items[i] = p.item
	}
	s.fillRequesterNames(ctx, tc.CompanyID, items)
	return items, nil
}

// fillRequesterNames is best effort; the inbox is still usable by id.
func (s *service) fillRequesterNames(ctx context.Context, companyID string, items []PendingItem) {
	if s.directory == nil || len(items) == 0 {
		return
	}
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.RequesterID]; ok {
			continue
		}
		seen[it.RequesterID] = struct{}{}
		ids = append(ids, it.RequesterID)
	}
	names, err := s.directory.NamesByIDs(ctx, companyID, ids)
	if err != nil {
		s.logger.Warn("resolve requester names failed", zap.String("company_id", companyID), zap.Error(err))
		return
	}
	for i := range items {
		items[i].RequesterName = names[items[i].RequesterID]
	}
}

func (s *service) Counts(ctx context.Context, tc tenant.Context) (Counts, error) {
	if err := s.authorizeApprover(tc); err != nil {
		return Counts{}, err
	}

	var out Counts
	for _, k := range request.Kinds {
		st, ok := s.kinds[k]
		if !ok || st.Store == nil {
			continue
		}
		n, err := st.Store.CountPendingRequests(ctx, tc.CompanyID, tc.ActorID)
		if err != nil {
			return Counts{}, err
		}
		switch k {
		case request.KindLeave:
			out.Leaves = n
		case request.KindExpense:
			out.Expenses = n
		case request.KindTicket:
			out.Requests = n
		}
	}
	out.Total = out.Leaves + out.Expenses + out.Requests
	return out, nil
}

func (s *service) authorizeApprover(tc tenant.Context) error {
	if err := tc.Validate(); err != nil {
		return err
	}
	if !tc.Role.AtLeast(tenant.RoleManager) {
		return approvalerrors.ErrUnauthorized
	}
	return nil
}

// loadForDecision applies the approve/reject guards: approver role, tenant
// scoped lookup, no self-approval and a pending status.
func (s *service) loadForDecision(ctx context.Context, tc tenant.Context, kind, id string) (request.Kind, Strategy, request.Request, error) {
	if err := s.authorizeApprover(tc); err != nil {
		return "", Strategy{}, request.Request{}, err
	}
	k, st, ok := s.kinds.lookup(kind)
	if !ok {
		return "", Strategy{}, request.Request{}, approvalerrors.ErrUnknownKind
	}
	r, err := st.Store.FindRequest(ctx, tc.CompanyID, id)
	if err != nil {
		return "", Strategy{}, request.Request{}, mapStoreError(err)
	}
	if r.RequesterID == tc.ActorID {
		return "", Strategy{}, request.Request{}, approvalerrors.ErrSelfApproval
	}
	if !st.Lifecycle.IsPending(r.Status) {
		return "", Strategy{}, request.Request{}, approvalerrors.ErrInvalidState
	}
	return k, st, r, nil
}

func (s *service) loadForFollowUp(ctx context.Context, tc tenant.Context, kind, id string, floor tenant.Role) (request.Kind, Strategy, request.Request, error) {
	if err := tc.Validate(); err != nil {
		return "", Strategy{}, request.Request{}, err
	}
	if !tc.Role.AtLeast(floor) {
		return "", Strategy{}, request.Request{}, approvalerrors.ErrUnauthorized
	}
	k, st, ok := s.kinds.lookup(kind)
	if !ok {
		return "", Strategy{}, request.Request{}, approvalerrors.ErrActionNotSupported
	}
	r, err := st.Store.FindRequest(ctx, tc.CompanyID, id)
	if err != nil {
		return "", Strategy{}, request.Request{}, mapStoreError(err)
	}
	if r.RequesterID == tc.ActorID {
		return "", Strategy{}, request.Request{}, approvalerrors.ErrSelfApproval
	}
	return k, st, r, nil
}

func (s *service) record(ctx context.Context, tc tenant.Context, action string, r request.Request, comment *string) {
	if s.activity == nil {
		return
	}
	desc := fmt.Sprintf("%s %s %s", action, r.Kind, r.Reference)
	if comment != nil && *comment != "" {
		desc += ": " + *comment
	}
	err := s.activity.Record(ctx, activity.Entry{
		CompanyID:   tc.CompanyID,
		ActorID:     tc.ActorID,
		Action:      action,
		EntityType:  string(r.Kind),
		EntityID:    r.ID,
		Description: desc,
	})
	if err != nil {
		s.logger.Warn("record approval activity failed",
			zap.String("request_id", r.ID),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func mapStoreError(err error) error {
	switch {
	case errors.Is(err, request.ErrNotFound):
		return approvalerrors.ErrRequestNotFound
	case errors.Is(err, request.ErrStaleStatus):
		return approvalerrors.ErrInvalidState
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) && appErr.Code == apperror.CodeNotFound {
		return approvalerrors.ErrRequestNotFound
	}
	return err
}
