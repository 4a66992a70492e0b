package conflict

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

//go:generate mockgen -source=conflict_service.go -destination=mock/conflict_service_mock.go -package=mock
type Service interface {
	Check(ctx context.Context, companyID, requesterID string, start, end time.Time, excludeLeaveID string) (Report, error)
}

type service struct {
	team     TeamDirectory
	absences AbsenceReader
	policy   Policy
	logger   *zap.Logger
}

func NewService(team TeamDirectory, absences AbsenceReader, policy Policy, logger ...*zap.Logger) Service {
	l := zap.L().Named("conflict.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("conflict.service")
	}
	return &service{team: team, absences: absences, policy: policy, logger: l}
}

func (s *service) Check(ctx context.Context, companyID, requesterID string, start, end time.Time, excludeLeaveID string) (Report, error) {
	s.logger.Debug("check leave conflicts",
		zap.String("company_id", companyID),
		zap.String("employee_id", requesterID),
		zap.String("start_date", start.Format("2006-01-02")),
		zap.String("end_date", end.Format("2006-01-02")),
	)

	mates, err := s.team.ListTeammates(ctx, companyID, requesterID)
	if err != nil {
		return Report{}, err
	}
	teamSize := len(mates) + 1
	if len(mates) == 0 {
		return Report{Level: LevelNone, TeamSize: teamSize, OverlappingUsers: []OverlappingUser{}}, nil
	}

	names := make(map[string]string, len(mates))
	ids := make([]string, 0, len(mates))
	for _, m := range mates {
		id := m.ID.String()
		names[id] = m.FullName
		ids = append(ids, id)
	}

	absences, err := s.absences.ListActiveAbsences(ctx, companyID, ids, start, end)
	if err != nil {
		s.logger.Error("list team absences failed", zap.String("company_id", companyID), zap.Error(err))
		return Report{}, err
	}

	seen := make(map[string]bool)
	overlapping := make([]OverlappingUser, 0)
	for _, a := range absences {
		if a.LeaveID == excludeLeaveID || a.EmployeeID == requesterID || !a.Overlaps(start, end) {
			continue
		}
		if _, onTeam := names[a.EmployeeID]; !onTeam || seen[a.EmployeeID] {
			continue
		}
		seen[a.EmployeeID] = true
		overlapping = append(overlapping, OverlappingUser{
			EmployeeID: a.EmployeeID,
			Name:       names[a.EmployeeID],
			LeaveID:    a.LeaveID,
			Status:     a.Status,
			StartDate:  a.Start.Format("2006-01-02"),
			EndDate:    a.End.Format("2006-01-02"),
		})
	}
	sort.Slice(overlapping, func(i, j int) bool {
		return overlapping[i].StartDate < overlapping[j].StartDate
	})

	level := s.policy.Classify(len(overlapping), teamSize)
	report := Report{
		HasConflict:      len(overlapping) > 0,
		Level:            level,
		Message:          message(level, len(overlapping), teamSize),
		TeamSize:         teamSize,
		OverlappingUsers: overlapping,
	}
	if report.HasConflict {
		s.logger.Info("leave conflict detected",
			zap.String("company_id", companyID),
			zap.String("employee_id", requesterID),
			zap.String("level", string(level)),
			zap.Int("overlapping", len(overlapping)),
		)
	}
	return report, nil
}

func message(level Level, overlapping, teamSize int) string {
	switch level {
	case LevelCritical:
		return fmt.Sprintf("%d of %d team members are already away in this period", overlapping, teamSize)
	case LevelWarning:
		if overlapping == 1 {
			return "1 team member is already away in this period"
		}
		return fmt.Sprintf("%d team members are already away in this period", overlapping)
	default:
		return ""
	}
}
