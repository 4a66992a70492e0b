// Package tenant carries the resolved caller identity through the engine.
// Every entry point takes a Context explicitly; nothing reads tenant state
// from globals or the request.
package tenant

import (
	"strings"

	"go-workforce/internal/shared/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

var roleRank = map[Role]int{
	RoleEmployee: 1,
	RoleManager:  2,
	RoleHR:       3,
	RoleAdmin:    4,
}

// ParseRole normalises a role claim. Unknown values resolve to RoleEmployee.
func ParseRole(v string) Role {
	r := Role(strings.ToLower(strings.TrimSpace(v)))
	if _, ok := roleRank[r]; ok {
		return r
	}
	return RoleEmployee
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r ranks at or above floor.
func (r Role) AtLeast(floor Role) bool {
	return roleRank[r] >= roleRank[floor] && roleRank[floor] > 0
}

// Context is the caller resolved at the API boundary.
type Context struct {
	CompanyID string
	ActorID   string
	Role      Role
}

func New(companyID, actorID string, role Role) Context {
	return Context{CompanyID: companyID, ActorID: actorID, Role: role}
}

// Validate checks that the identity is usable for tenant-scoped queries.
func (c Context) Validate() error {
	if _, err := uuid.Parse(c.CompanyID); err != nil {
		return apperror.ErrUnauthorized
	}
	if _, err := uuid.Parse(c.ActorID); err != nil {
		return apperror.ErrUnauthorized
	}
	return nil
}

// RequireRole returns apperror.ErrForbidden when the actor ranks below floor.
func (c Context) RequireRole(floor Role) error {
	if !c.Role.AtLeast(floor) {
		return apperror.ErrForbidden
	}
	return nil
}

// FromGin reads the identity set by middleware.AuthMiddleware.
func FromGin(c *gin.Context) Context {
	actorID := c.GetString("employee_id")
	if actorID == "" {
		actorID = c.GetString("user_id")
	}
	return Context{
		CompanyID: c.GetString("company_id"),
		ActorID:   actorID,
		Role:      ParseRole(c.GetString("role")),
	}
}
