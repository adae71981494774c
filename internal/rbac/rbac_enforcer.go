package rbac

import (
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const (
	ResourceAttendance = "attendance"
	ActionViewDetails  = "details"

	// AnyCompany scopes a policy to every company.
	AnyCompany = "*"
)

// Subjects are token roles. A policy applies in its own company or, with
// AnyCompany, in all of them.
const modelText = `[request_definition]
r = sub, dom, obj, act

[policy_definition]
p = sub, dom, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && (p.dom == "*" || r.dom == p.dom) && r.obj == p.obj && r.act == p.act
`

// Policy allows Role to perform Action on Resource within CompanyID.
type Policy struct {
	Role      string
	CompanyID string
	Resource  string
	Action    string
}

// DetailsPolicies grants the attendance drill-down to roles in every company.
func DetailsPolicies(roles []string) []Policy {
	policies := make([]Policy, 0, len(roles))
	for _, role := range roles {
		policies = append(policies, Policy{
			Role:      role,
			CompanyID: AnyCompany,
			Resource:  ResourceAttendance,
			Action:    ActionViewDetails,
		})
	}
	return policies
}

// NewEnforcer builds an in-memory enforcer holding policies.
func NewEnforcer(policies []Policy) (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("load rbac model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create rbac enforcer: %w", err)
	}

	for _, p := range policies {
		role := normalizeRole(p.Role)
		if role == "" {
			return nil, fmt.Errorf("rbac policy for %s:%s has no role", p.Resource, p.Action)
		}
		if _, err := e.AddPolicy(role, p.CompanyID, p.Resource, p.Action); err != nil {
			return nil, fmt.Errorf("add rbac policy %s %s:%s: %w", role, p.Resource, p.Action, err)
		}
	}
	return e, nil
}

func normalizeRole(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
