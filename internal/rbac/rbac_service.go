package rbac

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"go.uber.org/zap"
)

// EnforceRequest asks whether a caller holding Role in CompanyID may perform
// Action on Resource.
type EnforceRequest struct {
	Role      string
	CompanyID string
	Resource  string
	Action    string
}

type Service interface {
	Enforce(req EnforceRequest) (bool, error)
}

type service struct {
	enforcer *casbin.Enforcer
	logger   *zap.Logger
}

func NewService(enforcer *casbin.Enforcer, logger ...*zap.Logger) Service {
	l := zap.L().Named("rbac")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("rbac")
	}
	return &service{enforcer: enforcer, logger: l}
}

func (s *service) Enforce(req EnforceRequest) (bool, error) {
	role := normalizeRole(req.Role)
	if role == "" {
		return false, nil
	}

	allowed, err := s.enforcer.Enforce(role, req.CompanyID, req.Resource, req.Action)
	if err != nil {
		return false, fmt.Errorf("enforce %s:%s: %w", req.Resource, req.Action, err)
	}
	if !allowed {
		s.logger.Debug("permission denied",
			zap.String("role", role),
			zap.String("company_id", req.CompanyID),
			zap.String("resource", req.Resource),
			zap.String("action", req.Action),
		)
	}
	return allowed, nil
}
