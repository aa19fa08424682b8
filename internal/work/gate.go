package work

// ServiceChecker defines the interface for checking estimation service
// state. This lets the work package gate on reachability and quota
// without depending on the estimator client directly.
type ServiceChecker interface {
	// IsReachable returns true if the estimation service answers health checks.
	IsReachable() bool

	// HasQuota returns true if the service reports remaining submission quota.
	// Unknown quota counts as available; the service enforces the real limit.
	HasQuota() bool
}

// ServiceGate checks whether work can execute given its gating constraint.
type ServiceGate struct {
	checker ServiceChecker
}

// NewServiceGate creates a new service gate.
func NewServiceGate(checker ServiceChecker) *ServiceGate {
	return &ServiceGate{
		checker: checker,
	}
}

// CanExecute returns true if the work can execute given its gating constraint.
func (g *ServiceGate) CanExecute(gating Gating, subject string) bool {
	switch gating {
	case AnyTime:
		return true

	case ServiceReachable:
		return g.checker.IsReachable()

	case QuotaAvailable:
		return g.checker.IsReachable() && g.checker.HasQuota()

	default:
		// Unknown gating - be safe and don't execute
		return false
	}
}
