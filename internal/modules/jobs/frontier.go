package jobs

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// FrontierPoint is one candidate in a batch comparison: the resource
// estimate for a single target, tagged with whether it sits on the
// Pareto frontier of physical qubits versus runtime.
type FrontierPoint struct {
	JobID          string  `json:"job_id"`
	Target         string  `json:"target"`
	PhysicalQubits float64 `json:"physical_qubits"`
	RuntimeNs      float64 `json:"runtime_ns"`
	OnFrontier     bool    `json:"on_frontier"`
}

// FrontierReport is the batch comparison result.
type FrontierReport struct {
	GroupID string          `json:"group_id"`
	Points  []FrontierPoint `json:"points"`

	// Correlation between qubit count and runtime across the batch.
	// Near -1 indicates a genuine space/time tradeoff worth plotting.
	QubitRuntimeCorrelation float64 `json:"qubit_runtime_correlation"`
}

// Frontier computes the Pareto frontier over the succeeded jobs of a
// batch group, minimizing both physical qubits and runtime. Jobs without
// results are skipped; at least one succeeded job is required.
func (s *Service) Frontier(groupID string) (*FrontierReport, error) {
	group, err := s.repo.ListByGroup(groupID)
	if err != nil {
		return nil, err
	}
	if len(group) == 0 {
		return nil, fmt.Errorf("%w: group %s", ErrNotFound, groupID)
	}

	var points []FrontierPoint
	for _, job := range group {
		if job.Status != StatusSucceeded {
			continue
		}
		result, err := s.Results(job.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("job_id", job.ID).Msg("Skipping group member without results")
			continue
		}
		points = append(points, FrontierPoint{
			JobID:          job.ID,
			Target:         job.TargetName,
			PhysicalQubits: float64(result.PhysicalQubits),
			RuntimeNs:      result.RuntimeNs,
		})
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("group %s has no succeeded jobs yet", groupID)
	}

	markFrontier(points)
	sort.Slice(points, func(i, j int) bool {
		return points[i].PhysicalQubits < points[j].PhysicalQubits
	})

	qubits := make([]float64, len(points))
	runtimes := make([]float64, len(points))
	for i, p := range points {
		qubits[i] = p.PhysicalQubits
		runtimes[i] = p.RuntimeNs
	}

	report := &FrontierReport{
		GroupID: groupID,
		Points:  points,
	}
	if len(points) > 1 {
		report.QubitRuntimeCorrelation = stat.Correlation(qubits, runtimes, nil)
	}

	return report, nil
}

// markFrontier flags the Pareto-minimal points in place. A point is on
// the frontier when no other point is at least as good on both axes and
// strictly better on one. Batches are small, so the quadratic check is
// fine and avoids tie-handling subtleties in a sweep.
func markFrontier(points []FrontierPoint) {
	for i := range points {
		dominated := false
		for j := range points {
			if i == j {
				continue
			}
			better := points[j].PhysicalQubits <= points[i].PhysicalQubits &&
				points[j].RuntimeNs <= points[i].RuntimeNs
			strictly := points[j].PhysicalQubits < points[i].PhysicalQubits ||
				points[j].RuntimeNs < points[i].RuntimeNs
			if better && strictly {
				dominated = true
				break
			}
		}
		points[i].OnFrontier = !dominated
	}
}
