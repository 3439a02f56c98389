package server

import (
	. "gridplan/grid_world"
	"gridplan/reinforcement"
)

// StateResult is one state's entry in a solve response.
type StateResult struct {
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Value  float64 `json:"value"`
	Action Action  `json:"action"`
}

// SolveResponse is the json form of a Solution.
type SolveResponse struct {
	Algorithm    reinforcement.Algorithm `json:"algorithm"`
	Layout       []string                `json:"layout"`
	Converged    bool                    `json:"converged"`
	Sweeps       int                     `json:"sweeps"`
	Improvements int                     `json:"improvements"`
	Residual     float64                 `json:"residual"`
	Deltas       []float64               `json:"deltas"`
	States       []StateResult           `json:"states"`
	// Error is set when a best-effort solution is returned, e.g. an unstable policy.
	Error string `json:"error,omitempty"`
}

func NewSolveResponse(
	algorithm reinforcement.Algorithm,
	grid *Config,
	sol *reinforcement.Solution,
	solveErr error,
) *SolveResponse {
	if parsed, err := reinforcement.ParseAlgorithm(string(algorithm)); err == nil {
		algorithm = parsed
	}

	resp := &SolveResponse{
		Algorithm:    algorithm,
		Layout:       grid.Layout(),
		Converged:    sol.Converged,
		Sweeps:       sol.Sweeps,
		Improvements: sol.Improvements,
		Residual:     reinforcement.Residual(grid, sol.Values),
		Deltas:       sol.Deltas,
	}
	if solveErr != nil {
		resp.Error = solveErr.Error()
	}

	for _, s := range sol.Values.States() {
		action, _ := sol.Policy.Action(s)
		resp.States = append(resp.States, StateResult{
			X:      s.X,
			Y:      s.Y,
			Value:  sol.Values.Value(s),
			Action: action,
		})
	}
	return resp
}
