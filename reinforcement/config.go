package reinforcement

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	. "gridplan/grid_world"

	"github.com/spf13/viper"
	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"
)

// Algorithm selects a solver.
type Algorithm string

const (
	VALUE_ITERATION  Algorithm = "value_iteration"
	POLICY_ITERATION Algorithm = "policy_iteration"
)

var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// ParseAlgorithm accepts the full algorithm names and their vi/pi abbreviations.
func ParseAlgorithm(name string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vi", string(VALUE_ITERATION), "":
		return VALUE_ITERATION, nil
	case "pi", string(POLICY_ITERATION):
		return POLICY_ITERATION, nil
	}
	return "", fmt.Errorf("%q: %w", name, ErrUnknownAlgorithm)
}

const KIND_SOLVER = "solver"

type OuterConfig struct {
	Kind string      `mapstructure:"kind"`
	Def  interface{} `mapstructure:"def"`
}

// SolverConfig encodes the solver choice, its parameters and the grid outside of code.
// Viper lowercases every key it reads, so the inner yaml tags are all lowercase.
type SolverConfig struct {
	Algorithm Algorithm `yaml:"algorithm" json:"algorithm"`
	// HyperParams is a key-val pair of param names and their value: theta, gamma.
	HyperParams     []HyperParameter `yaml:"hyperparams" json:"hyperParams"`
	MaxIters        int              `yaml:"maxiters" json:"maxIters"`
	MaxEvalIters    int              `yaml:"maxevaliters" json:"maxEvalIters"`
	MaxImprovements int              `yaml:"maximprovements" json:"maxImprovements"`
	// Seed seeds policy iteration's initial policy; nil means time-seeded.
	Seed *uint64  `yaml:"seed" json:"seed,omitempty"`
	Grid GridSpec `yaml:"grid" json:"grid"`
}

// GridSpec is a layout in the grid_world rune format plus optional reward overrides.
type GridSpec struct {
	Layout         []string `yaml:"layout" json:"layout"`
	StepReward     *float64 `yaml:"stepreward" json:"stepReward,omitempty"`
	GoalReward     *float64 `yaml:"goalreward" json:"goalReward,omitempty"`
	ObstacleReward *float64 `yaml:"obstaclereward" json:"obstacleReward,omitempty"`
}

type HyperParameter struct {
	Key string  `yaml:"key" json:"key"`
	Val float64 `yaml:"val" json:"val"`
}

// DefaultSolverConfig solves the debug grid by value iteration.
func DefaultSolverConfig() *SolverConfig {
	return &SolverConfig{
		Algorithm: VALUE_ITERATION,
		Grid:      GridSpec{Layout: DebugGrid},
	}
}

func (cfg *SolverConfig) GetHyperParamOrDefault(param string, defaultVal float64) float64 {
	for _, kvp := range cfg.HyperParams {
		if strings.EqualFold(kvp.Key, param) {
			return kvp.Val
		}
	}
	return defaultVal
}

// SetHyperParam overwrites or appends a hyper parameter.
func (cfg *SolverConfig) SetHyperParam(param string, val float64) {
	for i := range cfg.HyperParams {
		if strings.EqualFold(cfg.HyperParams[i].Key, param) {
			cfg.HyperParams[i].Val = val
			return
		}
	}
	cfg.HyperParams = append(cfg.HyperParams, HyperParameter{Key: param, Val: val})
}

func (cfg *SolverConfig) Theta() float64 {
	return cfg.GetHyperParamOrDefault("theta", DEFAULT_THETA)
}

func orDefault(val, defaultVal int) int {
	if val <= 0 {
		return defaultVal
	}
	return val
}

// GridConfig builds the grid described by the config. An empty layout is the debug grid.
func (cfg *SolverConfig) GridConfig() (*Config, error) {
	layout := cfg.Grid.Layout
	if len(layout) == 0 {
		layout = DebugGrid
	}

	grid, err := FromLayout(layout)
	if err != nil {
		return nil, err
	}

	grid.Gamma = cfg.GetHyperParamOrDefault("gamma", DEFAULT_GAMMA)
	if cfg.Grid.StepReward != nil {
		grid.StepReward = *cfg.Grid.StepReward
	}
	if cfg.Grid.GoalReward != nil {
		grid.GoalReward = *cfg.Grid.GoalReward
	}
	if cfg.Grid.ObstacleReward != nil {
		grid.ObstacleReward = *cfg.Grid.ObstacleReward
	}
	return grid, nil
}

// Source returns the seeded random source for policy iteration, or nil when unseeded.
func (cfg *SolverConfig) Source() rand.Source {
	if cfg.Seed == nil {
		return nil
	}
	return rand.NewSource(*cfg.Seed)
}

// Solve runs the configured algorithm on grid. Only policy iteration can return an error,
// ErrPolicyUnstable, in which case the solution is still populated.
func (cfg *SolverConfig) Solve(grid *Config, progress ProgressFunc) (*Solution, error) {
	algorithm, err := ParseAlgorithm(string(cfg.Algorithm))
	if err != nil {
		return nil, err
	}

	switch algorithm {
	case POLICY_ITERATION:
		return NewPolicyIteration(grid, cfg.Source()).
			WithMaxImprovements(cfg.MaxImprovements).
			WithProgress(progress).
			Solve(cfg.Theta(), orDefault(cfg.MaxEvalIters, DEFAULT_MAX_EVAL_ITERS))
	default:
		return NewValueIteration(grid).
			WithProgress(progress).
			Solve(cfg.Theta(), orDefault(cfg.MaxIters, DEFAULT_MAX_ITERS)), nil
	}
}

// FromYaml reads a solver config. The file holds an outer {kind, def} document read by viper;
// def is re-marshalled and decoded into a SolverConfig.
func FromYaml(path string) (*SolverConfig, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")
	vp.AddConfigPath(filepath.Dir(path))
	var err error
	if err = vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	outerConfig := &OuterConfig{}
	if err = vp.Unmarshal(outerConfig); err != nil {
		return nil, err
	}
	if outerConfig.Kind != "" && outerConfig.Kind != KIND_SOLVER {
		return nil, fmt.Errorf("config %s: unsupported kind %q", path, outerConfig.Kind)
	}

	var defYaml []byte
	if defYaml, err = yaml.Marshal(outerConfig.Def); err != nil {
		return nil, err
	}

	innerConfig := DefaultSolverConfig()
	if err = yaml.Unmarshal(defYaml, innerConfig); err != nil {
		return nil, err
	}
	if innerConfig.Algorithm, err = ParseAlgorithm(string(innerConfig.Algorithm)); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return innerConfig, nil
}
