package game

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AgentConfig holds tuneable parameters for an IntrusionAgent.
type AgentConfig struct {
	DetectionRange   float64 `yaml:"detection_range"`   // player range that forces assessing
	DecisionInterval float64 `yaml:"decision_interval"` // seconds between cadence checks
	DeceptionChance  float64 `yaml:"deception_chance"`  // 0-1, chance to deceive after assessing

	MeleeRange        float64 `yaml:"melee_range"`
	AttackCooldown    float64 `yaml:"attack_cooldown"`
	MaxAttackAttempts int     `yaml:"max_attack_attempts"`

	MoveSpeed    float64 `yaml:"move_speed"` // units per second
	EyeHeight    float64 `yaml:"eye_height"` // path checks start this far above the feet
	JumpHeight   float64 `yaml:"jump_height"`
	JumpDistance float64 `yaml:"jump_distance"`
	JumpCooldown float64 `yaml:"jump_cooldown"`
	JumpDuration float64 `yaml:"jump_duration"`

	PatrolRadius  float64 `yaml:"patrol_radius"`
	PatrolSamples int     `yaml:"patrol_samples"`
	ArriveRadius  float64 `yaml:"arrive_radius"`
	BlockedMemory float64 `yaml:"blocked_memory"` // seconds an obstructed entry is skipped

	MinDeceptionDelay float64 `yaml:"min_deception_delay"`
	MaxDeceptionDelay float64 `yaml:"max_deception_delay"`
	TapVariants       int     `yaml:"tap_variants"`
	CreakVariants     int     `yaml:"creak_variants"`
}

// FortConfig holds tuneable parameters for board placement and strength.
type FortConfig struct {
	BoardWeight         float64 `yaml:"board_weight"`
	ObstacleWeight      float64 `yaml:"obstacle_weight"`
	ObstacleCheckRadius float64 `yaml:"obstacle_check_radius"`
	MaxRollDegrees      float64 `yaml:"max_roll_degrees"` // random in-plane board rotation bound
	BoardThickness      float64 `yaml:"board_thickness"`
	BoardStandoff       float64 `yaml:"board_standoff"` // distance in front of the window surface
}

// BoardingConfig tunes the player's hammer interaction.
type BoardingConfig struct {
	MaxBoardDistance  float64 `yaml:"max_board_distance"`
	PlacementCooldown float64 `yaml:"placement_cooldown"`
	HoldTimeRequired  float64 `yaml:"hold_time_required"`
	BreakHoldTime     float64 `yaml:"break_hold_time"`
}

// ImpactConfig tunes impact sound shaping.
type ImpactConfig struct {
	MinVolume         float64 `yaml:"min_volume"`
	MaxVolume         float64 `yaml:"max_volume"`
	MinPitch          float64 `yaml:"min_pitch"`
	MaxPitch          float64 `yaml:"max_pitch"`
	MinImpactForce    float64 `yaml:"min_impact_force"`
	MaxImpactForce    float64 `yaml:"max_impact_force"`
	PlayerCheckRadius float64 `yaml:"player_check_radius"`
	MinInterval       float64 `yaml:"min_interval"`
	Variants          int     `yaml:"variants"`
}

// Tuning groups every tuneable block.
type Tuning struct {
	Agent    AgentConfig    `yaml:"agent"`
	Fort     FortConfig     `yaml:"fortification"`
	Boarding BoardingConfig `yaml:"boarding"`
	Impact   ImpactConfig   `yaml:"impact"`
}

var defaultAgentConfig = AgentConfig{
	DetectionRange:    20,
	DecisionInterval:  1,
	DeceptionChance:   0.3,
	MeleeRange:        2,
	AttackCooldown:    3,
	MaxAttackAttempts: 3,
	MoveSpeed:         3,
	EyeHeight:         0.5,
	JumpHeight:        2,
	JumpDistance:      3,
	JumpCooldown:      2,
	JumpDuration:      0.5,
	PatrolRadius:      10,
	PatrolSamples:     10,
	ArriveRadius:      1,
	BlockedMemory:     6,
	MinDeceptionDelay: 2,
	MaxDeceptionDelay: 5,
	TapVariants:       3,
	CreakVariants:     3,
}

var defaultFortConfig = FortConfig{
	BoardWeight:         0.5,
	ObstacleWeight:      0.3,
	ObstacleCheckRadius: 1,
	MaxRollDegrees:      6,
	BoardThickness:      0.08,
	BoardStandoff:       0.05,
}

var defaultBoardingConfig = BoardingConfig{
	MaxBoardDistance:  3,
	PlacementCooldown: 0.5,
	HoldTimeRequired:  0.5,
	BreakHoldTime:     1.5,
}

var defaultImpactConfig = ImpactConfig{
	MinVolume:         0.3,
	MaxVolume:         1,
	MinPitch:          0.8,
	MaxPitch:          1.2,
	MinImpactForce:    2,
	MaxImpactForce:    10,
	PlayerCheckRadius: 20,
	MinInterval:       0.1,
	Variants:          2,
}

// DefaultAgentConfig returns the baseline agent tuning.
func DefaultAgentConfig() AgentConfig { return defaultAgentConfig }

// DefaultFortConfig returns the baseline fortification tuning.
func DefaultFortConfig() FortConfig { return defaultFortConfig }

// DefaultTuning returns every block at its default.
func DefaultTuning() Tuning {
	return Tuning{
		Agent:    defaultAgentConfig,
		Fort:     defaultFortConfig,
		Boarding: defaultBoardingConfig,
		Impact:   defaultImpactConfig,
	}
}

// LoadTuning reads a YAML file over the defaults. Keys missing from the file
// keep their default values.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse tuning %s: %w", path, err)
	}
	if err := t.Validate(); err != nil {
		return t, fmt.Errorf("tuning %s: %w", path, err)
	}
	return t, nil
}

// Marshal renders the tuning as YAML.
func (t Tuning) Marshal() ([]byte, error) {
	return yaml.Marshal(t)
}

// Validate rejects values the simulation cannot run with.
func (t Tuning) Validate() error {
	a := t.Agent
	var errs []error
	if a.DecisionInterval <= 0 {
		errs = append(errs, errors.New("agent.decision_interval must be > 0"))
	}
	if a.DeceptionChance < 0 || a.DeceptionChance > 1 {
		errs = append(errs, errors.New("agent.deception_chance must be within [0,1]"))
	}
	if a.MinDeceptionDelay < 0 || a.MaxDeceptionDelay < a.MinDeceptionDelay {
		errs = append(errs, errors.New("agent deception delays must satisfy 0 <= min <= max"))
	}
	if a.JumpDuration <= 0 {
		errs = append(errs, errors.New("agent.jump_duration must be > 0"))
	}
	if a.MaxAttackAttempts < 1 {
		errs = append(errs, errors.New("agent.max_attack_attempts must be >= 1"))
	}
	if a.PatrolSamples < 1 {
		errs = append(errs, errors.New("agent.patrol_samples must be >= 1"))
	}
	if a.BlockedMemory < 0 {
		errs = append(errs, errors.New("agent.blocked_memory must be >= 0"))
	}
	if t.Fort.ObstacleCheckRadius < 0 {
		errs = append(errs, errors.New("fortification.obstacle_check_radius must be >= 0"))
	}
	if t.Impact.MaxImpactForce <= t.Impact.MinImpactForce {
		errs = append(errs, errors.New("impact.max_impact_force must exceed min_impact_force"))
	}
	return errors.Join(errs...)
}
