package timing

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// Kind identifies a time strategy.
type Kind int

// The time strategies.
const (
	BestEffort Kind = iota
	FixedSimulationStep
	FixedSimulationStepExternalTrigger
)

// A Descriptor describes one kind of strategy.
type Descriptor struct {
	// Kind is the identifier of the strategy.
	Kind Kind

	// Token is the stable machine-readable name of the strategy, used when
	// the strategy is written to a configuration.
	Token string

	// Label is the name of the strategy displayed to users.
	Label string

	build func(cfg Config) (Strategy, error)
}

var registry = map[Kind]Descriptor{
	BestEffort: {
		Kind:  BestEffort,
		Token: "TimeStrategies.BestEffort",
		Label: "Best Effort",
		build: func(cfg Config) (Strategy, error) {
			return NewBestEffort(cfg), nil
		},
	},
	FixedSimulationStep: {
		Kind:  FixedSimulationStep,
		Token: "TimeStrategies.FixedSimulationStep",
		Label: "Fixed Simulation Step",
		build: func(cfg Config) (Strategy, error) {
			return NewFixedStep(cfg)
		},
	},
	FixedSimulationStepExternalTrigger: {
		Kind:  FixedSimulationStepExternalTrigger,
		Token: "TimeStrategies.FixedSimulationStepExternalTrigger",
		Label: "Fixed Simulation Step with an external trigger",
		build: func(cfg Config) (Strategy, error) {
			return NewExternalTrigger(cfg)
		},
	},
}

var kindNames = map[Kind]string{
	BestEffort:                         "BestEffort",
	FixedSimulationStep:                "FixedSimulationStep",
	FixedSimulationStepExternalTrigger: "FixedSimulationStepExternalTrigger",
}

// String returns the identifier of the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// Make builds a new strategy of the given kind. It returns a nil strategy and
// ErrUnknownStrategy if the kind is not registered.
func Make(kind Kind, cfg Config) (Strategy, error) {
	d, ok := registry[kind]
	if !ok {
		return nil, ErrUnknownStrategy
	}

	return d.build(cfg)
}

// Token returns the machine-readable token of the kind, or an empty string if
// the kind is not registered.
func Token(kind Kind) string {
	return registry[kind].Token
}

// LabelOf returns the human-readable label of the kind, or an empty string if
// the kind is not registered.
func LabelOf(kind Kind) string {
	return registry[kind].Label
}

// ParseKind finds the kind named by either its identifier or its token.
func ParseKind(s string) (Kind, bool) {
	for kind, d := range registry {
		if s == d.Token || s == kindNames[kind] {
			return kind, true
		}
	}

	return 0, false
}

// Descriptors lists all the registered strategies, ordered by kind.
func Descriptors() []Descriptor {
	list := make([]Descriptor, 0, len(registry))
	for _, d := range registry {
		list = append(list, d)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].Kind < list[j].Kind
	})

	return list
}

// MarshalYAML writes the kind as its token.
func (k Kind) MarshalYAML() (interface{}, error) {
	token := Token(k)
	if token == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, k)
	}

	return token, nil
}

// UnmarshalYAML reads a kind from either its identifier or its token.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	var s string

	err := value.Decode(&s)
	if err != nil {
		return err
	}

	kind, ok := ParseKind(s)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}

	*k = kind

	return nil
}
