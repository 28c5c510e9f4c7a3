package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/incline/internal/dynamo"
)

// Default is the scheme the incline scenarios were designed around.
const Default = "semi-implicit"

var factories = map[string]func() dynamo.Integrator{
	"semi-implicit": func() dynamo.Integrator { return NewSemiImplicitEuler() },
	"euler":         func() dynamo.Integrator { return NewEuler() },
	"rk4":           func() dynamo.Integrator { return NewRK4() },
	"verlet":        func() dynamo.Integrator { return NewVerlet() },
}

// New returns a fresh integrator by name. An empty name selects Default.
func New(name string) (dynamo.Integrator, error) {
	if name == "" {
		name = Default
	}
	fn, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
