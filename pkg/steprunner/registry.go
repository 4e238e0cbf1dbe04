package steprunner

import (
	"fmt"
	"sort"
)

type RunnerFactory func(ctx ExecutionContext) (StepRunner, error)

// registry stores each type of step runner's factory function. GetRunner calls the appropriate StepRunner
// factory function to yield a new instance of that StepRunner
var registry = map[string]RunnerFactory{}

// This is called in each step runner's init() function to register its factory function with the registry.
func RegisterRunnerFactory(stepType string, factory RunnerFactory) {
	registry[stepType] = factory
}

// GetRunner returns an instance of the appropriate StepRunner based on the step's 'uses' field,
// calling the corresponding runner's factory function from the registry.
func GetRunner(ctx ExecutionContext) (StepRunner, error) {
	stepType := ctx.Step.Uses
	factory, ok := registry[stepType]
	if !ok {
		return nil, fmt.Errorf("no runner registered for type: %s", stepType)
	}

	return factory(ctx)
}

// Registered lists the registered step types.
func Registered() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
