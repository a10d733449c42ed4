package harness

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kip-d/omnifocus-mcp-sub005/internal/cli"
)

// Scenario defines a conformance test scenario: one filter document,
// the fixture tasks it runs against, and the IDs it must match.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed
	// on it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Document is the filter document under test, inline in the same
	// schema the CLI loads from disk.
	Document cli.Document `yaml:"document"`

	// Tasks is the fixture dataset.
	Tasks []Task `yaml:"tasks"`

	// Expect lists the task IDs the document must match, in result
	// order.
	Expect Expectation `yaml:"expect"`
}

// Expectation is the required outcome of a scenario.
type Expectation struct {
	IDs []string `yaml:"ids"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("scenario %s: missing name", path)
	}
	if len(sc.Tasks) == 0 {
		return nil, fmt.Errorf("scenario %s: no fixture tasks", path)
	}

	seen := make(map[string]bool, len(sc.Tasks))
	for i, task := range sc.Tasks {
		if task.ID == "" {
			return nil, fmt.Errorf("scenario %s: task %d has no id", path, i)
		}
		if seen[task.ID] {
			return nil, fmt.Errorf("scenario %s: duplicate task id %q", path, task.ID)
		}
		seen[task.ID] = true
	}
	for _, id := range sc.Expect.IDs {
		if !seen[id] {
			return nil, fmt.Errorf("scenario %s: expected id %q not in fixture", path, id)
		}
	}

	return &sc, nil
}
