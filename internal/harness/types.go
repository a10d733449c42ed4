package harness

import "time"

// Task is a fixture task a scenario evaluates filters against. The
// fields mirror the properties the generated scripts can reference.
type Task struct {
	ID        string     `yaml:"id" json:"id"`
	Name      string     `yaml:"name" json:"name"`
	Note      string     `yaml:"note,omitempty" json:"note"`
	Project   string     `yaml:"project,omitempty" json:"project"`
	Tags      []string   `yaml:"tags,omitempty" json:"tags"`
	Completed bool       `yaml:"completed,omitempty" json:"completed"`
	Flagged   bool       `yaml:"flagged,omitempty" json:"flagged"`
	DueDate   *time.Time `yaml:"dueDate,omitempty" json:"dueDate"`
	DeferDate *time.Time `yaml:"deferDate,omitempty" json:"deferDate"`
}
