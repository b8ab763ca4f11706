package pipeline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseError represents a parsing error with location info.
type ParseError struct {
	Path    string
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ParseFile parses a single pipeline YAML file.
func ParseFile(path string) (*Pipeline, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is user-provided pipeline file
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(data, path)
}

// Parse parses pipeline YAML content. Job and matrix-axis declaration
// order is preserved, which is why decoding goes through yaml.Node
// instead of plain map unmarshaling.
func Parse(data []byte, sourcePath string) (*Pipeline, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{
			Path:    sourcePath,
			Message: fmt.Sprintf("invalid yaml: %v", err),
		}
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &ParseError{
			Path:    sourcePath,
			Line:    1,
			Message: "empty pipeline file",
		}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{
			Path:    sourcePath,
			Line:    root.Line,
			Message: "pipeline must be a mapping",
		}
	}

	p := &Pipeline{SourcePath: sourcePath}

	for i := 0; i < len(root.Content)-1; i += 2 {
		key := root.Content[i]
		value := root.Content[i+1]

		switch key.Value {
		case "name":
			p.Name = value.Value
		case "on", "true":
			// yaml 1.1 parses a bare `on:` key as boolean true
			triggers, err := parseTriggers(value, sourcePath)
			if err != nil {
				return nil, err
			}
			p.Triggers = triggers
		case "jobs":
			jobs, err := parseJobs(value, sourcePath)
			if err != nil {
				return nil, err
			}
			p.Jobs = jobs
		}
	}

	if len(p.Jobs) == 0 {
		return nil, &ParseError{
			Path:    sourcePath,
			Line:    root.Line,
			Message: "pipeline declares no jobs",
		}
	}

	return p, nil
}

// parseTriggers accepts the three declarative forms: a single event kind,
// a list of kinds, or a mapping from kind to an optional branch filter.
func parseTriggers(node *yaml.Node, sourcePath string) ([]Trigger, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return []Trigger{{Kind: node.Value}}, nil

	case yaml.SequenceNode:
		triggers := make([]Trigger, 0, len(node.Content))
		for _, item := range node.Content {
			triggers = append(triggers, Trigger{Kind: item.Value})
		}
		return triggers, nil

	case yaml.MappingNode:
		var triggers []Trigger
		for i := 0; i < len(node.Content)-1; i += 2 {
			kind := node.Content[i].Value
			value := node.Content[i+1]

			trigger := Trigger{Kind: kind}
			if value.Kind == yaml.MappingNode {
				var filter struct {
					Branches []string `yaml:"branches"`
				}
				if err := value.Decode(&filter); err != nil {
					return nil, &ParseError{
						Path:    sourcePath,
						Line:    value.Line,
						Message: fmt.Sprintf("invalid %s trigger: %v", kind, err),
					}
				}
				trigger.Branches = filter.Branches
			}
			triggers = append(triggers, trigger)
		}
		return triggers, nil

	default:
		return nil, &ParseError{
			Path:    sourcePath,
			Line:    node.Line,
			Message: "triggers must be a kind, a list of kinds, or a mapping",
		}
	}
}

func parseJobs(node *yaml.Node, sourcePath string) ([]Job, error) {
	if node.Kind != yaml.MappingNode {
		return nil, &ParseError{
			Path:    sourcePath,
			Line:    node.Line,
			Message: "jobs must be a mapping",
		}
	}

	jobs := make([]Job, 0, len(node.Content)/2)
	for i := 0; i < len(node.Content)-1; i += 2 {
		name := node.Content[i].Value
		job, err := parseJob(name, node.Content[i+1], sourcePath)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func parseJob(name string, node *yaml.Node, sourcePath string) (Job, error) {
	if node.Kind != yaml.MappingNode {
		return Job{}, &ParseError{
			Path:    sourcePath,
			Line:    node.Line,
			Message: fmt.Sprintf("job %s must be a mapping", name),
		}
	}

	job := Job{Name: name}

	for i := 0; i < len(node.Content)-1; i += 2 {
		key := node.Content[i]
		value := node.Content[i+1]

		switch key.Value {
		case "runs-on":
			job.RunsOn = value.Value
		case "env":
			if err := value.Decode(&job.Env); err != nil {
				return Job{}, &ParseError{
					Path:    sourcePath,
					Line:    value.Line,
					Message: fmt.Sprintf("invalid env for job %s: %v", name, err),
				}
			}
		case "strategy":
			matrix, err := parseStrategy(name, value, sourcePath)
			if err != nil {
				return Job{}, err
			}
			job.Matrix = matrix
		case "steps":
			steps, err := parseSteps(name, value, sourcePath)
			if err != nil {
				return Job{}, err
			}
			job.Steps = steps
		}
	}

	if len(job.Steps) == 0 {
		return Job{}, &ParseError{
			Path:    sourcePath,
			Line:    node.Line,
			Message: fmt.Sprintf("job %s declares no steps", name),
		}
	}

	return job, nil
}

func parseStrategy(job string, node *yaml.Node, sourcePath string) (*Matrix, error) {
	if node.Kind != yaml.MappingNode {
		return nil, &ParseError{
			Path:    sourcePath,
			Line:    node.Line,
			Message: fmt.Sprintf("strategy for job %s must be a mapping", job),
		}
	}

	for i := 0; i < len(node.Content)-1; i += 2 {
		if node.Content[i].Value != "matrix" {
			continue
		}
		matrixNode := node.Content[i+1]
		if matrixNode.Kind != yaml.MappingNode {
			return nil, &ParseError{
				Path:    sourcePath,
				Line:    matrixNode.Line,
				Message: fmt.Sprintf("matrix for job %s must be a mapping", job),
			}
		}

		matrix := &Matrix{}
		for k := 0; k < len(matrixNode.Content)-1; k += 2 {
			axisName := matrixNode.Content[k].Value
			var values []string
			if err := matrixNode.Content[k+1].Decode(&values); err != nil {
				return nil, &ParseError{
					Path:    sourcePath,
					Line:    matrixNode.Content[k+1].Line,
					Message: fmt.Sprintf("invalid matrix axis %s for job %s: %v", axisName, job, err),
				}
			}
			matrix.Axes = append(matrix.Axes, Axis{Name: axisName, Values: values})
		}
		return matrix, nil
	}
	return nil, nil
}

func parseSteps(job string, node *yaml.Node, sourcePath string) ([]Step, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, &ParseError{
			Path:    sourcePath,
			Line:    node.Line,
			Message: fmt.Sprintf("steps for job %s must be a list", job),
		}
	}

	steps := make([]Step, 0, len(node.Content))
	for _, item := range node.Content {
		step, err := parseStep(job, item, sourcePath)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func parseStep(job string, node *yaml.Node, sourcePath string) (Step, error) {
	var raw struct {
		Name            string            `yaml:"name"`
		Run             string            `yaml:"run"`
		Uses            string            `yaml:"uses"`
		With            map[string]string `yaml:"with"`
		Env             map[string]string `yaml:"env"`
		ContinueOnError bool              `yaml:"continue-on-error"`
		TimeoutMinutes  int               `yaml:"timeout-minutes"`
	}
	if err := node.Decode(&raw); err != nil {
		return Step{}, &ParseError{
			Path:    sourcePath,
			Line:    node.Line,
			Message: fmt.Sprintf("invalid step in job %s: %v", job, err),
		}
	}

	if raw.Run == "" && raw.Uses == "" {
		return Step{}, &ParseError{
			Path:    sourcePath,
			Line:    node.Line,
			Message: fmt.Sprintf("step in job %s declares neither run nor uses", job),
		}
	}
	if raw.Run != "" && raw.Uses != "" {
		return Step{}, &ParseError{
			Path:    sourcePath,
			Line:    node.Line,
			Message: fmt.Sprintf("step in job %s declares both run and uses", job),
		}
	}

	return Step{
		Name:            raw.Name,
		Run:             raw.Run,
		Uses:            raw.Uses,
		With:            raw.With,
		Env:             raw.Env,
		ContinueOnError: raw.ContinueOnError,
		TimeoutMinutes:  raw.TimeoutMinutes,
	}, nil
}
