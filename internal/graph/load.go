package graph

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Format names accepted by Parse.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// LoadFile reads a task list from path. Files ending in .yaml or .yml are
// parsed as YAML, everything else as JSON. A path of "-" reads stdin.
func LoadFile(path string) ([]Task, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	return Parse(data, FormatFor(path))
}

// FormatFor guesses the task file format from its extension.
func FormatFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes a task list in the given format.
func Parse(data []byte, format string) ([]Task, error) {
	switch format {
	case FormatYAML:
		return ParseYAML(data)
	case FormatJSON, "":
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported task format %q (use json or yaml)", format)
	}
}

// ParseJSON decodes either a JSON array of tasks or an object with a "tasks"
// array. Durations must be numbers with an integral value (4 or 4.0);
// anything else fails with ErrInvalidDuration.
func ParseJSON(data []byte) ([]Task, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse tasks: invalid JSON")
	}

	root := gjson.ParseBytes(data)
	if root.IsObject() {
		root = root.Get("tasks")
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("parse tasks: expected an array of tasks or an object with a \"tasks\" array")
	}

	var (
		tasks   []Task
		loadErr error
	)
	pos := 0
	root.ForEach(func(_, item gjson.Result) bool {
		t, err := taskFromJSON(pos, item)
		if err != nil {
			loadErr = err
			return false
		}
		tasks = append(tasks, t)
		pos++
		return true
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return tasks, nil
}

func taskFromJSON(pos int, item gjson.Result) (Task, error) {
	if !item.IsObject() {
		return Task{}, fmt.Errorf("parse tasks: entry %d is not an object", pos)
	}

	id := item.Get("id")
	if id.Type != gjson.String {
		return Task{}, fmt.Errorf("parse tasks: entry %d: id must be a string", pos)
	}
	t := Task{
		ID:           id.String(),
		Name:         item.Get("name").String(),
		Dependencies: []string{},
	}

	dur := item.Get("duration")
	switch {
	case !dur.Exists():
		return Task{}, invalidDuration(t.ID, "duration is missing")
	case dur.Type != gjson.Number:
		return Task{}, invalidDuration(t.ID, "duration %s is not a number", dur.Raw)
	case dur.Num != math.Trunc(dur.Num) || math.Abs(dur.Num) > math.MaxInt32:
		return Task{}, invalidDuration(t.ID, "duration %s is not an integer", dur.Raw)
	}
	t.Duration = int(dur.Int())

	deps := item.Get("dependencies")
	if deps.Exists() && deps.Type != gjson.Null {
		if !deps.IsArray() {
			return Task{}, fmt.Errorf("parse tasks: task %s: dependencies must be an array", t.ID)
		}
		var bad bool
		deps.ForEach(func(_, d gjson.Result) bool {
			if d.Type != gjson.String {
				bad = true
				return false
			}
			t.Dependencies = append(t.Dependencies, d.String())
			return true
		})
		if bad {
			return Task{}, fmt.Errorf("parse tasks: task %s: dependency ids must be strings", t.ID)
		}
	}
	return t, nil
}

type yamlTask struct {
	ID           string    `yaml:"id"`
	Name         string    `yaml:"name"`
	Duration     yaml.Node `yaml:"duration"`
	Dependencies []string  `yaml:"dependencies"`
}

// ParseYAML decodes either a YAML sequence of tasks or a mapping with a
// "tasks" sequence.
func ParseYAML(data []byte) ([]Task, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse tasks: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	var raw []yamlTask
	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse tasks: %w", err)
		}
	case yaml.MappingNode:
		var wrapped struct {
			Tasks []yamlTask `yaml:"tasks"`
		}
		if err := root.Decode(&wrapped); err != nil {
			return nil, fmt.Errorf("parse tasks: %w", err)
		}
		raw = wrapped.Tasks
	default:
		return nil, fmt.Errorf("parse tasks: expected a sequence of tasks or a mapping with a \"tasks\" sequence")
	}

	tasks := make([]Task, 0, len(raw))
	for _, rt := range raw {
		if rt.Duration.Kind == 0 {
			return nil, invalidDuration(rt.ID, "duration is missing")
		}
		d, err := yamlDuration(rt.ID, &rt.Duration)
		if err != nil {
			return nil, err
		}
		deps := rt.Dependencies
		if deps == nil {
			deps = []string{}
		}
		tasks = append(tasks, Task{ID: rt.ID, Name: rt.Name, Duration: d, Dependencies: deps})
	}
	return tasks, nil
}

// yamlDuration applies the same rule as ParseJSON: any number with an
// integral value, so 4 and 4.0 are both accepted.
func yamlDuration(id string, n *yaml.Node) (int, error) {
	var f float64
	switch n.ShortTag() {
	case "!!int", "!!float":
		if err := n.Decode(&f); err != nil {
			return 0, invalidDuration(id, "duration %q: %v", n.Value, err)
		}
	default:
		return 0, invalidDuration(id, "duration %q is not a number", n.Value)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, invalidDuration(id, "duration %q is not an integer", n.Value)
	}
	return int(f), nil
}

// WriteFile saves tasks to path as indented JSON, or YAML for .yaml/.yml paths.
func WriteFile(path string, tasks []Task) error {
	var (
		data []byte
		err  error
	)
	if FormatFor(path) == FormatYAML {
		data, err = yaml.Marshal(tasks)
	} else {
		data, err = json.MarshalIndent(tasks, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
