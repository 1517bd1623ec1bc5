package dag

import (
	"fmt"
	"strings"

	"github.com/leadflowhq/leadflow/internal/model"
)

// validateGraph checks a graph specification before any scheduling:
// non-empty task list, unique ids, dependencies that reference only
// tasks in the same graph, and no cycles.
func validateGraph(spec model.GraphSpec) error {
	if len(spec.Tasks) == 0 {
		return ErrNoTasks
	}

	ids := make([]string, 0, len(spec.Tasks))
	seen := make(map[string]bool, len(spec.Tasks))
	edges := make(map[string][]string, len(spec.Tasks))
	for _, task := range spec.Tasks {
		if task.ID == "" {
			return fmt.Errorf("task with empty id")
		}
		if seen[task.ID] {
			return fmt.Errorf("duplicate task id %q", task.ID)
		}
		seen[task.ID] = true
		ids = append(ids, task.ID)
		edges[task.ID] = task.DependsOn
	}

	for _, task := range spec.Tasks {
		for _, dep := range task.DependsOn {
			if !seen[dep] {
				return fmt.Errorf("task %q depends on unknown task %q", task.ID, dep)
			}
		}
	}

	_, err := topologicalOrder(ids, edges)
	return err
}

// topologicalOrder runs Kahn's algorithm over the dependency edges.
// On cycle detection it reports the cycle path found by DFS.
func topologicalOrder(ids []string, edges map[string][]string) ([]string, error) {
	inDegree := make(map[string]int, len(ids))
	forward := make(map[string][]string)
	for _, id := range ids {
		inDegree[id] = 0
	}
	for id, deps := range edges {
		for _, dep := range deps {
			inDegree[id]++
			forward[dep] = append(forward[dep], id)
		}
	}

	var queue []string
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	var sorted []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sorted = append(sorted, id)
		for _, dependent := range forward[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(sorted) == len(ids) {
		return sorted, nil
	}
	cycle := findCyclePath(ids, edges)
	return nil, fmt.Errorf("circular dependency detected: %s", strings.Join(cycle, " -> "))
}

// findCyclePath locates one cycle among the edges and returns its
// forward path, closed on the repeated node.
func findCyclePath(ids []string, edges map[string][]string) []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make(map[string]int)
	parent := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		for _, dep := range edges[id] {
			if color[dep] == gray {
				cyclePath = []string{dep}
				current := id
				for current != dep {
					cyclePath = append(cyclePath, current)
					current = parent[current]
				}
				cyclePath = append(cyclePath, dep)
				for i, j := 0, len(cyclePath)-1; i < j; i, j = i+1, j-1 {
					cyclePath[i], cyclePath[j] = cyclePath[j], cyclePath[i]
				}
				return true
			}
			if color[dep] == white {
				parent[dep] = id
				if dfs(dep) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, id := range ids {
		if color[id] == white {
			if dfs(id) {
				return cyclePath
			}
		}
	}
	return nil
}
