// Package dag executes dependency-graph task runs: build-time
// validation, reference resolution against a shared context, and
// concurrent scheduling of ready tasks with partial-failure semantics.
package dag

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/leadflowhq/leadflow/internal/events"
	"github.com/leadflowhq/leadflow/internal/model"
)

// Executor runs one task. Implementations are expected to be I/O-bound
// and honor ctx cancellation.
type Executor interface {
	Execute(ctx context.Context, inputs map[string]any, runCtx map[string]any) (map[string]any, float64, error)
}

// Registry maps an agent tag to its executor.
type Registry interface {
	Lookup(agent string) (Executor, bool)
}

// Runtime schedules and executes task graphs.
type Runtime struct {
	registry Registry
	history  *History
	bus      *events.Bus
	logger   *log.Logger
}

func NewRuntime(registry Registry, history *History, bus *events.Bus, logger *log.Logger) *Runtime {
	return &Runtime{
		registry: registry,
		history:  history,
		bus:      bus,
		logger:   logger,
	}
}

// outcome carries one finished task back to the scheduler loop.
type outcome struct {
	taskID string
	result model.NodeResult
	output map[string]any
}

// Run validates the graph, executes it, and returns a RunRecord. Task
// failures never surface as an error: they are recorded per node and
// reflected in the record's overall status. The returned error covers
// build-time rejection only (empty graph, unknown dependency, cycle).
func (r *Runtime) Run(ctx context.Context, ownerID string, spec model.GraphSpec) (model.RunRecord, error) {
	if err := validateGraph(spec); err != nil {
		return model.RunRecord{}, fmt.Errorf("validate graph: %w", err)
	}

	runCtx := make(map[string]any, len(spec.Context)+len(spec.Tasks))
	for k, v := range spec.Context {
		runCtx[k] = v
	}

	tasks := make(map[string]model.TaskSpec, len(spec.Tasks))
	order := make(map[string]int, len(spec.Tasks))
	inDegree := make(map[string]int, len(spec.Tasks))
	dependents := make(map[string][]string)
	for i, task := range spec.Tasks {
		tasks[task.ID] = task
		order[task.ID] = i
		inDegree[task.ID] = len(task.DependsOn)
		for _, dep := range task.DependsOn {
			dependents[dep] = append(dependents[dep], task.ID)
		}
	}

	outcomes := make(chan outcome)
	results := make(map[string]model.NodeResult, len(spec.Tasks))
	running := 0
	failed := false

	record := func(res model.NodeResult) {
		results[res.ID] = res
		if res.Status == model.NodeFailed {
			failed = true
		}
		r.bus.Publish(events.EventTaskCompleted, map[string]interface{}{
			"task_id": res.ID,
			"status":  string(res.Status),
			"cost":    res.Cost,
			"error":   res.Error,
		})
	}

	// schedule resolves the task's inputs and launches its executor.
	// Lookup and resolution failures are terminal for the task and are
	// recorded without spawning anything.
	schedule := func(taskID string) {
		task := tasks[taskID]

		exec, ok := r.registry.Lookup(task.Agent)
		if !ok {
			r.logger.Printf("[ERROR] task_failed id=%s agent=%s err=%v", task.ID, task.Agent, ErrUnknownExecutor)
			record(model.NodeResult{
				ID:     task.ID,
				Name:   task.Name,
				Status: model.NodeFailed,
				Error:  fmt.Sprintf("%v: %q", ErrUnknownExecutor, task.Agent),
			})
			return
		}

		inputs, err := resolveInputs(task.Inputs, runCtx)
		if err != nil {
			r.logger.Printf("[ERROR] task_failed id=%s err=%v", task.ID, err)
			record(model.NodeResult{
				ID:     task.ID,
				Name:   task.Name,
				Status: model.NodeFailed,
				Error:  err.Error(),
			})
			return
		}

		// Executors run concurrently against a snapshot; only the
		// scheduler loop touches the live context.
		snapshot := make(map[string]any, len(runCtx))
		for k, v := range runCtx {
			snapshot[k] = v
		}

		running++
		r.bus.Publish(events.EventTaskStarted, map[string]interface{}{
			"task_id": task.ID,
			"agent":   task.Agent,
		})
		go func() {
			start := time.Now()
			output, cost, err := exec.Execute(ctx, inputs, snapshot)
			res := model.NodeResult{
				ID:         task.ID,
				Name:       task.Name,
				Status:     model.NodeSucceeded,
				Cost:       cost,
				DurationMS: float64(time.Since(start).Microseconds()) / 1000.0,
			}
			if err != nil {
				res.Status = model.NodeFailed
				res.Error = err.Error()
			}
			outcomes <- outcome{taskID: task.ID, result: res, output: output}
		}()
	}

	for _, task := range spec.Tasks {
		if failed {
			break
		}
		if inDegree[task.ID] == 0 {
			schedule(task.ID)
		}
	}

	for running > 0 {
		out := <-outcomes
		running--
		record(out.result)

		if out.result.Status == model.NodeSucceeded {
			runCtx[out.taskID] = out.output
			if !failed {
				for _, dependent := range dependents[out.taskID] {
					inDegree[dependent]--
					if inDegree[dependent] == 0 && !failed {
						schedule(dependent)
					}
				}
			}
		} else {
			r.logger.Printf("[ERROR] task_failed id=%s err=%s", out.taskID, out.result.Error)
		}
	}

	nodes := make([]model.NodeResult, 0, len(results))
	totalCost := 0.0
	for _, res := range results {
		nodes = append(nodes, res)
		totalCost += res.Cost
	}
	sort.Slice(nodes, func(i, j int) bool {
		return order[nodes[i].ID] < order[nodes[j].ID]
	})

	status := model.RunSucceeded
	if failed {
		status = model.RunFailed
	}

	rec := model.RunRecord{
		OwnerID:   ownerID,
		Nodes:     nodes,
		TotalCost: totalCost,
		Status:    status,
		Context:   runCtx,
		Timestamp: time.Now().UTC(),
	}
	r.history.Push(rec)
	r.bus.Publish(events.EventRunCompleted, map[string]interface{}{
		"owner_id":   ownerID,
		"status":     string(status),
		"total_cost": totalCost,
		"nodes":      len(nodes),
	})
	r.logger.Printf("[INFO] run_completed owner=%s status=%s nodes=%d cost=%.4f", ownerID, status, len(nodes), totalCost)
	return rec, nil
}
