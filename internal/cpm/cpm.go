package cpm

import (
	"fmt"
	"slices"
	"sort"

	"github.com/joshharrison/pertloom/internal/graph"
)

// Schedule validates tasks and runs the critical path analysis over them.
func Schedule(tasks []graph.Task) (*Result, error) {
	g, err := graph.Build(tasks)
	if err != nil {
		return nil, err
	}
	return Analyze(g)
}

// Analyze performs critical path method analysis on a task graph, working
// directly on tasks (activity-on-node). Nothing is cached between calls.
func Analyze(g *graph.TaskGraph) (*Result, error) {
	n := g.TaskCount()
	dur := make([]int, n)
	for i, t := range g.Tasks {
		if t.Duration < 0 {
			return nil, &graph.Error{Kind: graph.ErrInvalidDuration, TaskID: t.ID,
				Msg: fmt.Sprintf("duration %d is negative", t.Duration)}
		}
		dur[i] = t.Duration
	}

	// Arc dep -> task weighs the dependency's duration, so the longest
	// distance to a task is its earliest start.
	d := g.Weighted(func(from, _ int) int { return dur[from] })
	order, err := d.TopoOrder()
	if err != nil {
		return nil, &graph.Error{Kind: graph.ErrCyclicDependency, Msg: err.Error()}
	}

	// Forward pass: ES = max(EF of all dependencies)
	es := d.Earliest(order)

	total := 0
	for i := range es {
		if ef := es[i] + dur[i]; ef > total {
			total = ef
		}
	}

	// Backward pass: LS = min(LS of successors) - duration; tasks nothing
	// depends on finish at the project duration.
	ls := d.Latest(order, func(i int) int { return total - dur[i] })

	items := make([]ScheduleItem, n)
	for i, t := range g.Tasks {
		ef := es[i] + dur[i]
		it := ScheduleItem{
			ID:             t.ID,
			Name:           t.Name,
			Duration:       dur[i],
			Dependencies:   slices.Clone(t.Dependencies),
			Start:          es[i],
			End:            ef,
			EarliestStart:  es[i],
			LatestStart:    ls[i],
			EarliestFinish: ef,
			LatestFinish:   ls[i] + dur[i],
			TotalSlack:     ls[i] - es[i],
			Color:          TaskColor(t.ID),
		}
		it.IsCritical = it.TotalSlack == 0
		it.FreeSlack = freeSlack(g, es, i, it)
		items[i] = it
	}

	result := &Result{
		ProjectDuration: total,
		TopoOrder:       make([]string, 0, n),
		TaskMetrics:     make([]graph.TaskMetrics, 0, n),
		CriticalPath:    []string{},
		CriticalTasks:   []ScheduleItem{},
	}

	for _, i := range order {
		result.TopoOrder = append(result.TopoOrder, g.Tasks[i].ID)
		if items[i].IsCritical {
			result.CriticalPath = append(result.CriticalPath, g.Tasks[i].ID)
		}
	}

	result.Waves = computeWaves(items, es)
	for i := range items {
		result.TaskMetrics = append(result.TaskMetrics, metrics(items[i]))
	}

	result.Schedule = items
	sort.SliceStable(result.Schedule, func(a, b int) bool {
		return result.Schedule[a].Start < result.Schedule[b].Start
	})
	for _, it := range result.Schedule {
		if it.IsCritical {
			result.CriticalTasks = append(result.CriticalTasks, it)
		}
	}

	return result, nil
}

// freeSlack is how far task i can slip without delaying any direct
// successor. Tasks without successors get their total slack.
func freeSlack(g *graph.TaskGraph, es []int, i int, it ScheduleItem) int {
	succs := g.Succs[i]
	if len(succs) == 0 {
		return it.TotalSlack
	}
	minES := es[succs[0]]
	for _, s := range succs[1:] {
		if es[s] < minES {
			minES = es[s]
		}
	}
	return minES - it.EarliestFinish
}

func metrics(it ScheduleItem) graph.TaskMetrics {
	return graph.TaskMetrics{
		ID:             it.ID,
		Name:           it.Name,
		Duration:       it.Duration,
		EarliestStart:  it.EarliestStart,
		LatestStart:    it.LatestStart,
		EarliestFinish: it.EarliestFinish,
		LatestFinish:   it.LatestFinish,
		TotalSlack:     it.TotalSlack,
		FreeSlack:      it.FreeSlack,
		IsCritical:     it.IsCritical,
	}
}

// computeWaves groups tasks by their earliest start time. items is in input
// order and receives each task's wave index.
func computeWaves(items []ScheduleItem, es []int) []Wave {
	esGroups := make(map[int][]int)
	for i := range items {
		esGroups[es[i]] = append(esGroups[es[i]], i)
	}

	esValues := make([]int, 0, len(esGroups))
	for v := range esGroups {
		esValues = append(esValues, v)
	}
	sort.Ints(esValues)

	waves := make([]Wave, len(esValues))
	for w, v := range esValues {
		members := esGroups[v]

		hasCritical := false
		for _, i := range members {
			items[i].Wave = w
			if items[i].IsCritical {
				hasCritical = true
			}
		}

		// Critical tasks first within wave
		sort.SliceStable(members, func(a, b int) bool {
			return items[members[a]].IsCritical && !items[members[b]].IsCritical
		})

		ids := make([]string, len(members))
		for k, i := range members {
			ids[k] = items[i].ID
		}
		waves[w] = Wave{
			Index:      w,
			Start:      v,
			TaskIDs:    ids,
			IsCritical: hasCritical,
		}
	}

	return waves
}
