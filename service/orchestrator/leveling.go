package orchestrator

import (
	"github.com/bruhlabs/flowrun/model"
)

// Levels partitions the flow graph into execution levels. Each level is the
// entire frontier of nodes whose remaining in-degree reached zero, so nodes
// within a level share no dependency and may run concurrently. Returns nil
// when the graph contains a cycle, never a partial order.
func Levels(flow *model.Flow) [][]*model.Node {
	inDegree := make(map[string]int, len(flow.Nodes))
	for _, node := range flow.Nodes {
		inDegree[node.ID] = 0
	}
	successors := make(map[string][]string, len(flow.Nodes))
	for _, edge := range flow.Edges {
		if _, ok := inDegree[edge.Source]; !ok {
			continue
		}
		if _, ok := inDegree[edge.Target]; !ok {
			continue
		}
		inDegree[edge.Target]++
		successors[edge.Source] = append(successors[edge.Source], edge.Target)
	}

	var frontier []*model.Node
	for _, node := range flow.Nodes {
		if inDegree[node.ID] == 0 {
			frontier = append(frontier, node)
		}
	}

	var levels [][]*model.Node
	covered := 0
	for len(frontier) > 0 {
		levels = append(levels, frontier)
		covered += len(frontier)
		var next []*model.Node
		for _, node := range frontier {
			for _, successor := range successors[node.ID] {
				inDegree[successor]--
				if inDegree[successor] == 0 {
					next = append(next, flow.Node(successor))
				}
			}
		}
		frontier = next
	}
	if covered != len(flow.Nodes) {
		return nil
	}
	return levels
}
