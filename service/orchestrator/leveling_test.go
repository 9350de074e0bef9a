package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bruhlabs/flowrun/model"
)

func chainFlow() *model.Flow {
	flow := model.NewFlow("chain")
	flow.AddNode(model.NewNode("a", model.TypeInput).With("value", "seed"))
	flow.AddNode(model.NewNode("b", model.TypeTextTransformer))
	flow.AddNode(model.NewNode("c", model.TypeOutput).With("format", "text"))
	flow.Connect("a", "b").Connect("b", "c")
	return flow
}

func TestLevels(t *testing.T) {
	t.Run("linear chain yields one level per node", func(t *testing.T) {
		levels := Levels(chainFlow())
		if assert.Len(t, levels, 3) {
			assert.Equal(t, "a", levels[0][0].ID)
			assert.Equal(t, "b", levels[1][0].ID)
			assert.Equal(t, "c", levels[2][0].ID)
			for _, level := range levels {
				assert.Len(t, level, 1)
			}
		}
	})

	t.Run("fan out groups independent nodes into one level", func(t *testing.T) {
		flow := model.NewFlow("fanout")
		flow.AddNode(model.NewNode("a", model.TypeInput).With("value", "seed"))
		flow.AddNode(model.NewNode("b", model.TypeTextTransformer))
		flow.AddNode(model.NewNode("c", model.TypeTextTransformer))
		flow.Connect("a", "b").Connect("a", "c")

		levels := Levels(flow)
		if assert.Len(t, levels, 2) {
			assert.Equal(t, "a", levels[0][0].ID)
			var ids []string
			for _, node := range levels[1] {
				ids = append(ids, node.ID)
			}
			assert.ElementsMatch(t, []string{"b", "c"}, ids)
		}
	})

	t.Run("cycle yields nil", func(t *testing.T) {
		flow := model.NewFlow("cyclic")
		flow.AddNode(model.NewNode("a", model.TypeTextTransformer))
		flow.AddNode(model.NewNode("b", model.TypeTextTransformer))
		flow.Connect("a", "b").Connect("b", "a")
		assert.Nil(t, Levels(flow))
	})

	t.Run("flattened levels form a topological order", func(t *testing.T) {
		flow := model.NewFlow("diamond")
		flow.AddNode(model.NewNode("a", model.TypeInput).With("value", "seed"))
		flow.AddNode(model.NewNode("b", model.TypeTextTransformer))
		flow.AddNode(model.NewNode("c", model.TypeTextTransformer))
		flow.AddNode(model.NewNode("d", model.TypeMerge))
		flow.AddNode(model.NewNode("e", model.TypeOutput).With("format", "text"))
		flow.Connect("a", "b").Connect("a", "c")
		flow.ConnectPorts("b", "output", "d", "left")
		flow.ConnectPorts("c", "output", "d", "right")
		flow.Connect("d", "e")

		levels := Levels(flow)
		assert.NotNil(t, levels)
		levelOf := map[string]int{}
		for i, level := range levels {
			for _, node := range level {
				levelOf[node.ID] = i
			}
		}
		assert.Len(t, levelOf, len(flow.Nodes))
		for _, edge := range flow.Edges {
			assert.Less(t, levelOf[edge.Source], levelOf[edge.Target],
				"edge %s->%s must cross levels forward", edge.Source, edge.Target)
		}
	})
}
