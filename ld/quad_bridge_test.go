package ld_test

import (
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/westmark-go/jsonld/ld"
)

// A dataset survives the trip into cayleygraph/quad values and back for
// every node kind: IRIs, blank nodes, plain, typed, and language-tagged
// literals, in the default graph and in a named graph.
func TestCayleyQuadRoundTrip(t *testing.T) {
	ds := NewRDFDataset()
	ds.Graphs["@default"] = []*Quad{
		NewQuad(NewIRI("http://ex/s"), NewIRI("http://ex/p"), NewIRI("http://ex/o"), "@default"),
		NewQuad(NewBlankNode("_:b0"), NewIRI("http://ex/p"), NewLiteral("plain", XSDString, ""), "@default"),
		NewQuad(NewIRI("http://ex/s"), NewIRI("http://ex/count"), NewLiteral("5", XSDInteger, ""), "@default"),
		NewQuad(NewIRI("http://ex/s"), NewIRI("http://ex/label"), NewLiteral("bonjour", RDFLangString, "fr"), "@default"),
	}
	ds.Graphs["http://ex/g"] = []*Quad{
		NewQuad(NewIRI("http://ex/s"), NewIRI("http://ex/p"), NewBlankNode("_:b1"), "http://ex/g"),
	}

	exported := append(ds.ToCayleyQuads("@default"), ds.ToCayleyQuads("http://ex/g")...)
	require.Len(t, exported, 5)

	restored := FromCayleyQuads(exported)
	for graphName, quads := range ds.Graphs {
		restoredQuads := restored.GetQuads(graphName)
		require.Len(t, restoredQuads, len(quads), "graph %s changed size", graphName)
		for i, q := range quads {
			assert.True(t, q.Equal(restoredQuads[i]), "quad %d in graph %s changed in round trip", i, graphName)
		}
	}
}

// Blank node labels cross the bridge without their "_:" prefix (cayley's
// BNode type re-adds it when rendering) and come back intact.
func TestCayleyQuadBlankNodeLabels(t *testing.T) {
	ds := NewRDFDataset()
	ds.Graphs["@default"] = []*Quad{
		NewQuad(NewBlankNode("_:b0"), NewIRI("http://ex/p"), NewBlankNode("_:b1"), "@default"),
	}

	exported := ds.ToCayleyQuads("@default")
	require.Len(t, exported, 1)
	assert.Equal(t, quad.BNode("b0"), exported[0].Subject)
	assert.Equal(t, quad.BNode("b1"), exported[0].Object)

	restored := FromCayleyQuads(exported).GetQuads("@default")
	require.Len(t, restored, 1)
	assert.Equal(t, "_:b0", restored[0].Subject.GetValue())
	assert.Equal(t, "_:b1", restored[0].Object.GetValue())
}
