// Copyright 2015-2017 Piprate Limited
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ld_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/westmark-go/jsonld/ld"
)

// "Coerced IRI" scenario: a term coerced to @type: @id turns a bare string
// value into an {@id: ...} reference instead of a plain string literal.
func TestProcessor_ExpandCoercedIRI(t *testing.T) {
	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"a": map[string]interface{}{"@id": "http://ex/a"},
			"b": map[string]interface{}{"@id": "http://ex/b", "@type": "@id"},
		},
		"@id": "http://ex/subj",
		"b":   "http://ex/c",
	}

	proc := NewJsonLdProcessor()
	expanded, err := proc.Expand(doc, nil)
	require.NoError(t, err)
	require.Len(t, expanded, 1)

	node := expanded[0].(map[string]interface{})
	assert.Equal(t, "http://ex/subj", node["@id"])

	values := node["http://ex/b"].([]interface{})
	require.Len(t, values, 1)
	assert.Equal(t, map[string]interface{}{"@id": "http://ex/c"}, values[0])
}

// "List coercion" scenario from the end-to-end test set: a @container:
// @list term turns an array value into a single @list-wrapped entry, and
// compacting the expansion with the same context reproduces the shape.
func TestProcessor_ListCoercionRoundTrip(t *testing.T) {
	context := map[string]interface{}{
		"b": map[string]interface{}{"@id": "http://ex/b", "@container": "@list"},
	}
	doc := map[string]interface{}{
		"@context": context,
		"b":        []interface{}{"c", "d"},
	}

	proc := NewJsonLdProcessor()
	expanded, err := proc.Expand(doc, nil)
	require.NoError(t, err)
	require.Len(t, expanded, 1)

	node := expanded[0].(map[string]interface{})
	bValues := node["http://ex/b"].([]interface{})
	require.Len(t, bValues, 1)
	list := bValues[0].(map[string]interface{})["@list"].([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, "c", list[0].(map[string]interface{})["@value"])
	assert.Equal(t, "d", list[1].(map[string]interface{})["@value"])

	compacted, err := proc.Compact(expanded, map[string]interface{}{"@context": context}, nil)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"c", "d"}, compacted["b"])
}

// Empty document expands to an empty array.
func TestProcessor_ExpandEmptyDocument(t *testing.T) {
	proc := NewJsonLdProcessor()
	expanded, err := proc.Expand(map[string]interface{}{}, nil)
	require.NoError(t, err)
	assert.Empty(t, expanded)
}

// A scalar property with a null value drops out entirely during expansion.
func TestProcessor_ExpandNullPropertyValueDrops(t *testing.T) {
	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"a": "http://ex/a",
		},
		"a": nil,
	}
	proc := NewJsonLdProcessor()
	expanded, err := proc.Expand(doc, nil)
	require.NoError(t, err)
	assert.Empty(t, expanded)
}

// Protected terms cannot be redefined by a later context.
func TestProcessor_ProtectedTermRedefinitionFails(t *testing.T) {
	ctx := NewContext(nil, NewJsonLdOptions(""))
	ctx, err := ctx.Parse(map[string]interface{}{
		"name": map[string]interface{}{
			"@id":        "http://schema.org/name",
			"@protected": true,
		},
	})
	require.NoError(t, err)

	_, err = ctx.Parse(map[string]interface{}{
		"name": map[string]interface{}{
			"@id": "http://example.org/otherName",
		},
	})
	require.Error(t, err)

	var jsonLDErr *JsonLdError
	require.ErrorAs(t, err, &jsonLDErr)
	assert.Equal(t, ProtectedTermRedefinition, jsonLDErr.Code)
}

// Numbers and booleans convert to RDF literals using the canonical XSD
// lexical forms.
func TestProcessor_ToRDFNumberLiterals(t *testing.T) {
	// Decoded from JSON text (rather than built as Go literals) so that
	// numbers come through as float64, matching what encoding/json produces
	// and what ValueExpansion/objectToRDF expect.
	const docJSON = `{
		"@context": {"i": "http://ex/i", "d": "http://ex/d", "b": "http://ex/b"},
		"@id": "http://ex/subj",
		"i": 1,
		"d": 1.5,
		"b": true
	}`
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(docJSON), &doc))

	proc := NewJsonLdProcessor()
	result, err := proc.ToRDF(doc, nil)
	require.NoError(t, err)

	dataset := result.(*RDFDataset)
	quads := dataset.GetQuads("@default")
	require.Len(t, quads, 3)

	byPredicate := map[string]*Literal{}
	for _, q := range quads {
		byPredicate[q.Predicate.GetValue()] = q.Object.(*Literal)
	}

	iLit := byPredicate["http://ex/i"]
	assert.Equal(t, "1", iLit.Value)
	assert.Equal(t, XSDInteger, iLit.Datatype)

	dLit := byPredicate["http://ex/d"]
	assert.Equal(t, "1.5E0", dLit.Value)
	assert.Equal(t, XSDDouble, dLit.Datatype)

	bLit := byPredicate["http://ex/b"]
	assert.Equal(t, "true", bLit.Value)
	assert.Equal(t, XSDBoolean, bLit.Datatype)
}

// A chain of rdf:first/rdf:rest nodes terminating at rdf:nil, with each
// intermediate node referenced exactly once, decodes into a single @list
// value.
func TestProcessor_FromRDFListDecoding(t *testing.T) {
	dataset := NewRDFDataset()
	dataset.Graphs["@default"] = []*Quad{
		NewQuad(NewIRI("http://ex/s"), NewIRI("http://ex/p"), NewBlankNode("_:l"), "@default"),
		NewQuad(NewBlankNode("_:l"), NewIRI(RDFFirst), NewLiteral("a", XSDString, ""), "@default"),
		NewQuad(NewBlankNode("_:l"), NewIRI(RDFRest), NewBlankNode("_:m"), "@default"),
		NewQuad(NewBlankNode("_:m"), NewIRI(RDFFirst), NewLiteral("b", XSDString, ""), "@default"),
		NewQuad(NewBlankNode("_:m"), NewIRI(RDFRest), NewIRI(RDFNil), "@default"),
	}

	api := NewJsonLdApi()
	docs, err := api.FromRDF(dataset, NewJsonLdOptions(""))
	require.NoError(t, err)
	require.Len(t, docs, 1)

	node := docs[0].(map[string]interface{})
	assert.Equal(t, "http://ex/s", node["@id"])

	values := node["http://ex/p"].([]interface{})
	require.Len(t, values, 1)
	list := values[0].(map[string]interface{})["@list"].([]interface{})
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].(map[string]interface{})["@value"])
	assert.Equal(t, "b", list[1].(map[string]interface{})["@value"])
}

// Expansion is idempotent: expanding already-expanded output changes
// nothing.
func TestProcessor_ExpandIdempotent(t *testing.T) {
	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"name": "http://schema.org/name",
			"knows": map[string]interface{}{
				"@id": "http://schema.org/knows", "@type": "@id",
			},
		},
		"@id":   "http://ex/a",
		"name":  "Alice",
		"knows": "http://ex/b",
	}

	proc := NewJsonLdProcessor()
	once, err := proc.Expand(doc, nil)
	require.NoError(t, err)
	twice, err := proc.Expand(once, nil)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

// A blank node used as the target of a reverse property keeps a single,
// consistent identity through flattening: both reverse targets end up
// linking back to the same freshly-issued subject.
func TestProcessor_ReverseBlankNodeFlatten(t *testing.T) {
	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"foo": "http://example.org/foo",
			"bar": map[string]interface{}{
				"@reverse": "http://example.org/bar",
				"@type":    "@id",
			},
		},
		"foo": "anchor",
		"bar": []interface{}{"http://example.org/origin", "_:b0"},
	}

	proc := NewJsonLdProcessor()
	flattened, err := proc.Flatten(doc, nil, nil)
	require.NoError(t, err)

	nodes := flattened.([]interface{})
	require.Len(t, nodes, 3)

	// the declaring node gets the first fresh identifier; the blank node
	// named in the document is re-issued the next one
	var subjectID string
	for _, n := range nodes {
		node := n.(map[string]interface{})
		if _, hasFoo := node["http://example.org/foo"]; hasFoo {
			subjectID = node["@id"].(string)
		}
	}
	assert.Equal(t, "_:b0", subjectID)

	linkedFrom := make([]string, 0)
	for _, n := range nodes {
		node := n.(map[string]interface{})
		if barVal, hasBar := node["http://example.org/bar"]; hasBar {
			refs := barVal.([]interface{})
			require.Len(t, refs, 1)
			assert.Equal(t, subjectID, refs[0].(map[string]interface{})["@id"])
			linkedFrom = append(linkedFrom, node["@id"].(string))
		}
	}
	assert.Len(t, linkedFrom, 2)
	assert.Contains(t, linkedFrom, "http://example.org/origin")
	assert.Contains(t, linkedFrom, "_:b1")
}

// Nested named graphs: a property declared on the graph object itself stays
// in the default graph, while the graph's content becomes triples in the
// named graph.
func TestProcessor_NestedNamedGraphsToRDF(t *testing.T) {
	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"hasReference": map[string]interface{}{
				"@id": "http://ex/hasReference", "@type": "@id",
			},
			"name": "http://ex/name",
		},
		"@graph": []interface{}{
			map[string]interface{}{
				"@id":          "http://ex/graph1",
				"hasReference": "http://ex/ref1",
				"@graph": []interface{}{
					map[string]interface{}{
						"@id":  "http://ex/paris",
						"name": "Paris",
					},
				},
			},
			map[string]interface{}{
				"@id":          "http://ex/graph2",
				"hasReference": "http://ex/ref2",
				"@graph": []interface{}{
					map[string]interface{}{
						"@id":  "http://ex/lyon",
						"name": "Lyon",
					},
				},
			},
		},
	}

	proc := NewJsonLdProcessor()
	result, err := proc.ToRDF(doc, nil)
	require.NoError(t, err)
	dataset := result.(*RDFDataset)

	defaultQuads := dataset.GetQuads("@default")
	require.Len(t, defaultQuads, 2)
	for _, q := range defaultQuads {
		assert.Equal(t, "http://ex/hasReference", q.Predicate.GetValue())
		assert.Nil(t, q.Graph)
	}

	graph1Quads := dataset.GetQuads("http://ex/graph1")
	require.Len(t, graph1Quads, 1)
	assert.Equal(t, "http://ex/paris", graph1Quads[0].Subject.GetValue())
	assert.Equal(t, "http://ex/name", graph1Quads[0].Predicate.GetValue())

	graph2Quads := dataset.GetQuads("http://ex/graph2")
	require.Len(t, graph2Quads, 1)
	assert.Equal(t, "http://ex/lyon", graph2Quads[0].Subject.GetValue())
}

// Converting to RDF, serializing as N-Quads, parsing back, and converting
// to RDF again yields an isomorphic quad set, including for documents with
// lists and blank nodes.
func TestProcessor_RDFRoundTripIsomorphic(t *testing.T) {
	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"items": map[string]interface{}{
				"@id": "http://ex/items", "@container": "@list",
			},
			"knows": map[string]interface{}{
				"@id": "http://ex/knows", "@type": "@id",
			},
		},
		"@id":   "http://ex/a",
		"items": []interface{}{"one", "two", "three"},
		"knows": map[string]interface{}{"@id": "_:friend"},
	}

	proc := NewJsonLdProcessor()
	opts := NewJsonLdOptions("")
	opts.Format = "application/nquads"

	firstPass, err := proc.ToRDF(doc, opts)
	require.NoError(t, err)
	firstNQuads := firstPass.(string)

	decoded, err := proc.FromRDF(firstNQuads, NewJsonLdOptions(""))
	require.NoError(t, err)

	secondPass, err := proc.ToRDF(decoded, opts)
	require.NoError(t, err)
	secondNQuads := secondPass.(string)

	assert.True(t, Isomorphic(firstNQuads, secondNQuads),
		"expected isomorphic quad sets:\n%s\nvs:\n%s", firstNQuads, secondNQuads)
}

// Language tags are normalized to lowercase during expansion.
func TestProcessor_LanguageTagLowercased(t *testing.T) {
	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"label": "http://ex/label",
		},
		"label": map[string]interface{}{
			"@value":    "Bonjour",
			"@language": "FR",
		},
	}

	proc := NewJsonLdProcessor()
	expanded, err := proc.Expand(doc, nil)
	require.NoError(t, err)
	require.Len(t, expanded, 1)

	values := expanded[0].(map[string]interface{})["http://ex/label"].([]interface{})
	require.Len(t, values, 1)
	assert.Equal(t, "fr", values[0].(map[string]interface{})["@language"])
}

// @included blocks expand in place and flatten into peers of the node that
// declares them.
func TestProcessor_IncludedNodes(t *testing.T) {
	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"name": "http://ex/name",
		},
		"@id":  "http://ex/a",
		"name": "A",
		"@included": []interface{}{
			map[string]interface{}{
				"@id":  "http://ex/b",
				"name": "B",
			},
		},
	}

	proc := NewJsonLdProcessor()
	expanded, err := proc.Expand(doc, nil)
	require.NoError(t, err)
	require.Len(t, expanded, 1)

	node := expanded[0].(map[string]interface{})
	included := node["@included"].([]interface{})
	require.Len(t, included, 1)
	assert.Equal(t, "http://ex/b", included[0].(map[string]interface{})["@id"])

	flattened, err := proc.Flatten(doc, nil, nil)
	require.NoError(t, err)
	nodes := flattened.([]interface{})
	require.Len(t, nodes, 2)
	ids := []string{
		nodes[0].(map[string]interface{})["@id"].(string),
		nodes[1].(map[string]interface{})["@id"].(string),
	}
	assert.Contains(t, ids, "http://ex/a")
	assert.Contains(t, ids, "http://ex/b")
}

// Flattening is deterministic given a fixed blank-node issuer seed and
// ordered key iteration.
func TestProcessor_FlattenDeterministic(t *testing.T) {
	doc := map[string]interface{}{
		"@context": map[string]interface{}{
			"knows": map[string]interface{}{"@id": "http://ex/knows", "@type": "@id"},
		},
		"@id":   "http://ex/a",
		"knows": map[string]interface{}{"@id": "http://ex/b"},
	}

	proc := NewJsonLdProcessor()
	first, err := proc.Flatten(doc, nil, nil)
	require.NoError(t, err)
	second, err := proc.Flatten(doc, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
