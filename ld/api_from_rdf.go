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

package ld

import (
	"sort"
)

// nodeUsage records one place a node was used as the object of a triple:
// the node it was found on, the predicate that referenced it, and the
// already-converted JSON-LD value that resulted. The list-collapsing pass
// below walks chains of these to reconstruct rdf:first/rdf:rest lists.
type nodeUsage struct {
	node     *flatNode
	property string
	value    map[string]interface{}
}

func newNodeUsage(node *flatNode, property string, value map[string]interface{}) *nodeUsage {
	return &nodeUsage{
		node:     node,
		property: property,
		value:    value,
	}
}

// flatNode is one entry of the per-graph node table FromRDF builds while
// walking triples, before it has been serialized back into a JSON-LD node
// object.
type flatNode struct {
	Values map[string]interface{}
	usages []*nodeUsage
}

func newFlatNode(id string) *flatNode {
	return &flatNode{
		Values: map[string]interface{}{"@id": id},
		usages: make([]*nodeUsage, 0),
	}
}

// hasSingleUsage reports whether node was referenced as an object exactly
// once across the graph being processed. This distinction matters per
// https://github.com/json-ld/json-ld.org/issues/357: only a singly-referenced
// rdf:rest chain can be safely collapsed back into a JSON-LD @list without
// silently dropping information a second reference would have needed.
func hasSingleUsage(node *flatNode, singleUsages map[string]*nodeUsage) bool {
	usage, present := singleUsages[node.Values["@id"].(string)]
	return present && usage != nil
}

// looksLikeListCell reports whether this flat node carries exactly the
// entries a well-formed rdf:first/rdf:rest cons cell would: a single
// rdf:first, a single rdf:rest, and, if present, a single rdf:List @type.
func (n *flatNode) looksLikeListCell() bool {
	_, hasFirst := n.Values[RDFFirst]
	_, hasRest := n.Values[RDFRest]
	if !hasFirst || !hasRest {
		return false
	}

	keys := 0

	if v, hasFirst := n.Values[RDFFirst]; hasFirst {
		keys++
		items, isList := v.([]interface{})
		if !(isList && len(items) == 1) {
			return false
		}
	}
	if v, hasRest := n.Values[RDFRest]; hasRest {
		keys++
		items, isList := v.([]interface{})
		if !(isList && len(items) == 1) {
			return false
		}
	}
	if v, hasType := n.Values["@type"]; hasType {
		keys++
		items, isList := v.([]interface{})
		if !(isList && len(items) == 1 && items[0] == RDFList) {
			return false
		}
	}
	// @id isn't part of the formal list-cell shape, but every flat node
	// carries one, so it has to be counted alongside the rest here too
	if _, hasID := n.Values["@id"]; hasID {
		keys++
	}

	return keys >= len(n.Values)
}

// serialize copies this node's values into a plain map, dropping the usage
// bookkeeping that only matters while FromRDF is still running.
func (n *flatNode) serialize() map[string]interface{} {
	out := make(map[string]interface{}, len(n.Values))
	for k, v := range n.Values {
		out[k] = v
	}
	return out
}

// FromRDF converts an RDF dataset back into expanded JSON-LD. Each quad
// becomes a property on its subject's node, rdf:type triples become @type
// unless opts.UseRdfType asks to keep rdf:type as a literal property, and
// singly-referenced rdf:first/rdf:rest chains are collapsed back into
// @list values before the result is serialized.
func (api *JsonLdApi) FromRDF(dataset *RDFDataset, opts *JsonLdOptions) ([]interface{}, error) {
	defaultGraph := make(map[string]*flatNode)
	graphNodes := map[string]map[string]*flatNode{
		"@default": defaultGraph,
	}
	singleUsages := make(map[string]*nodeUsage)

	for name, triples := range dataset.Graphs {
		nodes, present := graphNodes[name]
		if !present {
			nodes = make(map[string]*flatNode)
			graphNodes[name] = nodes
		}

		// every named graph gets a placeholder entry in the default graph
		// so it shows up as a node even when nothing else references it
		if _, present := defaultGraph[name]; name != "@default" && !present {
			defaultGraph[name] = newFlatNode(name)
		}

		if err := collectTriples(triples, nodes, opts, singleUsages); err != nil {
			return nil, err
		}
	}

	collapseLists(graphNodes, singleUsages)

	return serializeGraphs(defaultGraph, graphNodes), nil
}

// collectTriples folds one named graph's triples into nodes, tracking
// single-object-reference bookkeeping in singleUsages as it goes.
func collectTriples(triples []*Quad, nodes map[string]*flatNode, opts *JsonLdOptions, singleUsages map[string]*nodeUsage) error {
	for _, triple := range triples {
		subject := triple.Subject.GetValue()
		predicate := triple.Predicate.GetValue()
		object := triple.Object

		node, present := nodes[subject]
		if !present {
			node = newFlatNode(subject)
			nodes[subject] = node
		}

		if _, exists := nodes[object.GetValue()]; (IsIRI(object) || IsBlankNode(object)) && !exists {
			nodes[object.GetValue()] = newFlatNode(object.GetValue())
		}

		if predicate == RDFType && (IsIRI(object) || IsBlankNode(object)) && !opts.UseRdfType {
			MergeValue(node.Values, "@type", object.GetValue())
			continue
		}

		value, err := RdfToObject(object, opts.UseNativeTypes)
		if err != nil {
			return err
		}

		MergeValue(node.Values, predicate, value)

		if IsBlankNode(object) || IsIRI(object) {
			if object.GetValue() == RDFNil {
				// every use of rdf:nil is tracked, not just the first
				n := nodes[object.GetValue()]
				n.usages = append(n.usages, newNodeUsage(node, predicate, value))
			} else if _, present := singleUsages[object.GetValue()]; present {
				// a second reference disqualifies the node from list collapsing
				singleUsages[object.GetValue()] = nil
			} else {
				singleUsages[object.GetValue()] = newNodeUsage(node, predicate, value)
			}
		}
	}
	return nil
}

// collapseLists walks backward from rdf:nil in every graph, replacing each
// maximal chain of singly-referenced, well-formed cons cells with a single
// @list value on the chain's head node.
func collapseLists(graphNodes map[string]map[string]*flatNode, singleUsages map[string]*nodeUsage) {
	for _, nodes := range graphNodes {
		nilNode, present := nodes[RDFNil]
		if !present {
			continue
		}

		for _, usage := range nilNode.usages {
			node := usage.node
			property := usage.property
			head := usage.value

			items := make([]interface{}, 0)
			visited := make([]string, 0)

			for property == RDFRest && hasSingleUsage(node, singleUsages) && node.looksLikeListCell() {
				items = append(items, node.Values[RDFFirst].([]interface{})[0])
				visited = append(visited, node.Values["@id"].(string))

				next := singleUsages[node.Values["@id"].(string)]
				node = next.node
				property = next.property
				head = next.value

				// a non-blank node terminates the chain: this is the list's head
				if !IsBlankNodeValue(node.Values) {
					break
				}
			}

			delete(head, "@id")
			for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
				items[i], items[j] = items[j], items[i]
			}
			head["@list"] = items

			for _, id := range visited {
				delete(nodes, id)
			}
		}
	}
}

// serializeGraphs turns the default graph's flat nodes into the final
// result slice, attaching each named graph's own flattened nodes as an
// @graph entry on its placeholder node.
func serializeGraphs(defaultGraph map[string]*flatNode, graphNodes map[string]map[string]*flatNode) []interface{} {
	result := make([]interface{}, 0)

	ids := make([]string, 0, len(defaultGraph))
	for k := range defaultGraph {
		ids = append(ids, k)
	}
	sort.Strings(ids)

	for _, subject := range ids {
		node := defaultGraph[subject]

		if namedGraph, isNamedGraph := graphNodes[subject]; isNamedGraph {
			members := make([]interface{}, 0)
			graphKeys := make([]string, 0, len(namedGraph))
			for k := range namedGraph {
				graphKeys = append(graphKeys, k)
			}
			sort.Strings(graphKeys)

			for _, k := range graphKeys {
				n := namedGraph[k]
				if _, onlyID := n.Values["@id"]; onlyID && len(n.Values) == 1 {
					continue
				}
				members = append(members, n.serialize())
			}
			node.Values["@graph"] = members
		}

		if _, onlyID := node.Values["@id"]; onlyID && len(node.Values) == 1 {
			continue
		}
		result = append(result, node.serialize())
	}

	return result
}
