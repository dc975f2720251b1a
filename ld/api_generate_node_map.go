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
	"fmt"
	"strings"
)

// GenerateNodeMap walks expanded JSON-LD and flattens every subject it finds
// into graphMap, keyed first by graph name and then by subject id. Blank
// node identifiers are relabeled through issuer as they're first seen, so
// the same issuer must be reused across a whole flattening pass to keep ids
// stable.
func (api *JsonLdApi) GenerateNodeMap(element interface{}, graphMap map[string]interface{}, activeGraph string,
	issuer *IdentifierIssuer, activeSubject interface{}, activeProperty string, list map[string]interface{}) (map[string]interface{}, error) {

	// an array is processed item by item, threading the same list accumulator through
	if items, isList := element.([]interface{}); isList {
		for _, item := range items {
			var err error
			list, err = api.GenerateNodeMap(item, graphMap, activeGraph, issuer, activeSubject, activeProperty, list)
			if err != nil {
				return nil, err
			}
		}
		return list, nil
	}

	obj, isMap := element.(map[string]interface{})
	if !isMap {
		return nil, fmt.Errorf("expected map or list to GenerateNodeMap, got %T", element)
	}

	graph, hasGraph := graphMap[activeGraph].(map[string]interface{})
	if !hasGraph {
		graph = make(map[string]interface{})
		graphMap[activeGraph] = graph
	}

	var subjectNode interface{}
	switch {
	case activeSubject == nil:
		subjectNode = graph
	case isStringValue(activeSubject):
		subjectNode = graph[activeSubject.(string)]
	default:
		subjectNode = make(map[string]interface{})
	}

	relabelBlankTypes(obj, element, issuer)

	if IsValue(element) {
		if list == nil {
			AddValue(subjectNode, activeProperty, element, true, false, false, false)
		} else {
			list["@list"] = append(list["@list"].([]interface{}), element)
		}
		return list, nil
	}

	if IsList(element) {
		accumulator := map[string]interface{}{"@list": []interface{}{}}
		accumulator, err := api.GenerateNodeMap(obj["@list"], graphMap, activeGraph, issuer, activeSubject, activeProperty, accumulator)
		if err != nil {
			return nil, err
		}
		if list == nil {
			AddValue(subjectNode, activeProperty, accumulator, true, false, false, false)
		} else {
			list["@list"] = append(list["@list"].([]interface{}), accumulator)
		}
		return list, nil
	}

	// everything past this point is a node object
	id := nodeID(obj, issuer)

	nodeVal, found := graph[id]
	if !found {
		nodeVal = map[string]interface{}{"@id": id}
		graph[id] = nodeVal
	}
	node := nodeVal.(map[string]interface{})

	if subjectAsMap, isMap := activeSubject.(map[string]interface{}); isMap {
		// a map active subject means we're threading a reverse-property relationship
		AddValue(node, activeProperty, subjectAsMap, true, false, false, false)
	} else if activeProperty != "" {
		ref := map[string]interface{}{"@id": id}
		if list == nil {
			AddValue(subjectNode, activeProperty, ref, true, false, false, false)
		} else {
			list["@list"] = append(list["@list"].([]interface{}), ref)
		}
	}

	if typeVal, hasType := obj["@type"]; hasType {
		AddValue(node, "@type", typeVal, true, false, false, false)
	}

	if objIndex, hasIndex := obj["@index"]; hasIndex {
		if nodeIndex, found := node["@index"]; found && nodeIndex != objIndex {
			return nil, NewJsonLdError(ConflictingIndexes, "conflicting @index property detected")
		}
		node["@index"] = objIndex
	}

	if err := api.expandReverseProperties(obj, graphMap, activeGraph, issuer, id); err != nil {
		return nil, err
	}

	if graphVal, hasGraph := obj["@graph"]; hasGraph {
		if _, err := api.GenerateNodeMap(graphVal, graphMap, id, issuer, "", "", nil); err != nil {
			return nil, err
		}
	}

	if includedVal, hasIncluded := obj["@included"]; hasIncluded {
		if _, err := api.GenerateNodeMap(includedVal, graphMap, activeGraph, issuer, "", "", nil); err != nil {
			return nil, err
		}
	}

	for _, property := range GetOrderedKeys(obj) {
		switch property {
		case "@id", "@type", "@index", "@reverse", "@graph", "@included":
			continue
		}

		value := obj[property]

		if strings.HasPrefix(property, "_:") {
			property = issuer.GetId(property)
		}

		if _, found := node[property]; !found {
			node[property] = []interface{}{}
		}
		if _, err := api.GenerateNodeMap(value, graphMap, activeGraph, issuer, id, property, nil); err != nil {
			return nil, err
		}
	}

	return list, nil
}

// relabelBlankTypes rewrites any blank-node identifiers appearing in obj's
// @type entry through issuer, so a type that is itself a blank node gets a
// stable, flattening-scoped id rather than its original ephemeral one.
func relabelBlankTypes(obj map[string]interface{}, element interface{}, issuer *IdentifierIssuer) {
	typeVal, hasType := obj["@type"]
	if !hasType {
		return
	}
	types := Arrayify(typeVal)
	relabeled := make([]interface{}, len(types))
	for i, t := range types {
		typeStr := t.(string)
		if strings.HasPrefix(typeStr, "_:") {
			typeStr = issuer.GetId(typeStr)
		}
		relabeled[i] = typeStr
	}
	if IsValue(element) {
		obj["@type"] = relabeled[0]
	} else {
		obj["@type"] = relabeled
	}
}

// nodeID resolves the node id to use for obj, minting a fresh blank node id
// via issuer when @id is absent, and relabeling an existing blank node id
// through the same issuer for consistency.
func nodeID(obj map[string]interface{}, issuer *IdentifierIssuer) string {
	id, hasID := obj["@id"]
	if !hasID || id == nil {
		return issuer.GetId("")
	}
	idStr := id.(string)
	if strings.HasPrefix(idStr, "_:") {
		return issuer.GetId(idStr)
	}
	return idStr
}

// expandReverseProperties processes obj's @reverse entry, if any, feeding
// each reverse-property value back through GenerateNodeMap with the current
// node as its (map-shaped) active subject.
func (api *JsonLdApi) expandReverseProperties(obj map[string]interface{}, graphMap map[string]interface{},
	activeGraph string, issuer *IdentifierIssuer, id string) error {

	reverseVal, hasReverse := obj["@reverse"]
	if !hasReverse {
		return nil
	}

	referencedNode := map[string]interface{}{"@id": id}
	reverseMap := reverseVal.(map[string]interface{})
	for reverseProperty, values := range reverseMap {
		for _, v := range values.([]interface{}) {
			if _, err := api.GenerateNodeMap(v, graphMap, activeGraph, issuer, referencedNode, reverseProperty, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

func isStringValue(v interface{}) bool {
	_, ok := v.(string)
	return ok
}
