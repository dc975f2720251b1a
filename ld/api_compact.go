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

// Compact rewrites expanded JSON-LD into the more compact, human-friendly
// form that activeCtx's term and alias definitions imply: IRIs are
// shortened to terms or compact IRIs, single-element arrays are collapsed
// to bare values when compactArrays is set, and @reverse/@index/@language
// containers are reassembled from their expanded @reverse/@index/@language
// entries.
func (api *JsonLdApi) Compact(activeCtx *Context, activeProperty string, element interface{},
	compactArrays bool) (interface{}, error) {

	if items, isList := element.([]interface{}); isList {
		return api.compactArray(activeCtx, activeProperty, items, compactArrays)
	}

	elem, isMap := element.(map[string]interface{})
	if !isMap {
		// scalars pass through compaction unchanged
		return element, nil
	}

	return api.compactNodeObject(activeCtx, activeProperty, elem, compactArrays)
}

// compactArray compacts each item of an expanded array independently, then
// collapses the result to its sole item when compactArrays applies and the
// active property has no container mapping that would require an array.
func (api *JsonLdApi) compactArray(activeCtx *Context, activeProperty string, items []interface{}, compactArrays bool) (interface{}, error) {
	result := make([]interface{}, 0, len(items))
	for _, item := range items {
		compactedItem, err := api.Compact(activeCtx, activeProperty, item, compactArrays)
		if err != nil {
			return nil, err
		}
		if compactedItem != nil {
			result = append(result, compactedItem)
		}
	}
	if compactArrays && len(result) == 1 && len(activeCtx.GetContainer(activeProperty)) == 0 {
		return result[0], nil
	}
	return result, nil
}

// compactValueOrNodeRef compacts a value object or a bare node reference
// using the term-specific coercion rules in CompactValue, falling through
// to the full node-object path below only when the compacted form is
// itself still a map or array (meaning it needs further key compaction).
func compactValueOrNodeRef(activeCtx *Context, activeProperty string, elem map[string]interface{}) (interface{}, error) {
	compactedValue, err := activeCtx.CompactValue(activeProperty, elem)
	if err != nil {
		return nil, err
	}
	_, isMap := compactedValue.(map[string]interface{})
	_, isList := compactedValue.([]interface{})
	if !isMap && !isList {
		return compactedValue, nil
	}
	return elem, errValueNeedsNodeCompaction
}

// errValueNeedsNodeCompaction is a sentinel used only within this file to
// signal that compactValueOrNodeRef's fast path didn't apply and the
// caller should fall back to full node-object compaction.
var errValueNeedsNodeCompaction = &compactionFallback{}

type compactionFallback struct{}

func (*compactionFallback) Error() string { return "value requires node-object compaction" }

// compactNodeObject compacts a node object (or an object with just
// @reverse/@index/@value/@language entries) key by key, aliasing every
// expanded keyword and IRI property through activeCtx along the way.
func (api *JsonLdApi) compactNodeObject(activeCtx *Context, activeProperty string, elem map[string]interface{}, compactArrays bool) (interface{}, error) {
	if IsValue(elem) || IsSubjectReference(elem) {
		if compacted, err := compactValueOrNodeRef(activeCtx, activeProperty, elem); err != errValueNeedsNodeCompaction {
			return compacted, err
		}
	}

	insideReverse := activeProperty == "@reverse"
	result := make(map[string]interface{})

	for _, expandedProperty := range GetOrderedKeys(elem) {
		expandedValue := elem[expandedProperty]

		switch {
		case expandedProperty == "@id" || expandedProperty == "@type":
			if err := api.compactIDOrType(activeCtx, expandedProperty, expandedValue, result); err != nil {
				return nil, err
			}
			continue

		case expandedProperty == "@reverse":
			if err := api.compactReverseEntry(activeCtx, expandedValue, compactArrays, result); err != nil {
				return nil, err
			}
			continue

		case expandedProperty == "@index" && activeCtx.HasContainerMapping(activeProperty, "@index"):
			continue

		case expandedProperty == "@index" || expandedProperty == "@value" || expandedProperty == "@language":
			alias, err := activeCtx.CompactIri(expandedProperty, nil, true, false)
			if err != nil {
				return nil, err
			}
			result[alias] = expandedValue
			continue
		}

		// every other expanded property's value is an array, guaranteed by
		// the expansion algorithm
		if err := api.compactPropertyValues(activeCtx, expandedProperty, expandedValue.([]interface{}), compactArrays, insideReverse, result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// compactIDOrType compacts an @id or @type entry: @id's value compacts as
// a plain IRI, while @type's value (or values) compact vocab-relative,
// since type IRIs are looked up against @vocab rather than @base.
func (api *JsonLdApi) compactIDOrType(activeCtx *Context, expandedProperty string, expandedValue interface{}, result map[string]interface{}) error {
	var compactedValue interface{}

	if valueStr, isString := expandedValue.(string); isString {
		cv, err := activeCtx.CompactIri(valueStr, nil, expandedProperty == "@type", false)
		if err != nil {
			return err
		}
		compactedValue = cv
	} else {
		types := make([]interface{}, 0)
		for _, typeVal := range expandedValue.([]interface{}) {
			ct, err := activeCtx.CompactIri(typeVal.(string), nil, true, false)
			if err != nil {
				return err
			}
			types = append(types, ct)
		}
		if len(types) == 1 {
			compactedValue = types[0]
		} else {
			compactedValue = types
		}
	}

	alias, err := activeCtx.CompactIri(expandedProperty, nil, true, false)
	if err != nil {
		return err
	}
	result[alias] = compactedValue
	return nil
}

// compactReverseEntry compacts an @reverse entry, then folds any of its
// properties that are themselves defined with a reverse mapping back into
// result directly (rather than leaving them nested under the alias for
// @reverse), matching how those properties were defined in the context.
func (api *JsonLdApi) compactReverseEntry(activeCtx *Context, expandedValue interface{}, compactArrays bool, result map[string]interface{}) error {
	compactedObject, err := api.Compact(activeCtx, "@reverse", expandedValue, compactArrays)
	if err != nil {
		return err
	}
	compactedValue := compactedObject.(map[string]interface{})

	for _, property := range GetKeys(compactedValue) {
		value := compactedValue[property]
		if !activeCtx.IsReverseProperty(property) {
			continue
		}

		valueList, isList := value.([]interface{})
		if (activeCtx.HasContainerMapping(property, "@set") || !compactArrays) && !isList {
			result[property] = []interface{}{value}
		}

		if _, present := result[property]; !present {
			result[property] = value
		} else {
			merged, isMerged := result[property].([]interface{})
			if !isMerged {
				merged = []interface{}{result[property]}
			}
			if isList {
				merged = append(merged, valueList...)
			} else {
				merged = append(merged, value)
			}
			result[property] = merged
		}
		delete(compactedValue, property)
	}

	if len(compactedValue) > 0 {
		alias, err := activeCtx.CompactIri("@reverse", nil, true, false)
		if err != nil {
			return err
		}
		result[alias] = compactedValue
	}
	return nil
}

// compactPropertyValues compacts one expanded property's value array item
// by item, reassembling @list and @language/@index container maps as it
// goes, and writes the compacted result(s) under the property's alias.
func (api *JsonLdApi) compactPropertyValues(activeCtx *Context, expandedProperty string, expandedValueList []interface{}, compactArrays bool, insideReverse bool, result map[string]interface{}) error {
	if len(expandedValueList) == 0 {
		itemActiveProperty, err := activeCtx.CompactIri(expandedProperty, expandedValueList, true, insideReverse)
		if err != nil {
			return err
		}
		if existing, present := result[itemActiveProperty]; !present {
			result[itemActiveProperty] = make([]interface{}, 0)
		} else if _, isList := existing.([]interface{}); !isList {
			result[itemActiveProperty] = []interface{}{existing}
		}
	}

	for _, expandedItem := range expandedValueList {
		itemActiveProperty, err := activeCtx.CompactIri(expandedProperty, expandedItem, true, insideReverse)
		if err != nil {
			return err
		}
		container := activeCtx.GetContainer(itemActiveProperty)
		isListContainer := inArray("@list", container)
		isSetContainer := inArray("@set", container)

		expandedItemMap, isMap := expandedItem.(map[string]interface{})
		listValue, hasList := expandedItemMap["@list"]
		isListValue := isMap && hasList
		isGraphValue := IsGraph(expandedItem)

		elementToCompact := expandedItem
		if isListValue {
			elementToCompact = listValue
		} else if isGraphValue {
			elementToCompact = expandedItemMap["@graph"]
		}
		compactedItem, err := api.Compact(activeCtx, itemActiveProperty, elementToCompact, compactArrays)
		if err != nil {
			return err
		}

		if isListValue {
			compactedItem, err = wrapCompactedList(activeCtx, compactedItem, isListContainer, itemActiveProperty, expandedItemMap, result)
			if err != nil {
				return err
			}
		}

		switch {
		case isGraphValue:
			err = addGraphValue(activeCtx, compactedItem, container, itemActiveProperty, expandedItemMap, compactArrays, result)
		case inArray("@language", container) || inArray("@index", container) ||
			inArray("@id", container) || inArray("@type", container):
			err = addToContainerMap(activeCtx, container, itemActiveProperty, expandedItemMap, compactedItem, !compactArrays || isSetContainer, result)
		default:
			addToPropertyValue(expandedProperty, isSetContainer, isListContainer, itemActiveProperty, compactedItem, compactArrays, result)
		}
		if err != nil {
			return err
		}
	}

	return nil
}

// wrapCompactedList wraps a compacted @list value in an {"@list": ...}
// object (carrying over @index as a sibling key) unless the active
// property's container mapping is itself @list, in which case the bare
// array is kept and a second list object for the same property is
// rejected as ambiguous.
func wrapCompactedList(activeCtx *Context, compactedItem interface{}, isListContainer bool, itemActiveProperty string, expandedItemMap map[string]interface{}, result map[string]interface{}) (interface{}, error) {
	if _, isList := compactedItem.([]interface{}); !isList {
		compactedItem = []interface{}{compactedItem}
	}

	if isListContainer {
		if _, present := result[itemActiveProperty]; present {
			return nil, NewJsonLdError(CompactionToListOfLists,
				"There cannot be two list objects associated with an active property that has a container mapping")
		}
		return compactedItem, nil
	}

	wrapper := make(map[string]interface{})
	listAlias, err := activeCtx.CompactIri("@list", nil, true, false)
	if err != nil {
		return nil, err
	}
	wrapper[listAlias] = compactedItem

	if indexVal, hasIndex := expandedItemMap["@index"]; hasIndex {
		indexAlias, err := activeCtx.CompactIri("@index", nil, true, false)
		if err != nil {
			return nil, err
		}
		wrapper[indexAlias] = indexVal
	}

	return wrapper, nil
}

// addGraphValue files a compacted graph object into result: a graph
// container indexed by @id or @index becomes a map entry, a plain @graph
// container takes the graph's content directly (wrapping multiple items in
// a @set alias), and anything else is wrapped back up in an explicit
// @graph object carrying its @id/@index.
func addGraphValue(activeCtx *Context, compactedItem interface{}, container []interface{}, itemActiveProperty string,
	expandedItemMap map[string]interface{}, compactArrays bool, result map[string]interface{}) error {

	isGraphContainer := inArray("@graph", container)
	asArray := !compactArrays || inArray("@set", container)

	if isGraphContainer && (inArray("@id", container) || (inArray("@index", container) && IsSimpleGraph(expandedItemMap))) {
		var mapObject map[string]interface{}
		if mapVal, present := result[itemActiveProperty]; present {
			mapObject = mapVal.(map[string]interface{})
		} else {
			mapObject = make(map[string]interface{})
			result[itemActiveProperty] = mapObject
		}

		// index on @id or @index, falling back to an alias of @none
		var key string
		var err error
		if inArray("@id", container) {
			if idVal, hasID := expandedItemMap["@id"]; hasID {
				key, err = activeCtx.CompactIri(idVal.(string), nil, false, false)
			} else {
				key, err = activeCtx.CompactIri("@none", nil, true, false)
			}
		} else {
			if indexVal, hasIndex := expandedItemMap["@index"]; hasIndex {
				key = indexVal.(string)
			} else {
				key, err = activeCtx.CompactIri("@none", nil, true, false)
			}
		}
		if err != nil {
			return err
		}
		AddValue(mapObject, key, compactedItem, asArray, false, true, false)
		return nil
	}

	if isGraphContainer && IsSimpleGraph(expandedItemMap) {
		if av, isArray := compactedItem.([]interface{}); isArray && len(av) > 1 {
			// multiple graph members but no @id or @index: wrap in @set
			setAlias, err := activeCtx.CompactIri("@set", nil, true, false)
			if err != nil {
				return err
			}
			compactedItem = map[string]interface{}{setAlias: compactedItem}
		}
		AddValue(result, itemActiveProperty, compactedItem, asArray, false, true, false)
		return nil
	}

	// no graph container: re-wrap in an explicit @graph object
	if av, isArray := compactedItem.([]interface{}); isArray && len(av) == 1 && compactArrays {
		compactedItem = av[0]
	}
	graphAlias, err := activeCtx.CompactIri("@graph", nil, true, false)
	if err != nil {
		return err
	}
	wrapper := map[string]interface{}{graphAlias: compactedItem}

	if idVal, hasID := expandedItemMap["@id"]; hasID {
		idAlias, err := activeCtx.CompactIri("@id", nil, true, false)
		if err != nil {
			return err
		}
		compactedID, err := activeCtx.CompactIri(idVal.(string), nil, false, false)
		if err != nil {
			return err
		}
		wrapper[idAlias] = compactedID
	}
	if indexVal, hasIndex := expandedItemMap["@index"]; hasIndex {
		indexAlias, err := activeCtx.CompactIri("@index", nil, true, false)
		if err != nil {
			return err
		}
		wrapper[indexAlias] = indexVal
	}
	AddValue(result, itemActiveProperty, wrapper, asArray, false, true, false)
	return nil
}

// addToContainerMap files compactedItem into result[itemActiveProperty]
// under the key its container mapping dictates: the value's language tag,
// its @index, its (compacted) @id, or its first @type, with an alias of
// @none as the fallback key when the value carries no such entry.
func addToContainerMap(activeCtx *Context, container []interface{}, itemActiveProperty string,
	expandedItemMap map[string]interface{}, compactedItem interface{}, asArray bool, result map[string]interface{}) error {

	mapObject, present := result[itemActiveProperty].(map[string]interface{})
	if !present {
		mapObject = make(map[string]interface{})
		result[itemActiveProperty] = mapObject
	}

	var containerKey string
	for _, c := range []string{"@language", "@index", "@id", "@type"} {
		if inArray(c, container) {
			containerKey = c
			break
		}
	}

	var mapKey string
	switch containerKey {
	case "@language":
		if compactedItemMap, isMap := compactedItem.(map[string]interface{}); isMap {
			if value, hasValue := compactedItemMap["@value"]; hasValue {
				compactedItem = value
			}
		}
		if langVal, hasLang := expandedItemMap["@language"]; hasLang {
			mapKey = langVal.(string)
		}
	case "@index":
		if indexVal, hasIndex := expandedItemMap["@index"]; hasIndex {
			mapKey = indexVal.(string)
		}
	case "@id":
		if idVal, hasID := expandedItemMap["@id"]; hasID {
			var err error
			mapKey, err = activeCtx.CompactIri(idVal.(string), nil, false, false)
			if err != nil {
				return err
			}
			// the id lives in the map key now; drop it from the value
			if compactedItemMap, isMap := compactedItem.(map[string]interface{}); isMap {
				idAlias, err := activeCtx.CompactIri("@id", nil, true, false)
				if err != nil {
					return err
				}
				delete(compactedItemMap, idAlias)
			}
		}
	case "@type":
		typeAlias, err := activeCtx.CompactIri("@type", nil, true, false)
		if err != nil {
			return err
		}
		if compactedItemMap, isMap := compactedItem.(map[string]interface{}); isMap {
			if typeVal, hasType := compactedItemMap[typeAlias]; hasType {
				types := Arrayify(typeVal)
				if first, isString := types[0].(string); isString {
					mapKey = first
				}
				// the first type becomes the map key; keep the remainder
				if len(types) > 1 {
					compactedItemMap[typeAlias] = types[1:]
				} else {
					delete(compactedItemMap, typeAlias)
				}
			}
		}
	}

	if mapKey == "" {
		var err error
		mapKey, err = activeCtx.CompactIri("@none", nil, true, false)
		if err != nil {
			return err
		}
	}
	AddValue(mapObject, mapKey, compactedItem, asArray, false, true, false)
	return nil
}

// addToPropertyValue files compactedItem under result[itemActiveProperty],
// wrapping it in a single-element array whenever compactArrays is off or
// the container/expanded-property shape requires an array regardless.
func addToPropertyValue(expandedProperty string, isSetContainer bool, isListContainer bool, itemActiveProperty string, compactedItem interface{}, compactArrays bool, result map[string]interface{}) {
	_, alreadyList := compactedItem.([]interface{})
	needsArray := (!compactArrays || isSetContainer || isListContainer ||
		expandedProperty == "@list" || expandedProperty == "@graph") && !alreadyList
	if needsArray {
		compactedItem = []interface{}{compactedItem}
	}

	existing, present := result[itemActiveProperty]
	if !present {
		result[itemActiveProperty] = compactedItem
		return
	}

	values, isList := existing.([]interface{})
	if !isList {
		values = []interface{}{existing}
	}
	if newValues, isList := compactedItem.([]interface{}); isList {
		values = append(values, newValues...)
	} else {
		values = append(values, compactedItem)
	}
	result[itemActiveProperty] = values
}
