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
	"sort"
	"strings"
)

// Expand recursively applies the Expansion algorithm to element, turning
// term-relative JSON-LD into its fully expanded, context-free form.
//
// http://www.w3.org/TR/json-ld-api/#expansion-algorithm
func (api *JsonLdApi) Expand(activeCtx *Context, activeProperty string, element interface{}, opts *JsonLdOptions) (interface{}, error) {

	frameExpansion := opts.ProcessingMode == JsonLd_1_1_Frame
	if element == nil {
		return nil, nil
	}

	// framing keywords are only meaningful below an actual property
	if activeProperty == "@default" {
		frameExpansion = false
	}

	switch v := element.(type) {
	case []interface{}:
		expandedItems := make([]interface{}, 0)
		for _, item := range v {
			expandedItem, err := api.Expand(activeCtx, activeProperty, item, opts)
			if err != nil {
				return nil, err
			}
			// an array inside a list-valued property may not itself contain a list
			if activeProperty == "@list" || activeCtx.HasContainerMapping(activeProperty, "@list") {
				_, isList := expandedItem.([]interface{})
				asMap, isMap := expandedItem.(map[string]interface{})
				_, mapIsList := asMap["@list"]
				if isList || (isMap && mapIsList) {
					return nil, NewJsonLdError(ListOfLists, "lists of lists are not permitted.")
				}
			}
			if expandedItem != nil {
				if asList, isList := expandedItem.([]interface{}); isList {
					expandedItems = append(expandedItems, asList...)
				} else {
					expandedItems = append(expandedItems, expandedItem)
				}
			}
		}
		return expandedItems, nil

	case map[string]interface{}:
		if ctx, hasContext := v["@context"]; hasContext {
			newCtx, err := activeCtx.Parse(ctx)
			if err != nil {
				return nil, err
			}
			activeCtx = newCtx
		}

		// a @type entry may carry its own scoped context; apply any such
		// contexts (in lexicographic order of the type values) before
		// expanding the rest of the object
		for _, key := range GetOrderedKeys(v) {
			value := v[key]
			expandedProperty, err := activeCtx.ExpandIri(key, false, true, nil, nil)
			if err != nil {
				return nil, err
			}
			if expandedProperty != "@type" {
				continue
			}
			typeValues := make([]string, 0)
			for _, t := range Arrayify(value) {
				if typeStr, isString := t.(string); isString {
					typeValues = append(typeValues, typeStr)
				}
			}
			// see https://github.com/json-ld/json-ld.org/issues/616
			sort.Strings(typeValues)
			for _, typeValue := range typeValues {
				td := activeCtx.GetTermDefinition(typeValue)
				if scopedCtx, hasCtx := td["@context"]; hasCtx {
					newCtx, err := activeCtx.Parse(scopedCtx)
					if err != nil {
						return nil, err
					}
					activeCtx = newCtx
				}
			}
		}

		expandedActiveProperty, err := activeCtx.ExpandIri(activeProperty, false, true, nil, nil)
		if err != nil {
			return nil, err
		}

		expanded := make(map[string]interface{})
		if err := api.expandNodeObject(activeCtx, activeProperty, expandedActiveProperty, v, expanded, opts, frameExpansion); err != nil {
			return nil, err
		}

		if rval, hasValue := expanded["@value"]; hasValue {
			allowedKeys := map[string]interface{}{
				"@value":     nil,
				"@index":     nil,
				"@language":  nil,
				"@type":      nil,
				"@direction": nil,
			}
			hasDisallowedKeys := false
			for key := range expanded {
				if _, allowed := allowedKeys[key]; !allowed {
					hasDisallowedKeys = true
					break
				}
			}
			_, hasLanguage := expanded["@language"]
			_, hasDirection := expanded["@direction"]
			typeValue, hasType := expanded["@type"]
			if hasDisallowedKeys {
				return nil, NewJsonLdError(InvalidValueObject, "value object has unknown keys")
			}
			if (hasLanguage || hasDirection) && hasType {
				return nil, NewJsonLdError(InvalidValueObject,
					"an element containing @value may not contain both @type and @language or @direction")
			}
			if rval == nil {
				// an explicit null @value collapses the whole node to nil
				return nil, nil
			}

			if hasLanguage {
				for _, item := range Arrayify(rval) {
					if _, isString := item.(string); !(isString || isEmptyObject(item)) {
						return nil, NewJsonLdError(InvalidLanguageTaggedValue,
							"only strings may be language-tagged")
					}
				}
			} else if hasType {
				for _, item := range Arrayify(typeValue) {
					itemStr, isString := item.(string)
					if isString && itemStr == "@json" && activeCtx.processingMode(1.1) {
						// @json marks a JSON literal; the raw @value passes through
						continue
					}
					if !(isEmptyObject(item) || (isString && IsAbsoluteIri(itemStr) && !strings.HasPrefix(itemStr, "_:"))) {
						return nil, NewJsonLdError(InvalidTypedValue,
							"an element containing @value and @type must have an absolute IRI for the value of @type")
					}
				}
			}
		} else if typeVal, hasType := expanded["@type"]; hasType {
			// @type is always represented as an array from here on
			if _, isList := typeVal.([]interface{}); !isList {
				expanded["@type"] = []interface{}{typeVal}
			}
		} else if setVal, hasSet := expanded["@set"]; hasSet {
			if err := checkSetOrListSize(expanded); err != nil {
				return nil, err
			}
			// @set unwraps to its own value; the object form is discarded
			return setVal, nil
		} else if _, hasList := expanded["@list"]; hasList {
			if err := checkSetOrListSize(expanded); err != nil {
				return nil, err
			}
		}

		var result interface{} = expanded
		// a lone @language entry carries no usable information
		if _, hasLanguage := expanded["@language"]; hasLanguage && len(expanded) == 1 {
			expanded = nil
			result = nil
		}
		if activeProperty == "" || activeProperty == "@graph" {
			_, hasValue := expanded["@value"]
			_, hasList := expanded["@list"]
			_, hasID := expanded["@id"]
			if expanded != nil && (len(expanded) == 0 || hasValue || hasList) {
				expanded = nil
				result = nil
			} else if expanded != nil && !frameExpansion && hasID && len(expanded) == 1 {
				// a free-floating node consisting of nothing but @id is dropped
				expanded = nil
				result = nil
			}
		}
		return result, nil

	default:
		// scalars expand to nothing unless they sit directly under a property
		if activeProperty == "" || activeProperty == "@graph" {
			return nil, nil
		}
		return activeCtx.ExpandValue(activeProperty, element)
	}
}

// checkSetOrListSize enforces that a value object tagged @set or @list
// carries nothing beyond an optional @index.
func checkSetOrListSize(expanded map[string]interface{}) error {
	maxSize := 1
	if _, hasIndex := expanded["@index"]; hasIndex {
		maxSize = 2
	}
	if len(expanded) > maxSize {
		return NewJsonLdError(InvalidSetOrListObject, "@set or @list may only contain @index")
	}
	return nil
}

// expandNodeObject walks every entry of a node object being expanded,
// expanding keywords in place and delegating to Expand for everything else.
// Entries under @nest are folded back in as though they appeared directly
// in the enclosing object.
func (api *JsonLdApi) expandNodeObject(activeCtx *Context, activeProperty string, expandedActiveProperty string,
	obj map[string]interface{}, expanded map[string]interface{}, opts *JsonLdOptions, frameExpansion bool) error {

	// determine the object's input type up front: an expanded @type of @json
	// lifts the scalar-only restriction on @value below
	inputType := ""
	for _, key := range GetOrderedKeys(obj) {
		expandedKey, _ := activeCtx.ExpandIri(key, false, true, nil, nil)
		if expandedKey != "@type" {
			continue
		}
		if typeValues := Arrayify(obj[key]); len(typeValues) > 0 {
			if lastType, isString := typeValues[len(typeValues)-1].(string); isString {
				inputType, _ = activeCtx.ExpandIri(lastType, false, true, nil, nil)
			}
		}
	}

	nestedKeys := make([]string, 0)
	for _, key := range GetOrderedKeys(obj) {
		value := obj[key]
		if key == "@context" {
			continue
		}
		expandedProperty, err := activeCtx.ExpandIri(key, false, true, nil, nil)
		if err != nil {
			return err
		}
		var expandedValue interface{}
		// drop entries that don't expand to either an IRI or a keyword
		if expandedProperty == "" || (!strings.Contains(expandedProperty, ":") && !IsKeyword(expandedProperty)) {
			if reservedTermPattern.MatchString(key) {
				log.WithField("key", key).Warn("keys beginning with '@' are reserved for future use and ignored")
			}
			continue
		}
		if IsKeyword(expandedProperty) {
			if expandedActiveProperty == "@reverse" {
				return NewJsonLdError(InvalidReversePropertyMap,
					"a keyword cannot be used as a @reverse property")
			}
			if _, exists := expanded[expandedProperty]; exists {
				return NewJsonLdError(CollidingKeywords, expandedProperty+" already exists in result")
			}
			switch expandedProperty {
			case "@id":
				idStr, isString := value.(string)
				if isString {
					expandedValue, err = activeCtx.ExpandIri(idStr, true, false, nil, nil)
					if err != nil {
						return err
					}
				} else if frameExpansion {
					if idMap, isMap := value.(map[string]interface{}); isMap {
						if len(idMap) != 0 {
							return NewJsonLdError(InvalidIDValue, "@id value must be a an empty object for framing")
						}
						expandedValue = Arrayify(value)
					} else if idList, isList := value.([]interface{}); isList {
						expandedList := make([]interface{}, 0)
						for _, item := range idList {
							itemStr, isString := item.(string)
							if !isString {
								return NewJsonLdError(InvalidIDValue, "@id value must be a string, an array of strings or an empty dictionary")
							}
							resolved, err := activeCtx.ExpandIri(itemStr, true, true, nil, nil)
							if err != nil {
								return err
							}
							expandedList = append(expandedList, resolved)
						}
						expandedValue = expandedList
					} else {
						return NewJsonLdError(InvalidIDValue, "value of @id must be a string, an array of strings or an empty dictionary")
					}
				} else {
					return NewJsonLdError(InvalidIDValue, "value of @id must be a string")
				}
			case "@type":
				switch tv := value.(type) {
				case []interface{}:
					var expandedList []interface{}
					for _, item := range tv {
						itemStr, isString := item.(string)
						if !isString {
							return NewJsonLdError(InvalidTypeValue,
								"@type value must be a string or array of strings")
						}
						resolved, err := activeCtx.ExpandIri(itemStr, true, true, nil, nil)
						if err != nil {
							return err
						}
						expandedList = append(expandedList, resolved)
					}
					expandedValue = expandedList
				case string:
					expandedValue, err = activeCtx.ExpandIri(tv, true, true, nil, nil)
					if err != nil {
						return err
					}
				case map[string]interface{}:
					if len(tv) != 0 {
						return NewJsonLdError(InvalidTypeValue,
							"@type value must be a an empty object for framing")
					}
					expandedValue = value
				default:
					return NewJsonLdError(InvalidTypeValue, "@type value must be a string or array of strings")
				}
			case "@graph":
				expandedValue, err = api.Expand(activeCtx, "@graph", value, opts)
				if err != nil {
					return err
				}
				expandedValue = Arrayify(expandedValue)
			case "@value":
				_, isMap := value.(map[string]interface{})
				_, isList := value.([]interface{})
				if inputType == "@json" && activeCtx.processingMode(1.1) {
					// a JSON literal admits any JSON value verbatim
				} else if value != nil && (isMap || isList) && !frameExpansion {
					return NewJsonLdError(InvalidValueObjectValue, "value of "+
						expandedProperty+" must be a scalar or null")
				}
				expandedValue = value
				if expandedValue == nil {
					expanded["@value"] = nil
					continue
				}
			case "@direction":
				if frameExpansion {
					expandedValue = Arrayify(value)
				} else {
					dirStr, isString := value.(string)
					if !isString || (dirStr != "ltr" && dirStr != "rtl") {
						return NewJsonLdError(InvalidBaseDirection, "@direction value must be \"ltr\" or \"rtl\"")
					}
					expandedValue = dirStr
				}
			case "@included":
				if activeCtx.processingMode(1.0) {
					continue
				}
				includedValue, err := api.Expand(activeCtx, "", value, opts)
				if err != nil {
					return err
				}
				includedNodes := Arrayify(includedValue)
				if includedValue == nil || len(includedNodes) == 0 {
					return NewJsonLdError(InvalidIncludedValue, "values of @included must expand to node objects")
				}
				for _, n := range includedNodes {
					if !IsSubject(n) && !IsSubjectReference(n) {
						return NewJsonLdError(InvalidIncludedValue, "values of @included must expand to node objects")
					}
				}
				expandedValue = includedNodes
			case "@language":
				if frameExpansion {
					langValues := make([]interface{}, 0)
					for _, item := range Arrayify(value) {
						if itemStr, isString := item.(string); isString {
							langValues = append(langValues, strings.ToLower(itemStr))
						} else {
							langValues = append(langValues, item)
						}
					}
					expandedValue = langValues
				} else {
					langStr, isString := value.(string)
					if !isString {
						return NewJsonLdError(InvalidLanguageTaggedString, "@language value must be a string")
					}
					expandedValue = strings.ToLower(langStr)
				}
			case "@index":
				_, isString := value.(string)
				if !isString {
					return NewJsonLdError(InvalidIndexValue, "Value of "+
						expandedProperty+" must be a string")
				}
				expandedValue = value
			case "@list":
				// a list cannot appear directly under the top-level graph
				if activeProperty == "" || activeProperty == "@graph" {
					continue
				}
				expandedValue, _ = api.Expand(activeCtx, activeProperty, value, opts)

				expandedList, isList := expandedValue.([]interface{})
				if !isList {
					expandedList = []interface{}{expandedValue}
					expandedValue = expandedList
				}

				for _, item := range expandedList {
					itemMap, isMap := item.(map[string]interface{})
					if _, containsList := itemMap["@list"]; isMap && containsList {
						return NewJsonLdError(ListOfLists, "A list may not contain another list")
					}
				}
			case "@set":
				expandedValue, _ = api.Expand(activeCtx, activeProperty, value, opts)
			case "@reverse":
				if err := api.expandReverseEntry(activeCtx, value, expanded, opts); err != nil {
					return err
				}
				continue
			case "@nest":
				nestedKeys = append(nestedKeys, key)
			case "@default":
				expandedValue, _ = api.Expand(activeCtx, expandedProperty, value, opts)
			case "@explicit", "@embed", "@requireAll", "@omitDefault":
				// these are scalar framing directives
				expandedValue = []interface{}{value}
			}
			if expandedValue != nil {
				expanded[expandedProperty] = expandedValue
			}
			continue
		}

		// resolve a scoped context attached to the term, if any
		termCtx := activeCtx
		td := activeCtx.GetTermDefinition(key)
		if ctx, hasCtx := td["@context"]; hasCtx {
			termCtx, err = activeCtx.Parse(ctx)
			if err != nil {
				return err
			}
		}

		valueMap, isMap := value.(map[string]interface{})
		switch {
		case activeCtx.HasContainerMapping(key, "@language") && isMap:
			var expandedList []interface{}
			for _, language := range GetOrderedKeys(valueMap) {
				expandedLanguage, err := termCtx.ExpandIri(language, false, true, nil, nil)
				if err != nil {
					return err
				}
				for _, item := range Arrayify(valueMap[language]) {
					if item == nil {
						continue
					}
					itemStr, isString := item.(string)
					if !isString {
						return NewJsonLdError(InvalidLanguageMapValue,
							fmt.Sprintf("expected %v to be a string", item))
					}
					wrapped := map[string]interface{}{"@value": itemStr}
					if expandedLanguage != "@none" {
						wrapped["@language"] = strings.ToLower(language)
					}
					expandedList = append(expandedList, wrapped)
				}
			}
			expandedValue = expandedList
		case activeCtx.HasContainerMapping(key, "@index") && isMap:
			asGraph := activeCtx.HasContainerMapping(key, "@graph")
			expandedValue, err = api.expandIndexMap(termCtx, key, valueMap, "@index", asGraph, opts)
			if err != nil {
				return err
			}
		case activeCtx.HasContainerMapping(key, "@id") && isMap:
			asGraph := activeCtx.HasContainerMapping(key, "@graph")
			expandedValue, err = api.expandIndexMap(termCtx, key, valueMap, "@id", asGraph, opts)
			if err != nil {
				return err
			}
		case activeCtx.HasContainerMapping(key, "@type") && isMap:
			expandedValue, err = api.expandIndexMap(termCtx, key, valueMap, "@type", false, opts)
			if err != nil {
				return err
			}
		default:
			isList := expandedProperty == "@list"
			if isList || expandedProperty == "@set" {
				nextActiveProperty := activeProperty
				if isList && expandedActiveProperty == "@graph" {
					nextActiveProperty = ""
				}
				expandedValue, err = api.Expand(termCtx, nextActiveProperty, value, opts)
				if err != nil {
					return err
				}
				if isList && IsList(expandedValue) {
					return NewJsonLdError(ListOfLists, "lists of lists are not permitted")
				}
			} else {
				expandedValue, err = api.Expand(termCtx, key, value, opts)
				if err != nil {
					return err
				}
			}
		}

		if expandedValue == nil {
			continue
		}
		if activeCtx.HasContainerMapping(key, "@list") {
			expandedValueMap, isMap := expandedValue.(map[string]interface{})
			_, containsList := expandedValueMap["@list"]
			if !isMap || !containsList {
				wrapped := make(map[string]interface{}, 1)
				if _, isList := expandedValue.([]interface{}); !isList {
					wrapped["@list"] = []interface{}{expandedValue}
				} else {
					wrapped["@list"] = expandedValue
				}
				expandedValue = wrapped
			}
		}

		isContainerGraph := activeCtx.HasContainerMapping(key, "@graph")
		isContainerID := activeCtx.HasContainerMapping(key, "@id")
		isContainerIndex := activeCtx.HasContainerMapping(key, "@index")
		if isContainerGraph && !isContainerID && !isContainerIndex && !IsGraph(expandedValue) {
			items := Arrayify(expandedValue)
			wrapped := make([]interface{}, 0)
			for _, item := range items {
				if !IsGraph(item) {
					item = map[string]interface{}{"@graph": Arrayify(item)}
				}
				wrapped = append(wrapped, item)
			}
			expandedValue = wrapped
		}

		if termCtx.IsReverseProperty(key) {
			var reverseMap map[string]interface{}
			if existing, has := expanded["@reverse"]; has {
				reverseMap = existing.(map[string]interface{})
			} else {
				reverseMap = make(map[string]interface{})
				expanded["@reverse"] = reverseMap
			}

			expandedList, isList := expandedValue.([]interface{})
			if !isList {
				expandedList = []interface{}{expandedValue}
				expandedValue = expandedList
			}
			for _, item := range expandedList {
				var bucket []interface{}
				if existing, has := reverseMap[expandedProperty]; has {
					bucket = existing.([]interface{})
				} else {
					bucket = make([]interface{}, 0)
				}

				switch itemVal := item.(type) {
				case map[string]interface{}:
					_, containsValue := itemVal["@value"]
					_, containsList := itemVal["@list"]
					if containsValue || containsList {
						return NewJsonLdError(InvalidReversePropertyValue, nil)
					}
					bucket = append(bucket, itemVal)
				case []interface{}:
					bucket = append(bucket, itemVal...)
				default:
					bucket = append(bucket, itemVal)
				}
				reverseMap[expandedProperty] = bucket
			}
		} else {
			var bucket []interface{}
			if existing, has := expanded[expandedProperty]; has {
				bucket = existing.([]interface{})
			} else {
				bucket = make([]interface{}, 0)
				expanded[expandedProperty] = bucket
			}
			if expandedList, isList := expandedValue.([]interface{}); isList {
				bucket = append(bucket, expandedList...)
			} else {
				bucket = append(bucket, expandedValue)
			}
			expanded[expandedProperty] = bucket
		}
	}

	// fold every @nest entry back into this object as if it had appeared inline
	for _, nestKey := range nestedKeys {
		for _, nested := range Arrayify(obj[nestKey]) {
			nestedMap, isMap := nested.(map[string]interface{})
			hasValueEntry := false
			if isMap {
				for k := range nestedMap {
					expandedKey, _ := activeCtx.ExpandIri(k, false, true, nil, nil)
					if expandedKey == "@value" {
						hasValueEntry = true
						break
					}
				}
			}
			if !isMap || hasValueEntry {
				return NewJsonLdError(InvalidNestValue, "nested value must be a node object")
			}
			if err := api.expandNodeObject(activeCtx, activeProperty, expandedActiveProperty, nestedMap, expanded, opts, frameExpansion); err != nil {
				return err
			}
		}
	}

	return nil
}

// expandReverseEntry handles an @reverse entry: its expanded sub-properties
// are merged either into the enclosing object's own @reverse map (if no
// reversal occurred) or promoted to regular, forward properties.
func (api *JsonLdApi) expandReverseEntry(activeCtx *Context, value interface{}, expanded map[string]interface{}, opts *JsonLdOptions) error {
	if _, isMap := value.(map[string]interface{}); !isMap {
		return NewJsonLdError(InvalidReverseValue, "@reverse value must be an object")
	}

	expandedValue, err := api.Expand(activeCtx, "@reverse", value, opts)
	if err != nil {
		return err
	}

	expandedValueMap := expandedValue.(map[string]interface{})
	reverseValue, containsReverse := expandedValueMap["@reverse"]
	if containsReverse {
		for property, item := range reverseValue.(map[string]interface{}) {
			var bucket []interface{}
			if existing, has := expanded[property]; has {
				bucket = existing.([]interface{})
			} else {
				bucket = make([]interface{}, 0)
				expanded[property] = bucket
			}
			if itemList, isList := item.([]interface{}); isList {
				bucket = append(bucket, itemList...)
			} else {
				bucket = append(bucket, item)
			}
			expanded[property] = bucket
		}
	}

	maxSize := 0
	if containsReverse {
		maxSize = 1
	}
	if len(expandedValueMap) <= maxSize {
		return nil
	}

	var reverseMap map[string]interface{}
	if existing, has := expanded["@reverse"]; has {
		reverseMap = existing.(map[string]interface{})
	} else {
		reverseMap = make(map[string]interface{})
		expanded["@reverse"] = reverseMap
	}

	for property, propertyValue := range expandedValueMap {
		if property == "@reverse" {
			continue
		}
		for _, item := range propertyValue.([]interface{}) {
			itemMap := item.(map[string]interface{})
			_, containsValue := itemMap["@value"]
			_, containsList := itemMap["@list"]
			if containsValue || containsList {
				return NewJsonLdError(InvalidReversePropertyValue, nil)
			}
			var bucket []interface{}
			existing, has := reverseMap[property]
			if has {
				bucket = existing.([]interface{})
			} else {
				bucket = make([]interface{}, 0)
				reverseMap[property] = bucket
			}
			reverseMap[property] = append(bucket, item)
		}
	}

	return nil
}

// expandIndexMap expands an @index/@id/@type-container map, folding the map
// key back into each expanded member under indexKey.
func (api *JsonLdApi) expandIndexMap(activeCtx *Context, activeProperty string, value map[string]interface{},
	indexKey string, asGraph bool, opts *JsonLdOptions) (interface{}, error) {

	var results []interface{}
	for _, index := range GetOrderedKeys(value) {
		indexValue := value[index]

		indexCtx := activeCtx
		td := activeCtx.GetTermDefinition(index)
		if ctx, hasCtx := td["@context"]; hasCtx {
			newCtx, err := activeCtx.Parse(ctx)
			if err != nil {
				return nil, err
			}
			indexCtx = newCtx
		}

		expandedIndex, err := indexCtx.ExpandIri(index, false, true, nil, nil)
		if err != nil {
			return nil, err
		}
		switch indexKey {
		case "@id":
			index, err = indexCtx.ExpandIri(index, true, false, nil, nil)
			if err != nil {
				return nil, err
			}
		case "@type":
			index = expandedIndex
		}

		expandedItems, err := api.Expand(indexCtx, activeProperty, Arrayify(indexValue), opts)
		if err != nil {
			return nil, err
		}

		for _, rawItem := range expandedItems.([]interface{}) {
			if asGraph && !IsGraph(rawItem) {
				rawItem = map[string]interface{}{"@graph": Arrayify(rawItem)}
			}
			item := rawItem.(map[string]interface{})
			if indexKey == "@type" {
				if expandedIndex != "@none" {
					types := []interface{}{index}
					if existing, hasType := item["@type"]; hasType {
						for _, t := range existing.([]interface{}) {
							types = append(types, t.(string))
						}
					}
					item["@type"] = types
				}
			} else if _, exists := item[indexKey]; !exists && expandedIndex != "@none" {
				item[indexKey] = index
			}

			results = append(results, item)
		}
	}
	return results, nil
}
