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

// ExpandValue expands the given scalar using the coercion and language
// rules the active property's term definition implies, producing a value
// object (or a node reference for @id/@vocab-coerced values).
func (c *Context) ExpandValue(activeProperty string, value interface{}) (interface{}, error) {
	td := c.GetTermDefinition(activeProperty)
	coercion, _ := td["@type"].(string)

	if coercion == "@id" || coercion == "@vocab" {
		strVal, isString := value.(string)
		if !isString {
			// non-strings can't be IRI references; keep them as values
			return map[string]interface{}{"@value": value}, nil
		}
		expanded, err := c.ExpandIri(strVal, true, coercion == "@vocab", nil, nil)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"@id": expanded}, nil
	}

	rval := map[string]interface{}{"@value": value}
	if coercion != "" && coercion != "@none" {
		rval["@type"] = coercion
	} else if _, isString := value.(string); isString {
		c.attachLanguageAndDirection(rval, td)
	}
	return rval, nil
}

// attachLanguageAndDirection adds the term's language/direction mapping to
// a string value object, falling back to the context defaults. An explicit
// null mapping suppresses the default.
func (c *Context) attachLanguageAndDirection(rval map[string]interface{}, td map[string]interface{}) {
	if langVal, found := td["@language"]; found {
		if langVal != nil {
			rval["@language"] = langVal.(string)
		}
	} else if defaultLang, found := c.entries["@language"]; found {
		rval["@language"] = defaultLang
	}

	if dirVal, found := td["@direction"]; found {
		if dirVal != nil {
			rval["@direction"] = dirVal.(string)
		}
	} else if defaultDir := c.entries["@direction"]; defaultDir != nil {
		rval["@direction"] = defaultDir
	}
}

// CompactValue performs value compaction on an object with @value or @id
// as the only (content) property.
// See https://www.w3.org/TR/2019/CR-json-ld11-api-20191212/#value-compaction
func (c *Context) CompactValue(activeProperty string, value map[string]interface{}) (interface{}, error) {
	td := c.GetTermDefinition(activeProperty)
	propType := td["@type"]

	language := c.GetLanguageMapping(activeProperty)
	direction := c.GetDirectionMapping(activeProperty)

	isIndexContainer := c.HasContainerMapping(activeProperty, "@index")
	_, hasIndex := value["@index"]
	// whether unwrapping to a bare scalar would lose an @index entry
	indexCompatible := !hasIndex || isIndexContainer

	idVal, hasID := value["@id"]
	typeVal, hasType := value["@type"]

	onlyIDOrIndex := true
	for key := range value {
		if key != "@id" && key != "@index" {
			onlyIDOrIndex = false
			break
		}
	}

	var result interface{} = value
	var err error

	switch {
	case hasID && onlyIDOrIndex:
		// a node reference: compact the id itself
		result, err = c.compactIDReference(idVal.(string), propType)
		if err != nil {
			return nil, err
		}

	case hasType && typeVal == propType:
		// the value's type matches the term's coercion: drop the wrapper
		result = value["@value"]

	case propType == "@none" || (hasType && typeVal != propType):
		// no shared datatype with the term: keep the expanded object

	default:
		if _, isString := value["@value"].(string); !isString && indexCompatible {
			// non-string values unwrap when no incompatible @index blocks it
			result = value["@value"]
		} else if value["@language"] == language && value["@direction"] == direction && indexCompatible {
			// language/direction match the term's defaults
			return value["@value"], nil
		}
	}

	result, err = c.compactValueTypes(value, result)
	if err != nil {
		return nil, err
	}
	return c.aliasValueKeys(result, hasIndex, isIndexContainer)
}

// compactIDReference compacts a bare {"@id": ...} per the property's
// coercion: to a plain string for @id/@vocab-typed properties, to an
// aliased object otherwise.
func (c *Context) compactIDReference(id string, propType interface{}) (interface{}, error) {
	switch propType {
	case "@id":
		return c.CompactIri(id, nil, false, false)
	case "@vocab":
		return c.CompactIri(id, nil, true, false)
	default:
		idAlias, err := c.CompactIri("@id", nil, true, false)
		if err != nil {
			return nil, err
		}
		compacted, err := c.CompactIri(id, nil, false, false)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{idAlias: compacted}, nil
	}
}

// compactValueTypes compacts any @type entries that survived value
// compaction (except on @json literals, whose @type stays untouched).
func (c *Context) compactValueTypes(original map[string]interface{}, result interface{}) (interface{}, error) {
	resultMap, isMap := result.(map[string]interface{})
	if !isMap || resultMap["@type"] == nil || original["@type"] == "@json" {
		return result, nil
	}

	// copy before rewriting: result may still be the caller's map
	compacted := make(map[string]interface{}, len(resultMap))
	for k, v := range resultMap {
		compacted[k] = v
	}

	var err error
	switch tt := compacted["@type"].(type) {
	case []interface{}:
		compactedTypes := make([]interface{}, len(tt))
		for i, t := range tt {
			if compactedTypes[i], err = c.CompactIri(t.(string), nil, true, false); err != nil {
				return nil, err
			}
		}
		compacted["@type"] = compactedTypes
	default:
		if compacted["@type"], err = c.CompactIri(compacted["@type"].(string), nil, true, false); err != nil {
			return nil, err
		}
	}
	return compacted, nil
}

// aliasValueKeys rewrites a surviving value object's keys through the
// context's keyword aliases, dropping @index when the term's @index
// container carries it instead.
func (c *Context) aliasValueKeys(result interface{}, hasIndex, isIndexContainer bool) (interface{}, error) {
	resultMap, isMap := result.(map[string]interface{})
	if !isMap {
		return result, nil
	}

	aliased := make(map[string]interface{}, len(resultMap))
	for k, v := range resultMap {
		if k == "@index" && !(hasIndex && !isIndexContainer) {
			continue
		}
		alias, err := c.CompactIri(k, nil, true, false)
		if err != nil {
			return nil, err
		}
		aliased[alias] = v
	}
	return aliased, nil
}
