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

// GetInverse builds (once, lazily) the inverse context used by the
// compaction algorithm: a nested index keyed by IRI, then container
// signature, then @type/@language/@any, then the concrete type, language
// tag, or marker, resolving to the term that best expresses that shape.
// See http://www.w3.org/TR/json-ld-api/#inverse-context-creation
func (c *Context) GetInverse() map[string]interface{} {
	if c.inverseCache != nil {
		return c.inverseCache
	}
	c.inverseCache = make(map[string]interface{})

	defaultLanguage := "@none"
	if langVal, hasLang := c.entries["@language"]; hasLang {
		defaultLanguage = langVal.(string)
	}

	// visit terms shortest-first, then lexicographically, so the earliest
	// (preferred) term claims each slot and later ones can't displace it
	terms := GetKeys(c.termDefs)
	sort.Sort(ShortestLeast(terms))

	for _, term := range terms {
		def, isMap := c.termDefs[term].(map[string]interface{})
		if !isMap || def == nil {
			continue
		}
		c.indexTerm(term, def, defaultLanguage)
	}

	return c.inverseCache
}

// indexTerm files one term definition into the inverse index.
func (c *Context) indexTerm(term string, def map[string]interface{}, defaultLanguage string) {
	containerKey := "@none"
	if containerVal, hasContainer := def["@container"]; hasContainer {
		parts := make([]string, 0)
		for _, entry := range containerVal.([]interface{}) {
			parts = append(parts, entry.(string))
		}
		sort.Strings(parts)
		containerKey = strings.Join(parts, "")
	}

	iri, hasIRI := def["@id"].(string)
	if !hasIRI {
		// a redefined @type without a container carries no IRI mapping
		return
	}

	containerMap, found := c.inverseCache[iri].(map[string]interface{})
	if !found {
		containerMap = make(map[string]interface{})
		c.inverseCache[iri] = containerMap
	}

	typeLanguageMap, found := containerMap[containerKey].(map[string]interface{})
	if !found {
		typeLanguageMap = map[string]interface{}{
			"@language": make(map[string]interface{}),
			"@type":     make(map[string]interface{}),
			"@any":      map[string]interface{}{"@none": term},
		}
		containerMap[containerKey] = typeLanguageMap
	}

	languageMap := typeLanguageMap["@language"].(map[string]interface{})
	typeMap := typeLanguageMap["@type"].(map[string]interface{})
	anyMap := typeLanguageMap["@any"].(map[string]interface{})

	claim := func(m map[string]interface{}, key string) {
		if _, taken := m[key]; !taken {
			m[key] = term
		}
	}

	langVal, hasLang := def["@language"]
	dirVal, hasDir := def["@direction"]
	typeVal, hasType := def["@type"]

	switch {
	case def["@reverse"] == true:
		claim(typeMap, "@reverse")

	case hasType && typeVal == "@none":
		// a @none coercion matches anything
		claim(typeMap, "@any")
		claim(languageMap, "@any")
		claim(anyMap, "@any")

	case hasType:
		claim(typeMap, typeVal.(string))

	case hasLang && hasDir:
		key := "@null"
		switch {
		case langVal != nil && dirVal != nil:
			key = fmt.Sprintf("%s_%s", langVal.(string), dirVal.(string))
		case langVal != nil:
			key = langVal.(string)
		case dirVal != nil:
			key = "_" + dirVal.(string)
		}
		claim(languageMap, key)

	case hasLang:
		key := "@null"
		if langVal != nil {
			key = langVal.(string)
		}
		claim(languageMap, key)

	case hasDir:
		key := "@none"
		if dirVal != nil {
			key = "_" + dirVal.(string)
		}
		claim(languageMap, key)

	default:
		if defaultDir, hasDefaultDir := c.entries["@direction"]; hasDefaultDir {
			claim(languageMap, "_"+defaultDir.(string))
		} else {
			claim(languageMap, defaultLanguage)
		}
		claim(languageMap, "@none")
		claim(typeMap, "@none")
	}
}

// SelectTerm picks the preferred compaction term from the inverse context
// entry for iri, trying each candidate container in order and, within it,
// each preferred type/language value.
// See http://www.w3.org/TR/json-ld-api/#term-selection
func (c *Context) SelectTerm(iri string, containers []string, typeLanguage string, preferredValues []string) string {
	containerMap := c.GetInverse()[iri].(map[string]interface{})

	for _, container := range containers {
		typeLanguageMap, found := containerMap[container].(map[string]interface{})
		if !found {
			continue
		}
		valueMap := typeLanguageMap[typeLanguage].(map[string]interface{})
		for _, preferred := range preferredValues {
			if term, found := valueMap[preferred]; found {
				return term.(string)
			}
		}
	}
	return ""
}
