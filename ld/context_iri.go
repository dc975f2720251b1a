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

// ExpandIri expands a string value to a full IRI.
//
// The string may be a term, a compact IRI, a relative IRI, or an absolute
// IRI; the associated absolute IRI is returned.
//
// value: the string value to expand.
// relative: true to resolve IRIs against the base IRI, false not to.
// vocab: true to concatenate after @vocab, false not to.
// localCtx: the local context being processed (only during context processing).
// defined: cycle-tracking map for term definitions (only during context processing).
func (c *Context) ExpandIri(value string, relative bool, vocab bool, localCtx map[string]interface{},
	defined map[string]bool) (string, error) {

	if IsKeyword(value) {
		return value, nil
	}
	if reservedTermPattern.MatchString(value) {
		// looks like a keyword but isn't one: reserved, expands to nothing
		return "", nil
	}

	// a colliding term in the local context must be resolved before the
	// lookups below can see it
	if err := c.ensureLocalTerm(value, localCtx, defined); err != nil {
		return "", err
	}

	if vocab {
		if def, defFound := c.termDefs[value]; defFound {
			defMap, isMap := def.(map[string]interface{})
			if !isMap || defMap == nil {
				// reserved (null) definition: the term expands to nothing
				return "", nil
			}
			return defMap["@id"].(string), nil
		}
	}

	if prefix, suffix, isCompact := splitCompactIri(value); isCompact {
		// blank node labels and scheme-relative forms pass through whole
		if prefix == "_" || strings.HasPrefix(suffix, "//") {
			return value, nil
		}
		if err := c.ensureLocalTerm(prefix, localCtx, defined); err != nil {
			return "", err
		}
		if prefixDef := c.GetTermDefinition(prefix); prefixDef != nil &&
			prefixDef["@id"] != "" && prefixDef["_prefix"] == true {
			return prefixDef["@id"].(string) + suffix, nil
		}
		if IsAbsoluteIri(value) {
			return value, nil
		}
	}

	if vocabValue, hasVocab := c.entries["@vocab"]; vocab && hasVocab {
		return vocabValue.(string) + value, nil
	}
	if relative {
		base, _ := c.entries["@base"].(string)
		return Resolve(base, value), nil
	}
	if localCtx != nil && IsRelativeIri(value) {
		return "", NewJsonLdError(InvalidIRIMapping, "not an absolute IRI: "+value)
	}
	return value, nil
}

// ensureLocalTerm defines value from the local context being processed, if
// it names a term there that hasn't been defined yet.
func (c *Context) ensureLocalTerm(value string, localCtx map[string]interface{}, defined map[string]bool) error {
	if localCtx == nil {
		return nil
	}
	if _, present := localCtx[value]; present && !defined[value] {
		return c.defineTerm(localCtx, value, defined, false)
	}
	return nil
}

// splitCompactIri splits value at its first colon, provided the colon
// isn't the leading character.
func splitCompactIri(value string) (prefix, suffix string, ok bool) {
	idx := strings.Index(value, ":")
	if idx <= 0 {
		return "", "", false
	}
	return value[:idx], value[idx+1:], true
}

// CompactIri compacts an IRI or keyword into a term or compact IRI if it
// can be. If the IRI has an associated value it may be passed.
//
// iri: the IRI to compact.
// value: the value to check or nil.
// relativeToVocab: true to compact using @vocab if available, false not to.
// reverse: true if a reverse property is being compacted, false if not.
//
// Returns the compacted term, prefix, keyword alias, or original IRI.
func (c *Context) CompactIri(iri string, value interface{}, relativeToVocab bool, reverse bool) (string, error) {
	if iri == "" {
		return "", nil
	}

	inverse := c.GetInverse()

	if IsKeyword(iri) {
		if alias := keywordAlias(inverse, iri); alias != "" {
			return alias, nil
		}
		relativeToVocab = true
	}

	if relativeToVocab {
		if _, indexed := inverse[iri]; indexed {
			term, err := c.selectCompactionTerm(iri, value, reverse)
			if err != nil {
				return "", err
			}
			if term != "" {
				return term, nil
			}
		}
		if suffix, usable := c.vocabSuffix(iri); usable {
			return suffix, nil
		}
	}

	if curie := c.bestCurie(iri, value); curie != "" {
		return curie, nil
	}
	if err := c.checkPrefixConfusion(iri); err != nil {
		return "", err
	}

	if !relativeToVocab {
		if c.settings != nil && !c.settings.CompactToRelative {
			return iri, nil
		}
		return RemoveBase(c.entries["@base"], iri), nil
	}
	return iri, nil
}

// keywordAlias looks up a user-defined alias for a keyword in the inverse
// context (filed under the @none container's @type/@none slot).
func keywordAlias(inverse map[string]interface{}, keyword string) string {
	containerMap, found := inverse[keyword].(map[string]interface{})
	if !found {
		return ""
	}
	typeLanguageMap, found := containerMap["@none"].(map[string]interface{})
	if !found {
		return ""
	}
	typeMap, found := typeLanguageMap["@type"].(map[string]interface{})
	if !found {
		return ""
	}
	alias, _ := typeMap["@none"].(string)
	return alias
}

// selectCompactionTerm ranks the containers and type/language values that
// could express value, then asks the inverse context for the best term.
func (c *Context) selectCompactionTerm(iri string, value interface{}, reverse bool) (string, error) {
	valueMap, isObject := value.(map[string]interface{})

	containers := make([]string, 0)

	if isObject {
		_, hasIndex := valueMap["@index"]
		_, hasGraph := valueMap["@graph"]
		if hasIndex && !hasGraph {
			// an indexed (non-graph) value prefers an index container outright
			containers = append(containers, "@index", "@index@set")
		}
		// a @preserve wrapper (framing leftover) is classified by its payload
		if preserved, hasPreserve := valueMap["@preserve"]; hasPreserve {
			value = preserved.([]interface{})[0]
			valueMap, isObject = value.(map[string]interface{})
		}
	}

	if IsGraph(value) {
		containers = appendGraphContainers(containers, valueMap)
	} else if isObject && !IsValue(value) {
		containers = append(containers, "@id", "@id@set", "@type", "@set@type")
	}

	typeLanguage := "@language"
	typeLanguageValue := "@null"

	listVal, hasList := valueMap["@list"]

	switch {
	case reverse:
		typeLanguage = "@type"
		typeLanguageValue = "@reverse"
		containers = append(containers, "@set")

	case hasList:
		if _, hasIndex := valueMap["@index"]; !hasIndex {
			containers = append(containers, "@list")
		}
		typeLanguage, typeLanguageValue = classifyList(listVal.([]interface{}), c.selectionDefaultLanguage())

	default:
		if IsValue(value) {
			langVal, hasLang := valueMap["@language"]
			dirVal, hasDir := valueMap["@direction"]
			_, hasIndex := valueMap["@index"]
			if hasLang && !hasIndex {
				containers = append(containers, "@language", "@language@set")
				if hasDir {
					typeLanguageValue = fmt.Sprintf("%s_%s", langVal, dirVal)
				} else {
					typeLanguageValue = langVal.(string)
				}
			} else if hasDir && !hasIndex {
				typeLanguageValue = fmt.Sprintf("_%s", dirVal)
			} else if typeVal, hasType := valueMap["@type"]; hasType {
				typeLanguage = "@type"
				typeLanguageValue = typeVal.(string)
			}
		} else {
			typeLanguage = "@type"
			typeLanguageValue = "@id"
		}
		// whatever the classification, @set is always acceptable
		containers = append(containers, "@set")
	}

	containers = append(containers, "@none")

	// an index map may hold values without their own @index under @none
	if isObject {
		if _, hasIndex := valueMap["@index"]; !hasIndex {
			containers = append(containers, "@index", "@index@set")
		}
	}
	// a bare @value object can still go into a language map
	if IsValue(value) && len(valueMap) == 1 {
		containers = append(containers, "@language", "@language@set")
	}

	if typeLanguageValue == "" {
		typeLanguageValue = "@null"
	}

	preferredValues := make([]string, 0)
	idVal, hasID := valueMap["@id"]
	if (typeLanguageValue == "@reverse" || typeLanguageValue == "@id") && isObject && hasID {
		if typeLanguageValue == "@reverse" {
			preferredValues = append(preferredValues, "@reverse")
		}
		// prefer @vocab when compacting the id round-trips to itself
		compacted, err := c.CompactIri(idVal.(string), nil, true, false)
		if err != nil {
			return "", err
		}
		if def := c.GetTermDefinition(compacted); def != nil && def["@id"] == idVal {
			preferredValues = append(preferredValues, "@vocab", "@id", "@none")
		} else {
			preferredValues = append(preferredValues, "@id", "@vocab", "@none")
		}
	} else {
		if lv, containsList := valueMap["@list"]; containsList && lv == nil {
			typeLanguage = "@any"
		}
		preferredValues = append(preferredValues, typeLanguageValue, "@none")
	}
	preferredValues = append(preferredValues, "@any")

	// when a preferred value carries a direction suffix, also accept terms
	// defined with just that direction
	for _, pv := range preferredValues {
		if idx := strings.LastIndex(pv, "_"); idx != -1 {
			preferredValues = append(preferredValues, pv[idx:])
		}
	}

	return c.SelectTerm(iri, containers, typeLanguage, preferredValues), nil
}

// selectionDefaultLanguage is the language+direction key terms without
// their own language mapping compete under during term selection.
func (c *Context) selectionDefaultLanguage() string {
	langVal, hasLang := c.entries["@language"]
	if dir, hasDir := c.entries["@direction"]; hasDir {
		return fmt.Sprintf("%s_%s", langVal, dir)
	}
	if hasLang {
		return langVal.(string)
	}
	return "@none"
}

// appendGraphContainers ranks graph containers for a graph-object value:
// those matching the value's own @index/@id first, generic graph and set
// containers next, the rest last.
func appendGraphContainers(containers []string, valueMap map[string]interface{}) []string {
	_, hasIndex := valueMap["@index"]
	_, hasID := valueMap["@id"]

	if hasIndex {
		containers = append(containers, "@graph@index", "@graph@index@set", "@index", "@index@set")
	}
	if hasID {
		containers = append(containers, "@graph@id", "@graph@id@set")
	}
	containers = append(containers, "@graph", "@graph@set", "@set")
	if !hasIndex {
		containers = append(containers, "@graph@index", "@graph@index@set", "@index", "@index@set")
	}
	if !hasID {
		containers = append(containers, "@graph@id", "@graph@id@set")
	}
	return containers
}

// classifyList derives the common @type or language+direction shared by
// every member of a @list value, collapsing to @none as soon as members
// disagree.
func classifyList(list []interface{}, defaultLanguage string) (typeLanguage, typeLanguageValue string) {
	commonType := ""
	commonLanguage := ""
	if len(list) == 0 {
		commonLanguage = defaultLanguage
		commonType = "@id"
	}

	for _, item := range list {
		itemLanguage, itemType := classifyListItem(item)

		if commonLanguage == "" {
			commonLanguage = itemLanguage
		} else if commonLanguage != itemLanguage && IsValue(item) {
			commonLanguage = "@none"
		}
		if commonType == "" {
			commonType = itemType
		} else if commonType != itemType {
			commonType = "@none"
		}
		// nothing left to learn once both have collapsed
		if commonLanguage == "@none" && commonType == "@none" {
			break
		}
	}

	if commonLanguage == "" {
		commonLanguage = "@none"
	}
	if commonType == "" {
		commonType = "@none"
	}
	if commonType != "@none" {
		return "@type", commonType
	}
	return "@language", commonLanguage
}

// classifyListItem buckets one list member by its language+direction or
// its type; language wins over type for value objects.
func classifyListItem(item interface{}) (itemLanguage, itemType string) {
	if !IsValue(item) {
		return "@none", "@id"
	}
	itemMap := item.(map[string]interface{})
	dirVal, hasDir := itemMap["@direction"]
	langVal, hasLang := itemMap["@language"]
	switch {
	case hasDir && hasLang:
		return fmt.Sprintf("%s_%s", langVal, dirVal), "@none"
	case hasDir:
		return fmt.Sprintf("_%s", dirVal), "@none"
	case hasLang:
		return langVal.(string), "@none"
	default:
		if typeVal, hasType := itemMap["@type"]; hasType {
			return "@none", typeVal.(string)
		}
		return "@null", "@none"
	}
}

// vocabSuffix tries to compact iri as a suffix of the active @vocab,
// which only works when the remainder isn't itself a defined term.
func (c *Context) vocabSuffix(iri string) (string, bool) {
	vocabVal, hasVocab := c.entries["@vocab"]
	if !hasVocab {
		return "", false
	}
	vocab := vocabVal.(string)
	if !strings.HasPrefix(iri, vocab) || iri == vocab {
		return "", false
	}
	suffix := iri[len(vocab):]
	if _, taken := c.termDefs[suffix]; taken {
		return "", false
	}
	return suffix, true
}

// bestCurie scans the term definitions for prefix-enabled terms whose IRI
// mapping prefixes iri, returning the shortest-least candidate that no
// conflicting term definition already claims.
func (c *Context) bestCurie(iri string, value interface{}) string {
	best := ""
	for term, defVal := range c.termDefs {
		def, isMap := defVal.(map[string]interface{})
		if !isMap || strings.Contains(term, ":") {
			continue
		}
		idStr, _ := def["@id"].(string)
		if idStr == "" || iri == idStr || !strings.HasPrefix(iri, idStr) || def["_prefix"] != true {
			continue
		}

		candidate := term + ":" + iri[len(idStr):]
		if best != "" && !CompareShortestLeast(candidate, best) {
			continue
		}
		if existing, taken := c.termDefs[candidate]; taken {
			existingMap, _ := existing.(map[string]interface{})
			if existingMap == nil || existingMap["@id"] != iri || value != nil {
				continue
			}
		}
		best = candidate
	}
	return best
}

// checkPrefixConfusion rejects an IRI that would be misread as a compact
// IRI because a prefix-enabled term matches its scheme.
func (c *Context) checkPrefixConfusion(iri string) error {
	for term, defVal := range c.termDefs {
		def, isMap := defVal.(map[string]interface{})
		if !isMap {
			continue
		}
		if def["_prefix"] == true && strings.HasPrefix(iri, term+":") {
			return NewJsonLdError(IRIConfusedWithPrefix,
				fmt.Sprintf("Absolute IRI %s confused with prefix %s", iri, term))
		}
	}
	return nil
}
