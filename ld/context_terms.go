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
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// reservedTermPattern matches strings that look like keywords but
	// aren't: reserved for future use, to be warned about and ignored
	reservedTermPattern = regexp.MustCompile("^@[a-zA-Z]+$")
	// prefixTermPattern flags terms that can't take @prefix
	prefixTermPattern = regexp.MustCompile("[:/]")
	// iriShapedPattern flags terms that themselves look like IRIs and so
	// must round-trip through IRI expansion unchanged
	iriShapedPattern = regexp.MustCompile(`(?::[^:])|/`)
)

// defineTerm creates (or rejects) the definition for one term of a local
// context, per the Create Term Definition algorithm:
// http://www.w3.org/TR/json-ld-api/#create-term-definition
//
// The defined map carries the per-parse bookkeeping that detects cyclic
// term references: false means "being defined right now", true means done.
func (c *Context) defineTerm(localCtx map[string]interface{}, term string, defined map[string]bool, overrideProtected bool) error {
	if done, seen := defined[term]; seen {
		if done {
			return nil
		}
		return NewJsonLdError(CyclicIRIMapping, term)
	}
	defined[term] = false

	raw := localCtx[term]

	rawMap, isMap := raw.(map[string]interface{})
	idValue, hasID := rawMap["@id"]
	if raw == nil || (isMap && hasID && idValue == nil) {
		// a null definition reserves the term: it expands to nothing
		c.termDefs[term] = nil
		defined[term] = true
		return nil
	}

	simpleTerm := false
	if _, isString := raw.(string); isString {
		rawMap = map[string]interface{}{"@id": raw}
		simpleTerm = true
		isMap = true
	}
	if !isMap {
		return NewJsonLdError(InvalidTermDefinition, raw)
	}

	if IsKeyword(term) {
		if !c.redefinableKeyword(term, raw) {
			return NewJsonLdError(KeywordRedefinition, term)
		}
	} else if reservedTermPattern.MatchString(term) {
		log.WithField("term", term).Warn("terms beginning with '@' are reserved for future use and ignored")
		return nil
	}

	prev := c.termDefs[term]
	delete(c.termDefs, term)

	if err := c.validateTermSpec(rawMap); err != nil {
		return err
	}

	def := map[string]interface{}{"@reverse": false}
	termHasColon := strings.Index(term, ":") > 0

	if reverseValue, isReverse := rawMap["@reverse"]; isReverse {
		skip, err := c.applyReverseMapping(def, rawMap, reverseValue, localCtx, defined)
		if err != nil || skip {
			return err
		}
	} else if idValue, hasID := rawMap["@id"]; hasID {
		skip, err := c.applyExplicitID(def, idValue, term, termHasColon, simpleTerm, localCtx, defined)
		if err != nil || skip {
			return err
		}
	}

	if _, mapped := def["@id"]; !mapped {
		if err := c.deriveImplicitID(def, term, termHasColon, localCtx, defined, overrideProtected); err != nil {
			return err
		}
	}

	c.recordProtection(def, rawMap, term, defined)
	defined[term] = true

	if err := c.applyTypeCoercion(def, rawMap, term, localCtx, defined); err != nil {
		return err
	}
	if err := c.applyContainer(def, rawMap, term); err != nil {
		return err
	}
	if err := c.applyTermModifiers(def, rawMap, term); err != nil {
		return err
	}

	if id := def["@id"]; id == "@context" || id == "@preserve" {
		return NewJsonLdError(InvalidKeywordAlias, "@context and @preserve cannot be aliased")
	}
	if err := c.enforceProtection(def, prev, term, overrideProtected); err != nil {
		return err
	}

	c.termDefs[term] = def
	return nil
}

// redefinableKeyword reports whether redefining term is the one permitted
// keyword redefinition: @type in 1.1 mode, constrained to @container: @set
// and @protected.
func (c *Context) redefinableKeyword(term string, raw interface{}) bool {
	if term != "@type" || !c.processingMode(1.1) {
		return false
	}
	rawMap, isMap := raw.(map[string]interface{})
	if !isMap {
		return false
	}
	for k := range rawMap {
		if k != "@container" && k != "@protected" {
			return false
		}
	}
	return rawMap["@container"] == "@set" || rawMap["@container"] == nil
}

// validateTermSpec rejects definition entries outside the allowed keyword
// set for the active processing mode.
func (c *Context) validateTermSpec(spec map[string]interface{}) error {
	allowed := map[string]bool{"@container": true, "@id": true, "@language": true, "@reverse": true, "@type": true}
	if c.processingMode(1.1) {
		for _, k := range []string{"@context", "@direction", "@index", "@nest", "@prefix", "@protected"} {
			allowed[k] = true
		}
	}
	for k := range spec {
		if !allowed[k] {
			return NewJsonLdError(InvalidTermDefinition, fmt.Sprintf("a term definition must not contain %s", k))
		}
	}
	return nil
}

// applyReverseMapping resolves an @reverse definition. A true skip return
// means the value was reserved (@-prefixed non-keyword) and the whole term
// is dropped with a warning.
func (c *Context) applyReverseMapping(def, spec map[string]interface{}, reverseValue interface{},
	localCtx map[string]interface{}, defined map[string]bool) (bool, error) {

	if _, idPresent := spec["@id"]; idPresent {
		return false, NewJsonLdError(InvalidReverseProperty, "an @reverse term definition must not contain @id.")
	}
	if _, nestPresent := spec["@nest"]; nestPresent {
		return false, NewJsonLdError(InvalidReverseProperty, "an @reverse term definition must not contain @nest.")
	}
	reverseStr, isString := reverseValue.(string)
	if !isString {
		return false, NewJsonLdError(InvalidIRIMapping,
			fmt.Sprintf("expected string for @reverse value. got %v", reverseValue))
	}
	if !IsKeyword(reverseStr) && reservedTermPattern.MatchString(reverseStr) {
		log.WithField("value", reverseStr).Warn("values beginning with '@' are reserved for future use and ignored")
		return true, nil
	}
	id, err := c.ExpandIri(reverseStr, false, true, localCtx, defined)
	if err != nil {
		return false, err
	}
	if !IsAbsoluteIri(id) {
		return false, NewJsonLdError(InvalidIRIMapping, fmt.Sprintf(
			"@context @reverse value must be an absolute IRI or a blank node identifier, got %s", id))
	}

	def["@id"] = id
	def["@reverse"] = true
	return false, nil
}

// applyExplicitID resolves an explicit @id entry into the term's IRI
// mapping and decides whether the term may serve as a compact-IRI prefix.
func (c *Context) applyExplicitID(def map[string]interface{}, idValue interface{}, term string,
	termHasColon, simpleTerm bool, localCtx map[string]interface{}, defined map[string]bool) (bool, error) {

	idStr, isString := idValue.(string)
	if !isString {
		return false, NewJsonLdError(InvalidIRIMapping, "expected value of @id to be a string")
	}
	if term == idStr {
		return false, nil
	}

	if !IsKeyword(idStr) && reservedTermPattern.MatchString(idStr) {
		log.WithField("value", idStr).Warn("values beginning with '@' are reserved for future use and ignored")
		return true, nil
	}

	res, err := c.ExpandIri(idStr, false, true, localCtx, defined)
	if err != nil {
		return false, err
	}
	if !IsKeyword(res) && !IsAbsoluteIri(res) {
		return false, NewJsonLdError(InvalidIRIMapping,
			"resulting IRI mapping should be a keyword, absolute IRI or blank node")
	}
	if res == "@context" {
		return false, NewJsonLdError(InvalidKeywordAlias, "cannot alias @context")
	}
	def["@id"] = res

	// a term that itself looks like an IRI must expand to its own mapping
	if iriShapedPattern.MatchString(term) {
		defined[term] = true
		termIRI, err := c.ExpandIri(term, false, true, localCtx, defined)
		if err != nil {
			return false, err
		}
		if termIRI != res {
			return false, NewJsonLdError(InvalidIRIMapping,
				fmt.Sprintf("term %s expands to %s, not %s", term, termIRI, res))
		}
		delete(defined, term)
	}

	def["_prefix"] = !termHasColon && endsInGenDelim(res) && (simpleTerm || c.processingMode(1.0))
	return false, nil
}

// endsInGenDelim reports whether the IRI's last character lets it act as a
// compact-IRI prefix.
func endsInGenDelim(iri string) bool {
	if iri == "" {
		return false
	}
	switch iri[len(iri)-1] {
	case ':', '/', '?', '#', '[', ']', '@':
		return true
	}
	return false
}

// deriveImplicitID derives the IRI mapping for a term that carries no
// explicit @id: from its own prefix when the term is a compact IRI, from
// @vocab otherwise. @type alone may go unmapped (a container entry maps it
// later).
func (c *Context) deriveImplicitID(def map[string]interface{}, term string, termHasColon bool,
	localCtx map[string]interface{}, defined map[string]bool, overrideProtected bool) error {

	if termHasColon {
		colIndex := strings.Index(term, ":")
		prefix := term[:colIndex]
		if _, inLocal := localCtx[prefix]; inLocal {
			if err := c.defineTerm(localCtx, prefix, defined, overrideProtected); err != nil {
				return err
			}
		}
		if prefixDef := c.GetTermDefinition(prefix); prefixDef != nil {
			def["@id"] = prefixDef["@id"].(string) + term[colIndex+1:]
		} else {
			def["@id"] = term
		}
		return nil
	}

	if vocabValue, hasVocab := c.entries["@vocab"]; hasVocab {
		def["@id"] = vocabValue.(string) + term
		return nil
	}
	if term != "@type" {
		return NewJsonLdError(InvalidIRIMapping, "relative term definition without vocab mapping")
	}
	return nil
}

// recordProtection marks the term protected when its definition says so
// explicitly, or when the surrounding context's @protected default is on
// and the definition doesn't opt out.
func (c *Context) recordProtection(def, spec map[string]interface{}, term string, defined map[string]bool) {
	flag, present := spec["@protected"]
	explicitlyOn := present && flag.(bool)
	inheritedOn := defined["@protected"] && !(present && !flag.(bool))
	if explicitlyOn || inheritedOn {
		c.protectedTerms[term] = true
		def["protected"] = true
	}
}

// applyTypeCoercion resolves an @type entry into the term's type mapping;
// anything that isn't one of the keyword types must expand to an absolute,
// non-blank-node IRI.
func (c *Context) applyTypeCoercion(def, spec map[string]interface{}, term string,
	localCtx map[string]interface{}, defined map[string]bool) error {

	typeValue, present := spec["@type"]
	if !present {
		return nil
	}
	typeStr, isString := typeValue.(string)
	if !isString {
		return NewJsonLdError(InvalidTypeMapping, typeValue)
	}
	if (typeStr == "@json" || typeStr == "@none") && c.processingMode(1.0) {
		return NewJsonLdError(InvalidTypeMapping,
			fmt.Sprintf("unknown mapping for @type: %s on term %s", typeStr, term))
	}

	switch typeStr {
	case "@id", "@vocab", "@json", "@none":
	default:
		expanded, err := c.ExpandIri(typeStr, false, true, localCtx, defined)
		if err != nil {
			var ldErr *JsonLdError
			if ok := errors.As(err, &ldErr); !ok || ldErr.Code != InvalidIRIMapping {
				return err
			}
			return NewJsonLdError(InvalidTypeMapping, typeStr)
		}
		typeStr = expanded
		if !IsAbsoluteIri(typeStr) {
			return NewJsonLdError(InvalidTypeMapping, "an @context @type value must be an absolute IRI")
		}
		if strings.HasPrefix(typeStr, "_:") {
			return NewJsonLdError(InvalidTypeMapping,
				"an @context @type values must be an IRI, not a blank node identifier")
		}
	}

	def["@type"] = typeStr
	return nil
}

// applyContainer validates the @container entry against the combinations
// JSON-LD 1.1 allows and records it on the definition.
func (c *Context) applyContainer(def, spec map[string]interface{}, term string) error {
	containerVal, present := spec["@container"]
	if !present {
		return nil
	}

	container := Arrayify(containerVal)
	seen := make(map[string]bool, len(container))
	for _, entry := range container {
		seen[entry.(string)] = true
	}

	valid := map[string]bool{"@list": true, "@set": true, "@index": true, "@language": true}
	if c.processingMode(1.1) {
		valid["@graph"], valid["@id"], valid["@type"] = true, true, true

		if seen["@list"] && len(container) != 1 {
			return NewJsonLdError(InvalidContainerMapping,
				"@context @container with @list must have no other values")
		}
		if seen["@graph"] {
			for key := range seen {
				switch key {
				case "@graph", "@id", "@index", "@set":
				default:
					return NewJsonLdError(InvalidContainerMapping,
						"@context @container with @graph can only be combined with @id, @index and @set")
				}
			}
		} else {
			limit := 1
			if seen["@set"] {
				limit = 2
			}
			if len(container) > limit {
				return NewJsonLdError(InvalidContainerMapping, "@set can only be combined with one more type")
			}
		}
		if seen["@type"] {
			// a @type container implies @type: @id unless told otherwise
			if _, hasType := def["@type"]; !hasType {
				def["@type"] = "@id"
			}
			if def["@type"] != "@id" && def["@type"] != "@vocab" {
				return NewJsonLdError(InvalidTypeMapping, "container: @type requires @type to be @id or @vocab")
			}
		}
	} else {
		if _, isString := containerVal.(string); !isString {
			return NewJsonLdError(InvalidContainerMapping, "@container must be a string")
		}
	}

	for _, entry := range container {
		if !valid[entry.(string)] {
			allowed := make([]string, 0, len(valid))
			for k := range valid {
				allowed = append(allowed, k)
			}
			return NewJsonLdError(InvalidContainerMapping,
				fmt.Sprintf("@context @container value must be one of the following: %q", allowed))
		}
	}

	if seen["@set"] && seen["@list"] {
		return NewJsonLdError(InvalidContainerMapping, "@set not allowed with @list")
	}
	if def["@reverse"] == true {
		for key := range seen {
			if key != "@index" && key != "@set" {
				return NewJsonLdError(InvalidReverseProperty,
					"@context @container value for an @reverse type definition must be @index or @set")
			}
		}
	}

	def["@container"] = container
	if term == "@type" {
		def["@id"] = "@type"
	}
	return nil
}

// applyTermModifiers handles the remaining definition entries: @index,
// scoped @context, @language, @prefix, @direction, and @nest.
func (c *Context) applyTermModifiers(def, spec map[string]interface{}, term string) error {
	if indexVal, hasIndex := spec["@index"]; hasIndex {
		_, specHasContainer := spec["@container"]
		_, defHasContainer := def["@container"]
		if !specHasContainer || !defHasContainer {
			return NewJsonLdError(InvalidTermDefinition,
				fmt.Sprintf("@index without @index in @container: %s on term %s", indexVal, term))
		}
		indexStr, isString := indexVal.(string)
		if !isString || strings.HasPrefix(indexStr, "@") {
			return NewJsonLdError(InvalidTermDefinition,
				fmt.Sprintf("@index must expand to an IRI: %s on term %s", indexVal, term))
		}
		def["@index"] = indexVal
	}

	if ctxVal, hasCtx := spec["@context"]; hasCtx {
		// scoped context, applied when the term is encountered as a key
		// or type during expansion
		def["@context"] = ctxVal
	}

	_, hasType := spec["@type"]
	if languageVal, hasLanguage := spec["@language"]; hasLanguage && !hasType {
		switch lang := languageVal.(type) {
		case string:
			def["@language"] = strings.ToLower(lang)
		case nil:
			def["@language"] = nil
		default:
			return NewJsonLdError(InvalidLanguageMapping, "@language must be a string or null")
		}
	}

	if prefixVal, hasPrefix := spec["@prefix"]; hasPrefix {
		if prefixTermPattern.MatchString(term) {
			return NewJsonLdError(InvalidTermDefinition, "@prefix used on compact or relative IRI term")
		}
		flag, isBool := prefixVal.(bool)
		if !isBool {
			return NewJsonLdError(InvalidPrefixValue, "@context value for @prefix must be boolean")
		}
		if idVal, hasID := def["@id"]; hasID && IsKeyword(idVal) {
			return NewJsonLdError(InvalidTermDefinition, "keywords may not be used as prefixes")
		}
		def["_prefix"] = flag
	}

	if directionVal, hasDirection := spec["@direction"]; hasDirection {
		switch dir := directionVal.(type) {
		case string:
			def["@direction"] = strings.ToLower(dir)
		case nil:
			def["@direction"] = nil
		default:
			return NewJsonLdError(InvalidBaseDirection,
				fmt.Sprintf("direction must be null, 'ltr', or 'rtl', was %s on term %s", directionVal, term))
		}
	}

	if nestVal, hasNest := spec["@nest"]; hasNest {
		nest, isString := nestVal.(string)
		if !isString || (nest != "@nest" && nest[0] == '@') {
			return NewJsonLdError(InvalidNestValue,
				"@context @nest value must be a string which is not a keyword other than @nest")
		}
		def["@nest"] = nest
	}
	return nil
}

// enforceProtection rejects a redefinition of a protected term unless the
// caller may override protection or the new definition restates the old
// one exactly.
func (c *Context) enforceProtection(def map[string]interface{}, prev interface{}, term string, overrideProtected bool) error {
	if prev == nil || overrideProtected {
		return nil
	}
	prevMap := prev.(map[string]interface{})
	if prevMap["protected"] != true {
		return nil
	}
	// the replacement stays protected and must carry the same mappings
	c.protectedTerms[term] = true
	def["protected"] = true
	if !DeepCompare(prev, def, false) {
		return NewJsonLdError(ProtectedTermRedefinition, "invalid JSON-LD syntax; tried to redefine a protected term")
	}
	return nil
}
