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

// contextDirectives are the entries of a local context that configure the
// context itself rather than define a term.
var contextDirectives = map[string]bool{
	"@base":      true,
	"@direction": true,
	"@import":    true,
	"@language":  true,
	"@propagate": true,
	"@protected": true,
	"@version":   true,
	"@vocab":     true,
}

// parseState carries the flags the Context Processing Algorithm threads
// through its recursion: the chain of remote context URLs already being
// dereferenced (for cycle detection), whether the current input came from
// a remote context, and the propagation/protection switches.
type parseState struct {
	visited           []string
	remoteContext     bool
	propagate         bool
	protectedDefault  bool
	overrideProtected bool
}

// Parse processes a local context, retrieving any URLs as necessary, and
// returns a new active context.
// See http://www.w3.org/TR/json-ld-api/#context-processing-algorithms
func (c *Context) Parse(localContext interface{}) (*Context, error) {
	return c.parse(localContext, parseState{propagate: true})
}

func (c *Context) parse(localContext interface{}, st parseState) (*Context, error) {
	entries := Arrayify(localContext)
	if len(entries) == 0 {
		return c, nil
	}

	// an explicit @propagate on the first entry overrides the caller's
	// wish; its type is validated later, in applyContextMap
	if first, isMap := entries[0].(map[string]interface{}); isMap {
		if flag, isBool := first["@propagate"].(bool); isBool {
			st.propagate = flag
		}
	}

	result := CopyContext(c)
	if !st.propagate && result.parent == nil {
		result.parent = c
	}

	for _, entry := range entries {
		switch ctx := entry.(type) {
		case nil:
			// a null entry resets the chain to an empty context
			fresh, err := result.nullify(c, st)
			if err != nil {
				return nil, err
			}
			result = fresh
		case *Context:
			result = ctx
		case string:
			// a string entry is a remote context reference
			next, err := result.parseRemote(c, ctx, st)
			if err != nil {
				return nil, err
			}
			result = next
		case map[string]interface{}:
			if err := result.applyContextMap(c, ctx, st); err != nil {
				return nil, err
			}
		default:
			return nil, NewJsonLdError(InvalidLocalContext, entry)
		}
	}

	return result, nil
}

// nullify replaces the active context with a fresh one, which protected
// terms forbid unless the caller is allowed to override them.
func (result *Context) nullify(origin *Context, st parseState) (*Context, error) {
	if !st.overrideProtected && len(result.protectedTerms) != 0 {
		return nil, NewJsonLdError(InvalidContextNullification,
			"tried to nullify a context with protected terms outside of a term definition.")
	}
	fresh := NewContext(nil, origin.settings)
	if !st.propagate {
		fresh.parent = result
	}
	return fresh, nil
}

// parseRemote dereferences a remote context reference and folds its
// @context value into result, guarding against a context that
// (transitively) includes itself.
func (result *Context) parseRemote(origin *Context, ref string, st parseState) (*Context, error) {
	uri := Resolve(result.entries["@base"].(string), ref)
	for _, seen := range st.visited {
		if seen == uri {
			return nil, NewJsonLdError(RecursiveContextInclusion, uri)
		}
	}

	remote, err := fetchContext(origin.settings.DocumentLoader, uri)
	if err != nil {
		return nil, err
	}

	next := st
	next.visited = append(append([]string(nil), st.visited...), uri)
	next.remoteContext = true
	next.propagate = true
	next.protectedDefault = false
	return result.parse(remote, next)
}

// fetchContext dereferences a context URL and returns the value of the
// mandatory top-level @context entry of the document behind it.
func fetchContext(loader DocumentLoader, uri string) (interface{}, error) {
	rd, err := loader.LoadDocument(uri)
	if err != nil {
		return nil, NewJsonLdError(LoadingRemoteContextFailed,
			fmt.Errorf("dereferencing a URL did not result in a valid JSON-LD context (%s): %w", uri, err))
	}
	doc, isMap := rd.Document.(map[string]interface{})
	ctxVal, hasCtx := doc["@context"]
	if !isMap || !hasCtx {
		return nil, NewJsonLdError(InvalidRemoteContext, ctxVal)
	}
	return ctxVal, nil
}

// applyContextMap folds one context object into result: first the
// directives (@version, @import, @base, @language, @direction, @propagate,
// @vocab, @protected), then a term definition for every remaining entry.
func (result *Context) applyContextMap(origin *Context, contextMap map[string]interface{}, st parseState) error {
	if nested := contextMap["@context"]; nested != nil {
		nestedMap, isMap := nested.(map[string]interface{})
		if !isMap {
			return NewJsonLdError(InvalidLocalContext, nested)
		}
		contextMap = nestedMap
	}

	if err := result.applyVersion(origin, contextMap); err != nil {
		return err
	}

	merged, err := result.applyImport(origin, contextMap)
	if err != nil {
		return err
	}
	contextMap = merged

	if err := result.applyBase(contextMap, st.remoteContext); err != nil {
		return err
	}
	if err := result.applyLanguage(contextMap); err != nil {
		return err
	}
	if err := result.applyDirection(contextMap); err != nil {
		return err
	}

	// defined tracks which terms already have a definition (or are being
	// defined right now), both for cycle detection and for the @protected
	// default below
	defined := make(map[string]bool)

	if err := checkPropagate(origin, contextMap, defined); err != nil {
		return err
	}
	if err := result.applyVocab(origin, contextMap); err != nil {
		return err
	}

	if flag, found := contextMap["@protected"]; found {
		defined["@protected"] = flag.(bool)
	} else if st.protectedDefault {
		defined["@protected"] = true
	}

	for key := range contextMap {
		if contextDirectives[key] {
			continue
		}
		if err := result.defineTerm(contextMap, key, defined, st.overrideProtected); err != nil {
			return err
		}
	}
	return nil
}

// applyVersion validates @version against the processing mode and records
// the mode the rest of this context will be interpreted under.
func (result *Context) applyVersion(origin *Context, contextMap map[string]interface{}) error {
	pm, hasMode := origin.entries["processingMode"]

	versionValue, hasVersion := contextMap["@version"]
	if !hasVersion {
		if hasMode {
			result.entries["processingMode"] = pm
		} else {
			result.entries["processingMode"] = JsonLd_1_0
		}
		return nil
	}

	if versionValue != 1.1 {
		return NewJsonLdError(InvalidVersionValue, fmt.Sprintf("unsupported JSON-LD version: %s", versionValue))
	}
	if hasMode && pm.(string) == JsonLd_1_0 {
		return NewJsonLdError(ProcessingModeConflict,
			fmt.Sprintf("@version: %v not compatible with %s", versionValue, pm))
	}
	result.entries["processingMode"] = JsonLd_1_1
	result.entries["@version"] = versionValue
	return nil
}

// applyImport dereferences an @import entry and merges the importing
// context's own entries over the imported ones. The imported context may
// not itself use @import.
func (result *Context) applyImport(origin *Context, contextMap map[string]interface{}) (map[string]interface{}, error) {
	importValue, found := contextMap["@import"]
	if !found {
		return contextMap, nil
	}
	if result.processingMode(1.0) {
		return nil, NewJsonLdError(InvalidContextEntry, "@import may only be used in 1.1 mode")
	}
	importRef, isString := importValue.(string)
	if !isString {
		return nil, NewJsonLdError(InvalidImportValue, "@import must be a string")
	}

	imported, err := fetchContext(origin.settings.DocumentLoader,
		Resolve(result.entries["@base"].(string), importRef))
	if err != nil {
		return nil, err
	}
	importedMap, isMap := imported.(map[string]interface{})
	if !isMap {
		return nil, NewJsonLdError(InvalidRemoteContext, fmt.Sprintf("%s must be an object", importRef))
	}
	if _, nested := importedMap["@import"]; nested {
		return nil, NewJsonLdError(InvalidContextEntry, fmt.Sprintf("%s must not include @import entry", importRef))
	}

	for k, v := range contextMap {
		importedMap[k] = v
	}
	return importedMap, nil
}

// applyBase updates the active base IRI. @base inside a remote context is
// ignored; a null @base clears the base entirely.
func (result *Context) applyBase(contextMap map[string]interface{}, parsingRemote bool) error {
	baseValue, found := contextMap["@base"]
	if parsingRemote || !found {
		return nil
	}
	if baseValue == nil {
		delete(result.entries, "@base")
		return nil
	}
	baseString, isString := baseValue.(string)
	if !isString {
		return NewJsonLdError(InvalidBaseIRI, "the value of @base in a @context must be a string or null")
	}
	if IsAbsoluteIri(baseString) {
		result.entries["@base"] = baseValue
		return nil
	}
	current := result.entries["@base"].(string)
	if !IsAbsoluteIri(current) {
		return NewJsonLdError(InvalidBaseIRI, current)
	}
	result.entries["@base"] = Resolve(current, baseString)
	return nil
}

// applyLanguage updates the default language; tags are carried lowercase.
func (result *Context) applyLanguage(contextMap map[string]interface{}) error {
	languageValue, found := contextMap["@language"]
	if !found {
		return nil
	}
	if languageValue == nil {
		delete(result.entries, "@language")
		return nil
	}
	languageString, isString := languageValue.(string)
	if !isString {
		return NewJsonLdError(InvalidDefaultLanguage, languageValue)
	}
	result.entries["@language"] = strings.ToLower(languageString)
	return nil
}

// applyDirection updates the default base direction ("ltr" or "rtl").
func (result *Context) applyDirection(contextMap map[string]interface{}) error {
	directionValue, found := contextMap["@direction"]
	if !found {
		return nil
	}
	if directionValue == nil {
		delete(result.entries, "@direction")
		return nil
	}
	directionString, isString := directionValue.(string)
	if !isString || (directionString != "rtl" && directionString != "ltr") {
		return NewJsonLdError(InvalidBaseDirection, directionValue)
	}
	result.entries["@direction"] = strings.ToLower(directionString)
	return nil
}

// checkPropagate validates an @propagate entry (its value was already
// extracted by parse) and records it in the defined map so no term
// definition is attempted for it.
func checkPropagate(origin *Context, contextMap map[string]interface{}, defined map[string]bool) error {
	propagateValue, found := contextMap["@propagate"]
	if !found {
		return nil
	}
	if origin.processingMode(1.0) {
		return NewJsonLdError(InvalidContextEntry,
			fmt.Sprintf("@propagate not compatible with %s", origin.entries["processingMode"]))
	}
	if _, isBool := propagateValue.(bool); !isBool {
		return NewJsonLdError(InvalidPropagateValue, "@propagate value must be a boolean")
	}
	defined["@propagate"] = true
	return nil
}

// applyVocab updates the vocabulary mapping, expanding a relative value
// against the context itself (1.1 allows relative @vocab).
func (result *Context) applyVocab(origin *Context, contextMap map[string]interface{}) error {
	vocabValue, found := contextMap["@vocab"]
	if !found {
		return nil
	}
	if vocabValue == nil {
		delete(result.entries, "@vocab")
		return nil
	}
	vocabString, isString := vocabValue.(string)
	if !isString {
		return NewJsonLdError(InvalidVocabMapping, "@vocab must be a string or null")
	}
	if !IsAbsoluteIri(vocabString) && origin.processingMode(1.0) {
		return NewJsonLdError(InvalidVocabMapping, "@vocab must be an absolute IRI in 1.0 mode")
	}
	expanded, err := result.ExpandIri(vocabString, true, true, nil, nil)
	if err != nil {
		return err
	}
	result.entries["@vocab"] = expanded
	return nil
}
