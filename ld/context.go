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

// Context holds the active JSON-LD context that a document is being
// processed against: the raw top-level entries (@base, @vocab, @language,
// ...), the resolved term definitions built up from one or more local
// contexts, a lazily-built inverse index used during compaction, and the
// set of terms a caller has marked @protected.
//
// A Context forms a linked chain rather than a single mutable object:
// parsing a new local context never mutates the context it's parsed
// against, it clones it (see CopyContext) and returns a new value. The
// chain is walked backwards via parent when a context needs to revert a
// type-scoped context layered on top of it.
type Context struct {
	entries        map[string]interface{}
	settings       *JsonLdOptions
	termDefs       map[string]interface{}
	inverseCache   map[string]interface{}
	protectedTerms map[string]bool
	parent         *Context
}

// NewContext builds an active context seeded with the given top-level
// entries and options. A nil options value falls back to the library
// defaults.
func NewContext(seed map[string]interface{}, options *JsonLdOptions) *Context {
	if options == nil {
		options = NewJsonLdOptions("")
	}

	ctx := &Context{
		entries:        make(map[string]interface{}),
		settings:       options,
		termDefs:       make(map[string]interface{}),
		protectedTerms: make(map[string]bool),
	}

	ctx.entries["@base"] = options.Base

	for k, v := range seed {
		ctx.entries[k] = v
	}

	ctx.entries["processingMode"] = options.ProcessingMode

	return ctx
}

// CopyContext clones a context's own state (top-level entries, term
// definitions, protected-term set, and parent chain). The inverse index is
// intentionally not copied since it's cheap to regenerate and would
// otherwise go stale the moment a term definition changes.
func CopyContext(src *Context) *Context {
	clone := NewContext(src.entries, src.settings)

	for k, v := range src.termDefs {
		clone.termDefs[k] = v
	}
	for k, v := range src.protectedTerms {
		clone.protectedTerms[k] = v
	}
	if src.parent != nil {
		clone.parent = CopyContext(src.parent)
	}

	return clone
}

// AsMap exposes the context's internal state as a plain map, mainly for
// debugging and diagnostics rather than document production.
func (c *Context) AsMap() map[string]interface{} {
	res := map[string]interface{}{
		"values":          c.entries,
		"termDefinitions": c.termDefs,
		"inverse":         c.inverseCache,
		"protected":       c.protectedTerms,
	}
	if c.parent != nil {
		res["previousContext"] = c.parent.AsMap()
	}
	return res
}

// processingMode returns true if the given version is compatible with the
// current processing mode.
func (c *Context) processingMode(version float64) bool {
	mode, hasMode := c.entries["processingMode"]
	if version >= 1.1 {
		return hasMode && mode.(string) >= fmt.Sprintf("json-ld-%v", version)
	}
	return !hasMode || mode.(string) == JsonLd_1_0
}

// RevertToPreviousContext reverts any type-scoped context in this active
// context to the previous context.
func (c *Context) RevertToPreviousContext() *Context {
	if c.parent == nil {
		return c
	}
	return CopyContext(c.parent)
}

// GetTermDefinition returns the term definition for the given key, or nil
// when the term is undefined or explicitly reserved (null definition).
func (c *Context) GetTermDefinition(key string) map[string]interface{} {
	def, _ := c.termDefs[key].(map[string]interface{})
	return def
}

// GetContainer retrieves the container mapping for the given property.
func (c *Context) GetContainer(property string) []interface{} {
	if def := c.GetTermDefinition(property); def != nil {
		if container, hasContainer := def["@container"]; hasContainer {
			return container.([]interface{})
		}
	}
	return []interface{}{}
}

// HasContainerMapping reports whether the given property's container
// mapping includes val.
func (c *Context) HasContainerMapping(property string, val string) bool {
	return inArray(val, c.GetContainer(property))
}

// IsReverseProperty returns true if the given property is a reverse property.
func (c *Context) IsReverseProperty(property string) bool {
	def := c.GetTermDefinition(property)
	return def != nil && def["@reverse"] == true
}

// GetTypeMapping returns the type mapping for the given property.
func (c *Context) GetTypeMapping(property string) string {
	if def := c.GetTermDefinition(property); def != nil {
		if val, found := def["@type"]; found && val != nil {
			return val.(string)
		}
	}
	if defaultType, found := c.entries["@type"]; found {
		return defaultType.(string)
	}
	return ""
}

// GetLanguageMapping returns the language mapping for the given property,
// falling back to the context's default language.
func (c *Context) GetLanguageMapping(property string) interface{} {
	if def := c.GetTermDefinition(property); def != nil {
		if val, found := def["@language"]; found {
			return val
		}
	}
	if defaultLang, found := c.entries["@language"]; found {
		return defaultLang
	}
	return nil
}

// GetDirectionMapping returns the direction mapping for the given property,
// falling back to the context's default base direction.
func (c *Context) GetDirectionMapping(property string) interface{} {
	if def := c.GetTermDefinition(property); def != nil {
		if val, found := def["@direction"]; found {
			return val
		}
	}
	if defaultDir, found := c.entries["@direction"]; found {
		return defaultDir
	}
	return nil
}

// GetPrefixes returns a map of potential RDF prefixes based on the JSON-LD
// term definitions in this context. No guarantees of the prefixes are
// given beyond that none of them contain a ":".
//
// onlyCommonPrefixes: if true, the result will not include "not so useful"
// prefixes, such as "term1": "http://example.com/term1" - only IRIs that
// end with "/" or "#" qualify.
func (c *Context) GetPrefixes(onlyCommonPrefixes bool) map[string]string {
	prefixes := make(map[string]string)

	for term, defVal := range c.termDefs {
		def, isMap := defVal.(map[string]interface{})
		if !isMap || strings.Contains(term, ":") {
			continue
		}
		id, _ := def["@id"].(string)
		if id == "" || strings.HasPrefix(term, "@") || strings.HasPrefix(id, "@") {
			continue
		}
		if !onlyCommonPrefixes || strings.HasSuffix(id, "/") || strings.HasSuffix(id, "#") {
			prefixes[term] = id
		}
	}

	return prefixes
}

// Serialize transforms the context back into JSON form.
func (c *Context) Serialize() (map[string]interface{}, error) {
	ctx := make(map[string]interface{})

	if baseVal, hasBase := c.entries["@base"]; hasBase && baseVal != c.settings.Base {
		ctx["@base"] = baseVal
	}
	for _, directive := range []string{"@version", "@language", "@direction", "@vocab"} {
		if v, found := c.entries[directive]; found {
			ctx[directive] = v
		}
	}

	for term, defVal := range c.termDefs {
		serialized, err := c.serializeTermDefinition(term, defVal)
		if err != nil {
			return nil, err
		}
		ctx[term] = serialized
	}

	rval := make(map[string]interface{})
	if len(ctx) != 0 {
		rval["@context"] = ctx
	}
	return rval, nil
}

// serializeTermDefinition renders one term definition back into the JSON
// shape a context author would have written: a bare IRI string when the
// definition carries nothing but an @id, an expanded object otherwise.
// A nil definition (reserved term) serializes as null.
func (c *Context) serializeTermDefinition(term string, defVal interface{}) (interface{}, error) {
	def, _ := defVal.(map[string]interface{})

	langVal, hasLang := def["@language"]
	containerVal, hasContainer := def["@container"]
	typeVal, hasType := def["@type"]
	reverseVal, hasReverse := def["@reverse"]
	isReverse := hasReverse && reverseVal != false

	if !hasLang && !hasContainer && !hasType && !isReverse {
		id, hasID := def["@id"]
		if !hasID {
			return nil, nil
		}
		if IsKeyword(id) {
			return id, nil
		}
		return c.CompactIri(id.(string), nil, false, false)
	}

	serialized := make(map[string]interface{})

	cid, err := c.CompactIri(def["@id"].(string), nil, false, false)
	if err != nil {
		return nil, err
	}
	reverseProperty := reverseVal.(bool)
	if !(term == cid && !reverseProperty) {
		if reverseProperty {
			serialized["@reverse"] = cid
		} else {
			serialized["@id"] = cid
		}
	}
	if hasType {
		typeMapping := typeVal.(string)
		if IsKeyword(typeMapping) {
			serialized["@type"] = typeMapping
		} else if serialized["@type"], err = c.CompactIri(typeMapping, nil, true, false); err != nil {
			return nil, err
		}
	}
	if hasContainer {
		if av, isArray := containerVal.([]string); isArray && len(av) == 1 {
			serialized["@container"] = av[0]
		} else {
			serialized["@container"] = containerVal
		}
	}
	if hasLang {
		if langVal == false {
			serialized["@language"] = nil
		} else {
			serialized["@language"] = langVal
		}
	}
	return serialized, nil
}
