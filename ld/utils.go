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
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
)

// jsonLdKeywords is the closed set of JSON-LD 1.1 keywords (plus the
// framing vocabulary, which expansion must recognize without choking).
// Anything else that merely looks like a keyword is reserved and ignored.
var jsonLdKeywords = map[string]bool{
	"@base": true, "@container": true, "@context": true, "@default": true,
	"@direction": true, "@embed": true, "@explicit": true, "@first": true,
	"@graph": true, "@id": true, "@import": true, "@included": true,
	"@index": true, "@json": true, "@language": true, "@list": true,
	"@nest": true, "@none": true, "@omitDefault": true, "@prefix": true,
	"@preserve": true, "@propagate": true, "@protected": true,
	"@requireAll": true, "@reverse": true, "@set": true, "@type": true,
	"@value": true, "@version": true, "@vocab": true,
}

// IsKeyword returns whether or not the given value is a keyword.
func IsKeyword(key interface{}) bool {
	keyStr, isString := key.(string)
	return isString && jsonLdKeywords[keyStr]
}

// mapEntry fetches key from v if v is a JSON object, reporting whether the
// entry exists. It is the shared backbone of the Is* shape predicates.
func mapEntry(v interface{}, key string) (interface{}, bool) {
	m, isMap := v.(map[string]interface{})
	if !isMap {
		return nil, false
	}
	val, found := m[key]
	return val, found
}

// DeepCompare returns true if v1 equals v2.
func DeepCompare(v1 interface{}, v2 interface{}, listOrderMatters bool) bool {
	switch t1 := v1.(type) {
	case nil:
		return v2 == nil
	case map[string]interface{}:
		t2, isMap := v2.(map[string]interface{})
		return isMap && mapsEqual(t1, t2, listOrderMatters)
	case []interface{}:
		t2, isList := v2.([]interface{})
		return isList && listsEqual(t1, t2, listOrderMatters)
	default:
		return v2 != nil && scalarsEqual(v1, v2)
	}
}

func mapsEqual(m1, m2 map[string]interface{}, listOrderMatters bool) bool {
	if len(m1) != len(m2) {
		return false
	}
	for key, val1 := range m1 {
		val2, found := m2[key]
		if !found || !DeepCompare(val1, val2, listOrderMatters) {
			return false
		}
	}
	return true
}

func listsEqual(l1, l2 []interface{}, listOrderMatters bool) bool {
	if len(l1) != len(l2) {
		return false
	}
	if listOrderMatters {
		for i := range l1 {
			if !DeepCompare(l1[i], l2[i], true) {
				return false
			}
		}
		return true
	}

	// unordered: greedily claim a distinct partner in l2 for every member
	// of l1, so duplicates aren't matched against the same item twice
	claimed := make([]bool, len(l2))
nextItem:
	for _, item := range l1 {
		for j, candidate := range l2 {
			if !claimed[j] && DeepCompare(item, candidate, false) {
				claimed[j] = true
				continue nextItem
			}
		}
		return false
	}
	return true
}

// scalarsEqual compares scalars directly, falling back to a numeric
// rendering so that float64 and json.Number decodings of the same document
// still compare equal (see https://golang.org/pkg/encoding/json/#Decoder.UseNumber).
func scalarsEqual(v1, v2 interface{}) bool {
	if v1 == v2 {
		return true
	}
	return numericLexical(v1) == numericLexical(v2)
}

func numericLexical(v interface{}) string {
	switch n := v.(type) {
	case float64:
		return fmt.Sprintf("%f", n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return fmt.Sprintf("%f", f)
		}
	}
	return fmt.Sprintf("%s", v)
}

func deepContains(values []interface{}, value interface{}) bool {
	for _, item := range values {
		if DeepCompare(item, value, false) {
			return true
		}
	}
	return false
}

// MergeValue appends a value to the array stored under key, skipping a value
// that is already present (list objects and @list entries are always
// appended). An array value is appended as a single element.
func MergeValue(obj map[string]interface{}, key string, value interface{}) {
	if obj == nil {
		return
	}
	values, _ := obj[key].([]interface{})
	if key == "@list" || IsList(value) || !deepContains(values, value) {
		values = append(values, value)
	}
	obj[key] = values
}

// IsAbsoluteIri returns true if the given value is an absolute IRI, false if not.
func IsAbsoluteIri(value string) bool {
	if strings.HasPrefix(value, "_:") {
		return true
	}
	u, err := url.Parse(value)
	return err == nil && u.IsAbs()
}

// IsRelativeIri returns true if the given value is a relative IRI, false if not.
func IsRelativeIri(value string) bool {
	return !(IsKeyword(value) || IsAbsoluteIri(value))
}

// IsSubject returns true if the given value is a node object carrying more
// than a bare reference: an object that is not a @value, @set, or @list,
// and that either has some entry other than @id or has no @id at all.
func IsSubject(v interface{}) bool {
	m, isMap := v.(map[string]interface{})
	if !isMap {
		return false
	}
	for _, excluded := range []string{"@value", "@set", "@list"} {
		if _, found := m[excluded]; found {
			return false
		}
	}
	_, hasID := m["@id"]
	return len(m) > 1 || !hasID
}

// IsSubjectReference returns true if the given value is an object whose
// single entry is @id.
func IsSubjectReference(v interface{}) bool {
	m, isMap := v.(map[string]interface{})
	if !isMap || len(m) != 1 {
		return false
	}
	_, hasID := m["@id"]
	return hasID
}

// IsValue returns true if the given value is a JSON-LD value object.
func IsValue(v interface{}) bool {
	_, found := mapEntry(v, "@value")
	return found
}

// IsList returns true if the given value is a @list object.
func IsList(v interface{}) bool {
	_, found := mapEntry(v, "@list")
	return found
}

// IsGraph returns true if the given value is a graph object: an object
// with an @graph entry and nothing else beyond an optional @id or @index.
func IsGraph(v interface{}) bool {
	m, isMap := v.(map[string]interface{})
	if !isMap {
		return false
	}
	if _, hasGraph := m["@graph"]; !hasGraph {
		return false
	}
	for k := range m {
		switch k {
		case "@graph", "@id", "@index":
		default:
			return false
		}
	}
	return true
}

// IsSimpleGraph returns true if the given value is a graph object without
// its own @id.
func IsSimpleGraph(v interface{}) bool {
	if !IsGraph(v) {
		return false
	}
	_, hasID := mapEntry(v, "@id")
	return !hasID
}

// IsBlankNodeValue returns true if the given value stands for a blank node:
// an object whose @id (if any) carries the "_:" prefix, or an object that
// isn't a plain value object.
func IsBlankNodeValue(v interface{}) bool {
	m, isMap := v.(map[string]interface{})
	if !isMap {
		return false
	}
	if id, hasID := m["@id"]; hasID {
		idStr, isString := id.(string)
		return isString && strings.HasPrefix(idStr, "_:")
	}
	_, hasValue := m["@value"]
	_, hasSet := m["@set"]
	_, hasList := m["@list"]
	return len(m) == 0 || !hasValue || hasSet || hasList
}

// Arrayify returns v, if v is an array, otherwise returns an array
// containing v as the only element.
func Arrayify(v interface{}) []interface{} {
	if av, isArray := v.([]interface{}); isArray {
		return av
	}
	return []interface{}{v}
}

func inArray(v interface{}, array []interface{}) bool {
	for _, x := range array {
		if v == x {
			return true
		}
	}
	return false
}

func isEmptyObject(v interface{}) bool {
	m, isMap := v.(map[string]interface{})
	return isMap && len(m) == 0
}

// CompareShortestLeast compares two strings first based on length and then lexicographically.
func CompareShortestLeast(a string, b string) bool {
	if len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

// ShortestLeast sorts strings with CompareShortestLeast.
type ShortestLeast []string

func (s ShortestLeast) Len() int      { return len(s) }
func (s ShortestLeast) Swap(i, j int) { s[i], s[j] = s[j], s[i] }
func (s ShortestLeast) Less(i, j int) bool {
	return CompareShortestLeast(s[i], s[j])
}

// HasValue determines if the given value is a property of the given subject.
func HasValue(subject interface{}, property string, value interface{}) bool {
	subjMap, isMap := subject.(map[string]interface{})
	if !isMap {
		return false
	}
	val, found := subjMap[property]
	if !found {
		return false
	}

	if IsList(val) {
		val = val.(map[string]interface{})["@list"]
	}
	if valArray, isArray := val.([]interface{}); isArray {
		for _, v := range valArray {
			if CompareValues(value, v) {
				return true
			}
		}
		return false
	}
	// never match an array parameter against a single stored value
	if _, isArray := value.([]interface{}); isArray {
		return false
	}
	return CompareValues(value, val)
}

// AddValue adds a value to a subject. If the value is an array, all values in the
// array will be added.
//
// Options:
//
//	[propertyIsArray] True if the property is always an array, False if not (default: False).
//	[allowDuplicate] True to allow duplicates, False not to (uses a simple shallow comparison
//			of subject ID or value) (default: True).
func AddValue(subject interface{}, property string, value interface{}, propertyIsArray, valueAsArray, allowDuplicate,
	prependValue bool) {

	subjMap, _ := subject.(map[string]interface{})
	existing, found := subjMap[property]

	if valueAsArray {
		subjMap[property] = value
		return
	}

	if valueList, isList := value.([]interface{}); isList {
		if prependValue {
			if propertyIsArray {
				valueList = append(subjMap[property].([]interface{}), valueList...)
			} else {
				valueList = append([]interface{}{subjMap[property]}, valueList...)
			}
			subjMap[property] = make([]interface{}, 0)
		} else if len(valueList) == 0 && propertyIsArray && !found {
			subjMap[property] = make([]interface{}, 0)
		}
		for _, v := range valueList {
			AddValue(subject, property, v, propertyIsArray, valueAsArray, allowDuplicate, prependValue)
		}
		return
	}

	if !found {
		if propertyIsArray {
			subjMap[property] = []interface{}{value}
		} else {
			subjMap[property] = value
		}
		return
	}

	duplicate := !allowDuplicate && HasValue(subject, property, value)

	values, isArray := existing.([]interface{})
	if !isArray && (!duplicate || propertyIsArray) {
		values = []interface{}{existing}
		subjMap[property] = values
	}
	if duplicate {
		return
	}
	if prependValue {
		subjMap[property] = append([]interface{}{value}, values...)
	} else {
		subjMap[property] = append(values, value)
	}
}

// RemoveValue removes a value from a subject.
func RemoveValue(subject interface{}, property string, value interface{}, propertyIsArray bool) {
	subjMap, _ := subject.(map[string]interface{})
	existing, found := subjMap[property]
	if !found {
		return
	}

	kept := make([]interface{}, 0)
	for _, v := range Arrayify(existing) {
		if !CompareValues(v, value) {
			kept = append(kept, v)
		}
	}

	switch {
	case len(kept) == 0:
		delete(subjMap, property)
	case len(kept) == 1 && !propertyIsArray:
		subjMap[property] = kept[0]
	default:
		subjMap[property] = kept
	}
}

// CompareValues compares two JSON-LD values for equality.
// Two JSON-LD values will be considered equal if:
//
// 1. They are both primitives of the same type and value.
// 2. They are both @values with the same @value, @type, @language, and @index, OR
// 3. They both have @ids and they are the same.
func CompareValues(v1 interface{}, v2 interface{}) bool {
	m1, isMap1 := v1.(map[string]interface{})
	m2, isMap2 := v2.(map[string]interface{})

	if !isMap1 && !isMap2 {
		return v1 == v2
	}
	if IsValue(v1) && IsValue(v2) {
		return m1["@value"] == m2["@value"] &&
			m1["@type"] == m2["@type"] &&
			m1["@language"] == m2["@language"] &&
			m1["@index"] == m2["@index"]
	}
	if isMap1 && isMap2 {
		id1, has1 := m1["@id"]
		id2, has2 := m2["@id"]
		return has1 && has2 && id1 == id2
	}
	return false
}

// CloneDocument returns a deep copy of the given JSON-LD document.
func CloneDocument(value interface{}) interface{} {
	switch src := value.(type) {
	case map[string]interface{}:
		clone := make(map[string]interface{}, len(src))
		for k, v := range src {
			clone[k] = CloneDocument(v)
		}
		return clone
	case []interface{}:
		clone := make([]interface{}, len(src))
		for i, v := range src {
			clone[i] = CloneDocument(v)
		}
		return clone
	default:
		// scalars (and nil) are immutable as far as documents go
		return value
	}
}

// GetKeys returns all keys in the given object.
func GetKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	return keys
}

// GetKeysString returns all keys in the given map[string]string.
func GetKeysString(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	return keys
}

// GetOrderedKeys returns all keys in the given object as a sorted list.
func GetOrderedKeys(m map[string]interface{}) []string {
	keys := GetKeys(m)
	sort.Strings(keys)
	return keys
}

// PrintDocument prints a JSON-LD document. This is useful for debugging.
func PrintDocument(msg string, doc interface{}) {
	b, _ := json.MarshalIndent(doc, "", "  ")
	if msg != "" {
		_, _ = os.Stdout.WriteString(msg + "\n")
	}
	_, _ = os.Stdout.Write(b)
	_, _ = os.Stdout.WriteString("\n")
}
