//
//  Copyright 2006-2019 WebPKI.org (http://webpki.org).
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//      https://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

// This package transforms JSON data in UTF-8 according to:
// https://tools.ietf.org/html/draft-rundgren-json-canonicalization-scheme-02

package jsoncanonicalizer

import (
	"bytes"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Transform canonicalizes jsonData per the JSON Canonicalization Scheme:
// object members sorted by the UTF-16 representation of their names,
// numbers in ES6 serialization form, strings minimally escaped, and no
// insignificant whitespace.
func Transform(jsonData []byte) ([]byte, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonData))
	decoder.UseNumber()

	var parsed interface{}
	if err := decoder.Decode(&parsed); err != nil {
		return nil, err
	}
	// Trailing non-whitespace after the first JSON value is an error
	var extra interface{}
	if err := decoder.Decode(&extra); err == nil {
		return nil, errors.New("Improperly terminated JSON object")
	}

	var buffer strings.Builder
	if err := serialize(parsed, &buffer); err != nil {
		return nil, err
	}
	return []byte(buffer.String()), nil
}

func serialize(value interface{}, buffer *strings.Builder) error {
	switch v := value.(type) {
	case nil:
		buffer.WriteString("null")
	case bool:
		buffer.WriteString(strconv.FormatBool(v))
	case json.Number:
		ieeeF64, err := v.Float64()
		if err != nil {
			return err
		}
		formatted, err := NumberToJSON(ieeeF64)
		if err != nil {
			return err
		}
		buffer.WriteString(formatted)
	case string:
		serializeString(v, buffer)
	case []interface{}:
		buffer.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				buffer.WriteByte(',')
			}
			if err := serialize(item, buffer); err != nil {
				return err
			}
		}
		buffer.WriteByte(']')
	case map[string]interface{}:
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		// Sort keys on their UTF-16 representation as required by JCS.
		// This differs from Go's native UTF-8 ordering for code points
		// outside the basic multilingual plane.
		sort.Slice(keys, func(i, j int) bool {
			return lessUTF16(keys[i], keys[j])
		})
		buffer.WriteByte('{')
		for i, key := range keys {
			if i > 0 {
				buffer.WriteByte(',')
			}
			serializeString(key, buffer)
			buffer.WriteByte(':')
			if err := serialize(v[key], buffer); err != nil {
				return err
			}
		}
		buffer.WriteByte('}')
	default:
		return errors.New("Unknown JSON type")
	}
	return nil
}

func lessUTF16(a, b string) bool {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}

// serializeString writes value as an ES6 JSON.stringify-compatible string
// literal: only backslash, double quote and C0 controls are escaped.
func serializeString(value string, buffer *strings.Builder) {
	buffer.WriteByte('"')
	for _, c := range value {
		switch c {
		case '\\':
			buffer.WriteString("\\\\")
		case '"':
			buffer.WriteString("\\\"")
		case '\b':
			buffer.WriteString("\\b")
		case '\f':
			buffer.WriteString("\\f")
		case '\n':
			buffer.WriteString("\\n")
		case '\r':
			buffer.WriteString("\\r")
		case '\t':
			buffer.WriteString("\\t")
		default:
			if c < 0x20 {
				buffer.WriteString("\\u")
				hex := strconv.FormatInt(int64(c), 16)
				for len(hex) < 4 {
					hex = "0" + hex
				}
				buffer.WriteString(hex)
			} else {
				buffer.WriteRune(c)
			}
		}
	}
	buffer.WriteByte('"')
}
