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
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/westmark-go/jsonld/ld/internal/jsoncanonicalizer"
)

// Node is an RDF term: an IRI, a blank node, or a literal.
type Node interface {
	// GetValue returns the term's lexical value.
	GetValue() string

	// Equal reports whether n represents the same RDF term as this one.
	Equal(n Node) bool
}

// Literal is an RDF literal: a lexical value paired with a datatype IRI
// and, for rdf:langString literals, a language tag.
type Literal struct {
	Value    string
	Datatype string
	Language string
}

// NewLiteral creates a Literal, defaulting an empty datatype to xsd:string.
func NewLiteral(value string, datatype string, language string) *Literal {
	l := &Literal{
		Value:    value,
		Language: language,
		Datatype: datatype,
	}
	if datatype == "" {
		l.Datatype = XSDString
	}
	return l
}

func (l *Literal) GetValue() string {
	return l.Value
}

func (l *Literal) Equal(n Node) bool {
	other, ok := n.(*Literal)
	if !ok {
		return false
	}
	return l.Value == other.Value && l.Language == other.Language && l.Datatype == other.Datatype
}

// IRI is an RDF IRI term.
type IRI struct {
	Value string
}

// NewIRI creates an IRI term.
func NewIRI(iri string) *IRI {
	return &IRI{Value: iri}
}

func (iri *IRI) GetValue() string {
	return iri.Value
}

func (iri *IRI) Equal(n Node) bool {
	other, ok := n.(*IRI)
	return ok && iri.Value == other.Value
}

// BlankNode is an RDF blank node term, identified within its document by
// its attribute (a "_:"-prefixed label).
type BlankNode struct {
	Attribute string
}

// NewBlankNode creates a blank node term.
func NewBlankNode(attribute string) *BlankNode {
	return &BlankNode{Attribute: attribute}
}

func (bn *BlankNode) GetValue() string {
	return bn.Attribute
}

func (bn *BlankNode) Equal(n Node) bool {
	other, ok := n.(*BlankNode)
	return ok && bn.Attribute == other.Attribute
}

// IsBlankNode reports whether node is a blank node term.
func IsBlankNode(node Node) bool {
	_, ok := node.(*BlankNode)
	return ok
}

// IsIRI reports whether node is an IRI term.
func IsIRI(node Node) bool {
	_, ok := node.(*IRI)
	return ok
}

// IsLiteral reports whether node is a literal term.
func IsLiteral(node Node) bool {
	_, ok := node.(*Literal)
	return ok
}

var xsdIntegerPattern = regexp.MustCompile(`^[\-+]?\d+$`)
var xsdDoublePattern = regexp.MustCompile(`^(\+|-)?(\d+(\.\d*)?|\.\d+)([Ee](\+|-)?\d+)?$`)

// RdfToObject converts an RDF term used as a triple's object into the
// expanded JSON-LD value it represents: an IRI or blank node becomes a
// node reference ({"@id": ...}), a literal becomes a value object, with
// xsd:boolean/integer/double literals unwrapped into native Go types when
// useNativeTypes is set and their lexical form round-trips cleanly.
func RdfToObject(n Node, useNativeTypes bool) (map[string]interface{}, error) {
	if IsIRI(n) || IsBlankNode(n) {
		return map[string]interface{}{"@id": n.GetValue()}, nil
	}

	literal := n.(*Literal)
	result := map[string]interface{}{"@value": literal.GetValue()}

	if literal.Language != "" {
		result["@language"] = literal.Language
		return result, nil
	}

	datatype := literal.Datatype
	value := literal.Value

	if !useNativeTypes {
		if datatype != XSDString {
			result["@type"] = datatype
		}
		return result, nil
	}

	switch {
	case datatype == XSDString:
		// xsd:string is the expansion default; leave @type unset
	case datatype == XSDBoolean:
		switch value {
		case "true":
			result["@value"] = true
		case "false":
			result["@value"] = false
		default:
			// not a recognized boolean lexical form: keep the string value
			// but still record the declared type
			result["@type"] = datatype
		}
	case datatype == XSDInteger && xsdIntegerPattern.MatchString(value),
		datatype == XSDDouble && xsdDoublePattern.MatchString(value):
		// https://www.w3.org/TR/xmlschema11-2/#integer and #nt-doubleRep
		n, err := nativeNumberFromLexical(value, datatype)
		if err != nil {
			return nil, err
		}
		if n != nil {
			result["@value"] = n
		} else {
			result["@type"] = datatype
		}
	default:
		result["@type"] = datatype
	}

	return result, nil
}

// nativeNumberFromLexical parses an xsd:integer or xsd:double lexical form
// into a Go int64 or float64, returning nil (not an error) when the value
// doesn't survive a round trip through the native type unchanged.
func nativeNumberFromLexical(value string, datatype string) (interface{}, error) {
	parsed, _ := strconv.ParseFloat(value, 64)
	if math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return nil, nil
	}

	switch datatype {
	case XSDInteger:
		asInt := int64(parsed)
		if strconv.FormatInt(asInt, 10) == value {
			return asInt, nil
		}
		return nil, nil
	case XSDDouble:
		return parsed, nil
	default:
		return nil, NewJsonLdError(ParseError, nil)
	}
}

// objectToRDF converts an expanded JSON-LD value or node reference into
// the RDF term it represents, appending any supporting list-structure
// triples (for @list values) to triples as it goes.
func objectToRDF(item interface{}, issuer *IdentifierIssuer, graphName string, triples []*Quad) (Node, []*Quad) {
	if IsValue(item) {
		return valueObjectToRDF(item.(map[string]interface{}), triples)
	}
	if IsList(item) {
		return listToRDF(item.(map[string]interface{})["@list"].([]interface{}), issuer, graphName, triples)
	}
	return resourceToRDF(item), triples
}

// valueObjectToRDF converts a JSON-LD value object into an RDF literal,
// choosing the XSD datatype a native bool/number value implies when no
// explicit @type was given.
func valueObjectToRDF(item map[string]interface{}, triples []*Quad) (Node, []*Quad) {
	value := item["@value"]
	declaredType := item["@type"]
	if declaredType == "@json" {
		declaredType = RDFJSONLiteral
	}
	declaredTypeStr, _ := declaredType.(string)

	boolVal, isBool := value.(bool)
	floatVal, isFloat := value.(float64)
	if !isBool && !isFloat {
		// a json.Decoder with UseNumber() set hands us json.Number instead
		// of float64; normalize it here so the rest of this function never
		// has to care which decoding mode produced the document
		if number, isNumber := value.(json.Number); isNumber {
			var err error
			floatVal, err = number.Float64()
			isFloat = err == nil
		}
	}
	isIntegral := isFloat && floatVal == float64(int64(floatVal))

	switch {
	case isBool:
		datatype := XSDBoolean
		if declaredType != nil {
			datatype = declaredTypeStr
		}
		return NewLiteral(strconv.FormatBool(boolVal), datatype, ""), triples

	case isFloat && (!isIntegral || declaredTypeStr == XSDDouble):
		datatype := XSDDouble
		if declaredType != nil {
			datatype = declaredTypeStr
		}
		return NewLiteral(GetCanonicalDouble(floatVal), datatype, ""), triples

	case isFloat:
		datatype := XSDInteger
		if declaredType != nil {
			datatype = declaredTypeStr
		}
		return NewLiteral(strconv.FormatInt(int64(floatVal), 10), datatype, ""), triples

	case item["@language"] != nil:
		datatype := RDFLangString
		if declaredType != nil {
			datatype = declaredTypeStr
		}
		return NewLiteral(value.(string), datatype, item["@language"].(string)), triples

	case declaredType == nil:
		return NewLiteral(value.(string), XSDString, ""), triples

	case declaredTypeStr == RDFJSONLiteral:
		return jsonLiteralToRDF(value, declaredTypeStr), triples

	default:
		return NewLiteral(value.(string), declaredTypeStr, ""), triples
	}
}

// jsonLiteralToRDF canonicalizes an rdf:JSON literal's value via JCS so
// that semantically equal JSON values produce the same lexical form.
func jsonLiteralToRDF(value interface{}, datatype string) Node {
	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case map[string]interface{}:
		encoded, err := json.Marshal(v)
		if err != nil {
			return NewLiteral("JSON Marshal error "+err.Error(), datatype, "")
		}
		raw = encoded
	}

	canonical, err := jsoncanonicalizer.Transform(raw)
	if err != nil {
		return NewLiteral("JSON Canonicalization error "+err.Error(), datatype, "")
	}
	return NewLiteral(string(canonical), datatype, "")
}

// resourceToRDF converts a JSON-LD node reference or plain string id into
// an IRI or blank node term, or nil if the id is still relative (which
// can't be represented in RDF).
func resourceToRDF(item interface{}) Node {
	var id string
	if itemMap, isMap := item.(map[string]interface{}); isMap {
		id = itemMap["@id"].(string)
		if IsRelativeIri(id) {
			return nil
		}
	} else {
		id = item.(string)
	}

	if strings.HasPrefix(id, "_:") {
		// blank node ids are never renamed on the way out to RDF
		return NewBlankNode(id)
	}
	return NewIRI(id)
}

// listToRDF builds the rdf:first/rdf:rest cons-cell chain for an @list
// value, returning the chain's head term (rdf:nil for an empty list).
func listToRDF(items []interface{}, issuer *IdentifierIssuer, graphName string, triples []*Quad) (Node, []*Quad) {
	var head Node
	var tail interface{}

	if len(items) > 0 {
		tail = items[len(items)-1]
		head = NewBlankNode(issuer.GetId(""))
	} else {
		head = nilIRI
	}

	cell := head
	var obj Node
	if len(items) > 0 {
		for _, item := range items[:len(items)-1] {
			obj, triples = objectToRDF(item, issuer, graphName, triples)
			next := NewBlankNode(issuer.GetId(""))
			triples = append(triples,
				NewQuad(cell, first, obj, graphName),
				NewQuad(cell, rest, next, graphName),
			)
			cell = next
		}
	}

	if tail != nil {
		obj, triples = objectToRDF(tail, issuer, graphName, triples)
		triples = append(triples,
			NewQuad(cell, first, obj, graphName),
			NewQuad(cell, rest, nilIRI, graphName),
		)
	}

	return head, triples
}
