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

// Vocabulary namespaces.
const (
	RDFSyntaxNS = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSchemaNS = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNS       = "http://www.w3.org/2001/XMLSchema#"
)

// rdf: terms. RDFType carries @type entries into triples; RDFFirst,
// RDFRest and RDFNil encode @list values as RDF collections; the literal
// datatypes mark language-tagged (langString), JSON, and legacy
// plain/XML literals.
const (
	RDFType         = RDFSyntaxNS + "type"
	RDFFirst        = RDFSyntaxNS + "first"
	RDFRest         = RDFSyntaxNS + "rest"
	RDFNil          = RDFSyntaxNS + "nil"
	RDFList         = RDFSyntaxNS + "List"
	RDFObject       = RDFSyntaxNS + "object"
	RDFLangString   = RDFSyntaxNS + "langString"
	RDFJSONLiteral  = RDFSyntaxNS + "JSON"
	RDFPlainLiteral = RDFSyntaxNS + "PlainLiteral"
	RDFXMLLiteral   = RDFSyntaxNS + "XMLLiteral"
)

// xsd: datatypes recognized when coercing values during expansion and
// when round-tripping native booleans and numbers through RDF literals.
const (
	XSDBoolean = XSDNS + "boolean"
	XSDInteger = XSDNS + "integer"
	XSDDouble  = XSDNS + "double"
	XSDFloat   = XSDNS + "float"
	XSDDecimal = XSDNS + "decimal"
	XSDString  = XSDNS + "string"
	XSDAnyType = XSDNS + "anyType"
	XSDAnyURI  = XSDNS + "anyURI"
)
