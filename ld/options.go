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

// Embed selects how framing embeds referenced nodes.
type Embed string

// Recognized processing modes and Embed values.
const (
	JsonLd_1_0       = "json-ld-1.0"              //nolint:stylecheck
	JsonLd_1_1       = "json-ld-1.1"              //nolint:stylecheck
	JsonLd_1_1_Frame = "json-ld-1.1-expand-frame" //nolint:stylecheck

	EmbedLast   = "@last"
	EmbedAlways = "@always"
	EmbedNever  = "@never"
)

// JsonLdOptions bundles every switch the public operations accept, per
// http://www.w3.org/TR/json-ld-api/#the-jsonldoptions-type plus this
// implementation's own extensions.
type JsonLdOptions struct { //nolint:stylecheck

	// Standard options defined by the API spec.

	// Base overrides the document's base IRI.
	Base string
	// CompactArrays unwraps single-element arrays during compaction.
	CompactArrays bool
	// ExpandContext is a context prepended to the document's own @context.
	ExpandContext interface{}
	// ProcessingMode selects json-ld-1.0 or json-ld-1.1 (the default)
	// behavior; the frame variant relaxes expansion for frame documents.
	ProcessingMode string
	// DocumentLoader fetches remote documents and contexts.
	DocumentLoader DocumentLoader

	// Ordered requests that map keys be visited in lexicographic order at
	// every recursive step, for byte-identical output across runs.
	Ordered bool
	// CompactToRelative controls whether CompactIri emits IRIs relative to
	// the active base when one is known. Set false to always emit absolute
	// IRIs during compaction.
	CompactToRelative bool
	// RdfStar enables JSON-LD-star extensions (@annotation, embedded node
	// objects as RDF subjects/objects) during RDF conversion.
	RdfStar bool

	// Framing options (http://json-ld.org/spec/latest/json-ld-framing/).

	Embed        Embed
	Explicit     bool
	RequireAll   bool
	FrameDefault bool
	OmitDefault  bool
	OmitGraph    bool

	// RDF conversion options
	// (http://www.w3.org/TR/json-ld-api/#serialize-rdf-as-json-ld-algorithm).

	// UseRdfType keeps rdf:type as a plain property instead of @type.
	UseRdfType bool
	// UseNativeTypes converts recognized XSD literals to native JSON values.
	UseNativeTypes bool
	// ProduceGeneralizedRdf permits blank node predicates.
	ProduceGeneralizedRdf bool

	// Implementation extensions outside the API spec.

	// InputFormat and Format name RDF wire formats for ToRDF/FromRDF
	// ("application/nquads" is the one this module implements).
	InputFormat string
	Format      string
	// UseNamespaces extracts context prefixes into the produced dataset.
	UseNamespaces bool
	// OutputForm reshapes FromRDF output: "expanded", "compacted" or
	// "flattened".
	OutputForm string
	// SafeMode makes processing stricter about recoverable oddities.
	SafeMode bool
}

// NewJsonLdOptions creates and returns new instance of JsonLdOptions with
// the given base.
func NewJsonLdOptions(base string) *JsonLdOptions { //nolint:stylecheck
	return &JsonLdOptions{
		Base:              base,
		CompactArrays:     true,
		ProcessingMode:    JsonLd_1_1,
		DocumentLoader:    NewDefaultDocumentLoader(nil),
		CompactToRelative: true,
		Embed:             EmbedLast,
		RequireAll:        true,
	}
}

// Copy creates a copy of this JsonLdOptions object. The options carry only
// scalars and interface references, so a value copy is a complete one.
func (opt *JsonLdOptions) Copy() *JsonLdOptions {
	dup := *opt
	return &dup
}
