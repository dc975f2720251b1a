package ld

// JsonLdApi carries the recursive algorithms that implement expansion,
// compaction, node map generation, and RDF conversion. It holds no state of
// its own: every method takes the active context, options, and accumulators
// it needs as arguments, so a single instance is safe to reuse or share
// across concurrent calls that each own their own Context and IdentifierIssuer.
type JsonLdApi struct { //nolint:stylecheck
}

// NewJsonLdApi creates a new instance of JsonLdApi.
func NewJsonLdApi() *JsonLdApi { //nolint:stylecheck
	return &JsonLdApi{}
}
