package ld

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stretchr/testify/assert"
)

func TestContext_Parse(t *testing.T) {
	expectedError := errors.New("failed")
	opts := NewJsonLdOptions("")
	opts.DocumentLoader = errorDocumentLoader{err: expectedError}

	t.Run("DocumentLoader can't resolve @context URL", func(t *testing.T) {
		ctx := NewContext(nil, opts)
		_, err := ctx.Parse("http://example.org/foo.ldjson")
		jsonLDError := new(JsonLdError)
		require.ErrorAs(t, err, &jsonLDError)
		assert.Equal(t, LoadingRemoteContextFailed, jsonLDError.Code)
		assert.ErrorIs(t, err, expectedError, "DocumentLoader error is not wrapped")
	})
	t.Run("DocumentLoader can't resolve @import", func(t *testing.T) {
		ctx := NewContext(nil, opts)
		_, err := ctx.Parse(map[string]interface{}{
			"@import": "http://example.org/foo.ldjson",
		})
		jsonLDError := new(JsonLdError)
		require.ErrorAs(t, err, &jsonLDError)
		assert.Equal(t, LoadingRemoteContextFailed, jsonLDError.Code)
		assert.ErrorIs(t, err, expectedError, "DocumentLoader error is not wrapped")
	})
	t.Run("term definitions expand against @vocab", func(t *testing.T) {
		ctx := NewContext(nil, NewJsonLdOptions(""))
		ctx, err := ctx.Parse(map[string]interface{}{
			"@vocab": "http://example.com/vocab#",
			"name":   "name",
		})
		require.NoError(t, err)

		iri, err := ctx.ExpandIri("name", false, true, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "http://example.com/vocab#name", iri)
	})
	t.Run("prefix definitions expand compact IRIs", func(t *testing.T) {
		ctx := NewContext(nil, NewJsonLdOptions(""))
		ctx, err := ctx.Parse(map[string]interface{}{
			"ex": "http://example.com/ns#",
		})
		require.NoError(t, err)

		iri, err := ctx.ExpandIri("ex:thing", false, true, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "http://example.com/ns#thing", iri)
	})
	t.Run("null context with protected terms is rejected", func(t *testing.T) {
		ctx := NewContext(nil, NewJsonLdOptions(""))
		ctx, err := ctx.Parse(map[string]interface{}{
			"name": map[string]interface{}{
				"@id":        "http://schema.org/name",
				"@protected": true,
			},
		})
		require.NoError(t, err)

		_, err = ctx.Parse(nil)
		jsonLDError := new(JsonLdError)
		require.ErrorAs(t, err, &jsonLDError)
		assert.Equal(t, InvalidContextNullification, jsonLDError.Code)
	})
	t.Run("null context discards previous terms", func(t *testing.T) {
		ctx := NewContext(nil, NewJsonLdOptions(""))
		ctx, err := ctx.Parse(map[string]interface{}{
			"name": "http://schema.org/name",
		})
		require.NoError(t, err)

		ctx, err = ctx.Parse(nil)
		require.NoError(t, err)
		assert.Nil(t, ctx.GetTermDefinition("name"))
	})
	t.Run("keywords cannot be redefined", func(t *testing.T) {
		ctx := NewContext(nil, NewJsonLdOptions(""))
		_, err := ctx.Parse(map[string]interface{}{
			"@id": "http://example.com/id",
		})
		jsonLDError := new(JsonLdError)
		require.ErrorAs(t, err, &jsonLDError)
		assert.Equal(t, KeywordRedefinition, jsonLDError.Code)
	})
	t.Run("invalid @direction is rejected", func(t *testing.T) {
		ctx := NewContext(nil, NewJsonLdOptions(""))
		_, err := ctx.Parse(map[string]interface{}{
			"@direction": "up",
		})
		jsonLDError := new(JsonLdError)
		require.ErrorAs(t, err, &jsonLDError)
		assert.Equal(t, InvalidBaseDirection, jsonLDError.Code)
	})
	t.Run("default @language is lowercased", func(t *testing.T) {
		ctx := NewContext(nil, NewJsonLdOptions(""))
		ctx, err := ctx.Parse(map[string]interface{}{
			"@language": "EN-US",
		})
		require.NoError(t, err)

		expanded, err := ctx.ExpandValue("anyProp", "hello")
		require.NoError(t, err)
		assert.Equal(t, "en-us", expanded.(map[string]interface{})["@language"])
	})
}

func TestContext_CompactIri(t *testing.T) {
	ctx := NewContext(nil, NewJsonLdOptions(""))
	ctx, err := ctx.Parse(map[string]interface{}{
		"ex":   "http://example.com/ns#",
		"name": "http://example.com/ns#name",
	})
	require.NoError(t, err)

	t.Run("an exact term wins over a compact IRI", func(t *testing.T) {
		compacted, err := ctx.CompactIri("http://example.com/ns#name", nil, true, false)
		require.NoError(t, err)
		assert.Equal(t, "name", compacted)
	})
	t.Run("an unmapped IRI falls back to prefix:suffix", func(t *testing.T) {
		compacted, err := ctx.CompactIri("http://example.com/ns#other", nil, true, false)
		require.NoError(t, err)
		assert.Equal(t, "ex:other", compacted)
	})
}

type errorDocumentLoader struct {
	err error
}

func (l errorDocumentLoader) LoadDocument(u string) (*RemoteDocument, error) {
	return nil, l.err
}
