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

package ld_test

import (
	"testing"

	. "github.com/westmark-go/jsonld/ld"
	"github.com/stretchr/testify/assert"
)

func TestGetCanonicalDouble(t *testing.T) {
	assert.Equal(t, "5.3E0", GetCanonicalDouble(5.3))
	assert.Equal(t, "1.5E0", GetCanonicalDouble(1.5))
	assert.Equal(t, "-2.5E0", GetCanonicalDouble(-2.5))
	assert.Equal(t, "1.0E3", GetCanonicalDouble(1000.0))
}

func TestQuadValidity(t *testing.T) {
	valid := NewQuad(
		NewIRI("http://ex.org/s"),
		NewIRI("http://ex.org/p"),
		NewLiteral("v", "", "en"),
		"@default",
	)
	assert.True(t, valid.Valid())

	badLanguage := NewQuad(
		NewIRI("http://ex.org/s"),
		NewIRI("http://ex.org/p"),
		NewLiteral("v", RDFLangString, "not a language tag"),
		"@default",
	)
	assert.False(t, badLanguage.Valid())
}

func TestDatasetNamespaces(t *testing.T) {
	ds := NewRDFDataset()
	ds.SetNamespace("ex", "http://example.com/ns#")
	ds.SetNamespace("", "http://example.com/vocab#")

	assert.Equal(t, "http://example.com/ns#", ds.GetNamespace("ex"))

	ctx := ds.GetContext()
	assert.Equal(t, "http://example.com/ns#", ctx["ex"])
	assert.Equal(t, "http://example.com/vocab#", ctx["@vocab"])

	ds.ClearNamespaces()
	assert.Empty(t, ds.GetNamespaces())
}
