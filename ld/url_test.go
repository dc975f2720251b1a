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

func TestJsonLdUrl(t *testing.T) {
	parsedURL := ParseURL("http://www.example.com")

	assert.Equal(t, "http:", parsedURL.Protocol)
	assert.Equal(t, "www.example.com", parsedURL.Host)

	parsedURL = ParseURL("https://user:pw@example.com:8443/a/b/../c?x=1#frag")
	assert.Equal(t, "https:", parsedURL.Protocol)
	assert.Equal(t, "example.com", parsedURL.Hostname)
	assert.Equal(t, "8443", parsedURL.Port)
	assert.Equal(t, "user:pw@example.com:8443", parsedURL.Authority)
	assert.Equal(t, "/a/c", parsedURL.NormalizedPath)
	assert.Equal(t, "x=1", parsedURL.Query)
	assert.Equal(t, "#frag", parsedURL.Hash)
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "http://ex.org/a/c", Resolve("http://ex.org/a/b", "c"))
	assert.Equal(t, "http://ex.org/c", Resolve("http://ex.org/a/b", "/c"))
	assert.Equal(t, "http://ex.org/a/b?y=2", Resolve("http://ex.org/a/b?x=1", "?y=2"))
	assert.Equal(t, "http://other.org/z", Resolve("http://ex.org/a/b", "http://other.org/z"))
	assert.Equal(t, "http://ex.org/c", Resolve("http://ex.org/a/b", "../c"))
	assert.Equal(t, "http://ex.org/a/b", Resolve("http://ex.org/a/b", ""))
	assert.Equal(t, "relative", Resolve("", "relative"))
}

func TestRemoveBase(t *testing.T) {
	result := RemoveBase(
		"http://json-ld.org/test-suite/tests/compact-0045-in.jsonld",
		"http://json-ld.org/test-suite/parent-node",
	)
	assert.Equal(t, "../parent-node", result)

	result = RemoveBase(
		"http://example.com/",
		"http://example.com/relative-url",
	)
	assert.Equal(t, "relative-url", result)

	result = RemoveBase(
		"http://json-ld.org/test-suite/tests/compact-0066-in.jsonld",
		"http://json-ld.org/test-suite/",
	)
	assert.Equal(t, "../", result)

	result = RemoveBase(
		"http://example.com/api/things/1",
		"http://example.com/api/things/1",
	)
	assert.Equal(t, "1", result)
}
