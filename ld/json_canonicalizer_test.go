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
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// rdf:JSON values are canonicalized (RFC 8785-style key ordering and number
// formatting) before being embedded in an N-Quads literal; converting a
// document with an @json value must not produce a marshal or
// canonicalization error marker and must keep the rdf:JSON datatype.
func TestRDFJSONLiteralCanonicalization(t *testing.T) {
	doc := `{
  "@context": {
    "ex": "http://example.org/vocab#"
  },
  "@id": "http://example.org/test#example",
  "@type": "ex:Foo",
  "ex:jsonfield": {
    "@type": "@json",
    "@value": {
      "1": {"f": {"f": "hi","F": 5} ," ": 56.0},
      "10": { },
      "": "empty",
      "a": { },
      "111": [ {"e": "yes","E": "no" } ],
      "A": { }
    }
  }
}`

	var docMap map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(doc), &docMap))

	proc := NewJsonLdProcessor()
	opts := NewJsonLdOptions("")
	opts.Format = "application/nquads"

	view, err := proc.ToRDF(docMap, opts)
	require.NoError(t, err)

	nquads := view.(string)
	for _, s := range [...]string{"JSON Marshal error", "JSON Canonicalization error"} {
		require.False(t, strings.Contains(nquads, s), "unexpected failure marker in %s", nquads)
	}
	require.Contains(t, nquads, `^^<http://www.w3.org/1999/02/22-rdf-syntax-ns#JSON>`)
}
