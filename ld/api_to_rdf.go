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

// ToRDF builds a full RDF dataset from already-expanded JSON-LD input: it
// first flattens the input into a node map (one fresh blank node issuer per
// call, so ids are internally consistent but not portable across calls),
// then turns every named graph in that node map into a set of triples.
func (api *JsonLdApi) ToRDF(input interface{}, opts *JsonLdOptions) (*RDFDataset, error) {
	issuer := NewIdentifierIssuer("_:b")

	nodeMap := map[string]interface{}{
		"@default": make(map[string]interface{}),
	}
	if _, err := api.GenerateNodeMap(input, nodeMap, "@default", issuer, "", "", nil); err != nil {
		return nil, err
	}

	dataset := NewRDFDataset()

	for graphName, graphVal := range nodeMap {
		// a relative-IRI graph name never made it into the node map as a
		// real node; there's nothing to convert
		if IsRelativeIri(graphName) {
			continue
		}
		graph := graphVal.(map[string]interface{})
		dataset.GraphToRDF(graphName, graph, issuer, opts.ProduceGeneralizedRdf)
	}

	return dataset, nil
}
