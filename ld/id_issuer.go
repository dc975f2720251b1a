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

import "strconv"

// IdentifierIssuer mints deterministic blank node identifiers (prefix0,
// prefix1, ...) and remembers which minted identifier answered each
// caller-supplied one, so asking about the same input label twice always
// yields the same output label for the lifetime of the issuer.
type IdentifierIssuer struct {
	prefix  string
	counter int
	issued  map[string]string
	history []string
}

// NewIdentifierIssuer creates an issuer whose identifiers start with prefix.
func NewIdentifierIssuer(prefix string) *IdentifierIssuer {
	return &IdentifierIssuer{
		prefix: prefix,
		issued: make(map[string]string),
	}
}

// mint produces the next identifier in sequence, with no memory of it.
func (ii *IdentifierIssuer) mint() string {
	id := ii.prefix + strconv.Itoa(ii.counter)
	ii.counter++
	return id
}

// GetId returns the identifier previously issued for oldId, minting and
// recording a fresh one on first sight. An empty oldId always mints a
// fresh, unrecorded identifier.
func (ii *IdentifierIssuer) GetId(oldId string) string {
	if oldId == "" {
		return ii.mint()
	}
	if id, issued := ii.issued[oldId]; issued {
		return id
	}
	id := ii.mint()
	ii.issued[oldId] = id
	ii.history = append(ii.history, oldId)
	return id
}

// HasId reports whether an identifier has already been issued for oldId.
func (ii *IdentifierIssuer) HasId(oldId string) bool {
	_, issued := ii.issued[oldId]
	return issued
}

// Clone returns an independent copy of this issuer, so a caller can branch
// identifier assignment without disturbing the original's sequence.
func (ii *IdentifierIssuer) Clone() *IdentifierIssuer {
	dup := &IdentifierIssuer{
		prefix:  ii.prefix,
		counter: ii.counter,
		issued:  make(map[string]string, len(ii.issued)),
		history: append([]string(nil), ii.history...),
	}
	for k, v := range ii.issued {
		dup.issued[k] = v
	}
	return dup
}
