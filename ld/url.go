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
	"net/url"
	"regexp"
	"strings"
)

// JsonLdUrl is a URL broken into the individual components IRI
// resolution/relativization (RemoveBase, Resolve) needs to compare and
// rebuild paths piece by piece, rather than treating a URL as an opaque
// string.
type JsonLdUrl struct { //nolint:stylecheck
	Href      string
	Protocol  string
	Host      string
	Auth      string
	User      string
	Password  string
	Hostname  string
	Port      string
	Relative  string
	Path      string
	Directory string
	File      string
	Query     string
	Hash      string

	// derived fields, not populated directly by urlPattern
	Pathname       string
	NormalizedPath string
	Authority      string
}

var urlPattern = regexp.MustCompile(`^(?:([^:/?#]+):)?(?://((?:(([^:@]*)(?::([^:@]*))?)?@)?([^:/?#]*)(?::(\d*))?))?((((?:[^?#/]*/)*)([^?#]*))(?:\?([^#]*))?(?:#(.*))?)`)

// ParseURL splits urlStr into a JsonLdUrl, filling in each capture group
// urlPattern finds and then deriving the normalized path and authority from
// those pieces.
func ParseURL(urlStr string) *JsonLdUrl {
	parsed := JsonLdUrl{Href: urlStr}

	if !urlPattern.MatchString(urlStr) {
		return &parsed
	}

	groups := urlPattern.FindStringSubmatch(urlStr)
	fields := []*string{
		&parsed.Protocol, &parsed.Host, &parsed.Auth, &parsed.User, &parsed.Password,
		&parsed.Hostname, &parsed.Port, &parsed.Relative, &parsed.Path, &parsed.Directory,
		&parsed.File, &parsed.Query, &parsed.Hash,
	}
	for i, field := range fields {
		if match := groups[i+1]; match != "" {
			*field = match
		}
	}

	// normalize to the Node.js url module's convention of a non-empty path
	// whenever a host is present
	if parsed.Host != "" && parsed.Path == "" {
		parsed.Path = "/"
	}

	parsed.Pathname = parsed.Path
	deriveAuthority(&parsed)
	parsed.NormalizedPath = removeDotSegments(parsed.Pathname, parsed.Authority != "")
	if parsed.Query != "" {
		parsed.Path += "?" + parsed.Query
	}
	if parsed.Protocol != "" {
		parsed.Protocol += ":"
	}
	if parsed.Hash != "" {
		parsed.Hash = "#" + parsed.Hash
	}

	return &parsed
}

// removeDotSegments implements RFC 3986 5.2.4's dot-segment removal over a
// path that has already been split on "/", rather than processing the
// buffer character by character as the RFC's pseudocode does.
func removeDotSegments(path string, hasAuthority bool) string {
	var out []byte
	if strings.HasPrefix(path, "/") {
		out = append(out, '/')
	}

	segments := strings.Split(path, "/")
	kept := make([]string, 0, len(segments))
	for i, segment := range segments {
		switch {
		case segment == "." || (segment == "" && len(segments)-i > 1):
			continue
		case segment == "..":
			if hasAuthority || (len(kept) > 0 && kept[len(kept)-1] != "..") {
				if len(kept) > 0 {
					kept = kept[:len(kept)-1]
				}
			} else {
				kept = append(kept, "..")
			}
		default:
			kept = append(kept, segment)
		}
	}

	if len(kept) > 0 {
		out = append(out, kept[0]...)
		for _, segment := range kept[1:] {
			out = append(out, '/')
			out = append(out, segment...)
		}
	}
	return string(out)
}

// RemoveBase relativizes iri against baseobj (a string or a *JsonLdUrl),
// returning the shortest relative reference that Resolve would map back to
// iri given the same base.
func RemoveBase(baseobj interface{}, iri string) string {
	if baseobj == nil {
		return iri
	}

	var base *JsonLdUrl
	if baseStr, isString := baseobj.(string); isString {
		base = ParseURL(baseStr)
	} else {
		base = baseobj.(*JsonLdUrl)
	}

	root := ""
	if base.Href != "" {
		root += base.Protocol + "//" + base.Authority
	} else if !strings.HasPrefix(iri, "//") {
		// a network-path reference against an empty base still needs a root
		root += "//"
	}

	if !strings.HasPrefix(iri, root) {
		// iri isn't relative to base at all
		return iri
	}

	rel := ParseURL(iri[len(root):])

	baseSegments := strings.Split(base.NormalizedPath, "/")
	iriSegments := strings.Split(rel.NormalizedPath, "/")

	keepLast := 1
	if len(rel.Hash) > 0 || len(rel.Query) > 0 {
		keepLast = 0
	}

	for len(baseSegments) > 0 && len(iriSegments) > keepLast && baseSegments[0] == iriSegments[0] {
		baseSegments = baseSegments[1:]
		iriSegments = iriSegments[1:]
	}

	var out strings.Builder

	if len(baseSegments) > 0 {
		// the trailing base segment only counts if it's itself a directory
		// (ends in '/'); an empty leading segment just means base started
		// with '/' and shouldn't be counted either
		if !strings.HasSuffix(base.NormalizedPath, "/") || baseSegments[0] == "" {
			baseSegments = baseSegments[:len(baseSegments)-1]
		}
		for range baseSegments {
			out.WriteString("../")
		}
	}

	if len(iriSegments) > 0 {
		out.WriteString(iriSegments[0])
	}
	for _, segment := range iriSegments[1:] {
		out.WriteString("/")
		out.WriteString(segment)
	}

	if rel.Query != "" {
		out.WriteString("?")
		out.WriteString(rel.Query)
	}
	if rel.Hash != "" {
		out.WriteString(rel.Hash)
	}

	result := out.String()
	if result == "" {
		result = "./"
	}

	return result
}

// Resolve resolves pathToResolve against baseURI and returns a full URI,
// handling the bare query-string case specially since Go's net/url treats
// "?foo" as a path-less reference rather than a query replacement.
func Resolve(baseURI string, pathToResolve string) string {
	if baseURI == "" {
		return pathToResolve
	}
	if strings.TrimSpace(pathToResolve) == "" {
		return baseURI
	}

	base, _ := url.Parse(baseURI)

	if strings.HasPrefix(pathToResolve, "?") {
		base.Fragment = ""
		base.RawQuery = pathToResolve[1:]
		return base.String()
	}

	ref, _ := url.Parse(pathToResolve)
	resolved := base.ResolveReference(ref)
	if resolved.Path != "" {
		// net/url doesn't discard unnecessary dot segments on its own
		resolved.Path = removeDotSegments(resolved.Path, true)
	}
	return resolved.String()
}

// deriveAuthority fills in parsed.Authority, handling the network-path
// reference case ("//host/path" with no scheme) where urlPattern can't
// separate host from path on its own and the split has to happen here.
func deriveAuthority(parsed *JsonLdUrl) {
	if !strings.Contains(parsed.Href, ":") && strings.HasPrefix(parsed.Href, "//") && parsed.Host == "" {
		parsed.Pathname = parsed.Pathname[2:]
		if idx := strings.Index(parsed.Pathname, "/"); idx == -1 {
			parsed.Authority = parsed.Pathname
			parsed.Pathname = ""
		} else {
			parsed.Authority = parsed.Pathname[:idx]
			parsed.Pathname = parsed.Pathname[idx:]
		}
		return
	}

	// the Host capture already spans any userinfo, so it is the authority
	parsed.Authority = parsed.Host
}
