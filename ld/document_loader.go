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
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"sync"
	"time"

	"github.com/pquerna/cachecontrol"
)

const (
	// An HTTP Accept header that prefers JSON-LD but tolerates anything.
	acceptHeader = "application/ld+json, application/json;q=0.9, application/javascript;q=0.5, text/javascript;q=0.5, text/plain;q=0.2, */*;q=0.1"

	ApplicationJSONLDType = "application/ld+json"

	// JSON-LD link header rel
	linkHeaderRel = "http://www.w3.org/ns/json-ld#context"
)

// RemoteDocument is a document retrieved from a remote source.
type RemoteDocument struct {
	DocumentURL string
	Document    interface{}
	ContextURL  string
}

// DocumentLoader knows how to load remote documents.
type DocumentLoader interface {
	LoadDocument(u string) (*RemoteDocument, error)
}

// DocumentFromReader returns a document containing the contents of the JSON resource,
// streamed from the given Reader.
func DocumentFromReader(r io.Reader) (interface{}, error) {
	var document interface{}
	dec := json.NewDecoder(r)

	// If dec.UseNumber() were invoked here, all numbers would be decoded as json.Number.
	// This package supports both the default and json.Number decoding modes.

	if err := dec.Decode(&document); err != nil {
		return nil, NewJsonLdError(LoadingDocumentFailed, err)
	}
	return document, nil
}

// loadDocumentFromFile reads a JSON document from the local filesystem,
// the fallback for URLs with a non-HTTP scheme.
func loadDocumentFromFile(path string) (*RemoteDocument, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, NewJsonLdError(LoadingDocumentFailed, err)
	}
	defer file.Close()

	doc, err := DocumentFromReader(file)
	if err != nil {
		return nil, err
	}
	return &RemoteDocument{DocumentURL: path, Document: doc}, nil
}

// fetchJSONLD issues the GET request both HTTP loaders share. The caller
// owns the response body. The request is returned alongside so cache
// policies can be evaluated against it.
func fetchJSONLD(client *http.Client, u string) (*http.Request, *http.Response, error) {
	req, err := http.NewRequest("GET", u, http.NoBody)
	if err != nil {
		return nil, nil, NewJsonLdError(LoadingDocumentFailed, err)
	}
	// We prefer application/ld+json, but fall back to application/json
	// or whatever is available
	req.Header.Add("Accept", acceptHeader)

	res, err := client.Do(req)
	if err != nil {
		return nil, nil, NewJsonLdError(LoadingDocumentFailed, err)
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, nil, NewJsonLdError(LoadingDocumentFailed,
			fmt.Sprintf("Bad response status code: %d", res.StatusCode))
	}
	return req, res, nil
}

// singleContextLink extracts the one allowed JSON-LD context link; two or
// more of them is an error in its own right.
func singleContextLink(links map[string][]map[string]string) (string, error) {
	contextLinks := links[linkHeaderRel]
	switch len(contextLinks) {
	case 0:
		return "", nil
	case 1:
		return contextLinks[0]["target"], nil
	default:
		return "", NewJsonLdError(MultipleContextLinkHeaders, nil)
	}
}

// alternateJSONLDLink returns the target of a rel=alternate link pointing
// at an application/ld+json rendition, when the response itself isn't
// JSON; the caller should load that target instead.
func alternateJSONLDLink(links map[string][]map[string]string, contentType string) string {
	alternates := links["alternate"]
	if len(alternates) > 0 && alternates[0]["type"] == ApplicationJSONLDType &&
		!rApplicationJSON.MatchString(contentType) {
		return alternates[0]["target"]
	}
	return ""
}

func isPlainJSONType(contentType string) bool {
	return contentType == "application/json" || rApplicationJSON.MatchString(contentType)
}

// DefaultDocumentLoader is a standard implementation of DocumentLoader
// which can retrieve documents via HTTP.
type DefaultDocumentLoader struct {
	httpClient *http.Client
}

// NewDefaultDocumentLoader creates a new instance of DefaultDocumentLoader.
func NewDefaultDocumentLoader(httpClient *http.Client) *DefaultDocumentLoader {
	rval := &DefaultDocumentLoader{httpClient: httpClient}
	if rval.httpClient == nil {
		rval.httpClient = http.DefaultClient
	}
	return rval
}

// LoadDocument returns a RemoteDocument containing the contents of the
// JSON resource from the given URL.
func (dl *DefaultDocumentLoader) LoadDocument(u string) (*RemoteDocument, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return nil, NewJsonLdError(LoadingDocumentFailed, fmt.Sprintf("error parsing URL: %s", u))
	}
	if scheme := parsedURL.Scheme; scheme != "http" && scheme != "https" {
		return loadDocumentFromFile(u)
	}

	_, res, err := fetchJSONLD(dl.httpClient, u)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	remoteDoc := &RemoteDocument{DocumentURL: res.Request.URL.String()}
	contentType := res.Header.Get("Content-Type")

	if linkHeader := res.Header.Get("Link"); linkHeader != "" {
		links := ParseLinkHeader(linkHeader)

		// a context link header only applies to plain JSON responses
		if contentType != ApplicationJSONLDType && isPlainJSONType(contentType) {
			if remoteDoc.ContextURL, err = singleContextLink(links); err != nil {
				return nil, err
			}
		}
		if alt := alternateJSONLDLink(links, contentType); alt != "" {
			return dl.LoadDocument(Resolve(u, alt))
		}
	}

	if remoteDoc.Document, err = DocumentFromReader(res.Body); err != nil {
		return nil, err
	}
	return remoteDoc, nil
}

var rSplitOnComma = regexp.MustCompile("(?:<[^>]*?>|\"[^\"]*?\"|[^,])+")
var rLinkHeader = regexp.MustCompile(`\s*<([^>]*?)>\s*(?:;\s*(.*))?`)
var rApplicationJSON = regexp.MustCompile(`^application/(\w*\+)?json$`)
var rParams = regexp.MustCompile("(.*?)=(?:(?:\"([^\"]*?)\")|([^\"]*?))\\s*(?:(?:;\\s*)|$)")

// ParseLinkHeader parses a link header. The results will be keyed by the value of "rel".
//
//	Link: <http://json-ld.org/contexts/person.jsonld>; \
//	  rel="http://www.w3.org/ns/json-ld#context"; type="application/ld+json"
//
//	Parses as: {
//	  'http://www.w3.org/ns/json-ld#context': {
//	    target: http://json-ld.org/contexts/person.jsonld,
//	    rel:    http://www.w3.org/ns/json-ld#context
//	  }
//	}
//
// If there is more than one "rel" with the same IRI, then entries in the
// resulting map for that "rel" will be lists.
func ParseLinkHeader(header string) map[string][]map[string]string {
	links := make(map[string][]map[string]string)

	// split on commas outside of brackets and quotes
	for _, entry := range rSplitOnComma.FindAllString(header, -1) {
		match := rLinkHeader.FindStringSubmatch(entry)
		if match == nil {
			continue
		}

		link := map[string]string{"target": match[1]}
		for _, param := range rParams.FindAllStringSubmatch(match[2], -1) {
			if param[2] != "" {
				link[param[1]] = param[2]
			} else {
				link[param[1]] = param[3]
			}
		}

		rel := link["rel"]
		links[rel] = append(links[rel], link)
	}
	return links
}

// CachingDocumentLoader is an overlay on top of a DocumentLoader instance
// which caches every document the underlying loader retrieves. It may also
// be preloaded with documents, which is useful for testing.
//
// A single instance is shared between goroutines invoking the processor
// concurrently, so the cache is guarded by a RWMutex: reads (the common
// case, once the cache is warm) take the read lock, and only a miss
// promotes to a write lock for the fill.
type CachingDocumentLoader struct {
	nextLoader DocumentLoader
	mu         sync.RWMutex
	cache      map[string]*RemoteDocument
}

// NewCachingDocumentLoader creates a new instance of CachingDocumentLoader.
func NewCachingDocumentLoader(nextLoader DocumentLoader) *CachingDocumentLoader {
	return &CachingDocumentLoader{
		nextLoader: nextLoader,
		cache:      make(map[string]*RemoteDocument),
	}
}

// LoadDocument returns a RemoteDocument containing the contents of the
// JSON resource from the given URL, consulting the cache first.
func (cdl *CachingDocumentLoader) LoadDocument(u string) (*RemoteDocument, error) {
	cdl.mu.RLock()
	doc, cached := cdl.cache[u]
	cdl.mu.RUnlock()
	if cached {
		log.WithField("url", u).Debug("document loader cache hit")
		return doc, nil
	}

	doc, err := cdl.nextLoader.LoadDocument(u)
	if err != nil {
		return nil, err
	}

	cdl.mu.Lock()
	cdl.cache[u] = doc
	cdl.mu.Unlock()
	log.WithField("url", u).Debug("document loader cache fill")
	return doc, nil
}

// AddDocument populates the cache with the given document (doc) for the provided URL (u).
func (cdl *CachingDocumentLoader) AddDocument(u string, doc interface{}) {
	cdl.mu.Lock()
	defer cdl.mu.Unlock()
	cdl.cache[u] = &RemoteDocument{DocumentURL: u, Document: doc}
}

// PreloadWithMapping populates the cache with a number of documents which may be loaded
// from a location different from the original URL (most importantly, from local files).
//
// Example:
//
//	l.PreloadWithMapping(map[string]string{
//	    "http://www.example.com/context.json": "/home/me/cache/example_com_context.json",
//	})
func (cdl *CachingDocumentLoader) PreloadWithMapping(urlMap map[string]string) error {
	for srcURL, mappedURL := range urlMap {
		doc, err := cdl.nextLoader.LoadDocument(mappedURL)
		if err != nil {
			return err
		}
		cdl.mu.Lock()
		cdl.cache[srcURL] = doc
		cdl.mu.Unlock()
	}
	return nil
}

type cachedRemoteDocument struct {
	remoteDocument *RemoteDocument
	expireTime     time.Time
	neverExpires   bool
}

// RFC7324CachingDocumentLoader respects RFC7324 caching headers in order
// to cache effectively. The cache map is guarded by a RWMutex for the
// same reason as CachingDocumentLoader's: lookups vastly outnumber fills
// once a loader has warmed up against a fixed set of contexts.
type RFC7324CachingDocumentLoader struct {
	httpClient *http.Client
	mu         sync.RWMutex
	cache      map[string]*cachedRemoteDocument
}

// NewRFC7324CachingDocumentLoader creates a new RFC7324CachingDocumentLoader.
func NewRFC7324CachingDocumentLoader(httpClient *http.Client) *RFC7324CachingDocumentLoader {
	rval := &RFC7324CachingDocumentLoader{
		httpClient: httpClient,
		cache:      make(map[string]*cachedRemoteDocument),
	}
	if httpClient == nil {
		rval.httpClient = http.DefaultClient
	}
	return rval
}

// store commits one cache entry under the write lock.
func (rcdl *RFC7324CachingDocumentLoader) store(u string, entry *cachedRemoteDocument) {
	rcdl.mu.Lock()
	rcdl.cache[u] = entry
	rcdl.mu.Unlock()
	log.WithField("url", u).Debug("RFC7234 document loader cache fill")
}

// LoadDocument returns a RemoteDocument containing the contents of the
// JSON resource from the given URL, honoring any unexpired cache entry
// and the response's cacheability when deciding whether to keep it.
func (rcdl *RFC7324CachingDocumentLoader) LoadDocument(u string) (*RemoteDocument, error) {
	rcdl.mu.RLock()
	entry, cached := rcdl.cache[u]
	rcdl.mu.RUnlock()
	if cached && (entry.neverExpires || entry.expireTime.After(time.Now())) {
		log.WithField("url", u).Debug("RFC7234 document loader cache hit")
		return entry.remoteDocument, nil
	}

	parsedURL, err := url.Parse(u)
	if err != nil {
		return nil, NewJsonLdError(LoadingDocumentFailed, fmt.Sprintf("error parsing URL: %s", u))
	}
	if scheme := parsedURL.Scheme; scheme != "http" && scheme != "https" {
		remoteDoc, err := loadDocumentFromFile(u)
		if err != nil {
			return nil, err
		}
		// local files don't change out from under us
		rcdl.store(u, &cachedRemoteDocument{remoteDocument: remoteDoc, neverExpires: true})
		return remoteDoc, nil
	}

	req, res, err := fetchJSONLD(rcdl.httpClient, u)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	remoteDoc := &RemoteDocument{DocumentURL: res.Request.URL.String()}
	contentType := res.Header.Get("Content-Type")

	if linkHeader := res.Header.Get("Link"); linkHeader != "" {
		links := ParseLinkHeader(linkHeader)

		if contentType != ApplicationJSONLDType {
			if remoteDoc.ContextURL, err = singleContextLink(links); err != nil {
				return nil, err
			}
		}
		if alt := alternateJSONLDLink(links, contentType); alt != "" {
			alternateDoc, err := rcdl.LoadDocument(Resolve(u, alt))
			if err != nil {
				return nil, NewJsonLdError(LoadingDocumentFailed, err)
			}
			remoteDoc = alternateDoc
		}
	}

	reasons, expireTime, ccErr := cachecontrol.CachableResponse(req, res, cachecontrol.Options{})
	cacheable := ccErr == nil && len(reasons) == 0

	if remoteDoc.Document == nil {
		if remoteDoc.Document, err = DocumentFromReader(res.Body); err != nil {
			return nil, err
		}
	}

	if cacheable {
		rcdl.store(u, &cachedRemoteDocument{remoteDocument: remoteDoc, expireTime: expireTime})
	}
	return remoteDoc, nil
}
