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
	"fmt"
)

// ErrorCode is one of the error conditions the JSON-LD 1.1 API enumerates,
// plus a handful of codes for failures (I/O, parsing) the API spec leaves
// to the implementation.
type ErrorCode string

// Document and remote-context loading.
const (
	LoadingDocumentFailed      ErrorCode = "loading document failed"
	LoadingRemoteContextFailed ErrorCode = "loading remote context failed"
	MultipleContextLinkHeaders ErrorCode = "multiple context link headers"
	RecursiveContextInclusion  ErrorCode = "recursive context inclusion"
	InvalidRemoteContext       ErrorCode = "invalid remote context"
)

// Context processing and term definitions.
const (
	InvalidLocalContext         ErrorCode = "invalid local context"
	InvalidContextEntry         ErrorCode = "invalid context entry"
	InvalidBaseIRI              ErrorCode = "invalid base IRI"
	InvalidVocabMapping         ErrorCode = "invalid vocab mapping"
	InvalidDefaultLanguage      ErrorCode = "invalid default language"
	InvalidBaseDirection        ErrorCode = "invalid base direction"
	InvalidVersionValue         ErrorCode = "invalid @version value"
	InvalidImportValue          ErrorCode = "invalid @import value"
	InvalidPropagateValue       ErrorCode = "invalid @propagate value"
	InvalidPrefixValue          ErrorCode = "invalid @prefix value"
	ProcessingModeConflict      ErrorCode = "processing mode conflict"
	KeywordRedefinition         ErrorCode = "keyword redefinition"
	InvalidTermDefinition       ErrorCode = "invalid term definition"
	InvalidIRIMapping           ErrorCode = "invalid IRI mapping"
	CyclicIRIMapping            ErrorCode = "cyclic IRI mapping"
	InvalidKeywordAlias         ErrorCode = "invalid keyword alias"
	InvalidTypeMapping          ErrorCode = "invalid type mapping"
	InvalidLanguageMapping      ErrorCode = "invalid language mapping"
	InvalidReverseProperty      ErrorCode = "invalid reverse property"
	InvalidContainerMapping     ErrorCode = "invalid container mapping"
	InvalidNestValue            ErrorCode = "invalid @nest value"
	InvalidContextNullification ErrorCode = "invalid context nullification"
	ProtectedTermRedefinition   ErrorCode = "protected term redefinition"
)

// Expansion.
const (
	InvalidIDValue              ErrorCode = "invalid @id value"
	InvalidIndexValue           ErrorCode = "invalid @index value"
	InvalidTypeValue            ErrorCode = "invalid type value"
	InvalidValueObject          ErrorCode = "invalid value object"
	InvalidValueObjectValue     ErrorCode = "invalid value object value"
	InvalidLanguageTaggedString ErrorCode = "invalid language-tagged string"
	InvalidLanguageTaggedValue  ErrorCode = "invalid language-tagged value"
	InvalidLanguageMapValue     ErrorCode = "invalid language map value"
	InvalidTypedValue           ErrorCode = "invalid typed value"
	InvalidSetOrListObject      ErrorCode = "invalid set or list object"
	InvalidIncludedValue        ErrorCode = "invalid @included value"
	InvalidReverseValue         ErrorCode = "invalid @reverse value"
	InvalidReversePropertyMap   ErrorCode = "invalid reverse property map"
	InvalidReversePropertyValue ErrorCode = "invalid reverse property value"
	ListOfLists                 ErrorCode = "list of lists"
	CollidingKeywords           ErrorCode = "colliding keywords"
)

// Compaction and flattening.
const (
	CompactionToListOfLists ErrorCode = "compaction to list of lists"
	ConflictingIndexes      ErrorCode = "conflicting indexes"
	IRIConfusedWithPrefix   ErrorCode = "IRI confused with prefix"
)

// Conditions outside the API spec's taxonomy: I/O, wire-format parsing,
// and internal failures.
const (
	SyntaxError    ErrorCode = "syntax error"
	NotImplemented ErrorCode = "not implemnted"
	UnknownFormat  ErrorCode = "unknown format"
	InvalidInput   ErrorCode = "invalid input"
	ParseError     ErrorCode = "parse error"
	IOError        ErrorCode = "io error"
	UnknownError   ErrorCode = "unknown error"
)

// JsonLdError pairs an ErrorCode with whatever detail the failing
// algorithm had at hand: a message, the offending value, or a wrapped
// error from a collaborator.
type JsonLdError struct {
	Code    ErrorCode
	Details interface{}
}

// NewJsonLdError creates a new instance of JsonLdError.
func NewJsonLdError(code ErrorCode, details interface{}) *JsonLdError {
	return &JsonLdError{Code: code, Details: details}
}

func (e JsonLdError) Error() string {
	if e.Details == nil {
		return string(e.Code)
	}
	return fmt.Sprintf("%v: %v", e.Code, e.Details)
}

// Unwrap returns the underlying error stored in Details, if any, so that
// errors.Is/errors.As can see through a JsonLdError to the cause reported
// by a DocumentLoader or other collaborator.
func (e JsonLdError) Unwrap() error {
	if err, isErr := e.Details.(error); isErr {
		return err
	}
	return nil
}
