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
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// NQuadRDFSerializer reads and writes RDF datasets in the N-Quads line
// format.
type NQuadRDFSerializer struct {
}

// Parse reads N-Quads from input (an io.Reader, []byte, or string) into an
// RDFDataset.
func (s *NQuadRDFSerializer) Parse(input interface{}) (*RDFDataset, error) {
	return ParseNQuadsFrom(input)
}

// SerializeTo writes dataset to w as N-Quads, one line per quad.
func (s *NQuadRDFSerializer) SerializeTo(w io.Writer, dataset *RDFDataset) error {
	for graphName, triples := range dataset.Graphs {
		if graphName == "@default" {
			graphName = ""
		}
		for _, triple := range triples {
			line := formatQuadLine(triple, graphName)
			if _, err := fmt.Fprint(w, line); err != nil {
				return NewJsonLdError(IOError, err)
			}
		}
	}
	return nil
}

// Serialize renders dataset as a single N-Quads string.
func (s *NQuadRDFSerializer) Serialize(dataset *RDFDataset) (interface{}, error) {
	var buf bytes.Buffer
	if err := s.SerializeTo(&buf, dataset); err != nil {
		return nil, err
	}
	return buf.String(), nil
}

// formatQuadLine renders one triple as a single N-Quads line, terminated
// with " .\n", including the graph name term when graphName isn't the
// default graph.
func formatQuadLine(triple *Quad, graphName string) string {
	var line strings.Builder

	writeTerm(&line, triple.Subject)
	line.WriteString(" ")
	writeTerm(&line, triple.Predicate)
	line.WriteString(" ")
	writeTerm(&line, triple.Object)

	if graphName != "" {
		line.WriteString(" ")
		if strings.HasPrefix(graphName, "_:") {
			line.WriteString(graphName)
		} else {
			line.WriteString("<" + nquadEscape(graphName) + ">")
		}
	}

	line.WriteString(" .\n")
	return line.String()
}

// writeTerm appends n's N-Quads textual form: an IRI in angle brackets, a
// blank node label as-is, or a quoted literal with its language tag or
// datatype IRI suffix.
func writeTerm(w *strings.Builder, n Node) {
	switch {
	case IsIRI(n):
		w.WriteString("<" + nquadEscape(n.GetValue()) + ">")
	case IsBlankNode(n):
		w.WriteString(n.GetValue())
	default:
		literal := n.(*Literal)
		w.WriteString("\"" + nquadEscape(literal.GetValue()) + "\"")
		switch {
		case literal.Datatype == RDFLangString:
			w.WriteString("@" + literal.Language)
		case literal.Datatype != XSDString:
			w.WriteString("^^<" + nquadEscape(literal.Datatype) + ">")
		}
	}
}

func nquadUnescape(str string) string {
	replacer := strings.NewReplacer(
		`\\`, `\`,
		`\"`, `"`,
		`\n`, "\n",
		`\r`, "\r",
		`\t`, "\t",
	)
	return replacer.Replace(str)
}

func nquadEscape(str string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
		"\t", `\t`,
	)
	return replacer.Replace(str)
}

// Grammar fragments for the N-Quads line regex, following
// https://www.w3.org/TR/turtle/#grammar-production-BLANK_NODE_LABEL for the
// blank node label production.
const (
	optionalSpace = "[ \\t]*"
	requiredSpace = "[ \\t]+"
	iriTerm       = "(?:<([^:]+:[^>]*)>)"

	pnCharsBase = "A-Z" + "a-z" +
		"\u00C0-\u00D6" +
		"\u00D8-\u00F6" +
		"\u00F8-\u02FF" +
		"\u0370-\u037D" +
		"\u037F-\u1FFF" +
		"\u200C-\u200D" +
		"\u2070-\u218F" +
		"\u2C00-\u2FEF" +
		"\u3001-\uD7FF" +
		"\uF900-\uFDCF" +
		"\uFDF0-\uFFFD"
	// the supplementary-plane range \u10000-\uEFFFF isn't representable in
	// a Go regexp character class and is left out, matching upstream

	pnCharsU = pnCharsBase + "_"

	pnChars = pnCharsU +
		"0-9" +
		"-" +
		"\u00B7" +
		"\u0300-\u036F" +
		"\u203F-\u2040"

	blankNodeTerm = "(_:" +
		"(?:[" + pnCharsU + "0-9])" +
		"(?:(?:[" + pnChars + ".])*(?:[" + pnChars + "]))?" +
		")"

	plainLiteral = "\"([^\"\\\\]*(?:\\\\.[^\"\\\\]*)*)\""
	datatypeTerm = "(?:\\^\\^" + iriTerm + ")"
	languageTerm = "(?:@([a-z]+(?:-[a-zA-Z0-9]+)*))"
	literalTerm  = "(?:" + plainLiteral + "(?:" + datatypeTerm + "|" + languageTerm + ")?)"

	subjectTerm  = "(?:" + iriTerm + "|" + blankNodeTerm + ")" + requiredSpace
	propertyTerm = iriTerm + requiredSpace
	objectTerm   = "(?:" + iriTerm + "|" + blankNodeTerm + "|" + literalTerm + ")" + optionalSpace
	graphTerm    = "(?:\\.|(?:(?:" + iriTerm + "|" + blankNodeTerm + ")" + optionalSpace + "\\.))"
)

var blankLinePattern = regexp.MustCompile("^" + optionalSpace + "$")

var quadLinePattern = regexp.MustCompile("^" + optionalSpace + subjectTerm + propertyTerm + objectTerm + graphTerm + optionalSpace + "$") //nolint:gocritic

// lineScanner is the minimal surface ParseNQuadsFrom needs from either
// bufio.Scanner (for an io.Reader source) or bytesLineScanner (for an
// in-memory source), so both can share the same scan loop.
type lineScanner interface {
	Bytes() []byte
	Scan() bool
	Err() error
}

// bytesLineScanner scans lines out of an in-memory byte slice using the
// same line-splitting rules as bufio.ScanLines, without the overhead of
// wrapping the slice in a bytes.Reader first.
type bytesLineScanner struct {
	err     error
	data    []byte
	pos     int
	current []byte
}

func (ls *bytesLineScanner) Err() error { return ls.err }

func (ls *bytesLineScanner) Scan() bool {
	if ls.err != nil || ls.pos >= len(ls.data) {
		return false
	}
	advance, token, err := bufio.ScanLines(ls.data[ls.pos:], true)
	if err != nil {
		ls.err = err
		return false
	}
	ls.current = token
	ls.pos += advance
	return true
}

func (ls *bytesLineScanner) Bytes() []byte {
	return ls.current
}

func newScannerFor(o interface{}) (lineScanner, error) {
	switch src := o.(type) {
	case []byte:
		return &bytesLineScanner{data: src}, nil
	case string:
		return &bytesLineScanner{data: []byte(src)}, nil
	case io.Reader:
		return bufio.NewScanner(src), nil
	default:
		return nil, NewJsonLdError(InvalidInput, "expected []byte, string or io.Reader")
	}
}

// ParseNQuadsFrom parses N-Quads from an io.Reader, []byte, or string into
// an RDFDataset, deduplicating triples within each graph as they're added.
func ParseNQuadsFrom(o interface{}) (*RDFDataset, error) {
	dataset := NewRDFDataset()

	scanner, err := newScannerFor(o)
	if err != nil {
		return nil, err
	}

	lineNumber := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		lineNumber++

		if blankLinePattern.Match(line) {
			continue
		}

		if !quadLinePattern.Match(line) {
			return nil, NewJsonLdError(SyntaxError, fmt.Errorf("error while parsing N-Quads; invalid quad. line: %d", lineNumber))
		}
		match := quadLinePattern.FindStringSubmatch(string(line))

		var subject Node
		if match[1] != "" {
			subject = NewIRI(nquadUnescape(match[1]))
		} else {
			subject = NewBlankNode(nquadUnescape(match[2]))
		}

		predicate := NewIRI(nquadUnescape(match[3]))

		var object Node
		switch {
		case match[4] != "":
			object = NewIRI(nquadUnescape(match[4]))
		case match[5] != "":
			object = NewBlankNode(nquadUnescape(match[5]))
		default:
			language := nquadUnescape(match[8])
			var datatype string
			switch {
			case match[7] != "":
				datatype = nquadUnescape(match[7])
			case match[8] != "":
				datatype = RDFLangString
			default:
				datatype = XSDString
			}
			object = NewLiteral(nquadUnescape(match[6]), datatype, language)
		}

		// '@default' names the default graph; a quad with no graph term
		// belongs there
		graphName := "@default"
		if match[9] != "" {
			graphName = nquadUnescape(match[9])
		} else if match[10] != "" {
			graphName = nquadUnescape(match[10])
		}

		quad := NewQuad(subject, predicate, object, graphName)

		triples, present := dataset.Graphs[graphName]
		if !present {
			dataset.Graphs[graphName] = []*Quad{quad}
			continue
		}

		duplicate := false
		for _, existing := range triples {
			if quad.Equal(existing) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			dataset.Graphs[graphName] = append(triples, quad)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, NewJsonLdError(IOError, err)
	}

	return dataset, nil
}

// ParseNQuads parses N-Quads text into an RDFDataset.
func ParseNQuads(input string) (*RDFDataset, error) {
	return ParseNQuadsFrom(input)
}
