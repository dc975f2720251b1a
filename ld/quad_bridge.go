package ld

import (
	"strings"

	"github.com/cayleygraph/quad"
)

// ToCayleyQuads converts every quad in a graph of this dataset into
// cayleygraph/quad's wire representation, so the result of ToRDF can be fed
// straight into a Cayley-backed triple store without going through an
// intermediate N-Quads string.
//
// graphName selects which named graph to export; use "@default" for the
// default graph.
func (ds *RDFDataset) ToCayleyQuads(graphName string) []quad.Quad {
	quads := ds.GetQuads(graphName)
	result := make([]quad.Quad, 0, len(quads))
	for _, q := range quads {
		result = append(result, quad.Quad{
			Subject:   nodeToQuadValue(q.Subject),
			Predicate: nodeToQuadValue(q.Predicate),
			Object:    nodeToQuadValue(q.Object),
			Label:     labelToQuadValue(q.Graph),
		})
	}
	return result
}

// FromCayleyQuads builds an RDFDataset out of a slice of cayleygraph/quad
// quads: a quad labelled with an IRI or blank node goes into the graph of
// that name, any other quad into the default graph. It is the inverse of
// ToCayleyQuads and lets FromRDF accept data pulled out of a Cayley store.
func FromCayleyQuads(quads []quad.Quad) *RDFDataset {
	ds := NewRDFDataset()
	for _, q := range quads {
		graphName := "@default"
		if label, ok := q.Label.(quad.IRI); ok {
			graphName = string(label)
		} else if label, ok := q.Label.(quad.BNode); ok {
			graphName = label.String()
		}
		if _, present := ds.Graphs[graphName]; !present {
			ds.Graphs[graphName] = make([]*Quad, 0)
		}
		ds.Graphs[graphName] = append(ds.Graphs[graphName], NewQuad(
			quadValueToNode(q.Subject),
			quadValueToNode(q.Predicate),
			quadValueToNode(q.Object),
			graphName,
		))
	}
	return ds
}

func nodeToQuadValue(n Node) quad.Value {
	switch v := n.(type) {
	case *IRI:
		return quad.IRI(v.Value)
	case *BlankNode:
		// quad.BNode carries the bare label; its String() re-adds "_:"
		return quad.BNode(strings.TrimPrefix(v.Attribute, "_:"))
	case *Literal:
		switch {
		case v.Language != "":
			return quad.LangString{Value: quad.String(v.Value), Lang: v.Language}
		case v.Datatype != "" && v.Datatype != XSDString:
			return quad.TypedString{Value: quad.String(v.Value), Type: quad.IRI(v.Datatype)}
		default:
			return quad.String(v.Value)
		}
	default:
		return nil
	}
}

func labelToQuadValue(graph Node) quad.Value {
	if graph == nil {
		return nil
	}
	return nodeToQuadValue(graph)
}

func quadValueToNode(v quad.Value) Node {
	switch val := v.(type) {
	case quad.IRI:
		return NewIRI(string(val))
	case quad.BNode:
		return NewBlankNode(val.String())
	case quad.String:
		return NewLiteral(string(val), XSDString, "")
	case quad.TypedString:
		return NewLiteral(string(val.Value), string(val.Type), "")
	case quad.LangString:
		return NewLiteral(string(val.Value), RDFLangString, val.Lang)
	default:
		if val == nil {
			return nil
		}
		return NewLiteral(val.String(), XSDString, "")
	}
}
