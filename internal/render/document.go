// Package render serializes graph statements into Graphviz documents and
// turns those documents into files and images.
package render

import (
	"strings"

	"github.com/danielolaszy/jiragraph/internal/graph"
)

// Document returns the compact single-line form written to .gv files and sent
// to image engines.
func Document(statements []graph.Statement, shape string) string {
	return "digraph{node [shape=" + shape + "];" + join(statements, ";") + "}"
}

// Pretty returns the multi-line form printed to the terminal.
func Pretty(statements []graph.Statement, shape string) string {
	return "digraph{\nnode [shape=" + shape + "];\n\n" + join(statements, ";\n") + "\n}"
}

func join(statements []graph.Statement, sep string) string {
	texts := make([]string, len(statements))
	for i, s := range statements {
		texts[i] = s.String()
	}
	return strings.Join(texts, sep)
}
