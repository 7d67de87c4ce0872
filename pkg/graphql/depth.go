package graphql

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql/language/ast"
	"github.com/graphql-go/graphql/language/parser"
)

// queryDepth is the deepest chain of fields with selection sets
func queryDepth(document *ast.Document) int {
	fragments := make(map[string]*ast.FragmentDefinition)
	for _, definition := range document.Definitions {
		if frag, ok := definition.(*ast.FragmentDefinition); ok {
			fragments[frag.Name.Value] = frag
		}
	}

	maxDepth := 0
	for _, definition := range document.Definitions {
		if op, ok := definition.(*ast.OperationDefinition); ok {
			if d := selectionDepth(op.SelectionSet, 1, fragments, map[string]bool{}); d > maxDepth {
				maxDepth = d
			}
		}
	}
	return maxDepth
}

func selectionDepth(set *ast.SelectionSet, current int, fragments map[string]*ast.FragmentDefinition, seen map[string]bool) int {
	if set == nil {
		return current
	}
	maxDepth := current
	for _, selection := range set.Selections {
		var d int
		switch sel := selection.(type) {
		case *ast.Field:
			if strings.HasPrefix(sel.Name.Value, "__") || sel.SelectionSet == nil {
				continue
			}
			d = selectionDepth(sel.SelectionSet, current+1, fragments, seen)
		case *ast.InlineFragment:
			d = selectionDepth(sel.SelectionSet, current, fragments, seen)
		case *ast.FragmentSpread:
			name := sel.Name.Value
			frag, ok := fragments[name]
			if !ok || seen[name] {
				continue
			}
			seen[name] = true
			d = selectionDepth(frag.SelectionSet, current, fragments, seen)
			delete(seen, name)
		}
		if d > maxDepth {
			maxDepth = d
		}
	}
	return maxDepth
}

// ValidateQueryDepth rejects queries nested deeper than maxDepth
func ValidateQueryDepth(query string, maxDepth int) error {
	document, err := parser.Parse(parser.ParseParams{Source: query})
	if err != nil {
		return fmt.Errorf("failed to parse query: %w", err)
	}
	if depth := queryDepth(document); depth > maxDepth {
		return fmt.Errorf("query depth %d exceeds maximum allowed depth %d", depth, maxDepth)
	}
	return nil
}
