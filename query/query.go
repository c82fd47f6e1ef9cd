package query

import (
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	"github.com/jonwraymond/gqlcache/fetch"
	"github.com/jonwraymond/gqlcache/normalize"
	"github.com/jonwraymond/gqlcache/record"
)

// Errors returned by Parse.
var (
	// ErrSyntax wraps gqlparser syntax errors.
	ErrSyntax = errors.New("query: syntax error")

	// ErrOperationNotFound indicates no operation matches the requested name.
	ErrOperationNotFound = errors.New("query: operation not found")

	// ErrUnknownFragment indicates a spread of an undefined fragment.
	ErrUnknownFragment = errors.New("query: unknown fragment")

	// ErrInvalidArgument indicates an argument value could not be evaluated.
	ErrInvalidArgument = errors.New("query: invalid argument value")
)

// Operation is a parsed operation ready to be executed.
type Operation struct {
	// Name is the operation name; empty for anonymous operations.
	Name string

	// Type is the operation type.
	Type ast.Operation

	// RootKey is the root record the operation reads and writes.
	RootKey record.Key

	// Selections is the flattened selection set.
	Selections normalize.SelectionSet

	// Variables are the request variables with declared defaults applied.
	Variables map[string]any
}

// Option configures Parse.
type Option func(*parseOptions)

type parseOptions struct {
	omitTypename bool
}

// WithoutTypename keeps object selections exactly as written. Objects whose
// response then lacks __typename get no identity and are embedded in their
// parent record unless their field carries a static type.
func WithoutTypename() Option {
	return func(o *parseOptions) {
		o.omitTypename = true
	}
}

// Parse parses source and returns the operation named operationName. An empty
// name selects the only operation of the document.
//
// Every object selection that lacks __typename gets one, so the cache key
// resolver sees the concrete type of each object. WithoutTypename turns this
// off.
func Parse(source, operationName string, variables map[string]any, opts ...Option) (*Operation, error) {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}

	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	def := doc.Operations.ForName(operationName)
	if def == nil {
		if operationName == "" {
			return nil, fmt.Errorf("%w: document has %d operations, a name is required", ErrOperationNotFound, len(doc.Operations))
		}
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationName)
	}

	vars, err := applyDefaults(def.VariableDefinitions, variables)
	if err != nil {
		return nil, err
	}

	c := &collector{doc: doc, vars: vars, opts: o}
	sel, err := c.collect(def.SelectionSet, map[string]bool{})
	if err != nil {
		return nil, err
	}

	return &Operation{
		Name:       def.Name,
		Type:       def.Operation,
		RootKey:    rootKey(def.Operation),
		Selections: sel,
		Variables:  vars,
	}, nil
}

// Request builds a fetch request for the operation.
func (op *Operation) Request(policy fetch.Policy) fetch.Request {
	return fetch.Request{
		OperationName: op.Name,
		RootKey:       op.RootKey,
		Selections:    op.Selections,
		Variables:     op.Variables,
		Policy:        policy,
	}
}

func rootKey(op ast.Operation) record.Key {
	switch op {
	case ast.Mutation:
		return record.MutationRoot
	case ast.Subscription:
		return record.SubscriptionRoot
	default:
		return record.QueryRoot
	}
}

// applyDefaults returns a copy of vars with declared default values filled in
// for variables the caller did not provide.
func applyDefaults(defs ast.VariableDefinitionList, vars map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(vars)+len(defs))
	for k, v := range vars {
		out[k] = record.CloneTree(v)
	}
	for _, def := range defs {
		if _, ok := out[def.Variable]; ok || def.DefaultValue == nil {
			continue
		}
		v, err := def.DefaultValue.Value(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: default of $%s: %v", ErrInvalidArgument, def.Variable, err)
		}
		out[def.Variable] = v
	}
	return out, nil
}
