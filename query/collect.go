package query

import (
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/jonwraymond/gqlcache/normalize"
)

const typenameField = "__typename"

// collector flattens gqlparser selection sets into normalize selections.
type collector struct {
	doc  *ast.QueryDocument
	vars map[string]any
	opts parseOptions
}

// collect flattens set, merging fields that share a response key. visited
// holds the fragments already expanded on the current path.
func (c *collector) collect(set ast.SelectionSet, visited map[string]bool) (normalize.SelectionSet, error) {
	var out fieldGroup
	if err := c.collectInto(&out, set, visited); err != nil {
		return nil, err
	}
	return out.fields, nil
}

func (c *collector) collectInto(out *fieldGroup, set ast.SelectionSet, visited map[string]bool) error {
	for _, selection := range set {
		switch sel := selection.(type) {
		case *ast.Field:
			include, err := c.included(sel.Directives)
			if err != nil {
				return err
			}
			if !include {
				continue
			}
			f, err := c.field(sel, visited)
			if err != nil {
				return err
			}
			out.add(f)

		case *ast.InlineFragment:
			include, err := c.included(sel.Directives)
			if err != nil {
				return err
			}
			if !include {
				continue
			}
			if err := c.collectInto(out, sel.SelectionSet, visited); err != nil {
				return err
			}

		case *ast.FragmentSpread:
			include, err := c.included(sel.Directives)
			if err != nil {
				return err
			}
			if !include || visited[sel.Name] {
				continue
			}
			def := c.doc.Fragments.ForName(sel.Name)
			if def == nil {
				return fmt.Errorf("%w: %q", ErrUnknownFragment, sel.Name)
			}
			visited[sel.Name] = true
			err = c.collectInto(out, def.SelectionSet, visited)
			delete(visited, sel.Name)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// field converts one field. Fragments on visited stay unexpanded below it,
// so cyclic spreads terminate.
func (c *collector) field(sel *ast.Field, visited map[string]bool) (normalize.Field, error) {
	f := normalize.Field{Name: sel.Name}
	if sel.Alias != "" && sel.Alias != sel.Name {
		f.Alias = sel.Alias
	}

	if len(sel.Arguments) > 0 {
		f.Arguments = make(map[string]any, len(sel.Arguments))
		for _, arg := range sel.Arguments {
			v, err := arg.Value.Value(c.vars)
			if err != nil {
				return f, fmt.Errorf("%w: %s(%s:): %v", ErrInvalidArgument, sel.Name, arg.Name, err)
			}
			f.Arguments[arg.Name] = v
		}
	}

	if len(sel.SelectionSet) > 0 {
		sub, err := c.collect(sel.SelectionSet, visited)
		if err != nil {
			return f, err
		}
		if !c.opts.omitTypename {
			sub = withTypename(sub)
		}
		f.Selections = sub
	}
	return f, nil
}

// included evaluates @skip and @include.
func (c *collector) included(directives ast.DirectiveList) (bool, error) {
	if d := directives.ForName("skip"); d != nil {
		skip, err := c.condition(d)
		if err != nil || skip {
			return false, err
		}
	}
	if d := directives.ForName("include"); d != nil {
		return c.condition(d)
	}
	return true, nil
}

func (c *collector) condition(d *ast.Directive) (bool, error) {
	arg := d.Arguments.ForName("if")
	if arg == nil {
		return false, fmt.Errorf("%w: @%s requires if:", ErrInvalidArgument, d.Name)
	}
	v, err := arg.Value.Value(c.vars)
	if err != nil {
		return false, fmt.Errorf("%w: @%s(if:): %v", ErrInvalidArgument, d.Name, err)
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: @%s(if:) must be a boolean, got %T", ErrInvalidArgument, d.Name, v)
	}
	return b, nil
}

func withTypename(sel normalize.SelectionSet) normalize.SelectionSet {
	for _, f := range sel {
		if f.Name == typenameField && f.Alias == "" {
			return sel
		}
	}
	return append(normalize.SelectionSet{normalize.Leaf(typenameField)}, sel...)
}

// fieldGroup keeps fields in document order and merges repeated response keys.
type fieldGroup struct {
	fields normalize.SelectionSet
	index  map[string]int
}

func (g *fieldGroup) add(f normalize.Field) {
	if g.index == nil {
		g.index = make(map[string]int)
	}
	key := f.ResponseKey()
	i, ok := g.index[key]
	if !ok {
		g.index[key] = len(g.fields)
		g.fields = append(g.fields, f)
		return
	}

	prev := g.fields[i]
	if len(f.Selections) == 0 {
		return
	}
	merged := fieldGroup{}
	for _, sub := range prev.Selections {
		merged.add(sub)
	}
	for _, sub := range f.Selections {
		merged.add(sub)
	}
	prev.Selections = merged.fields
	g.fields[i] = prev
}
