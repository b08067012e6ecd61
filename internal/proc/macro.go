package proc

import (
	"github.com/orblang/orbc/internal/diag"
	"github.com/orblang/orbc/internal/nodeval"
	"github.com/orblang/orbc/internal/parsetree"
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/source"
	"github.com/orblang/orbc/internal/symbols"
)

// invokeMacro implements spec §4.4's invocation: substitute every
// leaf-id in the macro body matching an argument name with that
// argument's actual tree (escape-adjusted per the argument's
// pre-handling mode), then re-process the substituted body — forcing
// the evaluator regardless of the call site's own backend (spec §9
// "macro expansion still uses the evaluator").
//
// This is substitution, not variable binding: a macro argument is
// never declared into the symbol table the way a function argument
// is. Per spec §8 Universal Law 5, substitution is hygiene-free — a
// leaf-id is replaced purely by name, with no regard for what scope it
// sits in within the body.
func (p *Processor) invokeMacro(node *parsetree.Node, first *nodeval.NodeVal) (*nodeval.NodeVal, bool) {
	name := first.Scalar.Name
	actuals := node.Children[1:]

	entry, ok := p.st.LookupMacro(name, len(actuals))
	if !ok {
		p.cm.Errorf(diag.KindFuncNotFound, node.Loc, "no matching macro overload for %q with %d arguments", p.np.Get(name), len(actuals))
		return nodeval.InvalidAt(node.Loc), false
	}

	fixed := entry.FixedCount()
	subs := make(map[pool.NameId]*parsetree.Node, len(entry.Args))
	for i, arg := range entry.Args {
		var slice []*parsetree.Node
		variadicTail := entry.Variadic && i == len(entry.Args)-1
		if variadicTail {
			slice = actuals[fixed:]
		} else {
			slice = actuals[i : i+1]
		}
		sub, ok := p.buildMacroArgSubst(node.Loc, arg.Mode, slice, variadicTail)
		if !ok {
			return nodeval.InvalidAt(node.Loc), false
		}
		subs[arg.Name] = sub
	}

	substituted := p.substitute(entry.Body, subs)

	saved := p.forceEvaluator
	p.forceEvaluator = true
	result, ok := p.processNode(substituted)
	p.forceEvaluator = saved
	return result, ok
}

// buildMacroArgSubst builds the tree that replaces every occurrence of
// one macro argument's name, per its pre-handling mode (spec §4.4):
//
//   - regular: the actual tree, escape raised by one — processed
//     normally (and independently) at each occurrence, lazily, the
//     first time that occurrence is reached.
//   - plusEscape: the actual tree, escape raised by two — still
//     escaped after one decrement, so it stays a raw tree value
//     wherever referenced.
//   - preprocess: the actual tree processed once, now, in the caller's
//     context; the result is embedded so every occurrence splices the
//     same already-computed value rather than recomputing it.
//
// A variadic argument's actuals are its tail of the call, wrapped as a
// `tup` form first (spec §3 "the trailing argument absorbs the call's
// tail as a raw tuple").
func (p *Processor) buildMacroArgSubst(loc source.CodeLoc, mode symbols.ArgMode, actuals []*parsetree.Node, variadicTail bool) (*parsetree.Node, bool) {
	raw := actuals[0]
	if variadicTail {
		raw = p.wrapAsTup(loc, actuals)
	}

	switch mode {
	case symbols.ArgPreprocess:
		v, ok := p.processNode(raw)
		if !ok {
			return nil, false
		}
		return &parsetree.Node{Loc: loc, Embedded: v}, true
	case symbols.ArgPlusEscape:
		cp := *raw
		cp.Escape = raw.Escape + 2
		return &cp, true
	default:
		cp := *raw
		cp.Escape = raw.Escape + 1
		return &cp, true
	}
}

// wrapAsTup synthesizes `(tup member...)` around a variadic tail so it
// substitutes as one unit regardless of what each member itself
// resolves to (a bare tuple-less non-leaf would risk its first member
// being misread as a keyword/operator/callable reference).
func (p *Processor) wrapAsTup(loc source.CodeLoc, members []*parsetree.Node) *parsetree.Node {
	children := make([]*parsetree.Node, 0, len(members)+1)
	children = append(children, &parsetree.Node{Loc: loc, Lit: parsetree.LitID, IDName: "tup"})
	children = append(children, members...)
	return &parsetree.Node{Loc: loc, Children: children}
}

// substitute returns a copy of node with every leaf-id matching a key
// in subs replaced (source location taken from the substitution site,
// per spec §8 Universal Law 5), sharing structure with the original
// wherever nothing underneath changed.
func (p *Processor) substitute(node *parsetree.Node, subs map[pool.NameId]*parsetree.Node) *parsetree.Node {
	if node == nil {
		return nil
	}
	if node.Lit == parsetree.LitID {
		if sub, ok := subs[p.np.Add(node.IDName)]; ok {
			cp := *sub
			cp.Loc = node.Loc
			return &cp
		}
	}

	changed := false
	var children []*parsetree.Node
	if len(node.Children) > 0 {
		children = make([]*parsetree.Node, len(node.Children))
		for i, c := range node.Children {
			nc := p.substitute(c, subs)
			children[i] = nc
			if nc != c {
				changed = true
			}
		}
	}
	var attrs map[string]*parsetree.Node
	if len(node.Attrs) > 0 {
		attrs = make(map[string]*parsetree.Node, len(node.Attrs))
		for k, a := range node.Attrs {
			na := p.substitute(a, subs)
			attrs[k] = na
			if na != a {
				changed = true
			}
		}
	}
	if !changed {
		return node
	}
	cp := *node
	if children != nil {
		cp.Children = children
	}
	if attrs != nil {
		cp.Attrs = attrs
	}
	return &cp
}
