package proc

import (
	"github.com/orblang/orbc/internal/diag"
	"github.com/orblang/orbc/internal/nodeval"
	"github.com/orblang/orbc/internal/parsetree"
	"github.com/orblang/orbc/internal/pool"
	"github.com/orblang/orbc/internal/source"
	"github.com/orblang/orbc/internal/symbols"
	"github.com/orblang/orbc/internal/typesys"
)

// dispatchKeyword implements spec §4.3's keyword branch: the first
// child resolved to one of the nineteen reserved keywords. block,
// exit, loop, and pass are handled in blocks.go; everything else here.
//
// None of these forms has a literal surface grammar in spec.md (the
// external parser is out of scope, spec §1) — the node-tree shapes
// below (attribute names, child order) are this module's own judgment
// call, recorded in DESIGN.md.
func (p *Processor) dispatchKeyword(node *parsetree.Node, kw pool.Keyword) (*nodeval.NodeVal, bool) {
	switch kw {
	case pool.KeywordSym:
		return p.doSym(node)
	case pool.KeywordCast:
		return p.doCast(node)
	case pool.KeywordBlock:
		return p.doBlock(node)
	case pool.KeywordExit:
		return p.doExit(node)
	case pool.KeywordLoop:
		return p.doLoop(node)
	case pool.KeywordPass:
		return p.doPass(node)
	case pool.KeywordFnc:
		return p.doFnc(node)
	case pool.KeywordRet:
		return p.doRet(node)
	case pool.KeywordMac:
		return p.doMac(node)
	case pool.KeywordEval:
		return p.doEval(node)
	case pool.KeywordTup:
		return p.doTup(node)
	case pool.KeywordTypeOf:
		return p.doTypeOf(node)
	case pool.KeywordLenOf:
		return p.doLenOf(node)
	case pool.KeywordSizeOf:
		return p.doSizeOf(node)
	case pool.KeywordIsDef:
		return p.doIsDef(node)
	case pool.KeywordAttrOf:
		return p.doAttrOf(node)
	case pool.KeywordAttrIsDef:
		return p.doAttrIsDef(node)
	case pool.KeywordImport:
		return p.doImport(node)
	case pool.KeywordMessage:
		return p.doMessage(node)
	}
	p.cm.Internalf(node.Loc, "unhandled keyword")
	return nodeval.InvalidAt(node.Loc), false
}

// doSym implements `sym` (spec §4.2's variable declaration, referenced
// from §8 scenario 1 "sym x:i32 = 3"). Surface shape:
// `(sym NAME [::type T] [init])`. A type decorated `cn` requires an
// initializer (there would be no later chance to give it one); an
// owning type (one with a registered drop function) cannot be declared
// outside any callable, since the global chain never tears down.
func (p *Processor) doSym(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	rest := node.Children[1:]
	if len(rest) == 0 {
		p.cm.Internalf(node.Loc, "sym form requires a name")
		return nodeval.InvalidAt(node.Loc), false
	}
	name := p.identName(rest[0])
	rest = rest[1:]

	if p.st.NameTakenInInnermost(name) {
		p.cm.Errorf(diag.KindSymbolNameTaken, node.Loc, "name already declared in this block")
		return nodeval.InvalidAt(node.Loc), false
	}

	var ty typesys.TypeId
	hasType := false
	if tnode := node.TypeAttr(); tnode != nil {
		t, ok := p.processType(tnode)
		if !ok {
			return nodeval.InvalidAt(node.Loc), false
		}
		ty, hasType = t, true
	}

	var init *nodeval.NodeVal
	hasInit := false
	if len(rest) > 0 {
		v, ok := p.processNode(rest[0])
		if !ok {
			return v, false
		}
		init, hasInit = v, true
	}

	if !hasType {
		if !hasInit {
			p.cm.Errorf(diag.KindTypeNonTypeWhereRequired, node.Loc, "sym needs a type or an initializer")
			return nodeval.InvalidAt(node.Loc), false
		}
		ty = init.Type
	}

	if p.tt.WorksAsCn(ty) && !hasInit {
		p.cm.Errorf(diag.KindSymbolConstWithoutInit, node.Loc, "const variable requires an initializer")
		return nodeval.InvalidAt(node.Loc), false
	}

	if _, inCallable := p.st.CurrentCallee(); !inCallable {
		if _, owning := p.st.DropFor(ty); owning {
			p.cm.Errorf(diag.KindSymbolOwningAtGlobal, node.Loc, "owning type cannot be declared at global scope")
			return nodeval.InvalidAt(node.Loc), false
		}
	}

	if hasInit {
		cast, ok := p.processAndImplicitCastValue(node.Loc, init, ty)
		if !ok {
			return nodeval.InvalidAt(node.Loc), false
		}
		init = cast
	}

	return p.activeBackend().PerformRegister(node.Loc, name, ty, init)
}

// doCast implements `cast` (spec §4.5's cast family, §8 scenario 4:
// `cast(ptr, 0)` / `cast(i32, cast(ptr, 0))`). Surface shape:
// `(cast TYPE VALUE)`. Unlike an implicit cast, an explicit cast also
// permits any scalar-family-to-scalar-family conversion.
func (p *Processor) doCast(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	rest := node.Children[1:]
	if len(rest) != 2 {
		p.cm.Internalf(node.Loc, "cast form requires exactly a type and a value")
		return nodeval.InvalidAt(node.Loc), false
	}
	ty, ok := p.processType(rest[0])
	if !ok {
		return nodeval.InvalidAt(node.Loc), false
	}
	val, ok := p.processNode(rest[1])
	if !ok {
		return val, false
	}
	if !p.canExplicitCast(val, ty) {
		p.cm.Errorf(diag.KindTypeCannotCast, node.Loc, "value cannot be cast to this type")
		return nodeval.InvalidAt(node.Loc), false
	}
	return p.activeBackend().PerformCast(node.Loc, val, ty)
}

// canExplicitCast is the wider castability predicate behind `cast`:
// every implicit cast is also an explicit one, plus free conversion
// among any of the scalar families (spec §8 scenario 4's ptr→i32 cast).
func (p *Processor) canExplicitCast(val *nodeval.NodeVal, ty typesys.TypeId) bool {
	if p.canImplicitCast(val, ty) {
		return true
	}
	scalar := func(t typesys.TypeId) bool {
		return p.tt.WorksAsI(t) || p.tt.WorksAsU(t) || p.tt.WorksAsF(t) ||
			p.tt.WorksAsC(t) || p.tt.WorksAsB(t) || p.tt.WorksAsPtr(t) || p.tt.WorksAsAnyP(t)
	}
	return scalar(val.Type) && scalar(ty)
}

// doFnc implements `fnc` (spec §4.6). Surface shape:
// `(fnc NAME params [::ret T] [::noNameMangle] [::evaluable] [::compiled] [body])`,
// where params is `(arg1 arg2 … [...])`, each argI a parenthesized
// `(name ::type T)` form (see paramIdentName) and the trailing bare
// `...` marking the signature variadic. "ret" (not the reserved "type" attribute, which
// applyAttributes would apply as a cast on the *declaration's own*
// result) carries the return type. A missing body is a forward
// declaration; a later matching definition fills it in (spec §4.6
// "the later definition overwrites the body if and only if ... match").
func (p *Processor) doFnc(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	rest := node.Children[1:]
	if len(rest) < 2 {
		p.cm.Internalf(node.Loc, "fnc form requires a name and a parameter list")
		return nodeval.InvalidAt(node.Loc), false
	}
	name := p.identName(rest[0])
	argNames, argTypes, variadic, ok := p.parseFuncParams(rest[1])
	if !ok {
		return nodeval.InvalidAt(node.Loc), false
	}
	var body *parsetree.Node
	if len(rest) > 2 {
		body = rest[2]
	}

	hasRet := false
	var retType typesys.TypeId
	if retNode := node.Attr("ret"); retNode != nil {
		t, ok := p.processType(retNode)
		if !ok {
			return nodeval.InvalidAt(node.Loc), false
		}
		retType, hasRet = t, true
	}

	attrs := symbols.FuncAttrs{
		NoNameMangle: node.Attr("noNameMangle") != nil,
		Evaluable:    node.Attr("evaluable") != nil,
		Compiled:     node.Attr("compiled") != nil,
	}
	if !attrs.Evaluable && !attrs.Compiled {
		attrs.Evaluable = true
	}

	entry := &symbols.FuncEntry{
		Name:     name,
		Sig:      typesys.Callable{IsFunc: true, ArgTypes: argTypes, HasRet: hasRet, RetType: retType, Variadic: variadic},
		Attrs:    attrs,
		ArgNames: argNames,
		HasBody:  body != nil,
		Body:     body,
		DeclLoc:  node.Loc,
		DefLoc:   node.Loc,
	}

	registered := p.st.RegisterFunction(entry, p.cm)
	if p.cm.Failing() {
		return nodeval.InvalidAt(node.Loc), false
	}

	if node.Attr("drop") != nil {
		if variadic || len(argTypes) != 1 || hasRet {
			p.cm.Errorf(diag.KindTypeNonTypeWhereRequired, node.Loc, "drop function must take exactly one argument and return nothing")
			return nodeval.InvalidAt(node.Loc), false
		}
		p.st.RegisterDrop(argTypes[0], &nodeval.NodeVal{
			Kind: nodeval.Special, SpecialTag: nodeval.SpecialFuncRef, Loc: node.Loc,
			Scalar: nodeval.Scalar{Name: name},
		})
	}

	// A top-level `fnc` is always seen at global scope, where
	// activeBackend() resolves to the evaluator regardless of this
	// function's own attributes (spec §6: a compiled function is still
	// declared/defined for BOTH backends, since it may be called either
	// from compile-time-evaluated code or from other compiled code).
	// So this drives both backends explicitly instead of going through
	// activeBackend().
	if registered == entry {
		if !p.evaluator.PerformFunctionDeclaration(node.Loc, registered) {
			return nodeval.InvalidAt(node.Loc), false
		}
		if attrs.Compiled && !p.compiler.PerformFunctionDeclaration(node.Loc, registered) {
			return nodeval.InvalidAt(node.Loc), false
		}
	}
	if body != nil {
		if !p.evaluator.PerformFunctionDefinition(node.Loc, registered) {
			return nodeval.InvalidAt(node.Loc), false
		}
		if attrs.Compiled && !p.compiler.PerformFunctionDefinition(node.Loc, registered) {
			return nodeval.InvalidAt(node.Loc), false
		}
	}
	return nodeval.Void(node.Loc), true
}

// paramIdentName resolves one parameter/macro-argument node's own
// identifier. parseList attaches every "::name value" pair it reads to
// the enclosing node being built, never to a preceding sibling — so a
// parameter that carries no attribute of its own is written as a bare
// id leaf (identName resolves it directly), but one that needs an
// attribute (::type, ::preprocess, ::plusEscape, ::variadic) must be
// individually parenthesized (e.g. `(x ::type i32)`) so the attribute
// has something of its own to attach to; the wrapper's sole child is
// then the actual name leaf.
func (p *Processor) paramIdentName(node *parsetree.Node) pool.NameId {
	if node == nil {
		return pool.InvalidName
	}
	if node.Lit == parsetree.LitID {
		return p.identName(node)
	}
	if len(node.Children) == 1 {
		return p.identName(node.Children[0])
	}
	return pool.InvalidName
}

// parseFuncParams reads a function's parameter-list node into parallel
// names/types slices plus the trailing-variadic flag.
func (p *Processor) parseFuncParams(node *parsetree.Node) ([]pool.NameId, []typesys.TypeId, bool, bool) {
	seen := make(map[pool.NameId]bool)
	var names []pool.NameId
	var types []typesys.TypeId
	variadic := false
	for i, c := range node.Children {
		if isEllipsis(p.np, c) {
			if i != len(node.Children)-1 {
				p.cm.Internalf(c.Loc, "variadic marker must be the last parameter")
				return nil, nil, false, false
			}
			variadic = true
			continue
		}
		argName := p.paramIdentName(c)
		if seen[argName] {
			p.cm.Errorf(diag.KindSymbolArgNameDuplicate, c.Loc, "duplicate argument name")
			return nil, nil, false, false
		}
		seen[argName] = true

		var ty typesys.TypeId
		ok := false
		if tnode := c.TypeAttr(); tnode != nil {
			ty, ok = p.processType(tnode)
		}
		if !ok {
			p.cm.Errorf(diag.KindTypeNonTypeWhereRequired, c.Loc, "parameter requires a type")
			return nil, nil, false, false
		}
		names = append(names, argName)
		types = append(types, ty)
	}
	return names, types, variadic, true
}

// doRet implements `ret` (spec §4.6 "hasRet determines whether the
// call yields a value", §8 boundary tests errorRetValue/errorRetNoValue).
// Surface shape: `(ret [value])`.
func (p *Processor) doRet(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	callee, inCallable := p.st.CurrentCallee()
	if !inCallable {
		p.cm.Errorf(diag.KindRetOutsideCallable, node.Loc, "ret outside any callable")
		return nodeval.InvalidAt(node.Loc), false
	}

	rest := node.Children[1:]
	var retVal *nodeval.NodeVal
	switch {
	case len(rest) > 0 && !callee.HasRetType:
		p.cm.Errorf(diag.KindRetValue, node.Loc, "function has no return type")
		return nodeval.InvalidAt(node.Loc), false
	case len(rest) == 0 && callee.HasRetType:
		p.cm.Errorf(diag.KindRetNoValue, node.Loc, "function requires a return value")
		return nodeval.InvalidAt(node.Loc), false
	case len(rest) > 0:
		v, ok := p.processNode(rest[0])
		if !ok {
			return v, false
		}
		val, ok := p.processAndImplicitCastValue(node.Loc, v, callee.RetType)
		if !ok {
			return nodeval.InvalidAt(node.Loc), false
		}
		retVal = val
	}

	if !p.activeBackend().PerformRet(node.Loc, retVal) {
		return nodeval.InvalidAt(node.Loc), false
	}
	p.skip = skipState{kind: skipRet, retVal: retVal}
	return nodeval.Void(node.Loc), true
}

// doMac implements `mac` registration (spec §4.4). Surface shape:
// `(mac NAME params body)`, params = `(arg1 arg2 …)`, each argI a bare
// id leaf, or a parenthesized `(name ...)` form (see paramIdentName)
// when it carries `::preprocess`, `::plusEscape`, `::variadic`, or
// (vestigially, spec §9 open question a) `::type`.
func (p *Processor) doMac(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	rest := node.Children[1:]
	if len(rest) < 3 {
		p.cm.Internalf(node.Loc, "mac form requires a name, argument list, and body")
		return nodeval.InvalidAt(node.Loc), false
	}
	name := p.identName(rest[0])
	args, variadic, ok := p.parseMacroParams(rest[1])
	if !ok {
		return nodeval.InvalidAt(node.Loc), false
	}
	entry := &symbols.MacroEntry{Name: name, Args: args, Variadic: variadic, Body: rest[2], Loc: node.Loc}
	if !p.st.RegisterMacro(entry, p.cm) {
		return nodeval.InvalidAt(node.Loc), false
	}
	if !p.activeBackend().PerformMacroDefinition(node.Loc, entry) {
		return nodeval.InvalidAt(node.Loc), false
	}
	return nodeval.Void(node.Loc), true
}

func (p *Processor) parseMacroParams(node *parsetree.Node) ([]symbols.MacroArg, bool, bool) {
	var args []symbols.MacroArg
	variadic := false
	for i, c := range node.Children {
		name := p.paramIdentName(c)
		preprocess := c.Attr("preprocess") != nil
		plusEscape := c.Attr("plusEscape") != nil
		if preprocess && plusEscape {
			p.cm.Errorf(diag.KindMacroArgEscapeConflict, c.Loc, "macro argument cannot be both preprocess and plus-escape")
			return nil, false, false
		}
		if c.TypeAttr() != nil {
			p.cm.Warnf(diag.KindMacroArgTyped, c.Loc, "macro arg typed")
		}
		mode := symbols.ArgRegular
		switch {
		case preprocess:
			mode = symbols.ArgPreprocess
		case plusEscape:
			mode = symbols.ArgPlusEscape
		}
		if c.Attr("variadic") != nil {
			if i != len(node.Children)-1 {
				p.cm.Errorf(diag.KindMacroArgAfterVariadic, c.Loc, "variadic macro argument must be last")
				return nil, false, false
			}
			variadic = true
		}
		args = append(args, symbols.MacroArg{Name: name, Mode: mode})
	}
	return args, variadic, true
}

// doEval implements `eval` (spec §4.3's keyword list): forces every
// nested operation to the evaluator for the duration of one operand,
// restoring whatever was active before (so nested `eval` forms compose).
func (p *Processor) doEval(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	rest := node.Children[1:]
	if len(rest) != 1 {
		p.cm.Internalf(node.Loc, "eval form requires exactly one operand")
		return nodeval.InvalidAt(node.Loc), false
	}
	saved := p.forceEvaluator
	p.forceEvaluator = true
	v, ok := p.processNode(rest[0])
	p.forceEvaluator = saved
	return v, ok
}

// doTup implements `tup`: an explicit tuple construction, sharing
// assembleTuple with the implicit form (nonleaf.go's buildTuple).
func (p *Processor) doTup(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	members := make([]*nodeval.NodeVal, 0, len(node.Children)-1)
	for _, c := range node.Children[1:] {
		v, ok := p.processNode(c)
		if !ok {
			return v, false
		}
		members = append(members, v)
	}
	return p.assembleTuple(node.Loc, members)
}

// doTypeOf implements `typeOf`: the type-value for the operand's own
// TypeId.
func (p *Processor) doTypeOf(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	rest := node.Children[1:]
	if len(rest) != 1 {
		p.cm.Internalf(node.Loc, "typeOf takes exactly one operand")
		return nodeval.InvalidAt(node.Loc), false
	}
	v, ok := p.processNode(rest[0])
	if !ok {
		return v, false
	}
	return p.typeValue(node.Loc, v.Type), true
}

// operandType resolves either a first-class type value (the operand
// was itself a type expression) or an ordinary value's own type,
// shared by lenOf/sizeOf (spec §4.3's keyword list groups them).
func (p *Processor) operandType(v *nodeval.NodeVal) typesys.TypeId {
	if v.Kind == nodeval.EvalValue && p.tt.WorksAsPrim(v.Type, typesys.PrimType) {
		return v.Scalar.Type
	}
	return v.Type
}

// doLenOf implements `lenOf`: the fixed element count of an array or
// the member count of a tuple.
func (p *Processor) doLenOf(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	rest := node.Children[1:]
	if len(rest) != 1 {
		p.cm.Internalf(node.Loc, "lenOf takes exactly one operand")
		return nodeval.InvalidAt(node.Loc), false
	}
	v, ok := p.processNode(rest[0])
	if !ok {
		return v, false
	}
	ty := p.operandType(v)
	switch {
	case p.tt.WorksAsArr(ty):
		desc, _ := p.tt.Descr(ty)
		return p.lenValue(node.Loc, desc.Decors[len(desc.Decors)-1].Len), true
	case p.tt.WorksAsTuple(ty):
		tup, _ := p.tt.Tuple(ty)
		return p.lenValue(node.Loc, len(tup.Members)), true
	}
	p.cm.Errorf(diag.KindOperIndexNonIndexable, node.Loc, "lenOf requires an array or tuple type")
	return nodeval.InvalidAt(node.Loc), false
}

func (p *Processor) lenValue(loc source.CodeLoc, n int) *nodeval.NodeVal {
	return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: loc, Type: p.tt.Prim(typesys.PrimI32), Scalar: nodeval.Scalar{Int: int64(n)}}
}

func (p *Processor) boolValue(loc source.CodeLoc, b bool) *nodeval.NodeVal {
	return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: loc, Type: p.tt.Prim(typesys.PrimBool), Scalar: nodeval.Scalar{Bool: b}}
}

// doSizeOf implements `sizeOf`, delegating the byte-size computation to
// the active backend since it depends on target layout (spec §6
// "performSizeOf").
func (p *Processor) doSizeOf(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	rest := node.Children[1:]
	if len(rest) != 1 {
		p.cm.Internalf(node.Loc, "sizeOf takes exactly one operand")
		return nodeval.InvalidAt(node.Loc), false
	}
	v, ok := p.processNode(rest[0])
	if !ok {
		return v, false
	}
	n, ok := p.activeBackend().PerformSizeOf(node.Loc, p.operandType(v))
	if !ok {
		return nodeval.InvalidAt(node.Loc), false
	}
	return &nodeval.NodeVal{Kind: nodeval.EvalValue, Loc: node.Loc, Type: p.tt.Prim(typesys.PrimU64), Scalar: nodeval.Scalar{Uint: n}}, true
}

// doIsDef implements `isDef` (spec §4.3's keyword list): probes whether
// a bare name would resolve at all, replaying processIdentLeaf's
// resolution order without the side-effect of actually loading it (a
// variable load is harmless, but this avoids depending on the active
// backend succeeding for a name that may not even be a variable).
func (p *Processor) doIsDef(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	rest := node.Children[1:]
	if len(rest) != 1 || rest[0].Lit != parsetree.LitID {
		p.cm.Internalf(node.Loc, "isDef requires a bare identifier operand")
		return nodeval.InvalidAt(node.Loc), false
	}
	name := p.np.Add(rest[0].IDName)

	defined := false
	switch {
	case func() bool { _, ok := p.np.IsKeyword(name); return ok }():
		defined = true
	case func() bool { _, ok := p.np.IsOper(name); return ok }():
		defined = true
	case func() bool { _, ok := p.np.IsMeaningful(name); return ok }():
		defined = true
	case func() bool { _, ok := p.lookupTypeName(name); return ok }():
		defined = true
	case func() bool { _, ok := p.st.LookupVariable(name); return ok }():
		defined = true
	case len(p.st.LookupFunctions(name)) > 0:
		defined = true
	case p.st.HasMacro(name):
		defined = true
	}
	return p.boolValue(node.Loc, defined), true
}

// attrOfOperands processes attrOf/attrIsDef's shared shape
// `(EXPR NAME)`: an arbitrary expression and a bare attribute name.
func (p *Processor) attrOfOperands(node *parsetree.Node) (*nodeval.NodeVal, pool.NameId, bool) {
	rest := node.Children[1:]
	if len(rest) != 2 || rest[1].Lit != parsetree.LitID {
		p.cm.Internalf(node.Loc, "attrOf/attrIsDef requires an expression and a bare attribute name")
		return nil, pool.InvalidName, false
	}
	v, ok := p.processNode(rest[0])
	if !ok {
		return v, pool.InvalidName, false
	}
	return v, p.np.Add(rest[1].IDName), true
}

// doAttrOf implements `attrOf`: the value's non-type attribute by name.
func (p *Processor) doAttrOf(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	v, attrName, ok := p.attrOfOperands(node)
	if !ok {
		return nodeval.InvalidAt(node.Loc), false
	}
	av, found := v.Attr(attrName)
	if !found {
		p.cm.Errorf(diag.KindSymbolNotFound, node.Loc, "value has no such attribute")
		return nodeval.InvalidAt(node.Loc), false
	}
	return av, true
}

// doAttrIsDef implements `attrIsDef`: whether the value carries a
// non-type attribute by name, never erroring.
func (p *Processor) doAttrIsDef(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	v, attrName, ok := p.attrOfOperands(node)
	if !ok {
		return nodeval.InvalidAt(node.Loc), false
	}
	_, found := v.Attr(attrName)
	return p.boolValue(node.Loc, found), true
}

// doImport implements `import` (spec §6 "the processor returns an
// Import-kind NodeVal the orchestrator consumes to load another file").
// Surface shape: `(import "path")`.
func (p *Processor) doImport(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	rest := node.Children[1:]
	if len(rest) != 1 {
		p.cm.Internalf(node.Loc, "import takes exactly one operand")
		return nodeval.InvalidAt(node.Loc), false
	}
	v, ok := p.processNode(rest[0])
	if !ok {
		return v, false
	}
	if !p.tt.WorksAsStr(v.Type) {
		p.cm.Errorf(diag.KindImportNotString, node.Loc, "import path must be a string")
		return nodeval.InvalidAt(node.Loc), false
	}
	return &nodeval.NodeVal{Kind: nodeval.Import, Loc: node.Loc, ImportPath: v.Scalar.Str}, true
}

// doMessage implements `message` (spec §4.3's keyword list): a
// user-raised diagnostic at one of the four severities. Surface shape:
// `(message LEVEL "text")`, LEVEL a bare id spelling one of
// info/warning/error/internal (not a reserved word, so it isn't
// processed — just read off the leaf directly).
func (p *Processor) doMessage(node *parsetree.Node) (*nodeval.NodeVal, bool) {
	rest := node.Children[1:]
	if len(rest) != 2 || rest[0].Lit != parsetree.LitID {
		p.cm.Internalf(node.Loc, "message requires a level and a text operand")
		return nodeval.InvalidAt(node.Loc), false
	}
	v, ok := p.processNode(rest[1])
	if !ok {
		return v, false
	}
	if !p.tt.WorksAsStr(v.Type) {
		p.cm.Errorf(diag.KindOperBadOperandType, node.Loc, "message text must be a string")
		return nodeval.InvalidAt(node.Loc), false
	}
	text := p.sp.Get(v.Scalar.Str)
	switch rest[0].IDName {
	case "info":
		p.cm.Infof(diag.KindUserMessage, node.Loc, "%s", text)
	case "warning":
		p.cm.Warnf(diag.KindUserMessage, node.Loc, "%s", text)
	case "error":
		p.cm.Errorf(diag.KindUserMessage, node.Loc, "%s", text)
	case "internal":
		p.cm.Internalf(node.Loc, "%s", text)
	default:
		p.cm.Internalf(node.Loc, "unrecognized message level %q", rest[0].IDName)
		return nodeval.InvalidAt(node.Loc), false
	}
	return nodeval.Void(node.Loc), true
}
