package diag

// Kind identifies the specific diagnostic being raised, grouped into
// the taxonomy from spec §7 (lex/parse, import, type, symbol, callable,
// control flow, ownership, operator, internal). Lex/parse kinds are
// included for completeness of the taxonomy even though the lexer and
// parser themselves are out of scope (spec §1) — the processor still
// needs to be able to forward a parse-stage diagnostic it receives
// from the external parser through the same CompilationMessages sink.
type Kind string

// Lex/parse (forwarded from the external collaborator, spec §1/§6).
const (
	KindBadToken              Kind = "badToken"
	KindBadLiteral             Kind = "badLiteral"
	KindUnclosedComment        Kind = "unclosedComment"
	KindUnexpectedToken        Kind = "unexpectedToken"
	KindUnbalancedNode         Kind = "unbalancedNode"
)

// Import.
const (
	KindImportNotString  Kind = "importNotString"
	KindImportNotFound   Kind = "importNotFound"
	KindImportCyclical   Kind = "errorImportCyclical"
)

// Type.
const (
	KindTypeUndefined             Kind = "typeUndefined"
	KindTypeMalformedDescr        Kind = "typeMalformedDescr"
	KindTypeBadArraySize          Kind = "typeBadArraySize"
	KindTypeNonTypeWhereRequired  Kind = "typeNonTypeWhereRequired"
	KindTypeCannotCast            Kind = "typeCannotCast"
	KindTypeCannotImplicitCast    Kind = "errorExprCannotImplicitCast"
	KindTypeAmbiguousImplicitCast Kind = "typeAmbiguousImplicitCast"
)

// Symbol.
const (
	KindSymbolNameTaken         Kind = "symbolNameTaken"
	KindSymbolNotFound          Kind = "symbolNotFound"
	KindSymbolConstWithoutInit  Kind = "symbolConstWithoutInit"
	KindSymbolOwningAtGlobal    Kind = "symbolOwningAtGlobalScope"
	KindSymbolArgNameDuplicate  Kind = "symbolArgNameDuplicate"
)

// Callable.
const (
	KindFuncNotFound             Kind = "errorFuncNotFound"
	KindFuncCallAmbiguous        Kind = "errorFuncCallAmbiguous"
	KindFuncSignatureCollision   Kind = "funcSignatureCollision"
	KindFuncRedefinition         Kind = "funcRedefinition"
	KindMacroArgAfterVariadic    Kind = "macroArgAfterVariadic"
	KindMacroConflicting         Kind = "macroConflictingWithExisting"
	KindMacroArgEscapeConflict   Kind = "errorMacroArgEscapeConflict"
	KindMacroArgTyped            Kind = "warningMacroArgTyped"
)

// Control flow.
const (
	KindExitLoopNowhere   Kind = "exitLoopNowhere"
	KindPassOnNonPassing  Kind = "passOnNonPassingOrBlockNoPass"
	KindRetOutsideCallable Kind = "retOutsideCallable"
	KindRetValue          Kind = "errorRetValue"
	KindRetNoValue        Kind = "errorRetNoValue"
)

// Ownership.
const (
	KindBadMoveNoDrop        Kind = "badMoveOnNoDrop"
	KindBadMoveOnCn          Kind = "badMoveOnCn"
	KindBadMoveOnInvocArg    Kind = "badMoveOnInvocationArg"
	KindBadTransferNoMove    Kind = "badTransferWithoutExplicitMove"
)

// Operator.
const (
	KindOperNonUnary          Kind = "operNonUnary"
	KindOperNonBinary         Kind = "operNonBinary"
	KindOperBadOperandType    Kind = "operBadOperandType"
	KindExprBinDivByZero      Kind = "errorExprBinDivByZero"
	KindExprBinLeftShiftOfNeg Kind = "errorExprBinLeftShiftOfNeg"
	KindOperAddressOfNonRef   Kind = "operAddressOfNonRef"
	KindOperDerefNonPointer   Kind = "operDerefNonPointer"
	KindOperIndexNonIndexable Kind = "operIndexNonIndexable"
	KindOperIndexNotIntegral  Kind = "operIndexNotIntegral"
	KindOperIndexOutOfBounds  Kind = "operIndexOutOfBounds"
)

// Internal.
const (
	KindInternalInvariant Kind = "internalInvariantBroken"
)

// User-raised (the `message` keyword form, spec §4.3's keyword list).
const (
	KindUserMessage Kind = "userMessage"
)
