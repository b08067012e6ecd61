// Package codegen implements Compiler, the lowering Backend (spec §6,
// spec.md's component table: "Compiler backend ... emitting native-IR
// values; holds type-lowering cache"). The actual native code
// generator and linker are external collaborators out of this
// module's scope (spec §1/§6: "the orchestrator ... invokes the
// external linker"); Chunk stands in for what that collaborator would
// consume — a flat, value-numbered instruction stream plus a
// deduplicated constant pool — so every Backend method here has a
// concrete, inspectable effect instead of being a stub.
//
// Grounded on the teacher's internal/bytecode.Chunk: the same
// append-only instruction log and linear-scan-with-dedup constant
// pool, with the source line recorded on each Instruction itself
// rather than in a separate line table, generalized from a
// stack-machine opcode set to a value-numbered one (each instruction's
// own index is its result handle) so a Backend method can return a
// single handle for its result the way performOperRegular etc. are
// specified to (spec §6) rather than implicitly pushing to a stack.
package codegen

import "fmt"

// OpCode is one native-IR instruction kind.
type OpCode byte

const (
	OpConst OpCode = iota
	OpZero
	OpLoadSlot
	OpStoreSlot
	OpCast

	OpAddI
	OpSubI
	OpMulI
	OpDivI
	OpRemI
	OpShlI
	OpShrI
	OpAndI
	OpOrI
	OpXorI
	OpNotI
	OpNegI

	OpAddF
	OpSubF
	OpMulF
	OpDivF
	OpRemF
	OpNegF

	OpCmpEq
	OpCmpNeq
	OpCmpLt
	OpCmpLtEq
	OpCmpGt
	OpCmpGtEq

	OpAddrOf
	OpDeref
	OpIndex
	OpMember

	OpCall
	OpRet
	OpLabel
	OpBr
	OpBrIf
	OpPhi
)

// Instruction is one value-numbered IR op: its code, up to two operand
// handles (references to earlier instructions' results, or -1 if
// unused), and an index into Chunk.Constants/Aux for anything wider
// than a handle (a constant value, a slot number, a callee name).
//
// Args carries OpCall's full argument-handle list (arity isn't fixed
// at two, unlike every other op), and OpPhi's list of incoming value
// handles, one per predecessor edge. It is nil for every other op.
type Instruction struct {
	Op   OpCode
	A, B int
	Aux  int
	Args []int
	Line int
}

// Const is one entry of the constant pool: exactly one field is
// meaningful, chosen by materializeConst from the value's type family
// (Int for signed and char values, Uint, Float, or Bool).
type Const struct {
	Int   int64
	Uint  uint64
	Float float64
	Bool  bool
}

// CallTarget identifies what an OpCall instruction invokes: Target is
// set for a call to a function compiled within this compilation
// (another Chunk, built once and referenced by every call site); Extern
// names an external symbol reached only by its (possibly mangled) name
// — a forward-declared function with no body for this module to lower,
// left for the native linker to resolve.
type CallTarget struct {
	Target *Chunk
	Extern string
}

// Chunk is one lowered function or top-level unit's IR (spec.md's
// "holds type-lowering cache" — the Compiler keeps one Chunk per
// function, built once at PerformFunctionDefinition time and replayed
// by reference on every PerformCall rather than re-lowered per call).
type Chunk struct {
	Name       string
	Code       []Instruction
	Constants  []Const
	Calls      []CallTarget
	LocalCount int
}

// NewChunk creates an empty chunk.
func NewChunk(name string) *Chunk {
	return &Chunk{Name: name}
}

// emit appends an instruction and returns its handle (its own index).
func (c *Chunk) emit(op OpCode, a, b, aux, line int) int {
	idx := len(c.Code)
	c.Code = append(c.Code, Instruction{Op: op, A: a, B: b, Aux: aux, Line: line})
	return idx
}

// emitCall appends an OpCall targeting target, returns its handle.
func (c *Chunk) emitCall(target CallTarget, args []int, line int) int {
	idx := len(c.Code)
	aux := len(c.Calls)
	c.Calls = append(c.Calls, target)
	c.Code = append(c.Code, Instruction{Op: OpCall, Aux: aux, Args: args, Line: line})
	return idx
}

// AddConstant dedups value into the constant pool and returns its
// index (spec ground: Chunk.AddConstant's linear-scan dedup).
func (c *Chunk) AddConstant(v Const) int {
	for i, existing := range c.Constants {
		if existing == v {
			return i
		}
	}
	idx := len(c.Constants)
	c.Constants = append(c.Constants, v)
	return idx
}

// AllocSlot reserves a new local slot and returns its index.
func (c *Chunk) AllocSlot() int {
	idx := c.LocalCount
	c.LocalCount++
	return idx
}

var opNames = map[OpCode]string{
	OpConst: "const", OpZero: "zero", OpLoadSlot: "load", OpStoreSlot: "store", OpCast: "cast",
	OpAddI: "addi", OpSubI: "subi", OpMulI: "muli", OpDivI: "divi", OpRemI: "remi",
	OpShlI: "shli", OpShrI: "shri", OpAndI: "andi", OpOrI: "ori", OpXorI: "xori", OpNotI: "noti", OpNegI: "negi",
	OpAddF: "addf", OpSubF: "subf", OpMulF: "mulf", OpDivF: "divf", OpRemF: "remf", OpNegF: "negf",
	OpCmpEq: "cmpeq", OpCmpNeq: "cmpneq", OpCmpLt: "cmplt", OpCmpLtEq: "cmplteq", OpCmpGt: "cmpgt", OpCmpGtEq: "cmpgteq",
	OpAddrOf: "addrof", OpDeref: "deref", OpIndex: "index", OpMember: "member",
	OpCall: "call", OpRet: "ret", OpLabel: "label", OpBr: "br", OpBrIf: "brif", OpPhi: "phi",
}

func (op OpCode) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return "op?"
}

// Disassemble renders Code as a flat, human-readable instruction
// listing (spec §6's "object/executable output", stood in for by the
// textual Chunk since the real native emitter is out of scope) — the
// same role the teacher's bytecode.Disassembler plays for --disassemble.
func (c *Chunk) Disassemble() string {
	s := fmt.Sprintf("chunk %s (locals=%d)\n", c.Name, c.LocalCount)
	for i, ins := range c.Code {
		switch ins.Op {
		case OpCall:
			target := "?"
			if ins.Aux >= 0 && ins.Aux < len(c.Calls) {
				ct := c.Calls[ins.Aux]
				if ct.Target != nil {
					target = ct.Target.Name
				} else {
					target = ct.Extern
				}
			}
			s += fmt.Sprintf("  %4d  %-8s %s %v\n", i, ins.Op, target, ins.Args)
		case OpConst:
			s += fmt.Sprintf("  %4d  %-8s const[%d]\n", i, ins.Op, ins.Aux)
		default:
			s += fmt.Sprintf("  %4d  %-8s a=%d b=%d aux=%d\n", i, ins.Op, ins.A, ins.B, ins.Aux)
		}
	}
	return s
}
