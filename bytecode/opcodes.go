// Package bytecode holds the JVM opcode constants and classification
// tables shared by the class reader, the analyzer and the optimizer.
package bytecode

// Opcode is a single JVM instruction opcode byte.
type Opcode uint8

// JVM bytecode opcodes (source VM, per the published class-file spec).
// Only the subset referenced by this repo's decoder/analyzer/emitter is
// named; unnamed opcodes still decode structurally (see classfile/reader.go)
// but pass through analysis and codegen as "unsupported".
const (
	Nop         Opcode = 0x00
	AconstNull  Opcode = 0x01
	IconstM1    Opcode = 0x02
	Iconst0     Opcode = 0x03
	Iconst1     Opcode = 0x04
	Iconst2     Opcode = 0x05
	Iconst3     Opcode = 0x06
	Iconst4     Opcode = 0x07
	Iconst5     Opcode = 0x08
	Lconst0     Opcode = 0x09
	Lconst1     Opcode = 0x0A
	Fconst0     Opcode = 0x0B
	Fconst1     Opcode = 0x0C
	Fconst2     Opcode = 0x0D
	Dconst0     Opcode = 0x0E
	Dconst1     Opcode = 0x0F
	Bipush      Opcode = 0x10
	Sipush      Opcode = 0x11
	Ldc         Opcode = 0x12
	LdcW        Opcode = 0x13
	Ldc2W       Opcode = 0x14

	Iload  Opcode = 0x15
	Lload  Opcode = 0x16
	Fload  Opcode = 0x17
	Dload  Opcode = 0x18
	Aload  Opcode = 0x19
	Iload0 Opcode = 0x1A
	Iload1 Opcode = 0x1B
	Iload2 Opcode = 0x1C
	Iload3 Opcode = 0x1D

	Iaload Opcode = 0x2E

	Istore  Opcode = 0x36
	Lstore  Opcode = 0x37
	Fstore  Opcode = 0x38
	Dstore  Opcode = 0x39
	Astore  Opcode = 0x3A
	Istore0 Opcode = 0x3B
	Istore1 Opcode = 0x3C
	Istore2 Opcode = 0x3D
	Istore3 Opcode = 0x3E

	Iastore Opcode = 0x4F

	Pop   Opcode = 0x57
	Pop2  Opcode = 0x58
	Dup   Opcode = 0x59
	DupX1 Opcode = 0x5A
	DupX2 Opcode = 0x5B
	Dup2  Opcode = 0x5C
	Swap  Opcode = 0x5F

	Iadd Opcode = 0x60
	Ladd Opcode = 0x61
	Fadd Opcode = 0x62
	Dadd Opcode = 0x63
	Isub Opcode = 0x64
	Lsub Opcode = 0x65
	Fsub Opcode = 0x66
	Dsub Opcode = 0x67
	Imul Opcode = 0x68
	Lmul Opcode = 0x69
	Fmul Opcode = 0x6A
	Dmul Opcode = 0x6B
	Idiv Opcode = 0x6C
	Ldiv Opcode = 0x6D
	Fdiv Opcode = 0x6E
	Ddiv Opcode = 0x6F
	Irem Opcode = 0x70
	Lrem Opcode = 0x71
	Frem Opcode = 0x72
	Drem Opcode = 0x73
	Ineg Opcode = 0x74
	Lneg Opcode = 0x75
	Fneg Opcode = 0x76
	Dneg Opcode = 0x77

	Ishl  Opcode = 0x78
	Lshl  Opcode = 0x79
	Ishr  Opcode = 0x7A
	Lshr  Opcode = 0x7B
	Iushr Opcode = 0x7C
	Lushr Opcode = 0x7D
	Iand  Opcode = 0x7E
	Land  Opcode = 0x7F
	Ior   Opcode = 0x80
	Lor   Opcode = 0x81
	Ixor  Opcode = 0x82
	Lxor  Opcode = 0x83
	Iinc  Opcode = 0x84

	I2l Opcode = 0x85
	I2f Opcode = 0x86
	I2d Opcode = 0x87
	L2i Opcode = 0x88

	Lcmp     Opcode = 0x94
	Ifeq     Opcode = 0x99
	Ifne     Opcode = 0x9A
	Iflt     Opcode = 0x9B
	Ifge     Opcode = 0x9C
	Ifgt     Opcode = 0x9D
	Ifle     Opcode = 0x9E
	IfIcmpeq Opcode = 0x9F
	IfIcmpne Opcode = 0xA0
	IfIcmplt Opcode = 0xA1
	IfIcmpge Opcode = 0xA2
	IfIcmpgt Opcode = 0xA3
	IfIcmple Opcode = 0xA4
	IfAcmpeq Opcode = 0xA5
	IfAcmpne Opcode = 0xA6

	Goto         Opcode = 0xA7
	Jsr          Opcode = 0xA8
	Ret          Opcode = 0xA9
	Tableswitch  Opcode = 0xAA
	Lookupswitch Opcode = 0xAB
	Ireturn      Opcode = 0xAC
	Lreturn      Opcode = 0xAD
	Freturn      Opcode = 0xAE
	Dreturn      Opcode = 0xAF
	Areturn      Opcode = 0xB0
	Return       Opcode = 0xB1

	Getstatic     Opcode = 0xB2
	Putstatic     Opcode = 0xB3
	Getfield      Opcode = 0xB4
	Putfield      Opcode = 0xB5
	Invokevirtual Opcode = 0xB6
	Invokespecial Opcode = 0xB7
	Invokestatic  Opcode = 0xB8
	Invokeinterface Opcode = 0xB9
	Invokedynamic Opcode = 0xBA
	New           Opcode = 0xBB
	Newarray      Opcode = 0xBC
	Anewarray     Opcode = 0xBD
	Arraylength   Opcode = 0xBE
	Athrow        Opcode = 0xBF
	Checkcast     Opcode = 0xC0
	Instanceof    Opcode = 0xC1

	Monitorenter Opcode = 0xC2
	Monitorexit  Opcode = 0xC3

	Wide      Opcode = 0xC4
	Multianewarray Opcode = 0xC5
	Ifnull    Opcode = 0xC6
	Ifnonnull Opcode = 0xC7
	GotoW     Opcode = 0xC8
	JsrW      Opcode = 0xC9
)

// Category buckets an opcode for §4.2's classification table.
type Category uint8

const (
	CategoryOther Category = iota
	CategoryArithmetic
	CategoryReturn
	CategoryInvoke
	CategoryField
	CategoryBranch
)

var categories = map[Opcode]Category{
	Iadd: CategoryArithmetic, Ladd: CategoryArithmetic, Fadd: CategoryArithmetic, Dadd: CategoryArithmetic,
	Isub: CategoryArithmetic, Lsub: CategoryArithmetic, Fsub: CategoryArithmetic, Dsub: CategoryArithmetic,
	Imul: CategoryArithmetic, Lmul: CategoryArithmetic, Fmul: CategoryArithmetic, Dmul: CategoryArithmetic,
	Idiv: CategoryArithmetic, Ldiv: CategoryArithmetic, Fdiv: CategoryArithmetic, Ddiv: CategoryArithmetic,
	Irem: CategoryArithmetic, Lrem: CategoryArithmetic, Frem: CategoryArithmetic, Drem: CategoryArithmetic,

	Ireturn: CategoryReturn, Lreturn: CategoryReturn, Freturn: CategoryReturn,
	Dreturn: CategoryReturn, Areturn: CategoryReturn, Return: CategoryReturn,

	Invokevirtual: CategoryInvoke, Invokespecial: CategoryInvoke, Invokestatic: CategoryInvoke,
	Invokeinterface: CategoryInvoke, Invokedynamic: CategoryInvoke,

	Getstatic: CategoryField, Putstatic: CategoryField, Getfield: CategoryField, Putfield: CategoryField,

	Ifeq: CategoryBranch, Ifne: CategoryBranch, Iflt: CategoryBranch, Ifge: CategoryBranch,
	Ifgt: CategoryBranch, Ifle: CategoryBranch,
	IfIcmpeq: CategoryBranch, IfIcmpne: CategoryBranch, IfIcmplt: CategoryBranch,
	IfIcmpge: CategoryBranch, IfIcmpgt: CategoryBranch, IfIcmple: CategoryBranch,
	IfAcmpeq: CategoryBranch, IfAcmpne: CategoryBranch,
	Goto: CategoryBranch, GotoW: CategoryBranch, Jsr: CategoryBranch, JsrW: CategoryBranch,
	Ifnull: CategoryBranch, Ifnonnull: CategoryBranch,
}

// CategoryOf returns the classification bucket an opcode falls into for
// the analyzer's counters; CategoryOther for everything else.
func CategoryOf(op Opcode) Category {
	if c, ok := categories[op]; ok {
		return c
	}
	return CategoryOther
}

// IsIntConstPush reports whether op pushes an integer constant using its
// own opcode byte alone (no operand needed to know it is a constant-push
// form); bipush/sipush/ldc still qualify but need their operand inspected
// by the caller.
func IsIntConstPush(op Opcode) bool {
	switch op {
	case IconstM1, Iconst0, Iconst1, Iconst2, Iconst3, Iconst4, Iconst5, Bipush, Sipush, Ldc:
		return true
	default:
		return false
	}
}

// IconstValue returns the implied integer value of an iconst_N/m1 opcode.
func IconstValue(op Opcode) int32 {
	return int32(op) - int32(Iconst0)
}
