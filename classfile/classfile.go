// Package classfile parses and re-serializes JVM .class files (component
// C1, the Class Reader). Only the structure needed by the analyzer,
// optimizer and code generator is modeled; everything else round-trips
// as opaque bytes so the JIT path can re-encode a rewritten class exactly.
package classfile

import "jvmaot/bytecode"

// Magic is the four-byte class-file signature.
const Magic = 0xCAFEBABE

// ConstKind tags a constant-pool entry's tag byte.
type ConstKind uint8

const (
	ConstUTF8               ConstKind = 1
	ConstInteger            ConstKind = 3
	ConstFloat              ConstKind = 4
	ConstLong               ConstKind = 5
	ConstDouble             ConstKind = 6
	ConstClass              ConstKind = 7
	ConstString             ConstKind = 8
	ConstFieldref           ConstKind = 9
	ConstMethodref          ConstKind = 10
	ConstInterfaceMethodref ConstKind = 11
	ConstNameAndType        ConstKind = 12
	ConstMethodHandle       ConstKind = 15
	ConstMethodType         ConstKind = 16
	ConstInvokeDynamic      ConstKind = 18
)

// Const is one constant-pool entry. Not every field is meaningful for
// every Kind; unused fields are zero. Long/Double entries occupy two
// pool slots in the source format (preserved via the Wide flag so
// round-trip indexing stays correct).
type Const struct {
	Kind ConstKind

	// ConstUTF8
	UTF8 string

	// ConstInteger / ConstFloat (Float's bits stored raw, unused by codegen)
	IntVal int32

	// ConstLong / ConstDouble
	LongVal int64

	// ConstClass / ConstString: index into the pool of the owning UTF8/string
	RefIndex uint16

	// ConstFieldref / ConstMethodref / ConstInterfaceMethodref
	ClassIndex       uint16
	NameTypeIndex    uint16

	// ConstNameAndType
	NameIndex uint16
	TypeIndex uint16

	// ConstMethodHandle
	RefKind uint8

	// Wide marks the long/double "this entry plus the next are one slot"
	// rule so the reader and writer agree on pool indexing.
	Wide bool
}

// Attribute is an opaque, round-trippable class-file attribute: a name
// (resolved via the constant pool) and its raw info bytes. The reader
// decodes the Code attribute's body into Instructions (see Method) but
// keeps every attribute's raw bytes too, so unknown attributes survive
// the JIT decode/re-encode cycle byte-for-byte.
type Attribute struct {
	NameIndex uint16
	Info      []byte
}

// ExceptionHandler is one entry of a Code attribute's exception table.
// Not interpreted (exception handling is a Non-goal) but preserved so a
// Method round-trips exactly.
type ExceptionHandler struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

// InstrKind discriminates a decoded instruction node, including the two
// synthetic pseudo-instructions required by §3: Label and LineNumber.
type InstrKind uint8

const (
	InstrOp InstrKind = iota
	InstrLabel
	InstrLineNumber
)

// Instruction is one decoded bytecode instruction, or a synthetic Label /
// LineNumber marker. Operand fields are populated according to the
// opcode's operand form; unused fields are zero.
type Instruction struct {
	Kind InstrKind
	Op   bytecode.Opcode

	// Byte offset of this instruction in the original Code array. Needed
	// to resolve branch targets into Label ids during decode.
	Offset int

	// Immediate integer operand: bipush/sipush value, iinc amount, or
	// (for Iinc) the paired local-variable increment.
	IntImmediate int32

	// Local-variable index operand: iload/istore/iinc and their wide forms.
	LocalIndex int

	// Constant-pool index operand: ldc/ldc_w/ldc2_w, invoke*, get/putfield.
	ConstIndex uint16

	// Branch target, resolved to a label id: the id of the InstrLabel node
	// placed at the target (ids number the distinct branch targets in
	// ascending offset order). On an InstrLabel node it holds that label's
	// own id. The reader sets -1 on instructions that are not branches.
	LabelTarget int

	// LineNumber payload (InstrLineNumber only).
	LineNumber uint16

	// Wide marks an instruction decoded under a preceding `wide` prefix,
	// so the writer knows to re-emit the prefix and the 16-bit operand
	// forms instead of the normal 8-bit ones.
	Wide bool

	// TableswitchLookupswitch payload, preserved opaquely for round-trip;
	// never interpreted (control flow beyond straight-line code is a
	// Non-goal) but must not corrupt instruction offsets after it.
	SwitchRaw []byte
}

// Label returns a synthetic label marker instruction. Labels are
// transparent to the analyzer and are never removed by the optimizer's
// dead-code pass.
func Label(id int) Instruction {
	return Instruction{Kind: InstrLabel, LabelTarget: id}
}

// Method is identified by (Name, Descriptor) within a Class.
type Method struct {
	AccessFlags  uint16
	Name         string
	Descriptor   string
	Instructions []Instruction
	Exceptions   []ExceptionHandler
	MaxStack     uint16
	MaxLocals    uint16
	Attributes   []Attribute // attributes other than Code, preserved raw
	CodeAttrName uint16      // constant-pool index of the UTF8 "Code", for re-encode
}

// ReturnsInt reports whether the method's descriptor ends in an int
// return type, per spec.md §3 ("the core only needs to distinguish
// I-returning methods from V-returning ones").
func (m Method) ReturnsInt() bool {
	return len(m.Descriptor) > 0 && m.Descriptor[len(m.Descriptor)-1] == 'I'
}

// Field is metadata-only (§4.1: "fields (metadata only)").
type Field struct {
	AccessFlags uint16
	NameIndex   uint16
	DescIndex   uint16
	Attributes  []Attribute
}

// Class is the decoded class-file: methods plus pass-through metadata
// that must round-trip unchanged through the optimizer on the JIT path.
type Class struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool []Const // index 0 is unused, matching the source format's 1-based pool
	AccessFlags  uint16
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []Field
	Methods      []Method
	Attributes   []Attribute
}

// ConstUTF8At resolves a constant-pool index to its UTF8 text, or ""
// if the index does not name a UTF8 entry.
func (c *Class) ConstUTF8At(index uint16) string {
	if int(index) <= 0 || int(index) >= len(c.ConstantPool) {
		return ""
	}
	entry := c.ConstantPool[index]
	if entry.Kind != ConstUTF8 {
		return ""
	}
	return entry.UTF8
}

// IntConstAt resolves a constant-pool index to an integer value when the
// entry is a ConstInteger, for ldc decoding. ok is false otherwise.
func (c *Class) IntConstAt(index uint16) (value int32, ok bool) {
	if int(index) <= 0 || int(index) >= len(c.ConstantPool) {
		return 0, false
	}
	entry := c.ConstantPool[index]
	if entry.Kind != ConstInteger {
		return 0, false
	}
	return entry.IntVal, true
}

// Method looks up a method by (name, descriptor); NoExecutableMethod-style
// callers should check the second return.
func (c *Class) Method(name, descriptor string) (Method, bool) {
	for _, m := range c.Methods {
		if m.Name == name && (descriptor == "" || m.Descriptor == descriptor) {
			return m, true
		}
	}
	return Method{}, false
}

// ClassName resolves the dotted (source-form) name of the class, turning
// the class-file's slash-separated internal name back into dots, per
// §4.1 ("Resolution of class names from dotted form to slashed form is
// the reader's responsibility").
func (c *Class) ClassName() string {
	internal := c.ConstUTF8At(c.classNameIndex(c.ThisClass))
	return slashToDot(internal)
}

func (c *Class) classNameIndex(classPoolIndex uint16) uint16 {
	if int(classPoolIndex) <= 0 || int(classPoolIndex) >= len(c.ConstantPool) {
		return 0
	}
	entry := c.ConstantPool[classPoolIndex]
	if entry.Kind != ConstClass {
		return 0
	}
	return entry.RefIndex
}

func slashToDot(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c == '/' {
			b[i] = '.'
		}
	}
	return string(b)
}
