package classfile

import (
	"fmt"
	"testing"

	"jvmaot/bytecode"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	if !cond {
		t.Fatalf(fmt.Sprintf("%v %s", cond, format), args...)
	}
}

// buildSimpleClass constructs a minimal one-method class:
//
//	int f() { return 2 + 3; }
//
// as raw instructions (no pre-folding), with a constant pool holding just
// what writeMethod/findMethodRefs need plus a "Code" UTF8 entry.
func buildSimpleClass() *Class {
	pool := []Const{
		{}, // index 0, unused
		{Kind: ConstUTF8, UTF8: "f"},    // 1
		{Kind: ConstUTF8, UTF8: "()I"},  // 2
		{Kind: ConstUTF8, UTF8: "Code"}, // 3
	}
	m := Method{
		Name:         "f",
		Descriptor:   "()I",
		CodeAttrName: 3,
		MaxStack:     2,
		MaxLocals:    1,
		Instructions: []Instruction{
			{Kind: InstrOp, Op: bytecode.Iconst2},
			{Kind: InstrOp, Op: bytecode.Iconst3},
			{Kind: InstrOp, Op: bytecode.Iadd},
			{Kind: InstrOp, Op: bytecode.Ireturn},
		},
	}
	return &Class{
		MinorVersion: 0,
		MajorVersion: 52,
		ConstantPool: pool,
		AccessFlags:  0x21,
		Methods:      []Method{m},
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	c := buildSimpleClass()
	data, err := Write(c)
	assert(t, err == nil, "Write failed: %v", err)
	assert(t, len(data) >= 4, "written class-file too short")

	parsed, err := Parse(data)
	assert(t, err == nil, "Parse failed: %v", err)
	assert(t, parsed.MajorVersion == 52, "expected major version 52, got %d", parsed.MajorVersion)

	m, ok := parsed.Method("f", "()I")
	assert(t, ok, "expected to find method f()I after round trip")
	assert(t, m.ReturnsInt(), "f()I should be int-returning")

	var ops []bytecode.Opcode
	for _, inst := range m.Instructions {
		if inst.Kind == InstrOp {
			ops = append(ops, inst.Op)
		}
	}
	assert(t, len(ops) == 4, "expected 4 decoded ops, got %d: %v", len(ops), ops)
	assert(t, ops[0] == bytecode.Iconst2 && ops[1] == bytecode.Iconst3 && ops[2] == bytecode.Iadd && ops[3] == bytecode.Ireturn,
		"unexpected decoded opcode sequence: %v", ops)
}

// TestWriteParseRoundTripPreservesLineNumberTable exercises the path
// virtually every javac-compiled method takes (reader.go's
// insertLineNumbers turns a decoded LineNumberTable into synthetic
// InstrLineNumber nodes): Write must re-synthesize a real
// "LineNumberTable" pool entry and a well-formed attribute body, not
// merely claim one exists in attributes_count, or re-parsing fails.
func TestWriteParseRoundTripPreservesLineNumberTable(t *testing.T) {
	pool := []Const{
		{},
		{Kind: ConstUTF8, UTF8: "f"},
		{Kind: ConstUTF8, UTF8: "()I"},
		{Kind: ConstUTF8, UTF8: "Code"},
	}
	m := Method{
		Name:         "f",
		Descriptor:   "()I",
		CodeAttrName: 3,
		MaxStack:     2,
		MaxLocals:    1,
		Instructions: []Instruction{
			{Kind: InstrLineNumber, LineNumber: 10},
			{Kind: InstrOp, Op: bytecode.Iconst2},
			{Kind: InstrOp, Op: bytecode.Iconst3},
			{Kind: InstrOp, Op: bytecode.Iadd},
			{Kind: InstrOp, Op: bytecode.Ireturn},
		},
	}
	c := &Class{MajorVersion: 52, ConstantPool: pool, Methods: []Method{m}}

	data, err := Write(c)
	assert(t, err == nil, "Write failed: %v", err)

	parsed, err := Parse(data)
	assert(t, err == nil, "Parse of re-encoded class with LineNumberTable failed: %v", err)

	pm, ok := parsed.Method("f", "()I")
	assert(t, ok, "expected to find method f()I after round trip")

	var lines []uint16
	for _, inst := range pm.Instructions {
		if inst.Kind == InstrLineNumber {
			lines = append(lines, inst.LineNumber)
		}
	}
	assert(t, len(lines) == 1, "expected 1 line-number marker recovered, got %d: %v", len(lines), lines)
	assert(t, lines[0] == 10, "expected line number 10, got %v", lines)
}

func TestParseRejectsBadMagic(t *testing.T) {
	_, err := Parse([]byte{0, 0, 0, 0})
	assert(t, err != nil, "expected ErrMalformedClass for bad magic")
}

func TestDecodeForwardBranchEmitsLabelExactlyOnce(t *testing.T) {
	// goto +4 ; nop ; return  -- branch target lands on `return`.
	pool := []Const{
		{},
		{Kind: ConstUTF8, UTF8: "g"},
		{Kind: ConstUTF8, UTF8: "()V"},
		{Kind: ConstUTF8, UTF8: "Code"},
	}
	code := []byte{
		byte(bytecode.Goto), 0x00, 0x04, // goto +4 -> offset 4 (the `return`)
		byte(bytecode.Nop),
		byte(bytecode.Return),
	}
	var body []byte
	body = putU16(body, 1) // max_stack
	body = putU16(body, 0) // max_locals
	body = putU32(body, uint32(len(code)))
	body = append(body, code...)
	body = putU16(body, 0) // exception table count
	body = putU16(body, 0) // attributes count

	classBytes := buildClassBytesWithMethod(pool, "g", "()V", body)
	parsed, err := Parse(classBytes)
	assert(t, err == nil, "Parse failed: %v", err)

	m, ok := parsed.Method("g", "()V")
	assert(t, ok, "expected method g()V")

	labelCount := 0
	for _, inst := range m.Instructions {
		if inst.Kind == InstrLabel {
			labelCount++
		}
	}
	assert(t, labelCount == 1, "expected exactly one Label for the forward branch target, got %d", labelCount)
}

// buildClassBytesWithMethod assembles a full class-file byte stream around
// a single method whose Code attribute body is already encoded.
func buildClassBytesWithMethod(pool []Const, name, descriptor string, codeBody []byte) []byte {
	var buf []byte
	buf = putU32(buf, Magic)
	buf = putU16(buf, 0)
	buf = putU16(buf, 52)

	buf = putU16(buf, uint16(len(pool)))
	for i := 1; i < len(pool); i++ {
		e := pool[i]
		buf = append(buf, byte(e.Kind))
		raw := []byte(e.UTF8)
		buf = putU16(buf, uint16(len(raw)))
		buf = append(buf, raw...)
	}

	buf = putU16(buf, 0x21) // access flags
	buf = putU16(buf, 0)    // this_class
	buf = putU16(buf, 0)    // super_class
	buf = putU16(buf, 0)    // interfaces count
	buf = putU16(buf, 0)    // fields count

	buf = putU16(buf, 1) // methods count
	buf = putU16(buf, 0) // method access flags
	buf = putU16(buf, 1) // name index
	buf = putU16(buf, 2) // descriptor index
	buf = putU16(buf, 1) // attributes count
	buf = putU16(buf, 3) // "Code" name index
	buf = putU32(buf, uint32(len(codeBody)))
	buf = append(buf, codeBody...)

	buf = putU16(buf, 0) // class attributes count
	return buf
}
