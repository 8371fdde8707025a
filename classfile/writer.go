package classfile

import (
	"fmt"

	"jvmaot/bytecode"
)

// Write re-encodes a Class into class-file bytes. It is the writer half
// of the JIT round-trip (§4.1, §9 "decode-then-re-encode round-trip with
// a canonical ordering"): every pass-through field (pool, fields,
// attributes, access flags) is emitted exactly as stored, and every
// method's instruction list is re-assembled into a fresh Code array,
// recomputing branch offsets and the LineNumberTable since constant
// folding or dead-code elimination may have changed instruction sizes.
func Write(c *Class) ([]byte, error) {
	// Encode every method's instructions before the constant pool is
	// serialized below: a method whose instructions carry LineNumber
	// markers needs a "LineNumberTable" UTF8 pool entry, which may not
	// exist yet and must be interned (possibly appending to c.ConstantPool)
	// before the pool header and bytes are written out.
	methodCode := make([][]byte, len(c.Methods))
	methodLines := make([][]lineEntry, len(c.Methods))
	needLineTable := false
	for i, m := range c.Methods {
		if len(m.Instructions) == 0 {
			continue
		}
		code, lineEntries, err := encodeInstructions(m.Instructions)
		if err != nil {
			return nil, err
		}
		methodCode[i] = code
		methodLines[i] = lineEntries
		if len(lineEntries) > 0 {
			needLineTable = true
		}
	}
	var lineTableNameIdx uint16
	if needLineTable {
		lineTableNameIdx = internUTF8(c, "LineNumberTable")
	}

	var buf []byte
	buf = putU32(buf, Magic)
	buf = putU16(buf, c.MinorVersion)
	buf = putU16(buf, c.MajorVersion)

	buf = writeConstantPool(buf, c.ConstantPool)

	buf = putU16(buf, c.AccessFlags)
	buf = putU16(buf, c.ThisClass)
	buf = putU16(buf, c.SuperClass)

	buf = putU16(buf, uint16(len(c.Interfaces)))
	for _, i := range c.Interfaces {
		buf = putU16(buf, i)
	}

	buf = putU16(buf, uint16(len(c.Fields)))
	for _, f := range c.Fields {
		buf = putU16(buf, f.AccessFlags)
		buf = putU16(buf, f.NameIndex)
		buf = putU16(buf, f.DescIndex)
		buf = writeAttributes(buf, f.Attributes)
	}

	buf = putU16(buf, uint16(len(c.Methods)))
	for i, m := range c.Methods {
		var err error
		buf, err = writeMethod(buf, c.ConstantPool, m, methodCode[i], methodLines[i], lineTableNameIdx)
		if err != nil {
			return nil, err
		}
	}

	buf = writeAttributes(buf, c.Attributes)

	return buf, nil
}

// internUTF8 returns the constant-pool index of an existing UTF8 entry
// equal to s, or appends a new one and returns its index. Mirrors
// optimize/fold.go's internInt; used so a re-encoded LineNumberTable
// attribute name always resolves to a real pool entry instead of a
// dangling one.
func internUTF8(c *Class, s string) uint16 {
	for i, e := range c.ConstantPool {
		if e.Kind == ConstUTF8 && e.UTF8 == s {
			return uint16(i)
		}
	}
	idx := uint16(len(c.ConstantPool))
	c.ConstantPool = append(c.ConstantPool, Const{Kind: ConstUTF8, UTF8: s})
	return idx
}

func putU16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

func putU32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func writeAttributes(buf []byte, attrs []Attribute) []byte {
	buf = putU16(buf, uint16(len(attrs)))
	for _, a := range attrs {
		buf = putU16(buf, a.NameIndex)
		buf = putU32(buf, uint32(len(a.Info)))
		buf = append(buf, a.Info...)
	}
	return buf
}

func writeConstantPool(buf []byte, pool []Const) []byte {
	buf = putU16(buf, uint16(len(pool)))
	for i := 1; i < len(pool); i++ {
		entry := pool[i]
		buf = append(buf, byte(entry.Kind))
		switch entry.Kind {
		case ConstUTF8:
			raw := []byte(entry.UTF8)
			buf = putU16(buf, uint16(len(raw)))
			buf = append(buf, raw...)
		case ConstInteger, ConstFloat:
			buf = putU32(buf, uint32(entry.IntVal))
		case ConstLong, ConstDouble:
			buf = putU32(buf, uint32(entry.LongVal>>32))
			buf = putU32(buf, uint32(entry.LongVal))
			i++ // skip the phantom second slot
		case ConstClass, ConstString, ConstMethodType:
			buf = putU16(buf, entry.RefIndex)
		case ConstFieldref, ConstMethodref, ConstInterfaceMethodref:
			buf = putU16(buf, entry.ClassIndex)
			buf = putU16(buf, entry.NameTypeIndex)
		case ConstNameAndType:
			buf = putU16(buf, entry.NameIndex)
			buf = putU16(buf, entry.TypeIndex)
		case ConstMethodHandle:
			buf = append(buf, entry.RefKind)
			buf = putU16(buf, entry.RefIndex)
		case ConstInvokeDynamic:
			buf = putU16(buf, entry.ClassIndex)
			buf = putU16(buf, entry.NameTypeIndex)
		}
	}
	return buf
}

func writeMethod(buf []byte, pool []Const, m Method, code []byte, lineEntries []lineEntry, lineTableNameIdx uint16) ([]byte, error) {
	nameIdx, descIdx, err := findMethodRefs(pool, m)
	if err != nil {
		return nil, err
	}

	buf = putU16(buf, m.AccessFlags)
	buf = putU16(buf, nameIdx)
	buf = putU16(buf, descIdx)

	hasCode := len(m.Instructions) > 0
	attrCount := len(m.Attributes)
	if hasCode {
		attrCount++
	}
	buf = putU16(buf, uint16(attrCount))

	for _, a := range m.Attributes {
		buf = putU16(buf, a.NameIndex)
		buf = putU32(buf, uint32(len(a.Info)))
		buf = append(buf, a.Info...)
	}

	if hasCode {
		codeAttr := encodeCodeAttribute(m, code, lineEntries, lineTableNameIdx)
		buf = putU16(buf, m.CodeAttrName)
		buf = putU32(buf, uint32(len(codeAttr)))
		buf = append(buf, codeAttr...)
	}

	return buf, nil
}

func findMethodRefs(pool []Const, m Method) (nameIdx, descIdx uint16, err error) {
	for i, e := range pool {
		if e.Kind == ConstUTF8 && e.UTF8 == m.Name && nameIdx == 0 {
			nameIdx = uint16(i)
		}
		if e.Kind == ConstUTF8 && e.UTF8 == m.Descriptor && descIdx == 0 {
			descIdx = uint16(i)
		}
	}
	if nameIdx == 0 || descIdx == 0 {
		return 0, 0, fmt.Errorf("%w: method %s%s not found in constant pool", ErrMalformedClass, m.Name, m.Descriptor)
	}
	return nameIdx, descIdx, nil
}

// encodeCodeAttribute assembles a Code attribute body from a method's
// already-encoded instruction bytes and line-number entries (computed
// once in Write, since the latter needs a pool index that must be
// interned before the constant pool itself is serialized). When
// lineEntries is non-empty, a LineNumberTable attribute is appended and
// counted in attributes_count; otherwise attributes_count is 0.
func encodeCodeAttribute(m Method, code []byte, lineEntries []lineEntry, lineTableNameIdx uint16) []byte {
	var body []byte
	body = putU16(body, m.MaxStack)
	body = putU16(body, m.MaxLocals)
	body = putU32(body, uint32(len(code)))
	body = append(body, code...)

	body = putU16(body, uint16(len(m.Exceptions)))
	for _, e := range m.Exceptions {
		body = putU16(body, e.StartPC)
		body = putU16(body, e.EndPC)
		body = putU16(body, e.HandlerPC)
		body = putU16(body, e.CatchType)
	}

	if len(lineEntries) == 0 {
		body = putU16(body, 0)
		return body
	}

	body = putU16(body, 1)
	var lineTable []byte
	lineTable = putU16(lineTable, uint16(len(lineEntries)))
	for _, e := range lineEntries {
		lineTable = putU16(lineTable, uint16(e.offset))
		lineTable = putU16(lineTable, e.line)
	}
	body = putU16(body, lineTableNameIdx)
	body = putU32(body, uint32(len(lineTable)))
	body = append(body, lineTable...)

	return body
}

// encodeInstructions lowers a method's Instruction list (including Label
// and LineNumber synthetic nodes) back into a raw bytecode array,
// resolving branch targets to the correct relative offsets for the new
// layout.
func encodeInstructions(instrs []Instruction) (code []byte, lineEntries []lineEntry, err error) {
	// Pass 1: assign a byte offset to every label id and every real
	// instruction, in order, without yet knowing branch deltas (branch
	// instruction sizes are fixed by their opcode, independent of target).
	offsets := make([]int, len(instrs))
	labelOffsets := map[int]int{}
	pos := 0
	for i, inst := range instrs {
		offsets[i] = pos
		switch inst.Kind {
		case InstrLabel:
			labelOffsets[inst.LabelTarget] = pos
		case InstrLineNumber:
			// zero width; recorded against the next real instruction's
			// offset once known (second pass)
		case InstrOp:
			size, err := instrSize(inst)
			if err != nil {
				return nil, nil, err
			}
			pos += size
		}
	}

	// Pass 2: emit bytes.
	var out []byte
	pendingLine := int32(-1)
	for i, inst := range instrs {
		switch inst.Kind {
		case InstrLabel:
			// transparent
		case InstrLineNumber:
			pendingLine = int32(inst.LineNumber)
		case InstrOp:
			if pendingLine >= 0 {
				lineEntries = append(lineEntries, lineEntry{offset: offsets[i], line: uint16(pendingLine)})
				pendingLine = -1
			}
			enc, err := encodeInstruction(inst, offsets[i], labelOffsets)
			if err != nil {
				return nil, nil, err
			}
			out = append(out, enc...)
		}
	}
	return out, lineEntries, nil
}

type lineEntry struct {
	offset int
	line   uint16
}

func instrSize(inst Instruction) (int, error) {
	if inst.Wide {
		if inst.Op == bytecode.Iinc {
			return 6, nil // wide + opcode + idx(2) + amount(2)
		}
		return 4, nil // wide + opcode + idx(2)
	}
	if inst.SwitchRaw != nil {
		return len(inst.SwitchRaw), nil
	}
	switch inst.Op {
	case bytecode.Bipush, bytecode.Newarray:
		return 2, nil
	case bytecode.Sipush, bytecode.Ldc2W, bytecode.LdcW,
		bytecode.Iload, bytecode.Lload, bytecode.Fload, bytecode.Dload, bytecode.Aload,
		bytecode.Istore, bytecode.Lstore, bytecode.Fstore, bytecode.Dstore, bytecode.Astore, bytecode.Ret,
		bytecode.Getstatic, bytecode.Putstatic, bytecode.Getfield, bytecode.Putfield,
		bytecode.Invokevirtual, bytecode.Invokespecial, bytecode.Invokestatic,
		bytecode.New, bytecode.Anewarray, bytecode.Checkcast, bytecode.Instanceof,
		bytecode.Ifeq, bytecode.Ifne, bytecode.Iflt, bytecode.Ifge, bytecode.Ifgt, bytecode.Ifle,
		bytecode.IfIcmpeq, bytecode.IfIcmpne, bytecode.IfIcmplt, bytecode.IfIcmpge,
		bytecode.IfIcmpgt, bytecode.IfIcmple, bytecode.IfAcmpeq, bytecode.IfAcmpne,
		bytecode.Goto, bytecode.Jsr, bytecode.Ifnull, bytecode.Ifnonnull:
		return 3, nil
	case bytecode.Ldc:
		return 2, nil
	case bytecode.Iinc:
		return 3, nil
	case bytecode.GotoW, bytecode.JsrW:
		return 5, nil
	case bytecode.Invokeinterface, bytecode.Invokedynamic:
		return 5, nil
	case bytecode.Multianewarray:
		return 4, nil
	default:
		return 1, nil // no-operand opcode
	}
}

func encodeInstruction(inst Instruction, offset int, labelOffsets map[int]int) ([]byte, error) {
	b := []byte{byte(inst.Op)}
	switch {
	case inst.Wide:
		// re-encode as wide prefix + original opcode (Op already holds the
		// wrapped opcode, so restore the 0xC4 prefix here)
		b = []byte{byte(bytecode.Wide), byte(inst.Op)}
		b = append(b, byte(inst.LocalIndex>>8), byte(inst.LocalIndex))
		if inst.Op == bytecode.Iinc {
			b = append(b, byte(inst.IntImmediate>>8), byte(inst.IntImmediate))
		}
		return b, nil
	case inst.SwitchRaw != nil:
		return append([]byte{}, inst.SwitchRaw...), nil
	}

	switch inst.Op {
	case bytecode.Bipush:
		b = append(b, byte(int8(inst.IntImmediate)))
	case bytecode.Newarray:
		b = append(b, byte(inst.IntImmediate))
	case bytecode.Sipush:
		v := uint16(int16(inst.IntImmediate))
		b = append(b, byte(v>>8), byte(v))
	case bytecode.Ldc:
		b = append(b, byte(inst.ConstIndex))
	case bytecode.LdcW, bytecode.Ldc2W:
		b = append(b, byte(inst.ConstIndex>>8), byte(inst.ConstIndex))
	case bytecode.Iload, bytecode.Lload, bytecode.Fload, bytecode.Dload, bytecode.Aload,
		bytecode.Istore, bytecode.Lstore, bytecode.Fstore, bytecode.Dstore, bytecode.Astore, bytecode.Ret:
		b = append(b, byte(inst.LocalIndex))
	case bytecode.Iinc:
		b = append(b, byte(inst.LocalIndex), byte(int8(inst.IntImmediate)))
	case bytecode.Getstatic, bytecode.Putstatic, bytecode.Getfield, bytecode.Putfield,
		bytecode.Invokevirtual, bytecode.Invokespecial, bytecode.Invokestatic,
		bytecode.New, bytecode.Anewarray, bytecode.Checkcast, bytecode.Instanceof:
		b = append(b, byte(inst.ConstIndex>>8), byte(inst.ConstIndex))
	case bytecode.Invokeinterface:
		b = append(b, byte(inst.ConstIndex>>8), byte(inst.ConstIndex), byte(inst.IntImmediate), 0)
	case bytecode.Invokedynamic:
		b = append(b, byte(inst.ConstIndex>>8), byte(inst.ConstIndex), 0, 0)
	case bytecode.Multianewarray:
		b = append(b, byte(inst.ConstIndex>>8), byte(inst.ConstIndex), byte(inst.IntImmediate))
	case bytecode.Ifeq, bytecode.Ifne, bytecode.Iflt, bytecode.Ifge, bytecode.Ifgt, bytecode.Ifle,
		bytecode.IfIcmpeq, bytecode.IfIcmpne, bytecode.IfIcmplt, bytecode.IfIcmpge,
		bytecode.IfIcmpgt, bytecode.IfIcmple, bytecode.IfAcmpeq, bytecode.IfAcmpne,
		bytecode.Goto, bytecode.Jsr, bytecode.Ifnull, bytecode.Ifnonnull:
		target, ok := labelOffsets[inst.LabelTarget]
		if !ok {
			return nil, fmt.Errorf("%w: unresolved branch label %d", ErrMalformedClass, inst.LabelTarget)
		}
		delta := int16(target - offset)
		b = append(b, byte(uint16(delta)>>8), byte(uint16(delta)))
	case bytecode.GotoW, bytecode.JsrW:
		target, ok := labelOffsets[inst.LabelTarget]
		if !ok {
			return nil, fmt.Errorf("%w: unresolved branch label %d", ErrMalformedClass, inst.LabelTarget)
		}
		delta := int32(target - offset)
		b = append(b, byte(uint32(delta)>>24), byte(uint32(delta)>>16), byte(uint32(delta)>>8), byte(uint32(delta)))
	}
	return b, nil
}
