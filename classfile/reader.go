package classfile

import (
	"fmt"

	"jvmaot/bytecode"
)

// cursor is a forward-only big-endian byte reader over a class-file's
// contents, matching the wire format's network-byte-order convention.
type cursor struct {
	buf []byte
	pos int
}

func (c *cursor) remaining() int { return len(c.buf) - c.pos }

func (c *cursor) u1() (uint8, error) {
	if c.remaining() < 1 {
		return 0, fmt.Errorf("%w: truncated u1 at offset %d", ErrMalformedClass, c.pos)
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) u2() (uint16, error) {
	if c.remaining() < 2 {
		return 0, fmt.Errorf("%w: truncated u2 at offset %d", ErrMalformedClass, c.pos)
	}
	v := uint16(c.buf[c.pos])<<8 | uint16(c.buf[c.pos+1])
	c.pos += 2
	return v, nil
}

func (c *cursor) u4() (uint32, error) {
	if c.remaining() < 4 {
		return 0, fmt.Errorf("%w: truncated u4 at offset %d", ErrMalformedClass, c.pos)
	}
	v := uint32(c.buf[c.pos])<<24 | uint32(c.buf[c.pos+1])<<16 |
		uint32(c.buf[c.pos+2])<<8 | uint32(c.buf[c.pos+3])
	c.pos += 4
	return v, nil
}

func (c *cursor) bytes(n int) ([]byte, error) {
	if c.remaining() < n {
		return nil, fmt.Errorf("%w: truncated %d-byte span at offset %d", ErrMalformedClass, n, c.pos)
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

// Parse decodes a well-formed class-file byte stream into a Class, per
// §4.1. It fails with ErrMalformedClass for structural problems and
// ErrUnsupportedConstant for constant-pool tags it does not understand.
func Parse(data []byte) (*Class, error) {
	c := &cursor{buf: data}

	magic, err := c.u4()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrMalformedClass, magic)
	}

	minor, err := c.u2()
	if err != nil {
		return nil, err
	}
	major, err := c.u2()
	if err != nil {
		return nil, err
	}

	pool, err := readConstantPool(c)
	if err != nil {
		return nil, err
	}

	accessFlags, err := c.u2()
	if err != nil {
		return nil, err
	}
	thisClass, err := c.u2()
	if err != nil {
		return nil, err
	}
	superClass, err := c.u2()
	if err != nil {
		return nil, err
	}

	interfaceCount, err := c.u2()
	if err != nil {
		return nil, err
	}
	interfaces := make([]uint16, interfaceCount)
	for i := range interfaces {
		interfaces[i], err = c.u2()
		if err != nil {
			return nil, err
		}
	}

	fields, err := readFields(c, pool)
	if err != nil {
		return nil, err
	}

	methods, err := readMethods(c, pool)
	if err != nil {
		return nil, err
	}

	classAttrs, err := readAttributes(c)
	if err != nil {
		return nil, err
	}

	return &Class{
		MinorVersion: minor,
		MajorVersion: major,
		ConstantPool: pool,
		AccessFlags:  accessFlags,
		ThisClass:    thisClass,
		SuperClass:   superClass,
		Interfaces:   interfaces,
		Fields:       fields,
		Methods:      methods,
		Attributes:   classAttrs,
	}, nil
}

func readConstantPool(c *cursor) ([]Const, error) {
	count, err := c.u2()
	if err != nil {
		return nil, err
	}
	pool := make([]Const, count) // index 0 unused; long/double occupy two slots
	for i := 1; i < int(count); i++ {
		tag, err := c.u1()
		if err != nil {
			return nil, err
		}
		var entry Const
		entry.Kind = ConstKind(tag)
		switch entry.Kind {
		case ConstUTF8:
			length, err := c.u2()
			if err != nil {
				return nil, err
			}
			raw, err := c.bytes(int(length))
			if err != nil {
				return nil, err
			}
			entry.UTF8 = string(raw)
		case ConstInteger:
			v, err := c.u4()
			if err != nil {
				return nil, err
			}
			entry.IntVal = int32(v)
		case ConstFloat:
			v, err := c.u4()
			if err != nil {
				return nil, err
			}
			entry.IntVal = int32(v) // raw bits, unused by codegen
		case ConstLong, ConstDouble:
			hi, err := c.u4()
			if err != nil {
				return nil, err
			}
			lo, err := c.u4()
			if err != nil {
				return nil, err
			}
			entry.LongVal = int64(hi)<<32 | int64(lo)
			entry.Wide = true
		case ConstClass, ConstString, ConstMethodType:
			idx, err := c.u2()
			if err != nil {
				return nil, err
			}
			entry.RefIndex = idx
		case ConstFieldref, ConstMethodref, ConstInterfaceMethodref:
			ci, err := c.u2()
			if err != nil {
				return nil, err
			}
			nt, err := c.u2()
			if err != nil {
				return nil, err
			}
			entry.ClassIndex = ci
			entry.NameTypeIndex = nt
		case ConstNameAndType:
			n, err := c.u2()
			if err != nil {
				return nil, err
			}
			t, err := c.u2()
			if err != nil {
				return nil, err
			}
			entry.NameIndex = n
			entry.TypeIndex = t
		case ConstMethodHandle:
			kind, err := c.u1()
			if err != nil {
				return nil, err
			}
			ref, err := c.u2()
			if err != nil {
				return nil, err
			}
			entry.RefKind = kind
			entry.RefIndex = ref
		case ConstInvokeDynamic:
			bootstrap, err := c.u2()
			if err != nil {
				return nil, err
			}
			nt, err := c.u2()
			if err != nil {
				return nil, err
			}
			entry.ClassIndex = bootstrap
			entry.NameTypeIndex = nt
		default:
			return nil, fmt.Errorf("%w: tag %d at pool index %d", ErrUnsupportedConstant, tag, i)
		}
		pool[i] = entry
		if entry.Wide {
			i++ // long/double consume the next slot too
		}
	}
	return pool, nil
}

func readAttributes(c *cursor) ([]Attribute, error) {
	count, err := c.u2()
	if err != nil {
		return nil, err
	}
	attrs := make([]Attribute, count)
	for i := range attrs {
		nameIdx, err := c.u2()
		if err != nil {
			return nil, err
		}
		length, err := c.u4()
		if err != nil {
			return nil, err
		}
		info, err := c.bytes(int(length))
		if err != nil {
			return nil, err
		}
		infoCopy := make([]byte, len(info))
		copy(infoCopy, info)
		attrs[i] = Attribute{NameIndex: nameIdx, Info: infoCopy}
	}
	return attrs, nil
}

func readFields(c *cursor, pool []Const) ([]Field, error) {
	count, err := c.u2()
	if err != nil {
		return nil, err
	}
	fields := make([]Field, count)
	for i := range fields {
		af, err := c.u2()
		if err != nil {
			return nil, err
		}
		nameIdx, err := c.u2()
		if err != nil {
			return nil, err
		}
		descIdx, err := c.u2()
		if err != nil {
			return nil, err
		}
		attrs, err := readAttributes(c)
		if err != nil {
			return nil, err
		}
		fields[i] = Field{AccessFlags: af, NameIndex: nameIdx, DescIndex: descIdx, Attributes: attrs}
	}
	return fields, nil
}

func readMethods(c *cursor, pool []Const) ([]Method, error) {
	count, err := c.u2()
	if err != nil {
		return nil, err
	}
	methods := make([]Method, count)
	for i := range methods {
		m, err := readMethod(c, pool)
		if err != nil {
			return nil, err
		}
		methods[i] = m
	}
	return methods, nil
}

func constName(pool []Const, idx uint16) string {
	if int(idx) <= 0 || int(idx) >= len(pool) {
		return ""
	}
	if pool[idx].Kind != ConstUTF8 {
		return ""
	}
	return pool[idx].UTF8
}

func readMethod(c *cursor, pool []Const) (Method, error) {
	af, err := c.u2()
	if err != nil {
		return Method{}, err
	}
	nameIdx, err := c.u2()
	if err != nil {
		return Method{}, err
	}
	descIdx, err := c.u2()
	if err != nil {
		return Method{}, err
	}

	attrCount, err := c.u2()
	if err != nil {
		return Method{}, err
	}

	method := Method{
		AccessFlags: af,
		Name:        constName(pool, nameIdx),
		Descriptor:  constName(pool, descIdx),
	}

	for i := uint16(0); i < attrCount; i++ {
		attrNameIdx, err := c.u2()
		if err != nil {
			return Method{}, err
		}
		length, err := c.u4()
		if err != nil {
			return Method{}, err
		}
		body, err := c.bytes(int(length))
		if err != nil {
			return Method{}, err
		}

		if constName(pool, attrNameIdx) == "Code" {
			method.CodeAttrName = attrNameIdx
			if err := decodeCode(body, pool, &method); err != nil {
				return Method{}, err
			}
			continue
		}

		infoCopy := make([]byte, len(body))
		copy(infoCopy, body)
		method.Attributes = append(method.Attributes, Attribute{NameIndex: attrNameIdx, Info: infoCopy})
	}

	return method, nil
}

// decodeCode decodes a Code attribute's body (§4.1: "instruction stream
// must be fully decoded ... enough attribute handling to preserve
// ordering for round-trip"). wide, branch offsets, tableswitch and
// lookupswitch are decoded correctly so later instruction offsets stay
// valid, even though none of them are emitted by the code generator.
func decodeCode(body []byte, pool []Const, method *Method) error {
	cc := &cursor{buf: body}

	maxStack, err := cc.u2()
	if err != nil {
		return err
	}
	maxLocals, err := cc.u2()
	if err != nil {
		return err
	}
	method.MaxStack = maxStack
	method.MaxLocals = maxLocals

	codeLen, err := cc.u4()
	if err != nil {
		return err
	}
	code, err := cc.bytes(int(codeLen))
	if err != nil {
		return err
	}

	instructions, err := decodeInstructions(code)
	if err != nil {
		return err
	}
	method.Instructions = instructions

	excCount, err := cc.u2()
	if err != nil {
		return err
	}
	for i := uint16(0); i < excCount; i++ {
		start, err := cc.u2()
		if err != nil {
			return err
		}
		end, err := cc.u2()
		if err != nil {
			return err
		}
		handler, err := cc.u2()
		if err != nil {
			return err
		}
		catch, err := cc.u2()
		if err != nil {
			return err
		}
		method.Exceptions = append(method.Exceptions, ExceptionHandler{
			StartPC: start, EndPC: end, HandlerPC: handler, CatchType: catch,
		})
	}

	codeAttrs, err := readAttributes(cc)
	if err != nil {
		return err
	}
	// LineNumberTable becomes synthetic LineNumber instructions interleaved
	// by offset so C3's dead-code pass can see them between a return and
	// the next Label, per §4.3 ("Metadata nodes ... are preserved").
	for _, attr := range codeAttrs {
		if constName(pool, attr.NameIndex) == "LineNumberTable" {
			insertLineNumbers(method, attr.Info)
		} else {
			method.Attributes = append(method.Attributes, attr)
		}
	}

	return nil
}

func insertLineNumbers(method *Method, info []byte) {
	lc := &cursor{buf: info}
	count, err := lc.u2()
	if err != nil {
		return
	}
	type entry struct {
		offset int
		line   uint16
	}
	var entries []entry
	for i := uint16(0); i < count; i++ {
		startPC, err := lc.u2()
		if err != nil {
			return
		}
		lineNo, err := lc.u2()
		if err != nil {
			return
		}
		entries = append(entries, entry{int(startPC), lineNo})
	}
	for _, e := range entries {
		idx := 0
		for idx < len(method.Instructions) && (method.Instructions[idx].Kind != InstrOp ||
			method.Instructions[idx].Offset < e.offset) {
			idx++
		}
		ln := Instruction{Kind: InstrLineNumber, LineNumber: e.line}
		method.Instructions = append(method.Instructions, Instruction{})
		copy(method.Instructions[idx+1:], method.Instructions[idx:])
		method.Instructions[idx] = ln
	}
}

// decodeInstructions walks a raw Code array into a list of Instruction
// nodes plus synthetic Label nodes at every branch target, so C3's
// dead-code elimination can recognize label boundaries.
func decodeInstructions(code []byte) ([]Instruction, error) {
	type raw struct {
		inst   Instruction
		nextPC int
	}
	var decoded []raw
	targets := map[int]bool{}

	pos := 0
	for pos < len(code) {
		start := pos
		op := bytecode.Opcode(code[pos])
		pos++

		inst := Instruction{Kind: InstrOp, Op: op, Offset: start, LabelTarget: -1}

		switch op {
		case bytecode.Nop, bytecode.AconstNull,
			bytecode.IconstM1, bytecode.Iconst0, bytecode.Iconst1, bytecode.Iconst2,
			bytecode.Iconst3, bytecode.Iconst4, bytecode.Iconst5,
			bytecode.Lconst0, bytecode.Lconst1, bytecode.Fconst0, bytecode.Fconst1, bytecode.Fconst2,
			bytecode.Dconst0, bytecode.Dconst1,
			bytecode.Iload0, bytecode.Iload1, bytecode.Iload2, bytecode.Iload3,
			bytecode.Istore0, bytecode.Istore1, bytecode.Istore2, bytecode.Istore3,
			bytecode.Iaload, bytecode.Iastore,
			bytecode.Pop, bytecode.Pop2, bytecode.Dup, bytecode.DupX1, bytecode.DupX2, bytecode.Dup2, bytecode.Swap,
			bytecode.Iadd, bytecode.Ladd, bytecode.Fadd, bytecode.Dadd,
			bytecode.Isub, bytecode.Lsub, bytecode.Fsub, bytecode.Dsub,
			bytecode.Imul, bytecode.Lmul, bytecode.Fmul, bytecode.Dmul,
			bytecode.Idiv, bytecode.Ldiv, bytecode.Fdiv, bytecode.Ddiv,
			bytecode.Irem, bytecode.Lrem, bytecode.Frem, bytecode.Drem,
			bytecode.Ineg, bytecode.Lneg, bytecode.Fneg, bytecode.Dneg,
			bytecode.Ishl, bytecode.Lshl, bytecode.Ishr, bytecode.Lshr, bytecode.Iushr, bytecode.Lushr,
			bytecode.Iand, bytecode.Land, bytecode.Ior, bytecode.Lor, bytecode.Ixor, bytecode.Lxor,
			bytecode.I2l, bytecode.I2f, bytecode.I2d, bytecode.L2i, bytecode.Lcmp,
			bytecode.Ireturn, bytecode.Lreturn, bytecode.Freturn, bytecode.Dreturn, bytecode.Areturn, bytecode.Return,
			bytecode.Arraylength, bytecode.Athrow, bytecode.Monitorenter, bytecode.Monitorexit:
			// no operand

		case bytecode.Bipush:
			if pos >= len(code) {
				return nil, fmt.Errorf("%w: truncated bipush", ErrMalformedClass)
			}
			inst.IntImmediate = int32(int8(code[pos]))
			pos++

		case bytecode.Sipush:
			if pos+2 > len(code) {
				return nil, fmt.Errorf("%w: truncated sipush", ErrMalformedClass)
			}
			inst.IntImmediate = int32(int16(uint16(code[pos])<<8 | uint16(code[pos+1])))
			pos += 2

		case bytecode.Ldc:
			if pos >= len(code) {
				return nil, fmt.Errorf("%w: truncated ldc", ErrMalformedClass)
			}
			inst.ConstIndex = uint16(code[pos])
			pos++

		case bytecode.LdcW, bytecode.Ldc2W:
			if pos+2 > len(code) {
				return nil, fmt.Errorf("%w: truncated ldc_w/ldc2_w", ErrMalformedClass)
			}
			inst.ConstIndex = uint16(code[pos])<<8 | uint16(code[pos+1])
			pos += 2

		case bytecode.Iload, bytecode.Lload, bytecode.Fload, bytecode.Dload, bytecode.Aload,
			bytecode.Istore, bytecode.Lstore, bytecode.Fstore, bytecode.Dstore, bytecode.Astore, bytecode.Ret:
			if pos >= len(code) {
				return nil, fmt.Errorf("%w: truncated local-index instruction", ErrMalformedClass)
			}
			inst.LocalIndex = int(code[pos])
			pos++

		case bytecode.Iinc:
			if pos+2 > len(code) {
				return nil, fmt.Errorf("%w: truncated iinc", ErrMalformedClass)
			}
			inst.LocalIndex = int(code[pos])
			inst.IntImmediate = int32(int8(code[pos+1]))
			pos += 2

		case bytecode.Wide:
			wideOp, target, n, err := decodeWide(code, pos)
			if err != nil {
				return nil, err
			}
			inst.Op = wideOp
			inst.Wide = true
			if wideOp == bytecode.Iinc {
				inst.LocalIndex = target
				inst.IntImmediate = n
			} else {
				inst.LocalIndex = target
			}
			pos += wideConsumed(wideOp)

		case bytecode.Ifeq, bytecode.Ifne, bytecode.Iflt, bytecode.Ifge, bytecode.Ifgt, bytecode.Ifle,
			bytecode.IfIcmpeq, bytecode.IfIcmpne, bytecode.IfIcmplt, bytecode.IfIcmpge,
			bytecode.IfIcmpgt, bytecode.IfIcmple, bytecode.IfAcmpeq, bytecode.IfAcmpne,
			bytecode.Goto, bytecode.Jsr, bytecode.Ifnull, bytecode.Ifnonnull:
			if pos+2 > len(code) {
				return nil, fmt.Errorf("%w: truncated branch instruction", ErrMalformedClass)
			}
			off := int16(uint16(code[pos])<<8 | uint16(code[pos+1]))
			pos += 2
			target := start + int(off)
			targets[target] = true
			inst.LabelTarget = target // temporarily holds byte offset; resolved to label id below

		case bytecode.GotoW, bytecode.JsrW:
			if pos+4 > len(code) {
				return nil, fmt.Errorf("%w: truncated goto_w/jsr_w", ErrMalformedClass)
			}
			off := int32(uint32(code[pos])<<24 | uint32(code[pos+1])<<16 | uint32(code[pos+2])<<8 | uint32(code[pos+3]))
			pos += 4
			target := start + int(off)
			targets[target] = true
			inst.LabelTarget = target

		case bytecode.Tableswitch:
			n, raw, err := decodeTableswitch(code, start, pos)
			if err != nil {
				return nil, err
			}
			inst.SwitchRaw = raw
			pos = n

		case bytecode.Lookupswitch:
			n, raw, err := decodeLookupswitch(code, start, pos)
			if err != nil {
				return nil, err
			}
			inst.SwitchRaw = raw
			pos = n

		case bytecode.Getstatic, bytecode.Putstatic, bytecode.Getfield, bytecode.Putfield,
			bytecode.Invokevirtual, bytecode.Invokespecial, bytecode.Invokestatic,
			bytecode.New, bytecode.Anewarray, bytecode.Checkcast, bytecode.Instanceof:
			if pos+2 > len(code) {
				return nil, fmt.Errorf("%w: truncated constant-pool-indexed instruction", ErrMalformedClass)
			}
			inst.ConstIndex = uint16(code[pos])<<8 | uint16(code[pos+1])
			pos += 2

		case bytecode.Invokeinterface:
			if pos+4 > len(code) {
				return nil, fmt.Errorf("%w: truncated invokeinterface", ErrMalformedClass)
			}
			inst.ConstIndex = uint16(code[pos])<<8 | uint16(code[pos+1])
			inst.IntImmediate = int32(code[pos+2]) // count, re-emitted by the writer
			pos += 4 // index(2) + count(1) + 0-byte(1)

		case bytecode.Invokedynamic:
			if pos+4 > len(code) {
				return nil, fmt.Errorf("%w: truncated invokedynamic", ErrMalformedClass)
			}
			inst.ConstIndex = uint16(code[pos])<<8 | uint16(code[pos+1])
			pos += 4

		case bytecode.Newarray:
			if pos >= len(code) {
				return nil, fmt.Errorf("%w: truncated newarray", ErrMalformedClass)
			}
			inst.IntImmediate = int32(code[pos])
			pos++

		case bytecode.Multianewarray:
			if pos+3 > len(code) {
				return nil, fmt.Errorf("%w: truncated multianewarray", ErrMalformedClass)
			}
			inst.ConstIndex = uint16(code[pos])<<8 | uint16(code[pos+1])
			inst.IntImmediate = int32(code[pos+2])
			pos += 3

		default:
			// Unrecognized opcode byte: pass through with no operand.
			// The code generator will replace it with a single nop.
		}

		decoded = append(decoded, raw{inst: inst, nextPC: pos})
	}

	// Pre-assign a label id to every distinct target offset (in ascending
	// offset order) before building the output list, so forward and
	// backward jumps resolve identically regardless of visit order.
	labelIDAt := map[int]int{}
	{
		var offsets []int
		for off := range targets {
			offsets = append(offsets, off)
		}
		// simple insertion sort; target sets are small (straight-line methods)
		for i := 1; i < len(offsets); i++ {
			for j := i; j > 0 && offsets[j-1] > offsets[j]; j-- {
				offsets[j-1], offsets[j] = offsets[j], offsets[j-1]
			}
		}
		for id, off := range offsets {
			labelIDAt[off] = id
		}
	}

	var out []Instruction
	emitted := map[int]bool{}
	emitLabelIfTarget := func(offset int) {
		if targets[offset] && !emitted[offset] {
			out = append(out, Label(labelIDAt[offset]))
			emitted[offset] = true
		}
	}

	for _, r := range decoded {
		emitLabelIfTarget(r.inst.Offset)
		inst := r.inst
		if inst.Kind == InstrOp && isBranchOp(inst.Op) && inst.LabelTarget >= 0 {
			inst.LabelTarget = labelIDAt[inst.LabelTarget]
		}
		out = append(out, inst)
	}
	// A branch target past the end of code (falls off the method) still
	// needs a terminal label so LabelTarget indices stay resolvable.
	emitLabelIfTarget(len(code))

	return out, nil
}

func isBranchOp(op bytecode.Opcode) bool {
	return bytecode.CategoryOf(op) == bytecode.CategoryBranch
}

func decodeWide(code []byte, pos int) (op bytecode.Opcode, operand int, n int32, err error) {
	if pos >= len(code) {
		return 0, 0, 0, fmt.Errorf("%w: truncated wide prefix", ErrMalformedClass)
	}
	op = bytecode.Opcode(code[pos])
	pos++
	if pos+2 > len(code) {
		return 0, 0, 0, fmt.Errorf("%w: truncated wide operand", ErrMalformedClass)
	}
	idx := int(uint16(code[pos])<<8 | uint16(code[pos+1]))
	pos += 2
	if op == bytecode.Iinc {
		if pos+2 > len(code) {
			return 0, 0, 0, fmt.Errorf("%w: truncated wide iinc", ErrMalformedClass)
		}
		n = int32(int16(uint16(code[pos])<<8 | uint16(code[pos+1])))
	}
	return op, idx, n, nil
}

func wideConsumed(op bytecode.Opcode) int {
	if op == bytecode.Iinc {
		return 1 + 2 + 2 // opcode + index + signed amount
	}
	return 1 + 2 // opcode + index
}

func decodeTableswitch(code []byte, start, pos int) (next int, raw []byte, err error) {
	padStart := pos
	// pad to 4-byte alignment relative to the start of the instruction stream
	for (start+ (pos-padStart)+1)%4 != 0 {
		pos++
	}
	if pos+12 > len(code) {
		return 0, nil, fmt.Errorf("%w: truncated tableswitch header", ErrMalformedClass)
	}
	low := int32(uint32(code[pos+4])<<24 | uint32(code[pos+5])<<16 | uint32(code[pos+6])<<8 | uint32(code[pos+7]))
	high := int32(uint32(code[pos+8])<<24 | uint32(code[pos+9])<<16 | uint32(code[pos+10])<<8 | uint32(code[pos+11]))
	n := int(high - low + 1)
	total := 12 + n*4
	if pos+total > len(code) {
		return 0, nil, fmt.Errorf("%w: truncated tableswitch table", ErrMalformedClass)
	}
	rawBytes := make([]byte, (pos-start)+total)
	copy(rawBytes, code[start:pos+total])
	return pos + total, rawBytes, nil
}

func decodeLookupswitch(code []byte, start, pos int) (next int, raw []byte, err error) {
	padStart := pos
	for (start+(pos-padStart)+1)%4 != 0 {
		pos++
	}
	if pos+8 > len(code) {
		return 0, nil, fmt.Errorf("%w: truncated lookupswitch header", ErrMalformedClass)
	}
	npairs := int32(uint32(code[pos+4])<<24 | uint32(code[pos+5])<<16 | uint32(code[pos+6])<<8 | uint32(code[pos+7]))
	total := 8 + int(npairs)*8
	if pos+total > len(code) {
		return 0, nil, fmt.Errorf("%w: truncated lookupswitch table", ErrMalformedClass)
	}
	rawBytes := make([]byte, (pos-start)+total)
	copy(rawBytes, code[start:pos+total])
	return pos + total, rawBytes, nil
}
