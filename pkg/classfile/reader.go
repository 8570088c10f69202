// Package classfile decodes the parts of a JVM class file needed for code
// completion: names, superclass, and the public fields, methods and
// constructors with their type names.
package classfile

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tranleduy2000/javaide-sub031/pkg/model"
)

const magic = 0xCAFEBABE

var (
	ErrBadMagic  = errors.New("classfile: bad magic")
	ErrTruncated = errors.New("classfile: truncated")
)

const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

// Reader reads single class files. The zero value is ready to use.
type Reader struct{}

type cpEntry struct {
	tag  uint8
	ref  uint16
	utf8 string
}

type cursor struct {
	data []byte
	off  int
	err  error
}

func (c *cursor) need(n int) bool {
	if c.err != nil {
		return false
	}
	if n < 0 || c.off+n > len(c.data) {
		c.err = ErrTruncated
		return false
	}
	return true
}

func (c *cursor) u1() uint8 {
	if !c.need(1) {
		return 0
	}
	v := c.data[c.off]
	c.off++
	return v
}

func (c *cursor) u2() uint16 {
	if !c.need(2) {
		return 0
	}
	v := binary.BigEndian.Uint16(c.data[c.off:])
	c.off += 2
	return v
}

func (c *cursor) u4() uint32 {
	if !c.need(4) {
		return 0
	}
	v := binary.BigEndian.Uint32(c.data[c.off:])
	c.off += 4
	return v
}

func (c *cursor) bytes(n int) []byte {
	if !c.need(n) {
		return nil
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b
}

// ReadClass decodes data into a class description. Non-public and
// compiler-generated members are left out.
func (Reader) ReadClass(data []byte) (*model.ClassDescription, error) {
	c := &cursor{data: data}
	if c.u4() != magic {
		if c.err != nil {
			return nil, c.err
		}
		return nil, ErrBadMagic
	}
	c.u2() // minor
	c.u2() // major

	pool, err := readPool(c)
	if err != nil {
		return nil, err
	}

	flags := model.Modifiers(c.u2())
	thisIdx := c.u2()
	if c.err != nil {
		return nil, c.err
	}
	thisName, err := className(pool, thisIdx)
	if err != nil {
		return nil, fmt.Errorf("this_class: %w", err)
	}
	cls := model.NewClass(BinaryName(thisName))
	cls.Flags = flags

	if idx := c.u2(); idx != 0 {
		super, err := className(pool, idx)
		if err != nil {
			return nil, fmt.Errorf("super_class: %w", err)
		}
		cls.Superclass = BinaryName(super)
	}
	for n := c.u2(); n > 0 && c.err == nil; n-- {
		iface, err := className(pool, c.u2())
		if err != nil {
			return nil, fmt.Errorf("interfaces: %w", err)
		}
		cls.Interfaces = append(cls.Interfaces, BinaryName(iface))
	}

	for n := c.u2(); n > 0 && c.err == nil; n-- {
		access, name, desc, err := readMember(c, pool)
		if err != nil {
			return nil, fmt.Errorf("field: %w", err)
		}
		if !access.IsPublic() || access.IsSynthetic() {
			continue
		}
		typ, err := TypeName(desc)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		cls.AddField(name, typ, access)
	}

	for n := c.u2(); n > 0 && c.err == nil; n-- {
		access, name, desc, err := readMember(c, pool)
		if err != nil {
			return nil, fmt.Errorf("method: %w", err)
		}
		if !access.IsPublic() || access.IsSynthetic() || name == "<clinit>" {
			continue
		}
		params, ret, err := MethodTypes(desc)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", name, err)
		}
		if name == "<init>" {
			cls.AddConstructor(params, access)
			continue
		}
		cls.AddMethod(name, ret, params, access)
	}
	skipAttributes(c)

	if c.err != nil {
		return nil, c.err
	}
	return cls, nil
}

func readPool(c *cursor) ([]cpEntry, error) {
	count := int(c.u2())
	pool := make([]cpEntry, count)
	for i := 1; i < count && c.err == nil; i++ {
		e := cpEntry{tag: c.u1()}
		switch e.tag {
		case tagUtf8:
			n := int(c.u2())
			// Modified UTF-8 only differs from UTF-8 for NUL and
			// supplementary characters, neither of which occur in names.
			e.utf8 = string(c.bytes(n))
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			e.ref = c.u2()
		case tagInteger, tagFloat, tagFieldref, tagMethodref, tagInterfaceMethodref,
			tagNameAndType, tagDynamic, tagInvokeDynamic:
			c.bytes(4)
		case tagLong, tagDouble:
			c.bytes(8)
			pool[i] = e
			i++
			continue
		case tagMethodHandle:
			c.bytes(3)
		default:
			if c.err == nil {
				return nil, fmt.Errorf("constant pool entry %d: unknown tag %d", i, e.tag)
			}
		}
		pool[i] = e
	}
	return pool, c.err
}

func utf8At(pool []cpEntry, idx uint16) (string, error) {
	if int(idx) <= 0 || int(idx) >= len(pool) || pool[idx].tag != tagUtf8 {
		return "", fmt.Errorf("constant %d is not Utf8", idx)
	}
	return pool[idx].utf8, nil
}

func className(pool []cpEntry, idx uint16) (string, error) {
	if int(idx) <= 0 || int(idx) >= len(pool) || pool[idx].tag != tagClass {
		return "", fmt.Errorf("constant %d is not a Class", idx)
	}
	return utf8At(pool, pool[idx].ref)
}

func readMember(c *cursor, pool []cpEntry) (model.Modifiers, string, string, error) {
	access := model.Modifiers(c.u2())
	nameIdx, descIdx := c.u2(), c.u2()
	skipAttributes(c)
	if c.err != nil {
		return 0, "", "", c.err
	}
	name, err := utf8At(pool, nameIdx)
	if err != nil {
		return 0, "", "", err
	}
	desc, err := utf8At(pool, descIdx)
	if err != nil {
		return 0, "", "", err
	}
	return access, name, desc, nil
}

func skipAttributes(c *cursor) {
	for n := c.u2(); n > 0 && c.err == nil; n-- {
		c.u2()
		c.bytes(int(c.u4()))
	}
}
