// Package classfiletest encodes minimal class files for tests.
package classfiletest

import (
	"bytes"
	"encoding/binary"
)

type Member struct {
	Access uint16
	Name   string
	Desc   string
}

// Class describes a class file to encode. Names use the internal form
// ("java/util/ArrayList").
type Class struct {
	Name       string
	Super      string
	Interfaces []string
	Access     uint16
	Fields     []Member
	Methods    []Member
	// Longs are added to the constant pool to exercise two-slot entries.
	Longs []int64
}

type pool struct {
	buf   bytes.Buffer
	count uint16
	utf8  map[string]uint16
	class map[string]uint16
}

func (p *pool) addUtf8(s string) uint16 {
	if idx, ok := p.utf8[s]; ok {
		return idx
	}
	p.buf.WriteByte(1)
	binary.Write(&p.buf, binary.BigEndian, uint16(len(s)))
	p.buf.WriteString(s)
	p.count++
	p.utf8[s] = p.count
	return p.count
}

func (p *pool) addClass(name string) uint16 {
	if idx, ok := p.class[name]; ok {
		return idx
	}
	ref := p.addUtf8(name)
	p.buf.WriteByte(7)
	binary.Write(&p.buf, binary.BigEndian, ref)
	p.count++
	p.class[name] = p.count
	return p.count
}

func (p *pool) addLong(v int64) {
	p.buf.WriteByte(5)
	binary.Write(&p.buf, binary.BigEndian, v)
	p.count += 2
}

// Bytes encodes c as a version 52 class file.
func (c Class) Bytes() []byte {
	p := &pool{utf8: map[string]uint16{}, class: map[string]uint16{}}
	for _, v := range c.Longs {
		p.addLong(v)
	}
	this := p.addClass(c.Name)
	var super uint16
	if c.Super != "" {
		super = p.addClass(c.Super)
	}
	ifaces := make([]uint16, len(c.Interfaces))
	for i, name := range c.Interfaces {
		ifaces[i] = p.addClass(name)
	}
	code := p.addUtf8("Code")

	var body bytes.Buffer
	w := func(v any) { binary.Write(&body, binary.BigEndian, v) }
	w(c.Access)
	w(this)
	w(super)
	w(uint16(len(ifaces)))
	for _, idx := range ifaces {
		w(idx)
	}
	writeMembers := func(members []Member, attr uint16) {
		w(uint16(len(members)))
		for _, m := range members {
			w(m.Access)
			w(p.addUtf8(m.Name))
			w(p.addUtf8(m.Desc))
			if attr == 0 {
				w(uint16(0))
				continue
			}
			w(uint16(1))
			w(attr)
			w(uint32(4))
			body.Write([]byte{0, 0, 0, 0})
		}
	}
	writeMembers(c.Fields, 0)
	writeMembers(c.Methods, code)
	w(uint16(0)) // class attributes

	var out bytes.Buffer
	ow := func(v any) { binary.Write(&out, binary.BigEndian, v) }
	ow(uint32(0xCAFEBABE))
	ow(uint16(0))
	ow(uint16(52))
	ow(p.count + 1)
	out.Write(p.buf.Bytes())
	out.Write(body.Bytes())
	return out.Bytes()
}
