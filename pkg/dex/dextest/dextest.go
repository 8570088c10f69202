// Package dextest encodes minimal dex files for tests.
package dextest

import (
	"bytes"
	"encoding/binary"
	"strings"
)

type Member struct {
	Access uint32
	Name   string
	// Desc is a field descriptor ("I") or method descriptor ("(I)V").
	Desc string
}

// Class describes one class_def. Names use the internal form
// ("java/util/ArrayList").
type Class struct {
	Name       string
	Super      string
	Interfaces []string
	Access     uint32
	Fields     []Member
	Methods    []Member
}

type proto struct {
	ret    uint32
	params []uint32
}

type ref struct {
	class uint32
	typ   uint32 // type for fields, proto for methods
	name  uint32
}

type encoder struct {
	strings []string
	strIdx  map[string]uint32
	types   []uint32
	typeIdx map[string]uint32
	protos  []proto
	fields  []ref
	methods []ref
}

func (e *encoder) str(s string) uint32 {
	if i, ok := e.strIdx[s]; ok {
		return i
	}
	e.strings = append(e.strings, s)
	e.strIdx[s] = uint32(len(e.strings) - 1)
	return e.strIdx[s]
}

func (e *encoder) typ(desc string) uint32 {
	if i, ok := e.typeIdx[desc]; ok {
		return i
	}
	e.types = append(e.types, e.str(desc))
	e.typeIdx[desc] = uint32(len(e.types) - 1)
	return e.typeIdx[desc]
}

func classDesc(internal string) string { return "L" + internal + ";" }

// splitMethod splits "(ILjava/lang/String;)V" into parameter descriptors and
// the return descriptor.
func splitMethod(desc string) ([]string, string) {
	end := strings.IndexByte(desc, ')')
	var params []string
	for i := 1; i < end; {
		j := i
		for desc[j] == '[' {
			j++
		}
		if desc[j] == 'L' {
			j = strings.IndexByte(desc[j:], ';') + j
		}
		params = append(params, desc[i:j+1])
		i = j + 1
	}
	return params, desc[end+1:]
}

func uleb(buf *bytes.Buffer, v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf.WriteByte(b | 0x80)
			continue
		}
		buf.WriteByte(b)
		return
	}
}

type classData struct {
	lists [4][][2]uint32 // member index, access
}

// Bytes encodes classes as a version 035 dex file. Checksum and signature
// are left zero.
func Bytes(classes ...Class) []byte {
	e := &encoder{strIdx: map[string]uint32{}, typeIdx: map[string]uint32{}}
	type def struct {
		class, access, super uint32
		ifaces               []uint32
		data                 classData
	}
	defs := make([]def, len(classes))
	for ci, c := range classes {
		d := def{class: e.typ(classDesc(c.Name)), access: c.Access, super: 0xffffffff}
		if c.Super != "" {
			d.super = e.typ(classDesc(c.Super))
		}
		for _, iface := range c.Interfaces {
			d.ifaces = append(d.ifaces, e.typ(classDesc(iface)))
		}
		for _, fld := range c.Fields {
			e.fields = append(e.fields, ref{class: d.class, typ: e.typ(fld.Desc), name: e.str(fld.Name)})
			list := 1
			if fld.Access&0x8 != 0 {
				list = 0
			}
			d.data.lists[list] = append(d.data.lists[list], [2]uint32{uint32(len(e.fields) - 1), fld.Access})
		}
		for _, m := range c.Methods {
			params, ret := splitMethod(m.Desc)
			p := proto{ret: e.typ(ret)}
			for _, pd := range params {
				p.params = append(p.params, e.typ(pd))
			}
			e.protos = append(e.protos, p)
			e.methods = append(e.methods, ref{class: d.class, typ: uint32(len(e.protos) - 1), name: e.str(m.Name)})
			list := 3
			if m.Access&(0x8|0x2|0x10000) != 0 || m.Name == "<init>" {
				list = 2
			}
			d.data.lists[list] = append(d.data.lists[list], [2]uint32{uint32(len(e.methods) - 1), m.Access})
		}
		defs[ci] = d
	}

	stringIDs := uint32(0x70)
	typeIDs := stringIDs + 4*uint32(len(e.strings))
	protoIDs := typeIDs + 4*uint32(len(e.types))
	fieldIDs := protoIDs + 12*uint32(len(e.protos))
	methodIDs := fieldIDs + 8*uint32(len(e.fields))
	classDefs := methodIDs + 8*uint32(len(e.methods))
	dataOff := classDefs + 32*uint32(len(defs))

	var data bytes.Buffer
	at := func() uint32 { return dataOff + uint32(data.Len()) }
	align := func() {
		for data.Len()%4 != 0 {
			data.WriteByte(0)
		}
	}
	le := func(buf *bytes.Buffer, v any) { binary.Write(buf, binary.LittleEndian, v) }

	strOffs := make([]uint32, len(e.strings))
	for i, s := range e.strings {
		strOffs[i] = at()
		uleb(&data, uint32(len(s)))
		data.WriteString(s)
		data.WriteByte(0)
	}
	typeList := func(idx []uint32) uint32 {
		if len(idx) == 0 {
			return 0
		}
		align()
		off := at()
		le(&data, uint32(len(idx)))
		for _, t := range idx {
			le(&data, uint16(t))
		}
		return off
	}
	protoParams := make([]uint32, len(e.protos))
	for i, p := range e.protos {
		protoParams[i] = typeList(p.params)
	}
	ifaceOffs := make([]uint32, len(defs))
	dataOffs := make([]uint32, len(defs))
	for i, d := range defs {
		ifaceOffs[i] = typeList(d.ifaces)
		dataOffs[i] = at()
		for _, list := range d.data.lists {
			uleb(&data, uint32(len(list)))
		}
		for li, list := range d.data.lists {
			var prev uint32
			for k, item := range list {
				diff := item[0]
				if k > 0 {
					diff = item[0] - prev
				}
				prev = item[0]
				uleb(&data, diff)
				uleb(&data, item[1])
				if li >= 2 {
					uleb(&data, 0)
				}
			}
		}
	}

	var out bytes.Buffer
	out.WriteString("dex\n035\x00")
	out.Write(make([]byte, 4+20)) // checksum, signature
	fileSize := dataOff + uint32(data.Len())
	for _, v := range []uint32{
		fileSize, 0x70, 0x12345678, 0, 0, 0,
		uint32(len(e.strings)), stringIDs,
		uint32(len(e.types)), typeIDs,
		uint32(len(e.protos)), protoIDs,
		uint32(len(e.fields)), fieldIDs,
		uint32(len(e.methods)), methodIDs,
		uint32(len(defs)), classDefs,
		uint32(data.Len()), dataOff,
	} {
		le(&out, v)
	}
	for _, off := range strOffs {
		le(&out, off)
	}
	for _, s := range e.types {
		le(&out, s)
	}
	for i, p := range e.protos {
		le(&out, uint32(0)) // shorty, unused
		le(&out, p.ret)
		le(&out, protoParams[i])
	}
	for _, f := range e.fields {
		le(&out, uint16(f.class))
		le(&out, uint16(f.typ))
		le(&out, f.name)
	}
	for _, m := range e.methods {
		le(&out, uint16(m.class))
		le(&out, uint16(m.typ))
		le(&out, m.name)
	}
	for i, d := range defs {
		for _, v := range []uint32{d.class, d.access, d.super, ifaceOffs[i], 0xffffffff, 0, dataOffs[i], 0} {
			le(&out, v)
		}
	}
	out.Write(data.Bytes())
	return out.Bytes()
}
