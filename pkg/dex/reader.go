// Package dex reads class metadata out of Dalvik executable files.
//
// Open parses the header and id tables once. Classes are decoded one at a
// time so a caller can read a single class by name without walking the
// whole file.
package dex

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tranleduy2000/javaide-sub031/pkg/classfile"
	"github.com/tranleduy2000/javaide-sub031/pkg/model"
)

var (
	ErrBadMagic  = errors.New("dex: bad magic")
	ErrTruncated = errors.New("dex: truncated")
)

const (
	headerSize = 0x70
	noIndex    = 0xffffffff
)

// header offsets
const (
	offStringIDs = 0x38
	offTypeIDs   = 0x40
	offProtoIDs  = 0x48
	offFieldIDs  = 0x50
	offMethodIDs = 0x58
	offClassDefs = 0x60
)

type table struct {
	size uint32
	off  uint32
}

type File struct {
	data    []byte
	strings table
	types   table
	protos  table
	fields  table
	methods table
	classes table

	byName map[string]int
}

// Open validates the header of data and indexes its class definitions.
func Open(data []byte) (*File, error) {
	if len(data) < headerSize {
		return nil, ErrTruncated
	}
	if !bytes.HasPrefix(data, []byte("dex\n")) || data[7] != 0 {
		return nil, ErrBadMagic
	}
	f := &File{data: data}
	tables := []struct {
		t    *table
		off  int
		item uint32
	}{
		{&f.strings, offStringIDs, 4},
		{&f.types, offTypeIDs, 4},
		{&f.protos, offProtoIDs, 12},
		{&f.fields, offFieldIDs, 8},
		{&f.methods, offMethodIDs, 8},
		{&f.classes, offClassDefs, 32},
	}
	for _, tb := range tables {
		tb.t.size = binary.LittleEndian.Uint32(data[tb.off:])
		tb.t.off = binary.LittleEndian.Uint32(data[tb.off+4:])
		end := uint64(tb.t.off) + uint64(tb.t.size)*uint64(tb.item)
		if tb.t.size > 0 && end > uint64(len(data)) {
			return nil, fmt.Errorf("id table at %#x: %w", tb.off, ErrTruncated)
		}
	}

	f.byName = make(map[string]int, f.classes.size)
	for i := 0; i < int(f.classes.size); i++ {
		name, err := f.ClassName(i)
		if err != nil {
			return nil, fmt.Errorf("class_def %d: %w", i, err)
		}
		f.byName[name] = i
	}
	return f, nil
}

// NumClasses returns the number of class definitions.
func (f *File) NumClasses() int { return int(f.classes.size) }

// Lookup returns the class_def index of a binary class name.
func (f *File) Lookup(qualified string) (int, bool) {
	i, ok := f.byName[qualified]
	return i, ok
}

// ClassName returns the binary name of class definition i.
func (f *File) ClassName(i int) (string, error) {
	def, err := f.classDef(i)
	if err != nil {
		return "", err
	}
	return f.typeName(def[0])
}

// ReadClass decodes class definition i. Non-public and compiler-generated
// members are left out.
func (f *File) ReadClass(i int) (*model.ClassDescription, error) {
	def, err := f.classDef(i)
	if err != nil {
		return nil, err
	}
	name, err := f.typeName(def[0])
	if err != nil {
		return nil, err
	}
	cls := model.NewClass(name)
	cls.Flags = model.Modifiers(def[1])

	if def[2] != noIndex {
		if cls.Superclass, err = f.typeName(def[2]); err != nil {
			return nil, fmt.Errorf("%s superclass: %w", name, err)
		}
	}
	if def[3] != 0 {
		ifaces, err := f.typeList(def[3])
		if err != nil {
			return nil, fmt.Errorf("%s interfaces: %w", name, err)
		}
		cls.Interfaces = ifaces
	}
	if def[6] != 0 {
		if err := f.readClassData(cls, def[6]); err != nil {
			return nil, fmt.Errorf("%s class_data: %w", name, err)
		}
	}
	return cls, nil
}

// classDef returns the eight u4 fields of class_def_item i.
func (f *File) classDef(i int) ([8]uint32, error) {
	var def [8]uint32
	if i < 0 || i >= int(f.classes.size) {
		return def, fmt.Errorf("class_def %d out of range", i)
	}
	base := int(f.classes.off) + i*32
	for k := range def {
		def[k] = binary.LittleEndian.Uint32(f.data[base+4*k:])
	}
	return def, nil
}

func (f *File) u4(off uint32) (uint32, error) {
	if uint64(off)+4 > uint64(len(f.data)) {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint32(f.data[off:]), nil
}

func (f *File) u2(off uint32) (uint16, error) {
	if uint64(off)+2 > uint64(len(f.data)) {
		return 0, ErrTruncated
	}
	return binary.LittleEndian.Uint16(f.data[off:]), nil
}

func (f *File) uleb(off uint32) (uint32, uint32, error) {
	var v uint32
	for shift := uint(0); shift < 35; shift += 7 {
		if int(off) >= len(f.data) {
			return 0, off, ErrTruncated
		}
		b := f.data[off]
		off++
		v |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return v, off, nil
		}
	}
	return 0, off, errors.New("dex: uleb128 too long")
}

func (f *File) str(idx uint32) (string, error) {
	if idx >= f.strings.size {
		return "", fmt.Errorf("string %d out of range", idx)
	}
	off, err := f.u4(f.strings.off + idx*4)
	if err != nil {
		return "", err
	}
	_, start, err := f.uleb(off)
	if err != nil {
		return "", err
	}
	end := bytes.IndexByte(f.data[start:], 0)
	if end < 0 {
		return "", ErrTruncated
	}
	return string(f.data[start : int(start)+end]), nil
}

func (f *File) descriptor(typeIdx uint32) (string, error) {
	if typeIdx >= f.types.size {
		return "", fmt.Errorf("type %d out of range", typeIdx)
	}
	strIdx, err := f.u4(f.types.off + typeIdx*4)
	if err != nil {
		return "", err
	}
	return f.str(strIdx)
}

func (f *File) typeName(typeIdx uint32) (string, error) {
	desc, err := f.descriptor(typeIdx)
	if err != nil {
		return "", err
	}
	return classfile.TypeName(desc)
}

func (f *File) typeList(off uint32) ([]string, error) {
	n, err := f.u4(off)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for k := uint32(0); k < n; k++ {
		idx, err := f.u2(off + 4 + 2*k)
		if err != nil {
			return nil, err
		}
		name, err := f.typeName(uint32(idx))
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}

func (f *File) readClassData(cls *model.ClassDescription, off uint32) error {
	var sizes [4]uint32
	var err error
	for k := range sizes {
		if sizes[k], off, err = f.uleb(off); err != nil {
			return err
		}
	}
	// static fields, instance fields
	for list := 0; list < 2; list++ {
		var idx uint32
		for k := uint32(0); k < sizes[list]; k++ {
			var diff, access uint32
			if diff, off, err = f.uleb(off); err != nil {
				return err
			}
			if access, off, err = f.uleb(off); err != nil {
				return err
			}
			idx += diff
			if err := f.addField(cls, idx, model.Modifiers(access)); err != nil {
				return err
			}
		}
	}
	// direct methods, virtual methods
	for list := 2; list < 4; list++ {
		var idx uint32
		for k := uint32(0); k < sizes[list]; k++ {
			var diff, access uint32
			if diff, off, err = f.uleb(off); err != nil {
				return err
			}
			if access, off, err = f.uleb(off); err != nil {
				return err
			}
			if _, off, err = f.uleb(off); err != nil { // code_off
				return err
			}
			idx += diff
			if err := f.addMethod(cls, idx, model.Modifiers(access)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f *File) addField(cls *model.ClassDescription, idx uint32, access model.Modifiers) error {
	if !access.IsPublic() || access.IsSynthetic() {
		return nil
	}
	if idx >= f.fields.size {
		return fmt.Errorf("field %d out of range", idx)
	}
	base := f.fields.off + idx*8
	typeIdx, err := f.u2(base + 2)
	if err != nil {
		return err
	}
	nameIdx, err := f.u4(base + 4)
	if err != nil {
		return err
	}
	name, err := f.str(nameIdx)
	if err != nil {
		return err
	}
	typ, err := f.typeName(uint32(typeIdx))
	if err != nil {
		return err
	}
	cls.AddField(name, typ, access)
	return nil
}

func (f *File) addMethod(cls *model.ClassDescription, idx uint32, access model.Modifiers) error {
	if !access.IsPublic() || access.IsSynthetic() {
		return nil
	}
	if idx >= f.methods.size {
		return fmt.Errorf("method %d out of range", idx)
	}
	base := f.methods.off + idx*8
	protoIdx, err := f.u2(base + 2)
	if err != nil {
		return err
	}
	nameIdx, err := f.u4(base + 4)
	if err != nil {
		return err
	}
	name, err := f.str(nameIdx)
	if err != nil {
		return err
	}
	if name == "<clinit>" {
		return nil
	}
	params, ret, err := f.proto(uint32(protoIdx))
	if err != nil {
		return fmt.Errorf("method %s: %w", name, err)
	}
	if name == "<init>" || access.Has(model.AccConstructor) {
		cls.AddConstructor(params, access&^model.AccConstructor)
		return nil
	}
	cls.AddMethod(name, ret, params, access)
	return nil
}

func (f *File) proto(idx uint32) ([]string, string, error) {
	if idx >= f.protos.size {
		return nil, "", fmt.Errorf("proto %d out of range", idx)
	}
	base := f.protos.off + idx*12
	retIdx, err := f.u4(base + 4)
	if err != nil {
		return nil, "", err
	}
	ret, err := f.typeName(retIdx)
	if err != nil {
		return nil, "", err
	}
	paramsOff, err := f.u4(base + 8)
	if err != nil {
		return nil, "", err
	}
	if paramsOff == 0 {
		return nil, ret, nil
	}
	params, err := f.typeList(paramsOff)
	return params, ret, err
}
