// Package fdt parses the flattened device tree handed to the kernel by the
// firmware. Only the pieces the kernel needs are exposed: the timebase
// frequency, the RAM ranges and register addresses of compatible devices.
// The parser keeps slices into the blob instead of building a tree, so it is
// safe to use before a memory allocator exists.
package fdt

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/mematrix/vos/kernel"
	"github.com/mematrix/vos/kernel/mem"
)

const (
	headerMagic = 0xd00dfeed
	headerSize  = 40

	tokenBeginNode = 1
	tokenEndNode   = 2
	tokenProp      = 3
	tokenNop       = 4
	tokenEnd       = 9

	// maxNodeDepth bounds the node stack during a walk. The qemu virt tree
	// is three levels deep.
	maxNodeDepth = 8
)

var (
	errBadMagic  = &kernel.Error{Module: "fdt", Message: "bad header magic"}
	errTruncated = &kernel.Error{Module: "fdt", Message: "truncated blob"}
	errBadToken  = &kernel.Error{Module: "fdt", Message: "unknown structure token"}

	propReg        = []byte("reg")
	propCompatible = []byte("compatible")
	propTimebase   = []byte("timebase-frequency")
)

// Tree provides read access to a flattened device tree blob.
type Tree struct {
	structs []byte
	strings []byte
}

// Parse maps the blob at addr, validates it and fills t with slices into it.
// The caller provides the Tree so parsing allocates nothing; the firmware
// guarantees the blob stays resident.
func Parse(addr uintptr, t *Tree) *kernel.Error {
	if addr == 0 {
		return errTruncated
	}

	hdr := unsafe.Slice((*byte)(unsafe.Pointer(addr)), headerSize)
	if binary.BigEndian.Uint32(hdr[0:4]) != headerMagic {
		return errBadMagic
	}

	total := binary.BigEndian.Uint32(hdr[4:8])
	return ParseBlob(unsafe.Slice((*byte)(unsafe.Pointer(addr)), total), t)
}

// ParseBlob validates an in-memory device tree blob and fills t with slices
// into it.
func ParseBlob(blob []byte, t *Tree) *kernel.Error {
	if len(blob) < headerSize {
		return errTruncated
	}
	if binary.BigEndian.Uint32(blob[0:4]) != headerMagic {
		return errBadMagic
	}

	var (
		total       = binary.BigEndian.Uint32(blob[4:8])
		offStruct   = binary.BigEndian.Uint32(blob[8:12])
		offStrings  = binary.BigEndian.Uint32(blob[12:16])
		sizeStrings = binary.BigEndian.Uint32(blob[32:36])
		sizeStruct  = binary.BigEndian.Uint32(blob[36:40])
	)

	if uint64(total) > uint64(len(blob)) ||
		uint64(offStruct)+uint64(sizeStruct) > uint64(total) ||
		uint64(offStrings)+uint64(sizeStrings) > uint64(total) {
		return errTruncated
	}

	t.structs = blob[offStruct : offStruct+sizeStruct]
	t.strings = blob[offStrings : offStrings+sizeStrings]

	// Walk once up front so queries can treat the structure block as
	// well-formed.
	if err := t.visit(func(_, _, _ []byte) bool { return true }); err != nil {
		*t = Tree{}
		return err
	}
	return nil
}

// visit walks the structure block and invokes fn for every property together
// with the name of its enclosing node. Returning false stops the walk.
func (t *Tree) visit(fn func(node, name, value []byte) bool) *kernel.Error {
	var (
		stack [maxNodeDepth][]byte
		depth int
		pos   int
	)

	for pos+4 <= len(t.structs) {
		token := binary.BigEndian.Uint32(t.structs[pos:])
		pos += 4

		switch token {
		case tokenBeginNode:
			end := bytes.IndexByte(t.structs[pos:], 0)
			if end < 0 {
				return errTruncated
			}
			if depth < maxNodeDepth {
				stack[depth] = t.structs[pos : pos+end]
			}
			depth++
			pos = align4(pos + end + 1)
		case tokenEndNode:
			if depth > 0 {
				depth--
			}
		case tokenProp:
			if pos+8 > len(t.structs) {
				return errTruncated
			}
			valueLen := int(binary.BigEndian.Uint32(t.structs[pos:]))
			nameOff := binary.BigEndian.Uint32(t.structs[pos+4:])
			pos += 8
			if valueLen < 0 || pos+valueLen > len(t.structs) {
				return errTruncated
			}
			value := t.structs[pos : pos+valueLen]
			pos = align4(pos + valueLen)

			var node []byte
			if depth > 0 && depth <= maxNodeDepth {
				node = stack[depth-1]
			}
			if !fn(node, t.stringAt(nameOff), value) {
				return nil
			}
		case tokenNop:
		case tokenEnd:
			return nil
		default:
			return errBadToken
		}
	}

	return errTruncated
}

// stringAt returns the nul-terminated string at off in the strings block.
func (t *Tree) stringAt(off uint32) []byte {
	if uint64(off) >= uint64(len(t.strings)) {
		return nil
	}
	end := bytes.IndexByte(t.strings[off:], 0)
	if end < 0 {
		return t.strings[off:]
	}
	return t.strings[off : int(off)+end]
}

// TimebaseFrequency returns the tick rate of the time counter as reported by
// the cpus node.
func (t *Tree) TimebaseFrequency() (uint64, bool) {
	var (
		freq  uint64
		found bool
	)

	t.visit(func(_, name, value []byte) bool {
		if !bytes.Equal(name, propTimebase) {
			return true
		}
		switch len(value) {
		case 4:
			freq = uint64(binary.BigEndian.Uint32(value))
		case 8:
			freq = binary.BigEndian.Uint64(value)
		default:
			return true
		}
		found = true
		return false
	})

	return freq, found
}

// VisitMemoryRegions invokes visit for every RAM range the tree describes.
// Two address and size cells are assumed, which is what riscv64 firmware
// emits.
func (t *Tree) VisitMemoryRegions(visit func(mem.Region)) {
	t.visit(func(node, name, value []byte) bool {
		if !hasDeviceName(node, "memory") || !bytes.Equal(name, propReg) {
			return true
		}
		for len(value) >= 16 {
			start := uintptr(binary.BigEndian.Uint64(value))
			size := uintptr(binary.BigEndian.Uint64(value[8:]))
			visit(mem.Region{Start: start, End: start + size})
			value = value[16:]
		}
		return true
	})
}

// RegOfCompatible returns the first register base of a node whose compatible
// list contains compat.
func (t *Tree) RegOfCompatible(compat string) (uintptr, bool) {
	var match []byte

	t.visit(func(node, name, value []byte) bool {
		if !bytes.Equal(name, propCompatible) || !listContains(value, compat) {
			return true
		}
		match = node
		return false
	})
	if match == nil {
		return 0, false
	}

	var (
		base  uintptr
		found bool
	)
	t.visit(func(node, name, value []byte) bool {
		if !bytes.Equal(node, match) || !bytes.Equal(name, propReg) {
			return true
		}
		if len(value) >= 8 {
			base = uintptr(binary.BigEndian.Uint64(value))
			found = true
		}
		return false
	})

	return base, found
}

// hasDeviceName reports whether the node name matches dev, ignoring any
// unit address suffix ("memory@80000000" matches "memory").
func hasDeviceName(node []byte, dev string) bool {
	if at := bytes.IndexByte(node, '@'); at >= 0 {
		node = node[:at]
	}
	return string(node) == dev
}

// listContains reports whether the nul-separated string list holds entry.
func listContains(list []byte, entry string) bool {
	for len(list) > 0 {
		end := bytes.IndexByte(list, 0)
		if end < 0 {
			end = len(list)
		}
		if string(list[:end]) == entry {
			return true
		}
		if end == len(list) {
			break
		}
		list = list[end+1:]
	}
	return false
}

func align4(v int) int {
	return (v + 3) &^ 3
}
