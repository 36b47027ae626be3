package kernel

import "unsafe"

// Memset sets size bytes starting at addr to value. The caller must ensure
// that the target region is mapped and writable; addr is a raw identity-mapped
// address, not a Go-managed pointer.
func Memset(addr uintptr, value byte, size uintptr) {
	if size == 0 {
		return
	}

	target := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)

	// Set the first element and then make log2(size) doubling copies
	// instead of a byte-wise loop.
	target[0] = value
	for index := uintptr(1); index < size; index *= 2 {
		copy(target[index:], target[:index])
	}
}

// MemsetWords sets count native words starting at addr to value. Word-wide
// stores are used when clearing regions that must never see partial-word
// writes, such as the BSS image during early boot.
func MemsetWords(addr uintptr, value uintptr, count uintptr) {
	if count == 0 {
		return
	}

	target := unsafe.Slice((*uintptr)(unsafe.Pointer(addr)), count)
	for i := uintptr(0); i < count; i++ {
		target[i] = value
	}
}
