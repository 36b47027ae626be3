//go:build !riscv64

package sync

import "sync/atomic"

// CompareAndSwapUint64 atomically replaces *addr with new if it still holds
// old, reporting whether the swap happened.
func CompareAndSwapUint64(addr *uint64, old, new uint64) bool {
	return atomic.CompareAndSwapUint64(addr, old, new)
}
