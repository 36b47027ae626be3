package sync

// CompareAndSwapUint64 atomically replaces *addr with new if it still holds
// old, reporting whether the swap happened. The operation is implemented with
// a load-reserved/store-conditional pair: a value mismatch fails immediately,
// while a lost reservation retries the whole sequence. A successful swap has
// acquire-release ordering.
func CompareAndSwapUint64(addr *uint64, old, new uint64) bool
