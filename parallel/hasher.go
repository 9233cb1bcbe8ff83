package parallel

import "crypto/sha256"
import "encoding/binary"
import "sync"

// Hasher hashes n uint16 values written concurrently in any order. The sum
// only depends on the values and their indexes, so parallel evaluations of the
// same predictions fingerprint identically.
type Hasher struct {
	mut    sync.Mutex
	values []uint16
	set    []bool
}

func NewUint16Hasher(n int) *Hasher {
	return &Hasher{
		values: make([]uint16, n),
		set:    make([]bool, n),
	}
}

// MustPutUint16 stores value at index n. It panics on a second write to n.
func (h *Hasher) MustPutUint16(n int, value uint16) {
	h.mut.Lock()
	defer h.mut.Unlock()
	if h.set[n] {
		println(n, value)
		panic("duplicate write")
	}
	h.set[n] = true
	h.values[n] = value
}

// Sum returns the sha256 of the values in index order. Missing values hash as 0xffff.
func (h *Hasher) Sum() (ret [32]byte) {
	h.mut.Lock()
	defer h.mut.Unlock()
	buf := make([]byte, 2*len(h.values))
	for i, v := range h.values {
		if !h.set[i] {
			v = 0xffff
		}
		binary.LittleEndian.PutUint16(buf[2*i:], v)
	}
	return sha256.Sum256(buf)
}
