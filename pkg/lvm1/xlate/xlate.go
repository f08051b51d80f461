// Package xlate is the byte-order codec (spec component A): the
// primitive conversion between each on-disk little-endian integer
// field and its in-core value. layout.Marshal/Unmarshal call these
// instead of encoding/binary directly so the on-disk byte order is
// owned by one small package, mirroring how the original kept a
// single _xlate_* routine per record type next to the field layout.
//
// The original C representation mutated a packed struct in place with
// one routine that was its own inverse (xlate16/xlate32 byte-swap the
// same way applied forwards or backwards). Go structs hold typed
// integers rather than raw disk bytes, so there is no single in-place
// swap to perform; instead Put/Get form an inverse pair:
// Uint32(PutUint32(v)) == v for every v, which is the property the
// round-trip tests in spec §8 actually exercise. Padding is never
// touched here — callers only call these on the specific integer
// fields spec §3.1 enumerates.
package xlate

import "encoding/binary"

// PutUint16 encodes v into b[0:2] in on-disk (little-endian) order.
func PutUint16(b []byte, v uint16) {
	binary.LittleEndian.PutUint16(b, v)
}

// Uint16 decodes b[0:2] from on-disk order into a host value.
func Uint16(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

// PutUint32 encodes v into b[0:4] in on-disk (little-endian) order.
func PutUint32(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}

// Uint32 decodes b[0:4] from on-disk order into a host value.
func Uint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}
