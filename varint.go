package main

import "encoding/binary"

// writeVarInt appends a Bitcoin CompactSize-encoded integer to buf.
func writeVarInt(buf []byte, n uint64) []byte {
	switch {
	case n < 0xfd:
		return append(buf, byte(n))
	case n <= 0xffff:
		buf = append(buf, 0xfd)
		return binary.LittleEndian.AppendUint16(buf, uint16(n))
	case n <= 0xffffffff:
		buf = append(buf, 0xfe)
		return binary.LittleEndian.AppendUint32(buf, uint32(n))
	default:
		buf = append(buf, 0xff)
		return binary.LittleEndian.AppendUint64(buf, n)
	}
}

// writeUint32LE appends a little-endian uint32 to buf.
func writeUint32LE(buf []byte, v uint32) []byte {
	return binary.LittleEndian.AppendUint32(buf, v)
}

// writeUint64LE appends a little-endian uint64 to buf.
func writeUint64LE(buf []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(buf, v)
}

// serializeNumberScript encodes n the way Bitcoin script pushes small
// integers (BIP34 height pushes, scriptSig timestamp pushes): a minimal byte
// string, little-endian, with the push opcode/length prefix prepended.
func serializeNumberScript(n int64) []byte {
	if n == 0 {
		return []byte{0x00}
	}
	neg := n < 0
	abs := n
	if neg {
		abs = -abs
	}
	var b []byte
	for abs > 0 {
		b = append(b, byte(abs&0xff))
		abs >>= 8
	}
	if b[len(b)-1]&0x80 != 0 {
		if neg {
			b = append(b, 0x80)
		} else {
			b = append(b, 0x00)
		}
	} else if neg {
		b[len(b)-1] |= 0x80
	}
	return append([]byte{byte(len(b))}, b...)
}

// serializeStringScript pushes an arbitrary byte string the way a scriptSig
// "tag" is pushed: a length-prefixed literal (only the single-byte direct
// push form is needed for tags short enough to fit a coinbase scriptSig).
func serializeStringScript(s []byte) []byte {
	if len(s) <= 0x4b {
		return append([]byte{byte(len(s))}, s...)
	}
	out := []byte{0x4c, byte(len(s))}
	return append(out, s...)
}
