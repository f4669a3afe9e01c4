package payload

import (
	"encoding/binary"
	"fmt"

	"github.com/rawblock/privagg/internal/aggerr"
	"github.com/rawblock/privagg/internal/flpcp"
)

// Wire encoding: all integers little-endian, uuid as 16 raw bytes,
// field-element arrays length-prefixed with a uint32 count. This is the
// one canonical encoding selected for the whole system — every server
// and client in this repo uses these two functions, never an ad hoc
// alternative.

func putUint64Vec(buf []byte, v []uint64) []byte {
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(v)))
	for _, x := range v {
		buf = binary.LittleEndian.AppendUint64(buf, x)
	}
	return buf
}

func getUint64Vec(b []byte) (v []uint64, rest []byte, err error) {
	if len(b) < 4 {
		return nil, nil, aggerr.ErrMalformedPayload
	}
	n := binary.LittleEndian.Uint32(b)
	b = b[4:]
	if uint64(len(b)) < uint64(n)*8 {
		return nil, nil, aggerr.ErrMalformedPayload
	}
	v = make([]uint64, n)
	for i := range v {
		v[i] = binary.LittleEndian.Uint64(b[i*8 : i*8+8])
	}
	return v, b[n*8:], nil
}

// EncodeProof serializes a flpcp.Proof as x,w,z,c (length-prefixed uint64
// vectors) followed by the modulus p.
func EncodeProof(pi flpcp.Proof) []byte {
	var buf []byte
	buf = putUint64Vec(buf, pi.X)
	buf = putUint64Vec(buf, pi.W)
	buf = putUint64Vec(buf, pi.Z)
	buf = putUint64Vec(buf, pi.C)
	buf = binary.LittleEndian.AppendUint64(buf, pi.P)
	return buf
}

// DecodeProof is the inverse of EncodeProof.
func DecodeProof(b []byte) (flpcp.Proof, error) {
	var pi flpcp.Proof
	var err error
	pi.X, b, err = getUint64Vec(b)
	if err != nil {
		return pi, err
	}
	pi.W, b, err = getUint64Vec(b)
	if err != nil {
		return pi, err
	}
	pi.Z, b, err = getUint64Vec(b)
	if err != nil {
		return pi, err
	}
	pi.C, b, err = getUint64Vec(b)
	if err != nil {
		return pi, err
	}
	if len(b) < 8 {
		return pi, aggerr.ErrMalformedPayload
	}
	pi.P = binary.LittleEndian.Uint64(b)
	return pi, nil
}

// EncodePayload serializes a Payload: uuid (16 bytes), index (uint32), then
// its EncodeProof bytes.
func EncodePayload(p Payload) []byte {
	buf := make([]byte, 0, 16+4+64)
	buf = append(buf, p.UUID[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, p.Index)
	buf = append(buf, EncodeProof(p.Proof)...)
	return buf
}

// DecodePayload is the inverse of EncodePayload.
func DecodePayload(b []byte) (Payload, error) {
	var p Payload
	if len(b) < 20 {
		return p, fmt.Errorf("payload: short buffer: %w", aggerr.ErrMalformedPayload)
	}
	copy(p.UUID[:], b[:16])
	p.Index = binary.LittleEndian.Uint32(b[16:20])
	proof, err := DecodeProof(b[20:])
	if err != nil {
		return p, err
	}
	p.Proof = proof
	return p, nil
}

// EncodePayloadSeed serializes a PayloadSeed: uuid, index, then
// seed:u64, x_len:u16, w_len:u16, z_len:u16, c_len:u16, p:u64.
func EncodePayloadSeed(ps PayloadSeed) []byte {
	buf := make([]byte, 0, 16+4+8+8+8)
	buf = append(buf, ps.UUID[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, ps.Index)
	buf = binary.LittleEndian.AppendUint64(buf, ps.ProofSeed.Seed)
	buf = binary.LittleEndian.AppendUint16(buf, ps.ProofSeed.XLen)
	buf = binary.LittleEndian.AppendUint16(buf, ps.ProofSeed.WLen)
	buf = binary.LittleEndian.AppendUint16(buf, ps.ProofSeed.ZLen)
	buf = binary.LittleEndian.AppendUint16(buf, ps.ProofSeed.CLen)
	buf = binary.LittleEndian.AppendUint64(buf, ps.ProofSeed.P)
	return buf
}

// DecodePayloadSeed is the inverse of EncodePayloadSeed.
func DecodePayloadSeed(b []byte) (PayloadSeed, error) {
	var ps PayloadSeed
	if len(b) < 16+4+8+8+8 {
		return ps, fmt.Errorf("payloadseed: short buffer: %w", aggerr.ErrMalformedPayload)
	}
	copy(ps.UUID[:], b[:16])
	b = b[16:]
	ps.Index = binary.LittleEndian.Uint32(b)
	b = b[4:]
	ps.ProofSeed.Seed = binary.LittleEndian.Uint64(b)
	b = b[8:]
	ps.ProofSeed.XLen = binary.LittleEndian.Uint16(b)
	b = b[2:]
	ps.ProofSeed.WLen = binary.LittleEndian.Uint16(b)
	b = b[2:]
	ps.ProofSeed.ZLen = binary.LittleEndian.Uint16(b)
	b = b[2:]
	ps.ProofSeed.CLen = binary.LittleEndian.Uint16(b)
	b = b[2:]
	ps.ProofSeed.P = binary.LittleEndian.Uint64(b)
	return ps, nil
}
