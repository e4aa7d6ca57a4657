package shmio

import "encoding/binary"

// Frame wire format (all little-endian, offsets relative to the frame start):
//
//	0..2      length prefix  (uint16) = total frame size, including both markers
//	2..2+P    payload bytes  (P = prefix - FrameMetadataBytes)
//	2+P..4+P  length suffix  (uint16) = same value as prefix
const (
	// LengthFieldBytes is the width of the prefix and suffix length markers.
	LengthFieldBytes = 2

	// FrameMetadataBytes is the combined width of prefix + suffix.
	FrameMetadataBytes = LengthFieldBytes * 2

	// MaxPayloadSize is the largest payload a frame can carry (2^16-1-4).
	MaxPayloadSize = 65531

	// MaxFrameSize is MaxPayloadSize + FrameMetadataBytes.
	MaxFrameSize = 65535
)

// encodeFrameHeaders writes frameSize as the little-endian prefix at the
// start of frame and as the suffix at its last two bytes. frame must have
// length exactly frameSize; the payload bytes between the markers are left
// untouched for the caller to fill.
func encodeFrameHeaders(frame []byte, frameSize uint16) {
	binary.LittleEndian.PutUint16(frame[0:2], frameSize)
	binary.LittleEndian.PutUint16(frame[frameSize-2:frameSize], frameSize)
}

// decodeFramePrefix reads the little-endian length prefix at the start of a frame.
func decodeFramePrefix(frame []byte) uint16 {
	return binary.LittleEndian.Uint16(frame[0:2])
}

// decodeFrameSuffix reads the little-endian length suffix of a frame of the given size.
func decodeFrameSuffix(frame []byte, frameSize uint16) uint16 {
	return binary.LittleEndian.Uint16(frame[frameSize-2 : frameSize])
}
