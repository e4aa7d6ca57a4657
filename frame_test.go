package shmio

import "testing"

func TestEncodeDecodeFrameHeaders(t *testing.T) {
	tests := []struct {
		name      string
		frameSize uint16
	}{
		{"minimum frame", FrameMetadataBytes},
		{"small payload", 16},
		{"max frame", MaxFrameSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := make([]byte, tt.frameSize)
			encodeFrameHeaders(frame, tt.frameSize)

			if got := decodeFramePrefix(frame); got != tt.frameSize {
				t.Errorf("decodeFramePrefix() = %d, want %d", got, tt.frameSize)
			}
			if got := decodeFrameSuffix(frame, tt.frameSize); got != tt.frameSize {
				t.Errorf("decodeFrameSuffix() = %d, want %d", got, tt.frameSize)
			}
		})
	}
}

func TestFrameSizeConstants(t *testing.T) {
	if LengthFieldBytes != 2 {
		t.Errorf("LengthFieldBytes = %d, want 2", LengthFieldBytes)
	}
	if FrameMetadataBytes != 4 {
		t.Errorf("FrameMetadataBytes = %d, want 4", FrameMetadataBytes)
	}
	if MaxPayloadSize != 65531 {
		t.Errorf("MaxPayloadSize = %d, want 65531", MaxPayloadSize)
	}
	if MaxFrameSize != MaxPayloadSize+FrameMetadataBytes {
		t.Errorf("MaxFrameSize = %d, want %d", MaxFrameSize, MaxPayloadSize+FrameMetadataBytes)
	}
}
