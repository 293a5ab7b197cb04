package parser

import "strconv"

// decodeAddress converts a unit-address hex string into 32-bit words,
// most significant word first. The string is right-aligned: when its
// length is not a multiple of 8 nibbles it is zero-padded on the left
// before chunking, so "ff00ff00ff" decodes to [0xff, 0x00ff00ff].
func decodeAddress(hex string) []uint32 {
	if hex == "" {
		return nil
	}
	rem := len(hex) % 8
	if rem != 0 {
		hex = "00000000"[:8-rem] + hex
	}
	words := make([]uint32, 0, len(hex)/8)
	for i := 0; i < len(hex); i += 8 {
		w, err := strconv.ParseUint(hex[i:i+8], 16, 32)
		if err != nil {
			return nil
		}
		words = append(words, uint32(w))
	}
	return words
}

func isHexString(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return false
		}
	}
	return true
}
