package pattern

// ByteKind classifies one byte of a label's wire encoding for mask
// construction.
type ByteKind uint8

const (
	// ByteLength is a label length byte; it is always compared exactly.
	ByteLength ByteKind = iota

	// ByteChar is a literal character byte, compared exactly or
	// case-insensitively depending on compiler options.
	ByteChar

	// ByteAnyChar is a '?' position; the byte is excluded from the
	// comparison entirely.
	ByteAnyChar
)

// EncodedByte is one byte of DNS wire encoding plus its match policy.
type EncodedByte struct {
	Value byte
	Kind  ByteKind
}

// encodeLiteral returns the DNS wire form of a literal label: the
// length byte followed by the label's characters. The root label
// encodes to a single zero byte.
func encodeLiteral(text string) []EncodedByte {
	out := make([]EncodedByte, 0, 1+len(text))
	out = append(out, EncodedByte{Value: byte(len(text)), Kind: ByteLength})
	for i := 0; i < len(text); i++ {
		kind := ByteChar
		if text[i] == '?' {
			kind = ByteAnyChar
		}
		out = append(out, EncodedByte{Value: text[i], Kind: kind})
	}
	return out
}

// Values extracts the raw bytes from an encoded run.
func Values(run []EncodedByte) []byte {
	out := make([]byte, len(run))
	for i, b := range run {
		out[i] = b.Value
	}
	return out
}
