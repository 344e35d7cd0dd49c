package cache

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
)

// Frame layout: [Magic(1)][Version(1)][Length(4)][CRC32(4)][Payload(N)],
// integers little endian.
const (
	MagicByte    = 0xB7
	FrameVersion = 0x01
	HeaderSize   = 10

	// MaxPayloadSize bounds the allocation for a corrupted length field.
	MaxPayloadSize = 1 << 30
)

var (
	// ErrInvalidMagic means the file is not a cache entry.
	ErrInvalidMagic = errors.New("invalid magic byte")
	// ErrUnsupportedVersion means the entry was written by an incompatible version.
	ErrUnsupportedVersion = errors.New("unsupported cache frame version")
	// ErrChecksumMismatch means the payload is corrupted.
	ErrChecksumMismatch = errors.New("crc32 checksum mismatch")
	// ErrIncompleteFrame means the file was truncated.
	ErrIncompleteFrame = errors.New("incomplete frame")
)

// writeFrame wraps payload in a checksummed frame.
func writeFrame(w io.Writer, payload []byte) error {
	header := make([]byte, HeaderSize)
	header[0] = MagicByte
	header[1] = FrameVersion
	binary.LittleEndian.PutUint32(header[2:6], uint32(len(payload)))
	binary.LittleEndian.PutUint32(header[6:10], crc32.ChecksumIEEE(payload))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// readFrame reads and verifies one frame.
func readFrame(r io.Reader) ([]byte, error) {
	header := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, ErrIncompleteFrame
	}
	if header[0] != MagicByte {
		return nil, ErrInvalidMagic
	}
	if header[1] != FrameVersion {
		return nil, ErrUnsupportedVersion
	}

	length := binary.LittleEndian.Uint32(header[2:6])
	expected := binary.LittleEndian.Uint32(header[6:10])
	if length > MaxPayloadSize {
		return nil, ErrIncompleteFrame
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, ErrIncompleteFrame
	}
	if crc32.ChecksumIEEE(payload) != expected {
		return nil, ErrChecksumMismatch
	}
	return payload, nil
}
