// Package formats reads and writes the binary curve and strand group files.
package formats

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Version represents a file format version.
type Version struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// maxNameLength bounds group names stored with a uint16 prefix.
const maxNameLength = 1<<16 - 1

func writeName(w io.Writer, name string) error {
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(name))); err != nil {
		return err
	}
	_, err := io.WriteString(w, name)
	return err
}

func readName(r *bytes.Reader) (string, error) {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// readSlice reads count fixed-size elements of size bytes each. The remaining
// input is checked first so a corrupt count cannot force a huge allocation.
func readSlice[T any](r *bytes.Reader, count, size int) ([]T, error) {
	if count < 0 || count*size > r.Len() {
		return nil, io.ErrUnexpectedEOF
	}
	out := make([]T, count)
	if count == 0 {
		return out, nil
	}
	if err := binary.Read(r, binary.LittleEndian, out); err != nil {
		return nil, err
	}
	return out, nil
}

func readMagic(r *bytes.Reader, magic string) (bool, error) {
	buf := make([]byte, len(magic))
	if _, err := io.ReadFull(r, buf); err != nil {
		return false, err
	}
	return string(buf) == magic, nil
}

func toUint32s(in []int) []uint32 {
	out := make([]uint32, len(in))
	for i, v := range in {
		out[i] = uint32(v)
	}
	return out
}

func toInts(in []uint32) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
