// Package romfile loads ROM images from disk, unpacking gzip, zip and 7z
// archives, and fingerprints payloads with xxhash.
package romfile

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/cespare/xxhash"
)

var (
	ErrEmptyArchive = errors.New("romfile: archive has no files")
	ErrDecompress   = errors.New("romfile: decompress failed")
)

// CopierHeaderSize is the length of the header some SNES copiers prepend.
const CopierHeaderSize = 512

// romExts are preferred when an archive holds several files.
var romExts = map[string]bool{
	".sfc": true,
	".smc": true,
	".swc": true,
	".fig": true,
	".bs":  true,
}

// Image is a loaded file and the name it had inside its container.
type Image struct {
	Name string
	Data []byte
}

// Load reads filename and unpacks it when the extension names an archive.
// Any other extension is returned as is.
func Load(filename string) (Image, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Image{}, fmt.Errorf("romfile: read %s: %w", filename, err)
	}
	return Decode(filepath.Base(filename), data)
}

// Decode is Load for data already in memory.
func Decode(name string, data []byte) (Image, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		return decodeGzip(name, data)
	case ".zip":
		return decodeZip(data)
	case ".7z":
		return decode7z(data)
	default:
		return Image{Name: name, Data: data}, nil
	}
}

func decodeGzip(name string, data []byte) (Image, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: gzip: %v", ErrDecompress, err)
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return Image{}, fmt.Errorf("%w: gzip: %v", ErrDecompress, err)
	}
	inner := zr.Name
	if inner == "" {
		inner = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return Image{Name: inner, Data: out}, nil
}

func decodeZip(data []byte) (Image, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Image{}, fmt.Errorf("%w: zip: %v", ErrDecompress, err)
	}
	names := make([]string, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			names = append(names, "")
			continue
		}
		names = append(names, f.Name)
	}
	i := pick(names)
	if i < 0 {
		return Image{}, ErrEmptyArchive
	}
	rc, err := zr.File[i].Open()
	if err != nil {
		return Image{}, fmt.Errorf("%w: zip: %v", ErrDecompress, err)
	}
	defer rc.Close()
	out, err := io.ReadAll(rc)
	if err != nil {
		return Image{}, fmt.Errorf("%w: zip: %v", ErrDecompress, err)
	}
	return Image{Name: path.Base(names[i]), Data: out}, nil
}

func decode7z(data []byte) (Image, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Image{}, fmt.Errorf("%w: 7z: %v", ErrDecompress, err)
	}
	names := make([]string, 0, len(r.File))
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			names = append(names, "")
			continue
		}
		names = append(names, f.Name)
	}
	i := pick(names)
	if i < 0 {
		return Image{}, ErrEmptyArchive
	}
	rc, err := r.File[i].Open()
	if err != nil {
		return Image{}, fmt.Errorf("%w: 7z: %v", ErrDecompress, err)
	}
	defer rc.Close()
	out, err := io.ReadAll(rc)
	if err != nil {
		return Image{}, fmt.Errorf("%w: 7z: %v", ErrDecompress, err)
	}
	return Image{Name: path.Base(names[i]), Data: out}, nil
}

// pick returns the index of the first ROM-looking entry, falling back to the
// first non-directory entry. Directories are passed as "".
func pick(names []string) int {
	fallback := -1
	for i, name := range names {
		if name == "" {
			continue
		}
		if romExts[strings.ToLower(path.Ext(name))] {
			return i
		}
		if fallback < 0 {
			fallback = i
		}
	}
	return fallback
}

// HasCopierHeader reports whether data carries a 512 byte copier header.
func HasCopierHeader(data []byte) bool {
	return len(data) > CopierHeaderSize && len(data)%1024 == CopierHeaderSize
}

// StripCopierHeader drops a copier header when present.
func StripCopierHeader(data []byte) []byte {
	if !HasCopierHeader(data) {
		return data
	}
	return data[CopierHeaderSize:]
}

// Digest fingerprints a payload.
func Digest(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// DigestHex is Digest as 16 lowercase hex digits.
func DigestHex(data []byte) string {
	s := strconv.FormatUint(Digest(data), 16)
	return strings.Repeat("0", 16-len(s)) + s
}
