package bloom

import (
	"encoding/binary"
	"io"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// magic is the on-disk header's first four bytes, little-endian encoding
// of 0x45434246. Read as bytes off disk that is 46 42 43 45, ASCII
// "FBCE" -- the FourCC "ECBF" reversed; this is an artifact of the tool this format is compatible
// with and is intentionally preserved rather than renumbered.
const magic uint32 = 0x45434246

const formatVersion uint32 = 1

// headerSize is magic(4) + version(4) + word count(8).
const headerSize = 4 + 4 + 8

// mmapThreshold is the bit-array size above which Load prefers mmap over
// a buffered read.
const mmapThreshold = 16 << 20 // 16 MiB of words (128 MiB of bits)

// Save writes f to path in the fixed header + bit array format described
// above, truncating any existing file.
func (f *Filter) Save(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var header [headerSize]byte
	binary.LittleEndian.PutUint32(header[0:4], magic)
	binary.LittleEndian.PutUint32(header[4:8], formatVersion)
	binary.LittleEndian.PutUint64(header[8:16], uint64(f.words))
	if _, err := file.Write(header[:]); err != nil {
		return err
	}

	body := make([]byte, f.words*8)
	for i, w := range f.bits {
		binary.LittleEndian.PutUint64(body[i*8:], w)
	}
	if _, err := file.Write(body); err != nil {
		return err
	}
	return file.Sync()
}

// Load reads a filter previously written by Save. It returns ErrFormat
// if the file is too short to hold a header, if its magic or version
// does not match, if the word count is zero, or if the buffered read
// finds the bit array truncated.
func Load(path string) (*Filter, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var header [headerSize]byte
	if _, err := io.ReadFull(file, header[:]); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, ErrFormat
		}
		return nil, err
	}
	gotMagic := binary.LittleEndian.Uint32(header[0:4])
	gotVersion := binary.LittleEndian.Uint32(header[4:8])
	if gotMagic != magic || gotVersion != formatVersion {
		return nil, ErrFormat
	}
	words := binary.LittleEndian.Uint64(header[8:16])
	if words == 0 {
		return nil, ErrFormat
	}

	if words >= mmapThreshold {
		data, bits, err := mmapBits(file, words)
		if err == nil {
			return &Filter{words: int(words), bits: bits, mmap: data}, nil
		}
		// fall through to the buffered read below on any mmap failure
		// (e.g. a non-regular file, or a platform without mmap support).
	}

	body := make([]byte, words*8)
	if _, err := io.ReadFull(file, body); err != nil {
		return nil, ErrFormat
	}
	bits := make([]uint64, words)
	for i := range bits {
		bits[i] = binary.LittleEndian.Uint64(body[i*8:])
	}
	return &Filter{words: int(words), bits: bits}, nil
}

// mmapBits maps the bit array of an already-open, header-advanced file
// descriptor and reinterprets those pages directly as a []uint64,
// without copying them into a second heap-allocated buffer: for a
// multi-hundred-megabyte filter this is the difference between Load
// touching every byte twice (fault it into the page cache, then copy
// it) and once. The reinterpretation assumes a little-endian host
// (true of every platform this system targets, amd64 and arm64), since
// the on-disk format is fixed little-endian and there is no decode
// step left to correct for a different byte order. The returned []byte
// is the live mapping; the caller must keep it around and Munmap it
// (via Filter.Close) for as long as the []uint64 is in use.
func mmapBits(file *os.File, words uint64) ([]byte, []uint64, error) {
	size := int(words * 8)
	data, err := unix.Mmap(int(file.Fd()), headerSize, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, err
	}
	bits := unsafe.Slice((*uint64)(unsafe.Pointer(&data[0])), words)
	return data, bits, nil
}
