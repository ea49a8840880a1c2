package bm25s

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/zeebo/blake3"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SERIALIZATION: Saving and Loading the Index
// ═══════════════════════════════════════════════════════════════════════════════
// The index lives in memory. Encode turns it into a compact byte slice that a
// host can store wherever it likes; Decode restores it. Where the bytes go is
// the host's business.
//
// BINARY FORMAT (little endian):
// ------------------------------
// [Header]
//   - Magic:          "BM25"
//   - Version:        uint8
//   - K1:             float64
//   - B:              float64
//   - TotalDocLength: uint64
//   - NumDocs:        uint32
//
// [Document Statistics] (ascending DocID)
//   - DocID:    uint32
//   - Length:   uint32
//   - NumTerms: uint32
//   - For each term (sorted):
//   - TermLength: uint32
//   - Term:       bytes
//   - Frequency:  uint32
//
// [Posting Lists]
//   - NumTerms: uint32
//   - For each term (sorted):
//   - TermLength:   uint32
//   - Term:         bytes
//   - BitmapLength: uint32
//   - Bitmap:       roaring portable format
//
// [Trailer]
//   - BLAKE3-256 of everything above (32 bytes)
//
// Maps are written in sorted order so the same index always encodes to the
// same bytes.
// ═══════════════════════════════════════════════════════════════════════════════

const (
	encodingMagic   = "BM25"
	encodingVersion = uint8(1)
	checksumSize    = 32
)

// Encode serializes the index, including BM25 parameters and statistics.
func (idx *Index) Encode() ([]byte, error) {
	buf := new(bytes.Buffer)

	if err := idx.encodeHeader(buf); err != nil {
		return nil, err
	}
	if err := idx.encodeDocStats(buf); err != nil {
		return nil, err
	}
	if err := idx.encodePostings(buf); err != nil {
		return nil, err
	}

	sum := blake3.Sum256(buf.Bytes())
	buf.Write(sum[:])

	return buf.Bytes(), nil
}

func (idx *Index) encodeHeader(buf *bytes.Buffer) error {
	buf.WriteString(encodingMagic)
	buf.WriteByte(encodingVersion)

	fields := []any{
		idx.params.K1,
		idx.params.B,
		uint64(idx.totalDocLength),
		uint32(len(idx.docs)),
	}
	for _, field := range fields {
		if err := binary.Write(buf, binary.LittleEndian, field); err != nil {
			return fmt.Errorf("encode header: %w", err)
		}
	}
	return nil
}

func (idx *Index) encodeDocStats(buf *bytes.Buffer) error {
	docIDs := make([]uint32, 0, len(idx.docs))
	for docID := range idx.docs {
		docIDs = append(docIDs, docID)
	}
	sort.Slice(docIDs, func(i, j int) bool { return docIDs[i] < docIDs[j] })

	for _, docID := range docIDs {
		stats := idx.docs[docID]
		writeUint32(buf, stats.DocID)
		writeUint32(buf, uint32(stats.Length))
		writeUint32(buf, uint32(len(stats.TermFreqs)))

		terms := make([]string, 0, len(stats.TermFreqs))
		for term := range stats.TermFreqs {
			terms = append(terms, term)
		}
		sort.Strings(terms)

		for _, term := range terms {
			writeString(buf, term)
			writeUint32(buf, uint32(stats.TermFreqs[term]))
		}
	}
	return nil
}

func (idx *Index) encodePostings(buf *bytes.Buffer) error {
	terms := idx.postings.terms()
	writeUint32(buf, uint32(len(terms)))

	for _, term := range terms {
		bitmap, _ := idx.postings.get(term)
		data, err := bitmap.ToBytes()
		if err != nil {
			return fmt.Errorf("encode postings for %q: %w", term, err)
		}
		writeString(buf, term)
		writeUint32(buf, uint32(len(data)))
		buf.Write(data)
	}
	return nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], v)
	buf.Write(scratch[:])
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

// Decode replaces the contents of idx with data produced by Encode. The
// tokenizer and logger of idx are kept.
//
// Decode is all-or-nothing: on any error, including a checksum mismatch or
// postings that disagree with the document records, idx is unchanged and
// the error matches ErrCorruptEncoding.
func (idx *Index) Decode(data []byte) error {
	if len(data) < len(encodingMagic)+1+checksumSize {
		return fmt.Errorf("%w: %d bytes is too short", ErrCorruptEncoding, len(data))
	}

	body, trailer := data[:len(data)-checksumSize], data[len(data)-checksumSize:]
	if sum := blake3.Sum256(body); !bytes.Equal(sum[:], trailer) {
		return fmt.Errorf("%w: checksum mismatch", ErrCorruptEncoding)
	}

	decoded := &Index{
		postings:     newPostingStore(),
		docs:         make(map[uint32]DocumentStats),
		tokenizer:    idx.tokenizer,
		logger:       idx.logger,
		batchWorkers: idx.batchWorkers,
	}

	d := &indexDecoder{data: body}
	numDocs, err := d.decodeHeader(decoded)
	if err != nil {
		return err
	}
	if err := d.decodeDocStats(decoded, numDocs); err != nil {
		return err
	}
	if err := d.decodePostings(decoded); err != nil {
		return err
	}
	if !d.isComplete() {
		return fmt.Errorf("%w: %d trailing bytes", ErrCorruptEncoding, len(d.data)-d.offset)
	}
	if err := decoded.CheckInvariants(); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptEncoding, err)
	}

	*idx = *decoded
	return nil
}

// indexDecoder walks the encoded body with bounds checks on every read.
type indexDecoder struct {
	data   []byte
	offset int
}

func (d *indexDecoder) isComplete() bool {
	return d.offset >= len(d.data)
}

func (d *indexDecoder) take(n int) ([]byte, error) {
	if n < 0 || d.offset+n > len(d.data) {
		return nil, fmt.Errorf("%w: unexpected end of data at offset %d", ErrCorruptEncoding, d.offset)
	}
	b := d.data[d.offset : d.offset+n]
	d.offset += n
	return b, nil
}

func (d *indexDecoder) readUint32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *indexDecoder) readUint64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (d *indexDecoder) readFloat64() (float64, error) {
	bits, err := d.readUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

func (d *indexDecoder) readString() (string, error) {
	n, err := d.readUint32()
	if err != nil {
		return "", err
	}
	b, err := d.take(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *indexDecoder) decodeHeader(idx *Index) (int, error) {
	magic, err := d.take(len(encodingMagic))
	if err != nil {
		return 0, err
	}
	if string(magic) != encodingMagic {
		return 0, fmt.Errorf("%w: bad magic %q", ErrCorruptEncoding, magic)
	}
	version, err := d.take(1)
	if err != nil {
		return 0, err
	}
	if version[0] != encodingVersion {
		return 0, fmt.Errorf("%w: unsupported version %d", ErrCorruptEncoding, version[0])
	}

	if idx.params.K1, err = d.readFloat64(); err != nil {
		return 0, err
	}
	if idx.params.B, err = d.readFloat64(); err != nil {
		return 0, err
	}
	total, err := d.readUint64()
	if err != nil {
		return 0, err
	}
	idx.totalDocLength = int64(total)

	numDocs, err := d.readUint32()
	if err != nil {
		return 0, err
	}
	return int(numDocs), nil
}

func (d *indexDecoder) decodeDocStats(idx *Index, numDocs int) error {
	for i := 0; i < numDocs; i++ {
		docID, err := d.readUint32()
		if err != nil {
			return err
		}
		length, err := d.readUint32()
		if err != nil {
			return err
		}
		numTerms, err := d.readUint32()
		if err != nil {
			return err
		}

		stats := DocumentStats{
			DocID:     docID,
			Length:    int(length),
			TermFreqs: make(map[string]int),
		}
		for j := uint32(0); j < numTerms; j++ {
			term, err := d.readString()
			if err != nil {
				return err
			}
			freq, err := d.readUint32()
			if err != nil {
				return err
			}
			stats.TermFreqs[term] = int(freq)
		}

		if _, dup := idx.docs[docID]; dup {
			return fmt.Errorf("%w: duplicate doc %d", ErrCorruptEncoding, docID)
		}
		idx.docs[docID] = stats
	}
	return nil
}

func (d *indexDecoder) decodePostings(idx *Index) error {
	numTerms, err := d.readUint32()
	if err != nil {
		return err
	}

	for i := uint32(0); i < numTerms; i++ {
		term, err := d.readString()
		if err != nil {
			return err
		}
		n, err := d.readUint32()
		if err != nil {
			return err
		}
		raw, err := d.take(int(n))
		if err != nil {
			return err
		}

		bitmap := roaring.NewBitmap()
		if err := bitmap.UnmarshalBinary(raw); err != nil {
			return fmt.Errorf("%w: postings for %q: %v", ErrCorruptEncoding, term, err)
		}
		idx.postings.lists[term] = bitmap
	}
	return nil
}
