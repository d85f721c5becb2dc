package mft

import (
	"fmt"
	"io"
	"sync"

	"github.com/ntfsinv/mftinv/internal/device"
	"github.com/ntfsinv/mftinv/internal/ntfs"
	"github.com/ntfsinv/mftinv/pkg/reader"
)

// Reader is a random-access and forward-iterable view over a volume's MFT
// record stream. It owns no device handle of its own: it reads through the
// device.Handle the caller opened and is responsible for closing.
//
// The $DATA run list is spliced into one virtually contiguous stream with
// reader.MultiReadSeeker (one io.ReadSeeker per run, a zero-filled one for
// sparse runs) wrapped in a reader.BufferedReadSeeker.
type Reader struct {
	boot       *BootSector
	handle     device.Handle
	stream     *reader.BufferedReadSeeker
	totalBytes int64

	mu sync.Mutex
}

// Bootstrap reads the boot sector, locates MFT record 0, decodes its
// unnamed $DATA run list, and returns a Reader ready for random-access or
// iterator reads over every record in the MFT.
func Bootstrap(h device.Handle) (*Reader, error) {
	sector := make([]byte, bootSectorSize)
	if _, err := h.ReadAt(sector, 0); err != nil {
		return nil, fmt.Errorf("mft: reading boot sector: %w", err)
	}

	boot, err := DecodeBootSector(sector)
	if err != nil {
		return nil, err
	}

	record0 := make([]byte, boot.RecordSize)
	if _, err := h.ReadAt(record0, boot.MFTStartOffset()); err != nil {
		return nil, fmt.Errorf("mft: reading $MFT record 0: %w", err)
	}

	rec, err := ntfs.Decode(record0, 0)
	if err != nil {
		return nil, fmt.Errorf("mft: decoding $MFT record 0: %w", err)
	}

	var dataAttr *ntfs.DataAttr
	for i := range rec.Data {
		if rec.Data[i].Name == "" {
			dataAttr = &rec.Data[i]
			break
		}
	}
	if dataAttr == nil || !dataAttr.NonResident {
		return nil, fmt.Errorf("mft: $MFT record 0 has no non-resident unnamed $DATA attribute")
	}

	runs, err := dataAttr.Runs()
	if err != nil {
		return nil, fmt.Errorf("mft: decoding $MFT run list: %w", err)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("mft: $MFT run list is empty")
	}

	stream, err := spliceRuns(h, runs, int64(boot.BytesPerCluster))
	if err != nil {
		return nil, err
	}

	return &Reader{
		boot:       boot,
		handle:     h,
		stream:     reader.NewBufferedReadSeeker(stream, int(boot.RecordSize)*8),
		totalBytes: int64(dataAttr.LogicalSize),
	}, nil
}

// spliceRuns builds one virtually contiguous reader.ReadSeeker over a run
// list, backing non-sparse runs with an io.SectionReader over the device
// handle and sparse runs with a zero-filled seeker of the same length.
func spliceRuns(h device.Handle, runs []ntfs.Run, bytesPerCluster int64) (io.ReadSeeker, error) {
	readers := make([]io.ReadSeeker, len(runs))
	sizes := make([]int64, len(runs))

	for i, run := range runs {
		size := int64(run.Length) * bytesPerCluster
		if size <= 0 {
			return nil, fmt.Errorf("mft: run %d has non-positive length", i)
		}

		if run.Sparse {
			readers[i] = newZeroReadSeeker(size)
		} else {
			readers[i] = io.NewSectionReader(h, run.LCN*bytesPerCluster, size)
		}
		sizes[i] = size
	}

	return reader.NewMultiReadSeeker(readers, sizes), nil
}

// BootSector returns the decoded boot sector, e.g. for logging record/cluster sizes.
func (r *Reader) BootSector() *BootSector { return r.boot }

// RecordCount is the number of records in the MFT: total $MFT $DATA bytes
// divided by the record size.
func (r *Reader) RecordCount() uint64 {
	return uint64(r.totalBytes) / uint64(r.boot.RecordSize)
}

// ReadRecord reads record n's raw bytes by seeking the spliced run stream to
// its virtual byte offset within $MFT's $DATA value. Safe for concurrent use
// by a per-volume decode worker pool; the stream's seek-then-read pair
// is serialised under a mutex.
func (r *Reader) ReadRecord(n uint64) ([]byte, error) {
	virtualOffset := int64(n) * int64(r.boot.RecordSize)
	if virtualOffset+int64(r.boot.RecordSize) > r.totalBytes {
		return nil, fmt.Errorf("mft: record %d out of range", n)
	}

	buf := make([]byte, r.boot.RecordSize)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.stream.Seek(virtualOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("mft: seeking to record %d: %w", n, err)
	}
	if _, err := io.ReadFull(r.stream, buf); err != nil {
		return nil, fmt.Errorf("mft: reading record %d: %w", n, err)
	}
	return buf, nil
}

// RecordResult is one item of the Records iterator: either a decoded record
// or the error that prevented decoding it. Bundled into a single value
// because range-over-func iterators only support a (key, value) pair, not
// three independent values.
type RecordResult struct {
	Record *ntfs.Record
	Err    error
}

// Records returns a forward iterator over every record in the MFT, in
// order. Decode failures are yielded as a RecordResult with a nil Record and
// a non-nil Err; the iterator does not stop on a decode failure.
func (r *Reader) Records() func(yield func(uint64, RecordResult) bool) {
	return func(yield func(uint64, RecordResult) bool) {
		count := r.RecordCount()
		for n := uint64(0); n < count; n++ {
			buf, err := r.ReadRecord(n)
			if err != nil {
				if !yield(n, RecordResult{Err: err}) {
					return
				}
				continue
			}

			rec, err := ntfs.Decode(buf, n)
			if !yield(n, RecordResult{Record: rec, Err: err}) {
				return
			}
		}
	}
}

// zeroReadSeeker is a fixed-length, all-zero io.ReadSeeker standing in for a
// sparse run's backing store.
type zeroReadSeeker struct {
	size int64
	pos  int64
}

func newZeroReadSeeker(size int64) *zeroReadSeeker {
	return &zeroReadSeeker{size: size}
}

func (z *zeroReadSeeker) Read(p []byte) (int, error) {
	if z.pos >= z.size {
		return 0, io.EOF
	}
	n := int64(len(p))
	if rem := z.size - z.pos; n > rem {
		n = rem
	}
	for i := int64(0); i < n; i++ {
		p[i] = 0
	}
	z.pos += n
	return int(n), nil
}

func (z *zeroReadSeeker) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = z.pos + offset
	case io.SeekEnd:
		pos = z.size + offset
	default:
		return -1, fmt.Errorf("zeroReadSeeker.Seek: invalid whence (%d)", whence)
	}
	if pos < 0 {
		return -1, fmt.Errorf("zeroReadSeeker.Seek: negative position")
	}
	z.pos = pos
	return pos, nil
}
