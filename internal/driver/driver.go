// Package driver runs row-oriented codec loops, optionally across
// several workers. Stream I/O stays inside one critical section; a row
// counter assigned there is the only ordering dependency between
// workers, so decoded rows land in their correct slots and encoded
// output is byte-identical no matter how many workers run.
package driver

import (
	"fmt"
	"sync"

	"github.com/davesmith10/pixelcodec/internal/quantum"
)

// ReadFunc fills buf with the next row's bytes from the stream and
// returns how many it got. It is only ever called from the serialized
// section, in row order.
type ReadFunc func(buf []byte) (int, error)

// UnpackFunc turns one row's bytes into pixels. It may run concurrently
// with other rows' unpacking.
type UnpackFunc func(y int, buf []byte) error

// PackFunc fills buf with row y's encoded bytes. It may run
// concurrently with other rows' packing.
type PackFunc func(y int, buf []byte) error

// WriteFunc appends one row's bytes to the stream. It is only ever
// called from the serialized section, in row order.
type WriteFunc func(buf []byte) error

// Driver iterates the rows of a frame.
//
// Progress, when set, is invoked inside the serialized section after
// each row with the number of rows completed; returning false cancels
// the run: no new rows are dispatched, in-flight rows drain, and the
// run returns ErrCanceled with already-produced output intact.
type Driver struct {
	Workers  int
	Strict   bool // short reads become fatal instead of warnings
	Progress func(completed, total int) bool

	mu       sync.Mutex
	warnings []error
}

// Warnings returns the non-fatal conditions recorded by the most recent
// run.
func (d *Driver) Warnings() []error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.warnings
}

func (d *Driver) warn(err error) {
	d.mu.Lock()
	d.warnings = append(d.warnings, err)
	d.mu.Unlock()
}

func (d *Driver) reset() {
	d.mu.Lock()
	d.warnings = nil
	d.mu.Unlock()
}

func (d *Driver) workers(rows int) int {
	n := d.Workers
	if n < 1 {
		n = 1
	}
	if n > rows {
		n = rows
	}
	return n
}

// Decode reads and unpacks rows rows of rowBytes bytes each. A short
// read zero-pads the row, records a warning wrapping ErrTruncatedRow
// (fatal when Strict), keeps the rows decoded so far and stops
// dispatching further rows.
func (d *Driver) Decode(rows, rowBytes int, read ReadFunc, unpack UnpackFunc) error {
	if rows <= 0 || rowBytes <= 0 {
		return quantum.ErrInvalidArgument
	}
	d.reset()
	if d.workers(rows) == 1 {
		return d.decodeSequential(rows, rowBytes, read, unpack)
	}
	return d.decodeParallel(rows, rowBytes, read, unpack)
}

func (d *Driver) decodeSequential(rows, rowBytes int, read ReadFunc, unpack UnpackFunc) error {
	buf := make([]byte, rowBytes)
	for y := 0; y < rows; y++ {
		n, rerr := read(buf)
		if n < rowBytes {
			err := truncatedf(y, n, rowBytes, rerr)
			if d.Strict {
				return err
			}
			d.warn(err)
			for i := n; i < rowBytes; i++ {
				buf[i] = 0
			}
			if err := unpack(y, buf); err != nil {
				return err
			}
			if d.Progress != nil && !d.Progress(y+1, rows) {
				return quantum.ErrCanceled
			}
			return nil
		}
		if err := unpack(y, buf); err != nil {
			return err
		}
		if d.Progress != nil && !d.Progress(y+1, rows) {
			return quantum.ErrCanceled
		}
	}
	return nil
}

type runState struct {
	mu       sync.Mutex
	next     int // next row to dispatch
	stop     bool
	canceled bool
	err      error
}

func (st *runState) fail(err error) {
	st.mu.Lock()
	if st.err == nil {
		st.err = err
	}
	st.stop = true
	st.mu.Unlock()
}

func (d *Driver) decodeParallel(rows, rowBytes int, read ReadFunc, unpack UnpackFunc) error {
	st := &runState{}
	var wg sync.WaitGroup
	for w := 0; w < d.workers(rows); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, rowBytes)
			for {
				st.mu.Lock()
				if st.stop || st.next >= rows {
					st.mu.Unlock()
					return
				}
				y := st.next
				st.next++
				// The stream read and the row counter share the
				// critical section, so the y-th read is row y.
				n, rerr := read(buf)
				truncated := n < rowBytes
				if truncated {
					st.stop = true
					err := truncatedf(y, n, rowBytes, rerr)
					if d.Strict {
						if st.err == nil {
							st.err = err
						}
						st.mu.Unlock()
						return
					}
					d.warn(err)
					for i := n; i < rowBytes; i++ {
						buf[i] = 0
					}
				}
				if d.Progress != nil && !d.Progress(y+1, rows) {
					st.stop = true
					st.canceled = true
				}
				st.mu.Unlock()

				if err := unpack(y, buf); err != nil {
					st.fail(err)
					return
				}
				if truncated {
					return
				}
			}
		}()
	}
	wg.Wait()
	if st.err != nil {
		return st.err
	}
	if st.canceled {
		return quantum.ErrCanceled
	}
	return nil
}

// Encode packs and writes rows rows of rowBytes bytes each. Rows are
// written strictly in order regardless of worker count.
func (d *Driver) Encode(rows, rowBytes int, pack PackFunc, write WriteFunc) error {
	if rows <= 0 || rowBytes <= 0 {
		return quantum.ErrInvalidArgument
	}
	d.reset()
	if d.workers(rows) == 1 {
		return d.encodeSequential(rows, rowBytes, pack, write)
	}
	return d.encodeParallel(rows, rowBytes, pack, write)
}

func (d *Driver) encodeSequential(rows, rowBytes int, pack PackFunc, write WriteFunc) error {
	buf := make([]byte, rowBytes)
	for y := 0; y < rows; y++ {
		if err := pack(y, buf); err != nil {
			return err
		}
		if err := write(buf); err != nil {
			return err
		}
		if d.Progress != nil && !d.Progress(y+1, rows) {
			return quantum.ErrCanceled
		}
	}
	return nil
}

func (d *Driver) encodeParallel(rows, rowBytes int, pack PackFunc, write WriteFunc) error {
	st := &runState{}
	cond := sync.NewCond(&st.mu)
	nextWrite := 0
	var wg sync.WaitGroup
	for w := 0; w < d.workers(rows); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, rowBytes)
			for {
				st.mu.Lock()
				if st.stop || st.next >= rows {
					st.mu.Unlock()
					return
				}
				y := st.next
				st.next++
				st.mu.Unlock()

				if err := pack(y, buf); err != nil {
					st.fail(err)
					cond.Broadcast()
					return
				}

				// Ticket-ordered write: wait for every earlier row to
				// hit the stream first.
				st.mu.Lock()
				for nextWrite != y && !st.stop {
					cond.Wait()
				}
				if st.stop {
					st.mu.Unlock()
					return
				}
				if err := write(buf); err != nil {
					if st.err == nil {
						st.err = err
					}
					st.stop = true
					cond.Broadcast()
					st.mu.Unlock()
					return
				}
				nextWrite++
				if d.Progress != nil && !d.Progress(nextWrite, rows) {
					st.stop = true
					st.canceled = true
				}
				cond.Broadcast()
				st.mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if st.err != nil {
		return st.err
	}
	if st.canceled {
		return quantum.ErrCanceled
	}
	return nil
}

func truncatedf(y, got, want int, cause error) error {
	if cause != nil {
		return fmt.Errorf("row %d: short read (%d of %d bytes): %v: %w",
			y, got, want, cause, quantum.ErrTruncatedRow)
	}
	return fmt.Errorf("row %d: short read (%d of %d bytes): %w",
		y, got, want, quantum.ErrTruncatedRow)
}
