package corevm

import (
	"bytes"
	"io"
	"os"

	mmap "github.com/edsrzf/mmap-go"
	"golang.org/x/term"
)

// StreamVTable is the byte source/sink contract a Stream wraps (§4.6);
// any subset of the callbacks may be nil, and Port checks before
// calling each one (e.g. Seek is only honored when a stream exposes
// it).
type StreamVTable struct {
	Read  func(ctx any, p []byte) (int, error)
	Write func(ctx any, p []byte) (int, error)
	Close func(ctx any) error
	Mark  func(ctx any) // GC mark callback for host-held references
	Ready func(ctx any) bool
	Seek  func(ctx any, offset int64, whence int) (int64, error)
}

type streamData struct {
	vtable StreamVTable
	context any
	closed  bool
}

func (vm *VM) newStream(vtable StreamVTable, ctx any) *Object {
	o := vm.heap.newObj(KindStream)
	o.payload = &streamData{vtable: vtable, context: ctx}
	return o
}

func streamOf(o *Object) *streamData { return o.payload.(*streamData) }

// ---- In-memory stream ----

type memStreamCtx struct{ buf *bytes.Buffer }

// NewMemoryStream wraps an in-memory byte buffer as a Stream: reads
// drain the buffer and writes append to it.
func (vm *VM) NewMemoryStream(initial []byte) *Object {
	ctx := &memStreamCtx{buf: bytes.NewBuffer(initial)}
	return vm.newStream(StreamVTable{
		Read: func(c any, p []byte) (int, error) {
			return c.(*memStreamCtx).buf.Read(p)
		},
		Write: func(c any, p []byte) (int, error) {
			return c.(*memStreamCtx).buf.Write(p)
		},
		Close: func(any) error { return nil },
		Ready: func(c any) bool {
			return c.(*memStreamCtx).buf.Len() > 0
		},
	}, ctx)
}

// ---- OS file stream ----

type fileStreamCtx struct{ f *os.File }

// NewFileStream wraps an opened *os.File as a Stream, exposing Seek
// since regular files support it.
func (vm *VM) NewFileStream(f *os.File) *Object {
	ctx := &fileStreamCtx{f: f}
	return vm.newStream(StreamVTable{
		Read:  func(c any, p []byte) (int, error) { return c.(*fileStreamCtx).f.Read(p) },
		Write: func(c any, p []byte) (int, error) { return c.(*fileStreamCtx).f.Write(p) },
		Close: func(c any) error { return c.(*fileStreamCtx).f.Close() },
		Seek: func(c any, offset int64, whence int) (int64, error) {
			return c.(*fileStreamCtx).f.Seek(offset, whence)
		},
		Ready: func(any) bool { return true },
	}, ctx)
}

// isTTY reports whether f is attached to an interactive terminal, used
// to populate Port.isatty (§3) for the debug-on-error check in §4.8.
func isTTY(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ---- mmap-backed read-only file stream ----

type mmapStreamCtx struct {
	f    *os.File
	data mmap.MMap
	pos  int64
}

// NewMmapFileStream memory-maps path read-only and wraps it as a
// Stream, the way a script loader would rather pay random-access I/O
// costs against the page cache than buffer an entire large source file
// up front. Seek is supported; Write is not (the map is RDONLY).
func (vm *VM) NewMmapFileStream(path string) (*Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	ctx := &mmapStreamCtx{f: f, data: data}
	return vm.newStream(StreamVTable{
		Read: func(c any, p []byte) (int, error) {
			m := c.(*mmapStreamCtx)
			if m.pos >= int64(len(m.data)) {
				return 0, io.EOF
			}
			n := copy(p, m.data[m.pos:])
			m.pos += int64(n)
			return n, nil
		},
		Seek: func(c any, offset int64, whence int) (int64, error) {
			m := c.(*mmapStreamCtx)
			var base int64
			switch whence {
			case io.SeekStart:
				base = 0
			case io.SeekCurrent:
				base = m.pos
			case io.SeekEnd:
				base = int64(len(m.data))
			}
			m.pos = base + offset
			return m.pos, nil
		},
		Close: func(c any) error {
			m := c.(*mmapStreamCtx)
			if err := m.data.Unmap(); err != nil {
				m.f.Close()
				return err
			}
			return m.f.Close()
		},
		Ready: func(c any) bool {
			m := c.(*mmapStreamCtx)
			return m.pos < int64(len(m.data))
		},
	}, ctx), nil
}
