package corevm

import (
	"io"
)

// portDirection tags which half-duplex role a Port is currently open
// for. A Port can flip direction only by being reopened (§4.6).
type portDirection uint8

const (
	portInput portDirection = iota
	portOutput
)

// portData is the buffered read/write front end every primitive that
// touches I/O goes through; the raw byte transport lives behind
// stream's vtable. Line tracking lets error messages and *stdin*'s
// reader stay in agreement about cursor position even when input is
// consumed ahead of the parser via peeking.
type portData struct {
	stream     *Object // KindStream
	direction  portDirection
	sourceFile *Object // KindSourceFile, set for file-backed input ports

	heap    *Heap
	readBuf *scratchLease
	readPos int
	readLen int

	writeBuf []byte
	maxWrite int // flush threshold; 0 means unbuffered

	pos    int64
	line   int
	closed bool
	isatty bool
}

// NewPort wraps stream as a Port opened in dir, leasing a scratch block
// from the heap's size-class free list for read-ahead buffering when
// dir is portInput.
func (vm *VM) NewPort(stream *Object, dir portDirection, isatty bool) *Object {
	o := vm.heap.newObj(KindPort)
	p := &portData{stream: stream, direction: dir, isatty: isatty, line: 1, heap: vm.heap}
	if dir == portInput {
		p.readBuf = vm.heap.leaseScratch(smallBlockClass)
	} else {
		p.maxWrite = vm.config.GetInt("port.max_output")
	}
	o.payload = p
	if isatty {
		o.set(flagIsATTY)
	}
	return o
}

func portOf(o *Object) *portData { return o.payload.(*portData) }

// ReadByte returns the next byte from the port's input stream,
// refilling its read-ahead buffer through the underlying Stream's
// vtable as needed.
func (vm *VM) ReadByte(port *Object) (byte, error) {
	p := portOf(port)
	if p.closed {
		return 0, io.ErrClosedPipe
	}
	if p.readPos >= p.readLen {
		s := streamOf(p.stream)
		if s.vtable.Read == nil {
			return 0, io.EOF
		}
		n, err := s.vtable.Read(s.context, p.readBuf.buf)
		if n == 0 {
			if err == nil {
				err = io.EOF
			}
			return 0, err
		}
		p.readPos, p.readLen = 0, n
	}
	b := p.readBuf.buf[p.readPos]
	p.readPos++
	p.pos++
	if b == '\n' {
		p.line++
	}
	return b, nil
}

// PeekByte returns the next byte without consuming it. The reader does
// not use it: it works on an in-memory rune slice with its own lookahead.
func (vm *VM) PeekByte(port *Object) (byte, error) {
	p := portOf(port)
	if p.closed {
		return 0, io.ErrClosedPipe
	}
	if p.readPos >= p.readLen {
		s := streamOf(p.stream)
		if s.vtable.Read == nil {
			return 0, io.EOF
		}
		n, err := s.vtable.Read(s.context, p.readBuf.buf)
		if n == 0 {
			if err == nil {
				err = io.EOF
			}
			return 0, err
		}
		p.readPos, p.readLen = 0, n
	}
	return p.readBuf.buf[p.readPos], nil
}

// WriteBytes appends b to the port's write buffer, flushing through the
// underlying Stream whenever a newline is written, the port is marked
// no_buf, the buffer crosses port.max_output, or the port has no
// buffering threshold at all (§4.6).
func (vm *VM) WriteBytes(port *Object, b []byte) error {
	p := portOf(port)
	if p.closed {
		return io.ErrClosedPipe
	}
	p.writeBuf = append(p.writeBuf, b...)
	if p.maxWrite <= 0 || port.has(flagNoBuf) || bytesContain(b, '\n') ||
		(p.maxWrite > 0 && len(p.writeBuf) >= p.maxWrite) {
		return vm.FlushPort(port)
	}
	return nil
}

func bytesContain(b []byte, c byte) bool {
	for _, x := range b {
		if x == c {
			return true
		}
	}
	return false
}

// FlushPort drains any buffered output through the underlying Stream.
func (vm *VM) FlushPort(port *Object) error {
	p := portOf(port)
	if len(p.writeBuf) == 0 {
		return nil
	}
	s := streamOf(p.stream)
	if s.vtable.Write == nil {
		return vm.newError(IOError, "port is not writable", Range{})
	}
	n, err := s.vtable.Write(s.context, p.writeBuf)
	p.pos += int64(n)
	p.writeBuf = p.writeBuf[:0]
	return err
}

// close flushes pending output, releases the read-ahead scratch lease
// back to the heap, and closes the underlying Stream. It is the
// finalizer the GC calls on an unreachable Port (gc.go) and is also
// exposed to user code as the `close` primitive.
func (p *portData) close() error {
	if p.closed {
		return nil
	}
	p.closed = true
	var flushErr error
	s := streamOf(p.stream)
	if p.direction == portOutput && len(p.writeBuf) > 0 {
		if s.vtable.Write != nil {
			_, flushErr = s.vtable.Write(s.context, p.writeBuf)
		}
		p.writeBuf = nil
	}
	if p.readBuf != nil {
		p.heap.release(p.readBuf)
		p.readBuf = nil
	}
	if s.vtable.Close != nil && !s.closed {
		s.closed = true
		if err := s.vtable.Close(s.context); err != nil && flushErr == nil {
			flushErr = err
		}
	}
	return flushErr
}

// Seek repositions a seekable port, failing with IOError when the
// underlying Stream exposes no Seek callback.
func (vm *VM) Seek(port *Object, offset int64, whence int) (int64, error) {
	p := portOf(port)
	s := streamOf(p.stream)
	if s.vtable.Seek == nil {
		return 0, vm.newError(IOError, "stream does not support seeking", Range{})
	}
	p.readPos, p.readLen = 0, 0
	return s.vtable.Seek(s.context, offset, whence)
}

func PortLine(o *Object) int       { return portOf(o).line }
func PortPos(o *Object) int64      { return portOf(o).pos }
func PortIsATTY(o *Object) bool    { return portOf(o).isatty }
func PortSourceFile(o *Object) *Object { return portOf(o).sourceFile }

func (o *Object) SetPortSourceFile(sf *Object) { portOf(o).sourceFile = sf }
