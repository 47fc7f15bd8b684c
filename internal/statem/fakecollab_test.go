package statem

import "errors"

// fakeTransport is a scriptable Transport used across this package's
// tests. Each queue is consumed in order; once exhausted, the read/
// write methods report a suspend (ok=false, err=nil) rather than
// erroring, mirroring a socket that would block.
type fakeTransport struct {
	datagram bool
	sctp     bool

	validateVersionErr error
	initBuffersErr     error

	headerQueue []MessageType
	headerSizes []uint64 // parallel to headerQueue; missing entries default to 0
	headerIdx   int

	bodyLens []uint64
	bodyIdx  int

	writeOKQueue []bool
	writeIdx     int
	writeErr     error

	alerts      []AlertDescription
	timerStarts int
	timerStops  int

	lastCCS bool
	ccsSeen []bool
}

func (f *fakeTransport) IsDatagram() bool { return f.datagram }
func (f *fakeTransport) IsSCTP() bool     { return f.sctp }

func (f *fakeTransport) ValidateVersion(Role) error { return f.validateVersionErr }

func (f *fakeTransport) InitBuffers(*Session) error { return f.initBuffersErr }

func (f *fakeTransport) MaxPlaintextLen() int { return 16384 }

func (f *fakeTransport) ReadMessageHeader(*Session) (MessageType, uint64, bool, error) {
	if f.headerIdx >= len(f.headerQueue) {
		return 0, 0, false, nil
	}
	mt := f.headerQueue[f.headerIdx]
	var size uint64
	if f.headerIdx < len(f.headerSizes) {
		size = f.headerSizes[f.headerIdx]
	}
	f.headerIdx++
	return mt, size, true, nil
}

func (f *fakeTransport) ReadMessageBody(*Session) (uint64, bool, error) {
	if f.bodyIdx >= len(f.bodyLens) {
		return 0, false, nil
	}
	n := f.bodyLens[f.bodyIdx]
	f.bodyIdx++
	return n, true, nil
}

func (f *fakeTransport) WriteRecord(_ *Session, ccs bool) (bool, error) {
	f.lastCCS = ccs
	f.ccsSeen = append(f.ccsSeen, ccs)
	if f.writeErr != nil {
		return false, f.writeErr
	}
	if f.writeIdx >= len(f.writeOKQueue) {
		return false, nil
	}
	ok := f.writeOKQueue[f.writeIdx]
	f.writeIdx++
	return ok, nil
}

func (f *fakeTransport) SendAlert(_ *Session, _ AlertLevel, desc AlertDescription) error {
	f.alerts = append(f.alerts, desc)
	return nil
}

func (f *fakeTransport) TimerStart(*Session) { f.timerStarts++ }
func (f *fakeTransport) TimerStop(*Session)  { f.timerStops++ }

var errFakeRejected = errors.New("fake: rejected")

// onceTrueTransition returns a ReadHooks.Transition that accepts its
// first call and rejects every subsequent one.
func onceTrueTransition() func(s *Session, mt MessageType) bool {
	called := false
	return func(*Session, MessageType) bool {
		if called {
			return false
		}
		called = true
		return true
	}
}
