package hwaccess

import (
	"sync"

	"codeberg.org/mutker/freqctl/internal/errors"
)

// Op identifies the kind of accessor call recorded by Mock.
type Op string

const (
	OpRead  Op = "read"
	OpWrite Op = "write"
)

// Call is one recorded accessor call.
type Call struct {
	Op    Op
	Attr  Attribute
	Value float64
}

// Mock is an in-memory Accessor with per-attribute failure injection and a
// call log, for tests.
type Mock struct {
	mu        sync.Mutex
	values    map[Attribute]float64
	readFail  map[Attribute]bool
	writeFail map[Attribute]bool
	calls     []Call
}

var _ Accessor = (*Mock)(nil)

// NewMock returns a Mock holding a copy of values.
func NewMock(values map[Attribute]float64) *Mock {
	m := &Mock{
		values:    make(map[Attribute]float64, len(values)),
		readFail:  make(map[Attribute]bool),
		writeFail: make(map[Attribute]bool),
	}
	for k, v := range values {
		m.values[k] = v
	}

	return m
}

func (m *Mock) Read(attr Attribute) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Op: OpRead, Attr: attr})

	if m.readFail[attr] {
		return 0, errors.New().WithData(ErrReadFailed, attr)
	}

	v, ok := m.values[attr]
	if !ok {
		return 0, errors.New().WithData(ErrAttributeNotSupported, attr)
	}

	return v, nil
}

func (m *Mock) Write(attr Attribute, value float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Op: OpWrite, Attr: attr, Value: value})

	if m.writeFail[attr] {
		return errors.New().WithData(ErrWriteFailed, attr)
	}

	m.values[attr] = value

	return nil
}

// Set stores value without recording a call.
func (m *Mock) Set(attr Attribute, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[attr] = value
}

// Get returns the stored value without recording a call.
func (m *Mock) Get(attr Attribute) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[attr]
	return v, ok
}

// FailRead makes reads of attrs fail until ClearFailures.
func (m *Mock) FailRead(attrs ...Attribute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range attrs {
		m.readFail[a] = true
	}
}

// FailWrite makes writes of attrs fail until ClearFailures.
func (m *Mock) FailWrite(attrs ...Attribute) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range attrs {
		m.writeFail[a] = true
	}
}

func (m *Mock) ClearFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readFail = make(map[Attribute]bool)
	m.writeFail = make(map[Attribute]bool)
}

// Calls returns a copy of the call log.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]Call, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// Writes returns the recorded writes in order.
func (m *Mock) Writes() []Call {
	var writes []Call
	for _, c := range m.Calls() {
		if c.Op == OpWrite {
			writes = append(writes, c)
		}
	}
	return writes
}

// Reads returns the attributes read, in order.
func (m *Mock) Reads() []Attribute {
	var reads []Attribute
	for _, c := range m.Calls() {
		if c.Op == OpRead {
			reads = append(reads, c.Attr)
		}
	}
	return reads
}

func (m *Mock) ResetCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}
