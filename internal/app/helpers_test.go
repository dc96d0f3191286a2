package app

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/bft-labs/lockstep/internal/domain"
	"github.com/bft-labs/lockstep/internal/ports"
)

// mockLogger implements ports.Logger for testing.
type mockLogger struct{}

func (mockLogger) Debug(msg string, fields ...ports.Field) {}
func (mockLogger) Info(msg string, fields ...ports.Field)  {}
func (mockLogger) Warn(msg string, fields ...ports.Field)  {}
func (mockLogger) Error(msg string, fields ...ports.Field) {}

// pipeEnd is one side of an in-memory duplex connection.
type pipeEnd struct {
	in     <-chan string
	out    chan<- string
	done   chan struct{}
	once   *sync.Once
	remote string
}

// pipe returns two connected ends. Closing either end closes both.
func pipe() (*pipeEnd, *pipeEnd) {
	a2b := make(chan string)
	b2a := make(chan string)
	done := make(chan struct{})
	once := &sync.Once{}
	a := &pipeEnd{in: b2a, out: a2b, done: done, once: once, remote: "client:1"}
	b := &pipeEnd{in: a2b, out: b2a, done: done, once: once, remote: "server:1"}
	return a, b
}

func (p *pipeEnd) ReadText(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-p.done:
		return "", domain.ErrConnClosed
	case s := <-p.in:
		return s, nil
	}
}

func (p *pipeEnd) WriteText(ctx context.Context, s string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.done:
		return domain.ErrConnClosed
	case p.out <- s:
		return nil
	}
}

func (p *pipeEnd) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

func (p *pipeEnd) RemoteAddr() string { return p.remote }

// pipeDialer hands out a prepared client end.
type pipeDialer struct {
	conn ports.DuplexConn
	err  error
	url  string
}

func (d *pipeDialer) Dial(ctx context.Context, url string) (ports.DuplexConn, error) {
	d.url = url
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}

// recordingTransfer captures uploads instead of sending them.
type recordingTransfer struct {
	mu       sync.Mutex
	url      string
	fileName string
	content  string
	receipt  ports.TransferReceipt
	err      error
}

func (r *recordingTransfer) Upload(ctx context.Context, url, fileName string, content io.Reader) (ports.TransferReceipt, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return ports.TransferReceipt{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.url = url
	r.fileName = fileName
	r.content = string(data)
	return r.receipt, r.err
}

// memoryStore is an in-memory ports.UploadStore.
type memoryStore struct {
	mu    sync.Mutex
	files map[string]string
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: make(map[string]string)}
}

func (m *memoryStore) Put(ctx context.Context, name string, r io.Reader) (ports.StoredObject, error) {
	if m.err != nil {
		return ports.StoredObject{}, m.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ports.StoredObject{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = string(data)
	return ports.StoredObject{Path: "mem/" + name, Size: int64(len(data)), Digest: "d"}, nil
}

func (m *memoryStore) get(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.files[name]
	return s, ok
}

// recordingEmitter captures session and transfer events.
type recordingEmitter struct {
	mu        sync.Mutex
	opened    int
	exchanges []uint64
	closed    []domain.CloseReason
	stored    []domain.TransferResult
	failed    []string
}

func (r *recordingEmitter) OnSessionOpened(id uint64, remote string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened++
}

func (r *recordingEmitter) OnExchange(id, exchanges uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exchanges = append(r.exchanges, exchanges)
}

func (r *recordingEmitter) OnSessionClosed(id, exchanges uint64, reason domain.CloseReason, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, reason)
}

func (r *recordingEmitter) OnTransferStored(result domain.TransferResult, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored = append(r.stored, result)
}

func (r *recordingEmitter) OnTransferFailed(fileName string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, fileName)
}

func (r *recordingEmitter) closeReasons() []domain.CloseReason {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.CloseReason{}, r.closed...)
}
