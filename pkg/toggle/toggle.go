// Package toggle implements the notification channel that shows or hides
// the overlay: a unix stream socket carrying one newline terminated
// TOGGLE message per connection.
package toggle

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"time"
)

const (
	// DefaultSocketPath is where the daemon listens for toggle requests.
	DefaultSocketPath = "/tmp/waydo.sock"

	// Message is the only request the listener accepts.
	Message = "TOGGLE"

	// DefaultReadTimeout bounds how long a client may take to send its
	// request line.
	DefaultReadTimeout = time.Second

	// DefaultDialTimeout bounds Send's connection attempt.
	DefaultDialTimeout = time.Second

	// maxLine caps the request line so a misbehaving client cannot make
	// the listener buffer unbounded input.
	maxLine = 64
)

// Request results reported to the observer.
const (
	ResultAccepted  = "accepted"
	ResultCoalesced = "coalesced"
	ResultRejected  = "rejected"
)

// ErrNotSocket is returned when the socket path exists and is not a socket.
var ErrNotSocket = errors.New("path exists and is not a socket")

// Listener accepts toggle requests on a unix socket.
type Listener struct {
	path        string
	ln          net.Listener
	logger      *slog.Logger
	readTimeout time.Duration
	observer    func(result string)

	closeOnce sync.Once
}

// Option configures a Listener.
type Option func(*Listener)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(ln *Listener) { ln.logger = l }
}

// WithReadTimeout sets the per connection read deadline.
// If not specified, DefaultReadTimeout (1s) is used.
func WithReadTimeout(d time.Duration) Option {
	return func(ln *Listener) { ln.readTimeout = d }
}

// WithObserver registers a callback told the result of every request.
func WithObserver(f func(result string)) Option {
	return func(ln *Listener) { ln.observer = f }
}

// Listen removes a stale socket at path and binds a new one. The returned
// Listener owns the socket file and removes it on Close.
func Listen(path string, opts ...Option) (*Listener, error) {
	l := &Listener{
		path:        path,
		logger:      slog.Default(),
		readTimeout: DefaultReadTimeout,
	}
	for _, opt := range opts {
		opt(l)
	}

	if err := removeStale(path); err != nil {
		return nil, err
	}

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("binding toggle socket %s: %w", path, err)
	}
	l.ln = ln

	l.logger.Info("toggle socket bound", "path", path)
	return l, nil
}

func removeStale(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("checking toggle socket %s: %w", path, err)
	}
	if info.Mode()&fs.ModeSocket == 0 {
		return fmt.Errorf("toggle socket %s: %w", path, ErrNotSocket)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing stale toggle socket %s: %w", path, err)
	}
	return nil
}

// Path returns the socket path.
func (l *Listener) Path() string { return l.path }

// Serve accepts connections until ctx is canceled. Every valid request
// makes a non-blocking send on out; a request arriving while a previous
// one is still pending in out is coalesced into it. Serve closes the
// listener before it returns and returns nil on cancellation.
func (l *Listener) Serve(ctx context.Context, out chan<- struct{}) error {
	var wg sync.WaitGroup
	defer wg.Wait()
	defer l.Close()

	stop := context.AfterFunc(ctx, func() { l.Close() })
	defer stop()

	for {
		conn, err := l.ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accepting toggle connection: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			l.handle(conn, out)
		}()
	}
}

func (l *Listener) handle(conn net.Conn, out chan<- struct{}) {
	defer conn.Close()

	if err := conn.SetReadDeadline(time.Now().Add(l.readTimeout)); err != nil {
		l.logger.Warn("setting toggle read deadline", "error", err)
	}

	line, err := readLine(conn)
	if err != nil {
		l.logger.Debug("toggle read failed", "error", err)
		l.observe(ResultRejected)
		return
	}

	if line != Message {
		l.logger.Debug("ignoring toggle request", "message", line)
		l.observe(ResultRejected)
		return
	}

	select {
	case out <- struct{}{}:
		l.logger.Debug("toggle requested")
		l.observe(ResultAccepted)
	default:
		l.logger.Debug("toggle coalesced with pending request")
		l.observe(ResultCoalesced)
	}
}

func readLine(conn net.Conn) (string, error) {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, maxLine), maxLine)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", errors.New("empty request")
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func (l *Listener) observe(result string) {
	if l.observer != nil {
		l.observer(result)
	}
}

// Close stops accepting connections and removes the socket file. It is
// safe to call more than once.
func (l *Listener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		// The unix listener unlinks its own path on close.
		err = l.ln.Close()
		if rmErr := os.Remove(l.path); rmErr != nil && !errors.Is(rmErr, fs.ErrNotExist) && err == nil {
			err = rmErr
		}
	})
	return err
}

// Send connects to the socket at path and writes one toggle request.
func Send(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultDialTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", path, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}

	if _, err := conn.Write([]byte(Message + "\n")); err != nil {
		return fmt.Errorf("writing toggle request: %w", err)
	}
	return nil
}
