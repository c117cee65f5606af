package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mchmarny/waydo/pkg/config"
	"github.com/mchmarny/waydo/pkg/geometry"
	"github.com/mchmarny/waydo/pkg/host"
	"github.com/mchmarny/waydo/pkg/host/headless"
	"github.com/mchmarny/waydo/pkg/menu"
	"github.com/mchmarny/waydo/pkg/nav"
	"github.com/mchmarny/waydo/pkg/testutil"
	"github.com/mchmarny/waydo/pkg/toggle"
)

type compositorCalls struct {
	calls chan []string
}

func (c *compositorCalls) Execute(_ context.Context, tokens []string) error {
	c.calls <- tokens
	return nil
}

type keyboardCalls struct {
	calls chan int
}

func (k *keyboardCalls) PressChord(_ context.Context, _ []int, key int) error {
	k.calls <- key
	return nil
}

type stubHost struct {
	events chan nav.Event
	err    error
	ran    atomic.Bool
}

func (h *stubHost) Events() <-chan nav.Event { return h.events }
func (h *stubHost) Present(nav.View)         {}
func (h *stubHost) Run(ctx context.Context) error {
	h.ran.Store(true)
	if h.err != nil {
		return h.err
	}
	<-ctx.Done()
	return nil
}

func testTree() *menu.Tree {
	return menu.MustNew([]menu.Menu{{
		Name: "root",
		Items: []menu.Item{
			menu.NewAction("Run", "spawn -- foot", true),
			menu.NewAction("Undo", "key-ctrl-z", true),
		},
	}}, 0)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.SocketPath = filepath.Join(testutil.SocketDir(t), "waydo.sock")
	cfg.Host.Kind = config.HostHeadless
	return cfg
}

type harness struct {
	d     *Daemon
	host  *headless.Host
	views chan nav.View
	comp  *compositorCalls
	keys  *keyboardCalls
	done  chan error
}

func start(t *testing.T, cfg *config.Config) *harness {
	t.Helper()

	h := &harness{
		views: make(chan nav.View, 64),
		comp:  &compositorCalls{calls: make(chan []string, 8)},
		keys:  &keyboardCalls{calls: make(chan int, 8)},
		done:  make(chan error, 1),
	}
	h.host = headless.New(headless.WithPresentHook(func(v nav.View) { h.views <- v }))

	d, err := New(cfg,
		WithTree(testTree()),
		WithHost(h.host),
		WithExecutors(h.comp, h.keys),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h.d = d

	ctx, cancel := context.WithCancel(context.Background())
	go func() { h.done <- d.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		if err := testutil.RequireReceive(t, h.done, 5*time.Second, "waiting for Run"); err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})

	eventually(t, func() bool { return d.Healthy(context.Background()) == nil }, "event loop start")
	return h
}

func (h *harness) toggle(t *testing.T) {
	t.Helper()

	var err error
	eventually(t, func() bool {
		err = toggle.Send(context.Background(), h.d.cfg.SocketPath)
		return err == nil
	}, "toggle socket")
}

func (h *harness) send(t *testing.T, ev nav.Event) {
	t.Helper()
	if err := h.host.Send(context.Background(), ev); err != nil {
		t.Fatal(err)
	}
}

func waitPhase(t *testing.T, views <-chan nav.View, want nav.Phase) nav.View {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case v := <-views:
			if v.Phase == want {
				return v
			}
		case <-deadline:
			t.Fatalf("timed out waiting for phase %v", want)
		}
	}
}

func eventually(t *testing.T, cond func() bool, what string) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestToggleAndActivate(t *testing.T) {
	h := start(t, testConfig(t))
	anchor := geometry.Pt(500, 500)

	h.toggle(t)
	waitPhase(t, h.views, nav.AwaitingAnchor)

	h.send(t, nav.Click(anchor.X, anchor.Y))
	v := waitPhase(t, h.views, nav.AtRoot)
	if len(v.Items) != 2 || v.Items[0].Label != "Run" {
		t.Fatalf("root view items = %+v", v.Items)
	}

	// Item 0 sits straight up at the root ring distance.
	h.send(t, nav.Click(anchor.X, anchor.Y-120))
	waitPhase(t, h.views, nav.Hidden)

	got := testutil.RequireReceive(t, h.comp.calls, 5*time.Second, "waiting for compositor")
	if !reflect.DeepEqual(got, []string{"spawn", "--", "foot"}) {
		t.Errorf("compositor tokens = %v", got)
	}

	h.toggle(t)
	waitPhase(t, h.views, nav.AwaitingAnchor)
	h.send(t, nav.PointerMove(anchor.X, anchor.Y))
	waitPhase(t, h.views, nav.AtRoot)
	h.send(t, nav.Click(anchor.X, anchor.Y+120))
	waitPhase(t, h.views, nav.Hidden)

	if key := testutil.RequireReceive(t, h.keys.calls, 5*time.Second, "waiting for keyboard"); key != 44 {
		t.Errorf("key = %d, want 44", key)
	}

	m := h.d.metrics
	for label, want := range map[string]float64{"shown": 2, "anchored": 2, "activated": 2} {
		if got := promtest.ToFloat64(m.Transitions.Collector().WithLabelValues(label)); got != want {
			t.Errorf("transitions{%s} = %v, want %v", label, got, want)
		}
	}
	eventually(t, func() bool {
		return promtest.ToFloat64(m.Dispatches.Collector().WithLabelValues("compositor", "ok")) == 1 &&
			promtest.ToFloat64(m.Dispatches.Collector().WithLabelValues("keyboard", "ok")) == 1
	}, "dispatch metrics")
	eventually(t, func() bool {
		return promtest.ToFloat64(m.Toggles.Collector().WithLabelValues(toggle.ResultAccepted)) == 2
	}, "toggle metrics")
}

func TestToggleHidesVisibleMenu(t *testing.T) {
	h := start(t, testConfig(t))

	h.toggle(t)
	waitPhase(t, h.views, nav.AwaitingAnchor)
	h.toggle(t)
	waitPhase(t, h.views, nav.Hidden)

	if h.d.View().Visible() {
		t.Error("published view still visible")
	}
}

func TestStatusEndpoints(t *testing.T) {
	h := start(t, testConfig(t))
	h.toggle(t)
	waitPhase(t, h.views, nav.AwaitingAnchor)
	h.send(t, nav.Click(300, 300))
	waitPhase(t, h.views, nav.AtRoot)

	handler := h.d.StatusServer().Handler()

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	if rec := get("/healthz"); rec.Code != http.StatusOK {
		t.Errorf("/healthz = %d %s", rec.Code, rec.Body)
	}

	rec := get("/state")
	var v nav.View
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("/state is not a view: %v", err)
	}
	if v.Phase != nav.AtRoot || v.Anchor != geometry.Pt(300, 300) || len(v.Items) != 2 {
		t.Errorf("/state = %+v", v)
	}

	if rec := get("/menu"); !strings.Contains(rec.Body.String(), "spawn -- foot") {
		t.Errorf("/menu = %s", rec.Body)
	}

	if rec := get("/metrics"); !strings.Contains(rec.Body.String(), `waydo_transitions_total{transition="anchored"} 1`) {
		t.Errorf("/metrics missing anchored transition")
	}

	post := httptest.NewRecorder()
	handler.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/state", nil))
	if post.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /state = %d", post.Code)
	}
}

func TestBindFailureSkipsHost(t *testing.T) {
	cfg := testConfig(t)
	cfg.SocketPath = filepath.Join(filepath.Dir(cfg.SocketPath), "missing", "waydo.sock")

	stub := &stubHost{events: make(chan nav.Event)}
	d, err := New(cfg, WithTree(testTree()), WithHost(stub))
	if err != nil {
		t.Fatal(err)
	}

	if err := d.Run(context.Background()); err == nil {
		t.Fatal("Run() should fail when the socket cannot be bound")
	}
	if stub.ran.Load() {
		t.Error("host started despite bind failure")
	}
	if !errors.Is(d.Healthy(context.Background()), ErrNotRunning) {
		t.Error("daemon reports healthy after failed start")
	}
}

func TestHostQuitStopsDaemon(t *testing.T) {
	cfg := testConfig(t)
	stub := &stubHost{events: make(chan nav.Event), err: host.ErrQuit}

	d, err := New(cfg, WithTree(testTree()), WithHost(stub))
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- d.Run(context.Background()) }()

	if err := testutil.RequireReceive(t, done, 5*time.Second, "waiting for Run"); err != nil {
		t.Errorf("Run() error = %v, want nil on user quit", err)
	}
	if _, err := os.Lstat(cfg.SocketPath); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("socket left behind: %v", err)
	}
}

func TestHostErrorStopsDaemon(t *testing.T) {
	stub := &stubHost{events: make(chan nav.Event), err: errors.New("no tty")}

	d, err := New(testConfig(t), WithTree(testTree()), WithHost(stub))
	if err != nil {
		t.Fatal(err)
	}

	if err := d.Run(context.Background()); err == nil || !strings.Contains(err.Error(), "no tty") {
		t.Errorf("Run() error = %v, want host error", err)
	}
}

func TestNewErrors(t *testing.T) {
	bad := config.Default()
	bad.Host.Kind = "gtk"
	if _, err := New(bad); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("New(invalid config) error = %v", err)
	}

	cfg := testConfig(t)
	cfg.MenuFile = filepath.Join(t.TempDir(), "menu.yaml")
	if err := os.WriteFile(cfg.MenuFile, []byte("root: main\nmenus:\n  main:\n    - label: Loop\n      submenu: main\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := New(cfg); !errors.Is(err, menu.ErrCycle) {
		t.Errorf("New(cyclic menu) error = %v, want ErrCycle", err)
	}
}

func TestNewDefaults(t *testing.T) {
	d, err := New(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := d.host.(*headless.Host); !ok {
		t.Errorf("host = %T, want headless", d.host)
	}
	if d.tree.Len() != menu.Default().Len() {
		t.Error("default menu not used")
	}
	if d.View().Visible() {
		t.Error("new daemon should start hidden")
	}
}
