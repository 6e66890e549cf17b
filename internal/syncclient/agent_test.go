package syncclient

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AndreiTelteu/team-status/internal/ws"
)

// --- モック ---

type fakeTransport struct {
	in        chan []byte
	closed    chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	writes [][]byte
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		in:     make(chan []byte, 16),
		closed: make(chan struct{}),
	}
}

func (f *fakeTransport) ReadMessage() (int, []byte, error) {
	select {
	case data := <-f.in:
		return websocket.TextMessage, data, nil
	case <-f.closed:
		return 0, nil, errors.New("use of closed connection")
	}
}

func (f *fakeTransport) WriteMessage(messageType int, data []byte) error {
	select {
	case <-f.closed:
		return errors.New("use of closed connection")
	default:
	}
	f.mu.Lock()
	f.writes = append(f.writes, data)
	f.mu.Unlock()
	return nil
}

func (f *fakeTransport) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeTransport) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

// eventRecorder はリスナーが受けたイベントをスレッドセーフに蓄積する。
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) listener() func(Event) {
	return func(ev Event) {
		r.mu.Lock()
		r.events = append(r.events, ev)
		r.mu.Unlock()
	}
}

func (r *eventRecorder) snapshot() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *eventRecorder) countGaveUp() int {
	n := 0
	for _, ev := range r.snapshot() {
		if _, ok := ev.(GaveUp); ok {
			n++
		}
	}
	return n
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

// --- テスト ---

// 5回連続のハンドシェイク失敗後、6回目の自動試行が起きず
// 終端通知がちょうど1回流れることを検証
func TestAgent_ReconnectBound(t *testing.T) {
	var dials atomic.Int32
	rec := &eventRecorder{}

	a := New(Config{
		URL:         "ws://test",
		MaxAttempts: 5,
		RetryDelay:  5 * time.Millisecond,
		Dial: func(url string) (Transport, error) {
			dials.Add(1)
			return nil, errors.New("connection refused")
		},
	})
	a.AddListener(rec.listener())

	a.Connect()

	waitFor(t, 3*time.Second, func() bool { return rec.countGaveUp() >= 1 })
	// 追加の自動試行が残っていないことを確認するための猶予
	time.Sleep(50 * time.Millisecond)

	if got := dials.Load(); got != 5 {
		t.Errorf("dial attempts = %d, want exactly 5", got)
	}
	if rec.countGaveUp() != 1 {
		t.Errorf("GaveUp fired %d times, want exactly 1", rec.countGaveUp())
	}
	if a.State() != StateClosed {
		t.Errorf("state = %v, want StateClosed", a.State())
	}
}

// 終端後の手動Connectがカウンタをリセットし再試行を始めることを検証
func TestAgent_ManualConnectResetsBudget(t *testing.T) {
	var dials atomic.Int32
	rec := &eventRecorder{}

	a := New(Config{
		URL:         "ws://test",
		MaxAttempts: 2,
		RetryDelay:  5 * time.Millisecond,
		Dial: func(url string) (Transport, error) {
			dials.Add(1)
			return nil, errors.New("connection refused")
		},
	})
	a.AddListener(rec.listener())

	a.Connect()
	waitFor(t, 3*time.Second, func() bool { return rec.countGaveUp() >= 1 })
	first := dials.Load()

	a.Connect()
	waitFor(t, 3*time.Second, func() bool { return rec.countGaveUp() >= 2 })

	if got := dials.Load() - first; got != 2 {
		t.Errorf("dial attempts after manual reconnect = %d, want 2", got)
	}
}

// Connecting/Open中のConnectが何もしないことを検証（冪等）
func TestAgent_ConnectIdempotent(t *testing.T) {
	var dials atomic.Int32
	transport := newFakeTransport()

	a := New(Config{
		URL: "ws://test",
		Dial: func(url string) (Transport, error) {
			dials.Add(1)
			return transport, nil
		},
	})
	defer a.Close()

	a.Connect()
	waitFor(t, 2*time.Second, func() bool { return a.State() == StateOpen })

	a.Connect()
	a.Connect()
	time.Sleep(20 * time.Millisecond)

	if got := dials.Load(); got != 1 {
		t.Errorf("dial attempts = %d, want 1", got)
	}
}

// 接続成功で失敗カウンタがリセットされることを検証
// （2回失敗→成功→切断の後も再接続試行が行われる）
func TestAgent_SuccessResetsAttempts(t *testing.T) {
	var dials atomic.Int32
	var transport *fakeTransport
	var transportMu sync.Mutex
	rec := &eventRecorder{}

	a := New(Config{
		URL:         "ws://test",
		MaxAttempts: 3,
		RetryDelay:  5 * time.Millisecond,
		Dial: func(url string) (Transport, error) {
			n := dials.Add(1)
			if n <= 2 {
				return nil, errors.New("connection refused")
			}
			transportMu.Lock()
			transport = newFakeTransport()
			tr := transport
			transportMu.Unlock()
			return tr, nil
		},
	})
	a.AddListener(rec.listener())
	defer a.Close()

	a.Connect()
	waitFor(t, 2*time.Second, func() bool { return a.State() == StateOpen })

	// サーバ側から切断。カウンタがリセット済みなので再接続が走る。
	transportMu.Lock()
	transport.Close()
	transportMu.Unlock()

	waitFor(t, 2*time.Second, func() bool { return dials.Load() >= 4 })

	if rec.countGaveUp() != 0 {
		t.Error("GaveUp must not fire while the budget is replenished by a success")
	}
}

// Open中のSendがフレームを書き込むことを検証
func TestAgent_SendWhenOpen(t *testing.T) {
	transport := newFakeTransport()
	a := New(Config{
		URL:  "ws://test",
		Dial: func(url string) (Transport, error) { return transport, nil },
	})
	defer a.Close()

	a.Connect()
	waitFor(t, 2*time.Second, func() bool { return a.State() == StateOpen })

	err := a.Send(ws.UpdatePayload{UserID: "emp1", Date: "2025-01-15", StatusText: "hi"})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if transport.writeCount() != 1 {
		t.Errorf("writes = %d, want 1", transport.writeCount())
	}
}

// 切断中のSendが送信せずErrNotConnectedを返すことを検証
func TestAgent_SendWhenClosedDrops(t *testing.T) {
	a := New(Config{
		URL:  "ws://test",
		Dial: func(url string) (Transport, error) { return nil, errors.New("refused") },
	})

	err := a.Send(ws.UpdatePayload{UserID: "emp1", Date: "2025-01-15", StatusText: "hi"})
	if !errors.Is(err, ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}

// 受信フレームが直和型に解析されてリスナーへ届くことを検証
func TestAgent_DispatchesReceivedMessages(t *testing.T) {
	transport := newFakeTransport()
	rec := &eventRecorder{}

	a := New(Config{
		URL:  "ws://test",
		Dial: func(url string) (Transport, error) { return transport, nil },
	})
	a.AddListener(rec.listener())
	defer a.Close()

	a.Connect()
	waitFor(t, 2*time.Second, func() bool { return a.State() == StateOpen })

	frame, _ := ws.EncodeStatusUpdate(ws.UpdatePayload{UserID: "emp1", Date: "2025-01-15", StatusText: "x"})
	transport.in <- frame

	waitFor(t, 2*time.Second, func() bool {
		for _, ev := range rec.snapshot() {
			if r, ok := ev.(Received); ok {
				if u, ok := r.Message.(ws.StatusUpdate); ok && u.StatusText == "x" {
					return true
				}
			}
		}
		return false
	})
}

// 先頭リスナーのpanicが後続リスナーの呼び出しを妨げないことを検証
func TestAgent_ListenerPanicIsolated(t *testing.T) {
	transport := newFakeTransport()
	rec := &eventRecorder{}

	a := New(Config{
		URL:  "ws://test",
		Dial: func(url string) (Transport, error) { return transport, nil },
	})
	a.AddListener(func(Event) { panic("listener bug") })
	a.AddListener(rec.listener())
	defer a.Close()

	a.Connect()

	waitFor(t, 2*time.Second, func() bool {
		for _, ev := range rec.snapshot() {
			if _, ok := ev.(Connected); ok {
				return true
			}
		}
		return false
	})
}

// 解除関数で外したリスナーが以後呼ばれないことを検証
func TestAgent_RemoveListener(t *testing.T) {
	transport := newFakeTransport()
	rec := &eventRecorder{}

	a := New(Config{
		URL:  "ws://test",
		Dial: func(url string) (Transport, error) { return transport, nil },
	})
	remove := a.AddListener(rec.listener())
	remove()
	remove() // 二重解除も安全
	defer a.Close()

	a.Connect()
	waitFor(t, 2*time.Second, func() bool { return a.State() == StateOpen })
	time.Sleep(20 * time.Millisecond)

	if len(rec.snapshot()) != 0 {
		t.Errorf("removed listener received %d events", len(rec.snapshot()))
	}
}

// Open/Closed遷移で合成イベントが流れることを検証
func TestAgent_SyntheticConnectionEvents(t *testing.T) {
	transport := newFakeTransport()
	rec := &eventRecorder{}

	a := New(Config{
		URL:        "ws://test",
		RetryDelay: time.Hour, // 自動再接続をテスト対象外にする
		Dial:       func(url string) (Transport, error) { return transport, nil },
	})
	a.AddListener(rec.listener())

	a.Connect()
	waitFor(t, 2*time.Second, func() bool { return a.State() == StateOpen })

	transport.Close()
	waitFor(t, 2*time.Second, func() bool {
		var connected, disconnected bool
		for _, ev := range rec.snapshot() {
			switch ev.(type) {
			case Connected:
				connected = true
			case Disconnected:
				disconnected = true
			}
		}
		return connected && disconnected
	})
}

// ダイヤル進行中にCloseされ、その後ダイヤルが成功する競合でも
// エージェントがConnectingに取り残されず、手動Connectで復帰できることを検証
func TestAgent_CloseDuringDial_AllowsReconnect(t *testing.T) {
	var dials atomic.Int32
	dialStarted := make(chan struct{})
	release := make(chan struct{})
	first := newFakeTransport()
	second := newFakeTransport()

	a := New(Config{
		URL:         "ws://test",
		MaxAttempts: 5,
		RetryDelay:  time.Hour,
		Dial: func(url string) (Transport, error) {
			if dials.Add(1) == 1 {
				close(dialStarted)
				<-release
				return first, nil
			}
			return second, nil
		},
	})

	a.Connect()
	<-dialStarted
	a.Close()
	close(release)

	// 遅れて成功した接続は破棄され、状態はClosedに落ちる
	waitFor(t, 3*time.Second, func() bool {
		select {
		case <-first.closed:
			return a.State() == StateClosed
		default:
			return false
		}
	})

	// Connectingに取り残されていなければ手動Connectが再ダイヤルする
	a.Connect()
	waitFor(t, 3*time.Second, func() bool { return a.State() == StateOpen })
	if got := dials.Load(); got != 2 {
		t.Errorf("expected 2 dials, got %d", got)
	}
}
