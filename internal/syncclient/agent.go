// Package syncclient はサーバへの単一の論理接続を維持する同期エージェントを提供する。
// 固定間隔・回数上限つきの自動再接続、受信メッセージのリスナーレジストリ、
// 切断中は黙って落とす送信経路を持つ。
package syncclient

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AndreiTelteu/team-status/internal/ws"
)

// State はエージェントの接続状態。
type State int

const (
	// StateIdle は初期状態。まだ一度もConnectされていない。
	StateIdle State = iota
	// StateConnecting はハンドシェイク実行中。
	StateConnecting
	// StateOpen は接続確立済み。
	StateOpen
	// StateClosed は切断済み。再接続予算が残っていれば自動で復帰する。
	StateClosed
)

// ErrNotConnected は切断中のSendを表す。アウトバウンドキューは持たないため、
// 呼び出し側は次の入力タイミングで再送することを前提にする。
var ErrNotConnected = errors.New("not connected")

// Event はリスナーに配られるイベントの直和型。
// サーバからのメッセージに加えて、接続状態の遷移も合成イベントとして流れる。
type Event interface {
	event()
}

// Connected は接続がOpenに遷移したことを表す合成イベント。
type Connected struct{}

// Disconnected は接続がClosedに遷移したことを表す合成イベント。
type Disconnected struct{}

// GaveUp は再接続予算を使い切った終端通知。明示的なConnect呼び出しまで
// 自動再接続は行われない。
type GaveUp struct {
	Attempts int
}

// Received はサーバからの受信メッセージ。
type Received struct {
	Message ws.ServerMessage
}

func (Connected) event()    {}
func (Disconnected) event() {}
func (GaveUp) event()       {}
func (Received) event()     {}

// Transport は1本の接続の読み書きインターフェース。
// gorillaの*websocket.Connがそのまま満たす。テストでは偽物に差し替える。
type Transport interface {
	ReadMessage() (messageType int, data []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// DialFunc はハンドシェイクの実行関数。
type DialFunc func(url string) (Transport, error)

// Dial はgorillaのデフォルトダイヤラでWebSocket接続を開く。
func Dial(url string) (Transport, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Config はAgentの設定。
type Config struct {
	URL         string
	MaxAttempts int           // 連続失敗の上限。0以下はデフォルト5
	RetryDelay  time.Duration // 固定の再接続遅延。0以下はデフォルト2秒
	Dial        DialFunc      // nilの場合はDial
	Logger      *slog.Logger
}

// Agent はクライアントプロセスごとに1つ共有される同期エージェント。
// UIコンポーネント単位ではなくプロセス単位で1本の接続を保つ。
type Agent struct {
	url         string
	maxAttempts int
	retryDelay  time.Duration
	dial        DialFunc
	logger      *slog.Logger

	mu        sync.Mutex
	state     State
	conn      Transport
	attempts  int
	stopped   bool
	listeners map[int]func(Event)
	nextID    int
}

// New はAgentを生成する。接続はConnect呼び出しまで開始しない。
func New(cfg Config) *Agent {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}
	if cfg.Dial == nil {
		cfg.Dial = Dial
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Agent{
		url:         cfg.URL,
		maxAttempts: cfg.MaxAttempts,
		retryDelay:  cfg.RetryDelay,
		dial:        cfg.Dial,
		logger:      cfg.Logger,
		state:       StateIdle,
		listeners:   map[int]func(Event){},
	}
}

// State は現在の接続状態を返す。
func (a *Agent) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Connect は接続を開始する。Connecting/Open中の呼び出しは何もしない（冪等）。
// 呼び出しはブロックしない。明示的なConnectは失敗カウンタをリセットするため、
// 終端状態（GaveUp後）からの手動復帰にも使う。
func (a *Agent) Connect() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateConnecting || a.state == StateOpen {
		return
	}
	a.attempts = 0
	a.stopped = false
	a.startLocked()
}

// startLocked はハンドシェイクのゴルーチンを起動する。mu保持中に呼ぶこと。
func (a *Agent) startLocked() {
	a.state = StateConnecting
	a.attempts++
	go a.run()
}

// run は1回のハンドシェイクとその接続の読み取りループ。
// キャンセルトークンは持たない。中断はハーフオープンなオブジェクトを
// 捨てて、トランスポート自身のエラー経路にクローズを任せる。
func (a *Agent) run() {
	conn, err := a.dial(a.url)
	if err != nil {
		a.logger.Warn("sync_connect_failed", slog.String("error", err.Error()))
		a.handleClosed()
		return
	}

	a.mu.Lock()
	if a.stopped {
		// ダイヤル中にCloseされた場合。Connectingのまま残すと以後の
		// 手動Connectが冪等ガードで弾かれ続けるため、Closedに落とす。
		a.state = StateClosed
		a.mu.Unlock()
		_ = conn.Close()
		return
	}
	a.conn = conn
	a.state = StateOpen
	a.attempts = 0
	a.mu.Unlock()

	a.notify(Connected{})

	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			break
		}
		msg, derr := ws.DecodeServerMessage(data)
		if derr != nil {
			a.logger.Warn("sync_message_undecodable", slog.String("error", derr.Error()))
			continue
		}
		a.notify(Received{Message: msg})
	}

	a.mu.Lock()
	a.conn = nil
	a.mu.Unlock()
	a.handleClosed()
}

// handleClosed はClosed遷移の共通処理。
// 予算が残っていれば固定遅延後の再接続を予約し、尽きていれば
// 終端通知を1回だけ流す。
func (a *Agent) handleClosed() {
	a.mu.Lock()
	a.state = StateClosed
	stopped := a.stopped
	attempts := a.attempts
	exhausted := attempts >= a.maxAttempts
	a.mu.Unlock()

	a.notify(Disconnected{})

	if stopped {
		return
	}
	if exhausted {
		a.logger.Error("sync_gave_up", slog.Int("attempts", attempts))
		a.notify(GaveUp{Attempts: attempts})
		return
	}

	time.AfterFunc(a.retryDelay, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		// 間にConnect/CloseやOpen遷移が起きていたら何もしない
		if a.state != StateClosed || a.stopped {
			return
		}
		a.startLocked()
	})
}

// AddListener はリスナーを登録し、解除関数を返す。
// リスナーは全受信イベントについて呼ばれる。1つのリスナーのpanicは
// 回収され、他のリスナーの呼び出しを妨げない。
func (a *Agent) AddListener(fn func(Event)) (remove func()) {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// notify は登録済みリスナー全員にイベントを配る。
func (a *Agent) notify(ev Event) {
	a.mu.Lock()
	fns := make([]func(Event), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		a.invoke(fn, ev)
	}
}

// invoke は1リスナーの呼び出しをpanicから隔離する。
func (a *Agent) invoke(fn func(Event), ev Event) {
	defer func() {
		if rec := recover(); rec != nil {
			a.logger.Error("sync_listener_panic", slog.Any("panic", rec))
		}
	}()
	fn(ev)
}

// Send は更新をサーバへ送る。Open中は即時送信、それ以外は送らずに
// 警告を出してErrNotConnectedを返す。アウトバウンドキューは持たない。
func (a *Agent) Send(payload ws.UpdatePayload) error {
	a.mu.Lock()
	conn := a.conn
	open := a.state == StateOpen
	a.mu.Unlock()

	if !open || conn == nil {
		a.logger.Warn("sync_send_dropped",
			slog.String("user_id", payload.UserID),
			slog.String("date", payload.Date),
		)
		return ErrNotConnected
	}

	frame, err := ws.EncodeStatusUpdate(payload)
	if err != nil {
		return err
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		// 書き込み失敗の後始末は読み取りループのエラー経路に任せる
		return err
	}
	return nil
}

// Close は接続を閉じ、自動再接続を止める。
// 以後の復帰は明示的なConnect呼び出しで行う。
func (a *Agent) Close() {
	a.mu.Lock()
	a.stopped = true
	conn := a.conn
	a.mu.Unlock()

	if conn != nil {
		_ = conn.Close()
	}
}
