package ws

import (
	"log/slog"
	"sync"
)

// Subscriber はブロードキャスト配信先のハンドル。
type Subscriber interface {
	// Deliver はフレームを配信キューへ積む。
	// 切断済みまたは滞留した購読者に対してはエラーを返す。
	Deliver(frame []byte) error
}

// Topic は全接続が購読する単一のブロードキャストトピック。
// 購読者の明示的なレジストリと、購読者ごとのエラー隔離を持つファンアウト。
// 後から参加した購読者への再送やキューイングは行わない。
type Topic struct {
	mu     sync.Mutex
	subs   map[Subscriber]struct{}
	logger *slog.Logger
}

// NewTopic は空のTopicを生成する。
func NewTopic(logger *slog.Logger) *Topic {
	if logger == nil {
		logger = slog.Default()
	}
	return &Topic{
		subs:   map[Subscriber]struct{}{},
		logger: logger,
	}
}

// Subscribe は購読者を登録する。登録済みの場合は何もしない。
func (t *Topic) Subscribe(s Subscriber) {
	t.mu.Lock()
	t.subs[s] = struct{}{}
	t.mu.Unlock()
}

// Unsubscribe は購読者を解除する。未登録・解除済みでも安全（冪等）。
// 配信失敗ハンドラの中から呼んでもデッドロックしない。
func (t *Topic) Unsubscribe(s Subscriber) {
	t.mu.Lock()
	delete(t.subs, s)
	t.mu.Unlock()
}

// Len は現在の購読者数を返す。
func (t *Topic) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.subs)
}

// Publish はフレームを全購読者へ独立に配信する。
// レジストリのスナップショットを取ってからロック外で配信するため、
// 配信中のSubscribe/Unsubscribeや、Deliver失敗側の切断処理
// （その中のUnsubscribe呼び出しを含む）をブロックしない。
// 1購読者への配信失敗は他の購読者への配信に影響しない。
func (t *Topic) Publish(frame []byte) {
	t.mu.Lock()
	snapshot := make([]Subscriber, 0, len(t.subs))
	for s := range t.subs {
		snapshot = append(snapshot, s)
	}
	t.mu.Unlock()

	for _, s := range snapshot {
		if err := s.Deliver(frame); err != nil {
			t.logger.Warn("broadcast_delivery_failed",
				slog.String("error", err.Error()),
			)
		}
	}
}
