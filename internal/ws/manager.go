package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AndreiTelteu/team-status/internal/status"
)

// ManagerMetrics は接続ライフサイクルが記録するメトリクスのインターフェース。
type ManagerMetrics interface {
	RecordConnectionOpened()
	RecordConnectionClosed()
	RecordBroadcast()
}

// ManagerConfig はManagerのチューニングパラメータ。
type ManagerConfig struct {
	SendBuffer  int           // 接続ごとの送信バッファ長
	WriteWait   time.Duration // 1フレームあたりの書き込みデッドライン
	MaxFrameLen int64         // 受信フレームの最大長
}

// Manager はWebSocket接続のライフサイクルを管理する。
// アップグレード受付、トピックへの登録/解除、接続直後の
// 全件スナップショット送信、受信メッセージの検証と適用を行う。
type Manager struct {
	upgrader websocket.Upgrader
	topic    *Topic
	pipeline *status.Pipeline
	metrics  ManagerMetrics
	logger   *slog.Logger
	cfg      ManagerConfig
}

// NewManager はManagerを生成する。metricsはnilを許容する（テスト用）。
// CORSと同様にオリジン検証は行わない（認証なしの内部ツール前提）。
func NewManager(pipeline *status.Pipeline, topic *Topic, metrics ManagerMetrics, logger *slog.Logger, cfg ManagerConfig) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxFrameLen <= 0 {
		cfg.MaxFrameLen = 65536
	}
	return &Manager{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		topic:    topic,
		pipeline: pipeline,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// ServeHTTP はWebSocketアップグレードを受け付ける。
// アップグレード失敗時はUpgraderがHTTPエラー応答を返す（黙殺しない）。
// 成功時はスナップショットを先にキューし、その後トピックへ登録する。
// この順序により、どの接続でもスナップショットフレームが
// 後続のstatus_updateフレームより必ず先にソケットへ流れる。
func (m *Manager) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("ws_upgrade_failed",
			slog.String("remote", r.RemoteAddr),
			slog.String("error", err.Error()),
		)
		return
	}

	conn := newConn(wsConn, m.cfg.SendBuffer, m.cfg.WriteWait, func(c *Conn) {
		m.topic.Unsubscribe(c)
		if m.metrics != nil {
			m.metrics.RecordConnectionClosed()
		}
		m.logger.Info("ws_connection_closed", slog.String("remote", r.RemoteAddr))
	})
	go conn.writePump()

	// onCloseは必ずRecordConnectionClosedを呼ぶため、カウントの増加は
	// スナップショット送信が失敗しうる経路より前に済ませる。
	if m.metrics != nil {
		m.metrics.RecordConnectionOpened()
	}
	m.logger.Info("ws_connection_opened", slog.String("remote", r.RemoteAddr))

	snapshot, err := EncodeAllStatuses(m.pipeline.Cache().Snapshot())
	if err != nil {
		m.logger.Error("ws_snapshot_encode_failed", slog.String("error", err.Error()))
		conn.Close()
		return
	}
	if err := conn.Deliver(snapshot); err != nil {
		return
	}

	m.topic.Subscribe(conn)

	m.readLoop(conn)
}

// readLoop は接続からの受信フレームを処理する。
// 解析エラーと検証エラーは送信者にのみエラーフレームで返す。
// 受理された更新はトピックへ発行され、送信者自身にも確認として届く。
// 読み取りエラー（プロトコルclose含む）でループを抜け、接続を閉じる。
func (m *Manager) readLoop(c *Conn) {
	defer c.Close()
	c.ws.SetReadLimit(m.cfg.MaxFrameLen)

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}

		payload, derr := DecodeClientMessage(data)
		if derr != nil {
			m.sendError(c, derr.Error())
			continue
		}
		if !status.ValidDay(payload.Date) {
			m.sendError(c, "invalid date format, expected YYYY-MM-DD: "+payload.Date)
			continue
		}

		normalized := m.pipeline.Normalize(payload.StatusText)
		if !m.pipeline.Apply(context.Background(), payload.UserID, payload.Date, payload.StatusText) {
			m.sendError(c, "update rejected")
			continue
		}

		frame, eerr := EncodeStatusUpdate(UpdatePayload{
			UserID:     payload.UserID,
			Date:       payload.Date,
			StatusText: normalized,
		})
		if eerr != nil {
			m.logger.Error("ws_update_encode_failed", slog.String("error", eerr.Error()))
			continue
		}
		m.topic.Publish(frame)
		if m.metrics != nil {
			m.metrics.RecordBroadcast()
		}
	}
}

// sendError はエラーフレームを原因となった接続にのみ送る。
func (m *Manager) sendError(c *Conn, message string) {
	frame, err := EncodeError(message)
	if err != nil {
		m.logger.Error("ws_error_encode_failed", slog.String("error", err.Error()))
		return
	}
	_ = c.Deliver(frame)
}
