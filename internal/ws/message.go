// Package ws はリアルタイム同期のWebSocketサーバ側を提供する。
// ワイヤメッセージの定義、ブロードキャストトピック、接続ライフサイクル管理を含む。
package ws

import (
	"encoding/json"
	"fmt"

	"github.com/AndreiTelteu/team-status/internal/model"
)

// ワイヤプロトコルのメッセージ種別。1フレームにつき必ず1種別。
const (
	TypeAllStatuses  = "all_statuses"
	TypeStatusUpdate = "status_update"
	TypeError        = "error"
)

// UpdatePayload はstatus_updateフレームのペイロード。
// DateはYYYY-MM-DD形式。StatusTextの空文字はトゥームストーン。
type UpdatePayload struct {
	UserID     string `json:"userId"`
	Date       string `json:"date"`
	StatusText string `json:"statusText"`
}

// envelope はワイヤ上のフレーム構造。種別ごとに使うフィールドが異なる。
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Message string          `json:"message,omitempty"`
}

// ServerMessage はサーバからクライアントへ届くメッセージの直和型。
// 受信側は型switchで全ケースを処理する。新しい種別の追加は
// このインターフェースの実装追加としてコンパイル時に可視になる。
type ServerMessage interface {
	messageType() string
}

// AllStatuses は接続直後に1回だけ送られる全件スナップショット。
type AllStatuses struct {
	Statuses model.StatusMap
}

// StatusUpdate は受理された1件の更新。送信者自身にも届く。
type StatusUpdate struct {
	UpdatePayload
}

// ErrorMessage はエラー原因を人間可読な形で伝える。
// 原因となった接続にのみ送られる。
type ErrorMessage struct {
	Message string
}

func (AllStatuses) messageType() string  { return TypeAllStatuses }
func (StatusUpdate) messageType() string { return TypeStatusUpdate }
func (ErrorMessage) messageType() string { return TypeError }

// EncodeAllStatuses は全件スナップショットフレームを生成する。
func EncodeAllStatuses(statuses model.StatusMap) ([]byte, error) {
	payload, err := json.Marshal(statuses)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot payload: %w", err)
	}
	return json.Marshal(envelope{Type: TypeAllStatuses, Payload: payload})
}

// EncodeStatusUpdate は単一更新フレームを生成する。
func EncodeStatusUpdate(p UpdatePayload) ([]byte, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode update payload: %w", err)
	}
	return json.Marshal(envelope{Type: TypeStatusUpdate, Payload: payload})
}

// EncodeError はエラーフレームを生成する。
func EncodeError(message string) ([]byte, error) {
	return json.Marshal(envelope{Type: TypeError, Message: message})
}

// DecodeClientMessage はクライアントからの受信フレームを解析する。
// 受け付ける種別はstatus_updateのみ。userId/date/statusTextは必須の
// 文字列フィールドで、statusTextのみ空文字を許容する。
// 日付形式の検証は呼び出し側で行う。
func DecodeClientMessage(data []byte) (*UpdatePayload, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}
	if env.Type != TypeStatusUpdate {
		return nil, fmt.Errorf("unsupported message type: %q", env.Type)
	}
	if len(env.Payload) == 0 {
		return nil, fmt.Errorf("missing payload")
	}

	// 欠落と空文字を区別するためポインタで受ける
	var raw struct {
		UserID     *string `json:"userId"`
		Date       *string `json:"date"`
		StatusText *string `json:"statusText"`
	}
	if err := json.Unmarshal(env.Payload, &raw); err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}
	if raw.UserID == nil || *raw.UserID == "" {
		return nil, fmt.Errorf("missing required field: userId")
	}
	if raw.Date == nil || *raw.Date == "" {
		return nil, fmt.Errorf("missing required field: date")
	}
	if raw.StatusText == nil {
		return nil, fmt.Errorf("missing required field: statusText")
	}

	return &UpdatePayload{
		UserID:     *raw.UserID,
		Date:       *raw.Date,
		StatusText: *raw.StatusText,
	}, nil
}

// DecodeServerMessage はサーバからの受信フレームを直和型に解析する。
// クライアント同期エージェントが使用する。
func DecodeServerMessage(data []byte) (ServerMessage, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}

	switch env.Type {
	case TypeAllStatuses:
		var statuses model.StatusMap
		if err := json.Unmarshal(env.Payload, &statuses); err != nil {
			return nil, fmt.Errorf("invalid all_statuses payload: %w", err)
		}
		return AllStatuses{Statuses: statuses}, nil
	case TypeStatusUpdate:
		var p UpdatePayload
		if err := json.Unmarshal(env.Payload, &p); err != nil {
			return nil, fmt.Errorf("invalid status_update payload: %w", err)
		}
		return StatusUpdate{UpdatePayload: p}, nil
	case TypeError:
		return ErrorMessage{Message: env.Message}, nil
	default:
		return nil, fmt.Errorf("unknown message type: %q", env.Type)
	}
}
