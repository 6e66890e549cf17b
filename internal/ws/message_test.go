package ws

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/AndreiTelteu/team-status/internal/model"
)

// エンコードされたフレームがワイヤ契約どおりの形であることを検証
func TestEncodeStatusUpdate_WireShape(t *testing.T) {
	frame, err := EncodeStatusUpdate(UpdatePayload{
		UserID:     "emp1",
		Date:       "2025-01-15",
		StatusText: "Working on docs",
	})
	if err != nil {
		t.Fatalf("EncodeStatusUpdate: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(frame, &decoded); err != nil {
		t.Fatalf("frame is not JSON: %v", err)
	}
	if decoded["type"] != "status_update" {
		t.Errorf("type = %v", decoded["type"])
	}
	payload := decoded["payload"].(map[string]any)
	if payload["userId"] != "emp1" || payload["date"] != "2025-01-15" || payload["statusText"] != "Working on docs" {
		t.Errorf("payload = %v", payload)
	}
}

func TestEncodeAllStatuses_WireShape(t *testing.T) {
	frame, err := EncodeAllStatuses(model.StatusMap{
		"emp1": {"2025-01-15": "a"},
	})
	if err != nil {
		t.Fatalf("EncodeAllStatuses: %v", err)
	}

	var decoded struct {
		Type    string                       `json:"type"`
		Payload map[string]map[string]string `json:"payload"`
	}
	if err := json.Unmarshal(frame, &decoded); err != nil {
		t.Fatalf("frame is not JSON: %v", err)
	}
	if decoded.Type != "all_statuses" {
		t.Errorf("type = %q", decoded.Type)
	}
	if decoded.Payload["emp1"]["2025-01-15"] != "a" {
		t.Errorf("payload = %v", decoded.Payload)
	}
}

func TestEncodeError_WireShape(t *testing.T) {
	frame, err := EncodeError("something broke")
	if err != nil {
		t.Fatalf("EncodeError: %v", err)
	}

	var decoded struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(frame, &decoded); err != nil {
		t.Fatalf("frame is not JSON: %v", err)
	}
	if decoded.Type != "error" || decoded.Message != "something broke" {
		t.Errorf("decoded = %+v", decoded)
	}
}

// 正常なクライアントメッセージが解析できることを検証
func TestDecodeClientMessage_Valid(t *testing.T) {
	data := []byte(`{"type":"status_update","payload":{"userId":"emp1","date":"2025-01-15","statusText":"Working on docs"}}`)

	p, err := DecodeClientMessage(data)
	if err != nil {
		t.Fatalf("DecodeClientMessage: %v", err)
	}
	if p.UserID != "emp1" || p.Date != "2025-01-15" || p.StatusText != "Working on docs" {
		t.Errorf("payload = %+v", p)
	}
}

// 空のstatusText（トゥームストーン）は受理されることを検証
func TestDecodeClientMessage_EmptyStatusText(t *testing.T) {
	data := []byte(`{"type":"status_update","payload":{"userId":"emp1","date":"2025-01-15","statusText":""}}`)

	p, err := DecodeClientMessage(data)
	if err != nil {
		t.Fatalf("empty statusText must be accepted: %v", err)
	}
	if p.StatusText != "" {
		t.Errorf("StatusText = %q", p.StatusText)
	}
}

// 不正なフレームが拒否されることを検証
func TestDecodeClientMessage_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"not json", `{{{`, "invalid message"},
		{"unknown type", `{"type":"ping"}`, "unsupported message type"},
		{"no payload", `{"type":"status_update"}`, "missing payload"},
		{"missing userId", `{"type":"status_update","payload":{"date":"2025-01-15","statusText":"x"}}`, "userId"},
		{"empty userId", `{"type":"status_update","payload":{"userId":"","date":"2025-01-15","statusText":"x"}}`, "userId"},
		{"missing date", `{"type":"status_update","payload":{"userId":"emp1","statusText":"x"}}`, "date"},
		{"missing statusText", `{"type":"status_update","payload":{"userId":"emp1","date":"2025-01-15"}}`, "statusText"},
		{"mistyped statusText", `{"type":"status_update","payload":{"userId":"emp1","date":"2025-01-15","statusText":42}}`, "invalid payload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeClientMessage([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

// サーバメッセージの直和型への解析と型switchでの分岐を検証
func TestDecodeServerMessage_Dispatch(t *testing.T) {
	frames := [][]byte{}

	f1, _ := EncodeAllStatuses(model.StatusMap{"emp1": {"2025-01-15": "a"}})
	f2, _ := EncodeStatusUpdate(UpdatePayload{UserID: "emp1", Date: "2025-01-15", StatusText: "b"})
	f3, _ := EncodeError("bad day")
	frames = append(frames, f1, f2, f3)

	var gotSnapshot, gotUpdate, gotError bool
	for _, frame := range frames {
		msg, err := DecodeServerMessage(frame)
		if err != nil {
			t.Fatalf("DecodeServerMessage: %v", err)
		}
		switch m := msg.(type) {
		case AllStatuses:
			gotSnapshot = true
			if m.Statuses["emp1"]["2025-01-15"] != "a" {
				t.Errorf("snapshot = %v", m.Statuses)
			}
		case StatusUpdate:
			gotUpdate = true
			if m.StatusText != "b" {
				t.Errorf("update = %+v", m)
			}
		case ErrorMessage:
			gotError = true
			if m.Message != "bad day" {
				t.Errorf("error = %+v", m)
			}
		default:
			t.Errorf("unexpected message type %T", msg)
		}
	}

	if !gotSnapshot || !gotUpdate || !gotError {
		t.Errorf("missing variants: snapshot=%v update=%v error=%v", gotSnapshot, gotUpdate, gotError)
	}
}

func TestDecodeServerMessage_UnknownType(t *testing.T) {
	_, err := DecodeServerMessage([]byte(`{"type":"mystery"}`))
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
}
