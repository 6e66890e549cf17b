package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, resource, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEmployeeNotFound = "EMPLOYEE_NOT_FOUND"
	ErrCodeClientNotFound   = "CLIENT_NOT_FOUND"
	ErrCodeLeaveNotFound    = "LEAVE_NOT_FOUND"
	ErrCodeOfferNotFound    = "OFFER_NOT_FOUND"
	ErrCodeInvalidDay       = "INVALID_DAY"
	ErrCodeInvalidBody      = "INVALID_BODY"
	ErrCodeMissingField     = "MISSING_FIELD"
	ErrCodeInvalidState     = "INVALID_STATE"
)

// NewEmployeeNotFoundError は従業員未検出エラーを生成する。
func NewEmployeeNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeEmployeeNotFound,
		Message:  fmt.Sprintf("指定された従業員が見つかりません: %s", id),
		Category: "resource",
		Action:   "従業員IDを確認してください。",
	}
}

// NewClientNotFoundError は取引先未検出エラーを生成する。
func NewClientNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeClientNotFound,
		Message:  fmt.Sprintf("指定された取引先が見つかりません: %s", id),
		Category: "resource",
		Action:   "取引先IDを確認してください。",
	}
}

// NewLeaveNotFoundError は休暇期間未検出エラーを生成する。
func NewLeaveNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeLeaveNotFound,
		Message:  fmt.Sprintf("指定された休暇期間が見つかりません: %s", id),
		Category: "resource",
		Action:   "休暇期間IDを確認してください。",
	}
}

// NewOfferNotFoundError はオファー未検出エラーを生成する。
func NewOfferNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeOfferNotFound,
		Message:  fmt.Sprintf("指定されたオファーが見つかりません: %s", id),
		Category: "resource",
		Action:   "オファーIDを確認してください。",
	}
}

// NewInvalidDayError は日付形式エラーを生成する。
func NewInvalidDayError(day string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDay,
		Message:  fmt.Sprintf("無効な日付です: %q", day),
		Category: "validation",
		Action:   "日付はYYYY-MM-DD形式で指定してください。",
	}
}

// NewInvalidBodyError はリクエストボディ解析エラーを生成する。
func NewInvalidBodyError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidBody,
		Message:  "リクエストボディを解析できませんでした。",
		Category: "validation",
		Action:   "JSON形式のボディを送信してください。",
	}
}

// NewMissingFieldError は必須フィールド欠落エラーを生成する。
func NewMissingFieldError(field string) *APIError {
	return &APIError{
		Code:     ErrCodeMissingField,
		Message:  fmt.Sprintf("必須フィールドがありません: %s", field),
		Category: "validation",
		Action:   fmt.Sprintf("%s を指定してください。", field),
	}
}

// NewInvalidStateError は無効なオファー状態エラーを生成する。
func NewInvalidStateError(state string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidState,
		Message:  fmt.Sprintf("無効なオファー状態です: %s", state),
		Category: "validation",
		Action:   "状態には draft、sent、accepted、rejected のいずれかを指定してください。",
	}
}
