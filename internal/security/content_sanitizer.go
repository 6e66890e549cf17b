// Package security はアプリケーションのセキュリティ機能を提供する。
//
// StatusSanitizer はステータステキストをサニタイズし、ブロードキャスト先の
// 全クライアントのブラウザで描画される文字列からマークアップを除去する。
// bluemondayライブラリの許可リストベースのポリシーを使用する。
package security

import (
	"github.com/microcosm-cc/bluemonday"
)

// StatusSanitizer はステータステキストのサニタイズを行う。
// ステータスはプレーンテキストとして扱うため、タグは一切許可しない。
// script/style要素は中身ごと除去する。
// 同一入力に対して常に同一出力を返す（冪等）。スレッドセーフ。
type StatusSanitizer struct {
	policy *bluemonday.Policy
}

// NewStatusSanitizer はStatusSanitizerを生成する。
func NewStatusSanitizer() *StatusSanitizer {
	p := bluemonday.NewPolicy()
	p.SkipElementsContent("script", "style")
	return &StatusSanitizer{policy: p}
}

// Sanitize はテキストから全てのマークアップを除去して返す。
func (s *StatusSanitizer) Sanitize(raw string) string {
	return s.policy.Sanitize(raw)
}
