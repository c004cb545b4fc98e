// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizerService はカタログの自由記述テキスト（説明文、推薦文など）から
// マークアップを取り除き、プレーンテキストとして保存できる形にする。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizerService はプレーンテキスト化のインターフェースを定義する。
// カタログエンティティの作成・更新時に使用される。
type TextSanitizerService interface {
	// Sanitize はすべてのタグを除去し、前後の空白を取り除いたテキストを返す。
	// script, styleの中身は破棄される。同一入力に対して常に同一出力を返す。
	Sanitize(raw string) string

	// SanitizeList はスライスの各要素をSanitizeし、空になった要素を除外する。
	SanitizeList(raw []string) []string
}

// textSanitizer はTextSanitizerServiceの実装。
// bluemondayのポリシーはスレッドセーフに共有できる。
type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerServiceの新しいインスタンスを生成する。
// 要素を一切許可しないbluemondayのStrictPolicyを使用する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// Sanitize はタグを除去したプレーンテキストを返す。
// bluemondayがエスケープした文字実体は元の文字に戻す（出力時はJSONエンコードされる）。
func (s *textSanitizer) Sanitize(raw string) string {
	if raw == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(raw)))
}

// SanitizeList は各要素をSanitizeし、空要素を除外した新しいスライスを返す。
func (s *textSanitizer) SanitizeList(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if clean := s.Sanitize(v); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}

// compile-time interface check
var _ TextSanitizerService = (*textSanitizer)(nil)
