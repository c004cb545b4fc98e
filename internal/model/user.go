// Package model はドメインモデルを定義する。
package model

import "time"

// User はマーケットプレイスの登録ユーザーを表す。
// emailが自然キーで、IDは一度割り当てられたら変更しない。
type User struct {
	ID             string
	Email          string
	Name           string
	Picture        *string
	SessionToken   *string
	SessionExpires *time.Time
	IsAdmin        bool // DBで直接設定する。APIからは変更しない
	CreatedAt      time.Time
	LastLogin      *time.Time
}

// HasActiveSession はnow時点で有効なセッションを持つかを返す。
// 有効期限がnowより厳密に後の場合のみ有効とみなす。
func (u *User) HasActiveSession(now time.Time) bool {
	if u.SessionToken == nil || *u.SessionToken == "" || u.SessionExpires == nil {
		return false
	}
	return u.SessionExpires.After(now)
}

// SessionData はIdPから受け取った本人確認済みの属性を表す。
// 永続化はせず、1回の交換でUserへ反映して捨てる。
// 管理者フラグは含まない。
type SessionData struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	Name         string  `json:"name"`
	Picture      *string `json:"picture"`
	SessionToken string  `json:"session_token"`
}

// SessionUpdate は既存ユーザーへの再ログイン時に上書きするフィールド。
// IDとIsAdminは含めない。
type SessionUpdate struct {
	SessionToken   string
	SessionExpires time.Time
	Name           string
	Picture        *string
	LastLogin      time.Time
}
