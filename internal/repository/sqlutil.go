package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// nullStringPtr はsql.NullStringを*stringに変換する。
func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// nullTimePtr はsql.NullTimeを*time.Timeに変換する。
func nullTimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

// containsPattern は部分一致用のILIKEパターンを生成する。
// ワイルドカード文字はエスケープし、入力をリテラルとして扱う。
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// whereBuilder は動的なWHERE句とプレースホルダ引数を組み立てる。
type whereBuilder struct {
	conds []string
	args  []any
}

// add は条件を追加する。condの%[1]dは今回の引数のプレースホルダ番号に置換される。
func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

// clause はWHERE句を返す。条件がない場合は空文字を返す。
func (w *whereBuilder) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// paginate はLIMIT/OFFSET句を追加し、クエリ文字列と引数を返す。
func (w *whereBuilder) paginate(limit, skip int) (string, []any) {
	args := append(append([]any{}, w.args...), limit, skip)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(w.args)+1, len(w.args)+2), args
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}
