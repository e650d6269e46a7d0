// Package model はドメインモデルを定義する。
package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateLayout は日付の文字列表現（YYYY-MM-DD）。
const DateLayout = "2006-01-02"

// Date は時刻成分を持たない日付を表す。
// JSONでは "YYYY-MM-DD"、DBではDATE型にマッピングされる。
type Date struct {
	t time.Time
}

// NewDate は年月日からDateを生成する。
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// Today は現在のサーバーローカル日付を返す。
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), now.Month(), now.Day())
}

// ParseDate は "YYYY-MM-DD" 形式の文字列をDateに変換する。
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{t: t}, nil
}

// IsZero は未設定の日付かどうかを返す。
func (d Date) IsZero() bool {
	return d.t.IsZero()
}

// Equal は同じ日付かどうかを返す。
func (d Date) Equal(other Date) bool {
	return d.t.Equal(other.t)
}

// String は "YYYY-MM-DD" 形式の文字列を返す。
func (d Date) String() string {
	return d.t.Format(DateLayout)
}

// MarshalJSON はJSON文字列 "YYYY-MM-DD" として出力する。
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.t.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON は "YYYY-MM-DD" 形式のJSON文字列を受け付ける。
// null と空文字列はゼロ値（未設定）として扱う。
func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	t, err := time.Parse(`"`+DateLayout+`"`, s)
	if err != nil {
		return fmt.Errorf("parse date %s: %w", s, err)
	}
	d.t = t
	return nil
}

// Value はdriver.Valuerを実装し、DATE型カラムに保存できるようにする。
func (d Date) Value() (driver.Value, error) {
	return d.t, nil
}

// Scan はsql.Scannerを実装する。DATE型カラムはドライバから
// time.Timeとして渡されるため、日付成分のみを取り出す。
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		d.t = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case nil:
		*d = Date{}
		return nil
	default:
		return fmt.Errorf("scan date: unsupported type %T", src)
	}
}
