package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"

	"gorm.io/gorm"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 250
)

var ErrInvalidPageToken = errors.New("invalid_page_token")

type Pagination struct {
	PageToken string
	PageSize  int // 1..250, 0 means DefaultPageSize
}

// Size returns the effective page size.
func (p Pagination) Size() int {
	switch {
	case p.PageSize <= 0:
		return DefaultPageSize
	case p.PageSize > MaxPageSize:
		return MaxPageSize
	}
	return p.PageSize
}

// Cursor points at the last row of the previous page. Rows are walked in
// ascending primary key order.
type Cursor struct {
	ID int64 `json:"id"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token"`
	HasMore       bool   `json:"has_more"`
}

func EncodeCursor(data Cursor) (string, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

func DecodeCursor(data string) (*Cursor, error) {
	b, err := base64.RawURLEncoding.DecodeString(data)
	if err != nil {
		return nil, ErrInvalidPageToken
	}

	var cursor Cursor
	if err := json.Unmarshal(b, &cursor); err != nil {
		return nil, ErrInvalidPageToken
	}

	return &cursor, nil
}

// Apply restricts stmt to the page after the token, fetching one extra row so
// BuildCursorPageInfo can tell whether more rows follow.
func Apply(stmt *gorm.DB, page Pagination) (*gorm.DB, error) {
	if page.PageToken != "" {
		cursor, err := DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		stmt = stmt.Where("id > ?", cursor.ID)
	}
	return stmt.Order("id asc").Limit(page.Size() + 1), nil
}

// BuildCursorPageInfo trims the look-ahead row and returns the page info.
func BuildCursorPageInfo[T any](data []*T, limit int, extractID func(*T) int64) ([]*T, PageInfo) {
	if len(data) <= limit {
		return data, PageInfo{}
	}

	data = data[:limit]
	token, err := EncodeCursor(Cursor{ID: extractID(data[len(data)-1])})
	if err != nil {
		return data, PageInfo{}
	}
	return data, PageInfo{HasMore: true, NextPageToken: token}
}
