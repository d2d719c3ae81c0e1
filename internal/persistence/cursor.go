// Package persistence contains helpers shared by repository implementations.
package persistence

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"example.com/lifetrack/internal/accounts"
)

// EncodeCursor serialises the cursor to a string token.
func EncodeCursor(c *accounts.Cursor) string {
	if c == nil {
		return ""
	}
	raw := fmt.Sprintf("%s|%d", c.CreatedAt.UTC().Format(time.RFC3339Nano), c.ID)
	return base64.StdEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses the encoded cursor token.
func DecodeCursor(token string) (*accounts.Cursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	decoded, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid cursor format")
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &accounts.Cursor{CreatedAt: ts, ID: id}, nil
}

// After reports whether a row sorts after the cursor in (created_at, id) order.
func After(c *accounts.Cursor, createdAt time.Time, id int64) bool {
	if c == nil {
		return true
	}
	if createdAt.Equal(c.CreatedAt) {
		return id > c.ID
	}
	return createdAt.After(c.CreatedAt)
}
