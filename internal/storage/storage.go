package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrInvalidKey はストレージ外を指す key（絶対パスや ".." を含むもの）
var ErrInvalidKey = errors.New("storage: invalid key")

// Storage はコース画像ファイルの保存・削除を抽象化するインターフェース。
type Storage interface {
	// Save はファイルを保存し、公開 URL を返す。
	// key はストレージ内の一意パス (例: "courses/<hex>.jpg")。
	Save(ctx context.Context, key string, data io.Reader, contentType string) (url string, err error)

	// Delete は key に対応するファイルを削除する。存在しない場合は nil。
	Delete(ctx context.Context, key string) error
}

// KeyFromURL は Save が返した URL から key を取り出す。prefix 配下でなければ false
func KeyFromURL(url, urlPrefix string) (string, bool) {
	p := strings.TrimSuffix(urlPrefix, "/") + "/"
	if !strings.HasPrefix(url, p) {
		return "", false
	}
	return strings.TrimPrefix(url, p), true
}
