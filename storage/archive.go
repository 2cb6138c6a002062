package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"
)

// StoredObject описывает объект, записанный в бакет архива.
type StoredObject struct {
	Key      string `json:"key"`
	Location string `json:"location,omitempty"`
	ETag     string `json:"etag,omitempty"`
}

// ArchiveStore: хранилище снимков завершённых турниров.
type ArchiveStore interface {
	Put(ctx context.Context, key string, contentType string, body io.Reader) (*StoredObject, error)
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}

// ArchiveKey строит ключ объекта снимка турнира.
func ArchiveKey(ownerID, tournamentID int, at time.Time) string {
	return fmt.Sprintf("archives/%d/tournament-%d-%s.json", ownerID, tournamentID, at.UTC().Format("20060102T150405Z"))
}

// joinPublicURL разрешает key относительно base. Пустой или неразборчивый base даёт "".
func joinPublicURL(base, key string) string {
	if base == "" || key == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}
	pathURL, err := url.Parse(strings.TrimPrefix(key, "/"))
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(pathURL).String()
}
