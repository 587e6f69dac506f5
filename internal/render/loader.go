// Package render loads asset images and rasterizes a canvas snapshot.
package render

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"strings"
	"sync"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

var (
	ErrAssetNotFound = errors.New("asset not found")
	ErrAssetDecode   = errors.New("failed to decode asset image")
	ErrAssetTooLarge = errors.New("asset too large")
)

const (
	// MaxAssetBytes caps one encoded asset, fetched or inlined.
	MaxAssetBytes = 25 << 20
	// maxCachedAssets bounds the decoded image cache.
	maxCachedAssets = 256
)

// Doer issues HTTP requests. *http.Client and httpcache clients satisfy it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// AssetLoader resolves asset references to decoded images. Local references
// ("/img/rose.png") are read from the asset directory; http(s) URLs are
// fetched from allowed hosts only and data URIs are decoded in place.
// Decoded images are cached by reference and concurrent loads of one
// reference share a single fetch.
type AssetLoader struct {
	assets fs.FS
	client Doer
	allow  HostAllowlist

	mu    sync.RWMutex
	cache map[string]image.Image
	group singleflight.Group
}

// NewAssetLoader creates a loader. assets may be nil when only remote
// references are used; client defaults to http.DefaultClient.
func NewAssetLoader(assets fs.FS, client Doer) *AssetLoader {
	if client == nil {
		client = http.DefaultClient
	}
	return &AssetLoader{
		assets: assets,
		client: client,
		cache:  make(map[string]image.Image),
	}
}

// SetAllowedHosts sets the hosts remote references may point to. Without
// it every remote reference is refused. A plain *http.Client is also
// limited to redirects within the list.
func (l *AssetLoader) SetAllowedHosts(allow HostAllowlist) {
	l.allow = allow
	if c, ok := l.client.(*http.Client); ok {
		l.client = allow.Restrict(c)
	}
}

// Load returns the decoded image for src.
func (l *AssetLoader) Load(ctx context.Context, src string) (image.Image, error) {
	l.mu.RLock()
	img, ok := l.cache[src]
	l.mu.RUnlock()
	if ok {
		return img, nil
	}

	ch := l.group.DoChan(src, func() (interface{}, error) {
		img, err := l.load(context.WithoutCancel(ctx), src)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		if len(l.cache) >= maxCachedAssets {
			for k := range l.cache {
				delete(l.cache, k)
				break
			}
		}
		l.cache[src] = img
		l.mu.Unlock()
		return img, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	}
}

// Size returns the natural pixel size of src.
func (l *AssetLoader) Size(ctx context.Context, src string) (int, int, error) {
	img, err := l.Load(ctx, src)
	if err != nil {
		return 0, 0, err
	}
	b := img.Bounds()
	return b.Dx(), b.Dy(), nil
}

func (l *AssetLoader) load(ctx context.Context, src string) (image.Image, error) {
	data, err := l.read(ctx, src)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrAssetDecode, src, err)
	}
	return img, nil
}

func (l *AssetLoader) read(ctx context.Context, src string) ([]byte, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return DecodeDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.fetch(ctx, src)
	}

	if l.assets == nil {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, src)
	}
	name := strings.TrimPrefix(src, "/")
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	if !fs.ValidPath(name) {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, src)
	}
	data, err := fs.ReadFile(l.assets, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, src)
		}
		return nil, fmt.Errorf("failed to read asset %s: %w", src, err)
	}
	return data, nil
}

func (l *AssetLoader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, rawURL)
	}
	if !l.allow.Allows(u.Hostname()) {
		return nil, fmt.Errorf("%w: %s", ErrHostNotAllowed, u.Hostname())
	}

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, rawURL)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch asset: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxAssetBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read asset: %w", err)
	}
	if len(data) > MaxAssetBytes {
		return nil, fmt.Errorf("%w: %s", ErrAssetTooLarge, rawURL)
	}
	return data, nil
}

// DecodeDataURI returns the payload of a base64 data URI.
func DecodeDataURI(uri string) ([]byte, error) {
	comma := strings.IndexByte(uri, ',')
	if !strings.HasPrefix(uri, "data:") || comma < 0 {
		return nil, errors.New("malformed data uri")
	}
	meta, payload := uri[len("data:"):comma], uri[comma+1:]
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxAssetBytes {
		return nil, ErrAssetTooLarge
	}
	if !strings.HasSuffix(meta, ";base64") {
		return []byte(payload), nil
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to decode data uri: %w", err)
	}
	return data, nil
}
