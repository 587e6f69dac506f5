package render_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bouquet-studio-backend/internal/canvas"
	"bouquet-studio-backend/internal/render"
)

func solidPNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAssetLoader_LocalFile(t *testing.T) {
	fsys := fstest.MapFS{
		"img/rose-rot.png": {Data: solidPNG(t, 40, 60, color.RGBA{R: 255, A: 255})},
	}
	l := render.NewAssetLoader(fsys, nil)

	w, h, err := l.Size(context.Background(), "/img/rose-rot.png")
	require.NoError(t, err)
	assert.Equal(t, 40, w)
	assert.Equal(t, 60, h)

	_, err = l.Load(context.Background(), "/img/missing.png")
	assert.ErrorIs(t, err, render.ErrAssetNotFound)

	_, err = l.Load(context.Background(), "/../etc/passwd")
	assert.ErrorIs(t, err, render.ErrAssetNotFound)
}

func TestAssetLoader_DecodeFailure(t *testing.T) {
	fsys := fstest.MapFS{"img/broken.png": {Data: []byte("not an image")}}
	l := render.NewAssetLoader(fsys, nil)

	_, err := l.Load(context.Background(), "/img/broken.png")
	assert.ErrorIs(t, err, render.ErrAssetDecode)
}

func TestAssetLoader_RemoteIsCached(t *testing.T) {
	data := solidPNG(t, 10, 10, color.White)
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer server.Close()

	l := render.NewAssetLoader(nil, server.Client())
	l.SetAllowedHosts(render.NewHostAllowlist(hostOf(t, server.URL)))
	for i := 0; i < 3; i++ {
		_, err := l.Load(context.Background(), server.URL+"/a.png")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func hostOf(t *testing.T, raw string) string {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Hostname()
}

func TestAssetLoader_RemoteHostMustBeAllowed(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	l := render.NewAssetLoader(nil, server.Client())
	_, err := l.Load(context.Background(), server.URL+"/a.png")
	assert.ErrorIs(t, err, render.ErrHostNotAllowed)

	l.SetAllowedHosts(render.NewHostAllowlist("cdn.example.com"))
	_, err = l.Load(context.Background(), "http://169.254.169.254/latest/meta-data")
	assert.ErrorIs(t, err, render.ErrHostNotAllowed)
	assert.Equal(t, int32(0), atomic.LoadInt32(&hits))
}

func TestAssetLoader_RemoteSizeIsCapped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chunk := make([]byte, 1<<20)
		for i := 0; i <= render.MaxAssetBytes>>20; i++ {
			if _, err := w.Write(chunk); err != nil {
				return
			}
		}
	}))
	defer server.Close()

	l := render.NewAssetLoader(nil, server.Client())
	l.SetAllowedHosts(render.NewHostAllowlist(hostOf(t, server.URL)))
	_, err := l.Load(context.Background(), server.URL+"/huge.png")
	assert.ErrorIs(t, err, render.ErrAssetTooLarge)
}

func TestHostAllowlist_CheckRedirect(t *testing.T) {
	allow := render.NewHostAllowlist("Delivery.BFL.ai")
	assert.True(t, allow.Allows("delivery.bfl.ai"))

	ok, _ := http.NewRequest("GET", "https://delivery.bfl.ai/x.png", nil)
	bad, _ := http.NewRequest("GET", "http://10.0.0.1/x.png", nil)
	assert.NoError(t, allow.CheckRedirect(ok, nil))
	assert.ErrorIs(t, allow.CheckRedirect(bad, nil), render.ErrHostNotAllowed)

	var empty render.HostAllowlist
	assert.False(t, empty.Allows("delivery.bfl.ai"))
}

func TestAssetLoader_DataURI(t *testing.T) {
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(solidPNG(t, 3, 2, color.Black))
	l := render.NewAssetLoader(nil, nil)

	w, h, err := l.Size(context.Background(), uri)
	require.NoError(t, err)
	assert.Equal(t, 3, w)
	assert.Equal(t, 2, h)
}

func TestRasterizer_DrawsSleeveAndItems(t *testing.T) {
	fsys := fstest.MapFS{
		"sleeve.png": {Data: solidPNG(t, 100, 100, color.RGBA{G: 255, A: 255})},
		"rose.png":   {Data: solidPNG(t, 20, 20, color.RGBA{R: 255, A: 255})},
		"bg.png":     {Data: solidPNG(t, 20, 20, color.RGBA{B: 255, A: 255})},
	}
	r := render.NewRasterizer(render.NewAssetLoader(fsys, nil), 1)

	items := []canvas.Item{
		{ID: "sleeve", Src: "/sleeve.png", Kind: canvas.KindSleeve, Scale: 1},
		{ID: "bg", Src: "/bg.png", Kind: canvas.KindBackground},
		{ID: "rose", Src: "/rose.png", Kind: canvas.KindFlower, X: 390, Y: 390, Scale: 1},
	}
	img, err := r.Compose(context.Background(), items)
	require.NoError(t, err)

	assert.Equal(t, image.Rect(0, 0, 800, 800), img.Bounds())

	// sleeve covers 95% of the surface, centred
	corner := img.RGBAAt(5, 5)
	assert.Equal(t, uint8(0), corner.A)
	edge := img.RGBAAt(40, 400)
	assert.Equal(t, uint8(255), edge.G)

	centre := img.RGBAAt(400, 400)
	assert.Equal(t, uint8(255), centre.R)
	assert.Equal(t, uint8(0), centre.B, "background is never drawn")
}

func TestRasterizer_PixelRatio(t *testing.T) {
	fsys := fstest.MapFS{"sleeve.png": {Data: solidPNG(t, 10, 10, color.White)}}
	r := render.NewRasterizer(render.NewAssetLoader(fsys, nil), 0)

	data, err := r.Rasterize(context.Background(), []canvas.Item{
		{ID: "sleeve", Src: "/sleeve.png", Kind: canvas.KindSleeve, Scale: 1},
	})
	require.NoError(t, err)

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 1600, cfg.Width)
	assert.Equal(t, 1600, cfg.Height)
}

func TestRasterizer_MissingAssetFails(t *testing.T) {
	r := render.NewRasterizer(render.NewAssetLoader(fstest.MapFS{}, nil), 1)

	_, err := r.Rasterize(context.Background(), []canvas.Item{
		{ID: "a", Src: "/nope.png", Kind: canvas.KindFlower, Scale: 1},
	})
	assert.ErrorIs(t, err, render.ErrAssetNotFound)
}

func TestItemTransform(t *testing.T) {
	m := render.ItemTransform(canvas.Item{X: 10, Y: 20, Rotation: 90, Scale: 0.5}, 2)

	assert.InDelta(t, 0, m[0], 1e-9)
	assert.InDelta(t, -1, m[1], 1e-9)
	assert.InDelta(t, 20, m[2], 1e-9)
	assert.InDelta(t, 1, m[3], 1e-9)
	assert.InDelta(t, 0, m[4], 1e-9)
	assert.InDelta(t, 40, m[5], 1e-9)
}

func TestFitScale(t *testing.T) {
	assert.Equal(t, 0.5, render.FitScale(canvas.Item{Scale: 1, MaxWidth: 150}, 300))
	assert.Equal(t, 1.0, render.FitScale(canvas.Item{Scale: 1, MaxWidth: 150}, 100))
	assert.Equal(t, 0.75, render.FitScale(canvas.Item{Scale: 1}, 200))
	assert.Equal(t, 0.3, render.FitScale(canvas.Item{Scale: 0.3, MaxWidth: 150}, 1000))
}
