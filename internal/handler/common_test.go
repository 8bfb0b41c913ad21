package handler

import (
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func metaCtx(headers map[string]string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest("POST", "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return e.NewContext(req, httptest.NewRecorder())
}

func TestReqMetaDeviceHeaders(t *testing.T) {
	c := metaCtx(map[string]string{
		"X-Device-Id":    "dev-1",
		"X-Device-Model": "Pixel 8",
		"X-App-Version":  "2.4.0",
		"User-Agent":     "okhttp/4.12",
	})
	m := reqMeta(c)
	if m.Device.DeviceID != "dev-1" || m.Device.DeviceModel != "Pixel 8" || m.Device.AppVersion != "2.4.0" {
		t.Fatalf("device meta = %+v", m.Device)
	}
	if m.UserAgent != "okhttp/4.12" {
		t.Fatalf("user agent = %q", m.UserAgent)
	}
}

func TestReqMetaModelFallsBackToUserAgent(t *testing.T) {
	c := metaCtx(map[string]string{
		"X-Device-Id": "dev-1",
		"User-Agent":  "Mozilla/5.0 (X11; Linux x86_64)",
	})
	m := reqMeta(c)
	if m.Device.DeviceModel != "Mozilla/5.0 (X11; Linux x86_64)" {
		t.Fatalf("model = %q, want the User-Agent fallback", m.Device.DeviceModel)
	}
}

func TestReqMetaActorFromContext(t *testing.T) {
	c := metaCtx(nil)
	c.Set("user_id", uint64(42))
	if m := reqMeta(c); m.ActorID != 42 {
		t.Fatalf("actor = %d, want 42", m.ActorID)
	}
}
