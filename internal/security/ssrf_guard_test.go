package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// SSRFGuardの生成をテストする。
func TestNewSSRFGuard(t *testing.T) {
	guard := NewSSRFGuard()
	if guard == nil {
		t.Fatal("NewSSRFGuard() returned nil")
	}
}

// SSRF防止付きHTTPクライアントの生成とタイムアウト設定をテストする。
func TestNewSafeClient(t *testing.T) {
	guard := NewSSRFGuard()
	timeout := 5 * time.Second
	client := guard.NewSafeClient(timeout)
	if client == nil {
		t.Fatal("NewSafeClient() returned nil")
	}
	if client.Timeout != timeout {
		t.Errorf("expected timeout %v, got %v", timeout, client.Timeout)
	}
	if client.Transport == nil {
		t.Fatal("expected custom Transport to be set, got nil")
	}
	if client.Transport == http.DefaultTransport {
		t.Fatal("expected custom Transport, got http.DefaultTransport")
	}
}

// SafeClientがループバックへのリクエストをブロックすることをテストする。
// httptestサーバーは127.0.0.1で起動されるため、safeurlがブロックする。
func TestNewSafeClientBlocksLoopback(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	guard := NewSSRFGuard()
	client := guard.NewSafeClient(5 * time.Second)

	_, err := client.Get(ts.URL)
	if err == nil {
		t.Fatal("expected loopback request to be blocked")
	}
}

// ValidateURLの検証ロジックをテストする。
func TestValidateURL(t *testing.T) {
	guard := NewSSRFGuard()

	tests := []struct {
		name    string
		url     string
		wantErr bool
		errPart string
	}{
		{name: "valid https URL", url: "https://example.com/feed.xml", wantErr: false},
		{name: "valid http URL", url: "http://example.com/rss", wantErr: false},
		{name: "empty URL", url: "", wantErr: true, errPart: "empty URL"},
		{name: "ftp scheme rejected", url: "ftp://example.com/feed", wantErr: true, errPart: "disallowed scheme"},
		{name: "file scheme rejected", url: "file:///etc/passwd", wantErr: true, errPart: "disallowed scheme"},
		{name: "localhost rejected", url: "http://localhost/feed", wantErr: true, errPart: "blocked host"},
		{name: "loopback IP rejected", url: "http://127.0.0.1/feed", wantErr: true, errPart: "blocked IP"},
		{name: "private IP rejected", url: "http://192.168.1.1/feed", wantErr: true, errPart: "blocked IP"},
		{name: "10.x private IP rejected", url: "http://10.0.0.5/feed", wantErr: true, errPart: "blocked IP"},
		{name: "metadata IP rejected", url: "http://169.254.169.254/latest", wantErr: true, errPart: "blocked IP"},
		{name: "IPv6 loopback rejected", url: "http://[::1]/feed", wantErr: true, errPart: "blocked IP"},
		{name: "public IP allowed", url: "http://93.184.216.34/feed", wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard.ValidateURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ValidateURL(%q) = nil, want error", tt.url)
				}
				if tt.errPart != "" && !strings.Contains(err.Error(), tt.errPart) {
					t.Errorf("ValidateURL(%q) error = %q, want containing %q", tt.url, err.Error(), tt.errPart)
				}
				return
			}
			if err != nil {
				t.Errorf("ValidateURL(%q) = %v, want nil", tt.url, err)
			}
		})
	}
}

// SSRFGuardがインターフェースを満たすことを検証する。
func TestSSRFGuard_ImplementsInterface(t *testing.T) {
	var _ SSRFGuardService = (*ssrfGuard)(nil)
}
