package utils

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/contesthub/internal/logger"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remote     string
		headers    map[string]string
		trustProxy bool
		want       string
	}{
		{name: "remote addr", remote: "10.0.0.5:4567", want: "10.0.0.5"},
		{name: "headers ignored without trust", remote: "10.0.0.5:4567", headers: map[string]string{"X-Forwarded-For": "1.2.3.4"}, want: "10.0.0.5"},
		{name: "cloudflare first", remote: "127.0.0.1:1", headers: map[string]string{"CF-Connecting-IP": "5.6.7.8", "X-Forwarded-For": "1.2.3.4"}, trustProxy: true, want: "5.6.7.8"},
		{name: "left-most forwarded", remote: "127.0.0.1:1", headers: map[string]string{"X-Forwarded-For": " 1.2.3.4 , 10.0.0.1"}, trustProxy: true, want: "1.2.3.4"},
		{name: "real ip", remote: "127.0.0.1:1", headers: map[string]string{"X-Real-IP": "9.9.9.9"}, trustProxy: true, want: "9.9.9.9"},
		{name: "ipv6 remote", remote: "[::1]:8080", want: "::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := ClientIP(r, tt.trustProxy); got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", "192.168.1.10", "not-an-ip", " ", "2001:db8::/32"})
	if m.IsEmpty() {
		t.Fatal("IsEmpty() = true, want false")
	}

	tests := []struct {
		ip   string
		want bool
	}{
		{"10.1.2.3", true},
		{"192.168.1.10", true},
		{"192.168.1.11", false},
		{"::ffff:10.0.0.1", true},
		{"2001:db8::1", true},
		{"garbage", false},
	}
	for _, tt := range tests {
		if got := m.Allow(tt.ip); got != tt.want {
			t.Errorf("Allow(%q) = %v, want %v", tt.ip, got, tt.want)
		}
	}

	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("NewIPMatcher(nil) should be empty")
	}
}

type failingCloser struct{ closed bool }

func (f *failingCloser) Close() error {
	f.closed = true
	return errors.New("boom")
}

func TestCloseHelpers(t *testing.T) {
	c := &failingCloser{}
	Close(c)
	if !c.closed {
		t.Error("Close() did not close")
	}

	c = &failingCloser{}
	CloseLogged(c, "test", logger.Nop())
	if !c.closed {
		t.Error("CloseLogged() did not close")
	}
}
