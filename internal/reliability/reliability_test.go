package reliability

import (
	"testing"
	"time"
)

func TestIsRetryableHTTPStatus(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{code: 200, want: false},
		{code: 400, want: false},
		{code: 401, want: false},
		{code: 404, want: false},
		{code: 429, want: true},
		{code: 500, want: true},
		{code: 502, want: true},
		{code: 503, want: true},
		{code: 504, want: true},
	}
	for _, tc := range tests {
		if got := IsRetryableHTTPStatus(tc.code); got != tc.want {
			t.Fatalf("IsRetryableHTTPStatus(%d) = %v, want %v", tc.code, got, tc.want)
		}
	}
}

func TestBackoff(t *testing.T) {
	base := 100 * time.Millisecond
	cap := 2 * time.Second

	if got := Backoff(0, base, cap); got != base {
		t.Fatalf("Backoff(0) = %v, want %v", got, base)
	}
	if got := Backoff(1, base, cap); got != 200*time.Millisecond {
		t.Fatalf("Backoff(1) = %v, want %v", got, 200*time.Millisecond)
	}
	if got := Backoff(10, base, cap); got != cap {
		t.Fatalf("Backoff(10) = %v, want cap %v", got, cap)
	}
}
