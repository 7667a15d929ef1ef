package context

import (
	stdctx "context"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := WithRequestID(stdctx.Background(), "req-7")
	if got := GetRequestID(ctx); got != "req-7" {
		t.Fatalf("got %q", got)
	}
	if got := GetRequestID(stdctx.Background()); got != "" {
		t.Fatalf("expected empty on bare context, got %q", got)
	}
}
