package postgres

import (
	"context"
	"testing"
)

func TestConnectRejectsBadDSN(t *testing.T) {
	if _, err := Connect(context.Background(), "postgres://%zz", DefaultPoolOptions); err == nil {
		t.Fatal("expected parse error for malformed dsn")
	}
}
