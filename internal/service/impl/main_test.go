package impl

import (
	"os"
	"testing"

	"shopauth/internal/observability/metrics"
)

func TestMain(m *testing.M) {
	// Curry the "service" label the same way cmd/shopauth/main.go does so
	// metric call sites see the expected label cardinality.
	metrics.MustRegister("shopauth")
	os.Exit(m.Run())
}
