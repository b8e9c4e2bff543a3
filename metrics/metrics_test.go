package metrics_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glacya/memfs/metrics"
)

func TestObserveWrapsSuccessAndFailure(t *testing.T) {
	h := metrics.NewNoopMetrics()
	ctx := context.Background()

	err := metrics.Observe(ctx, h, "open", func() error { return nil })
	assert.NoError(t, err)

	sentinel := errors.New("boom")
	err = metrics.Observe(ctx, h, "open", func() error { return sentinel })
	assert.ErrorIs(t, err, sentinel)
}
