package service

import (
	"context"
	"testing"

	"Confizz/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeRejectsBlankWithoutCalling(t *testing.T) {
	gw := &fakeGateway{reply: "unused"}
	svc := NewSummaryService(gw)

	for _, text := range []string{"", "  \n\t"} {
		_, err := svc.Summarize(context.Background(), text)
		assert.ErrorIs(t, err, pkg.ErrValidation)
	}
	assert.Zero(t, gw.calls)
}

func TestSummarizePassesThrough(t *testing.T) {
	gw := &fakeGateway{reply: "Everyone agreed."}
	svc := NewSummaryService(gw)

	summary, err := svc.Summarize(context.Background(), "great discussion")
	require.NoError(t, err)
	assert.Equal(t, "Everyone agreed.", summary)
	assert.Equal(t, 1, gw.calls)

	gw.err = pkg.External("quota exceeded")
	_, err = svc.Summarize(context.Background(), "great discussion")
	assert.ErrorIs(t, err, pkg.ErrExternalService)
	assert.Equal(t, "quota exceeded", pkg.Message(err, ""))
}
