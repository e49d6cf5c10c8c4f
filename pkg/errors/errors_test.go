package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndIsCode(t *testing.T) {
	base := fmt.Errorf("boom")
	err := Wrap(CodeUpstream, "fetch failed", base)

	require.True(t, IsCode(err, CodeUpstream))
	require.False(t, IsCode(err, CodeNotFound))
	require.ErrorIs(t, err, base)
	require.Equal(t, "fetch failed: boom", err.Error())

	wrapped := fmt.Errorf("outer: %w", err)
	require.Equal(t, CodeUpstream, CodeOf(wrapped))
	require.Equal(t, "", CodeOf(base))
}
