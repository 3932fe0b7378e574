// pkg/errors/errors_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test error creation, wrapping, and code extraction

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/tidesync/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "snapshot_not_found",
			code:    errors.ErrSnapshotNotFound,
			message: "no snapshot archive",
			wantStr: "[SNAPSHOT_NOT_FOUND] no snapshot archive",
		},
		{
			name:    "sync_conflict",
			code:    errors.ErrSyncConflict,
			message: "rebase stopped on conflicts",
			wantStr: "[SYNC_CONFLICT] rebase stopped on conflicts",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("exit status 128")
	err := errors.Wrap(cause, errors.ErrBootstrapFailure, "clone failed")

	require.NotNil(t, err)
	assert.Equal(t, errors.ErrBootstrapFailure, err.Code)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[BOOTSTRAP_FAILURE] clone failed: exit status 128", err.Error())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "should vanish"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "should %s", "vanish"))
}

func TestIsMatchesOnCode(t *testing.T) {
	err := errors.Newf(errors.ErrPushRejected, "push to %s rejected", "origin")
	target := errors.New(errors.ErrPushRejected, "any message")

	assert.True(t, stderrors.Is(err, target))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrCommitFailure, "")))
}

func TestIsCodeThroughChain(t *testing.T) {
	inner := errors.New(errors.ErrSnapshotCorrupt, "bad gzip header")
	outer := fmt.Errorf("loading snapshot: %w", inner)

	assert.True(t, errors.IsCode(outer, errors.ErrSnapshotCorrupt))
	assert.False(t, errors.IsCode(outer, errors.ErrSnapshotNotFound))
	assert.Equal(t, errors.ErrSnapshotCorrupt, errors.GetCode(outer))
}

func TestGetCodeUnknown(t *testing.T) {
	assert.Equal(t, errors.ErrUnknown, errors.GetCode(stderrors.New("plain")))
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrStageFailure, "cannot unpack").
		WithDetail("path", ".git").
		WithDetail("size", 42)

	assert.Equal(t, ".git", err.Details["path"])
	assert.Equal(t, 42, err.Details["size"])
}
