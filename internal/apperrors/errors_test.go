package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Error_Is(t *testing.T) {
	t.Parallel()

	err := Wrap(KindTimeout, errors.New("dial tcp: i/o timeout"))

	assert.True(t, errors.Is(err, New(KindTimeout)), "same kind should match")
	assert.False(t, errors.Is(err, New(KindConnection)), "different kind should not match")
}

func Test_Error_UnwrapKeepsCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := fmt.Errorf("outer: %w", Wrap(KindParse, cause))

	assert.True(t, errors.Is(err, cause), "original cause should stay reachable")
	assert.Equal(t, KindParse, KindOf(err))
}

func Test_KindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindUserNotFound, KindOf(New(KindUserNotFound)))
	assert.Equal(t, KindUnknown, KindOf(errors.New("some random error")), "non taxonomy error collapses to unknown")
}

func Test_UserMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Invalid email or password. Please try again.", UserMessage(New(KindInvalidCredentials)))
	assert.Equal(t, "Something went wrong. Please try again.", UserMessage(errors.New("raw")), "raw errors must not leak to the UI")
}

func Test_EveryKindHasMessage(t *testing.T) {
	t.Parallel()

	kinds := []Kind{
		KindConnection, KindTimeout, KindServer, KindClient,
		KindInvalidCredentials, KindUserNotFound, KindEmailAlreadyExists,
		KindWeakPassword, KindTokenExpired, KindUnauthorized,
		KindParse, KindNotFound, KindValidation,
		KindLocationPermission, KindLocationUnavailable, KindGeocoding,
		KindUnknown, KindFeatureUnavailable,
	}

	for _, kind := range kinds {
		require.NotEmpty(t, New(kind).Message, "kind %s must carry a default message", kind)
	}
}

func Test_StatusAndFieldCarriers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 503, ServerError(503).Status)
	assert.Equal(t, 418, ClientError(418).Status)
	assert.Equal(t, "email", Validation("email", "").Field)
	assert.Equal(t, "Custom message", Validation("email", "Custom message").Message)
}
