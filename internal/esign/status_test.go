package esign

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAgreementStatus(t *testing.T) {
	status, err := ParseAgreementStatus("OUT_FOR_SIGNATURE")
	require.NoError(t, err)
	assert.Equal(t, StatusOutForSignature, status)
}

func TestParseAgreementStatusUnknown(t *testing.T) {
	_, err := ParseAgreementStatus("NOT_A_STATUS")
	require.Error(t, err)

	var unknownErr *UnknownStatusError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "NOT_A_STATUS", unknownErr.Value)
	assert.Contains(t, err.Error(), "NOT_A_STATUS")
}

func TestParseAgreementStatusEmpty(t *testing.T) {
	_, err := ParseAgreementStatus("")
	require.Error(t, err)
}

func TestFaxinFaxingBothValid(t *testing.T) {
	// The vendor documents both spellings; they must stay distinct members.
	assert.NotEqual(t, StatusWaitingForFaxin, StatusWaitingForFaxing)
	assert.True(t, StatusWaitingForFaxin.Valid())
	assert.True(t, StatusWaitingForFaxing.Valid())
}

func TestAgreementStatusValid(t *testing.T) {
	assert.True(t, StatusCancelled.Valid())
	assert.False(t, AgreementStatus("BOGUS").Valid())
}
