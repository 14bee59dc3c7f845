package kernel_test

import (
	"testing"

	"dispatch/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	id := kernel.NewUUID()

	require.NoError(t, id.Validate())
	assert.Regexp(t, `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`, id.String())

	other := kernel.NewUUID()
	assert.False(t, id.IsEqual(other))
}

func TestUUIDFromString(t *testing.T) {
	canonical := "550e8400-e29b-41d4-a716-446655440000"

	for _, input := range []string{
		canonical,
		"{550e8400-e29b-41d4-a716-446655440000}",
		"urn:uuid:550e8400-e29b-41d4-a716-446655440000",
		"550e8400e29b41d4a716446655440000",
	} {
		id, err := kernel.UUIDFromString(input)
		require.NoError(t, err, "input: %s", input)
		assert.Equal(t, canonical, id.String())
	}

	for _, input := range []string{
		"",
		"not-a-uuid",
		"550e8400-e29b-41d4-a716",
		"550e8400-e29b-41d4-a716-446655440000-extra",
		"550e8400-e29b-41d4-a716-44665544000g",
	} {
		_, err := kernel.UUIDFromString(input)
		require.Error(t, err, "input: %s", input)
		assert.Contains(t, err.Error(), "invalid UUID format")
	}
}

func TestUUIDFromBytes(t *testing.T) {
	validBytes := []byte{
		0x55, 0x0e, 0x84, 0x00, 0xe2, 0x9b, 0x41, 0xd4,
		0xa7, 0x16, 0x44, 0x66, 0x55, 0x44, 0x00, 0x00,
	}

	id, err := kernel.UUIDFromBytes(validBytes)
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id.String())

	_, err = kernel.UUIDFromBytes([]byte{0x55, 0x0e, 0x84})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid UUID format")
}

func TestUUIDFromBytes_RejectsNilUUID(t *testing.T) {
	_, err := kernel.UUIDFromBytes(make([]byte, 16))

	require.Error(t, err)
	assert.Equal(t, kernel.ErrUUIDIsNotConstructed, err)
}

func TestUUID_Bytes(t *testing.T) {
	id := kernel.NewUUID()
	underlying := id.Bytes()

	assert.IsType(t, uuid.UUID{}, underlying)
	assert.Equal(t, id.String(), underlying.String())

	// Bytes returns a copy; mutating it must not touch the value object.
	for i := range underlying {
		underlying[i] = 0xFF
	}
	assert.NotEqual(t, underlying.String(), id.String())
	require.NoError(t, id.Validate())
}

func TestUUID_IsEqual(t *testing.T) {
	first, err := kernel.UUIDFromString("550e8400-e29b-41d4-a716-446655440000")
	require.NoError(t, err)
	second, err := kernel.UUIDFromString("550e8400-e29b-41d4-a716-446655440000")
	require.NoError(t, err)

	assert.True(t, first.IsEqual(second))
	assert.True(t, second.IsEqual(first))
	assert.False(t, first.IsEqual(kernel.NewUUID()))

	var zeroA, zeroB kernel.UUID
	assert.True(t, zeroA.IsEqual(zeroB))
	assert.False(t, zeroA.IsEqual(first))
}

func TestUUID_Validate(t *testing.T) {
	require.NoError(t, kernel.NewUUID().Validate())

	var zero kernel.UUID
	assert.Equal(t, kernel.ErrUUIDIsNotConstructed, zero.Validate())

	parsedNil, err := kernel.UUIDFromString("00000000-0000-0000-0000-000000000000")
	require.NoError(t, err)
	assert.Equal(t, kernel.ErrUUIDIsNotConstructed, parsedNil.Validate())
}
