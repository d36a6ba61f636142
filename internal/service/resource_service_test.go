package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceServiceListsActiveOnly(t *testing.T) {
	svc := NewResourceService(defaultRooms(), defaultLecturers())

	rooms, err := svc.Rooms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"r-1", "r-2"}, roomIDs(rooms))

	lecturers, err := svc.Lecturers(context.Background())
	require.NoError(t, err)
	assert.Len(t, lecturers, 2)

	empty, err := NewResourceService(memRooms{}, memLecturers{}).Rooms(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}
