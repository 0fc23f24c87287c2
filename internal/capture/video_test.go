//go:build gocv

package capture

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

func TestVideoSource_OpenFailureIsReturned(t *testing.T) {
	src, ok := NewVideoSource(zap.NewNop(), []Device{{Name: "cam0", Index: 3}}).(*VideoSource)
	require.True(t, ok)

	var opened []int
	src.open = func(index int) (*gocv.VideoCapture, error) {
		opened = append(opened, index)
		return nil, errors.New("device busy")
	}

	err := src.Begin(Preferences{Width: 640, Height: 480, FPS: 15})
	assert.ErrorIs(t, err, ErrDeviceOpen)
	assert.Contains(t, err.Error(), "device busy")
	assert.Equal(t, []int{3}, opened)
	assert.False(t, src.Ready())
	assert.NoError(t, src.Close())
}

func TestVideoSource_NoMatchingDevice(t *testing.T) {
	src := NewVideoSource(zap.NewNop(), []Device{{Name: "cam0", FrontFacing: false}})
	assert.ErrorIs(t, src.Begin(Preferences{FrontFacing: true}), ErrNoDevice)
}
