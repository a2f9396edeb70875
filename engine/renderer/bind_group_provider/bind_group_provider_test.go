package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBindGroupProviderLabel(t *testing.T) {
	p := NewBindGroupProvider("Flock Velocity A")
	assert.Equal(t, "Flock Velocity A", p.Label())
	assert.Nil(t, p.BindGroup())
	assert.Nil(t, p.Buffer(0))
}

func TestSharedBufferBookkeeping(t *testing.T) {
	p := NewBindGroupProvider("state", WithSharedBuffer(1, nil))
	assert.True(t, p.IsShared(1))

	p.SetBuffer(1, nil)
	assert.False(t, p.IsShared(1))

	p.ShareBuffer(2, nil)
	p.Release()
	assert.False(t, p.IsShared(2))
	assert.Nil(t, p.Buffer(2))
}

func TestIndexCount(t *testing.T) {
	p := NewBindGroupProvider("mesh")
	p.SetIndexCount(2304)
	assert.Equal(t, 2304, p.IndexCount())
	assert.Nil(t, p.IndexBuffer())
}
