package bind_group_provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderVersioning(t *testing.T) {
	p := NewBindGroupProvider("mesh")
	assert.Equal(t, "mesh", p.Label())

	assert.True(t, p.Stale(0), "nothing uploaded yet")
	p.MarkUploaded(3)
	assert.False(t, p.Stale(3))
	assert.True(t, p.Stale(4))

	p.Release()
	assert.True(t, p.Stale(3), "release forgets the upload")
}

func TestProviderEmptyRelease(t *testing.T) {
	p := NewBindGroupProvider("frame", WithBuffer(0, nil), WithTextureView(3, nil), WithSampler(4, nil))
	assert.NotPanics(t, p.Release)
	assert.Nil(t, p.Buffer(0))
	assert.Nil(t, p.BindGroup())
	assert.Zero(t, p.IndexCount())
	assert.Zero(t, p.EdgeIndexCount())
}
