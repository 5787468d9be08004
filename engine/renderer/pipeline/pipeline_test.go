package pipeline

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipeline_Defaults(t *testing.T) {
	p := NewPipeline()
	assert.True(t, p.DepthTestEnabled())
	assert.True(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())

	d := p.Descriptor()
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, d.Primitive.Topology)
	assert.Equal(t, wgpu.FrontFaceCCW, d.Primitive.FrontFace)
	assert.Nil(t, d.Fragment)
	assert.Nil(t, d.DepthStencil)
}

func TestDescriptor_TargetsAndDepth(t *testing.T) {
	additive := &wgpu.BlendState{
		Color: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
		Alpha: wgpu.BlendComponent{SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOne, Operation: wgpu.BlendOperationAdd},
	}
	p := NewPipeline(
		WithLabel("light_sphere"),
		WithShaderModule(nil, "vs_main", "fs_main"),
		WithColorTargets(wgpu.TextureFormatRGBA8UnormSrgb),
		WithDepthTarget(wgpu.TextureFormatDepth32Float),
		WithDepthTestEnabled(false),
		WithDepthWriteEnabled(false),
		WithCullMode(wgpu.CullModeFront),
		WithBlendState(additive),
	)

	d := p.Descriptor()
	assert.Equal(t, "vs_main", d.Vertex.EntryPoint)
	require.NotNil(t, d.Fragment)
	assert.Equal(t, "fs_main", d.Fragment.EntryPoint)
	require.Len(t, d.Fragment.Targets, 1)
	assert.Equal(t, wgpu.TextureFormatRGBA8UnormSrgb, d.Fragment.Targets[0].Format)
	assert.Same(t, additive, d.Fragment.Targets[0].Blend)
	assert.Equal(t, wgpu.CullModeFront, d.Primitive.CullMode)

	require.NotNil(t, d.DepthStencil)
	assert.Equal(t, wgpu.CompareFunctionAlways, d.DepthStencil.DepthCompare)
	assert.False(t, d.DepthStencil.DepthWriteEnabled)

	p = NewPipeline(WithDepthTarget(wgpu.TextureFormatDepth32Float))
	assert.Equal(t, wgpu.CompareFunctionLess, p.Descriptor().DepthStencil.DepthCompare)
}

func TestKey_DistinguishesState(t *testing.T) {
	base := []PipelineBuilderOption{
		WithLabel("gbuffer"),
		WithColorTargets(wgpu.TextureFormatRGBA8Unorm, wgpu.TextureFormatRGBA8UnormSrgb),
		WithDepthTarget(wgpu.TextureFormatDepth32Float),
	}
	key := NewPipeline(base...).Key()

	assert.Equal(t, key, NewPipeline(base...).Key())
	assert.NotEqual(t, key, NewPipeline(append(base, WithDepthWriteEnabled(false))...).Key())
	assert.NotEqual(t, key, NewPipeline(append(base, WithCullMode(wgpu.CullModeNone))...).Key())
	assert.NotEqual(t, key, NewPipeline(append(base, WithLabel("light_sphere"))...).Key())
	assert.NotEqual(t, key, NewPipeline(append(base, WithColorTargets(wgpu.TextureFormatRGBA8Unorm))...).Key())
	assert.NotEqual(t, key, NewPipeline(append(base, WithBlendState(&wgpu.BlendState{}))...).Key())
}
