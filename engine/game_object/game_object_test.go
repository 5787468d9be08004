package game_object

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/engine/model"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer"
	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGameObject(t *testing.T) {
	ctx := renderer.NewHeadlessContext(renderer.WithRecording(true))
	t.Cleanup(ctx.Release)

	mesh, err := model.NewMesh(ctx, model.Cube(1))
	require.NoError(t, err)
	mat := material.NewMaterial(ctx)

	a := NewGameObject(mesh, mat)
	b := NewGameObject(mesh, mat, WithName("b"), WithPosition(1, 2, 3), WithEnabled(false))

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, "cube", a.Name())
	assert.Equal(t, "b", b.Name())
	assert.True(t, a.Enabled())
	assert.False(t, b.Enabled())
	assert.Equal(t, mgl32.Ident4(), a.Transform())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, b.Transform().Col(3).Vec3())
	assert.Same(t, a.Mesh(), b.Mesh())

	assert.Panics(t, func() { NewGameObject(nil, mat) })
}

func TestGameObject_DrawSetsModelUniform(t *testing.T) {
	ctx := renderer.NewHeadlessContext(renderer.WithRecording(true))
	t.Cleanup(ctx.Release)

	mesh, err := model.NewMesh(ctx, model.Cube(1))
	require.NoError(t, err)
	obj := NewGameObject(mesh, material.NewMaterial(ctx))
	obj.SetTransform(mgl32.Translate3D(0, 5, 0))

	target := ctx.NewFramebuffer("target", ctx.NewTexture("depth", renderer.ImageFormatDepth32F, 2, 2))
	require.NoError(t, ctx.BeginFrame(2, 2))
	target.Bind(true, false)
	obj.Draw(ctx)
	ctx.EndFrame()

	cmds := renderer.FilterCommands(ctx.Commands(), renderer.CommandSetUniform, renderer.CommandDrawIndexed)
	require.Len(t, cmds, 3)
	assert.Equal(t, "base_color", cmds[0].Name)
	assert.Equal(t, "model", cmds[1].Name)
	assert.Equal(t, mgl32.Translate3D(0, 5, 0), cmds[1].Value)
	assert.Equal(t, renderer.CommandDrawIndexed, cmds[2].Kind)
}
