package command

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
	"github.com/Carmen-Shannon/oxy-gl/engine/internal/gltest"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type props struct {
	time  float32
	image Texture
}

type fakeTexture gl.Texture

func (t fakeTexture) Handle() gl.Texture { return gl.Texture(t) }
func (t fakeTexture) Target() gl.TextureTarget { return gl.Texture2D }

const vs = `layout(location = 0) in vec2 a_position;
in vec2 a_uv;
out vec2 v_uv;
void main() {
    v_uv = a_uv;
    gl_Position = vec4(a_position, 0.0, 1.0);
}`

const fsColorTime = `precision highp float;
uniform vec4 u_color;
uniform float u_time;
out vec4 o_color;
void main() {
    o_color = u_color * u_time;
}`

const fsTextured = `precision highp float;
in vec2 v_uv;
uniform sampler2D u_albedo;
uniform sampler2D u_mask;
out vec4 o_color;
void main() {
    o_color = texture(u_albedo, v_uv) * texture(u_mask, v_uv).r;
}`

const fsArray = `precision highp float;
uniform vec3 u_lights[4];
out vec4 o_color;
void main() {
    o_color = vec4(u_lights[0], 1.0);
}`

func colorTimeOptions(calls *int) []Option[props] {
	return []Option[props]{
		WithUniform("u_color", Constant[props](gl.TypeVec4, Color(common.RGBA(1, 0, 0, 1)))),
		WithUniform("u_time", Dynamic(gl.TypeFloat, func(p props, _ int) Value {
			*calls++
			return Floats(p.time)
		})),
	}
}

func TestNewSplitsConstantAndDynamicUniforms(t *testing.T) {
	ctx := gltest.New()
	st := state.New(ctx)
	calls := 0

	cmd, err := New(st, vs, fsColorTime, colorTimeOptions(&calls)...)
	require.NoError(t, err)

	assert.Equal(t, []string{"u_time"}, cmd.DynamicUniforms())
	assert.Equal(t, []string{"u_color"}, cmd.ResolvedUniforms())
	assert.Equal(t, 1, ctx.Count("Uniform4fv"))
	assert.Zero(t, calls)

	require.NoError(t, cmd.Lock())
	for i := 0; i < 3; i++ {
		require.NoError(t, cmd.Apply(props{time: float32(i)}, i))
	}
	require.NoError(t, cmd.Unlock())

	assert.Equal(t, 1, ctx.Count("Uniform4fv"), "constant uniforms are never uploaded again")
	assert.Equal(t, 3, ctx.Count("Uniform1fv"))
	assert.Equal(t, 3, calls)

	loc := ctx.UniformLocation(cmd.Program(), "u_time")
	v, ok := ctx.UniformValue(cmd.Program(), loc)
	require.True(t, ok)
	assert.Equal(t, []float32{2}, v)
}

func TestNewRejectsUniformAbsentFromProgram(t *testing.T) {
	ctx := gltest.New()
	calls := 0
	opts := append(colorTimeOptions(&calls), WithUniform("u_missing", Constant[props](gl.TypeFloat, Floats(1))))

	_, err := New(state.New(ctx), vs, fsColorTime, opts...)

	var declErr *DeclarationError
	require.True(t, errors.As(err, &declErr))
	assert.Equal(t, []string{"u_missing"}, declErr.Missing)
	assert.Empty(t, declErr.Undeclared)
	assert.Contains(t, err.Error(), "u_missing")
	assert.Equal(t, 1, ctx.Count("DeleteProgram"))
}

func TestNewRejectsUndeclaredProgramUniform(t *testing.T) {
	ctx := gltest.New()

	_, err := New(state.New(ctx), vs, fsColorTime,
		WithUniform("u_color", Constant[props](gl.TypeVec4, Floats(1, 1, 1, 1))))

	var declErr *DeclarationError
	require.True(t, errors.As(err, &declErr))
	assert.Equal(t, []string{"u_time"}, declErr.Undeclared)
}

func TestNewRejectsTypeMismatch(t *testing.T) {
	ctx := gltest.New()

	_, err := New(state.New(ctx), vs, fsColorTime,
		WithUniform("u_color", Constant[props](gl.TypeVec3, Floats(1, 1, 1))),
		WithUniform("u_time", Constant[props](gl.TypeFloat, Floats(0))))

	var declErr *DeclarationError
	require.True(t, errors.As(err, &declErr))
	require.Len(t, declErr.Mismatched, 1)
	assert.Contains(t, declErr.Mismatched[0], "declared vec3, program vec4")
}

func TestNewAcceptsExactDeclarations(t *testing.T) {
	calls := 0

	_, err := New(state.New(gltest.New()), vs, fsColorTime, colorTimeOptions(&calls)...)

	assert.NoError(t, err)
}

func TestNewNormalizesArrayShorthand(t *testing.T) {
	for _, name := range []string{"u_lights", "u_lights[0]"} {
		t.Run(name, func(t *testing.T) {
			ctx := gltest.New()
			lights := make([]float32, 12)

			cmd, err := New(state.New(ctx), vs, fsArray,
				WithUniform(name, Constant[props](gl.TypeVec3, Floats(lights...))))

			require.NoError(t, err)
			call, ok := ctx.Last("Uniform3fv")
			require.True(t, ok)
			assert.Len(t, call.Args[1], 12)
			assert.Equal(t, []string{name}, cmd.ResolvedUniforms())
		})
	}
}

func TestTexturesGetUnitsInDeclarationOrder(t *testing.T) {
	ctx := gltest.New()
	st := state.New(ctx)

	cmd, err := New(st, vs, fsTextured,
		WithTexture("u_albedo", func(p props, _ int) Texture { return p.image }),
		WithTexture("u_mask", func(props, int) Texture { return fakeTexture(42) }))
	require.NoError(t, err)

	unit, ok := cmd.TextureUnit("u_mask")
	require.True(t, ok)
	assert.Equal(t, 1, unit)
	uploads := ctx.Named("Uniform1iv")
	require.Len(t, uploads, 2)
	assert.Equal(t, []int32{0}, uploads[0].Args[1])
	assert.Equal(t, []int32{1}, uploads[1].Args[1])

	require.NoError(t, cmd.Lock())
	require.NoError(t, cmd.Apply(props{image: fakeTexture(7)}, 0))
	require.NoError(t, cmd.Apply(props{image: fakeTexture(7)}, 1))
	require.NoError(t, cmd.Unlock())

	binds := ctx.Named("BindTexture")
	require.Len(t, binds, 2, "unchanged bindings are not re-emitted")
	assert.Equal(t, gl.Texture(7), binds[0].Args[1])
	assert.Equal(t, gl.Texture(42), binds[1].Args[1])
}

func TestTextureMustBeSampler(t *testing.T) {
	_, err := New(state.New(gltest.New()), vs, fsColorTime,
		WithUniform("u_color", Constant[props](gl.TypeVec4, Floats(1, 1, 1, 1))),
		WithTexture("u_time", func(props, int) Texture { return fakeTexture(1) }))

	var declErr *DeclarationError
	require.True(t, errors.As(err, &declErr))
	assert.Contains(t, declErr.Mismatched[0], "u_time (declared sampler")
}

type cubeTexture gl.Texture

func (t cubeTexture) Handle() gl.Texture { return gl.Texture(t) }
func (t cubeTexture) Target() gl.TextureTarget { return gl.TextureCubeMap }

const fsCube = `precision highp float;
in vec2 v_uv;
uniform samplerCube u_env;
out vec4 o_color;
void main() {
    o_color = texture(u_env, vec3(v_uv, 1.0));
}`

func TestTextureTargetMustMatchSampler(t *testing.T) {
	ctx := gltest.New()
	cmd, err := New(state.New(ctx), vs, fsCube,
		WithTexture("u_env", func(p props, _ int) Texture { return p.image }))
	require.NoError(t, err)

	require.NoError(t, cmd.Lock())
	defer func() { require.NoError(t, cmd.Unlock()) }()

	var declErr *DeclarationError
	err = cmd.Apply(props{image: fakeTexture(3)}, 0)
	require.True(t, errors.As(err, &declErr))
	assert.Equal(t, []string{"u_env (bound 2D texture, program samples cube map)"}, declErr.Mismatched)
	assert.Zero(t, ctx.Count("BindTexture"))

	assert.NoError(t, cmd.Apply(props{image: cubeTexture(3)}, 0))
	assert.Equal(t, 1, ctx.Count("BindTexture"))
}

func TestApplyRequiresLock(t *testing.T) {
	calls := 0
	cmd, err := New(state.New(gltest.New()), vs, fsColorTime, colorTimeOptions(&calls)...)
	require.NoError(t, err)

	var usage *state.UsageError
	assert.True(t, errors.As(cmd.Apply(props{}, 0), &usage))
	assert.True(t, errors.As(cmd.Unlock(), &usage))
	assert.Zero(t, calls)
}

func TestOnlyOneCommandLocked(t *testing.T) {
	ctx := gltest.New()
	st := state.New(ctx)
	calls := 0
	a, err := New(st, vs, fsColorTime, colorTimeOptions(&calls)...)
	require.NoError(t, err)
	b, err := New(st, vs, fsColorTime, colorTimeOptions(&calls)...)
	require.NoError(t, err)

	require.NoError(t, a.Lock())
	var usage *state.UsageError
	assert.True(t, errors.As(b.Lock(), &usage))
	assert.True(t, errors.As(b.Unlock(), &usage), "b cannot release a's lock")

	_, err = New(st, vs, fsColorTime, colorTimeOptions(&calls)...)
	assert.True(t, errors.As(err, &usage), "building while a command is locked would replace its program")

	require.NoError(t, a.Unlock())
	assert.NoError(t, b.Lock())
}

func TestLockAppliesFixedFunctionState(t *testing.T) {
	ctx := gltest.New()
	calls := 0
	opts := append(colorTimeOptions(&calls),
		WithDepth[props](DepthFunc(gl.LEqual), DepthMask(false)),
		WithStencil[props](StencilFuncSeparate(gl.Back, gl.Equal, 1, 0xF), StencilOp(gl.Keep, gl.Keep, gl.Replace)),
		WithBlend[props](BlendFunc(gl.FactorSrcAlpha, gl.FactorOneMinusSrcAlpha), BlendColor(common.RGBA(0, 0, 0, 0.5))),
	)
	cmd, err := New(state.New(ctx), vs, fsColorTime, opts...)
	require.NoError(t, err)

	assert.Equal(t, gl.LEqual, cmd.Depth().Func)
	assert.False(t, cmd.Depth().Mask)
	assert.Equal(t, float32(1), cmd.Depth().Far)
	assert.Equal(t, gl.Always, cmd.Stencil().Front.Func)
	assert.Equal(t, gl.Equal, cmd.Stencil().Back.Func)
	assert.Equal(t, gl.Replace, cmd.Stencil().Front.ZPass)
	assert.Equal(t, gl.Replace, cmd.Stencil().Back.ZPass)
	assert.Equal(t, gl.FactorSrcAlpha, cmd.Blend().SrcAlpha)
	assert.Equal(t, gl.FuncAdd, cmd.Blend().EquationRGB)
	assert.Equal(t, [4]float32{0, 0, 0, 0.5}, cmd.Blend().Color)

	ctx.ClearCalls()
	require.NoError(t, cmd.Lock())
	require.NoError(t, cmd.Unlock())
	require.NoError(t, cmd.Lock())
	require.NoError(t, cmd.Unlock())

	assert.Equal(t, 3, ctx.Count("Enable"))
	assert.Equal(t, 1, ctx.Count("DepthFunc"))
	assert.Equal(t, 2, ctx.Count("StencilFuncSeparate"))
	assert.Equal(t, 1, ctx.Count("BlendFuncSeparate"))
}

func TestCommandWithoutFixedFunctionDisablesNothingNew(t *testing.T) {
	calls := 0
	cmd, err := New(state.New(gltest.New()), vs, fsColorTime, colorTimeOptions(&calls)...)
	require.NoError(t, err)

	assert.Nil(t, cmd.Depth())
	assert.Nil(t, cmd.Stencil())
	assert.Nil(t, cmd.Blend())
}

func TestRestoreRebuildsAfterContextLoss(t *testing.T) {
	ctx := gltest.New()
	st := state.New(ctx)
	calls := 0
	cmd, err := New(st, vs, fsColorTime, colorTimeOptions(&calls)...)
	require.NoError(t, err)
	old := cmd.Program()

	require.NoError(t, cmd.Restore())
	assert.Equal(t, old, cmd.Program(), "restore is a no-op while the program is alive")

	ctx.LoseContext()
	ctx.RestoreContext()
	require.NoError(t, st.Reset())
	require.NoError(t, cmd.Restore())

	assert.NotEqual(t, old, cmd.Program())
	assert.True(t, ctx.IsProgram(cmd.Program()))
	assert.Equal(t, 2, ctx.Count("Uniform4fv"))
	v, ok := ctx.UniformValue(cmd.Program(), ctx.UniformLocation(cmd.Program(), "u_color"))
	require.True(t, ok)
	assert.Equal(t, []float32{1, 0, 0, 1}, v)
	assert.Equal(t, []string{"u_time"}, cmd.DynamicUniforms())
}

func TestRecycledProgramName(t *testing.T) {
	ctx := gltest.New()
	ctx.ReuseNames = true
	st := state.New(ctx)
	calls := 0

	first, err := New(st, vs, fsColorTime, colorTimeOptions(&calls)...)
	require.NoError(t, err)
	name := first.Program()
	first.Delete()
	assert.True(t, ctx.IsProgram(name), "a deleted program lives on while in use")

	second, err := New(st, vs, fsColorTime, colorTimeOptions(&calls)...)
	require.NoError(t, err)
	assert.NotEqual(t, name, second.Program())
	assert.False(t, ctx.IsProgram(name))

	second.Delete()
	third, err := New(st, vs, fsColorTime, colorTimeOptions(&calls)...)
	require.NoError(t, err)
	require.Equal(t, name, third.Program())

	require.NoError(t, third.Lock())
	assert.Equal(t, third.Program(), ctx.CurrentProgram())
	require.NoError(t, third.Apply(props{time: 2}, 0))
	require.NoError(t, third.Unlock())
	v, ok := ctx.UniformValue(third.Program(), ctx.UniformLocation(third.Program(), "u_time"))
	require.True(t, ok)
	assert.Equal(t, []float32{2}, v)
}

func TestAttributeLocation(t *testing.T) {
	calls := 0
	cmd, err := New(state.New(gltest.New()), vs, fsColorTime, colorTimeOptions(&calls)...)
	require.NoError(t, err)

	loc, err := cmd.AttributeLocation("a_position")
	require.NoError(t, err)
	assert.Equal(t, 0, loc)

	loc, err = cmd.AttributeLocation("a_uv")
	require.NoError(t, err)
	assert.Equal(t, 1, loc)

	_, err = cmd.AttributeLocation("a_normal")
	var locErr *LocationError
	require.True(t, errors.As(err, &locErr))
	assert.Equal(t, "attribute", locErr.Kind)
}

func TestDefinesAndVersionReachTheDriver(t *testing.T) {
	ctx := gltest.New()
	calls := 0
	opts := append(colorTimeOptions(&calls), WithDefines[props](map[string]string{"B": "2", "A": "1"}))

	_, err := New(state.New(ctx), vs, fsColorTime, opts...)
	require.NoError(t, err)

	src := ctx.Named("ShaderSource")[0].Args[1].(string)
	assert.Contains(t, src, "#version 300 es\n#define A 1\n#define B 2\n")
}

func TestNewPropagatesCompileErrors(t *testing.T) {
	ctx := gltest.New()

	_, err := New[props](state.New(ctx), vs, "#error nope")

	var compileErr *shader.CompileError
	require.True(t, errors.As(err, &compileErr))
	assert.Equal(t, gl.FragmentShader, compileErr.Stage)
}

func TestBoolAndIntegerValues(t *testing.T) {
	ctx := gltest.New()

	upload(ctx, 3, gl.TypeBVec2, Bool(true, false))
	upload(ctx, 4, gl.TypeUint, Ints(5))
	upload(ctx, 5, gl.TypeFloat, Uints(2))

	assert.Equal(t, []any{gl.Uniform(3), []int32{1, 0}}, ctx.Named("Uniform2iv")[0].Args)
	assert.Equal(t, []any{gl.Uniform(4), []uint32{5}}, ctx.Named("Uniform1uiv")[0].Args)
	assert.Equal(t, []any{gl.Uniform(5), []float32{2}}, ctx.Named("Uniform1fv")[0].Args)
	assert.Panics(t, func() { upload(ctx, 0, gl.UniformType(0), Floats(1)) })
}
