package particles

const vertexSource = `layout(location = 0) in vec2 a_corner;
in vec3 a_instance;
in vec4 a_color;
uniform float u_scale;
uniform float u_aspect;
out vec4 v_color;
out vec2 v_uv;
void main() {
    vec2 offset = a_corner * a_instance.z * u_scale;
    offset.x /= u_aspect;
    gl_Position = vec4(a_instance.xy + offset, 0.0, 1.0);
    v_color = a_color;
    v_uv = a_corner;
}`

const fragmentSource = `precision highp float;
uniform float u_intensity;
in vec4 v_color;
in vec2 v_uv;
out vec4 o_color;
void main() {
    float falloff = max(0.0, 1.0 - dot(v_uv, v_uv));
    o_color = vec4(v_color.rgb, v_color.a * falloff * u_intensity);
}`
