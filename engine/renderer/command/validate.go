package command

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-gl/engine/gl"
)

// validate compares the declared uniforms and textures with the active uniforms
// of the program, in both directions.
func (c *Command[P]) validate(program gl.Program) error {
	active := map[string]gl.UniformType{}
	var order []string
	for i := 0; i < c.ctx.ActiveUniforms(program); i++ {
		info := c.ctx.ActiveUniform(program, i)
		name := normalizeName(info.Name)
		active[name] = info.Type
		order = append(order, name)
	}

	declErr := &DeclarationError{}
	declared := map[string]bool{}

	check := func(name string, matches func(gl.UniformType) bool, want string) {
		key := normalizeName(name)
		declared[key] = true
		typ, ok := active[key]
		switch {
		case !ok:
			declErr.Missing = append(declErr.Missing, name)
		case !matches(typ):
			declErr.Mismatched = append(declErr.Mismatched, fmt.Sprintf("%s (declared %s, program %s)", name, want, typ))
		}
	}

	for _, d := range c.uniforms {
		want := d.uniform.typ
		check(d.name, func(t gl.UniformType) bool { return t == want }, want.String())
	}
	for i := range c.textures {
		t := &c.textures[i]
		check(t.name, gl.UniformType.IsSampler, "sampler")
		// Textures come from props, so their target is checked on Apply.
		t.target, _ = active[normalizeName(t.name)].SamplerTarget()
	}
	for _, name := range order {
		if !declared[name] {
			declErr.Undeclared = append(declErr.Undeclared, name)
		}
	}

	if len(declErr.Missing)+len(declErr.Mismatched)+len(declErr.Undeclared) > 0 {
		return declErr
	}
	return nil
}
