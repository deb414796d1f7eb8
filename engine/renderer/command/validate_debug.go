//go:build !release

package command

// declarationChecks enables validation of declared uniforms against the program.
const declarationChecks = true
