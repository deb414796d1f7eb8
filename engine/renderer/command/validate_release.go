//go:build release

package command

// declarationChecks is off in release builds; a mismatch then surfaces as a
// LocationError or is silently ignored for undeclared uniforms.
const declarationChecks = false
