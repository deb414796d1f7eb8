package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-gl/common"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/attributes"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/command"
	"github.com/Carmen-Shannon/oxy-gl/engine/renderer/state"
)

// DrawOption overrides the ranges derived from Attributes.
type DrawOption func(*drawConfig)

type drawConfig struct {
	count     int
	first     int
	instances int
}

// DrawCount overrides the number of vertices or indices drawn.
func DrawCount(n int) DrawOption {
	return func(cfg *drawConfig) {
		cfg.count = n
	}
}

// DrawFirst sets the first vertex, or the first index for indexed Attributes.
func DrawFirst(n int) DrawOption {
	return func(cfg *drawConfig) {
		cfg.first = n
	}
}

// DrawInstances overrides the instance count.
func DrawInstances(n int) DrawOption {
	return func(cfg *drawConfig) {
		cfg.instances = n
	}
}

// DrawFunc issues one draw inside a Batch.
type DrawFunc[P any] func(attrs *attributes.Attributes, props P) error

// Draw issues one draw of attrs with cmd on the Target. The Command is locked
// for the duration of the call, so its program and fixed-function
// configuration are applied through the device State.
//
// Parameters:
//   - t: the Target, which must be in scope
//   - cmd: the command to draw with
//   - attrs: the vertex input
//   - props: the props dynamic uniforms and textures are evaluated from, at batch index 0
//   - opts: count, first and instance overrides
//
// Returns:
//   - error: a *state.UsageError if the Target is not in scope or a Command is already locked
func Draw[P any](t *Target, cmd *command.Command[P], attrs *attributes.Attributes, props P, opts ...DrawOption) (err error) {
	if err := begin(t, cmd); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, cmd.Unlock())
	}()
	return issue(t, cmd, attrs, props, 0, newDrawConfig(opts))
}

// Batch locks cmd once and hands fn a DrawFunc, so any number of draws share
// one program bind and one fixed-function application. Every DrawFunc call
// checks that the Target and the Command still hold their locks.
//
// Parameters:
//   - t: the Target, which must be in scope
//   - cmd: the command every draw uses
//   - fn: the callback issuing the draws; each draw gets the next batch index
//   - opts: overrides applied to every draw of the batch
//
// Returns:
//   - error: a *state.UsageError on lock misuse, or the error returned by fn
func Batch[P any](t *Target, cmd *command.Command[P], fn func(draw DrawFunc[P]) error, opts ...DrawOption) (err error) {
	if err := begin(t, cmd); err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, cmd.Unlock())
	}()

	cfg := newDrawConfig(opts)
	index := 0
	return fn(func(attrs *attributes.Attributes, props P) error {
		st := t.st
		if !st.IsTargetLocked(t) || !st.IsCommandLocked(cmd) {
			return &state.UsageError{Op: "batch draw", Reason: "the target or command lock changed inside the batch"}
		}
		if err := issue(t, cmd, attrs, props, index, cfg); err != nil {
			return err
		}
		index++
		return nil
	})
}

func newDrawConfig(opts []DrawOption) drawConfig {
	var cfg drawConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func begin[P any](t *Target, cmd *command.Command[P]) error {
	if err := t.requireLock("draw"); err != nil {
		return err
	}
	if cmd.State() != t.st {
		return &state.UsageError{Op: "draw", Reason: "command was built for another device"}
	}
	return cmd.Lock()
}

// issue applies the per-draw bindings and emits the draw call chosen by the
// shape of attrs: indexed or not, instanced or not.
func issue[P any](t *Target, cmd *command.Command[P], attrs *attributes.Attributes, props P, batchIndex int, cfg drawConfig) error {
	if attrs == nil {
		return &state.UsageError{Op: "draw", Reason: "attributes are nil"}
	}
	if err := cmd.Apply(props, batchIndex); err != nil {
		return err
	}

	count := common.Coalesce(cfg.count, attrs.Count())
	instances := common.Coalesce(cfg.instances, attrs.InstanceCount())
	if count == 0 {
		return nil
	}

	st := t.st
	ctx := st.Context()
	st.PushVertexArray(attrs.VertexArray())
	mode := attrs.Topology()
	if index := attrs.IndexBuffer(); index != nil {
		offset := cfg.first * index.Type().Size()
		if instances > 0 {
			ctx.DrawElementsInstanced(mode, count, index.Type(), offset, instances)
		} else {
			ctx.DrawElements(mode, count, index.Type(), offset)
		}
	} else {
		if instances > 0 {
			ctx.DrawArraysInstanced(mode, cfg.first, count, instances)
		} else {
			ctx.DrawArrays(mode, cfg.first, count)
		}
	}
	return st.PopVertexArray()
}
