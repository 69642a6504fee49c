//go:build cgo

package audio

import (
	"log/slog"

	"github.com/gen2brain/malgo"
)

// Context owns a miniaudio context for the lifetime of one engine generation
type Context struct {
	ctx *malgo.AllocatedContext
}

// NewContext initializes a miniaudio context, routing its log output to slog
func NewContext() (*Context, error) {
	slog.Debug("initializing miniaudio context")

	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		slog.Debug("miniaudio", "message", message)
	})
	if err != nil {
		slog.Error("failed to initialize miniaudio context", "error", err)
		return nil, err
	}

	return &Context{ctx: ctx}, nil
}

// Close uninitializes and frees the context. Closing twice is a no-op.
func (c *Context) Close() error {
	if c.ctx == nil {
		return nil
	}

	// malgo requires both Uninit() and Free()
	if err := c.ctx.Uninit(); err != nil {
		slog.Error("failed to uninitialize miniaudio context", "error", err)
		return err
	}
	c.ctx.Free()
	c.ctx = nil

	slog.Debug("miniaudio context closed")
	return nil
}

// Raw returns the malgo context used for device creation
func (c *Context) Raw() malgo.Context {
	return c.ctx.Context
}
