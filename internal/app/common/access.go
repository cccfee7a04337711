package common

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var errNoAppContext = errors.New("application context is not initialized")

// WithApp stores app in ctx for the subcommands.
func WithApp(ctx context.Context, app *AppContext) context.Context {
	return context.WithValue(ctx, ContextKeyApp, app)
}

func FromContext(ctx context.Context) (*AppContext, error) {
	if ctx == nil {
		return nil, errNoAppContext
	}
	app, ok := ctx.Value(ContextKeyApp).(*AppContext)
	if !ok || app == nil {
		return nil, errNoAppContext
	}
	return app, nil
}

func FromCommand(cmd *cobra.Command) (*AppContext, error) {
	return FromContext(cmd.Context())
}
