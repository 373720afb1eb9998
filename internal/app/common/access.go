package common

import (
	"github.com/juju/errors"
	"github.com/spf13/cobra"
)

func FromCommand(cmd *cobra.Command) (*AppContext, error) {
	v := cmd.Context().Value(ContextKeyApp)
	app, ok := v.(*AppContext)
	if !ok || app == nil {
		return nil, errors.NotProvisionedf("application context")
	}
	return app, nil
}
