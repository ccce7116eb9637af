package main

import (
	"context"

	"github.com/xsj0jsx/thin/app"
)

func runServe(runCtx context.Context, args []string) error {
	return app.RunWith(runCtx, args, false)
}
