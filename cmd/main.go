package main

import (
	"github.com/cristalhq/acmd"
)

// cli: https://github.com/cristalhq/acmd
func main() {
	cmds := []acmd.Command{
		{
			Name:        "run",
			Description: "Bind the configured listeners and serve connections",
			ExecFunc:    runServe,
		},
		{
			Name:        "verify",
			Description: "Verify the config: resolve addresses and protocols without binding",
			ExecFunc:    runConfigVerify,
		},
		{
			Name:        "config",
			Description: "Generate a sample config file",
			ExecFunc:    runConfigGenerate,
		},
	}
	r := acmd.RunnerOf(cmds, acmd.Config{
		AppName: "thin",
		Version: "2026.1",
	})
	if err := r.Run(); err != nil {
		r.Exit(err)
	}
}
