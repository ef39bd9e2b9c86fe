package app

import (
	"io"

	"github.com/vk/taskgrid/internal/handlers"
	"github.com/vk/taskgrid/modules/env_vars"
	"github.com/vk/taskgrid/modules/http_request"
	"github.com/vk/taskgrid/modules/lua"
	"github.com/vk/taskgrid/modules/print"
	"github.com/vk/taskgrid/modules/shell"
)

// coreModules is the definitive list of all modules that are compiled into
// the taskgrid binary. Output-producing handlers write to outW.
func coreModules(outW io.Writer) []handlers.Module {
	return []handlers.Module{
		&env_vars.Module{},
		&print.Module{Out: outW},
		&http_request.Module{},
		&shell.Module{Out: outW},
		&lua.Module{},
	}
}
