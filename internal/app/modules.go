package app

import (
	"github.com/CadentTech/bigrays/internal/registry"
	"github.com/CadentTech/bigrays/modules/csv"
	"github.com/CadentTech/bigrays/modules/env_vars"
	"github.com/CadentTech/bigrays/modules/http_client"
	"github.com/CadentTech/bigrays/modules/print"
	"github.com/CadentTech/bigrays/modules/s3"
	"github.com/CadentTech/bigrays/modules/sns"
	"github.com/CadentTech/bigrays/modules/socketio"
	"github.com/CadentTech/bigrays/modules/sql"
)

// CoreModules returns the modules compiled into the bigrays binary.
func CoreModules() []registry.Module {
	return []registry.Module{
		&env_vars.Module{},
		&print.Module{},
		&csv.Module{},
		&sql.Module{},
		&s3.Module{},
		&sns.Module{},
		&http_client.Module{},
		&socketio.Module{},
	}
}
