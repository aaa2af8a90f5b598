package hcl

import "github.com/hashicorp/hcl/v2"

// fileRoot is the top-level structure of a job file.
type fileRoot struct {
	Config []*configBlock `hcl:"config,block"`
	Tasks  []*taskBlock   `hcl:"task,block"`
}

// configBlock holds plain key = value settings.
type configBlock struct {
	Body hcl.Body `hcl:",remain"`
}

// taskBlock is a single `task "<variant>" "<name>"` block. Every attribute
// other than the nested resource_config block is a task attribute.
type taskBlock struct {
	Variant        string       `hcl:"variant,label"`
	Name           string       `hcl:"name,label"`
	ResourceConfig *configBlock `hcl:"resource_config,block"`
	Body           hcl.Body     `hcl:",remain"`
}
