// Package bigrays declares and runs ETL jobs from Go code.
//
// A job is an ordered list of tasks. Each task may need a resource, such as
// a database session or an object store client; consecutive tasks that need
// the same kind share one open resource, which is closed as soon as a task
// needs something else or the run ends.
//
//	var (
//		extract = bigrays.Declare(bigrays.SQLQuery.MustDefine("extract", bigrays.Attributes{
//			"query": "select * from sales where day = '{DAY}'",
//		}))
//		upload = bigrays.Declare(bigrays.Must(bigrays.ToS3.DefineDeferred("upload",
//			bigrays.Attributes{"bucket": "reports", "key": "sales/{DAY}.csv"},
//			map[string]bigrays.Expression{"input": bigrays.OutputOf("extract")},
//		)))
//	)
//
//	func main() {
//		bigrays.Config().Set("DAY", "2024-01-01")
//		if err := bigrays.Run(context.Background()); err != nil {
//			log.Fatal(err)
//		}
//	}
//
// Configuration comes from BIGRAYS_* environment variables and explicit
// Config().Set calls, which always win.
package bigrays

import (
	"context"

	"github.com/CadentTech/bigrays/internal/app"
	"github.com/CadentTech/bigrays/internal/config"
	"github.com/CadentTech/bigrays/internal/executor"
	"github.com/CadentTech/bigrays/internal/functional"
	"github.com/CadentTech/bigrays/internal/registry"
	"github.com/CadentTech/bigrays/internal/resource"
	"github.com/CadentTech/bigrays/internal/task"
	"github.com/CadentTech/bigrays/modules/csv"
	"github.com/CadentTech/bigrays/modules/s3"
	"github.com/CadentTech/bigrays/modules/sns"
	"github.com/CadentTech/bigrays/modules/sql"
)

type (
	Definition = task.Definition
	Attributes = task.Attributes
	Variant    = task.Variant
	Env        = task.Env
	Store      = config.Store
	Kind       = resource.Kind
	Expression = config.Expression
)

// Variants of the core modules.
var (
	SQLQuery        = sql.QueryVariant
	SQLExecute      = sql.ExecuteVariant
	SQLWrite        = sql.WriteVariant
	ToS3            = s3.UploadVariant
	FromS3          = s3.DownloadVariant
	SNSPublish      = sns.PublishVariant
	SNSPublishEmail = sns.EmailVariant
	ToCSV           = csv.WriteVariant
)

// Config returns the process-wide config Store.
func Config() *Store { return config.Process() }

// Declare appends d to the process-wide task list and returns it.
func Declare(d *Definition) *Definition { return task.Declare(d) }

// Func builds a definition from a plain function that needs a resource of
// kind, or none when kind is empty. It does not declare it.
func Func(name string, kind Kind, fn func(ctx context.Context, env *Env) (any, error)) *Definition {
	return task.Func(name, kind, fn)
}

// Must panics if err is not nil.
func Must(d *Definition, err error) *Definition {
	if err != nil {
		panic(err)
	}
	return d
}

// OutputOf is an attribute value that resolves to the output of the named
// task when the owning task is about to run.
func OutputOf(name string) Expression { return config.OutputOf(name) }

// ValueOf is an attribute value that resolves to a config value when the
// owning task is about to run.
func ValueOf(key string) Expression { return config.ValueOf(key) }

func runner() *executor.Runner {
	return executor.New(registry.New(app.CoreModules()...), config.Process())
}

// Run runs plan in order, or every declared task when plan is empty.
func Run(ctx context.Context, plan ...*Definition) error {
	return runner().Run(ctx, plan...)
}

// Call runs v once with attrs and returns its output.
func Call(ctx context.Context, v *Variant, attrs Attributes) (any, error) {
	return functional.Call(ctx, runner(), v, attrs)
}
