// Package askdata answers natural-language analytical questions over tabular
// data.
//
// Usage:
//
//	reg := source.NewRegistry()
//	src, _ := source.OpenCSVFile("sales.csv")
//	reg.Register("sales", src)
//
//	resp := askdata.Ask(ctx, reg, "sales", "total revenue by region", nil)
//	if resp == nil {
//	    // not an analytical question, or the data could not be loaded
//	}
//	next := askdata.Ask(ctx, reg, "sales", "now as a pie chart", &resp.Context)
//
// The engine package does all computation locally; only the optional
// fallback package calls an external service.
package askdata

import (
	"context"

	"github.com/spektr-org/askdata/engine"
	"github.com/spektr-org/askdata/intent"
	"github.com/spektr-org/askdata/source"
)

// Ask loads the data source id from reg and answers query against it. Any
// load failure, including an unknown id, yields nil, the same as a question
// the engine declines.
func Ask(ctx context.Context, reg *source.Registry, id, query string, prev *intent.Context, opts ...engine.Option) *engine.Response {
	if reg == nil {
		return nil
	}
	view, err := reg.LoadView(ctx, id)
	if err != nil {
		return nil
	}
	return engine.AnalyzeView(query, view, prev, opts...)
}
