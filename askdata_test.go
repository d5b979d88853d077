package askdata

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/engine"
	"github.com/spektr-org/askdata/intent"
	"github.com/spektr-org/askdata/source"
)

const salesCSV = `region,product,sales
West,Chair,120
East,Desk,300
West,Lamp,40
`

type brokenSource struct{}

func (brokenSource) Fetch(context.Context, int, int) ([]dataset.Row, error) {
	return nil, errors.New("connection refused")
}

func testRegistry(t *testing.T) *source.Registry {
	t.Helper()
	src, err := source.NewCSVSource(strings.NewReader(salesCSV))
	require.NoError(t, err)
	reg := source.NewRegistry()
	reg.Register("sales", src)
	reg.Register("broken", brokenSource{})
	return reg
}

func TestAsk(t *testing.T) {
	ctx := context.Background()
	reg := testRegistry(t)

	resp := Ask(ctx, reg, "sales", "total sales by region", nil)
	require.NotNil(t, resp)
	assert.Equal(t, "Total sales by region:\n1. East: 300\n2. West: 160", resp.Answer)
	assert.Equal(t, intent.Bar, resp.ChartType)

	next := Ask(ctx, reg, "sales", "now as a pie chart", &resp.Context)
	require.NotNil(t, next)
	assert.Equal(t, intent.Pie, next.ChartType)
	assert.Equal(t, "region", next.Intent.Dimension)
}

func TestAskOptions(t *testing.T) {
	resp := Ask(context.Background(), testRegistry(t), "sales", "sales by product", nil, engine.WithDefaultLimit(1))
	require.NotNil(t, resp)
	assert.Equal(t, "Total sales by product:\n1. Desk: 300\n...and 2 more", resp.Answer)
}

func TestAskDeclines(t *testing.T) {
	ctx := context.Background()
	reg := testRegistry(t)

	assert.Nil(t, Ask(ctx, nil, "sales", "total sales", nil), "nil registry")
	assert.Nil(t, Ask(ctx, reg, "missing", "total sales", nil), "unknown source")
	assert.Nil(t, Ask(ctx, reg, "broken", "total sales", nil), "fetch failure")
	assert.Nil(t, Ask(ctx, reg, "sales", "explain quantum physics", nil), "not analytical")
}
