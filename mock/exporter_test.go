package mock_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/serp"
	"github.com/fwojciec/serp/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporter_ImplementsInterface(t *testing.T) {
	t.Parallel()

	// Verify mock can be used where Exporter is expected
	var _ serp.Exporter = &mock.Exporter{}
}

func TestExporter_Export(t *testing.T) {
	t.Parallel()

	t.Run("delegates to ExportFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *serp.Run
		e := &mock.Exporter{
			ExportFn: func(_ context.Context, run *serp.Run) ([]serp.Artifact, error) {
				calledWith = run
				return []serp.Artifact{{Name: "test.json"}}, nil
			},
		}

		run := serp.NewRun("test", time.Now())

		artifacts, err := e.Export(context.Background(), run)

		require.NoError(t, err)
		assert.Equal(t, run, calledWith)
		assert.Equal(t, "test.json", artifacts[0].Name)
	})
}
