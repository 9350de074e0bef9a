package fs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bruhlabs/flowrun/model"
	"github.com/bruhlabs/flowrun/model/execution"
	"github.com/bruhlabs/flowrun/service/dao"
)

func TestService_RoundTrip(t *testing.T) {
	ctx := context.Background()
	service, err := New("mem://localhost/flowrun/executions")
	assert.NoError(t, err)

	exec := execution.New("flow-1", map[string]interface{}{"topic": "go"}, nil)
	exec.MarkRunning()
	exec.AddNodeResult(execution.NewNodeResult("in", model.TypeInput).Succeed("go"))
	assert.NoError(t, service.Save(ctx, exec))

	// a partially written trace survives a crash and stays inspectable
	loaded, err := service.Load(ctx, exec.ID)
	assert.NoError(t, err)
	assert.Equal(t, execution.StatusRunning, loaded.Status)
	assert.Len(t, loaded.Data.NodeResults, 1)
	assert.Equal(t, "go", loaded.Data.NodeResults[0].Output)

	exec.MarkCompleted("go")
	assert.NoError(t, service.Save(ctx, exec))
	loaded, err = service.Load(ctx, exec.ID)
	assert.NoError(t, err)
	assert.Equal(t, execution.StatusCompleted, loaded.Status)
	assert.Equal(t, "go", loaded.Data.FinalOutput)

	records, err := service.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, records, 1)

	assert.NoError(t, service.Delete(ctx, exec.ID))
	_, err = service.Load(ctx, exec.ID)
	assert.ErrorIs(t, err, dao.ErrNotFound)
}

func TestService_InvalidInput(t *testing.T) {
	ctx := context.Background()
	service, err := New("mem://localhost/flowrun/executions-invalid")
	assert.NoError(t, err)

	assert.ErrorIs(t, service.Save(ctx, nil), dao.ErrNilEntity)
	assert.ErrorIs(t, service.Save(ctx, &execution.FlowExecution{}), dao.ErrInvalidID)
	_, err = service.Load(ctx, "")
	assert.ErrorIs(t, err, dao.ErrInvalidID)
}
