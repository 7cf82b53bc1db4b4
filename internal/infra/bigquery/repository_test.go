package bigquery

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dvloznov/finance-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

func TestIsAlreadyExists(t *testing.T) {
	conflict := &googleapi.Error{Code: 409, Message: "Already Exists: Table"}

	assert.True(t, isAlreadyExists(conflict))
	assert.True(t, isAlreadyExists(fmt.Errorf("create: %w", conflict)))
	assert.False(t, isAlreadyExists(&googleapi.Error{Code: 403}))
	assert.False(t, isAlreadyExists(errors.New("boom")))
}

func TestRepository_TableRefAndEmptyInsert(t *testing.T) {
	ctx := context.Background()
	repo, err := NewRepository(ctx, "demo-project", "finance", "financial_data", option.WithoutAuthentication())
	require.NoError(t, err)
	defer repo.Close()

	assert.Equal(t, "demo-project.finance.financial_data", repo.TableRef())
	assert.NoError(t, repo.InsertDataset(ctx, domain.NewDataset(nil)))
}
