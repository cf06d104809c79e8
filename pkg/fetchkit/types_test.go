package fetchkit_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetchkit-io/fetchkit/pkg/fetchkit"
)

func TestListResponse_Decode(t *testing.T) {
	t.Parallel()

	body := `{
		"pagination": {
			"page": 2,
			"total_pages": 4,
			"per_page": 2,
			"total_results": 7
		},
		"resources": [
			{"guid": "w-3", "name": "widget 3"},
			{"guid": "w-4", "name": "widget 4"}
		]
	}`

	var response fetchkit.ListResponse[widget]

	err := json.Unmarshal([]byte(body), &response)
	require.NoError(t, err)

	assert.Equal(t, 2, response.Pagination.Page)
	assert.Equal(t, 4, response.Pagination.TotalPages)
	assert.Equal(t, 2, response.Pagination.PerPage)
	assert.Equal(t, 7, response.Pagination.Total)
	assert.True(t, response.Pagination.HasNext())

	require.Len(t, response.Resources, 2)
	assert.Equal(t, "w-3", response.Resources[0].GUID)
	assert.Equal(t, "widget 4", response.Resources[1].Name)
}

func TestListResponse_DecodeEmpty(t *testing.T) {
	t.Parallel()

	body := `{
		"pagination": {"page": 1, "total_pages": 1, "per_page": 50, "total_results": 0},
		"resources": []
	}`

	var response fetchkit.ListResponse[widget]

	err := json.Unmarshal([]byte(body), &response)
	require.NoError(t, err)

	assert.Empty(t, response.Resources)
	assert.False(t, response.Pagination.HasNext())
}
