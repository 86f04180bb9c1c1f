package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestBuildRequestsFromBatch(t *testing.T) {
	batch := BatchFile{
		"pageviews": {
			{Period: "2024-01", MaxFiles: 5},
			{Period: "bad-period"},
		},
		"ez": {
			{Period: "2023-12"},
		},
		"unknown-type": {
			{Period: "2024-02"},
		},
	}

	requests := buildRequestsFromBatch(batch)
	require.Len(t, requests, 2, "invalid periods and unknown types are dropped")

	byPeriod := make(map[string]string)
	for _, req := range requests {
		byPeriod[req.Period] = req.DataType.Name
	}
	assert.Equal(t, "pageviews", byPeriod["2024-01"])
	assert.Equal(t, "pagecounts-ez", byPeriod["2023-12"])
}

func TestWriteSampleBatchFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yml")
	require.NoError(t, writeSampleBatchFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var batch BatchFile
	require.NoError(t, yaml.Unmarshal(data, &batch))
	assert.NotEmpty(t, buildRequestsFromBatch(batch), "the sample parses into valid requests")
}
