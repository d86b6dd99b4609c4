package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	data := Dataset{Headers: []string{"SR No", "Type", "Reason"}}
	data.Append("1", "TS", "ACR")
	data.Append("2", "PS")
	return data
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset(), "")
	require.NoError(t, err)

	assert.Equal(t, "SR No,Type,Reason\n1,TS,ACR\n2,PS,\n", string(out))
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Suspension history N-1")
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{}, "")
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{}, "")
	assert.Error(t, err)
}
