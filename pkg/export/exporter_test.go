package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRendersHeaderAndRows(t *testing.T) {
	out, err := CSV(Dataset{
		Headers: []string{"Name", "Count"},
		Rows:    [][]string{{"a", "1"}, {"b", "2"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Name,Count\na,1\nb,2\n", string(out))
}

func TestCSVRejectsRaggedRows(t *testing.T) {
	_, err := CSV(Dataset{
		Headers: []string{"Name", "Count"},
		Rows:    [][]string{{"only-one-cell"}},
	})
	require.Error(t, err)
}

func TestPDFOutputsDocument(t *testing.T) {
	out, err := PDF(Dataset{
		Title:   "Report",
		Headers: []string{"Name"},
		Rows:    [][]string{{"a"}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}
