package cmd

import (
	"testing"

	"github.com/bcmimarlik/site/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatOf(t *testing.T) {
	assert.Equal(t, "yaml", formatOf("site.yaml"))
	assert.Equal(t, "yaml", formatOf("./x/SITE.YML"))
	assert.Equal(t, "json", formatOf("site.json"))
	assert.Equal(t, "json", formatOf("site"))
}

func TestEncodeDecodeDocument(t *testing.T) {
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			data, err := encodeDocument(model.Default(), format)
			require.NoError(t, err)

			doc, err := decodeDocument(data, format)
			require.NoError(t, err)
			assert.Equal(t, model.Default(), doc)
		})
	}

	_, err := encodeDocument(model.Default(), "xml")
	assert.Error(t, err)
}

func TestDecodeDocument_Invalid(t *testing.T) {
	_, err := decodeDocument([]byte(`{"contact": {}, "links": {}}`), "json")
	assert.ErrorIs(t, err, model.ErrProjectsNotList)

	_, err = decodeDocument([]byte("contact: {}\n"), "yaml")
	assert.ErrorIs(t, err, model.ErrProjectsNotList)
}
