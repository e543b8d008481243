package receipt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLink(t *testing.T) {
	g := QRGenerator{BaseURL: "https://khana.example/"}
	assert.Equal(t, "https://khana.example/order-success/o-1", g.Link("o-1"))
}

func TestGenerateReturnsPNG(t *testing.T) {
	png, err := QRGenerator{BaseURL: "http://localhost:3000"}.Generate("o-1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG\r\n\x1a\n")))
}
