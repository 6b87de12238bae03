package bootstrap

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBannerFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banner.txt")

	var buf bytes.Buffer
	require.NoError(t, PrintBannerFromFile(&buf, path, "LingStreamX"))
	assert.Contains(t, buf.String(), "LingStreamX")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "LingStreamX\n", string(data))

	// 已存在的文件不会被覆盖
	require.NoError(t, os.WriteFile(path, []byte("custom\n\nbanner"), 0o644))
	buf.Reset()
	require.NoError(t, PrintBannerFromFile(&buf, path, "LingStreamX"))
	assert.Contains(t, buf.String(), "custom")
	assert.Contains(t, buf.String(), "banner")
	assert.NotContains(t, buf.String(), "LingStreamX")
}
