package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrintBuildData(t *testing.T) {
	oldV, oldD, oldC := Version, Date, Commit
	t.Cleanup(func() { Version, Date, Commit = oldV, oldD, oldC })

	Version, Date, Commit = "1.2.0", "", "abc123"

	var buf bytes.Buffer
	PrintBuildData(&buf)

	require.Equal(t, "Build version: 1.2.0\nBuild date: N/A\nBuild commit: abc123\n", buf.String())
}
