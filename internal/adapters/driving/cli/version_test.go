package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Short(t *testing.T) {
	assert.Equal(t, "Print the version number", versionCmd.Short)
}

func TestVersionCmd_PrintsVersion(t *testing.T) {
	for _, v := range []string{"dev", "1.4.0", "1.5.0-rc.1+3f2a9c"} {
		t.Run(v, func(t *testing.T) {
			original := version
			version = v
			defer func() { version = original }()

			out, err := execute(t, "", "version")

			require.NoError(t, err)
			assert.Equal(t, "askdocs version "+v+"\n", out)
		})
	}
}
