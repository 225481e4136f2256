package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Cyclone1070/secondbrain/internal/tool/service/path"
	"github.com/stretchr/testify/require"
)

func newTestWorkspace(t *testing.T) string {
	t.Helper()
	root, err := path.CanonicaliseRoot(t.TempDir())
	require.NoError(t, err)
	return root
}

// snapshot records every path under dir with its content so tests can
// assert that a rejected call left the filesystem untouched.
func snapshot(t *testing.T, dir string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			out[p] = "<dir>"
			return nil
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		out[p] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}
