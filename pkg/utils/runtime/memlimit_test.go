package runtime

import (
	"os"
	"path/filepath"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withCgroup(t *testing.T, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	old := cgroupRoot
	cgroupRoot = dir
	t.Cleanup(func() { cgroupRoot = old })
}

func TestCgroupMemoryLimit(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		limit   uint64
		ok      bool
		wantErr bool
	}{
		{"v2", map[string]string{"memory.max": "1073741824\n"}, 1 << 30, true, false},
		{"v2 max", map[string]string{"memory.max": "max\n"}, 0, false, false},
		{"v1", map[string]string{"memory/memory.limit_in_bytes": "536870912"}, 1 << 29, true, false},
		{"v1 unlimited", map[string]string{"memory/memory.limit_in_bytes": "9223372036854771712"}, 0, false, false},
		{"garbage", map[string]string{"memory.max": "lots"}, 0, false, true},
		{"none", nil, 0, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withCgroup(t, tt.files)
			limit, ok, err := CgroupMemoryLimit()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.limit, limit)
		})
	}
}

func TestApplyCgroupMemoryLimit(t *testing.T) {
	t.Setenv("GOMEMLIMIT", "")
	prev := debug.SetMemoryLimit(-1)
	t.Cleanup(func() { debug.SetMemoryLimit(prev) })

	withCgroup(t, map[string]string{"memory.max": "1000000000"})
	applied, limit, err := ApplyCgroupMemoryLimit(0.5)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, uint64(1000000000), limit)
	assert.Equal(t, int64(500000000), debug.SetMemoryLimit(-1))
}

func TestApplyCgroupMemoryLimitRespectsEnv(t *testing.T) {
	t.Setenv("GOMEMLIMIT", "1GiB")
	withCgroup(t, map[string]string{"memory.max": "1000000000"})
	applied, _, err := ApplyCgroupMemoryLimit(0.5)
	require.NoError(t, err)
	assert.False(t, applied)
}
