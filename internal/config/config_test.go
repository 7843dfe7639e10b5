package config

import (
	"os"
	"path/filepath"
	"testing"

	"fusebridge/internal/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"LOG_LEVEL", "LOG_FILE", "LOG_NO_COLOR", "FUSE_DEBUG",
	"FUSEBRIDGE_DRIVER", "FUSEBRIDGE_FSNAME", "FUSEBRIDGE_ALLOW_OTHER", "FUSEBRIDGE_DEBUG",
}

// clearEnv unsets every key for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, logging.LevelInfo, cfg.LogLevel)
	assert.Equal(t, defaultFSName, cfg.FSName)
	assert.Equal(t, DefaultDriver(), cfg.Driver)
	assert.False(t, cfg.AllowOther)
	assert.False(t, cfg.Debug)
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, `
LOG_LEVEL=trace
FUSEBRIDGE_DRIVER=gofuse
FUSEBRIDGE_FSNAME=hello
FUSEBRIDGE_ALLOW_OTHER=yes
LOG_NO_COLOR=1
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, logging.LevelTrace, cfg.LogLevel)
	assert.Equal(t, DriverGoFuse, cfg.Driver)
	assert.Equal(t, "hello", cfg.FSName)
	assert.True(t, cfg.AllowOther)
	assert.True(t, cfg.LoggingOptions().NoColor)
}

func TestLoadEnvironmentWins(t *testing.T) {
	clearEnv(t)
	path := writeEnvFile(t, "FUSEBRIDGE_DRIVER=gofuse\nLOG_LEVEL=error\n")
	t.Setenv("FUSEBRIDGE_DRIVER", "bazil")
	t.Setenv("FUSE_DEBUG", "1")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DriverBazil, cfg.Driver)
	assert.Equal(t, logging.LevelDebug, cfg.LogLevel)
}

func TestLoadErrors(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)

	_, err = Load(writeEnvFile(t, "FUSEBRIDGE_DRIVER=nfs\n"))
	assert.ErrorContains(t, err, "unknown driver")

	_, err = Load(writeEnvFile(t, "LOG_LEVEL=loud\n"))
	assert.ErrorContains(t, err, "LOG_LEVEL")
}

func TestParseMountArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want MountOptions
	}{
		{
			name: "separate -o",
			args: []string{"hellofs", "-o", "fsname=hello,allow_other", "-f", "-s", "-o", "auto_unmount", "/mnt"},
			want: MountOptions{FSName: "hello", AllowOther: true, Ignored: []string{"auto_unmount"}},
		},
		{
			name: "joined -o",
			args: []string{"-oro,subtype=demo,default_permissions"},
			want: MountOptions{ReadOnly: true, Subtype: "demo", DefaultPermissions: true},
		},
		{
			name: "debug",
			args: []string{"-d", "/mnt"},
			want: MountOptions{Debug: true},
		},
		{
			name: "rw after ro",
			args: []string{"-o", "ro", "-o", "rw,debug"},
			want: MountOptions{Debug: true},
		},
		{
			name: "trailing -o",
			args: []string{"/mnt", "-o"},
			want: MountOptions{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseMountArgs(tt.args))
		})
	}
}

func TestMountOptionsArgs(t *testing.T) {
	opts := MountOptions{FSName: "hello", AllowOther: true, ReadOnly: true}
	assert.Equal(t, []string{"-o", "fsname=hello,allow_other,ro"}, opts.Args())
	assert.Equal(t, opts.FSName, ParseMountArgs(opts.Args()).FSName)
	assert.Nil(t, MountOptions{}.Args())
}

func TestOwner(t *testing.T) {
	t.Run("Process", func(t *testing.T) {
		for _, key := range []string{"PUID", "PGID"} {
			t.Setenv(key, "")
			require.NoError(t, os.Unsetenv(key))
		}
		uid, gid := Owner()
		assert.EqualValues(t, os.Getuid(), uid)
		assert.EqualValues(t, os.Getgid(), gid)
	})

	t.Run("Override", func(t *testing.T) {
		t.Setenv("PUID", "1001")
		t.Setenv("PGID", "1002")
		uid, gid := Owner()
		assert.EqualValues(t, 1001, uid)
		assert.EqualValues(t, 1002, gid)
	})

	t.Run("Invalid", func(t *testing.T) {
		t.Setenv("PUID", "-1")
		t.Setenv("PGID", "4294967296")
		uid, gid := Owner()
		assert.EqualValues(t, os.Getuid(), uid)
		assert.EqualValues(t, os.Getgid(), gid)
	})
}
