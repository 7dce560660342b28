package local_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/patchcheck/internal/model"
	"github.com/slok/patchcheck/internal/sandbox/local"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestManagerCreate(t *testing.T) {
	tests := map[string]struct {
		baseline func(t *testing.T) model.Baseline
		expFiles map[string]string
		expErr   error
	}{
		"The default baseline should be seeded.": {
			baseline: func(t *testing.T) model.Baseline { return model.DefaultBaseline() },
			expFiles: map[string]string{
				"example.py": "def add(a,b):\n    return a+b\n",
			},
		},

		"Nested file paths should create their directories.": {
			baseline: func(t *testing.T) model.Baseline {
				return model.Baseline{Files: map[string]string{
					"app/main.py":        "print(1)\n",
					"app/utils/utils.py": "",
				}}
			},
			expFiles: map[string]string{
				"app/main.py":        "print(1)\n",
				"app/utils/utils.py": "",
			},
		},

		"A source dir should be copied and files should overlay it.": {
			baseline: func(t *testing.T) model.Baseline {
				src := t.TempDir()
				require.NoError(t, os.MkdirAll(filepath.Join(src, "pkg"), 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(src, "pkg", "a.py"), []byte("a"), 0o644))
				require.NoError(t, os.WriteFile(filepath.Join(src, "b.py"), []byte("b"), 0o644))
				require.NoError(t, os.Symlink("/etc/passwd", filepath.Join(src, "link")))
				return model.Baseline{
					SourceDir: src,
					Files:     map[string]string{"b.py": "overlay"},
				}
			},
			expFiles: map[string]string{
				"b.py":     "overlay",
				"pkg/a.py": "a",
			},
		},

		"A meta dir in the source dir should not be copied.": {
			baseline: func(t *testing.T) model.Baseline {
				src := t.TempDir()
				require.NoError(t, os.MkdirAll(filepath.Join(src, ".patchcheck"), 0o755))
				require.NoError(t, os.WriteFile(filepath.Join(src, ".patchcheck", "patch.diff"), []byte("stale"), 0o644))
				require.NoError(t, os.WriteFile(filepath.Join(src, "a.py"), []byte("a"), 0o644))
				return model.Baseline{SourceDir: src}
			},
			expFiles: map[string]string{
				"a.py": "a",
			},
		},

		"A baseline file inside the meta dir should fail.": {
			baseline: func(t *testing.T) model.Baseline {
				return model.Baseline{Files: map[string]string{
					"example.py":           "",
					".patchcheck/keep.txt": "tracked",
				}}
			},
			expErr: model.ErrNotValid,
		},

		"An empty baseline should create an empty sandbox.": {
			baseline: func(t *testing.T) model.Baseline { return model.Baseline{} },
			expFiles: map[string]string{},
		},

		"A file escaping the sandbox should fail.": {
			baseline: func(t *testing.T) model.Baseline {
				return model.Baseline{Files: map[string]string{"../evil.py": ""}}
			},
			expErr: model.ErrNotValid,
		},

		"An absolute file path should fail.": {
			baseline: func(t *testing.T) model.Baseline {
				return model.Baseline{Files: map[string]string{"/etc/evil": ""}}
			},
			expErr: model.ErrNotValid,
		},

		"A missing source dir should fail with a sandbox error.": {
			baseline: func(t *testing.T) model.Baseline {
				return model.Baseline{SourceDir: filepath.Join(t.TempDir(), "missing")}
			},
			expErr: model.ErrSandbox,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			baseDir := t.TempDir()
			m, err := local.NewManager(local.ManagerConfig{BaseDir: baseDir})
			require.NoError(err)

			sb, err := m.Create(context.Background(), test.baseline(t))

			if test.expErr != nil {
				assert.ErrorIs(err, test.expErr)
				assert.Nil(sb)

				// Nothing should be left behind.
				entries, err := os.ReadDir(baseDir)
				require.NoError(err)
				assert.Empty(entries)
				return
			}
			require.NoError(err)

			assert.NotEmpty(sb.ID)
			assert.Equal(baseDir, filepath.Dir(sb.Root))
			assert.DirExists(sb.Root)

			gotFiles := []string{}
			for p, content := range test.expFiles {
				assert.Equal(content, readFile(t, sb.Path(p)))
				gotFiles = append(gotFiles, p)
			}
			assert.ElementsMatch(gotFiles, sb.Files)
			assert.NoFileExists(sb.Path("link"))
			assert.NoDirExists(sb.Path(".patchcheck"))

			m.Destroy(context.Background(), sb)
			assert.NoDirExists(sb.Root)
		})
	}
}

func TestManagerCreateUnique(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	m, err := local.NewManager(local.ManagerConfig{BaseDir: t.TempDir()})
	require.NoError(err)

	sb1, err := m.Create(context.Background(), model.DefaultBaseline())
	require.NoError(err)
	sb2, err := m.Create(context.Background(), model.DefaultBaseline())
	require.NoError(err)

	assert.NotEqual(sb1.ID, sb2.ID)
	assert.NotEqual(sb1.Root, sb2.Root)

	// Mutating one sandbox should not be visible in the other.
	require.NoError(os.WriteFile(sb1.Path("example.py"), []byte("changed"), 0o644))
	assert.Equal("def add(a,b):\n    return a+b\n", readFile(t, sb2.Path("example.py")))

	m.Destroy(context.Background(), sb1)
	assert.NoDirExists(sb1.Root)
	assert.DirExists(sb2.Root)
	m.Destroy(context.Background(), sb2)
}

func TestManagerDestroy(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	baseDir := t.TempDir()
	m, err := local.NewManager(local.ManagerConfig{BaseDir: baseDir})
	require.NoError(err)

	sb, err := m.Create(context.Background(), model.DefaultBaseline())
	require.NoError(err)

	// Destroying multiple times or nil sandboxes should not panic.
	m.Destroy(context.Background(), sb)
	m.Destroy(context.Background(), sb)
	m.Destroy(context.Background(), nil)
	assert.NoDirExists(sb.Root)

	// Directories that are not sandboxes should never be removed.
	other := t.TempDir()
	m.Destroy(context.Background(), &model.Sandbox{ID: "x", Root: other})
	assert.DirExists(other)
}
