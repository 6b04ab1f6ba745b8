package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"002_add_index.sql": {Data: []byte("CREATE INDEX x ON t (a);")},
		"001_init.sql":      {Data: []byte("CREATE TABLE t (a INT);")},
		"README.md":         {Data: []byte("ignored")},
	}

	migrations, err := ReadMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "init", migrations[0].Name)
	assert.Equal(t, "add_index", migrations[1].Name)
}

func TestReadMigrations_Invalid(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{"missing underscore", fstest.MapFS{"001.sql": {Data: []byte("")}}},
		{"bad version", fstest.MapFS{"abc_init.sql": {Data: []byte("")}}},
		{"zero version", fstest.MapFS{"000_init.sql": {Data: []byte("")}}},
		{"duplicate", fstest.MapFS{"001_a.sql": {Data: []byte("")}, "001_b.sql": {Data: []byte("")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadMigrations(tt.fsys)
			assert.Error(t, err)
		})
	}
}
