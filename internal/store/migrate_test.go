// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Parley Contributors

package store

import (
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/pkg/errutil"
)

func TestNewMigrator_SchemeConversion(t *testing.T) {
	// postgres:// and postgresql:// are rewritten to pgx5:// so golang-migrate
	// picks the pgx/v5 driver. Connecting to a nonexistent host fails, but it
	// must fail as a connection error, never as an unknown driver.
	for _, url := range []string{
		"postgres://localhost:1/parley",
		"postgresql://localhost:1/parley",
	} {
		_, err := NewMigrator(url)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
		assert.NotContains(t, err.Error(), "unknown driver")
	}
}

func TestNewMigrator_UnknownScheme(t *testing.T) {
	_, err := NewMigrator("badscheme://localhost:5432/parley")
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "MIGRATION_INIT_FAILED")
}

// fakeMigrate implements migrateIface without a database.
type fakeMigrate struct {
	upErr      error
	downErr    error
	stepsErr   error
	version    uint
	dirty      bool
	versionErr error
	forceErr   error
	srcErr     error
	dbErr      error
}

func (f *fakeMigrate) Up() error                    { return f.upErr }
func (f *fakeMigrate) Down() error                  { return f.downErr }
func (f *fakeMigrate) Steps(_ int) error            { return f.stepsErr }
func (f *fakeMigrate) Version() (uint, bool, error) { return f.version, f.dirty, f.versionErr }
func (f *fakeMigrate) Force(_ int) error            { return f.forceErr }
func (f *fakeMigrate) Close() (error, error)        { return f.srcErr, f.dbErr }

func TestMigrator_Up(t *testing.T) {
	t.Run("applies pending migrations", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{}}
		require.NoError(t, m.Up())
	})

	t.Run("no pending migrations is success", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{upErr: migrate.ErrNoChange}}
		require.NoError(t, m.Up())
	})

	t.Run("failure carries a code", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{upErr: errors.New("database locked")}}
		errutil.AssertErrorCode(t, m.Up(), "MIGRATION_UP_FAILED")
	})
}

func TestMigrator_Down(t *testing.T) {
	t.Run("rolls back", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{}}
		require.NoError(t, m.Down())
	})

	t.Run("nothing to roll back is success", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{downErr: migrate.ErrNoChange}}
		require.NoError(t, m.Down())
	})

	t.Run("failure carries a code", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{downErr: errors.New("constraint violation")}}
		errutil.AssertErrorCode(t, m.Down(), "MIGRATION_DOWN_FAILED")
	})
}

func TestMigrator_Steps(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{}}
		require.NoError(t, m.Steps(2))
	})

	t.Run("no change is success", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{stepsErr: migrate.ErrNoChange}}
		require.NoError(t, m.Steps(-1))
	})

	t.Run("failure carries a code", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{stepsErr: errors.New("dirty database")}}
		errutil.AssertErrorCode(t, m.Steps(1), "MIGRATION_STEPS_FAILED")
	})
}

func TestMigrator_Version(t *testing.T) {
	t.Run("reports the applied version", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{version: 3, dirty: true}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(3), version)
		assert.True(t, dirty)
	})

	t.Run("no migrations applied reports zero", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
		version, dirty, err := m.Version()
		require.NoError(t, err)
		assert.Equal(t, uint(0), version)
		assert.False(t, dirty)
	})

	t.Run("failure carries a code", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{versionErr: errors.New("connection reset")}}
		_, _, err := m.Version()
		errutil.AssertErrorCode(t, err, "MIGRATION_VERSION_FAILED")
	})
}

func TestMigrator_Force(t *testing.T) {
	t.Run("sets the version", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{}}
		require.NoError(t, m.Force(1))
	})

	t.Run("negative version is rejected", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{}}
		errutil.AssertErrorCode(t, m.Force(-1), "MIGRATION_INVALID_VERSION")
	})

	t.Run("failure carries a code", func(t *testing.T) {
		m := &Migrator{m: &fakeMigrate{forceErr: errors.New("no such version")}}
		errutil.AssertErrorCode(t, m.Force(2), "MIGRATION_FORCE_FAILED")
	})
}

func TestMigrator_Close(t *testing.T) {
	tests := []struct {
		name    string
		srcErr  error
		dbErr   error
		wantErr bool
	}{
		{name: "clean close"},
		{name: "source error", srcErr: errors.New("source"), wantErr: true},
		{name: "database error", dbErr: errors.New("database"), wantErr: true},
		{name: "both fail", srcErr: errors.New("source"), dbErr: errors.New("database"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Migrator{m: &fakeMigrate{srcErr: tt.srcErr, dbErr: tt.dbErr}}
			err := m.Close()
			if tt.wantErr {
				errutil.AssertErrorCode(t, err, "MIGRATION_CLOSE_FAILED")
			} else {
				require.NoError(t, err)
			}
		})
	}
}
