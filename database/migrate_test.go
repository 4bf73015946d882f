package database_test

import (
	"testing"

	"guildkeeper/database"
	"guildkeeper/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSteps(t *testing.T) {
	tests := []struct {
		arg     string
		want    int
		wantErr bool
	}{
		{arg: "", want: 1},
		{arg: "3", want: 3},
		{arg: "0", wantErr: true},
		{arg: "-2", wantErr: true},
		{arg: "all", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			got, err := database.ParseSteps(tt.arg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMigrationDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SUPABASE_URL", "postgres://u:p@db.example:5432")
	t.Setenv("DATABASE_NAME", "guildkeeper")
	assert.Equal(t, "postgres://u:p@db.example:5432/guildkeeper?sslmode=disable", database.MigrationDatabaseURL())

	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432")
	assert.Equal(t, "postgres://u:p@localhost:5432/guildkeeper?sslmode=disable", database.MigrationDatabaseURL())
}

func TestMigrator_DownAndUp(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testDB := testutil.SetupTestDatabase(t)

	migrator, err := database.NewMigrator(testDB.URL)
	require.NoError(t, err)
	defer migrator.Close()

	status, err := migrator.Status()
	require.NoError(t, err)
	assert.Equal(t, database.SchemaVersion{Version: 1}, status)

	changed, err := migrator.Up()
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = migrator.Down(1)
	require.NoError(t, err)
	assert.True(t, changed)

	status, err = migrator.Status()
	require.NoError(t, err)
	assert.True(t, status.Empty)

	require.NoError(t, database.EnsureSchema(testDB.URL))
	status, err = migrator.Status()
	require.NoError(t, err)
	assert.Equal(t, database.SchemaVersion{Version: 1}, status)
}
