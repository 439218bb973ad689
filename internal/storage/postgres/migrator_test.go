package postgres

import (
	"testing"
	"testing/fstest"
)

func migrationFile(body string) *fstest.MapFile {
	return &fstest.MapFile{Data: []byte(body)}
}

func TestLoadMigrationsFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/migrations/0002_add_index.up.sql":          migrationFile("CREATE INDEX idx ON shipments (status);"),
		"sql/migrations/0002_add_index.down.sql":        migrationFile("DROP INDEX idx;"),
		"sql/migrations/0001_create_shipments.up.sql":   migrationFile("CREATE TABLE shipments (id BIGSERIAL PRIMARY KEY);"),
		"sql/migrations/0001_create_shipments.down.sql": migrationFile("DROP TABLE shipments;"),
	}

	migrations, err := loadMigrationsFromFS(fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Errorf("migrations must be ordered by version, got %d then %d",
			migrations[0].Version, migrations[1].Version)
	}
	if migrations[0].Name != "create_shipments" {
		t.Errorf("unexpected name: %s", migrations[0].Name)
	}
	if migrations[0].UpSQL == "" || migrations[0].DownSQL == "" {
		t.Error("both up and down bodies must be loaded")
	}
}

func TestLoadMigrationsFromFS_Errors(t *testing.T) {
	cases := []struct {
		name string
		fsys fstest.MapFS
	}{
		{
			name: "no files",
			fsys: fstest.MapFS{},
		},
		{
			name: "missing down pair",
			fsys: fstest.MapFS{
				"sql/migrations/0001_create_shipments.up.sql": migrationFile("CREATE TABLE shipments ();"),
			},
		},
		{
			name: "empty body",
			fsys: fstest.MapFS{
				"sql/migrations/0001_create_shipments.up.sql":   migrationFile("   "),
				"sql/migrations/0001_create_shipments.down.sql": migrationFile("DROP TABLE shipments;"),
			},
		},
		{
			name: "bad file name",
			fsys: fstest.MapFS{
				"sql/migrations/create_shipments.sql": migrationFile("CREATE TABLE shipments ();"),
			},
		},
		{
			name: "name mismatch for one version",
			fsys: fstest.MapFS{
				"sql/migrations/0001_create_shipments.up.sql": migrationFile("CREATE TABLE shipments ();"),
				"sql/migrations/0001_create_orders.down.sql":  migrationFile("DROP TABLE orders;"),
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := loadMigrationsFromFS(tc.fsys); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	migrations, err := loadMigrationsFromFS(migrationsFS)
	if err != nil {
		t.Fatalf("embedded migrations must load: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected at least one embedded migration")
	}
}
