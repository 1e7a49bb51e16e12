package gormrepo

import (
	"reflect"
	"testing"
	"testing/fstest"

	schema "tradewinds/db"
)

func TestMigrationFiles_SortedSQLOnly(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_bigint_cargo.sql": {Data: []byte("SELECT 2;")},
		"0001_init.sql":         {Data: []byte("SELECT 1;")},
		"README.md":             {Data: []byte("notes")},
		"archive/0000_old.sql":  {Data: []byte("SELECT 0;")},
	}
	got, err := migrationFiles(fsys)
	if err != nil {
		t.Fatalf("migrationFiles error: %v", err)
	}
	want := []string{"0001_init.sql", "0002_bigint_cargo.sql"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("migrationFiles = %v, want %v", got, want)
	}
}

func TestMigrationFiles_EmbeddedSchema(t *testing.T) {
	got, err := migrationFiles(schema.Migrations())
	if err != nil {
		t.Fatalf("migrationFiles error: %v", err)
	}
	if len(got) < 2 || got[0] != "0001_init.sql" {
		t.Fatalf("unexpected embedded migrations %v", got)
	}
}
