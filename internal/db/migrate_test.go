package db

import "testing"

func TestMigrateURL(t *testing.T) {
	tests := map[string]string{
		"postgres://u:p@localhost:5432/erp?sslmode=disable": "pgx5://u:p@localhost:5432/erp?sslmode=disable",
		"postgresql://u:p@localhost:5432/erp":               "pgx5://u:p@localhost:5432/erp",
		"pgx5://u:p@localhost:5432/erp":                     "pgx5://u:p@localhost:5432/erp",
	}
	for in, want := range tests {
		if got := MigrateURL(in); got != want {
			t.Fatalf("MigrateURL(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEmbeddedMigrationsOpen(t *testing.T) {
	if _, err := NewMigratorSource(); err != nil {
		t.Fatalf("embedded migrations: %v", err)
	}
}
