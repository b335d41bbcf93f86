package db

import (
	"context"
	"testing"
)

func TestPostgresRebind(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SELECT 1", "SELECT 1"},
		{"SELECT * FROM usuarios WHERE id = ?", "SELECT * FROM usuarios WHERE id = $1"},
		{
			"INSERT INTO mazos (nombre, serie) VALUES (?, ?)",
			"INSERT INTO mazos (nombre, serie) VALUES ($1, $2)",
		},
		{
			"UPDATE partidas SET estado = ? WHERE id = ? AND estado = ?",
			"UPDATE partidas SET estado = $1 WHERE id = $2 AND estado = $3",
		},
	}

	d := postgresDialect{}
	for _, tt := range tests {
		if got := d.Rebind(tt.in); got != tt.want {
			t.Errorf("Rebind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMySQLRebindIsIdentity(t *testing.T) {
	q := "SELECT * FROM usuarios WHERE id = ? AND email = ?"
	if got := (mysqlDialect{}).Rebind(q); got != q {
		t.Errorf("Rebind(%q) = %q, want unchanged", q, got)
	}
}

func TestMySQLEnumTypeIsInline(t *testing.T) {
	d := mysqlDialect{}
	got, err := d.EnsureEnumType(context.Background(), nil, "estado_partida",
		[]string{"pendiente", "aprobada", "rechazada"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "ENUM('pendiente', 'aprobada', 'rechazada')"
	if got != want {
		t.Errorf("EnsureEnumType = %q, want %q", got, want)
	}
}

func TestDialectFor(t *testing.T) {
	if _, err := dialectFor("postgres"); err != nil {
		t.Errorf("postgres: unexpected error: %v", err)
	}
	if _, err := dialectFor("mysql"); err != nil {
		t.Errorf("mysql: unexpected error: %v", err)
	}
	if _, err := dialectFor("sqlite"); err == nil {
		t.Error("sqlite: expected error, got nil")
	}
}
