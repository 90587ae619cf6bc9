package testutil

import (
	"context"
	"database/sql/driver"
	"testing"
)

func TestStubConnStagesWritesUntilCommit(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()

	if err := conn.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	tx, err := conn.BeginTx(ctx, driver.TxOptions{})
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if _, err := conn.ExecContext(ctx, "INSERT INTO state(bucket,payload) VALUES($1,$2)", []driver.NamedValue{
		{Value: "dwellingFabric"},
		{Value: []byte(`{}`)},
	}); err != nil {
		t.Fatalf("ExecContext insert: %v", err)
	}
	if len(conn.State) != 0 {
		t.Fatalf("expected write to be staged, got %v", conn.State)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if string(conn.State["dwellingFabric"]) != "{}" {
		t.Fatalf("expected committed payload, got %q", conn.State["dwellingFabric"])
	}

	rows, err := conn.QueryContext(ctx, "SELECT bucket, payload FROM state", nil)
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	dest := make([]driver.Value, 2)
	if err := rows.Next(dest); err != nil {
		t.Fatalf("Next: %v", err)
	}
	if dest[0] != "dwellingFabric" {
		t.Fatalf("unexpected row values: %v", dest)
	}
}

func TestStubConnRollbackDiscards(t *testing.T) {
	ctx := context.Background()
	_, conn := NewStubDB()
	tx, err := conn.BeginTx(ctx, driver.TxOptions{})
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if _, err := conn.ExecContext(ctx, "DELETE FROM state WHERE bucket = $1", []driver.NamedValue{{Value: "x"}}); err != nil {
		t.Fatalf("ExecContext delete: %v", err)
	}
	conn.State["x"] = []byte("{}")
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if _, ok := conn.State["x"]; !ok {
		t.Fatalf("expected rollback to keep bucket")
	}
}
