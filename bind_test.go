package statedef

import (
	"errors"
	"strings"
	"testing"
)

var errInvalid = errors.New("invalid value")

type serverConfig struct {
	Host    string `json:"host"`
	Port    int    `json:"port"`
	Address string `json:"address"`
}

func (c serverConfig) Validate() error {
	if c.Port <= 0 {
		return errInvalid
	}
	return nil
}

func TestSnapshotEvaluatesEveryProperty(t *testing.T) {
	s := MustNew(Definitions{"a": 1, "b": Expr("a + 1")})
	snapshot, err := s.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(snapshot) != 2 || snapshot["a"] != 1 || snapshot["b"] != 2 {
		t.Fatalf("unexpected snapshot %#v", snapshot)
	}
}

func TestSnapshotStopsOnFailure(t *testing.T) {
	s := MustNew(Definitions{"a": Expr("a")})
	if _, err := s.Snapshot(); !errors.Is(err, ErrCycle) {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
}

func TestBindDecodesIntoStruct(t *testing.T) {
	s := MustNew(Definitions{
		"host":    "localhost",
		"port":    8080,
		"address": Expr(`host + ":" + string(port)`),
	})
	cfg, err := Bind[serverConfig](s)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if cfg.Host != "localhost" || cfg.Port != 8080 || cfg.Address != "localhost:8080" {
		t.Fatalf("unexpected config %+v", cfg)
	}

	mustDefine(t, s, Definitions{"port": 9090})
	cfg, err = Bind[serverConfig](s)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	if cfg.Address != "localhost:9090" {
		t.Fatalf("expected derived address to follow port, got %q", cfg.Address)
	}
}

func TestBindRunsValidation(t *testing.T) {
	s := MustNew(Definitions{"host": "localhost", "port": 0})
	_, err := Bind[serverConfig](s)
	if !errors.Is(err, errInvalid) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBindStrictRejectsUnknownProperties(t *testing.T) {
	s := MustNew(Definitions{"host": "localhost", "port": 1, "colour": "blue"})
	if _, err := Bind[serverConfig](s); err != nil {
		t.Fatalf("lenient bind: %v", err)
	}
	_, err := Bind[serverConfig](s, BindStrict())
	if err == nil || !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestBindNilStore(t *testing.T) {
	if _, err := Bind[serverConfig](nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
}
