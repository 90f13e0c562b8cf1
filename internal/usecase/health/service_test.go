package health

import (
	"context"
	"errors"
	"testing"
)

func ok() CheckFunc { return func(context.Context) error { return nil } }

func fail(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

func TestCheck_AllHealthy(t *testing.T) {
	svc := New().With("api", ok()).With("embedding", ok())
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["api"] != CheckOK {
		t.Errorf("expected api %q, got %q", CheckOK, r.Checks["api"])
	}
	if r.Checks["embedding"] != CheckOK {
		t.Errorf("expected embedding %q, got %q", CheckOK, r.Checks["embedding"])
	}
	if r.Errors != nil {
		t.Errorf("expected no errors, got %v", r.Errors)
	}
}

func TestCheck_OneFails(t *testing.T) {
	svc := New().With("api", ok()).With("cache", fail("conn refused"))
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["cache"] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks["cache"])
	}
	if r.Errors["cache"] != "conn refused" {
		t.Errorf("cache error = %q", r.Errors["cache"])
	}
}

func TestCheck_AllFail(t *testing.T) {
	svc := New().With("api", fail("down")).With("embedding", fail("timeout"))
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if len(r.Errors) != 2 {
		t.Errorf("expected 2 errors, got %v", r.Errors)
	}
}

func TestWith_NilChecker(t *testing.T) {
	svc := New().With("api", ok()).With("embedding", nil)
	if names := svc.Names(); len(names) != 1 || names[0] != "api" {
		t.Errorf("names = %v", names)
	}
	r := svc.Check(context.Background())
	if _, present := r.Checks["embedding"]; present {
		t.Error("embedding check should be absent when its checker is nil")
	}
}
