// Package testutil centralizes fixtures shared across the task engine's
// test suites: small kinematic chains and command-surface HTTP
// helpers, so each package's tests don't redefine the same chain.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskstack/hqpik/internal/kinchain"
)

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// NewTestRequest creates a test HTTP request, for cmdsurface handler tests.
func NewTestRequest(method, path string) *http.Request {
	return httptest.NewRequest(method, path, nil)
}

// NewTestRecorder creates a test response recorder.
func NewTestRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}

// OneJointChain is a single revolute joint "j1" at the origin, with
// segment "ee" coincident with the joint (no offset). Useful for
// function/task tests that only care about one DOF.
func OneJointChain(t *testing.T) *kinchain.Chain {
	t.Helper()
	c, err := kinchain.NewChain([]kinchain.JointSpec{
		{Name: "base", Type: kinchain.Fixed, Origin: kinchain.Identity()},
		{
			Name: "ee", Parent: "base", Type: kinchain.Revolute,
			Axis: [3]float64{0, 0, 1}, JointName: "j1", Origin: kinchain.Identity(),
		},
	})
	if err != nil {
		t.Fatalf("OneJointChain: %v", err)
	}
	return c
}

// TwoLinkPlanarChain is two revolute joints about Z ("j1", "j2"), with
// a single 1-meter offset between "link1" and "ee" — a minimal planar
// arm whose end-effector sits at (1,0,0) when both joints are at zero.
func TwoLinkPlanarChain(t *testing.T) *kinchain.Chain {
	t.Helper()
	offset := kinchain.Identity()
	offset.Pos = [3]float64{1, 0, 0}
	c, err := kinchain.NewChain([]kinchain.JointSpec{
		{Name: "base", Type: kinchain.Fixed, Origin: kinchain.Identity()},
		{
			Name: "link1", Parent: "base", Type: kinchain.Revolute,
			Axis: [3]float64{0, 0, 1}, JointName: "j1", Origin: kinchain.Identity(),
		},
		{
			Name: "ee", Parent: "link1", Type: kinchain.Revolute,
			Axis: [3]float64{0, 0, 1}, JointName: "j2", Origin: offset,
		},
	})
	if err != nil {
		t.Fatalf("TwoLinkPlanarChain: %v", err)
	}
	return c
}
