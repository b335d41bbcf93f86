package repositories

import (
	"errors"
	"testing"
)

type fakeResult struct {
	affected int64
}

func (f fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (f fakeResult) RowsAffected() (int64, error) { return f.affected, nil }

var errSentinel = errors.New("row not found")

func TestCheckUpdateResultSkipsProbeWhenRowsChanged(t *testing.T) {
	probed := false
	err := checkUpdateResult(fakeResult{affected: 1}, func() (bool, error) {
		probed = true
		return false, nil
	}, errSentinel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if probed {
		t.Error("existence probe ran even though rows were changed")
	}
}

// MySQL answers zero affected rows for an edit that changes nothing; the row
// still exists, so the update must not be reported as not-found.
func TestCheckUpdateResultNoOpEditIsNotAnError(t *testing.T) {
	err := checkUpdateResult(fakeResult{affected: 0}, func() (bool, error) {
		return true, nil
	}, errSentinel)
	if err != nil {
		t.Fatalf("no-op edit of an existing row reported as error: %v", err)
	}
}

func TestCheckUpdateResultMissingRow(t *testing.T) {
	err := checkUpdateResult(fakeResult{affected: 0}, func() (bool, error) {
		return false, nil
	}, errSentinel)
	if !errors.Is(err, errSentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
}

func TestCheckUpdateResultProbeFailure(t *testing.T) {
	probeErr := errors.New("connection lost")
	err := checkUpdateResult(fakeResult{affected: 0}, func() (bool, error) {
		return false, probeErr
	}, errSentinel)
	if err == nil || errors.Is(err, errSentinel) {
		t.Fatalf("expected probe failure to surface, got %v", err)
	}
	if !errors.Is(err, probeErr) {
		t.Fatalf("expected wrapped probe error, got %v", err)
	}
}

func TestCheckAffectedRows(t *testing.T) {
	if err := checkAffectedRows(fakeResult{affected: 1}, errSentinel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := checkAffectedRows(fakeResult{affected: 0}, errSentinel); !errors.Is(err, errSentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
}
