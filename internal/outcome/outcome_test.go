package outcome

import (
	"errors"
	"testing"
)

func TestOk(t *testing.T) {
	o := Ok(42)
	if !o.OK() {
		t.Fatal("Ok outcome should be OK")
	}
	if o.Reason() != ReasonNone {
		t.Errorf("Reason = %q, want empty", o.Reason())
	}
	if v, ok := o.Value(); !ok || v != 42 {
		t.Errorf("Value = %d, %v", v, ok)
	}
	if got := o.OrElse(7); got != 42 {
		t.Errorf("OrElse = %d, want 42", got)
	}
}

func TestFail(t *testing.T) {
	cause := errors.New("boom")
	o := Fail[int](ReasonMalformedResponse, cause)
	if o.OK() {
		t.Fatal("Fail outcome should not be OK")
	}
	if o.Reason() != ReasonMalformedResponse {
		t.Errorf("Reason = %q", o.Reason())
	}
	if !errors.Is(o.Err(), cause) {
		t.Errorf("Err = %v, want %v", o.Err(), cause)
	}
	if got := o.OrElse(7); got != 7 {
		t.Errorf("OrElse = %d, want 7", got)
	}

	var seen Reason
	got := o.OrElseFunc(func(r Reason, err error) int {
		seen = r
		return 9
	})
	if got != 9 || seen != ReasonMalformedResponse {
		t.Errorf("OrElseFunc = %d (reason %q)", got, seen)
	}
}

func TestFail_Defaults(t *testing.T) {
	o := Fail[string](ReasonNone, nil)
	if o.OK() {
		t.Fatal("Fail with nil error must still fail")
	}
	if o.Reason() != ReasonUnavailable {
		t.Errorf("Reason = %q, want %q", o.Reason(), ReasonUnavailable)
	}
	if o.Err() == nil {
		t.Error("Err should be non-nil")
	}
}
