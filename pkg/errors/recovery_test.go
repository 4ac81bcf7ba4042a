package errors

import (
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestRecoverConvertsPanic(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err, "TestOperation")
		panic("boom")
	}

	err := fn()
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}
	if !strings.Contains(err.Error(), "panic in TestOperation: boom") {
		t.Errorf("unexpected message: %v", err.Error())
	}

	var panicErr *PanicError
	if !As(err, &panicErr) {
		t.Fatal("error should be castable to *PanicError")
	}
	if panicErr.StackTrace == "" {
		t.Error("expected a captured stack trace")
	}
}

func TestRecoverNoPanic(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err, "TestOperation")
		return nil
	}
	if err := fn(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSafeExecuteMatPanic(t *testing.T) {
	// gonum panics on shape violations; SafeExecute turns that into an error.
	err := SafeExecute("mat.Mul", func() error {
		a := mat.NewDense(2, 3, nil)
		b := mat.NewDense(2, 3, nil)
		var c mat.Dense
		c.Mul(a, b)
		return nil
	})

	if err == nil {
		t.Fatal("expected error from shape-mismatched Mul")
	}
	if !strings.Contains(err.Error(), "panic in mat.Mul") {
		t.Errorf("unexpected message: %v", err.Error())
	}
}
