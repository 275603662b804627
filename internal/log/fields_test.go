package log

import (
	"errors"
	"testing"
)

func TestFieldsBuilderChaining(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentWorker).
		WithOperation(OpPublish).
		WithBill("bill-1", "Electric", 4500)

	want := map[string]any{
		FieldComponent:   ComponentWorker,
		FieldOperation:   OpPublish,
		FieldBillID:      "bill-1",
		FieldBillName:    "Electric",
		FieldAmountCents: int64(4500),
	}
	if len(f) != len(want) {
		t.Fatalf("got %d fields, want %d", len(f), len(want))
	}
	for k, v := range want {
		if f[k] != v {
			t.Errorf("field %q = %v, want %v", k, f[k], v)
		}
	}
}

func TestFieldsWithErrorNilIsNoop(t *testing.T) {
	f := NewFields().WithError(nil)
	if _, ok := f[FieldError]; ok {
		t.Error("nil error must not add an error field")
	}

	f = f.WithError(errors.New("boom"))
	if got := f[FieldError]; got != "boom" {
		t.Errorf("error field = %v, want %q", got, "boom")
	}
}

func TestFieldsResponseSuccessFlag(t *testing.T) {
	cases := []struct {
		status int
		want   bool
	}{
		{200, true},
		{399, true},
		{400, false},
		{500, false},
	}
	for _, tc := range cases {
		f := NewFields().WithResponse(tc.status, 12)
		if got := f[FieldSuccess]; got != tc.want {
			t.Errorf("status %d: success = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestFieldsArgsFlattening(t *testing.T) {
	f := NewFields().WithRequest("req_1", "GET", "/api/dashboard")
	args := f.Args()
	if len(args) != 2*len(f) {
		t.Fatalf("got %d args, want %d", len(args), 2*len(f))
	}
	// Map iteration order varies; rebuild the pairs and compare.
	got := make(map[string]any, len(f))
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			t.Fatalf("arg %d is %T, want string key", i, args[i])
		}
		got[key] = args[i+1]
	}
	if got[FieldRequestID] != "req_1" || got[FieldMethod] != "GET" || got[FieldPath] != "/api/dashboard" {
		t.Errorf("flattened args = %v, want request fields intact", got)
	}
}
