package stacktrace

import (
	"reflect"
	"testing"
)

func TestInternalPaths(t *testing.T) {
	stack := []byte(`goroutine 7 [running]:
runtime/debug.Stack()
	/usr/local/go/src/runtime/debug/stack.go:26 +0x5e
github.com/shandysiswandi/gobite-otp/internal/pkg/goroutine.(*Manager).Go.func1()
	/src/app/internal/pkg/goroutine/goroutine.go:88 +0x1a5
panic({0x1234, 0x5678})
	/usr/local/go/src/runtime/panic.go:785 +0x132
github.com/shandysiswandi/gobite-otp/internal/otp/usecase.(*Usecase).SweepExpired()
	/src/app/internal/otp/usecase/sweep.go:31 +0x44
`)

	got := InternalPaths(stack)
	want := []string{
		"internal/pkg/goroutine/goroutine.go:88",
		"internal/otp/usecase/sweep.go:31",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("InternalPaths() = %#v, want %#v", got, want)
	}
}

func TestInternalPaths_NoInternalFrames(t *testing.T) {
	if got := InternalPaths([]byte("runtime/debug.Stack()\n\t/usr/local/go/src/runtime/debug/stack.go:26")); len(got) != 0 {
		t.Fatalf("expected no paths, got %#v", got)
	}
}
