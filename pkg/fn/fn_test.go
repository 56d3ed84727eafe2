package fn

import (
	"context"
	"errors"
	"strconv"
	"testing"
)

func TestResult(t *testing.T) {
	r := Ok(42)
	if !r.IsOk() || r.IsErr() {
		t.Fatal("expected ok")
	}
	if v, err := r.Unwrap(); v != 42 || err != nil {
		t.Fatalf("got %d, %v", v, err)
	}

	e := Errf[int]("bad %d", 7)
	if e.IsOk() || !e.IsErr() {
		t.Fatal("expected err")
	}
	if _, err := e.Unwrap(); err == nil || err.Error() != "bad 7" {
		t.Fatalf("got %v", err)
	}
	if e.UnwrapOr(-1) != -1 {
		t.Fatal("UnwrapOr should return the fallback")
	}
}

func TestSlices(t *testing.T) {
	nums := []int{1, 2, 3, 4, 2}

	sq := Map(nums, func(n int) int { return n * n })
	if len(sq) != 5 || sq[3] != 16 {
		t.Fatalf("Map: %v", sq)
	}
	even := Filter(nums, func(n int) bool { return n%2 == 0 })
	if len(even) != 3 {
		t.Fatalf("Filter: %v", even)
	}
	if sum := Reduce(nums, 0, func(a, n int) int { return a + n }); sum != 12 {
		t.Fatalf("Reduce: %d", sum)
	}
	if u := Unique(nums); len(u) != 4 || u[1] != 2 || u[3] != 4 {
		t.Fatalf("Unique: %v", u)
	}
	if Filter([]int(nil), func(int) bool { return true }) != nil {
		t.Fatal("Filter of nil should be nil")
	}
}

func TestThen(t *testing.T) {
	parse := Stage[string, int](func(_ context.Context, s string) Result[int] {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Err[int](err)
		}
		return Ok(n)
	})
	double := Stage[int, int](func(_ context.Context, n int) Result[int] { return Ok(n * 2) })

	st := Then(parse, double)
	if v, err := st(context.Background(), "21").Unwrap(); err != nil || v != 42 {
		t.Fatalf("got %d, %v", v, err)
	}

	called := false
	never := Stage[int, int](func(_ context.Context, n int) Result[int] { called = true; return Ok(n) })
	if r := Then(parse, never)(context.Background(), "nope"); !r.IsErr() || called {
		t.Fatal("second stage must not run after an error")
	}
}

func TestRecover(t *testing.T) {
	boom := Stage[int, int](func(context.Context, int) Result[int] { panic("boom") })
	r := Recover(boom)(context.Background(), 1)
	_, err := r.Unwrap()
	var pe *PanicError
	if !errors.As(err, &pe) || pe.Value != "boom" || len(pe.Stack) == 0 {
		t.Fatalf("expected PanicError, got %v", err)
	}

	fine := Stage[int, int](func(_ context.Context, n int) Result[int] { return Ok(n + 1) })
	if v, err := Recover(fine)(context.Background(), 1).Unwrap(); err != nil || v != 2 {
		t.Fatalf("got %d, %v", v, err)
	}
}

func TestTracedStage(t *testing.T) {
	failing := Stage[int, int](func(context.Context, int) Result[int] { return Err[int](errors.New("x")) })
	if r := TracedStage("test.fail", failing)(context.Background(), 1); !r.IsErr() {
		t.Fatal("traced stage must pass errors through")
	}
	ok := Stage[int, int](func(_ context.Context, n int) Result[int] { return Ok(n) })
	if v, _ := TracedStage("test.ok", ok)(context.Background(), 5).Unwrap(); v != 5 {
		t.Fatal("traced stage must pass values through")
	}
}
