package game

import (
	"math/rand/v2"
	"testing"
)

func TestPickCodemasterExcludesLastHolder(t *testing.T) {
	candidates := []PlayerRecord{{ID: 1}, {ID: 2}, {ID: 3}}
	rng := rand.New(rand.NewPCG(5, 6))
	for i := 0; i < 50; i++ {
		picked, ok := pickCodemaster(candidates, 2, rng)
		if !ok {
			t.Fatal("expected a pick")
		}
		if picked.ID == 2 {
			t.Fatal("last codemaster picked again despite other candidates")
		}
	}
}

func TestPickCodemasterFallsBackToFullSet(t *testing.T) {
	candidates := []PlayerRecord{{ID: 7}}
	rng := rand.New(rand.NewPCG(7, 8))
	picked, ok := pickCodemaster(candidates, 7, rng)
	if !ok || picked.ID != 7 {
		t.Fatalf("expected sole candidate despite holding the role, got %v %v", picked, ok)
	}
}

func TestPickCodemasterEmpty(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	if _, ok := pickCodemaster(nil, 0, rng); ok {
		t.Fatal("expected no pick from empty candidates")
	}
}

func TestRetryUniqueStopsAtBound(t *testing.T) {
	attempts := 0
	_, err := retryUnique(
		func() (string, error) { attempts++; return "taken", nil },
		func(string) (bool, error) { return true, nil },
		5,
	)
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if attempts != 5 {
		t.Fatalf("attempts = %d, want 5", attempts)
	}
}

func TestRetryUniqueReturnsFirstFree(t *testing.T) {
	calls := 0
	got, err := retryUnique(
		func() (string, error) {
			calls++
			if calls < 3 {
				return "taken", nil
			}
			return "free", nil
		},
		func(candidate string) (bool, error) { return candidate == "taken", nil },
		10,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "free" || calls != 3 {
		t.Fatalf("got %q after %d calls", got, calls)
	}
}
