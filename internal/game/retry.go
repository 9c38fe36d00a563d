package game

import "fmt"

// retryUnique draws candidates from generate until exists reports a free
// one, giving up after maxAttempts. Keeps collision policy declarative and
// bounded instead of looping until the pool is exhausted.
func retryUnique(generate func() (string, error), exists func(string) (bool, error), maxAttempts int) (string, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	for attempt := 0; attempt < maxAttempts; attempt++ {
		candidate, err := generate()
		if err != nil {
			return "", err
		}
		taken, err := exists(candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no unique value after %d attempts", maxAttempts)
}
