package auth

import "context"

// TestChecker is a map backed Checker used in handler unit tests.
type TestChecker struct {
	Principals map[string]Principal
}

func NewTestChecker() *TestChecker {
	return &TestChecker{
		Principals: make(map[string]Principal),
	}
}

func (c *TestChecker) Check(_ context.Context, token string) (Principal, error) {
	principal, ok := c.Principals[token]
	if !ok {
		return Principal{}, ErrNotLoggedIn
	}
	return principal, nil
}
