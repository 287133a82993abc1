package auth

import "context"

var _ Checker = (*TokenChecker)(nil)
var _ Checker = (*TestChecker)(nil)

type Checker interface {
	Check(ctx context.Context, token string) (Principal, error)
}
