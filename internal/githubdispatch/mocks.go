package githubdispatch

import (
	"context"

	"github.com/google/go-github/github"
	"github.com/stretchr/testify/mock"
)

type MockRepositoryDispatcher struct {
	mock.Mock
}

func (m *MockRepositoryDispatcher) Dispatch(ctx context.Context, token, owner, repo string, body DispatchBody) (*github.Response, error) {
	args := m.Called(ctx, token, owner, repo, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Response), args.Error(1)
}
