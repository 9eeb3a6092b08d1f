package hosting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	name string
}

func (s *stubGateway) Name() string { return s.name }
func (s *stubGateway) PostComment(context.Context, string, string, int, string) error {
	return nil
}
func (s *stubGateway) CreatePullRequest(context.Context, string, string, string, string, string, string) (*PullRequest, error) {
	return nil, nil
}
func (s *stubGateway) GetPullRequestInfo(context.Context, string, string, int) (*PullRequestInfo, error) {
	return nil, nil
}

func TestRegistryGet(t *testing.T) {
	r := NewRegistry()
	api := &stubGateway{name: "api"}
	cli := &stubGateway{name: "cli"}
	r.Register(api)
	r.Register(cli)

	got, err := r.Get("cli")
	require.NoError(t, err)
	assert.Same(t, cli, got)

	got, err = r.Get("api")
	require.NoError(t, err)
	assert.Same(t, api, got)
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("gitlab")
	assert.Error(t, err)
}
