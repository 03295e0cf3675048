package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryon-canvas-server/modules/common/apperror"
	"tryon-canvas-server/modules/common/model"
)

type scriptedProvider struct {
	submit    *JobHandle
	submitErr error
	polls     []*PollResult
	pollErr   error
	pollCount int
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) Submit(context.Context, string, []string, Options) (*JobHandle, error) {
	return s.submit, s.submitErr
}

func (s *scriptedProvider) Poll(context.Context, *JobHandle) (*PollResult, error) {
	if s.pollErr != nil {
		return nil, s.pollErr
	}
	i := s.pollCount
	s.pollCount++
	if i >= len(s.polls) {
		return &PollResult{Status: StatusInProgress}, nil
	}
	return s.polls[i], nil
}

func resultWith(url string) *model.SynthesisResult {
	return &model.SynthesisResult{Images: []model.ImageOutput{{URL: url}}, ProviderUsed: "scripted"}
}

func TestClient_SynchronousResult(t *testing.T) {
	p := &scriptedProvider{submit: &JobHandle{RequestID: "r1", Result: resultWith("https://cdn/out.png")}}
	c := NewClient(p, time.Millisecond, 3)

	res, err := c.Synthesize(context.Background(), "p", []string{"a"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/out.png", res.FirstURL())
	assert.Equal(t, 0, p.pollCount)
}

func TestClient_PollsUntilCompleted(t *testing.T) {
	p := &scriptedProvider{
		submit: &JobHandle{RequestID: "r1"},
		polls: []*PollResult{
			{Status: StatusQueued},
			{Status: StatusInProgress},
			{Status: StatusCompleted, Result: resultWith("https://cdn/done.png")},
		},
	}
	c := NewClient(p, time.Millisecond, 10)

	res, err := c.Synthesize(context.Background(), "p", []string{"a"}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/done.png", res.FirstURL())
	assert.Equal(t, 3, p.pollCount)
}

func TestClient_FailedCarriesMessage(t *testing.T) {
	p := &scriptedProvider{
		submit: &JobHandle{RequestID: "r1"},
		polls:  []*PollResult{{Status: StatusFailed, Message: "NSFW content detected"}},
	}
	c := NewClient(p, time.Millisecond, 10)

	_, err := c.Synthesize(context.Background(), "p", []string{"a"}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrProviderFailure)
	assert.Equal(t, "NSFW content detected", err.Error())
}

func TestClient_Timeout(t *testing.T) {
	p := &scriptedProvider{submit: &JobHandle{RequestID: "r1"}}
	c := NewClient(p, time.Millisecond, 4)

	_, err := c.Synthesize(context.Background(), "p", []string{"a"}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrProviderTimeout)
	assert.Equal(t, 4, p.pollCount)
}

func TestClient_SubmitAndPollErrorsPropagate(t *testing.T) {
	authErr := apperror.New(apperror.KindProviderAuth, "bad key")
	c := NewClient(&scriptedProvider{submitErr: authErr}, time.Millisecond, 2)
	_, err := c.Synthesize(context.Background(), "p", []string{"a"}, Options{})
	assert.ErrorIs(t, err, apperror.ErrProviderAuth)

	c = NewClient(&scriptedProvider{submit: &JobHandle{RequestID: "r"}, pollErr: errors.New("boom")}, time.Millisecond, 2)
	_, err = c.Synthesize(context.Background(), "p", []string{"a"}, Options{})
	assert.EqualError(t, err, "boom")
}

func TestClient_ContextCancelled(t *testing.T) {
	p := &scriptedProvider{submit: &JobHandle{RequestID: "r1"}}
	c := NewClient(p, time.Hour, 60)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.Synthesize(ctx, "p", []string{"a"}, Options{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, p.pollCount)
}

func TestClient_IsDemo(t *testing.T) {
	assert.True(t, NewClient(NewDemo(0), 0, 0).IsDemo())
	assert.False(t, NewClient(&scriptedProvider{}, 0, 0).IsDemo())
}
