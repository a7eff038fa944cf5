package content_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/scribe/pkg/content"
	"github.com/aretw0/scribe/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noSleep(context.Context, time.Duration) error { return nil }

func newManager(t *testing.T, opts ...content.ManagerOption) *content.Manager {
	t.Helper()
	base := []content.ManagerOption{
		content.WithPolicy(retry.Policy{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 2}),
		content.WithRetryOptions(retry.WithSleeper(noSleep)),
	}
	return content.NewManager(append(base, opts...)...)
}

func TestManagerGenerate(t *testing.T) {
	req := content.Request{Target: "src/app/main.go"}

	t.Run("Uses Registered Provider", func(t *testing.T) {
		m := newManager(t)
		mock := content.NewMock("mock", content.WithResponse(content.KindPurpose, "Entry point"))
		require.NoError(t, m.Register(mock))

		out, err := m.Generate(context.Background(), req, []string{content.KindPurpose})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{content.KindPurpose: "Entry point"}, out)
		assert.Equal(t, 1, mock.Calls())
	})

	t.Run("Falls Back Per Kind", func(t *testing.T) {
		m := newManager(t)
		mock := content.NewMock("mock",
			content.WithResponse(content.KindOverview, "Overview text"),
			content.WithFailure(nil),
			content.WithFailingKinds(content.KindPurpose),
		)
		require.NoError(t, m.Register(mock))

		out, err := m.Generate(context.Background(), req, []string{content.KindPurpose, content.KindOverview})
		require.NoError(t, err)
		assert.Equal(t, content.PlaceholderText(content.Request{Target: req.Target, Kind: content.KindPurpose}), out[content.KindPurpose])
		assert.NotEmpty(t, out[content.KindPurpose])
		assert.Equal(t, "Overview text", out[content.KindOverview])
		// 1 call + 2 retries for the failing kind, 1 for the other.
		assert.Equal(t, 3, mock.CallsFor(content.KindPurpose))
		assert.Equal(t, 1, mock.CallsFor(content.KindOverview))
	})

	t.Run("Recovers Within Retry Budget", func(t *testing.T) {
		m := newManager(t)
		mock := content.NewMock("mock", content.WithResponse(content.KindUsage, "Run it"))
		mock.FailTimes(2, errors.New("flaky"))
		require.NoError(t, m.Register(mock))

		out, err := m.Generate(context.Background(), req, []string{content.KindUsage})
		require.NoError(t, err)
		assert.Equal(t, "Run it", out[content.KindUsage])
		assert.Equal(t, 3, mock.Calls())
	})

	t.Run("Empty Output Counts As Failure", func(t *testing.T) {
		m := newManager(t)
		require.NoError(t, m.Register(content.NewMock("mock", content.WithResponse(content.KindNotes, ""))))

		out, err := m.Generate(context.Background(), req, []string{content.KindNotes})
		require.NoError(t, err)
		assert.Equal(t, "[AI-generated notes for main.go pending]", out[content.KindNotes])
	})

	t.Run("Disabled Returns Markers Without Calls", func(t *testing.T) {
		m := newManager(t)
		mock := content.NewMock("mock")
		require.NoError(t, m.Register(mock))
		m.SetEnabled(false)

		out, err := m.Generate(context.Background(), req, []string{content.KindPurpose})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{content.KindPurpose: content.DisabledMarker(content.KindPurpose)}, out)
		assert.Zero(t, mock.Calls())
	})

	t.Run("Empty Registry Uses Placeholder", func(t *testing.T) {
		m := newManager(t)
		out, err := m.Generate(context.Background(), req, []string{content.KindDependencies})
		require.NoError(t, err)
		assert.Equal(t, "[AI-generated dependency summary for main.go pending]", out[content.KindDependencies])
	})

	t.Run("Cancellation Aborts Batch", func(t *testing.T) {
		m := newManager(t)
		mock := content.NewMock("mock")
		require.NoError(t, m.Register(mock))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		out, err := m.Generate(ctx, req, []string{content.KindPurpose, content.KindOverview})
		require.Error(t, err)
		assert.ErrorIs(t, err, retry.ErrCancelled)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, out)
		assert.Zero(t, mock.Calls())
	})

	t.Run("Cancellation During Backoff Is Not A Fallback", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		m := newManager(t, content.WithRetryOptions(retry.WithSleeper(func(ctx context.Context, _ time.Duration) error {
			cancel()
			return ctx.Err()
		})))
		require.NoError(t, m.Register(content.NewMock("mock", content.WithFailure(nil))))

		_, err := m.Generate(ctx, req, []string{content.KindPurpose})
		assert.ErrorIs(t, err, retry.ErrCancelled)
	})
}

func TestManagerSelection(t *testing.T) {
	t.Run("First Registered Then Preferred", func(t *testing.T) {
		m := newManager(t)
		first := content.NewMock("first")
		second := content.NewMock("second")
		require.NoError(t, m.Register(first))
		require.NoError(t, m.Register(second))

		assert.Equal(t, "first", m.Select().Name())

		m.SetPreferred("second")
		assert.Equal(t, "second", m.Select().Name())

		_, err := m.Generate(context.Background(), content.Request{Target: "a.go"}, []string{content.KindPurpose})
		require.NoError(t, err)
		assert.Zero(t, first.Calls())
		assert.Equal(t, 1, second.Calls())

		m.SetPreferred("")
		assert.Equal(t, "first", m.Select().Name())
	})

	t.Run("Skips Unavailable Providers", func(t *testing.T) {
		m := newManager(t)
		require.NoError(t, m.Register(content.NewMock("down", content.WithUnavailable())))
		require.NoError(t, m.Register(content.NewMock("up")))
		m.SetPreferred("down")
		assert.Equal(t, "up", m.Select().Name())
	})

	t.Run("Skips Providers Without The Kind", func(t *testing.T) {
		m := newManager(t)
		require.NoError(t, m.Register(content.NewMock("narrow", content.WithKinds(content.KindUsage))))
		require.NoError(t, m.Register(content.NewMock("wide")))
		assert.Equal(t, "narrow", m.SelectFor(content.KindUsage).Name())
		assert.Equal(t, "wide", m.SelectFor(content.KindPurpose).Name())
	})

	t.Run("Falls Back To Placeholder", func(t *testing.T) {
		m := newManager(t)
		require.NoError(t, m.Register(content.NewMock("down", content.WithUnavailable())))
		assert.Equal(t, content.PlaceholderName, m.Select().Name())
	})

	t.Run("Duplicate And Unregister", func(t *testing.T) {
		m := newManager(t)
		require.NoError(t, m.Register(content.NewMock("one")))
		err := m.Register(content.NewMock("one"))
		assert.ErrorIs(t, err, content.ErrDuplicateProvider)

		assert.True(t, m.Unregister("one"))
		assert.False(t, m.Unregister("one"))
		assert.Equal(t, content.PlaceholderName, m.Select().Name())
	})
}

func TestManagerStatus(t *testing.T) {
	m := newManager(t)
	require.NoError(t, m.Register(content.NewMock("mock", content.WithKinds(content.KindPurpose, content.KindUsage))))
	m.SetPreferred("mock")

	st := m.Status()
	assert.True(t, st.Enabled)
	assert.Equal(t, "mock", st.Preferred)
	assert.Equal(t, "mock", st.Active)
	require.Contains(t, st.Providers, "mock")
	assert.True(t, st.Providers["mock"].Available)
	assert.Equal(t, 2, st.Providers["mock"].KindCount)
	assert.Equal(t, "content-manager", m.ComponentType())
	assert.Equal(t, st, m.State())
}

func TestManagerValidateConfiguration(t *testing.T) {
	t.Run("Empty Registry", func(t *testing.T) {
		m := newManager(t)
		issues := m.ValidateConfiguration()
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "no providers")
	})

	t.Run("Nothing Available", func(t *testing.T) {
		m := newManager(t)
		require.NoError(t, m.Register(content.NewMock("down", content.WithUnavailable())))
		issues := m.ValidateConfiguration()
		require.NotEmpty(t, issues)
		assert.Equal(t, content.SeverityError, issues[0].Severity)
	})

	t.Run("Unknown Preferred", func(t *testing.T) {
		m := newManager(t)
		require.NoError(t, m.Register(content.NewMock("mock")))
		m.SetPreferred("ghost")
		issues := m.ValidateConfiguration()
		require.Len(t, issues, 1)
		assert.Equal(t, "ghost", issues[0].Provider)

		err := m.Err()
		assert.ErrorIs(t, err, content.ErrConfiguration)
		var cfgErr *content.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Len(t, cfgErr.Issues, 1)
	})

	t.Run("Provider Issues Are Included", func(t *testing.T) {
		m := newManager(t)
		require.NoError(t, m.Register(content.NewMock("mock",
			content.WithKinds(content.KindPurpose),
			content.WithResponse(content.KindUsage, "x"),
		)))
		issues := m.ValidateConfiguration()
		require.Len(t, issues, 1)
		assert.Equal(t, "mock", issues[0].Provider)
	})

	t.Run("Healthy", func(t *testing.T) {
		m := newManager(t)
		require.NoError(t, m.Register(content.NewMock("mock")))
		assert.Empty(t, m.ValidateConfiguration())
		assert.NoError(t, m.Err())
	})
}
