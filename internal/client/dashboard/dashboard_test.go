package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/bryanwahyu/ecosense/internal/client/auth"
	"github.com/bryanwahyu/ecosense/internal/client/backend"
	"github.com/bryanwahyu/ecosense/internal/client/workflow"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var fixedNow = func() time.Time { return time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC) }

func newDashboard(t *testing.T) (*Dashboard, *auth.Provider) {
	t.Helper()
	provider := auth.NewProvider(0)
	d := New(provider, backend.New("http://127.0.0.1:1"), Options{Interval: time.Hour, WaterGoalLitres: 100, Now: fixedNow})
	t.Cleanup(d.Close)
	return d, provider
}

func TestSelectRequiresSignIn(t *testing.T) {
	d, provider := newDashboard(t)

	_, err := d.Select(ModuleWater)
	assert.ErrorIs(t, err, ErrNotSignedIn)

	_, err = provider.SignIn(t.Context(), "eco@example.com", "pw")
	require.NoError(t, err)
	w, err := d.Select(ModuleWater)
	require.NoError(t, err)
	assert.Equal(t, ModuleWater, w.Module())

	_, err = d.Select(Module("garden"))
	assert.ErrorIs(t, err, ErrUnknownModule)
	m, _ := d.Active()
	assert.Equal(t, ModuleWater, m)
}

func TestSwitchMountsFreshState(t *testing.T) {
	d, provider := newDashboard(t)
	_, err := provider.SignIn(t.Context(), "eco@example.com", "pw")
	require.NoError(t, err)

	w, err := d.Select(ModuleWater)
	require.NoError(t, err)
	water := w.(*WaterWidget)
	require.NoError(t, water.Log("shower", 40))

	_, err = d.Select(ModuleChallenges)
	require.NoError(t, err)

	w, err = d.Select(ModuleWater)
	require.NoError(t, err)
	assert.NotSame(t, water, w)
	assert.Zero(t, w.(*WaterWidget).Total())
}

func TestSwitchClosesAnalysisWorkflow(t *testing.T) {
	d, provider := newDashboard(t)
	_, err := provider.SignIn(t.Context(), "eco@example.com", "pw")
	require.NoError(t, err)

	w, err := d.Select(ModuleCarbon)
	require.NoError(t, err)
	carbon := w.(*CarbonWidget)

	_, err = d.Select(ModuleSolar)
	require.NoError(t, err)
	_, err = carbon.Workflow.Submit(t.Context(), backend.ImageInput{Filename: "a.png"})
	assert.ErrorIs(t, err, workflow.ErrClosed)
}

func TestSignOutUnmounts(t *testing.T) {
	d, provider := newDashboard(t)
	_, err := provider.SignIn(t.Context(), "eco@example.com", "pw")
	require.NoError(t, err)
	_, err = d.Select(ModuleSolar)
	require.NoError(t, err)

	require.NoError(t, provider.SignOut(t.Context()))
	m, w := d.Active()
	assert.Empty(t, m)
	assert.Nil(t, w)

	_, err = d.Select(ModuleSolar)
	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestParseModule(t *testing.T) {
	m, err := ParseModule("carbon")
	require.NoError(t, err)
	assert.Equal(t, ModuleCarbon, m)
	assert.Equal(t, "Carbon Footprint", m.Title())

	_, err = ParseModule("nope")
	assert.ErrorIs(t, err, ErrUnknownModule)
}

func TestWaterWidget(t *testing.T) {
	w := NewWaterWidget(100, fixedNow)
	assert.Error(t, w.Log("", 10))
	assert.Error(t, w.Log("dishes", 0))

	require.NoError(t, w.Log("shower", 40))
	require.NoError(t, w.Log("laundry", 35))
	assert.Equal(t, 75.0, w.Total())
	assert.Equal(t, 75.0, w.Progress())
	assert.False(t, w.OverGoal())
	assert.Equal(t, fixedNow(), w.Entries()[0].At)

	require.NoError(t, w.Log("garden", 50))
	assert.Equal(t, 100.0, w.Progress())
	assert.True(t, w.OverGoal())

	w.Reset()
	assert.Zero(t, w.Total())
	assert.Equal(t, DefaultWaterGoalLitres, NewWaterWidget(0, nil).Goal())
}

func TestChallengesWidget(t *testing.T) {
	w := NewChallengesWidget(DefaultChallenges())
	assert.Equal(t, 1, w.Level())

	c, err := w.Complete("bike-to-work")
	require.NoError(t, err)
	assert.Equal(t, 75, c.Points)

	_, err = w.Complete("bike-to-work")
	assert.ErrorIs(t, err, ErrAlreadyCompleted)
	assert.Equal(t, 75, w.Points())

	_, err = w.Complete("meatless-monday")
	require.NoError(t, err)
	assert.Equal(t, 125, w.Points())
	assert.Equal(t, 2, w.Level())
	assert.True(t, w.Completed("meatless-monday"))

	_, err = w.Complete("moon-landing")
	assert.ErrorIs(t, err, ErrUnknownChallenge)
}
