package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ services.AuthService = (*fakeAuth)(nil)

func TestIsLoggedIn(t *testing.T) {
	assert.False(t, (&App{}).isLoggedIn())
	assert.False(t, (&App{authService: &fakeAuth{}}).isLoggedIn())
	assert.True(t, (&App{authService: &fakeAuth{loggedIn: true}}).isLoggedIn())
}

func TestSetMode(t *testing.T) {
	app := &App{}

	app.setMode(ModeOnline)
	assert.Equal(t, ModeOnline, app.mode())

	app.setMode(ModeOnline)
	assert.Equal(t, ModeOnline, app.mode())

	app.setMode(ModeOffline)
	assert.Equal(t, ModeOffline, app.mode())
}

func TestCheckOnline(t *testing.T) {
	f := &fakeAuth{}
	app := &App{authService: f}

	app.checkOnline(context.Background())
	assert.Equal(t, ModeOnline, app.mode())

	f.pingErr = errors.New("down")
	app.checkOnline(context.Background())
	assert.Equal(t, ModeOffline, app.mode())
}

func TestStartOnlineStatusWatcher_StopsOnCancel(t *testing.T) {
	app := &App{authService: &fakeAuth{}}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		app.StartOnlineStatusWatcher(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return app.mode() == ModeOnline }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestStartOnlineStatusWatcher_ZeroIntervalReturns(t *testing.T) {
	app := &App{authService: &fakeAuth{}}
	app.StartOnlineStatusWatcher(context.Background(), 0)
	assert.Equal(t, Mode(""), app.mode())
}

func TestWithTimeout(t *testing.T) {
	app := &App{config: &config.Config{RequestTimeout: time.Minute}}
	ctx, cancel := app.withTimeout(context.Background())
	defer cancel()

	dl, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), dl, 5*time.Second)

	ctx2, cancel2 := (&App{}).withTimeout(context.Background())
	defer cancel2()
	dl2, _ := ctx2.Deadline()
	assert.WithinDuration(t, time.Now().Add(defaultRequestTimeout), dl2, 5*time.Second)
}

func TestNewApp(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()

	app, err := NewApp(cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, app.authService)
	require.NoError(t, app.authService.Close(context.Background()))
}
