package server

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/server/config"
	"github.com/dmitrijs2005/securelogin/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.StoreDriver = "memory"
	c.EndpointAddrHTTP = "127.0.0.1:0"
	c.EndpointAddrGRPC = "127.0.0.1:0"
	c.BcryptCost = 4
	c.LogLevel = "error"
	return c
}

func TestNewApp_BootstrapsDefaultAdmin(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)

	admin, err := app.accountService.FindByUsername(context.Background(), services.DefaultAdminUsername)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ADMIN", "USER"}, admin.Roles)
}

func TestNewApp_RejectsInvalidConfig(t *testing.T) {
	c := memoryConfig()
	c.StoreDriver = "cassandra"
	_, err := NewApp(context.Background(), c)
	assert.ErrorContains(t, err, "config error")

	c = memoryConfig()
	c.SecretKey = ""
	_, err = NewApp(context.Background(), c)
	assert.Error(t, err)
}

func TestNewApp_RedisUnreachable(t *testing.T) {
	c := memoryConfig()
	c.RedisURL = "redis://127.0.0.1:1/0"

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := NewApp(ctx, c)
	assert.ErrorContains(t, err, "redis init error")
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	app, err := NewApp(context.Background(), memoryConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after context cancel")
	}
}
