package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/client/client"
	"github.com/dmitrijs2005/securelogin/internal/client/config"
)

type App struct {
	config   *config.Config
	api      client.Client
	userName string
	reader   *bufio.Reader
	out      io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	apiClient, err := client.NewAdminClient(c.ServerEndpointAddr)
	if err != nil {
		return nil, err
	}
	return newApp(c, apiClient, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, api client.Client, in io.Reader, out io.Writer) *App {
	return &App{config: c, api: api, reader: bufio.NewReader(in), out: out}
}

func (a *App) Run(ctx context.Context) {
	defer a.api.Close()

	fmt.Fprintln(a.out, "securelogin admin console (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) getStatus() string {
	if a.userName == "" {
		return "(anonymous)"
	}
	return fmt.Sprintf("(%s)", a.userName)
}

// withTimeout bounds one remote call by the configured request timeout.
func (a *App) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := a.config.RequestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}
