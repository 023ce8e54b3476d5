package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/securelogin/internal/flagx"
	"github.com/dmitrijs2005/securelogin/internal/timex"
)

// JsonConfig is the file form of Config.
type JsonConfig struct {
	ServerEndpointAddr string          `json:"server_endpoint_addr"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with the file named by -c/-config. Keys missing
// from the file leave cfg untouched. Read and decode errors panic.
func parseJson(cfg *Config) {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	if err := applyJson(cfg, data); err != nil {
		panic(err)
	}
}

func applyJson(cfg *Config, data []byte) error {
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}
	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
