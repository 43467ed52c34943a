package config

import (
	"time"

	"github.com/blocknative/opkeys/structs"
)

type Config struct {
	Rpc    *RPCConfig    `config:"rpc"`
	Sync   *SyncConfig   `config:"sync"`
	Verify *VerifyConfig `config:"verify"`
	Api    *ApiConfig    `config:"api"`
}

type RPCConfig struct {
	// number of eth_calls in one JSON-RPC batch
	MaxBatchSize int `config:"max_batch_size"`
	// concurrent batches of a single request
	Workers int `config:"workers"`
	// batches per second per endpoint, zero disables the limit
	RateLimit   int           `config:"rate_limit"`
	Burst       int           `config:"burst"`
	BlockTag    string        `config:"block_tag"`
	DialTimeout time.Duration `config:"dial_timeout"`

	listeners
}

var DefaultRPCConfig = RPCConfig{
	MaxBatchSize: 100,
	Workers:      4,
	BlockTag:     "latest",
	DialTimeout:  10 * time.Second,
}

type SyncConfig struct {
	Interval time.Duration `config:"interval"`
	// write cycle reports to the data directory
	Export bool `config:"export"`

	listeners
}

var DefaultSyncConfig = SyncConfig{
	Interval: time.Minute,
	Export:   true,
}

type VerifyConfig struct {
	Workers   int    `config:"workers"`
	QueueSize int    `config:"queue_size"`
	Backend   string `config:"backend"`
	CacheSize int    `config:"cache_size"`

	listeners
}

var DefaultVerifyConfig = VerifyConfig{
	Workers:   2000,
	QueueSize: 100_000,
	Backend:   "gnark",
	CacheSize: 1 << 20,
}

type ApiConfig struct {
	// requests per second per client, zero disables the limit
	RateLimit int `config:"rate_limit"`
	Burst     int `config:"burst"`
	// number of clients tracked by the limiter
	LimitterCacheSize int `config:"limitter_cache_size"`

	listeners
}

var DefaultApiConfig = ApiConfig{
	RateLimit:         10,
	Burst:             20,
	LimitterCacheSize: 1000,
}

func DefaultConfig() Config {
	r, s, v, a := DefaultRPCConfig, DefaultSyncConfig, DefaultVerifyConfig, DefaultApiConfig
	return Config{Rpc: &r, Sync: &s, Verify: &v, Api: &a}
}

// listeners is embedded in every section to receive value changes on reload.
// Subscriptions must happen before the first Reload.
type listeners struct {
	subs []structs.ConfigListener
}

func (l *listeners) SubscribeForUpdates(cl structs.ConfigListener) {
	l.subs = append(l.subs, cl)
}

// Propagate notifies every subscriber, the first error is returned after all were called.
func (l *listeners) Propagate(change structs.OldNew) (err error) {
	for _, s := range l.subs {
		if sErr := s.OnConfigChange(change); sErr != nil && err == nil {
			err = sErr
		}
	}
	return err
}
