package compress

import (
	"bytes"
	"fmt"

	"github.com/arloliu/goethe/internal/options"
	"github.com/arloliu/goethe/stats"
)

// DefaultLevel is the compression level a backend starts with.
const DefaultLevel = 6

// Options is the per-backend codec configuration. Field names are persisted
// verbatim in YAML and JSON.
type Options struct {
	// Level is the codec compression level. Its valid range depends on the backend.
	Level int `json:"level" yaml:"level"`
	// DictionaryMode enables the preset Dictionary for both directions.
	DictionaryMode bool   `json:"dictionaryMode" yaml:"dictionaryMode"`
	Dictionary     []byte `json:"dictionary,omitempty" yaml:"dictionary,omitempty"`
	// WindowLog is log2 of the match window; 0 lets the codec decide.
	WindowLog int `json:"windowLog" yaml:"windowLog"`
	// Strategy selects a codec strategy 1..9; 0 lets the level decide.
	Strategy int `json:"strategy" yaml:"strategy"`
}

// DefaultOptions returns the options every backend starts with.
func DefaultOptions() Options {
	return Options{Level: DefaultLevel}
}

// Clone returns a deep copy of o, the dictionary included.
func (o Options) Clone() Options {
	if o.Dictionary != nil {
		o.Dictionary = bytes.Clone(o.Dictionary)
	}

	return o
}

// dictionary returns the dictionary bytes when dictionary mode is active.
func (o Options) dictionary() []byte {
	if !o.DictionaryMode || len(o.Dictionary) == 0 {
		return nil
	}

	return o.Dictionary
}

// BackendConfig holds construction parameters shared by all backends.
type BackendConfig struct {
	// Stats receives operation records. Defaults to stats.Default().
	Stats *stats.Manager
	// Options are applied right after the codec is created.
	Options Options
	// Statistics is the initial per-backend statistics flag.
	Statistics bool
}

// BackendOption configures a BackendConfig.
type BackendOption = options.Option[*BackendConfig]

func newBackendConfig(opts ...BackendOption) (*BackendConfig, error) {
	cfg := &BackendConfig{
		Stats:      stats.Default(),
		Options:    DefaultOptions(),
		Statistics: true,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithStatsManager routes the backend's records to m instead of stats.Default().
func WithStatsManager(m *stats.Manager) BackendOption {
	return options.New(func(c *BackendConfig) error {
		if m == nil {
			return fmt.Errorf("%w: nil statistics manager", ErrInvalidConfiguration)
		}
		c.Stats = m

		return nil
	})
}

// WithOptions replaces the initial options.
func WithOptions(o Options) BackendOption {
	return options.NoError(func(c *BackendConfig) {
		c.Options = o.Clone()
	})
}

// WithLevel sets the initial compression level.
func WithLevel(level int) BackendOption {
	return options.NoError(func(c *BackendConfig) {
		c.Options.Level = level
	})
}

// WithStatistics sets the initial per-backend statistics flag.
func WithStatistics(enable bool) BackendOption {
	return options.NoError(func(c *BackendConfig) {
		c.Statistics = enable
	})
}
