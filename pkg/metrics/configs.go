package metrics

// DefaultMetricsAddress is the listen address of the exposition server.
const DefaultMetricsAddress = ":9090"

// Config controls the Prometheus registry and its HTTP exposition server.
type Config struct {
	// Enabled starts the exposition server. The registry and observer exist either way.
	Enabled bool `yaml:"enabled" mapstructure:"enabled" default:"false"`

	// Address is the listen address of the /metrics server.
	Address string `yaml:"address" mapstructure:"address" default:":9090"`

	// EnableDefaultCollectors registers the Go runtime, process and build info collectors.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" mapstructure:"enable_default_collectors" default:"false"`

	// Namespace prefixes every metric name, e.g. "objectstore".
	Namespace string `yaml:"namespace" mapstructure:"namespace" default:"objectstore"`

	// ServiceName is added as a constant "service" label.
	ServiceName string `yaml:"service_name" mapstructure:"service_name" default:"objectstore"`
}
