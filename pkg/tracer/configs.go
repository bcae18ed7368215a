package tracer

// Config controls the OpenTelemetry tracer provider.
type Config struct {
	// Enabled makes the tracer an active observer of storage operations.
	Enabled bool `yaml:"enabled" mapstructure:"enabled" default:"false"`

	// ServiceName is the service.name resource attribute.
	ServiceName string `yaml:"service_name" mapstructure:"service_name" default:"objectstore"`

	// AppEnv is the deployment.environment resource attribute.
	AppEnv string `yaml:"app_env" mapstructure:"app_env" default:"development"`

	// EnableExport ships spans over OTLP/HTTP. Without it spans are only recorded in process.
	EnableExport bool `yaml:"enable_export" mapstructure:"enable_export" default:"false"`

	// Endpoint is the OTLP collector host:port. Empty uses the exporter's environment defaults.
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint" default:""`

	// Insecure disables TLS towards the collector.
	Insecure bool `yaml:"insecure" mapstructure:"insecure" default:"false"`
}
