package entities

// IntegrationTwinConfig holds the wiring for the event intake and the twin
// registry, loaded from the yaml setup file.
type IntegrationTwinConfig struct {
	AMQPURL        string `yaml:"amqpUrl"`
	TwinStoreURL   string `yaml:"twinStoreUrl"`
	TwinStoreToken string `yaml:"twinStoreToken"`
	LogLevel       string `yaml:"logLevel"`
	MetricsAddress string `yaml:"metricsAddress"`
}
