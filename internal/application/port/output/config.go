package output

// ConfigPort exposes the process environment after .env files are applied.
type ConfigPort interface {
	AppEnv() string
	Loaded() []string
	GetBool(key string, defaultValue bool) bool
}
