package context

// Environment is the interface to the process environment. Values read from a
// .env file are applied through it, so that they're visible to the CLI parser.
type Environment interface {
	Get(key string) string
	Set(key, value string) error
}
