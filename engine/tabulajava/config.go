package tabulajava

type Option func(*Client)

// WithJava sets the java executable.
func WithJava(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.java = path
		}
	}
}

// WithJavaOptions replaces the JVM options.
func WithJavaOptions(options ...string) Option {
	return func(c *Client) {
		c.javaOptions = options
	}
}

func WithMethod(method Method) Option {
	return func(c *Client) {
		c.method = method
	}
}

// WithPassword sets the password for encrypted documents.
func WithPassword(password string) Option {
	return func(c *Client) {
		c.password = password
	}
}
