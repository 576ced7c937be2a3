package remote

import (
	"net/http"

	"github.com/iklobato/pdftable/format"
)

type Option func(*Client)

func WithClient(client *http.Client) Option {
	return func(c *Client) {
		c.client = client
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithFormats sets the document formats sent to the service. Defaults to
// PDF only.
func WithFormats(formats ...format.Format) Option {
	return func(c *Client) {
		if len(formats) > 0 {
			c.formats = formats
		}
	}
}
