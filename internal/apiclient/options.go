package apiclient

// options holds per-request settings.
type options struct {
	query   map[string]any
	noCache bool
	token   string
}

// Option configures a single request.
type Option func(*options)

// WithQuery appends query parameters to the request URL. Values are
// formatted with fmt.Sprint; nil values are dropped.
func WithQuery(q map[string]any) Option {
	return func(o *options) { o.query = q }
}

// WithNoCache skips both the cache read and the cache write for a GET.
func WithNoCache() Option {
	return func(o *options) { o.noCache = true }
}

// WithToken overrides the ambient stored access token for this request.
func WithToken(token string) Option {
	return func(o *options) { o.token = token }
}

func applyOptions(opts []Option) options {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
