package peer

// DefaultICEServerURLs is the fixed list of public address discovery
// servers used for candidate gathering when none are configured.
var DefaultICEServerURLs = []string{
	"stun:stun.l.google.com:19302",
	"stun:stun1.l.google.com:19302",
	"stun:stun2.l.google.com:19302",
}

// Config contains the configuration for peer links.
type Config struct {
	// ICEServerURLs lists the STUN servers handed to new connections.
	ICEServerURLs []string

	// ConnFactory creates the underlying connection. Tests replace it
	// with a double; when nil, real WebRTC connections are created.
	ConnFactory func() (Conn, error)
}

// factory returns the effective connection factory.
func (c Config) factory() func() (Conn, error) {
	if c.ConnFactory != nil {
		return c.ConnFactory
	}
	urls := c.ICEServerURLs
	if len(urls) == 0 {
		urls = DefaultICEServerURLs
	}
	return func() (Conn, error) {
		return NewWebRTCConn(urls)
	}
}
