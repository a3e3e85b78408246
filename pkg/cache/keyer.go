package cache

// Key types reported to the cache hooks.
const (
	KeyTypeHTTP   = "http"
	KeyTypeLayout = "layout"
)

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey returns the key for a cached HTTP response.
	HTTPKey(namespace, key string) string

	// LayoutKey returns the key for a persisted layout solution.
	LayoutKey(opts LayoutKeyOpts) string
}

// LayoutKeyOpts identifies a layout solution. Solutions computed for a
// different canvas or blocked area are not interchangeable.
type LayoutKeyOpts struct {
	Step    string       `json:"step"`
	Width   float64      `json:"width"`
	Height  float64      `json:"height"`
	Blocked [][4]float64 `json:"blocked,omitempty"`
}

// DefaultKeyer is the standard key format.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey returns "http:<namespace>:<key>".
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// LayoutKey returns "layout:<hash of opts>".
func (DefaultKeyer) LayoutKey(opts LayoutKeyOpts) string {
	return hashKey("layout", opts)
}

var _ Keyer = DefaultKeyer{}
