package device

// Provider abstracts the device-fact/fuse-layout lookups the pipeline
// needs, so a caller can substitute a test double (provider_mock.go) for
// the compiled-in tables instead of depending on the package-level
// FactsFor/LayoutFor directly. Grounded on the teacher's own
// interface-behind-a-struct-field pattern for its cgra.Device dependency
// (sarchlab-zeonica/api, mocked as MockDevice in driver_internal_test.go).
type Provider interface {
	Facts(d Device) Facts
	Layout(d Device) FuseLayout
}

type tableProvider struct{}

func (tableProvider) Facts(d Device) Facts       { return FactsFor(d) }
func (tableProvider) Layout(d Device) FuseLayout { return LayoutFor(d) }

// DefaultProvider is the Provider backed by the compiled-in device tables;
// callers use this unless a test needs to substitute a mock.
var DefaultProvider Provider = tableProvider{}
