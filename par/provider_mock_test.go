package par_test

import (
	"testing"

	"github.com/golang/mock/gomock"

	"github.com/azonenberg/xc2par/device"
	"github.com/azonenberg/xc2par/par"
)

// TestRunConsultsInjectedProvider substitutes a gomock device.Provider for
// the compiled-in tables and asserts Run fetches the device facts it hands
// the placer through it exactly once.
func TestRunConsultsInjectedProvider(t *testing.T) {
	part, err := device.ParsePartName("XC2C32-6VQ44")
	if err != nil {
		t.Fatalf("ParsePartName() error = %v", err)
	}

	ctrl := gomock.NewController(t)
	mockProvider := device.NewMockProvider(ctrl)
	mockProvider.EXPECT().Facts(part.Device).Times(1).Return(device.FactsFor(part.Device))

	opts := par.NewRunOptions(part).WithProvider(mockProvider)

	if _, err := par.Run([]byte(minimalNetlist), opts); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}
