package sim

import "errors"

var (
	// ErrInvalidSpectrum indicates a malformed or zero-weight spectrum table.
	ErrInvalidSpectrum = errors.New("sim: invalid spectrum")
	// ErrUnknownSpectrum indicates a material/component pair the spectrum provider does not know.
	ErrUnknownSpectrum = errors.New("sim: unknown spectrum")
	// ErrUnknownRegion indicates a region name the geometry does not recognise.
	ErrUnknownRegion = errors.New("sim: unknown vertex region")
	// ErrInvalidRange indicates an empty or out-of-domain angular window.
	ErrInvalidRange = errors.New("sim: invalid angular range")
	// ErrInvalidConfig indicates a generator configuration that cannot be built.
	ErrInvalidConfig = errors.New("sim: invalid generator configuration")
)
