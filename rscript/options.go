package rscript

// RunOptions controls a single Run.
type RunOptions struct {
	// Save also writes the final script, grab block included, to Destination.
	Save bool

	// Destination is where the script is saved. Required when Save is set.
	Destination string

	// Capture keeps the R process output out of the host's streams.
	// Output is always captured into the Result either way.
	Capture bool

	// Grab enables the @grab scan, encode and decode pipeline.
	Grab bool
}

// validate checks option combinations.
func (o RunOptions) validate() error {
	if o.Save && o.Destination == "" {
		return errSaveWithoutDestination
	}
	return nil
}

// RunOption is a functional option for a single Run.
type RunOption func(*RunOptions)

// WithSave saves the final script to path.
func WithSave(path string) RunOption {
	return func(o *RunOptions) {
		o.Save = true
		o.Destination = path
	}
}

// WithCapture captures R output instead of streaming it to the host.
func WithCapture() RunOption {
	return func(o *RunOptions) {
		o.Capture = true
	}
}

// WithGrab extracts @grab-annotated values.
func WithGrab() RunOption {
	return func(o *RunOptions) {
		o.Grab = true
	}
}

// WithOptions replaces all options with opts.
func WithOptions(opts RunOptions) RunOption {
	return func(o *RunOptions) {
		*o = opts
	}
}
