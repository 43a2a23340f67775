//go:build !windows

package focus

type unsupportedSignal struct{}

// System returns a signal that always reports ErrUnsupported.
func System() Signal {
	return unsupportedSignal{}
}

func (unsupportedSignal) Suppressing() (bool, error) {
	return false, ErrUnsupported
}
